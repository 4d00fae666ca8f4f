package splat

import "fmt"

// Attributes is one decoded set of per-splat arrays. Positions and Scales hold
// xyz triples, Rotations xyzw quaternions and Scales are in log space.
// Exactly one of Colors (RGBA bytes) or ColorsFloat (RGBA in [0,1]) is set.
// Opacities, when present, replaces the colour alpha channel.
// SH holds 3, 8 or 15 RGB coefficient triples per splat for degree 1, 2 or 3.
type Attributes struct {
	Positions   []float32
	Scales      []float32
	Rotations   []float32
	Colors      []uint8
	ColorsFloat []float32
	Opacities   []float32
	SH          []float32

	// Convention overrides Config.Convention when set.
	Convention *Convention
}

// Count returns the number of splats the arrays describe, validating that the
// required arrays are present and agree.
func (a *Attributes) Count() (int, error) {
	if a == nil {
		return 0, &MissingAttributeError{Attribute: "position"}
	}
	if a.Positions == nil {
		return 0, &MissingAttributeError{Attribute: "position"}
	}
	if len(a.Positions)%3 != 0 {
		return 0, &MissingAttributeError{Attribute: "position", Reason: "length is not a multiple of 3"}
	}
	n := len(a.Positions) / 3

	if a.Scales == nil {
		return 0, &MissingAttributeError{Attribute: "scale"}
	}
	if len(a.Scales) != 3*n {
		return 0, countMismatch("scale", len(a.Scales)/3, n)
	}
	if a.Rotations == nil {
		return 0, &MissingAttributeError{Attribute: "rotation"}
	}
	if len(a.Rotations) != 4*n {
		return 0, countMismatch("rotation", len(a.Rotations)/4, n)
	}

	switch {
	case a.Colors != nil:
		if len(a.Colors) != 4*n {
			return 0, countMismatch("color", len(a.Colors)/4, n)
		}
	case a.ColorsFloat != nil:
		if len(a.ColorsFloat) != 4*n {
			return 0, countMismatch("color", len(a.ColorsFloat)/4, n)
		}
	default:
		return 0, &MissingAttributeError{Attribute: "color"}
	}

	if a.Opacities != nil && len(a.Opacities) != n {
		return 0, countMismatch("opacity", len(a.Opacities), n)
	}
	if _, err := a.shDegree(n); err != nil {
		return 0, err
	}
	return n, nil
}

func (a *Attributes) shDegree(n int) (int, error) {
	if len(a.SH) == 0 || n == 0 {
		return 0, nil
	}
	if len(a.SH)%(3*n) != 0 {
		return 0, &MissingAttributeError{Attribute: "sh", Reason: "length is not a whole number of RGB triples per splat"}
	}
	switch len(a.SH) / (3 * n) {
	case 3:
		return 1, nil
	case 8:
		return 2, nil
	case 15:
		return 3, nil
	}
	return 0, &MissingAttributeError{
		Attribute: "sh",
		Reason:    fmt.Sprintf("%d coefficients per splat, want 3, 8 or 15", len(a.SH)/(3*n)),
	}
}

func countMismatch(name string, got, want int) error {
	return &MissingAttributeError{
		Attribute: name,
		Reason:    fmt.Sprintf("has %d elements, position has %d", got, want),
	}
}
