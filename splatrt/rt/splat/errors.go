package splat

import (
	"errors"
	"fmt"
)

var (
	ErrDegenerateScale  = errors.New("splat: degenerate scale, covariance is zero")
	ErrIngestInProgress = errors.New("splat: ingestion already in progress")
	ErrReleased         = errors.New("splat: mesh released")
)

// MissingAttributeError reports an absent or mis-sized attribute array. The
// mesh keeps its previous contents.
type MissingAttributeError struct {
	Attribute string
	Reason    string
}

func (e *MissingAttributeError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("splat: missing attribute %q", e.Attribute)
	}
	return fmt.Sprintf("splat: attribute %q: %s", e.Attribute, e.Reason)
}

// CapacityExceededError describes a splat count larger than the texture layout
// can address. It is logged, not returned: the excess splats are dropped.
type CapacityExceededError struct {
	Count    int
	Capacity int
	Width    int
	Height   int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("splat: %d splats exceed texture capacity %d (%dx%d), dropping %d",
		e.Count, e.Capacity, e.Width, e.Height, e.Count-e.Capacity)
}
