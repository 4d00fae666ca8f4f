package splat

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/mrjoshuak/go-openexr/half"
)

// Covariance returns the six independent entries (xx, xy, xz, yy, yz, zz) of
// Σ = Rᵀ·S²·R for a unit quaternion q and linear (not log) scale. The
// shading stage reconstructs the ellipse from this orientation.
func Covariance(q mgl32.Quat, scale mgl32.Vec3) [6]float32 {
	x, y, z, w := q.V[0], q.V[1], q.V[2], q.W
	x2, y2, z2 := x+x, y+y, z+z
	xx, xy, xz := x*x2, x*y2, x*z2
	yy, yz, zz := y*y2, y*z2, z*z2
	wx, wy, wz := w*x2, w*y2, w*z2
	sx, sy, sz := scale[0], scale[1], scale[2]

	// Rows of Rᵀ·S: column j of R scaled per component.
	m0, m1, m2 := (1-(yy+zz))*sx, (xy+wz)*sy, (xz-wy)*sz
	m4, m5, m6 := (xy-wz)*sx, (1-(xx+zz))*sy, (yz+wx)*sz
	m8, m9, m10 := (xz+wy)*sx, (yz-wx)*sy, (1-(xx+yy))*sz

	return [6]float32{
		m0*m0 + m1*m1 + m2*m2,
		m0*m4 + m1*m5 + m2*m6,
		m0*m8 + m1*m9 + m2*m10,
		m4*m4 + m5*m5 + m6*m6,
		m4*m8 + m5*m9 + m6*m10,
		m8*m8 + m9*m9 + m10*m10,
	}
}

// EncodeCovariance normalises cov by its largest magnitude and converts the
// result to half floats. The factor must be kept to decode.
func EncodeCovariance(cov [6]float32) (factor float32, enc [6]half.Half, err error) {
	for _, c := range cov {
		factor = math32.Max(factor, math32.Abs(c))
	}
	if !(factor > 0) || math32.IsInf(factor, 0) {
		return 0, enc, ErrDegenerateScale
	}
	for i, c := range cov {
		enc[i] = half.FromFloat32(c / factor)
	}
	return factor, enc, nil
}

func DecodeCovariance(factor float32, enc [6]half.Half) [6]float32 {
	var cov [6]float32
	for i, h := range enc {
		cov[i] = h.Float32() * factor
	}
	return cov
}
