package splat

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mrjoshuak/go-openexr/half"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCovariance_IdentityRotationUnitScale(t *testing.T) {
	cov := Covariance(mgl32.QuatIdent(), mgl32.Vec3{1, 1, 1})
	assert.InDeltaSlice(t, []float32{1, 0, 0, 1, 0, 1}, cov[:], 1e-6)

	factor, enc, err := EncodeCovariance(cov)
	require.NoError(t, err)
	assert.Equal(t, float32(1), factor)
	assert.Equal(t, half.FromFloat32(1), enc[0])
	assert.Equal(t, half.FromFloat32(0), enc[1])
	assert.Equal(t, half.FromFloat32(1), enc[3])
	assert.Equal(t, half.FromFloat32(1), enc[5])
}

func TestCovariance_RotatedAxisSwapsVariances(t *testing.T) {
	q := mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 0, 1})
	cov := Covariance(q, mgl32.Vec3{2, 1, 1})

	// The long axis now points along Y.
	assert.InDelta(t, 1, cov[0], 1e-5)
	assert.InDelta(t, 0, cov[1], 1e-5)
	assert.InDelta(t, 4, cov[3], 1e-5)
	assert.InDelta(t, 1, cov[5], 1e-5)
}

func TestCovariance_DiagonalRotationSign(t *testing.T) {
	q := mgl32.QuatRotate(mgl32.DegToRad(45), mgl32.Vec3{0, 0, 1})
	cov := Covariance(q, mgl32.Vec3{2, 1, 1})

	assert.InDelta(t, 2.5, cov[0], 1e-5)
	assert.InDelta(t, -1.5, cov[1], 1e-5)
	assert.InDelta(t, 0, cov[2], 1e-5)
	assert.InDelta(t, 2.5, cov[3], 1e-5)
	assert.InDelta(t, 0, cov[4], 1e-5)
	assert.InDelta(t, 1, cov[5], 1e-5)
}

func TestCovariance_IsSymmetricPositive(t *testing.T) {
	q := mgl32.AnglesToQuat(0.3, -1.1, 2.4, mgl32.XYZ).Normalize()
	scale := mgl32.Vec3{0.5, 3, 1.5}
	cov := Covariance(q, scale)

	r := q.Mat4().Mat3()
	s := mgl32.Diag3(scale)
	full := r.Transpose().Mul3(s).Mul3(s).Mul3(r)
	assert.InDelta(t, full.At(0, 0), cov[0], 1e-4)
	assert.InDelta(t, full.At(0, 1), cov[1], 1e-4)
	assert.InDelta(t, full.At(0, 2), cov[2], 1e-4)
	assert.InDelta(t, full.At(1, 1), cov[3], 1e-4)
	assert.InDelta(t, full.At(1, 2), cov[4], 1e-4)
	assert.InDelta(t, full.At(2, 2), cov[5], 1e-4)
	assert.Greater(t, cov[0], float32(0))
	assert.Greater(t, cov[3], float32(0))
	assert.Greater(t, cov[5], float32(0))
}

func TestEncodeCovariance_RoundTripsWithinHalfPrecision(t *testing.T) {
	cov := [6]float32{12.5, -3.25, 0.75, 40, 8, 0.002}
	factor, enc, err := EncodeCovariance(cov)
	require.NoError(t, err)
	assert.Equal(t, float32(40), factor)

	decoded := DecodeCovariance(factor, enc)
	for i := range cov {
		assert.InDelta(t, cov[i], decoded[i], 40*1e-3, "component %d", i)
	}
}

func TestEncodeCovariance_Degenerate(t *testing.T) {
	_, _, err := EncodeCovariance([6]float32{})
	assert.ErrorIs(t, err, ErrDegenerateScale)
}
