package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Transform places a tile relative to its parent tile. Streamed tilesets often
// ship a full 4x4 placement per tile; when Matrix is set it wins over the
// translation, rotation and scale fields.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
	Matrix   *mgl32.Mat4
}

func NewTransform() *Transform {
	return &Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// TransformFromMatrix wraps a placement matrix as delivered by a tile source.
func TransformFromMatrix(m mgl32.Mat4) *Transform {
	t := NewTransform()
	t.Matrix = &m
	return t
}

// Local is the tile-to-parent matrix, T * R * S for the field form.
func (t *Transform) Local() mgl32.Mat4 {
	if t.Matrix != nil {
		return *t.Matrix
	}
	return mgl32.Translate3D(t.Position[0], t.Position[1], t.Position[2]).
		Mul4(t.Rotation.Mat4()).
		Mul4(mgl32.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2]))
}

// ParentToLocal inverts Local.
func (t *Transform) ParentToLocal() mgl32.Mat4 {
	if t.Matrix != nil {
		return t.Matrix.Inv()
	}
	return mgl32.Scale3D(1/t.Scale[0], 1/t.Scale[1], 1/t.Scale[2]).
		Mul4(t.Rotation.Conjugate().Mat4()).
		Mul4(mgl32.Translate3D(-t.Position[0], -t.Position[1], -t.Position[2]))
}

// Origin is the tile's local origin expressed in the parent frame.
func (t *Transform) Origin() mgl32.Vec3 {
	return t.Local().Col(3).Vec3()
}
