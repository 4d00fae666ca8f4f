package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera is the per-frame view handed to drawables by the host render loop.
type Camera struct {
	View           mgl32.Mat4 // world to view
	Projection     mgl32.Mat4
	ViewportWidth  int
	ViewportHeight int
}

func NewCamera(view, projection mgl32.Mat4, width, height int) *Camera {
	return &Camera{
		View:           view,
		Projection:     projection,
		ViewportWidth:  width,
		ViewportHeight: height,
	}
}

// World returns the camera-to-world transform.
func (c *Camera) World() mgl32.Mat4 {
	return c.View.Inv()
}

func (c *Camera) Position() mgl32.Vec3 {
	return c.World().Col(3).Vec3()
}

func (c *Camera) ViewProjection() mgl32.Mat4 {
	return c.Projection.Mul4(c.View)
}

func (c *Camera) Frustum() [6]mgl32.Vec4 {
	return ExtractFrustum(c.ViewProjection())
}

// CameraState is an orbit/fly style controller producing a Camera.
// Y is up; yaw 0 looks down -Z.
type CameraState struct {
	Position    mgl32.Vec3
	Yaw         float32
	Pitch       float32
	FovY        float32 // radians
	Near        float32
	Far         float32
	Speed       float32
	Sensitivity float32
}

func NewCameraState() *CameraState {
	return &CameraState{
		Position:    mgl32.Vec3{0, 2, 20},
		FovY:        mgl32.DegToRad(60),
		Near:        0.1,
		Far:         10000,
		Speed:       10.0,
		Sensitivity: 0.003,
	}
}

func (c *CameraState) GetForward() mgl32.Vec3 {
	return mgl32.Vec3{
		float32(math.Cos(float64(c.Pitch)) * math.Sin(float64(c.Yaw))),
		float32(math.Sin(float64(c.Pitch))),
		float32(-math.Cos(float64(c.Pitch)) * math.Cos(float64(c.Yaw))),
	}
}

func (c *CameraState) GetRight() mgl32.Vec3 {
	return mgl32.Vec3{
		float32(math.Cos(float64(c.Yaw))),
		0,
		float32(math.Sin(float64(c.Yaw))),
	}
}

func (c *CameraState) GetViewMatrix() mgl32.Mat4 {
	forward := c.GetForward()
	eye := c.Position
	target := eye.Add(forward)
	up := mgl32.Vec3{0, 1, 0}
	return mgl32.LookAtV(eye, target, up)
}

// OrbitAround places the camera on a sphere of the given radius around target,
// looking at it.
func (c *CameraState) OrbitAround(target mgl32.Vec3, radius, yaw, pitch float32) {
	c.Yaw = yaw
	c.Pitch = pitch
	c.Position = target.Sub(c.GetForward().Mul(radius))
}

func (c *CameraState) Camera(width, height int) *Camera {
	aspect := float32(1)
	if height > 0 {
		aspect = float32(width) / float32(height)
	}
	proj := mgl32.Perspective(c.FovY, aspect, c.Near, c.Far)
	return NewCamera(c.GetViewMatrix(), proj, width, height)
}

// ExtractFrustum extracts the 6 planes of the frustum from the view-projection matrix.
// Returns planes in order: Left, Right, Bottom, Top, Near, Far.
// Plane is Ax + By + Cz + D = 0 with the normal pointing inside.
func ExtractFrustum(vp mgl32.Mat4) [6]mgl32.Vec4 {
	var planes [6]mgl32.Vec4

	row := func(r int) mgl32.Vec4 {
		return mgl32.Vec4{vp.At(r, 0), vp.At(r, 1), vp.At(r, 2), vp.At(r, 3)}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	planes[0] = r3.Add(r0) // left
	planes[1] = r3.Sub(r0) // right
	planes[2] = r3.Add(r1) // bottom
	planes[3] = r3.Sub(r1) // top
	planes[4] = r3.Add(r2) // near (OpenGL-style -1..1)
	planes[5] = r3.Sub(r2) // far

	for i := 0; i < 6; i++ {
		length := float32(math.Sqrt(float64(planes[i][0]*planes[i][0] + planes[i][1]*planes[i][1] + planes[i][2]*planes[i][2])))
		if length > 0 {
			planes[i] = planes[i].Mul(1.0 / length)
		}
	}

	return planes
}
