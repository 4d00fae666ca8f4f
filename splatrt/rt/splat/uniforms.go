package splat

import (
	"github.com/gekko3d/gsplat/splatrt/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// Uniforms is the per-frame state the splat shader needs to rebuild each
// splat's screen-space ellipse.
type Uniforms struct {
	InvViewport     mgl32.Vec2
	Focal           mgl32.Vec2
	DataTextureSize mgl32.Vec2
	SHDegree        int
}

// ComputeUniforms derives the focal length in pixels from the projection's
// diagonal and the viewport size.
func ComputeUniforms(cam *core.Camera, texWidth, texHeight, shDegree int) Uniforms {
	w, h := float32(cam.ViewportWidth), float32(cam.ViewportHeight)
	u := Uniforms{
		Focal: mgl32.Vec2{
			cam.Projection[0] * 0.5 * w,
			cam.Projection[5] * 0.5 * h,
		},
		DataTextureSize: mgl32.Vec2{float32(texWidth), float32(texHeight)},
		SHDegree:        shDegree,
	}
	if w > 0 && h > 0 {
		u.InvViewport = mgl32.Vec2{1 / w, 1 / h}
	}
	return u
}
