package gsplat

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	KeyLeft int = iota
	KeyRight
	KeyUp
	KeyDown
	KeyA
	KeyD
	KeyW
	KeyS
	KeyMinus
	KeyEqual
	KeySpace
	MouseButtonLeft
	keyCount
)

// Input is the per-frame keyboard and mouse snapshot.
type Input struct {
	Pressed      [keyCount]bool
	JustPressed  [keyCount]bool
	JustReleased [keyCount]bool

	MouseX, MouseY           float64
	MouseDeltaX, MouseDeltaY float64
}

// set records the new state of key and derives the edge flags.
func (input *Input) set(key int, down bool) {
	input.JustPressed[key] = down && !input.Pressed[key]
	input.JustReleased[key] = !down && input.Pressed[key]
	input.Pressed[key] = down
}

// InputModule polls the shared window and lets the user steer the orbit
// camera: arrows or WASD orbit, -/= zoom, left drag orbits, space pauses the
// automatic rotation. Install after PlatformWindowModule and SplatModule.
type InputModule struct{}

func (mod InputModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Input{})
	app.UseSystem(System(inputSystem).InStage(PreUpdate))
	app.UseSystem(System(orbitControlSystem).InStage(PreUpdate))
}

func inputSystem(s *WindowState, input *Input) {
	for key, glfwKey := range keyToGlfw {
		input.set(key, s.windowGlfw.GetKey(glfwKey) == glfw.Press)
	}
	input.set(MouseButtonLeft, s.windowGlfw.GetMouseButton(glfw.MouseButtonLeft) == glfw.Press)

	mx, my := s.windowGlfw.GetCursorPos()
	if input.Pressed[MouseButtonLeft] && !input.JustPressed[MouseButtonLeft] {
		input.MouseDeltaX = mx - input.MouseX
		input.MouseDeltaY = my - input.MouseY
	} else {
		input.MouseDeltaX = 0
		input.MouseDeltaY = 0
	}
	input.MouseX = mx
	input.MouseY = my
}

const (
	orbitKeySpeed   = 1.2   // radians per second
	orbitDragSpeed  = 0.005 // radians per pixel
	orbitZoomFactor = 1.5   // per second
	orbitMaxPitch   = 1.5
)

// orbitControlSystem runs in PreUpdate, ahead of orbitCameraSystem, which
// applies the result.
func orbitControlSystem(input *Input, orbit *OrbitCamera, t *Time) {
	dt := t.Seconds()

	if input.JustPressed[KeySpace] {
		if orbit.Speed != 0 {
			orbit.pausedSpeed, orbit.Speed = orbit.Speed, 0
		} else {
			orbit.Speed = orbit.pausedSpeed
		}
	}

	var yaw, pitch float32
	if input.Pressed[KeyLeft] || input.Pressed[KeyA] {
		yaw -= orbitKeySpeed * dt
	}
	if input.Pressed[KeyRight] || input.Pressed[KeyD] {
		yaw += orbitKeySpeed * dt
	}
	if input.Pressed[KeyUp] || input.Pressed[KeyW] {
		pitch += orbitKeySpeed * dt
	}
	if input.Pressed[KeyDown] || input.Pressed[KeyS] {
		pitch -= orbitKeySpeed * dt
	}
	yaw += float32(input.MouseDeltaX) * orbitDragSpeed
	pitch -= float32(input.MouseDeltaY) * orbitDragSpeed

	orbit.Yaw += yaw
	orbit.Pitch = math32.Max(-orbitMaxPitch, math32.Min(orbitMaxPitch, orbit.Pitch+pitch))

	if input.Pressed[KeyMinus] {
		orbit.Radius *= 1 + orbitZoomFactor*dt
	}
	if input.Pressed[KeyEqual] {
		orbit.Radius /= 1 + orbitZoomFactor*dt
	}
}

var keyToGlfw = map[int]glfw.Key{
	KeyLeft:  glfw.KeyLeft,
	KeyRight: glfw.KeyRight,
	KeyUp:    glfw.KeyUp,
	KeyDown:  glfw.KeyDown,
	KeyA:     glfw.KeyA,
	KeyD:     glfw.KeyD,
	KeyW:     glfw.KeyW,
	KeyS:     glfw.KeyS,
	KeyMinus: glfw.KeyMinus,
	KeyEqual: glfw.KeyEqual,
	KeySpace: glfw.KeySpace,
}
