package gsplat

import (
	"testing"
	"time"

	"github.com/gekko3d/gsplat/splatrt/rt/core"
	"github.com/stretchr/testify/assert"
)

func TestInput_EdgeFlags(t *testing.T) {
	var in Input
	in.set(KeySpace, true)
	assert.True(t, in.JustPressed[KeySpace])
	in.set(KeySpace, true)
	assert.False(t, in.JustPressed[KeySpace])
	assert.True(t, in.Pressed[KeySpace])
	in.set(KeySpace, false)
	assert.True(t, in.JustReleased[KeySpace])
	assert.False(t, in.Pressed[KeySpace])
}

func TestOrbitControl(t *testing.T) {
	orbit := &OrbitCamera{State: core.NewCameraState(), Radius: 10, Speed: 0.2}
	tm := &Time{Dt: 500 * time.Millisecond}

	var in Input
	in.set(KeyRight, true)
	in.set(KeyUp, true)
	in.set(KeyEqual, true)
	orbitControlSystem(&in, orbit, tm)
	assert.InDelta(t, 0.6, orbit.Yaw, 1e-5)
	assert.InDelta(t, 0.6, orbit.Pitch, 1e-5)
	assert.InDelta(t, 10/1.75, orbit.Radius, 1e-4)

	for i := 0; i < 10; i++ {
		orbitControlSystem(&in, orbit, tm)
	}
	assert.InDelta(t, orbitMaxPitch, orbit.Pitch, 1e-6, "pitch is clamped")

	in = Input{}
	in.set(KeySpace, true)
	orbitControlSystem(&in, orbit, tm)
	assert.Zero(t, orbit.Speed)
	in.set(KeySpace, false)
	in.set(KeySpace, true)
	orbitControlSystem(&in, orbit, tm)
	assert.InDelta(t, 0.2, orbit.Speed, 1e-6)

	in = Input{MouseDeltaX: 100}
	yaw := orbit.Yaw
	orbitControlSystem(&in, orbit, &Time{})
	assert.InDelta(t, yaw+0.5, orbit.Yaw, 1e-5)
}
