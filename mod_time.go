package gsplat

import (
	"time"
)

type Time struct {
	Time  time.Time
	Dt    time.Duration
	Frame uint64
}

// Seconds is Dt in seconds.
func (t *Time) Seconds() float32 {
	return float32(t.Dt.Seconds())
}

// TimeModule keeps the Time resource current. MaxFrames > 0 ends the app after
// that many frames.
type TimeModule struct {
	MaxFrames uint64
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Time{
		Time: time.Now(),
		Dt:   0,
	})
	app.UseSystem(System(timeSystem).InStage(Prelude))
	if mod.MaxFrames > 0 {
		limit := mod.MaxFrames
		app.UseSystem(System(func(t *Time, cmd *Commands) {
			if t.Frame >= limit {
				cmd.Exit()
			}
		}).InStage(Finale))
	}
}

func timeSystem(timeResource *Time) {
	now := time.Now()

	timeResource.Dt = now.Sub(timeResource.Time)
	timeResource.Time = now
	timeResource.Frame++
}
