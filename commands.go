package gsplat

type Commands struct {
	app *App
}

func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

func (cmd *Commands) UseSystem(system systemScheduleBuilder) *Commands {
	cmd.app.UseSystem(system)
	return cmd
}

// Exit ends the frame loop after the current frame.
func (cmd *Commands) Exit() {
	cmd.app.requestExit()
}

func (cmd *Commands) Frames() uint64 {
	return cmd.app.frames
}
