package gsplat

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

type WindowState struct {
	windowGlfw   *glfw.Window
	WindowWidth  int
	WindowHeight int
	windowTitle  string
	// Resized is set for the frame in which the framebuffer size changed.
	Resized bool
}

// PlatformWindowModule ensures a single shared GLFW window (WindowState) is created
// and made available as a resource for the GPU module.
// Install is idempotent: if a WindowState resource already exists, it is reused.
type PlatformWindowModule struct {
	Width  int
	Height int
	Title  string
}

// NewPlatformWindow creates a module that provides a shared WindowState resource.
// If Width/Height are zero, sensible defaults are used.
func NewPlatformWindow(width, height int, title string) *PlatformWindowModule {
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}
	if title == "" {
		title = "gsplat"
	}
	return &PlatformWindowModule{
		Width:  width,
		Height: height,
		Title:  title,
	}
}

func (m PlatformWindowModule) Install(app *App, cmd *Commands) {
	if _, ok := Resource[WindowState](app); ok {
		return
	}

	ws, err := createWindowState(m.Width, m.Height, m.Title)
	if err != nil {
		panic(err)
	}
	app.addResources(ws)
	app.UseSystem(System(windowEventsSystem).InStage(PreUpdate))
	app.UseSystem(System(windowShutdownSystem).InStage(Shutdown))
}

func createWindowState(windowWidth int, windowHeight int, windowTitle string) (*WindowState, error) {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("window: glfw init: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // WebGPU owns the surface
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(windowWidth, windowHeight, windowTitle, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("window: create: %w", err)
	}

	return &WindowState{
		windowGlfw:   win,
		WindowWidth:  windowWidth,
		WindowHeight: windowHeight,
		windowTitle:  windowTitle,
	}, nil
}

func windowEventsSystem(ws *WindowState, cmd *Commands) {
	glfw.PollEvents()
	if ws.windowGlfw.ShouldClose() || ws.windowGlfw.GetKey(glfw.KeyEscape) == glfw.Press {
		cmd.Exit()
	}
	w, h := ws.windowGlfw.GetFramebufferSize()
	ws.Resized = w > 0 && h > 0 && (w != ws.WindowWidth || h != ws.WindowHeight)
	if ws.Resized {
		ws.WindowWidth, ws.WindowHeight = w, h
	}
}

func windowShutdownSystem(ws *WindowState) {
	ws.windowGlfw.Destroy()
	glfw.Terminate()
}
