package gsplat

import (
	"context"

	"github.com/chewxy/math32"
	"github.com/gekko3d/gsplat/splatrt/rt/core"
	"github.com/gekko3d/gsplat/splatrt/rt/coroutine"
	"github.com/gekko3d/gsplat/splatrt/rt/gpu"
	"github.com/gekko3d/gsplat/splatrt/rt/order"
	"github.com/gekko3d/gsplat/splatrt/rt/splat"
	"github.com/gekko3d/gsplat/splatrt/rt/tiles"
	"github.com/go-gl/mathgl/mgl32"
)

// SplatScene is the resource holding the streamed tile tree and the state the
// per-frame splat systems share.
type SplatScene struct {
	Root        *order.Tile
	Queue       *coroutine.FrameQueue
	Coordinator *order.Coordinator
	Tasks       []*coroutine.Task

	// Camera and Visible are refreshed every frame by the order system.
	Camera  *core.Camera
	Visible []order.Renderable

	loaded int
	failed int
}

// Loaded is the number of tiles whose ingestion finished successfully.
func (s *SplatScene) Loaded() int { return s.loaded }
func (s *SplatScene) Failed() int { return s.failed }

// Meshes lists the splat meshes of the tile tree in depth-first order.
func (s *SplatScene) Meshes() []*splat.Mesh {
	var meshes []*splat.Mesh
	s.Root.Walk(func(t *order.Tile) bool {
		if m, ok := t.Content.(*splat.Mesh); ok {
			meshes = append(meshes, m)
		}
		return true
	})
	return meshes
}

// Viewport is the size of the render target in pixels.
type Viewport struct {
	Width  int
	Height int

	// FlattenOrderZ sets order.Coordinator.FlattenLocalZ.
	FlattenOrderZ bool
}

// OrbitCamera circles Target at Radius, advancing Yaw by Speed radians per second.
type OrbitCamera struct {
	State  *core.CameraState
	Target mgl32.Vec3
	Radius float32
	Yaw    float32
	Pitch  float32
	Speed  float32

	pausedSpeed float32
}

// SplatModule streams a synthetic tile grid into splat meshes and drives them
// every frame: it pumps chunked ingestion, orbits the camera, orders the
// visible meshes back-to-front and runs their per-frame hooks.
// Requires TimeModule. Uses the RenderDevice resource when present and a host
// memory device otherwise.
type SplatModule struct {
	Config splat.Config
	// Tiles describes the synthetic scene; nil starts with an empty tree.
	Tiles *tiles.Options
	// Width and Height size the viewport when no window is installed.
	Width  int
	Height int
}

func (m SplatModule) Install(app *App, cmd *Commands) {
	log := app.Logger()

	rd, ok := Resource[RenderDevice](app)
	if !ok {
		log.Infof("splats: no render device, using host memory")
		rd = &RenderDevice{Device: gpu.NewHostDevice()}
		app.addResources(rd)
	}

	scene := &SplatScene{
		Root:        order.NewTile("root", nil),
		Queue:       coroutine.NewFrameQueue(),
		Coordinator: order.NewCoordinator(log),
	}
	scene.Coordinator.FlattenLocalZ = m.FlattenOrderZ

	orbit := &OrbitCamera{
		State:  core.NewCameraState(),
		Radius: 20,
		Pitch:  -0.45,
		Speed:  0.2,
	}

	if m.Tiles != nil {
		data, err := tiles.Generate(context.Background(), *m.Tiles)
		if err != nil {
			log.Errorf("splats: generate tiles: %v", err)
		} else {
			loader := &tiles.Loader{Device: rd.Device, Config: m.Config, Log: log, Sched: scene.Queue}
			root, tasks, err := loader.Build(data)
			if err != nil {
				log.Errorf("splats: build tiles: %v", err)
			} else {
				scene.Root = root
				scene.Tasks = tasks
			}
		}
		extent := float32(max(m.Tiles.Columns, m.Tiles.Rows)) * m.Tiles.TileSize
		if extent > 0 {
			orbit.Radius = extent * 0.9
		}
	}
	for _, task := range scene.Tasks {
		task.OnDone(func(err error) {
			if err != nil {
				scene.failed++
				return
			}
			scene.loaded++
		})
	}

	width, height := m.Width, m.Height
	if width <= 0 || height <= 0 {
		width, height = 1280, 720
	}
	viewport := &Viewport{Width: width, Height: height}
	if ws, ok := Resource[WindowState](app); ok {
		viewport.Width, viewport.Height = ws.WindowWidth, ws.WindowHeight
		app.UseSystem(System(viewportFromWindowSystem).InStage(PreUpdate))
	}

	if _, ok := Resource[Profiler](app); !ok {
		app.addResources(NewProfiler())
	}
	app.addResources(scene, orbit, viewport)
	app.UseSystem(System(splatStreamingSystem).InStage(PreUpdate))
	app.UseSystem(System(orbitCameraSystem).InStage(Update))
	app.UseSystem(System(splatOrderSystem).InStage(PostUpdate))
	app.UseSystem(System(splatBeforeDrawSystem).InStage(PreRender))
	app.UseSystem(System(splatShutdownSystem).InStage(Shutdown))
}

func viewportFromWindowSystem(ws *WindowState, vp *Viewport) {
	vp.Width, vp.Height = ws.WindowWidth, ws.WindowHeight
}

// splatStreamingSystem resumes suspended ingestions, one chunk each per frame.
func splatStreamingSystem(scene *SplatScene, prof *Profiler) {
	prof.Measure("streaming", func() { scene.Queue.Pump() })
	prof.SetCount("tiles loaded", scene.loaded)
}

func orbitCameraSystem(orbit *OrbitCamera, t *Time) {
	orbit.Yaw += orbit.Speed * t.Seconds()
	if orbit.Yaw > 2*math32.Pi {
		orbit.Yaw -= 2 * math32.Pi
	}
	orbit.State.OrbitAround(orbit.Target, orbit.Radius, orbit.Yaw, orbit.Pitch)
}

func splatOrderSystem(scene *SplatScene, orbit *OrbitCamera, vp *Viewport, prof *Profiler) {
	scene.Camera = orbit.State.Camera(vp.Width, vp.Height)
	prof.Measure("order", func() {
		scene.Visible = scene.Coordinator.Update(scene.Camera, scene.Root)
	})
	prof.SetCount("visible", len(scene.Visible))
	prof.SetCount("culled", scene.Coordinator.Culled())
}

func splatBeforeDrawSystem(scene *SplatScene, prof *Profiler) {
	prof.Measure("before draw", func() {
		for _, r := range scene.Visible {
			r.OnBeforeDraw(scene.Camera)
		}
	})
}

func splatShutdownSystem(scene *SplatScene) {
	scene.Root.Release()
	scene.Visible = nil
}
