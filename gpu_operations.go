package gsplat

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/gekko3d/gsplat/splatrt/rt/core"
	"github.com/gekko3d/gsplat/splatrt/rt/gpu"
)

type GpuState struct {
	surface       *wgpu.Surface
	adapter       *wgpu.Adapter
	device        *wgpu.Device
	queue         *wgpu.Queue
	surfaceConfig *wgpu.SurfaceConfiguration

	ClearColor wgpu.Color
	log        Logger
}

// RenderDevice is the resource splat meshes allocate their textures from.
type RenderDevice struct {
	Device core.Device
}

// GpuModule opens a WebGPU device on the shared window and exposes it as the
// RenderDevice. Requires PlatformWindowModule to be installed first.
type GpuModule struct{}

func (m GpuModule) Install(app *App, cmd *Commands) {
	ws, ok := Resource[WindowState](app)
	if !ok {
		panic("GpuModule requires PlatformWindowModule")
	}
	gs, err := createGpuState(ws)
	if err != nil {
		panic(err)
	}
	gs.log = app.Logger()
	app.addResources(gs, &RenderDevice{Device: gpu.NewWgpuDevice(gs.device)})
	app.UseSystem(System(gpuResizeSystem).InStage(PreRender))
	app.UseSystem(System(gpuPresentSystem).InStage(Render))
	app.UseSystem(System(gpuShutdownSystem).InStage(Shutdown))
}

func createGpuState(s *WindowState) (*GpuState, error) {
	instance := wgpu.CreateInstance(nil)
	defer instance.Release()
	// wraps GLFW window into a wgpu surface.
	surface := instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(s.windowGlfw))
	// finds a suitable GPU (discrete GPU preferred)
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: request adapter: %w", err)
	}
	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Splat Device",
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: request device: %w", err)
	}
	queue := device.GetQueue()

	caps := surface.GetCapabilities(adapter)
	surfaceConfig := wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(s.WindowWidth),
		Height:      uint32(s.WindowHeight),
		PresentMode: wgpu.PresentModeFifo, // vsync
		AlphaMode:   caps.AlphaModes[0],
	}

	surface.Configure(adapter, device, &surfaceConfig)

	return &GpuState{
		surface:       surface,
		adapter:       adapter,
		device:        device,
		queue:         queue,
		surfaceConfig: &surfaceConfig,
		ClearColor:    wgpu.Color{R: 0.05, G: 0.05, B: 0.08, A: 1.0},
	}, nil
}

func gpuResizeSystem(ws *WindowState, gs *GpuState) {
	if !ws.Resized {
		return
	}
	gs.surfaceConfig.Width = uint32(ws.WindowWidth)
	gs.surfaceConfig.Height = uint32(ws.WindowHeight)
	gs.surface.Configure(gs.adapter, gs.device, gs.surfaceConfig)
}

// gpuPresentSystem clears and presents the frame. Splat shading binds the
// mesh textures, uniforms and index buffers into this pass.
func gpuPresentSystem(gs *GpuState) {
	log := gs.log
	nextTexture, err := gs.surface.GetCurrentTexture()
	if err != nil {
		log.Errorf("gpu: acquire surface texture: %v", err)
		return
	}
	view, err := nextTexture.CreateView(nil)
	if err != nil {
		log.Errorf("gpu: create view: %v", err)
		return
	}
	defer view.Release()

	encoder, err := gs.device.CreateCommandEncoder(nil)
	if err != nil {
		log.Errorf("gpu: create encoder: %v", err)
		return
	}
	defer encoder.Release()

	renderPass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: gs.ClearColor,
			},
		},
	})
	defer renderPass.Release()
	if err := renderPass.End(); err != nil {
		log.Errorf("gpu: end pass: %v", err)
		return
	}

	cmdBuffer, err := encoder.Finish(nil)
	if err != nil {
		log.Errorf("gpu: finish: %v", err)
		return
	}
	defer cmdBuffer.Release()

	gs.queue.Submit(cmdBuffer)
	gs.surface.Present()
}

func gpuShutdownSystem(gs *GpuState) {
	gs.queue.Release()
	gs.device.Release()
	gs.adapter.Release()
	gs.surface.Release()
}
