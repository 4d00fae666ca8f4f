// Command splatview streams a synthetic Gaussian-splat tile grid into splat
// meshes and renders it with an orbiting camera, in a window or headless.
package main

import (
	"flag"
	"fmt"
	"image"
	"os"

	"github.com/gekko3d/gsplat"
	"golang.org/x/image/bmp"
)

func main() {
	configPath := flag.String("config", "", "TOML or YAML config file")
	headless := flag.Bool("headless", false, "run without a window on a host-memory device")
	frames := flag.Uint64("frames", 0, "stop after this many frames (headless default 120)")
	dump := flag.String("dump", "", "write the first tile's packed colour texture to this BMP file on exit")
	debug := flag.Bool("debug", false, "enable debug logging")
	columns := flag.Int("columns", 0, "override scene columns")
	rows := flag.Int("rows", 0, "override scene rows")
	splats := flag.Int("splats", 0, "override splats per tile")
	flag.Parse()

	cfg := gsplat.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = gsplat.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	if *headless {
		cfg.Window.Headless = true
	}
	if *debug {
		cfg.Logging.Debug = true
	}
	if *columns > 0 {
		cfg.Scene.Columns = *columns
	}
	if *rows > 0 {
		cfg.Scene.Rows = *rows
	}
	if *splats > 0 {
		cfg.Scene.SplatsPerTile = *splats
	}
	maxFrames := *frames
	if cfg.Window.Headless && maxFrames == 0 {
		maxFrames = 120
	}

	tileOpts := cfg.Scene.TileOptions()
	builder := gsplat.NewAppBuilder().
		UseModule(gsplat.LoggingModule{Prefix: cfg.Logging.Prefix, Debug: cfg.Logging.Debug, File: cfg.Logging.File}).
		UseModule(gsplat.TimeModule{MaxFrames: maxFrames})
	if !cfg.Window.Headless {
		builder.UseModule(
			gsplat.NewPlatformWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title),
			gsplat.GpuModule{},
		)
	}
	builder.UseModule(gsplat.SplatModule{
		Config:        cfg.Splat.Packer(),
		Tiles:         &tileOpts,
		Width:         cfg.Window.Width,
		Height:        cfg.Window.Height,
		FlattenOrderZ: cfg.Scene.FlattenOrderZ,
	})
	if !cfg.Window.Headless {
		builder.UseModule(gsplat.InputModule{})
	}
	app := builder.Build()

	// Registered last, so it runs before the meshes are released.
	app.UseSystem(gsplat.System(func(scene *gsplat.SplatScene, prof *gsplat.Profiler) {
		log := app.Logger()
		meshes := scene.Meshes()
		log.Infof("splatview: %d/%d tiles loaded, %d failed, %d visible", scene.Loaded(), len(meshes), scene.Failed(), len(scene.Visible))
		log.Infof("splatview: frame profile\n%s", prof)
		if *dump == "" || len(meshes) == 0 {
			return
		}
		if err := dumpColors(*dump, meshes[0]); err != nil {
			log.Errorf("splatview: %v", err)
			return
		}
		log.Infof("splatview: wrote %s", *dump)
	}).InStage(gsplat.Shutdown))

	app.Run()
}

type colorSource interface {
	ColorImage() *image.RGBA
}

func dumpColors(path string, src colorSource) error {
	img := src.ColorImage()
	if img == nil {
		return fmt.Errorf("dump: mesh has no packed colours yet")
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dump: %w", err)
	}
	if err := bmp.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("dump: encode %s: %w", path, err)
	}
	return f.Close()
}
