package main

import (
	"flag"
	"log"

	"github.com/pudnax/nuance/engine"
	"github.com/pudnax/nuance/engine/renderer"
	"github.com/pudnax/nuance/engine/window"
)

func main() {
	fps := flag.Float64("fps", 30, "target framerate (0 = uncapped)")
	width := flag.Int("width", 1280, "initial window width in pixels")
	height := flag.Int("height", 720, "initial window height in pixels")
	software := flag.Bool("software", false, "force a software fallback adapter")
	uncapped := flag.Bool("uncapped", false, "present without vsync")
	profile := flag.Bool("profile", false, "log frame timing statistics")
	flag.Parse()

	opts := []engine.EngineBuilderOption{
		engine.WithTargetFramerate(*fps),
		engine.WithProfiling(*profile),
		engine.WithForceSoftwareRenderer(*software),
		engine.WithWindow(window.NewWindow(
			window.WithTitle("Nuance"),
			window.WithWidth(*width),
			window.WithHeight(*height),
			// A zero-area surface cannot be configured, so keep the
			// window from shrinking to nothing.
			window.WithSizeLimits(320, 240, 0, 0),
		)),
	}
	if *uncapped {
		opts = append(opts, engine.WithPresentMode(renderer.PresentModeUncapped))
	}
	// The first positional argument is the shader file to load and watch.
	// Without one, the embedded default shader renders.
	if path := flag.Arg(0); path != "" {
		opts = append(opts, engine.WithShader(path))
	}

	eng, err := engine.NewEngine(opts...)
	if err != nil {
		log.Fatalf("[Nuance] failed to initialize: %v", err)
	}
	if err := eng.Run(); err != nil {
		log.Fatalf("[Nuance] %v", err)
	}
}
