package main

import (
	"flag"
	"log"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/xlab/closer"

	"github.com/kbjakex/voxels03/internal/config"
	"github.com/kbjakex/voxels03/internal/game"
	"github.com/kbjakex/voxels03/internal/graphics/renderables/chunks"
	"github.com/kbjakex/voxels03/internal/graphics/renderables/overlay"
	"github.com/kbjakex/voxels03/internal/graphics/renderer"
	"github.com/kbjakex/voxels03/internal/input"
	"github.com/kbjakex/voxels03/internal/registry"
	"github.com/kbjakex/voxels03/internal/world"
)

func init() {
	// GLFW event handling and every GL call have to stay on this thread.
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "path to a yaml config file (or set VOXELS_CONFIG)")
	flag.Parse()

	if err := config.LoadFile(*configPath); err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := glfw.Init(); err != nil {
		log.Fatalf("glfw: %v", err)
	}
	closer.Bind(glfw.Terminate)
	defer closer.Close()

	window, err := game.SetupWindow()
	if err != nil {
		closer.Fatalln("window:", err)
	}

	gen := world.NewGenerator(config.GetWorldMode(), config.GetWorldSeed(), registry.Palette())
	w := world.New(gen)
	cam := game.NewFlyCam(mgl32.Vec3{16, 48, 16})

	r, err := renderer.NewRenderer(game.WindowWidth, game.WindowHeight,
		chunks.NewChunks(), overlay.NewOverlay())
	if err != nil {
		closer.Fatalln("renderer:", err)
	}
	closer.Bind(r.Dispose)

	// The window manager may have opened the window at a different size than
	// requested; sync the camera and overlay before the first frame.
	winW, winH := window.GetSize()
	r.SetViewport(winW, winH)

	app := game.NewApp(window, input.NewInputManager(), w, cam, r)
	app.Run()
}
