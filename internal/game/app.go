package game

import (
	"fmt"
	"log"
	"math"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/kbjakex/voxels03/internal/config"
	"github.com/kbjakex/voxels03/internal/graphics/renderer"
	"github.com/kbjakex/voxels03/internal/input"
	"github.com/kbjakex/voxels03/internal/meshing"
	"github.com/kbjakex/voxels03/internal/profiling"
	"github.com/kbjakex/voxels03/internal/registry"
	"github.com/kbjakex/voxels03/internal/snapshot"
	"github.com/kbjakex/voxels03/internal/world"
)

const (
	// editReach caps how far block edits pick, in world units.
	editReach = 8.0

	// ensureBatch caps chunk generations per EnsureAround call so one tick
	// never stalls on terrain. While loading runs every frame; once caught
	// up the scan drops to ensureIdleEvery.
	ensureBatch     = 8
	ensureIdleEvery = 250 * time.Millisecond

	evictEvery = time.Second
)

// App owns the window, the frame loop and everything hanging off it. One
// instance, one OS thread, created after the GL context is current.
type App struct {
	window   *glfw.Window
	im       *input.InputManager
	world    *world.World
	cam      *FlyCam
	renderer *renderer.Renderer
	limiter  *FPSLimiter

	paused bool

	lastTime     time.Time
	lastEnsure   time.Time
	lastEvict    time.Time
	streamCenter world.ChunkCoord
	streaming    bool
}

func NewApp(window *glfw.Window, im *input.InputManager, w *world.World, cam *FlyCam, r *renderer.Renderer) *App {
	a := &App{
		window:   window,
		im:       im,
		world:    w,
		cam:      cam,
		renderer: r,
		limiter:  NewFPSLimiter(),
		paused:   false,
		lastTime: time.Now(),
		// force a full stream pass on the first tick
		streaming: true,
	}
	a.setupCallbacks()
	return a
}

func (a *App) Run() {
	for !a.window.ShouldClose() {
		a.tick()
	}
}

func (a *App) tick() {
	profiling.ResetFrame()
	start := time.Now()
	dt := start.Sub(a.lastTime).Seconds()
	a.lastTime = start

	glfw.PollEvents()

	if a.im.JustPressed(input.ActionPause) {
		a.setPaused(!a.paused)
	}
	if a.im.JustPressed(input.ActionToggleOverlay) {
		config.ToggleOverlay()
	}
	if a.im.JustPressed(input.ActionSnapshot) {
		a.dumpSnapshot()
	}

	if !a.paused {
		func() {
			defer profiling.Track("game.camera")()
			a.cam.Update(dt, a.im)
		}()
		a.handleEdits()
		a.streamChunks()
	}

	a.renderer.Render(a.world, a.cam.View(), a.cam.Position, dt)
	a.window.SwapBuffers()

	if d := time.Since(start); d > 16*time.Millisecond {
		log.Printf("slow frame: %v, top tasks: %s", d, profiling.TopN(5))
	}

	a.im.PostUpdate()
	a.limiter.Wait(a.paused)
}

// setPaused releases or recaptures the cursor. Recapture resets FirstMouse so
// the camera does not jump by the distance the cursor travelled while free.
func (a *App) setPaused(paused bool) {
	a.paused = paused
	if paused {
		a.window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
		w, h := a.window.GetSize()
		a.window.SetCursorPos(float64(w)/2, float64(h)/2)
	} else {
		a.window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
		a.cam.FirstMouse = true
	}
}

func (a *App) handleEdits() {
	remove := a.im.JustPressed(input.ActionRemoveBlock)
	place := a.im.JustPressed(input.ActionPlaceBlock)
	if !remove && !place {
		return
	}

	hit := RaycastSolid(a.world, a.cam.Position, a.cam.Front(), editReach)
	if !hit.Hit {
		return
	}
	if remove {
		a.world.SetBlock(hit.Block[0], hit.Block[1], hit.Block[2], world.Air)
	} else {
		a.world.SetBlock(hit.Prev[0], hit.Prev[1], hit.Prev[2], registry.Block(registry.StoneID))
	}
}

// streamChunks generates terrain around the camera and drops chunks far
// behind it. Generation runs every frame while chunks are still missing,
// then falls back to a slow poll until the camera moves to a new cell.
func (a *App) streamChunks() {
	now := time.Now()
	center := world.ChunkCoordAt(
		int(math.Floor(float64(a.cam.Position.X()))),
		int(math.Floor(float64(a.cam.Position.Y()))),
		int(math.Floor(float64(a.cam.Position.Z()))),
	)
	if center != a.streamCenter {
		a.streamCenter = center
		a.streaming = true
	}

	if a.streaming || now.Sub(a.lastEnsure) >= ensureIdleEvery {
		func() {
			defer profiling.Track("world.EnsureAround")()
			n := a.world.EnsureAround(center, config.GetChunkLoadRadius(), ensureBatch)
			a.streaming = n > 0
		}()
		a.lastEnsure = now
	}

	if now.Sub(a.lastEvict) >= evictEvery {
		func() {
			defer profiling.Track("world.RemoveBeyond")()
			a.world.Store().RemoveBeyond(center, config.GetChunkEvictRadius())
		}()
		a.lastEvict = now
	}
}

// dumpSnapshot captures the face sequence of the chunk the camera is inside
// and writes it next to the binary for offline inspection.
func (a *App) dumpSnapshot() {
	coord := world.ChunkCoordAt(
		int(math.Floor(float64(a.cam.Position.X()))),
		int(math.Floor(float64(a.cam.Position.Y()))),
		int(math.Floor(float64(a.cam.Position.Z()))),
	)
	c := a.world.Chunk(coord)
	if c == nil {
		log.Printf("snapshot: chunk %v not loaded", coord)
		return
	}
	words, err := meshing.ChunkFaces(c, a.world)
	if err != nil {
		log.Printf("snapshot: meshing chunk %v: %v", coord, err)
		return
	}
	path := fmt.Sprintf("chunk_%d_%d_%d.vxfs", coord.X, coord.Y, coord.Z)
	if err := snapshot.WriteFile(path, snapshot.Snapshot{Coord: coord, Words: words}); err != nil {
		log.Printf("snapshot: writing %s: %v", path, err)
		return
	}
	log.Printf("snapshot: wrote %s (%d faces)", path, len(words))
}

func (a *App) setupCallbacks() {
	a.window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		if !a.paused {
			a.cam.HandleMouseMovement(xpos, ypos)
		}
	})

	a.window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		a.im.HandleMouseButtonEvent(button, action)
	})

	a.window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		a.im.HandleKeyEvent(key, action)
	})

	// The GL viewport takes framebuffer pixels; the camera aspect and the
	// overlay's pixel projection take logical window coordinates. On HiDPI
	// displays the two differ.
	a.window.SetFramebufferSizeCallback(func(w *glfw.Window, fbWidth, fbHeight int) {
		gl.Viewport(0, 0, int32(fbWidth), int32(fbHeight))
		winW, winH := w.GetSize()
		a.renderer.SetViewport(winW, winH)
	})

	a.window.SetFocusCallback(func(w *glfw.Window, focused bool) {
		if !focused && !a.paused {
			a.setPaused(true)
		}
	})
}
