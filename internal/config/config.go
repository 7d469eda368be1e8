package config

import (
	"runtime"
	"sync"
)

// Settings holds runtime configuration
type Settings struct {
	mu sync.RWMutex

	renderDistance int // in chunks
	fpsLimit       int // 0 disables the limiter
	meshWorkers    int
	atlasBudgetMB  int

	worldMode string
	worldSeed int64

	mouseSensitivity float64
	flySpeed         float64

	showOverlay bool
}

var global = &Settings{
	renderDistance:   6,
	fpsLimit:         120,
	meshWorkers:      defaultMeshWorkers(),
	atlasBudgetMB:    256,
	worldMode:        "terrain",
	worldSeed:        1,
	mouseSensitivity: 0.1,
	flySpeed:         24.0,
	showOverlay:      true,
}

func defaultMeshWorkers() int {
	n := runtime.NumCPU() / 2
	if n < 1 {
		n = 1
	}
	return n
}

// GetRenderDistance returns the render distance in chunks
func GetRenderDistance() int {
	global.mu.RLock()
	defer global.mu.RUnlock()
	return global.renderDistance
}

// SetRenderDistance sets the render distance in chunks
func SetRenderDistance(distance int) {
	global.mu.Lock()
	defer global.mu.Unlock()

	// Clamp to reasonable values
	if distance < 2 {
		distance = 2
	}
	if distance > 32 {
		distance = 32
	}

	global.renderDistance = distance
}

// GetChunkLoadRadius returns the radius for chunk loading
func GetChunkLoadRadius() int {
	return GetRenderDistance()
}

// GetChunkEvictRadius returns the radius beyond which chunks unload
func GetChunkEvictRadius() int {
	return GetRenderDistance() + 2
}

// GetFPSLimit returns the frame rate cap, 0 meaning uncapped
func GetFPSLimit() int {
	global.mu.RLock()
	defer global.mu.RUnlock()
	return global.fpsLimit
}

// SetFPSLimit sets the frame rate cap; 0 disables it
func SetFPSLimit(limit int) {
	global.mu.Lock()
	defer global.mu.Unlock()

	if limit < 0 {
		limit = 0
	}
	if limit > 1000 {
		limit = 1000
	}

	global.fpsLimit = limit
}

// GetMeshWorkers returns the mesh worker goroutine count
func GetMeshWorkers() int {
	global.mu.RLock()
	defer global.mu.RUnlock()
	return global.meshWorkers
}

// SetMeshWorkers sets the mesh worker goroutine count
func SetMeshWorkers(n int) {
	global.mu.Lock()
	defer global.mu.Unlock()

	if n < 1 {
		n = 1
	}
	if n > 32 {
		n = 32
	}

	global.meshWorkers = n
}

// GetAtlasBudgetMB returns the face atlas size cap in MiB
func GetAtlasBudgetMB() int {
	global.mu.RLock()
	defer global.mu.RUnlock()
	return global.atlasBudgetMB
}

// SetAtlasBudgetMB sets the face atlas size cap in MiB
func SetAtlasBudgetMB(mb int) {
	global.mu.Lock()
	defer global.mu.Unlock()

	if mb < 16 {
		mb = 16
	}
	if mb > 2048 {
		mb = 2048
	}

	global.atlasBudgetMB = mb
}

// GetWorldMode returns the world generation mode
func GetWorldMode() string {
	global.mu.RLock()
	defer global.mu.RUnlock()
	return global.worldMode
}

// SetWorldMode sets the world generation mode
func SetWorldMode(mode string) {
	global.mu.Lock()
	defer global.mu.Unlock()

	if mode != "terrain" && mode != "pattern" {
		mode = "terrain"
	}

	global.worldMode = mode
}

// GetWorldSeed returns the world generation seed
func GetWorldSeed() int64 {
	global.mu.RLock()
	defer global.mu.RUnlock()
	return global.worldSeed
}

// SetWorldSeed sets the world generation seed
func SetWorldSeed(seed int64) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.worldSeed = seed
}

// GetMouseSensitivity returns the mouse look sensitivity
func GetMouseSensitivity() float64 {
	global.mu.RLock()
	defer global.mu.RUnlock()
	return global.mouseSensitivity
}

// SetMouseSensitivity sets the mouse look sensitivity
func SetMouseSensitivity(s float64) {
	global.mu.Lock()
	defer global.mu.Unlock()

	if s < 0.01 {
		s = 0.01
	}
	if s > 2.0 {
		s = 2.0
	}

	global.mouseSensitivity = s
}

// GetFlySpeed returns the camera fly speed in blocks per second
func GetFlySpeed() float64 {
	global.mu.RLock()
	defer global.mu.RUnlock()
	return global.flySpeed
}

// SetFlySpeed sets the camera fly speed in blocks per second
func SetFlySpeed(s float64) {
	global.mu.Lock()
	defer global.mu.Unlock()

	if s < 1.0 {
		s = 1.0
	}
	if s > 200.0 {
		s = 200.0
	}

	global.flySpeed = s
}

// GetShowOverlay reports whether the debug overlay is drawn
func GetShowOverlay() bool {
	global.mu.RLock()
	defer global.mu.RUnlock()
	return global.showOverlay
}

// SetShowOverlay toggles the debug overlay
func SetShowOverlay(show bool) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.showOverlay = show
}

// ToggleOverlay flips the overlay flag and returns the new value
func ToggleOverlay() bool {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.showOverlay = !global.showOverlay
	return global.showOverlay
}
