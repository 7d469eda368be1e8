package renderer

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/kbjakex/voxels03/internal/graphics"
	"github.com/kbjakex/voxels03/internal/world"
)

// RenderContext provides shared context for all renderables
type RenderContext struct {
	Camera *graphics.Camera
	World  *world.World
	Eye    mgl32.Vec3
	DT     float64
	View   mgl32.Mat4
	Proj   mgl32.Mat4
}

// Renderable interface defines the lifecycle for renderable features
type Renderable interface {
	Init() error
	Render(ctx RenderContext)
	Dispose()
	SetViewport(width, height int)
}
