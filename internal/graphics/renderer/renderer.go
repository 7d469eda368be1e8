package renderer

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/kbjakex/voxels03/internal/graphics"
	"github.com/kbjakex/voxels03/internal/profiling"
	"github.com/kbjakex/voxels03/internal/world"
)

// Renderer orchestrates rendering via renderable features
type Renderer struct {
	renderables []Renderable
	camera      *graphics.Camera
}

// NewRenderer creates a renderer and initializes the given renderables in
// order. Faces are emitted counter-clockwise toward their normal, so
// back-face culling with a CCW front face drops the far side of every chunk.
func NewRenderer(width, height int, rs ...Renderable) (*Renderer, error) {
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)

	r := &Renderer{
		renderables: rs,
		camera:      graphics.NewCamera(width, height),
	}
	for _, renderable := range rs {
		if err := renderable.Init(); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Camera returns the projection camera.
func (r *Renderer) Camera() *graphics.Camera {
	return r.camera
}

// Render clears the frame and runs every renderable with a shared context.
func (r *Renderer) Render(w *world.World, view mgl32.Mat4, eye mgl32.Vec3, dt float64) {
	defer profiling.Track("renderer.Render")()

	gl.ClearColor(0.53, 0.81, 0.92, 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	ctx := RenderContext{
		Camera: r.camera,
		World:  w,
		Eye:    eye,
		DT:     dt,
		View:   view,
		Proj:   r.camera.GetProjectionMatrix(),
	}
	for _, renderable := range r.renderables {
		renderable.Render(ctx)
	}
}

// SetViewport forwards a window resize to the camera and all renderables.
// Sizes are logical window coordinates; gl.Viewport itself takes framebuffer
// pixels and is handled by the window's framebuffer callback.
func (r *Renderer) SetViewport(width, height int) {
	r.camera.SetViewport(width, height)
	for _, renderable := range r.renderables {
		renderable.SetViewport(width, height)
	}
}

// Dispose releases renderables in reverse init order.
func (r *Renderer) Dispose() {
	for i := len(r.renderables) - 1; i >= 0; i-- {
		r.renderables[i].Dispose()
	}
}
