package overlay

import (
	"fmt"
	"path/filepath"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/kbjakex/voxels03/internal/config"
	"github.com/kbjakex/voxels03/internal/graphics"
	"github.com/kbjakex/voxels03/internal/graphics/renderables/chunks"
	"github.com/kbjakex/voxels03/internal/graphics/renderer"
	"github.com/kbjakex/voxels03/internal/profiling"
)

const ShadersDir = "assets/shaders/overlay"

var (
	TextVertShader = filepath.Join(ShadersDir, "text.vert")
	TextFragShader = filepath.Join(ShadersDir, "text.frag")
)

const (
	textScale = 2
	marginPx  = 10
)

var lineStep = float32(cellH*textScale + 4)

// Overlay draws the debug text block: frame rate, camera position, world and
// atlas counters, and the slowest tracked spans. Toggled at runtime through
// config; the fps window keeps accumulating while hidden so the number is
// fresh when toggled back on.
type Overlay struct {
	shader *graphics.Shader
	tex    uint32
	vao    uint32
	vbo    uint32

	projection mgl32.Mat4

	// fps over a rolling half-second window
	frames int
	accum  float64
	fps    float64

	lines []string
	verts []float32
}

// NewOverlay creates the overlay renderable. The projection is replaced by
// the first SetViewport call.
func NewOverlay() *Overlay {
	return &Overlay{
		projection: mgl32.Ortho(0, 900, 600, 0, 0, 1),
		lines:      make([]string, 0, 16),
	}
}

// Init compiles the text shader and bakes the glyph strip.
func (o *Overlay) Init() error {
	var err error
	o.shader, err = graphics.NewShader(TextVertShader, TextFragShader)
	if err != nil {
		return err
	}
	o.tex = buildGlyphAtlas()

	gl.GenVertexArrays(1, &o.vao)
	gl.GenBuffers(1, &o.vbo)
	gl.BindVertexArray(o.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, o.vbo)
	gl.EnableVertexAttribArray(0)
	// x, y, u, v per vertex
	gl.VertexAttribPointer(0, 4, gl.FLOAT, false, 4*4, gl.PtrOffset(0))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	return nil
}

// Render updates the fps window and, when enabled, draws the stats block.
func (o *Overlay) Render(ctx renderer.RenderContext) {
	o.frames++
	o.accum += ctx.DT
	if o.accum >= 0.5 {
		o.fps = float64(o.frames) / o.accum
		o.frames = 0
		o.accum = 0
	}
	if !config.GetShowOverlay() {
		return
	}
	defer profiling.Track("renderer.renderOverlay")()

	st := chunks.CurrentStats()
	o.lines = o.lines[:0]
	o.lines = append(o.lines,
		fmt.Sprintf("FPS: %.0f", o.fps),
		fmt.Sprintf("Pos: %.1f %.1f %.1f", ctx.Eye.X(), ctx.Eye.Y(), ctx.Eye.Z()),
		fmt.Sprintf("Chunks: %d loaded, %d meshed, %d faces", ctx.World.Store().Count(), st.Meshes, st.Faces),
		fmt.Sprintf("Atlas: %s / %s, %s holes", mib(st.AtlasUsedWords), mib(st.AtlasCapWords), mib(st.FragmentedWords)),
		fmt.Sprintf("Upload: %d words this frame", st.UploadedWords),
		fmt.Sprintf("Mesh jobs: %d pending, %d queued", st.PendingJobs, st.QueuedJobs),
	)
	if top := profiling.TopN(5); top != "" {
		o.lines = append(o.lines, "Top: "+top)
	}
	o.drawLines()
}

func mib(words int) string {
	return fmt.Sprintf("%.1fMiB", float64(words)*4/(1<<20))
}

func (o *Overlay) drawLines() {
	o.verts = o.verts[:0]
	y := float32(marginPx)
	for _, line := range o.lines {
		o.verts = appendTextQuads(o.verts, line, marginPx, y, textScale)
		y += lineStep
	}
	if len(o.verts) == 0 {
		return
	}

	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	o.shader.Use()
	o.shader.SetMatrix4("projection", &o.projection[0])
	o.shader.SetVector3("textColor", 1, 1, 1)
	o.shader.SetInt("text", 0)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, o.tex)
	gl.BindVertexArray(o.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, o.vbo)

	// Orphan then fill so the upload never stalls on the previous frame.
	size := len(o.verts) * 4
	gl.BufferData(gl.ARRAY_BUFFER, size, nil, gl.DYNAMIC_DRAW)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, size, gl.Ptr(o.verts))
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(o.verts)/4))

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	gl.Disable(gl.BLEND)
	gl.Enable(gl.CULL_FACE)
	gl.Enable(gl.DEPTH_TEST)
}

// SetViewport rebuilds the pixel-space projection.
func (o *Overlay) SetViewport(width, height int) {
	o.projection = mgl32.Ortho(0, float32(width), float32(height), 0, 0, 1)
}

// Dispose releases the GL objects.
func (o *Overlay) Dispose() {
	if o.vbo != 0 {
		gl.DeleteBuffers(1, &o.vbo)
		o.vbo = 0
	}
	if o.vao != 0 {
		gl.DeleteVertexArrays(1, &o.vao)
		o.vao = 0
	}
	if o.tex != 0 {
		gl.DeleteTextures(1, &o.tex)
		o.tex = 0
	}
	if o.shader != nil {
		o.shader.Dispose()
	}
}

var _ renderer.Renderable = (*Overlay)(nil)
