package chunks

import (
	"math"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/kbjakex/voxels03/internal/config"
	"github.com/kbjakex/voxels03/internal/graphics"
	"github.com/kbjakex/voxels03/internal/graphics/renderer"
	"github.com/kbjakex/voxels03/internal/profiling"
	"github.com/kbjakex/voxels03/internal/registry"
	"github.com/kbjakex/voxels03/internal/world"
)

// Chunks draws loaded chunks by vertex pulling: the vertex shader reads
// packed face words from the atlas texture buffer and rebuilds each corner
// from gl_VertexID alone. No vertex attributes exist; the VAO is empty and
// stays bound only because the core profile requires one.
type Chunks struct {
	shader   *graphics.Shader
	emptyVAO uint32

	// material id -> RGB, sampled by the fragment shader
	materialsBuf uint32
	materialsTex uint32

	// mesh scheduling throttle and nearby-chunk cache
	ensureEvery  time.Duration
	lastEnsure   time.Time
	lastCell     world.ChunkCoord
	cachedNearby []*world.Chunk
}

// NewChunks creates the chunk renderable.
func NewChunks() *Chunks {
	return &Chunks{
		ensureEvery:  200 * time.Millisecond,
		lastCell:     world.ChunkCoord{X: 1<<31 - 1}, // sentinel so the first frame ensures
		cachedNearby: make([]*world.Chunk, 0, 1024),
	}
}

// Init compiles the shader, creates the atlas and material table, and starts
// the mesh workers.
func (c *Chunks) Init() error {
	var err error
	c.shader, err = graphics.NewShader(MainVertShader, MainFragShader)
	if err != nil {
		return err
	}

	gl.GenVertexArrays(1, &c.emptyVAO)

	setupAtlas()

	table := registry.ColorTable()
	gl.GenBuffers(1, &c.materialsBuf)
	gl.BindBuffer(gl.TEXTURE_BUFFER, c.materialsBuf)
	gl.BufferData(gl.TEXTURE_BUFFER, len(table)*4, gl.Ptr(table), gl.STATIC_DRAW)
	gl.BindBuffer(gl.TEXTURE_BUFFER, 0)
	gl.GenTextures(1, &c.materialsTex)
	gl.BindTexture(gl.TEXTURE_BUFFER, c.materialsTex)
	gl.TexBuffer(gl.TEXTURE_BUFFER, gl.RGB32F, c.materialsBuf)
	gl.BindTexture(gl.TEXTURE_BUFFER, 0)

	InitMeshSystem(config.GetMeshWorkers())

	c.shader.Use()
	c.shader.SetInt("faceWords", 0)
	c.shader.SetInt("materials", 1)
	return nil
}

// Render applies finished rebuilds, schedules new ones, and draws every
// chunk that intersects the frustum.
func (c *Chunks) Render(ctx renderer.RenderContext) {
	defer profiling.Track("renderer.renderChunks")()

	atlasBeginFrame()

	func() {
		defer profiling.Track("renderer.renderChunks.applyResults")()
		ProcessMeshResults()
	}()

	center := world.ChunkCoordAt(
		int(math.Floor(float64(ctx.Eye.X()))),
		int(math.Floor(float64(ctx.Eye.Y()))),
		int(math.Floor(float64(ctx.Eye.Z()))),
	)
	radius := config.GetRenderDistance()

	// Rescan and resubmit on a cadence, immediately on edits or when the
	// camera crosses into a new chunk.
	hasDirty := false
	for _, ch := range c.cachedNearby {
		if ch.IsDirty() {
			hasDirty = true
			break
		}
	}
	if hasDirty || center != c.lastCell || time.Since(c.lastEnsure) >= c.ensureEvery {
		stop := profiling.Track("renderer.renderChunks.ensureMeshes")
		c.cachedNearby = ctx.World.Store().AppendInRadius(c.cachedNearby[:0], center, radius)
		for _, ch := range c.cachedNearby {
			ensureChunkMesh(ctx.World, ch)
		}
		PruneMeshes(ctx.World, center, config.GetChunkEvictRadius())
		c.lastCell = center
		c.lastEnsure = time.Now()
		stop()
	}

	pv := ctx.Proj.Mul4(ctx.View)
	planes := extractFrustumPlanes(pv)

	stop := profiling.Track("renderer.renderChunks.draw")
	c.shader.Use()
	gl.BindVertexArray(c.emptyVAO)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_BUFFER, atlasTex)
	gl.ActiveTexture(gl.TEXTURE1)
	gl.BindTexture(gl.TEXTURE_BUFFER, c.materialsTex)

	for _, ch := range c.cachedNearby {
		mesh := chunkMeshes[ch.Coord]
		if mesh == nil || mesh.faceCount == 0 {
			continue
		}
		if !chunkInFrustum(ch.Coord, &planes) {
			continue
		}
		ox, oy, oz := ch.Origin()
		mvp := pv.Mul4(mgl32.Translate3D(float32(ox), float32(oy), float32(oz)))
		c.shader.SetMatrix4("mvp", &mvp[0])
		gl.MultiDrawArrays(gl.TRIANGLE_FAN, &mesh.firsts[0], &mesh.counts[0], int32(len(mesh.counts)))
	}
	gl.BindVertexArray(0)
	stop()

	atlasEndFrame()
}

// Dispose stops the mesh workers and releases all GL objects.
func (c *Chunks) Dispose() {
	ShutdownMeshSystem()
	if c.materialsTex != 0 {
		gl.DeleteTextures(1, &c.materialsTex)
		c.materialsTex = 0
	}
	if c.materialsBuf != 0 {
		gl.DeleteBuffers(1, &c.materialsBuf)
		c.materialsBuf = 0
	}
	if c.emptyVAO != 0 {
		gl.DeleteVertexArrays(1, &c.emptyVAO)
		c.emptyVAO = 0
	}
	if c.shader != nil {
		c.shader.Dispose()
	}
}

// SetViewport implements renderer.Renderable; chunk drawing has no
// viewport-dependent state.
func (c *Chunks) SetViewport(width, height int) {}

var _ renderer.Renderable = (*Chunks)(nil)
