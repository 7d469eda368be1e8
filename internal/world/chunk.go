package world

const (
	// ChunkSize is the chunk edge length in voxels. Face words carry voxel
	// coordinates in 5-bit fields, so this is fixed at 32.
	ChunkSize   = 32
	ChunkVolume = ChunkSize * ChunkSize * ChunkSize
)

// ChunkCoord identifies a chunk by its position in chunk units.
type ChunkCoord struct {
	X, Y, Z int
}

// Chunk is a 32x32x32 block volume.
//
// Blocks are written by the render thread (edits) and by the generator before
// the chunk is published to the store. Mesh workers read them concurrently;
// a word-sized read never tears, and a stale read only delays a remesh by one
// round because the dirty flag is re-checked every frame.
type Chunk struct {
	Coord ChunkCoord

	blocks [ChunkVolume]Block
	solid  int // count of solid blocks, kept by SetBlock

	dirty bool // render thread only
}

// NewChunk returns an empty (all air) chunk at the given coordinate, marked
// dirty so the first mesh pass picks it up.
func NewChunk(coord ChunkCoord) *Chunk {
	return &Chunk{Coord: coord, dirty: true}
}

func blockIndex(x, y, z int) int {
	return (x*ChunkSize+y)*ChunkSize + z
}

// Block returns the block at chunk-local coordinates. Out-of-range
// coordinates read as air.
func (c *Chunk) Block(x, y, z int) Block {
	if uint(x) >= ChunkSize || uint(y) >= ChunkSize || uint(z) >= ChunkSize {
		return Air
	}
	return c.blocks[blockIndex(x, y, z)]
}

// Solid reports whether the block at chunk-local coordinates is solid.
// Out-of-range coordinates read as non-solid.
func (c *Chunk) Solid(x, y, z int) bool {
	if uint(x) >= ChunkSize || uint(y) >= ChunkSize || uint(z) >= ChunkSize {
		return false
	}
	return c.blocks[blockIndex(x, y, z)].Solid()
}

// SetBlock writes the block at chunk-local coordinates and marks the chunk
// dirty. Out-of-range coordinates are ignored.
func (c *Chunk) SetBlock(x, y, z int, b Block) {
	if uint(x) >= ChunkSize || uint(y) >= ChunkSize || uint(z) >= ChunkSize {
		return
	}
	i := blockIndex(x, y, z)
	old := c.blocks[i]
	if old == b {
		return
	}
	if old.Solid() {
		c.solid--
	}
	if b.Solid() {
		c.solid++
	}
	c.blocks[i] = b
	c.dirty = true
}

// SolidCount returns the number of solid blocks. Zero means meshing can skip
// the chunk entirely.
func (c *Chunk) SolidCount() int { return c.solid }

// Origin returns the world coordinates of the chunk's (0,0,0) corner.
func (c *Chunk) Origin() (int, int, int) {
	return c.Coord.X * ChunkSize, c.Coord.Y * ChunkSize, c.Coord.Z * ChunkSize
}

// IsDirty reports whether the chunk changed since the last SetClean.
func (c *Chunk) IsDirty() bool { return c.dirty }

// MarkDirty forces a remesh on the next pass. Used when a neighboring chunk
// changes at a shared boundary.
func (c *Chunk) MarkDirty() { c.dirty = true }

// SetClean clears the dirty flag. The mesh scheduler calls this when it
// submits a rebuild, so edits racing the rebuild re-dirty the chunk and queue
// another round.
func (c *Chunk) SetClean() { c.dirty = false }
