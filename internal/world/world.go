package world

// World ties the chunk store to a generator and answers block queries in
// world coordinates.
type World struct {
	store *ChunkStore
	gen   *Generator
}

func New(gen *Generator) *World {
	return &World{store: NewChunkStore(), gen: gen}
}

// floorDiv rounds toward negative infinity, so chunk coordinates are correct
// for negative world coordinates too.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	m := a % b
	if m != 0 && (a < 0) != (b < 0) {
		m += b
	}
	return m
}

// ChunkCoordAt returns the coordinate of the chunk containing the world
// position.
func ChunkCoordAt(x, y, z int) ChunkCoord {
	return ChunkCoord{
		X: floorDiv(x, ChunkSize),
		Y: floorDiv(y, ChunkSize),
		Z: floorDiv(z, ChunkSize),
	}
}

// Chunk returns the loaded chunk at coord, or nil.
func (w *World) Chunk(coord ChunkCoord) *Chunk {
	return w.store.Get(coord)
}

// Store exposes the underlying chunk store for radius queries.
func (w *World) Store() *ChunkStore { return w.store }

// Block returns the block at world coordinates. Positions in unloaded chunks
// read as air.
func (w *World) Block(x, y, z int) Block {
	c := w.store.Get(ChunkCoordAt(x, y, z))
	if c == nil {
		return Air
	}
	return c.Block(floorMod(x, ChunkSize), floorMod(y, ChunkSize), floorMod(z, ChunkSize))
}

// Solid reports solidity at world coordinates. Unloaded space is non-solid,
// so faces at the edge of loaded space stay visible until the neighbor chunk
// arrives and triggers a remesh.
func (w *World) Solid(x, y, z int) bool {
	c := w.store.Get(ChunkCoordAt(x, y, z))
	if c == nil {
		return false
	}
	return c.Solid(floorMod(x, ChunkSize), floorMod(y, ChunkSize), floorMod(z, ChunkSize))
}

// SetBlock writes a block at world coordinates. When the position sits on a
// chunk boundary the touching neighbors are also marked dirty, since their
// face culling depends on this block. Writes into unloaded chunks are
// dropped.
func (w *World) SetBlock(x, y, z int, b Block) {
	coord := ChunkCoordAt(x, y, z)
	c := w.store.Get(coord)
	if c == nil {
		return
	}
	lx, ly, lz := floorMod(x, ChunkSize), floorMod(y, ChunkSize), floorMod(z, ChunkSize)
	c.SetBlock(lx, ly, lz, b)

	w.dirtyNeighbor(lx == 0, ChunkCoord{coord.X - 1, coord.Y, coord.Z})
	w.dirtyNeighbor(lx == ChunkSize-1, ChunkCoord{coord.X + 1, coord.Y, coord.Z})
	w.dirtyNeighbor(ly == 0, ChunkCoord{coord.X, coord.Y - 1, coord.Z})
	w.dirtyNeighbor(ly == ChunkSize-1, ChunkCoord{coord.X, coord.Y + 1, coord.Z})
	w.dirtyNeighbor(lz == 0, ChunkCoord{coord.X, coord.Y, coord.Z - 1})
	w.dirtyNeighbor(lz == ChunkSize-1, ChunkCoord{coord.X, coord.Y, coord.Z + 1})
}

func (w *World) dirtyNeighbor(onBoundary bool, coord ChunkCoord) {
	if !onBoundary {
		return
	}
	if n := w.store.Get(coord); n != nil {
		n.MarkDirty()
	}
}

// EnsureAround generates and publishes missing chunks within radius chunks of
// center, closest first, stopping after maxChunks generations. Newly loaded
// chunks mark their loaded neighbors dirty so boundary faces against formerly
// unloaded space get culled away.
func (w *World) EnsureAround(center ChunkCoord, radius, maxChunks int) int {
	if w.gen == nil || maxChunks <= 0 {
		return 0
	}
	generated := 0
	for d := 0; d <= radius; d++ {
		for dx := -d; dx <= d; dx++ {
			for dy := -d; dy <= d; dy++ {
				for dz := -d; dz <= d; dz++ {
					if max3(abs(dx), abs(dy), abs(dz)) != d {
						continue
					}
					coord := ChunkCoord{center.X + dx, center.Y + dy, center.Z + dz}
					if w.store.Get(coord) != nil {
						continue
					}
					c := NewChunk(coord)
					w.gen.Fill(c)
					w.store.Put(c)
					w.dirtyLoadedNeighbors(coord)
					generated++
					if generated >= maxChunks {
						return generated
					}
				}
			}
		}
	}
	return generated
}

func (w *World) dirtyLoadedNeighbors(coord ChunkCoord) {
	for _, n := range [6]ChunkCoord{
		{coord.X - 1, coord.Y, coord.Z},
		{coord.X + 1, coord.Y, coord.Z},
		{coord.X, coord.Y - 1, coord.Z},
		{coord.X, coord.Y + 1, coord.Z},
		{coord.X, coord.Y, coord.Z - 1},
		{coord.X, coord.Y, coord.Z + 1},
	} {
		if c := w.store.Get(n); c != nil {
			c.MarkDirty()
		}
	}
}

func max3(a, b, c int) int {
	if b > a {
		a = b
	}
	if c > a {
		a = c
	}
	return a
}
