package world

import "sync"

// ChunkStore holds loaded chunks, keyed by chunk coordinate.
type ChunkStore struct {
	mu     sync.RWMutex
	chunks map[ChunkCoord]*Chunk
}

func NewChunkStore() *ChunkStore {
	return &ChunkStore{chunks: make(map[ChunkCoord]*Chunk)}
}

// Get returns the chunk at coord, or nil if it is not loaded.
func (s *ChunkStore) Get(coord ChunkCoord) *Chunk {
	s.mu.RLock()
	c := s.chunks[coord]
	s.mu.RUnlock()
	return c
}

// Put publishes a chunk. The chunk must be fully generated; readers may see
// it immediately.
func (s *ChunkStore) Put(c *Chunk) {
	s.mu.Lock()
	s.chunks[c.Coord] = c
	s.mu.Unlock()
}

// Remove unloads the chunk at coord and returns it, or nil.
func (s *ChunkStore) Remove(coord ChunkCoord) *Chunk {
	s.mu.Lock()
	c := s.chunks[coord]
	delete(s.chunks, coord)
	s.mu.Unlock()
	return c
}

// Count returns the number of loaded chunks.
func (s *ChunkStore) Count() int {
	s.mu.RLock()
	n := len(s.chunks)
	s.mu.RUnlock()
	return n
}

// AppendInRadius appends every loaded chunk within radius chunks (Chebyshev
// distance) of the center coordinate to dst and returns it. The buffer
// convention keeps per-frame queries allocation-free once warm.
func (s *ChunkStore) AppendInRadius(dst []*Chunk, center ChunkCoord, radius int) []*Chunk {
	s.mu.RLock()
	for coord, c := range s.chunks {
		if abs(coord.X-center.X) <= radius &&
			abs(coord.Y-center.Y) <= radius &&
			abs(coord.Z-center.Z) <= radius {
			dst = append(dst, c)
		}
	}
	s.mu.RUnlock()
	return dst
}

// RemoveBeyond unloads chunks farther than radius from center and returns
// their coordinates so callers can drop GPU state for them.
func (s *ChunkStore) RemoveBeyond(center ChunkCoord, radius int) []ChunkCoord {
	var removed []ChunkCoord
	s.mu.Lock()
	for coord := range s.chunks {
		if abs(coord.X-center.X) > radius ||
			abs(coord.Y-center.Y) > radius ||
			abs(coord.Z-center.Z) > radius {
			delete(s.chunks, coord)
			removed = append(removed, coord)
		}
	}
	s.mu.Unlock()
	return removed
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
