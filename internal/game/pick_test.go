package game

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/kbjakex/voxels03/internal/world"
)

func testWorld(t *testing.T, solids ...[3]int) *world.World {
	t.Helper()
	w := world.New(nil)
	for _, p := range solids {
		coord := world.ChunkCoordAt(p[0], p[1], p[2])
		c := w.Chunk(coord)
		if c == nil {
			c = world.NewChunk(coord)
			w.Store().Put(c)
		}
		lx := ((p[0] % world.ChunkSize) + world.ChunkSize) % world.ChunkSize
		ly := ((p[1] % world.ChunkSize) + world.ChunkSize) % world.ChunkSize
		lz := ((p[2] % world.ChunkSize) + world.ChunkSize) % world.ChunkSize
		c.SetBlock(lx, ly, lz, world.MakeBlock(1, true))
	}
	return w
}

func TestRaycastSolid(t *testing.T) {
	w := testWorld(t, [3]int{0, 0, 0}, [3]int{1, 0, 0}, [3]int{0, 1, 0}, [3]int{5, 2, 5})

	tests := []struct {
		name    string
		start   mgl32.Vec3
		dir     mgl32.Vec3
		maxDist float32
		hit     bool
		block   [3]int
		prev    [3]int
	}{
		{
			name:    "straight down onto a block",
			start:   mgl32.Vec3{0.5, 3.5, 0.5},
			dir:     mgl32.Vec3{0, -1, 0},
			maxDist: 4,
			hit:     true,
			block:   [3]int{0, 1, 0},
			prev:    [3]int{0, 2, 0},
		},
		{
			name:    "sideways into a block face",
			start:   mgl32.Vec3{-1.5, 0.5, 0.5},
			dir:     mgl32.Vec3{1, 0, 0},
			maxDist: 4,
			hit:     true,
			block:   [3]int{0, 0, 0},
			prev:    [3]int{-1, 0, 0},
		},
		{
			name:    "block beyond reach",
			start:   mgl32.Vec3{5.5, 8.5, 5.5},
			dir:     mgl32.Vec3{0, -1, 0},
			maxDist: 3,
			hit:     false,
		},
		{
			name:    "empty space",
			start:   mgl32.Vec3{20.5, 20.5, 20.5},
			dir:     mgl32.Vec3{1, 0, 0},
			maxDist: 8,
			hit:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RaycastSolid(w, tt.start, tt.dir, tt.maxDist)
			if got.Hit != tt.hit {
				t.Fatalf("hit = %v, want %v", got.Hit, tt.hit)
			}
			if !tt.hit {
				return
			}
			if got.Block != tt.block {
				t.Errorf("block = %v, want %v", got.Block, tt.block)
			}
			if got.Prev != tt.prev {
				t.Errorf("prev = %v, want %v", got.Prev, tt.prev)
			}
		})
	}
}

// The placement cell must share a face with the hit block, never a corner:
// the DDA steps one axis at a time, so Prev is always face-adjacent even on
// diagonal rays.
func TestRaycastPrevFaceAdjacent(t *testing.T) {
	w := testWorld(t, [3]int{4, 4, 4})

	got := RaycastSolid(w, mgl32.Vec3{0.5, 0.5, 0.5}, mgl32.Vec3{1, 1, 1}, 16)
	if !got.Hit {
		t.Fatal("expected a hit on the diagonal block")
	}
	if got.Block != [3]int{4, 4, 4} {
		t.Fatalf("block = %v, want [4 4 4]", got.Block)
	}
	d := 0
	for i := range 3 {
		step := got.Block[i] - got.Prev[i]
		if step < 0 {
			step = -step
		}
		d += step
	}
	if d != 1 {
		t.Fatalf("prev %v is not face-adjacent to block %v", got.Prev, got.Block)
	}
}

func TestRaycastUnloadedSpaceIsEmpty(t *testing.T) {
	w := world.New(nil)
	if got := RaycastSolid(w, mgl32.Vec3{0.5, 0.5, 0.5}, mgl32.Vec3{0, -1, 0}, 64); got.Hit {
		t.Fatalf("hit %v in a world with no chunks", got.Block)
	}
}
