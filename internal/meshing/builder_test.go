package meshing

import (
	"testing"

	"github.com/kbjakex/voxels03/internal/facecodec"
	"github.com/kbjakex/voxels03/internal/world"
)

func TestChunkFacesEmptyChunk(t *testing.T) {
	c := world.NewChunk(world.ChunkCoord{})
	words, err := ChunkFaces(c, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(words) != 0 {
		t.Fatalf("empty chunk: got %d faces, want 0", len(words))
	}
}

func TestChunkFacesIsolatedVoxel(t *testing.T) {
	c := world.NewChunk(world.ChunkCoord{})
	c.SetBlock(3, 4, 5, world.MakeBlock(7, true))

	words, err := ChunkFaces(c, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(words) != 6 {
		t.Fatalf("isolated voxel: got %d faces, want 6", len(words))
	}

	seen := make(map[[2]int]bool)
	for _, w := range words {
		f := w.Decode()
		if f.X != 3 || f.Y != 4 || f.Z != 5 {
			t.Fatalf("face position: got (%d,%d,%d), want (3,4,5)", f.X, f.Y, f.Z)
		}
		if f.TextureID != 7 {
			t.Fatalf("face texture: got %d, want 7", f.TextureID)
		}
		key := [2]int{f.Axis, f.Winding}
		if seen[key] {
			t.Fatalf("duplicate face kind axis=%d winding=%d", f.Axis, f.Winding)
		}
		seen[key] = true
	}
	if len(seen) != 6 {
		t.Fatalf("face kinds: got %d distinct, want 6", len(seen))
	}
}

func TestChunkFacesTwoBlockRow(t *testing.T) {
	c := world.NewChunk(world.ChunkCoord{})
	c.SetBlock(0, 0, 0, world.MakeBlock(1, true))
	c.SetBlock(1, 0, 0, world.MakeBlock(1, true))

	words, err := ChunkFaces(c, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(words) != 10 {
		t.Fatalf("two-block row: got %d faces, want 10", len(words))
	}

	// The two faces on the shared boundary must be culled: +X of (0,0,0)
	// and -X of (1,0,0).
	for _, w := range words {
		f := w.Decode()
		if f.Axis != facecodec.AxisX {
			continue
		}
		if f.X == 0 && f.Winding == facecodec.WindingCCW {
			t.Fatal("+X face of (0,0,0) should be culled")
		}
		if f.X == 1 && f.Winding == facecodec.WindingCW {
			t.Fatal("-X face of (1,0,0) should be culled")
		}
	}

	// Scan order is fixed: the first word is the -X face of the first voxel.
	first := words[0].Decode()
	want := facecodec.Face{X: 0, Y: 0, Z: 0, Axis: facecodec.AxisX, Winding: facecodec.WindingCW, TextureID: 1}
	if first != want {
		t.Fatalf("first face: got %+v, want %+v", first, want)
	}
}

func TestChunkFacesStableAcrossRebuilds(t *testing.T) {
	p := world.Palette{Stone: 1, Dirt: 2, Grass: 3, Sand: 4, Snow: 5}
	g := world.NewGenerator(world.ModeTerrain, 9, p)
	c := world.NewChunk(world.ChunkCoord{})
	g.Fill(c)

	a, err := ChunkFaces(c, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := ChunkFaces(c, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != len(b) {
		t.Fatalf("rebuild length: got %d, want %d", len(b), len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("rebuild differs at word %d: %#08x vs %#08x", i, uint32(a[i]), uint32(b[i]))
		}
	}
}

func TestChunkFacesFullChunkShowsOnlyBoundary(t *testing.T) {
	c := world.NewChunk(world.ChunkCoord{})
	for x := range world.ChunkSize {
		for y := range world.ChunkSize {
			for z := range world.ChunkSize {
				c.SetBlock(x, y, z, world.MakeBlock(1, true))
			}
		}
	}

	words, err := ChunkFaces(c, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := 6 * world.ChunkSize * world.ChunkSize
	if len(words) != want {
		t.Fatalf("full chunk: got %d faces, want %d", len(words), want)
	}
}

func TestChunkFacesCullsAcrossChunkBoundary(t *testing.T) {
	w := world.New(nil)
	a := world.NewChunk(world.ChunkCoord{X: 0})
	b := world.NewChunk(world.ChunkCoord{X: 1})
	a.SetBlock(31, 0, 0, world.MakeBlock(1, true))
	b.SetBlock(0, 0, 0, world.MakeBlock(1, true)) // world x=32, touching
	w.Store().Put(a)
	w.Store().Put(b)

	// Without neighbor knowledge the seam face stays.
	isolated, err := ChunkFaces(a, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(isolated) != 6 {
		t.Fatalf("isolated: got %d faces, want 6", len(isolated))
	}

	// With the world as solidity source the seam face is culled.
	culled, err := ChunkFaces(a, w)
	if err != nil {
		t.Fatal(err)
	}
	if len(culled) != 5 {
		t.Fatalf("with neighbor: got %d faces, want 5", len(culled))
	}
	for _, wd := range culled {
		f := wd.Decode()
		if f.Axis == facecodec.AxisX && f.Winding == facecodec.WindingCCW {
			t.Fatal("+X seam face should be culled by the neighbor chunk")
		}
	}
}

func BenchmarkChunkFacesPattern(b *testing.B) {
	g := world.NewGenerator(world.ModePattern, 1, world.Palette{Check0: 6, Check1: 7})
	c := world.NewChunk(world.ChunkCoord{})
	g.Fill(c)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ChunkFaces(c, nil); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkChunkFacesTerrain(b *testing.B) {
	p := world.Palette{Stone: 1, Dirt: 2, Grass: 3, Sand: 4, Snow: 5}
	g := world.NewGenerator(world.ModeTerrain, 4, p)
	c := world.NewChunk(world.ChunkCoord{})
	g.Fill(c)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ChunkFaces(c, nil); err != nil {
			b.Fatal(err)
		}
	}
}
