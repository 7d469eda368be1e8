package export

import (
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"

	"github.com/kbjakex/voxels03/internal/facecodec"
	"github.com/kbjakex/voxels03/internal/meshing"
	"github.com/kbjakex/voxels03/internal/world"
)

func TestWriteGLBSingleVoxel(t *testing.T) {
	c := world.NewChunk(world.ChunkCoord{})
	c.SetBlock(3, 4, 5, world.MakeBlock(2, true))
	words, err := meshing.ChunkFaces(c, nil)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "voxel.glb")
	if err := WriteGLB(path, "voxel", words, nil); err != nil {
		t.Fatal(err)
	}

	doc, err := gltf.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Meshes) != 1 || len(doc.Meshes[0].Primitives) != 1 {
		t.Fatalf("document shape: %d meshes", len(doc.Meshes))
	}
	prim := doc.Meshes[0].Primitives[0]

	// 6 faces, 4 vertices each, 2 triangles each.
	pos := doc.Accessors[prim.Attributes[gltf.POSITION]]
	if pos.Count != 24 {
		t.Fatalf("position count: got %d, want 24", pos.Count)
	}
	idx := doc.Accessors[*prim.Indices]
	if idx.Count != 36 {
		t.Fatalf("index count: got %d, want 36", idx.Count)
	}

	// The mesh must stay inside the voxel's unit cell.
	if pos.Min[0] < 3 || pos.Max[0] > 4 || pos.Min[1] < 4 || pos.Max[1] > 5 || pos.Min[2] < 5 || pos.Max[2] > 6 {
		t.Fatalf("bounds: min %v max %v outside voxel cell", pos.Min, pos.Max)
	}
}

func TestWriteGLBRejectsCorruptWords(t *testing.T) {
	w, err := facecodec.Encode(facecodec.Face{X: 1, Axis: facecodec.AxisX})
	if err != nil {
		t.Fatal(err)
	}
	bad := []facecodec.Word{w | 3<<14}

	path := filepath.Join(t.TempDir(), "bad.glb")
	if err := WriteGLB(path, "bad", bad, nil); err == nil {
		t.Fatal("corrupt words should not export")
	}
}
