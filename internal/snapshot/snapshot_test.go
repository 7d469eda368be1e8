package snapshot

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/kbjakex/voxels03/internal/facecodec"
	"github.com/kbjakex/voxels03/internal/meshing"
	"github.com/kbjakex/voxels03/internal/world"
)

func chunkSnapshot(t *testing.T) Snapshot {
	t.Helper()
	g := world.NewGenerator(world.ModeTerrain, 5, world.Palette{Stone: 1, Dirt: 2, Grass: 3, Sand: 4, Snow: 5})
	c := world.NewChunk(world.ChunkCoord{X: 2, Y: 0, Z: -3})
	g.Fill(c)
	words, err := meshing.ChunkFaces(c, nil)
	if err != nil {
		t.Fatal(err)
	}
	return Snapshot{Coord: c.Coord, Words: words}
}

func TestWriteReadRoundTrip(t *testing.T) {
	s := chunkSnapshot(t)

	var buf bytes.Buffer
	if err := Write(&buf, s); err != nil {
		t.Fatal(err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatal(err)
	}

	if got.Coord != s.Coord {
		t.Fatalf("coord: got %v, want %v", got.Coord, s.Coord)
	}
	if len(got.Words) != len(s.Words) {
		t.Fatalf("word count: got %d, want %d", len(got.Words), len(s.Words))
	}
	for i := range s.Words {
		if got.Words[i] != s.Words[i] {
			t.Fatalf("word %d: got %#08x, want %#08x", i, uint32(got.Words[i]), uint32(s.Words[i]))
		}
	}
}

func TestReadRejectsBadMagic(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, chunkSnapshot(t)); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()
	data[0] = 'X'

	if _, err := Read(bytes.NewReader(data)); !errors.Is(err, ErrFormat) {
		t.Fatalf("bad magic: got %v, want ErrFormat", err)
	}
}

func TestReadDetectsCorruptPayload(t *testing.T) {
	// Corrupt one byte of a word inside the raw data before writing: the
	// checksum passes (it covers what was written) but the format check
	// must flag the reserved bits.
	good, err := facecodec.Encode(facecodec.Face{X: 1, Y: 2, Z: 3, Axis: facecodec.AxisY, TextureID: 9})
	if err != nil {
		t.Fatal(err)
	}
	s := Snapshot{Words: []facecodec.Word{good, good | 1<<11}}

	var buf bytes.Buffer
	if err := Write(&buf, s); err != nil {
		t.Fatal(err)
	}
	if _, err := Read(&buf); !errors.Is(err, ErrFormat) {
		t.Fatalf("reserved bits: got %v, want ErrFormat", err)
	}
}

func TestFileRoundTrip(t *testing.T) {
	s := chunkSnapshot(t)
	path := filepath.Join(t.TempDir(), "chunk.vxfs")

	if err := WriteFile(path, s); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Coord != s.Coord || len(got.Words) != len(s.Words) {
		t.Fatalf("file round trip: got %v/%d words, want %v/%d", got.Coord, len(got.Words), s.Coord, len(s.Words))
	}
}

func TestEmptySnapshot(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, Snapshot{Coord: world.ChunkCoord{Y: 7}}); err != nil {
		t.Fatal(err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Words) != 0 || got.Coord.Y != 7 {
		t.Fatalf("empty snapshot: got %d words coord %v", len(got.Words), got.Coord)
	}
}
