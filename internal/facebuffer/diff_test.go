package facebuffer

import (
	"testing"

	"github.com/kbjakex/voxels03/internal/facecodec"
	"github.com/kbjakex/voxels03/internal/meshing"
	"github.com/kbjakex/voxels03/internal/world"
)

// applyDiff replays a diff the way the device side would: copies pull from
// the old sequence, uploads pull from the new one.
func applyDiff(old, next []facecodec.Word, d Diff) []facecodec.Word {
	if d.Unchanged {
		return append([]facecodec.Word(nil), old...)
	}
	out := make([]facecodec.Word, len(next))
	for _, s := range d.Copy {
		copy(out[s.DstFirst:s.DstFirst+s.Count], old[s.SrcFirst:s.SrcFirst+s.Count])
	}
	for _, r := range d.Upload {
		copy(out[r.First:r.First+r.Count], next[r.First:r.First+r.Count])
	}
	return out
}

func wordsEqual(a, b []facecodec.Word) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func mustFace(t testing.TB, x, y, z, tex int) facecodec.Word {
	t.Helper()
	w, err := facecodec.Encode(facecodec.Face{X: x, Y: y, Z: z, Axis: facecodec.AxisX, TextureID: tex})
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func TestCompareIdentical(t *testing.T) {
	words := []facecodec.Word{mustFace(t, 1, 2, 3, 9), mustFace(t, 4, 5, 6, 9)}
	d := Compare(words, words)
	if !d.Unchanged {
		t.Fatal("identical sequences should compare as unchanged")
	}
	if len(d.Copy) != 0 || len(d.Upload) != 0 {
		t.Fatalf("unchanged diff should carry no ops, got %d copies %d uploads", len(d.Copy), len(d.Upload))
	}
}

func TestCompareBothEmpty(t *testing.T) {
	d := Compare(nil, nil)
	if d.Unchanged || len(d.Copy) != 0 || len(d.Upload) != 0 {
		t.Fatalf("empty vs empty: got %+v, want zero diff", d)
	}
}

func TestCompareFirstUpload(t *testing.T) {
	next := []facecodec.Word{mustFace(t, 1, 1, 1, 1), mustFace(t, 2, 2, 2, 2)}
	d := Compare(nil, next)
	if d.Unchanged || len(d.Copy) != 0 {
		t.Fatalf("first upload should have no copies: %+v", d)
	}
	if got := d.UploadWords(); got != 2 {
		t.Fatalf("first upload words: got %d, want 2", got)
	}
	if !wordsEqual(applyDiff(nil, next, d), next) {
		t.Fatal("applying diff should reproduce next")
	}
}

func TestCompareSingleWordChange(t *testing.T) {
	old := make([]facecodec.Word, 0, 200)
	for i := range 200 {
		old = append(old, mustFace(t, i%32, (i/32)%32, 0, 5))
	}
	next := append([]facecodec.Word(nil), old...)
	next[100] = mustFace(t, 9, 9, 9, 6)

	d := Compare(old, next)
	if d.Unchanged {
		t.Fatal("changed sequence compared as unchanged")
	}
	if got := d.UploadWords(); got != 1 {
		t.Fatalf("upload words: got %d, want 1", got)
	}
	if len(d.Copy) != 2 {
		t.Fatalf("copy spans: got %d, want 2", len(d.Copy))
	}
	if !wordsEqual(applyDiff(old, next, d), next) {
		t.Fatal("applying diff should reproduce next")
	}
}

func TestCompareMergesNearbyRuns(t *testing.T) {
	old := make([]facecodec.Word, 100)
	next := make([]facecodec.Word, 100)
	copy(next, old)
	next[10] = mustFace(t, 1, 0, 0, 1)
	next[20] = mustFace(t, 2, 0, 0, 1) // 9 unchanged words apart, inside the merge gap
	next[90] = mustFace(t, 3, 0, 0, 1) // far away, separate range

	d := Compare(old, next)
	if len(d.Upload) != 2 {
		t.Fatalf("upload ranges: got %d, want 2 (nearby runs merged)", len(d.Upload))
	}
	if d.Upload[0].First != 10 || d.Upload[0].Count != 11 {
		t.Fatalf("merged range: got %+v, want {10 11}", d.Upload[0])
	}
	if !wordsEqual(applyDiff(old, next, d), next) {
		t.Fatal("applying diff should reproduce next")
	}
}

func TestCompareInsertionKeepsTailAsCopy(t *testing.T) {
	a := mustFace(t, 1, 0, 0, 1)
	b := mustFace(t, 2, 0, 0, 1)
	c := mustFace(t, 3, 0, 0, 1)
	old := []facecodec.Word{a, c, c, c, c}
	next := []facecodec.Word{a, b, b, c, c, c, c}

	d := Compare(old, next)
	if got := d.UploadWords(); got != 2 {
		t.Fatalf("insertion upload words: got %d, want 2", got)
	}
	// Tail shifted by two but its bytes move device-side, not over the bus.
	var copied int
	for _, s := range d.Copy {
		copied += s.Count
	}
	if copied != 5 {
		t.Fatalf("copied words: got %d, want 5", copied)
	}
	if !wordsEqual(applyDiff(old, next, d), next) {
		t.Fatal("applying diff should reproduce next")
	}
}

func TestCompareDeletionUploadsNothing(t *testing.T) {
	a := mustFace(t, 1, 0, 0, 1)
	b := mustFace(t, 2, 0, 0, 1)
	c := mustFace(t, 3, 0, 0, 1)
	old := []facecodec.Word{a, a, b, b, c, c}
	next := []facecodec.Word{a, a, c, c}

	d := Compare(old, next)
	if got := d.UploadWords(); got != 0 {
		t.Fatalf("deletion upload words: got %d, want 0", got)
	}
	if !wordsEqual(applyDiff(old, next, d), next) {
		t.Fatal("applying diff should reproduce next")
	}
}

// Toggling one cube in the sparse stress pattern must move only that cube's
// six faces over the bus, not the whole chunk.
func TestCompareSingleVoxelEditIsBounded(t *testing.T) {
	g := world.NewGenerator(world.ModePattern, 1, world.Palette{Check0: 6, Check1: 7})
	c := world.NewChunk(world.ChunkCoord{})
	g.Fill(c)

	old, err := meshing.ChunkFaces(c, nil)
	if err != nil {
		t.Fatal(err)
	}

	// Remove one interior cube, rebuild, diff.
	c.SetBlock(16, 16, 16, world.Air)
	next, err := meshing.ChunkFaces(c, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(next) != len(old)-6 {
		t.Fatalf("pattern edit: got %d faces, want %d", len(next), len(old)-6)
	}

	d := Compare(old, next)
	if got := d.UploadWords(); got > 6 {
		t.Fatalf("removal upload words: got %d, want <= 6", got)
	}
	if !wordsEqual(applyDiff(old, next, d), next) {
		t.Fatal("applying diff should reproduce next")
	}

	// Put it back: six faces reappear, upload stays at the insertion.
	c.SetBlock(16, 16, 16, world.MakeBlock(6, true))
	back, err := meshing.ChunkFaces(c, nil)
	if err != nil {
		t.Fatal(err)
	}
	d = Compare(next, back)
	if got := d.UploadWords(); got == 0 || got > 6+uploadMergeGap {
		t.Fatalf("insertion upload words: got %d, want 1..%d", got, 6+uploadMergeGap)
	}
	if !wordsEqual(applyDiff(next, back, d), back) {
		t.Fatal("applying diff should reproduce the restored sequence")
	}
}

func TestCompareDenseEditSmallerThanFull(t *testing.T) {
	p := world.Palette{Stone: 1, Dirt: 2, Grass: 3, Sand: 4, Snow: 5}
	g := world.NewGenerator(world.ModeTerrain, 11, p)
	c := world.NewChunk(world.ChunkCoord{})
	g.Fill(c)

	old, err := meshing.ChunkFaces(c, nil)
	if err != nil {
		t.Fatal(err)
	}
	c.SetBlock(16, 8, 16, world.Air)
	next, err := meshing.ChunkFaces(c, nil)
	if err != nil {
		t.Fatal(err)
	}

	d := Compare(old, next)
	if got := d.UploadWords(); got >= len(next)/2 {
		t.Fatalf("dense edit upload: got %d of %d words, want under half", got, len(next))
	}
	if !wordsEqual(applyDiff(old, next, d), next) {
		t.Fatal("applying diff should reproduce next")
	}
}

func TestFingerprint(t *testing.T) {
	a := []facecodec.Word{mustFace(t, 1, 2, 3, 4)}
	b := []facecodec.Word{mustFace(t, 1, 2, 3, 5)}
	if Fingerprint(a) == Fingerprint(b) {
		t.Fatal("different sequences should not share a fingerprint")
	}
	if Fingerprint(a) != Fingerprint(append([]facecodec.Word(nil), a...)) {
		t.Fatal("equal sequences should share a fingerprint")
	}
	if Fingerprint(nil) != Fingerprint([]facecodec.Word{}) {
		t.Fatal("nil and empty should hash the same")
	}
}
