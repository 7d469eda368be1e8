package facecodec

import (
	"errors"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	faces := []Face{
		{X: 0, Y: 0, Z: 0, Axis: AxisX, Winding: WindingCCW, TextureID: 0},
		{X: 31, Y: 31, Z: 31, Axis: AxisZ, Winding: WindingCW, TextureID: 1023},
		{X: 3, Y: 4, Z: 5, Axis: AxisZ, Winding: WindingCCW, TextureID: 7},
		{X: 1, Y: 30, Z: 16, Axis: AxisY, Winding: WindingCW, TextureID: 512},
		{X: 17, Y: 2, Z: 9, Axis: AxisX, Winding: WindingCCW, TextureID: 1},
	}
	for _, f := range faces {
		w, err := Encode(f)
		if err != nil {
			t.Fatalf("Encode(%+v): %v", f, err)
		}
		if got := w.Decode(); got != f {
			t.Fatalf("round trip %+v: got %+v", f, got)
		}
		if err := w.Check(); err != nil {
			t.Fatalf("Check(%#08x): %v", uint32(w), err)
		}
	}
}

func TestEncodeFieldPlacement(t *testing.T) {
	// One field set at a time, verified against the documented bit positions.
	cases := []struct {
		face Face
		want uint32
	}{
		{Face{X: 1}, 1 << 27},
		{Face{Y: 1}, 1 << 22},
		{Face{Z: 1}, 1 << 17},
		{Face{Winding: 1}, 1 << 16},
		{Face{Axis: 1}, 1 << 14},
		{Face{Axis: 2}, 2 << 14},
		{Face{TextureID: 1}, 1},
		{Face{X: 31, Y: 31, Z: 31, Axis: 2, Winding: 1, TextureID: 1023}, 0xFFFF83FF},
	}
	for _, c := range cases {
		w, err := Encode(c.face)
		if err != nil {
			t.Fatalf("Encode(%+v): %v", c.face, err)
		}
		if uint32(w) != c.want {
			t.Fatalf("Encode(%+v): got %#08x, want %#08x", c.face, uint32(w), c.want)
		}
	}
}

func TestEncodeRejectsOutOfRange(t *testing.T) {
	bad := []Face{
		{X: 32},
		{X: -1},
		{Y: 32},
		{Z: 32},
		{Axis: 3},
		{Axis: -1},
		{Winding: 2},
		{TextureID: 1024},
		{TextureID: -1},
	}
	for _, f := range bad {
		if _, err := Encode(f); !errors.Is(err, ErrRange) {
			t.Fatalf("Encode(%+v): got %v, want ErrRange", f, err)
		}
	}
}

func TestCheckFlagsCorruptWords(t *testing.T) {
	good, err := Encode(Face{X: 3, Y: 4, Z: 5, Axis: AxisZ, TextureID: 7})
	if err != nil {
		t.Fatal(err)
	}

	reserved := good | 1<<10
	if err := reserved.Check(); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("reserved bit: got %v, want ErrCorrupt", err)
	}
	axis3 := good | 3<<14
	if err := axis3.Check(); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("axis 3: got %v, want ErrCorrupt", err)
	}

	words := []Word{good, reserved, good, axis3}
	if got := CheckAll(words); len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("CheckAll: got %v, want [1 3]", got)
	}
	if got := CheckAll([]Word{good}); got != nil {
		t.Fatalf("CheckAll clean: got %v, want nil", got)
	}
}

func BenchmarkEncode(b *testing.B) {
	f := Face{X: 12, Y: 7, Z: 30, Axis: AxisY, Winding: WindingCW, TextureID: 200}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Encode(f); err != nil {
			b.Fatal(err)
		}
	}
}
