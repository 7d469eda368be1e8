package vertexpull

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/kbjakex/voxels03/internal/facecodec"
)

func TestCornerPositionsZFace(t *testing.T) {
	ccw, err := facecodec.Encode(facecodec.Face{X: 3, Y: 4, Z: 5, Axis: facecodec.AxisZ, Winding: facecodec.WindingCCW})
	if err != nil {
		t.Fatal(err)
	}
	wantCCW := [4]mgl32.Vec3{{3, 4, 5}, {4, 4, 5}, {4, 5, 5}, {3, 5, 5}}
	for i, want := range wantCCW {
		if got := Corner(ccw, i); got != want {
			t.Fatalf("ccw corner %d: got %v, want %v", i, got, want)
		}
	}

	cw, err := facecodec.Encode(facecodec.Face{X: 3, Y: 4, Z: 5, Axis: facecodec.AxisZ, Winding: facecodec.WindingCW})
	if err != nil {
		t.Fatal(err)
	}
	wantCW := [4]mgl32.Vec3{{3, 4, 5}, {3, 5, 5}, {4, 5, 5}, {4, 4, 5}}
	for i, want := range wantCW {
		if got := Corner(cw, i); got != want {
			t.Fatalf("cw corner %d: got %v, want %v", i, got, want)
		}
	}
}

func TestCornerOffsetsStayOnFacePlane(t *testing.T) {
	for axis := range 3 {
		for winding := range 2 {
			for corner := range 4 {
				o := CornerOffset(axis, winding, corner)
				if o[axis] != 0 {
					t.Fatalf("axis %d winding %d corner %d: offset %v leaves the anchor plane", axis, winding, corner, o)
				}
				for c := range 3 {
					if o[c] != 0 && o[c] != 1 {
						t.Fatalf("axis %d winding %d corner %d: offset %v outside unit cube", axis, winding, corner, o)
					}
				}
			}
		}
	}
}

func TestWindingsShareCornersReversed(t *testing.T) {
	// Winding 1 visits winding 0's corners in reverse cycle order, starting
	// from the same anchor: 0,3,2,1.
	for axis := range 3 {
		for corner := range 4 {
			a := CornerOffset(axis, 0, corner)
			b := CornerOffset(axis, 1, (4-corner)%4)
			if a != b {
				t.Fatalf("axis %d corner %d: ccw %v != reversed cw %v", axis, corner, a, b)
			}
		}
	}
}

func TestCornersWindCCWAroundNormal(t *testing.T) {
	// For winding 0 the cross product of the first two edges must point
	// toward +axis, for winding 1 toward -axis. This is what makes back-face
	// culling work with a counter-clockwise front-face convention.
	for axis := range 3 {
		for winding := range 2 {
			f := facecodec.Face{X: 1, Y: 2, Z: 3, Axis: axis, Winding: winding}
			w, err := facecodec.Encode(f)
			if err != nil {
				t.Fatal(err)
			}
			p0, p1, p2 := Corner(w, 0), Corner(w, 1), Corner(w, 2)
			n := p1.Sub(p0).Cross(p2.Sub(p1))
			want := Normal(w)
			if n.Normalize() != want {
				t.Fatalf("axis %d winding %d: geometric normal %v, want %v", axis, winding, n.Normalize(), want)
			}
		}
	}
}

func TestAtIndexing(t *testing.T) {
	w0, err := facecodec.Encode(facecodec.Face{X: 0, Y: 0, Z: 0, Axis: facecodec.AxisX, TextureID: 11})
	if err != nil {
		t.Fatal(err)
	}
	w1, err := facecodec.Encode(facecodec.Face{X: 8, Y: 0, Z: 0, Axis: facecodec.AxisY, TextureID: 22})
	if err != nil {
		t.Fatal(err)
	}
	words := []facecodec.Word{w0, w1}

	// Vertex 5 is corner 1 of face 1.
	v := At(words, 5)
	if v.TextureID != 22 {
		t.Fatalf("vertex 5 texture: got %d, want 22", v.TextureID)
	}
	if want := Corner(w1, 1); v.Position != want {
		t.Fatalf("vertex 5 position: got %v, want %v", v.Position, want)
	}

	// Debug color is position scaled into the unit cube.
	if want := v.Position.Mul(1.0 / 32.0); v.Color != want {
		t.Fatalf("vertex 5 color: got %v, want %v", v.Color, want)
	}
}

func TestProjectUsesSingleMatrix(t *testing.T) {
	mvp := mgl32.Translate3D(10, 0, 0)
	got := Project(mvp, mgl32.Vec3{1, 2, 3})
	want := mgl32.Vec4{11, 2, 3, 1}
	if got != want {
		t.Fatalf("Project: got %v, want %v", got, want)
	}
}
