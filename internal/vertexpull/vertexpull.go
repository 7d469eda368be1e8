package vertexpull

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/kbjakex/voxels03/internal/facecodec"
)

// CPU reference for the vertex shader's face expansion. The shader and this
// package must agree exactly: both read faceIndex = vertexIndex/4 and
// corner = vertexIndex%4, look the corner offset up in the same table, and
// add it to the anchor voxel. Tooling (the glTF exporter) and tests use this
// side; the draw path uses the GLSL side.

// VerticesPerFace is the number of vertices expanded from one face word.
const VerticesPerFace = 4

// cornerCycle is the unit-square traversal per winding. Winding 0 walks
// counter-clockwise as seen from the positive side of the normal axis,
// winding 1 walks the same square clockwise. Both start at the anchor corner
// so corner 0 is always the face word's voxel position.
var cornerCycle = [2][4][2]int{
	{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
	{{0, 0}, {0, 1}, {1, 1}, {1, 0}},
}

// CornerOffset returns the {0,1}^3 offset of a face corner. The component on
// the normal axis is always 0; the cycle's (u,v) land on the cyclically next
// two axes, (y,z) for X faces, (z,x) for Y faces and (x,y) for Z faces, which
// keeps the winding's handedness the same for all three axes.
func CornerOffset(axis, winding, corner int) [3]int {
	uv := cornerCycle[winding&1][corner&3]
	switch axis {
	case facecodec.AxisX:
		return [3]int{0, uv[0], uv[1]}
	case facecodec.AxisY:
		return [3]int{uv[1], 0, uv[0]}
	default:
		return [3]int{uv[0], uv[1], 0}
	}
}

// Corner returns the chunk-local position of one corner of a face.
func Corner(w facecodec.Word, corner int) mgl32.Vec3 {
	f := w.Decode()
	o := CornerOffset(f.Axis, f.Winding, corner)
	return mgl32.Vec3{float32(f.X + o[0]), float32(f.Y + o[1]), float32(f.Z + o[2])}
}

// Normal returns the face normal: the unit vector along the face's axis,
// positive for winding 0 and negative for winding 1.
func Normal(w facecodec.Word) mgl32.Vec3 {
	f := w.Decode()
	sign := float32(1)
	if f.Winding == facecodec.WindingCW {
		sign = -1
	}
	var n mgl32.Vec3
	n[f.Axis] = sign
	return n
}

// Vertex is one expanded vertex with the attributes the shader derives.
type Vertex struct {
	Position  mgl32.Vec3
	Color     mgl32.Vec3 // Position/32, the debug visualization color
	TextureID int
}

// At expands the vertex at a linear index over a face sequence, exactly as
// gl_VertexID is interpreted during a draw of 4*len(words) vertices.
func At(words []facecodec.Word, vertexIndex int) Vertex {
	w := words[vertexIndex/VerticesPerFace]
	pos := Corner(w, vertexIndex%VerticesPerFace)
	return Vertex{
		Position:  pos,
		Color:     pos.Mul(1.0 / 32.0),
		TextureID: w.TextureID(),
	}
}

// Project maps a chunk-local position through a model-view-projection matrix
// to clip space. The draw contract is one matrix per draw; no other per-draw
// state feeds positioning.
func Project(mvp mgl32.Mat4, pos mgl32.Vec3) mgl32.Vec4 {
	return mvp.Mul4x1(pos.Vec4(1))
}
