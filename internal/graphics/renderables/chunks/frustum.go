package chunks

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/kbjakex/voxels03/internal/world"
)

// Frustum culling margin in voxels (inflates AABBs before testing)
const frustumMargin float32 = 1.0

// extractFrustumPlanes builds six planes from the combined projection*view
// matrix. Order: left, right, bottom, top, near, far.
func extractFrustumPlanes(clip mgl32.Mat4) [6]plane {
	// mgl32 matrices are column-major
	m00, m01, m02, m03 := clip[0], clip[4], clip[8], clip[12]
	m10, m11, m12, m13 := clip[1], clip[5], clip[9], clip[13]
	m20, m21, m22, m23 := clip[2], clip[6], clip[10], clip[14]
	m30, m31, m32, m33 := clip[3], clip[7], clip[11], clip[15]

	pl := [6]plane{
		{m30 + m00, m31 + m01, m32 + m02, m33 + m03},
		{m30 - m00, m31 - m01, m32 - m02, m33 - m03},
		{m30 + m10, m31 + m11, m32 + m12, m33 + m13},
		{m30 - m10, m31 - m11, m32 - m12, m33 - m13},
		{m30 + m20, m31 + m21, m32 + m22, m33 + m23},
		{m30 - m20, m31 - m21, m32 - m22, m33 - m23},
	}
	for i := range pl {
		pl[i] = normalizePlane(pl[i])
	}
	return pl
}

func normalizePlane(p plane) plane {
	l := float32(math.Sqrt(float64(p.a*p.a + p.b*p.b + p.c*p.c)))
	if l == 0 {
		return p
	}
	return plane{p.a / l, p.b / l, p.c / l, p.d / l}
}

// chunkInFrustum tests the chunk's axis-aligned bounds, inflated by
// frustumMargin, against the planes using the positive-vertex test.
func chunkInFrustum(coord world.ChunkCoord, planes *[6]plane) bool {
	minx := float32(coord.X*world.ChunkSize) - frustumMargin
	miny := float32(coord.Y*world.ChunkSize) - frustumMargin
	minz := float32(coord.Z*world.ChunkSize) - frustumMargin
	maxx := minx + float32(world.ChunkSize) + 2*frustumMargin
	maxy := miny + float32(world.ChunkSize) + 2*frustumMargin
	maxz := minz + float32(world.ChunkSize) + 2*frustumMargin

	for i := range planes {
		p := planes[i]
		px, py, pz := maxx, maxy, maxz
		if p.a < 0 {
			px = minx
		}
		if p.b < 0 {
			py = miny
		}
		if p.c < 0 {
			pz = minz
		}
		if p.a*px+p.b*py+p.c*pz+p.d < 0 {
			return false
		}
	}
	return true
}
