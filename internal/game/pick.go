package game

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/kbjakex/voxels03/internal/world"
)

// RayHit is the result of a voxel raycast. Block is the solid voxel hit and
// Prev the last empty voxel crossed before it, which is where a placed block
// goes.
type RayHit struct {
	Block [3]int
	Prev  [3]int
	Dist  float32
	Hit   bool
}

// RaycastSolid walks the voxel grid with a DDA from start along dir until it
// meets a solid block or exceeds maxDist. A zero direction component makes
// that axis's step distance +Inf, which the comparisons handle naturally.
func RaycastSolid(w *world.World, start, dir mgl32.Vec3, maxDist float32) RayHit {
	d := dir.Normalize()

	gridX := int(math.Floor(float64(start.X())))
	gridY := int(math.Floor(float64(start.Y())))
	gridZ := int(math.Floor(float64(start.Z())))

	deltaX := float32(math.Abs(1.0 / float64(d.X())))
	deltaY := float32(math.Abs(1.0 / float64(d.Y())))
	deltaZ := float32(math.Abs(1.0 / float64(d.Z())))

	var stepX, stepY, stepZ int
	var sideDistX, sideDistY, sideDistZ float32

	if d.X() > 0 {
		stepX = 1
		sideDistX = (float32(gridX) + 1 - start.X()) * deltaX
	} else {
		stepX = -1
		sideDistX = (start.X() - float32(gridX)) * deltaX
	}
	if d.Y() > 0 {
		stepY = 1
		sideDistY = (float32(gridY) + 1 - start.Y()) * deltaY
	} else {
		stepY = -1
		sideDistY = (start.Y() - float32(gridY)) * deltaY
	}
	if d.Z() > 0 {
		stepZ = 1
		sideDistZ = (float32(gridZ) + 1 - start.Z()) * deltaZ
	} else {
		stepZ = -1
		sideDistZ = (start.Z() - float32(gridZ)) * deltaZ
	}

	prev := [3]int{gridX, gridY, gridZ}
	var dist float32

	for dist < maxDist {
		if sideDistX < sideDistY && sideDistX < sideDistZ {
			dist = sideDistX
			sideDistX += deltaX
			gridX += stepX
		} else if sideDistY < sideDistZ {
			dist = sideDistY
			sideDistY += deltaY
			gridY += stepY
		} else {
			dist = sideDistZ
			sideDistZ += deltaZ
			gridZ += stepZ
		}

		if w.Solid(gridX, gridY, gridZ) {
			return RayHit{Block: [3]int{gridX, gridY, gridZ}, Prev: prev, Dist: dist, Hit: true}
		}
		prev = [3]int{gridX, gridY, gridZ}
	}

	return RayHit{}
}
