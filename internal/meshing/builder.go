package meshing

import (
	"fmt"

	"github.com/kbjakex/voxels03/internal/facecodec"
	"github.com/kbjakex/voxels03/internal/profiling"
	"github.com/kbjakex/voxels03/internal/world"
)

// Solidity answers world-coordinate solidity queries, used to cull faces
// against neighboring chunks. A nil Solidity treats everything outside the
// chunk as empty, which keeps boundary faces visible; *world.World satisfies
// the interface and reports unloaded space as empty the same way.
type Solidity interface {
	Solid(x, y, z int) bool
}

// directions lists the six face kinds in emission order. The winding bit
// doubles as the direction sign: faces toward +axis get WindingCCW, faces
// toward -axis get WindingCW, so the bit both orients the corner cycle and
// tells decoders which way the face points.
var directions = [6]struct {
	dx, dy, dz int
	axis       int
	winding    int
}{
	{-1, 0, 0, facecodec.AxisX, facecodec.WindingCW},
	{1, 0, 0, facecodec.AxisX, facecodec.WindingCCW},
	{0, -1, 0, facecodec.AxisY, facecodec.WindingCW},
	{0, 1, 0, facecodec.AxisY, facecodec.WindingCCW},
	{0, 0, -1, facecodec.AxisZ, facecodec.WindingCW},
	{0, 0, 1, facecodec.AxisZ, facecodec.WindingCCW},
}

// ChunkFaces builds the packed face sequence for a chunk: one word per solid
// voxel face that touches a non-solid neighbor. The scan order is fixed
// (x, then y, then z, then the six directions -X,+X,-Y,+Y,-Z,+Z), so the
// same blocks always produce the same sequence and an unchanged chunk
// rebuilds byte-identically.
func ChunkFaces(c *world.Chunk, s Solidity) ([]facecodec.Word, error) {
	defer profiling.Track("meshing.ChunkFaces")()

	if c.SolidCount() == 0 {
		return nil, nil
	}
	ox, oy, oz := c.Origin()
	words := make([]facecodec.Word, 0, c.SolidCount()*3)

	for x := range world.ChunkSize {
		for y := range world.ChunkSize {
			for z := range world.ChunkSize {
				b := c.Block(x, y, z)
				if !b.Solid() {
					continue
				}
				for _, d := range directions {
					nx, ny, nz := x+d.dx, y+d.dy, z+d.dz
					var hidden bool
					if uint(nx) < world.ChunkSize && uint(ny) < world.ChunkSize && uint(nz) < world.ChunkSize {
						hidden = c.Solid(nx, ny, nz)
					} else if s != nil {
						hidden = s.Solid(ox+nx, oy+ny, oz+nz)
					}
					if hidden {
						continue
					}
					w, err := facecodec.Encode(facecodec.Face{
						X:         x,
						Y:         y,
						Z:         z,
						Axis:      d.axis,
						Winding:   d.winding,
						TextureID: b.ID(),
					})
					if err != nil {
						return nil, fmt.Errorf("chunk %v voxel (%d,%d,%d): %w", c.Coord, x, y, z, err)
					}
					words = append(words, w)
				}
			}
		}
	}
	return words, nil
}
