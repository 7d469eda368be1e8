package world

import (
	"github.com/aquilax/go-perlin"

	"github.com/kbjakex/voxels03/internal/profiling"
)

// Generation modes.
const (
	// ModeTerrain fills chunks with perlin-noise heightmap terrain.
	ModeTerrain = "terrain"
	// ModePattern fills chunks with isolated cubes on even coordinates, one
	// per 2x2x2 cell. Every cube shows all six faces, which makes it the
	// densest mesh the culler can produce and a handy stress pattern.
	ModePattern = "pattern"
)

const (
	terrainScale = 96.0
	terrainBase  = 12
	terrainAmp   = 22
	snowLine     = 26
	sandLine     = 2
)

// Palette names the material ids the generator places. Passed in by the
// caller so this package stays independent of the material registry.
type Palette struct {
	Stone, Dirt, Grass, Sand, Snow int
	Check0, Check1                 int
}

// Generator fills chunks deterministically from a seed.
type Generator struct {
	mode    string
	noise   *perlin.Perlin
	palette Palette
}

func NewGenerator(mode string, seed int64, p Palette) *Generator {
	g := &Generator{mode: mode, palette: p}
	if mode != ModePattern {
		g.noise = perlin.NewPerlin(2, 2, 3, seed)
	}
	return g
}

// Fill populates an empty chunk. Same seed and coordinate always produce the
// same blocks.
func (g *Generator) Fill(c *Chunk) {
	defer profiling.Track("world.Generate")()
	if g.mode == ModePattern {
		g.fillPattern(c)
		return
	}
	g.fillTerrain(c)
}

func (g *Generator) fillPattern(c *Chunk) {
	for x := 0; x < ChunkSize; x += 2 {
		for y := 0; y < ChunkSize; y += 2 {
			for z := 0; z < ChunkSize; z += 2 {
				id := g.palette.Check0
				if (x+y+z)/2%2 == 1 {
					id = g.palette.Check1
				}
				c.SetBlock(x, y, z, MakeBlock(id, true))
			}
		}
	}
}

func (g *Generator) fillTerrain(c *Chunk) {
	ox, oy, oz := c.Origin()
	for x := range ChunkSize {
		for z := range ChunkSize {
			n := g.noise.Noise2D(float64(ox+x)/terrainScale, float64(oz+z)/terrainScale)
			h := terrainBase + int(terrainAmp*n)
			for y := range ChunkSize {
				wy := oy + y
				if wy > h {
					break
				}
				var id int
				switch {
				case wy == h && h >= snowLine:
					id = g.palette.Snow
				case wy == h && h <= sandLine:
					id = g.palette.Sand
				case wy == h:
					id = g.palette.Grass
				case wy >= h-3:
					id = g.palette.Dirt
				default:
					id = g.palette.Stone
				}
				c.SetBlock(x, y, z, MakeBlock(id, true))
			}
		}
	}
}
