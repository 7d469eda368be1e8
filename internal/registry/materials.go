package registry

import (
	"fmt"

	"github.com/kbjakex/voxels03/internal/world"
)

// MaxMaterials matches the 10-bit textureId field of packed face words.
const MaxMaterials = 1024

// Material defines one entry of the material table.
type Material struct {
	ID    int
	Name  string
	Color [3]float32
	Solid bool
}

var (
	Materials     = make(map[int]*Material)
	MaterialNames = make(map[string]int)
)

// Register adds a material definition. Ids outside the face format's
// textureId range are rejected here so they can never reach an encoder.
func Register(m *Material) error {
	if m.ID < 0 || m.ID >= MaxMaterials {
		return fmt.Errorf("material %q: id %d outside 0..%d", m.Name, m.ID, MaxMaterials-1)
	}
	if prev, ok := Materials[m.ID]; ok {
		return fmt.Errorf("material id %d already registered as %q", m.ID, prev.Name)
	}
	Materials[m.ID] = m
	MaterialNames[m.Name] = m.ID
	return nil
}

// Builtin material ids.
const (
	AirID = iota
	StoneID
	DirtID
	GrassID
	SandID
	SnowID
	Check0ID
	Check1ID
)

func init() {
	builtin := []*Material{
		{ID: AirID, Name: "air"},
		{ID: StoneID, Name: "stone", Color: [3]float32{0.55, 0.55, 0.58}, Solid: true},
		{ID: DirtID, Name: "dirt", Color: [3]float32{0.45, 0.33, 0.22}, Solid: true},
		{ID: GrassID, Name: "grass", Color: [3]float32{0.37, 0.62, 0.30}, Solid: true},
		{ID: SandID, Name: "sand", Color: [3]float32{0.86, 0.80, 0.58}, Solid: true},
		{ID: SnowID, Name: "snow", Color: [3]float32{0.95, 0.96, 0.98}, Solid: true},
		{ID: Check0ID, Name: "check0", Color: [3]float32{0.95, 0.95, 0.95}, Solid: true},
		{ID: Check1ID, Name: "check1", Color: [3]float32{0.15, 0.15, 0.18}, Solid: true},
	}
	for _, m := range builtin {
		if err := Register(m); err != nil {
			panic(err)
		}
	}
}

// Block returns the world block for a material id, carrying the registered
// solidity. Unknown ids come back as air.
func Block(id int) world.Block {
	m, ok := Materials[id]
	if !ok {
		return world.Air
	}
	return world.MakeBlock(m.ID, m.Solid)
}

// Palette returns the builtin ids in the generator's palette shape.
func Palette() world.Palette {
	return world.Palette{
		Stone:  StoneID,
		Dirt:   DirtID,
		Grass:  GrassID,
		Sand:   SandID,
		Snow:   SnowID,
		Check0: Check0ID,
		Check1: Check1ID,
	}
}

// ColorTable returns a flat RGB table indexed by material id, sized for the
// whole id space. Unregistered ids get magenta so a stray textureId is
// obvious on screen instead of silently black.
func ColorTable() []float32 {
	table := make([]float32, 3*MaxMaterials)
	for i := range MaxMaterials {
		table[3*i+0] = 1
		table[3*i+1] = 0
		table[3*i+2] = 1
	}
	for id, m := range Materials {
		table[3*id+0] = m.Color[0]
		table[3*id+1] = m.Color[1]
		table[3*id+2] = m.Color[2]
	}
	return table
}
