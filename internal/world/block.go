package world

// Block packs a material id and state flags into 16 bits. The low 10 bits are
// the material id, matching the textureId field of packed face words, so the
// mesher can copy the id straight through without a registry lookup.
type Block uint16

const (
	Air Block = 0

	blockIDMask = 0x3FF
	flagSolid   = 1 << 10
)

// MakeBlock builds a block from a material id. Ids above 1023 do not fit the
// face format and are clamped to 0 (air); the registry rejects such materials
// at registration time, so this is a backstop, not a code path.
func MakeBlock(id int, solid bool) Block {
	if uint(id) > blockIDMask {
		return Air
	}
	b := Block(id)
	if solid {
		b |= flagSolid
	}
	return b
}

// ID returns the material id, 0..1023.
func (b Block) ID() int { return int(b & blockIDMask) }

// Solid reports whether the block occludes and emits faces.
func (b Block) Solid() bool { return b&flagSolid != 0 }
