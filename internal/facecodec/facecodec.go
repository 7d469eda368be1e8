package facecodec

import (
	"errors"
	"fmt"
)

// Bit layout of a packed face word, MSB to LSB:
//
//	31..27  posX      (5 bits, 0..31)
//	26..22  posY      (5 bits, 0..31)
//	21..17  posZ      (5 bits, 0..31)
//	16      winding   (1 bit)
//	15..14  axis      (2 bits, 0..2; 3 is reserved)
//	13..10  reserved  (must be zero)
//	 9..0   textureId (10 bits, 0..1023)
const (
	PosMax     = 31
	TextureMax = 1023

	AxisX = 0
	AxisY = 1
	AxisZ = 2

	// Winding selects the corner traversal order around the face: counter-
	// clockwise (as seen from the positive side of the normal axis) for faces
	// pointing toward +axis, clockwise for faces pointing toward -axis.
	WindingCCW = 0
	WindingCW  = 1
)

const (
	shiftPosX    = 27
	shiftPosY    = 22
	shiftPosZ    = 17
	shiftWinding = 16
	shiftAxis    = 14

	posMask     = 0x1F
	axisMask    = 0x3
	textureMask = 0x3FF

	// Bits 13..10. Zero now; reserved for later format revisions.
	reservedMask = 0x3C00
)

// Word is one visible voxel face packed into 32 bits. Four GPU vertices are
// expanded from each word at draw time, so a face costs 4 bytes instead of
// four explicit vertices.
type Word uint32

// Face is the unpacked form of a Word.
type Face struct {
	X, Y, Z   int // chunk-local voxel coordinate, 0..31
	Axis      int // normal axis: AxisX, AxisY or AxisZ
	Winding   int // WindingCCW or WindingCW
	TextureID int // material table index, 0..1023
}

var (
	// ErrRange reports an Encode input outside its field's representable range.
	ErrRange = errors.New("face field out of range")
	// ErrCorrupt reports a word that violates the format: reserved bits set or
	// the reserved axis value 3.
	ErrCorrupt = errors.New("corrupt face word")
)

// Encode packs f into a Word. Any field outside its range is an error; values
// are never truncated.
func Encode(f Face) (Word, error) {
	if uint(f.X) > PosMax {
		return 0, fmt.Errorf("%w: posX %d", ErrRange, f.X)
	}
	if uint(f.Y) > PosMax {
		return 0, fmt.Errorf("%w: posY %d", ErrRange, f.Y)
	}
	if uint(f.Z) > PosMax {
		return 0, fmt.Errorf("%w: posZ %d", ErrRange, f.Z)
	}
	if f.Axis != AxisX && f.Axis != AxisY && f.Axis != AxisZ {
		return 0, fmt.Errorf("%w: axis %d", ErrRange, f.Axis)
	}
	if f.Winding != WindingCCW && f.Winding != WindingCW {
		return 0, fmt.Errorf("%w: winding %d", ErrRange, f.Winding)
	}
	if uint(f.TextureID) > TextureMax {
		return 0, fmt.Errorf("%w: textureId %d", ErrRange, f.TextureID)
	}
	w := Word(f.X)<<shiftPosX |
		Word(f.Y)<<shiftPosY |
		Word(f.Z)<<shiftPosZ |
		Word(f.Winding)<<shiftWinding |
		Word(f.Axis)<<shiftAxis |
		Word(f.TextureID)
	return w, nil
}

// Decode unpacks the word. It is the exact inverse of Encode for every word
// Encode can produce.
func (w Word) Decode() Face {
	return Face{
		X:         int(w >> shiftPosX & posMask),
		Y:         int(w >> shiftPosY & posMask),
		Z:         int(w >> shiftPosZ & posMask),
		Axis:      int(w >> shiftAxis & axisMask),
		Winding:   int(w >> shiftWinding & 1),
		TextureID: int(w & textureMask),
	}
}

// Axis returns the normal axis without a full decode.
func (w Word) Axis() int { return int(w >> shiftAxis & axisMask) }

// TextureID returns the material table index without a full decode.
func (w Word) TextureID() int { return int(w & textureMask) }

// Check reports whether the word violates the format. Decoders treat such
// words as data corruption, not as extended meaning.
func (w Word) Check() error {
	if w&reservedMask != 0 {
		return fmt.Errorf("%w: reserved bits set in %#08x", ErrCorrupt, uint32(w))
	}
	if w>>shiftAxis&axisMask == 3 {
		return fmt.Errorf("%w: axis 3 in %#08x", ErrCorrupt, uint32(w))
	}
	return nil
}

// CheckAll validates a whole face sequence and returns the indexes of the
// corrupt words, or nil if the sequence is clean.
func CheckAll(words []Word) []int {
	var bad []int
	for i, w := range words {
		if w.Check() != nil {
			bad = append(bad, i)
		}
	}
	return bad
}
