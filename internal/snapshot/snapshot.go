package snapshot

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/kbjakex/voxels03/internal/facecodec"
	"github.com/kbjakex/voxels03/internal/world"
)

// File layout, little-endian:
//
//	magic   "VXFS"
//	u8      version (1)
//	i32 x3  chunk coordinate
//	u32     face count
//	u64     xxhash64 of the raw little-endian face words
//	u32     compressed payload length
//	bytes   zstd-compressed face words
const (
	magic   = "VXFS"
	version = 1
)

var (
	ErrFormat   = errors.New("not a face snapshot")
	ErrChecksum = errors.New("face snapshot checksum mismatch")
)

// Snapshot is one chunk's face sequence with its coordinate.
type Snapshot struct {
	Coord world.ChunkCoord
	Words []facecodec.Word
}

type header struct {
	X, Y, Z    int32
	FaceCount  uint32
	Hash       uint64
	PayloadLen uint32
}

func wordBytes(words []facecodec.Word) []byte {
	b := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(b[4*i:], uint32(w))
	}
	return b
}

// Write encodes a snapshot to w.
func Write(w io.Writer, s Snapshot) error {
	raw := wordBytes(s.Words)

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	payload := enc.EncodeAll(raw, nil)
	enc.Close()

	var buf bytes.Buffer
	buf.WriteString(magic)
	buf.WriteByte(version)
	h := header{
		X:          int32(s.Coord.X),
		Y:          int32(s.Coord.Y),
		Z:          int32(s.Coord.Z),
		FaceCount:  uint32(len(s.Words)),
		Hash:       xxhash.Sum64(raw),
		PayloadLen: uint32(len(payload)),
	}
	if err := binary.Write(&buf, binary.LittleEndian, h); err != nil {
		return err
	}
	buf.Write(payload)

	_, err = w.Write(buf.Bytes())
	return err
}

// Read decodes a snapshot from r, verifying the checksum and that every word
// passes format validation.
func Read(r io.Reader) (Snapshot, error) {
	var head [5]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return Snapshot{}, err
	}
	if string(head[:4]) != magic {
		return Snapshot{}, fmt.Errorf("%w: bad magic %q", ErrFormat, head[:4])
	}
	if head[4] != version {
		return Snapshot{}, fmt.Errorf("%w: unsupported version %d", ErrFormat, head[4])
	}

	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return Snapshot{}, err
	}
	payload := make([]byte, h.PayloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return Snapshot{}, err
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return Snapshot{}, err
	}
	defer dec.Close()
	raw, err := dec.DecodeAll(payload, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if uint32(len(raw)) != 4*h.FaceCount {
		return Snapshot{}, fmt.Errorf("%w: payload is %d bytes for %d faces", ErrFormat, len(raw), h.FaceCount)
	}
	if xxhash.Sum64(raw) != h.Hash {
		return Snapshot{}, ErrChecksum
	}

	words := make([]facecodec.Word, h.FaceCount)
	for i := range words {
		words[i] = facecodec.Word(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	if bad := facecodec.CheckAll(words); bad != nil {
		return Snapshot{}, fmt.Errorf("%w: %d corrupt words (first at %d)", ErrFormat, len(bad), bad[0])
	}

	return Snapshot{
		Coord: world.ChunkCoord{X: int(h.X), Y: int(h.Y), Z: int(h.Z)},
		Words: words,
	}, nil
}

// WriteFile writes a snapshot to path.
func WriteFile(path string, s Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadFile reads a snapshot from path.
func ReadFile(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, err
	}
	defer f.Close()
	return Read(f)
}
