package chunks

import (
	"path/filepath"

	"github.com/kbjakex/voxels03/internal/facebuffer"
)

const (
	ShadersDir = "assets/shaders/chunks"
)

var (
	MainVertShader = filepath.Join(ShadersDir, "main.vert")
	MainFragShader = filepath.Join(ShadersDir, "main.frag")
)

// chunkMesh tracks one chunk's face sequence on the GPU. The mirror owns the
// committed word sequence; regionBase/capWords locate its atlas region. The
// firsts/counts arrays are the cached MultiDrawArrays parameters: one
// triangle fan of 4 vertices per face, firsts[i] = (regionBase+i)*4.
type chunkMesh struct {
	mirror     facebuffer.Mirror
	regionBase int // word offset of the region in the atlas, -1 if none
	capWords   int
	faceCount  int32
	firsts     []int32
	counts     []int32
}

type plane struct {
	a, b, c, d float32
}
