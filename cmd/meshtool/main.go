// Command meshtool runs the generate, mesh, snapshot and export pipeline
// headlessly: no window, no GPU. It is the offline counterpart of the in-game
// snapshot key, useful for regression captures and for inspecting meshes in a
// glTF viewer.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/kbjakex/voxels03/internal/export"
	"github.com/kbjakex/voxels03/internal/facebuffer"
	"github.com/kbjakex/voxels03/internal/facecodec"
	"github.com/kbjakex/voxels03/internal/meshing"
	"github.com/kbjakex/voxels03/internal/registry"
	"github.com/kbjakex/voxels03/internal/snapshot"
	"github.com/kbjakex/voxels03/internal/world"
)

func main() {
	var (
		cmd   = flag.String("cmd", "", "snapshot|export|validate")
		coord = flag.String("coord", "0,0,0", "chunk coordinate as x,y,z")
		mode  = flag.String("world", world.ModeTerrain, "terrain|pattern")
		seed  = flag.Int64("seed", 1, "world seed")
		in    = flag.String("in", "", "input snapshot; when empty the chunk is generated instead")
		out   = flag.String("out", "", "output path (defaults to chunk_x_y_z.vxfs / .glb)")
	)
	flag.Parse()

	var err error
	switch *cmd {
	case "snapshot":
		err = runSnapshot(*coord, *mode, *seed, *out)
	case "export":
		err = runExport(*in, *coord, *mode, *seed, *out)
	case "validate":
		err = runValidate(*in, *mode, *seed)
	default:
		fmt.Fprintln(os.Stderr, "usage: meshtool -cmd snapshot|export|validate [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "meshtool %s: %v\n", *cmd, err)
		os.Exit(1)
	}
}

func parseCoord(s string) (world.ChunkCoord, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return world.ChunkCoord{}, fmt.Errorf("coordinate %q: want x,y,z", s)
	}
	var v [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return world.ChunkCoord{}, fmt.Errorf("coordinate %q: %v", s, err)
		}
		v[i] = n
	}
	return world.ChunkCoord{X: v[0], Y: v[1], Z: v[2]}, nil
}

// meshChunk generates the chunk at coordStr plus its neighborhood and meshes
// it. The neighbors matter: boundary faces cull against them exactly like in
// the running game, so captures match what the renderer uploads.
func meshChunk(coordStr, mode string, seed int64) (world.ChunkCoord, []facecodec.Word, error) {
	coord, err := parseCoord(coordStr)
	if err != nil {
		return world.ChunkCoord{}, nil, err
	}
	gen := world.NewGenerator(mode, seed, registry.Palette())
	w := world.New(gen)
	w.EnsureAround(coord, 1, 27)

	words, err := meshing.ChunkFaces(w.Chunk(coord), w)
	if err != nil {
		return world.ChunkCoord{}, nil, err
	}
	return coord, words, nil
}

func runSnapshot(coordStr, mode string, seed int64, out string) error {
	coord, words, err := meshChunk(coordStr, mode, seed)
	if err != nil {
		return err
	}
	if out == "" {
		out = fmt.Sprintf("chunk_%d_%d_%d.vxfs", coord.X, coord.Y, coord.Z)
	}
	if err := snapshot.WriteFile(out, snapshot.Snapshot{Coord: coord, Words: words}); err != nil {
		return err
	}
	fmt.Printf("%s: %d faces, fingerprint %016x\n", out, len(words), facebuffer.Fingerprint(words))
	return nil
}

func runExport(in, coordStr, mode string, seed int64, out string) error {
	var (
		coord world.ChunkCoord
		words []facecodec.Word
		err   error
	)
	if in != "" {
		s, err := snapshot.ReadFile(in)
		if err != nil {
			return err
		}
		coord, words = s.Coord, s.Words
	} else {
		coord, words, err = meshChunk(coordStr, mode, seed)
		if err != nil {
			return err
		}
	}

	name := fmt.Sprintf("chunk_%d_%d_%d", coord.X, coord.Y, coord.Z)
	if out == "" {
		out = name + ".glb"
	}
	if err := export.WriteGLB(out, name, words, registry.ColorTable()); err != nil {
		return err
	}
	fmt.Printf("%s: %d faces, %d vertices\n", out, len(words), len(words)*4)
	return nil
}

// runValidate checks a snapshot structurally and, when the generator settings
// match the capture, diffs it against a fresh rebuild. A differing rebuild is
// reported but not an error: snapshots of edited chunks differ legitimately.
func runValidate(in, mode string, seed int64) error {
	if in == "" {
		return fmt.Errorf("validate needs -in")
	}
	s, err := snapshot.ReadFile(in)
	if err != nil {
		return err
	}
	if bad := facecodec.CheckAll(s.Words); bad != nil {
		return fmt.Errorf("%d corrupt words, first at index %d", len(bad), bad[0])
	}
	fmt.Printf("%s: chunk %d,%d,%d, %d faces, fingerprint %016x\n",
		in, s.Coord.X, s.Coord.Y, s.Coord.Z, len(s.Words), facebuffer.Fingerprint(s.Words))

	coordStr := fmt.Sprintf("%d,%d,%d", s.Coord.X, s.Coord.Y, s.Coord.Z)
	_, fresh, err := meshChunk(coordStr, mode, seed)
	if err != nil {
		return err
	}
	diff := facebuffer.Compare(s.Words, fresh)
	if diff.Unchanged {
		fmt.Println("matches a fresh rebuild")
		return nil
	}
	fmt.Printf("differs from a fresh rebuild: %d faces now, %d words to upload\n",
		len(fresh), diff.UploadWords())
	return nil
}
