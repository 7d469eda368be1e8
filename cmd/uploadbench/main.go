// Command uploadbench measures face word upload throughput through the
// Vulkan staging path on real meshes: terrain chunks are generated and
// meshed, then their sequences stream into a device-local buffer batch by
// batch. A second phase replays an edit as a diff, mixing host uploads with
// device-side span copies the way the renderer applies incremental rebuilds.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/xlab/closer"

	"github.com/kbjakex/voxels03/internal/facebuffer"
	"github.com/kbjakex/voxels03/internal/facecodec"
	"github.com/kbjakex/voxels03/internal/meshing"
	"github.com/kbjakex/voxels03/internal/registry"
	"github.com/kbjakex/voxels03/internal/vkstage"
	"github.com/kbjakex/voxels03/internal/world"
)

func main() {
	var (
		dur       = flag.Duration("dur", 5*time.Second, "how long to stream uploads")
		seed      = flag.Int64("seed", 1, "world seed")
		batchSize = flag.Int("batch", 8, "chunks staged per flush")
	)
	flag.Parse()

	ctx, err := vkstage.NewContext("uploadbench")
	if err != nil {
		log.Fatalf("vulkan context: %v", err)
	}
	closer.Bind(ctx.Destroy)
	defer closer.Close()

	dst, err := ctx.AllocateFaceBuffer()
	if err != nil {
		closer.Fatalln("face buffer:", err)
	}
	closer.Bind(func() { ctx.DestroyBuffer(dst) })

	up, err := vkstage.NewUploader(ctx)
	if err != nil {
		closer.Fatalln("uploader:", err)
	}
	closer.Bind(up.Destroy)

	seqs := meshFixtures(*seed)
	capWords := dst.Size / 4
	fmt.Printf("destination buffer %d MiB, %d fixture chunks, staging window %d MiB\n",
		dst.Size>>20, len(seqs), vkstage.StagingBytes>>20)

	// Phase 1: raw streaming of whole sequences.
	tail := 0
	staged := 0
	start := time.Now()
	for time.Since(start) < *dur {
		for _, words := range seqs {
			if tail+len(words) > capWords {
				tail = 0
			}
			if err := up.StageFaceWords(dst.Buf, tail, words); err != nil {
				closer.Fatalln("stage:", err)
			}
			tail += len(words)
			staged++
			if staged%*batchSize == 0 {
				if err := up.Flush(); err != nil {
					closer.Fatalln("flush:", err)
				}
			}
		}
	}
	if err := up.Flush(); err != nil {
		closer.Fatalln("flush:", err)
	}
	if err := up.Wait(); err != nil {
		closer.Fatalln("wait:", err)
	}
	elapsed := time.Since(start)

	mib := float64(up.FlushedBytes) / (1 << 20)
	fmt.Printf("streamed %d chunks in %d batches: %.1f MiB in %v (%.0f MiB/s)\n",
		staged, up.FlushedBatches, mib, elapsed.Round(time.Millisecond), mib/elapsed.Seconds())

	// Phase 2: one edited chunk applied as a diff against its old region.
	old := seqs[0]
	next := editOneFace(old)
	diff := facebuffer.Compare(old, next)

	oldBase := 0
	if err := up.StageFaceWords(dst.Buf, oldBase, old); err != nil {
		closer.Fatalln("stage old region:", err)
	}
	if err := up.Flush(); err != nil {
		closer.Fatalln("flush:", err)
	}
	if err := up.Wait(); err != nil {
		closer.Fatalln("wait:", err)
	}

	newBase := len(old)
	for _, s := range diff.Copy {
		up.CopyDevice(dst.Buf, dst.Buf, 4*(oldBase+s.SrcFirst), 4*(newBase+s.DstFirst), 4*s.Count)
	}
	for _, r := range diff.Upload {
		if err := up.StageFaceWords(dst.Buf, newBase+r.First, next[r.First:r.First+r.Count]); err != nil {
			closer.Fatalln("stage diff:", err)
		}
	}
	if err := up.Flush(); err != nil {
		closer.Fatalln("flush diff:", err)
	}
	if err := up.Wait(); err != nil {
		closer.Fatalln("wait diff:", err)
	}
	copied := 0
	for _, s := range diff.Copy {
		copied += s.Count
	}
	fmt.Printf("diff replay: %d faces, %d words uploaded, %d words copied device-side\n",
		len(next), diff.UploadWords(), copied)
}

// meshFixtures meshes a band of terrain chunks around the surface, giving the
// bench realistic sequence lengths instead of synthetic uniform blocks.
func meshFixtures(seed int64) [][]facecodec.Word {
	gen := world.NewGenerator(world.ModeTerrain, seed, registry.Palette())
	w := world.New(gen)
	w.EnsureAround(world.ChunkCoord{}, 2, 125)

	var seqs [][]facecodec.Word
	for x := -1; x <= 1; x++ {
		for y := -1; y <= 1; y++ {
			for z := -1; z <= 1; z++ {
				c := w.Chunk(world.ChunkCoord{X: x, Y: y, Z: z})
				if c == nil {
					continue
				}
				words, err := meshing.ChunkFaces(c, w)
				if err != nil {
					log.Fatalf("meshing fixture %d,%d,%d: %v", x, y, z, err)
				}
				if len(words) > 0 {
					seqs = append(seqs, words)
				}
			}
		}
	}
	if len(seqs) == 0 {
		log.Fatal("no fixture meshes generated")
	}
	return seqs
}

// editOneFace rewrites the texture of the middle face, the smallest possible
// edit, so the diff exercises the narrow-upload path.
func editOneFace(words []facecodec.Word) []facecodec.Word {
	next := make([]facecodec.Word, len(words))
	copy(next, words)
	i := len(next) / 2
	f := next[i].Decode()
	f.TextureID = registry.DirtID
	w, err := facecodec.Encode(f)
	if err != nil {
		log.Fatalf("re-encode edited face: %v", err)
	}
	next[i] = w
	return next
}
