package chunks

import (
	"log"
	"sort"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/kbjakex/voxels03/internal/config"
	"github.com/kbjakex/voxels03/internal/facecodec"
)

const (
	wordBytes         = 4
	initialAtlasWords = 1 << 20 // 4 MiB
	compactInterval   = 600     // frames
)

// Face atlas: one shared buffer of packed face words, exposed to the vertex
// shader as an R32UI texture buffer. Chunk regions are bump-allocated from
// the tail; every rebuild lands in a fresh region and the old one is retired
// behind a frame fence, so unsynchronized writes never touch words a queued
// frame still reads. Holes left by retired regions are reclaimed by
// compaction. All access is from the render thread.
var (
	atlasBuf        uint32
	atlasTex        uint32
	atlasCap        int // words
	atlasTail       int // bump pointer, words
	atlasBudget     int // words
	fragmentedWords int
	pendingRetire   []atlasRegion
	retiredBatches  []retireBatch
	currentFrame    uint64
	lastCompact     uint64

	// per-frame upload counter for the debug overlay
	uploadedFrameWords int
)

type atlasRegion struct {
	firstWord int
	capWords  int
}

// retireBatch groups the regions retired during one frame behind that frame's
// fence. Their words count as fragmentation only once the fence signals.
type retireBatch struct {
	fence   uintptr
	regions []atlasRegion
}

func setupAtlas() {
	budgetWords := config.GetAtlasBudgetMB() * (1 << 20) / wordBytes

	// R32UI texel count is capped by the implementation.
	var maxTexels int32
	gl.GetIntegerv(gl.MAX_TEXTURE_BUFFER_SIZE, &maxTexels)
	if maxTexels > 0 && budgetWords > int(maxTexels) {
		log.Printf("face atlas budget clamped to %d MiB (GL_MAX_TEXTURE_BUFFER_SIZE)", int(maxTexels)*wordBytes>>20)
		budgetWords = int(maxTexels)
	}
	atlasBudget = budgetWords

	atlasCap = min(initialAtlasWords, atlasBudget)
	gl.GenBuffers(1, &atlasBuf)
	gl.BindBuffer(gl.TEXTURE_BUFFER, atlasBuf)
	gl.BufferData(gl.TEXTURE_BUFFER, atlasCap*wordBytes, nil, gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.TEXTURE_BUFFER, 0)

	gl.GenTextures(1, &atlasTex)
	gl.BindTexture(gl.TEXTURE_BUFFER, atlasTex)
	gl.TexBuffer(gl.TEXTURE_BUFFER, gl.R32UI, atlasBuf)
	gl.BindTexture(gl.TEXTURE_BUFFER, 0)
}

func cleanupAtlas() {
	for _, b := range retiredBatches {
		gl.DeleteSync(b.fence)
	}
	retiredBatches = nil
	pendingRetire = nil
	if atlasTex != 0 {
		gl.DeleteTextures(1, &atlasTex)
		atlasTex = 0
	}
	if atlasBuf != 0 {
		gl.DeleteBuffers(1, &atlasBuf)
		atlasBuf = 0
	}
	atlasCap = 0
	atlasTail = 0
	atlasBudget = 0
	fragmentedWords = 0
	currentFrame = 0
	lastCompact = 0
	uploadedFrameWords = 0
}

// atlasAlloc reserves a region of the given word capacity. On failure it
// compacts once to reclaim retired space and retries; a second failure means
// the budget is genuinely exhausted.
func atlasAlloc(words int) (int, bool) {
	if atlasTail+words <= atlasCap {
		base := atlasTail
		atlasTail += words
		return base, true
	}
	if ensureAtlasCapacity(atlasTail + words) {
		base := atlasTail
		atlasTail += words
		return base, true
	}
	if fragmentedWords > 0 && len(pendingRetire) == 0 && len(retiredBatches) == 0 {
		compactAtlas()
		if atlasTail+words <= atlasCap || ensureAtlasCapacity(atlasTail+words) {
			base := atlasTail
			atlasTail += words
			return base, true
		}
	}
	return 0, false
}

// ensureAtlasCapacity grows the buffer geometrically up to the budget. The
// live prefix moves device-side; no host round trip.
func ensureAtlasCapacity(requiredWords int) bool {
	if requiredWords <= atlasCap {
		return true
	}
	if requiredWords > atlasBudget {
		return false
	}
	newCap := min(max(atlasCap*2, requiredWords), atlasBudget)

	var newBuf uint32
	gl.GenBuffers(1, &newBuf)
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, newBuf)
	gl.BufferData(gl.COPY_WRITE_BUFFER, newCap*wordBytes, nil, gl.DYNAMIC_DRAW)

	if atlasTail > 0 {
		gl.BindBuffer(gl.COPY_READ_BUFFER, atlasBuf)
		gl.CopyBufferSubData(gl.COPY_READ_BUFFER, gl.COPY_WRITE_BUFFER, 0, 0, atlasTail*wordBytes)
		gl.BindBuffer(gl.COPY_READ_BUFFER, 0)
	}
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, 0)

	gl.DeleteBuffers(1, &atlasBuf)
	atlasBuf = newBuf

	gl.BindTexture(gl.TEXTURE_BUFFER, atlasTex)
	gl.TexBuffer(gl.TEXTURE_BUFFER, gl.R32UI, atlasBuf)
	gl.BindTexture(gl.TEXTURE_BUFFER, 0)

	atlasCap = newCap
	log.Printf("face atlas grew to %d MiB", atlasCap*wordBytes>>20)
	return true
}

// atlasWriteWords pushes face words from the host into [firstWord,
// firstWord+len). The destination must be a fresh region no queued frame
// references; the unsynchronized map then costs no stall.
func atlasWriteWords(firstWord int, words []facecodec.Word) {
	if len(words) == 0 {
		return
	}
	gl.BindBuffer(gl.TEXTURE_BUFFER, atlasBuf)
	flags := uint32(gl.MAP_WRITE_BIT | gl.MAP_UNSYNCHRONIZED_BIT | gl.MAP_INVALIDATE_RANGE_BIT)
	ptr := gl.MapBufferRange(gl.TEXTURE_BUFFER, firstWord*wordBytes, len(words)*wordBytes, flags)
	if ptr != nil {
		dst := unsafe.Slice((*facecodec.Word)(ptr), len(words))
		copy(dst, words)
		gl.UnmapBuffer(gl.TEXTURE_BUFFER)
		uploadedFrameWords += len(words)
	}
	gl.BindBuffer(gl.TEXTURE_BUFFER, 0)
}

// atlasCopyWords moves words device-side within the atlas. Source and
// destination regions are disjoint (the destination is always a fresh
// region), which same-buffer CopyBufferSubData requires.
func atlasCopyWords(srcWord, dstWord, count int) {
	if count == 0 {
		return
	}
	gl.BindBuffer(gl.COPY_READ_BUFFER, atlasBuf)
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, atlasBuf)
	gl.CopyBufferSubData(gl.COPY_READ_BUFFER, gl.COPY_WRITE_BUFFER, srcWord*wordBytes, dstWord*wordBytes, count*wordBytes)
	gl.BindBuffer(gl.COPY_READ_BUFFER, 0)
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, 0)
}

// retireRegion queues a region for reclamation once the current frame's
// fence signals.
func retireRegion(firstWord, capWords int) {
	if capWords <= 0 {
		return
	}
	pendingRetire = append(pendingRetire, atlasRegion{firstWord: firstWord, capWords: capWords})
}

// atlasBeginFrame reclaims regions whose fences have signaled, resets the
// per-frame upload counter, and compacts when fragmentation warrants it.
func atlasBeginFrame() {
	uploadedFrameWords = 0

	kept := retiredBatches[:0]
	for _, b := range retiredBatches {
		status := gl.ClientWaitSync(b.fence, 0, 0)
		if status == gl.ALREADY_SIGNALED || status == gl.CONDITION_SATISFIED {
			for _, r := range b.regions {
				fragmentedWords += r.capWords
			}
			gl.DeleteSync(b.fence)
			continue
		}
		kept = append(kept, b)
	}
	retiredBatches = kept

	maybeCompactAtlas()
}

// atlasEndFrame fences the regions retired this frame.
func atlasEndFrame() {
	currentFrame++
	if len(pendingRetire) == 0 {
		return
	}
	fence := gl.FenceSync(gl.SYNC_GPU_COMMANDS_COMPLETE, 0)
	retiredBatches = append(retiredBatches, retireBatch{fence: fence, regions: pendingRetire})
	pendingRetire = nil
}

func maybeCompactAtlas() {
	if len(pendingRetire) > 0 || len(retiredBatches) > 0 {
		return
	}
	high := fragmentedWords > atlasCap/4 || fragmentedWords*wordBytes > 32*1024*1024
	if !high {
		return
	}
	if currentFrame-lastCompact < compactInterval {
		return
	}
	compactAtlas()
}

// compactAtlas rewrites every live region into a fresh buffer, packed tight
// in region order. Runs only when no retired region is still fenced, so
// nothing queued reads the old buffer's holes.
func compactAtlas() {
	live := make([]*chunkMesh, 0, len(chunkMeshes))
	for _, m := range chunkMeshes {
		if m != nil && m.regionBase >= 0 {
			live = append(live, m)
		}
	}
	sort.Slice(live, func(i, j int) bool {
		return live[i].regionBase < live[j].regionBase
	})

	var newBuf uint32
	gl.GenBuffers(1, &newBuf)
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, newBuf)
	gl.BufferData(gl.COPY_WRITE_BUFFER, atlasCap*wordBytes, nil, gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.COPY_READ_BUFFER, atlasBuf)

	tail := 0
	for _, m := range live {
		if m.capWords > 0 {
			gl.CopyBufferSubData(gl.COPY_READ_BUFFER, gl.COPY_WRITE_BUFFER, m.regionBase*wordBytes, tail*wordBytes, m.capWords*wordBytes)
		}
		m.regionBase = tail
		refreshDrawArrays(m)
		tail += m.capWords
	}
	gl.BindBuffer(gl.COPY_READ_BUFFER, 0)
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, 0)

	gl.DeleteBuffers(1, &atlasBuf)
	atlasBuf = newBuf

	gl.BindTexture(gl.TEXTURE_BUFFER, atlasTex)
	gl.TexBuffer(gl.TEXTURE_BUFFER, gl.R32UI, atlasBuf)
	gl.BindTexture(gl.TEXTURE_BUFFER, 0)

	freed := atlasTail - tail
	atlasTail = tail
	fragmentedWords = 0
	lastCompact = currentFrame
	log.Printf("face atlas compacted: %d regions, %d KiB reclaimed", len(live), freed*wordBytes>>10)
}
