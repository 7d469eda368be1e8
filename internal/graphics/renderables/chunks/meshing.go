package chunks

import (
	"log"

	"github.com/kbjakex/voxels03/internal/meshing"
	"github.com/kbjakex/voxels03/internal/world"
)

// Chunk meshes by coordinate. Render thread only.
var chunkMeshes map[world.ChunkCoord]*chunkMesh

// Global mesh worker pool
var meshPool *meshing.WorkerPool

// Chunks with a rebuild in flight. A dirty chunk submits at most one job;
// edits racing a rebuild re-dirty the chunk and queue the next round after
// the result lands, so two rebuilds of one chunk never interleave.
var pendingMesh map[world.ChunkCoord]struct{}

var meshResults = make(chan meshing.MeshResult, 128)

// InitMeshSystem starts the mesh worker pool.
func InitMeshSystem(workers int) {
	meshPool = meshing.NewWorkerPool(workers, 256)
	chunkMeshes = make(map[world.ChunkCoord]*chunkMesh)
	pendingMesh = make(map[world.ChunkCoord]struct{})
}

// ShutdownMeshSystem stops the workers and releases the atlas.
func ShutdownMeshSystem() {
	if meshPool != nil {
		meshPool.Shutdown()
		meshPool = nil
	}
	cleanupAtlas()
}

// ProcessMeshResults drains completed rebuilds and applies them to the atlas.
// Called once per frame from the render thread.
func ProcessMeshResults() {
	for {
		select {
		case result := <-meshResults:
			applyMeshResult(result)
		default:
			return
		}
	}
}

// applyMeshResult lands one rebuilt face sequence: plan the transition,
// allocate a fresh region, push upload ranges, copy unchanged spans from the
// old region, then swap the draw metadata and commit. The swap happens before
// this frame's draws are issued, so no draw sees a mixed length and content.
func applyMeshResult(result meshing.MeshResult) {
	delete(pendingMesh, result.Coord)
	if result.Error != nil {
		log.Printf("mesh %v: %v", result.Coord, result.Error)
		return
	}

	mesh := chunkMeshes[result.Coord]
	if mesh == nil {
		mesh = &chunkMesh{regionBase: -1}
		chunkMeshes[result.Coord] = mesh
	}

	u := mesh.mirror.Plan(result.Words)

	if u.Diff.Unchanged {
		mesh.mirror.Commit(u)
		return
	}

	if len(u.Words) == 0 {
		if mesh.regionBase >= 0 {
			retireRegion(mesh.regionBase, mesh.capWords)
			mesh.regionBase = -1
			mesh.capWords = 0
		}
		mesh.faceCount = 0
		mesh.firsts = mesh.firsts[:0]
		mesh.counts = mesh.counts[:0]
		mesh.mirror.Commit(u)
		return
	}

	newBase, ok := atlasAlloc(u.CapWords)
	if !ok {
		// The previous sequence stays authoritative and drawn. The next edit
		// re-dirties the chunk and retries.
		log.Printf("face atlas out of budget: chunk %v keeps %d faces (wanted %d)",
			result.Coord, mesh.mirror.Len(), len(u.Words))
		return
	}

	// Host uploads first, then device copies. The copies are queued after the
	// unmap, so both orderings resolve before any draw touches the region.
	for _, r := range u.Diff.Upload {
		atlasWriteWords(newBase+r.First, u.Words[r.First:r.First+r.Count])
	}
	for _, s := range u.Diff.Copy {
		atlasCopyWords(mesh.regionBase+s.SrcFirst, newBase+s.DstFirst, s.Count)
	}

	if mesh.regionBase >= 0 {
		retireRegion(mesh.regionBase, mesh.capWords)
	}
	mesh.regionBase = newBase
	mesh.capWords = u.CapWords
	mesh.faceCount = int32(len(u.Words))
	refreshDrawArrays(mesh)
	mesh.mirror.Commit(u)
}

// refreshDrawArrays rebuilds the cached MultiDrawArrays parameters: one
// 4-vertex triangle fan per face, with firsts in absolute vertex indices so
// gl_VertexID/4 is the face's atlas word index.
func refreshDrawArrays(m *chunkMesh) {
	n := int(m.faceCount)
	if cap(m.firsts) < n {
		m.firsts = make([]int32, n)
		m.counts = make([]int32, n)
	}
	m.firsts = m.firsts[:n]
	m.counts = m.counts[:n]
	for i := range n {
		m.firsts[i] = int32((m.regionBase + i) * 4)
		m.counts[i] = 4
	}
}

// ensureChunkMesh submits a rebuild when the chunk is dirty (or has no mesh
// yet) and none is in flight. Returns the current mesh, which keeps drawing
// the previous sequence until the rebuild lands.
func ensureChunkMesh(w *world.World, ch *world.Chunk) *chunkMesh {
	if ch == nil {
		return nil
	}
	coord := ch.Coord
	existing := chunkMeshes[coord]
	if existing != nil && !ch.IsDirty() {
		return existing
	}
	if _, busy := pendingMesh[coord]; busy || meshPool == nil {
		return existing
	}

	job := meshing.MeshJob{
		Chunk:      ch,
		Solid:      w,
		Coord:      coord,
		ResultChan: meshResults,
	}
	if meshPool.SubmitJob(job) {
		pendingMesh[coord] = struct{}{}
		// Clean now: an edit racing the rebuild re-dirties and requeues.
		ch.SetClean()
	}
	return existing
}

// PruneMeshes drops meshes for chunks that are unloaded or beyond radius
// (Chebyshev, matching the store), retiring their atlas regions. Returns the
// number freed.
func PruneMeshes(w *world.World, center world.ChunkCoord, radius int) int {
	freed := 0
	for coord, m := range chunkMeshes {
		inRange := abs(coord.X-center.X) <= radius &&
			abs(coord.Y-center.Y) <= radius &&
			abs(coord.Z-center.Z) <= radius
		if inRange && w.Chunk(coord) != nil {
			continue
		}
		if _, busy := pendingMesh[coord]; busy {
			// Result in flight; the next prune pass gets it.
			continue
		}
		if m != nil && m.regionBase >= 0 {
			retireRegion(m.regionBase, m.capWords)
		}
		delete(chunkMeshes, coord)
		freed++
	}
	return freed
}

// Stats is a render-thread snapshot of mesh and atlas state for the overlay.
type Stats struct {
	Meshes          int
	Faces           int
	AtlasUsedWords  int
	AtlasCapWords   int
	FragmentedWords int
	PendingJobs     int
	QueuedJobs      int
	UploadedWords   int
}

// CurrentStats reads the package state. Render thread only.
func CurrentStats() Stats {
	s := Stats{
		Meshes:          len(chunkMeshes),
		AtlasUsedWords:  atlasTail,
		AtlasCapWords:   atlasCap,
		FragmentedWords: fragmentedWords,
		PendingJobs:     len(pendingMesh),
		UploadedWords:   uploadedFrameWords,
	}
	for _, m := range chunkMeshes {
		s.Faces += int(m.faceCount)
	}
	if meshPool != nil {
		s.QueuedJobs = meshPool.GetQueueLength()
	}
	return s
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
