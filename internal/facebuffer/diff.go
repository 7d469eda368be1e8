package facebuffer

import (
	"unsafe"

	"github.com/cespare/xxhash/v2"

	"github.com/kbjakex/voxels03/internal/facecodec"
)

// Range is a run of face words to push from the host, indexed in words
// relative to the destination region base.
type Range struct {
	First, Count int
}

// Span is a run of unchanged face words to copy device-side from the old
// region to the new one.
type Span struct {
	SrcFirst, DstFirst, Count int
}

// Diff turns a previously uploaded face sequence into the next one. Copy
// spans and Upload ranges together cover the destination exactly once;
// Unchanged means the old region can be kept as-is.
type Diff struct {
	Unchanged bool
	Copy      []Span
	Upload    []Range
}

// Changed runs closer than this merge into one upload range. Re-sending a few
// unchanged words is cheaper than an extra buffer map per run.
const uploadMergeGap = 32

// UploadWords returns the number of words the diff pushes from the host.
func (d Diff) UploadWords() int {
	n := 0
	for _, r := range d.Upload {
		n += r.Count
	}
	return n
}

// Compare diffs two face sequences.
//
// Equal-length sequences diff by changed runs, so a texture edit touches only
// the words it changed. When the length differs the common prefix and suffix
// become device-side copies and only the middle window uploads; a voxel edit
// inserts or removes a small contiguous run, so the window stays near the
// edit instead of re-sending the tail that merely shifted.
func Compare(old, next []facecodec.Word) Diff {
	switch {
	case len(old) == len(next):
		return compareEqualLen(old, next)
	case len(old) == 0:
		return Diff{Upload: []Range{{First: 0, Count: len(next)}}}
	case len(next) == 0:
		return Diff{}
	default:
		return compareShifted(old, next)
	}
}

func compareEqualLen(old, next []facecodec.Word) Diff {
	var upload []Range
	n := len(next)
	for i := 0; i < n; {
		if old[i] == next[i] {
			i++
			continue
		}
		j := i + 1
		for j < n {
			if old[j] != next[j] {
				j++
				continue
			}
			// Look ahead: swallow short unchanged gaps.
			k := j
			for k < n && old[k] == next[k] && k-j < uploadMergeGap {
				k++
			}
			if k < n && old[k] != next[k] {
				j = k
				continue
			}
			break
		}
		upload = append(upload, Range{First: i, Count: j - i})
		i = j
	}
	if upload == nil {
		if n == 0 {
			return Diff{}
		}
		return Diff{Unchanged: true}
	}

	// Unchanged stretches between uploads become device-side copies.
	var spans []Span
	pos := 0
	for _, r := range upload {
		if r.First > pos {
			spans = append(spans, Span{SrcFirst: pos, DstFirst: pos, Count: r.First - pos})
		}
		pos = r.First + r.Count
	}
	if pos < n {
		spans = append(spans, Span{SrcFirst: pos, DstFirst: pos, Count: n - pos})
	}
	return Diff{Copy: spans, Upload: upload}
}

func compareShifted(old, next []facecodec.Word) Diff {
	minLen := min(len(old), len(next))

	p := 0
	for p < minLen && old[p] == next[p] {
		p++
	}
	s := 0
	for s < minLen-p && old[len(old)-1-s] == next[len(next)-1-s] {
		s++
	}

	var d Diff
	if p > 0 {
		d.Copy = append(d.Copy, Span{SrcFirst: 0, DstFirst: 0, Count: p})
	}
	if s > 0 {
		d.Copy = append(d.Copy, Span{SrcFirst: len(old) - s, DstFirst: len(next) - s, Count: s})
	}
	if mid := len(next) - s - p; mid > 0 {
		d.Upload = append(d.Upload, Range{First: p, Count: mid})
	}
	return d
}

// Fingerprint hashes a face sequence for cheap change detection. Process-
// local only: the hash is taken over native-endian words.
func Fingerprint(words []facecodec.Word) uint64 {
	if len(words) == 0 {
		return xxhash.Sum64(nil)
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), len(words)*4)
	return xxhash.Sum64(b)
}
