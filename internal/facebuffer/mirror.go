package facebuffer

import "github.com/kbjakex/voxels03/internal/facecodec"

// Region capacities grow geometrically from this floor so small chunks do not
// reallocate on every few added faces.
const minCapWords = 64

// Mirror is the CPU-side authority for one chunk's face sequence and the
// word capacity of its device allocation. Updates are two-phase: Plan
// computes the transition, the caller performs the device writes, and only
// then Commit advances the mirror. If the device side fails (out of budget),
// skipping Commit leaves the previous sequence authoritative and still drawn.
type Mirror struct {
	words []facecodec.Word
	hash  uint64
	cap   int
}

// Update is a planned transition to a new face sequence.
type Update struct {
	Words []facecodec.Word
	Diff  Diff
	// CapWords is the device capacity the new region needs. When Grow is set
	// the capacity increased and the diff is a full upload.
	CapWords int
	Grow     bool
}

// Words returns the committed face sequence. Callers must not modify it.
func (m *Mirror) Words() []facecodec.Word { return m.words }

// Len returns the committed face count in words.
func (m *Mirror) Len() int { return len(m.words) }

// CapWords returns the device capacity the mirror currently assumes.
func (m *Mirror) CapWords() int { return m.cap }

// Fingerprint returns the hash of the committed sequence.
func (m *Mirror) Fingerprint() uint64 { return m.hash }

// Plan computes the transition from the committed sequence to next. The
// mirror takes ownership of next once the update is committed.
func (m *Mirror) Plan(next []facecodec.Word) Update {
	u := Update{Words: next, CapWords: m.cap}
	if len(next) > m.cap {
		u.CapWords = growCap(m.cap, len(next))
		u.Grow = true
		// A fresh, larger allocation: re-send everything rather than
		// stitching copies out of the old region.
		u.Diff = Diff{Upload: []Range{{First: 0, Count: len(next)}}}
		return u
	}
	u.Diff = Compare(m.words, next)
	return u
}

// Commit makes a planned update authoritative.
func (m *Mirror) Commit(u Update) {
	m.words = u.Words
	m.hash = Fingerprint(u.Words)
	m.cap = u.CapWords
}

func growCap(cur, need int) int {
	c := cur
	if c < minCapWords {
		c = minCapWords
	}
	for c < need {
		c *= 2
	}
	return c
}
