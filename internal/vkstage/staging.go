package vkstage

// ring hands out offsets into the staging buffer front to back. There is no
// free list: the whole buffer recycles at once when a flush completes, which
// matches how the uploader batches copies between fences.
type ring struct {
	size int
	head int
}

// Copy offsets keep word alignment; face words are 4 bytes.
const stagingAlign = 4

// reserve returns an aligned offset for n bytes, or false when the request
// does not fit the remaining space. A request larger than the whole buffer
// never fits, so callers must split uploads at StagingBytes.
func (r *ring) reserve(n int) (int, bool) {
	if n <= 0 {
		return r.head, n == 0
	}
	off := (r.head + stagingAlign - 1) &^ (stagingAlign - 1)
	if off+n > r.size {
		return 0, false
	}
	r.head = off + n
	return off, true
}

// reset recycles the whole buffer. Only valid once the device is done reading
// from it, which the uploader guarantees by waiting on its copy fence.
func (r *ring) reset() {
	r.head = 0
}

// used returns the bytes currently reserved.
func (r *ring) used() int {
	return r.head
}
