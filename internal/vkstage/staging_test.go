package vkstage

import "testing"

func TestRingReserveSequential(t *testing.T) {
	r := ring{size: 64}

	off, ok := r.reserve(16)
	if !ok || off != 0 {
		t.Fatalf("first reserve: got (%d,%v), want (0,true)", off, ok)
	}
	off, ok = r.reserve(16)
	if !ok || off != 16 {
		t.Fatalf("second reserve: got (%d,%v), want (16,true)", off, ok)
	}
	if got := r.used(); got != 32 {
		t.Fatalf("used: got %d, want 32", got)
	}
}

func TestRingReserveAligns(t *testing.T) {
	r := ring{size: 64}
	if _, ok := r.reserve(3); !ok {
		t.Fatal("reserve(3) should fit")
	}
	off, ok := r.reserve(4)
	if !ok || off != 4 {
		t.Fatalf("aligned reserve: got (%d,%v), want (4,true)", off, ok)
	}
}

func TestRingReserveFullAndReset(t *testing.T) {
	r := ring{size: 32}
	if _, ok := r.reserve(32); !ok {
		t.Fatal("exact-fit reserve should succeed")
	}
	if _, ok := r.reserve(1); ok {
		t.Fatal("reserve past capacity should fail")
	}

	r.reset()
	if off, ok := r.reserve(32); !ok || off != 0 {
		t.Fatalf("reserve after reset: got (%d,%v), want (0,true)", off, ok)
	}
}

func TestRingOversizedRequest(t *testing.T) {
	r := ring{size: 16}
	if _, ok := r.reserve(17); ok {
		t.Fatal("request larger than the buffer should fail")
	}
	if got := r.used(); got != 0 {
		t.Fatalf("failed reserve should not consume space, used %d", got)
	}
}

func TestRingZeroReserve(t *testing.T) {
	r := ring{size: 8}
	if _, ok := r.reserve(0); !ok {
		t.Fatal("zero-byte reserve should succeed")
	}
	if _, ok := r.reserve(-1); ok {
		t.Fatal("negative reserve should fail")
	}
}
