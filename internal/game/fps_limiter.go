package game

import (
	"time"

	"github.com/kbjakex/voxels03/internal/config"
)

// FPSLimiter paces the frame loop to the configured FPS cap.
type FPSLimiter struct {
	next time.Time
}

func NewFPSLimiter() *FPSLimiter {
	return &FPSLimiter{}
}

// Wait blocks until the next frame is due. Sleeps most of the interval and
// spins the last stretch, which holds the cap much tighter than a plain
// time.Sleep. While paused the loop drops to 60 FPS regardless of the cap.
func (f *FPSLimiter) Wait(paused bool) {
	limit := config.GetFPSLimit()
	if paused {
		limit = 60
	}

	if limit <= 0 {
		f.next = time.Time{}
		return
	}

	target := time.Second / time.Duration(limit)

	if f.next.IsZero() {
		f.next = time.Now().Add(target)
	} else {
		f.next = f.next.Add(target)
	}

	for {
		remaining := time.Until(f.next)
		if remaining <= 0 {
			break
		}
		if remaining > 200*time.Microsecond {
			time.Sleep(remaining - 200*time.Microsecond)
		}
		if time.Until(f.next) <= 0 {
			break
		}
	}

	// After a hitch longer than one frame, resync instead of fast-forwarding.
	if late := -time.Until(f.next); late > target {
		f.next = time.Now().Add(target)
	}
}
