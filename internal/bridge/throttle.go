package bridge

import (
	"sync"
	"time"

	"github.com/mjvo/sketchbridge/internal/monitoring"
)

type size struct {
	width  float64
	height float64
}

// resizeThrottle coalesces high-frequency resize reports with trailing-edge
// behavior: a report older than the window applies immediately; anything
// inside the window is parked as pending, and when the timer fires only the
// most recent pending value is delivered.
type resizeThrottle struct {
	mu      sync.Mutex
	window  time.Duration
	deliver func(map[string]any)
	metrics *monitoring.Metrics

	last     *size
	lastTime time.Time
	pending  *size
	payload  map[string]any
	timer    *time.Timer
}

func newResizeThrottle(window time.Duration, deliver func(map[string]any), metrics *monitoring.Metrics) *resizeThrottle {
	return &resizeThrottle{
		window:  window,
		deliver: deliver,
		metrics: metrics,
	}
}

func (t *resizeThrottle) observe(width, height float64, payload map[string]any) {
	t.mu.Lock()

	d := size{width: width, height: height}
	if (t.last != nil && *t.last == d) || (t.pending != nil && *t.pending == d) {
		t.mu.Unlock()
		t.coalesced()
		return
	}

	now := time.Now()
	if t.last == nil || now.Sub(t.lastTime) >= t.window {
		t.last = &d
		t.lastTime = now
		t.pending = nil
		t.payload = nil
		if t.timer != nil {
			t.timer.Stop()
			t.timer = nil
		}
		t.mu.Unlock()
		t.deliver(payload)
		return
	}

	if t.pending != nil {
		t.coalesced()
	}
	t.pending = &d
	t.payload = payload
	if t.timer == nil {
		remaining := t.window - now.Sub(t.lastTime)
		t.timer = time.AfterFunc(remaining, t.fire)
	}
	t.mu.Unlock()
}

// fire delivers whatever pending value survived the window.
func (t *resizeThrottle) fire() {
	t.mu.Lock()
	d := t.pending
	payload := t.payload
	t.pending = nil
	t.payload = nil
	t.timer = nil
	if d != nil {
		t.last = d
		t.lastTime = time.Now()
	}
	t.mu.Unlock()

	if d != nil {
		t.deliver(payload)
	}
}

// reset forgets the last applied and pending sizes and cancels the timer.
func (t *resizeThrottle) reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = nil
	t.pending = nil
	t.payload = nil
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *resizeThrottle) coalesced() {
	if t.metrics != nil {
		t.metrics.ResizesCoalesced.Inc()
	}
}
