package anim

import (
	"sync"
	"time"
)

// FrameFunc is invoked once per scheduled frame.
type FrameFunc func(now time.Time)

// FrameHandle identifies a pending frame request. The zero handle is never
// issued.
type FrameHandle uint64

// Scheduler hands out one-shot frame callbacks, like a display refresh
// callback in a browser.
type Scheduler interface {
	RequestFrame(fn FrameFunc) FrameHandle
	CancelFrame(h FrameHandle)
}

// FrameQueue is a Scheduler pumped by its owner. Callbacks requested while a
// pump is running are deferred to the next pump.
type FrameQueue struct {
	mu      sync.Mutex
	next    FrameHandle
	pending map[FrameHandle]FrameFunc
	order   []FrameHandle
}

func NewFrameQueue() *FrameQueue {
	return &FrameQueue{pending: make(map[FrameHandle]FrameFunc)}
}

func (q *FrameQueue) RequestFrame(fn FrameFunc) FrameHandle {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.next++
	q.pending[q.next] = fn
	q.order = append(q.order, q.next)
	return q.next
}

func (q *FrameQueue) CancelFrame(h FrameHandle) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.pending, h)
}

// Pump runs every callback queued before the call and returns how many ran.
func (q *FrameQueue) Pump(now time.Time) int {
	q.mu.Lock()
	batch := q.order
	q.order = nil
	fns := make([]FrameFunc, 0, len(batch))
	for _, h := range batch {
		if fn, ok := q.pending[h]; ok {
			fns = append(fns, fn)
			delete(q.pending, h)
		}
	}
	q.mu.Unlock()

	for _, fn := range fns {
		fn(now)
	}
	return len(fns)
}

// Pending reports the number of live requests.
func (q *FrameQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// TickerScheduler fires each request once after a fixed frame interval on
// its own timer goroutine.
type TickerScheduler struct {
	interval time.Duration
	mu       sync.Mutex
	next     FrameHandle
	timers   map[FrameHandle]*time.Timer
}

func NewTickerScheduler(fps int) *TickerScheduler {
	if fps <= 0 {
		fps = 60
	}
	return &TickerScheduler{
		interval: time.Second / time.Duration(fps),
		timers:   make(map[FrameHandle]*time.Timer),
	}
}

func (s *TickerScheduler) Interval() time.Duration { return s.interval }

func (s *TickerScheduler) RequestFrame(fn FrameFunc) FrameHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	h := s.next
	s.timers[h] = time.AfterFunc(s.interval, func() {
		s.mu.Lock()
		_, live := s.timers[h]
		delete(s.timers, h)
		s.mu.Unlock()
		if live {
			fn(time.Now())
		}
	})
	return h
}

func (s *TickerScheduler) CancelFrame(h FrameHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[h]; ok {
		t.Stop()
		delete(s.timers, h)
	}
}

// Close cancels every pending request.
func (s *TickerScheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for h, t := range s.timers {
		t.Stop()
		delete(s.timers, h)
	}
}

// Pending reports the number of armed timers.
func (s *TickerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
