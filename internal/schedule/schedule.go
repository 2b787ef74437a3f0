package schedule

import (
	"container/heap"
	"time"
)

// Scheduler runs callbacks after a virtual delay. Time only moves when Advance is called,
// so the frame loop drives it with the same delta it gives to the rest of the scene and
// tests can step it deterministically. Not safe for concurrent use; all calls happen on
// the frame goroutine.
type Scheduler struct {
	now   time.Duration
	seq   uint64
	queue timerHeap
}

// Timer is a pending callback returned by After. Stop cancels it if it has not fired.
type Timer struct {
	at    time.Duration
	seq   uint64
	fn    func()
	index int // position in the heap, -1 once fired or stopped
}

// New returns a scheduler at virtual time zero with nothing pending.
func New() *Scheduler {
	return &Scheduler{}
}

// Now returns the current virtual time.
func (s *Scheduler) Now() time.Duration {
	return s.now
}

// Pending returns the number of timers that have not fired or been stopped.
func (s *Scheduler) Pending() int {
	return len(s.queue)
}

// After schedules fn to run once d has elapsed. d <= 0 runs on the next Advance.
// fn may be nil for a plain window that only reports Active.
// Timers due at the same instant fire in the order they were scheduled.
func (s *Scheduler) After(d time.Duration, fn func()) *Timer {
	if d < 0 {
		d = 0
	}
	s.seq++
	t := &Timer{at: s.now + d, seq: s.seq, fn: fn}
	heap.Push(&s.queue, t)
	return t
}

// Stop cancels the timer. Returns false if it already fired or was stopped.
func (s *Scheduler) Stop(t *Timer) bool {
	if t == nil || t.index < 0 {
		return false
	}
	heap.Remove(&s.queue, t.index)
	return true
}

// Active reports whether the timer is still waiting to fire.
func (t *Timer) Active() bool {
	return t != nil && t.index >= 0
}

// Advance moves virtual time forward by dt and fires every timer that falls due, in time order.
// Callbacks may schedule new timers; those also fire in this call if they fall inside the window.
func (s *Scheduler) Advance(dt time.Duration) {
	if dt < 0 {
		dt = 0
	}
	end := s.now + dt
	for len(s.queue) > 0 && s.queue[0].at <= end {
		t := heap.Pop(&s.queue).(*Timer)
		// Callbacks observe the time they were due, not the end of the window.
		if t.at > s.now {
			s.now = t.at
		}
		if t.fn != nil {
			t.fn()
		}
	}
	s.now = end
}

// Clear stops every pending timer.
func (s *Scheduler) Clear() {
	for _, t := range s.queue {
		t.index = -1
	}
	s.queue = s.queue[:0]
}

// Seconds converts a float seconds value (frame delta) to a Duration.
func Seconds(sec float32) time.Duration {
	return time.Duration(float64(sec) * float64(time.Second))
}

type timerHeap []*Timer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].at == h[j].at {
		return h[i].seq < h[j].seq
	}
	return h[i].at < h[j].at
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	t := x.(*Timer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}
