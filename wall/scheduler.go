package wall

import (
	"container/heap"
	"time"
)

// plannedEffect is a side effect due at a point in time, tagged with the
// generation of its owner key. Effects whose generation is stale by the time
// they come due are dropped without running.
type plannedEffect struct {
	at  time.Time
	key string
	gen uint64
	fn  func(now time.Time)
}

type effectHeap []plannedEffect

func (h effectHeap) Len() int           { return len(h) }
func (h effectHeap) Less(i, j int) bool { return h[i].at.Before(h[j].at) }
func (h effectHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *effectHeap) Push(x any)        { *h = append(*h, x.(plannedEffect)) }
func (h *effectHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// Scheduler is a time-ordered queue of cancellable side effects, driven by a
// single cooperative tick. Cancellation is per key: bumping a key's
// generation atomically invalidates every effect scheduled under it, so no
// stale timer can mutate a wall after it has been reset or deactivated.
type Scheduler struct {
	queue effectHeap
	gens  map[string]uint64
}

// NewScheduler returns an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{gens: make(map[string]uint64)}
}

// At schedules fn to run at the given time under key. The effect only runs if
// the key has not been cancelled in the meantime.
func (s *Scheduler) At(key string, at time.Time, fn func(now time.Time)) {
	heap.Push(&s.queue, plannedEffect{at: at, key: key, gen: s.gens[key], fn: fn})
}

// After schedules fn to run d after now under key.
func (s *Scheduler) After(key string, now time.Time, d time.Duration, fn func(now time.Time)) {
	s.At(key, now.Add(d), fn)
}

// Cancel invalidates every pending effect scheduled under key.
func (s *Scheduler) Cancel(key string) {
	s.gens[key]++
}

// Tick runs every effect due at or before now, in time order. Effects may
// schedule further effects; anything they plan for a later time waits for a
// later tick.
func (s *Scheduler) Tick(now time.Time) {
	for s.queue.Len() > 0 && !now.Before(s.queue[0].at) {
		pe := heap.Pop(&s.queue).(plannedEffect)
		if pe.gen != s.gens[pe.key] {
			continue // cancelled
		}
		pe.fn(now)
	}
}

// Pending returns the number of queued effects, cancelled ones included.
func (s *Scheduler) Pending() int { return s.queue.Len() }
