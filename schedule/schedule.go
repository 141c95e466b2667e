// Package schedule implements the priority-ordered set of next-event times
// spec.md §4.6 calls the schedule: a binary heap keyed by (time,
// stable-id), exposing insert, remove, and decrease/increase-key in
// O(log n), plus peeking and enumerating the whole imminent set at the
// current minimum.
//
// The heap itself is container/heap.Interface, the same mechanism
// katalvlaran/lvlath's dijkstra package and prim_kruskal use for their
// priority queues. dijkstra's nodePQ gets away with a "lazy" heap (push
// duplicates, skip stale pops) because a vertex's distance only ever
// improves. A DEVS schedule entry is rescheduled on every transition of a
// live atomic, arbitrarily often and in either direction, so this package
// instead gives every element a self-tracked index (the pattern
// container/heap's own documentation recommends for a fixable priority
// queue) and uses heap.Fix/heap.Remove for true O(log n) decrease/increase
// key and removal, rather than accumulating stale entries forever.
package schedule

import (
	"container/heap"
	"errors"
	"fmt"

	"github.com/smiz/devscore/devtime"
	"github.com/smiz/devscore/model"
)

// ErrTimeRegression indicates a leaf computed a next-event time strictly
// before the schedule's current time: spec.md §7's "Time regression"
// error kind, typically a modelling bug or a numerical event locator
// returning a negative interval.
var ErrTimeRegression = errors.New("schedule: computed time precedes current time")

// ErrNotScheduled indicates Remove or Reschedule was asked to operate on a
// leaf with no current schedule entry (ScheduleIndex == -1).
var ErrNotScheduled = errors.New("schedule: leaf has no schedule entry")

// entry is one (time, stable-id, leaf) triple. stableID breaks ties
// between leaves sharing next, giving a fixed, arbitrary-but-consistent
// enumeration order for the imminent set — spec.md §4.6 requires only that
// ties be broken consistently, not by any particular rule, and §9 forbids
// model designs that depend on which order they are visited in.
type entry[T devtime.Numeric, V comparable] struct {
	next     T
	stableID uint64
	leaf     *model.Leaf[T, V]
}

// heapSlice is the container/heap.Interface implementation. Its Less,
// Swap, Push and Pop are a direct generalisation of dijkstra.nodePQ
// (dijkstra.go) from a single ordering key (dist) to the (time, stableID)
// pair, plus index maintenance in Swap so elements can locate themselves
// for Fix/Remove.
type heapSlice[T devtime.Numeric, V comparable] []*entry[T, V]

func (h heapSlice[T, V]) Len() int { return len(h) }

func (h heapSlice[T, V]) Less(i, j int) bool {
	if h[i].next != h[j].next {
		return devtime.Less(h[i].next, h[j].next)
	}
	return h[i].stableID < h[j].stableID
}

func (h heapSlice[T, V]) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].leaf.ScheduleIndex = i
	h[j].leaf.ScheduleIndex = j
}

func (h *heapSlice[T, V]) Push(x any) {
	e := x.(*entry[T, V])
	e.leaf.ScheduleIndex = len(*h)
	*h = append(*h, e)
}

func (h *heapSlice[T, V]) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	e.leaf.ScheduleIndex = -1
	return e
}

// Schedule is the live priority structure tracking every scheduled leaf's
// next-event time. The zero value is not usable; construct with New.
type Schedule[T devtime.Numeric, V comparable] struct {
	heap heapSlice[T, V]
	// byLeaf indexes entries by leaf so Remove/Reschedule can tell whether
	// a leaf is scheduled, and Reschedule can reach its entry, without a
	// linear scan; ScheduleIndex alone would suffice for the heap
	// operations themselves.
	byLeaf  map[*model.Leaf[T, V]]*entry[T, V]
	counter uint64
}

// Option configures a new Schedule.
type Option func(*config)

type config struct {
	capacity int
}

// WithCapacity pre-sizes the internal heap storage, avoiding reallocation
// when the approximate number of live leaves is known up front.
func WithCapacity(n int) Option {
	if n < 0 {
		panic("schedule: WithCapacity requires a non-negative capacity")
	}
	return func(c *config) { c.capacity = n }
}

// New constructs an empty Schedule.
func New[T devtime.Numeric, V comparable](opts ...Option) *Schedule[T, V] {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Schedule[T, V]{
		heap:   make(heapSlice[T, V], 0, cfg.capacity),
		byLeaf: make(map[*model.Leaf[T, V]]*entry[T, V], cfg.capacity),
	}
}

// Len reports the number of scheduled leaves.
func (s *Schedule[T, V]) Len() int { return len(s.heap) }

// Insert adds leaf to the schedule with the given absolute next-event
// time. leaf must not already be scheduled.
func (s *Schedule[T, V]) Insert(leaf *model.Leaf[T, V], next T) {
	s.counter++
	e := &entry[T, V]{next: next, stableID: s.counter, leaf: leaf}
	s.byLeaf[leaf] = e
	heap.Push(&s.heap, e)
}

// Remove drops leaf's schedule entry, e.g. because it left the simulation
// in a structure change.
func (s *Schedule[T, V]) Remove(leaf *model.Leaf[T, V]) error {
	if _, ok := s.byLeaf[leaf]; !ok {
		return fmt.Errorf("%w", ErrNotScheduled)
	}
	heap.Remove(&s.heap, leaf.ScheduleIndex)
	delete(s.byLeaf, leaf)
	return nil
}

// Reschedule updates leaf's next-event time in place (spec.md §4.6's
// decrease/increase key), re-establishing the heap invariant in O(log n)
// via heap.Fix. now is the current schedule time, used only to reject a
// regression (next < now) with ErrTimeRegression.
func (s *Schedule[T, V]) Reschedule(leaf *model.Leaf[T, V], now, next T) error {
	e, ok := s.byLeaf[leaf]
	if !ok {
		return fmt.Errorf("%w", ErrNotScheduled)
	}
	if devtime.Less(next, now) {
		return fmt.Errorf("%w: next=%v < now=%v", ErrTimeRegression, next, now)
	}
	e.next = next
	heap.Fix(&s.heap, leaf.ScheduleIndex)
	return nil
}

// NextEventTime returns the minimum next-event time currently scheduled,
// or devtime.Inf[T]() if the schedule is empty (the simulation is
// quiescent, spec.md §4.5 step 1).
func (s *Schedule[T, V]) NextEventTime() T {
	if len(s.heap) == 0 {
		return devtime.Inf[T]()
	}
	return s.heap[0].next
}

// Imminent returns every leaf whose scheduled time equals NextEventTime():
// the imminent set I of spec.md §4.5 step 2. The order of the returned
// slice is unspecified and must not be relied upon (spec.md §9).
func (s *Schedule[T, V]) Imminent() []*model.Leaf[T, V] {
	if len(s.heap) == 0 {
		return nil
	}
	tN := s.heap[0].next
	out := make([]*model.Leaf[T, V], 0, 1)
	for _, e := range s.heap {
		if devtime.Equal(e.next, tN) {
			out = append(out, e.leaf)
		}
	}
	return out
}
