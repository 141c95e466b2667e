package model

import "github.com/smiz/devscore/devtime"

// Atomic is the behaviour contract for a leaf model, spec.md §4.2. S, the
// internal state, lives behind the implementation; the engine only ever
// calls these five methods, always in the order the invariants of §8
// describe, and never concurrently with itself.
type Atomic[T devtime.Numeric, V comparable] interface {
	// TimeAdvance returns the duration until this model's next autonomous
	// event, in [0, devtime.Inf[T]()]. Inf means passive: the model never
	// fires on its own and can only be moved by external input.
	TimeAdvance() T

	// Output produces this step's output bag. Called once per step when
	// this model is imminent, before DeltaInt/DeltaConf. It must not
	// mutate state; DeltaInt/DeltaConf do that immediately afterward.
	Output() Bag[V]

	// DeltaInt advances state across an autonomous event. Called exactly
	// once per step for an imminent model that received no input this step.
	DeltaInt()

	// DeltaExt advances state in response to external input arriving after
	// e units have elapsed since this model's last transition, with this
	// model not imminent. e is always in [0, TimeAdvance()) at the time of
	// the call.
	DeltaExt(e T, xb Bag[V])

	// DeltaConf advances state when this model is both imminent and a
	// receiver of input this step: spec.md §4.2's unambiguous choice is to
	// run DeltaConf, never DeltaInt followed by DeltaExt.
	DeltaConf(xb Bag[V])
}

// MealyAtomic extends Atomic with the two output functions the simulator
// calls instead of Output when a Mealy model participates in a
// simultaneous-event set that also delivers it input (spec.md §4.3). A
// model satisfies this interface simply by implementing the two extra
// methods; there is no separate registration step, and a model that does
// not implement it is never asked to.
type MealyAtomic[T devtime.Numeric, V comparable] interface {
	Atomic[T, V]

	// ExternalOutput is the output produced when the model is not imminent
	// but has received input xb after e elapsed time units.
	ExternalOutput(e T, xb Bag[V]) Bag[V]

	// ConfluentOutput is the output produced when the model is imminent and
	// has also received input xb.
	ConfluentOutput(xb Bag[V]) Bag[V]
}

// Faulted is an optional hook an Atomic implementation may satisfy to
// report a failure discovered inside one of the five contract methods that
// the base Atomic/MealyAtomic signatures have no return channel for — most
// notably a hybrid.Atomic surfacing an event-locator failure it hit while
// computing TimeAdvance. The simulator calls Faulted after every call into
// Impl and aborts the current step, before committing any further
// mutation, the first time it returns non-nil.
type Faulted interface {
	Faulted() error
}

// OutputCollector is an optional hook an Atomic implementation may satisfy
// to release resources associated with a bag of values once the simulator
// has finished routing and notifying listeners for it. The simulator looks
// for it only on a Leaf's Impl; a Coupled model is never asked. It
// generalises adevs_hybrid.h's ode_system::gc_output (see SPEC_FULL.md,
// Supplemented features) past C++'s manual memory management: a Go
// implementation would typically use it to return pooled buffers.
type OutputCollector[V comparable] interface {
	CollectOutput(Bag[V])
}

// Leaf wraps one user Atomic (or MealyAtomic) implementation with the
// bookkeeping the simulator needs: the time of its last transition and its
// position, if any, in the schedule. Leaf is the concrete type behind the
// "Atomic" arm of the Node sum type.
type Leaf[T devtime.Numeric, V comparable] struct {
	base[T, V]

	// Impl is the user-supplied behaviour. Exported so package sim can call
	// its methods directly; package model never calls into it itself.
	Impl Atomic[T, V]

	// TLast is the absolute simulation time of this leaf's last transition.
	TLast T

	// ScheduleIndex is maintained exclusively by package schedule for
	// O(log n) decrease-key/removal, mirroring the index field the
	// container/heap documentation recommends for a fixable heap element.
	// -1 means "not currently scheduled".
	ScheduleIndex int
}

// NewLeaf wraps impl as a freshly-created, unscheduled Leaf with
// TLast = tStart. Callers wrap each Atomic this way before adding it to a
// Coupled model; package sim resets TLast to the admission time when it
// schedules the leaf, be it at simulator construction or via a structure
// change.
func NewLeaf[T devtime.Numeric, V comparable](impl Atomic[T, V], tStart T) *Leaf[T, V] {
	return &Leaf[T, V]{Impl: impl, TLast: tStart, ScheduleIndex: -1}
}

func (*Leaf[T, V]) node() {}

// Parent returns the Coupled model l is currently a direct child of, or nil
// if l is a detached root.
func (l *Leaf[T, V]) Parent() *Coupled[T, V] { return l.parent }

// AsMealy returns impl's MealyAtomic view and true if it implements one,
// or the zero value and false otherwise. This is the single point where
// the engine discovers Mealy behaviour; a plain Atomic is never asked for
// ExternalOutput/ConfluentOutput.
func (l *Leaf[T, V]) AsMealy() (MealyAtomic[T, V], bool) {
	m, ok := l.Impl.(MealyAtomic[T, V])
	return m, ok
}

// Fault reports the error Impl's Faulted hook last raised, or nil if Impl
// does not implement Faulted or has nothing to report.
func (l *Leaf[T, V]) Fault() error {
	if f, ok := l.Impl.(Faulted); ok {
		return f.Faulted()
	}
	return nil
}
