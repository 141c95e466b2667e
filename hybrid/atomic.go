package hybrid

import (
	"math"

	"github.com/smiz/devscore/devtime"
	"github.com/smiz/devscore/model"
)

// Atomic wraps an ODESystem with an ODESolver and an EventLocator into a
// model.Atomic, ported from original_source's adevs_hybrid.h class
// Hybrid<X,T>. It re-integrates a trial step after every committed
// transition (tentativeStep), and on external input that arrives strictly
// inside a step already known to contain an event, re-locates that event
// and replays it as a confluent transition instead of silently skipping
// over it (the "missed event" correction in DeltaExt below).
//
// dae_se1_system's algebraic-variable extension is not ported: nothing in
// this module's scope needs algebraic constraints alongside the ODE state,
// so DESIGN.md records it as an intentionally-unported original feature
// rather than a dropped dependency.
type Atomic[T devtime.Numeric, V comparable] struct {
	sys     ODESystem[V]
	solver  ODESolver
	locator EventLocator

	q, qTrial []float64
	event     []bool // len == sys.NumEvents()+1; last slot is the time-event flag

	sigma         float64
	eAccum        float64
	eventExists   bool
	eventHappened bool
	missedOutput  model.Bag[V]

	fault error
}

// NewAtomic constructs an Atomic wrapping sys, driven by solver and
// locator. It calls sys.Init and performs the first tentative step before
// returning, so TimeAdvance is meaningful immediately.
func NewAtomic[T devtime.Numeric, V comparable](sys ODESystem[V], solver ODESolver, locator EventLocator) *Atomic[T, V] {
	n := sys.NumVars()
	if n <= 0 || sys.NumEvents() < 0 {
		panic(ErrInvalidSystem)
	}
	a := &Atomic[T, V]{
		sys:     sys,
		solver:  solver,
		locator: locator,
		q:       make([]float64, n),
		qTrial:  make([]float64, n),
		event:   make([]bool, sys.NumEvents()+1),
	}
	sys.Init(a.qTrial)
	copy(a.q, a.qTrial)
	a.tentativeStep()
	return a
}

// State returns a copy of the current committed state vector, for tests
// and introspection.
func (a *Atomic[T, V]) State() []float64 {
	out := make([]float64, len(a.q))
	copy(out, a.q)
	return out
}

// EventHappened reports whether the most recently committed transition
// was a discrete event: a state or time event, or external input. It is
// false after an internal transition that only committed an integration
// step.
func (a *Atomic[T, V]) EventHappened() bool {
	return a.eventHappened
}

// tentativeStep integrates qTrial forward by min(time_event, solver step)
// and locates any state event inside that step, leaving sigma and event
// describing what the next internal transition will see.
func (a *Atomic[T, V]) tentativeStep() {
	if a.fault != nil {
		return
	}
	timeEvent := a.sys.TimeEventFunc(a.q)
	stepSize := a.solver.Integrate(a.qTrial, timeEvent)

	found, h, err := a.locator.FindEvents(a.event, a.q, a.qTrial, a.solver, stepSize)
	if err != nil {
		a.fault = err
		return
	}
	stepSize = h

	a.sigma = math.Min(stepSize, timeEvent)
	n := a.sys.NumEvents()
	a.event[n] = timeEvent <= a.sigma
	a.eventExists = a.event[n] || found
}

// TimeAdvance implements model.Atomic.
func (a *Atomic[T, V]) TimeAdvance() T {
	if !a.missedOutput.Empty() {
		return devtime.Zero[T]()
	}
	return T(a.sigma)
}

// Output implements model.Atomic.
func (a *Atomic[T, V]) Output() model.Bag[V] {
	if !a.missedOutput.Empty() {
		out := a.missedOutput.Clone()
		if a.sigma == 0 {
			out = append(out, a.sys.OutputFunc(a.qTrial, a.event)...)
		}
		return out
	}
	a.sys.PostStep(a.qTrial)
	if a.eventExists {
		return a.sys.OutputFunc(a.qTrial, a.event)
	}
	return nil
}

// DeltaInt implements model.Atomic.
func (a *Atomic[T, V]) DeltaInt() {
	if !a.missedOutput.Empty() {
		a.missedOutput = nil
		return
	}
	a.eAccum += a.sigma
	a.eventHappened = a.eventExists
	if a.eventExists {
		a.sys.InternalEvent(a.qTrial, a.event)
		a.eAccum = 0
	}
	copy(a.q, a.qTrial)
	a.tentativeStep()
}

// DeltaExt implements model.Atomic. e is converted to float64 once; the
// correction path below mirrors Hybrid<X,T>::delta_ext: if integrating by
// exactly e would step past a state event that tentativeStep already
// detected somewhere inside [0, sigma], re-locate it inside [0, e] and
// replay it as a confluent transition rather than silently skip over it.
func (a *Atomic[T, V]) DeltaExt(e T, xb model.Bag[V]) {
	if a.fault != nil {
		return
	}
	ef := float64(e)
	a.eventHappened = true

	stateEventFound := false
	if a.eventExists {
		copy(a.qTrial, a.q)
		a.solver.Advance(a.qTrial, ef)

		found, h, err := a.locator.FindEvents(a.event, a.q, a.qTrial, a.solver, ef)
		if err != nil {
			a.fault = err
			return
		}
		stateEventFound = found
		ef = h

		if stateEventFound {
			a.missedOutput = a.sys.OutputFunc(a.qTrial, a.event)
			a.sys.ConfluentEvent(a.qTrial, a.event, xb)
			copy(a.q, a.qTrial)
		}
	}

	if !stateEventFound {
		a.solver.Advance(a.q, ef)
		a.sys.PostStep(a.q)
		a.sys.ExternalEvent(a.q, ef+a.eAccum, xb)
	}

	a.eAccum = 0
	copy(a.qTrial, a.q)
	a.tentativeStep()
}

// DeltaConf implements model.Atomic.
func (a *Atomic[T, V]) DeltaConf(xb model.Bag[V]) {
	if !a.missedOutput.Empty() {
		a.missedOutput = nil
		if a.sigma > 0 {
			a.eventExists = false
		}
	}
	a.eventHappened = true
	if a.eventExists {
		a.sys.ConfluentEvent(a.qTrial, a.event, xb)
	} else {
		a.sys.ExternalEvent(a.qTrial, a.eAccum+a.sigma, xb)
	}
	a.eAccum = 0
	copy(a.q, a.qTrial)
	a.tentativeStep()
}

// CollectOutput implements model.OutputCollector, forwarding to sys if sys
// itself implements it (original_source's ode_system::gc_output), and
// doing nothing otherwise.
func (a *Atomic[T, V]) CollectOutput(b model.Bag[V]) {
	if collector, ok := a.sys.(model.OutputCollector[V]); ok {
		collector.CollectOutput(b)
	}
}

// Faulted implements model.Faulted, surfacing an EventLocator failure
// encountered by the tentative step that NewAtomic and every transition
// run, or by DeltaExt's re-integration path.
func (a *Atomic[T, V]) Faulted() error {
	return a.fault
}
