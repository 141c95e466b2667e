// Package hybrid implements the ODE-system / ODE-solver / event-locator
// machinery of spec.md §4.4: a hybrid atomic that wraps a continuous-time
// system with discrete transition callbacks, driving it with a pluggable
// numerical integrator and locating state/time events by a pluggable
// locator strategy. The wrapping algorithm (Atomic) is grounded directly
// in original_source's adevs_hybrid.h (class Hybrid); the two concrete
// strategies shipped here — a fixed-step RK4 solver and a bisection event
// locator — are grounded in adevs_rk45.h and
// adevs_bisection_event_locator.h respectively, simplified from adaptive
// step-size control (RK45 with error control) to a fixed step, since the
// spec's ODESolver contract only requires "advances q by some h ≤ h_lim",
// not any particular error tolerance.
package hybrid

import "github.com/smiz/devscore/model"

// ODESystem is the continuous-plus-discrete contract of spec.md §4.4: a
// continuous state vector of NumVars values advanced by DerFunc, NumEvents
// event indicators whose zero crossings are state events, an optional
// scheduled time event, and the usual three discrete transitions plus an
// output function, all operating on the same state vector q.
type ODESystem[V comparable] interface {
	NumVars() int
	NumEvents() int

	// Init writes the initial state into q (len(q) == NumVars()).
	Init(q []float64)
	// DerFunc computes the derivative of q into dq.
	DerFunc(q, dq []float64)
	// StateEventFunc computes the event indicator vector z (len(z) ==
	// NumEvents()) for state q; an event is any zero crossing of a
	// component of z.
	StateEventFunc(q, z []float64)
	// TimeEventFunc returns the duration until the next internally
	// scheduled time event, or devtime.Inf-equivalent (math.Inf(1)) if
	// none is pending.
	TimeEventFunc(q []float64) float64
	// PostStep updates any algebraic quantities derived from q. The hybrid
	// Atomic calls it on the end state of an integration step just before
	// that step's output is computed, and on the state advanced to an
	// external event just before ExternalEvent. It is not called after
	// InternalEvent, ExternalEvent or ConfluentEvent change q.
	PostStep(q []float64)

	InternalEvent(q []float64, eventFlags []bool)
	ExternalEvent(q []float64, e float64, xb model.Bag[V])
	ConfluentEvent(q []float64, eventFlags []bool, xb model.Bag[V])
	OutputFunc(q []float64, eventFlags []bool) model.Bag[V]
}

// ODESolver advances an ODESystem's state vector.
type ODESolver interface {
	// Integrate advances q by some h ≤ hLim and returns h. It need not
	// control numerical error.
	Integrate(q []float64, hLim float64) float64
	// Advance advances q by exactly h.
	Advance(q []float64, h float64)
}

// EventLocator narrows [0, h] to the first instant a state_event_func
// component changes sign, returning the events that triggered (len ==
// NumEvents()) and the located h. An event-locator failure (original's
// "integrator reports a step but the locator cannot bracket a detected
// event", spec.md §7) is reported as a *LocatorError.
type EventLocator interface {
	FindEvents(events []bool, qStart, qEnd []float64, solver ODESolver, h float64) (found bool, hOut float64, err error)
}
