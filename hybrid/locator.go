package hybrid

import "math"

// BisectionLocator is an EventLocator that repeatedly halves the search
// interval until every indicator that changes sign across it does so
// within ErrTol of zero, ported from original_source's
// adevs_bisection_event_locator.h (class bisection_event_locator).
type BisectionLocator[V comparable] struct {
	sys     ODESystem[V]
	errTol  float64
	maxIter int

	z0, z1 []float64
}

// NewBisectionLocator builds a BisectionLocator for sys. errTol bounds how
// close to zero an indicator must land before its crossing counts as
// located; maxIter bounds how many times the interval may be halved before
// FindEvents reports a *LocatorError instead of looping forever. Panics if
// either is not positive.
func NewBisectionLocator[V comparable](sys ODESystem[V], errTol float64, maxIter int) *BisectionLocator[V] {
	if errTol <= 0 {
		panic("hybrid: NewBisectionLocator requires a positive error tolerance")
	}
	if maxIter <= 0 {
		panic("hybrid: NewBisectionLocator requires a positive iteration bound")
	}
	n := sys.NumEvents()
	return &BisectionLocator[V]{
		sys:     sys,
		errTol:  errTol,
		maxIter: maxIter,
		z0:      make([]float64, n),
		z1:      make([]float64, n),
	}
}

// FindEvents implements EventLocator. qStart and qEnd bracket a step the
// caller already took of size h; on return qEnd and h are adjusted to the
// located instant whenever an event lies strictly inside the original
// interval.
func (b *BisectionLocator[V]) FindEvents(events []bool, qStart, qEnd []float64, solver ODESolver, h float64) (bool, float64, error) {
	n := b.sys.NumEvents()
	b.sys.StateEventFunc(qStart, b.z0)

	// lo is the longest probed step known to end before any crossing, hi
	// the shortest known to end past an unresolved one.
	lo, hi := 0.0, h
	for iter := 0; ; iter++ {
		b.sys.StateEventFunc(qEnd, b.z1)

		eventInInterval := false
		foundEvent := false
		for i := 0; i < n; i++ {
			events[i] = false
			if b.z1[i]*b.z0[i] <= 0 {
				if math.Abs(b.z1[i]) <= b.errTol {
					events[i] = true
					foundEvent = true
				} else {
					eventInInterval = true
				}
			}
		}

		if !eventInInterval && (foundEvent || iter == 0) {
			return foundEvent, h, nil
		}
		if iter >= b.maxIter {
			return false, h, &LocatorError{
				Interval:   [2]float64{0, h},
				Indicators: append([]float64(nil), b.z1...),
			}
		}

		if eventInInterval {
			hi = h
		} else {
			lo = h
		}
		h = (lo + hi) / 2
		copy(qEnd, qStart)
		solver.Advance(qEnd, h)
	}
}
