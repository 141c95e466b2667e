package hybrid

import (
	"errors"
	"fmt"
)

// ErrInvalidSystem indicates an ODESystem reported a non-positive NumVars
// or a negative NumEvents at construction time.
var ErrInvalidSystem = errors.New("hybrid: invalid ODESystem dimensions")

// LocatorError reports that an EventLocator exhausted its iteration budget
// while bisecting [0, Interval[1]] without narrowing any indicator inside
// its error tolerance — original_source's bisection locator loops
// unconditionally until it brackets an event; a Go port that never gives up
// would hang a goroutine on a system whose state_event_func never actually
// crosses zero inside the reported interval, so BisectionLocator surfaces
// that as a typed error instead (spec.md §7, Supplemented features).
type LocatorError struct {
	// Interval is the [0, h] search window in effect when the iteration
	// budget ran out.
	Interval [2]float64
	// Indicators holds the last state-event values computed at the end of
	// Interval, one per ODESystem.NumEvents().
	Indicators []float64
}

func (e *LocatorError) Error() string {
	return fmt.Sprintf("hybrid: event locator did not converge on [%g, %g]: indicators=%v", e.Interval[0], e.Interval[1], e.Indicators)
}
