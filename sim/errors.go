package sim

import "errors"

// Sentinel errors for package sim, one per error kind spec.md §7 enumerates
// that genuinely belongs to the main loop rather than to a lower layer
// (routing errors are router's own; a malformed coupling is caught at
// Connect time, in model, long before a Simulator exists).
var (
	// ErrMealyDivergence indicates the fixpoint revision loop of §4.8 did
	// not settle within the configured iteration ceiling.
	ErrMealyDivergence = errors.New("sim: mealy fixpoint revision did not converge")

	// ErrZeroAdvanceRunaway indicates the schedule kept offering the same
	// next-event time across more steps than the configured ceiling allows
	// — §7's "numerical underflow at a zero-time-advance loop".
	ErrZeroAdvanceRunaway = errors.New("sim: zero-time-advance loop exceeded iteration ceiling")

	// ErrAtomicFault wraps an error an Atomic implementation reported via
	// the optional model.Faulted hook (see model.Faulted's doc comment).
	ErrAtomicFault = errors.New("sim: atomic reported a fault")
)
