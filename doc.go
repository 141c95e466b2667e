// Package devscore is a Discrete Event System Specification (DEVS)
// simulation kernel: build a network of atomic and coupled models, wire
// their ports together, and drive it through time with a scheduler that
// always advances to the next imminent event.
//
// Everything lives under focused subpackages:
//
//	devtime/   — the time-value constraint (T) and its zero/infinity helpers
//	model/     — Atomic, MealyAtomic, Coupled, and the coupling-graph types
//	router/    — resolves one produced value through a coupling graph
//	schedule/  — the next-event priority queue
//	sim/       — the simulator main loop: steps, Mealy revision, structure changes
//	hybrid/    — continuous-time Atomic wrapper driven by an ODE solver and event locator
//	topology/  — functional-option network builders (chain, star, feedback loop, broadcast)
//	devslog/   — the structured-logging adapter sim diagnoses through
package devscore
