package hybrid

// RK4Solver is a fixed-step classical fourth-order Runge-Kutta ODESolver,
// grounded in original_source's adevs_rk45.h stepping formula with its
// adaptive step-size control (the embedded fifth-order error estimate used
// to grow or shrink StepSize) dropped: spec.md's ODESolver contract only
// requires "advance q by some h ≤ hLim", not any particular accuracy, and a
// fixed step keeps the port a small, auditable transliteration of the
// well-known RK4 tableau rather than a full reimplementation of adevs's
// error controller.
type RK4Solver[V comparable] struct {
	sys      ODESystem[V]
	stepSize float64

	k1, k2, k3, k4, tmp []float64
}

// NewRK4Solver builds an RK4Solver for sys using a fixed integration step
// of stepSize. Panics if stepSize is not positive, the same contract
// lvlath's dijkstra.WithHeuristic uses for a caller-supplied numeric
// parameter that has no sane default.
func NewRK4Solver[V comparable](sys ODESystem[V], stepSize float64) *RK4Solver[V] {
	if stepSize <= 0 {
		panic("hybrid: NewRK4Solver requires a positive step size")
	}
	n := sys.NumVars()
	return &RK4Solver[V]{
		sys:      sys,
		stepSize: stepSize,
		k1:       make([]float64, n),
		k2:       make([]float64, n),
		k3:       make([]float64, n),
		k4:       make([]float64, n),
		tmp:      make([]float64, n),
	}
}

// Integrate advances q by min(StepSize, hLim) and returns the h used.
func (s *RK4Solver[V]) Integrate(q []float64, hLim float64) float64 {
	h := s.stepSize
	if hLim < h {
		h = hLim
	}
	s.step(q, h)
	return h
}

// Advance advances q by exactly h, taking as many StepSize-sized substeps
// as needed plus one final partial step.
func (s *RK4Solver[V]) Advance(q []float64, h float64) {
	remaining := h
	for remaining > 0 {
		step := s.stepSize
		if step > remaining {
			step = remaining
		}
		s.step(q, step)
		remaining -= step
	}
}

// step performs one classical RK4 step of size h in place on q.
func (s *RK4Solver[V]) step(q []float64, h float64) {
	n := len(q)
	s.sys.DerFunc(q, s.k1)

	for i := 0; i < n; i++ {
		s.tmp[i] = q[i] + 0.5*h*s.k1[i]
	}
	s.sys.DerFunc(s.tmp, s.k2)

	for i := 0; i < n; i++ {
		s.tmp[i] = q[i] + 0.5*h*s.k2[i]
	}
	s.sys.DerFunc(s.tmp, s.k3)

	for i := 0; i < n; i++ {
		s.tmp[i] = q[i] + h*s.k3[i]
	}
	s.sys.DerFunc(s.tmp, s.k4)

	for i := 0; i < n; i++ {
		q[i] += (h / 6) * (s.k1[i] + 2*s.k2[i] + 2*s.k3[i] + s.k4[i])
	}
}
