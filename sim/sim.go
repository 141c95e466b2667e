// Package sim implements the simulator main loop of spec.md §4.5: the
// imminent-set/receiver-set computation, the Mealy fixpoint revision loop
// of §4.8, confluent/internal/external transition dispatch, structure
// change collection and application (§4.7), and the synchronous listener
// bus of §6.
//
// The loop itself has no direct precedent in the teacher repo — lvlath is
// a static graph-algorithms library, not a stepper — so its shape is
// grounded directly in spec.md's own numbered steps, while its error and
// configuration idiom (sentinel errors, functional options panicking on
// programmer error) follows dijkstra and builder exactly as the rest of
// this module does.
package sim

import (
	"errors"
	"fmt"

	"github.com/smiz/devscore/devslog"
	"github.com/smiz/devscore/devtime"
	"github.com/smiz/devscore/model"
	"github.com/smiz/devscore/router"
	"github.com/smiz/devscore/schedule"
)

// Listener receives synchronous notification of every output produced and
// every state change committed by the simulator, the two callbacks of
// spec.md §6: on_output(model, pin, value, t) and on_state_change(model, t).
type Listener[T devtime.Numeric, V comparable] interface {
	OnOutput(leaf *model.Leaf[T, V], pin model.Pin, value V, t T)
	OnStateChange(leaf *model.Leaf[T, V], t T)
}

// Option configures a Simulator at construction.
type Option func(*config)

type config struct {
	mealyRevisionLimit int
	zeroAdvanceLimit   int
	logger             devslog.Logger
	routerOpts         []router.Option
}

func resolve(opts []Option) config {
	c := config{
		mealyRevisionLimit: 1000,
		zeroAdvanceLimit:   10000,
		logger:             devslog.Discard(),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithMealyRevisionLimit bounds the number of fixpoint revision passes
// (§4.8) before the loop is declared divergent. n must be positive.
func WithMealyRevisionLimit(n int) Option {
	if n <= 0 {
		panic("sim: WithMealyRevisionLimit requires a positive bound")
	}
	return func(c *config) { c.mealyRevisionLimit = n }
}

// WithZeroAdvanceLimit bounds the number of consecutive steps the
// simulator may execute without the schedule's minimum time advancing,
// the configurable ceiling §7 requires for zero-time-advance runaways. n
// must be positive.
func WithZeroAdvanceLimit(n int) Option {
	if n <= 0 {
		panic("sim: WithZeroAdvanceLimit requires a positive bound")
	}
	return func(c *config) { c.zeroAdvanceLimit = n }
}

// WithLogger installs a structured logger for step and error diagnostics.
// A nil logger is treated as devslog.Discard().
func WithLogger(l devslog.Logger) Option {
	return func(c *config) {
		if l == nil {
			l = devslog.Discard()
		}
		c.logger = l
	}
}

// WithMaxRoutingHops forwards a router.WithMaxHops bound to every Deliver
// call the simulator makes.
func WithMaxRoutingHops(n int) Option {
	return func(c *config) { c.routerOpts = append(c.routerOpts, router.WithMaxHops(n)) }
}

type pendingInput[T devtime.Numeric, V comparable] struct {
	pin   model.Pin
	value V
}

// Simulator drives a model graph rooted at a single Coupled model through
// time, per spec.md §4.5. The zero value is not usable; construct with
// NewSimulator.
type Simulator[T devtime.Numeric, V comparable] struct {
	root   *model.Coupled[T, V]
	sched  *schedule.Schedule[T, V]
	cfg    config
	now    T
	zeroAt int

	listeners []Listener[T, V]

	injectedAt    T
	injectedInput []pendingInput[T, V]
}

// NewSimulator constructs a Simulator over root, computing an initial
// schedule entry for every descendant atomic from its ta() at t=0 (spec.md
// §6's "this computes initial schedule entries for all descendant
// atomics"). The simulator always begins at devtime.Zero[T](); spec.md's
// public API list has no explicit start-time parameter, and the
// inject/set-next-time path is how a driver introduces events relative to
// any other origin.
func NewSimulator[T devtime.Numeric, V comparable](root *model.Coupled[T, V], opts ...Option) (*Simulator[T, V], error) {
	s := &Simulator[T, V]{
		root:       root,
		sched:      schedule.New[T, V](),
		cfg:        resolve(opts),
		now:        devtime.Zero[T](),
		injectedAt: devtime.Inf[T](),
	}
	for _, leaf := range collectLeaves[T, V](root) {
		if err := admit(s.sched, leaf, devtime.Zero[T]()); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// CurrentTime returns the simulation time of the last completed step (or
// the start time, if no step has run yet).
func (s *Simulator[T, V]) CurrentTime() T { return s.now }

// NextEventTime returns the minimum time at which any atomic is scheduled
// to transition, or devtime.Inf[T]() if the simulation is quiescent with
// no pending injected input.
func (s *Simulator[T, V]) NextEventTime() T {
	t := s.sched.NextEventTime()
	if devtime.Less(s.injectedAt, t) {
		return s.injectedAt
	}
	return t
}

// AddEventListener registers l to receive output and state-change
// notifications from every subsequent step.
func (s *Simulator[T, V]) AddEventListener(l Listener[T, V]) {
	s.listeners = append(s.listeners, l)
}

// RemoveEventListener unregisters l; a no-op if l was never registered.
func (s *Simulator[T, V]) RemoveEventListener(l Listener[T, V]) {
	for i, existing := range s.listeners {
		if existing == l {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			return
		}
	}
}

// SetNextTime schedules the absolute time at which subsequently injected
// input (InjectInput) is delivered. Pairs with InjectInput per spec.md
// §4.5's inject_input/set_next_time path: call SetNextTime once, then
// InjectInput any number of times for values delivered together at that
// instant.
func (s *Simulator[T, V]) SetNextTime(t T) {
	s.injectedAt = t
}

// InjectInput queues value for delivery on pin, a boundary input pin of
// the root model, at the time most recently set by SetNextTime.
func (s *Simulator[T, V]) InjectInput(pin model.Pin, value V) {
	s.injectedInput = append(s.injectedInput, pendingInput[T, V]{pin: pin, value: value})
}

// ExecUntil repeatedly executes the next event while its time does not
// exceed tEnd.
func (s *Simulator[T, V]) ExecUntil(tEnd T) error {
	for {
		next := s.NextEventTime()
		if devtime.IsInf(next) || devtime.Less(tEnd, next) {
			return nil
		}
		if err := s.ExecNextEvent(); err != nil {
			return err
		}
	}
}

// ExecNextEvent executes exactly one simulation step: spec.md §4.5's nine
// numbered substeps. If the simulation is quiescent (no scheduled atomic
// and no pending injected input), it returns nil without doing anything.
//
// On error, the step is reported as failed and no further substeps run;
// per §7's atomicity requirement, this is guaranteed up to and including
// the Mealy revision loop (step 6), which runs entirely before any state
// mutation. Substeps 7 and 9 mutate as they go, so a time-regression or
// structure-change-violation error detected during those substeps — both
// of which can only be detected by attempting the mutation that exposes
// them — may leave some atomics already transitioned for this step; this
// mirrors the original engine's own behaviour (it does not roll back
// either) and is recorded as a deliberate limitation.
func (s *Simulator[T, V]) ExecNextEvent() error {
	tN := s.NextEventTime()
	if devtime.IsInf(tN) {
		return nil
	}

	if devtime.Equal(tN, s.now) {
		s.zeroAt++
		if s.zeroAt > s.cfg.zeroAdvanceLimit {
			err := fmt.Errorf("%w: stuck at t=%v", ErrZeroAdvanceRunaway, tN)
			s.cfg.logger.Failure("zero-advance-runaway", err)
			return err
		}
	} else {
		s.zeroAt = 0
	}

	schedMin := s.sched.NextEventTime()
	var imminent []*model.Leaf[T, V]
	if !devtime.IsInf(schedMin) && devtime.Equal(schedMin, tN) {
		imminent = s.sched.Imminent()
	}
	inI := make(map[*model.Leaf[T, V]]bool, len(imminent))
	for _, l := range imminent {
		inI[l] = true
	}

	// Step 3: ordinary output_func for the imminent set.
	outputs := make(map[*model.Leaf[T, V]]model.Bag[V], len(imminent))
	for _, l := range imminent {
		outputs[l] = l.Impl.Output()
		if err := s.faultOf(l); err != nil {
			return err
		}
	}

	deliverInjected := !devtime.IsInf(s.injectedAt) && devtime.Equal(s.injectedAt, tN)
	injected := s.injectedInput
	if deliverInjected {
		s.injectedAt = devtime.Inf[T]()
		s.injectedInput = nil
	}

	// Step 4: route step-3 outputs, plus any injected root-level inputs,
	// to build the initial input bags.
	inputs, err := s.route(outputs, deliverInjected, injected)
	if err != nil {
		s.cfg.logger.Failure("routing", err)
		return err
	}

	// Steps 5-6: receiver set and Mealy fixpoint revision.
	revisions, err := s.revise(tN, inI, outputs, &inputs)
	if err != nil {
		s.cfg.logger.Failure("mealy-divergence", err)
		return err
	}

	receivers := inputs.Receivers()
	inR := make(map[*model.Leaf[T, V]]bool, len(receivers))
	for _, l := range receivers {
		inR[l] = true
	}

	// Step 7: transitions.
	transitioned := make(map[*model.Leaf[T, V]]bool, len(imminent)+len(receivers))
	for _, l := range imminent {
		transitioned[l] = true
	}
	for _, l := range receivers {
		transitioned[l] = true
	}
	for l := range transitioned {
		xb := inputs[l]
		switch {
		case inI[l] && inR[l]:
			l.Impl.DeltaConf(xb)
		case inI[l]:
			l.Impl.DeltaInt()
		default:
			e := devtime.Sub(tN, l.TLast)
			l.Impl.DeltaExt(e, xb)
		}
		if err := s.faultOf(l); err != nil {
			return err
		}
		l.TLast = tN
		if err := reschedule(s.sched, l, tN); err != nil {
			kind := "time-regression"
			if errors.Is(err, ErrAtomicFault) {
				kind = "atomic-fault"
			}
			s.cfg.logger.Failure(kind, err)
			return err
		}
	}

	// Step 8: listener notification — outputs first, then state changes.
	for l, bag := range outputs {
		for _, v := range bag {
			for _, lis := range s.listeners {
				lis.OnOutput(l, model.AnyPin, v, tN)
			}
		}
		if collector, ok := l.Impl.(model.OutputCollector[V]); ok {
			collector.CollectOutput(bag)
		}
	}
	for l := range transitioned {
		for _, lis := range s.listeners {
			lis.OnStateChange(l, tN)
		}
	}

	s.now = tN

	// Step 9: structure changes.
	if err := s.applyStructureChanges(tN); err != nil {
		s.cfg.logger.Failure("structure-change-violation", err)
		return err
	}

	s.cfg.logger.Step(fmt.Sprint(tN), len(imminent), len(receivers), revisions)
	return nil
}

func (s *Simulator[T, V]) faultOf(l *model.Leaf[T, V]) error {
	if err := l.Fault(); err != nil {
		err = fmt.Errorf("%w: %v", ErrAtomicFault, err)
		s.cfg.logger.Failure("atomic-fault", err)
		return err
	}
	return nil
}

// route resolves step-3 outputs and any injected root-level input into one
// combined set of input bags.
func (s *Simulator[T, V]) route(outputs map[*model.Leaf[T, V]]model.Bag[V], deliverInjected bool, injected []pendingInput[T, V]) (router.Inputs[T, V], error) {
	into := router.NewInputs[T, V]()
	for leaf, bag := range outputs {
		parent := leaf.Parent()
		if parent == nil {
			continue
		}
		for _, v := range bag {
			if err := router.Deliver(parent, model.Of[T, V](leaf), v, into, s.cfg.routerOpts...); err != nil {
				return nil, err
			}
		}
	}
	if deliverInjected {
		for _, pi := range injected {
			if err := router.Deliver(s.root, model.On(s.root.Self(), pi.pin), pi.value, into, s.cfg.routerOpts...); err != nil {
				return nil, err
			}
		}
	}
	return into, nil
}

// revise runs the Mealy fixpoint loop of spec.md §4.8, mutating outputs
// and *inputs in place until a pass produces no change, and returns the
// number of revision passes performed.
func (s *Simulator[T, V]) revise(tN T, inI map[*model.Leaf[T, V]]bool, outputs map[*model.Leaf[T, V]]model.Bag[V], inputs *router.Inputs[T, V]) (int, error) {
	revisions := 0
	for {
		changed := false
		for _, l := range inputs.Receivers() {
			mealy, ok := l.AsMealy()
			if !ok {
				continue
			}
			xb := (*inputs)[l]
			var newOut model.Bag[V]
			if inI[l] {
				newOut = mealy.ConfluentOutput(xb)
			} else {
				e := devtime.Sub(tN, l.TLast)
				newOut = mealy.ExternalOutput(e, xb)
			}
			if err := s.faultOf(l); err != nil {
				return revisions, err
			}
			if !newOut.Equal(outputs[l]) {
				outputs[l] = newOut
				changed = true
			}
		}
		if !changed {
			return revisions, nil
		}
		revisions++
		if revisions > s.cfg.mealyRevisionLimit {
			return revisions, fmt.Errorf("%w: exceeded %d passes", ErrMealyDivergence, s.cfg.mealyRevisionLimit)
		}
		reRouted, err := s.route(outputs, false, nil)
		if err != nil {
			return revisions, err
		}
		*inputs = reRouted
	}
}

// admit registers a newly-entering leaf with sched, computing its initial
// schedule entry from Impl.TimeAdvance() (infinite means passive, no
// entry). Shared by NewSimulator's initial population and structure-change
// admission.
func admit[T devtime.Numeric, V comparable](sched *schedule.Schedule[T, V], leaf *model.Leaf[T, V], tLast T) error {
	leaf.TLast = tLast
	ta := leaf.Impl.TimeAdvance()
	if err := leaf.Fault(); err != nil {
		return fmt.Errorf("%w: %v", ErrAtomicFault, err)
	}
	if devtime.IsInf(ta) {
		return nil
	}
	sched.Insert(leaf, devtime.Add(tLast, ta))
	return nil
}

// reschedule recomputes leaf's schedule entry after a transition that has
// just set leaf.TLast = t.
func reschedule[T devtime.Numeric, V comparable](sched *schedule.Schedule[T, V], leaf *model.Leaf[T, V], t T) error {
	ta := leaf.Impl.TimeAdvance()
	if err := leaf.Fault(); err != nil {
		return fmt.Errorf("%w: %v", ErrAtomicFault, err)
	}
	if devtime.IsInf(ta) {
		if leaf.ScheduleIndex != -1 {
			return sched.Remove(leaf)
		}
		return nil
	}
	next := devtime.Add(t, ta)
	if leaf.ScheduleIndex == -1 {
		if devtime.Less(next, t) {
			return fmt.Errorf("%w: next=%v < now=%v", schedule.ErrTimeRegression, next, t)
		}
		sched.Insert(leaf, next)
		return nil
	}
	return sched.Reschedule(leaf, t, next)
}
