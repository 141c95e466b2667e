// Package router resolves one value emitted on one (model, pin) endpoint
// into the set of leaf Atomics it must be delivered to, by walking the
// coupling graph described by package model's Coupled/Endpoint types.
//
// Routing is, per spec.md §4.1 and §4.9, a pure function of the coupling
// graph: Deliver and RouteOutputs never mutate a Node's state, so calling
// them twice with the same arguments yields the same result, and the
// traversal can be re-entered freely. The single recursive function below
// (deliver) is grounded in adevs's Digraph::route (original_source,
// include/adevs/networks/digraph.h): both resolve a (model, port) key in
// one coupled model's table and either hand the value to a leaf, recurse
// into a child network, or bubble one level further up — the same
// depth-first walk the dfs package's topoSorter.visit uses to traverse
// katalvlaran/lvlath's core.Graph.
package router

import (
	"errors"
	"fmt"

	"github.com/smiz/devscore/devtime"
	"github.com/smiz/devscore/model"
)

// ErrRoutingCycle indicates that resolving one emitted value required more
// hops through the coupling graph than the configured budget allows. A
// well-formed coupling graph never trips this: spec.md §9 argues any real
// value cycle must pass through at least one leaf, which always terminates
// the recursion. Tripping it means a Coupled model wired its own output
// pin back to itself (directly or through a chain of pure pass-throughs)
// without ever reaching a leaf.
var ErrRoutingCycle = errors.New("router: coupling graph cycle exceeded hop budget")

// defaultMaxHops bounds the recursion depth of one Deliver call. It is
// generous relative to any plausible network depth; WithMaxHops
// raises or lowers it for pathological or deeply nested topologies.
const defaultMaxHops = 4096

// Inputs accumulates the per-leaf input bag built by one routing pass.
// The zero value is not usable; construct with NewInputs.
type Inputs[T devtime.Numeric, V comparable] map[*model.Leaf[T, V]]model.Bag[V]

// NewInputs returns an empty Inputs ready for use with Deliver/RouteOutputs.
func NewInputs[T devtime.Numeric, V comparable]() Inputs[T, V] {
	return make(Inputs[T, V])
}

func (in Inputs[T, V]) append(leaf *model.Leaf[T, V], v V) {
	in[leaf] = append(in[leaf], v)
}

// Receivers returns the set of leaves with a non-empty input bag: the
// receiver set R of spec.md §4.5 step 5.
func (in Inputs[T, V]) Receivers() []*model.Leaf[T, V] {
	out := make([]*model.Leaf[T, V], 0, len(in))
	for leaf := range in {
		out = append(out, leaf)
	}
	return out
}

// Option configures a Deliver/RouteOutputs call.
type Option func(*options)

type options struct {
	maxHops int
}

func resolve(opts []Option) options {
	o := options{maxHops: defaultMaxHops}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithMaxHops overrides the recursion-depth budget used to detect a
// malformed coupling cycle. n must be positive.
func WithMaxHops(n int) Option {
	if n <= 0 {
		panic("router: WithMaxHops requires a positive bound")
	}
	return func(o *options) { o.maxHops = n }
}

// Deliver resolves one value produced at srcKey within owner's own
// coupling table, appending it to the input bag of every leaf it reaches
// and recursing through every intervening Coupled level. owner must be
// the Coupled model whose table actually contains srcKey — for a leaf's
// own output this is the leaf's parent, keyed with model.Of(leaf); for an
// externally injected input on a root's boundary pin this is the root
// itself, keyed with model.On(root.Self(), pin).
func Deliver[T devtime.Numeric, V comparable](owner *model.Coupled[T, V], srcKey model.Endpoint[T, V], value V, into Inputs[T, V], opts ...Option) error {
	o := resolve(opts)
	return deliver(owner, srcKey, value, into, o.maxHops)
}

func deliver[T devtime.Numeric, V comparable](owner *model.Coupled[T, V], srcKey model.Endpoint[T, V], value V, into Inputs[T, V], budget int) error {
	if budget <= 0 {
		return fmt.Errorf("%s: %w", owner.Name(), ErrRoutingCycle)
	}
	for _, dst := range owner.Destinations(srcKey) {
		switch m := dst.Model.(type) {
		case *model.Leaf[T, V]:
			into.append(m, value)
		case *model.Coupled[T, V]:
			if dst.Model == owner.Self() {
				// Forward out through owner's own output pin: resolved one
				// level further up, in owner's parent's table.
				parent := owner.Parent()
				if parent == nil {
					// owner is the simulation root: the value has reached
					// the outermost observable boundary and is not
					// delivered to any leaf. sim notifies listeners of
					// the producing leaf's output itself, after routing
					// (ExecNextEvent's step 8), so there is nothing
					// further to do here.
					continue
				}
				if err := deliver(parent, model.On(owner.Self(), dst.Pin), value, into, budget-1); err != nil {
					return err
				}
				continue
			}
			// A genuine child Coupled model: descend into its own table,
			// keyed by its declared input pin.
			if err := deliver(m, model.On(m.Self(), dst.Pin), value, into, budget-1); err != nil {
				return err
			}
		default:
			return fmt.Errorf("router: unrecognised node kind at %s", owner.Name())
		}
	}
	return nil
}

// RouteOutputs resolves every value in every leaf's output bag to its
// receivers in one pass, returning the accumulated Inputs (the receiver
// set of spec.md §4.5 step 5 is Inputs.Receivers()).
func RouteOutputs[T devtime.Numeric, V comparable](outputs map[*model.Leaf[T, V]]model.Bag[V], opts ...Option) (Inputs[T, V], error) {
	into := NewInputs[T, V]()
	for leaf, bag := range outputs {
		parent := leaf.Parent()
		if parent == nil {
			// A detached or root leaf has nothing above it to route
			// through; its output is purely observational.
			continue
		}
		for _, v := range bag {
			if err := Deliver(parent, model.Of[T, V](leaf), v, into, opts...); err != nil {
				return nil, err
			}
		}
	}
	return into, nil
}
