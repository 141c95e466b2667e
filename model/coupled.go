package model

import (
	"fmt"

	"github.com/smiz/devscore/devtime"
)

// Endpoint names one side of a coupling: a model (a child of some Coupled,
// or that Coupled itself when the pin belongs to its own boundary) plus
// the Pin the value appears on. This is the Go rendering of the adevs
// Digraph coupling node: a (model, port) pair, generalized so that "model"
// may also be the containing network itself (see original_source's
// adevs/networks/digraph.h, struct node and couple_input/couple_output).
//
// For a Leaf endpoint, Pin is always AnyPin: leaves expose one implicit
// port, never a registry of named ones.
type Endpoint[T devtime.Numeric, V comparable] struct {
	Model Node[T, V]
	Pin   Pin
}

// Of returns the Endpoint naming child's single implicit port. Valid only
// when child is a *Leaf; for a *Coupled child, use On(child, pin) to name
// one of its declared pins explicitly.
func Of[T devtime.Numeric, V comparable](child Node[T, V]) Endpoint[T, V] {
	return Endpoint[T, V]{Model: child, Pin: AnyPin}
}

// On returns the Endpoint naming pin on child (a *Coupled child's declared
// input or output pin).
func On[T devtime.Numeric, V comparable](child Node[T, V], pin Pin) Endpoint[T, V] {
	return Endpoint[T, V]{Model: child, Pin: pin}
}

// coupling pairs a source endpoint with the ordered list of destinations
// it fans out to. Ordering is preserved (append-only) so router's
// depth-first traversal is reproducible across runs with identical models,
// per spec.md §8's round-trip property.
type coupling[T devtime.Numeric, V comparable] struct {
	dests []Endpoint[T, V]
}

// Coupled is a container model: an ordered list of children plus the
// routing table that wires their ports together and to this model's own
// boundary pins (spec.md §3, §4.1). Coupled itself carries no continuous
// or discrete state and is never scheduled; only the Leaf descendants it
// eventually bottoms out at are.
type Coupled[T devtime.Numeric, V comparable] struct {
	base[T, V]

	name string

	children   []Node[T, V]
	childIndex map[Node[T, V]]int

	inputPins  map[Pin]struct{}
	outputPins map[Pin]struct{}
	pins       pinSource

	table map[Endpoint[T, V]]*coupling[T, V]

	// Transition is the optional model_transition callback of spec.md §4.7.
	// It is invoked once per simulation step, after this Coupled's
	// descendants have all transitioned, and must report whether it staged
	// any RequestAdd/RequestRemove calls. A nil Transition means this
	// Coupled never changes its own structure.
	Transition func(c *Coupled[T, V]) bool

	pendingAdd    []Node[T, V]
	pendingRemove []Node[T, V]
}

func (*Coupled[T, V]) node() {}

// NewCoupled constructs an empty coupled model. name is used only for
// diagnostics (error messages, logging); it need not be unique.
func NewCoupled[T devtime.Numeric, V comparable](name string) *Coupled[T, V] {
	return &Coupled[T, V]{
		name:       name,
		childIndex: make(map[Node[T, V]]int),
		inputPins:  make(map[Pin]struct{}),
		outputPins: make(map[Pin]struct{}),
		table:      make(map[Endpoint[T, V]]*coupling[T, V]),
	}
}

// Name returns this Coupled model's diagnostic name.
func (c *Coupled[T, V]) Name() string { return c.name }

// Children returns the direct children of c, in admission order. The
// returned slice must not be mutated.
func (c *Coupled[T, V]) Children() []Node[T, V] { return c.children }

// Self returns c as a Node, usable as an Endpoint's Model to name c's own
// boundary pins in a call to Connect.
func (c *Coupled[T, V]) Self() Node[T, V] { return c }

// Parent returns the Coupled model c is currently a direct child of, or nil
// if c is a detached root.
func (c *Coupled[T, V]) Parent() *Coupled[T, V] { return c.parent }

// AddInputPin mints and registers a fresh input pin on c's own boundary.
func (c *Coupled[T, V]) AddInputPin() Pin {
	p := c.pins.mint()
	c.inputPins[p] = struct{}{}
	return p
}

// AddOutputPin mints and registers a fresh output pin on c's own boundary.
func (c *Coupled[T, V]) AddOutputPin() Pin {
	p := c.pins.mint()
	c.outputPins[p] = struct{}{}
	return p
}

// AddChild admits m as a direct child of c. m must not already belong to
// any Coupled model.
func (c *Coupled[T, V]) AddChild(m Node[T, V]) error {
	if m == nil {
		return ErrNilChild
	}
	if m.parentOf() != nil {
		return fmt.Errorf("%s: %w", c.name, ErrChildAlreadyPresent)
	}
	c.childIndex[m] = len(c.children)
	c.children = append(c.children, m)
	m.setParentOf(c)
	return nil
}

// RemoveChild expels m from c, severing its parent link and dropping every
// coupling entry that named it as a source or destination. It does not
// recurse into m's own descendants if m is itself a Coupled model; callers
// that need transitive removal should do so explicitly (package sim does,
// for structure changes, per spec.md §4.7's orphan rule).
func (c *Coupled[T, V]) RemoveChild(m Node[T, V]) error {
	idx, ok := c.childIndex[m]
	if !ok {
		return fmt.Errorf("%s: %w", c.name, ErrNotAChild)
	}
	last := len(c.children) - 1
	c.children[idx] = c.children[last]
	c.childIndex[c.children[idx]] = idx
	c.children = c.children[:last]
	delete(c.childIndex, m)
	m.setParentOf(nil)

	for key, cp := range c.table {
		if key.Model == m {
			delete(c.table, key)
			continue
		}
		filtered := cp.dests[:0]
		for _, d := range cp.dests {
			if d.Model != m {
				filtered = append(filtered, d)
			}
		}
		cp.dests = filtered
	}
	return nil
}

// HasChild reports whether m is a direct child of c.
func (c *Coupled[T, V]) HasChild(m Node[T, V]) bool {
	_, ok := c.childIndex[m]
	return ok
}

// Connect adds a routing edge from src to dst, validating that each
// endpoint names a pin that actually belongs to the surface it claims to
// (spec.md §7's "Invalid coupling"):
//
//   - src.Model == c: src.Pin must be one of c's own input pins (we are
//     describing how to forward an external input inward).
//   - src.Model is a child of c: if that child is a *Coupled, src.Pin must
//     be one of its declared output pins; if it is a *Leaf, src.Pin must
//     be AnyPin (a leaf exposes exactly one implicit output).
//   - dst.Model == c: dst.Pin must be one of c's own output pins.
//   - dst.Model is a child of c: symmetric to src, but against that
//     child's input pins (or AnyPin for a *Leaf).
func (c *Coupled[T, V]) Connect(src, dst Endpoint[T, V]) error {
	if err := c.validateSource(src); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCoupling, err)
	}
	if err := c.validateDest(dst); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCoupling, err)
	}
	cp, ok := c.table[src]
	if !ok {
		cp = &coupling[T, V]{}
		c.table[src] = cp
	}
	cp.dests = append(cp.dests, dst)
	return nil
}

// Destinations returns the destinations registered for src, or nil if
// none. Package router calls this to walk the graph; it never mutates the
// result.
func (c *Coupled[T, V]) Destinations(src Endpoint[T, V]) []Endpoint[T, V] {
	cp, ok := c.table[src]
	if !ok {
		return nil
	}
	return cp.dests
}

func (c *Coupled[T, V]) validateSource(e Endpoint[T, V]) error {
	if e.Model == c {
		if _, ok := c.inputPins[e.Pin]; !ok {
			return fmt.Errorf("%s: source pin does not belong to own input surface: %w", c.name, ErrUnknownPin)
		}
		return nil
	}
	return c.validateChildPin(e, c.outputSurfaceOf)
}

func (c *Coupled[T, V]) validateDest(e Endpoint[T, V]) error {
	if e.Model == c {
		if _, ok := c.outputPins[e.Pin]; !ok {
			return fmt.Errorf("%s: destination pin does not belong to own output surface: %w", c.name, ErrUnknownPin)
		}
		return nil
	}
	return c.validateChildPin(e, c.inputSurfaceOf)
}

// validateChildPin checks that e.Model is a child of c and that e.Pin
// belongs to the surface surfaceOf reports for it.
func (c *Coupled[T, V]) validateChildPin(e Endpoint[T, V], surfaceOf func(Node[T, V]) (map[Pin]struct{}, bool)) error {
	if !c.HasChild(e.Model) {
		return fmt.Errorf("%s: %w", c.name, ErrNotAChild)
	}
	surface, named := surfaceOf(e.Model)
	if !named {
		// A *Leaf child: only AnyPin is valid.
		if e.Pin != AnyPin {
			return fmt.Errorf("%s: leaf child exposes only AnyPin: %w", c.name, ErrUnknownPin)
		}
		return nil
	}
	if _, ok := surface[e.Pin]; !ok {
		return fmt.Errorf("%s: %w", c.name, ErrUnknownPin)
	}
	return nil
}

func (c *Coupled[T, V]) outputSurfaceOf(n Node[T, V]) (map[Pin]struct{}, bool) {
	if child, ok := n.(*Coupled[T, V]); ok {
		return child.outputPins, true
	}
	return nil, false
}

func (c *Coupled[T, V]) inputSurfaceOf(n Node[T, V]) (map[Pin]struct{}, bool) {
	if child, ok := n.(*Coupled[T, V]); ok {
		return child.inputPins, true
	}
	return nil, false
}

// RequestAdd stages m for admission as a direct child of c at the end of
// the current simulation step. Only meaningful when called from within
// c.Transition; package sim drains pending requests after every step
// (spec.md §4.7).
func (c *Coupled[T, V]) RequestAdd(m Node[T, V]) {
	c.pendingAdd = append(c.pendingAdd, m)
}

// RequestRemove stages the direct child m of c for removal at the end of
// the current simulation step.
func (c *Coupled[T, V]) RequestRemove(m Node[T, V]) {
	c.pendingRemove = append(c.pendingRemove, m)
}

// DrainPending returns and clears the adds/removes staged since the last
// drain. Package sim calls this once per step on every Coupled reachable
// from the root, after invoking its Transition if it has one.
func (c *Coupled[T, V]) DrainPending() (adds, removes []Node[T, V]) {
	adds, c.pendingAdd = c.pendingAdd, nil
	removes, c.pendingRemove = c.pendingRemove, nil
	return adds, removes
}
