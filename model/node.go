package model

import "github.com/smiz/devscore/devtime"

// Node is the sealed sum type over the two kinds of thing a Coupled model
// can hold as a child: a leaf (*Leaf) or a container (*Coupled). It is the
// Go expression of spec.md §3's "Model (sum type): exactly one of Atomic |
// Coupled" — Atomic and MealyAtomic share one concrete wrapper, *Leaf,
// since the Mealy extension is discovered at runtime by an interface
// assertion rather than by a separate tag (see Leaf.AsMealy).
//
// The unexported node() method seals the interface: only this package can
// produce a Node, so a caller can never hand the simulator something that
// bypasses the Leaf/Coupled distinction.
type Node[T devtime.Numeric, V comparable] interface {
	node()
	// parentOf returns the Coupled model that directly owns this Node, or
	// nil if this Node is currently a root or detached.
	parentOf() *Coupled[T, V]
	setParentOf(*Coupled[T, V])
}

// base is embedded by both Node implementations to share parent bookkeeping.
type base[T devtime.Numeric, V comparable] struct {
	parent *Coupled[T, V]
}

func (b *base[T, V]) parentOf() *Coupled[T, V]     { return b.parent }
func (b *base[T, V]) setParentOf(p *Coupled[T, V]) { b.parent = p }
