package sim

import (
	"github.com/smiz/devscore/devtime"
	"github.com/smiz/devscore/model"
)

// collectLeaves returns every *model.Leaf reachable from n, depth-first.
// Used both at construction (to seed the schedule) and when admitting or
// retiring a whole subtree during a structure change.
func collectLeaves[T devtime.Numeric, V comparable](n model.Node[T, V]) []*model.Leaf[T, V] {
	var out []*model.Leaf[T, V]
	walkNodes(n, func(l *model.Leaf[T, V]) { out = append(out, l) }, nil)
	return out
}

// collectCoupled returns every *model.Coupled reachable from n (n included,
// if n is itself a *model.Coupled), depth-first. The simulator calls this
// once per step to discover every model_transition callback, per spec.md
// §4.7 — a coupled model may request structure changes whether or not any
// of its own descendants transitioned this step.
func collectCoupled[T devtime.Numeric, V comparable](n model.Node[T, V]) []*model.Coupled[T, V] {
	var out []*model.Coupled[T, V]
	walkNodes(n, nil, func(c *model.Coupled[T, V]) { out = append(out, c) })
	return out
}

// walkNodes performs a depth-first traversal of the subtree rooted at n,
// invoking visitLeaf for every *model.Leaf and visitCoupled for every
// *model.Coupled encountered (n itself included). Either visitor may be
// nil.
func walkNodes[T devtime.Numeric, V comparable](n model.Node[T, V], visitLeaf func(*model.Leaf[T, V]), visitCoupled func(*model.Coupled[T, V])) {
	switch m := n.(type) {
	case *model.Leaf[T, V]:
		if visitLeaf != nil {
			visitLeaf(m)
		}
	case *model.Coupled[T, V]:
		if visitCoupled != nil {
			visitCoupled(m)
		}
		for _, child := range m.Children() {
			walkNodes(child, visitLeaf, visitCoupled)
		}
	}
}
