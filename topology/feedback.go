package topology

import (
	"fmt"

	"github.com/smiz/devscore/devtime"
	"github.com/smiz/devscore/model"
)

const minFeedbackNodes = 1

// FeedbackLoop returns a Constructor that admits leaves as children of net
// and wires them into a ring: leaves[i]'s output feeds leaves[i+1]'s
// input, and the last leaf's output feeds back to the first — the
// lvlath/builder.Cycle topology, specialized to close a single leaf's
// output back onto its own input when only one leaf is given, the
// self-coupling spec.md §8's Mealy-ring divergence scenario is built from.
func FeedbackLoop[T devtime.Numeric, V comparable](leaves ...*model.Leaf[T, V]) Constructor[T, V] {
	return func(net *model.Coupled[T, V]) error {
		if len(leaves) < minFeedbackNodes {
			return fmt.Errorf("FeedbackLoop: %d leaves < min=%d: %w", len(leaves), minFeedbackNodes, ErrTooFewNodes)
		}
		for _, l := range leaves {
			if err := net.AddChild(l); err != nil {
				return fmt.Errorf("FeedbackLoop: AddChild: %w", err)
			}
		}
		for i, l := range leaves {
			next := leaves[(i+1)%len(leaves)]
			if err := net.Connect(model.Of[T, V](l), model.Of[T, V](next)); err != nil {
				return fmt.Errorf("FeedbackLoop: Connect(%d->%d): %w", i, (i+1)%len(leaves), err)
			}
		}
		return nil
	}
}
