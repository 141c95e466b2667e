package topology

import (
	"fmt"

	"github.com/smiz/devscore/devtime"
	"github.com/smiz/devscore/model"
)

const minChainNodes = 2

// Chain returns a Constructor that admits leaves as children of net in the
// given order and wires leaves[i]'s output to leaves[i+1]'s input,
// forming a pipeline. Requires at least two leaves.
func Chain[T devtime.Numeric, V comparable](leaves ...*model.Leaf[T, V]) Constructor[T, V] {
	return func(net *model.Coupled[T, V]) error {
		if len(leaves) < minChainNodes {
			return fmt.Errorf("Chain: %d leaves < min=%d: %w", len(leaves), minChainNodes, ErrTooFewNodes)
		}
		for _, l := range leaves {
			if err := net.AddChild(l); err != nil {
				return fmt.Errorf("Chain: AddChild: %w", err)
			}
		}
		for i := 0; i < len(leaves)-1; i++ {
			src := model.Of[T, V](leaves[i])
			dst := model.Of[T, V](leaves[i+1])
			if err := net.Connect(src, dst); err != nil {
				return fmt.Errorf("Chain: Connect(%d->%d): %w", i, i+1, err)
			}
		}
		return nil
	}
}
