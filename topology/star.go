package topology

import (
	"fmt"

	"github.com/smiz/devscore/devtime"
	"github.com/smiz/devscore/model"
)

const minStarSpokes = 1

// Star returns a Constructor that admits center and spokes as children of
// net and wires center's output to every spoke's input, plus every
// spoke's output back to center's input — the two-way spoke symmetry
// lvlath/builder.Star keeps for directed graphs, here kept unconditionally
// since DEVS couplings are inherently directed. Requires at least one
// spoke.
func Star[T devtime.Numeric, V comparable](center *model.Leaf[T, V], spokes ...*model.Leaf[T, V]) Constructor[T, V] {
	return func(net *model.Coupled[T, V]) error {
		if len(spokes) < minStarSpokes {
			return fmt.Errorf("Star: %d spokes < min=%d: %w", len(spokes), minStarSpokes, ErrTooFewNodes)
		}
		if err := net.AddChild(center); err != nil {
			return fmt.Errorf("Star: AddChild(center): %w", err)
		}
		for i, s := range spokes {
			if err := net.AddChild(s); err != nil {
				return fmt.Errorf("Star: AddChild(spoke %d): %w", i, err)
			}
			if err := net.Connect(model.Of[T, V](center), model.Of[T, V](s)); err != nil {
				return fmt.Errorf("Star: Connect(center->spoke %d): %w", i, err)
			}
			if err := net.Connect(model.Of[T, V](s), model.Of[T, V](center)); err != nil {
				return fmt.Errorf("Star: Connect(spoke %d->center): %w", i, err)
			}
		}
		return nil
	}
}
