// Package topology provides functional-option network builders — chain,
// star, feedback loop, broadcast — analogous to katalvlaran/lvlath's
// builder package, built on model and router rather than on lvlath's own
// core.Graph. Where lvlath's Constructor mutates a *core.Graph with
// vertices and weighted edges, a topology.Constructor here admits leaves
// into a *model.Coupled and wires their implicit AnyPin ports: the same
// "one orchestrator, many named factories" shape, applied to DEVS
// couplings instead of graph edges.
package topology

import (
	"fmt"

	"github.com/smiz/devscore/devtime"
	"github.com/smiz/devscore/model"
)

// Constructor applies one deterministic network mutation to net. Every
// factory in this package returns a Constructor that admits the leaves it
// closed over as children of net and wires their ports; Build runs a
// sequence of them in order, exactly as lvlath/builder.BuildGraph runs a
// sequence of graph Constructors.
type Constructor[T devtime.Numeric, V comparable] func(net *model.Coupled[T, V]) error

// Build creates a new named Coupled model and applies every constructor to
// it in order, wrapping the first error with "Build: %w" and returning
// immediately — no partial cleanup is attempted, matching
// lvlath/builder.BuildGraph's own contract.
func Build[T devtime.Numeric, V comparable](name string, cons ...Constructor[T, V]) (*model.Coupled[T, V], error) {
	net := model.NewCoupled[T, V](name)
	for i, c := range cons {
		if c == nil {
			return nil, fmt.Errorf("Build: nil constructor at index %d: %w", i, ErrNilConstructor)
		}
		if err := c(net); err != nil {
			return nil, fmt.Errorf("Build: %w", err)
		}
	}
	return net, nil
}
