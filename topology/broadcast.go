package topology

import (
	"fmt"

	"github.com/smiz/devscore/devtime"
	"github.com/smiz/devscore/model"
)

const minBroadcastSinks = 1

// Broadcast returns a Constructor that admits source and sinks as children
// of net and wires source's output to every sink's input, one-directional
// fan-out with no return path — unlike Star, a sink's own output is left
// unwired by this constructor. Requires at least one sink.
func Broadcast[T devtime.Numeric, V comparable](source *model.Leaf[T, V], sinks ...*model.Leaf[T, V]) Constructor[T, V] {
	return func(net *model.Coupled[T, V]) error {
		if len(sinks) < minBroadcastSinks {
			return fmt.Errorf("Broadcast: %d sinks < min=%d: %w", len(sinks), minBroadcastSinks, ErrTooFewNodes)
		}
		if err := net.AddChild(source); err != nil {
			return fmt.Errorf("Broadcast: AddChild(source): %w", err)
		}
		for i, sink := range sinks {
			if err := net.AddChild(sink); err != nil {
				return fmt.Errorf("Broadcast: AddChild(sink %d): %w", i, err)
			}
			if err := net.Connect(model.Of[T, V](source), model.Of[T, V](sink)); err != nil {
				return fmt.Errorf("Broadcast: Connect(source->sink %d): %w", i, err)
			}
		}
		return nil
	}
}
