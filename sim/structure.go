package sim

import (
	"fmt"

	"github.com/smiz/devscore/devtime"
	"github.com/smiz/devscore/model"
)

type structureOp[T devtime.Numeric, V comparable] struct {
	owner *model.Coupled[T, V]
	child model.Node[T, V]
}

// applyStructureChanges is step 9 of spec.md §4.5: every Coupled model
// reachable from root gets one chance to request structure changes via
// its Transition callback, all requests across the whole tree are
// collected, then every removal is applied before any addition (so a
// child can be retired from one owner and re-admitted to another within
// the same step without a transient double-parent state).
func (s *Simulator[T, V]) applyStructureChanges(tN T) error {
	var removals, additions []structureOp[T, V]
	for _, c := range collectCoupled[T, V](s.root) {
		if c.Transition != nil {
			c.Transition(c)
		}
		adds, removes := c.DrainPending()
		for _, m := range removes {
			removals = append(removals, structureOp[T, V]{owner: c, child: m})
		}
		for _, m := range adds {
			additions = append(additions, structureOp[T, V]{owner: c, child: m})
		}
	}

	for _, op := range removals {
		if !op.owner.HasChild(op.child) {
			return fmt.Errorf("%w: %s: requested removal of a non-child", model.ErrStructureViolation, op.owner.Name())
		}
		for _, leaf := range collectLeaves[T, V](op.child) {
			if leaf.ScheduleIndex != -1 {
				if err := s.sched.Remove(leaf); err != nil {
					return fmt.Errorf("%w: %s: %v", model.ErrStructureViolation, op.owner.Name(), err)
				}
			}
		}
		if err := op.owner.RemoveChild(op.child); err != nil {
			return fmt.Errorf("%w: %s: %v", model.ErrStructureViolation, op.owner.Name(), err)
		}
	}

	for _, op := range additions {
		if err := op.owner.AddChild(op.child); err != nil {
			return fmt.Errorf("%w: %s: %v", model.ErrStructureViolation, op.owner.Name(), err)
		}
		for _, leaf := range collectLeaves[T, V](op.child) {
			if err := admit(s.sched, leaf, tN); err != nil {
				return err
			}
		}
	}

	return nil
}
