package sim_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smiz/devscore/model"
	"github.com/smiz/devscore/sim"
	"github.com/smiz/devscore/topology"
)

// echoMealy is passive on its own and, whenever it receives input while not
// imminent, immediately re-expresses it, doubled, on output in the same step — the
// combinational pass-through behaviour spec.md §4.8 introduces MealyAtomic
// for.
type echoMealy struct {
	lastExt model.Bag[int]
}

func (e *echoMealy) TimeAdvance() float64              { return 1e300 } // effectively passive
func (e *echoMealy) Output() model.Bag[int]            { return nil }
func (e *echoMealy) DeltaInt()                         {}
func (e *echoMealy) DeltaExt(_ float64, xb model.Bag[int]) { e.lastExt = xb }
func (e *echoMealy) DeltaConf(model.Bag[int])          {}
func (e *echoMealy) ExternalOutput(_ float64, xb model.Bag[int]) model.Bag[int] {
	out := make(model.Bag[int], len(xb))
	for i, v := range xb {
		out[i] = v * 2
	}
	return out
}
func (e *echoMealy) ConfluentOutput(xb model.Bag[int]) model.Bag[int] { return xb }

func TestSimulator_MealyExternalOutput_SameStepPassThrough(t *testing.T) {
	gen := &generator{period: 1}
	genLeaf := model.NewLeaf[float64, int](gen, 0)
	echoLeaf := model.NewLeaf[float64, int](&echoMealy{}, 0)
	s1 := &sink{}
	sinkLeaf := model.NewLeaf[float64, int](s1, 0)

	net, err := topology.Build[float64, int]("mealy-pipeline",
		topology.Chain[float64, int](genLeaf, echoLeaf, sinkLeaf),
	)
	require.NoError(t, err)

	s, err := sim.NewSimulator[float64, int](net)
	require.NoError(t, err)
	require.NoError(t, s.ExecUntil(3))

	// Each generator tick doubles through echoLeaf and lands on the sink
	// within the very same step, no extra time step required.
	assert.Equal(t, []int{2, 4, 6}, s1.received)
	assert.Equal(t, float64(3), s.CurrentTime())
}

// flappingMealy is a self-coupled Mealy atomic whose ConfluentOutput always
// strictly increases past whatever it is given, so the fixpoint revision
// loop of spec.md §4.8 never settles: spec.md §8's "Mealy ring divergence"
// scenario, reduced to its one-node cycle.
type flappingMealy struct{}

func (flappingMealy) TimeAdvance() float64  { return 0 }
func (flappingMealy) Output() model.Bag[int] { return model.Bag[int]{0} }
func (flappingMealy) DeltaInt()              {}
func (flappingMealy) DeltaExt(float64, model.Bag[int]) {}
func (flappingMealy) DeltaConf(model.Bag[int])         {}
func (flappingMealy) ConfluentOutput(xb model.Bag[int]) model.Bag[int] {
	v := 0
	if len(xb) > 0 {
		v = xb[0]
	}
	return model.Bag[int]{v + 1}
}
func (flappingMealy) ExternalOutput(_ float64, xb model.Bag[int]) model.Bag[int] { return xb }

func TestSimulator_MealyRingDivergence(t *testing.T) {
	leaf := model.NewLeaf[float64, int](flappingMealy{}, 0)
	net, err := topology.Build[float64, int]("ring", topology.FeedbackLoop[float64, int](leaf))
	require.NoError(t, err)

	s, err := sim.NewSimulator[float64, int](net, sim.WithMealyRevisionLimit(5))
	require.NoError(t, err)

	err = s.ExecNextEvent()
	require.Error(t, err)
	assert.True(t, errors.Is(err, sim.ErrMealyDivergence))
}
