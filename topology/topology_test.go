package topology_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smiz/devscore/devtime"
	"github.com/smiz/devscore/model"
	"github.com/smiz/devscore/router"
	"github.com/smiz/devscore/topology"
)

type stubAtomic struct{}

func (stubAtomic) TimeAdvance() float64             { return devtime.Inf[float64]() }
func (stubAtomic) Output() model.Bag[int]           { return nil }
func (stubAtomic) DeltaInt()                        {}
func (stubAtomic) DeltaExt(float64, model.Bag[int]) {}
func (stubAtomic) DeltaConf(model.Bag[int])         {}

func newLeaf() *model.Leaf[float64, int] {
	return model.NewLeaf[float64, int](stubAtomic{}, 0)
}

func TestBuild_NilConstructor(t *testing.T) {
	_, err := topology.Build[float64, int]("x", nil)
	assert.True(t, errors.Is(err, topology.ErrNilConstructor))
}

func TestChain_WiresPipeline(t *testing.T) {
	a, b, c := newLeaf(), newLeaf(), newLeaf()
	net, err := topology.Build[float64, int]("chain", topology.Chain[float64, int](a, b, c))
	require.NoError(t, err)

	assert.True(t, net.HasChild(a))
	assert.True(t, net.HasChild(b))
	assert.True(t, net.HasChild(c))

	into := router.NewInputs[float64, int]()
	require.NoError(t, router.Deliver(net, model.Of[float64, int](a), 1, into))
	assert.Equal(t, model.Bag[int]{1}, into[b])
	assert.Empty(t, into[c])
}

func TestChain_RejectsTooFew(t *testing.T) {
	a := newLeaf()
	_, err := topology.Build[float64, int]("chain", topology.Chain[float64, int](a))
	assert.True(t, errors.Is(err, topology.ErrTooFewNodes))
}

func TestStar_WiresTwoWaySpokes(t *testing.T) {
	center, s1, s2 := newLeaf(), newLeaf(), newLeaf()
	net, err := topology.Build[float64, int]("star", topology.Star[float64, int](center, s1, s2))
	require.NoError(t, err)

	into := router.NewInputs[float64, int]()
	require.NoError(t, router.Deliver(net, model.Of[float64, int](center), 7, into))
	assert.Equal(t, model.Bag[int]{7}, into[s1])
	assert.Equal(t, model.Bag[int]{7}, into[s2])

	into = router.NewInputs[float64, int]()
	require.NoError(t, router.Deliver(net, model.Of[float64, int](s1), 9, into))
	assert.Equal(t, model.Bag[int]{9}, into[center])
}

func TestBroadcast_OneWayFanOut(t *testing.T) {
	source, sink1, sink2 := newLeaf(), newLeaf(), newLeaf()
	net, err := topology.Build[float64, int]("bcast", topology.Broadcast[float64, int](source, sink1, sink2))
	require.NoError(t, err)

	into := router.NewInputs[float64, int]()
	require.NoError(t, router.Deliver(net, model.Of[float64, int](source), 3, into))
	assert.Equal(t, model.Bag[int]{3}, into[sink1])
	assert.Equal(t, model.Bag[int]{3}, into[sink2])

	// No return path: sink1's output reaches nobody.
	into = router.NewInputs[float64, int]()
	require.NoError(t, router.Deliver(net, model.Of[float64, int](sink1), 5, into))
	assert.Empty(t, into)
}

func TestFeedbackLoop_ClosesRing(t *testing.T) {
	a, b := newLeaf(), newLeaf()
	net, err := topology.Build[float64, int]("ring", topology.FeedbackLoop[float64, int](a, b))
	require.NoError(t, err)

	into := router.NewInputs[float64, int]()
	require.NoError(t, router.Deliver(net, model.Of[float64, int](a), 1, into))
	assert.Equal(t, model.Bag[int]{1}, into[b])

	into = router.NewInputs[float64, int]()
	require.NoError(t, router.Deliver(net, model.Of[float64, int](b), 2, into))
	assert.Equal(t, model.Bag[int]{2}, into[a])
}

func TestFeedbackLoop_SingleNodeSelfCouples(t *testing.T) {
	a := newLeaf()
	net, err := topology.Build[float64, int]("self", topology.FeedbackLoop[float64, int](a))
	require.NoError(t, err)

	into := router.NewInputs[float64, int]()
	require.NoError(t, router.Deliver(net, model.Of[float64, int](a), 4, into))
	assert.Equal(t, model.Bag[int]{4}, into[a])
}
