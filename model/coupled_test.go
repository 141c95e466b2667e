package model_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smiz/devscore/devtime"
	"github.com/smiz/devscore/model"
)

// stubAtomic is a minimal model.Atomic double used across model's tests: it
// never fires on its own and never mutates state, since these tests only
// exercise coupling-graph construction and validation, not the simulator.
type stubAtomic struct{}

func (stubAtomic) TimeAdvance() float64        { return devtime.Inf[float64]() }
func (stubAtomic) Output() model.Bag[int]      { return nil }
func (stubAtomic) DeltaInt()                   {}
func (stubAtomic) DeltaExt(float64, model.Bag[int]) {}
func (stubAtomic) DeltaConf(model.Bag[int])    {}

func newLeaf() *model.Leaf[float64, int] {
	return model.NewLeaf[float64, int](stubAtomic{}, 0)
}

func TestCoupled_AddChild_RejectsDoubleParent(t *testing.T) {
	net := model.NewCoupled[float64, int]("net")
	leaf := newLeaf()

	assert.NoError(t, net.AddChild(leaf))
	other := model.NewCoupled[float64, int]("other")
	err := other.AddChild(leaf)
	assert.True(t, errors.Is(err, model.ErrChildAlreadyPresent))
}

func TestCoupled_AddChild_RejectsNil(t *testing.T) {
	net := model.NewCoupled[float64, int]("net")
	assert.True(t, errors.Is(net.AddChild(nil), model.ErrNilChild))
}

func TestCoupled_Connect_LeafToLeaf(t *testing.T) {
	net := model.NewCoupled[float64, int]("net")
	a, b := newLeaf(), newLeaf()
	assert.NoError(t, net.AddChild(a))
	assert.NoError(t, net.AddChild(b))

	assert.NoError(t, net.Connect(model.Of[float64, int](a), model.Of[float64, int](b)))
	dests := net.Destinations(model.Of[float64, int](a))
	assert.Len(t, dests, 1)
	assert.Equal(t, model.Node[float64, int](b), dests[0].Model)
}

func TestCoupled_Connect_RejectsUnknownPin(t *testing.T) {
	net := model.NewCoupled[float64, int]("net")
	child := model.NewCoupled[float64, int]("child")
	assert.NoError(t, net.AddChild(child))

	foreignPin := model.NewCoupled[float64, int]("other").AddOutputPin()
	err := net.Connect(model.On(child, foreignPin), model.On(net.Self(), net.AddOutputPin()))
	assert.True(t, errors.Is(err, model.ErrUnknownPin))
	assert.True(t, errors.Is(err, model.ErrInvalidCoupling))
}

func TestCoupled_Connect_RejectsNonChild(t *testing.T) {
	net := model.NewCoupled[float64, int]("net")
	outsider := newLeaf()
	err := net.Connect(model.Of[float64, int](outsider), model.Of[float64, int](outsider))
	assert.True(t, errors.Is(err, model.ErrNotAChild))
	assert.True(t, errors.Is(err, model.ErrInvalidCoupling))
}

func TestCoupled_RemoveChild_DropsCouplings(t *testing.T) {
	net := model.NewCoupled[float64, int]("net")
	a, b := newLeaf(), newLeaf()
	assert.NoError(t, net.AddChild(a))
	assert.NoError(t, net.AddChild(b))
	assert.NoError(t, net.Connect(model.Of[float64, int](a), model.Of[float64, int](b)))

	assert.NoError(t, net.RemoveChild(b))
	assert.Empty(t, net.Destinations(model.Of[float64, int](a)))
	assert.Nil(t, b.Parent())
}

func TestCoupled_BoundaryPinRouting(t *testing.T) {
	net := model.NewCoupled[float64, int]("net")
	in := net.AddInputPin()
	out := net.AddOutputPin()
	leaf := newLeaf()
	assert.NoError(t, net.AddChild(leaf))

	assert.NoError(t, net.Connect(model.On(net.Self(), in), model.Of[float64, int](leaf)))
	assert.NoError(t, net.Connect(model.Of[float64, int](leaf), model.On(net.Self(), out)))

	assert.Len(t, net.Destinations(model.On(net.Self(), in)), 1)
	assert.Len(t, net.Destinations(model.Of[float64, int](leaf)), 1)
}

func TestCoupled_RequestAddRemove_DrainPending(t *testing.T) {
	net := model.NewCoupled[float64, int]("net")
	a := newLeaf()
	net.RequestAdd(a)
	adds, removes := net.DrainPending()
	assert.Equal(t, []model.Node[float64, int]{a}, adds)
	assert.Empty(t, removes)

	// A second drain with nothing staged returns nothing.
	adds, removes = net.DrainPending()
	assert.Empty(t, adds)
	assert.Empty(t, removes)
}

func TestLeaf_Fault_NoHook(t *testing.T) {
	leaf := newLeaf()
	assert.NoError(t, leaf.Fault())
}

type faultingAtomic struct {
	stubAtomic
	err error
}

func (f faultingAtomic) Faulted() error { return f.err }

func TestLeaf_Fault_ReportsHookError(t *testing.T) {
	boom := errors.New("boom")
	leaf := model.NewLeaf[float64, int](faultingAtomic{err: boom}, 0)
	assert.Equal(t, boom, leaf.Fault())
}

func TestLeaf_AsMealy(t *testing.T) {
	leaf := newLeaf()
	_, ok := leaf.AsMealy()
	assert.False(t, ok)

	mealyLeaf := model.NewLeaf[float64, int](mealyStub{}, 0)
	m, ok := mealyLeaf.AsMealy()
	assert.True(t, ok)
	assert.NotNil(t, m)
}

type mealyStub struct{ stubAtomic }

func (mealyStub) ExternalOutput(float64, model.Bag[int]) model.Bag[int] { return nil }
func (mealyStub) ConfluentOutput(model.Bag[int]) model.Bag[int]        { return nil }
