package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/synthscene/internal/monitoring"
	"github.com/taigrr/synthscene/pkg/math3d"
	"github.com/taigrr/synthscene/pkg/scene"
)

func newCache(t *testing.T) (*OneWay, *scene.NodeFactory, *scene.Node) {
	t.Helper()
	factory := &scene.NodeFactory{}
	parent := scene.NewNode("container")
	prefabs := []*scene.Prefab{
		scene.NewBoxPrefab("crate", math3d.One3()),
		scene.NewBoxPrefab("can", math3d.V3(0.5, 1, 0.5)),
	}
	c, err := NewOneWay("test", factory, parent, prefabs)
	require.NoError(t, err)
	return c, factory, parent
}

func TestGetOrInstantiateGrowsPool(t *testing.T) {
	c, factory, parent := newCache(t)

	a := c.GetOrInstantiate("crate")
	b := c.GetOrInstantiate("crate")
	can := c.GetOrInstantiate("can")

	assert.NotSame(t, a, b)
	assert.Equal(t, "crate", a.Name())
	assert.Equal(t, "can", can.Name())
	assert.Equal(t, 3, c.NumObjectsActive())
	assert.Equal(t, 3, c.NumObjectsInCache())
	assert.Equal(t, 3, factory.Instantiated())
	assert.Len(t, parent.Children(), 3)
}

func TestResetAllReusesInstances(t *testing.T) {
	c, factory, _ := newCache(t)

	first := []scene.Object{c.GetOrInstantiate("crate"), c.GetOrInstantiate("crate")}
	for _, obj := range first {
		obj.SetLocalPosition(math3d.V3(1, 2, -10))
	}

	c.ResetAll()
	assert.Zero(t, c.NumObjectsActive())
	assert.Equal(t, 2, c.NumObjectsInCache())
	for _, obj := range first {
		assert.Equal(t, ParkedPosition, obj.LocalPosition())
	}

	again := c.GetOrInstantiate("crate")
	assert.Same(t, first[0], again)
	assert.Equal(t, 2, factory.Instantiated())

	// the pool never shrinks: a third request after reset still reuses
	// the second pooled instance before creating anything
	assert.Same(t, first[1], c.GetOrInstantiate("crate"))
	c.GetOrInstantiate("crate")
	assert.Equal(t, 3, c.NumObjectsInCache())
}

func TestResetAllParksInactiveInstances(t *testing.T) {
	c, _, _ := newCache(t)
	a := c.GetOrInstantiate("can")
	c.ResetAll()

	// not handed out this frame, but moved anyway
	a.SetLocalPosition(math3d.V3(5, 5, 5))
	c.ResetAll()
	assert.Equal(t, ParkedPosition, a.LocalPosition())
}

func TestUnknownIdentity(t *testing.T) {
	c, _, _ := newCache(t)

	_, err := c.TryGetOrInstantiate("ghost")
	var unknown *UnknownIdentityError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "ghost", unknown.Identity)

	assert.PanicsWithError(t, `cache: prefab "ghost" is not in cache`, func() {
		c.GetOrInstantiate("ghost")
	})
	assert.Zero(t, c.NumObjectsActive())
}

func TestNewOneWayRejectsBadPrefabs(t *testing.T) {
	dup := []*scene.Prefab{scene.NewBoxPrefab("a", math3d.One3()), scene.NewBoxPrefab("a", math3d.One3())}
	_, err := NewOneWay("dup", &scene.NodeFactory{}, nil, dup)
	assert.ErrorContains(t, err, "duplicate")

	_, err = NewOneWay("nil", &scene.NodeFactory{}, nil, []*scene.Prefab{nil})
	assert.Error(t, err)
}

type failingFactory struct{}

func (failingFactory) Instantiate(*scene.Prefab, *scene.Node) (scene.Object, error) {
	return nil, errors.New("out of memory")
}

func TestFactoryFailure(t *testing.T) {
	c, err := NewOneWay("f", failingFactory{}, nil, []*scene.Prefab{scene.NewBoxPrefab("a", math3d.One3())})
	require.NoError(t, err)

	_, err = c.TryGetOrInstantiate("a")
	assert.ErrorContains(t, err, "out of memory")
	assert.Zero(t, c.NumObjectsActive())
	assert.Zero(t, c.NumObjectsInCache())
}

func TestActiveAndUtilization(t *testing.T) {
	original := monitoring.Logf
	defer func() { monitoring.Logf = original }()
	var rec monitoring.Recorder
	monitoring.SetLogger(rec.Logf)

	c, _, _ := newCache(t)
	c.GetOrInstantiate("can")
	c.GetOrInstantiate("crate")
	assert.Len(t, c.Active(), 2)

	assert.True(t, c.CheckUtilization(2))
	assert.Empty(t, rec.Lines())

	assert.False(t, c.CheckUtilization(5))
	require.Len(t, rec.Lines(), 1)
	assert.Contains(t, rec.Lines()[0], "should have placed 5 objects but is only using 2")
}

func BenchmarkResetAll(b *testing.B) {
	var prefabs []*scene.Prefab
	for _, name := range []string{"a", "b", "c", "d"} {
		prefabs = append(prefabs, scene.NewBoxPrefab(name, math3d.One3()))
	}
	c, err := NewOneWay("bench", &scene.NodeFactory{}, nil, prefabs)
	if err != nil {
		b.Fatal(err)
	}
	for b.Loop() {
		c.ResetAll()
		for range 250 {
			for _, p := range prefabs {
				c.GetOrInstantiate(p.Name)
			}
		}
	}
}
