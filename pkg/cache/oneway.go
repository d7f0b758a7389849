// Package cache pools scene instances between frames. Instances are handed
// out per prefab and never returned individually; one reset per frame parks
// the whole pool out of view.
package cache

import (
	"fmt"

	"github.com/taigrr/synthscene/internal/monitoring"
	"github.com/taigrr/synthscene/pkg/math3d"
	"github.com/taigrr/synthscene/pkg/scene"
)

// ParkedPosition is where inactive instances wait, outside every frame.
var ParkedPosition = math3d.V3(10000, 0, 0)

// UnknownIdentityError is returned or raised when an instance is requested
// for a prefab the cache was not built with.
type UnknownIdentityError struct {
	Identity string
}

func (e *UnknownIdentityError) Error() string {
	return fmt.Sprintf("cache: prefab %q is not in cache", e.Identity)
}

type entry struct {
	prefab    *scene.Prefab
	instances []scene.Object
	active    int
}

// OneWay is a pool of instances keyed by prefab name. It is not safe for
// concurrent use; solvers compute placements in parallel and instances are
// requested afterwards on one goroutine.
type OneWay struct {
	name    string
	factory scene.Factory
	parent  *scene.Node
	index   map[string]int
	entries []entry

	numActive  int
	numInCache int
}

// NewOneWay builds an empty pool for prefabs. New instances are created by
// factory under parent. Prefab names must be unique.
func NewOneWay(name string, factory scene.Factory, parent *scene.Node, prefabs []*scene.Prefab) (*OneWay, error) {
	c := &OneWay{
		name:    name,
		factory: factory,
		parent:  parent,
		index:   make(map[string]int, len(prefabs)),
		entries: make([]entry, len(prefabs)),
	}
	for i, p := range prefabs {
		if p == nil {
			return nil, fmt.Errorf("cache %s: prefab %d is nil", name, i)
		}
		if _, dup := c.index[p.Name]; dup {
			return nil, fmt.Errorf("cache %s: duplicate prefab %q", name, p.Name)
		}
		c.index[p.Name] = i
		c.entries[i].prefab = p
	}
	return c, nil
}

// GetOrInstantiate returns the next free instance of the named prefab,
// creating one when the pool is used up. It panics with
// *UnknownIdentityError for a prefab the cache does not know.
func (c *OneWay) GetOrInstantiate(identity string) scene.Object {
	obj, err := c.TryGetOrInstantiate(identity)
	if err != nil {
		panic(err)
	}
	return obj
}

// TryGetOrInstantiate is GetOrInstantiate returning errors instead of
// panicking. Factory failures are wrapped.
func (c *OneWay) TryGetOrInstantiate(identity string) (scene.Object, error) {
	i, ok := c.index[identity]
	if !ok {
		return nil, &UnknownIdentityError{Identity: identity}
	}

	e := &c.entries[i]
	if e.active < len(e.instances) {
		obj := e.instances[e.active]
		e.active++
		c.numActive++
		return obj, nil
	}

	obj, err := c.factory.Instantiate(e.prefab, c.parent)
	if err != nil {
		return nil, fmt.Errorf("cache %s: instantiate %q: %w", c.name, identity, err)
	}
	e.instances = append(e.instances, obj)
	e.active++
	c.numActive++
	c.numInCache++
	return obj, nil
}

// ResetAll marks every instance free and parks all of them, active or not.
func (c *OneWay) ResetAll() {
	c.numActive = 0
	for i := range c.entries {
		e := &c.entries[i]
		e.active = 0
		for _, obj := range e.instances {
			obj.SetLocalPosition(ParkedPosition)
		}
	}
}

// NumObjectsActive returns how many instances were handed out since the
// last reset.
func (c *OneWay) NumObjectsActive() int {
	return c.numActive
}

// NumObjectsInCache returns how many instances the pool holds in total.
func (c *OneWay) NumObjectsInCache() int {
	return c.numInCache
}

// Active returns the instances handed out since the last reset, in prefab
// order.
func (c *OneWay) Active() []scene.Object {
	out := make([]scene.Object, 0, c.numActive)
	for _, e := range c.entries {
		out = append(out, e.instances[:e.active]...)
	}
	return out
}

// CheckUtilization logs a warning when fewer instances are active than
// expected, which means placements upstream ran out of retries. It reports
// whether the counts matched.
func (c *OneWay) CheckUtilization(expected int) bool {
	if expected == c.numActive {
		return true
	}
	monitoring.Warnf("%s cache should have placed %d objects but is only using %d", c.name, expected, c.numActive)
	return false
}
