package main

import (
	"github.com/taigrr/synthscene/pkg/math3d"
	"github.com/taigrr/synthscene/pkg/scene"
)

// demoPrefabs returns box stand-ins for real assets.
func demoPrefabs() (foreground, background []*scene.Prefab) {
	foreground = []*scene.Prefab{
		scene.NewBoxPrefab("cereal_01", math3d.V3(0.6, 0.9, 0.2)),
		scene.NewBoxPrefab("cereal_02", math3d.V3(0.5, 0.8, 0.25)),
		scene.NewBoxPrefab("soup_can_01", math3d.V3(0.3, 0.4, 0.3)),
		scene.NewBoxPrefab("milk_01", math3d.V3(0.35, 0.9, 0.35)),
	}
	background = []*scene.Prefab{
		scene.NewBoxPrefab("slab", math3d.V3(1, 1, 0.1)),
		scene.NewBoxPrefab("post", math3d.V3(0.15, 1.2, 0.15)),
		scene.NewBoxPrefab("cube", math3d.V3(0.5, 0.5, 0.5)),
		scene.NewBoxPrefab("plank", math3d.V3(1.4, 0.2, 0.3)),
	}
	return foreground, background
}
