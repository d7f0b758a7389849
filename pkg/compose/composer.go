package compose

import (
	"fmt"

	"github.com/taigrr/synthscene/internal/config"
	"github.com/taigrr/synthscene/internal/monitoring"
	"github.com/taigrr/synthscene/pkg/cache"
	"github.com/taigrr/synthscene/pkg/curriculum"
	"github.com/taigrr/synthscene/pkg/effects"
	"github.com/taigrr/synthscene/pkg/metrics"
	"github.com/taigrr/synthscene/pkg/placement"
	"github.com/taigrr/synthscene/pkg/render"
	"github.com/taigrr/synthscene/pkg/rng"
	"github.com/taigrr/synthscene/pkg/scene"
)

// Composer produces one composed frame per Step. It is not safe for
// concurrent use.
type Composer struct {
	statics Statics
	params  *config.AppParams
	camera  *render.Camera
	sink    metrics.Sink
	workers int

	root      *scene.Node
	fgCache   *cache.OneWay
	dtCache   *cache.OneWay // background prefabs drawn into the foreground layer
	occCache  *cache.OneWay
	bgCache   *cache.OneWay
	fgSolver  *placement.ForegroundSolver
	occSolver *placement.OccluderSolver
	bgTiler   *placement.BackgroundTiler
	fgRand    *rng.Rand
	bgRand    *rng.Rand
	lighting  *effects.Lighting
	post      *effects.PostProcessing
	labels    []Label

	state         curriculum.State
	frame         int
	framesAtScale int
	paramsSent    bool
}

// Option configures a Composer.
type Option func(*Composer)

// WithSink sends metrics to s. Sink failures are logged and never stop a
// frame.
func WithSink(s metrics.Sink) Option {
	return func(c *Composer) { c.sink = s }
}

// WithWorkers bounds the goroutines of the occluder and background lanes;
// 0 uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *Composer) { c.workers = n }
}

// WithMaxStrength pins the post-processing parameters to their maxima.
func WithMaxStrength() Option {
	return func(c *Composer) { c.post.MaxStrength = true }
}

// New validates statics and builds a composer that places objects in front
// of camera. Instances are created through factory.
func New(statics Statics, camera *render.Camera, factory scene.Factory, opts ...Option) (*Composer, error) {
	statics = statics.withDefaults()
	if err := statics.Validate(); err != nil {
		return nil, err
	}

	fgPrefabs, err := prefabBounds("foreground", statics.Foreground)
	if err != nil {
		return nil, err
	}
	bgPrefabs, err := prefabBounds("background", statics.Background)
	if err != nil {
		return nil, err
	}

	p := statics.Params
	c := &Composer{
		statics:  statics,
		params:   p,
		camera:   camera,
		sink:     metrics.Discard,
		root:     scene.NewNode("composition"),
		fgRand:   rng.New(1 + 2*p.Seed),
		bgRand:   rng.New(2 + 2*p.Seed),
		lighting: effects.NewLighting(p.LightColorMin, p.LightRotationMax),
		post:     effects.NewPostProcessing(p.BlurKernelSizeMax, p.BlurStandardDeviationMax, p.NoiseStrengthMax),
	}
	c.fgSolver = &placement.ForegroundSolver{
		Foreground: fgPrefabs,
		Background: bgPrefabs,
		OutOfPlane: statics.OutOfPlane,
		InPlane:    statics.InPlane,
	}
	c.occSolver = &placement.OccluderSolver{Background: bgPrefabs}
	c.bgTiler = &placement.BackgroundTiler{Foreground: fgPrefabs, Background: bgPrefabs}

	if c.fgCache, err = c.newCache("foreground", factory, statics.Foreground); err != nil {
		return nil, err
	}
	if c.dtCache, err = c.newCache("distractor", factory, statics.Background); err != nil {
		return nil, err
	}
	if c.occCache, err = c.newCache("occluder", factory, statics.Background); err != nil {
		return nil, err
	}
	if c.bgCache, err = c.newCache("background", factory, statics.Background); err != nil {
		return nil, err
	}

	names := make([]string, len(statics.Foreground))
	for i, pf := range statics.Foreground {
		names[i] = pf.Name
	}
	var missing []string
	c.labels, missing = resolveLabels(names, statics.Labels)
	for _, m := range missing {
		monitoring.Warnf("foreground prefab %q has no label", m)
	}
	if statics.Textures.Len() == 0 {
		monitoring.Warnf("no background textures; occluders and background objects keep their own materials")
	}

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func prefabBounds(table string, prefabs []*scene.Prefab) ([]placement.Prefab, error) {
	out := make([]placement.Prefab, len(prefabs))
	for i, p := range prefabs {
		if p == nil {
			return nil, &ConfigError{Field: table, Reason: fmt.Sprintf("prefab %d is nil", i)}
		}
		b, err := p.Bounds()
		if err != nil {
			return nil, fmt.Errorf("%s prefab %q: %w", table, p.Name, err)
		}
		out[i] = placement.Prefab{Name: p.Name, Bounds: b}
	}
	return out, nil
}

func (c *Composer) newCache(name string, factory scene.Factory, prefabs []*scene.Prefab) (*cache.OneWay, error) {
	parent := scene.NewNode(name)
	c.root.AddChild(parent)
	oc, err := cache.NewOneWay(name, factory, parent, prefabs)
	if err != nil {
		return nil, &ConfigError{Field: name, Reason: err.Error()}
	}
	return oc, nil
}

// Root returns the node every instance is parented under.
func (c *Composer) Root() *scene.Node { return c.root }

// State returns the current curriculum position.
func (c *Composer) State() curriculum.State { return c.state }

// Frame returns the number of frames composed so far.
func (c *Composer) Frame() int { return c.frame }

// Params returns the app params in use.
func (c *Composer) Params() *config.AppParams { return c.params }

// Statics returns the statics in use, with defaults filled in.
func (c *Composer) Statics() Statics { return c.statics }

// Label returns the label of foreground prefab i.
func (c *Composer) Label(i int) Label { return c.labels[i] }

// Done reports whether the scale table or the frame budget is exhausted.
func (c *Composer) Done() bool {
	return c.state.Done(len(c.params.ScaleFactors)) || c.frame >= c.params.MaxFrames
}

func (c *Composer) caches() []*cache.OneWay {
	return []*cache.OneWay{c.fgCache, c.dtCache, c.occCache, c.bgCache}
}

// CacheStats returns the active and pooled instance counts over all caches.
func (c *Composer) CacheStats() (active, pooled int) {
	for _, oc := range c.caches() {
		active += oc.NumObjectsActive()
		pooled += oc.NumObjectsInCache()
	}
	return active, pooled
}
