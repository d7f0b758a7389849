// Package effects draws the per-frame lighting and post-processing
// parameters applied on top of a composed scene.
package effects

import (
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/taigrr/synthscene/pkg/math3d"
	"github.com/taigrr/synthscene/pkg/rng"
)

// Seed is the starting seed of both randomizers.
const Seed = 1

// LightInfo is the directional light for one frame.
type LightInfo struct {
	Color     colorful.Color `json:"-"`
	Hex       string         `json:"color"`
	XRotation float64        `json:"x_rotation"` // degrees
	YRotation float64        `json:"y_rotation"` // degrees
}

// Rotation returns the light orientation.
func (l LightInfo) Rotation() math3d.Quat {
	return math3d.QuatEuler(l.XRotation, l.YRotation, 0)
}

// Direction returns the direction the light shines in. An unrotated light
// shines along the capture camera's view axis, -Z.
func (l LightInfo) Direction() math3d.Vec3 {
	return l.Rotation().Rotate(math3d.V3(0, 0, -1))
}

// Lighting randomizes the light color and orientation every frame.
type Lighting struct {
	ColorMin    float64 // lower bound of each color channel
	RotationMax float64 // degrees either side of straight ahead

	rand *rng.Rand
}

// NewLighting returns a lighting randomizer on its own stream.
func NewLighting(colorMin, rotationMax float64) *Lighting {
	return &Lighting{ColorMin: colorMin, RotationMax: rotationMax, rand: rng.New(Seed)}
}

// Next draws the light for the next frame.
func (l *Lighting) Next() LightInfo {
	c := colorful.Color{
		R: l.rand.Range(l.ColorMin, 1),
		G: l.rand.Range(l.ColorMin, 1),
		B: l.rand.Range(l.ColorMin, 1),
	}
	return LightInfo{
		Color:     c,
		Hex:       c.Hex(),
		XRotation: l.rand.Range(-l.RotationMax, l.RotationMax),
		YRotation: l.rand.Range(-l.RotationMax, l.RotationMax),
	}
}

// PostProcess is the blur and noise setting for one frame.
type PostProcess struct {
	BlurKernelSize float64 `json:"blur_kernel_size"` // viewport fraction
	BlurStdDev     float64 `json:"blur_std_dev"`
	NoiseStrength  float64 `json:"noise_strength"`
}

// PostProcessing randomizes blur and white noise every frame.
type PostProcessing struct {
	KernelSizeMax float64
	StdDevMax     float64 // fraction of the kernel size
	NoiseMax      float64

	// MaxStrength pins every parameter to its maximum.
	MaxStrength bool

	rand *rng.Rand
}

// NewPostProcessing returns a post-processing randomizer on its own stream.
func NewPostProcessing(kernelSizeMax, stdDevMax, noiseMax float64) *PostProcessing {
	return &PostProcessing{
		KernelSizeMax: kernelSizeMax,
		StdDevMax:     stdDevMax,
		NoiseMax:      noiseMax,
		rand:          rng.New(Seed),
	}
}

// Next draws the post-processing setting for the next frame.
func (p *PostProcessing) Next() PostProcess {
	if p.MaxStrength {
		return PostProcess{
			BlurKernelSize: p.KernelSizeMax,
			BlurStdDev:     p.StdDevMax * p.KernelSizeMax,
			NoiseStrength:  p.NoiseMax,
		}
	}
	kernel := p.rand.Range(0, p.KernelSizeMax)
	return PostProcess{
		BlurKernelSize: kernel,
		BlurStdDev:     p.rand.Range(0, p.StdDevMax) * kernel,
		NoiseStrength:  p.rand.Range(0, p.NoiseMax),
	}
}
