// Package rng provides the seedable xorshift32 generator used by every
// placement lane. Streams are reproducible from (seed, lane) alone, so
// parallel lanes never share generator state.
package rng

import (
	"math"

	"github.com/taigrr/synthscene/pkg/math3d"
)

// LargePrime spreads lane indices across the seed space. Adjacent seeds
// fed to xorshift produce correlated early draws.
const LargePrime uint32 = 0x9F6ABC1

// zeroSeed replaces a zero state, which xorshift can never leave.
const zeroSeed uint32 = 0x6E624EB7

// Rand is a xorshift32 pseudo-random generator. It is not safe for
// concurrent use; give each goroutine its own Stream.
type Rand struct {
	state uint32
	seed  uint32
}

// New returns a generator seeded with seed.
func New(seed uint32) *Rand {
	r := &Rand{}
	r.Seed(seed)
	return r
}

// Stream returns the generator for one parallel lane. The same (seed, lane)
// pair always yields the same sequence.
func Stream(seed, lane uint32) *Rand {
	return New(seed + lane*LargePrime)
}

// Seed resets the generator. The first state is discarded so that small
// seeds do not leak into the first draw.
func (r *Rand) Seed(seed uint32) {
	r.seed = seed
	r.state = seed
	if r.state == 0 {
		r.state = zeroSeed
	}
	r.next()
}

// InitialSeed returns the seed the generator was created with.
func (r *Rand) InitialSeed() uint32 {
	return r.seed
}

// State returns the raw generator state, for checkpointing.
func (r *Rand) State() uint32 {
	return r.state
}

// SetState restores a state returned by State. A zero state is replaced.
func (r *Rand) SetState(s uint32) {
	if s == 0 {
		s = zeroSeed
	}
	r.state = s
}

func (r *Rand) next() uint32 {
	t := r.state
	r.state ^= r.state << 13
	r.state ^= r.state >> 17
	r.state ^= r.state << 5
	return t
}

// Uint32 returns a uniformly distributed 32-bit value.
func (r *Rand) Uint32() uint32 {
	return r.next() - 1
}

// Float64 returns a value in [0, 1).
func (r *Rand) Float64() float64 {
	return float64(r.next()-1) / (1 << 32)
}

// Range returns a value between lo (inclusive) and hi (exclusive).
func (r *Rand) Range(lo, hi float64) float64 {
	return lo + (hi-lo)*r.Float64()
}

// Intn returns a value in [0, n). It panics if n <= 0.
func (r *Rand) Intn(n int) int {
	if n <= 0 {
		panic("rng: invalid argument to Intn")
	}
	return int((uint64(r.next()-1) * uint64(n)) >> 32)
}

// Chance reports true with probability p.
func (r *Rand) Chance(p float64) bool {
	return r.Float64() < p
}

// Rotation returns a uniformly distributed random rotation.
func (r *Rand) Rotation() math3d.Quat {
	u1, u2, u3 := r.Float64(), r.Float64(), r.Float64()
	a, b := math.Sqrt(1-u1), math.Sqrt(u1)
	s2, c2 := math.Sincos(2 * math.Pi * u2)
	s3, c3 := math.Sincos(2 * math.Pi * u3)
	return math3d.Quat{X: a * s2, Y: a * c2, Z: b * s3, W: b * c3}
}
