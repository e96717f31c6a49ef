package confly

import "math"

// mtN, mtM, mtMatrixA, ... are the standard MT19937 constants.
const (
	mtN          = 624
	mtM          = 397
	mtMatrixA    = 0x9908b0df
	mtUpperMask  = 0x80000000
	mtLowerMask  = 0x7fffffff
	mtMaxUint32  = 0xffffffff
	mtTemperingB = 0x9d2c5680
	mtTemperingC = 0xefc60000
)

// Engine is a 32-bit Mersenne-Twister deterministic PRNG. Cube files must
// reproduce byte-for-byte from a seed, which needs an algorithm whose
// output sequence is fully pinned. math/rand does not contractually fix
// its algorithm's bit-level output across Go releases, so the MT19937
// recurrence is implemented here directly.
type Engine struct {
	state [mtN]uint32
	index int
}

// NewEngine constructs an Engine seeded with seed.
func NewEngine(seed uint32) *Engine {
	e := &Engine{}
	e.Seed(seed)
	return e
}

// Seed re-initializes the generator state, matching the standard MT19937
// seeding recurrence.
func (e *Engine) Seed(seed uint32) {
	e.state[0] = seed
	for i := 1; i < mtN; i++ {
		prev := e.state[i-1]
		e.state[i] = uint32(1812433253)*(prev^(prev>>30)) + uint32(i)
	}
	e.index = mtN
}

// Min and Max bound the raw draw range, matching std::mt19937's min()/max().
func (e *Engine) Min() uint32 { return 0 }
func (e *Engine) Max() uint32 { return mtMaxUint32 }

// generate refills the state array once every mtN draws.
func (e *Engine) generate() {
	for i := 0; i < mtN; i++ {
		y := (e.state[i] & mtUpperMask) | (e.state[(i+1)%mtN] & mtLowerMask)
		next := e.state[(i+mtM)%mtN] ^ (y >> 1)
		if y%2 != 0 {
			next ^= mtMatrixA
		}
		e.state[i] = next
	}
	e.index = 0
}

// Uint32 draws the next raw 32-bit value from the stream.
func (e *Engine) Uint32() uint32 {
	if e.index >= mtN {
		e.generate()
	}

	y := e.state[e.index]
	y ^= y >> 11
	y ^= (y << 7) & mtTemperingB
	y ^= (y << 15) & mtTemperingC
	y ^= y >> 18

	e.index++
	return y
}

// Float64 draws a value uniformly in [0, 1) by scaling a raw 32-bit draw.
func (e *Engine) Float64() float64 {
	return float64(e.Uint32()) / (float64(mtMaxUint32) + 1)
}

// UniformInt draws an integer uniformly in the half-open range [lo, hi).
func (e *Engine) UniformInt(lo, hi int64) int64 {
	if hi <= lo {
		return lo
	}
	span := uint64(hi - lo)
	return lo + int64(uint64(e.Uint32())%span)
}

// UniformReal draws a real uniformly in the closed-open range [lo, hi).
func (e *Engine) UniformReal(lo, hi float64) float64 {
	return lo + e.Float64()*(hi-lo)
}

// Laplace draws a value from the Laplace(mu, b) distribution by
// inverse-CDF transform of a uniform draw.
func Laplace(e *Engine, mu, b float64) float64 {
	q := e.Float64()
	switch {
	case q < 0.5:
		return mu + b*math.Log(2*q)
	case q > 0.5:
		return mu - b*math.Log(2-2*q)
	default:
		return mu
	}
}

// Geometric draws a value from the discrete two-sided geometric
// distribution used for Geometric differential privacy.
func Geometric(e *Engine, eps float64) int64 {
	a := math.Exp(-eps)
	cdf := func(z int64) float64 {
		if z < 0 {
			return math.Pow(a, float64(-z)) / (1 + a)
		}
		return (1 + a - math.Pow(a, float64(z+1))) / (1 + a)
	}

	p := e.Float64()
	var z int64
	if p > 0.5 {
		for p > cdf(z) {
			z++
		}
	} else {
		for p < cdf(z-1) {
			z--
		}
	}
	return z
}

// CubeEngine derives a per-cube Engine from a master seed, a run's first
// cube id, and the cube's local index, so that cube replicas running
// concurrently never share mutable RNG state and the stream for a given
// cube id is the same no matter which worker builds it.
func CubeEngine(seed int64, firstCubeID, k int) *Engine {
	s := seed + int64(firstCubeID) + int64(k)
	return NewEngine(uint32(s))
}
