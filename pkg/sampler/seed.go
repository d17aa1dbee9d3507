package sampler

import (
	"math/rand"
)

// Seed combination constants. Changing them changes every generated file.
const (
	combineMultiplier int64 = 23
	combineModulus    int64 = 4567
)

// DefaultStride is the salt advance between two draws of one phase
const DefaultStride int64 = 32

// Purpose salts. Each generation phase derives its own base seed from one of
// these so that its draws do not depend on how many draws other phases made.
const (
	PurposeScaleReduction     int64 = 1 << 20
	PurposeDirectionSelect    int64 = 2 << 20
	PurposeTimeSelect         int64 = 3 << 20
	PurposePitchSelect        int64 = 4 << 20
	PurposeStartPosition      int64 = 5 << 20
	PurposeDirectionSwitch    int64 = 6 << 20
	PurposeDirectionAuthoring int64 = 836501245
	PurposeTimeAuthoring      int64 = 481726453
)

// Combine mixes a seed with a salt: ((a * seed) mod m) xor salt.
func Combine(seed, salt int64) int64 {
	r := ((seed % combineModulus) * combineMultiplier) % combineModulus
	if r < 0 {
		r += combineModulus
	}
	return r ^ salt
}

// Source is the single reseedable pseudo-random stream of a generation run
type Source struct {
	rng *rand.Rand
}

// NewSource creates a source. It must be reseeded before its first draw.
func NewSource() *Source {
	return &Source{rng: rand.New(rand.NewSource(0))}
}

// Reseed resets the stream and returns it ready for drawing
func (s *Source) Reseed(seed int64) *rand.Rand {
	s.rng.Seed(seed)
	return s.rng
}

// Phase derives a phase for the given top-level seed and purpose
func (s *Source) Phase(seed, purpose int64) *Phase {
	return &Phase{
		source: s,
		base:   Combine(seed, purpose),
		salt:   DefaultStride,
		stride: DefaultStride,
	}
}

// Phase is one generation step's view of the source. Every Next call
// reseeds the stream with a fresh sub-seed.
type Phase struct {
	source *Source
	base   int64
	salt   int64
	stride int64
}

// Next reseeds the stream with Combine(base, salt), advances the salt and
// returns the stream
func (p *Phase) Next() *rand.Rand {
	rng := p.source.Reseed(Combine(p.base, p.salt))
	p.salt += p.stride
	return rng
}

// Intn reseeds and draws an integer in [0, n)
func (p *Phase) Intn(n int) int {
	return p.Next().Intn(n)
}

// IntRange reseeds and draws an integer in [lo, hi], inclusive
func (p *Phase) IntRange(lo, hi int) int {
	return IntRange(p.Next(), lo, hi)
}

// IntRange draws an integer in [lo, hi], inclusive
func IntRange(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}
