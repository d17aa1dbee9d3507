package pattern

import (
	"fmt"
	"math/rand"

	"github.com/jce77/melodygen/pkg/sampler"
)

// Range is an inclusive [Min, Max] count of patterns to use
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Validate rejects negative or inverted ranges
func (r Range) Validate() error {
	if r.Min < 0 || r.Max < 0 {
		return fmt.Errorf("pattern count range must not be negative: %d-%d", r.Min, r.Max)
	}
	if r.Min > r.Max {
		return fmt.Errorf("pattern count range minimum %d exceeds maximum %d", r.Min, r.Max)
	}
	return nil
}

// Select draws between r.Min and r.Max distinct indexes out of size, in draw
// order. Running out of indexes is not an error.
func Select(size int, rng *rand.Rand, r Range) []int {
	count := sampler.IntRange(rng, r.Min, r.Max)

	remaining := make([]int, size)
	for i := range remaining {
		remaining[i] = i
	}

	selected := make([]int, 0, count)
	for len(selected) < count && len(remaining) > 0 {
		pick := rng.Intn(len(remaining))
		selected = append(selected, remaining[pick])
		remaining = append(remaining[:pick], remaining[pick+1:]...)
	}
	return selected
}

// SelectDirections picks a subset of library and returns copies. A selected
// pattern other than the library's first loses its leading zero jump unless
// that zero is its only jump.
func SelectDirections(library []DirectionPattern, rng *rand.Rand, r Range) ([]DirectionPattern, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	var out []DirectionPattern
	for _, idx := range Select(len(library), rng, r) {
		p := library[idx].Clone()
		if idx > 0 && len(p.Jumps) > 1 && p.Jumps[0] == 0 {
			p.Jumps = p.Jumps[1:]
		}
		if len(p.Jumps) == 0 {
			continue
		}
		out = append(out, p)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no direction patterns selected", ErrEmptyPatternSet)
	}
	return out, nil
}

// SelectTimes picks a subset of library and returns copies
func SelectTimes(library []TimePattern, rng *rand.Rand, r Range) ([]TimePattern, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	var out []TimePattern
	for _, idx := range Select(len(library), rng, r) {
		if len(library[idx].Steps) == 0 {
			continue
		}
		out = append(out, library[idx].Clone())
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no time patterns selected", ErrEmptyPatternSet)
	}
	return out, nil
}

// SelectPitches picks a subset of library and returns copies
func SelectPitches(library []PitchPattern, rng *rand.Rand, r Range) ([]PitchPattern, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	var out []PitchPattern
	for _, idx := range Select(len(library), rng, r) {
		if len(library[idx].Shifts) == 0 {
			continue
		}
		out = append(out, library[idx].Clone())
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no pitch patterns selected", ErrEmptyPatternSet)
	}
	return out, nil
}
