package pattern

import (
	"fmt"
	"math"

	"github.com/jce77/melodygen/pkg/sampler"
	"github.com/jce77/melodygen/pkg/theory"
)

// AuthoredName returns the name given to the i-th authored pattern
func AuthoredName(i int) string {
	return fmt.Sprintf("Pattern %d", i)
}

// AuthorDirections draws count direction patterns of size jumps each. Every
// pattern opens with a 0 jump so its first note replays the bootstrap note.
func AuthorDirections(table *sampler.Table, size, count int, phase *sampler.Phase) ([]DirectionPattern, error) {
	if size < 1 || count < 1 {
		return nil, fmt.Errorf("pattern size and count must be positive: size=%d count=%d", size, count)
	}

	patterns := make([]DirectionPattern, 0, count)
	for i := 0; i < count; i++ {
		series := table.Series(phase, size)
		jumps := make([]int, 0, size+1)
		jumps = append(jumps, 0)
		for _, v := range series {
			jumps = append(jumps, int(math.Round(v)))
		}
		patterns = append(patterns, DirectionPattern{Name: AuthoredName(i), Jumps: jumps})
	}
	return patterns, nil
}

// AuthorTimes draws count time patterns of size steps each. Each step takes
// a play draw and a rest draw, each after its own reseed; a repeat drawn in
// the first step of a pattern discards the whole step and draws it again.
func AuthorTimes(beats, rests *sampler.Table, size, count int, phase *sampler.Phase) ([]TimePattern, error) {
	if size < 1 || count < 1 {
		return nil, fmt.Errorf("pattern size and count must be positive: size=%d count=%d", size, count)
	}

	patterns := make([]TimePattern, 0, count)
	for i := 0; i < count; i++ {
		steps := make([]Step, 0, size)
		for len(steps) < size {
			play := beats.Draw(phase.Next())
			rest := rests.Draw(phase.Next())

			if len(steps) == 0 {
				if play.IsRepeat() || rest.IsRepeat() {
					continue
				}
				steps = append(steps, Step{Play: play.Value, Rest: rest.Value})
				continue
			}

			prev := steps[len(steps)-1]
			step := Step{Play: play.Value, Rest: rest.Value}
			if play.IsRepeat() {
				step.Play = prev.Play
			}
			if rest.IsRepeat() {
				step.Rest = prev.Rest
			}
			steps = append(steps, step)
		}
		patterns = append(patterns, TimePattern{Name: AuthoredName(i), TimeSignature: theory.FourFour, Steps: steps})
	}
	return patterns, nil
}
