package pattern

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jce77/melodygen/pkg/theory"
)

var (
	// ErrEmptyPatternSet is returned when no usable pattern is left to compose with
	ErrEmptyPatternSet = errors.New("empty pattern set")
	// ErrNotFound is returned when an asset file does not exist
	ErrNotFound = errors.New("asset not found")
)

// Step is one (play, rest) pair of a time pattern, in beats
type Step struct {
	Play float64 `json:"play"`
	Rest float64 `json:"rest"`
}

// Duration returns play + rest
func (s Step) Duration() float64 {
	return s.Play + s.Rest
}

// TimePattern is a named rhythm, consumed cyclically
type TimePattern struct {
	Name          string               `json:"name"`
	TimeSignature theory.TimeSignature `json:"time_signature"`
	Steps         []Step               `json:"steps"`
}

// Duration returns the beats covered by one pass over the pattern
func (p TimePattern) Duration() float64 {
	total := 0.0
	for _, s := range p.Steps {
		total += s.Duration()
	}
	return total
}

// Clone returns a deep copy
func (p TimePattern) Clone() TimePattern {
	steps := make([]Step, len(p.Steps))
	copy(steps, p.Steps)
	return TimePattern{Name: p.Name, TimeSignature: p.TimeSignature, Steps: steps}
}

func (p TimePattern) String() string {
	parts := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		parts[i] = fmt.Sprintf("(%g, %g)", s.Play, s.Rest)
	}
	return fmt.Sprintf("name %s, time_signature %s, beat_times [%s]", p.Name, p.TimeSignature, strings.Join(parts, ", "))
}

// DirectionPattern is a named sequence of signed scale-ring jumps
type DirectionPattern struct {
	Name  string `json:"name"`
	Jumps []int  `json:"jumps"`
}

// Clone returns a deep copy
func (p DirectionPattern) Clone() DirectionPattern {
	jumps := make([]int, len(p.Jumps))
	copy(jumps, p.Jumps)
	return DirectionPattern{Name: p.Name, Jumps: jumps}
}

func (p DirectionPattern) String() string {
	return fmt.Sprintf("name %s, direction_changes %v", p.Name, p.Jumps)
}

// PitchPattern is a named sequence of signed semitone shifts
type PitchPattern struct {
	Name   string `json:"name"`
	Shifts []int  `json:"shifts"`
}

// Clone returns a deep copy
func (p PitchPattern) Clone() PitchPattern {
	shifts := make([]int, len(p.Shifts))
	copy(shifts, p.Shifts)
	return PitchPattern{Name: p.Name, Shifts: shifts}
}

func (p PitchPattern) String() string {
	return fmt.Sprintf("name %s, pitch_changes %v", p.Name, p.Shifts)
}
