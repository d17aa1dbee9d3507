package theory

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownScale is returned when a scale name is not registered
var ErrUnknownScale = errors.New("unknown scale")

// ScaleDefinition is the ordered list of semitone steps that make up a scale.
// The built-in definitions all sum to 12.
type ScaleDefinition struct {
	Intervals []int
}

// Scale is an ordered key sequence built from a root key
type Scale struct {
	Name string
	Keys []Key
	// Octave is the starting octave plus every wrap past the top of the key
	// cycle while the scale was built.
	Octave int
}

// Registry is an immutable lookup table of named scale definitions
type Registry struct {
	scales map[string]ScaleDefinition
}

// NewRegistry copies the given definitions into a new registry.
// Names are matched case-insensitively.
func NewRegistry(defs map[string][]int) *Registry {
	r := &Registry{scales: make(map[string]ScaleDefinition, len(defs))}
	for name, intervals := range defs {
		cp := make([]int, len(intervals))
		copy(cp, intervals)
		r.scales[strings.ToLower(name)] = ScaleDefinition{Intervals: cp}
	}
	return r
}

// DefaultRegistry returns the built-in scale table
func DefaultRegistry() *Registry {
	return NewRegistry(map[string][]int{
		"major":                {2, 2, 1, 2, 2, 2, 1},
		"minor":                {2, 1, 2, 2, 1, 2, 2},
		"dorian":               {2, 1, 2, 2, 2, 1, 2},
		"mixolydian":           {2, 2, 1, 2, 2, 1, 2},
		"phrygian":             {1, 2, 2, 2, 1, 2, 2},
		"harmonic_minor":       {2, 1, 2, 2, 1, 3, 1},
		"melodic_minor":        {2, 1, 2, 2, 2, 2, 1},
		"whole_tone":           {2, 2, 2, 2, 2, 2},
		"pentatonic_major":     {2, 2, 3, 2, 3},
		"pentatonic_minor":     {3, 2, 2, 3, 2},
		"octatonic_whole_half": {2, 2, 1, 2, 2, 1, 2, 2},
		"octatonic_half_whole": {1, 2, 2, 2, 1, 2, 2, 2},
		"enigmatic":            {1, 3, 2, 2, 2, 1, 1},
		"neapolitan_major":     {1, 2, 2, 2, 2, 2, 1},
		"neapolitan_minor":     {1, 2, 2, 2, 1, 3, 1},
	})
}

// Names returns the registered scale names, sorted
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.scales))
	for name := range r.scales {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definition returns a copy of the named scale definition
func (r *Registry) Definition(name string) (ScaleDefinition, error) {
	def, ok := r.scales[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return ScaleDefinition{}, fmt.Errorf("%w: %s", ErrUnknownScale, name)
	}
	cp := make([]int, len(def.Intervals))
	copy(cp, def.Intervals)
	return ScaleDefinition{Intervals: cp}, nil
}

// Build walks the named scale's intervals from root. The returned keys start
// with root and, for a full-cycle scale, end with root again.
func (r *Registry) Build(name string, root Key, startOctave int) (Scale, error) {
	def, err := r.Definition(name)
	if err != nil {
		return Scale{}, err
	}
	if !root.Valid() {
		return Scale{}, fmt.Errorf("%w: %d", ErrInvalidKey, int(root))
	}

	keys := make([]Key, 0, len(def.Intervals)+1)
	keys = append(keys, root)
	octave := startOctave
	for _, interval := range def.Intervals {
		last := keys[len(keys)-1]
		next := mod(last.Ordinal()+interval-1, KeyCount) + 1
		if next == 1 {
			octave++
		}
		keys = append(keys, Key(next))
	}

	return Scale{Name: strings.ToLower(strings.TrimSpace(name)), Keys: keys, Octave: octave}, nil
}

// NoteInScale reports whether the note's key appears in keys
func NoteInScale(n Note, keys []Key) bool {
	for _, k := range keys {
		if k.Ordinal() == n.Key.Ordinal() {
			return true
		}
	}
	return false
}
