package theory

import (
	"errors"
	"fmt"
)

// ErrNoteNotInScale is returned when a key is not part of the scale ring
var ErrNoteNotInScale = errors.New("note not in scale")

// Position is a key together with its octave
type Position struct {
	Key    Key
	Octave int
}

// Ring is a scale's key sequence treated as a cycle. It never ends with a
// duplicate of its first key.
type Ring struct {
	keys []Key
}

// NewRing copies keys and drops a trailing key equal to the first one
func NewRing(keys []Key) Ring {
	cp := make([]Key, len(keys))
	copy(cp, keys)
	if len(cp) > 1 && cp[len(cp)-1] == cp[0] {
		cp = cp[:len(cp)-1]
	}
	return Ring{keys: cp}
}

// Len returns the number of stops on the ring
func (r Ring) Len() int {
	return len(r.keys)
}

// Keys returns a copy of the ring's keys
func (r Ring) Keys() []Key {
	out := make([]Key, len(r.keys))
	copy(out, r.keys)
	return out
}

// At returns the key at index i
func (r Ring) At(i int) Key {
	return r.keys[i]
}

// IndexOf returns the last index holding k, or -1
func (r Ring) IndexOf(k Key) int {
	idx := -1
	for i, key := range r.keys {
		if key.Ordinal() == k.Ordinal() {
			idx = i
		}
	}
	return idx
}

// Jump moves steps stops along the ring from pos. Every wrap past either end
// adjusts the octave by one, so the walk is done a stop at a time.
func (r Ring) Jump(pos Position, steps int) (Position, error) {
	idx := r.IndexOf(pos.Key)
	if idx < 0 {
		return pos, fmt.Errorf("%w: %s", ErrNoteNotInScale, pos.Key)
	}

	last := len(r.keys) - 1
	octave := pos.Octave
	switch {
	case steps > 0:
		for i := 0; i < steps; i++ {
			idx++
			if idx > last {
				idx = 0
				octave++
			}
		}
	case steps < 0:
		for i := 0; i < -steps; i++ {
			idx--
			if idx < 0 {
				idx = last
				octave--
			}
		}
	}

	return Position{Key: r.keys[idx], Octave: octave}, nil
}
