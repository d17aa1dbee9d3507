package sampler

import (
	"errors"
	"fmt"
	"math/rand"
)

// Repeat is the reserved outcome meaning "repeat the previous draw"
const Repeat = 9999

var (
	// ErrEmptyTable is returned for a table without usable weight
	ErrEmptyTable = errors.New("weighted table is empty")
	// ErrOnlyRepeat is returned for a table that can only draw the repeat sentinel
	ErrOnlyRepeat = errors.New("weighted table only contains the repeat outcome")
)

// Entry is one weighted outcome
type Entry struct {
	Value  float64
	Weight float64
}

// IsRepeat reports whether the entry is the repeat sentinel
func (e Entry) IsRepeat() bool {
	return e.Value == Repeat
}

// Table draws outcomes proportionally to their weights
type Table struct {
	entries    []Entry
	cumulative []float64
	total      float64
}

// NewTable builds the cumulative weight table
func NewTable(entries []Entry) (*Table, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyTable
	}

	t := &Table{
		entries:    make([]Entry, len(entries)),
		cumulative: make([]float64, len(entries)),
	}
	copy(t.entries, entries)

	repeatWeight := 0.0
	for i, e := range t.entries {
		if e.Weight < 0 {
			return nil, fmt.Errorf("negative weight %g for outcome %g", e.Weight, e.Value)
		}
		t.total += e.Weight
		t.cumulative[i] = t.total
		if e.IsRepeat() {
			repeatWeight += e.Weight
		}
	}

	if t.total <= 0 {
		return nil, ErrEmptyTable
	}
	if repeatWeight == t.total {
		return nil, ErrOnlyRepeat
	}
	return t, nil
}

// Total returns the summed weight
func (t *Table) Total() float64 {
	return t.total
}

// Len returns the number of outcomes
func (t *Table) Len() int {
	return len(t.entries)
}

// Draw picks the first entry whose cumulative weight exceeds a uniform draw
// in [0, total)
func (t *Table) Draw(rng *rand.Rand) Entry {
	x := rng.Float64() * t.total
	for i, c := range t.cumulative {
		if x < c {
			return t.entries[i]
		}
	}
	// x can only reach total through rounding
	return t.entries[len(t.entries)-1]
}

// Series draws n values, reseeding through the phase before every draw.
// A repeat drawn first is redrawn; later it copies the previous value.
func (t *Table) Series(p *Phase, n int) []float64 {
	out := make([]float64, 0, n)
	for len(out) < n {
		e := t.Draw(p.Next())
		if e.IsRepeat() {
			if len(out) == 0 {
				continue
			}
			out = append(out, out[len(out)-1])
			continue
		}
		out = append(out, e.Value)
	}
	return out
}
