package theory

import (
	"fmt"
	"strings"
)

// Note is a single sounding note followed by a silence. Durations are in beats.
type Note struct {
	Octave         int     `json:"octave"`
	Key            Key     `json:"key"`
	Beats          float64 `json:"beats"`
	AfterWaitBeats float64 `json:"after_wait_beats"`
}

func (n Note) String() string {
	return fmt.Sprintf("Octave %d, Key %s, Beats %g, After_wait_beats %g", n.Octave, n.Key, n.Beats, n.AfterWaitBeats)
}

// TimeSignature is a numerator/denominator pair
type TimeSignature struct {
	Numerator   int `json:"numerator"`
	Denominator int `json:"denominator"`
}

var (
	FourFour  = TimeSignature{4, 4}
	ThreeFour = TimeSignature{3, 4}
	SixEight  = TimeSignature{6, 8}
)

var timeSignatureNames = map[string]TimeSignature{
	"fourfour":  FourFour,
	"threefour": ThreeFour,
	"sixeight":  SixEight,
}

// ParseTimeSignature accepts the names FourFour, ThreeFour and SixEight, or
// the "n/d" form
func ParseTimeSignature(s string) (TimeSignature, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if ts, ok := timeSignatureNames[name]; ok {
		return ts, nil
	}
	var ts TimeSignature
	if _, err := fmt.Sscanf(name, "%d/%d", &ts.Numerator, &ts.Denominator); err != nil || !ts.Valid() {
		return TimeSignature{}, fmt.Errorf("invalid time signature: %q", s)
	}
	return ts, nil
}

// Valid reports whether a MIDI file can carry the signature: a numerator in
// 1..255 and a power-of-two denominator in 1..128
func (ts TimeSignature) Valid() bool {
	if ts.Numerator < 1 || ts.Numerator > 255 || ts.Denominator < 1 || ts.Denominator > 128 {
		return false
	}
	return ts.Denominator&(ts.Denominator-1) == 0
}

func (ts TimeSignature) String() string {
	return fmt.Sprintf("%d/%d", ts.Numerator, ts.Denominator)
}

// Melody is an ordered note sequence with its key, metre and tempo
type Melody struct {
	Notes         []Note        `json:"notes"`
	KeySignature  Key           `json:"key_signature"`
	TimeSignature TimeSignature `json:"time_signature"`
	Tempo         int           `json:"tempo"` // BPM
}

// NewMelody returns an empty melody in C, 4/4
func NewMelody(tempo int) *Melody {
	return &Melody{
		Notes:         []Note{},
		KeySignature:  C,
		TimeSignature: FourFour,
		Tempo:         tempo,
	}
}

// TotalBeats sums the sounding and silent durations of every note
func (m *Melody) TotalBeats() float64 {
	total := 0.0
	for _, n := range m.Notes {
		total += n.Beats + n.AfterWaitBeats
	}
	return total
}

// Transpose shifts a note by the given number of semitones, carrying the octave
func Transpose(n Note, semitones int) Note {
	shifted := n.Key.Ordinal() + semitones - 1
	return Note{
		Octave:         n.Octave + floorDiv(shifted, KeyCount),
		Key:            KeyFromOrdinal(shifted + 1),
		Beats:          n.Beats,
		AfterWaitBeats: n.AfterWaitBeats,
	}
}

// NoteBelow returns the note one semitone lower. The octave drops when the
// key wraps from A to GSharp.
func NoteBelow(n Note) Note {
	prev := KeyBelow(n.Key)
	octave := n.Octave
	if prev == GSharp {
		octave--
	}
	return Note{Octave: octave, Key: prev, Beats: n.Beats, AfterWaitBeats: n.AfterWaitBeats}
}
