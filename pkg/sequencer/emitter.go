package sequencer

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/jce77/melodygen/pkg/theory"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	// TicksPerBeat is the file resolution
	TicksPerBeat = 480
	// DefaultTrackName names the single track when the caller gives none
	DefaultTrackName = "melodygen"

	alignmentOffset = -4
	channel         = 0
	velocity        = 64
	microsPerMinute = 60_000_000
)

var (
	// ErrPitchOutOfRange is returned for notes outside the MIDI range 0..127
	ErrPitchOutOfRange = errors.New("pitch out of range")
	// ErrInvalidTiming is returned for non-positive tempo or budget and negative durations
	ErrInvalidTiming = errors.New("invalid timing")
)

// Pitch maps a key and octave to a MIDI note number
func Pitch(key theory.Key, octave int) int {
	return key.Ordinal() + (octave+1)*12 + alignmentOffset
}

// Ticks converts beats to ticks, rounding to the nearest tick
func Ticks(beats float64) int {
	return int(math.Round(beats * TicksPerBeat))
}

// TempoMicros returns the microseconds per beat written for a tempo
func TempoMicros(bpm int) uint32 {
	return uint32(microsPerMinute / bpm)
}

// tempoMessage builds the tempo meta event from the exact integer
// microseconds value. smf.MetaTempo takes a float BPM and would round.
func tempoMessage(micros uint32) smf.Message {
	return smf.Message{0xFF, 0x51, 0x03, byte(micros >> 16), byte(micros >> 8), byte(micros)}
}

// Emit serializes a melody as a single-track Standard MIDI File that lasts
// exactly beatBudget beats
func Emit(melody *theory.Melody, beatBudget float64) ([]byte, error) {
	return EmitNamed(melody, beatBudget, DefaultTrackName)
}

// EmitNamed is Emit with an explicit track name. Notes are written until the
// next note or silence would overshoot the budget; any shortfall is padded
// with one silent filler.
func EmitNamed(melody *theory.Melody, beatBudget float64, name string) ([]byte, error) {
	if melody == nil {
		return nil, fmt.Errorf("melody is nil")
	}
	if melody.Tempo <= 0 {
		return nil, fmt.Errorf("%w: tempo must be positive, got %d", ErrInvalidTiming, melody.Tempo)
	}
	budget := Ticks(beatBudget)
	if budget <= 0 {
		return nil, fmt.Errorf("%w: beat budget must be positive, got %g", ErrInvalidTiming, beatBudget)
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(TicksPerBeat)

	var track smf.Track
	if name != "" {
		track.Add(0, smf.MetaTrackSequenceName(name))
	}
	track.Add(0, tempoMessage(TempoMicros(melody.Tempo)))

	ts := melody.TimeSignature
	if ts.Numerator == 0 && ts.Denominator == 0 {
		ts = theory.FourFour
	}
	if !ts.Valid() {
		return nil, fmt.Errorf("%w: unsupported time signature %s", ErrInvalidTiming, ts)
	}
	track.Add(0, smf.MetaTimeSig(uint8(ts.Numerator), uint8(ts.Denominator), 24, 8))

	used := 0
	for i, n := range melody.Notes {
		play, rest := Ticks(n.Beats), Ticks(n.AfterWaitBeats)
		// notes past the budget are neither written nor validated
		if used+play > budget {
			break
		}
		if play < 0 || rest < 0 {
			return nil, fmt.Errorf("%w: note %d has a negative duration", ErrInvalidTiming, i)
		}
		pitch := Pitch(n.Key, n.Octave)
		if pitch < 0 || pitch > 127 {
			return nil, fmt.Errorf("%w: note %d (%s octave %d) maps to %d", ErrPitchOutOfRange, i, n.Key, n.Octave, pitch)
		}
		track.Add(0, midi.NoteOn(channel, uint8(pitch), velocity))
		track.Add(uint32(play), midi.NoteOffVelocity(channel, uint8(pitch), velocity))
		used += play

		if used+rest > budget {
			break
		}
		addSilence(&track, rest)
		used += rest
	}

	if used < budget {
		addSilence(&track, budget-used)
	}
	track.Close(0)

	if err := s.Add(track); err != nil {
		return nil, fmt.Errorf("failed to add track: %w", err)
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write MIDI file: %w", err)
	}
	return buf.Bytes(), nil
}

// addSilence writes a muted note-on after ticks of nothing, closed at once
func addSilence(track *smf.Track, ticks int) {
	track.Add(uint32(ticks), midi.NoteOn(channel, 0, 0))
	track.Add(0, midi.NoteOff(channel, 0))
}
