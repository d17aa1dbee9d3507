package sequencer

import (
	"bytes"
	"testing"

	"github.com/jce77/melodygen/pkg/theory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func melodyOf(tempo int, notes ...theory.Note) *theory.Melody {
	m := theory.NewMelody(tempo)
	m.Notes = notes
	return m
}

func note(key theory.Key, octave int, beats, rest float64) theory.Note {
	return theory.Note{Octave: octave, Key: key, Beats: beats, AfterWaitBeats: rest}
}

func TestPitch(t *testing.T) {
	assert.Equal(t, 48, Pitch(theory.C, 3))
	assert.Equal(t, 45, Pitch(theory.A, 3))
	assert.Equal(t, 56, Pitch(theory.GSharp, 3))
	assert.Equal(t, 60, Pitch(theory.C, 4))
}

func TestTicks(t *testing.T) {
	assert.Equal(t, 480, Ticks(1))
	assert.Equal(t, 240, Ticks(0.5))
	assert.Equal(t, 160, Ticks(1.0/3.0))
	assert.Equal(t, 0, Ticks(0))
}

func TestEmit_BudgetExactness(t *testing.T) {
	tests := []struct {
		name      string
		melody    *theory.Melody
		budget    float64
		wantNotes int
	}{
		{
			name:      "overshoot truncates",
			melody:    melodyOf(90, note(theory.C, 3, 1, 1), note(theory.D, 3, 1, 1), note(theory.E, 3, 1, 1)),
			budget:    5,
			wantNotes: 3,
		},
		{
			name:      "undershoot pads",
			melody:    melodyOf(90, note(theory.C, 3, 0.5, 0.5)),
			budget:    8,
			wantNotes: 1,
		},
		{
			name:      "exact fit",
			melody:    melodyOf(120, note(theory.C, 3, 1, 1), note(theory.G, 3, 1, 1)),
			budget:    4,
			wantNotes: 2,
		},
		{
			name:      "note longer than budget",
			melody:    melodyOf(90, note(theory.C, 3, 10, 0)),
			budget:    2,
			wantNotes: 0,
		},
		{
			name:      "empty melody",
			melody:    melodyOf(90),
			budget:    3,
			wantNotes: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Emit(tt.melody, tt.budget)
			require.NoError(t, err)

			summary, err := Summarize(data)
			require.NoError(t, err)
			assert.Equal(t, 1, summary.Tracks)
			assert.Equal(t, TicksPerBeat, summary.TicksPerBeat)
			assert.Equal(t, Ticks(tt.budget), summary.TotalTicks)
			assert.Equal(t, tt.wantNotes, summary.Notes)
		})
	}
}

func TestEmit_TempoBytes(t *testing.T) {
	data, err := Emit(melodyOf(90, note(theory.C, 3, 1, 0)), 4)
	require.NoError(t, err)

	// 60,000,000 / 90 = 666,666 = 0x0A2C2A
	assert.True(t, bytes.Contains(data, []byte{0xFF, 0x51, 0x03, 0x0A, 0x2C, 0x2A}))
	assert.Equal(t, uint32(666666), TempoMicros(90))
	assert.Equal(t, uint32(500000), TempoMicros(120))
}

func TestEmit_Pitches(t *testing.T) {
	data, err := Emit(melodyOf(90, note(theory.C, 3, 1, 0), note(theory.A, 4, 1, 0)), 2)
	require.NoError(t, err)

	summary, err := Summarize(data)
	require.NoError(t, err)
	assert.Equal(t, []int{48, 57}, summary.Pitches)
}

func TestEmit_Deterministic(t *testing.T) {
	m := melodyOf(100, note(theory.C, 3, 0.5, 0.25), note(theory.E, 3, 0.75, 0), note(theory.G, 3, 0.5, 0.5))
	a, err := Emit(m, 8)
	require.NoError(t, err)
	b, err := Emit(m, 8)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEmit_Errors(t *testing.T) {
	_, err := Emit(melodyOf(90, note(theory.C, 12, 1, 0)), 4)
	assert.ErrorIs(t, err, ErrPitchOutOfRange)

	_, err = Emit(melodyOf(90, note(theory.A, -2, 1, 0)), 4)
	assert.ErrorIs(t, err, ErrPitchOutOfRange)

	_, err = Emit(melodyOf(0), 4)
	assert.ErrorIs(t, err, ErrInvalidTiming)

	_, err = Emit(melodyOf(90), 0)
	assert.ErrorIs(t, err, ErrInvalidTiming)

	_, err = Emit(nil, 4)
	assert.Error(t, err)

	odd := melodyOf(90, note(theory.C, 3, 1, 0))
	odd.TimeSignature = theory.TimeSignature{Numerator: 3, Denominator: 6}
	_, err = Emit(odd, 4)
	assert.ErrorIs(t, err, ErrInvalidTiming)
}

func TestEmit_TimeSignature(t *testing.T) {
	m := melodyOf(90, note(theory.C, 3, 1, 0))
	m.TimeSignature = theory.SixEight
	data, err := Emit(m, 3)
	require.NoError(t, err)
	// FF 58 04 nn dd cc bb: 6/8 is numerator 6, denominator power 3
	assert.True(t, bytes.Contains(data, []byte{0xFF, 0x58, 0x04, 6, 3, 24, 8}))

	data, err = Emit(melodyOf(90, note(theory.C, 3, 1, 0)), 4)
	require.NoError(t, err)
	assert.True(t, bytes.Contains(data, []byte{0xFF, 0x58, 0x04, 4, 2, 24, 8}), "4/4 is written with denominator power 2")
}

func TestEmit_TrimmedNoteIsNotValidated(t *testing.T) {
	// the first note fills the budget, so the unreachable second note is dropped
	data, err := Emit(melodyOf(90, note(theory.C, 3, 1, 1), note(theory.C, 20, 1, 1)), 2)
	require.NoError(t, err)

	summary, err := Summarize(data)
	require.NoError(t, err)
	assert.Equal(t, []int{48}, summary.Pitches)
	assert.Equal(t, Ticks(2), summary.TotalTicks)

	_, err = Emit(melodyOf(90, note(theory.C, 3, 1, 0), note(theory.C, 20, 1, 0)), 2)
	assert.ErrorIs(t, err, ErrPitchOutOfRange)
}

func TestSummarize_Invalid(t *testing.T) {
	_, err := Summarize([]byte("not a midi file"))
	assert.Error(t, err)
}
