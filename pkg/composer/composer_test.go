package composer

import (
	"testing"

	"github.com/jce77/melodygen/pkg/pattern"
	"github.com/jce77/melodygen/pkg/sampler"
	"github.com/jce77/melodygen/pkg/theory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exampleDirections() []pattern.DirectionPattern {
	return []pattern.DirectionPattern{
		{Name: "Climb", Jumps: []int{0, 1, 1, 2, -1}},
		{Name: "Fall", Jumps: []int{0, -2, -1, 3}},
		{Name: "Wander", Jumps: []int{0, 4, -3, 1, 1, -5}},
	}
}

func exampleTimes() []pattern.TimePattern {
	return []pattern.TimePattern{
		{Name: "Even", TimeSignature: theory.FourFour, Steps: []pattern.Step{{Play: 0.5, Rest: 0.5}, {Play: 0.25, Rest: 0.25}}},
		{Name: "Waltz", TimeSignature: theory.ThreeFour, Steps: []pattern.Step{{Play: 1, Rest: 0.5}, {Play: 0.5, Rest: 0}}},
	}
}

func baseRequest() Request {
	return Request{
		Root:       theory.C,
		Scale:      "major",
		Octave:     3,
		ScaleUsage: 1,
		BeatBudget: 8,
		Tempo:      90,
		Seed:       123456789,
		Directions: pattern.Range{Min: 1, Max: 3},
		Times:      pattern.Range{Min: 1, Max: 3},
		Pitches:    pattern.Range{Min: 1, Max: 3},
	}
}

func TestCompose_TerminatesAtBudget(t *testing.T) {
	c := New(nil)
	res, err := c.Compose(baseRequest(), exampleDirections(), exampleTimes())
	require.NoError(t, err)

	notes := res.Melody.Notes
	require.NotEmpty(t, notes)
	assert.Equal(t, 0.5, notes[0].Beats)
	assert.Equal(t, 0.5, notes[0].AfterWaitBeats)
	assert.Equal(t, 3, notes[0].Octave)

	// everything after the bootstrap note counts towards the budget
	elapsed := 0.0
	for _, n := range notes[1:] {
		elapsed += n.Beats + n.AfterWaitBeats
	}
	assert.GreaterOrEqual(t, elapsed, 8.0)
	last := notes[len(notes)-1]
	assert.Less(t, elapsed-(last.Beats+last.AfterWaitBeats), 8.0)

	for _, n := range notes {
		assert.True(t, theory.NoteInScale(n, res.ScaleKeys), "note %s outside scale", n)
	}
	assert.Equal(t, theory.C, res.Melody.KeySignature)
	assert.Equal(t, 90, res.Melody.Tempo)
}

func TestCompose_Deterministic(t *testing.T) {
	req := baseRequest()
	req.ScaleUsage = 0.5

	a, err := New(nil).Compose(req, exampleDirections(), exampleTimes())
	require.NoError(t, err)
	b, err := New(nil).Compose(req, exampleDirections(), exampleTimes())
	require.NoError(t, err)

	assert.Equal(t, a, b)

	// a reused composer gives the same answer again
	c := New(nil)
	_, err = c.Compose(baseRequest(), exampleDirections(), exampleTimes())
	require.NoError(t, err)
	again, err := c.Compose(req, exampleDirections(), exampleTimes())
	require.NoError(t, err)
	assert.Equal(t, a, again)
}

func TestCompose_WalksRing(t *testing.T) {
	req := baseRequest()
	req.BeatBudget = 4
	directions := []pattern.DirectionPattern{{Name: "Up", Jumps: []int{1}}}
	times := []pattern.TimePattern{{Name: "Whole", Steps: []pattern.Step{{Play: 1, Rest: 0}}}}

	res, err := New(nil).Compose(req, directions, times)
	require.NoError(t, err)
	require.Len(t, res.Melody.Notes, 5)
	assert.Equal(t, theory.FourFour, res.Melody.TimeSignature)

	ring := theory.NewRing(res.ScaleKeys)
	for i := 1; i < len(res.Melody.Notes); i++ {
		prev := ring.IndexOf(res.Melody.Notes[i-1].Key)
		cur := ring.IndexOf(res.Melody.Notes[i].Key)
		assert.Equal(t, (prev+1)%ring.Len(), cur)
	}
}

func TestCompose_Errors(t *testing.T) {
	c := New(nil)

	t.Run("unknown scale", func(t *testing.T) {
		req := baseRequest()
		req.Scale = "nonexistent"
		_, err := c.Compose(req, exampleDirections(), exampleTimes())
		assert.ErrorIs(t, err, theory.ErrUnknownScale)
	})

	t.Run("no directions", func(t *testing.T) {
		_, err := c.Compose(baseRequest(), nil, exampleTimes())
		assert.ErrorIs(t, err, pattern.ErrEmptyPatternSet)
	})

	t.Run("no times", func(t *testing.T) {
		_, err := c.Compose(baseRequest(), exampleDirections(), []pattern.TimePattern{{Name: "empty"}})
		assert.ErrorIs(t, err, pattern.ErrEmptyPatternSet)
	})

	t.Run("silent time pattern", func(t *testing.T) {
		times := []pattern.TimePattern{{Name: "Zero", Steps: []pattern.Step{{Play: 0, Rest: 0}}}}
		_, err := c.Compose(baseRequest(), exampleDirections(), times)
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("non-positive budget", func(t *testing.T) {
		req := baseRequest()
		req.BeatBudget = 0
		_, err := c.Compose(req, exampleDirections(), exampleTimes())
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("invalid root", func(t *testing.T) {
		req := baseRequest()
		req.Root = theory.Key(0)
		_, err := c.Compose(req, exampleDirections(), exampleTimes())
		assert.ErrorIs(t, err, theory.ErrInvalidKey)
	})
}

func TestReduceScale(t *testing.T) {
	scale, err := theory.DefaultRegistry().Build("major", theory.C, 3)
	require.NoError(t, err)
	original := append([]theory.Key(nil), scale.Keys...)
	require.Len(t, original, 8)

	tests := []struct {
		usage float64
		want  int
	}{
		{1, 8},
		{0.5, 4},
		{0.3, 6},
		{0.99, 1},
	}

	for _, tt := range tests {
		phase := sampler.NewSource().Phase(42, sampler.PurposeScaleReduction)
		reduced := ReduceScale(scale.Keys, tt.usage, phase)
		assert.Len(t, reduced, tt.want, "usage %g", tt.usage)
		assert.Equal(t, original[len(original)-1], reduced[len(reduced)-1], "final key must survive")
		assert.Equal(t, original, scale.Keys, "input must not be modified")
	}
}

func TestComposePitch(t *testing.T) {
	req := baseRequest()
	times := []pattern.TimePattern{{Name: "Whole", Steps: []pattern.Step{{Play: 1, Rest: 0.5}, {Play: 0.5, Rest: 0}}}}
	pitches := []pattern.PitchPattern{{Name: "Leap", Shifts: []int{2, -1, 12}}}

	res, err := New(nil).ComposePitch(req, times, pitches)
	require.NoError(t, err)

	want := []theory.Note{
		{Octave: 3, Key: theory.C, Beats: 1, AfterWaitBeats: 0.5},
		{Octave: 3, Key: theory.D, Beats: 0.5, AfterWaitBeats: 0},
		{Octave: 3, Key: theory.CSharp, Beats: 1, AfterWaitBeats: 0.5},
		{Octave: 4, Key: theory.CSharp, Beats: 0.5, AfterWaitBeats: 0},
	}
	assert.Equal(t, want, res.Melody.Notes)
	assert.Equal(t, []string{"Leap"}, res.Pitches)
}

func TestComposePitch_EmptyPitches(t *testing.T) {
	_, err := New(nil).ComposePitch(baseRequest(), exampleTimes(), nil)
	assert.ErrorIs(t, err, pattern.ErrEmptyPatternSet)
}

func TestRenderScale(t *testing.T) {
	res, err := New(nil).RenderScale(baseRequest())
	require.NoError(t, err)

	notes := res.Melody.Notes
	require.Len(t, notes, 8)

	wantKeys := []theory.Key{theory.C, theory.D, theory.E, theory.F, theory.G, theory.A, theory.B, theory.C}
	wantOctaves := []int{3, 3, 3, 3, 3, 4, 4, 4}
	for i, n := range notes {
		assert.Equal(t, wantKeys[i], n.Key, "key %d", i)
		assert.Equal(t, wantOctaves[i], n.Octave, "octave %d", i)
		assert.Equal(t, 0.25, n.Beats)
		assert.Equal(t, 0.125, n.AfterWaitBeats)
	}
}
