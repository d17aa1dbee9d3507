package composer

import (
	"errors"
	"fmt"

	"github.com/jce77/melodygen/pkg/logger"
	"github.com/jce77/melodygen/pkg/pattern"
	"github.com/jce77/melodygen/pkg/sampler"
	"github.com/jce77/melodygen/pkg/theory"
)

// DefaultTempo is used when a request leaves Tempo unset
const DefaultTempo = 90

const (
	bootstrapBeats = 0.5
	bootstrapRest  = 0.5
)

// ErrInvalidRequest is returned for requests that cannot produce a melody
var ErrInvalidRequest = errors.New("invalid composition request")

// Request holds the parameters of one composition
type Request struct {
	Root       theory.Key
	Scale      string
	Octave     int
	ScaleUsage float64 // values below 1 remove floor(len*ScaleUsage) keys
	BeatBudget float64
	Tempo      int
	Seed       int64
	Directions pattern.Range
	Times      pattern.Range
	Pitches    pattern.Range
}

// Result is a composed melody together with the choices that produced it
type Result struct {
	Melody     *theory.Melody
	ScaleKeys  []theory.Key
	StartIndex int
	Directions []string
	Times      []string
	Pitches    []string
}

// Composer turns scales and pattern libraries into melodies. A Composer owns
// one random source and must not be shared between goroutines.
type Composer struct {
	scales *theory.Registry
	source *sampler.Source
}

// New creates a composer over the given scale registry
func New(scales *theory.Registry) *Composer {
	if scales == nil {
		scales = theory.DefaultRegistry()
	}
	return &Composer{
		scales: scales,
		source: sampler.NewSource(),
	}
}

func (r Request) tempo() int {
	if r.Tempo <= 0 {
		return DefaultTempo
	}
	return r.Tempo
}

func (r Request) validate() error {
	if !r.Root.Valid() {
		return fmt.Errorf("%w: %d", theory.ErrInvalidKey, int(r.Root))
	}
	if r.BeatBudget <= 0 {
		return fmt.Errorf("%w: beat budget must be positive, got %g", ErrInvalidRequest, r.BeatBudget)
	}
	if r.ScaleUsage < 0 || r.ScaleUsage > 1 {
		return fmt.Errorf("%w: scale usage must be between 0 and 1, got %g", ErrInvalidRequest, r.ScaleUsage)
	}
	return nil
}

// ReduceScale returns a copy of keys with floor(len*usage) keys removed, one
// seeded draw per removal. The final key is never removed. Usage of 1 or
// more returns an unchanged copy.
func ReduceScale(keys []theory.Key, usage float64, phase *sampler.Phase) []theory.Key {
	out := make([]theory.Key, len(keys))
	copy(out, keys)
	if usage >= 1 {
		return out
	}

	remove := int(float64(len(out)) * usage)
	for i := 0; i < remove && len(out) > 1; i++ {
		idx := phase.Intn(len(out) - 1)
		out = append(out[:idx], out[idx+1:]...)
	}
	return out
}

// Compose walks the scale ring with direction patterns while a time pattern
// supplies durations, until the beat budget is reached
func (c *Composer) Compose(req Request, directions []pattern.DirectionPattern, times []pattern.TimePattern) (*Result, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	scale, err := c.scales.Build(req.Scale, req.Root, req.Octave)
	if err != nil {
		return nil, err
	}
	keys := scale.Keys
	if req.ScaleUsage > 0 && req.ScaleUsage < 1 {
		keys = ReduceScale(keys, req.ScaleUsage, c.source.Phase(req.Seed, sampler.PurposeScaleReduction))
		logger.Debug("Reduced scale", "from", len(scale.Keys), "to", len(keys), "keys", keys)
	}

	selectedDirections, err := pattern.SelectDirections(directions, c.source.Phase(req.Seed, sampler.PurposeDirectionSelect).Next(), req.Directions)
	if err != nil {
		return nil, err
	}
	selectedTimes, err := pattern.SelectTimes(times, c.source.Phase(req.Seed, sampler.PurposeTimeSelect).Next(), req.Times)
	if err != nil {
		return nil, err
	}

	active := selectedTimes[0]
	if active.Duration() <= 0 {
		return nil, fmt.Errorf("%w: time pattern %q has no duration", ErrInvalidRequest, active.Name)
	}

	ring := theory.NewRing(keys)
	start := c.source.Phase(req.Seed, sampler.PurposeStartPosition).Intn(ring.Len())
	first := theory.Note{
		Octave:         req.Octave,
		Key:            ring.At(start),
		Beats:          bootstrapBeats,
		AfterWaitBeats: bootstrapRest,
	}
	if !theory.NoteInScale(first, keys) {
		return nil, fmt.Errorf("%w: %s", theory.ErrNoteNotInScale, first.Key)
	}

	melody := theory.NewMelody(req.tempo())
	melody.KeySignature = req.Root
	melody.TimeSignature = timeSignatureOf(active)
	melody.Notes = append(melody.Notes, first)

	switcher := c.source.Phase(req.Seed, sampler.PurposeDirectionSwitch)
	current := switcher.Intn(len(selectedDirections))
	cursor := 0
	step := 0
	pos := theory.Position{Key: first.Key, Octave: first.Octave}
	elapsed := 0.0

	for elapsed < req.BeatBudget {
		timing := active.Steps[step]
		pos, err = ring.Jump(pos, selectedDirections[current].Jumps[cursor])
		if err != nil {
			return nil, err
		}
		melody.Notes = append(melody.Notes, theory.Note{
			Octave:         pos.Octave,
			Key:            pos.Key,
			Beats:          timing.Play,
			AfterWaitBeats: timing.Rest,
		})
		elapsed += timing.Duration()

		step = (step + 1) % len(active.Steps)
		cursor++
		if cursor == len(selectedDirections[current].Jumps) {
			current = switcher.Intn(len(selectedDirections))
			cursor = 0
		}
	}

	logger.Debug("Composed melody", "notes", len(melody.Notes), "beats", elapsed, "start", start)

	return &Result{
		Melody:     melody,
		ScaleKeys:  ring.Keys(),
		StartIndex: start,
		Directions: directionNames(selectedDirections),
		Times:      timeNames(selectedTimes),
	}, nil
}

// ComposePitch starts on the root key and moves by the semitone shifts of
// one pitch pattern, taking durations from one time pattern
func (c *Composer) ComposePitch(req Request, times []pattern.TimePattern, pitches []pattern.PitchPattern) (*Result, error) {
	if !req.Root.Valid() {
		return nil, fmt.Errorf("%w: %d", theory.ErrInvalidKey, int(req.Root))
	}

	selectedTimes, err := pattern.SelectTimes(times, c.source.Phase(req.Seed, sampler.PurposeTimeSelect).Next(), req.Times)
	if err != nil {
		return nil, err
	}
	selectedPitches, err := pattern.SelectPitches(pitches, c.source.Phase(req.Seed, sampler.PurposePitchSelect).Next(), req.Pitches)
	if err != nil {
		return nil, err
	}

	active := selectedTimes[0]
	shifts := selectedPitches[0].Shifts

	melody := theory.NewMelody(req.tempo())
	melody.KeySignature = req.Root
	melody.TimeSignature = timeSignatureOf(active)

	current := theory.Note{Octave: req.Octave, Key: req.Root}
	step := 0
	appendNote := func() {
		timing := active.Steps[step]
		current.Beats = timing.Play
		current.AfterWaitBeats = timing.Rest
		melody.Notes = append(melody.Notes, current)
		step = (step + 1) % len(active.Steps)
	}

	appendNote()
	for _, shift := range shifts {
		current = theory.Transpose(current, shift)
		appendNote()
	}

	logger.Debug("Composed pitch melody", "notes", len(melody.Notes), "pattern", selectedPitches[0].Name)

	return &Result{
		Melody:  melody,
		Times:   timeNames(selectedTimes),
		Pitches: pitchNames(selectedPitches),
	}, nil
}

const (
	renderBeats = 0.25
	renderRest  = renderBeats / 2
)

// RenderScale plays the scale once upwards, bumping the octave whenever the
// key ordinal drops
func (c *Composer) RenderScale(req Request) (*Result, error) {
	scale, err := c.scales.Build(req.Scale, req.Root, req.Octave)
	if err != nil {
		return nil, err
	}

	melody := theory.NewMelody(req.tempo())
	melody.KeySignature = req.Root
	melody.TimeSignature = theory.FourFour

	octave := req.Octave
	last := req.Root.Ordinal()
	for _, k := range scale.Keys {
		if k.Ordinal() < last {
			octave++
		}
		melody.Notes = append(melody.Notes, theory.Note{
			Octave:         octave,
			Key:            k,
			Beats:          renderBeats,
			AfterWaitBeats: renderRest,
		})
		last = k.Ordinal()
	}

	return &Result{Melody: melody, ScaleKeys: scale.Keys}, nil
}

func timeSignatureOf(p pattern.TimePattern) theory.TimeSignature {
	if !p.TimeSignature.Valid() {
		return theory.FourFour
	}
	return p.TimeSignature
}

func directionNames(ps []pattern.DirectionPattern) []string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Name
	}
	return names
}

func timeNames(ps []pattern.TimePattern) []string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Name
	}
	return names
}

func pitchNames(ps []pattern.PitchPattern) []string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Name
	}
	return names
}
