package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/rand"
	"time"

	"github.com/jce77/melodygen/pkg/composer"
	"github.com/jce77/melodygen/pkg/history"
	"github.com/jce77/melodygen/pkg/logger"
	"github.com/jce77/melodygen/pkg/pattern"
	"github.com/jce77/melodygen/pkg/sampler"
	"github.com/jce77/melodygen/pkg/sequencer"
	"github.com/jce77/melodygen/pkg/storage"
	"github.com/jce77/melodygen/pkg/theory"
)

// Defaults shared by the generate commands
const (
	DefaultOutputName   = "melody_generated"
	DefaultBeats        = 8
	DefaultPatternFile  = "example"
	DefaultAuthorSize   = 8
	DefaultAuthorCount  = 60
	AutogeneratedName   = "autogenerated"
	minRandomSeed       = 100000000
	randomSeedRangeSize = 900000000
)

// RandomSeed returns a random nine-digit seed
func RandomSeed() int64 {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return int64(minRandomSeed + rng.Intn(randomSeedRangeSize))
}

// LibrarySpec names a pattern library and how many of its patterns to use
type LibrarySpec struct {
	Name  string
	Range pattern.Range
}

// AuthoringSpec names a probability file used to author a library on the fly
type AuthoringSpec struct {
	Name  string
	Size  int
	Count int
}

// GenerateOptions are the inputs of one generation run
type GenerateOptions struct {
	Scale      string
	Key        string
	Octave     int
	Seed       int64 // 0 picks a random seed
	Beats      float64
	Tempo      int
	ScaleUsage float64

	Directions             LibrarySpec
	DirectionProbabilities AuthoringSpec
	Times                  LibrarySpec
	TimeProbabilities      AuthoringSpec
	Pitches                LibrarySpec

	OutputName string
}

// GenerateResult describes a finished run
type GenerateResult struct {
	RunID      string           `json:"run_id,omitempty"`
	Mode       string           `json:"mode"`
	Seed       int64            `json:"seed"`
	Scale      string           `json:"scale"`
	Key        string           `json:"key"`
	Notes      int              `json:"notes"`
	Beats      float64          `json:"beats"`
	Tempo      int              `json:"tempo"`
	Size       int              `json:"size"`
	SHA256     string           `json:"sha256"`
	ScaleKeys  []string         `json:"scale_keys,omitempty"`
	Directions []string         `json:"directions,omitempty"`
	Times      []string         `json:"times,omitempty"`
	Pitches    []string         `json:"pitches,omitempty"`
	Authored   []string         `json:"authored,omitempty"`
	Outputs    []storage.Result `json:"outputs"`
	Data       []byte           `json:"-"`
}

// GenerateService runs generations from pattern assets to stored MIDI files
type GenerateService struct {
	loader   *pattern.Loader
	composer *composer.Composer
	sinks    []storage.Sink
	history  *history.Store
}

// NewGenerateService creates a generate service. history may be nil.
func NewGenerateService(loader *pattern.Loader, scales *theory.Registry, sinks []storage.Sink, store *history.Store) *GenerateService {
	return &GenerateService{
		loader:   loader,
		composer: composer.New(scales),
		sinks:    sinks,
		history:  store,
	}
}

func (opts *GenerateOptions) applyDefaults() {
	if opts.Seed == 0 {
		opts.Seed = RandomSeed()
	}
	if opts.Beats == 0 {
		opts.Beats = DefaultBeats
	}
	if opts.Tempo <= 0 {
		opts.Tempo = composer.DefaultTempo
	}
	if opts.ScaleUsage == 0 {
		opts.ScaleUsage = 1
	}
	if opts.OutputName == "" {
		opts.OutputName = DefaultOutputName
	}
}

func (opts GenerateOptions) request(root theory.Key) composer.Request {
	return composer.Request{
		Root:       root,
		Scale:      opts.Scale,
		Octave:     opts.Octave,
		ScaleUsage: opts.ScaleUsage,
		BeatBudget: opts.Beats,
		Tempo:      opts.Tempo,
		Seed:       opts.Seed,
		Directions: opts.Directions.Range,
		Times:      opts.Times.Range,
		Pitches:    opts.Pitches.Range,
	}
}

// pendingLibrary is an authored library saved only once the run succeeds
type pendingLibrary func() (string, error)

// GenerateMelody composes with direction and time patterns
func (s *GenerateService) GenerateMelody(ctx context.Context, opts GenerateOptions) (*GenerateResult, error) {
	opts.applyDefaults()
	logger.Info("Generating melody", "seed", opts.Seed, "scale", opts.Scale, "key", opts.Key, "octave", opts.Octave)

	root, err := theory.ParseKey(opts.Key)
	if err != nil {
		return nil, err
	}

	var pending []pendingLibrary
	directions, save, err := s.directionLibrary(opts)
	if err != nil {
		return nil, err
	}
	if save != nil {
		pending = append(pending, save)
	}
	times, save, err := s.timeLibrary(opts)
	if err != nil {
		return nil, err
	}
	if save != nil {
		pending = append(pending, save)
	}

	composed, err := s.composer.Compose(opts.request(root), directions, times)
	if err != nil {
		return nil, err
	}

	result, err := s.finish(ctx, history.ModeMelody, opts, composed)
	if err != nil {
		return nil, err
	}
	for _, save := range pending {
		path, err := save()
		if err != nil {
			logger.Warn("Failed to save authored library", "error", err)
			continue
		}
		result.Authored = append(result.Authored, path)
	}
	return result, nil
}

// GeneratePitch composes with time and pitch patterns
func (s *GenerateService) GeneratePitch(ctx context.Context, opts GenerateOptions) (*GenerateResult, error) {
	opts.applyDefaults()
	logger.Info("Generating pitch melody", "seed", opts.Seed, "key", opts.Key, "octave", opts.Octave)

	root, err := theory.ParseKey(opts.Key)
	if err != nil {
		return nil, err
	}

	times, save, err := s.timeLibrary(opts)
	if err != nil {
		return nil, err
	}
	pitches, err := s.loader.LoadPitches(opts.Pitches.Name)
	if err != nil {
		return nil, err
	}

	composed, err := s.composer.ComposePitch(opts.request(root), times, pitches)
	if err != nil {
		return nil, err
	}

	result, err := s.finish(ctx, history.ModePitch, opts, composed)
	if err != nil {
		return nil, err
	}
	if save != nil {
		if path, err := save(); err != nil {
			logger.Warn("Failed to save authored library", "error", err)
		} else {
			result.Authored = append(result.Authored, path)
		}
	}
	return result, nil
}

// RenderScale writes the scale itself as a melody
func (s *GenerateService) RenderScale(ctx context.Context, opts GenerateOptions) (*GenerateResult, error) {
	opts.applyDefaults()

	root, err := theory.ParseKey(opts.Key)
	if err != nil {
		return nil, err
	}

	composed, err := s.composer.RenderScale(opts.request(root))
	if err != nil {
		return nil, err
	}
	return s.finish(ctx, history.ModeScale, opts, composed)
}

// directionLibrary authors a library from the probability file when one is
// configured and present, and otherwise reads the named library
func (s *GenerateService) directionLibrary(opts GenerateOptions) ([]pattern.DirectionPattern, pendingLibrary, error) {
	spec := opts.DirectionProbabilities
	if spec.Name == "" || !s.loader.Exists(pattern.DirectionProbabilities, spec.Name) {
		if spec.Name != "" {
			logger.Warn("Direction probability file not found, using pattern library", "file", spec.Name)
		}
		library, err := s.loader.LoadDirections(opts.Directions.Name)
		return library, nil, err
	}

	library, err := AuthorDirectionLibrary(s.loader, spec, opts.Seed)
	if err != nil {
		return nil, nil, err
	}
	save := func() (string, error) {
		return s.loader.SaveDirections(AutogeneratedName, &pattern.Header{Seed: opts.Seed, Source: spec.Name}, library)
	}
	return library, save, nil
}

func (s *GenerateService) timeLibrary(opts GenerateOptions) ([]pattern.TimePattern, pendingLibrary, error) {
	spec := opts.TimeProbabilities
	if spec.Name == "" || !s.loader.Exists(pattern.TimeProbabilities, spec.Name) {
		if spec.Name != "" {
			logger.Warn("Time probability file not found, using pattern library", "file", spec.Name)
		}
		library, err := s.loader.LoadTimes(opts.Times.Name)
		return library, nil, err
	}

	library, err := AuthorTimeLibrary(s.loader, spec, opts.Seed)
	if err != nil {
		return nil, nil, err
	}
	save := func() (string, error) {
		return s.loader.SaveTimes(AutogeneratedName, &pattern.Header{Seed: opts.Seed, Source: spec.Name}, library)
	}
	return library, save, nil
}

// finish emits the melody, stores it in every sink and records the run
func (s *GenerateService) finish(ctx context.Context, mode string, opts GenerateOptions, composed *composer.Result) (*GenerateResult, error) {
	data, err := sequencer.EmitNamed(composed.Melody, opts.Beats, opts.OutputName)
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256(data)
	result := &GenerateResult{
		Mode:       mode,
		Seed:       opts.Seed,
		Scale:      opts.Scale,
		Key:        composed.Melody.KeySignature.String(),
		Notes:      len(composed.Melody.Notes),
		Beats:      opts.Beats,
		Tempo:      composed.Melody.Tempo,
		Size:       len(data),
		SHA256:     hex.EncodeToString(sum[:]),
		ScaleKeys:  keyNames(composed.ScaleKeys),
		Directions: composed.Directions,
		Times:      composed.Times,
		Pitches:    composed.Pitches,
		Outputs:    []storage.Result{},
		Data:       data,
	}

	stored := make([]storedOutput, 0, len(s.sinks))
	for _, sink := range s.sinks {
		out, err := sink.Store(ctx, opts.OutputName, data)
		if err != nil {
			s.rollback(ctx, stored)
			return nil, err
		}
		logger.Info("Stored melody", "sink", sink.Name(), "location", out.Location)
		stored = append(stored, storedOutput{sink: sink, result: out})
		result.Outputs = append(result.Outputs, *out)
	}

	if s.history != nil {
		run := &history.Run{
			Mode:       mode,
			Seed:       opts.Seed,
			Scale:      opts.Scale,
			Key:        result.Key,
			Octave:     opts.Octave,
			ScaleUsage: opts.ScaleUsage,
			BeatBudget: opts.Beats,
			Tempo:      result.Tempo,
			Directions: result.Directions,
			Times:      result.Times,
			Pitches:    result.Pitches,
			NoteCount:  result.Notes,
			Size:       int64(result.Size),
			SHA256:     result.SHA256,
			Locations:  locations(result.Outputs),
		}
		if err := s.history.Record(ctx, run); err != nil {
			logger.Warn("Failed to record run", "error", err)
		} else {
			result.RunID = run.ID
		}
	}

	return result, nil
}

type storedOutput struct {
	sink   storage.Sink
	result *storage.Result
}

// rollback removes outputs already stored by a run that failed in a later sink
func (s *GenerateService) rollback(ctx context.Context, stored []storedOutput) {
	for _, out := range stored {
		remover, ok := out.sink.(storage.Remover)
		if !ok {
			logger.Warn("Sink cannot remove stored output", "sink", out.sink.Name(), "location", out.result.Location)
			continue
		}
		if err := remover.Remove(ctx, out.result); err != nil {
			logger.Warn("Failed to remove stored output", "sink", out.sink.Name(), "location", out.result.Location, "error", err)
			continue
		}
		logger.Info("Removed stored output", "sink", out.sink.Name(), "location", out.result.Location)
	}
}

func keyNames(keys []theory.Key) []string {
	if len(keys) == 0 {
		return nil
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	return names
}

func locations(results []storage.Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Location
	}
	return out
}

// AuthorDirectionLibrary reads a direction probability file and draws a library from it
func AuthorDirectionLibrary(loader *pattern.Loader, spec AuthoringSpec, seed int64) ([]pattern.DirectionPattern, error) {
	entries, err := loader.LoadDirectionProbabilities(spec.Name)
	if err != nil {
		return nil, err
	}
	table, err := sampler.NewTable(entries)
	if err != nil {
		return nil, fmt.Errorf("direction probabilities %s: %w", spec.Name, err)
	}
	size, count := authoringSize(spec)
	logger.Debug("Authoring direction patterns", "file", spec.Name, "size", size, "count", count)
	return pattern.AuthorDirections(table, size, count, sampler.NewSource().Phase(seed, sampler.PurposeDirectionAuthoring))
}

// AuthorTimeLibrary reads a time probability file and draws a library from it
func AuthorTimeLibrary(loader *pattern.Loader, spec AuthoringSpec, seed int64) ([]pattern.TimePattern, error) {
	beatEntries, restEntries, err := loader.LoadTimeProbabilities(spec.Name)
	if err != nil {
		return nil, err
	}
	beats, err := sampler.NewTable(beatEntries)
	if err != nil {
		return nil, fmt.Errorf("beat probabilities %s: %w", spec.Name, err)
	}
	rests, err := sampler.NewTable(restEntries)
	if err != nil {
		return nil, fmt.Errorf("rest probabilities %s: %w", spec.Name, err)
	}
	size, count := authoringSize(spec)
	logger.Debug("Authoring time patterns", "file", spec.Name, "size", size, "count", count)
	return pattern.AuthorTimes(beats, rests, size, count, sampler.NewSource().Phase(seed, sampler.PurposeTimeAuthoring))
}

func authoringSize(spec AuthoringSpec) (size, count int) {
	size, count = spec.Size, spec.Count
	if size <= 0 {
		size = DefaultAuthorSize
	}
	if count <= 0 {
		count = DefaultAuthorCount
	}
	return size, count
}
