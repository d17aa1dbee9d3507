package service

import (
	"bytes"

	"github.com/jce77/melodygen/pkg/logger"
	"github.com/jce77/melodygen/pkg/pattern"
)

// AuthorOptions are the inputs of a pattern authoring run
type AuthorOptions struct {
	Probabilities string
	Size          int
	Count         int
	Output        string // empty returns the library text instead of saving it
	Seed          int64  // 0 picks a random seed
}

// AuthorResult describes an authored library
type AuthorResult struct {
	Seed     int64  `json:"seed"`
	Source   string `json:"source"`
	Patterns int    `json:"patterns"`
	Size     int    `json:"size"`
	Path     string `json:"path,omitempty"`
	Text     string `json:"text,omitempty"`
}

// AuthorService writes pattern libraries drawn from probability files
type AuthorService struct {
	loader *pattern.Loader
}

// NewAuthorService creates an author service
func NewAuthorService(loader *pattern.Loader) *AuthorService {
	return &AuthorService{loader: loader}
}

func (opts *AuthorOptions) applyDefaults() {
	if opts.Seed == 0 {
		opts.Seed = RandomSeed()
	}
	if opts.Probabilities == "" {
		opts.Probabilities = DefaultPatternFile
	}
	opts.Size, opts.Count = authoringSize(AuthoringSpec{Size: opts.Size, Count: opts.Count})
}

func (opts AuthorOptions) spec() AuthoringSpec {
	return AuthoringSpec{Name: opts.Probabilities, Size: opts.Size, Count: opts.Count}
}

// AuthorDirections draws a direction library and saves or renders it
func (s *AuthorService) AuthorDirections(opts AuthorOptions) (*AuthorResult, error) {
	opts.applyDefaults()
	logger.Info("Authoring direction patterns", "seed", opts.Seed, "probabilities", opts.Probabilities)

	library, err := AuthorDirectionLibrary(s.loader, opts.spec(), opts.Seed)
	if err != nil {
		return nil, err
	}

	result := &AuthorResult{Seed: opts.Seed, Source: opts.Probabilities, Patterns: len(library), Size: opts.Size}
	header := &pattern.Header{Seed: opts.Seed, Source: opts.Probabilities}
	if opts.Output == "" {
		var buf bytes.Buffer
		if err := pattern.WriteDirectionLibrary(&buf, header, library); err != nil {
			return nil, err
		}
		result.Text = buf.String()
		return result, nil
	}

	result.Path, err = s.loader.SaveDirections(opts.Output, header, library)
	if err != nil {
		return nil, err
	}
	logger.Info("Wrote direction patterns", "path", result.Path)
	return result, nil
}

// AuthorTimes draws a time library and saves or renders it
func (s *AuthorService) AuthorTimes(opts AuthorOptions) (*AuthorResult, error) {
	opts.applyDefaults()
	logger.Info("Authoring time patterns", "seed", opts.Seed, "probabilities", opts.Probabilities)

	library, err := AuthorTimeLibrary(s.loader, opts.spec(), opts.Seed)
	if err != nil {
		return nil, err
	}

	result := &AuthorResult{Seed: opts.Seed, Source: opts.Probabilities, Patterns: len(library), Size: opts.Size}
	header := &pattern.Header{Seed: opts.Seed, Source: opts.Probabilities}
	if opts.Output == "" {
		var buf bytes.Buffer
		if err := pattern.WriteTimeLibrary(&buf, header, library); err != nil {
			return nil, err
		}
		result.Text = buf.String()
		return result, nil
	}

	result.Path, err = s.loader.SaveTimes(opts.Output, header, library)
	if err != nil {
		return nil, err
	}
	logger.Info("Wrote time patterns", "path", result.Path)
	return result, nil
}
