package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrStorage wraps every failure to persist a generated file
var ErrStorage = errors.New("storage failure")

// MIDIExtension is appended to output names that lack it
const MIDIExtension = ".mid"

// Result describes where a file was stored
type Result struct {
	Sink     string `json:"sink"`
	Location string `json:"location"`
	Key      string `json:"key,omitempty"`
	URL      string `json:"url,omitempty"`
	Bucket   string `json:"bucket,omitempty"`
	Region   string `json:"region,omitempty"`
	Size     int64  `json:"size"`
}

// Sink persists generated MIDI files
type Sink interface {
	Name() string
	Store(ctx context.Context, name string, data []byte) (*Result, error)
}

// Remover is implemented by sinks that can delete what they stored
type Remover interface {
	Remove(ctx context.Context, stored *Result) error
}

// FileName appends the MIDI extension when missing and strips directories
func FileName(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = "melody"
	}
	if !strings.EqualFold(filepath.Ext(name), MIDIExtension) {
		name += MIDIExtension
	}
	return name
}

// LocalSink writes files into a directory
type LocalSink struct {
	Dir string
}

// NewLocalSink creates a sink writing into dir
func NewLocalSink(dir string) *LocalSink {
	return &LocalSink{Dir: dir}
}

// Name returns "local"
func (s *LocalSink) Name() string {
	return "local"
}

// Store writes data to Dir/name.mid, creating Dir when needed
func (s *LocalSink) Store(ctx context.Context, name string, data []byte) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: failed to create output directory %s: %v", ErrStorage, s.Dir, err)
	}

	path := filepath.Join(s.Dir, FileName(name))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("%w: failed to write %s: %v", ErrStorage, path, err)
	}

	return &Result{
		Sink:     s.Name(),
		Location: path,
		Size:     int64(len(data)),
	}, nil
}

// Remove deletes a file written by Store
func (s *LocalSink) Remove(ctx context.Context, stored *Result) error {
	if err := os.Remove(stored.Location); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: failed to remove %s: %v", ErrStorage, stored.Location, err)
	}
	return nil
}
