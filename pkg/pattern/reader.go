package pattern

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jce77/melodygen/pkg/logger"
	"github.com/jce77/melodygen/pkg/sampler"
	"github.com/jce77/melodygen/pkg/theory"
)

// Kind identifies one asset folder and its file extension
type Kind struct {
	Dir string
	Ext string
}

var (
	DirectionPatterns      = Kind{Dir: "direction_patterns", Ext: ".directionpatterns"}
	TimePatterns           = Kind{Dir: "time_patterns", Ext: ".timepatterns"}
	PitchPatterns          = Kind{Dir: "pitch_patterns", Ext: ".pitchpatterns"}
	DirectionProbabilities = Kind{Dir: "direction_probabilities", Ext: ".directionprobabilities"}
	TimeProbabilities      = Kind{Dir: "time_probabilities", Ext: ".timeprobabilities"}
)

const (
	patternPrefix       = "pattern="
	timeSignaturePrefix = "time_signature="
)

// Loader resolves asset names against an asset root directory
type Loader struct {
	Root string
}

// NewLoader creates a loader rooted at dir
func NewLoader(dir string) *Loader {
	return &Loader{Root: dir}
}

// Path returns the file path for an asset name, appending the extension when missing
func (l *Loader) Path(kind Kind, name string) string {
	name = strings.TrimSpace(name)
	if !strings.HasSuffix(name, kind.Ext) {
		name += kind.Ext
	}
	return filepath.Join(l.Root, kind.Dir, name)
}

// Exists reports whether the named asset file exists
func (l *Loader) Exists(kind Kind, name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	info, err := os.Stat(l.Path(kind, name))
	return err == nil && !info.IsDir()
}

func (l *Loader) open(kind Kind, name string) (*os.File, string, error) {
	path := l.Path(kind, name)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, path, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, path, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, path, nil
}

// LoadDirections reads a direction pattern library
func (l *Loader) LoadDirections(name string) ([]DirectionPattern, error) {
	f, path, err := l.open(DirectionPatterns, name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	logger.Debug("Reading direction patterns", "path", path)
	return ReadDirectionPatterns(f)
}

// LoadTimes reads a time pattern library
func (l *Loader) LoadTimes(name string) ([]TimePattern, error) {
	f, path, err := l.open(TimePatterns, name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	logger.Debug("Reading time patterns", "path", path)
	return ReadTimePatterns(f)
}

// LoadPitches reads a pitch pattern library
func (l *Loader) LoadPitches(name string) ([]PitchPattern, error) {
	f, path, err := l.open(PitchPatterns, name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	logger.Debug("Reading pitch patterns", "path", path)
	return ReadPitchPatterns(f)
}

// LoadDirectionProbabilities reads a direction probability table
func (l *Loader) LoadDirectionProbabilities(name string) ([]sampler.Entry, error) {
	f, path, err := l.open(DirectionProbabilities, name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	logger.Debug("Reading direction probabilities", "path", path)
	return ReadDirectionProbabilities(f)
}

// LoadTimeProbabilities reads beat and rest probability tables
func (l *Loader) LoadTimeProbabilities(name string) (beats, rests []sampler.Entry, err error) {
	f, path, err := l.open(TimeProbabilities, name)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	logger.Debug("Reading time probabilities", "path", path)
	return ReadTimeProbabilities(f)
}

// scanLines calls fn with every trimmed line that is neither blank nor a comment
func scanLines(r io.Reader, fn func(lineNo int, line string)) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fn(lineNo, line)
	}
	return scanner.Err()
}

func parseInts(fields []string) ([]int, error) {
	out := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// ReadDirectionPatterns parses "pattern=<name>" blocks of integer jump lines
func ReadDirectionPatterns(r io.Reader) ([]DirectionPattern, error) {
	var patterns []DirectionPattern
	var current *DirectionPattern

	err := scanLines(r, func(lineNo int, line string) {
		if strings.HasPrefix(line, patternPrefix) {
			if current != nil {
				patterns = append(patterns, *current)
			}
			current = &DirectionPattern{Name: strings.TrimPrefix(line, patternPrefix)}
			return
		}
		if current == nil {
			logger.Warn("Skipping data line outside a pattern", "line", lineNo, "data", line)
			return
		}
		jumps, err := parseInts(strings.Fields(line))
		if err != nil {
			logger.Warn("Skipping malformed direction line", "line", lineNo, "data", line, "error", err)
			return
		}
		current.Jumps = append(current.Jumps, jumps...)
	})
	if err != nil {
		return nil, err
	}
	if current != nil {
		patterns = append(patterns, *current)
	}
	return patterns, nil
}

// ReadTimePatterns parses "pattern=<name>" blocks with an optional
// "time_signature=<Name>" line and play/rest pair lines
func ReadTimePatterns(r io.Reader) ([]TimePattern, error) {
	var patterns []TimePattern
	var current *TimePattern

	err := scanLines(r, func(lineNo int, line string) {
		switch {
		case strings.HasPrefix(line, patternPrefix):
			if current != nil {
				patterns = append(patterns, *current)
			}
			current = &TimePattern{Name: strings.TrimPrefix(line, patternPrefix), TimeSignature: theory.FourFour}
			return
		case current == nil:
			logger.Warn("Skipping data line outside a pattern", "line", lineNo, "data", line)
			return
		case strings.HasPrefix(line, timeSignaturePrefix):
			ts, err := theory.ParseTimeSignature(strings.TrimPrefix(line, timeSignaturePrefix))
			if err != nil {
				logger.Warn("Skipping malformed time signature", "line", lineNo, "error", err)
				return
			}
			current.TimeSignature = ts
			return
		}

		values, err := parseFloats(strings.Fields(line))
		if err != nil || len(values)%2 != 0 {
			logger.Warn("Skipping malformed time line", "line", lineNo, "data", line)
			return
		}
		for i := 0; i < len(values); i += 2 {
			if values[i] < 0 || values[i+1] < 0 {
				logger.Warn("Skipping negative duration", "line", lineNo, "data", line)
				return
			}
		}
		for i := 0; i < len(values); i += 2 {
			current.Steps = append(current.Steps, Step{Play: values[i], Rest: values[i+1]})
		}
	})
	if err != nil {
		return nil, err
	}
	if current != nil {
		patterns = append(patterns, *current)
	}
	return patterns, nil
}

// ReadPitchPatterns parses "pattern=<name>" blocks of semitone shift lines
func ReadPitchPatterns(r io.Reader) ([]PitchPattern, error) {
	var patterns []PitchPattern
	var current *PitchPattern

	err := scanLines(r, func(lineNo int, line string) {
		if strings.HasPrefix(line, patternPrefix) {
			if current != nil {
				patterns = append(patterns, *current)
			}
			current = &PitchPattern{Name: strings.TrimPrefix(line, patternPrefix)}
			return
		}
		if current == nil {
			logger.Warn("Skipping data line outside a pattern", "line", lineNo, "data", line)
			return
		}
		shifts, err := parseInts(strings.Fields(line))
		if err != nil {
			logger.Warn("Skipping malformed pitch line", "line", lineNo, "data", line, "error", err)
			return
		}
		current.Shifts = append(current.Shifts, shifts...)
	})
	if err != nil {
		return nil, err
	}
	if current != nil {
		patterns = append(patterns, *current)
	}
	return patterns, nil
}

// ReadDirectionProbabilities parses "<jump> <weight>" lines
func ReadDirectionProbabilities(r io.Reader) ([]sampler.Entry, error) {
	var entries []sampler.Entry

	err := scanLines(r, func(lineNo int, line string) {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			logger.Warn("Skipping malformed probability line", "line", lineNo, "data", line)
			return
		}
		value, err := strconv.Atoi(fields[0])
		if err != nil {
			logger.Warn("Skipping malformed probability line", "line", lineNo, "data", line)
			return
		}
		weight, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			logger.Warn("Skipping malformed probability line", "line", lineNo, "data", line)
			return
		}
		entries = append(entries, sampler.Entry{Value: float64(value), Weight: weight})
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ReadTimeProbabilities parses "Beat <value> <weight>" and
// "Rest <value> <weight>" lines
func ReadTimeProbabilities(r io.Reader) (beats, rests []sampler.Entry, err error) {
	err = scanLines(r, func(lineNo int, line string) {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			logger.Warn("Skipping malformed probability line", "line", lineNo, "data", line)
			return
		}
		values, perr := parseFloats(fields[1:3])
		if perr != nil {
			logger.Warn("Skipping malformed probability line", "line", lineNo, "data", line)
			return
		}
		entry := sampler.Entry{Value: values[0], Weight: values[1]}
		switch fields[0] {
		case "Beat":
			beats = append(beats, entry)
		case "Rest":
			rests = append(rests, entry)
		default:
			logger.Warn("Skipping unknown probability line", "line", lineNo, "data", line)
		}
	})
	if err != nil {
		return nil, nil, err
	}
	return beats, rests, nil
}
