package pattern

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jce77/melodygen/pkg/theory"
)

// Header is written as a comment line on top of authored libraries
type Header struct {
	Seed   int64
	Source string
}

func (h *Header) write(w *bufio.Writer) {
	if h == nil {
		return
	}
	fmt.Fprintf(w, "# SEED=%d, FILE=%s\n", h.Seed, h.Source)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func timeSignatureName(ts theory.TimeSignature) string {
	switch ts {
	case theory.FourFour:
		return "FourFour"
	case theory.ThreeFour:
		return "ThreeFour"
	case theory.SixEight:
		return "SixEight"
	}
	return ts.String()
}

// WriteDirectionLibrary writes patterns in the format ReadDirectionPatterns reads
func WriteDirectionLibrary(w io.Writer, header *Header, patterns []DirectionPattern) error {
	bw := bufio.NewWriter(w)
	header.write(bw)
	for _, p := range patterns {
		fmt.Fprintf(bw, "%s%s\n", patternPrefix, p.Name)
		parts := make([]string, len(p.Jumps))
		for i, j := range p.Jumps {
			parts[i] = strconv.Itoa(j)
		}
		fmt.Fprintln(bw, strings.Join(parts, " "))
	}
	return bw.Flush()
}

// WriteTimeLibrary writes patterns in the format ReadTimePatterns reads, one
// play/rest pair per line
func WriteTimeLibrary(w io.Writer, header *Header, patterns []TimePattern) error {
	bw := bufio.NewWriter(w)
	header.write(bw)
	for _, p := range patterns {
		fmt.Fprintf(bw, "%s%s\n", patternPrefix, p.Name)
		fmt.Fprintf(bw, "%s%s\n", timeSignaturePrefix, timeSignatureName(p.TimeSignature))
		for _, s := range p.Steps {
			fmt.Fprintf(bw, "%s %s\n", formatFloat(s.Play), formatFloat(s.Rest))
		}
	}
	return bw.Flush()
}

// SaveDirections writes a direction library under the loader root and
// returns its path
func (l *Loader) SaveDirections(name string, header *Header, patterns []DirectionPattern) (string, error) {
	path := l.Path(DirectionPatterns, name)
	return path, writeFile(path, func(w io.Writer) error {
		return WriteDirectionLibrary(w, header, patterns)
	})
}

// SaveTimes writes a time library under the loader root and returns its path
func (l *Loader) SaveTimes(name string, header *Header, patterns []TimePattern) (string, error) {
	path := l.Path(TimePatterns, name)
	return path, writeFile(path, func(w io.Writer) error {
		return WriteTimeLibrary(w, header, patterns)
	})
}

func writeFile(path string, fn func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
