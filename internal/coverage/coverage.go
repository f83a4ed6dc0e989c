// Package coverage parses per-position read-depth tables, as produced by
// alignment tooling in the samtools depth style, and summarizes locus
// coverage against a depth threshold.
package coverage

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ParseError represents a malformed row in a depth table.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("depth table line %d: %s", e.Line, e.Message)
}

// Profile holds the per-position depth over one reference sequence.
// Depths[i] is the depth at 1-based position i+1; positions absent from
// the input are zero.
type Profile struct {
	Ref    string
	Depths []int
}

// Summary condenses a profile for reporting. Positions with depth at or
// above the threshold count as covered.
type Summary struct {
	PercentCovered float64 `json:"Percent_covered"`
	MeanDepth      float64 `json:"Mean_depth"`
	MinDepth       int     `json:"Min_depth"`
	BelowMin       int     `json:"Num_below_min_depth"`
}

// Summary computes coverage statistics against minDepth.
func (p *Profile) Summary(minDepth int) Summary {
	var s Summary
	if len(p.Depths) == 0 {
		return s
	}
	total := 0
	min := p.Depths[0]
	covered := 0
	for _, d := range p.Depths {
		total += d
		if d < min {
			min = d
		}
		if d >= minDepth {
			covered++
		} else {
			s.BelowMin++
		}
	}
	s.PercentCovered = 100 * float64(covered) / float64(len(p.Depths))
	s.MeanDepth = float64(total) / float64(len(p.Depths))
	s.MinDepth = min
	return s
}

// Read parses a three-column depth table (reference, 1-based position,
// depth) into per-reference profiles. Rows may arrive in any order; gaps
// are zero-filled. Gzip-compressed input is detected automatically.
func Read(r io.Reader) (map[string]*Profile, error) {
	br := bufio.NewReader(r)

	// Check for gzip magic bytes
	magic, err := br.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("open gzip depth table: %w", err)
		}
		defer gz.Close()
		return read(gz)
	}
	return read(br)
}

// ReadFile opens and parses a depth table from disk.
func ReadFile(path string) (map[string]*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open depth table: %w", err)
	}
	defer f.Close()
	return Read(f)
}

func read(r io.Reader) (map[string]*Profile, error) {
	profiles := make(map[string]*Profile)
	scanner := bufio.NewScanner(r)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.Fields(text)
		if len(fields) < 3 {
			return nil, &ParseError{Line: line, Message: fmt.Sprintf("expected 3 columns, got %d", len(fields))}
		}

		pos, err := strconv.Atoi(fields[1])
		if err != nil || pos < 1 {
			return nil, &ParseError{Line: line, Message: fmt.Sprintf("invalid position %q", fields[1])}
		}
		depth, err := strconv.Atoi(fields[2])
		if err != nil || depth < 0 {
			return nil, &ParseError{Line: line, Message: fmt.Sprintf("invalid depth %q", fields[2])}
		}

		p := profiles[fields[0]]
		if p == nil {
			p = &Profile{Ref: fields[0]}
			profiles[fields[0]] = p
		}
		for len(p.Depths) < pos {
			p.Depths = append(p.Depths, 0)
		}
		p.Depths[pos-1] = depth
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read depth table: %w", err)
	}
	return profiles, nil
}
