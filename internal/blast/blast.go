// Package blast parses tabular similarity-search output (BLAST outfmt 6)
// into hit records. The twelve standard columns are required; the qlen,
// slen and qseq extension columns are picked up when present.
package blast

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ParseError represents a malformed row in a hit table.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("hit table line %d: %s", e.Line, e.Message)
}

// Record is one similarity hit. Query is the searched sequence (a contig
// when searching an assembly), Subject the reference allele it matched.
type Record struct {
	Query      string
	Subject    string
	Identity   float64
	Length     int
	Mismatches int
	GapOpens   int
	QStart     int
	QEnd       int
	SStart     int
	SEnd       int
	EValue     float64
	BitScore   float64

	// Extension columns (outfmt "6 std qlen slen qseq"); zero when absent.
	QueryLen   int
	SubjectLen int
	QuerySeq   string
}

// Read parses all hits from tabular output. Comment lines (leading '#')
// are skipped; gzip-compressed input is detected automatically.
func Read(r io.Reader) ([]Record, error) {
	br := bufio.NewReader(r)

	// Check for gzip magic bytes
	magic, err := br.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("open gzip hit table: %w", err)
		}
		defer gz.Close()
		return read(gz)
	}
	return read(br)
}

// ReadFile opens and parses a hit table from disk.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open hit table: %w", err)
	}
	defer f.Close()
	return Read(f)
}

func read(r io.Reader) ([]Record, error) {
	var records []Record
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		rec, err := parseLine(text, line)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read hit table: %w", err)
	}
	return records, nil
}

func parseLine(text string, line int) (Record, error) {
	fields := strings.Fields(text)
	if len(fields) < 12 {
		return Record{}, &ParseError{Line: line, Message: fmt.Sprintf("expected at least 12 columns, got %d", len(fields))}
	}

	var (
		rec  Record
		err  error
		bad  string
		ints = func(s string) int {
			if err != nil {
				return 0
			}
			var n int
			if n, err = strconv.Atoi(s); err != nil {
				bad = s
			}
			return n
		}
		floats = func(s string) float64 {
			if err != nil {
				return 0
			}
			var f float64
			if f, err = strconv.ParseFloat(s, 64); err != nil {
				bad = s
			}
			return f
		}
	)

	rec.Query = fields[0]
	rec.Subject = fields[1]
	rec.Identity = floats(fields[2])
	rec.Length = ints(fields[3])
	rec.Mismatches = ints(fields[4])
	rec.GapOpens = ints(fields[5])
	rec.QStart = ints(fields[6])
	rec.QEnd = ints(fields[7])
	rec.SStart = ints(fields[8])
	rec.SEnd = ints(fields[9])
	rec.EValue = floats(fields[10])
	rec.BitScore = floats(fields[11])
	if len(fields) >= 14 {
		rec.QueryLen = ints(fields[12])
		rec.SubjectLen = ints(fields[13])
	}
	if len(fields) >= 15 {
		rec.QuerySeq = strings.ToUpper(fields[14])
	}
	if err != nil {
		return Record{}, &ParseError{Line: line, Message: fmt.Sprintf("invalid numeric field %q", bad)}
	}
	return rec, nil
}
