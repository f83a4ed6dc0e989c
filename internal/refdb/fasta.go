package refdb

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// Record is one FASTA record: the header's first token, the remainder of
// the header line, and the uppercased sequence.
type Record struct {
	ID          string
	Description string
	Sequence    string
}

// ReadFASTA parses FASTA records. Sequences may span multiple lines and
// are uppercased; gzip-compressed input is detected automatically.
func ReadFASTA(r io.Reader) ([]Record, error) {
	br := bufio.NewReader(r)

	// Check for gzip magic bytes
	magic, err := br.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("open gzip FASTA: %w", err)
		}
		defer gz.Close()
		return readFASTA(gz)
	}
	return readFASTA(br)
}

// ReadFASTAFile opens and parses a FASTA file from disk.
func ReadFASTAFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open FASTA: %w", err)
	}
	defer f.Close()
	return ReadFASTA(f)
}

func readFASTA(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	// Increase buffer size for long sequence lines
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	var records []Record
	var cur *Record
	var seq strings.Builder

	flush := func() error {
		if cur == nil {
			return nil
		}
		if seq.Len() == 0 {
			return fmt.Errorf("record %q has no sequence", cur.ID)
		}
		cur.Sequence = strings.ToUpper(seq.String())
		records = append(records, *cur)
		cur = nil
		seq.Reset()
		return nil
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ">") {
			if err := flush(); err != nil {
				return nil, err
			}
			header := strings.TrimSpace(strings.TrimPrefix(line, ">"))
			if header == "" {
				return nil, fmt.Errorf("record with empty header")
			}
			id, desc, _ := strings.Cut(header, " ")
			cur = &Record{ID: id, Description: strings.TrimSpace(desc)}
			continue
		}
		if cur == nil {
			return nil, fmt.Errorf("sequence data before first header")
		}
		seq.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read FASTA: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return records, nil
}
