package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/seqtyping/sbtyper/internal/sbt"
)

// StoredResult is one sample's persisted typing outcome. Cells holds the
// seven per-locus display values in canonical order.
type StoredResult struct {
	Sample         string
	ST             string
	Classification string
	Mode           string
	Cells          [sbt.NumLoci]string
	CreatedAt      time.Time
	Calls          []StoredCall
}

// StoredCall is one persisted locus call. Candidates joins the display
// values of an ambiguous call with commas.
type StoredCall struct {
	Locus      string
	State      string
	Allele     string
	Candidates string
	Sequence   string
}

// WriteHeader is a no-op; the schema is ensured at Open.
func (s *Store) WriteHeader() error { return nil }

// Write buffers one result for the next Flush.
func (s *Store) Write(r *sbt.SampleResult) error {
	s.pending = append(s.pending, r)
	return nil
}

// Flush batch-writes the buffered results.
func (s *Store) Flush() error {
	results := s.pending
	s.pending = nil
	return s.WriteResults(results)
}

var _ sbt.ResultWriter = (*Store)(nil)

// WriteResults batch-inserts typing results using the Appender API.
// Duplicate sample IDs within the batch keep the last result; samples
// already in the store are replaced.
func (s *Store) WriteResults(results []*sbt.SampleResult) error {
	if len(results) == 0 {
		return nil
	}

	seen := make(map[string]int, len(results))
	deduped := make([]*sbt.SampleResult, 0, len(results))
	for _, r := range results {
		if i, ok := seen[r.ID]; ok {
			deduped[i] = r
			continue
		}
		seen[r.ID] = len(deduped)
		deduped = append(deduped, r)
	}

	for _, r := range deduped {
		if err := s.deleteSample(r.ID); err != nil {
			return err
		}
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	now := time.Now()
	if err := appendRows(conn, "sample_results", func(a *goduckdb.Appender) error {
		for _, r := range deduped {
			if err := a.AppendRow(
				r.ID, r.ST.Display(), string(r.ST.Classification), string(r.Mode),
				r.Calls[0].Symbol(), r.Calls[1].Symbol(), r.Calls[2].Symbol(),
				r.Calls[3].Symbol(), r.Calls[4].Symbol(), r.Calls[5].Symbol(),
				r.Calls[6].Symbol(), now,
			); err != nil {
				return fmt.Errorf("append result for %s: %w", r.ID, err)
			}
		}
		return nil
	}); err != nil {
		return err
	}

	return appendRows(conn, "locus_calls", func(a *goduckdb.Appender) error {
		for _, r := range deduped {
			for _, c := range r.Calls {
				candidates := strings.Join(c.CandidateDisplays(), ",")
				if err := a.AppendRow(
					r.ID, string(c.Locus), string(c.State),
					c.Allele, candidates, c.Sequence,
				); err != nil {
					return fmt.Errorf("append call %s/%s: %w", r.ID, c.Locus, err)
				}
			}
		}
		return nil
	})
}

// appendRows runs fn with an appender on one table, flushing on success.
func appendRows(conn *sql.Conn, table string, fn func(*goduckdb.Appender) error) error {
	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		return fmt.Errorf("create %s appender: %w", table, err)
	}
	defer appender.Close()

	if err := fn(appender); err != nil {
		return err
	}
	return appender.Flush()
}

func (s *Store) deleteSample(id string) error {
	if _, err := s.db.Exec("DELETE FROM sample_results WHERE sample = ?", id); err != nil {
		return fmt.Errorf("replace sample %s: %w", id, err)
	}
	if _, err := s.db.Exec("DELETE FROM locus_calls WHERE sample = ?", id); err != nil {
		return fmt.Errorf("replace calls for %s: %w", id, err)
	}
	return nil
}

// Result returns one sample's stored result, or nil when the sample is
// not in the store.
func (s *Store) Result(sample string) (*StoredResult, error) {
	row := s.db.QueryRow(`SELECT
		sample, st, classification, mode,
		flaa, pile, asd, mip, momps, proa, neua_neuah, created_at
		FROM sample_results WHERE sample = ?`, sample)

	var r StoredResult
	err := row.Scan(
		&r.Sample, &r.ST, &r.Classification, &r.Mode,
		&r.Cells[0], &r.Cells[1], &r.Cells[2], &r.Cells[3],
		&r.Cells[4], &r.Cells[5], &r.Cells[6], &r.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan result: %w", err)
	}

	calls, err := s.sampleCalls(sample)
	if err != nil {
		return nil, err
	}
	r.Calls = calls
	return &r, nil
}

func (s *Store) sampleCalls(sample string) ([]StoredCall, error) {
	rows, err := s.db.Query(`SELECT locus, state, allele, candidates, sequence
		FROM locus_calls WHERE sample = ?`, sample)
	if err != nil {
		return nil, fmt.Errorf("query calls: %w", err)
	}
	defer rows.Close()

	var calls []StoredCall
	for rows.Next() {
		var c StoredCall
		if err := rows.Scan(&c.Locus, &c.State, &c.Allele, &c.Candidates, &c.Sequence); err != nil {
			return nil, fmt.Errorf("scan call: %w", err)
		}
		calls = append(calls, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate calls: %w", err)
	}

	sort.SliceStable(calls, func(i, j int) bool {
		return sbt.LocusIndex(sbt.Locus(calls[i].Locus)) < sbt.LocusIndex(sbt.Locus(calls[j].Locus))
	})
	return calls, nil
}

// Samples lists stored sample IDs in lexical order.
func (s *Store) Samples() ([]string, error) {
	return s.listSamples("SELECT sample FROM sample_results ORDER BY sample")
}

// SearchByST lists samples whose ST column matches, in lexical order.
// The argument may be an ST number or a classification symbol.
func (s *Store) SearchByST(st string) ([]string, error) {
	return s.listSamples("SELECT sample FROM sample_results WHERE st = ? ORDER BY sample", st)
}

func (s *Store) listSamples(query string, args ...any) ([]string, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	var samples []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		samples = append(samples, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate samples: %w", err)
	}
	return samples, nil
}

// Clear removes all stored results.
func (s *Store) Clear() error {
	if _, err := s.db.Exec("DELETE FROM locus_calls"); err != nil {
		return err
	}
	_, err := s.db.Exec("DELETE FROM sample_results")
	return err
}
