package report

import (
	"bufio"
	"io"
	"strings"

	"github.com/seqtyping/sbtyper/internal/sbt"
)

// PossibleWriter expands the candidate combinations of samples with
// ambiguous loci into one row per possible profile, each with its own
// database lookup. Samples without ambiguity produce no rows. It
// implements sbt.ResultWriter.
type PossibleWriter struct {
	w  *bufio.Writer
	db sbt.AlleleLookup
}

// NewPossibleWriter creates a possible-profiles writer over the loaded
// reference database.
func NewPossibleWriter(w io.Writer, db sbt.AlleleLookup) *PossibleWriter {
	return &PossibleWriter{w: bufio.NewWriter(w), db: db}
}

// WriteHeader writes the header line.
func (pw *PossibleWriter) WriteHeader() error {
	_, err := pw.w.WriteString(strings.Join(tableColumns(), "\t") + "\n")
	return err
}

// Write expands one sample's ambiguous candidate sets.
func (pw *PossibleWriter) Write(r *sbt.SampleResult) error {
	for _, combo := range sbt.PossibleProfiles(r.Calls, pw.db) {
		values := make([]string, 0, sbt.NumLoci+2)
		values = append(values, r.ID, combo.ST)
		values = append(values, combo.Profile[:]...)
		if _, err := pw.w.WriteString(strings.Join(values, "\t") + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes any buffered data to the underlying writer.
func (pw *PossibleWriter) Flush() error {
	return pw.w.Flush()
}

var _ sbt.ResultWriter = (*PossibleWriter)(nil)
