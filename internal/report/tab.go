// Package report renders typing results: the combined MLST table, the
// per-sample JSON report, and the possible-profiles expansion for
// samples with ambiguous loci.
package report

import (
	"bufio"
	"io"
	"strings"

	"github.com/seqtyping/sbtyper/internal/sbt"
)

// tableColumns returns the MLST table header: sample, ST, then the
// seven loci in canonical order.
func tableColumns() []string {
	cols := make([]string, 0, sbt.NumLoci+2)
	cols = append(cols, "Sample", "ST")
	for _, locus := range sbt.Loci() {
		cols = append(cols, string(locus))
	}
	return cols
}

// TabWriter writes the combined MLST table in tab-delimited format,
// one row per sample. It implements sbt.ResultWriter.
type TabWriter struct {
	w *bufio.Writer
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{w: bufio.NewWriter(w)}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tableColumns(), "\t") + "\n")
	return err
}

// Write writes a single sample row: the profile symbol or ST number in
// the ST column, per-locus symbols in the locus cells.
func (tw *TabWriter) Write(r *sbt.SampleResult) error {
	values := make([]string, 0, sbt.NumLoci+2)
	values = append(values, r.ID, r.ST.Display())
	for _, c := range r.Calls {
		values = append(values, c.Symbol())
	}
	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

var _ sbt.ResultWriter = (*TabWriter)(nil)
