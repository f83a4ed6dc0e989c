package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/seqtyping/sbtyper/internal/sbt"
)

// Report is the JSON document for one sample.
type Report struct {
	ID            string        `json:"id"`
	MLST          MLST          `json:"mlst"`
	OperationMode string        `json:"operation_mode"`
	ModeSpecific  *ModeSpecific `json:"mode_specific,omitempty"`
	Version       string        `json:"version,omitempty"`
}

// MLST is the profile section: the ST column value and the seven
// per-locus cell values.
type MLST struct {
	ST    string `json:"st"`
	FlaA  string `json:"flaA"`
	PilE  string `json:"pilE"`
	Asd   string `json:"asd"`
	Mip   string `json:"mip"`
	MompS string `json:"mompS"`
	ProA  string `json:"proA"`
	NeuA  string `json:"neuA_neuAH"`
}

// ModeSpecific carries the pathway audit evidence: coverage summaries
// for read-pathway loci, the duplicated-locus primer tallies, and hit
// locations for assembly-pathway loci.
type ModeSpecific struct {
	LocusCoverage map[string]sbt.CoverageStats `json:"locus_coverage,omitempty"`
	MompSPrimers  []PrimerRow                  `json:"mompS_primers,omitempty"`
	HitLocations  []HitRow                     `json:"BLAST_hit_locations,omitempty"`
}

// PrimerRow is one duplicated-locus candidate with its orientation
// tallies.
type PrimerRow struct {
	Allele  string `json:"allele"`
	Support int    `json:"reads_supporting_primary"`
	Oppose  int    `json:"reads_opposing_primary"`
}

// HitRow is one assembly hit location.
type HitRow struct {
	Locus  string `json:"locus"`
	Allele string `json:"allele"`
	Contig string `json:"contig"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Length int    `json:"length"`
}

// BuildReport assembles the JSON document for one result.
func BuildReport(r *sbt.SampleResult, version string) *Report {
	rep := &Report{
		ID: r.ID,
		MLST: MLST{
			ST:    r.ST.Display(),
			FlaA:  r.Calls[0].Symbol(),
			PilE:  r.Calls[1].Symbol(),
			Asd:   r.Calls[2].Symbol(),
			Mip:   r.Calls[3].Symbol(),
			MompS: r.Calls[4].Symbol(),
			ProA:  r.Calls[5].Symbol(),
			NeuA:  r.Calls[6].Symbol(),
		},
		OperationMode: string(r.Mode),
		Version:       version,
	}

	ms := &ModeSpecific{}
	if len(r.Coverage) > 0 {
		ms.LocusCoverage = make(map[string]sbt.CoverageStats, len(r.Coverage))
		for locus, stats := range r.Coverage {
			ms.LocusCoverage[string(locus)] = stats
		}
	}
	if r.Duplicate != nil {
		for _, c := range r.Duplicate.Candidates {
			ms.MompSPrimers = append(ms.MompSPrimers, PrimerRow{
				Allele:  c.Display(),
				Support: c.Tally.Support,
				Oppose:  c.Tally.Oppose,
			})
		}
	}
	for _, locus := range sbt.Loci() {
		for _, h := range r.Hits[locus] {
			ms.HitLocations = append(ms.HitLocations, HitRow{
				Locus:  string(locus),
				Allele: h.Allele,
				Contig: h.Contig,
				Start:  h.Start,
				End:    h.End,
				Length: h.Length,
			})
		}
	}
	if ms.LocusCoverage != nil || ms.MompSPrimers != nil || ms.HitLocations != nil {
		rep.ModeSpecific = ms
	}
	return rep
}

// JSONWriter writes all results as one indented JSON array. It
// implements sbt.ResultWriter.
type JSONWriter struct {
	w       *bufio.Writer
	version string
	reports []*Report
}

// NewJSONWriter creates a new JSON array writer.
func NewJSONWriter(w io.Writer, version string) *JSONWriter {
	return &JSONWriter{w: bufio.NewWriter(w), version: version}
}

// WriteHeader is a no-op; the array is rendered on Flush.
func (jw *JSONWriter) WriteHeader() error { return nil }

// Write buffers one sample's report.
func (jw *JSONWriter) Write(r *sbt.SampleResult) error {
	jw.reports = append(jw.reports, BuildReport(r, jw.version))
	return nil
}

// Flush renders the buffered reports and flushes the writer. An empty
// run renders as an empty array.
func (jw *JSONWriter) Flush() error {
	reports := jw.reports
	if reports == nil {
		reports = []*Report{}
	}
	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal reports: %w", err)
	}
	if _, err := jw.w.Write(append(data, '\n')); err != nil {
		return err
	}
	return jw.w.Flush()
}

var _ sbt.ResultWriter = (*JSONWriter)(nil)

// JSONDirWriter writes one <sample>.json document per sample into a
// directory. It implements sbt.ResultWriter.
type JSONDirWriter struct {
	dir     string
	version string
}

// NewJSONDirWriter creates a per-sample JSON writer rooted at dir.
func NewJSONDirWriter(dir, version string) *JSONDirWriter {
	return &JSONDirWriter{dir: dir, version: version}
}

// WriteHeader creates the output directory.
func (jw *JSONDirWriter) WriteHeader() error {
	if err := os.MkdirAll(jw.dir, 0755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	return nil
}

// Write renders one sample's report to <dir>/<sample>.json.
func (jw *JSONDirWriter) Write(r *sbt.SampleResult) error {
	data, err := json.MarshalIndent(BuildReport(r, jw.version), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report for %s: %w", r.ID, err)
	}
	path := filepath.Join(jw.dir, r.ID+".json")
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Flush is a no-op; documents are written as they arrive.
func (jw *JSONDirWriter) Flush() error { return nil }

var _ sbt.ResultWriter = (*JSONDirWriter)(nil)

// MultiWriter fans every result out to several writers in order.
type MultiWriter struct {
	writers []sbt.ResultWriter
}

// NewMultiWriter combines writers into one.
func NewMultiWriter(writers ...sbt.ResultWriter) *MultiWriter {
	return &MultiWriter{writers: writers}
}

func (mw *MultiWriter) WriteHeader() error {
	for _, w := range mw.writers {
		if err := w.WriteHeader(); err != nil {
			return err
		}
	}
	return nil
}

func (mw *MultiWriter) Write(r *sbt.SampleResult) error {
	for _, w := range mw.writers {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}

func (mw *MultiWriter) Flush() error {
	for _, w := range mw.writers {
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}

var _ sbt.ResultWriter = (*MultiWriter)(nil)
