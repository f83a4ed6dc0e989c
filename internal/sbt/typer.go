package sbt

import (
	"errors"
	"fmt"
	"runtime"

	"go.uber.org/zap"
)

// AlleleLookup defines the reference-database surface the engine needs.
// Implementations must be safe for concurrent readers; the engine never
// mutates the database.
type AlleleLookup interface {
	// AlleleNumber resolves an exact sequence match to its allele number.
	AlleleNumber(locus Locus, sequence string) (string, bool)
	// AlleleSequence returns a cataloged allele's sequence.
	AlleleSequence(locus Locus, allele string) (string, bool)
	// AlleleLength returns a cataloged allele's reference length.
	AlleleLength(locus Locus, allele string) (int, bool)
	// ProfileST resolves a complete allele profile to its sequence type.
	ProfileST(p Profile) (string, bool)
}

// SampleSource streams sample evidence sets. Next returns (nil, nil) at
// the end of the stream. A *MalformedEvidenceError from Next fails only
// that sample; any other error ends the run.
type SampleSource interface {
	Next() (*SampleEvidence, error)
}

// ResultWriter defines the interface for consuming finalized results.
type ResultWriter interface {
	WriteHeader() error
	Write(r *SampleResult) error
	Flush() error
}

// Typer turns per-sample evidence into classified typing results.
type Typer struct {
	db     AlleleLookup
	cfg    Config
	logger *zap.Logger
}

// NewTyper creates an engine over a loaded reference database. Zero
// config fields fall back to the scheme defaults.
func NewTyper(db AlleleLookup, cfg Config) *Typer {
	return &Typer{
		db:     db,
		cfg:    cfg.normalized(),
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for warning and debug messages.
func (t *Typer) SetLogger(l *zap.Logger) {
	if l != nil {
		t.logger = l
	}
}

// Config returns the normalized calling policy in effect.
func (t *Typer) Config() Config {
	return t.cfg
}

// Type produces the classified result for one sample. Loci without
// evidence are called Missing; only malformed evidence fails the
// sample.
func (t *Typer) Type(sample *SampleEvidence) (*SampleResult, error) {
	if sample == nil {
		return nil, &MalformedEvidenceError{Reason: "nil sample"}
	}
	if err := sample.Validate(); err != nil {
		return nil, err
	}

	res := &SampleResult{ID: sample.ID, Mode: sample.Mode}
	for i, locus := range Loci() {
		ev := sample.Loci[locus]
		call := t.callLocus(locus, ev)

		if locus == DuplicatedLocus {
			var re *ReadEvidence
			if ev != nil {
				re = ev.Reads
			}
			call, res.Duplicate = resolveDuplicate(call, re, t.cfg)
		}

		res.Calls[i] = call
		t.collectAudit(res, locus, ev)
		t.logger.Debug("locus called",
			zap.String("sample", sample.ID),
			zap.String("locus", string(locus)),
			zap.String("state", string(call.State)),
			zap.String("symbol", call.Symbol()))
	}

	res.ST = ResolveProfile(res.Calls, t.db)
	t.logger.Debug("profile classified",
		zap.String("sample", sample.ID),
		zap.String("st", res.ST.Display()))
	return res, nil
}

// collectAudit retains the evidence summaries reporting needs.
func (t *Typer) collectAudit(res *SampleResult, locus Locus, ev *Evidence) {
	if ev == nil {
		return
	}
	if ev.Reads != nil && ev.Reads.Coverage != nil {
		if res.Coverage == nil {
			res.Coverage = make(map[Locus]CoverageStats)
		}
		res.Coverage[locus] = CoverageStats{
			Summary:  ev.Reads.Coverage.Summary(t.cfg.MinDepth),
			Identity: ev.Reads.Identity,
		}
	}
	if ev.Assembly != nil {
		if res.Hits == nil {
			res.Hits = make(map[Locus][]HitLocation)
		}
		for _, h := range ev.Assembly.Hits {
			allele, ok := SplitSubject(locus, h.Subject)
			if !ok {
				continue
			}
			res.Hits[locus] = append(res.Hits[locus], HitLocation{
				Allele: allele,
				Contig: h.Query,
				Start:  h.QStart,
				End:    h.QEnd,
				Length: h.Length,
			})
		}
	}
}

// TypeAll types every sample from a source and writes results in
// submission order. Samples failing with malformed evidence are logged
// and skipped; source and writer errors end the run.
func (t *Typer) TypeAll(src SampleSource, writer ResultWriter) error {
	items := make(chan WorkItem, 2*runtime.NumCPU())
	var srcErr error
	sampleCount := 0

	go func() {
		defer close(items)
		seq := 0
		for {
			sample, err := src.Next()
			if err != nil {
				var malformed *MalformedEvidenceError
				if errors.As(err, &malformed) {
					t.logger.Warn("skipping sample", zap.Error(err))
					continue
				}
				srcErr = fmt.Errorf("read sample: %w", err)
				return
			}
			if sample == nil {
				return
			}
			sampleCount++
			items <- WorkItem{Seq: seq, Sample: sample}
			seq++
		}
	}()

	results := t.ParallelType(items, t.cfg.Workers)

	if err := OrderedCollect(results, func(r WorkResult) error {
		if r.Err != nil {
			t.logger.Warn("skipping sample",
				zap.String("sample", r.Sample.ID),
				zap.Error(r.Err))
			return nil
		}
		if err := writer.Write(r.Result); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
		return nil
	}); err != nil {
		return err
	}

	if srcErr != nil {
		return srcErr
	}

	if sampleCount == 0 {
		t.logger.Info("0 samples processed")
	}

	return writer.Flush()
}
