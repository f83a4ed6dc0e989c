package sbt

import "github.com/seqtyping/sbtyper/internal/coverage"

// CoverageStats summarizes read-pathway coverage of one locus for
// reporting.
type CoverageStats struct {
	coverage.Summary
	Identity float64 `json:"Percent_identity,omitempty"`
}

// HitLocation records where an assembly hit for a locus landed.
type HitLocation struct {
	Allele string
	Contig string
	Start  int
	End    int
	Length int
}

// SampleResult aggregates one sample's typing outcome together with the
// audit evidence reporting needs. Immutable once returned by the
// engine.
type SampleResult struct {
	ID    string
	Mode  Mode
	Calls [NumLoci]LocusCall
	ST    STResult

	// Coverage holds read-pathway summaries per locus; Hits holds
	// assembly-pathway hit locations per locus. Duplicate is nil when
	// the duplicated locus never had more than one candidate.
	Coverage  map[Locus]CoverageStats
	Hits      map[Locus][]HitLocation
	Duplicate *DuplicateResolution
}

// Call returns the call for one locus of the scheme.
func (r *SampleResult) Call(locus Locus) LocusCall {
	return r.Calls[LocusIndex(locus)]
}

// MissingLoci lists loci called Missing, in canonical order.
func (r *SampleResult) MissingLoci() []Locus {
	return r.lociInState(StateMissing)
}

// AmbiguousLoci lists loci called Ambiguous, in canonical order.
func (r *SampleResult) AmbiguousLoci() []Locus {
	return r.lociInState(StateAmbiguous)
}

// NovelLoci lists loci called Novel, in canonical order.
func (r *SampleResult) NovelLoci() []Locus {
	return r.lociInState(StateNovel)
}

func (r *SampleResult) lociInState(state CallState) []Locus {
	var out []Locus
	for _, c := range r.Calls {
		if c.State == state {
			out = append(out, c.Locus)
		}
	}
	return out
}
