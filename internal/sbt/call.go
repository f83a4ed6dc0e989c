package sbt

import (
	"sort"
	"strconv"
)

// CallState is the closed set of per-locus outcomes.
type CallState string

const (
	StateResolved  CallState = "resolved"
	StateAmbiguous CallState = "ambiguous"
	StateMissing   CallState = "missing"
	StateNovel     CallState = "novel"
)

// Per-locus display symbols for the non-numeric outcomes.
const (
	SymbolMissing   = "-"
	SymbolAmbiguous = "?"
	SymbolNovel     = "NAT" // novel allele type: sequence recovered, no database match
)

// PrimerTally counts fragments whose primer orientation marks a
// candidate as the primary or the secondary copy of the duplicated
// locus.
type PrimerTally struct {
	Support int
	Oppose  int
}

// AlleleCandidate is one candidate call for a locus. Allele is empty when
// the candidate sequence has no database match. Tally is filled in by the
// duplicate-locus resolver.
type AlleleCandidate struct {
	Allele   string
	Sequence string
	Tally    PrimerTally
}

// Display returns the candidate's allele number, or the novel symbol when
// it has none.
func (c AlleleCandidate) Display() string {
	if c.Allele == "" {
		return SymbolNovel
	}
	return c.Allele
}

// LocusCall is the final per-locus result. Exactly one state holds;
// construct through ResolvedCall, AmbiguousCall, MissingCall or
// NovelCall.
type LocusCall struct {
	Locus      Locus
	State      CallState
	Allele     string            // StateResolved
	Candidates []AlleleCandidate // StateAmbiguous; at least two, in display order
	Sequence   string            // StateNovel
}

// ResolvedCall builds the call for an exact database match.
func ResolvedCall(locus Locus, allele string) LocusCall {
	return LocusCall{Locus: locus, State: StateResolved, Allele: allele}
}

// AmbiguousCall builds the call carrying all equally supported
// candidates, sorted by display value.
func AmbiguousCall(locus Locus, candidates []AlleleCandidate) LocusCall {
	sorted := make([]AlleleCandidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return displayLess(sorted[i].Display(), sorted[j].Display())
	})
	return LocusCall{Locus: locus, State: StateAmbiguous, Candidates: sorted}
}

// MissingCall builds the call for a locus with no usable evidence.
func MissingCall(locus Locus) LocusCall {
	return LocusCall{Locus: locus, State: StateMissing}
}

// NovelCall builds the call for a recovered sequence with no database
// match.
func NovelCall(locus Locus, sequence string) LocusCall {
	return LocusCall{Locus: locus, State: StateNovel, Sequence: sequence}
}

// Symbol returns the per-locus display cell: the allele number when
// resolved, otherwise "-", "?" or "NAT".
func (c LocusCall) Symbol() string {
	switch c.State {
	case StateResolved:
		return c.Allele
	case StateAmbiguous:
		return SymbolAmbiguous
	case StateNovel:
		return SymbolNovel
	default:
		return SymbolMissing
	}
}

// CandidateDisplays returns the display form of each candidate, in
// order.
func (c LocusCall) CandidateDisplays() []string {
	out := make([]string, len(c.Candidates))
	for i, cand := range c.Candidates {
		out[i] = cand.Display()
	}
	return out
}

// displayLess orders allele displays numerically where possible, with
// non-numeric displays (the novel symbol) after all numbers.
func displayLess(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	switch {
	case aerr == nil && berr == nil:
		return ai < bi
	case aerr == nil:
		return true
	case berr == nil:
		return false
	default:
		return a < b
	}
}
