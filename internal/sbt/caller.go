package sbt

import (
	"strings"

	"github.com/seqtyping/sbtyper/internal/blast"
	"github.com/seqtyping/sbtyper/internal/coverage"
)

// callLocus turns one locus's evidence into a call. Absent evidence is a
// Missing call, never an error.
func (t *Typer) callLocus(locus Locus, ev *Evidence) LocusCall {
	switch {
	case ev == nil:
		return MissingCall(locus)
	case ev.Reads != nil:
		return t.callReads(locus, ev.Reads)
	default:
		return t.callAssembly(locus, ev.Assembly)
	}
}

// callReads derives a call from mapped-read evidence. The locus counts
// as covered only when every position of its span meets the depth
// threshold; a single low position yields Missing regardless of what was
// recovered elsewhere.
func (t *Typer) callReads(locus Locus, re *ReadEvidence) LocusCall {
	if !covered(re.Coverage, t.cfg.MinDepth) {
		return MissingCall(locus)
	}

	cands := dedupeCandidates(re.Candidates)
	if len(cands) == 0 {
		return MissingCall(locus)
	}

	resolved := make([]AlleleCandidate, 0, len(cands))
	for _, c := range cands {
		allele, _ := t.db.AlleleNumber(locus, c.Sequence)
		resolved = append(resolved, AlleleCandidate{Allele: allele, Sequence: c.Sequence})
	}
	if len(resolved) == 1 {
		if resolved[0].Allele != "" {
			return ResolvedCall(locus, resolved[0].Allele)
		}
		return NovelCall(locus, resolved[0].Sequence)
	}
	return AmbiguousCall(locus, resolved)
}

// callAssembly derives a call from similarity-search hits. A hit
// establishes presence when it covers enough of the reference allele at
// sufficient identity; only a full-length, 100%-identity hit resolves an
// allele. Present-but-inexact evidence is a novel sequence, not a
// missing locus.
func (t *Typer) callAssembly(locus Locus, ae *AssemblyEvidence) LocusCall {
	var present []blast.Record
	exact := make(map[string]bool)

	for _, h := range ae.Hits {
		allele, ok := SplitSubject(locus, h.Subject)
		if !ok {
			continue
		}
		refLen := h.SubjectLen
		if refLen == 0 {
			refLen, _ = t.db.AlleleLength(locus, allele)
		}
		if refLen == 0 {
			continue
		}
		if float64(h.Length) < t.cfg.MinLengthFrac*float64(refLen) || h.Identity < t.cfg.MinIdentity {
			continue
		}
		present = append(present, h)
		if h.Identity == 100 && h.Length == refLen {
			exact[allele] = true
		}
	}

	if len(present) == 0 {
		return MissingCall(locus)
	}
	switch len(exact) {
	case 0:
		return NovelCall(locus, bestHit(present).QuerySeq)
	case 1:
		for allele := range exact {
			return ResolvedCall(locus, allele)
		}
	}

	cands := make([]AlleleCandidate, 0, len(exact))
	for allele := range exact {
		seq, _ := t.db.AlleleSequence(locus, allele)
		cands = append(cands, AlleleCandidate{Allele: allele, Sequence: seq})
	}
	return AmbiguousCall(locus, cands)
}

// covered reports whether every position of the span meets minDepth.
func covered(p *coverage.Profile, minDepth int) bool {
	if p == nil || len(p.Depths) == 0 {
		return false
	}
	for _, d := range p.Depths {
		if d < minDepth {
			return false
		}
	}
	return true
}

// dedupeCandidates collapses candidates with identical sequences,
// keeping the first ID for each.
func dedupeCandidates(cands []SeqCandidate) []SeqCandidate {
	seen := make(map[string]bool, len(cands))
	out := make([]SeqCandidate, 0, len(cands))
	for _, c := range cands {
		key := normalizeSeq(c.Sequence)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, SeqCandidate{ID: c.ID, Sequence: key})
	}
	return out
}

// bestHit picks the strongest present hit: highest bit score, then
// identity, then alignment length.
func bestHit(hits []blast.Record) blast.Record {
	best := hits[0]
	for _, h := range hits[1:] {
		switch {
		case h.BitScore > best.BitScore:
			best = h
		case h.BitScore == best.BitScore && h.Identity > best.Identity:
			best = h
		case h.BitScore == best.BitScore && h.Identity == best.Identity && h.Length > best.Length:
			best = h
		}
	}
	return best
}

// SplitSubject extracts the allele number from a reference subject ID of
// the form <locus>_<allele>; bare allele numbers are accepted too. The
// neuA_neuAH locus also appears under its short names in older allele
// sets.
func SplitSubject(locus Locus, subject string) (string, bool) {
	prefixes := []string{string(locus)}
	if locus == NeuA {
		prefixes = append(prefixes, "neuA", "neuAH")
	}
	for _, p := range prefixes {
		if rest, ok := strings.CutPrefix(subject, p+"_"); ok {
			return rest, true
		}
	}
	if !strings.Contains(subject, "_") {
		return subject, true
	}
	return "", false
}

// normalizeSeq canonicalizes a nucleotide sequence for exact-match
// comparison.
func normalizeSeq(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
