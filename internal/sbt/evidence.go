package sbt

import (
	"fmt"

	"github.com/seqtyping/sbtyper/internal/blast"
	"github.com/seqtyping/sbtyper/internal/coverage"
)

// Mode records which evidence pathway produced a sample's calls.
type Mode string

const (
	ModeReads    Mode = "Reads"
	ModeAssembly Mode = "Assembly"
	ModeCombined Mode = "Combined"
)

// Orientation is the direction the reverse sequencing primer was observed
// in on a fragment, relative to the reference.
type Orientation string

const (
	OrientForward Orientation = "F"
	OrientReverse Orientation = "R"
)

// SeqCandidate is one candidate sequence recovered for a locus from
// mapped reads.
type SeqCandidate struct {
	ID       string
	Sequence string
}

// Fragment is one sequencing fragment that reaches the duplicated
// locus's variable site, annotated with the candidate it matches there
// and the orientation its reverse primer was found in. Fragments too
// short to reach the primer position are simply never observed, which is
// why a true duplication can legitimately produce no fragments at all.
type Fragment struct {
	Candidate   string // SeqCandidate.ID
	Orientation Orientation
}

// ReadEvidence carries the read-pathway evidence for one locus: mapped
// coverage over the locus span, percent identity of the mapped bases,
// the candidate sequences recovered from the mapping, and (duplicated
// locus only) primer-orientation fragment observations.
type ReadEvidence struct {
	Coverage   *coverage.Profile
	Identity   float64
	Candidates []SeqCandidate
	Fragments  []Fragment
}

// AssemblyEvidence carries the assembly-pathway evidence for one locus:
// similarity-search hits against the reference allele set.
type AssemblyEvidence struct {
	Hits []blast.Record
}

// Evidence is the per-locus evidence container. Exactly one pathway is
// populated; the constructors and Validate enforce this.
type Evidence struct {
	Locus    Locus
	Reads    *ReadEvidence
	Assembly *AssemblyEvidence
}

// NewReadEvidence builds validated read-pathway evidence for a locus.
func NewReadEvidence(locus Locus, ev ReadEvidence) (*Evidence, error) {
	e := &Evidence{Locus: locus, Reads: &ev}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// NewAssemblyEvidence builds validated assembly-pathway evidence for a
// locus.
func NewAssemblyEvidence(locus Locus, hits []blast.Record) (*Evidence, error) {
	e := &Evidence{Locus: locus, Assembly: &AssemblyEvidence{Hits: hits}}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate checks the evidence invariants, returning a
// *MalformedEvidenceError on violation.
func (e *Evidence) Validate() error {
	if LocusIndex(e.Locus) < 0 {
		return &MalformedEvidenceError{Locus: e.Locus, Reason: "unknown locus"}
	}
	if (e.Reads == nil) == (e.Assembly == nil) {
		return &MalformedEvidenceError{Locus: e.Locus, Reason: "evidence must carry exactly one pathway"}
	}
	if e.Reads != nil {
		return e.validateReads()
	}
	return nil
}

func (e *Evidence) validateReads() error {
	re := e.Reads
	if len(re.Fragments) > 0 && e.Locus != DuplicatedLocus {
		return &MalformedEvidenceError{Locus: e.Locus, Reason: "primer fragments only apply to " + string(DuplicatedLocus)}
	}
	ids := make(map[string]bool, len(re.Candidates))
	for _, c := range re.Candidates {
		ids[c.ID] = true
	}
	for _, f := range re.Fragments {
		if !ids[f.Candidate] {
			return &MalformedEvidenceError{Locus: e.Locus, Reason: fmt.Sprintf("fragment references undeclared candidate %q", f.Candidate)}
		}
		switch f.Orientation {
		case OrientForward, OrientReverse:
		default:
			return &MalformedEvidenceError{Locus: e.Locus, Reason: fmt.Sprintf("invalid fragment orientation %q", f.Orientation)}
		}
	}
	return nil
}

// SampleEvidence is the full evidence set for one sample. Loci without an
// entry have no evidence and are called Missing.
type SampleEvidence struct {
	ID   string
	Mode Mode
	Loci map[Locus]*Evidence
}

// Validate checks every locus entry, stamping the sample ID onto any
// evidence error.
func (s *SampleEvidence) Validate() error {
	for locus, ev := range s.Loci {
		if ev == nil {
			return &MalformedEvidenceError{Sample: s.ID, Locus: locus, Reason: "nil evidence"}
		}
		if ev.Locus != locus {
			return &MalformedEvidenceError{Sample: s.ID, Locus: locus, Reason: fmt.Sprintf("evidence for %s keyed under %s", ev.Locus, locus)}
		}
		if err := ev.Validate(); err != nil {
			if me, ok := err.(*MalformedEvidenceError); ok {
				me.Sample = s.ID
			}
			return err
		}
	}
	return nil
}
