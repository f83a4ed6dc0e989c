package sbt

import "fmt"

// MalformedEvidenceError reports evidence that is internally
// inconsistent: it mixes pathway fields, names a locus outside the
// scheme, or references candidates that were never declared. It fails
// the affected sample only; sibling samples are unaffected.
type MalformedEvidenceError struct {
	Sample string
	Locus  Locus
	Reason string
}

func (e *MalformedEvidenceError) Error() string {
	switch {
	case e.Sample == "" && e.Locus == "":
		return "malformed evidence: " + e.Reason
	case e.Sample == "":
		return fmt.Sprintf("malformed evidence for %s: %s", e.Locus, e.Reason)
	case e.Locus == "":
		return fmt.Sprintf("sample %s: malformed evidence: %s", e.Sample, e.Reason)
	}
	return fmt.Sprintf("sample %s: malformed evidence for %s: %s", e.Sample, e.Locus, e.Reason)
}
