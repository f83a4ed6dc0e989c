// Package sbt implements seven-locus sequence-based typing: per-locus
// allele calling from read or assembly evidence, primer-orientation
// resolution of the duplicated mompS locus, and classification of the
// combined allele profile against a reference database of published
// sequence types.
//
// Uncertainty is data here, not error: loci without usable evidence,
// loci with several equally supported alleles, and sequences absent from
// the database are all first-class call outcomes. Hard failures are
// reserved for malformed evidence and unusable reference data.
package sbt

import "fmt"

// Locus identifies one of the seven markers of the typing scheme.
type Locus string

// The seven loci, in canonical scheme order.
const (
	FlaA  Locus = "flaA"
	PilE  Locus = "pilE"
	Asd   Locus = "asd"
	Mip   Locus = "mip"
	MompS Locus = "mompS"
	ProA  Locus = "proA"
	NeuA  Locus = "neuA_neuAH"
)

// NumLoci is the number of loci in a complete profile.
const NumLoci = 7

// DuplicatedLocus is present as two genomic copies; an ambiguous call for
// it may be resolved to the primary copy using primer-orientation
// evidence (see resolveDuplicate).
const DuplicatedLocus = MompS

// Loci returns the seven loci in canonical order. The order is fixed by
// the typing scheme and is significant for profile lookup and display.
func Loci() [NumLoci]Locus {
	return [NumLoci]Locus{FlaA, PilE, Asd, Mip, MompS, ProA, NeuA}
}

// LocusIndex returns the canonical position of a locus, or -1 for a name
// outside the scheme.
func LocusIndex(l Locus) int {
	for i, known := range Loci() {
		if known == l {
			return i
		}
	}
	return -1
}

// ParseLocus validates a locus name.
func ParseLocus(name string) (Locus, error) {
	l := Locus(name)
	if LocusIndex(l) < 0 {
		return "", fmt.Errorf("unknown locus %q", name)
	}
	return l, nil
}
