package sbt

import "strings"

// Profile is an ordered allele-number tuple, one entry per locus in
// canonical order. Comparable, so it serves directly as the database
// lookup key; two profiles are equal iff all seven components are.
type Profile [NumLoci]string

func (p Profile) String() string {
	return strings.Join(p[:], ",")
}

// Classification is the closed set of profile-level outcomes.
type Classification string

const (
	Known              Classification = "known"
	NovelST            Classification = "novel_st"
	NovelAlleleProfile Classification = "novel_allele_profile"
	MultipleAlleles    Classification = "multiple_alleles"
	MissingData        Classification = "missing_data"
)

// Profile-level display symbols for the ST column.
const (
	SymbolNovelST            = "Novel ST"
	SymbolNovelAlleleProfile = "Novel ST*"
	SymbolMultipleAlleles    = "MA?"
	SymbolMissingData        = "MD-"
)

// STResult is the profile-level outcome: the classification plus the
// published identifier when the profile is cataloged.
type STResult struct {
	Classification Classification
	ST             string // Known only
}

// Display returns the ST column value: the identifier for a known type,
// otherwise the classification symbol.
func (r STResult) Display() string {
	switch r.Classification {
	case Known:
		return r.ST
	case NovelST:
		return SymbolNovelST
	case NovelAlleleProfile:
		return SymbolNovelAlleleProfile
	case MultipleAlleles:
		return SymbolMultipleAlleles
	default:
		return SymbolMissingData
	}
}

// ResolveProfile classifies seven locus calls. Precedence: missing data
// first, then ambiguity, then novelty; only a fully resolved profile is
// looked up. The per-locus states stay independently visible on the
// calls themselves, so a missing locus yields the profile symbol "MD-"
// while its own cell shows "-" and resolved cells keep their numbers.
func ResolveProfile(calls [NumLoci]LocusCall, db AlleleLookup) STResult {
	var missing, ambiguous, novel bool
	for _, c := range calls {
		switch c.State {
		case StateMissing:
			missing = true
		case StateAmbiguous:
			ambiguous = true
		case StateNovel:
			novel = true
		}
	}
	switch {
	case missing:
		return STResult{Classification: MissingData}
	case ambiguous:
		return STResult{Classification: MultipleAlleles}
	case novel:
		return STResult{Classification: NovelAlleleProfile}
	}

	var p Profile
	for i, c := range calls {
		p[i] = c.Allele
	}
	if st, ok := db.ProfileST(p); ok {
		return STResult{Classification: Known, ST: st}
	}
	return STResult{Classification: NovelST}
}

// MaxPossibleProfiles caps the cartesian expansion of ambiguous
// candidate sets.
const MaxPossibleProfiles = 64

// PossibleProfile is one expansion of the open candidate combinations,
// with its own lookup outcome in display form.
type PossibleProfile struct {
	Profile Profile
	ST      string
}

// PossibleProfiles expands every combination of candidate alleles across
// ambiguous loci and looks each resulting profile up. Returns nil when
// no locus is ambiguous or when any locus is missing; the expansion
// stops at MaxPossibleProfiles combinations.
func PossibleProfiles(calls [NumLoci]LocusCall, db AlleleLookup) []PossibleProfile {
	options := make([][]string, NumLoci)
	anyAmbiguous := false
	for i, c := range calls {
		switch c.State {
		case StateMissing:
			return nil
		case StateResolved:
			options[i] = []string{c.Allele}
		case StateNovel:
			options[i] = []string{SymbolNovel}
		case StateAmbiguous:
			anyAmbiguous = true
			options[i] = c.CandidateDisplays()
		}
	}
	if !anyAmbiguous {
		return nil
	}

	var combos []PossibleProfile
	idx := make([]int, NumLoci)
	for {
		var p Profile
		hasNovel := false
		for i := range idx {
			p[i] = options[i][idx[i]]
			if p[i] == SymbolNovel {
				hasNovel = true
			}
		}
		pp := PossibleProfile{Profile: p}
		switch {
		case hasNovel:
			pp.ST = SymbolNovelAlleleProfile
		default:
			if st, ok := db.ProfileST(p); ok {
				pp.ST = st
			} else {
				pp.ST = SymbolNovelST
			}
		}
		combos = append(combos, pp)
		if len(combos) == MaxPossibleProfiles {
			return combos
		}

		i := NumLoci - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(options[i]) {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			return combos
		}
	}
}
