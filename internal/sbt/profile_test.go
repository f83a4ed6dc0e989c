package sbt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolvedCalls(p Profile) [NumLoci]LocusCall {
	var calls [NumLoci]LocusCall
	for i, locus := range Loci() {
		calls[i] = ResolvedCall(locus, p[i])
	}
	return calls
}

func TestProfile_String(t *testing.T) {
	p := Profile{"1", "2", "1", "1", "7", "1", "1"}
	assert.Equal(t, "1,2,1,1,7,1,1", p.String())
}

func TestResolveProfile_Known(t *testing.T) {
	db := newTestDB()
	calls := resolvedCalls(Profile{"1", "2", "1", "1", "1", "1", "1"})

	st := ResolveProfile(calls, db)
	assert.Equal(t, Known, st.Classification)
	assert.Equal(t, "1", st.ST)
	assert.Equal(t, "1", st.Display())
}

func TestResolveProfile_NovelSTWhenProfileAbsent(t *testing.T) {
	db := newTestDB()
	calls := resolvedCalls(Profile{"1", "1", "1", "1", "1", "1", "1"})

	st := ResolveProfile(calls, db)
	assert.Equal(t, NovelST, st.Classification)
	assert.Equal(t, SymbolNovelST, st.Display())
}

func TestResolveProfile_Precedence(t *testing.T) {
	db := newTestDB()
	base := resolvedCalls(Profile{"1", "2", "1", "1", "1", "1", "1"})

	novel := base
	novel[3] = NovelCall(Mip, "ACGT")

	ambiguous := novel
	ambiguous[4] = AmbiguousCall(MompS, []AlleleCandidate{{Allele: "7"}, {Allele: "15"}})

	missing := ambiguous
	missing[0] = MissingCall(FlaA)

	tests := []struct {
		name  string
		calls [NumLoci]LocusCall
		want  Classification
	}{
		{"novel only", novel, NovelAlleleProfile},
		{"ambiguous beats novel", ambiguous, MultipleAlleles},
		{"missing beats everything", missing, MissingData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveProfile(tt.calls, db).Classification)
		})
	}
}

func TestResolveProfile_PerLocusCellsStayIndependent(t *testing.T) {
	calls := resolvedCalls(Profile{"1", "2", "1", "1", "1", "1", "1"})
	calls[4] = MissingCall(MompS)

	st := ResolveProfile(calls, newTestDB())
	assert.Equal(t, SymbolMissingData, st.Display())
	assert.Equal(t, SymbolMissing, calls[4].Symbol())
	assert.Equal(t, "1", calls[0].Symbol())
}

func TestSTResult_Display(t *testing.T) {
	tests := []struct {
		result STResult
		want   string
	}{
		{STResult{Classification: Known, ST: "42"}, "42"},
		{STResult{Classification: NovelST}, SymbolNovelST},
		{STResult{Classification: NovelAlleleProfile}, SymbolNovelAlleleProfile},
		{STResult{Classification: MultipleAlleles}, SymbolMultipleAlleles},
		{STResult{Classification: MissingData}, SymbolMissingData},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.result.Display())
	}
}

func TestPossibleProfiles_AmbiguousDuplicatedLocus(t *testing.T) {
	db := newTestDB()
	calls := resolvedCalls(Profile{"1", "2", "1", "1", "", "1", "1"})
	calls[4] = AmbiguousCall(MompS, []AlleleCandidate{{Allele: "7"}, {Allele: "15"}})

	combos := PossibleProfiles(calls, db)
	require.Len(t, combos, 2)

	assert.Equal(t, Profile{"1", "2", "1", "1", "7", "1", "1"}, combos[0].Profile)
	assert.Equal(t, "7", combos[0].ST)
	assert.Equal(t, Profile{"1", "2", "1", "1", "15", "1", "1"}, combos[1].Profile)
	assert.Equal(t, SymbolNovelST, combos[1].ST)
}

func TestPossibleProfiles_NovelCellForcesNovelProfile(t *testing.T) {
	db := newTestDB()
	calls := resolvedCalls(Profile{"1", "2", "1", "1", "", "1", "1"})
	calls[3] = NovelCall(Mip, "ACGT")
	calls[4] = AmbiguousCall(MompS, []AlleleCandidate{{Allele: "7"}, {Allele: "15"}})

	combos := PossibleProfiles(calls, db)
	require.Len(t, combos, 2)
	for _, c := range combos {
		assert.Equal(t, SymbolNovel, c.Profile[3])
		assert.Equal(t, SymbolNovelAlleleProfile, c.ST)
	}
}

func TestPossibleProfiles_UnmatchedCandidateShowsNAT(t *testing.T) {
	db := newTestDB()
	calls := resolvedCalls(Profile{"1", "2", "1", "1", "", "1", "1"})
	calls[4] = AmbiguousCall(MompS, []AlleleCandidate{
		{Allele: "7"},
		{Allele: "", Sequence: "ACGTACGT"},
	})

	combos := PossibleProfiles(calls, db)
	require.Len(t, combos, 2)
	assert.Equal(t, "7", combos[0].ST)
	assert.Equal(t, SymbolNovel, combos[1].Profile[4])
	assert.Equal(t, SymbolNovelAlleleProfile, combos[1].ST)
}

func TestPossibleProfiles_NilWhenFullyResolved(t *testing.T) {
	calls := resolvedCalls(Profile{"1", "2", "1", "1", "1", "1", "1"})
	assert.Nil(t, PossibleProfiles(calls, newTestDB()))
}

func TestPossibleProfiles_NilWhenAnyLocusMissing(t *testing.T) {
	calls := resolvedCalls(Profile{"1", "2", "1", "1", "", "1", "1"})
	calls[4] = AmbiguousCall(MompS, []AlleleCandidate{{Allele: "7"}, {Allele: "15"}})
	calls[0] = MissingCall(FlaA)

	assert.Nil(t, PossibleProfiles(calls, newTestDB()))
}

func TestPossibleProfiles_CapsExpansion(t *testing.T) {
	var calls [NumLoci]LocusCall
	for i, locus := range Loci() {
		calls[i] = AmbiguousCall(locus, []AlleleCandidate{{Allele: "1"}, {Allele: "2"}})
	}

	combos := PossibleProfiles(calls, newTestDB())
	assert.Len(t, combos, MaxPossibleProfiles)
}
