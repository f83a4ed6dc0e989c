package sbt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocusCall_Symbol(t *testing.T) {
	tests := []struct {
		name string
		call LocusCall
		want string
	}{
		{"resolved", ResolvedCall(FlaA, "12"), "12"},
		{"ambiguous", AmbiguousCall(MompS, []AlleleCandidate{{Allele: "7"}, {Allele: "15"}}), SymbolAmbiguous},
		{"missing", MissingCall(Mip), SymbolMissing},
		{"novel", NovelCall(Asd, "ACGT"), SymbolNovel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.call.Symbol())
		})
	}
}

func TestAmbiguousCall_SortsCandidates(t *testing.T) {
	call := AmbiguousCall(MompS, []AlleleCandidate{
		{Allele: "15"},
		{Allele: ""},
		{Allele: "7"},
	})

	assert.Equal(t, []string{"7", "15", SymbolNovel}, call.CandidateDisplays())
}

func TestAlleleCandidate_Display(t *testing.T) {
	assert.Equal(t, "3", AlleleCandidate{Allele: "3"}.Display())
	assert.Equal(t, SymbolNovel, AlleleCandidate{Sequence: "ACGT"}.Display())
}

func TestDisplayLess(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"2", "10", true},
		{"10", "2", false},
		{"7", "7", false},
		{"3", "NAT", true},
		{"NAT", "3", false},
		{"NAT", "NAT", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, displayLess(tt.a, tt.b), "displayLess(%q, %q)", tt.a, tt.b)
	}
}
