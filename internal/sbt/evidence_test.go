package sbt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqtyping/sbtyper/internal/blast"
)

func TestEvidence_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ev      Evidence
		wantErr string
	}{
		{
			name: "valid reads",
			ev:   Evidence{Locus: FlaA, Reads: &ReadEvidence{}},
		},
		{
			name: "valid assembly",
			ev:   Evidence{Locus: FlaA, Assembly: &AssemblyEvidence{}},
		},
		{
			name:    "unknown locus",
			ev:      Evidence{Locus: "gyrB", Reads: &ReadEvidence{}},
			wantErr: "unknown locus",
		},
		{
			name:    "no pathway",
			ev:      Evidence{Locus: FlaA},
			wantErr: "exactly one pathway",
		},
		{
			name:    "both pathways",
			ev:      Evidence{Locus: FlaA, Reads: &ReadEvidence{}, Assembly: &AssemblyEvidence{}},
			wantErr: "exactly one pathway",
		},
		{
			name: "fragments outside duplicated locus",
			ev: Evidence{Locus: FlaA, Reads: &ReadEvidence{
				Candidates: []SeqCandidate{{ID: "c1", Sequence: "ACGT"}},
				Fragments:  []Fragment{{Candidate: "c1", Orientation: OrientReverse}},
			}},
			wantErr: "primer fragments only apply to mompS",
		},
		{
			name: "fragment references undeclared candidate",
			ev: Evidence{Locus: MompS, Reads: &ReadEvidence{
				Candidates: []SeqCandidate{{ID: "c1", Sequence: "ACGT"}},
				Fragments:  []Fragment{{Candidate: "c9", Orientation: OrientReverse}},
			}},
			wantErr: `undeclared candidate "c9"`,
		},
		{
			name: "invalid orientation",
			ev: Evidence{Locus: MompS, Reads: &ReadEvidence{
				Candidates: []SeqCandidate{{ID: "c1", Sequence: "ACGT"}},
				Fragments:  []Fragment{{Candidate: "c1", Orientation: "X"}},
			}},
			wantErr: `invalid fragment orientation "X"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ev.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var me *MalformedEvidenceError
			require.ErrorAs(t, err, &me)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewReadEvidence_RejectsInvalid(t *testing.T) {
	_, err := NewReadEvidence("gyrB", ReadEvidence{})
	require.Error(t, err)

	ev, err := NewReadEvidence(MompS, ReadEvidence{
		Candidates: []SeqCandidate{{ID: "c1", Sequence: "ACGT"}},
		Fragments:  []Fragment{{Candidate: "c1", Orientation: OrientForward}},
	})
	require.NoError(t, err)
	assert.Equal(t, MompS, ev.Locus)
	assert.NotNil(t, ev.Reads)
	assert.Nil(t, ev.Assembly)
}

func TestNewAssemblyEvidence(t *testing.T) {
	ev, err := NewAssemblyEvidence(ProA, []blast.Record{{Query: "contig_1", Subject: "proA_3"}})
	require.NoError(t, err)
	assert.Equal(t, ProA, ev.Locus)
	require.NotNil(t, ev.Assembly)
	assert.Len(t, ev.Assembly.Hits, 1)

	_, err = NewAssemblyEvidence("gyrB", nil)
	require.Error(t, err)
}

func TestSampleEvidence_Validate(t *testing.T) {
	good := &SampleEvidence{
		ID:   "S1",
		Mode: ModeReads,
		Loci: map[Locus]*Evidence{
			FlaA: {Locus: FlaA, Reads: &ReadEvidence{}},
		},
	}
	assert.NoError(t, good.Validate())

	mismatched := &SampleEvidence{
		ID: "S2",
		Loci: map[Locus]*Evidence{
			FlaA: {Locus: PilE, Reads: &ReadEvidence{}},
		},
	}
	err := mismatched.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sample S2")

	nilEntry := &SampleEvidence{
		ID:   "S3",
		Loci: map[Locus]*Evidence{FlaA: nil},
	}
	require.Error(t, nilEntry.Validate())
}

func TestSampleEvidence_ValidateStampsSampleID(t *testing.T) {
	s := &SampleEvidence{
		ID: "S9",
		Loci: map[Locus]*Evidence{
			FlaA: {Locus: FlaA},
		},
	}
	err := s.Validate()
	require.Error(t, err)

	var me *MalformedEvidenceError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "S9", me.Sample)
	assert.Equal(t, FlaA, me.Locus)
}
