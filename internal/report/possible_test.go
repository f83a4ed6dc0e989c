package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqtyping/sbtyper/internal/sbt"
)

// stProfiles is a lookup stub carrying only a profile table.
type stProfiles map[sbt.Profile]string

func (m stProfiles) AlleleNumber(sbt.Locus, string) (string, bool)   { return "", false }
func (m stProfiles) AlleleSequence(sbt.Locus, string) (string, bool) { return "", false }
func (m stProfiles) AlleleLength(sbt.Locus, string) (int, bool)      { return 0, false }

func (m stProfiles) ProfileST(p sbt.Profile) (string, bool) {
	st, ok := m[p]
	return st, ok
}

func TestPossibleWriter_ExpandsAmbiguousSample(t *testing.T) {
	db := stProfiles{
		{"1", "2", "1", "1", "7", "1", "1"}: "7",
	}

	r := knownResult("S1")
	r.ST = sbt.STResult{Classification: sbt.MultipleAlleles}
	r.Calls[4] = sbt.AmbiguousCall(sbt.MompS, []sbt.AlleleCandidate{
		{Allele: "15"}, {Allele: "7"},
	})

	var buf bytes.Buffer
	w := NewPossibleWriter(&buf, db)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Write(r))
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Sample\tST\tflaA\tpilE\tasd\tmip\tmompS\tproA\tneuA_neuAH", lines[0])
	assert.Equal(t, "S1\t7\t1\t2\t1\t1\t7\t1\t1", lines[1])
	assert.Equal(t, "S1\tNovel ST\t1\t2\t1\t1\t15\t1\t1", lines[2])
}

func TestPossibleWriter_SkipsUnambiguousSamples(t *testing.T) {
	var buf bytes.Buffer
	w := NewPossibleWriter(&buf, stProfiles{})

	require.NoError(t, w.Write(knownResult("S1")))

	// A missing locus blocks expansion even when another is ambiguous.
	md := knownResult("S2")
	md.ST = sbt.STResult{Classification: sbt.MissingData}
	md.Calls[2] = sbt.MissingCall(sbt.Asd)
	md.Calls[4] = sbt.AmbiguousCall(sbt.MompS, []sbt.AlleleCandidate{
		{Allele: "7"}, {Allele: "15"},
	})
	require.NoError(t, w.Write(md))

	require.NoError(t, w.Flush())
	assert.Empty(t, buf.String())
}

func TestPossibleWriter_NovelCandidateRow(t *testing.T) {
	r := knownResult("S3")
	r.ST = sbt.STResult{Classification: sbt.MultipleAlleles}
	r.Calls[0] = sbt.AmbiguousCall(sbt.FlaA, []sbt.AlleleCandidate{
		{Allele: "1"}, {Sequence: "ACGT"},
	})

	var buf bytes.Buffer
	w := NewPossibleWriter(&buf, stProfiles{})
	require.NoError(t, w.Write(r))
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "S3\tNovel ST\t1\t2\t1\t1\t1\t1\t1", lines[0])
	assert.Equal(t, "S3\tNovel ST*\tNAT\t2\t1\t1\t1\t1\t1", lines[1])
}
