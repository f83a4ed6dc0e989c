package refdb

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqtyping/sbtyper/internal/sbt"
)

const profileTable = "ST\tflaA\tpilE\tasd\tmip\tmompS\tproA\tneuA_neuAH\n" +
	"1\t1\t1\t1\t1\t1\t1\t1\n" +
	"2\t2\t2\t2\t2\t2\t2\t2\n"

// writeRefDir lays out a complete reference directory with two alleles
// per locus and two sequence types.
func writeRefDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, locus := range sbt.Loci() {
		content := fmt.Sprintf(">%s_1\nACGTACGTAC\n>%s_2\nacgtacgttc\n", locus, locus)
		require.NoError(t, os.WriteFile(filepath.Join(dir, AlleleFile(locus)), []byte(content), 0644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProfileFile), []byte(profileTable), 0644))
	return dir
}

func TestLoad(t *testing.T) {
	db, err := Load(writeRefDir(t))
	require.NoError(t, err)

	for _, locus := range sbt.Loci() {
		assert.Equal(t, 2, db.AlleleCount(locus))
	}
	assert.Equal(t, 2, db.STCount())

	num, ok := db.AlleleNumber(sbt.MompS, "ACGTACGTTC")
	require.True(t, ok)
	assert.Equal(t, "2", num)

	st, ok := db.ProfileST(sbt.Profile{"1", "1", "1", "1", "1", "1", "1"})
	require.True(t, ok)
	assert.Equal(t, "1", st)
}

func TestLoad_BareRecordIDs(t *testing.T) {
	dir := writeRefDir(t)
	content := ">1\nACGTACGTAC\n>2\nACGTACGTTC\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, AlleleFile(sbt.FlaA)), []byte(content), 0644))

	db, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, db.AlleleCount(sbt.FlaA))
}

func TestLoad_EmptyDir(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)

	var me *MissingDataError
	require.ErrorAs(t, err, &me)
	assert.Len(t, me.Missing, sbt.NumLoci+1)
	assert.Contains(t, me.Missing, ProfileFile)
}

func TestLoad_PartiallyMissing(t *testing.T) {
	dir := writeRefDir(t)
	require.NoError(t, os.Remove(filepath.Join(dir, AlleleFile(sbt.MompS))))
	require.NoError(t, os.Remove(filepath.Join(dir, ProfileFile)))

	_, err := Load(dir)
	var me *MissingDataError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, []string{"mompS_alleles.tfa", ProfileFile}, me.Missing)
	assert.Equal(t, dir, me.Dir)
}

func TestLoad_ForeignRecord(t *testing.T) {
	dir := writeRefDir(t)
	content := ">pilE_1\nACGTACGTAC\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, AlleleFile(sbt.FlaA)), []byte(content), 0644))

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"pilE_1" does not name a flaA allele`)
}

func TestLoad_EmptyAlleleFile(t *testing.T) {
	dir := writeRefDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, AlleleFile(sbt.Asd)), nil, 0644))

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no allele records")
}

func TestLoad_ProfileTableErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			"wrong header",
			"ST\tflaA\tpilE\tasd\tmip\tmompS\tproA\tneuA\n1\t1\t1\t1\t1\t1\t1\t1\n",
			"header column 8 must be neuA_neuAH",
		},
		{
			"header missing ST",
			"flaA\tpilE\tasd\tmip\tmompS\tproA\tneuA_neuAH\tx\n",
			"header must start with ST",
		},
		{
			"short row",
			"ST\tflaA\tpilE\tasd\tmip\tmompS\tproA\tneuA_neuAH\n1\t1\t1\n",
			"expected 8 columns, got 3",
		},
		{
			"duplicate ST",
			"ST\tflaA\tpilE\tasd\tmip\tmompS\tproA\tneuA_neuAH\n1\t1\t1\t1\t1\t1\t1\t1\n1\t2\t2\t2\t2\t2\t2\t2\n",
			"duplicate sequence type",
		},
		{
			"empty table",
			"\n",
			"empty profile table",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeRefDir(t)
			require.NoError(t, os.WriteFile(filepath.Join(dir, ProfileFile), []byte(tt.content), 0644))

			_, err := Load(dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAlleleFile(t *testing.T) {
	assert.Equal(t, "flaA_alleles.tfa", AlleleFile(sbt.FlaA))
	assert.Equal(t, "neuA_neuAH_alleles.tfa", AlleleFile(sbt.NeuA))
}

func TestMissingDataError_Error(t *testing.T) {
	err := &MissingDataError{Dir: "/ref/db", Missing: []string{"mip_alleles.tfa", ProfileFile}}
	assert.Equal(t, "reference directory /ref/db is missing mip_alleles.tfa, lpneumophila.txt", err.Error())
}
