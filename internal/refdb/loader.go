package refdb

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/seqtyping/sbtyper/internal/sbt"
)

// ProfileFile is the profile table's file name inside a reference
// directory.
const ProfileFile = "lpneumophila.txt"

// AlleleFile returns a locus's allele catalog file name.
func AlleleFile(locus sbt.Locus) string {
	return string(locus) + "_alleles.tfa"
}

// MissingDataError reports reference files absent from a directory. The
// reference set is unusable without all seven allele catalogs and the
// profile table, so this is fatal before any sample is processed.
type MissingDataError struct {
	Dir     string
	Missing []string
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("reference directory %s is missing %s", e.Dir, strings.Join(e.Missing, ", "))
}

// Load reads a reference directory into an indexed database: one
// <locus>_alleles.tfa FASTA per locus plus the profile table.
func Load(dir string) (*Database, error) {
	var missing []string
	for _, locus := range sbt.Loci() {
		if _, err := os.Stat(filepath.Join(dir, AlleleFile(locus))); err != nil {
			missing = append(missing, AlleleFile(locus))
		}
	}
	if _, err := os.Stat(filepath.Join(dir, ProfileFile)); err != nil {
		missing = append(missing, ProfileFile)
	}
	if len(missing) > 0 {
		return nil, &MissingDataError{Dir: dir, Missing: missing}
	}

	db := New()
	for _, locus := range sbt.Loci() {
		if err := loadAlleles(db, filepath.Join(dir, AlleleFile(locus)), locus); err != nil {
			return nil, err
		}
	}
	if err := loadProfiles(db, filepath.Join(dir, ProfileFile)); err != nil {
		return nil, err
	}
	return db, nil
}

// loadAlleles catalogs one locus's FASTA. Record IDs may carry the locus
// prefix (flaA_1) or be bare numbers.
func loadAlleles(db *Database, path string, locus sbt.Locus) error {
	records, err := ReadFASTAFile(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if len(records) == 0 {
		return fmt.Errorf("%s: no allele records", path)
	}
	for _, rec := range records {
		allele, ok := sbt.SplitSubject(locus, rec.ID)
		if !ok {
			return fmt.Errorf("%s: record %q does not name a %s allele", path, rec.ID, locus)
		}
		if err := db.AddAllele(locus, allele, rec.Sequence); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

// loadProfiles reads the tab-separated profile table. The header row must
// name ST and the seven loci in canonical order.
func loadProfiles(db *Database, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open profile table: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	line := 0
	sawHeader := false
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != sbt.NumLoci+1 {
			return fmt.Errorf("%s: line %d: expected %d columns, got %d", path, line, sbt.NumLoci+1, len(fields))
		}
		if !sawHeader {
			if err := checkProfileHeader(fields); err != nil {
				return fmt.Errorf("%s: line %d: %w", path, line, err)
			}
			sawHeader = true
			continue
		}
		var p sbt.Profile
		copy(p[:], fields[1:])
		if err := db.AddProfile(fields[0], p); err != nil {
			return fmt.Errorf("%s: line %d: %w", path, line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read profile table: %w", err)
	}
	if !sawHeader {
		return fmt.Errorf("%s: empty profile table", path)
	}
	return nil
}

func checkProfileHeader(fields []string) error {
	if !strings.EqualFold(fields[0], "ST") {
		return fmt.Errorf("header must start with ST, got %q", fields[0])
	}
	for i, locus := range sbt.Loci() {
		if !strings.EqualFold(fields[i+1], string(locus)) {
			return fmt.Errorf("header column %d must be %s, got %q", i+2, locus, fields[i+1])
		}
	}
	return nil
}
