// Package refdb loads and indexes the typing scheme's reference data:
// the per-locus allele catalogs and the profile table mapping complete
// allele profiles to published sequence types.
package refdb

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/seqtyping/sbtyper/internal/sbt"
)

// Database is the in-memory reference index. Immutable once loaded and
// safe for concurrent readers; it implements sbt.AlleleLookup.
type Database struct {
	alleles  map[sbt.Locus]map[string]string // allele number -> sequence
	bySeq    map[sbt.Locus]map[string]string // sequence -> allele number
	profiles map[sbt.Profile]string
	sts      map[string]sbt.Profile
}

// New creates an empty database.
func New() *Database {
	db := &Database{
		alleles:  make(map[sbt.Locus]map[string]string, sbt.NumLoci),
		bySeq:    make(map[sbt.Locus]map[string]string, sbt.NumLoci),
		profiles: make(map[sbt.Profile]string),
		sts:      make(map[string]sbt.Profile),
	}
	for _, locus := range sbt.Loci() {
		db.alleles[locus] = make(map[string]string)
		db.bySeq[locus] = make(map[string]string)
	}
	return db
}

// AddAllele catalogs one allele sequence. Allele numbers and sequences
// must be unique within their locus.
func (db *Database) AddAllele(locus sbt.Locus, allele, sequence string) error {
	if sbt.LocusIndex(locus) < 0 {
		return fmt.Errorf("unknown locus %q", locus)
	}
	if allele == "" {
		return fmt.Errorf("%s: empty allele number", locus)
	}
	seq := normalize(sequence)
	if seq == "" {
		return fmt.Errorf("%s allele %s: empty sequence", locus, allele)
	}
	if existing, ok := db.alleles[locus][allele]; ok {
		if existing == seq {
			return nil
		}
		return fmt.Errorf("%s allele %s: conflicting sequences", locus, allele)
	}
	if other, ok := db.bySeq[locus][seq]; ok {
		return fmt.Errorf("%s allele %s: sequence already cataloged as allele %s", locus, allele, other)
	}
	db.alleles[locus][allele] = seq
	db.bySeq[locus][seq] = allele
	return nil
}

// AddProfile catalogs one sequence type. ST identifiers and profile
// tuples must both be unique.
func (db *Database) AddProfile(st string, p sbt.Profile) error {
	if st == "" {
		return fmt.Errorf("empty sequence type identifier")
	}
	for i, allele := range p {
		if allele == "" {
			return fmt.Errorf("ST %s: empty allele for %s", st, sbt.Loci()[i])
		}
	}
	if _, ok := db.sts[st]; ok {
		return fmt.Errorf("duplicate sequence type %s", st)
	}
	if other, ok := db.profiles[p]; ok {
		return fmt.Errorf("ST %s: profile already assigned to ST %s", st, other)
	}
	db.profiles[p] = st
	db.sts[st] = p
	return nil
}

// AlleleNumber resolves an exact sequence match to its allele number.
func (db *Database) AlleleNumber(locus sbt.Locus, sequence string) (string, bool) {
	allele, ok := db.bySeq[locus][normalize(sequence)]
	return allele, ok
}

// AlleleSequence returns a cataloged allele's sequence.
func (db *Database) AlleleSequence(locus sbt.Locus, allele string) (string, bool) {
	seq, ok := db.alleles[locus][allele]
	return seq, ok
}

// AlleleLength returns a cataloged allele's reference length.
func (db *Database) AlleleLength(locus sbt.Locus, allele string) (int, bool) {
	seq, ok := db.alleles[locus][allele]
	if !ok {
		return 0, false
	}
	return len(seq), true
}

// ProfileST resolves a complete allele profile to its sequence type.
func (db *Database) ProfileST(p sbt.Profile) (string, bool) {
	st, ok := db.profiles[p]
	return st, ok
}

// Allele is one cataloged allele in export form.
type Allele struct {
	ID       string
	Sequence string
}

// Alleles returns a locus's catalog sorted by allele number.
func (db *Database) Alleles(locus sbt.Locus) []Allele {
	out := make([]Allele, 0, len(db.alleles[locus]))
	for id, seq := range db.alleles[locus] {
		out = append(out, Allele{ID: id, Sequence: seq})
	}
	sort.Slice(out, func(i, j int) bool { return idLess(out[i].ID, out[j].ID) })
	return out
}

// STProfile is one cataloged sequence type in export form.
type STProfile struct {
	ST      string
	Profile sbt.Profile
}

// Profiles returns the profile table sorted by sequence type.
func (db *Database) Profiles() []STProfile {
	out := make([]STProfile, 0, len(db.sts))
	for st, p := range db.sts {
		out = append(out, STProfile{ST: st, Profile: p})
	}
	sort.Slice(out, func(i, j int) bool { return idLess(out[i].ST, out[j].ST) })
	return out
}

// AlleleCount returns the number of cataloged alleles for a locus.
func (db *Database) AlleleCount(locus sbt.Locus) int {
	return len(db.alleles[locus])
}

// STCount returns the number of cataloged sequence types.
func (db *Database) STCount() int {
	return len(db.sts)
}

var _ sbt.AlleleLookup = (*Database)(nil)

func normalize(seq string) string {
	return strings.ToUpper(strings.TrimSpace(seq))
}

// idLess orders numeric identifiers numerically and sorts the rest
// lexically after them.
func idLess(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	return a < b
}
