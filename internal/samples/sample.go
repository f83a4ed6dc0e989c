// Package samples assembles per-sample evidence sets from the on-disk
// intake layout: a directory per sample holding the assembly hit table
// and/or per-locus depth tables, candidate calls and primer fragment
// observations.
package samples

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/seqtyping/sbtyper/internal/blast"
	"github.com/seqtyping/sbtyper/internal/coverage"
	"github.com/seqtyping/sbtyper/internal/refdb"
	"github.com/seqtyping/sbtyper/internal/sbt"
)

// Intake file names inside a sample directory.
const (
	HitsFile      = "hits.tsv"
	FragmentsFile = "mompS.fragments.tsv"
)

// DepthFile returns a locus's read-depth table name.
func DepthFile(locus sbt.Locus) string { return string(locus) + ".depth.tsv" }

// CallsFile returns a locus's recovered-candidate FASTA name.
func CallsFile(locus sbt.Locus) string { return string(locus) + ".calls.fna" }

// LoadDir assembles one sample's evidence set from its directory. The
// assembly pathway is a single hit table covering all loci; the read
// pathway is per-locus depth tables and candidate FASTAs, plus primer
// fragments for the duplicated locus. When both pathways cover a locus,
// the duplicated locus keeps the read evidence (primer observations live
// there) and every other locus keeps the assembly evidence. Parse
// failures return a *sbt.MalformedEvidenceError so batch runs skip the
// sample and continue.
func LoadDir(dir, id string) (*sbt.SampleEvidence, error) {
	if id == "" {
		id = filepath.Base(dir)
	}

	hits, hasAssembly, err := loadHits(dir, id)
	if err != nil {
		return nil, err
	}

	sample := &sbt.SampleEvidence{ID: id, Loci: make(map[sbt.Locus]*sbt.Evidence)}
	hasReads := false
	for _, locus := range sbt.Loci() {
		re, ok, err := loadReads(dir, id, locus)
		if err != nil {
			return nil, err
		}
		if ok {
			hasReads = true
		}

		switch {
		case ok && (locus == sbt.DuplicatedLocus || !hasAssembly):
			ev, err := sbt.NewReadEvidence(locus, *re)
			if err != nil {
				return nil, stamp(err, id)
			}
			sample.Loci[locus] = ev
		case hasAssembly:
			ev, err := sbt.NewAssemblyEvidence(locus, hits[locus])
			if err != nil {
				return nil, stamp(err, id)
			}
			sample.Loci[locus] = ev
		}
	}

	switch {
	case hasReads && hasAssembly:
		sample.Mode = sbt.ModeCombined
	case hasReads:
		sample.Mode = sbt.ModeReads
	case hasAssembly:
		sample.Mode = sbt.ModeAssembly
	default:
		return nil, &sbt.MalformedEvidenceError{Sample: id, Reason: "no evidence files in " + dir}
	}
	return sample, nil
}

// loadHits reads the sample's assembly hit table, split per locus by
// subject ID. Subjects naming no scheme locus are ignored.
func loadHits(dir, id string) (map[sbt.Locus][]blast.Record, bool, error) {
	path := filepath.Join(dir, HitsFile)
	if _, err := os.Stat(path); err != nil {
		return nil, false, nil
	}
	records, err := blast.ReadFile(path)
	if err != nil {
		return nil, false, &sbt.MalformedEvidenceError{Sample: id, Reason: fmt.Sprintf("%s: %v", HitsFile, err)}
	}

	hits := make(map[sbt.Locus][]blast.Record)
	for _, rec := range records {
		for _, locus := range sbt.Loci() {
			if _, ok := sbt.SplitSubject(locus, rec.Subject); ok {
				hits[locus] = append(hits[locus], rec)
				break
			}
		}
	}
	return hits, true, nil
}

// loadReads gathers one locus's read-pathway files. Either file alone is
// enough to put the locus on the read pathway; the caller decides what an
// incomplete set means.
func loadReads(dir, id string, locus sbt.Locus) (*sbt.ReadEvidence, bool, error) {
	depthPath := filepath.Join(dir, DepthFile(locus))
	callsPath := filepath.Join(dir, CallsFile(locus))

	_, depthErr := os.Stat(depthPath)
	_, callsErr := os.Stat(callsPath)
	if depthErr != nil && callsErr != nil {
		return nil, false, nil
	}

	re := &sbt.ReadEvidence{}
	if depthErr == nil {
		profiles, err := coverage.ReadFile(depthPath)
		if err != nil {
			return nil, false, malformed(id, locus, DepthFile(locus), err)
		}
		profile, err := pickProfile(profiles, locus)
		if err != nil {
			return nil, false, malformed(id, locus, DepthFile(locus), err)
		}
		re.Coverage = profile
	}
	if callsErr == nil {
		records, err := refdb.ReadFASTAFile(callsPath)
		if err != nil {
			return nil, false, malformed(id, locus, CallsFile(locus), err)
		}
		for _, rec := range records {
			re.Candidates = append(re.Candidates, sbt.SeqCandidate{ID: rec.ID, Sequence: rec.Sequence})
		}
	}
	if locus == sbt.DuplicatedLocus {
		fragments, err := loadFragments(dir, id)
		if err != nil {
			return nil, false, err
		}
		re.Fragments = fragments
	}
	return re, true, nil
}

// pickProfile selects the depth profile for a locus. Per-locus tables
// usually carry a single reference (often named after the mapped allele,
// e.g. mompS_7).
func pickProfile(profiles map[string]*coverage.Profile, locus sbt.Locus) (*coverage.Profile, error) {
	if p, ok := profiles[string(locus)]; ok {
		return p, nil
	}
	switch len(profiles) {
	case 0:
		return nil, nil
	case 1:
		for _, p := range profiles {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%d references in depth table, expected one", len(profiles))
}

// loadFragments parses the duplicated locus's primer observations: one
// fragment per row, candidate ID then orientation F or R.
func loadFragments(dir, id string) ([]sbt.Fragment, error) {
	path := filepath.Join(dir, FragmentsFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, malformed(id, sbt.DuplicatedLocus, FragmentsFile, err)
	}
	defer f.Close()

	var fragments []sbt.Fragment
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, malformed(id, sbt.DuplicatedLocus, FragmentsFile,
				fmt.Errorf("line %d: expected 2 columns, got %d", line, len(fields)))
		}
		orient := sbt.Orientation(fields[1])
		if orient != sbt.OrientForward && orient != sbt.OrientReverse {
			return nil, malformed(id, sbt.DuplicatedLocus, FragmentsFile,
				fmt.Errorf("line %d: invalid orientation %q", line, fields[1]))
		}
		fragments = append(fragments, sbt.Fragment{Candidate: fields[0], Orientation: orient})
	}
	if err := scanner.Err(); err != nil {
		return nil, malformed(id, sbt.DuplicatedLocus, FragmentsFile, err)
	}
	return fragments, nil
}

func malformed(id string, locus sbt.Locus, file string, err error) error {
	return &sbt.MalformedEvidenceError{Sample: id, Locus: locus, Reason: fmt.Sprintf("%s: %v", file, err)}
}

func stamp(err error, id string) error {
	if me, ok := err.(*sbt.MalformedEvidenceError); ok {
		me.Sample = id
	}
	return err
}
