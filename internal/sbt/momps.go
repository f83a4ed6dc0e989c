package sbt

// DuplicateResolution is the audit record of one duplicate-locus
// decision: every candidate with its support/oppose tally, and the
// promoted display value when the evidence singled one out. It is
// retained on the SampleResult even when the call stays ambiguous.
type DuplicateResolution struct {
	Locus      Locus
	Candidates []AlleleCandidate
	Promoted   string
}

// resolveDuplicate applies primer-orientation evidence to an ambiguous
// duplicated-locus call. A fragment whose reverse primer matches the
// expected orientation supports its candidate as the primary copy; any
// other orientation opposes it. Promotion needs direct support: either
// exactly one candidate has a positive supporting count, or one
// candidate's count strictly exceeds SupportRatio times every rival's.
// Ties and all-zero tallies stay ambiguous; zero tallies are expected
// whenever the fragment length cannot span the distance between the
// variable site and the primer position, and are a documented limit of
// the evidence, not a defect.
//
// Calls in any other state pass through untouched with no resolution
// record. The decision is a pure function of its inputs.
func resolveDuplicate(call LocusCall, re *ReadEvidence, cfg Config) (LocusCall, *DuplicateResolution) {
	if call.State != StateAmbiguous {
		return call, nil
	}

	tallies := make(map[string]*PrimerTally, len(call.Candidates))
	for _, c := range call.Candidates {
		tallies[c.Sequence] = &PrimerTally{}
	}
	if re != nil {
		seqByID := make(map[string]string, len(re.Candidates))
		for _, c := range re.Candidates {
			seqByID[c.ID] = normalizeSeq(c.Sequence)
		}
		for _, f := range re.Fragments {
			tally, ok := tallies[seqByID[f.Candidate]]
			if !ok {
				continue
			}
			if f.Orientation == cfg.ExpectedOrientation {
				tally.Support++
			} else {
				tally.Oppose++
			}
		}
	}

	cands := make([]AlleleCandidate, len(call.Candidates))
	copy(cands, call.Candidates)
	for i := range cands {
		cands[i].Tally = *tallies[cands[i].Sequence]
	}
	res := &DuplicateResolution{Locus: call.Locus, Candidates: cands}

	winner := pickPrimary(cands, cfg.SupportRatio)
	if winner < 0 {
		return AmbiguousCall(call.Locus, cands), res
	}
	promoted := cands[winner]
	res.Promoted = promoted.Display()
	if promoted.Allele != "" {
		return ResolvedCall(call.Locus, promoted.Allele), res
	}
	return NovelCall(call.Locus, promoted.Sequence), res
}

// pickPrimary returns the index of the candidate the tallies promote, or
// -1 when the evidence cannot single one out.
func pickPrimary(cands []AlleleCandidate, ratio float64) int {
	positive := -1
	count := 0
	for i, c := range cands {
		if c.Tally.Support > 0 {
			positive = i
			count++
		}
	}
	if count == 1 {
		return positive
	}
	if count == 0 || ratio <= 0 {
		return -1
	}

	lead := 0
	for i := 1; i < len(cands); i++ {
		if cands[i].Tally.Support > cands[lead].Tally.Support {
			lead = i
		}
	}
	for i, c := range cands {
		if i == lead {
			continue
		}
		if float64(cands[lead].Tally.Support) <= ratio*float64(c.Tally.Support) {
			return -1
		}
	}
	return lead
}
