package scoring

import "strings"

// HasRequiredPublication applies the mandatory-publication rule. Sciences
// candidates need at least one A+, A or B article; humanities candidates may
// also satisfy it with a C article. Any other specialization never does.
func HasRequiredPublication(rec ApplicationRecord) bool {
	upper := rec.Publication(TierAPlus).Total() +
		rec.Publication(TierA).Total() +
		rec.Publication(TierB).Total()

	switch rec.Specialization {
	case SpecializationSciences:
		return upper > 0
	case SpecializationHumanities:
		return upper+rec.Publication(TierC).Total() > 0
	default:
		return false
	}
}

// verdict compares the unrounded total against the points threshold, as the
// regulation's calculator always has.
func (e *Engine) verdict(total float64, years int, hasPublication bool) (bool, string) {
	cat := catalogFor(e.lang)

	pointsOK := total >= float64(e.thresholds.MinTotalPoints)
	yearsOK := years >= e.thresholds.MinTeachingYears
	if pointsOK && yearsOK && hasPublication {
		return true, cat.eligible
	}

	var reasons []string
	if !pointsOK {
		reasons = append(reasons, cat.insufficientPoints)
	}
	if !yearsOK {
		reasons = append(reasons, cat.insufficientYears)
	}
	if !hasPublication {
		reasons = append(reasons, cat.missingPublication)
	}
	return false, cat.notEligiblePrefix + strings.Join(reasons, cat.separator)
}
