package scoring

import (
	"sort"
	"strings"
)

// BreakdownEntry is one line of the itemized result.
type BreakdownEntry struct {
	Key              string      `json:"key"`
	Label            string      `json:"label"`
	Points           int         `json:"points"`
	UnitCount        int         `json:"unitCount"`
	AuthorshipDetail *Authorship `json:"authorshipDetail,omitempty"`
}

// ScoreResult is the outcome of scoring one application. It is a value and is
// never modified after Compute returns it.
type ScoreResult struct {
	TotalPoints            int              `json:"totalPoints"`
	Eligible               bool             `json:"eligible"`
	EligibilityReason      string           `json:"eligibilityReason"`
	Breakdown              []BreakdownEntry `json:"breakdown"`
	TeachingYears          int              `json:"teachingYears"`
	HasRequiredPublication bool             `json:"hasRequiredPublication"`
}

// Thresholds are the minimums an application must reach to be eligible.
type Thresholds struct {
	MinTeachingYears int `json:"minTeachingYears"`
	MinTotalPoints   int `json:"minTotalPoints"`
}

// DefaultThresholds returns the regulation minimums.
func DefaultThresholds() Thresholds {
	return Thresholds{MinTeachingYears: 3, MinTotalPoints: 350}
}

// Engine scores application records against a fixed point table. An Engine
// holds no mutable state and is safe for concurrent use.
type Engine struct {
	table      *PointTable
	thresholds Thresholds
	lang       Language
}

// NewEngine creates an Engine. The table is copied so later changes to the
// caller's value cannot leak into scoring.
func NewEngine(table PointTable, thresholds Thresholds, lang Language) *Engine {
	t := table.copy()
	return &Engine{table: &t, thresholds: thresholds, lang: lang}
}

// Table returns the engine's point table.
func (e *Engine) Table() PointTable {
	return e.table.copy()
}

// Thresholds returns the engine's eligibility minimums.
func (e *Engine) Thresholds() Thresholds {
	return e.thresholds
}

// Language returns the language of labels and reasons.
func (e *Engine) Language() Language {
	return e.lang
}

// Validate enforces the authoritative preconditions: both names present and
// the minimum teaching years reached.
func (e *Engine) Validate(rec ApplicationRecord) error {
	if strings.TrimSpace(rec.FirstName) == "" || strings.TrimSpace(rec.LastName) == "" {
		return &ValidationError{Code: CodeMissingName}
	}
	if rec.TeachingYears < e.thresholds.MinTeachingYears {
		return &ValidationError{Code: CodeInsufficientTeachingYears, Field: "teachingYears"}
	}
	return nil
}

// ComputeStrict validates the record and scores it.
func (e *Engine) ComputeStrict(rec ApplicationRecord) (ScoreResult, error) {
	if err := e.Validate(rec); err != nil {
		return ScoreResult{}, err
	}
	return e.Compute(rec), nil
}

// Compute scores a record without validating it. It never fails: low teaching
// years or missing names only affect the eligibility verdict.
func (e *Engine) Compute(rec ApplicationRecord) ScoreResult {
	cat := catalogFor(e.lang)

	var total float64
	breakdown := make([]BreakdownEntry, 0, len(lineOrder))

	for _, item := range lineOrder {
		if item.publication {
			detail := rec.Publication(item.tier)
			points := tierPoints(detail, e.table.tiers[item.tier])
			total += points
			if points > 0 {
				breakdown = append(breakdown, BreakdownEntry{
					Key:              RuleKey(item.tier),
					Label:            cat.tiers[item.tier],
					Points:           roundPoints(points),
					UnitCount:        detail.Total(),
					AuthorshipDetail: &detail,
				})
			}
			continue
		}

		count := rec.Count(item.activity)
		points := activityPoints(count, e.table.activities[item.activity])
		total += points
		if points > 0 {
			breakdown = append(breakdown, BreakdownEntry{
				Key:       item.activity.Key(),
				Label:     cat.activities[item.activity],
				Points:    roundPoints(points),
				UnitCount: count,
			})
		}
	}

	sort.SliceStable(breakdown, func(i, j int) bool {
		return breakdown[i].Points > breakdown[j].Points
	})

	years := nonNegative(rec.TeachingYears)
	hasPublication := HasRequiredPublication(rec)
	eligible, reason := e.verdict(total, years, hasPublication)

	return ScoreResult{
		TotalPoints:            roundPoints(total),
		Eligible:               eligible,
		EligibilityReason:      reason,
		Breakdown:              breakdown,
		TeachingYears:          years,
		HasRequiredPublication: hasPublication,
	}
}
