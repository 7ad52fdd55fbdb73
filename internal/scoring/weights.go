package scoring

import (
	"fmt"
	"math"
)

// PointRule is the value of one unit of an activity and an optional ceiling
// on the activity's total contribution. A nil Cap means uncapped.
type PointRule struct {
	PointsPerUnit float64  `json:"pointsPerUnit" yaml:"points"`
	Cap           *float64 `json:"cap" yaml:"cap"`
}

// Capped builds a rule with a ceiling.
func Capped(points, limit float64) PointRule {
	return PointRule{PointsPerUnit: points, Cap: &limit}
}

// Uncapped builds a rule without a ceiling.
func Uncapped(points float64) PointRule {
	return PointRule{PointsPerUnit: points}
}

func (r PointRule) apply(raw float64) float64 {
	if r.Cap != nil && raw > *r.Cap {
		return *r.Cap
	}
	return raw
}

func (r PointRule) clone() PointRule {
	if r.Cap == nil {
		return r
	}
	c := *r.Cap
	return PointRule{PointsPerUnit: r.PointsPerUnit, Cap: &c}
}

// PointTable holds the regulation's point values. A table is a value: copies
// never share caps with the original, so a table handed to an Engine cannot be
// changed from outside.
type PointTable struct {
	activities [NumActivities]PointRule
	tiers      [NumTiers]PointRule
}

// DefaultPointTable returns the regulation-defined point values.
func DefaultPointTable() PointTable {
	var t PointTable

	// Teaching
	t.activities[LessonsPerYear] = Capped(15, 45)
	t.activities[GuidedWorks] = Capped(8, 24)
	t.activities[PracticalWorks] = Capped(5, 15)
	t.activities[OnlineLessons] = Uncapped(15)

	// Pedagogical activities
	t.activities[PrintedLessons] = Capped(12, 24)
	t.activities[PedagogicalPublications] = Uncapped(30)
	t.activities[SupervisionYears] = Capped(3, 9)
	t.activities[InternshipFollowUp] = Capped(6, 18)
	t.activities[UniversityEnvironment] = Uncapped(5)
	t.activities[PedagogicalAnimation] = Uncapped(5)
	t.activities[ThesisSupervision] = Capped(9, 27)

	// Publications
	t.tiers[TierAPlus] = Uncapped(100)
	t.tiers[TierA] = Uncapped(90)
	t.tiers[TierB] = Uncapped(60)
	t.tiers[TierC] = Capped(40, 80)

	// Patents
	t.activities[InternationalPatents] = Uncapped(40)
	t.activities[NationalPatents] = Uncapped(20)

	// Conferences
	t.activities[InternationalConferences] = Capped(20, 40)
	t.activities[IndexedProceedings] = Uncapped(5)
	t.activities[NationalConferences] = Capped(10, 20)

	// Other research activities
	t.activities[PhDSupervision] = Uncapped(20)
	t.activities[ScientificPublications] = Uncapped(20)
	t.activities[PhDTraining] = Uncapped(15)
	t.activities[EventOrganization] = Capped(5, 10)
	t.activities[InternationalProjects] = Capped(5, 10)
	t.activities[ScientificActivities] = Capped(5, 15)
	t.activities[ResearchActivities] = Capped(5, 10)

	return t
}

// Activity returns the rule for a simple activity.
func (t *PointTable) Activity(a Activity) PointRule {
	return t.activities[a].clone()
}

// Tier returns the rule for a publication tier.
func (t *PointTable) Tier(tier Tier) PointRule {
	return t.tiers[tier].clone()
}

// WithOverrides returns a copy of the table with rules replaced by key. Keys are
// activity wire names ("lessonsPerYear") or "category" + tier key ("categoryAPlus").
func (t PointTable) WithOverrides(overrides map[string]PointRule) (PointTable, error) {
	out := t.copy()
	for key, rule := range overrides {
		if a, ok := ActivityByKey(key); ok {
			out.activities[a] = rule.clone()
			continue
		}
		if tier, ok := tierByRuleKey(key); ok {
			out.tiers[tier] = rule.clone()
			continue
		}
		return PointTable{}, fmt.Errorf("unknown point rule %q", key)
	}
	if err := out.Validate(); err != nil {
		return PointTable{}, err
	}
	return out, nil
}

// Validate checks that no rule is negative or non-finite.
func (t *PointTable) Validate() error {
	check := func(name string, r PointRule) error {
		if r.PointsPerUnit < 0 || math.IsNaN(r.PointsPerUnit) || math.IsInf(r.PointsPerUnit, 0) {
			return fmt.Errorf("rule %s: invalid points per unit %v", name, r.PointsPerUnit)
		}
		if r.Cap != nil && (*r.Cap < 0 || math.IsNaN(*r.Cap) || math.IsInf(*r.Cap, 0)) {
			return fmt.Errorf("rule %s: invalid cap %v", name, *r.Cap)
		}
		return nil
	}
	for _, a := range Activities() {
		if err := check(a.Key(), t.activities[a]); err != nil {
			return err
		}
	}
	for _, tier := range Tiers() {
		if err := check(RuleKey(tier), t.tiers[tier]); err != nil {
			return err
		}
	}
	return nil
}

// Rules returns every rule keyed by its override key, for display.
func (t *PointTable) Rules() map[string]PointRule {
	out := make(map[string]PointRule, NumActivities+NumTiers)
	for _, a := range Activities() {
		out[a.Key()] = t.Activity(a)
	}
	for _, tier := range Tiers() {
		out[RuleKey(tier)] = t.Tier(tier)
	}
	return out
}

// RuleKey is the override key of a tier rule, e.g. "categoryAPlus".
func RuleKey(tier Tier) string {
	return "category" + tier.Key()
}

func tierByRuleKey(key string) (Tier, bool) {
	for _, tier := range Tiers() {
		if RuleKey(tier) == key {
			return tier, true
		}
	}
	return 0, false
}

func (t PointTable) copy() PointTable {
	var out PointTable
	for i := range t.activities {
		out.activities[i] = t.activities[i].clone()
	}
	for i := range t.tiers {
		out.tiers[i] = t.tiers[i].clone()
	}
	return out
}
