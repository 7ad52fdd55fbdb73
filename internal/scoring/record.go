package scoring

// Specialization values recognised by the mandatory-publication rule.
const (
	SpecializationSciences   = "sciences"
	SpecializationHumanities = "humanities"
)

// Authorship counts a candidate's publications in one tier by author rank.
type Authorship struct {
	First     int `json:"first"`
	Second    int `json:"second"`
	ThirdPlus int `json:"thirdPlus"`
}

// Total is the number of publications regardless of rank.
func (a Authorship) Total() int {
	n := a.normalized()
	return n.First + n.Second + n.ThirdPlus
}

func (a Authorship) normalized() Authorship {
	return Authorship{
		First:     nonNegative(a.First),
		Second:    nonNegative(a.Second),
		ThirdPlus: nonNegative(a.ThirdPlus),
	}
}

// ApplicationRecord is a candidate's self-reported activity counts.
type ApplicationRecord struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`

	// Shown on reports only; never scored.
	University          string `json:"university,omitempty"`
	Department          string `json:"department,omitempty"`
	SpecializationField string `json:"specializationField,omitempty"`
	Email               string `json:"email,omitempty"`

	Specialization string `json:"specialization"`
	TeachingYears  int    `json:"teachingYears"`

	Activities   [NumActivities]int    `json:"-"`
	Publications [NumTiers]Authorship `json:"-"`
}

// Count returns the recorded count for an activity, floored at zero.
func (r *ApplicationRecord) Count(a Activity) int {
	return nonNegative(r.Activities[a])
}

// SetCount records the count for an activity.
func (r *ApplicationRecord) SetCount(a Activity, n int) {
	r.Activities[a] = n
}

// Publication returns the authorship counts for a tier, floored at zero.
func (r *ApplicationRecord) Publication(t Tier) Authorship {
	return r.Publications[t].normalized()
}

// SetPublication records the authorship counts for a tier.
func (r *ApplicationRecord) SetPublication(t Tier, a Authorship) {
	r.Publications[t] = a
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
