package scoring

import "math"

// Activity identifies one simple (non-publication) activity field of an application.
type Activity int

const (
	// Teaching
	LessonsPerYear Activity = iota
	GuidedWorks
	PracticalWorks
	OnlineLessons

	// Pedagogical activities
	PrintedLessons
	PedagogicalPublications
	SupervisionYears
	InternshipFollowUp
	UniversityEnvironment
	PedagogicalAnimation
	ThesisSupervision

	// Patents
	InternationalPatents
	NationalPatents

	// Conferences
	InternationalConferences
	IndexedProceedings
	NationalConferences

	// Other research activities
	PhDSupervision
	ScientificPublications
	PhDTraining
	EventOrganization
	InternationalProjects
	ScientificActivities
	ResearchActivities

	NumActivities int = iota
)

var activityKeys = [NumActivities]string{
	LessonsPerYear:           "lessonsPerYear",
	GuidedWorks:              "guidedWorks",
	PracticalWorks:           "practicalWorks",
	OnlineLessons:            "onlineLessons",
	PrintedLessons:           "printedLessons",
	PedagogicalPublications:  "pedagogicalPublications",
	SupervisionYears:         "supervisionYears",
	InternshipFollowUp:       "internshipFollowUp",
	UniversityEnvironment:    "universityEnvironment",
	PedagogicalAnimation:     "pedagogicalAnimation",
	ThesisSupervision:        "thesisSupervision",
	InternationalPatents:     "internationalPatents",
	NationalPatents:          "nationalPatents",
	InternationalConferences: "internationalConferences",
	IndexedProceedings:       "indexedProceedings",
	NationalConferences:      "nationalConferences",
	PhDSupervision:           "phdSupervision",
	ScientificPublications:   "scientificPublications",
	PhDTraining:              "phdTraining",
	EventOrganization:        "eventOrganization",
	InternationalProjects:    "internationalProjects",
	ScientificActivities:     "scientificActivities",
	ResearchActivities:       "researchActivities",
}

// Key returns the wire name of the activity (e.g. "lessonsPerYear").
func (a Activity) Key() string {
	if a < 0 || int(a) >= NumActivities {
		return ""
	}
	return activityKeys[a]
}

// Activities returns every activity in table order.
func Activities() []Activity {
	out := make([]Activity, NumActivities)
	for i := range out {
		out[i] = Activity(i)
	}
	return out
}

// ActivityByKey looks up an activity by its wire name.
func ActivityByKey(key string) (Activity, bool) {
	for i, k := range activityKeys {
		if k == key {
			return Activity(i), true
		}
	}
	return 0, false
}

// Tier is a publication quality class.
type Tier int

const (
	TierAPlus Tier = iota
	TierA
	TierB
	TierC

	NumTiers int = iota
)

var tierKeys = [NumTiers]string{
	TierAPlus: "APlus",
	TierA:     "A",
	TierB:     "B",
	TierC:     "C",
}

var tierNames = [NumTiers]string{
	TierAPlus: "A+",
	TierA:     "A",
	TierB:     "B",
	TierC:     "C",
}

// Key returns the token used in wire field names, e.g. "APlus" in categoryAPlusFirst.
func (t Tier) Key() string {
	if t < 0 || int(t) >= NumTiers {
		return ""
	}
	return tierKeys[t]
}

// String returns the display name of the tier ("A+", "A", "B", "C").
func (t Tier) String() string {
	if t < 0 || int(t) >= NumTiers {
		return "?"
	}
	return tierNames[t]
}

// Tiers returns the four tiers from highest to lowest.
func Tiers() []Tier {
	return []Tier{TierAPlus, TierA, TierB, TierC}
}

// TierByKey looks up a tier by its wire token ("APlus", "A", ...).
func TierByKey(key string) (Tier, bool) {
	for i, k := range tierKeys {
		if k == key {
			return Tier(i), true
		}
	}
	return 0, false
}

// Authorship weights by rank: first author 100%, second 50%, third or later 25%.
const (
	firstAuthorWeight  = 1.0
	secondAuthorWeight = 0.5
	thirdAuthorWeight  = 0.25
)

// lineItem is one row of the computation in table order: either a simple
// activity or a publication tier.
type lineItem struct {
	activity    Activity
	tier        Tier
	publication bool
}

// lineOrder fixes the order in which contributions are produced. Publication
// tiers sit between the pedagogical activities and patents; the stable sort
// in Compute keeps this order among equal point values.
var lineOrder = func() []lineItem {
	var items []lineItem
	for a := LessonsPerYear; a <= ThesisSupervision; a++ {
		items = append(items, lineItem{activity: a})
	}
	for _, t := range Tiers() {
		items = append(items, lineItem{tier: t, publication: true})
	}
	for a := InternationalPatents; int(a) < NumActivities; a++ {
		items = append(items, lineItem{activity: a})
	}
	return items
}()

// activityPoints applies a rule to a simple count. Negative counts score nothing.
func activityPoints(count int, rule PointRule) float64 {
	if count <= 0 {
		return 0
	}
	return rule.apply(float64(count) * rule.PointsPerUnit)
}

// tierPoints applies the authorship weighting and the tier cap.
func tierPoints(a Authorship, rule PointRule) float64 {
	a = a.normalized()
	raw := float64(a.First)*rule.PointsPerUnit*firstAuthorWeight +
		float64(a.Second)*rule.PointsPerUnit*secondAuthorWeight +
		float64(a.ThirdPlus)*rule.PointsPerUnit*thirdAuthorWeight
	return rule.apply(raw)
}

// roundPoints rounds half up, matching how points are displayed on the form.
func roundPoints(v float64) int {
	return int(math.Floor(v + 0.5))
}
