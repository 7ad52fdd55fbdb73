package intake

import "github.com/MikeSquared-Agency/Qualify/internal/scoring"

// Identity and profile keys of a request body.
const (
	KeyFirstName           = "firstName"
	KeyLastName            = "lastName"
	KeyUniversity          = "university"
	KeyDepartment          = "department"
	KeySpecializationField = "specializationField"
	KeyEmail               = "email"
	KeySpecialization      = "specialization"
	KeyTeachingYears       = "teachingYears"
)

// Authorship rank suffixes of the publication keys, e.g. categoryAPlusFirst.
const (
	rankFirst  = "First"
	rankSecond = "Second"
	rankThird  = "Third"
)

var textKeys = []string{
	KeyFirstName,
	KeyLastName,
	KeyUniversity,
	KeyDepartment,
	KeySpecializationField,
	KeyEmail,
	KeySpecialization,
}

// strictKeys are the numeric fields whose populated values must parse as
// integers on the authoritative path. Other numeric fields are only coerced.
var strictKeys = []string{
	KeyTeachingYears,
	scoring.LessonsPerYear.Key(),
	scoring.GuidedWorks.Key(),
	scoring.PracticalWorks.Key(),
	PublicationKey(scoring.TierAPlus, rankFirst),
	PublicationKey(scoring.TierAPlus, rankSecond),
	PublicationKey(scoring.TierAPlus, rankThird),
}

// PublicationKey builds the request key for one tier and author rank.
func PublicationKey(tier scoring.Tier, rank string) string {
	return scoring.RuleKey(tier) + rank
}

// PublicationKeys returns the three request keys of a tier in rank order.
func PublicationKeys(tier scoring.Tier) [3]string {
	return [3]string{
		PublicationKey(tier, rankFirst),
		PublicationKey(tier, rankSecond),
		PublicationKey(tier, rankThird),
	}
}

// NumericKeys returns every numeric request key: teaching years, the simple
// activities in table order, then the publication counts by tier.
func NumericKeys() []string {
	keys := make([]string, 0, 1+scoring.NumActivities+3*scoring.NumTiers)
	keys = append(keys, KeyTeachingYears)
	for _, a := range scoring.Activities() {
		keys = append(keys, a.Key())
	}
	for _, tier := range scoring.Tiers() {
		pk := PublicationKeys(tier)
		keys = append(keys, pk[:]...)
	}
	return keys
}

// Keys returns the full fixed key set of a request body.
func Keys() []string {
	out := make([]string, 0, len(textKeys)+1+scoring.NumActivities+3*scoring.NumTiers)
	out = append(out, textKeys...)
	return append(out, NumericKeys()...)
}

// maxValues are the largest values the application form accepts.
var maxValues = map[string]int{
	KeyTeachingYears:                  50,
	"lessonsPerYear":                  50,
	"guidedWorks":                     50,
	"practicalWorks":                  50,
	"onlineLessons":                   20,
	"printedLessons":                  10,
	"pedagogicalPublications":         10,
	"supervisionYears":                10,
	"internshipFollowUp":              10,
	"universityEnvironment":           5,
	"pedagogicalAnimation":            10,
	"thesisSupervision":               20,
	"internationalPatents":            10,
	"nationalPatents":                 10,
	"internationalConferences":        20,
	"indexedProceedings":              10,
	"nationalConferences":             20,
	"phdSupervision":                  10,
	"scientificPublications":          10,
	"phdTraining":                     10,
	"eventOrganization":               10,
	"internationalProjects":           10,
	"scientificActivities":            10,
	"researchActivities":              10,
	"categoryAPlusFirst":              20,
	"categoryAPlusSecond":             20,
	"categoryAPlusThird":              20,
	"categoryAFirst":                  20,
	"categoryASecond":                 20,
	"categoryAThird":                  20,
	"categoryBFirst":                  20,
	"categoryBSecond":                 20,
	"categoryBThird":                  20,
	"categoryCFirst":                  20,
	"categoryCSecond":                 20,
	"categoryCThird":                  20,
}

// MaxValue returns the form maximum for a numeric key.
func MaxValue(key string) (int, bool) {
	v, ok := maxValues[key]
	return v, ok
}
