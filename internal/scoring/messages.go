package scoring

import "fmt"

// Language selects the catalog used for breakdown labels and eligibility reasons.
type Language string

const (
	Arabic  Language = "ar"
	English Language = "en"
)

// ParseLanguage maps a configured language code to a supported Language.
// Unknown codes fall back to Arabic, the language of the regulation.
func ParseLanguage(code string) Language {
	switch Language(code) {
	case English:
		return English
	default:
		return Arabic
	}
}

type catalog struct {
	activities [NumActivities]string
	tiers      [NumTiers]string

	eligible           string
	notEligiblePrefix  string
	separator          string
	insufficientPoints string
	insufficientYears  string
	missingPublication string

	errMissingName    string
	errMinYears       string // %d: minimum teaching years
	errInvalidNumeric string // %s: field key
}

var catalogs = map[Language]*catalog{
	Arabic: {
		activities: [NumActivities]string{
			LessonsPerYear:           "الدروس السنوية",
			GuidedWorks:              "الأعمال الموجهة",
			PracticalWorks:           "الأعمال التطبيقية",
			OnlineLessons:            "دروس عبر الخط",
			PrintedLessons:           "مطبوعة دروس",
			PedagogicalPublications:  "نشر مؤلفات بيداغوجية",
			SupervisionYears:         "القيام بالوصاية",
			InternshipFollowUp:       "متابعة الطلبة المتربصين",
			UniversityEnvironment:    "المشاركة في العلاقة مع المحيط",
			PedagogicalAnimation:     "المشاركة في التنشيط البيداغوجي",
			ThesisSupervision:        "تأطير مذكرات",
			InternationalPatents:     "براءات الاختراع الدولية",
			NationalPatents:          "براءات الاختراع الوطنية",
			InternationalConferences: "المداخلات الدولية",
			IndexedProceedings:       "مداخلات في proceedings مفهرسة",
			NationalConferences:      "المداخلات الوطنية",
			PhDSupervision:           "الإشراف على أطروحات الدكتوراه",
			ScientificPublications:   "نشر مؤلفات علمية",
			PhDTraining:              "المشاركة في التكوين في الدكتوراه",
			EventOrganization:        "المشاركة في تنظيم نشاط علمي",
			InternationalProjects:    "مشاريع تعاون دولية",
			ScientificActivities:     "المشاركة في النشاطات العلمية",
			ResearchActivities:       "المشاركة في نشاطات البحث",
		},
		tiers: [NumTiers]string{
			TierAPlus: `مقالات الصنف "أ+" الدولية`,
			TierA:     `مقالات الصنف "أ" الدولية`,
			TierB:     `مقالات الصنف "ب" الدولية`,
			TierC:     `مقالات الصنف "ج" الوطنية`,
		},
		eligible:           "يحقق جميع المتطلبات: نقاط كافية، سنوات تدريس، مقال إجباري",
		notEligiblePrefix:  "غير مؤهل: ",
		separator:          "، ",
		insufficientPoints: "نقاط غير كافية",
		insufficientYears:  "سنوات تدريس غير كافية",
		missingPublication: "لا يوجد مقال إجباري",
		errMissingName:     "الاسم الأول والاسم الأخير مطلوبان",
		errMinYears:        "الحد الأدنى لسنوات التدريس هو %d سنوات",
		errInvalidNumeric:  "القيمة في %s غير صالحة",
	},
	English: {
		activities: [NumActivities]string{
			LessonsPerYear:           "Annual lectures",
			GuidedWorks:              "Tutorials",
			PracticalWorks:           "Practical sessions",
			OnlineLessons:            "Online lessons",
			PrintedLessons:           "Printed course notes",
			PedagogicalPublications:  "Pedagogical books",
			SupervisionYears:         "Student mentoring",
			InternshipFollowUp:       "Internship follow-up",
			UniversityEnvironment:    "University outreach",
			PedagogicalAnimation:     "Pedagogical coordination",
			ThesisSupervision:        "Dissertation supervision",
			InternationalPatents:     "International patents",
			NationalPatents:          "National patents",
			InternationalConferences: "International conference talks",
			IndexedProceedings:       "Talks in indexed proceedings",
			NationalConferences:      "National conference talks",
			PhDSupervision:           "PhD thesis supervision",
			ScientificPublications:   "Scientific books",
			PhDTraining:              "Doctoral training",
			EventOrganization:        "Scientific event organization",
			InternationalProjects:    "International cooperation projects",
			ScientificActivities:     "Scientific activities",
			ResearchActivities:       "Research activities",
		},
		tiers: [NumTiers]string{
			TierAPlus: "International articles, class A+",
			TierA:     "International articles, class A",
			TierB:     "International articles, class B",
			TierC:     "National articles, class C",
		},
		eligible:           "Meets all requirements: sufficient points, teaching years and mandatory publication",
		notEligiblePrefix:  "Not eligible: ",
		separator:          ", ",
		insufficientPoints: "insufficient points",
		insufficientYears:  "insufficient teaching years",
		missingPublication: "no mandatory publication",
		errMissingName:     "first name and last name are required",
		errMinYears:        "at least %d teaching years are required",
		errInvalidNumeric:  "the value of %s is not a valid number",
	},
}

func catalogFor(lang Language) *catalog {
	if c, ok := catalogs[lang]; ok {
		return c
	}
	return catalogs[Arabic]
}

// ActivityLabel returns the display label of an activity in the given language.
func ActivityLabel(lang Language, a Activity) string {
	return catalogFor(lang).activities[a]
}

// TierLabel returns the display label of a publication tier in the given language.
func TierLabel(lang Language, t Tier) string {
	return catalogFor(lang).tiers[t]
}

// Describe renders a validation error as a sentence in the engine's language.
func (e *Engine) Describe(ve *ValidationError) string {
	cat := catalogFor(e.lang)
	switch ve.Code {
	case CodeMissingName:
		return cat.errMissingName
	case CodeInsufficientTeachingYears:
		return fmt.Sprintf(cat.errMinYears, e.thresholds.MinTeachingYears)
	case CodeInvalidNumericField:
		return fmt.Sprintf(cat.errInvalidNumeric, ve.Field)
	default:
		return ve.Error()
	}
}
