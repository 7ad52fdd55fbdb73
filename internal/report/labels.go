package report

import "github.com/MikeSquared-Agency/Qualify/internal/scoring"

type labels struct {
	Dir                 string
	Title               string
	Subtitle            string
	Decisions           string
	GeneratedAt         string
	LegalNoticeTitle    string
	LegalNotice         string
	PersonalInfo        string
	FullName            string
	University          string
	Department          string
	SpecializationField string
	Specialization      string
	TeachingYears       string
	YearsUnit           string
	Publications        string
	FirstAuthor         string
	SecondAuthor        string
	ThirdAuthor         string
	ArticlesUnit        string
	AuthorshipRule      string
	PointsSummary       string
	NoPoints            string
	Total               string
	PointsUnit          string
	FinalResult         string
	Eligible            string
	NotEligible         string
	Minimum             string
	Notes               string
	NoteSciences        string
	NoteHumanities      string
	NoteAlphabetical    string
	NoteUnofficial      string
	Unspecified         string
	SciencesLabel       string
	HumanitiesLabel     string
	HTMLFilenamePrefix  string
	JSONFilenamePrefix  string
}

var labelSets = map[scoring.Language]*labels{
	scoring.Arabic: {
		Dir:                 "rtl",
		Title:               "تقرير نقاط التأهيل الجامعي للأستاذ الباحث",
		Subtitle:            "بناءً على شبكة التقييم الخاصة بالأستاذ الباحث",
		Decisions:           "القرارات الوزارية المعمول بها",
		GeneratedAt:         "تم إنشاء التقرير في",
		LegalNoticeTitle:    "ملاحظة قانونية",
		LegalNotice:         "هذا التقرير مبني على شبكة التقييم الخاصة بالأستاذ الباحث المعتمدة من قبل وزارة التعليم العالي والبحث العلمي. هذا التقرير للإرشاد فقط ولا يغني عن الرجوع للنصوص القانونية الرسمية.",
		PersonalInfo:        "البيانات الشخصية",
		FullName:            "الاسم الكامل",
		University:          "الجامعة",
		Department:          "القسم/المخبر",
		SpecializationField: "التخصص الدقيق",
		Specialization:      "التخصص الرئيسي",
		TeachingYears:       "سنوات التدريس",
		YearsUnit:           "سنة",
		Publications:        "المنشورات العلمية المدخلة",
		FirstAuthor:         "مؤلف أول",
		SecondAuthor:        "مؤلف ثاني",
		ThirdAuthor:         "مؤلف ثالث+",
		ArticlesUnit:        "مقال",
		AuthorshipRule:      "يتم احتساب النقاط كالتالي: المؤلف الأول (100%)، المؤلف الثاني (50%)، المؤلف الثالث فأكثر (25%)",
		PointsSummary:       "ملخص النقاط المحسوبة",
		NoPoints:            "لا توجد نقاط محسوبة",
		Total:               "المجموع الإجمالي",
		PointsUnit:          "نقطة",
		FinalResult:         "النتيجة النهائية للتأهيل",
		Eligible:            "مؤهل للتأهيل الجامعي",
		NotEligible:         "غير مؤهل للتأهيل",
		Minimum:             "الحد الأدنى المطلوب",
		Notes:               "ملاحظات هامة",
		NoteSciences:        `للعلوم والتكنولوجيا: يجب نشر مقال في مجلات الصنف "أ+" أو "أ" أو "ب".`,
		NoteHumanities:      `للعلوم الإنسانية: يجب نشر مقال في مجلات الصنف "أ+" أو "أ" أو "ب" أو "ج".`,
		NoteAlphabetical:    "يجب على المرشح أن يبرر مركزه بين المؤلفين المشاركين بالنسبة للمجالات التي تعتمد الترتيب الأبجدي.",
		NoteUnofficial:      "هذا التقرير غير رسمي ولا يمثل أي جهة حكومية.",
		Unspecified:         "غير محدد",
		SciencesLabel:       "العلوم والتكنولوجيا",
		HumanitiesLabel:     "العلوم الإنسانية والاجتماعية",
		HTMLFilenamePrefix:  "تقرير_نقاط",
		JSONFilenamePrefix:  "تأهيل_جامعي",
	},
	scoring.English: {
		Dir:                 "ltr",
		Title:               "University Qualification Points Report",
		Subtitle:            "Based on the research professor evaluation grid",
		Decisions:           "Applicable ministerial decisions",
		GeneratedAt:         "Generated at",
		LegalNoticeTitle:    "Legal notice",
		LegalNotice:         "This report follows the research professor evaluation grid adopted by the Ministry of Higher Education and Scientific Research. It is guidance only and does not replace the official texts.",
		PersonalInfo:        "Personal information",
		FullName:            "Full name",
		University:          "University",
		Department:          "Department / laboratory",
		SpecializationField: "Field",
		Specialization:      "Specialization",
		TeachingYears:       "Teaching years",
		YearsUnit:           "years",
		Publications:        "Declared publications",
		FirstAuthor:         "First author",
		SecondAuthor:        "Second author",
		ThirdAuthor:         "Third author or later",
		ArticlesUnit:        "articles",
		AuthorshipRule:      "Points are weighted by author rank: first author 100%, second 50%, third or later 25%.",
		PointsSummary:       "Points breakdown",
		NoPoints:            "No points scored",
		Total:               "Total",
		PointsUnit:          "points",
		FinalResult:         "Final result",
		Eligible:            "Eligible for university qualification",
		NotEligible:         "Not eligible",
		Minimum:             "Minimum required",
		Notes:               "Important notes",
		NoteSciences:        "Sciences and technology: an article in an A+, A or B journal is mandatory.",
		NoteHumanities:      "Humanities: an article in an A+, A, B or C journal is mandatory.",
		NoteAlphabetical:    "In fields that list co-authors alphabetically, candidates must justify their position.",
		NoteUnofficial:      "This report is unofficial and does not represent any government body.",
		Unspecified:         "Not specified",
		SciencesLabel:       "Sciences and technology",
		HumanitiesLabel:     "Humanities and social sciences",
		HTMLFilenamePrefix:  "qualification_report",
		JSONFilenamePrefix:  "qualification",
	},
}

func labelsFor(lang scoring.Language) *labels {
	if l, ok := labelSets[lang]; ok {
		return l
	}
	return labelSets[scoring.Arabic]
}

// SpecializationLabel returns the display name of a specialization value.
// Unrecognised values are shown as submitted.
func SpecializationLabel(lang scoring.Language, specialization string) string {
	l := labelsFor(lang)
	switch specialization {
	case scoring.SpecializationSciences:
		return l.SciencesLabel
	case scoring.SpecializationHumanities:
		return l.HumanitiesLabel
	case "":
		return l.Unspecified
	default:
		return specialization
	}
}
