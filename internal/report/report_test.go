package report

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Qualify/internal/scoring"
)

func sampleRecord() scoring.ApplicationRecord {
	rec := scoring.ApplicationRecord{
		FirstName:      "Amar",
		LastName:       "Said",
		University:     "Mila",
		Specialization: scoring.SpecializationSciences,
		TeachingYears:  5,
	}
	rec.SetCount(scoring.LessonsPerYear, 2)
	rec.SetPublication(scoring.TierA, scoring.Authorship{First: 4, Second: 1})
	return rec
}

func score(rec scoring.ApplicationRecord, lang scoring.Language) scoring.ScoreResult {
	return scoring.NewEngine(scoring.DefaultPointTable(), scoring.DefaultThresholds(), lang).Compute(rec)
}

var fixedTime = time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC)

func TestRenderHTMLArabic(t *testing.T) {
	rec := sampleRecord()
	res := score(rec, scoring.Arabic)

	html, err := RenderHTML(rec, res, Options{
		Language:    scoring.Arabic,
		Application: "qualify",
		Decisions:   []string{"804/2021", "493/2022"},
		Thresholds:  scoring.DefaultThresholds(),
		GeneratedAt: fixedTime,
	})
	require.NoError(t, err)

	assert.Contains(t, html, `dir="rtl"`)
	assert.Contains(t, html, "Amar Said")
	assert.Contains(t, html, "804/2021 / 493/2022")
	assert.Contains(t, html, "2024-03-09 14:30 UTC")
	assert.Contains(t, html, res.EligibilityReason)
	assert.Contains(t, html, "مؤهل للتأهيل الجامعي")
	assert.Equal(t, len(res.Breakdown), strings.Count(html, `class="entry"`))
	assert.Equal(t, scoring.NumTiers, strings.Count(html, `class="tier"`))
	assert.Contains(t, html, "غير محدد")
}

func TestRenderHTMLEnglishNotEligible(t *testing.T) {
	rec := scoring.ApplicationRecord{FirstName: "Lina", LastName: "B", Specialization: "humanities"}
	res := score(rec, scoring.English)

	html, err := RenderHTML(rec, res, Options{Language: scoring.English, GeneratedAt: fixedTime})
	require.NoError(t, err)

	assert.Contains(t, html, `dir="ltr"`)
	assert.Contains(t, html, "No points scored")
	assert.Contains(t, html, `status not-eligible`)
	assert.Contains(t, html, "Humanities and social sciences")
	assert.Contains(t, html, "350 points, 3 years")
}

func TestRenderHTMLEscapesInput(t *testing.T) {
	rec := sampleRecord()
	rec.FirstName = `<script>alert("x")</script>`
	res := score(rec, scoring.Arabic)

	html, err := RenderHTML(rec, res, Options{GeneratedAt: fixedTime})
	require.NoError(t, err)

	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestBuildExport(t *testing.T) {
	rec := sampleRecord()
	res := score(rec, scoring.Arabic)
	raw := map[string]any{"firstName": "Amar", "categoryAFirst": "4", "categoryASecond": 1.0}

	doc := BuildExport(raw, rec, res, Metadata{
		Application:       "qualify",
		Version:           "1.0.0",
		LegalBase:         "grid",
		MinistryDecisions: []string{"804/2021", "493/2022"},
	}, scoring.Arabic, fixedTime)

	assert.Equal(t, fixedTime, doc.Metadata.ExportedAt)
	assert.Equal(t, "Amar Said", doc.PersonalInfo.FullName)
	assert.Equal(t, "العلوم والتكنولوجيا", doc.PersonalInfo.Specialization)
	assert.Equal(t, res.TotalPoints, doc.CalculatedResults.TotalPoints)
	assert.Equal(t, res.Breakdown, doc.CalculatedResults.Breakdown)
	assert.Equal(t, "4", doc.RawInputData["categoryAFirst"])

	pubs, ok := doc.RawInputData["publications"].(map[string]AuthorCounts)
	require.True(t, ok)
	assert.Equal(t, AuthorCounts{FirstAuthor: 4, SecondAuthor: 1}, pubs["a"])
	assert.Equal(t, AuthorCounts{}, pubs["aPlus"])

	// The caller's body is not modified.
	_, added := raw["publications"]
	assert.False(t, added)

	data, err := EncodeExport(doc)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "metadata")
	assert.Contains(t, decoded, "personalInfo")
	assert.Contains(t, decoded, "calculatedResults")
	assert.Contains(t, decoded, "rawInputData")
}

func TestEncodeExportFailure(t *testing.T) {
	doc := ExportDocument{RawInputData: map[string]any{"bad": make(chan int)}}
	_, err := EncodeExport(doc)
	var re *RenderError
	assert.True(t, errors.As(err, &re))
}

func TestFilenames(t *testing.T) {
	rec := scoring.ApplicationRecord{FirstName: "Amar", LastName: "Ben Ali/x"}

	assert.Equal(t, "تقرير_نقاط_Amar_Ben_Ali_x_2024-03-09.html", HTMLFilename(scoring.Arabic, rec, fixedTime))
	assert.Equal(t, "تأهيل_جامعي_Amar_Ben_Ali_x.json", JSONFilename(scoring.Arabic, rec))
	assert.Equal(t, "qualification_Amar_Ben_Ali_x.json", JSONFilename(scoring.English, rec))
}

func TestSpecializationLabel(t *testing.T) {
	assert.Equal(t, "Sciences and technology", SpecializationLabel(scoring.English, "sciences"))
	assert.Equal(t, "medicine", SpecializationLabel(scoring.English, "medicine"))
	assert.Equal(t, "Not specified", SpecializationLabel(scoring.English, ""))
}
