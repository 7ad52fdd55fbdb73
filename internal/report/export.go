package report

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/Qualify/internal/scoring"
)

// Metadata heads an export document.
type Metadata struct {
	Application       string    `json:"application"`
	Version           string    `json:"version"`
	ExportedAt        time.Time `json:"exportedAt"`
	LegalBase         string    `json:"legalBase"`
	MinistryDecisions []string  `json:"ministryDecisions"`
}

type PersonalInfo struct {
	FullName            string `json:"fullName"`
	University          string `json:"university"`
	Department          string `json:"department"`
	SpecializationField string `json:"specializationField"`
	Email               string `json:"email"`
	Specialization      string `json:"specialization"`
	TeachingYears       int    `json:"teachingYears"`
}

type CalculatedResults struct {
	TotalPoints       int                      `json:"totalPoints"`
	Eligible          bool                     `json:"eligible"`
	EligibilityReason string                   `json:"eligibilityReason"`
	Breakdown         []scoring.BreakdownEntry `json:"breakdown"`
	CalculatedAt      time.Time                `json:"calculatedAt"`
}

// AuthorCounts is one tier of the structured publication summary.
type AuthorCounts struct {
	FirstAuthor     int `json:"firstAuthor"`
	SecondAuthor    int `json:"secondAuthor"`
	ThirdAuthorPlus int `json:"thirdAuthorPlus"`
}

// ExportDocument is the downloadable JSON record of an application.
type ExportDocument struct {
	Metadata          Metadata          `json:"metadata"`
	PersonalInfo      PersonalInfo      `json:"personalInfo"`
	CalculatedResults CalculatedResults `json:"calculatedResults"`
	RawInputData      map[string]any    `json:"rawInputData"`
}

var publicationGroups = map[scoring.Tier]string{
	scoring.TierAPlus: "aPlus",
	scoring.TierA:     "a",
	scoring.TierB:     "b",
	scoring.TierC:     "c",
}

// BuildExport assembles an export document. The raw body is copied as given
// and a structured publications summary is added under "publications".
func BuildExport(raw map[string]any, rec scoring.ApplicationRecord, res scoring.ScoreResult, meta Metadata, lang scoring.Language, now time.Time) ExportDocument {
	meta.ExportedAt = now.UTC()
	if meta.MinistryDecisions == nil {
		meta.MinistryDecisions = []string{}
	}

	breakdown := res.Breakdown
	if breakdown == nil {
		breakdown = []scoring.BreakdownEntry{}
	}

	rawCopy := make(map[string]any, len(raw)+1)
	for k, v := range raw {
		rawCopy[k] = v
	}
	pubs := make(map[string]AuthorCounts, scoring.NumTiers)
	for _, tier := range scoring.Tiers() {
		a := rec.Publication(tier)
		pubs[publicationGroups[tier]] = AuthorCounts{
			FirstAuthor:     a.First,
			SecondAuthor:    a.Second,
			ThirdAuthorPlus: a.ThirdPlus,
		}
	}
	rawCopy["publications"] = pubs

	return ExportDocument{
		Metadata: meta,
		PersonalInfo: PersonalInfo{
			FullName:            FullName(rec),
			University:          rec.University,
			Department:          rec.Department,
			SpecializationField: rec.SpecializationField,
			Email:               rec.Email,
			Specialization:      SpecializationLabel(lang, rec.Specialization),
			TeachingYears:       res.TeachingYears,
		},
		CalculatedResults: CalculatedResults{
			TotalPoints:       res.TotalPoints,
			Eligible:          res.Eligible,
			EligibilityReason: res.EligibilityReason,
			Breakdown:         breakdown,
			CalculatedAt:      now.UTC(),
		},
		RawInputData: rawCopy,
	}
}

// EncodeExport serialises a document as indented JSON.
func EncodeExport(doc ExportDocument) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, &RenderError{Message: "failed to encode export document", Cause: err}
	}
	return data, nil
}

// HTMLFilename names a downloaded HTML report.
func HTMLFilename(lang scoring.Language, rec scoring.ApplicationRecord, now time.Time) string {
	l := labelsFor(lang)
	return strings.Join([]string{
		l.HTMLFilenamePrefix,
		filenamePart(rec.FirstName),
		filenamePart(rec.LastName),
		now.UTC().Format("2006-01-02"),
	}, "_") + ".html"
}

// JSONFilename names a downloaded export document.
func JSONFilename(lang scoring.Language, rec scoring.ApplicationRecord) string {
	l := labelsFor(lang)
	return strings.Join([]string{
		l.JSONFilenamePrefix,
		filenamePart(rec.FirstName),
		filenamePart(rec.LastName),
	}, "_") + ".json"
}

// filenamePart keeps a name safe inside a file name: separators, quotes and
// whitespace become underscores.
func filenamePart(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '"', '\'', ':', '*', '?', '<', '>', '|', ' ', '\t', '\n', '\r':
			return '_'
		}
		return r
	}, s)
}
