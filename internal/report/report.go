// Package report renders scored applications as a printable HTML page or a
// JSON export document.
package report

import (
	"embed"
	"html/template"
	"strings"
	"sync"
	"time"

	"github.com/MikeSquared-Agency/Qualify/internal/scoring"
)

//go:embed templates/report.html.tmpl
var templateFS embed.FS

const templateName = "report.html.tmpl"

// Options control the report header and language.
type Options struct {
	Language    scoring.Language
	Application string
	Version     string
	LegalBase   string
	Decisions   []string
	Thresholds  scoring.Thresholds
	GeneratedAt time.Time
}

type publicationRow struct {
	Label  string
	Counts scoring.Authorship
}

type page struct {
	L    *labels
	Lang scoring.Language

	Application string
	Version     string
	LegalBase   string
	Decisions   []string
	GeneratedAt string
	Thresholds  scoring.Thresholds

	FullName            string
	University          string
	Department          string
	SpecializationField string
	Specialization      string
	TeachingYears       int

	Publications []publicationRow
	Result       scoring.ScoreResult
}

var (
	tmplOnce sync.Once
	tmpl     *template.Template
	tmplErr  error
)

func parseTemplate() (*template.Template, error) {
	tmplOnce.Do(func() {
		tmpl, tmplErr = template.New(templateName).
			Funcs(template.FuncMap{
				"join": func(items []string) string { return strings.Join(items, " / ") },
			}).
			ParseFS(templateFS, "templates/"+templateName)
	})
	if tmplErr != nil {
		return nil, &TemplateError{Message: "failed to parse report template", Cause: tmplErr}
	}
	return tmpl, nil
}

// RenderHTML produces a self-contained HTML report. All candidate-supplied
// text is escaped.
func RenderHTML(rec scoring.ApplicationRecord, res scoring.ScoreResult, opts Options) (string, error) {
	t, err := parseTemplate()
	if err != nil {
		return "", err
	}

	var out strings.Builder
	if err := t.Execute(&out, buildPage(rec, res, opts)); err != nil {
		return "", &TemplateError{Message: "failed to execute template", Cause: err}
	}
	return out.String(), nil
}

func buildPage(rec scoring.ApplicationRecord, res scoring.ScoreResult, opts Options) *page {
	lang := scoring.ParseLanguage(string(opts.Language))
	l := labelsFor(lang)
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now()
	}
	if opts.Thresholds == (scoring.Thresholds{}) {
		opts.Thresholds = scoring.DefaultThresholds()
	}

	p := &page{
		L:                   l,
		Lang:                lang,
		Application:         opts.Application,
		Version:             opts.Version,
		LegalBase:           opts.LegalBase,
		Decisions:           opts.Decisions,
		GeneratedAt:         opts.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC"),
		Thresholds:          opts.Thresholds,
		FullName:            FullName(rec),
		University:          orDefault(rec.University, l.Unspecified),
		Department:          orDefault(rec.Department, l.Unspecified),
		SpecializationField: orDefault(rec.SpecializationField, l.Unspecified),
		Specialization:      SpecializationLabel(lang, rec.Specialization),
		TeachingYears:       res.TeachingYears,
		Result:              res,
	}
	if p.LegalBase == "" {
		p.LegalBase = l.Subtitle
	}
	if res.Breakdown == nil {
		p.Result.Breakdown = []scoring.BreakdownEntry{}
	}
	for _, tier := range scoring.Tiers() {
		p.Publications = append(p.Publications, publicationRow{
			Label:  scoring.TierLabel(lang, tier),
			Counts: rec.Publication(tier),
		})
	}
	return p
}

// FullName joins first and last name.
func FullName(rec scoring.ApplicationRecord) string {
	return strings.TrimSpace(strings.TrimSpace(rec.FirstName) + " " + strings.TrimSpace(rec.LastName))
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
