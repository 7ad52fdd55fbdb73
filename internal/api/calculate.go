package api

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"time"

	"github.com/MikeSquared-Agency/Qualify/internal/assess"
	"github.com/MikeSquared-Agency/Qualify/internal/config"
	"github.com/MikeSquared-Agency/Qualify/internal/intake"
	"github.com/MikeSquared-Agency/Qualify/internal/report"
	"github.com/MikeSquared-Agency/Qualify/internal/scoring"
)

const serviceName = "University Qualification Calculator API"

type CalculateHandler struct {
	assessor *assess.Assessor
	report   config.ReportConfig
	now      func() time.Time
}

func NewCalculateHandler(a *assess.Assessor, rc config.ReportConfig) *CalculateHandler {
	return &CalculateHandler{assessor: a, report: rc, now: time.Now}
}

type statusResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Endpoints []string  `json:"endpoints"`
	Timestamp time.Time `json:"timestamp"`
}

type calculateResponse struct {
	scoring.ScoreResult
	Notices      []intake.Notice `json:"notices"`
	CalculatedAt time.Time       `json:"calculatedAt"`
}

type previewResponse struct {
	Result       scoring.ScoreResult `json:"result"`
	Notices      []intake.Notice     `json:"notices"`
	CalculatedAt time.Time           `json:"calculatedAt"`
}

type htmlExportResponse struct {
	HTML        string    `json:"html"`
	Filename    string    `json:"filename"`
	GeneratedAt time.Time `json:"generatedAt"`
}

type pointTableResponse struct {
	Language   scoring.Language             `json:"language"`
	Thresholds scoring.Thresholds           `json:"thresholds"`
	Rules      map[string]scoring.PointRule `json:"rules"`
}

func (h *CalculateHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Status:    "online",
		Service:   serviceName,
		Version:   h.report.Version,
		Endpoints: Endpoints,
		Timestamp: h.now().UTC(),
	})
}

func (h *CalculateHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	raw, err := decodeBody(r, w)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	asm, err := h.assessor.Calculate(r.Context(), raw)
	if err != nil {
		h.writeAssessError(w, err)
		return
	}

	w.Header().Set("X-Calculated-At", asm.CalculatedAt.Format(time.RFC3339))
	w.Header().Set("X-Calculation-ID", asm.ID)
	writeJSON(w, http.StatusOK, calculateResponse{
		ScoreResult:  asm.Result,
		Notices:      asm.Notices,
		CalculatedAt: asm.CalculatedAt,
	})
}

func (h *CalculateHandler) Preview(w http.ResponseWriter, r *http.Request) {
	asm, ok := h.preview(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, previewResponse{
		Result:       asm.Result,
		Notices:      asm.Notices,
		CalculatedAt: asm.CalculatedAt,
	})
}

func (h *CalculateHandler) ExportHTML(w http.ResponseWriter, r *http.Request) {
	asm, ok := h.preview(w, r)
	if !ok {
		return
	}

	now := h.now().UTC()
	lang := h.assessor.Engine().Language()
	html, err := report.RenderHTML(asm.Record, asm.Result, report.Options{
		Language:    lang,
		Application: h.report.Application,
		Version:     h.report.Version,
		LegalBase:   h.report.LegalBase,
		Decisions:   h.report.MinistryDecisions,
		Thresholds:  h.assessor.Engine().Thresholds(),
		GeneratedAt: now,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, htmlExportResponse{
		HTML:        html,
		Filename:    report.HTMLFilename(lang, asm.Record, now),
		GeneratedAt: now,
	})
}

func (h *CalculateHandler) ExportJSON(w http.ResponseWriter, r *http.Request) {
	raw, err := decodeBody(r, w)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	asm, err := h.assessor.Preview(r.Context(), raw)
	if err != nil {
		h.writeAssessError(w, err)
		return
	}

	lang := h.assessor.Engine().Language()
	doc := report.BuildExport(raw, asm.Record, asm.Result, report.Metadata{
		Application:       h.report.Application,
		Version:           h.report.Version,
		LegalBase:         h.report.LegalBase,
		MinistryDecisions: h.report.MinistryDecisions,
	}, lang, h.now())
	data, err := report.EncodeExport(doc)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	disposition := mime.FormatMediaType("attachment", map[string]string{
		"filename": report.JSONFilename(lang, asm.Record),
	})
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if disposition != "" {
		w.Header().Set("Content-Disposition", disposition)
	}
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *CalculateHandler) PointTable(w http.ResponseWriter, r *http.Request) {
	engine := h.assessor.Engine()
	table := engine.Table()
	writeJSON(w, http.StatusOK, pointTableResponse{
		Language:   engine.Language(),
		Thresholds: engine.Thresholds(),
		Rules:      table.Rules(),
	})
}

func (h *CalculateHandler) preview(w http.ResponseWriter, r *http.Request) (assess.Assessment, bool) {
	raw, err := decodeBody(r, w)
	if err != nil {
		writeBadRequest(w, err)
		return assess.Assessment{}, false
	}
	asm, err := h.assessor.Preview(r.Context(), raw)
	if err != nil {
		h.writeAssessError(w, err)
		return assess.Assessment{}, false
	}
	return asm, true
}

func (h *CalculateHandler) writeAssessError(w http.ResponseWriter, err error) {
	var ve *scoring.ValidationError
	var se *intake.ShapeError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error":     "validation failed",
			"code":      ve.Code,
			"field":     ve.Field,
			"details":   h.assessor.Engine().Describe(ve),
			"timestamp": h.now().UTC().Format(time.RFC3339),
		})
	case errors.As(err, &se):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":     "invalid request",
			"message":   se.Error(),
			"problems":  se.Problems,
			"timestamp": h.now().UTC().Format(time.RFC3339),
		})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "request cancelled"})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
