// Package assess runs an application body through intake and the scoring
// engine, on either the authoritative or the preview path.
package assess

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Qualify/internal/hermes"
	"github.com/MikeSquared-Agency/Qualify/internal/intake"
	"github.com/MikeSquared-Agency/Qualify/internal/metrics"
	"github.com/MikeSquared-Agency/Qualify/internal/scoring"
)

// Assessment is the outcome of one calculation request.
type Assessment struct {
	ID           string                    `json:"id"`
	Record       scoring.ApplicationRecord `json:"record"`
	Result       scoring.ScoreResult       `json:"result"`
	Notices      []intake.Notice           `json:"notices"`
	CalculatedAt time.Time                 `json:"calculatedAt"`
}

// Assessor is safe for concurrent use.
type Assessor struct {
	engine *scoring.Engine
	events hermes.Client
	logger *slog.Logger
	now    func() time.Time
}

// New creates an Assessor. A nil events client disables event publishing.
func New(engine *scoring.Engine, events hermes.Client, logger *slog.Logger) *Assessor {
	if events == nil {
		events = hermes.NopClient{}
	}
	return &Assessor{
		engine: engine,
		events: events,
		logger: logger,
		now:    time.Now,
	}
}

// Engine returns the scoring engine behind the assessor.
func (a *Assessor) Engine() *scoring.Engine {
	return a.engine
}

// Calculate is the authoritative path. Names and teaching years are checked
// first, then the strict numeric fields; any failure is returned as a
// *scoring.ValidationError and nothing is scored.
func (a *Assessor) Calculate(ctx context.Context, raw map[string]any) (Assessment, error) {
	start := time.Now()
	asm := Assessment{ID: uuid.NewString()}

	rec, notices, err := a.collect(ctx, raw, metrics.ModeStrict)
	if err != nil {
		return asm, err
	}
	asm.Record = rec
	asm.Notices = notices

	if err := a.engine.Validate(rec); err != nil {
		a.reject(asm.ID, err)
		return asm, err
	}
	if err := intake.CheckStrict(raw); err != nil {
		a.reject(asm.ID, err)
		return asm, err
	}

	a.finish(&asm, metrics.ModeStrict, start)
	a.publish(hermes.SubjectCalculationCompleted(asm.ID), hermes.CalculationCompletedEvent{
		CalculationID:          asm.ID,
		Mode:                   metrics.ModeStrict,
		Specialization:         rec.Specialization,
		TotalPoints:            asm.Result.TotalPoints,
		Eligible:               asm.Result.Eligible,
		TeachingYears:          asm.Result.TeachingYears,
		HasRequiredPublication: asm.Result.HasRequiredPublication,
		NoticeCount:            len(notices),
		Timestamp:              asm.CalculatedAt,
	})
	return asm, nil
}

// Preview is the lenient path used for live feedback and exports. It only
// fails on a malformed body or a cancelled context.
func (a *Assessor) Preview(ctx context.Context, raw map[string]any) (Assessment, error) {
	start := time.Now()
	asm := Assessment{ID: uuid.NewString()}

	rec, notices, err := a.collect(ctx, raw, metrics.ModePreview)
	if err != nil {
		return asm, err
	}
	asm.Record = rec
	asm.Notices = notices

	a.finish(&asm, metrics.ModePreview, start)
	return asm, nil
}

func (a *Assessor) collect(ctx context.Context, raw map[string]any, mode string) (scoring.ApplicationRecord, []intake.Notice, error) {
	if err := ctx.Err(); err != nil {
		metrics.CalculationsTotal.WithLabelValues(mode, metrics.OutcomeCancelled).Inc()
		return scoring.ApplicationRecord{}, nil, err
	}
	if err := intake.CheckShape(raw); err != nil {
		metrics.CalculationsTotal.WithLabelValues(mode, metrics.OutcomeMalformed).Inc()
		return scoring.ApplicationRecord{}, nil, err
	}
	rec, notices := intake.Collect(raw)
	if notices == nil {
		notices = []intake.Notice{}
	}
	return rec, notices, nil
}

func (a *Assessor) finish(asm *Assessment, mode string, start time.Time) {
	asm.Result = a.engine.Compute(asm.Record)
	asm.CalculatedAt = a.now().UTC()

	metrics.CalculationsTotal.WithLabelValues(mode, metrics.Outcome(asm.Result.Eligible)).Inc()
	metrics.CalculationDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	metrics.TotalPoints.WithLabelValues(mode).Observe(float64(asm.Result.TotalPoints))
}

func (a *Assessor) reject(id string, err error) {
	metrics.CalculationsTotal.WithLabelValues(metrics.ModeStrict, metrics.OutcomeRejected).Inc()

	var ve *scoring.ValidationError
	if !errors.As(err, &ve) {
		return
	}
	a.logger.Info("calculation rejected", "calculation_id", id, "code", ve.Code, "field", ve.Field)
	a.publish(hermes.SubjectCalculationRejected(id), hermes.CalculationRejectedEvent{
		CalculationID: id,
		Code:          ve.Code,
		Field:         ve.Field,
		Timestamp:     a.now().UTC(),
	})
}

func (a *Assessor) publish(subject string, event any) {
	if err := a.events.Publish(subject, event); err != nil {
		a.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}
