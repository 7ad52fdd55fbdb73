package assess

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Qualify/internal/intake"
	"github.com/MikeSquared-Agency/Qualify/internal/scoring"
)

type published struct {
	subject string
	data    any
}

type recordingHermes struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (m *recordingHermes) Publish(subject string, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, published{subject, data})
	return m.err
}
func (m *recordingHermes) Close() {}

func newTestAssessor(events *recordingHermes) *Assessor {
	engine := scoring.NewEngine(scoring.DefaultPointTable(), scoring.DefaultThresholds(), scoring.Arabic)
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	if events == nil {
		return New(engine, nil, logger)
	}
	return New(engine, events, logger)
}

func validBody() map[string]any {
	return map[string]any{
		"firstName":      "Amar",
		"lastName":       "Said",
		"specialization": "sciences",
		"teachingYears":  "5",
		"categoryAFirst": "4",
	}
}

func TestCalculate(t *testing.T) {
	events := &recordingHermes{}
	a := newTestAssessor(events)

	asm, err := a.Calculate(context.Background(), validBody())
	require.NoError(t, err)

	assert.NotEmpty(t, asm.ID)
	assert.Equal(t, 360, asm.Result.TotalPoints)
	assert.True(t, asm.Result.Eligible)
	assert.False(t, asm.CalculatedAt.IsZero())
	assert.NotNil(t, asm.Notices)

	require.Len(t, events.events, 1)
	assert.Equal(t, "qualify.calculation."+asm.ID+".completed", events.events[0].subject)
}

func TestCalculateRejects(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(map[string]any)
		wantCode  string
		wantField string
	}{
		{"missing first name", func(b map[string]any) { delete(b, "firstName") }, scoring.CodeMissingName, ""},
		{"blank last name", func(b map[string]any) { b["lastName"] = "  " }, scoring.CodeMissingName, ""},
		{"low years", func(b map[string]any) { b["teachingYears"] = 2.0 }, scoring.CodeInsufficientTeachingYears, "teachingYears"},
		{"unparsable years", func(b map[string]any) { b["teachingYears"] = "many" }, scoring.CodeInsufficientTeachingYears, "teachingYears"},
		{"strict numeric", func(b map[string]any) { b["guidedWorks"] = "x" }, scoring.CodeInvalidNumericField, "guidedWorks"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := &recordingHermes{}
			a := newTestAssessor(events)
			body := validBody()
			tt.mutate(body)

			_, err := a.Calculate(context.Background(), body)

			var ve *scoring.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantCode, ve.Code)
			assert.Equal(t, tt.wantField, ve.Field)

			require.Len(t, events.events, 1)
			assert.True(t, strings.HasSuffix(events.events[0].subject, ".rejected"))
		})
	}
}

func TestPreviewIsLenient(t *testing.T) {
	events := &recordingHermes{}
	a := newTestAssessor(events)
	body := validBody()
	body["teachingYears"] = "1"
	body["guidedWorks"] = "x"
	delete(body, "firstName")

	asm, err := a.Preview(context.Background(), body)
	require.NoError(t, err)

	assert.Equal(t, 360, asm.Result.TotalPoints)
	assert.False(t, asm.Result.Eligible)
	assert.Equal(t, 1, asm.Result.TeachingYears)
	assert.Empty(t, events.events)
}

func TestStrictAndPreviewAgree(t *testing.T) {
	a := newTestAssessor(nil)
	body := validBody()
	body["lessonsPerYear"] = "60"
	body["categoryCSecond"] = 3.0

	strict, err := a.Calculate(context.Background(), body)
	require.NoError(t, err)
	preview, err := a.Preview(context.Background(), body)
	require.NoError(t, err)

	assert.Equal(t, strict.Result, preview.Result)
	assert.Equal(t, []intake.Notice{{Field: "lessonsPerYear", Value: 60, Max: 50}}, preview.Notices)
}

func TestCancelledContext(t *testing.T) {
	a := newTestAssessor(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Calculate(ctx, validBody())
	assert.True(t, errors.Is(err, context.Canceled))

	_, err = a.Preview(ctx, validBody())
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestMalformedBody(t *testing.T) {
	a := newTestAssessor(nil)
	body := validBody()
	body["categoryAFirst"] = []any{1.0, 2.0}

	_, err := a.Preview(context.Background(), body)
	var se *intake.ShapeError
	assert.ErrorAs(t, err, &se)
	assert.False(t, scoring.IsValidationError(err))
}

func TestPublishFailureDoesNotFailCalculation(t *testing.T) {
	events := &recordingHermes{err: errors.New("nats down")}
	a := newTestAssessor(events)

	asm, err := a.Calculate(context.Background(), validBody())
	require.NoError(t, err)
	assert.Equal(t, 360, asm.Result.TotalPoints)
}
