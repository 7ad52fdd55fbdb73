package hermes

import (
	"strconv"
	"time"
)

// Events carry figures and identifiers only. Names, e-mail addresses and other
// personal fields never leave the process.

type CalculationCompletedEvent struct {
	CalculationID          string    `json:"calculation_id"`
	Mode                   string    `json:"mode"`
	Specialization         string    `json:"specialization"`
	TotalPoints            int       `json:"total_points"`
	Eligible               bool      `json:"eligible"`
	TeachingYears          int       `json:"teaching_years"`
	HasRequiredPublication bool      `json:"has_required_publication"`
	NoticeCount            int       `json:"notice_count,omitempty"`
	Timestamp              time.Time `json:"timestamp"`
}

func (e CalculationCompletedEvent) MsgID() string { return e.CalculationID + ".completed" }

type CalculationRejectedEvent struct {
	CalculationID string    `json:"calculation_id"`
	Code          string    `json:"code"`
	Field         string    `json:"field,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

func (e CalculationRejectedEvent) MsgID() string { return e.CalculationID + ".rejected" }

// DraftEvent reports a saved or deleted draft. A draft is saved many times, so
// its message ID includes the event time.
type DraftEvent struct {
	DraftID   string    `json:"draft_id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// Draft actions.
const (
	DraftSaved   = "saved"
	DraftDeleted = "deleted"
)

func (e DraftEvent) MsgID() string {
	return e.DraftID + "." + e.Action + "." + strconv.FormatInt(e.Timestamp.UnixNano(), 10)
}
