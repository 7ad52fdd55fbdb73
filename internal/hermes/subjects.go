package hermes

const (
	StreamName   = "QUALIFY_EVENTS"
	StreamMaxAge = "720h" // 30 days
)

// StreamSubjects are captured by the QUALIFY_EVENTS stream.
var StreamSubjects = []string{"qualify.calculation.>", "qualify.draft.>"}

// Calculation lifecycle subjects
func SubjectCalculationCompleted(calcID string) string {
	return "qualify.calculation." + calcID + ".completed"
}
func SubjectCalculationRejected(calcID string) string {
	return "qualify.calculation." + calcID + ".rejected"
}

// Draft subjects
func SubjectDraftSaved(draftID string) string   { return subjectDraft(draftID, DraftSaved) }
func SubjectDraftDeleted(draftID string) string { return subjectDraft(draftID, DraftDeleted) }

func subjectDraft(draftID, action string) string {
	return "qualify.draft." + draftID + "." + action
}
