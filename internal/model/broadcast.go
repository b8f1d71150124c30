package model

// AlertPriority selects the prefix glyph/label for broadcast alerts.
type AlertPriority string

const (
	PriorityLow    AlertPriority = "low"
	PriorityMedium AlertPriority = "medium"
	PriorityHigh   AlertPriority = "high"
)

// ParseAlertPriority normalizes input; empty or unrecognized => medium.
func ParseAlertPriority(s string) AlertPriority {
	switch AlertPriority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return AlertPriority(s)
	default:
		return PriorityMedium
	}
}

// RecipientOutcome is one broadcast target's delivery result.
type RecipientOutcome struct {
	Recipient    string
	Succeeded    bool
	ErrorMessage string
}

// BroadcastSummary aggregates a fan-out. Invariant:
// Succeeded + Failed == Targeted. Errors stays nil (not an empty slice)
// when every delivery succeeded, so callers can distinguish the cases.
type BroadcastSummary struct {
	ID        string
	Targeted  int
	Succeeded int
	Failed    int
	Errors    []string
}
