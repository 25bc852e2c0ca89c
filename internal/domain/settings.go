package domain

import "time"

// TriageSettings is the singleton runtime configuration for the triage
// pipeline. The orchestrator snapshots it once per invocation so a threshold
// change cannot land between classification and decision within one run.
type TriageSettings struct {
	AutoCloseEnabled    bool
	ConfidenceThreshold float64
	// CategoryThresholds is stored for future per-category decisions but the
	// policy currently compares against ConfidenceThreshold only.
	CategoryThresholds map[TicketCategory]float64
	SLAHours           int
	UpdatedAt          time.Time
}

// DefaultTriageSettings returns the deployment defaults used when no settings
// row exists yet.
func DefaultTriageSettings() TriageSettings {
	return TriageSettings{
		AutoCloseEnabled:    true,
		ConfidenceThreshold: 0.78,
		CategoryThresholds: map[TicketCategory]float64{
			CategoryBilling:  0.75,
			CategoryTech:     0.80,
			CategoryShipping: 0.70,
			CategoryOther:    0.85,
		},
		SLAHours: 24,
	}
}
