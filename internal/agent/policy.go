package agent

import (
	"fmt"
	"math"

	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/domain"
)

// Decision is the disposition chosen for one triage run.
type Decision struct {
	AutoClosed       bool
	Confidence       float64
	Threshold        float64
	AutoCloseEnabled bool
	Reasoning        string
}

// Decide compares the classification confidence against the configured
// threshold. Any inconsistency in the inputs fails safe: the ticket goes to a
// human, never to auto-close.
func Decide(confidence float64, settings domain.TriageSettings) Decision {
	decision := Decision{
		Confidence:       confidence,
		Threshold:        settings.ConfidenceThreshold,
		AutoCloseEnabled: settings.AutoCloseEnabled,
	}

	if err := validatePolicyInputs(confidence, settings); err != nil {
		decision.AutoClosed = false
		decision.Reasoning = fmt.Sprintf("policy evaluation error (%v) - defaulting to human review", err)
		return decision
	}

	decision.AutoClosed = settings.AutoCloseEnabled && confidence >= settings.ConfidenceThreshold
	if decision.AutoClosed {
		decision.Reasoning = "High confidence classification with auto-close enabled"
	} else {
		decision.Reasoning = "Low confidence or auto-close disabled - requires human review"
	}
	return decision
}

func validatePolicyInputs(confidence float64, settings domain.TriageSettings) error {
	if math.IsNaN(confidence) || confidence < 0 || confidence > 1 {
		return fmt.Errorf("confidence %v out of range", confidence)
	}
	if math.IsNaN(settings.ConfidenceThreshold) || settings.ConfidenceThreshold < 0 || settings.ConfidenceThreshold > 1 {
		return fmt.Errorf("threshold %v out of range", settings.ConfidenceThreshold)
	}
	return nil
}
