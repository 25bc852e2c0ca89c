package agent

import (
	"math"
	"strings"
	"testing"

	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/domain"
)

func TestDecide(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		confidence float64
		settings   domain.TriageSettings
		autoClosed bool
	}{
		{
			name:       "above threshold auto-closes",
			confidence: 0.9,
			settings:   domain.TriageSettings{AutoCloseEnabled: true, ConfidenceThreshold: 0.78},
			autoClosed: true,
		},
		{
			name:       "exactly at threshold auto-closes",
			confidence: 0.78,
			settings:   domain.TriageSettings{AutoCloseEnabled: true, ConfidenceThreshold: 0.78},
			autoClosed: true,
		},
		{
			name:       "below threshold goes to human",
			confidence: 0.77,
			settings:   domain.TriageSettings{AutoCloseEnabled: true, ConfidenceThreshold: 0.78},
			autoClosed: false,
		},
		{
			name:       "disabled auto-close always goes to human",
			confidence: 0.99,
			settings:   domain.TriageSettings{AutoCloseEnabled: false, ConfidenceThreshold: 0.78},
			autoClosed: false,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Decide(tt.confidence, tt.settings)
			if got.AutoClosed != tt.autoClosed {
				t.Errorf("AutoClosed = %v, want %v", got.AutoClosed, tt.autoClosed)
			}
			if got.Confidence != tt.confidence || got.Threshold != tt.settings.ConfidenceThreshold {
				t.Errorf("decision did not echo inputs: %+v", got)
			}
			if got.Reasoning == "" {
				t.Error("reasoning must be populated")
			}
		})
	}
}

func TestDecideFailsSafeOnInvalidInputs(t *testing.T) {
	t.Parallel()

	enabled := domain.TriageSettings{AutoCloseEnabled: true, ConfidenceThreshold: 0.78}
	tests := []struct {
		name       string
		confidence float64
		settings   domain.TriageSettings
	}{
		{"NaN confidence", math.NaN(), enabled},
		{"negative confidence", -0.1, enabled},
		{"confidence above one", 1.1, enabled},
		{"NaN threshold", 0.9, domain.TriageSettings{AutoCloseEnabled: true, ConfidenceThreshold: math.NaN()}},
		{"threshold above one", 0.9, domain.TriageSettings{AutoCloseEnabled: true, ConfidenceThreshold: 1.5}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Decide(tt.confidence, tt.settings)
			if got.AutoClosed {
				t.Error("invalid inputs must never auto-close")
			}
			if !strings.HasPrefix(got.Reasoning, "policy evaluation error (") {
				t.Errorf("reasoning = %q, want policy evaluation error", got.Reasoning)
			}
		})
	}
}
