package dto

import (
	"time"

	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/domain"
)

// TriageSettingsRequest payload for updating triage settings.
type TriageSettingsRequest struct {
	AutoCloseEnabled    *bool                             `json:"auto_close_enabled"`
	ConfidenceThreshold *float64                          `json:"confidence_threshold"`
	CategoryThresholds  map[domain.TicketCategory]float64 `json:"category_thresholds"`
	SLAHours            *int                              `json:"sla_hours"`
}

// TriageSettingsResponse public settings view.
type TriageSettingsResponse struct {
	AutoCloseEnabled    bool                              `json:"auto_close_enabled"`
	ConfidenceThreshold float64                           `json:"confidence_threshold"`
	CategoryThresholds  map[domain.TicketCategory]float64 `json:"category_thresholds"`
	SLAHours            int                               `json:"sla_hours"`
	UpdatedAt           time.Time                         `json:"updated_at"`
}

// NewTriageSettingsResponse maps settings.
func NewTriageSettingsResponse(s domain.TriageSettings) TriageSettingsResponse {
	return TriageSettingsResponse{
		AutoCloseEnabled:    s.AutoCloseEnabled,
		ConfidenceThreshold: s.ConfidenceThreshold,
		CategoryThresholds:  s.CategoryThresholds,
		SLAHours:            s.SLAHours,
		UpdatedAt:           s.UpdatedAt,
	}
}
