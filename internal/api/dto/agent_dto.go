package dto

import (
	"time"

	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/domain"
)

// TriggerTriageRequest payload for a manual triage run.
type TriggerTriageRequest struct {
	TicketID string `json:"ticket_id"`
}

// ReviewSuggestionRequest payload for approve/reject.
type ReviewSuggestionRequest struct {
	Approved    bool    `json:"approved"`
	EditedDraft *string `json:"edited_draft,omitempty"`
}

// SuggestionResponse public suggestion view.
type SuggestionResponse struct {
	ID                string                `json:"id"`
	TicketID          string                `json:"ticket_id"`
	TraceID           string                `json:"trace_id"`
	PredictedCategory domain.TicketCategory `json:"predicted_category"`
	ArticleIDs        []string              `json:"article_ids"`
	DraftReply        string                `json:"draft_reply"`
	Confidence        float64               `json:"confidence"`
	AutoClosed        bool                  `json:"auto_closed"`
	Approved          bool                  `json:"approved"`
	ApprovedBy        *string               `json:"approved_by"`
	ApprovedAt        *time.Time            `json:"approved_at"`
	ModelProvider     string                `json:"model_provider"`
	Model             string                `json:"model"`
	PromptVersion     string                `json:"prompt_version"`
	LatencyMs         int64                 `json:"latency_ms"`
	CreatedAt         time.Time             `json:"created_at"`
}

// SuggestionStatsResponse aggregates triage outcomes.
type SuggestionStatsResponse struct {
	Total             int64                           `json:"total"`
	AutoClosed        int64                           `json:"auto_closed"`
	AutoCloseRate     float64                         `json:"auto_close_rate"`
	AverageConfidence float64                         `json:"average_confidence"`
	ByCategory        map[domain.TicketCategory]int64 `json:"by_category"`
}

// NewSuggestionResponse maps a suggestion.
func NewSuggestionResponse(s *domain.AgentSuggestion) SuggestionResponse {
	return SuggestionResponse{
		ID:                s.ID,
		TicketID:          s.TicketID,
		TraceID:           s.TraceID,
		PredictedCategory: s.PredictedCategory,
		ArticleIDs:        s.ArticleIDs,
		DraftReply:        s.DraftReply,
		Confidence:        s.Confidence,
		AutoClosed:        s.AutoClosed,
		Approved:          s.Approved,
		ApprovedBy:        s.ApprovedBy,
		ApprovedAt:        s.ApprovedAt,
		ModelProvider:     s.ModelInfo.Provider,
		Model:             s.ModelInfo.Model,
		PromptVersion:     s.ModelInfo.PromptVersion,
		LatencyMs:         s.ModelInfo.LatencyMs,
		CreatedAt:         s.CreatedAt,
	}
}

// NewSuggestionStats maps aggregate stats.
func NewSuggestionStats(stats *domain.SuggestionStats) SuggestionStatsResponse {
	out := SuggestionStatsResponse{
		Total:             stats.Total,
		AutoClosed:        stats.AutoClosed,
		AverageConfidence: stats.AverageConfidence,
		ByCategory:        stats.ByCategory,
	}
	if stats.Total > 0 {
		out.AutoCloseRate = float64(stats.AutoClosed) / float64(stats.Total)
	}
	return out
}
