package domain

import "time"

// ModelInfo records which model produced a classification or draft.
type ModelInfo struct {
	Provider      string
	Model         string
	PromptVersion string
	LatencyMs     int64
}

// AgentSuggestion is the persisted outcome of one triage run. Re-triaging a
// ticket appends a new suggestion; existing ones are never updated by the
// pipeline. Confidence is always within [0,1].
type AgentSuggestion struct {
	ID                string
	TicketID          string
	TraceID           string
	PredictedCategory TicketCategory
	ArticleIDs        []string
	DraftReply        string
	Confidence        float64
	AutoClosed        bool
	ModelInfo         ModelInfo
	Approved          bool
	ApprovedBy        *string
	ApprovedAt        *time.Time
	CreatedAt         time.Time
}

// SuggestionStats aggregates triage outcomes for reporting.
type SuggestionStats struct {
	Total             int64
	AutoClosed        int64
	AverageConfidence float64
	ByCategory        map[TicketCategory]int64
}
