// Package agent implements the automated ticket-triage pipeline: classify,
// retrieve knowledge, draft a reply, decide the disposition and leave a
// replayable audit trail per trace id.
package agent

import (
	"context"

	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/domain"
)

// Classification is the provider's verdict on a piece of ticket text.
type Classification struct {
	PredictedCategory domain.TicketCategory
	Confidence        float64
	MatchedKeywords   []string
	ModelInfo         domain.ModelInfo
}

// Draft is the provider's suggested reply, citing knowledge-base articles.
type Draft struct {
	Reply     string
	Citations []string
	ModelInfo domain.ModelInfo
}

// Provider is the model backend behind classification and drafting. The stub
// and the external variants are interchangeable; the orchestrator depends on
// nothing beyond this interface.
type Provider interface {
	Name() string
	Classify(ctx context.Context, text string) (*Classification, error)
	Draft(ctx context.Context, text string, articles []domain.Article) (*Draft, error)
}
