package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/agent"
	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/domain"
	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/repository"
	apperrors "github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/pkg/util/errorutil"
)

// AgentReviewService lets staff inspect and act on triage suggestions.
type AgentReviewService struct {
	triage      *agent.Service
	suggestions repository.SuggestionRepository
	tickets     repository.TicketRepository
	recorder    *agent.Recorder
}

// NewAgentReviewService constructs the service.
func NewAgentReviewService(triage *agent.Service, suggestions repository.SuggestionRepository, tickets repository.TicketRepository, recorder *agent.Recorder) *AgentReviewService {
	return &AgentReviewService{
		triage:      triage,
		suggestions: suggestions,
		tickets:     tickets,
		recorder:    recorder,
	}
}

// TriggerTriage runs the pipeline synchronously for one ticket. Re-running
// appends a fresh suggestion.
func (s *AgentReviewService) TriggerTriage(ctx context.Context, ticketID string) (*agent.Result, error) {
	return s.triage.Triage(ctx, ticketID)
}

// LatestSuggestion returns the most recent suggestion for a ticket.
func (s *AgentReviewService) LatestSuggestion(ctx context.Context, ticketID string) (*domain.AgentSuggestion, error) {
	return s.suggestions.GetLatestByTicket(ctx, ticketID)
}

// Review approves or rejects a suggestion. Approval sends the draft (possibly
// edited) as the staff member's reply and resolves the ticket; rejection
// leaves the ticket waiting for a manual answer.
func (s *AgentReviewService) Review(ctx context.Context, reviewer *domain.User, suggestionID string, approved bool, editedDraft *string) (*domain.AgentSuggestion, error) {
	suggestion, err := s.suggestions.GetByID(ctx, suggestionID)
	if err != nil {
		return nil, err
	}

	updated, err := s.suggestions.Approve(ctx, suggestionID, reviewer.ID, approved, editedDraft)
	if err != nil {
		return nil, err
	}
	if !approved {
		return updated, nil
	}

	ticket, err := s.tickets.GetByID(ctx, suggestion.TicketID)
	if err != nil {
		return nil, err
	}
	if !domain.ValidTransition(ticket.Status, domain.TicketStatusResolved) {
		return nil, apperrors.NewConflict("ticket cannot be resolved in its current status", map[string]any{
			"status": ticket.Status,
		})
	}

	authorID := reviewer.ID
	reply := &domain.TicketReply{
		TicketID: ticket.ID,
		AuthorID: &authorID,
		Content:  updated.DraftReply,
	}
	if err := s.tickets.AppendReply(ctx, reply); err != nil {
		return nil, err
	}

	now := time.Now()
	ticket.Status = domain.TicketStatusResolved
	ticket.ResolvedAt = &now
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	traceID := uuid.NewString()
	s.recorder.Record(ticket.ID, traceID, domain.ActorAgent, domain.AuditReplySent, map[string]any{
		"reply_id":      reply.ID,
		"suggestion_id": updated.ID,
	})
	s.recorder.Record(ticket.ID, traceID, domain.ActorAgent, domain.AuditTicketResolved, map[string]any{
		"suggestion_id": updated.ID,
		"approved_by":   reviewer.ID,
	})
	return updated, nil
}

// Stats summarizes suggestion volume, auto-close rate and confidence since
// the given time.
func (s *AgentReviewService) Stats(ctx context.Context, since time.Time) (*domain.SuggestionStats, error) {
	return s.suggestions.Stats(ctx, since)
}
