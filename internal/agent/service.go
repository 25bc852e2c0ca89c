package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/domain"
	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/events"
	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/kb"
	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/observability"
	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/repository"
)

var (
	// ErrTicketNotFound aborts triage immediately; nothing is written beyond
	// a failure audit entry.
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrTriageInProgress means another triage holds the ticket's lease.
	ErrTriageInProgress = errors.New("triage already in progress for this ticket")
)

const retrievalLimit = 5

// Result is the outcome of one triage run.
type Result struct {
	TicketID       string
	TraceID        string
	Classification *Classification
	Articles       []domain.ScoredArticle
	Draft          *Draft
	Decision       Decision
	SuggestionID   string
}

// Timeouts bounds each collaborator call. A retrieval timeout degrades to an
// empty article list; classify and draft timeouts are fatal.
type Timeouts struct {
	Classify time.Duration
	Retrieve time.Duration
	Draft    time.Duration
}

func (t Timeouts) withDefaults() Timeouts {
	if t.Classify <= 0 {
		t.Classify = 15 * time.Second
	}
	if t.Retrieve <= 0 {
		t.Retrieve = 5 * time.Second
	}
	if t.Draft <= 0 {
		t.Draft = 15 * time.Second
	}
	return t
}

// Dependencies bundles collaborators for the triage service.
type Dependencies struct {
	TicketRepo     repository.TicketRepository
	SuggestionRepo repository.SuggestionRepository
	SettingsRepo   repository.SettingsRepository
	Knowledge      *kb.Service
	Provider       Provider
	Recorder       *Recorder
	Locker         Locker
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
	Metrics        *observability.Metrics
	Timeouts       Timeouts
}

// Service sequences the triage pipeline: classify, retrieve, draft, decide,
// persist the suggestion and apply the ticket state transition.
type Service struct {
	tickets     repository.TicketRepository
	suggestions repository.SuggestionRepository
	settings    repository.SettingsRepository
	knowledge   *kb.Service
	provider    Provider
	recorder    *Recorder
	locker      Locker
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	metrics     *observability.Metrics
	timeouts    Timeouts
}

// NewService constructs the triage service.
func NewService(deps Dependencies) *Service {
	return &Service{
		tickets:     deps.TicketRepo,
		suggestions: deps.SuggestionRepo,
		settings:    deps.SettingsRepo,
		knowledge:   deps.Knowledge,
		provider:    deps.Provider,
		recorder:    deps.Recorder,
		locker:      deps.Locker,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
		metrics:     deps.Metrics,
		timeouts:    deps.Timeouts.withDefaults(),
	}
}

// Triage runs the pipeline for one ticket. Each invocation gets a fresh trace
// id and, on success, appends a new suggestion; prior suggestions are never
// updated. A fatal failure leaves the ticket in its pre-triage state.
func (s *Service) Triage(ctx context.Context, ticketID string) (*Result, error) {
	release, acquired, err := s.locker.Acquire(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("acquire triage lease: %w", err)
	}
	if !acquired {
		return nil, ErrTriageInProgress
	}
	defer release()

	traceID := uuid.NewString()
	start := time.Now()
	L := s.logger.With(zap.String("ticket_id", ticketID), zap.String("trace_id", traceID))
	L.Info("triage started")

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.recordFailure(ticketID, traceID, "load", ErrTicketNotFound)
			s.observe("failed", 0, start)
			return nil, ErrTicketNotFound
		}
		s.recordFailure(ticketID, traceID, "load", err)
		s.observe("failed", 0, start)
		return nil, fmt.Errorf("load ticket: %w", err)
	}

	s.recorder.Record(ticket.ID, traceID, domain.ActorSystem, domain.AuditTicketCreated, map[string]any{
		"title":    ticket.Title,
		"category": ticket.Category,
		"status":   ticket.Status,
	})

	// Snapshot the settings once so a threshold change cannot land between
	// classification and decision within this run.
	settings := s.settingsSnapshot(ctx, L)

	text := ticket.Title + "\n\n" + ticket.Description

	classification, err := s.classify(ctx, ticket, traceID, text)
	if err != nil {
		s.recordFailure(ticket.ID, traceID, "classify", err)
		s.observe("failed", 0, start)
		return nil, fmt.Errorf("classify ticket: %w", err)
	}

	articles := s.retrieve(ctx, ticket, traceID, text, classification.PredictedCategory, L)

	draft, err := s.draft(ctx, ticket, traceID, text, articles)
	if err != nil {
		s.recordFailure(ticket.ID, traceID, "draft", err)
		s.observe("failed", classification.Confidence, start)
		return nil, fmt.Errorf("draft reply: %w", err)
	}

	decision := Decide(classification.Confidence, settings)
	s.recorder.Record(ticket.ID, traceID, domain.ActorSystem, domain.AuditDecisionMade, map[string]any{
		"auto_closed":        decision.AutoClosed,
		"confidence":         decision.Confidence,
		"threshold":          decision.Threshold,
		"auto_close_enabled": decision.AutoCloseEnabled,
		"reasoning":          decision.Reasoning,
	})

	suggestion := &domain.AgentSuggestion{
		TicketID:          ticket.ID,
		TraceID:           traceID,
		PredictedCategory: classification.PredictedCategory,
		ArticleIDs:        articleIDs(articles),
		DraftReply:        draft.Reply,
		Confidence:        classification.Confidence,
		AutoClosed:        decision.AutoClosed,
		ModelInfo: domain.ModelInfo{
			Provider:      classification.ModelInfo.Provider,
			Model:         classification.ModelInfo.Model,
			PromptVersion: classification.ModelInfo.PromptVersion,
			LatencyMs:     classification.ModelInfo.LatencyMs + draft.ModelInfo.LatencyMs,
		},
	}
	if err := s.suggestions.Create(ctx, suggestion); err != nil {
		s.recordFailure(ticket.ID, traceID, "persist_suggestion", err)
		s.observe("failed", classification.Confidence, start)
		return nil, fmt.Errorf("persist suggestion: %w", err)
	}

	ticket.Category = classification.PredictedCategory
	ticket.Status = domain.TicketStatusTriaged
	ticket.SuggestionID = &suggestion.ID
	if err := s.tickets.Update(ctx, ticket); err != nil {
		// Compensate so no suggestion record exists without its matching
		// ticket transition.
		if delErr := s.suggestions.Delete(context.WithoutCancel(ctx), suggestion.ID); delErr != nil {
			L.Error("failed to compensate suggestion after ticket update failure", zap.Error(delErr))
		}
		s.recordFailure(ticket.ID, traceID, "update_ticket", err)
		s.observe("failed", classification.Confidence, start)
		return nil, fmt.Errorf("update ticket: %w", err)
	}

	outcome := "assigned_to_human"
	if decision.AutoClosed {
		outcome = "auto_closed"
		err = s.autoClose(ctx, ticket, suggestion, traceID)
	} else {
		err = s.assignToHuman(ctx, ticket, traceID)
	}
	if err != nil {
		s.recordFailure(ticket.ID, traceID, "execute_decision", err)
		s.observe("failed", classification.Confidence, start)
		return nil, err
	}

	s.publishCompleted(ctx, ticket, suggestion, traceID)
	s.observe(outcome, classification.Confidence, start)
	L.Info("triage completed",
		zap.String("predicted_category", string(classification.PredictedCategory)),
		zap.Float64("confidence", classification.Confidence),
		zap.Bool("auto_closed", decision.AutoClosed),
	)

	return &Result{
		TicketID:       ticket.ID,
		TraceID:        traceID,
		Classification: classification,
		Articles:       articles,
		Draft:          draft,
		Decision:       decision,
		SuggestionID:   suggestion.ID,
	}, nil
}

func (s *Service) classify(ctx context.Context, ticket *domain.Ticket, traceID, text string) (*Classification, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeouts.Classify)
	defer cancel()

	classification, err := s.provider.Classify(ctx, text)
	if err != nil {
		return nil, err
	}
	s.recorder.Record(ticket.ID, traceID, domain.ActorSystem, domain.AuditAgentClassified, map[string]any{
		"predicted_category": classification.PredictedCategory,
		"confidence":         classification.Confidence,
		"original_category":  ticket.Category,
		"provider":           classification.ModelInfo.Provider,
		"model":              classification.ModelInfo.Model,
		"latency_ms":         classification.ModelInfo.LatencyMs,
	})
	return classification, nil
}

// retrieve degrades to an empty article list on any retrieval failure so the
// pipeline still produces a draft.
func (s *Service) retrieve(ctx context.Context, ticket *domain.Ticket, traceID, text string, category domain.TicketCategory, L *zap.Logger) []domain.ScoredArticle {
	ctx, cancel := context.WithTimeout(ctx, s.timeouts.Retrieve)
	defer cancel()

	articles, err := s.knowledge.FindRelevantArticles(ctx, text, category, retrievalLimit)
	if err != nil {
		L.Warn("knowledge retrieval failed, continuing with empty article list", zap.Error(err))
		s.recorder.Record(ticket.ID, traceID, domain.ActorSystem, domain.AuditKBRetrieved, map[string]any{
			"articles_found": 0,
			"recovered":      true,
			"error":          err.Error(),
		})
		return nil
	}

	meta := map[string]any{
		"articles_found":  len(articles),
		"article_ids":     articleIDs(articles),
		"search_category": category,
	}
	if len(articles) > 0 {
		meta["top_relevance_score"] = articles[0].RelevanceScore
	}
	s.recorder.Record(ticket.ID, traceID, domain.ActorSystem, domain.AuditKBRetrieved, meta)
	return articles
}

func (s *Service) draft(ctx context.Context, ticket *domain.Ticket, traceID, text string, articles []domain.ScoredArticle) (*Draft, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeouts.Draft)
	defer cancel()

	plain := make([]domain.Article, len(articles))
	for i, scored := range articles {
		plain[i] = scored.Article
	}
	draft, err := s.provider.Draft(ctx, text, plain)
	if err != nil {
		return nil, err
	}
	s.recorder.Record(ticket.ID, traceID, domain.ActorSystem, domain.AuditDraftGenerated, map[string]any{
		"draft_length":    len(draft.Reply),
		"citations_count": len(draft.Citations),
		"provider":        draft.ModelInfo.Provider,
		"latency_ms":      draft.ModelInfo.LatencyMs,
	})
	return draft, nil
}

func (s *Service) autoClose(ctx context.Context, ticket *domain.Ticket, suggestion *domain.AgentSuggestion, traceID string) error {
	reply := &domain.TicketReply{
		TicketID: ticket.ID,
		Content:  suggestion.DraftReply,
	}
	if err := s.tickets.AppendReply(ctx, reply); err != nil {
		return fmt.Errorf("append system reply: %w", err)
	}

	now := time.Now()
	ticket.Status = domain.TicketStatusResolved
	ticket.ResolvedAt = &now
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return fmt.Errorf("resolve ticket: %w", err)
	}

	s.recorder.Record(ticket.ID, traceID, domain.ActorSystem, domain.AuditAutoClosed, map[string]any{
		"confidence":   suggestion.Confidence,
		"reply_length": len(suggestion.DraftReply),
	})
	return nil
}

func (s *Service) assignToHuman(ctx context.Context, ticket *domain.Ticket, traceID string) error {
	ticket.Status = domain.TicketStatusWaitingHuman
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return fmt.Errorf("assign ticket to human: %w", err)
	}
	s.recorder.Record(ticket.ID, traceID, domain.ActorSystem, domain.AuditAssignedToHuman, map[string]any{
		"reason": "Low confidence or auto-close disabled",
	})
	return nil
}

// settingsSnapshot loads the triage settings once per invocation. When the
// load fails the pipeline continues with defaults but auto-close disabled,
// so a settings outage can never promote a ticket to auto-close.
func (s *Service) settingsSnapshot(ctx context.Context, L *zap.Logger) domain.TriageSettings {
	settings, err := s.settings.GetOrDefault(ctx)
	if err != nil {
		L.Warn("failed to load triage settings, defaulting to human review", zap.Error(err))
		settings = domain.DefaultTriageSettings()
		settings.AutoCloseEnabled = false
	}
	return settings
}

func (s *Service) recordFailure(ticketID, traceID, stage string, err error) {
	s.recorder.Record(ticketID, traceID, domain.ActorSystem, domain.AuditTriageFailed, map[string]any{
		"stage": stage,
		"error": err.Error(),
	})
}

func (s *Service) publishCompleted(ctx context.Context, ticket *domain.Ticket, suggestion *domain.AgentSuggestion, traceID string) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTriageCompleted,
		TicketID:  ticket.ID,
		Actor:     events.Actor{Type: domain.ActorSystem},
		Timestamp: time.Now(),
		Payload: events.TriageCompletedPayload{
			TraceID:           traceID,
			SuggestionID:      suggestion.ID,
			PredictedCategory: suggestion.PredictedCategory,
			Confidence:        suggestion.Confidence,
			AutoClosed:        suggestion.AutoClosed,
		},
	})
}

func (s *Service) observe(outcome string, confidence float64, start time.Time) {
	s.metrics.ObserveTriage(outcome, s.provider.Name(), confidence, time.Since(start))
}

func articleIDs(articles []domain.ScoredArticle) []string {
	ids := make([]string, len(articles))
	for i, article := range articles {
		ids[i] = article.ID
	}
	return ids
}
