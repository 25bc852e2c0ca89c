package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/agent"
	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/domain"
	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/events"
	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/repository"
	apperrors "github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows outside the triage pipeline.
type TicketService struct {
	tickets    repository.TicketRepository
	audits     repository.AuditLogRepository
	recorder   *agent.Recorder
	dispatcher events.Dispatcher
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	AuditRepo  repository.AuditLogRepository
	Recorder   *agent.Recorder
	Dispatcher events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title          string
	Description    string
	Category       domain.TicketCategory
	Priority       domain.TicketPriority
	AttachmentURLs []string
}

// TicketListFilter describes listing filters.
type TicketListFilter struct {
	Statuses    []domain.TicketStatus
	Categories  []domain.TicketCategory
	AssigneeID  *string
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		audits:     deps.AuditRepo,
		recorder:   deps.Recorder,
		dispatcher: deps.Dispatcher,
	}
}

// CreateTicket creates a ticket and schedules it for triage via the
// ticket-created event.
func (s *TicketService) CreateTicket(ctx context.Context, user *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title is required", nil)
	}
	category := input.Category
	if category == "" {
		category = domain.CategoryOther
	}
	if !domain.ValidCategory(category) {
		return nil, apperrors.NewValidationError("unknown category", map[string]any{"category": category})
	}

	ticket := &domain.Ticket{
		Title:          title,
		Description:    strings.TrimSpace(input.Description),
		Category:       category,
		Status:         domain.TicketStatusOpen,
		Priority:       input.Priority,
		CreatedBy:      user.ID,
		AttachmentURLs: input.AttachmentURLs,
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    userActor(user.ID),
		Payload: events.TicketCreatedPayload{
			Title:    ticket.Title,
			Category: ticket.Category,
			Priority: ticket.Priority,
		},
	})
	return ticket, nil
}

// ListTickets returns tickets visible to the caller: staff see everything,
// end-users only their own.
func (s *TicketService) ListTickets(ctx context.Context, user *domain.User, filter TicketListFilter) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{
		Statuses:    filter.Statuses,
		Categories:  filter.Categories,
		AssigneeID:  filter.AssigneeID,
		SearchTerm:  filter.SearchTerm,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	}
	if !user.IsStaff() {
		repoFilter.CreatedBy = &user.ID
	}
	return s.tickets.ListWithFilter(ctx, repoFilter)
}

// GetTicket fetches a ticket with its conversation, enforcing ownership for
// end-users. Internal notes are filtered out for non-staff callers.
func (s *TicketService) GetTicket(ctx context.Context, user *domain.User, ticketID string) (*domain.Ticket, []domain.TicketReply, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	if !user.IsStaff() && ticket.CreatedBy != user.ID {
		return nil, nil, apperrors.NewForbidden("access denied")
	}
	replies, err := s.tickets.ListReplies(ctx, ticket.ID)
	if err != nil {
		return nil, nil, err
	}
	if !user.IsStaff() {
		visible := replies[:0]
		for _, reply := range replies {
			if !reply.IsInternal {
				visible = append(visible, reply)
			}
		}
		replies = visible
	}
	return ticket, replies, nil
}

// AddReply appends a reply. End-users may only post public replies to their
// own tickets; staff may post internal notes anywhere. A staff reply to a
// ticket waiting on a human resolves it.
func (s *TicketService) AddReply(ctx context.Context, user *domain.User, ticketID, content string, internal bool) (*domain.TicketReply, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("reply content is required", nil)
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !user.IsStaff() {
		if ticket.CreatedBy != user.ID {
			return nil, apperrors.NewForbidden("access denied")
		}
		if internal {
			return nil, apperrors.NewForbidden("internal notes are staff only")
		}
	}
	if ticket.Status == domain.TicketStatusClosed {
		return nil, apperrors.NewConflict("ticket is closed", nil)
	}

	authorID := user.ID
	reply := &domain.TicketReply{
		TicketID:   ticket.ID,
		AuthorID:   &authorID,
		Content:    content,
		IsInternal: internal,
	}
	if err := s.tickets.AppendReply(ctx, reply); err != nil {
		return nil, err
	}

	traceID := uuid.NewString()
	s.recorder.Record(ticket.ID, traceID, actorFor(user), domain.AuditReplySent, map[string]any{
		"reply_id":    reply.ID,
		"is_internal": internal,
	})

	if user.IsStaff() && !internal && ticket.Status == domain.TicketStatusWaitingHuman {
		if _, err := s.transition(ctx, user, ticket, domain.TicketStatusResolved, traceID, "agent_replied"); err != nil {
			return nil, err
		}
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketReplyAdded,
		TicketID: ticket.ID,
		Actor:    userActor(user.ID),
		Payload: events.TicketReplyAddedPayload{
			ReplyID:     reply.ID,
			IsInternal:  internal,
			BodyPreview: stringPreview(content, 120),
		},
	})
	return reply, nil
}

// UpdateStatus moves a ticket along the lifecycle. End-users may only close
// their own resolved tickets; staff may perform any valid transition.
func (s *TicketService) UpdateStatus(ctx context.Context, user *domain.User, ticketID string, newStatus domain.TicketStatus, comment string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !user.IsStaff() {
		if ticket.CreatedBy != user.ID {
			return nil, apperrors.NewForbidden("access denied")
		}
		if newStatus != domain.TicketStatusClosed {
			return nil, apperrors.NewForbidden("end-users may only close tickets")
		}
	}
	if !domain.ValidTransition(ticket.Status, newStatus) {
		return nil, apperrors.NewConflict("invalid status transition", map[string]any{
			"from": ticket.Status,
			"to":   newStatus,
		})
	}
	return s.transition(ctx, user, ticket, newStatus, uuid.NewString(), comment)
}

// AssignTicket sets the ticket's assignee.
func (s *TicketService) AssignTicket(ctx context.Context, user *domain.User, ticketID, assigneeID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	ticket.AssigneeID = &assigneeID
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	s.recorder.Record(ticket.ID, uuid.NewString(), actorFor(user), domain.AuditAssignedToHuman, map[string]any{
		"assignee_id": assigneeID,
	})
	return ticket, nil
}

// AuditTimeline returns the ticket's audit entries ordered by time.
func (s *TicketService) AuditTimeline(ctx context.Context, user *domain.User, ticketID string) ([]domain.AuditLogEntry, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !user.IsStaff() && ticket.CreatedBy != user.ID {
		return nil, apperrors.NewForbidden("access denied")
	}
	return s.audits.ListByTicket(ctx, ticketID)
}

// transition applies a validated status change and records it.
func (s *TicketService) transition(ctx context.Context, user *domain.User, ticket *domain.Ticket, newStatus domain.TicketStatus, traceID, comment string) (*domain.Ticket, error) {
	oldStatus := ticket.Status
	now := time.Now()
	switch newStatus {
	case domain.TicketStatusResolved:
		ticket.ResolvedAt = &now
	case domain.TicketStatusClosed:
		ticket.ClosedAt = &now
	}
	ticket.Status = newStatus
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	s.recorder.Record(ticket.ID, traceID, actorFor(user), domain.AuditStatusChanged, map[string]any{
		"old_status": oldStatus,
		"new_status": newStatus,
		"comment":    comment,
	})
	if newStatus == domain.TicketStatusResolved {
		s.recorder.Record(ticket.ID, traceID, actorFor(user), domain.AuditTicketResolved, map[string]any{
			"comment": comment,
		})
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    userActor(user.ID),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Comment:   comment,
		},
	})
	return ticket, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}

func userActor(userID string) events.Actor {
	return events.Actor{Type: domain.ActorUser, UserID: &userID}
}

func actorFor(user *domain.User) domain.AuditActor {
	if user.IsStaff() {
		return domain.ActorAgent
	}
	return domain.ActorUser
}

func stringPreview(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
