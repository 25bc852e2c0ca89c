package dto

import (
	"time"

	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	Category       domain.TicketCategory `json:"category"`
	Priority       domain.TicketPriority `json:"priority"`
	AttachmentURLs []string              `json:"attachment_urls"`
}

// TicketSummary response.
type TicketSummary struct {
	ID           string                `json:"id"`
	Title        string                `json:"title"`
	Category     domain.TicketCategory `json:"category"`
	Status       domain.TicketStatus   `json:"status"`
	Priority     domain.TicketPriority `json:"priority"`
	AssigneeID   *string               `json:"assignee_id"`
	SuggestionID *string               `json:"suggestion_id"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info with its conversation.
type TicketDetailResponse struct {
	ID             string                `json:"id"`
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	Category       domain.TicketCategory `json:"category"`
	Status         domain.TicketStatus   `json:"status"`
	Priority       domain.TicketPriority `json:"priority"`
	CreatedBy      string                `json:"created_by"`
	AssigneeID     *string               `json:"assignee_id"`
	SuggestionID   *string               `json:"suggestion_id"`
	AttachmentURLs []string              `json:"attachment_urls"`
	ResolvedAt     *time.Time            `json:"resolved_at"`
	ClosedAt       *time.Time            `json:"closed_at"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
	Replies        []ReplyResponse       `json:"replies"`
}

// ReplyResponse represents one conversation entry. A nil author is the
// system's automated reply.
type ReplyResponse struct {
	ID         string    `json:"id"`
	AuthorID   *string   `json:"author_id"`
	Content    string    `json:"content"`
	IsInternal bool      `json:"is_internal"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateReplyRequest payload.
type CreateReplyRequest struct {
	Content    string `json:"content"`
	IsInternal bool   `json:"is_internal"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status  domain.TicketStatus `json:"status"`
	Comment string              `json:"comment"`
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	AssigneeID string `json:"assignee_id"`
}

// AuditEntryResponse is one timeline row.
type AuditEntryResponse struct {
	ID        string             `json:"id"`
	TraceID   string             `json:"trace_id"`
	Actor     domain.AuditActor  `json:"actor"`
	Action    domain.AuditAction `json:"action"`
	Meta      map[string]any     `json:"meta"`
	Timestamp time.Time          `json:"timestamp"`
}

// NewTicketSummary maps a ticket.
func NewTicketSummary(t *domain.Ticket) TicketSummary {
	return TicketSummary{
		ID:           t.ID,
		Title:        t.Title,
		Category:     t.Category,
		Status:       t.Status,
		Priority:     t.Priority,
		AssigneeID:   t.AssigneeID,
		SuggestionID: t.SuggestionID,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

// NewTicketDetail maps a ticket with its replies.
func NewTicketDetail(t *domain.Ticket, replies []domain.TicketReply) TicketDetailResponse {
	out := TicketDetailResponse{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		Category:       t.Category,
		Status:         t.Status,
		Priority:       t.Priority,
		CreatedBy:      t.CreatedBy,
		AssigneeID:     t.AssigneeID,
		SuggestionID:   t.SuggestionID,
		AttachmentURLs: t.AttachmentURLs,
		ResolvedAt:     t.ResolvedAt,
		ClosedAt:       t.ClosedAt,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
		Replies:        make([]ReplyResponse, 0, len(replies)),
	}
	for _, reply := range replies {
		out.Replies = append(out.Replies, ReplyResponse{
			ID:         reply.ID,
			AuthorID:   reply.AuthorID,
			Content:    reply.Content,
			IsInternal: reply.IsInternal,
			CreatedAt:  reply.CreatedAt,
		})
	}
	return out
}

// NewAuditEntries maps a timeline.
func NewAuditEntries(entries []domain.AuditLogEntry) []AuditEntryResponse {
	out := make([]AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, AuditEntryResponse{
			ID:        e.ID,
			TraceID:   e.TraceID,
			Actor:     e.Actor,
			Action:    e.Action,
			Meta:      e.Meta,
			Timestamp: e.Timestamp,
		})
	}
	return out
}
