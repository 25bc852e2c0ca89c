package domain

import "time"

// TicketCategory enumerates the supported triage categories.
type TicketCategory string

const (
	CategoryBilling  TicketCategory = "billing"
	CategoryTech     TicketCategory = "tech"
	CategoryShipping TicketCategory = "shipping"
	CategoryOther    TicketCategory = "other"
)

// Categories lists every category in a fixed order.
func Categories() []TicketCategory {
	return []TicketCategory{CategoryBilling, CategoryTech, CategoryShipping, CategoryOther}
}

// ValidCategory reports whether the given category is a known one.
func ValidCategory(c TicketCategory) bool {
	switch c {
	case CategoryBilling, CategoryTech, CategoryShipping, CategoryOther:
		return true
	}
	return false
}

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen         TicketStatus = "open"
	TicketStatusTriaged      TicketStatus = "triaged"
	TicketStatusWaitingHuman TicketStatus = "waiting_human"
	TicketStatusResolved     TicketStatus = "resolved"
	TicketStatusClosed       TicketStatus = "closed"
)

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID             string
	Title          string
	Description    string
	Category       TicketCategory
	Status         TicketStatus
	Priority       TicketPriority
	CreatedBy      string
	AssigneeID     *string
	SuggestionID   *string
	AttachmentURLs []string
	SLABreached    bool
	ResolvedAt     *time.Time
	ClosedAt       *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TicketReply is one entry of a ticket's ordered reply thread.
// A nil AuthorID marks a reply synthesized by the system.
type TicketReply struct {
	ID         string
	TicketID   string
	AuthorID   *string
	Content    string
	IsInternal bool
	CreatedAt  time.Time
}

var allowedTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusOpen:         {TicketStatusTriaged},
	TicketStatusTriaged:      {TicketStatusResolved, TicketStatusWaitingHuman},
	TicketStatusWaitingHuman: {TicketStatusResolved, TicketStatusClosed},
	TicketStatusResolved:     {TicketStatusClosed},
	TicketStatusClosed:       {},
}

// ValidTransition reports whether moving from current to next is allowed.
func ValidTransition(current, next TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}
