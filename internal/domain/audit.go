package domain

import "time"

// AuditActor identifies who performed an audited action.
type AuditActor string

const (
	ActorSystem AuditActor = "system"
	ActorAgent  AuditActor = "agent"
	ActorUser   AuditActor = "user"
)

// AuditAction is the closed vocabulary of audited pipeline and ticket events.
type AuditAction string

const (
	AuditTicketCreated    AuditAction = "TICKET_CREATED"
	AuditAgentClassified  AuditAction = "AGENT_CLASSIFIED"
	AuditKBRetrieved      AuditAction = "KB_RETRIEVED"
	AuditDraftGenerated   AuditAction = "DRAFT_GENERATED"
	AuditDecisionMade     AuditAction = "DECISION_MADE"
	AuditAutoClosed       AuditAction = "AUTO_CLOSED"
	AuditAssignedToHuman  AuditAction = "ASSIGNED_TO_HUMAN"
	AuditReplySent        AuditAction = "REPLY_SENT"
	AuditStatusChanged    AuditAction = "STATUS_CHANGED"
	AuditTicketResolved   AuditAction = "TICKET_RESOLVED"
	AuditTicketReopened   AuditAction = "TICKET_REOPENED"
	AuditTriageFailed     AuditAction = "TRIAGE_FAILED"
)

// AuditLogEntry is an append-only record of one pipeline step or ticket
// action. Entries are never mutated or deleted; within a ticket they are
// ordered by timestamp, and TraceID groups all entries of one triage run.
type AuditLogEntry struct {
	ID        string
	TicketID  string
	TraceID   string
	Actor     AuditActor
	ActorID   *string
	Action    AuditAction
	Meta      map[string]any
	Timestamp time.Time
}
