package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/domain"
)

// AuditLogRepository is the append-only sink for pipeline and ticket events.
type AuditLogRepository interface {
	Append(ctx context.Context, entry *domain.AuditLogEntry) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.AuditLogEntry, error)
	ListByTrace(ctx context.Context, traceID string) ([]domain.AuditLogEntry, error)
}

type auditLogRepository struct {
	pool *pgxpool.Pool
}

// NewAuditLogRepository instantiates repository.
func NewAuditLogRepository(pool *pgxpool.Pool) AuditLogRepository {
	return &auditLogRepository{pool: pool}
}

func (r *auditLogRepository) Append(ctx context.Context, entry *domain.AuditLogEntry) error {
	const query = `
        INSERT INTO audit_logs (ticket_id, trace_id, actor, actor_id, action, meta, ts)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		entry.TicketID,
		entry.TraceID,
		entry.Actor,
		entry.ActorID,
		entry.Action,
		entry.Meta,
		entry.Timestamp,
	).Scan(&entry.ID)
}

func (r *auditLogRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.AuditLogEntry, error) {
	const query = `
        SELECT id, ticket_id, trace_id, actor, actor_id, action, meta, ts
        FROM audit_logs WHERE ticket_id=$1 ORDER BY ts ASC, id ASC`
	return r.list(ctx, query, ticketID)
}

func (r *auditLogRepository) ListByTrace(ctx context.Context, traceID string) ([]domain.AuditLogEntry, error) {
	const query = `
        SELECT id, ticket_id, trace_id, actor, actor_id, action, meta, ts
        FROM audit_logs WHERE trace_id=$1 ORDER BY ts ASC, id ASC`
	return r.list(ctx, query, traceID)
}

func (r *auditLogRepository) list(ctx context.Context, query string, arg any) ([]domain.AuditLogEntry, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAuditEntries(rows)
}

func scanAuditEntries(rows pgx.Rows) ([]domain.AuditLogEntry, error) {
	var result []domain.AuditLogEntry
	for rows.Next() {
		var entry domain.AuditLogEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.TraceID,
			&entry.Actor,
			&entry.ActorID,
			&entry.Action,
			&entry.Meta,
			&entry.Timestamp,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
