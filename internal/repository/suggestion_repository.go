package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/domain"
)

// SuggestionRepository persists triage outcomes.
type SuggestionRepository interface {
	Create(ctx context.Context, suggestion *domain.AgentSuggestion) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.AgentSuggestion, error)
	GetLatestByTicket(ctx context.Context, ticketID string) (*domain.AgentSuggestion, error)
	Approve(ctx context.Context, id, approverID string, approved bool, draftReply *string) (*domain.AgentSuggestion, error)
	Stats(ctx context.Context, since time.Time) (*domain.SuggestionStats, error)
}

type suggestionRepository struct {
	pool *pgxpool.Pool
}

// NewSuggestionRepository instantiates repository.
func NewSuggestionRepository(pool *pgxpool.Pool) SuggestionRepository {
	return &suggestionRepository{pool: pool}
}

const suggestionColumns = `id, ticket_id, trace_id, predicted_category, article_ids, draft_reply, confidence,
       auto_closed, model_provider, model_name, prompt_version, latency_ms, approved, approved_by, approved_at, created_at`

func (r *suggestionRepository) Create(ctx context.Context, s *domain.AgentSuggestion) error {
	const query = `
        INSERT INTO agent_suggestions (ticket_id, trace_id, predicted_category, article_ids, draft_reply,
            confidence, auto_closed, model_provider, model_name, prompt_version, latency_ms)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		s.TicketID,
		s.TraceID,
		s.PredictedCategory,
		s.ArticleIDs,
		s.DraftReply,
		s.Confidence,
		s.AutoClosed,
		s.ModelInfo.Provider,
		s.ModelInfo.Model,
		s.ModelInfo.PromptVersion,
		s.ModelInfo.LatencyMs,
	).Scan(&s.ID, &s.CreatedAt)
}

func (r *suggestionRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM agent_suggestions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *suggestionRepository) GetByID(ctx context.Context, id string) (*domain.AgentSuggestion, error) {
	return r.fetchSingle(ctx, `SELECT `+suggestionColumns+` FROM agent_suggestions WHERE id=$1`, id)
}

func (r *suggestionRepository) GetLatestByTicket(ctx context.Context, ticketID string) (*domain.AgentSuggestion, error) {
	const query = `SELECT ` + suggestionColumns + `
        FROM agent_suggestions WHERE ticket_id=$1 ORDER BY created_at DESC LIMIT 1`
	return r.fetchSingle(ctx, query, ticketID)
}

func (r *suggestionRepository) Approve(ctx context.Context, id, approverID string, approved bool, draftReply *string) (*domain.AgentSuggestion, error) {
	const query = `
        UPDATE agent_suggestions
        SET approved=$1, approved_by=$2, approved_at=NOW(), draft_reply=COALESCE($3, draft_reply)
        WHERE id=$4
        RETURNING ` + suggestionColumns
	var s domain.AgentSuggestion
	if err := r.pool.QueryRow(ctx, query, approved, approverID, draftReply, id).Scan(suggestionFields(&s)...); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *suggestionRepository) Stats(ctx context.Context, since time.Time) (*domain.SuggestionStats, error) {
	stats := &domain.SuggestionStats{ByCategory: make(map[domain.TicketCategory]int64)}

	const totals = `
        SELECT COUNT(*), COUNT(*) FILTER (WHERE auto_closed), COALESCE(AVG(confidence), 0)
        FROM agent_suggestions WHERE created_at >= $1`
	if err := r.pool.QueryRow(ctx, totals, since).Scan(&stats.Total, &stats.AutoClosed, &stats.AverageConfidence); err != nil {
		return nil, err
	}

	const byCategory = `
        SELECT predicted_category, COUNT(*)
        FROM agent_suggestions WHERE created_at >= $1
        GROUP BY predicted_category`
	rows, err := r.pool.Query(ctx, byCategory, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var category domain.TicketCategory
		var count int64
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		stats.ByCategory[category] = count
	}
	return stats, rows.Err()
}

func (r *suggestionRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.AgentSuggestion, error) {
	var s domain.AgentSuggestion
	if err := r.pool.QueryRow(ctx, query, arg).Scan(suggestionFields(&s)...); err != nil {
		return nil, err
	}
	return &s, nil
}

func suggestionFields(s *domain.AgentSuggestion) []any {
	return []any{
		&s.ID,
		&s.TicketID,
		&s.TraceID,
		&s.PredictedCategory,
		&s.ArticleIDs,
		&s.DraftReply,
		&s.Confidence,
		&s.AutoClosed,
		&s.ModelInfo.Provider,
		&s.ModelInfo.Model,
		&s.ModelInfo.PromptVersion,
		&s.ModelInfo.LatencyMs,
		&s.Approved,
		&s.ApprovedBy,
		&s.ApprovedAt,
		&s.CreatedAt,
	}
}
