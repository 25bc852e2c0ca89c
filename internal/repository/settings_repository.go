package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/domain"
)

// SettingsRepository persists the singleton triage settings row.
type SettingsRepository interface {
	// GetOrDefault returns a snapshot of the stored settings, or the
	// deployment defaults when no row exists yet.
	GetOrDefault(ctx context.Context) (domain.TriageSettings, error)
	Update(ctx context.Context, settings domain.TriageSettings) (domain.TriageSettings, error)
}

type settingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository instantiates repository.
func NewSettingsRepository(pool *pgxpool.Pool) SettingsRepository {
	return &settingsRepository{pool: pool}
}

func (r *settingsRepository) GetOrDefault(ctx context.Context) (domain.TriageSettings, error) {
	const query = `
        SELECT auto_close_enabled, confidence_threshold, category_thresholds, sla_hours, updated_at
        FROM triage_settings WHERE id=1`
	var settings domain.TriageSettings
	var thresholds map[string]float64
	err := r.pool.QueryRow(ctx, query).Scan(
		&settings.AutoCloseEnabled,
		&settings.ConfidenceThreshold,
		&thresholds,
		&settings.SLAHours,
		&settings.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DefaultTriageSettings(), nil
	}
	if err != nil {
		return domain.TriageSettings{}, err
	}
	settings.CategoryThresholds = make(map[domain.TicketCategory]float64, len(thresholds))
	for category, threshold := range thresholds {
		settings.CategoryThresholds[domain.TicketCategory(category)] = threshold
	}
	return settings, nil
}

func (r *settingsRepository) Update(ctx context.Context, settings domain.TriageSettings) (domain.TriageSettings, error) {
	thresholds := make(map[string]float64, len(settings.CategoryThresholds))
	for category, threshold := range settings.CategoryThresholds {
		thresholds[string(category)] = threshold
	}
	const query = `
        INSERT INTO triage_settings (id, auto_close_enabled, confidence_threshold, category_thresholds, sla_hours, updated_at)
        VALUES (1, $1, $2, $3, $4, NOW())
        ON CONFLICT (id) DO UPDATE SET
            auto_close_enabled=EXCLUDED.auto_close_enabled,
            confidence_threshold=EXCLUDED.confidence_threshold,
            category_thresholds=EXCLUDED.category_thresholds,
            sla_hours=EXCLUDED.sla_hours,
            updated_at=NOW()
        RETURNING updated_at`
	if err := r.pool.QueryRow(ctx, query,
		settings.AutoCloseEnabled,
		settings.ConfidenceThreshold,
		thresholds,
		settings.SLAHours,
	).Scan(&settings.UpdatedAt); err != nil {
		return domain.TriageSettings{}, err
	}
	return settings, nil
}
