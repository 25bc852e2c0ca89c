// Command seed loads a development fixture set: three accounts (admin, agent,
// end-user), a published knowledge base and a handful of open tickets.
package main

import (
	"context"
	"errors"
	"log"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/auth"
	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/config"
	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/domain"
	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/observability"
	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/persistence"
	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	pool := pg.PoolHandle()
	users := repository.NewUserRepository(pool)
	articles := repository.NewArticleRepository(pool)
	tickets := repository.NewTicketRepository(pool)

	userID := seedUsers(ctx, logger, users, cfg.Auth.BcryptCost)
	seedArticles(ctx, logger, articles)
	seedTickets(ctx, logger, tickets, userID)

	logger.Info("seed complete")
}

func seedUsers(ctx context.Context, logger *zap.Logger, users repository.UserRepository, bcryptCost int) string {
	fixtures := []struct {
		name     string
		email    string
		password string
		role     domain.UserRole
	}{
		{"Admin", "admin@helpdesk.local", "AdminPass123!", domain.RoleAdmin},
		{"Support Agent", "agent@helpdesk.local", "AgentPass123!", domain.RoleAgent},
		{"John Customer", "user@helpdesk.local", "UserPass123!", domain.RoleUser},
	}

	var endUserID string
	for _, f := range fixtures {
		existing, err := users.GetByEmail(ctx, f.email)
		if err == nil {
			if f.role == domain.RoleUser {
				endUserID = existing.ID
			}
			continue
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			logger.Fatal("failed to look up user", zap.String("email", f.email), zap.Error(err))
		}
		hash, err := auth.HashPassword(f.password, bcryptCost)
		if err != nil {
			logger.Fatal("failed to hash password", zap.Error(err))
		}
		user := &domain.User{Name: f.name, Email: f.email, PasswordHash: hash, Role: f.role}
		if err := users.Create(ctx, user); err != nil {
			logger.Fatal("failed to create user", zap.String("email", f.email), zap.Error(err))
		}
		if f.role == domain.RoleUser {
			endUserID = user.ID
		}
		logger.Info("created user", zap.String("email", f.email), zap.String("role", string(f.role)))
	}
	return endUserID
}

func seedArticles(ctx context.Context, logger *zap.Logger, articles repository.ArticleRepository) {
	fixtures := []domain.Article{
		{
			Title:    "How to update your payment method",
			Body:     "Go to Settings, then Billing, and click Update Payment Method. We accept all major credit cards. Changes take effect on your next invoice.",
			Tags:     []string{"billing", "payments"},
			Category: domain.CategoryBilling,
			Status:   domain.ArticleStatusPublished,
		},
		{
			Title:    "Resolving duplicate charges and refunds",
			Body:     "If you were charged twice for the same invoice, contact support with both transaction ids. Refunds for duplicate charges are processed within 5 business days.",
			Tags:     []string{"billing", "refund", "charge"},
			Category: domain.CategoryBilling,
			Status:   domain.ArticleStatusPublished,
		},
		{
			Title:    "Troubleshooting 500 errors",
			Body:     "A 500 error usually means a transient server problem. Clear your cache, retry in a few minutes and check the status page. If the error persists, include the request id when contacting support.",
			Tags:     []string{"tech", "errors", "server"},
			Category: domain.CategoryTech,
			Status:   domain.ArticleStatusPublished,
		},
		{
			Title:    "Tracking your shipment",
			Body:     "Every shipment confirmation email includes a tracking number. Tracking updates can lag by 24 hours. If your package shows as delivered but has not arrived, check with neighbors first.",
			Tags:     []string{"shipping", "delivery", "tracking"},
			Category: domain.CategoryShipping,
			Status:   domain.ArticleStatusPublished,
		},
		{
			Title:    "What to do when your package is delayed",
			Body:     "Delayed packages are usually delivered within 2 extra business days. If your order has not moved for 5 days, we can open an investigation with the carrier.",
			Tags:     []string{"shipping", "delayed"},
			Category: domain.CategoryShipping,
			Status:   domain.ArticleStatusPublished,
		},
	}

	for i := range fixtures {
		if err := articles.Create(ctx, &fixtures[i]); err != nil {
			logger.Fatal("failed to create article", zap.String("title", fixtures[i].Title), zap.Error(err))
		}
	}
	logger.Info("created articles", zap.Int("count", len(fixtures)))
}

func seedTickets(ctx context.Context, logger *zap.Logger, tickets repository.TicketRepository, createdBy string) {
	if createdBy == "" {
		logger.Warn("no end-user account, skipping ticket fixtures")
		return
	}
	fixtures := []domain.Ticket{
		{
			Title:       "I was charged twice for my subscription",
			Description: "My card shows two charges for this month's invoice. Please refund the duplicate charge.",
			Category:    domain.CategoryOther,
			Status:      domain.TicketStatusOpen,
			Priority:    domain.TicketPriorityHigh,
			CreatedBy:   createdBy,
		},
		{
			Title:       "App shows 500 error when uploading files",
			Description: "Every time I try to upload a file the app crashes with a 500 internal server error.",
			Category:    domain.CategoryOther,
			Status:      domain.TicketStatusOpen,
			Priority:    domain.TicketPriorityMedium,
			CreatedBy:   createdBy,
		},
		{
			Title:       "Where is my package?",
			Description: "My order shipped ten days ago and the tracking has not updated in a week. The delivery is delayed.",
			Category:    domain.CategoryOther,
			Status:      domain.TicketStatusOpen,
			Priority:    domain.TicketPriorityMedium,
			CreatedBy:   createdBy,
		},
	}
	for i := range fixtures {
		if err := tickets.Create(ctx, &fixtures[i]); err != nil {
			logger.Fatal("failed to create ticket", zap.String("title", fixtures[i].Title), zap.Error(err))
		}
	}
	logger.Info("created tickets", zap.Int("count", len(fixtures)))
}
