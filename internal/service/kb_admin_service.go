package service

import (
	"context"
	"strings"

	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/domain"
	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/repository"
	apperrors "github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/pkg/util/errorutil"
)

// KBAdminService manages knowledge-base articles.
type KBAdminService struct {
	articles repository.ArticleRepository
}

// ArticleInput describes article create/update payload.
type ArticleInput struct {
	Title    string
	Body     string
	Tags     []string
	Category domain.TicketCategory
	Status   domain.ArticleStatus
}

// NewKBAdminService constructs the service.
func NewKBAdminService(articles repository.ArticleRepository) *KBAdminService {
	return &KBAdminService{articles: articles}
}

// CreateArticle adds a new article, defaulting to draft status.
func (s *KBAdminService) CreateArticle(ctx context.Context, input ArticleInput) (*domain.Article, error) {
	if err := validateArticleInput(&input); err != nil {
		return nil, err
	}
	article := &domain.Article{
		Title:    strings.TrimSpace(input.Title),
		Body:     input.Body,
		Tags:     input.Tags,
		Category: input.Category,
		Status:   input.Status,
	}
	if article.Status == "" {
		article.Status = domain.ArticleStatusDraft
	}
	if err := s.articles.Create(ctx, article); err != nil {
		return nil, err
	}
	return article, nil
}

// UpdateArticle overwrites an existing article.
func (s *KBAdminService) UpdateArticle(ctx context.Context, id string, input ArticleInput) (*domain.Article, error) {
	if err := validateArticleInput(&input); err != nil {
		return nil, err
	}
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	article.Title = strings.TrimSpace(input.Title)
	article.Body = input.Body
	article.Tags = input.Tags
	article.Category = input.Category
	if input.Status != "" {
		article.Status = input.Status
	}
	if err := s.articles.Update(ctx, article); err != nil {
		return nil, err
	}
	return article, nil
}

// DeleteArticle removes an article.
func (s *KBAdminService) DeleteArticle(ctx context.Context, id string) error {
	return s.articles.Delete(ctx, id)
}

// GetArticle fetches one article and counts the view.
func (s *KBAdminService) GetArticle(ctx context.Context, id string) (*domain.Article, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	_ = s.articles.IncrementViewCount(ctx, id)
	return article, nil
}

// ListArticles lists articles with optional status/category filters.
func (s *KBAdminService) ListArticles(ctx context.Context, filter repository.ArticleFilter) ([]domain.Article, error) {
	return s.articles.ListWithFilter(ctx, filter)
}

func validateArticleInput(input *ArticleInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return apperrors.NewValidationError("title is required", nil)
	}
	if input.Category != "" && !domain.ValidCategory(input.Category) {
		return apperrors.NewValidationError("unknown category", map[string]any{"category": input.Category})
	}
	if input.Status != "" && input.Status != domain.ArticleStatusDraft && input.Status != domain.ArticleStatusPublished {
		return apperrors.NewValidationError("unknown status", map[string]any{"status": input.Status})
	}
	return nil
}
