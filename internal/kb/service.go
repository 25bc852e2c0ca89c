// Package kb implements knowledge-base search and the relevance ranking used
// by the triage pipeline.
package kb

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/domain"
	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/repository"
)

// Relevance weights for scoring a candidate article against ticket text.
const (
	weightTitleKeyword = 3
	weightBodyKeyword  = 1
	weightTagKeyword   = 2
	weightTitlePhrase  = 5
	weightBodyPhrase   = 2
	weightCategoryHit  = 1
)

// Service ranks knowledge-base articles against ticket text.
type Service struct {
	articles repository.ArticleRepository
	logger   *zap.Logger
}

// NewService constructs the knowledge-base service.
func NewService(articles repository.ArticleRepository, logger *zap.Logger) *Service {
	return &Service{articles: articles, logger: logger}
}

// SearchArticles exposes the repository search for the HTTP surface.
func (s *Service) SearchArticles(ctx context.Context, query string, category *domain.TicketCategory, limit int) ([]domain.Article, error) {
	return s.articles.Search(ctx, query, category, limit)
}

// FindRelevantArticles extracts keywords from the ticket text, searches the
// published corpus (optionally restricted to the category), re-scores each
// candidate and returns up to limit articles ordered by descending relevance.
// Ties keep their search order.
func (s *Service) FindRelevantArticles(ctx context.Context, text string, category domain.TicketCategory, limit int) ([]domain.ScoredArticle, error) {
	if limit <= 0 {
		limit = 5
	}
	keywords := ExtractKeywords(text)

	var cat *domain.TicketCategory
	if domain.ValidCategory(category) {
		cat = &category
	}
	candidates, err := s.articles.Search(ctx, strings.Join(keywords, " "), cat, limit)
	if err != nil {
		return nil, err
	}

	scored := make([]domain.ScoredArticle, 0, len(candidates))
	for _, article := range candidates {
		scored = append(scored, domain.ScoredArticle{
			Article:        article,
			RelevanceScore: relevanceScore(text, keywords, &article),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].RelevanceScore > scored[j].RelevanceScore
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// relevanceScore weights keyword and phrase overlap between the ticket text
// and one article.
func relevanceScore(ticketText string, keywords []string, article *domain.Article) int {
	score := 0
	ticketLower := strings.ToLower(ticketText)
	titleLower := strings.ToLower(article.Title)
	bodyLower := strings.ToLower(article.Body)
	tagsLower := make([]string, len(article.Tags))
	for i, tag := range article.Tags {
		tagsLower[i] = strings.ToLower(tag)
	}

	for _, keyword := range keywords {
		if strings.Contains(titleLower, keyword) {
			score += weightTitleKeyword
		}
		if strings.Contains(bodyLower, keyword) {
			score += weightBodyKeyword
		}
		for _, tag := range tagsLower {
			if strings.Contains(tag, keyword) {
				score += weightTagKeyword
				break
			}
		}
	}

	for _, phrase := range wordPairs(ticketLower) {
		if strings.Contains(titleLower, phrase) {
			score += weightTitlePhrase
		}
		if strings.Contains(bodyLower, phrase) {
			score += weightBodyPhrase
		}
	}

	if article.Category != "" && strings.Contains(ticketLower, string(article.Category)) {
		score += weightCategoryHit
	}
	return score
}
