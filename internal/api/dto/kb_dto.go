package dto

import (
	"time"

	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/domain"
)

// ArticleRequest payload for create/update.
type ArticleRequest struct {
	Title    string                `json:"title"`
	Body     string                `json:"body"`
	Tags     []string              `json:"tags"`
	Category domain.TicketCategory `json:"category"`
	Status   domain.ArticleStatus  `json:"status"`
}

// ArticleResponse public article view.
type ArticleResponse struct {
	ID        string                `json:"id"`
	Title     string                `json:"title"`
	Body      string                `json:"body"`
	Tags      []string              `json:"tags"`
	Category  domain.TicketCategory `json:"category"`
	Status    domain.ArticleStatus  `json:"status"`
	ViewCount int                   `json:"view_count"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// ScoredArticleResponse attaches the relevance score used by retrieval.
type ScoredArticleResponse struct {
	ArticleResponse
	RelevanceScore int `json:"relevance_score"`
}

// NewArticleResponse maps an article.
func NewArticleResponse(a *domain.Article) ArticleResponse {
	return ArticleResponse{
		ID:        a.ID,
		Title:     a.Title,
		Body:      a.Body,
		Tags:      a.Tags,
		Category:  a.Category,
		Status:    a.Status,
		ViewCount: a.ViewCount,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// NewArticleList maps a slice of articles.
func NewArticleList(articles []domain.Article) []ArticleResponse {
	out := make([]ArticleResponse, 0, len(articles))
	for i := range articles {
		out = append(out, NewArticleResponse(&articles[i]))
	}
	return out
}
