package domain

import "time"

// ArticleStatus differentiates drafts from published knowledge-base content.
type ArticleStatus string

const (
	ArticleStatusDraft     ArticleStatus = "draft"
	ArticleStatusPublished ArticleStatus = "published"
)

// Article is a knowledge-base entry surfaced during triage.
type Article struct {
	ID           string
	Title        string
	Body         string
	Tags         []string
	Status       ArticleStatus
	Category     TicketCategory
	AuthorID     string
	ViewCount    int
	HelpfulCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ScoredArticle pairs an article with its computed relevance for one query.
type ScoredArticle struct {
	Article
	RelevanceScore int
}
