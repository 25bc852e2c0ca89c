package kb

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/domain"
	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/repository"
)

type stubArticleRepo struct {
	articles  []domain.Article
	searchErr error

	lastQuery    string
	lastCategory *domain.TicketCategory
}

func (s *stubArticleRepo) Create(ctx context.Context, article *domain.Article) error { return nil }
func (s *stubArticleRepo) Update(ctx context.Context, article *domain.Article) error { return nil }
func (s *stubArticleRepo) Delete(ctx context.Context, id string) error               { return nil }
func (s *stubArticleRepo) GetByID(ctx context.Context, id string) (*domain.Article, error) {
	return nil, errors.New("not implemented")
}
func (s *stubArticleRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Article, error) {
	return nil, nil
}
func (s *stubArticleRepo) Search(ctx context.Context, query string, category *domain.TicketCategory, limit int) ([]domain.Article, error) {
	s.lastQuery = query
	s.lastCategory = category
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.articles, nil
}
func (s *stubArticleRepo) ListWithFilter(ctx context.Context, filter repository.ArticleFilter) ([]domain.Article, error) {
	return s.articles, nil
}
func (s *stubArticleRepo) IncrementViewCount(ctx context.Context, id string) error { return nil }

func TestFindRelevantArticlesRanksByScore(t *testing.T) {
	t.Parallel()

	repo := &stubArticleRepo{articles: []domain.Article{
		{ID: "a1", Title: "Shipping times overview", Body: "General shipping information.", Category: domain.CategoryShipping},
		{ID: "a2", Title: "Resolving a duplicate charge", Body: "Steps to refund a duplicate charge on your invoice.",
			Tags: []string{"refund", "billing"}, Category: domain.CategoryBilling},
		{ID: "a3", Title: "Password help", Body: "Reset your password.", Category: domain.CategoryTech},
	}}
	svc := NewService(repo, zap.NewNop())

	text := "I was charged twice, please refund the duplicate charge"
	scored, err := svc.FindRelevantArticles(context.Background(), text, domain.CategoryBilling, 5)
	if err != nil {
		t.Fatalf("FindRelevantArticles() error = %v", err)
	}
	if len(scored) != 3 {
		t.Fatalf("got %d articles, want 3", len(scored))
	}
	if scored[0].Article.ID != "a2" {
		t.Errorf("top article = %s, want a2", scored[0].Article.ID)
	}
	for i := 1; i < len(scored); i++ {
		if scored[i].RelevanceScore > scored[i-1].RelevanceScore {
			t.Errorf("scores not descending at %d: %d > %d", i, scored[i].RelevanceScore, scored[i-1].RelevanceScore)
		}
	}
	if repo.lastCategory == nil || *repo.lastCategory != domain.CategoryBilling {
		t.Errorf("search category = %v, want billing", repo.lastCategory)
	}
}

func TestFindRelevantArticlesKeepsSearchOrderOnTies(t *testing.T) {
	t.Parallel()

	// identical articles score identically, so the repository order decides
	same := domain.Article{Title: "Unrelated", Body: "Nothing in common."}
	first, second := same, same
	first.ID = "first"
	second.ID = "second"
	repo := &stubArticleRepo{articles: []domain.Article{first, second}}
	svc := NewService(repo, zap.NewNop())

	scored, err := svc.FindRelevantArticles(context.Background(), "duplicate charge refund", domain.CategoryBilling, 5)
	if err != nil {
		t.Fatalf("FindRelevantArticles() error = %v", err)
	}
	if scored[0].Article.ID != "first" || scored[1].Article.ID != "second" {
		t.Errorf("tie order = %s, %s; want first, second", scored[0].Article.ID, scored[1].Article.ID)
	}
}

func TestFindRelevantArticlesTruncatesToLimit(t *testing.T) {
	t.Parallel()

	repo := &stubArticleRepo{articles: []domain.Article{
		{ID: "a1", Title: "refund guide", Body: "refund"},
		{ID: "a2", Title: "refund faq", Body: "refund"},
		{ID: "a3", Title: "refund policy", Body: "refund"},
	}}
	svc := NewService(repo, zap.NewNop())

	scored, err := svc.FindRelevantArticles(context.Background(), "refund", domain.CategoryBilling, 2)
	if err != nil {
		t.Fatalf("FindRelevantArticles() error = %v", err)
	}
	if len(scored) != 2 {
		t.Errorf("got %d articles, want limit 2", len(scored))
	}
}

func TestFindRelevantArticlesEmptyCorpus(t *testing.T) {
	t.Parallel()

	svc := NewService(&stubArticleRepo{}, zap.NewNop())
	scored, err := svc.FindRelevantArticles(context.Background(), "anything at all", domain.CategoryOther, 5)
	if err != nil {
		t.Fatalf("FindRelevantArticles() error = %v", err)
	}
	if len(scored) != 0 {
		t.Errorf("got %d articles, want none", len(scored))
	}
}

func TestFindRelevantArticlesPropagatesSearchError(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("connection reset")
	svc := NewService(&stubArticleRepo{searchErr: wantErr}, zap.NewNop())
	if _, err := svc.FindRelevantArticles(context.Background(), "refund", domain.CategoryBilling, 5); !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want %v", err, wantErr)
	}
}

func TestRelevanceScoreWeights(t *testing.T) {
	t.Parallel()

	article := domain.Article{
		Title:    "duplicate charge refund",
		Body:     "How to refund a duplicate charge.",
		Tags:     []string{"refund"},
		Category: domain.CategoryBilling,
	}
	text := "duplicate charge"
	keywords := ExtractKeywords(text)

	// keyword hits: duplicate and charge each land in title (3) and body (1);
	// tag "refund" matches neither keyword. phrase "duplicate charge" lands in
	// title (5) and body (2). no category mention in the text.
	want := 2*(weightTitleKeyword+weightBodyKeyword) + weightTitlePhrase + weightBodyPhrase
	if got := relevanceScore(text, keywords, &article); got != want {
		t.Errorf("relevanceScore = %d, want %d", got, want)
	}

	// mentioning the article's category in the ticket adds one more point
	withCategory := text + " billing question"
	want += weightCategoryHit
	if got := relevanceScore(withCategory, ExtractKeywords(withCategory), &article); got != want {
		t.Errorf("relevanceScore with category mention = %d, want %d", got, want)
	}
}
