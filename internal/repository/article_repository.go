package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/domain"
)

// ArticleFilter captures knowledge-base listing parameters.
type ArticleFilter struct {
	Status   *domain.ArticleStatus
	Category *domain.TicketCategory
	Limit    int
	Offset   int
}

// ArticleRepository encapsulates knowledge-base persistence.
type ArticleRepository interface {
	Create(ctx context.Context, article *domain.Article) error
	Update(ctx context.Context, article *domain.Article) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Article, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.Article, error)
	// Search runs an indexed full-text query over published articles,
	// optionally restricted to a category. When the indexed query matches
	// nothing it falls back to a case-insensitive substring match across
	// title, body and tags.
	Search(ctx context.Context, query string, category *domain.TicketCategory, limit int) ([]domain.Article, error)
	ListWithFilter(ctx context.Context, filter ArticleFilter) ([]domain.Article, error)
	IncrementViewCount(ctx context.Context, id string) error
}

type articleRepository struct {
	pool *pgxpool.Pool
}

// NewArticleRepository instantiates repository.
func NewArticleRepository(pool *pgxpool.Pool) ArticleRepository {
	return &articleRepository{pool: pool}
}

const articleColumns = `id, title, body, tags, status, category, author_id, view_count, helpful_count, created_at, updated_at`

func (r *articleRepository) Create(ctx context.Context, article *domain.Article) error {
	const query = `
        INSERT INTO articles (title, body, tags, status, category, author_id)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		article.Title,
		article.Body,
		article.Tags,
		article.Status,
		article.Category,
		article.AuthorID,
	).Scan(&article.ID, &article.CreatedAt, &article.UpdatedAt)
}

func (r *articleRepository) Update(ctx context.Context, article *domain.Article) error {
	const query = `
        UPDATE articles SET title=$1, body=$2, tags=$3, status=$4, category=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		article.Title,
		article.Body,
		article.Tags,
		article.Status,
		article.Category,
		article.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *articleRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM articles WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *articleRepository) GetByID(ctx context.Context, id string) (*domain.Article, error) {
	query := fmt.Sprintf(`SELECT %s FROM articles WHERE id=$1`, articleColumns)
	var article domain.Article
	if err := r.pool.QueryRow(ctx, query, id).Scan(articleFields(&article)...); err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *articleRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Article, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM articles WHERE id = ANY($1)`, articleColumns)
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArticles(rows)
}

func (r *articleRepository) Search(ctx context.Context, query string, category *domain.TicketCategory, limit int) ([]domain.Article, error) {
	if limit <= 0 {
		limit = 10
	}

	clauses := []string{"status=$1"}
	args := []any{domain.ArticleStatusPublished}
	if category != nil {
		args = append(args, *category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}
	where := strings.Join(clauses, " AND ")

	query = strings.TrimSpace(query)
	if query == "" {
		listQuery := fmt.Sprintf(`SELECT %s FROM articles WHERE %s ORDER BY updated_at DESC LIMIT %d`,
			articleColumns, where, limit)
		rows, err := r.pool.Query(ctx, listQuery, args...)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		return scanArticles(rows)
	}

	ftsArgs := append(append([]any{}, args...), query)
	ftsQuery := fmt.Sprintf(`
        SELECT %s FROM articles
        WHERE %s AND to_tsvector('english', title || ' ' || body || ' ' || array_to_string(tags, ' '))
                  @@ plainto_tsquery('english', $%d)
        ORDER BY ts_rank(to_tsvector('english', title || ' ' || body), plainto_tsquery('english', $%d)) DESC
        LIMIT %d`, articleColumns, where, len(ftsArgs), len(ftsArgs), limit)

	rows, err := r.pool.Query(ctx, ftsQuery, ftsArgs...)
	if err != nil {
		return nil, err
	}
	articles, err := scanArticles(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}
	if len(articles) > 0 {
		return articles, nil
	}

	// Substring fallback: any query word against title, body or tags.
	subClauses := []string{}
	subArgs := append([]any{}, args...)
	for _, word := range strings.Fields(query) {
		subArgs = append(subArgs, "%"+word+"%")
		placeholder := fmt.Sprintf("$%d", len(subArgs))
		subClauses = append(subClauses,
			fmt.Sprintf("(title ILIKE %s OR body ILIKE %s OR EXISTS (SELECT 1 FROM unnest(tags) AS tag WHERE tag ILIKE %s))",
				placeholder, placeholder, placeholder))
	}
	subQuery := fmt.Sprintf(`SELECT %s FROM articles WHERE %s AND (%s) ORDER BY updated_at DESC LIMIT %d`,
		articleColumns, where, strings.Join(subClauses, " OR "), limit)

	rows, err = r.pool.Query(ctx, subQuery, subArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArticles(rows)
}

func (r *articleRepository) ListWithFilter(ctx context.Context, filter ArticleFilter) ([]domain.Article, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query := fmt.Sprintf(`SELECT %s FROM articles WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		articleColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArticles(rows)
}

func (r *articleRepository) IncrementViewCount(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `UPDATE articles SET view_count = view_count + 1 WHERE id=$1`, id)
	return err
}

func articleFields(a *domain.Article) []any {
	return []any{
		&a.ID,
		&a.Title,
		&a.Body,
		&a.Tags,
		&a.Status,
		&a.Category,
		&a.AuthorID,
		&a.ViewCount,
		&a.HelpfulCount,
		&a.CreatedAt,
		&a.UpdatedAt,
	}
}

func scanArticles(rows pgx.Rows) ([]domain.Article, error) {
	var result []domain.Article
	for rows.Next() {
		var article domain.Article
		if err := rows.Scan(articleFields(&article)...); err != nil {
			return nil, err
		}
		result = append(result, article)
	}
	return result, rows.Err()
}
