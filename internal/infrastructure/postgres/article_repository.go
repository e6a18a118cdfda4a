package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
)

var _ repository.ArticleRepository = (*ArticleRepo)(nil)

// ArticleRepo implementación del puerto ArticleRepository sobre PostgreSQL (usable con pool o tx).
type ArticleRepo struct {
	q Querier
}

// NewArticleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewArticleRepository(q Querier) *ArticleRepo {
	return &ArticleRepo{q: q}
}

// ListEligible devuelve los artículos genéricos activos que pasan los filtros,
// ordenados por código.
func (r *ArticleRepo) ListEligible(ctx context.Context, codes []string, category, season string) ([]entity.GenArticle, error) {
	query := `
		SELECT id, code, name, category, season, is_active, created_at, updated_at
		FROM gen_articles
		WHERE is_active = TRUE
		  AND (cardinality($1::text[]) = 0 OR code = ANY($1))
		  AND ($2 = '' OR category = $2)
		  AND ($3 = '' OR season = $3)
		ORDER BY code`
	rows, err := r.q.Query(ctx, query, nonNil(codes), category, season)
	if err != nil {
		return nil, fmt.Errorf("list gen_articles: %w", err)
	}
	defer rows.Close()

	var articles []entity.GenArticle
	for rows.Next() {
		var a entity.GenArticle
		err := rows.Scan(&a.ID, &a.Code, &a.Name, &a.Category, &a.Season, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan gen_article: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("gen_articles rows: %w", err)
	}
	return articles, nil
}

// VariantsByArticle devuelve las variantes activas de un artículo, ordenadas
// por código (fija el reparto determinista de la rejilla talla × color).
func (r *ArticleRepo) VariantsByArticle(ctx context.Context, genArticleCode string) ([]entity.VariantArticle, error) {
	query := `
		SELECT id, code, gen_article_code, size_code, color_code, is_active, created_at, updated_at
		FROM variant_articles
		WHERE gen_article_code = $1 AND is_active = TRUE
		ORDER BY code`
	rows, err := r.q.Query(ctx, query, genArticleCode)
	if err != nil {
		return nil, fmt.Errorf("list variant_articles: %w", err)
	}
	defer rows.Close()

	var variants []entity.VariantArticle
	for rows.Next() {
		var v entity.VariantArticle
		err := rows.Scan(&v.ID, &v.Code, &v.GenArticleCode, &v.SizeCode, &v.ColorCode, &v.IsActive, &v.CreatedAt, &v.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan variant_article: %w", err)
		}
		variants = append(variants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("variant_articles rows: %w", err)
	}
	return variants, nil
}
