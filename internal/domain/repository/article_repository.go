package repository

import (
	"context"

	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
)

// ArticleRepository puerto de consulta de la jerarquía de producto (DIP):
// artículo genérico → variantes talla × color.
type ArticleRepository interface {
	// ListEligible devuelve los artículos genéricos activos que pasan los
	// filtros; parámetros vacíos = sin filtro.
	ListEligible(ctx context.Context, codes []string, category, season string) ([]entity.GenArticle, error)

	// VariantsByArticle devuelve las variantes activas de un artículo.
	VariantsByArticle(ctx context.Context, genArticleCode string) ([]entity.VariantArticle, error)
}
