package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
)

var _ repository.StoreRepository = (*StoreRepo)(nil)

// StoreRepo implementación del puerto StoreRepository sobre PostgreSQL (usable con pool o tx).
type StoreRepo struct {
	q Querier
}

// NewStoreRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStoreRepository(q Querier) *StoreRepo {
	return &StoreRepo{q: q}
}

// ListEligible devuelve las tiendas activas que pasan los filtros, ordenadas
// por código (el orden fija el desempate determinista del redondeo).
func (r *StoreRepo) ListEligible(ctx context.Context, codes, grades []string) ([]entity.Store, error) {
	query := `
		SELECT id, code, name, grade, region, hub, is_active, created_at, updated_at
		FROM stores
		WHERE is_active = TRUE
		  AND (cardinality($1::text[]) = 0 OR code = ANY($1))
		  AND (cardinality($2::text[]) = 0 OR grade = ANY($2))
		ORDER BY code`
	rows, err := r.q.Query(ctx, query, nonNil(codes), nonNil(grades))
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()

	var stores []entity.Store
	for rows.Next() {
		var s entity.Store
		err := rows.Scan(&s.ID, &s.Code, &s.Name, &s.Grade, &s.Region, &s.Hub, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		stores = append(stores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("stores rows: %w", err)
	}
	return stores, nil
}
