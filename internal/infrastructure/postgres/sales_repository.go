package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
)

var _ repository.SalesRepository = (*SalesRepo)(nil)

// SalesRepo implementación del puerto SalesRepository sobre PostgreSQL (usable con pool o tx).
type SalesRepo struct {
	q Querier
}

// NewSalesRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSalesRepository(q Querier) *SalesRepo {
	return &SalesRepo{q: q}
}

// SalesByStore devuelve tienda → unidades vendidas de las variantes indicadas
// desde la fecha de corte. Tiendas sin ventas no aparecen en el mapa.
func (r *SalesRepo) SalesByStore(ctx context.Context, storeCodes, variantCodes []string, since time.Time) (map[string]int64, error) {
	query := `
		SELECT store_code, SUM(qty_sold)
		FROM store_sales
		WHERE store_code = ANY($1) AND variant_code = ANY($2) AND sold_at >= $3
		GROUP BY store_code`
	rows, err := r.q.Query(ctx, query, nonNil(storeCodes), nonNil(variantCodes), since)
	if err != nil {
		return nil, fmt.Errorf("sales by store: %w", err)
	}
	defer rows.Close()

	sales := make(map[string]int64, len(storeCodes))
	for rows.Next() {
		var code string
		var qty int64
		if err := rows.Scan(&code, &qty); err != nil {
			return nil, fmt.Errorf("scan sales: %w", err)
		}
		sales[code] = qty
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sales rows: %w", err)
	}
	return sales, nil
}

// VariantMix devuelve variante → participación en las ventas del conjunto desde
// la fecha de corte; mapa vacío si el conjunto no vendió nada. La participación
// se calcula en SQL como NUMERIC y llega como decimal vía el codec del pool;
// el HAVING deja fuera las variantes sin ventas, así el denominador nunca es cero.
func (r *SalesRepo) VariantMix(ctx context.Context, variantCodes []string, since time.Time) (map[string]decimal.Decimal, error) {
	query := `
		SELECT variant_code,
		       SUM(qty_sold)::numeric / SUM(SUM(qty_sold)) OVER () AS share
		FROM store_sales
		WHERE variant_code = ANY($1) AND sold_at >= $2
		GROUP BY variant_code
		HAVING SUM(qty_sold) > 0`
	rows, err := r.q.Query(ctx, query, nonNil(variantCodes), since)
	if err != nil {
		return nil, fmt.Errorf("variant mix: %w", err)
	}
	defer rows.Close()

	mix := make(map[string]decimal.Decimal, len(variantCodes))
	for rows.Next() {
		var code string
		var share decimal.Decimal
		if err := rows.Scan(&code, &share); err != nil {
			return nil, fmt.Errorf("scan variant mix: %w", err)
		}
		mix[code] = share
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("variant mix rows: %w", err)
	}
	return mix, nil
}
