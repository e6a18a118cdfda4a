package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación del puerto StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// WarehouseAvailable devuelve variante → cantidad repartible (stock − reservado,
// nunca negativo) en la bodega indicada. Variantes sin fila quedan fuera del mapa.
func (r *StockRepo) WarehouseAvailable(ctx context.Context, warehouseCode string, variantCodes []string) (map[string]int64, error) {
	query := `
		SELECT variant_code, GREATEST(stock_qty - reserved_qty, 0)
		FROM warehouse_stock
		WHERE warehouse_code = $1 AND variant_code = ANY($2)`
	rows, err := r.q.Query(ctx, query, warehouseCode, nonNil(variantCodes))
	if err != nil {
		return nil, fmt.Errorf("warehouse stock: %w", err)
	}
	defer rows.Close()

	avail := make(map[string]int64, len(variantCodes))
	for rows.Next() {
		var code string
		var qty int64
		if err := rows.Scan(&code, &qty); err != nil {
			return nil, fmt.Errorf("scan warehouse stock: %w", err)
		}
		avail[code] = qty
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("warehouse stock rows: %w", err)
	}
	return avail, nil
}

// StoreStockByVariant devuelve tienda → stock disponible agregado de las
// variantes indicadas (base STOCK).
func (r *StockRepo) StoreStockByVariant(ctx context.Context, storeCodes, variantCodes []string) (map[string]int64, error) {
	query := `
		SELECT store_code, SUM(GREATEST(stock_qty - reserved_qty, 0))
		FROM store_stock
		WHERE store_code = ANY($1) AND variant_code = ANY($2)
		GROUP BY store_code`
	rows, err := r.q.Query(ctx, query, nonNil(storeCodes), nonNil(variantCodes))
	if err != nil {
		return nil, fmt.Errorf("store stock: %w", err)
	}
	defer rows.Close()

	stock := make(map[string]int64, len(storeCodes))
	for rows.Next() {
		var code string
		var qty int64
		if err := rows.Scan(&code, &qty); err != nil {
			return nil, fmt.Errorf("scan store stock: %w", err)
		}
		stock[code] = qty
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store stock rows: %w", err)
	}
	return stock, nil
}
