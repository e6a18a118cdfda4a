package repository

import "context"

// StockRepository puerto de consulta de stock (DIP). Es la fuente del snapshot
// que toma un run: disponibilidad de bodega por variante y stock actual por
// tienda para la base STOCK.
type StockRepository interface {
	// WarehouseAvailable devuelve variante → cantidad disponible (stock −
	// reservado, nunca negativo) en la bodega indicada.
	WarehouseAvailable(ctx context.Context, warehouseCode string, variantCodes []string) (map[string]int64, error)

	// StoreStockByVariant devuelve tienda → stock disponible agregado de las
	// variantes indicadas.
	StoreStockByVariant(ctx context.Context, storeCodes, variantCodes []string) (map[string]int64, error)
}
