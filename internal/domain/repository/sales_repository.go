package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SalesRepository puerto de consulta del histórico de ventas (DIP).
type SalesRepository interface {
	// SalesByStore devuelve tienda → unidades vendidas de las variantes
	// indicadas desde la fecha de corte (base SALES).
	SalesByStore(ctx context.Context, storeCodes, variantCodes []string, since time.Time) (map[string]int64, error)

	// VariantMix devuelve variante → participación en las ventas del conjunto
	// desde la fecha de corte; mapa vacío si no hay ventas (la expansión
	// talla × color cae entonces a curva configurada o reparto igual).
	VariantMix(ctx context.Context, variantCodes []string, since time.Time) (map[string]decimal.Decimal, error)
}
