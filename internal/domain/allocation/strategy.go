package allocation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Distribucion-api/internal/domain"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
)

// StrategyContext datos de solo lectura, al alcance de un artículo genérico,
// que consumen las estrategias de pesos.
type StrategyContext struct {
	GradeRatios   map[string]decimal.Decimal
	SalesByStore  map[string]int64 // unidades vendidas por tienda en la ventana (base SALES)
	StockByStore  map[string]int64 // stock disponible por tienda (base STOCK)
	TargetBaseQty int64            // objetivo base; objetivo por tienda = ratio de grado × base
}

// Strategy calcula un peso no negativo por tienda elegible. Las tres bases
// comparten el mismo redondeo por resto mayor, de modo que agregar una base
// nueva no toca ni el rebalanceo ni la expansión talla × color.
type Strategy interface {
	Name() string
	Weights(stores []entity.Store, ctx *StrategyContext) []Share
}

// ForBasis devuelve la estrategia para la base pedida.
func ForBasis(basis string) (Strategy, error) {
	switch basis {
	case entity.AllocationBasisRatio:
		return ratioStrategy{}, nil
	case entity.AllocationBasisSales:
		return salesStrategy{}, nil
	case entity.AllocationBasisStock:
		return stockGapStrategy{}, nil
	default:
		return nil, fmt.Errorf("%w: base desconocida %q", domain.ErrValidation, basis)
	}
}

// ratioStrategy: peso = ratio del grado de la tienda.
type ratioStrategy struct{}

func (ratioStrategy) Name() string { return entity.AllocationBasisRatio }

func (ratioStrategy) Weights(stores []entity.Store, ctx *StrategyContext) []Share {
	shares := make([]Share, len(stores))
	for i, st := range stores {
		shares[i] = Share{Code: st.Code, Weight: ctx.GradeRatios[st.Grade]}
	}
	return shares
}

// salesStrategy: peso = unidades vendidas en la ventana. Una tienda sin ventas
// pesa 0 aunque otras vendan; si ninguna tienda vendió, se reparte en partes
// iguales entre todas las elegibles.
type salesStrategy struct{}

func (salesStrategy) Name() string { return entity.AllocationBasisSales }

func (salesStrategy) Weights(stores []entity.Store, ctx *StrategyContext) []Share {
	shares := make([]Share, len(stores))
	allZero := true
	for i, st := range stores {
		sold := ctx.SalesByStore[st.Code]
		if sold > 0 {
			allZero = false
		}
		shares[i] = Share{Code: st.Code, Weight: decimal.NewFromInt(sold)}
	}
	if allZero {
		one := decimal.NewFromInt(1)
		for i := range shares {
			shares[i].Weight = one
		}
	}
	return shares
}

// stockGapStrategy: peso = max(0, objetivo del grado − stock actual).
// Tiendas en o sobre su objetivo pesan 0; si todas pesan 0 no se reparte nada.
type stockGapStrategy struct{}

func (stockGapStrategy) Name() string { return entity.AllocationBasisStock }

func (stockGapStrategy) Weights(stores []entity.Store, ctx *StrategyContext) []Share {
	base := decimal.NewFromInt(ctx.TargetBaseQty)
	shares := make([]Share, len(stores))
	for i, st := range stores {
		target := ctx.GradeRatios[st.Grade].Mul(base)
		gap := target.Sub(decimal.NewFromInt(ctx.StockByStore[st.Code]))
		if gap.IsNegative() {
			gap = decimal.Zero
		}
		shares[i] = Share{Code: st.Code, Weight: gap}
	}
	return shares
}
