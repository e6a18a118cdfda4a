package allocation

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
)

// Cell cantidad asignada a una variante concreta (talla × color) en una tienda.
type Cell struct {
	VariantCode string
	SizeCode    string
	ColorCode   string
	Qty         int64
}

// SplitGrid reparte la cantidad de un artículo genérico en una tienda entre sus
// variantes talla × color, proporcional a la mezcla histórica (mix, por código
// de variante). Sin datos de mezcla el reparto es igualitario. Usa el mismo
// redondeo por resto mayor que las estrategias, con empate por código de
// variante ascendente, así la suma de celdas conserva exactamente la cantidad
// de la tienda.
func SplitGrid(qty int64, variants []entity.VariantArticle, mix map[string]decimal.Decimal) []Cell {
	if len(variants) == 0 {
		return nil
	}

	ordered := make([]entity.VariantArticle, len(variants))
	copy(ordered, variants)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Code < ordered[j].Code })

	shares := make([]Share, len(ordered))
	hasMix := false
	for i, v := range ordered {
		w := mix[v.Code]
		if w.IsPositive() {
			hasMix = true
		}
		shares[i] = Share{Code: v.Code, Weight: w}
	}
	if !hasMix {
		one := decimal.NewFromInt(1)
		for i := range shares {
			shares[i].Weight = one
		}
	}

	parts := Apportion(qty, shares)
	cells := make([]Cell, 0, len(ordered))
	for i, v := range ordered {
		cells = append(cells, Cell{
			VariantCode: v.Code,
			SizeCode:    v.SizeCode,
			ColorCode:   v.ColorCode,
			Qty:         parts[i],
		})
	}
	return cells
}

// SizeCurveMix convierte una curva por talla en una mezcla por variante.
// Variantes cuya talla no figura en la curva quedan en cero.
func SizeCurveMix(variants []entity.VariantArticle, curve map[string]decimal.Decimal) map[string]decimal.Decimal {
	mix := make(map[string]decimal.Decimal, len(variants))
	for _, v := range variants {
		if w, ok := curve[v.SizeCode]; ok && w.IsPositive() {
			mix[v.Code] = w
		}
	}
	return mix
}
