package allocation

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
)

// Line es una fila tienda × variante calculada por el motor para un artículo.
type Line struct {
	StoreCode      string
	StoreGrade     string
	GenArticleCode string
	VariantCode    string
	SizeCode       string
	ColorCode      string
	Qty            int64
}

// ArticleInput datos de un artículo genérico ya resueltos por el caller:
// sus variantes activas, el snapshot de stock de bodega por variante y los
// agregados de ventas/stock de tienda que pida la base elegida.
type ArticleInput struct {
	Article        entity.GenArticle
	Variants       []entity.VariantArticle
	AvailByVariant map[string]int64           // disponible en bodega por variante
	SalesByStore   map[string]int64           // ventas del artículo por tienda (base SALES)
	MixByVariant   map[string]decimal.Decimal // mezcla histórica talla/color (puede venir vacía)
	StockByStore   map[string]int64           // stock del artículo por tienda (base STOCK)
}

// ComputeArticle ejecuta el pipeline completo para un artículo genérico:
// pesos por estrategia → reparto exacto → límites min/max → límite total →
// expansión talla × color → tope por variante contra el snapshot de bodega.
// Devuelve las filas con cantidad positiva y el flag de restricciones inviables.
func ComputeArticle(cfg *RunConfig, strat Strategy, stores []entity.Store, in ArticleInput, maxPass int) ([]Line, bool) {
	var avail int64
	for _, a := range in.AvailByVariant {
		if a > 0 {
			avail += a
		}
	}
	if avail <= 0 || len(stores) == 0 || len(in.Variants) == 0 {
		return nil, false
	}

	// El total repartible es min(stock disponible, límite total configurado).
	total := avail
	if lim := cfg.Constraints.TotalQtyLimit; lim != nil && *lim < total {
		total = *lim
	}

	ordered := make([]entity.Store, len(stores))
	copy(ordered, stores)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Code < ordered[j].Code })

	sctx := &StrategyContext{
		GradeRatios:   cfg.GradeRatios,
		SalesByStore:  in.SalesByStore,
		StockByStore:  in.StockByStore,
		TargetBaseQty: cfg.TargetBaseQty,
	}
	shares := strat.Weights(ordered, sctx)

	qty := Apportion(total, shares)
	qty, infeasible := EnforceBounds(qty, shares, cfg.Constraints.MinPerStore, cfg.Constraints.MaxPerStore, maxPass)
	if lim := cfg.Constraints.TotalQtyLimit; lim != nil {
		qty = EnforceTotalLimit(qty, shares, *lim)
	}

	// Mezcla talla/color: histórico de ventas si existe, si no la curva
	// configurada, si no reparto igualitario (lo resuelve SplitGrid).
	mix := in.MixByVariant
	if len(mix) == 0 && len(cfg.SizeCurve) > 0 {
		mix = SizeCurveMix(in.Variants, cfg.SizeCurve)
	}

	lines := make([]Line, 0, len(ordered)*len(in.Variants))
	for i, st := range ordered {
		if qty[i] <= 0 {
			continue
		}
		for _, cell := range SplitGrid(qty[i], in.Variants, mix) {
			if cell.Qty <= 0 {
				continue
			}
			lines = append(lines, Line{
				StoreCode:      st.Code,
				StoreGrade:     st.Grade,
				GenArticleCode: in.Article.Code,
				VariantCode:    cell.VariantCode,
				SizeCode:       cell.SizeCode,
				ColorCode:      cell.ColorCode,
				Qty:            cell.Qty,
			})
		}
	}

	return CapPerVariant(lines, in.AvailByVariant), infeasible
}

// CapPerVariant garantiza que la suma entre tiendas de cada variante no supere
// su snapshot de bodega: si lo supera, reescala esa variante a la baja entre
// las tiendas (mismo reparto por resto mayor). Filas en cero se descartan.
func CapPerVariant(lines []Line, availByVariant map[string]int64) []Line {
	byVariant := make(map[string][]int) // variante → índices en lines
	sums := make(map[string]int64)
	for i, ln := range lines {
		byVariant[ln.VariantCode] = append(byVariant[ln.VariantCode], i)
		sums[ln.VariantCode] += ln.Qty
	}

	for code, idxs := range byVariant {
		avail := availByVariant[code]
		if sums[code] <= avail {
			continue
		}
		shares := make([]Share, len(idxs))
		for j, i := range idxs {
			shares[j] = Share{Code: lines[i].StoreCode, Weight: decimal.NewFromInt(lines[i].Qty)}
		}
		capped := Apportion(avail, shares)
		for j, i := range idxs {
			lines[i].Qty = capped[j]
		}
	}

	out := lines[:0]
	for _, ln := range lines {
		if ln.Qty > 0 {
			out = append(out, ln)
		}
	}
	return out
}
