package allocation

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
)

// DefaultGradeRatios multiplicadores por grado cuando el caller no envía los suyos.
func DefaultGradeRatios() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		entity.StoreGradeA: decimal.NewFromFloat(1.0),
		entity.StoreGradeB: decimal.NewFromFloat(0.7),
		entity.StoreGradeC: decimal.NewFromFloat(0.4),
		entity.StoreGradeD: decimal.NewFromFloat(0.2),
	}
}

// ConstraintSet límites por tienda y total de la corrida.
// MaxPerStore y TotalQtyLimit en nil significan sin límite.
type ConstraintSet struct {
	MinPerStore   int64  `json:"min_per_store"`
	MaxPerStore   *int64 `json:"max_per_store,omitempty"`
	TotalQtyLimit *int64 `json:"total_qty_limit,omitempty"`
}

// RunConfig configuración completa de una corrida de distribución.
// Se serializa tal cual en la cabecera (JSONB) para poder recalcular después.
type RunConfig struct {
	Name          string `json:"name"`
	Type          string `json:"type"`
	Basis         string `json:"basis"`
	Category      string `json:"category,omitempty"`
	Season        string `json:"season,omitempty"`
	WarehouseCode string `json:"warehouse_code"`

	// Filtros de alcance; vacíos = todos los activos.
	StoreCodes      []string `json:"store_codes,omitempty"`
	StoreGrades     []string `json:"store_grades,omitempty"`
	GenArticleCodes []string `json:"gen_article_codes,omitempty"`

	// Parámetros de cálculo.
	GradeRatios map[string]decimal.Decimal `json:"grade_ratios,omitempty"`
	SizeCurve   map[string]decimal.Decimal `json:"size_curve,omitempty"` // mezcla por talla; vacía = mezcla histórica o reparto igual
	Constraints ConstraintSet              `json:"constraints"`

	LookbackDays  int   `json:"lookback_days,omitempty"`   // ventana de ventas para SALES
	TargetBaseQty int64 `json:"target_base_qty,omitempty"` // stock objetivo base para STOCK
}

// Normalize completa los valores ausentes con los defaults del motor.
func (c *RunConfig) Normalize(lookbackDays int, targetBaseQty int64) {
	if c.WarehouseCode == "" {
		c.WarehouseCode = "WH001"
	}
	if len(c.GradeRatios) == 0 {
		c.GradeRatios = DefaultGradeRatios()
	}
	if c.LookbackDays <= 0 {
		c.LookbackDays = lookbackDays
	}
	if c.TargetBaseQty <= 0 {
		c.TargetBaseQty = targetBaseQty
	}
}
