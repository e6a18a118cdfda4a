package dto

import (
	"time"

	"github.com/shopspring/decimal"

	appalloc "github.com/jhoicas/Distribucion-api/internal/application/allocation"
	engine "github.com/jhoicas/Distribucion-api/internal/domain/allocation"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
)

// RunAllocationRequest cuerpo de POST /api/allocations/run.
// La validación estructural (enums, rangos) va por tags; la semántica de la
// configuración (ratios por grado presentes, max ≥ min…) la valida el dominio.
type RunAllocationRequest struct {
	Name          string `json:"name" validate:"required,min=3,max=300"`
	Type          string `json:"type" validate:"required,oneof=INITIAL REPLENISHMENT TRANSFER CLEARANCE"`
	Basis         string `json:"basis" validate:"required,oneof=RATIO SALES STOCK"`
	Category      string `json:"category,omitempty"`
	Season        string `json:"season,omitempty"`
	WarehouseCode string `json:"warehouse_code,omitempty"`

	StoreCodes      []string `json:"store_codes,omitempty"`
	StoreGrades     []string `json:"store_grades,omitempty" validate:"dive,oneof=A B C D"`
	GenArticleCodes []string `json:"gen_article_codes,omitempty"`

	GradeRatios map[string]float64 `json:"grade_ratios,omitempty"`
	SizeCurve   map[string]float64 `json:"size_curve,omitempty"`

	MinPerStore   int64  `json:"min_per_store" validate:"min=0"`
	MaxPerStore   *int64 `json:"max_per_store,omitempty"`
	TotalQtyLimit *int64 `json:"total_qty_limit,omitempty"`

	LookbackDays  int   `json:"lookback_days,omitempty" validate:"min=0,max=365"`
	TargetBaseQty int64 `json:"target_base_qty,omitempty" validate:"min=0"`
}

// ToConfig convierte la petición en la configuración del motor.
func (r RunAllocationRequest) ToConfig() engine.RunConfig {
	cfg := engine.RunConfig{
		Name:            r.Name,
		Type:            r.Type,
		Basis:           r.Basis,
		Category:        r.Category,
		Season:          r.Season,
		WarehouseCode:   r.WarehouseCode,
		StoreCodes:      r.StoreCodes,
		StoreGrades:     r.StoreGrades,
		GenArticleCodes: r.GenArticleCodes,
		Constraints: engine.ConstraintSet{
			MinPerStore:   r.MinPerStore,
			MaxPerStore:   r.MaxPerStore,
			TotalQtyLimit: r.TotalQtyLimit,
		},
		LookbackDays:  r.LookbackDays,
		TargetBaseQty: r.TargetBaseQty,
	}
	if len(r.GradeRatios) > 0 {
		cfg.GradeRatios = make(map[string]decimal.Decimal, len(r.GradeRatios))
		for g, v := range r.GradeRatios {
			cfg.GradeRatios[g] = decimal.NewFromFloat(v)
		}
	}
	if len(r.SizeCurve) > 0 {
		cfg.SizeCurve = make(map[string]decimal.Decimal, len(r.SizeCurve))
		for s, v := range r.SizeCurve {
			cfg.SizeCurve[s] = decimal.NewFromFloat(v)
		}
	}
	return cfg
}

// OverrideItemRequest corrección manual de una fila.
type OverrideItemRequest struct {
	DetailID    string `json:"detail_id" validate:"required,uuid4"`
	OverrideQty int64  `json:"override_qty" validate:"min=0"`
}

// ApplyOverridesRequest cuerpo de POST /api/allocations/:id/overrides.
type ApplyOverridesRequest struct {
	Overrides []OverrideItemRequest `json:"overrides" validate:"required,min=1,max=1000,dive"`
}

// Items convierte la petición al formato del caso de uso.
func (r ApplyOverridesRequest) Items() []appalloc.OverrideItem {
	items := make([]appalloc.OverrideItem, len(r.Overrides))
	for i, o := range r.Overrides {
		items[i] = appalloc.OverrideItem{DetailID: o.DetailID, OverrideQty: o.OverrideQty}
	}
	return items
}

// AllocationHeaderResponse cabecera para respuestas.
type AllocationHeaderResponse struct {
	ID            string     `json:"id"`
	Code          string     `json:"code"`
	Name          string     `json:"name"`
	Type          string     `json:"type"`
	Basis         string     `json:"basis"`
	Category      string     `json:"category,omitempty"`
	Season        string     `json:"season,omitempty"`
	WarehouseCode string     `json:"warehouse_code"`
	Status        string     `json:"status"`
	TotalQty      int64      `json:"total_qty"`
	TotalStores   int        `json:"total_stores"`
	TotalVariants int        `json:"total_variants"`
	Warnings      []string   `json:"warnings,omitempty"`
	CreatedBy     string     `json:"created_by"`
	ApprovedBy    string     `json:"approved_by,omitempty"`
	ExecutedAt    *time.Time `json:"executed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// NewHeaderResponse mapea la entidad a la respuesta.
func NewHeaderResponse(h *entity.AllocationHeader) AllocationHeaderResponse {
	return AllocationHeaderResponse{
		ID:            h.ID,
		Code:          h.Code,
		Name:          h.Name,
		Type:          h.Type,
		Basis:         h.Basis,
		Category:      h.Category,
		Season:        h.Season,
		WarehouseCode: h.WarehouseCode,
		Status:        h.Status,
		TotalQty:      h.TotalQty,
		TotalStores:   h.TotalStores,
		TotalVariants: h.TotalVariants,
		Warnings:      h.Warnings,
		CreatedBy:     h.CreatedBy,
		ApprovedBy:    h.ApprovedBy,
		ExecutedAt:    h.ExecutedAt,
		CreatedAt:     h.CreatedAt,
		UpdatedAt:     h.UpdatedAt,
	}
}

// RunResponse respuesta de run/rerun.
type RunResponse struct {
	Allocation AllocationHeaderResponse `json:"allocation"`
	Warnings   []string                 `json:"warnings,omitempty"`
	DurationMs int64                    `json:"duration_ms"`
}

// DetailRowResponse fila tienda × variante.
type DetailRowResponse struct {
	ID             string `json:"id"`
	StoreCode      string `json:"store_code"`
	StoreGrade     string `json:"store_grade"`
	GenArticleCode string `json:"gen_article_code"`
	VariantCode    string `json:"variant_code"`
	SizeCode       string `json:"size_code"`
	ColorCode      string `json:"color_code"`
	AllocatedQty   int64  `json:"allocated_qty"`
	OverrideQty    *int64 `json:"override_qty,omitempty"`
	FinalQty       int64  `json:"final_qty"`
	Basis          string `json:"basis"`
}

// NewDetailRowResponse mapea la entidad a la respuesta.
func NewDetailRowResponse(d *entity.AllocationDetail) DetailRowResponse {
	return DetailRowResponse{
		ID:             d.ID,
		StoreCode:      d.StoreCode,
		StoreGrade:     d.StoreGrade,
		GenArticleCode: d.GenArticleCode,
		VariantCode:    d.VariantCode,
		SizeCode:       d.SizeCode,
		ColorCode:      d.ColorCode,
		AllocatedQty:   d.AllocatedQty,
		OverrideQty:    d.OverrideQty,
		FinalQty:       d.FinalQty,
		Basis:          d.Basis,
	}
}

// GroupTotalResponse total por clave de agrupación.
type GroupTotalResponse struct {
	Key string `json:"key"`
	Qty int64  `json:"qty"`
}

// StoreTotalResponse total por tienda.
type StoreTotalResponse struct {
	StoreCode string `json:"store_code"`
	Qty       int64  `json:"qty"`
}

// SummaryResponse respuesta de GET /api/allocations/:id/summary.
type SummaryResponse struct {
	Allocation    AllocationHeaderResponse `json:"allocation"`
	TotalsByGrade []GroupTotalResponse     `json:"totals_by_grade"`
	TotalsBySize  []GroupTotalResponse     `json:"totals_by_size"`
	TotalsByColor []GroupTotalResponse     `json:"totals_by_color"`
	TopStores     []StoreTotalResponse     `json:"top_stores"`
}

// NewSummaryResponse mapea el resumen del caso de uso.
func NewSummaryResponse(s *appalloc.Summary) SummaryResponse {
	return SummaryResponse{
		Allocation:    NewHeaderResponse(s.Header),
		TotalsByGrade: groupTotals(s.TotalsByGrade),
		TotalsBySize:  groupTotals(s.TotalsBySize),
		TotalsByColor: groupTotals(s.TotalsByColor),
		TopStores:     storeTotals(s.TopStores),
	}
}

func groupTotals(in []repository.GroupTotal) []GroupTotalResponse {
	out := make([]GroupTotalResponse, len(in))
	for i, g := range in {
		out[i] = GroupTotalResponse{Key: g.Key, Qty: g.Qty}
	}
	return out
}

func storeTotals(in []repository.StoreTotal) []StoreTotalResponse {
	out := make([]StoreTotalResponse, len(in))
	for i, s := range in {
		out[i] = StoreTotalResponse{StoreCode: s.StoreCode, Qty: s.Qty}
	}
	return out
}

// ProgressResponse avance de un run (GET /api/allocations/:id/progress).
type ProgressResponse struct {
	AllocationID string `json:"allocation_id"`
	Processed    int64  `json:"processed"`
	Total        int64  `json:"total"`
	State        string `json:"state"`
}

// OverrideResultResponse respuesta del lote de overrides.
type OverrideResultResponse struct {
	Applied  int    `json:"applied"`
	TotalQty int64  `json:"total_qty"`
	BatchID  string `json:"batch_id"`
}
