package entity

import (
	"encoding/json"
	"time"
)

// Estados del ciclo de vida de una distribución.
// DRAFT es el estado inicial y también el estado editable tras completarse el cálculo;
// EXECUTED y CANCELLED son terminales.
const (
	AllocationStatusDraft      = "DRAFT"
	AllocationStatusInProgress = "IN_PROGRESS"
	AllocationStatusApproved   = "APPROVED"
	AllocationStatusExecuted   = "EXECUTED"
	AllocationStatusCancelled  = "CANCELLED"
)

// Tipos de distribución.
const (
	AllocationTypeInitial       = "INITIAL"
	AllocationTypeReplenishment = "REPLENISHMENT"
	AllocationTypeTransfer      = "TRANSFER"
	AllocationTypeClearance     = "CLEARANCE"
)

// Bases de cálculo (estrategia de pesos por tienda).
const (
	AllocationBasisRatio = "RATIO" // ratio fijo por grado de tienda
	AllocationBasisSales = "SALES" // proporcional al histórico de ventas
	AllocationBasisStock = "STOCK" // rellenar el hueco contra el stock objetivo
)

// AllocationHeader representa una corrida de distribución almacén → tiendas.
// El estado solo avanza según la tabla de transiciones del motor; las filas de
// detalle se escriben como un conjunto atómico cuando el cálculo termina.
type AllocationHeader struct {
	ID            string
	Code          string // único, formato ALLOC_YYYYMMDD_XXXXXX
	Name          string
	Type          string // ver constantes AllocationType*
	Basis         string // ver constantes AllocationBasis*
	Category      string
	Season        string
	WarehouseCode string
	Status        string // ver constantes AllocationStatus*
	TotalQty      int64
	TotalStores   int
	TotalVariants int
	Config        json.RawMessage // RunConfig serializado; permite recalcular (rerun)
	Warnings      []string        // avisos no fatales del último run
	CreatedBy     string
	ApprovedBy    string
	ExecutedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Terminal indica si la cabecera ya no admite ninguna transición.
func (h *AllocationHeader) Terminal() bool {
	return h.Status == AllocationStatusExecuted || h.Status == AllocationStatusCancelled
}

// AllocationDetail es una fila tienda × variante de una distribución.
// AllocatedQty la escribe el motor una sola vez por run; OverrideQty es el único
// campo mutable después (y solo hasta que la cabecera quede EXECUTED).
type AllocationDetail struct {
	ID             string
	AllocationID   string
	StoreCode      string
	GenArticleCode string
	VariantCode    string
	SizeCode       string
	ColorCode      string
	AllocatedQty   int64
	OverrideQty    *int64
	FinalQty       int64
	StoreGrade     string // snapshot del grado al momento del run
	Basis          string // snapshot de la base usada
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// EffectiveQty devuelve override_qty si existe, si no allocated_qty.
func (d *AllocationDetail) EffectiveQty() int64 {
	if d.OverrideQty != nil {
		return *d.OverrideQty
	}
	return d.AllocatedQty
}
