package repository

import (
	"context"

	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
)

// HeaderFilter filtros de listado de cabeceras.
type HeaderFilter struct {
	Status string
	Type   string
	Season string
	Limit  int
	Offset int
}

// DetailFilter filtros y paginación de filas de detalle.
type DetailFilter struct {
	StoreCode string
	SizeCode  string
	Limit     int
	Offset    int
}

// GroupTotal total de unidades por clave de agrupación (grado, talla, color).
type GroupTotal struct {
	Key string
	Qty int64
}

// StoreTotal total de unidades de una tienda.
type StoreTotal struct {
	StoreCode string
	Qty       int64
}

// AllocationHeaderRepository puerto de persistencia de cabeceras (DIP).
// GetForUpdate bloquea la fila de la cabecera: es la garantía de escritor único
// por distribución (runs, overrides y transiciones se serializan contra ella).
type AllocationHeaderRepository interface {
	Create(ctx context.Context, h *entity.AllocationHeader) error
	GetByID(ctx context.Context, id string) (*entity.AllocationHeader, error)
	GetForUpdate(ctx context.Context, id string) (*entity.AllocationHeader, error)
	Update(ctx context.Context, h *entity.AllocationHeader) error
	List(ctx context.Context, f HeaderFilter) ([]*entity.AllocationHeader, int, error)
}

// AllocationDetailRepository puerto de persistencia de filas de detalle.
// BulkInsert escribe el conjunto completo de un run; con DeleteByAllocation en
// la misma transacción implementa el reemplazo atómico del rerun.
type AllocationDetailRepository interface {
	BulkInsert(ctx context.Context, details []*entity.AllocationDetail) error
	DeleteByAllocation(ctx context.Context, allocationID string) error
	ListByAllocation(ctx context.Context, allocationID string, f DetailFilter) ([]*entity.AllocationDetail, int, error)
	GetByIDs(ctx context.Context, allocationID string, ids []string) ([]*entity.AllocationDetail, error)
	UpdateOverride(ctx context.Context, id string, overrideQty int64, finalQty int64) error
	SumFinalQty(ctx context.Context, allocationID string) (int64, error)

	TotalsByGrade(ctx context.Context, allocationID string) ([]GroupTotal, error)
	TotalsBySize(ctx context.Context, allocationID string) ([]GroupTotal, error)
	TotalsByColor(ctx context.Context, allocationID string) ([]GroupTotal, error)
	TopStores(ctx context.Context, allocationID string, limit int) ([]StoreTotal, error)
}
