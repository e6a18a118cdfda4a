package allocation

import (
	"context"

	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
)

// Summary desglose de una distribución para consulta.
type Summary struct {
	Header        *entity.AllocationHeader
	TotalsByGrade []repository.GroupTotal
	TotalsBySize  []repository.GroupTotal
	TotalsByColor []repository.GroupTotal
	TopStores     []repository.StoreTotal
}

// QueryUseCase lecturas de cabeceras, detalle paginado y resúmenes.
// El filtrado por visibilidad de tienda es responsabilidad del colaborador
// que consume estas lecturas, no del motor.
type QueryUseCase struct {
	headerRepo repository.AllocationHeaderRepository
	detailRepo repository.AllocationDetailRepository
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(
	headerRepo repository.AllocationHeaderRepository,
	detailRepo repository.AllocationDetailRepository,
) *QueryUseCase {
	return &QueryUseCase{headerRepo: headerRepo, detailRepo: detailRepo}
}

// GetHeader devuelve una cabecera por id.
func (uc *QueryUseCase) GetHeader(ctx context.Context, allocationID string) (*entity.AllocationHeader, error) {
	return uc.headerRepo.GetByID(ctx, allocationID)
}

// List devuelve cabeceras con filtros y paginación.
func (uc *QueryUseCase) List(ctx context.Context, f repository.HeaderFilter) ([]*entity.AllocationHeader, int, error) {
	return uc.headerRepo.List(ctx, f)
}

// GetDetails devuelve filas de detalle paginadas con filtros de tienda y talla.
func (uc *QueryUseCase) GetDetails(
	ctx context.Context,
	allocationID string,
	f repository.DetailFilter,
) ([]*entity.AllocationDetail, int, error) {
	if _, err := uc.headerRepo.GetByID(ctx, allocationID); err != nil {
		return nil, 0, err
	}
	return uc.detailRepo.ListByAllocation(ctx, allocationID, f)
}

// GetSummary devuelve la cabecera con los totales por grado, talla y color y
// las diez tiendas con más unidades.
func (uc *QueryUseCase) GetSummary(ctx context.Context, allocationID string) (*Summary, error) {
	header, err := uc.headerRepo.GetByID(ctx, allocationID)
	if err != nil {
		return nil, err
	}

	byGrade, err := uc.detailRepo.TotalsByGrade(ctx, allocationID)
	if err != nil {
		return nil, err
	}
	bySize, err := uc.detailRepo.TotalsBySize(ctx, allocationID)
	if err != nil {
		return nil, err
	}
	byColor, err := uc.detailRepo.TotalsByColor(ctx, allocationID)
	if err != nil {
		return nil, err
	}
	topStores, err := uc.detailRepo.TopStores(ctx, allocationID, 10)
	if err != nil {
		return nil, err
	}

	return &Summary{
		Header:        header,
		TotalsByGrade: byGrade,
		TotalsBySize:  bySize,
		TotalsByColor: byColor,
		TopStores:     topStores,
	}, nil
}
