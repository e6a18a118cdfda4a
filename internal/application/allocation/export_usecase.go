package allocation

import (
	"context"
	"fmt"

	"github.com/jhoicas/Distribucion-api/internal/domain"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
)

// AllocationXLSXExporter puerto de exportación a hoja de cálculo.
type AllocationXLSXExporter interface {
	Export(ctx context.Context, summary *Summary, details []*entity.AllocationDetail) ([]byte, error)
}

// AllocationPDFGenerator puerto de generación del resumen en PDF.
type AllocationPDFGenerator interface {
	GenerateSummaryPDF(ctx context.Context, summary *Summary) ([]byte, error)
}

// exportPageSize filas de detalle leídas por página al exportar.
const exportPageSize = 5000

// ExportUseCase produce los entregables descargables de una distribución:
// el detalle completo en XLSX y el resumen ejecutivo en PDF.
type ExportUseCase struct {
	query *QueryUseCase
	xlsx  AllocationXLSXExporter
	pdf   AllocationPDFGenerator
}

// NewExportUseCase construye el caso de uso.
func NewExportUseCase(query *QueryUseCase, xlsx AllocationXLSXExporter, pdf AllocationPDFGenerator) *ExportUseCase {
	return &ExportUseCase{query: query, xlsx: xlsx, pdf: pdf}
}

// ExportXLSX devuelve el libro XLSX con todas las filas de detalle y el resumen.
func (uc *ExportUseCase) ExportXLSX(ctx context.Context, allocationID string) ([]byte, error) {
	summary, err := uc.query.GetSummary(ctx, allocationID)
	if err != nil {
		return nil, err
	}
	if summary.Header.TotalQty == 0 {
		return nil, fmt.Errorf("%w: la distribución no tiene filas que exportar", domain.ErrState)
	}

	var details []*entity.AllocationDetail
	for offset := 0; ; offset += exportPageSize {
		page, _, err := uc.query.GetDetails(ctx, allocationID, repository.DetailFilter{
			Limit:  exportPageSize,
			Offset: offset,
		})
		if err != nil {
			return nil, err
		}
		details = append(details, page...)
		if len(page) < exportPageSize {
			break
		}
	}

	return uc.xlsx.Export(ctx, summary, details)
}

// ExportPDF devuelve el resumen ejecutivo en PDF.
func (uc *ExportUseCase) ExportPDF(ctx context.Context, allocationID string) ([]byte, error) {
	summary, err := uc.query.GetSummary(ctx, allocationID)
	if err != nil {
		return nil, err
	}
	if summary.Header.TotalQty == 0 {
		return nil, fmt.Errorf("%w: la distribución no tiene filas que exportar", domain.ErrState)
	}
	return uc.pdf.GenerateSummaryPDF(ctx, summary)
}
