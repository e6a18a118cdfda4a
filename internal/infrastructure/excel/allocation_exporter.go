// Package excel exporta distribuciones a XLSX con dos hojas: el detalle
// tienda × variante completo y el resumen con totales por grado, talla,
// color y top de tiendas.
package excel

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	appalloc "github.com/jhoicas/Distribucion-api/internal/application/allocation"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
)

var _ appalloc.AllocationXLSXExporter = (*AllocationExporter)(nil)

const (
	sheetDetail  = "Detalle"
	sheetSummary = "Resumen"
)

// AllocationExporter implementa el puerto de exportación XLSX usando excelize.
type AllocationExporter struct{}

// NewAllocationExporter construye el exportador.
func NewAllocationExporter() *AllocationExporter { return &AllocationExporter{} }

// Export genera el libro XLSX y devuelve sus bytes.
func (e *AllocationExporter) Export(
	_ context.Context,
	summary *appalloc.Summary,
	details []*entity.AllocationDetail,
) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetDetail); err != nil {
		return nil, fmt.Errorf("xlsx: renombrar hoja: %w", err)
	}
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return nil, fmt.Errorf("xlsx: crear hoja resumen: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"00467F"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("xlsx: crear estilo: %w", err)
	}

	if err := writeDetailSheet(f, headerStyle, details); err != nil {
		return nil, err
	}
	if err := writeSummarySheet(f, headerStyle, summary); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: escribir libro: %w", err)
	}
	return buf.Bytes(), nil
}

func writeDetailSheet(f *excelize.File, headerStyle int, details []*entity.AllocationDetail) error {
	headers := []string{"Tienda", "Grado", "Artículo", "Variante", "Talla", "Color", "Asignado", "Corrección", "Final", "Base"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetDetail, cell, h); err != nil {
			return fmt.Errorf("xlsx: cabecera detalle: %w", err)
		}
	}
	if err := f.SetCellStyle(sheetDetail, "A1", "J1", headerStyle); err != nil {
		return fmt.Errorf("xlsx: estilo cabecera: %w", err)
	}

	for i, d := range details {
		row := i + 2
		values := []any{
			d.StoreCode, d.StoreGrade, d.GenArticleCode, d.VariantCode,
			d.SizeCode, d.ColorCode, d.AllocatedQty, nil, d.FinalQty, d.Basis,
		}
		if d.OverrideQty != nil {
			values[7] = *d.OverrideQty
		}
		for col, v := range values {
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheetDetail, cell, v); err != nil {
				return fmt.Errorf("xlsx: fila detalle %d: %w", row, err)
			}
		}
	}
	return nil
}

func writeSummarySheet(f *excelize.File, headerStyle int, summary *appalloc.Summary) error {
	h := summary.Header
	row := 1
	set := func(col int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheetSummary, cell, v)
	}
	meta := [][2]any{
		{"Distribución", h.Code},
		{"Nombre", h.Name},
		{"Estado", h.Status},
		{"Unidades totales", h.TotalQty},
		{"Tiendas", h.TotalStores},
		{"Variantes", h.TotalVariants},
	}
	for _, m := range meta {
		set(1, m[0])
		set(2, m[1])
		row++
	}
	row++

	writeBlock := func(title string, totals []repository.GroupTotal) error {
		set(1, title)
		set(2, "Unidades")
		cellA, _ := excelize.CoordinatesToCellName(1, row)
		cellB, _ := excelize.CoordinatesToCellName(2, row)
		if err := f.SetCellStyle(sheetSummary, cellA, cellB, headerStyle); err != nil {
			return fmt.Errorf("xlsx: estilo bloque %s: %w", title, err)
		}
		row++
		for _, t := range totals {
			set(1, t.Key)
			set(2, t.Qty)
			row++
		}
		row++
		return nil
	}

	if err := writeBlock("Por grado", summary.TotalsByGrade); err != nil {
		return err
	}
	if err := writeBlock("Por talla", summary.TotalsBySize); err != nil {
		return err
	}
	if err := writeBlock("Por color", summary.TotalsByColor); err != nil {
		return err
	}

	topStores := make([]repository.GroupTotal, len(summary.TopStores))
	for i, t := range summary.TopStores {
		topStores[i] = repository.GroupTotal{Key: t.StoreCode, Qty: t.Qty}
	}
	return writeBlock("Top tiendas", topStores)
}
