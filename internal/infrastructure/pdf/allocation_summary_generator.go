// Package pdf implementa el resumen ejecutivo de una distribución en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Nombre + Código  │  Estado + Fecha                  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FICHA: Tipo / Base / Bodega / Temporada                     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Unidades | Tiendas | Variantes                     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLAS: Por grado  |  Por talla  |  Por color               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOP 10 TIENDAS                                              │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	appalloc "github.com/jhoicas/Distribucion-api/internal/application/allocation"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ appalloc.AllocationPDFGenerator = (*MarotoSummaryGenerator)(nil)

// MarotoSummaryGenerator implementa el puerto AllocationPDFGenerator usando Maroto v2.
type MarotoSummaryGenerator struct{}

// NewMarotoSummaryGenerator construye el generador.
func NewMarotoSummaryGenerator() *MarotoSummaryGenerator { return &MarotoSummaryGenerator{} }

// GenerateSummaryPDF genera el PDF del resumen y devuelve sus bytes.
func (g *MarotoSummaryGenerator) GenerateSummaryPDF(_ context.Context, summary *appalloc.Summary) ([]byte, error) {
	h := summary.Header

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Resumen de distribución "+h.Code, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(h))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(infoRow(h))
	m.AddRows(totalsRow(h))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(groupTablesRows(summary)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(topStoresRows(summary.TopStores)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: nombre + código (izq) y estado + fecha (der).
func headerRow(h *entity.AllocationHeader) core.Row {
	fecha := h.CreatedAt.Format("02/01/2006")

	return row.New(18).Add(
		col.New(7).Add(
			text.New(h.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(h.Code, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("RESUMEN DE DISTRIBUCIÓN", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(h.Status, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// infoRow: ficha de la configuración del run.
func infoRow(h *entity.AllocationHeader) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("CONFIGURACIÓN", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Tipo: %s   |   Base: %s   |   Bodega: %s   |   Temporada: %s",
				h.Type, h.Basis,
				nonEmpty(h.WarehouseCode, "—"),
				nonEmpty(h.Season, "—"),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

// totalsRow: unidades, tiendas y variantes del run.
func totalsRow(h *entity.AllocationHeader) core.Row {
	metric := func(label, value string) core.Col {
		return col.New(4).Add(
			text.New(label, props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Center,
				Color: colorGray, Top: 1,
			}),
			text.New(value, props.Text{
				Style: fontstyle.Bold, Size: 13, Align: align.Center,
				Color: colorPrimary, Top: 6,
			}),
		)
	}
	return row.New(16).Add(
		metric("UNIDADES", strconv.FormatInt(h.TotalQty, 10)),
		metric("TIENDAS", strconv.Itoa(h.TotalStores)),
		metric("VARIANTES", strconv.Itoa(h.TotalVariants)),
	)
}

// groupTablesRows: las tres tablas de totales lado a lado.
func groupTablesRows(summary *appalloc.Summary) []core.Row {
	titles := row.New(8).Add(
		tableTitle("POR GRADO"),
		tableTitle("POR TALLA"),
		tableTitle("POR COLOR"),
	)

	depth := len(summary.TotalsByGrade)
	if n := len(summary.TotalsBySize); n > depth {
		depth = n
	}
	if n := len(summary.TotalsByColor); n > depth {
		depth = n
	}

	rows := []core.Row{titles}
	for i := 0; i < depth; i++ {
		rows = append(rows, row.New(6).Add(
			totalCols(summary.TotalsByGrade, i)...,
		).Add(
			totalCols(summary.TotalsBySize, i)...,
		).Add(
			totalCols(summary.TotalsByColor, i)...,
		))
	}
	return rows
}

func tableTitle(label string) core.Col {
	return col.New(4).Add(text.New(label, props.Text{
		Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
	}))
}

// totalCols: par clave/unidades de una tabla, o columna vacía si la tabla ya terminó.
func totalCols(totals []repository.GroupTotal, i int) []core.Col {
	if i >= len(totals) {
		return []core.Col{col.New(4)}
	}
	t := totals[i]
	return []core.Col{
		col.New(2).Add(text.New(t.Key, props.Text{Size: 8, Top: 1})),
		col.New(2).Add(text.New(strconv.FormatInt(t.Qty, 10), props.Text{
			Size: 8, Align: align.Right, Top: 1, Right: 4,
		})),
	}
}

// topStoresRows: tiendas con más unidades asignadas.
func topStoresRows(stores []repository.StoreTotal) []core.Row {
	rows := []core.Row{
		row.New(8).Add(
			col.New(12).Add(text.New("TOP TIENDAS", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2,
			})),
		),
	}
	for _, s := range stores {
		rows = append(rows, row.New(6).Add(
			col.New(6).Add(text.New(s.StoreCode, props.Text{Size: 8, Top: 1})),
			col.New(6).Add(text.New(strconv.FormatInt(s.Qty, 10), props.Text{
				Size: 8, Align: align.Right, Top: 1, Right: 4,
			})),
		))
	}
	return rows
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
