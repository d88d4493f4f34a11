// Package pdf genera la hoja de alistamiento de una orden de producción.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Producto + SKU        │  Orden N° + Fecha + Estado │
//	│  ─────────────────────────────────────────────────────────  │
//	│  BODEGA + meta de producción                                │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: SKU | Ingrediente | Requerido | Alistado | Pendiente│
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR de la orden + firmas                            │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
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

	"github.com/jhoicas/stock-ledger/internal/application/production"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 180, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ production.PickingSheetGenerator = (*PickingSheetGenerator)(nil)

// PickingSheetGenerator implementa production.PickingSheetGenerator usando Maroto v2.
type PickingSheetGenerator struct{}

// NewPickingSheetGenerator construye el generador.
func NewPickingSheetGenerator() *PickingSheetGenerator { return &PickingSheetGenerator{} }

// GeneratePickingSheet genera el PDF y devuelve sus bytes.
func (g *PickingSheetGenerator) GeneratePickingSheet(ctx context.Context, sheet *production.PickingSheet) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if sheet == nil || sheet.Order == nil || sheet.Product == nil || sheet.Warehouse == nil {
		return nil, fmt.Errorf("pdf: hoja de alistamiento incompleta")
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(fmt.Sprintf("Hoja de alistamiento #%d", sheet.Order.ID), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(sheet))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(warehouseRow(sheet))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	if len(sheet.Lines) == 0 {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("El producto no tiene lista de materiales; alistar manualmente.", props.Text{
				Size: 8, Top: 2, Color: colorGray, Align: align.Center,
			}),
		)))
	}
	for _, r := range tableLineRows(sheet.Lines) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(sheet))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(sheet *production.PickingSheet) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(sheet.Product.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("SKU: "+nonEmpty(sheet.Product.SKU, "—"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("HOJA DE ALISTAMIENTO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Orden #%d", sheet.Order.ID), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New(fmt.Sprintf("Fecha: %s   |   %s", sheet.GeneratedAt.Format("02/01/2006 15:04"), sheet.Order.Status), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func warehouseRow(sheet *production.PickingSheet) core.Row {
	return row.New(12).Add(
		col.New(8).Add(
			text.New("BODEGA", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(sheet.Warehouse.Name, props.Text{Size: 9, Top: 6}),
		),
		col.New(4).Add(
			text.New("META DE PRODUCCIÓN", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1}),
			text.New(formatQuantity(sheet.Order.QuantityGoal)+" und", props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 6}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("SKU", 2, align.Left),
		h("Ingrediente", 4, align.Left),
		h("Requerido", 2, align.Right),
		h("Alistado", 2, align.Right),
		h("Pendiente", 2, align.Right),
	)
}

// tableLineRows: una fila por ingrediente; el pendiente se resalta cuando falta alistar.
func tableLineRows(lines []production.PickingLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		pending := props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1}
		if l.Pending() > 0 {
			pending.Style = fontstyle.Bold
			pending.Color = colorAlert
		}
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(nonEmpty(l.SKU, "—"), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(4).Add(text.New(nonEmpty(l.Name, fmt.Sprintf("Producto %d", l.ProductID)), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(formatQuantity(l.Required), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(formatQuantity(l.Picked), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(formatQuantity(l.Pending()), pending)),
		))
	}
	return result
}

// footerRow: QR con la referencia de la orden para el escáner de planta y firmas.
func footerRow(sheet *production.PickingSheet) core.Row {
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(fmt.Sprintf("PO-%d", sheet.Order.ID), props.Rect{
			Percent: 90,
			Center:  true,
		})),
		col.New(9).Add(
			text.New("Alistó: ______________________________", props.Text{Size: 9, Top: 8, Left: 3}),
			text.New("Verificó: ____________________________", props.Text{Size: 9, Top: 20, Left: 3}),
			text.New("El consumo de ingredientes se registra al completar la orden.", props.Text{
				Size: 7, Top: 32, Left: 3, Color: colorGray,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatQuantity inserta puntos de miles. Ej: 25000 → "25.000".
func formatQuantity(n int64) string {
	s := strconv.FormatInt(n, 10)
	sign := ""
	if n < 0 {
		sign, s = "-", s[1:]
	}
	l := len(s)
	if l <= 3 {
		return sign + s
	}
	buf := make([]byte, 0, l+l/3)
	for i, c := range []byte(s) {
		if i > 0 && (l-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + string(buf)
}
