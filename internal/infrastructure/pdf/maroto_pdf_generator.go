// Package pdf implementa el comprobante imprimible de una operación de inventario.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Tipo de operación   │  Referencia + Fecha + Estado │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RUTA: Origen → Destino / Tercero / Motivo                  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: SKU | Producto | Solicitado | Realizado | Valor      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAL valorizado + firmas                                  │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

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
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-oracle-api/internal/application/inventory"
	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
)

var _ inventory.DocumentGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWarn    = &props.Color{Red: 170, Green: 60, Blue: 0}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa inventory.DocumentGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	company string
}

// NewMarotoPDFGenerator construye el generador; company aparece como autor del documento.
func NewMarotoPDFGenerator(company string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{company: company}
}

// GenerateMovePDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateMovePDF(_ context.Context, doc inventory.MoveDocument) ([]byte, error) {
	m := doc.Move
	if m == nil {
		return nil, fmt.Errorf("pdf: operación vacía")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Comprobante "+m.Reference, true).
		WithAuthor(g.company, true).
		Build()

	mt := maroto.New(cfg)

	mt.AddRows(headerRow(doc))
	mt.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	mt.AddRows(routeRow(doc))
	mt.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	mt.AddRows(tableHeaderRow())
	mt.AddRows(tableLineRows(doc.Lines)...)

	mt.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	mt.AddRows(totalRow(doc.TotalValue))
	if len(m.Shortages) > 0 {
		mt.AddRows(shortageRows(m.Shortages)...)
	}
	mt.AddRows(line.NewRow(12))
	mt.AddRows(signatureRow())

	out, err := mt.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: tipo de operación (izq) y referencia, fecha y estado (der).
func headerRow(doc inventory.MoveDocument) core.Row {
	m := doc.Move
	fecha := m.CreatedAt.Format("02/01/2006 15:04")
	if m.CompletedAt != nil {
		fecha = m.CompletedAt.Format("02/01/2006 15:04")
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New(typeTitle(m.Type), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Origen: "+originLabel(m.Origin), props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(m.Reference, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 1,
			}),
			text.New("Fecha: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
			text.New("Estado: "+string(m.Status), props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Top: 13, Color: colorPrimary,
			}),
		),
	)
}

// routeRow: origen, destino, tercero y motivo.
func routeRow(doc inventory.MoveDocument) core.Row {
	m := doc.Move
	var details []string
	if m.Counterparty != "" {
		details = append(details, "Tercero: "+m.Counterparty)
	}
	if m.Reason != "" {
		details = append(details, "Motivo: "+m.Reason)
	}
	if m.Notes != "" {
		details = append(details, "Notas: "+m.Notes)
	}
	return row.New(14).Add(
		col.New(12).Add(
			text.New(fmt.Sprintf("Origen: %s   →   Destino: %s",
				nonEmpty(doc.FromLocation, "-"),
				nonEmpty(doc.ToLocation, "-"),
			), props.Text{Style: fontstyle.Bold, Size: 9, Top: 1}),
			text.New(nonEmpty(strings.Join(details, "   |   "), " "), props.Text{
				Size: 8, Top: 7, Color: colorGray,
			}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("SKU", 2, align.Left),
		h("Producto", 4, align.Left),
		h("Solicitado", 2, align.Right),
		h("Realizado", 2, align.Right),
		h("Valor", 2, align.Right),
	)
}

// tableLineRows: una fila por línea de la operación.
func tableLineRows(lines []inventory.DocumentLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(nonEmpty(l.SKU, "-"), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(4).Add(text.New(l.ProductName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(
				l.Requested.String()+" "+l.UnitMeasure,
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(2).Add(text.New(
				l.Done.String(),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(2).Add(text.New(
				"$"+formatMoney(l.Value.StringFixed(0)),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalRow: valor total alineado a la derecha.
func totalRow(total decimal.Decimal) core.Row {
	return row.New(10).Add(
		col.New(6),
		col.New(3).Add(text.New("VALOR TOTAL:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 2, Right: 2,
		})),
		col.New(3).Add(text.New("$"+formatMoney(total.StringFixed(0)), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 2, Right: 1,
		})),
	)
}

// shortageRows: faltantes de una operación en WAITING.
func shortageRows(shortages []entity.Shortage) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(text.New("FALTANTES EN ORIGEN", props.Text{
			Style: fontstyle.Bold, Size: 8, Color: colorWarn, Top: 1,
		}))),
	}
	for _, s := range shortages {
		rows = append(rows, row.New(5).Add(col.New(12).Add(text.New(
			fmt.Sprintf("%s: se requieren %s, disponibles %s", nonEmpty(s.ProductName, s.ProductID), s.Needed, s.Available),
			props.Text{Size: 8, Color: colorWarn, Left: 2},
		))))
	}
	return rows
}

// signatureRow: espacios de firma de quien entrega y quien recibe.
func signatureRow() core.Row {
	sign := func(label string) core.Col {
		return col.New(6).Add(
			text.New("______________________________", props.Text{Size: 9, Align: align.Center}),
			text.New(label, props.Text{Size: 8, Align: align.Center, Top: 5, Color: colorGray}),
		)
	}
	return row.New(14).Add(sign("Entrega"), sign("Recibe"))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func typeTitle(t entity.MoveType) string {
	switch t {
	case entity.MoveReceipt:
		return "RECEPCIÓN DE MERCANCÍA"
	case entity.MoveDelivery:
		return "ENTREGA A CLIENTE"
	case entity.MoveTransfer:
		return "TRASLADO ENTRE UBICACIONES"
	case entity.MoveAdjustment:
		return "AJUSTE DE INVENTARIO"
	}
	return "OPERACIÓN DE INVENTARIO"
}

func originLabel(o entity.MoveOrigin) string {
	if o == entity.OriginAgent {
		return "asistente (confirmada por el usuario)"
	}
	return "interfaz"
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "-1000000" → "-1.000.000"
func formatMoney(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	n := len(s)
	if n <= 3 {
		return sign + s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + string(buf)
}
