package tools

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-oracle-api/internal/domain"
	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
)

// Response salida tipada de una herramienta; Render la convierte en texto para el modelo.
type Response interface {
	Render() string
}

// Result resultado explícito de una invocación: Output o Failure, nunca ambos.
// Draft es la operación en borrador creada por la herramienta, si la hubo.
type Result struct {
	Tool    string
	Output  Response
	Failure *domain.Failure
	Draft   *entity.Move
}

// OK indica que la herramienta terminó sin fallo.
func (r Result) OK() bool { return r.Failure == nil }

// Text representación para el scratchpad o para la respuesta degradada.
func (r Result) Text() string {
	if r.Failure != nil {
		return "Error: " + r.Failure.Error()
	}
	if r.Output == nil {
		return ""
	}
	return r.Output.Render()
}

// StockAtLocation cantidad de un producto en una ubicación.
type StockAtLocation struct {
	LocationName string
	Quantity     decimal.Decimal
	Reserved     decimal.Decimal
	Available    decimal.Decimal
}

// StockReport respuesta de get_stock.
type StockReport struct {
	ProductName  string
	SKU          string
	UnitMeasure  string
	ReorderLevel decimal.Decimal
	Locations    []StockAtLocation
	Total        decimal.Decimal
}

func (r StockReport) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (SKU %s)\n", r.ProductName, r.SKU)
	if len(r.Locations) == 0 {
		b.WriteString("Sin stock registrado.\n")
	}
	for _, l := range r.Locations {
		fmt.Fprintf(&b, "- %s: %s %s (disponible %s)\n", l.LocationName, l.Quantity.String(), r.UnitMeasure, l.Available.String())
	}
	fmt.Fprintf(&b, "Total: %s %s. Nivel de reorden: %s", r.Total.String(), r.UnitMeasure, r.ReorderLevel.String())
	return b.String()
}

// LocationStockItem producto presente en una ubicación.
type LocationStockItem struct {
	ProductName string
	SKU         string
	UnitMeasure string
	Quantity    decimal.Decimal
	Available   decimal.Decimal
}

// LocationStockReport respuesta de get_location_stock.
type LocationStockReport struct {
	LocationName string
	Items        []LocationStockItem
}

func (r LocationStockReport) Render() string {
	if len(r.Items) == 0 {
		return fmt.Sprintf("%s no tiene stock registrado.", r.LocationName)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Stock en %s:\n", r.LocationName)
	for _, it := range r.Items {
		fmt.Fprintf(&b, "- %s (SKU %s): %s %s (disponible %s)\n", it.ProductName, it.SKU, it.Quantity.String(), it.UnitMeasure, it.Available.String())
	}
	return strings.TrimRight(b.String(), "\n")
}

// LowStockReport respuesta de get_low_stock.
type LowStockReport struct {
	LocationName string
	Items        []entity.LowStockItem
}

func (r LowStockReport) Render() string {
	scope := "todas las ubicaciones"
	if r.LocationName != "" {
		scope = r.LocationName
	}
	if len(r.Items) == 0 {
		return fmt.Sprintf("No hay productos en stock bajo en %s.", scope)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Productos en stock bajo (%s):\n", scope)
	for _, it := range r.Items {
		fmt.Fprintf(&b, "- %s (SKU %s) en %s: %s %s, reorden %s, déficit %s\n",
			it.ProductName, it.SKU, it.LocationName, it.Quantity.String(), it.UnitMeasure, it.ReorderLevel.String(), it.Deficit.String())
	}
	return strings.TrimRight(b.String(), "\n")
}

// StockValueReport respuesta de get_stock_value.
type StockValueReport struct {
	LocationName string
	Value        decimal.Decimal
}

func (r StockValueReport) Render() string {
	if r.LocationName == "" {
		return fmt.Sprintf("Valor total del inventario: $%s", r.Value.StringFixed(2))
	}
	return fmt.Sprintf("Valor del inventario en %s: $%s", r.LocationName, r.Value.StringFixed(2))
}

// LineView línea de operación con el nombre del producto resuelto.
type LineView struct {
	ProductID   string
	ProductName string
	Requested   decimal.Decimal
	Done        decimal.Decimal
}

// OperationView operación con nombres de ubicación y producto resueltos.
type OperationView struct {
	ID           string
	Reference    string
	Type         entity.MoveType
	Status       entity.MoveStatus
	Origin       entity.MoveOrigin
	From         string
	To           string
	Counterparty string
	Reason       string
	Lines        []LineView
	Shortages    []entity.Shortage
	CreatedAt    time.Time
	CompletedAt  *time.Time
}

func (v OperationView) route() string {
	switch {
	case v.From != "" && v.To != "":
		return v.From + " → " + v.To
	case v.From != "":
		return "desde " + v.From
	case v.To != "":
		return "hacia " + v.To
	}
	return ""
}

func (v OperationView) header() string {
	return fmt.Sprintf("%s [%s] %s %s", v.Reference, v.Status, v.Type, v.route())
}

func (v OperationView) Render() string {
	var b strings.Builder
	b.WriteString(v.header())
	b.WriteString("\n")
	if v.Counterparty != "" {
		fmt.Fprintf(&b, "Tercero: %s\n", v.Counterparty)
	}
	if v.Reason != "" {
		fmt.Fprintf(&b, "Motivo: %s\n", v.Reason)
	}
	for _, l := range v.Lines {
		if v.Status == entity.StatusDone {
			fmt.Fprintf(&b, "- %s: %s (realizado %s)\n", l.ProductName, l.Requested.String(), l.Done.String())
		} else {
			fmt.Fprintf(&b, "- %s: %s\n", l.ProductName, l.Requested.String())
		}
	}
	for _, s := range v.Shortages {
		fmt.Fprintf(&b, "Faltante: %s requiere %s, disponible %s\n", s.ProductName, s.Needed.String(), s.Available.String())
	}
	fmt.Fprintf(&b, "Creada: %s", v.CreatedAt.Format("2006-01-02 15:04"))
	if v.CompletedAt != nil {
		fmt.Fprintf(&b, ". Completada: %s", v.CompletedAt.Format("2006-01-02 15:04"))
	}
	return b.String()
}

// OperationList respuesta de get_pending_operations y search_history.
type OperationList struct {
	Title      string
	Operations []OperationView
}

func (r OperationList) Render() string {
	if len(r.Operations) == 0 {
		return r.Title + ": ninguna."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d):\n", r.Title, len(r.Operations))
	for _, op := range r.Operations {
		names := make([]string, 0, len(op.Lines))
		for _, l := range op.Lines {
			names = append(names, fmt.Sprintf("%s x%s", l.ProductName, l.Requested.String()))
		}
		fmt.Fprintf(&b, "- %s: %s\n", op.header(), strings.Join(names, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

// DraftCreated respuesta de las herramientas de creación.
type DraftCreated struct {
	Operation OperationView
}

func (r DraftCreated) Render() string {
	return fmt.Sprintf("Borrador creado (id %s). Requiere confirmación del usuario antes de aplicarse.\n%s",
		r.Operation.ID, r.Operation.Render())
}
