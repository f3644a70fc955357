package retrieval

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
)

// StockLine cantidad de un producto en una ubicación.
type StockLine struct {
	LocationID   string
	LocationName string
	Quantity     decimal.Decimal
	Reserved     decimal.Decimal
	Available    decimal.Decimal
}

// ProductCandidate producto relevante para la consulta con su stock por ubicación.
type ProductCandidate struct {
	Product entity.Product
	Score   float64
	Stock   []StockLine
}

// LocationCandidate ubicación relevante para la consulta.
type LocationCandidate struct {
	Location entity.Location
	Score    float64
}

// MoveSummary resumen de una operación reciente.
type MoveSummary struct {
	ID          string
	Reference   string
	Type        entity.MoveType
	Status      entity.MoveStatus
	Lines       int
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// KPIs indicadores globales del inventario.
type KPIs struct {
	TotalValue     decimal.Decimal
	LowStockCount  int
	OpenOperations int
}

// Snapshot contexto de solo lectura construido para una consulta. Se pasa por valor.
type Snapshot struct {
	Query       string
	Products    []ProductCandidate
	Locations   []LocationCandidate
	RecentMoves []MoveSummary
	LowStock    []entity.LowStockItem
	KPIs        KPIs
	// Degraded partes que no se pudieron obtener.
	Degraded []string
	BuiltAt  time.Time
}

// PromptSection texto del estado del sistema para el prompt del modelo.
func (s Snapshot) PromptSection() string {
	var b strings.Builder

	b.WriteString("### Indicadores\n")
	fmt.Fprintf(&b, "- Valor total del inventario: $%s\n", s.KPIs.TotalValue.StringFixed(2))
	fmt.Fprintf(&b, "- Productos en stock bajo: %d\n", s.KPIs.LowStockCount)
	fmt.Fprintf(&b, "- Operaciones abiertas: %d\n\n", s.KPIs.OpenOperations)

	if len(s.Products) > 0 {
		b.WriteString("### Productos relevantes\n")
		for _, p := range s.Products {
			fmt.Fprintf(&b, "- %s (SKU: %s) - Reorden: %s %s\n", p.Product.Name, p.Product.SKU, p.Product.ReorderLevel.String(), p.Product.UnitMeasure)
			for _, st := range p.Stock {
				fmt.Fprintf(&b, "  - %s: %s (disponible %s)\n", st.LocationName, st.Quantity.String(), st.Available.String())
			}
		}
		b.WriteString("\n")
	}

	if len(s.Locations) > 0 {
		b.WriteString("### Ubicaciones relevantes\n")
		for _, l := range s.Locations {
			fmt.Fprintf(&b, "- %s (%s)\n", l.Location.Name, l.Location.Kind)
		}
		b.WriteString("\n")
	}

	if len(s.LowStock) > 0 {
		b.WriteString("### Alertas de stock bajo\n")
		for _, it := range s.LowStock {
			fmt.Fprintf(&b, "- %s en %s: %s (reorden %s, déficit %s)\n",
				it.ProductName, it.LocationName, it.Quantity.String(), it.ReorderLevel.String(), it.Deficit.String())
		}
		b.WriteString("\n")
	}

	if len(s.RecentMoves) > 0 {
		b.WriteString("### Operaciones completadas recientes\n")
		for _, m := range s.RecentMoves {
			when := m.UpdatedAt
			if m.CompletedAt != nil {
				when = *m.CompletedAt
			}
			fmt.Fprintf(&b, "- %s %s (%d líneas) %s\n", m.Reference, m.Type, m.Lines, when.Format("2006-01-02 15:04"))
		}
		b.WriteString("\n")
	}

	if len(s.Degraded) > 0 {
		fmt.Fprintf(&b, "Nota: contexto parcial, no disponible: %s\n", strings.Join(s.Degraded, ", "))
	}
	return b.String()
}
