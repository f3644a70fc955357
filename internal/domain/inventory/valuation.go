package inventory

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
)

// StockValue valoriza un conjunto de entradas: Σ cantidad × costo unitario.
// Las entradas de productos desconocidos se ignoran.
func StockValue(entries []entity.StockEntry, products map[string]entity.Product) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		p, ok := products[e.ProductID]
		if !ok {
			continue
		}
		total = total.Add(e.Quantity.Mul(p.CostPrice))
	}
	return total.Round(2)
}

// LowStock devuelve las entradas por debajo del nivel de reorden, ordenadas por déficit descendente.
func LowStock(entries []entity.StockEntry, products map[string]entity.Product, locations map[string]entity.Location) []entity.LowStockItem {
	var out []entity.LowStockItem
	for _, e := range entries {
		p, ok := products[e.ProductID]
		if !ok || !p.ReorderLevel.IsPositive() || !e.Quantity.LessThan(p.ReorderLevel) {
			continue
		}
		out = append(out, entity.LowStockItem{
			ProductID:    p.ID,
			ProductName:  p.Name,
			SKU:          p.SKU,
			UnitMeasure:  p.UnitMeasure,
			LocationID:   e.LocationID,
			LocationName: locations[e.LocationID].Name,
			Quantity:     e.Quantity,
			ReorderLevel: p.ReorderLevel,
			Deficit:      p.ReorderLevel.Sub(e.Quantity),
		})
	}
	sortLowStock(out)
	return out
}

func sortLowStock(items []entity.LowStockItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].Deficit.Equal(items[j].Deficit) {
			return items[i].Deficit.GreaterThan(items[j].Deficit)
		}
		return items[i].ProductName < items[j].ProductName
	})
}
