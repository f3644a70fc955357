package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del catálogo. El servicio solo lo lee.
type Product struct {
	ID           string
	SKU          string // código único
	Name         string
	Description  string
	Category     string
	UnitMeasure  string
	CostPrice    decimal.Decimal // costo unitario para valorizar el inventario
	ReorderLevel decimal.Decimal // por debajo de este nivel el producto está en stock bajo
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
