package dto

import "github.com/shopspring/decimal"

// DashboardKPIsDTO respuesta de GET /api/dashboard/kpis.
type DashboardKPIsDTO struct {
	TotalValue       decimal.Decimal `json:"totalValue"`       // Σ cantidad × costo
	LowStockCount    int             `json:"lowStockCount"`    // entradas bajo el nivel de reorden
	OpenOperations   int             `json:"openOperations"`   // DRAFT + READY + WAITING
	CompletedToday   int             `json:"completedToday"`   // operaciones DONE hoy
	CompletedInMonth int             `json:"completedInMonth"` // operaciones DONE en el mes en curso
	TopLowStock      []LowStockDTO   `json:"topLowStock"`      // mayores déficits
	DateLabel        string          `json:"dateLabel"`        // ej: "Marzo 2026"
}

// LowStockDTO entrada bajo el nivel de reorden.
type LowStockDTO struct {
	ProductID    string          `json:"productId"`
	SKU          string          `json:"sku"`
	ProductName  string          `json:"productName"`
	LocationName string          `json:"locationName"`
	Quantity     decimal.Decimal `json:"quantity"`
	ReorderLevel decimal.Decimal `json:"reorderLevel"`
	Deficit      decimal.Decimal `json:"deficit"`
}
