package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockKey identifica una entrada del ledger.
type StockKey struct {
	ProductID  string
	LocationID string
}

// StockEntry cantidad de un producto en una ubicación. Se crea con el primer delta y nunca se borra.
// Reserved lo administra un sistema externo; aquí solo se lee.
type StockEntry struct {
	ProductID  string
	LocationID string
	Quantity   decimal.Decimal
	Reserved   decimal.Decimal
	UpdatedAt  time.Time
}

// Key devuelve la clave (producto, ubicación) de la entrada.
func (s StockEntry) Key() StockKey {
	return StockKey{ProductID: s.ProductID, LocationID: s.LocationID}
}

// Available cantidad disponible para salidas: Quantity - Reserved, nunca negativa.
func (s StockEntry) Available() decimal.Decimal {
	avail := s.Quantity.Sub(s.Reserved)
	if avail.IsNegative() {
		return decimal.Zero
	}
	return avail
}

// LedgerDelta cambio firmado a aplicar sobre una entrada del ledger.
type LedgerDelta struct {
	ProductID  string
	LocationID string
	Delta      decimal.Decimal
	// KeepReserved el descuento solo puede consumir lo disponible (cantidad - reservado).
	KeepReserved bool
}

// Key devuelve la clave (producto, ubicación) del delta.
func (d LedgerDelta) Key() StockKey {
	return StockKey{ProductID: d.ProductID, LocationID: d.LocationID}
}

// LowStockItem entrada por debajo del nivel de reorden, ordenada por déficit.
type LowStockItem struct {
	ProductID    string
	ProductName  string
	SKU          string
	UnitMeasure  string
	LocationID   string
	LocationName string
	Quantity     decimal.Decimal
	ReorderLevel decimal.Decimal
	Deficit      decimal.Decimal
}
