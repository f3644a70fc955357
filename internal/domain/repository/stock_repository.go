package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
)

// StockReader consultas de solo lectura sobre el ledger de stock.
type StockReader interface {
	// Get devuelve la entrada o una entrada en cero si aún no existe.
	Get(ctx context.Context, productID, locationID string) (*entity.StockEntry, error)
	ListByProducts(ctx context.Context, productIDs []string) ([]*entity.StockEntry, error)
	ListByLocation(ctx context.Context, locationID string) ([]*entity.StockEntry, error)
	// ListLowStock entradas con cantidad < nivel de reorden, por déficit descendente.
	// locationID vacío = todas las ubicaciones; limit <= 0 = sin límite.
	ListLowStock(ctx context.Context, locationID string, limit int) ([]entity.LowStockItem, error)
	// TotalValue Σ cantidad × costo; locationID vacío = todo el inventario.
	TotalValue(ctx context.Context, locationID string) (decimal.Decimal, error)
}

// LedgerWriter escritura del ledger. Solo se obtiene dentro de TxRunner.Run.
type LedgerWriter interface {
	StockReader
	// ApplyDeltas aplica todos los deltas o ninguno (dentro de la tx del caller).
	// strict: un delta que deje la cantidad negativa falla con domain.ErrInsufficientStock.
	// No strict: el resultado se recorta a cero. Las entradas ausentes se crean con max(0, delta).
	ApplyDeltas(ctx context.Context, deltas []entity.LedgerDelta, strict bool) ([]*entity.StockEntry, error)
}
