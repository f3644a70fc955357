package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
	"github.com/jhoicas/stock-oracle-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Es la única vía para obtener un LedgerWriter: todo cambio de stock ocurre junto al cambio de estado.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		moves repository.MoveRepository,
		ledger repository.LedgerWriter,
	) error) error
}

// DocumentLine línea del documento con los datos del producto resueltos.
type DocumentLine struct {
	SKU         string
	ProductName string
	UnitMeasure string
	Requested   decimal.Decimal
	Done        decimal.Decimal
	UnitCost    decimal.Decimal
	Value       decimal.Decimal // cantidad (realizada si DONE) × costo
}

// MoveDocument datos listos para renderizar el comprobante de una operación.
type MoveDocument struct {
	Move         *entity.Move
	FromLocation string
	ToLocation   string
	Lines        []DocumentLine
	TotalValue   decimal.Decimal
	GeneratedAt  time.Time
}

// DocumentGenerator renderiza el comprobante imprimible (PDF) de una operación.
type DocumentGenerator interface {
	GenerateMovePDF(ctx context.Context, doc MoveDocument) ([]byte, error)
}
