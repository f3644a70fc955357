package repository

import (
	"context"

	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
)

// MoveRepository persistencia de operaciones y sus líneas.
// Las escrituras solo ocurren dentro de TxRunner.Run.
type MoveRepository interface {
	Create(ctx context.Context, m *entity.Move) error
	GetByID(ctx context.Context, id string) (*entity.Move, error)
	GetByReference(ctx context.Context, reference string) (*entity.Move, error)
	// GetForUpdate bloquea la operación hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Move, error)
	// Update persiste estado, aprobación, faltantes, fecha de cierre y cantidades realizadas.
	Update(ctx context.Context, m *entity.Move) error
	List(ctx context.Context, filter entity.MoveFilter) ([]*entity.Move, error)
	CountOpen(ctx context.Context) (int, error)
}
