package repository

import (
	"context"

	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
)

// LocationRepository define el puerto de lectura de ubicaciones (DIP).
type LocationRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Location, error)
	FindByName(ctx context.Context, name string) (*entity.Location, error)
	ListByIDs(ctx context.Context, ids []string) ([]*entity.Location, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Location, error)
}
