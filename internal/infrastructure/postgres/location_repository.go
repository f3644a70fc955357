package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
	"github.com/jhoicas/stock-oracle-api/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepo)(nil)

const locationColumns = `id, name, kind, address, created_at, updated_at`

// LocationRepo ubicaciones (bodegas, zonas, tiendas) sobre PostgreSQL.
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

func scanLocation(row scanner) (*entity.Location, error) {
	var l entity.Location
	var kind string
	if err := row.Scan(&l.ID, &l.Name, &kind, &l.Address, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	l.Kind = entity.LocationKind(kind)
	return &l, nil
}

// GetByID obtiene una ubicación por ID.
func (r *LocationRepo) GetByID(ctx context.Context, id string) (*entity.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE id::text = $1`
	l, err := scanLocation(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return l, nil
}

// FindByName busca por nombre exacto sin distinguir mayúsculas.
func (r *LocationRepo) FindByName(ctx context.Context, name string) (*entity.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE lower(name) = lower($1) LIMIT 1`
	l, err := scanLocation(r.q.QueryRow(ctx, query, name))
	if err != nil {
		return nil, notFound(err)
	}
	return l, nil
}

// ListByIDs devuelve las ubicaciones existentes entre ids.
func (r *LocationRepo) ListByIDs(ctx context.Context, ids []string) ([]*entity.Location, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.list(ctx, `SELECT `+locationColumns+` FROM locations WHERE id::text = ANY($1) ORDER BY name`, ids)
}

// List lista las ubicaciones por nombre.
func (r *LocationRepo) List(ctx context.Context, limit, offset int) ([]*entity.Location, error) {
	return r.list(ctx, `SELECT `+locationColumns+` FROM locations ORDER BY name LIMIT $1 OFFSET $2`, limitArg(limit), offset)
}

func (r *LocationRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Location, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()
	var list []*entity.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}
