package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-oracle-api/internal/domain"
	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
	"github.com/jhoicas/stock-oracle-api/internal/domain/inventory"
	"github.com/jhoicas/stock-oracle-api/internal/domain/repository"
)

var _ repository.LedgerWriter = (*StockRepo)(nil)

const stockColumns = `product_id::text, location_id::text, quantity, reserved, updated_at`

// StockRepo ledger de stock sobre PostgreSQL (usable con pool o tx).
// ApplyDeltas solo debe llamarse con una tx (ver TxRunner).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

func scanStock(row scanner) (*entity.StockEntry, error) {
	var s entity.StockEntry
	if err := row.Scan(&s.ProductID, &s.LocationID, &s.Quantity, &s.Reserved, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// Get obtiene el stock actual de un producto en una ubicación; en cero si la entrada no existe.
func (r *StockRepo) Get(ctx context.Context, productID, locationID string) (*entity.StockEntry, error) {
	query := `SELECT ` + stockColumns + ` FROM stock WHERE product_id::text = $1 AND location_id::text = $2`
	s, err := scanStock(r.q.QueryRow(ctx, query, productID, locationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockEntry{ProductID: productID, LocationID: locationID, Quantity: decimal.Zero, Reserved: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return s, nil
}

// ListByProducts entradas de los productos indicados en todas las ubicaciones.
func (r *StockRepo) ListByProducts(ctx context.Context, productIDs []string) ([]*entity.StockEntry, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + stockColumns + ` FROM stock WHERE product_id::text = ANY($1) ORDER BY product_id, location_id`
	return r.list(ctx, query, productIDs)
}

// ListByLocation entradas de una ubicación.
func (r *StockRepo) ListByLocation(ctx context.Context, locationID string) ([]*entity.StockEntry, error) {
	query := `SELECT ` + stockColumns + ` FROM stock WHERE location_id::text = $1 ORDER BY product_id`
	return r.list(ctx, query, locationID)
}

func (r *StockRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockEntry, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockEntry
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// ListLowStock entradas por debajo del nivel de reorden, mayor déficit primero.
func (r *StockRepo) ListLowStock(ctx context.Context, locationID string, limit int) ([]entity.LowStockItem, error) {
	const query = `
		SELECT s.product_id::text, p.name, p.sku, p.unit_measure, s.location_id::text, l.name,
		       s.quantity, p.reorder_level, p.reorder_level - s.quantity AS deficit
		FROM stock s
		JOIN products  p ON p.id = s.product_id
		JOIN locations l ON l.id = s.location_id
		WHERE p.reorder_level > 0
		  AND s.quantity < p.reorder_level
		  AND ($1::text = '' OR s.location_id::text = $1::text)
		ORDER BY deficit DESC, p.name, l.name
		LIMIT $2`
	rows, err := r.q.Query(ctx, query, locationID, limitArg(limit))
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	defer rows.Close()
	var list []entity.LowStockItem
	for rows.Next() {
		var it entity.LowStockItem
		if err := rows.Scan(&it.ProductID, &it.ProductName, &it.SKU, &it.UnitMeasure, &it.LocationID, &it.LocationName,
			&it.Quantity, &it.ReorderLevel, &it.Deficit); err != nil {
			return nil, fmt.Errorf("scan low stock: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

// TotalValue Σ cantidad × costo, opcionalmente filtrado por ubicación.
func (r *StockRepo) TotalValue(ctx context.Context, locationID string) (decimal.Decimal, error) {
	const query = `
		SELECT COALESCE(SUM(s.quantity * p.cost_price), 0)
		FROM stock s
		JOIN products p ON p.id = s.product_id
		WHERE ($1::text = '' OR s.location_id::text = $1::text)`
	var total decimal.Decimal
	if err := r.q.QueryRow(ctx, query, locationID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("stock value: %w", err)
	}
	return total, nil
}

// ApplyDeltas aplica los deltas en orden de clave (producto, ubicación) para evitar interbloqueos.
// En modo strict un descuento solo se aplica si la fila no queda negativa (UPDATE condicional),
// y si el delta es KeepReserved tampoco puede bajar de lo reservado;
// los faltantes se acumulan y se devuelven juntos, y el rollback del caller descarta lo aplicado.
func (r *StockRepo) ApplyDeltas(ctx context.Context, deltas []entity.LedgerDelta, strict bool) ([]*entity.StockEntry, error) {
	sorted := append([]entity.LedgerDelta(nil), deltas...)
	inventory.SortDeltas(sorted)

	out := make([]*entity.StockEntry, 0, len(sorted))
	var shortages []entity.Shortage
	for _, d := range sorted {
		var (
			e   *entity.StockEntry
			err error
		)
		switch {
		case !strict:
			e, err = r.upsertClamped(ctx, d)
		case d.Delta.IsNegative():
			e, err = r.decrement(ctx, d)
			if errors.Is(err, pgx.ErrNoRows) {
				current, gerr := r.Get(ctx, d.ProductID, d.LocationID)
				if gerr != nil {
					return nil, gerr
				}
				shortages = append(shortages, entity.Shortage{ProductID: d.ProductID, Needed: d.Delta.Neg(), Available: current.Available()})
				continue
			}
		default:
			e, err = r.increment(ctx, d)
		}
		if err != nil {
			return nil, fmt.Errorf("apply delta %s@%s: %w", d.ProductID, d.LocationID, err)
		}
		out = append(out, e)
	}
	if len(shortages) > 0 {
		return nil, domain.InsufficientStock(shortages)
	}
	return out, nil
}

func (r *StockRepo) decrement(ctx context.Context, d entity.LedgerDelta) (*entity.StockEntry, error) {
	query := `
		UPDATE stock SET quantity = quantity + $3, updated_at = now()
		WHERE product_id::text = $1 AND location_id::text = $2
			AND quantity - CASE WHEN $4::boolean THEN reserved ELSE 0 END + $3 >= 0
		RETURNING ` + stockColumns
	return scanStock(r.q.QueryRow(ctx, query, d.ProductID, d.LocationID, d.Delta, d.KeepReserved))
}

func (r *StockRepo) increment(ctx context.Context, d entity.LedgerDelta) (*entity.StockEntry, error) {
	query := `
		INSERT INTO stock (product_id, location_id, quantity, reserved, updated_at)
		VALUES ($1, $2, $3, 0, now())
		ON CONFLICT (product_id, location_id)
		DO UPDATE SET quantity = stock.quantity + EXCLUDED.quantity, updated_at = now()
		RETURNING ` + stockColumns
	return scanStock(r.q.QueryRow(ctx, query, d.ProductID, d.LocationID, d.Delta))
}

func (r *StockRepo) upsertClamped(ctx context.Context, d entity.LedgerDelta) (*entity.StockEntry, error) {
	query := `
		INSERT INTO stock (product_id, location_id, quantity, reserved, updated_at)
		VALUES ($1, $2, GREATEST($3::numeric, 0), 0, now())
		ON CONFLICT (product_id, location_id)
		DO UPDATE SET quantity = GREATEST(stock.quantity + $3::numeric, 0), updated_at = now()
		RETURNING ` + stockColumns
	return scanStock(r.q.QueryRow(ctx, query, d.ProductID, d.LocationID, d.Delta))
}
