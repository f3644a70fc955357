package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jhoicas/stock-oracle-api/internal/domain"
	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
	"github.com/jhoicas/stock-oracle-api/internal/domain/repository"
)

var _ repository.MoveRepository = (*MoveRepo)(nil)

const moveColumns = `id::text, reference, type, status, origin, approved, from_location_id::text, to_location_id::text,
	counterparty, reason, notes, shortages, created_by, created_at, updated_at, completed_at`

// MoveRepo operaciones de inventario y sus líneas sobre PostgreSQL (usable con pool o tx).
type MoveRepo struct {
	q Querier
}

// NewMoveRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMoveRepository(q Querier) *MoveRepo {
	return &MoveRepo{q: q}
}

// Create inserta cabecera y líneas. La referencia es única.
func (r *MoveRepo) Create(ctx context.Context, m *entity.Move) error {
	shortages, err := json.Marshal(m.Shortages)
	if err != nil {
		return fmt.Errorf("marshal shortages: %w", err)
	}
	query := `
		INSERT INTO moves (id, reference, type, status, origin, approved, from_location_id, to_location_id,
			counterparty, reason, notes, shortages, created_by, created_at, updated_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err = r.q.Exec(ctx, query,
		m.ID, m.Reference, string(m.Type), string(m.Status), string(m.Origin), m.Approved,
		nullable(m.FromLocationID), nullable(m.ToLocationID), m.Counterparty, m.Reason, m.Notes,
		shortages, m.CreatedBy, m.CreatedAt, m.UpdatedAt, m.CompletedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: referencia duplicada %s", domain.ErrInvalidInput, m.Reference)
		}
		return fmt.Errorf("insert move: %w", err)
	}
	for _, l := range m.Lines {
		_, err := r.q.Exec(ctx, `
			INSERT INTO move_lines (id, move_id, product_id, requested_quantity, done_quantity, position)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			l.ID, m.ID, l.ProductID, l.RequestedQuantity, l.DoneQuantity, l.Position)
		if err != nil {
			return fmt.Errorf("insert move line: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la operación con sus líneas.
func (r *MoveRepo) GetByID(ctx context.Context, id string) (*entity.Move, error) {
	return r.get(ctx, `id::text = $1`, id, false)
}

// GetByReference obtiene la operación por referencia.
func (r *MoveRepo) GetByReference(ctx context.Context, reference string) (*entity.Move, error) {
	return r.get(ctx, `reference = $1`, reference, false)
}

// GetForUpdate bloquea la fila de la operación hasta el fin de la tx.
func (r *MoveRepo) GetForUpdate(ctx context.Context, id string) (*entity.Move, error) {
	return r.get(ctx, `id::text = $1`, id, true)
}

func (r *MoveRepo) get(ctx context.Context, where string, arg any, lock bool) (*entity.Move, error) {
	query := `SELECT ` + moveColumns + ` FROM moves WHERE ` + where
	if lock {
		query += ` FOR UPDATE`
	}
	m, err := scanMove(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, notFound(err)
	}
	lines, err := r.lines(ctx, []string{m.ID})
	if err != nil {
		return nil, err
	}
	m.Lines = lines[m.ID]
	return m, nil
}

// Update persiste estado, aprobación, faltantes, cierre y cantidades realizadas.
func (r *MoveRepo) Update(ctx context.Context, m *entity.Move) error {
	shortages, err := json.Marshal(m.Shortages)
	if err != nil {
		return fmt.Errorf("marshal shortages: %w", err)
	}
	tag, err := r.q.Exec(ctx, `
		UPDATE moves SET status = $2, approved = $3, shortages = $4, updated_at = $5, completed_at = $6
		WHERE id::text = $1`,
		m.ID, string(m.Status), m.Approved, shortages, m.UpdatedAt, m.CompletedAt)
	if err != nil {
		return fmt.Errorf("update move: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	for _, l := range m.Lines {
		if _, err := r.q.Exec(ctx, `UPDATE move_lines SET done_quantity = $2 WHERE id::text = $1`, l.ID, l.DoneQuantity); err != nil {
			return fmt.Errorf("update move line: %w", err)
		}
	}
	return nil
}

// List operaciones según el filtro, más recientes primero.
func (r *MoveRepo) List(ctx context.Context, f entity.MoveFilter) ([]*entity.Move, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if len(f.Types) > 0 {
		types := make([]string, len(f.Types))
		for i, t := range f.Types {
			types[i] = string(t)
		}
		conds = append(conds, "type = ANY("+arg(types)+")")
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		conds = append(conds, "status = ANY("+arg(statuses)+")")
	}
	if f.LocationID != "" {
		p := arg(f.LocationID)
		conds = append(conds, "(from_location_id::text = "+p+" OR to_location_id::text = "+p+")")
	}
	if f.Since != nil {
		conds = append(conds, "created_at >= "+arg(*f.Since))
	}
	if f.ProductID != "" {
		conds = append(conds, "EXISTS (SELECT 1 FROM move_lines ml WHERE ml.move_id = moves.id AND ml.product_id::text = "+arg(f.ProductID)+")")
	}

	query := `SELECT ` + moveColumns + ` FROM moves`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY updated_at DESC, reference DESC LIMIT ` + arg(limitArg(f.Limit)) + ` OFFSET ` + arg(f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list moves: %w", err)
	}
	defer rows.Close()
	var (
		list []*entity.Move
		ids  []string
	)
	for rows.Next() {
		m, err := scanMove(rows)
		if err != nil {
			return nil, fmt.Errorf("scan move: %w", err)
		}
		list = append(list, m)
		ids = append(ids, m.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	lines, err := r.lines(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, m := range list {
		m.Lines = lines[m.ID]
	}
	return list, nil
}

// CountOpen cuenta las operaciones en DRAFT, READY o WAITING.
func (r *MoveRepo) CountOpen(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM moves WHERE status IN ('DRAFT', 'READY', 'WAITING')`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count open moves: %w", err)
	}
	return n, nil
}

func (r *MoveRepo) lines(ctx context.Context, moveIDs []string) (map[string][]entity.MoveLine, error) {
	out := make(map[string][]entity.MoveLine, len(moveIDs))
	if len(moveIDs) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT id::text, move_id::text, product_id::text, requested_quantity, done_quantity, position
		FROM move_lines WHERE move_id::text = ANY($1) ORDER BY move_id, position`, moveIDs)
	if err != nil {
		return nil, fmt.Errorf("list move lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.MoveLine
		if err := rows.Scan(&l.ID, &l.MoveID, &l.ProductID, &l.RequestedQuantity, &l.DoneQuantity, &l.Position); err != nil {
			return nil, fmt.Errorf("scan move line: %w", err)
		}
		out[l.MoveID] = append(out[l.MoveID], l)
	}
	return out, rows.Err()
}

func scanMove(row scanner) (*entity.Move, error) {
	var (
		m                   entity.Move
		typ, status, origin string
		from, to            *string
		shortages           []byte
	)
	err := row.Scan(&m.ID, &m.Reference, &typ, &status, &origin, &m.Approved, &from, &to,
		&m.Counterparty, &m.Reason, &m.Notes, &shortages, &m.CreatedBy, &m.CreatedAt, &m.UpdatedAt, &m.CompletedAt)
	if err != nil {
		return nil, err
	}
	m.Type = entity.MoveType(typ)
	m.Status = entity.MoveStatus(status)
	m.Origin = entity.MoveOrigin(origin)
	m.FromLocationID = derefString(from)
	m.ToLocationID = derefString(to)
	if len(shortages) > 0 {
		if err := json.Unmarshal(shortages, &m.Shortages); err != nil {
			return nil, fmt.Errorf("unmarshal shortages: %w", err)
		}
	}
	return &m, nil
}
