package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/stock-oracle-api/internal/domain"
	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
	"github.com/jhoicas/stock-oracle-api/internal/domain/repository"
)

var (
	_ repository.MoveRepository = (*MoveRepo)(nil)
	_ repository.MoveRepository = (*txMoveRepo)(nil)
)

// MoveRepo lecturas de operaciones confirmadas. Las escrituras fuera de tx se confirman de inmediato.
type MoveRepo struct{ s *Store }

// NewMoveRepository construye el repositorio sobre el store.
func NewMoveRepository(s *Store) *MoveRepo { return &MoveRepo{s: s} }

func (r *MoveRepo) Create(ctx context.Context, m *entity.Move) error {
	return NewTxRunner(r.s).Run(ctx, func(moves repository.MoveRepository, _ repository.LedgerWriter) error {
		return moves.Create(ctx, m)
	})
}

func (r *MoveRepo) GetByID(_ context.Context, id string) (*entity.Move, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.moves[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return m.Clone(), nil
}

func (r *MoveRepo) GetByReference(ctx context.Context, reference string) (*entity.Move, error) {
	r.s.mu.RLock()
	id, ok := r.s.refs[reference]
	r.s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *MoveRepo) GetForUpdate(ctx context.Context, id string) (*entity.Move, error) {
	return r.GetByID(ctx, id)
}

func (r *MoveRepo) Update(ctx context.Context, m *entity.Move) error {
	return NewTxRunner(r.s).Run(ctx, func(moves repository.MoveRepository, _ repository.LedgerWriter) error {
		return moves.Update(ctx, m)
	})
}

func (r *MoveRepo) List(_ context.Context, f entity.MoveFilter) ([]*entity.Move, error) {
	r.s.mu.RLock()
	var out []*entity.Move
	for _, m := range r.s.moves {
		if matches(m, f) {
			out = append(out, m.Clone())
		}
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].Reference > out[j].Reference
	})
	return page(out, f.Limit, f.Offset), nil
}

func (r *MoveRepo) CountOpen(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, m := range r.s.moves {
		if !m.Status.Terminal() {
			n++
		}
	}
	return n, nil
}

func matches(m *entity.Move, f entity.MoveFilter) bool {
	if len(f.Types) > 0 && !contains(f.Types, m.Type) {
		return false
	}
	if len(f.Statuses) > 0 && !contains(f.Statuses, m.Status) {
		return false
	}
	if f.LocationID != "" && m.FromLocationID != f.LocationID && m.ToLocationID != f.LocationID {
		return false
	}
	if f.Since != nil && m.CreatedAt.Before(*f.Since) {
		return false
	}
	if f.ProductID != "" {
		found := false
		for _, l := range m.Lines {
			if l.ProductID == f.ProductID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func contains[T comparable](items []T, v T) bool {
	for _, it := range items {
		if it == v {
			return true
		}
	}
	return false
}

// txMoveRepo operaciones dentro de una tx: lee lo escrito en la tx antes que lo confirmado.
type txMoveRepo struct{ tx *txState }

func (r *txMoveRepo) committed() *MoveRepo { return &MoveRepo{s: r.tx.s} }

func (r *txMoveRepo) Create(_ context.Context, m *entity.Move) error {
	r.tx.s.mu.RLock()
	_, idTaken := r.tx.s.moves[m.ID]
	_, refTaken := r.tx.s.refs[m.Reference]
	r.tx.s.mu.RUnlock()
	if idTaken || refTaken {
		return fmt.Errorf("create move: %w", domain.ErrInvalidInput)
	}
	r.tx.moves[m.ID] = m.Clone()
	return nil
}

func (r *txMoveRepo) GetByID(ctx context.Context, id string) (*entity.Move, error) {
	if m, ok := r.tx.moves[id]; ok {
		return m.Clone(), nil
	}
	return r.committed().GetByID(ctx, id)
}

func (r *txMoveRepo) GetByReference(ctx context.Context, reference string) (*entity.Move, error) {
	for _, m := range r.tx.moves {
		if m.Reference == reference {
			return m.Clone(), nil
		}
	}
	return r.committed().GetByReference(ctx, reference)
}

// GetForUpdate: las tx en memoria ya están serializadas por Store.txMu.
func (r *txMoveRepo) GetForUpdate(ctx context.Context, id string) (*entity.Move, error) {
	return r.GetByID(ctx, id)
}

func (r *txMoveRepo) Update(ctx context.Context, m *entity.Move) error {
	if _, err := r.GetByID(ctx, m.ID); err != nil {
		return err
	}
	r.tx.moves[m.ID] = m.Clone()
	return nil
}

func (r *txMoveRepo) List(ctx context.Context, f entity.MoveFilter) ([]*entity.Move, error) {
	return r.committed().List(ctx, f)
}

func (r *txMoveRepo) CountOpen(ctx context.Context) (int, error) {
	return r.committed().CountOpen(ctx)
}
