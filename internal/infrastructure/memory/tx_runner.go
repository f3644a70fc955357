package memory

import (
	"context"

	"github.com/jhoicas/stock-oracle-api/internal/application/inventory"
	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
	"github.com/jhoicas/stock-oracle-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks en una transacción en memoria.
// Todas las transacciones se serializan con un candado global; lo escrito se confirma
// de una vez al terminar sin error.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner sobre el store.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// txState escrituras pendientes de una transacción.
type txState struct {
	s     *Store
	moves map[string]*entity.Move
	stock map[entity.StockKey]entity.StockEntry
}

// Run ejecuta fn con repositorios atados a la tx y confirma o descarta.
func (r *TxRunner) Run(ctx context.Context, fn func(
	moves repository.MoveRepository,
	ledger repository.LedgerWriter,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()

	tx := &txState{
		s:     r.s,
		moves: map[string]*entity.Move{},
		stock: map[entity.StockKey]entity.StockEntry{},
	}
	if err := fn(&txMoveRepo{tx: tx}, newTxLedger(tx)); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (t *txState) entry(k entity.StockKey) (entity.StockEntry, bool) {
	if e, ok := t.stock[k]; ok {
		return e, true
	}
	return t.s.committedEntry(k)
}

func (t *txState) entries() []entity.StockEntry {
	all := t.s.committedEntries()
	seen := make(map[entity.StockKey]bool, len(all))
	for i, e := range all {
		if staged, ok := t.stock[e.Key()]; ok {
			all[i] = staged
		}
		seen[e.Key()] = true
	}
	for k, e := range t.stock {
		if !seen[k] {
			all = append(all, e)
		}
	}
	sortEntries(all)
	return all
}

func (t *txState) commit() {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for k, e := range t.stock {
		t.s.stock[k] = e
	}
	for id, m := range t.moves {
		t.s.moves[id] = m.Clone()
		t.s.refs[m.Reference] = id
	}
}
