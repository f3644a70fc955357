package memory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-oracle-api/internal/domain"
	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
	"github.com/jhoicas/stock-oracle-api/internal/domain/inventory"
	"github.com/jhoicas/stock-oracle-api/internal/domain/repository"
)

var (
	_ repository.StockReader  = (*StockRepo)(nil)
	_ repository.LedgerWriter = (*txLedger)(nil)
)

// stockView implementa las lecturas del ledger sobre una fuente de entradas (confirmadas o de una tx).
type stockView struct {
	s       *Store
	entry   func(k entity.StockKey) (entity.StockEntry, bool)
	entries func() []entity.StockEntry
}

func (v stockView) Get(_ context.Context, productID, locationID string) (*entity.StockEntry, error) {
	k := entity.StockKey{ProductID: productID, LocationID: locationID}
	e, ok := v.entry(k)
	if !ok {
		e = entity.StockEntry{ProductID: productID, LocationID: locationID, Quantity: decimal.Zero, Reserved: decimal.Zero}
	}
	return &e, nil
}

func (v stockView) ListByProducts(_ context.Context, productIDs []string) ([]*entity.StockEntry, error) {
	want := make(map[string]bool, len(productIDs))
	for _, id := range productIDs {
		want[id] = true
	}
	var out []*entity.StockEntry
	for _, e := range v.entries() {
		if want[e.ProductID] {
			e := e
			out = append(out, &e)
		}
	}
	return out, nil
}

func (v stockView) ListByLocation(_ context.Context, locationID string) ([]*entity.StockEntry, error) {
	var out []*entity.StockEntry
	for _, e := range v.entries() {
		if e.LocationID == locationID {
			e := e
			out = append(out, &e)
		}
	}
	return out, nil
}

func (v stockView) ListLowStock(_ context.Context, locationID string, limit int) ([]entity.LowStockItem, error) {
	items := inventory.LowStock(v.filtered(locationID), v.s.productMap(), v.s.locationMap())
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (v stockView) TotalValue(_ context.Context, locationID string) (decimal.Decimal, error) {
	return inventory.StockValue(v.filtered(locationID), v.s.productMap()), nil
}

func (v stockView) filtered(locationID string) []entity.StockEntry {
	all := v.entries()
	if locationID == "" {
		return all
	}
	out := all[:0:0]
	for _, e := range all {
		if e.LocationID == locationID {
			out = append(out, e)
		}
	}
	return out
}

// StockRepo lecturas del ledger confirmado.
type StockRepo struct{ stockView }

// NewStockRepository construye el lector del ledger sobre el store.
func NewStockRepository(s *Store) *StockRepo {
	return &StockRepo{stockView{s: s, entry: s.committedEntry, entries: s.committedEntries}}
}

// txLedger ledger dentro de una transacción: lee lo confirmado más lo escrito en la tx.
type txLedger struct {
	stockView
	tx *txState
}

func newTxLedger(tx *txState) *txLedger {
	return &txLedger{stockView: stockView{s: tx.s, entry: tx.entry, entries: tx.entries}, tx: tx}
}

// ApplyDeltas valida y deja los deltas en la tx; se confirman todos juntos en el commit.
func (l *txLedger) ApplyDeltas(_ context.Context, deltas []entity.LedgerDelta, strict bool) ([]*entity.StockEntry, error) {
	sorted := append([]entity.LedgerDelta(nil), deltas...)
	inventory.SortDeltas(sorted)

	staged := make(map[entity.StockKey]entity.StockEntry, len(sorted))
	var shortages []entity.Shortage
	now := l.s.now()
	for _, d := range sorted {
		k := d.Key()
		e, ok := staged[k]
		if !ok {
			e, _ = l.tx.entry(k)
			e.ProductID, e.LocationID = d.ProductID, d.LocationID
		}
		next := e.Quantity.Add(d.Delta)
		floor := next
		if d.KeepReserved {
			floor = e.Available().Add(d.Delta)
		}
		if floor.IsNegative() {
			if strict {
				shortages = append(shortages, entity.Shortage{ProductID: d.ProductID, Needed: d.Delta.Neg(), Available: e.Available()})
				continue
			}
			if next.IsNegative() {
				next = decimal.Zero
			}
		}
		e.Quantity = next
		e.UpdatedAt = now
		staged[k] = e
	}
	if len(shortages) > 0 {
		return nil, domain.InsufficientStock(shortages)
	}

	out := make([]*entity.StockEntry, 0, len(sorted))
	for _, d := range sorted {
		e := staged[d.Key()]
		l.tx.stock[d.Key()] = e
		out = append(out, &e)
	}
	return out, nil
}
