// Package memory implementa los puertos de persistencia en memoria para desarrollo y tests.
// La semántica transaccional imita la de PostgreSQL: las escrituras de una tx se confirman
// juntas o se descartan. A diferencia de PostgreSQL, todas las transacciones de escritura
// comparten un único candado (Store.txMu), aunque toquen claves distintas: no sirve para
// tráfico concurrente real con STORAGE_DRIVER=memory.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
	"github.com/jhoicas/stock-oracle-api/internal/infrastructure/seed"
)

// Store estado compartido de todos los repositorios en memoria.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex // serializa las transacciones de escritura

	products      map[string]entity.Product
	locations     map[string]entity.Location
	stock         map[entity.StockKey]entity.StockEntry
	moves         map[string]*entity.Move
	refs          map[string]string
	conversations map[string]*entity.Conversation

	now func() time.Time
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		products:      map[string]entity.Product{},
		locations:     map[string]entity.Location{},
		stock:         map[entity.StockKey]entity.StockEntry{},
		moves:         map[string]*entity.Move{},
		refs:          map[string]string{},
		conversations: map[string]*entity.Conversation{},
		now:           time.Now,
	}
}

// AddProduct registra un producto del catálogo.
func (s *Store) AddProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
		p.UpdatedAt = p.CreatedAt
	}
	s.products[p.ID] = p
}

// AddLocation registra una ubicación.
func (s *Store) AddLocation(l entity.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = s.now()
		l.UpdatedAt = l.CreatedAt
	}
	s.locations[l.ID] = l
}

// SetStock fija la cantidad inicial (semilla) de una entrada del ledger.
func (s *Store) SetStock(productID, locationID string, quantity, reserved decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := entity.StockKey{ProductID: productID, LocationID: locationID}
	s.stock[k] = entity.StockEntry{
		ProductID:  productID,
		LocationID: locationID,
		Quantity:   quantity,
		Reserved:   reserved,
		UpdatedAt:  s.now(),
	}
}

func (s *Store) committedEntry(k entity.StockKey) (entity.StockEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.stock[k]
	return e, ok
}

func (s *Store) committedEntries() []entity.StockEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.StockEntry, 0, len(s.stock))
	for _, e := range s.stock {
		out = append(out, e)
	}
	sortEntries(out)
	return out
}

func (s *Store) productMap() map[string]entity.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]entity.Product, len(s.products))
	for k, v := range s.products {
		out[k] = v
	}
	return out
}

func (s *Store) locationMap() map[string]entity.Location {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]entity.Location, len(s.locations))
	for k, v := range s.locations {
		out[k] = v
	}
	return out
}

func sortEntries(entries []entity.StockEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].ProductID != entries[j].ProductID {
			return entries[i].ProductID < entries[j].ProductID
		}
		return entries[i].LocationID < entries[j].LocationID
	})
}

// NewSeeded crea un store con el catálogo de demostración.
func NewSeeded() *Store {
	cat, err := seed.Demo()
	if err != nil {
		panic("memory: catálogo de demostración: " + err.Error())
	}
	s := NewStore()
	for _, l := range cat.Locations {
		s.AddLocation(l)
	}
	for _, p := range cat.Products {
		s.AddProduct(p)
	}
	for _, e := range cat.Stock {
		s.SetStock(e.ProductID, e.LocationID, e.Quantity, e.Reserved)
	}
	return s
}
