// Package retrieval construye el contexto de solo lectura que acompaña cada consulta al agente.
package retrieval

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stock-oracle-api/internal/application/ports"
	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
	"github.com/jhoicas/stock-oracle-api/internal/domain/repository"
	"github.com/jhoicas/stock-oracle-api/pkg/logger"
)

// Options tamaños de cada parte del contexto.
type Options struct {
	ProductCandidates  int
	LocationCandidates int
	RecentMoves        int
	LowStock           int
	Timeout            time.Duration
}

// DefaultOptions valores por defecto: 5 productos, 3 ubicaciones, 10 operaciones, 10 alertas.
func DefaultOptions() Options {
	return Options{ProductCandidates: 5, LocationCandidates: 3, RecentMoves: 10, LowStock: 10, Timeout: 5 * time.Second}
}

// Builder arma el Snapshot con cuatro consultas concurrentes; ninguna falla aborta la construcción.
type Builder struct {
	similarity ports.SimilaritySearcher
	products   repository.ProductRepository
	locations  repository.LocationRepository
	stock      repository.StockReader
	moves      repository.MoveRepository
	opts       Options
	log        *logger.Logger
	now        func() time.Time
}

// NewBuilder construye el builder. similarity debería venir envuelto en GuardedSearcher.
func NewBuilder(
	similarity ports.SimilaritySearcher,
	products repository.ProductRepository,
	locations repository.LocationRepository,
	stock repository.StockReader,
	moves repository.MoveRepository,
	opts Options,
	log *logger.Logger,
) *Builder {
	if log == nil {
		log = logger.Nop()
	}
	return &Builder{
		similarity: similarity,
		products:   products,
		locations:  locations,
		stock:      stock,
		moves:      moves,
		opts:       opts,
		log:        log,
		now:        time.Now,
	}
}

// Build obtiene en paralelo: (a) candidatos de producto y su stock, (a') ubicaciones candidatas,
// (c) operaciones completadas recientes y (d) KPIs con las alertas de stock bajo.
func (b *Builder) Build(ctx context.Context, query string) Snapshot {
	if b.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.opts.Timeout)
		defer cancel()
	}

	var (
		products  []ProductCandidate
		locations []LocationCandidate
		recent    []MoveSummary
		lowStock  []entity.LowStockItem
		kpis      KPIs
		degraded  [4]string
	)

	var g errgroup.Group
	g.Go(func() error {
		var err error
		if products, err = b.productCandidates(ctx, query); err != nil {
			degraded[0] = b.degrade("productos", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if locations, err = b.locationCandidates(ctx, query); err != nil {
			degraded[1] = b.degrade("ubicaciones", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if recent, err = b.recentMoves(ctx); err != nil {
			degraded[2] = b.degrade("operaciones recientes", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if kpis, lowStock, err = b.indicators(ctx); err != nil {
			degraded[3] = b.degrade("indicadores", err)
		}
		return nil
	})
	_ = g.Wait()

	snap := Snapshot{
		Query:       query,
		Products:    products,
		Locations:   locations,
		RecentMoves: recent,
		LowStock:    lowStock,
		KPIs:        kpis,
		BuiltAt:     b.now(),
	}
	for _, d := range degraded {
		if d != "" {
			snap.Degraded = append(snap.Degraded, d)
		}
	}
	return snap
}

func (b *Builder) degrade(part string, err error) string {
	b.log.Warn().Err(err).Str("part", part).Msg("contexto parcial")
	return part
}

func (b *Builder) productCandidates(ctx context.Context, query string) ([]ProductCandidate, error) {
	matches, err := b.similarity.Search(ctx, ports.SimilarityProducts, query, b.opts.ProductCandidates)
	if err != nil || len(matches) == 0 {
		return nil, err
	}
	ids := make([]string, len(matches))
	scores := make(map[string]float64, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
		scores[m.ID] = m.Similarity
	}
	prods, err := b.products.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	entries, err := b.stock.ListByProducts(ctx, ids)
	if err != nil {
		return nil, err
	}

	locIDs := []string{}
	seen := map[string]bool{}
	for _, e := range entries {
		if !seen[e.LocationID] {
			seen[e.LocationID] = true
			locIDs = append(locIDs, e.LocationID)
		}
	}
	locs, err := b.locations.ListByIDs(ctx, locIDs)
	if err != nil {
		return nil, err
	}
	locName := make(map[string]string, len(locs))
	for _, l := range locs {
		locName[l.ID] = l.Name
	}

	byProduct := map[string][]StockLine{}
	for _, e := range entries {
		byProduct[e.ProductID] = append(byProduct[e.ProductID], StockLine{
			LocationID:   e.LocationID,
			LocationName: locName[e.LocationID],
			Quantity:     e.Quantity,
			Reserved:     e.Reserved,
			Available:    e.Available(),
		})
	}

	index := make(map[string]*entity.Product, len(prods))
	for _, p := range prods {
		index[p.ID] = p
	}
	out := make([]ProductCandidate, 0, len(prods))
	for _, id := range ids {
		p, ok := index[id]
		if !ok {
			continue
		}
		out = append(out, ProductCandidate{Product: *p, Score: scores[id], Stock: byProduct[id]})
	}
	return out, nil
}

func (b *Builder) locationCandidates(ctx context.Context, query string) ([]LocationCandidate, error) {
	matches, err := b.similarity.Search(ctx, ports.SimilarityLocations, query, b.opts.LocationCandidates)
	if err != nil || len(matches) == 0 {
		return nil, err
	}
	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
	}
	locs, err := b.locations.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	index := make(map[string]*entity.Location, len(locs))
	for _, l := range locs {
		index[l.ID] = l
	}
	out := make([]LocationCandidate, 0, len(locs))
	for _, m := range matches {
		if l, ok := index[m.ID]; ok {
			out = append(out, LocationCandidate{Location: *l, Score: m.Similarity})
		}
	}
	return out, nil
}

func (b *Builder) recentMoves(ctx context.Context) ([]MoveSummary, error) {
	moves, err := b.moves.List(ctx, entity.MoveFilter{Statuses: []entity.MoveStatus{entity.StatusDone}, Limit: b.opts.RecentMoves})
	if err != nil {
		return nil, err
	}
	out := make([]MoveSummary, 0, len(moves))
	for _, m := range moves {
		out = append(out, Summarize(m))
	}
	return out, nil
}

func (b *Builder) indicators(ctx context.Context) (KPIs, []entity.LowStockItem, error) {
	var k KPIs
	total, err := b.stock.TotalValue(ctx, "")
	if err != nil {
		return k, nil, err
	}
	low, err := b.stock.ListLowStock(ctx, "", 0)
	if err != nil {
		return k, nil, err
	}
	open, err := b.moves.CountOpen(ctx)
	if err != nil {
		return k, nil, err
	}
	k = KPIs{TotalValue: total, LowStockCount: len(low), OpenOperations: open}
	if b.opts.LowStock > 0 && len(low) > b.opts.LowStock {
		low = low[:b.opts.LowStock]
	}
	return k, low, nil
}

// Summarize resumen de una operación.
func Summarize(m *entity.Move) MoveSummary {
	return MoveSummary{
		ID:          m.ID,
		Reference:   m.Reference,
		Type:        m.Type,
		Status:      m.Status,
		Lines:       len(m.Lines),
		UpdatedAt:   m.UpdatedAt,
		CompletedAt: m.CompletedAt,
	}
}
