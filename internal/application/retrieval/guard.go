package retrieval

import (
	"context"
	"time"

	"github.com/jhoicas/stock-oracle-api/internal/application/ports"
	"github.com/jhoicas/stock-oracle-api/pkg/logger"
)

var _ ports.SimilaritySearcher = (*GuardedSearcher)(nil)

// GuardedSearcher envuelve al colaborador de similitud con timeout.
// Si falla o no responde a tiempo devuelve una lista vacía y deja el error en el log.
type GuardedSearcher struct {
	inner   ports.SimilaritySearcher
	timeout time.Duration
	log     *logger.Logger
}

// NewGuardedSearcher construye el envoltorio. timeout <= 0 = sin límite propio.
func NewGuardedSearcher(inner ports.SimilaritySearcher, timeout time.Duration, log *logger.Logger) *GuardedSearcher {
	if log == nil {
		log = logger.Nop()
	}
	return &GuardedSearcher{inner: inner, timeout: timeout, log: log}
}

// Search nunca devuelve error.
func (g *GuardedSearcher) Search(ctx context.Context, kind ports.SimilarityKind, text string, k int) ([]ports.SimilarityMatch, error) {
	if g.inner == nil {
		return nil, nil
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	matches, err := g.inner.Search(ctx, kind, text, k)
	if err != nil {
		g.log.Warn().Err(err).Str("kind", string(kind)).Msg("búsqueda por similitud no disponible")
		return nil, nil
	}
	return matches, nil
}
