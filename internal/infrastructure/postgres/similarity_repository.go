package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/stock-oracle-api/internal/application/ports"
)

var _ ports.SimilaritySearcher = (*SimilaritySearcher)(nil)

// SimilaritySearcher búsqueda difusa con pg_trgm: GREATEST(similarity, word_similarity) sobre nombre (y SKU).
type SimilaritySearcher struct {
	q Querier
}

// NewSimilaritySearcher construye el buscador. Requiere la extensión pg_trgm (ver db/schema.sql).
func NewSimilaritySearcher(q Querier) *SimilaritySearcher {
	return &SimilaritySearcher{q: q}
}

// Search devuelve los k candidatos con puntaje > 0, mayor primero.
func (s *SimilaritySearcher) Search(ctx context.Context, kind ports.SimilarityKind, text string, k int) ([]ports.SimilarityMatch, error) {
	text = strings.TrimSpace(text)
	if text == "" || k <= 0 {
		return nil, nil
	}
	var query string
	switch kind {
	case ports.SimilarityProducts:
		query = `
			SELECT id::text, score FROM (
				SELECT id, GREATEST(similarity(name, $1), word_similarity($1, name), similarity(sku, $1)) AS score
				FROM products
			) c WHERE score > 0 ORDER BY score DESC, id LIMIT $2`
	case ports.SimilarityLocations:
		query = `
			SELECT id::text, score FROM (
				SELECT id, GREATEST(similarity(name, $1), word_similarity($1, name)) AS score
				FROM locations
			) c WHERE score > 0 ORDER BY score DESC, id LIMIT $2`
	default:
		return nil, fmt.Errorf("similarity: colección desconocida %q", kind)
	}

	rows, err := s.q.Query(ctx, query, strings.ToLower(text), k)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	defer rows.Close()
	var out []ports.SimilarityMatch
	for rows.Next() {
		var m ports.SimilarityMatch
		var score float32
		if err := rows.Scan(&m.ID, &score); err != nil {
			return nil, fmt.Errorf("scan similarity: %w", err)
		}
		m.Similarity = float64(score)
		out = append(out, m)
	}
	return out, rows.Err()
}
