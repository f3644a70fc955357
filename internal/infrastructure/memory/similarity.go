package memory

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/jhoicas/stock-oracle-api/internal/application/ports"
)

var _ ports.SimilaritySearcher = (*SimilaritySearcher)(nil)

// SimilaritySearcher búsqueda por trigramas sobre el catálogo en memoria,
// con la misma escala [0,1] que pg_trgm.
type SimilaritySearcher struct{ s *Store }

// NewSimilaritySearcher construye el buscador sobre el store.
func NewSimilaritySearcher(s *Store) *SimilaritySearcher { return &SimilaritySearcher{s: s} }

// Search devuelve los k candidatos con mayor puntaje (> 0).
func (ss *SimilaritySearcher) Search(ctx context.Context, kind ports.SimilarityKind, text string, k int) ([]ports.SimilarityMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query := trigrams(text)
	if len(query) == 0 || k <= 0 {
		return nil, nil
	}

	var out []ports.SimilarityMatch
	score := func(id string, fields ...string) {
		best := 0.0
		for _, f := range fields {
			if s := trigramScore(query, trigrams(f)); s > best {
				best = s
			}
		}
		if best > 0 {
			out = append(out, ports.SimilarityMatch{ID: id, Similarity: best})
		}
	}

	switch kind {
	case ports.SimilarityProducts:
		for _, p := range ss.s.productMap() {
			score(p.ID, p.Name, p.SKU)
		}
	case ports.SimilarityLocations:
		for _, l := range ss.s.locationMap() {
			score(l.ID, l.Name)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

// trigramScore máximo entre similitud de Jaccard y contención en cualquiera de los dos sentidos
// (equivalente a GREATEST(similarity, word_similarity) de pg_trgm).
func trigramScore(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	shared := 0
	for t := range a {
		if _, ok := b[t]; ok {
			shared++
		}
	}
	jaccard := float64(shared) / float64(len(a)+len(b)-shared)
	inA := float64(shared) / float64(len(a))
	inB := float64(shared) / float64(len(b))
	return max(jaccard, inA, inB)
}

// trigrams divide en palabras alfanuméricas y genera los trigramas de cada una con
// el relleno de pg_trgm (dos espacios al inicio, uno al final).
func trigrams(s string) map[string]struct{} {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := map[string]struct{}{}
	for _, w := range words {
		r := []rune("  " + w + " ")
		for i := 0; i+3 <= len(r); i++ {
			out[string(r[i:i+3])] = struct{}{}
		}
	}
	return out
}
