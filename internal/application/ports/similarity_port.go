package ports

import "context"

// SimilarityKind colección sobre la que se busca.
type SimilarityKind string

const (
	SimilarityProducts  SimilarityKind = "product"
	SimilarityLocations SimilarityKind = "location"
)

// SimilarityMatch candidato con puntaje en [0, 1].
type SimilarityMatch struct {
	ID         string
	Similarity float64
}

// SimilaritySearcher colaborador externo de búsqueda por similitud, ordenado por puntaje descendente.
type SimilaritySearcher interface {
	Search(ctx context.Context, kind SimilarityKind, text string, k int) ([]SimilarityMatch, error)
}
