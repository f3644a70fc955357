package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// MoveLineRequest línea de POST /api/moves. Para ADJUSTMENT quantity es el delta firmado.
type MoveLineRequest struct {
	ProductID string          `json:"productId"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// CreateMoveRequest body para POST /api/moves (operaciones creadas desde la interfaz).
type CreateMoveRequest struct {
	Type           string            `json:"type"` // RECEIPT | DELIVERY | TRANSFER | ADJUSTMENT
	FromLocationID string            `json:"fromLocationId,omitempty"`
	ToLocationID   string            `json:"toLocationId,omitempty"`
	Counterparty   string            `json:"counterparty,omitempty"`
	Reason         string            `json:"reason,omitempty"`
	Notes          string            `json:"notes,omitempty"`
	Lines          []MoveLineRequest `json:"lines"`
}

// ListMovesRequest query de GET /api/moves.
type ListMovesRequest struct {
	Limit      int    `query:"limit"`
	Offset     int    `query:"offset"`
	Type       string `query:"type"`
	Status     string `query:"status"`
	ProductID  string `query:"productId"`
	LocationID string `query:"locationId"`
	DaysAgo    int    `query:"daysAgo"`
}

// MoveLineDTO línea de una operación.
type MoveLineDTO struct {
	ProductID         string          `json:"productId"`
	ProductName       string          `json:"productName"`
	RequestedQuantity decimal.Decimal `json:"requestedQuantity"`
	DoneQuantity      decimal.Decimal `json:"doneQuantity"`
}

// MoveDTO operación de inventario con nombres resueltos.
type MoveDTO struct {
	ID           string        `json:"id"`
	Reference    string        `json:"reference"`
	Type         string        `json:"type"`
	Status       string        `json:"status"`
	Origin       string        `json:"origin"`
	FromLocation string        `json:"fromLocation,omitempty"`
	ToLocation   string        `json:"toLocation,omitempty"`
	Counterparty string        `json:"counterparty,omitempty"`
	Reason       string        `json:"reason,omitempty"`
	Lines        []MoveLineDTO `json:"lines"`
	Shortages    []ShortageDTO `json:"shortages,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	CompletedAt  *time.Time    `json:"completedAt,omitempty"`
}

// MoveListResponse listado paginado de operaciones.
type MoveListResponse struct {
	Items []MoveDTO    `json:"items"`
	Page  PageResponse `json:"page"`
}
