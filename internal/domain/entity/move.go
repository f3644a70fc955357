package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MoveType tipo de operación de inventario.
type MoveType string

const (
	MoveReceipt    MoveType = "RECEIPT"    // entrada desde proveedor
	MoveDelivery   MoveType = "DELIVERY"   // salida a cliente
	MoveTransfer   MoveType = "TRANSFER"   // traslado entre ubicaciones
	MoveAdjustment MoveType = "ADJUSTMENT" // corrección manual (delta firmado)
)

// Valid indica si el tipo es conocido.
func (t MoveType) Valid() bool {
	switch t {
	case MoveReceipt, MoveDelivery, MoveTransfer, MoveAdjustment:
		return true
	}
	return false
}

// RequiresAvailabilityCheck es verdadero para los tipos que consumen stock de un origen.
func (t MoveType) RequiresAvailabilityCheck() bool {
	return t == MoveDelivery || t == MoveTransfer
}

// ReferencePrefix prefijo del número de referencia legible.
func (t MoveType) ReferencePrefix() string {
	switch t {
	case MoveReceipt:
		return "REC"
	case MoveDelivery:
		return "DEL"
	case MoveTransfer:
		return "TRF"
	case MoveAdjustment:
		return "ADJ"
	}
	return "MOV"
}

// MoveStatus estado del ciclo de vida de una operación.
type MoveStatus string

const (
	StatusDraft     MoveStatus = "DRAFT"
	StatusReady     MoveStatus = "READY"
	StatusWaiting   MoveStatus = "WAITING"
	StatusDone      MoveStatus = "DONE"
	StatusCancelled MoveStatus = "CANCELLED"
)

// Terminal indica DONE o CANCELLED.
func (s MoveStatus) Terminal() bool {
	return s == StatusDone || s == StatusCancelled
}

// OpenStatuses estados no terminales.
var OpenStatuses = []MoveStatus{StatusDraft, StatusReady, StatusWaiting}

// MoveOrigin quién creó la operación.
type MoveOrigin string

const (
	OriginUI    MoveOrigin = "UI"
	OriginAgent MoveOrigin = "AGENT"
)

// Shortage faltante de un producto en la ubicación de origen.
type Shortage struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName,omitempty"`
	Needed      decimal.Decimal `json:"needed"`
	Available   decimal.Decimal `json:"available"`
}

// MoveLine línea de una operación. Para ADJUSTMENT RequestedQuantity es el delta firmado.
type MoveLine struct {
	ID                string
	MoveID            string
	ProductID         string
	RequestedQuantity decimal.Decimal
	DoneQuantity      decimal.Decimal // 0 hasta DONE
	Position          int
}

// Move operación de inventario (recepción, entrega, traslado o ajuste).
// Solo la transición a DONE modifica el ledger, y lo hace una sola vez.
type Move struct {
	ID             string
	Reference      string
	Type           MoveType
	Status         MoveStatus
	Origin         MoveOrigin
	Approved       bool // aprobación explícita del usuario sobre un borrador del agente
	FromLocationID string
	ToLocationID   string
	Counterparty   string // proveedor o cliente
	Reason         string
	Notes          string
	Shortages      []Shortage // solo en WAITING
	Lines          []MoveLine
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	CompletedAt    *time.Time
}

// MarkDone fija las cantidades realizadas y pasa la operación a DONE.
func (m *Move) MarkDone(now time.Time) {
	for i := range m.Lines {
		m.Lines[i].DoneQuantity = m.Lines[i].RequestedQuantity
	}
	m.Status = StatusDone
	m.Shortages = nil
	m.CompletedAt = &now
	m.UpdatedAt = now
}

// Clone copia profunda (líneas y faltantes).
func (m *Move) Clone() *Move {
	if m == nil {
		return nil
	}
	c := *m
	c.Lines = append([]MoveLine(nil), m.Lines...)
	c.Shortages = append([]Shortage(nil), m.Shortages...)
	if m.CompletedAt != nil {
		t := *m.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

// MoveFilter criterios de búsqueda de operaciones.
type MoveFilter struct {
	Types      []MoveType
	Statuses   []MoveStatus
	ProductID  string
	LocationID string // origen o destino
	Since      *time.Time
	Limit      int
	Offset     int
}
