// Package inventory contiene las reglas puras del ciclo de vida de operaciones y del ledger.
package inventory

import (
	"github.com/jhoicas/stock-oracle-api/internal/domain"
	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
)

// CanCheckAvailability valida que la operación admita (re)verificar disponibilidad.
func CanCheckAvailability(m *entity.Move) error {
	if m.Status.Terminal() {
		return domain.NewFailure(domain.ErrInvalidTransition, "la operación %s está en estado %s", m.Reference, m.Status)
	}
	return nil
}

// CanComplete valida la transición a DONE.
//
// Legal desde READY, desde DRAFT para RECEIPT/ADJUSTMENT, o desde un DRAFT del agente aprobado.
// WAITING requiere resolver los faltantes primero.
func CanComplete(m *entity.Move) error {
	switch m.Status {
	case entity.StatusReady:
		return nil
	case entity.StatusDraft:
		if !m.Type.RequiresAvailabilityCheck() {
			return nil
		}
		if m.Origin == entity.OriginAgent && m.Approved {
			return nil
		}
		return domain.NewFailure(domain.ErrInvalidTransition,
			"la operación %s requiere verificar disponibilidad antes de completarse", m.Reference)
	case entity.StatusWaiting:
		return &domain.Failure{
			Kind:      domain.ErrUnresolvedShortage,
			Detail:    "la operación " + m.Reference + " está en espera de stock",
			Shortages: m.Shortages,
		}
	default:
		return domain.NewFailure(domain.ErrInvalidTransition, "la operación %s ya está en estado %s", m.Reference, m.Status)
	}
}

// CanCancel valida la transición a CANCELLED.
func CanCancel(m *entity.Move) error {
	if m.Status.Terminal() {
		return domain.NewFailure(domain.ErrInvalidTransition, "la operación %s ya está en estado %s", m.Reference, m.Status)
	}
	return nil
}

// CanApprove valida que la operación sea un borrador del agente pendiente de confirmación.
func CanApprove(m *entity.Move) error {
	if m.Origin != entity.OriginAgent {
		return domain.NewFailure(domain.ErrInvalidTransition, "la operación %s no fue propuesta por el asistente", m.Reference)
	}
	if m.Status.Terminal() {
		return domain.NewFailure(domain.ErrInvalidTransition, "la operación %s ya está en estado %s", m.Reference, m.Status)
	}
	return nil
}

// ValidateEndpoints verifica origen/destino según el tipo de operación.
// ADJUSTMENT usa ToLocationID como ubicación objetivo.
func ValidateEndpoints(t entity.MoveType, from, to string) error {
	switch t {
	case entity.MoveReceipt:
		if to == "" {
			return domain.NewFailure(domain.ErrInvalidInput, "la recepción requiere ubicación destino")
		}
		if from != "" {
			return domain.NewFailure(domain.ErrInvalidInput, "la recepción no tiene ubicación origen")
		}
	case entity.MoveDelivery:
		if from == "" {
			return domain.NewFailure(domain.ErrInvalidInput, "la entrega requiere ubicación origen")
		}
		if to != "" {
			return domain.NewFailure(domain.ErrInvalidInput, "la entrega no tiene ubicación destino")
		}
	case entity.MoveTransfer:
		if from == "" || to == "" {
			return domain.NewFailure(domain.ErrInvalidInput, "el traslado requiere origen y destino")
		}
		if from == to {
			return domain.NewFailure(domain.ErrInvalidInput, "origen y destino deben ser distintos")
		}
	case entity.MoveAdjustment:
		if to == "" || from != "" {
			return domain.NewFailure(domain.ErrInvalidInput, "el ajuste requiere exactamente una ubicación")
		}
	default:
		return domain.NewFailure(domain.ErrInvalidInput, "tipo de operación desconocido: %q", t)
	}
	return nil
}
