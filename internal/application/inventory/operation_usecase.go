package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-oracle-api/internal/application/ports"
	"github.com/jhoicas/stock-oracle-api/internal/domain"
	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
	"github.com/jhoicas/stock-oracle-api/internal/domain/inventory"
	"github.com/jhoicas/stock-oracle-api/internal/domain/repository"
)

// OperationUseCase administra el ciclo de vida de las operaciones de inventario
// (DRAFT → READY/WAITING → DONE | CANCELLED). Toda mutación del ledger pasa por Complete/Approve
// dentro de una transacción con la operación bloqueada (SELECT FOR UPDATE).
type OperationUseCase struct {
	txRunner  TxRunner
	moves     repository.MoveRepository
	products  repository.ProductRepository
	locations repository.LocationRepository
	stock     repository.StockReader
	metrics   ports.Metrics
	now       func() time.Time
}

// NewOperationUseCase construye el caso de uso. metrics puede ser nil.
func NewOperationUseCase(
	txRunner TxRunner,
	moves repository.MoveRepository,
	products repository.ProductRepository,
	locations repository.LocationRepository,
	stock repository.StockReader,
	metrics ports.Metrics,
) *OperationUseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &OperationUseCase{
		txRunner:  txRunner,
		moves:     moves,
		products:  products,
		locations: locations,
		stock:     stock,
		metrics:   metrics,
		now:       time.Now,
	}
}

// LineInput línea solicitada. Para ADJUSTMENT Quantity es el delta firmado.
type LineInput struct {
	ProductID string
	Quantity  decimal.Decimal
}

// CreateMoveInput entrada para crear una operación en DRAFT.
// Para RECEIPT: ToLocationID. DELIVERY: FromLocationID. TRANSFER: ambos. ADJUSTMENT: ToLocationID.
type CreateMoveInput struct {
	Type           entity.MoveType
	Origin         entity.MoveOrigin
	FromLocationID string
	ToLocationID   string
	Counterparty   string
	Reason         string
	Notes          string
	CreatedBy      string
	Lines          []LineInput
	// RefuseInfeasible rechaza DELIVERY/TRANSFER sin stock suficiente en lugar de crear el borrador.
	RefuseInfeasible bool
}

// Create valida la entrada y registra la operación en DRAFT. No modifica el ledger.
func (uc *OperationUseCase) Create(ctx context.Context, in CreateMoveInput) (*entity.Move, error) {
	if in.Origin == "" {
		in.Origin = entity.OriginUI
	}
	if err := inventory.ValidateEndpoints(in.Type, in.FromLocationID, in.ToLocationID); err != nil {
		return nil, err
	}
	for _, locID := range []string{in.FromLocationID, in.ToLocationID} {
		if locID == "" {
			continue
		}
		if _, err := uc.locations.GetByID(ctx, locID); err != nil {
			return nil, domain.EntityNotFound("ubicación", locID)
		}
	}

	now := uc.now()
	id := uuid.New().String()
	move := &entity.Move{
		ID:             id,
		Reference:      newReference(in.Type, id, now),
		Type:           in.Type,
		Status:         entity.StatusDraft,
		Origin:         in.Origin,
		FromLocationID: in.FromLocationID,
		ToLocationID:   in.ToLocationID,
		Counterparty:   strings.TrimSpace(in.Counterparty),
		Reason:         strings.TrimSpace(in.Reason),
		Notes:          strings.TrimSpace(in.Notes),
		CreatedBy:      in.CreatedBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for i, l := range in.Lines {
		move.Lines = append(move.Lines, entity.MoveLine{
			ID:                uuid.New().String(),
			MoveID:            id,
			ProductID:         l.ProductID,
			RequestedQuantity: l.Quantity,
			DoneQuantity:      decimal.Zero,
			Position:          i + 1,
		})
	}
	if err := inventory.ValidateLines(move.Type, move.Lines); err != nil {
		return nil, err
	}
	for _, l := range move.Lines {
		if _, err := uc.products.GetByID(ctx, l.ProductID); err != nil {
			return nil, domain.EntityNotFound("producto", l.ProductID)
		}
	}

	err := uc.txRunner.Run(ctx, func(moves repository.MoveRepository, ledger repository.LedgerWriter) error {
		if in.RefuseInfeasible && move.Type.RequiresAvailabilityCheck() {
			shortages, err := uc.shortages(ctx, ledger, move)
			if err != nil {
				return err
			}
			if len(shortages) > 0 {
				return domain.InsufficientStock(shortages)
			}
		}
		return moves.Create(ctx, move)
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.MoveTransition(string(move.Type), string(move.Status))
	return move, nil
}

// CheckAvailability verifica el stock del origen: READY si alcanza, WAITING con faltantes si no.
// RECEIPT y ADJUSTMENT pasan directo a READY.
func (uc *OperationUseCase) CheckAvailability(ctx context.Context, id string) (*entity.Move, error) {
	var out *entity.Move
	err := uc.txRunner.Run(ctx, func(moves repository.MoveRepository, ledger repository.LedgerWriter) error {
		m, err := moves.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := inventory.CanCheckAvailability(m); err != nil {
			return err
		}
		m.Status = entity.StatusReady
		m.Shortages = nil
		if m.Type.RequiresAvailabilityCheck() {
			shortages, err := uc.shortages(ctx, ledger, m)
			if err != nil {
				return err
			}
			if len(shortages) > 0 {
				m.Status = entity.StatusWaiting
				m.Shortages = shortages
			}
		}
		m.UpdatedAt = uc.now()
		if err := moves.Update(ctx, m); err != nil {
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.MoveTransition(string(out.Type), string(out.Status))
	return out, nil
}

// Complete pasa la operación a DONE aplicando sus deltas al ledger en la misma transacción.
// Si algún delta dejaría stock negativo, nada se aplica y el estado no cambia.
func (uc *OperationUseCase) Complete(ctx context.Context, id string) (*entity.Move, error) {
	return uc.complete(ctx, id, false)
}

// Approve registra la confirmación explícita del usuario sobre un borrador del agente y lo completa.
// Si la disponibilidad falla, la operación queda en DRAFT sin aprobar.
func (uc *OperationUseCase) Approve(ctx context.Context, id string) (*entity.Move, error) {
	return uc.complete(ctx, id, true)
}

func (uc *OperationUseCase) complete(ctx context.Context, id string, approve bool) (*entity.Move, error) {
	var out *entity.Move
	err := uc.txRunner.Run(ctx, func(moves repository.MoveRepository, ledger repository.LedgerWriter) error {
		m, err := moves.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if approve {
			if err := inventory.CanApprove(m); err != nil {
				return err
			}
			m.Approved = true
		}
		if err := inventory.CanComplete(m); err != nil {
			return err
		}
		deltas, err := inventory.ComputeDeltas(m)
		if err != nil {
			return err
		}
		if _, err := ledger.ApplyDeltas(ctx, deltas, true); err != nil {
			return err
		}
		m.MarkDone(uc.now())
		if err := moves.Update(ctx, m); err != nil {
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, uc.nameShortages(ctx, err)
	}
	uc.metrics.MoveTransition(string(out.Type), string(out.Status))
	return out, nil
}

// Cancel pasa la operación a CANCELLED sin efecto en el ledger.
func (uc *OperationUseCase) Cancel(ctx context.Context, id string) (*entity.Move, error) {
	var out *entity.Move
	err := uc.txRunner.Run(ctx, func(moves repository.MoveRepository, _ repository.LedgerWriter) error {
		m, err := moves.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := inventory.CanCancel(m); err != nil {
			return err
		}
		m.Status = entity.StatusCancelled
		m.Shortages = nil
		m.UpdatedAt = uc.now()
		if err := moves.Update(ctx, m); err != nil {
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.MoveTransition(string(out.Type), string(out.Status))
	return out, nil
}

// Get devuelve la operación por id.
func (uc *OperationUseCase) Get(ctx context.Context, id string) (*entity.Move, error) {
	return uc.moves.GetByID(ctx, id)
}

// GetByReference devuelve la operación por número de referencia (REC-…, DEL-…).
func (uc *OperationUseCase) GetByReference(ctx context.Context, reference string) (*entity.Move, error) {
	return uc.moves.GetByReference(ctx, strings.ToUpper(strings.TrimSpace(reference)))
}

// List devuelve operaciones según el filtro (límite por defecto 20).
func (uc *OperationUseCase) List(ctx context.Context, filter entity.MoveFilter) ([]*entity.Move, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	return uc.moves.List(ctx, filter)
}

// Available cantidad disponible (cantidad - reservado) de un producto en una ubicación.
func (uc *OperationUseCase) Available(ctx context.Context, productID, locationID string) (decimal.Decimal, error) {
	e, err := uc.stock.Get(ctx, productID, locationID)
	if err != nil {
		return decimal.Zero, err
	}
	return e.Available(), nil
}

func (uc *OperationUseCase) shortages(ctx context.Context, ledger repository.StockReader, m *entity.Move) ([]entity.Shortage, error) {
	shortages, err := inventory.Shortages(m, func(productID string) (decimal.Decimal, error) {
		e, err := ledger.Get(ctx, productID, m.FromLocationID)
		if err != nil {
			return decimal.Zero, err
		}
		return e.Available(), nil
	})
	if err != nil {
		return nil, err
	}
	for i := range shortages {
		if p, err := uc.products.GetByID(ctx, shortages[i].ProductID); err == nil {
			shortages[i].ProductName = p.Name
		}
	}
	return shortages, nil
}

// nameShortages completa los nombres de producto en un fallo de stock insuficiente del ledger.
func (uc *OperationUseCase) nameShortages(ctx context.Context, err error) error {
	f, ok := domain.AsFailure(err)
	if !ok || len(f.Shortages) == 0 {
		return err
	}
	named := append([]entity.Shortage(nil), f.Shortages...)
	for i := range named {
		if named[i].ProductName != "" {
			continue
		}
		if p, perr := uc.products.GetByID(ctx, named[i].ProductID); perr == nil {
			named[i].ProductName = p.Name
		}
	}
	if f.Kind == domain.ErrInsufficientStock {
		return domain.InsufficientStock(named)
	}
	return &domain.Failure{Kind: f.Kind, Detail: f.Detail, Subject: f.Subject, Shortages: named}
}

// newReference genera el número legible: PREFIJO-AAMMDD-XXXXXX.
func newReference(t entity.MoveType, id string, now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(id, "-", ""))[:6]
	return fmt.Sprintf("%s-%s-%s", t.ReferencePrefix(), now.Format("060102"), suffix)
}
