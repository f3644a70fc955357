// Package tools expone al agente un registro fijo de herramientas tipadas sobre el inventario.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/stock-oracle-api/internal/application/inventory"
	"github.com/jhoicas/stock-oracle-api/internal/application/ports"
	"github.com/jhoicas/stock-oracle-api/internal/domain"
	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
	"github.com/jhoicas/stock-oracle-api/internal/domain/repository"
	"github.com/jhoicas/stock-oracle-api/pkg/logger"
)

const (
	lowStockLimit        = 20
	pendingLimit         = 20
	historyLimit         = 15
	defaultHistoryDays   = 30
	defaultMinSimilarity = 0.3
)

// Dispatcher decodifica, valida y ejecuta las herramientas. Las de creación solo producen borradores.
type Dispatcher struct {
	ops        *inventory.OperationUseCase
	products   repository.ProductRepository
	locations  repository.LocationRepository
	stock      repository.StockReader
	similarity ports.SimilaritySearcher
	minScore   float64
	metrics    ports.Metrics
	log        *logger.Logger
	now        func() time.Time
}

// NewDispatcher construye el dispatcher. minScore <= 0 usa 0.3; metrics y log pueden ser nil.
func NewDispatcher(
	ops *inventory.OperationUseCase,
	products repository.ProductRepository,
	locations repository.LocationRepository,
	stock repository.StockReader,
	similarity ports.SimilaritySearcher,
	minScore float64,
	metrics ports.Metrics,
	log *logger.Logger,
) *Dispatcher {
	if minScore <= 0 {
		minScore = defaultMinSimilarity
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Dispatcher{
		ops:        ops,
		products:   products,
		locations:  locations,
		stock:      stock,
		similarity: similarity,
		minScore:   minScore,
		metrics:    metrics,
		log:        log,
		now:        time.Now,
	}
}

// Decode convierte los argumentos JSON del modelo en la variante tipada y la valida.
// Campos desconocidos son un error de entrada.
func Decode(name string, raw json.RawMessage) (Request, error) {
	var target Request
	switch name {
	case ToolGetStock:
		target = &GetStockRequest{}
	case ToolGetLocationStock:
		target = &GetLocationStockRequest{}
	case ToolGetLowStock:
		target = &GetLowStockRequest{}
	case ToolGetStockValue:
		target = &GetStockValueRequest{}
	case ToolGetPendingOperations:
		target = &GetPendingOperationsRequest{}
	case ToolSearchHistory:
		target = &SearchHistoryRequest{}
	case ToolGetOperation:
		target = &GetOperationRequest{}
	case ToolCreateReceipt:
		target = &CreateReceiptRequest{}
	case ToolCreateDelivery:
		target = &CreateDeliveryRequest{}
	case ToolCreateTransfer:
		target = &CreateTransferRequest{}
	case ToolCreateAdjustment:
		target = &CreateAdjustmentRequest{}
	default:
		return nil, domain.NewFailure(domain.ErrInvalidInput, "herramienta desconocida %q", name)
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		raw = []byte("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return nil, domain.NewFailure(domain.ErrInvalidInput, "argumentos inválidos para %s: %v", name, err)
	}

	req := deref(target)
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

func deref(r Request) Request {
	switch v := r.(type) {
	case *GetStockRequest:
		return *v
	case *GetLocationStockRequest:
		return *v
	case *GetLowStockRequest:
		return *v
	case *GetStockValueRequest:
		return *v
	case *GetPendingOperationsRequest:
		return *v
	case *SearchHistoryRequest:
		return *v
	case *GetOperationRequest:
		return *v
	case *CreateReceiptRequest:
		return *v
	case *CreateDeliveryRequest:
		return *v
	case *CreateTransferRequest:
		return *v
	case *CreateAdjustmentRequest:
		return *v
	}
	return r
}

// Dispatch decodifica y ejecuta una llamada del modelo.
func (d *Dispatcher) Dispatch(ctx context.Context, userID, name string, raw json.RawMessage) Result {
	req, err := Decode(name, raw)
	if err != nil {
		d.metrics.ToolCall(name, false)
		return Result{Tool: name, Failure: d.failure(name, err)}
	}
	return d.Execute(ctx, userID, req)
}

// Execute ejecuta una variante ya validada. userID queda como creador de los borradores.
func (d *Dispatcher) Execute(ctx context.Context, userID string, req Request) Result {
	var (
		out   Response
		draft *entity.Move
		err   error
	)
	switch r := req.(type) {
	case GetStockRequest:
		out, err = d.getStock(ctx, r)
	case GetLocationStockRequest:
		out, err = d.getLocationStock(ctx, r)
	case GetLowStockRequest:
		out, err = d.getLowStock(ctx, r)
	case GetStockValueRequest:
		out, err = d.getStockValue(ctx, r)
	case GetPendingOperationsRequest:
		out, err = d.getPendingOperations(ctx, r)
	case SearchHistoryRequest:
		out, err = d.searchHistory(ctx, r)
	case GetOperationRequest:
		out, err = d.getOperation(ctx, r)
	case CreateReceiptRequest:
		out, draft, err = d.createReceipt(ctx, userID, r)
	case CreateDeliveryRequest:
		out, draft, err = d.createDelivery(ctx, userID, r)
	case CreateTransferRequest:
		out, draft, err = d.createTransfer(ctx, userID, r)
	case CreateAdjustmentRequest:
		out, draft, err = d.createAdjustment(ctx, userID, r)
	default:
		err = domain.NewFailure(domain.ErrInvalidInput, "herramienta no soportada %T", req)
	}

	name := req.Tool()
	if err != nil {
		d.metrics.ToolCall(name, false)
		return Result{Tool: name, Failure: d.failure(name, err)}
	}
	d.metrics.ToolCall(name, true)
	return Result{Tool: name, Output: out, Draft: draft}
}

// failure convierte cualquier error en un Failure explícito. Los errores de infraestructura
// se registran y se reportan como ErrInternal sin detalle técnico.
func (d *Dispatcher) failure(tool string, err error) *domain.Failure {
	if f, ok := domain.AsFailure(err); ok {
		return f
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return domain.NewFailure(domain.ErrEntityNotFound, "el recurso solicitado no existe")
	case errors.Is(err, domain.ErrInvalidInput):
		return &domain.Failure{Kind: domain.ErrInvalidInput, Detail: err.Error()}
	}
	d.log.Error().Err(err).Str("tool", tool).Msg("fallo de herramienta")
	return domain.NewFailure(domain.ErrInternal, "no se pudo completar %s", tool)
}

func (d *Dispatcher) getStock(ctx context.Context, r GetStockRequest) (Response, error) {
	p, err := d.resolveProduct(ctx, r.ProductName)
	if err != nil {
		return nil, err
	}
	var locFilter string
	if r.LocationName != "" {
		loc, err := d.resolveLocation(ctx, r.LocationName)
		if err != nil {
			return nil, err
		}
		locFilter = loc.ID
	}
	entries, err := d.stock.ListByProducts(ctx, []string{p.ID})
	if err != nil {
		return nil, fmt.Errorf("stock del producto: %w", err)
	}
	names := newNamer(d)
	report := StockReport{ProductName: p.Name, SKU: p.SKU, UnitMeasure: p.UnitMeasure, ReorderLevel: p.ReorderLevel}
	for _, e := range entries {
		if locFilter != "" && e.LocationID != locFilter {
			continue
		}
		report.Locations = append(report.Locations, StockAtLocation{
			LocationName: names.location(ctx, e.LocationID),
			Quantity:     e.Quantity,
			Reserved:     e.Reserved,
			Available:    e.Available(),
		})
		report.Total = report.Total.Add(e.Quantity)
	}
	if locFilter != "" && len(report.Locations) == 0 {
		report.Locations = append(report.Locations, StockAtLocation{LocationName: names.location(ctx, locFilter)})
	}
	return report, nil
}

func (d *Dispatcher) getLocationStock(ctx context.Context, r GetLocationStockRequest) (Response, error) {
	loc, err := d.resolveLocation(ctx, r.LocationName)
	if err != nil {
		return nil, err
	}
	entries, err := d.stock.ListByLocation(ctx, loc.ID)
	if err != nil {
		return nil, fmt.Errorf("stock de la ubicación: %w", err)
	}
	report := LocationStockReport{LocationName: loc.Name}
	for _, e := range entries {
		if e.Quantity.IsZero() {
			continue
		}
		p, err := d.products.GetByID(ctx, e.ProductID)
		if err != nil {
			continue
		}
		report.Items = append(report.Items, LocationStockItem{
			ProductName: p.Name,
			SKU:         p.SKU,
			UnitMeasure: p.UnitMeasure,
			Quantity:    e.Quantity,
			Available:   e.Available(),
		})
	}
	return report, nil
}

func (d *Dispatcher) getLowStock(ctx context.Context, r GetLowStockRequest) (Response, error) {
	report := LowStockReport{}
	locID := ""
	if r.LocationName != "" {
		loc, err := d.resolveLocation(ctx, r.LocationName)
		if err != nil {
			return nil, err
		}
		locID, report.LocationName = loc.ID, loc.Name
	}
	items, err := d.stock.ListLowStock(ctx, locID, lowStockLimit)
	if err != nil {
		return nil, fmt.Errorf("stock bajo: %w", err)
	}
	report.Items = items
	return report, nil
}

func (d *Dispatcher) getStockValue(ctx context.Context, r GetStockValueRequest) (Response, error) {
	report := StockValueReport{}
	locID := ""
	if r.LocationName != "" {
		loc, err := d.resolveLocation(ctx, r.LocationName)
		if err != nil {
			return nil, err
		}
		locID, report.LocationName = loc.ID, loc.Name
	}
	value, err := d.stock.TotalValue(ctx, locID)
	if err != nil {
		return nil, fmt.Errorf("valor del inventario: %w", err)
	}
	report.Value = value.Round(2)
	return report, nil
}

func (d *Dispatcher) getPendingOperations(ctx context.Context, r GetPendingOperationsRequest) (Response, error) {
	filter := entity.MoveFilter{Statuses: entity.OpenStatuses, Limit: pendingLimit}
	t, _ := parseType(r.Type)
	if t != "" {
		filter.Types = []entity.MoveType{t}
	}
	moves, err := d.ops.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("operaciones pendientes: %w", err)
	}
	return OperationList{Title: "Operaciones pendientes", Operations: d.views(ctx, moves)}, nil
}

func (d *Dispatcher) searchHistory(ctx context.Context, r SearchHistoryRequest) (Response, error) {
	days := r.DaysAgo
	if days == 0 {
		days = defaultHistoryDays
	}
	since := d.now().AddDate(0, 0, -days)
	filter := entity.MoveFilter{Statuses: []entity.MoveStatus{entity.StatusDone}, Since: &since, Limit: historyLimit}
	if t, _ := parseType(r.Type); t != "" {
		filter.Types = []entity.MoveType{t}
	}
	if r.ProductName != "" {
		p, err := d.resolveProduct(ctx, r.ProductName)
		if err != nil {
			return nil, err
		}
		filter.ProductID = p.ID
	}
	if r.LocationName != "" {
		loc, err := d.resolveLocation(ctx, r.LocationName)
		if err != nil {
			return nil, err
		}
		filter.LocationID = loc.ID
	}
	moves, err := d.ops.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("historial: %w", err)
	}
	title := fmt.Sprintf("Operaciones completadas en los últimos %d días", days)
	return OperationList{Title: title, Operations: d.views(ctx, moves)}, nil
}

func (d *Dispatcher) getOperation(ctx context.Context, r GetOperationRequest) (Response, error) {
	m, err := d.ops.GetByReference(ctx, r.Reference)
	if errors.Is(err, domain.ErrNotFound) {
		m, err = d.ops.Get(ctx, r.Reference)
	}
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.EntityNotFound("operación", r.Reference)
	}
	if err != nil {
		return nil, fmt.Errorf("operación: %w", err)
	}
	return d.View(ctx, m), nil
}

func (d *Dispatcher) createReceipt(ctx context.Context, userID string, r CreateReceiptRequest) (Response, *entity.Move, error) {
	dest, err := d.resolveLocation(ctx, r.Destination)
	if err != nil {
		return nil, nil, err
	}
	lines, err := d.resolveLines(ctx, r.Lines)
	if err != nil {
		return nil, nil, err
	}
	return d.createDraft(ctx, inventory.CreateMoveInput{
		Type:         entity.MoveReceipt,
		Origin:       entity.OriginAgent,
		ToLocationID: dest.ID,
		Counterparty: r.Supplier,
		Notes:        r.Notes,
		CreatedBy:    userID,
		Lines:        lines,
	})
}

func (d *Dispatcher) createDelivery(ctx context.Context, userID string, r CreateDeliveryRequest) (Response, *entity.Move, error) {
	src, err := d.resolveLocation(ctx, r.Source)
	if err != nil {
		return nil, nil, err
	}
	lines, err := d.resolveLines(ctx, r.Lines)
	if err != nil {
		return nil, nil, err
	}
	return d.createDraft(ctx, inventory.CreateMoveInput{
		Type:             entity.MoveDelivery,
		Origin:           entity.OriginAgent,
		FromLocationID:   src.ID,
		Counterparty:     r.Customer,
		Notes:            r.Notes,
		CreatedBy:        userID,
		Lines:            lines,
		RefuseInfeasible: true,
	})
}

func (d *Dispatcher) createTransfer(ctx context.Context, userID string, r CreateTransferRequest) (Response, *entity.Move, error) {
	src, err := d.resolveLocation(ctx, r.Source)
	if err != nil {
		return nil, nil, err
	}
	dest, err := d.resolveLocation(ctx, r.Destination)
	if err != nil {
		return nil, nil, err
	}
	lines, err := d.resolveLines(ctx, r.Lines)
	if err != nil {
		return nil, nil, err
	}
	return d.createDraft(ctx, inventory.CreateMoveInput{
		Type:             entity.MoveTransfer,
		Origin:           entity.OriginAgent,
		FromLocationID:   src.ID,
		ToLocationID:     dest.ID,
		Notes:            r.Notes,
		CreatedBy:        userID,
		Lines:            lines,
		RefuseInfeasible: true,
	})
}

func (d *Dispatcher) createAdjustment(ctx context.Context, userID string, r CreateAdjustmentRequest) (Response, *entity.Move, error) {
	p, err := d.resolveProduct(ctx, r.ProductName)
	if err != nil {
		return nil, nil, err
	}
	loc, err := d.resolveLocation(ctx, r.LocationName)
	if err != nil {
		return nil, nil, err
	}
	current, err := d.stock.Get(ctx, p.ID, loc.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("stock actual: %w", err)
	}
	delta := r.NewQuantity.Sub(current.Quantity)
	if delta.IsZero() {
		return nil, nil, domain.NewFailure(domain.ErrInvalidInput,
			"%s ya tiene %s en %s, no hay nada que ajustar", p.Name, current.Quantity.String(), loc.Name)
	}
	return d.createDraft(ctx, inventory.CreateMoveInput{
		Type:         entity.MoveAdjustment,
		Origin:       entity.OriginAgent,
		ToLocationID: loc.ID,
		Reason:       r.Reason,
		CreatedBy:    userID,
		Lines:        []inventory.LineInput{{ProductID: p.ID, Quantity: delta}},
	})
}

func (d *Dispatcher) createDraft(ctx context.Context, in inventory.CreateMoveInput) (Response, *entity.Move, error) {
	m, err := d.ops.Create(ctx, in)
	if err != nil {
		return nil, nil, err
	}
	return DraftCreated{Operation: d.View(ctx, m)}, m, nil
}

func (d *Dispatcher) resolveLines(ctx context.Context, lines []LineRequest) ([]inventory.LineInput, error) {
	out := make([]inventory.LineInput, 0, len(lines))
	for _, l := range lines {
		p, err := d.resolveProduct(ctx, l.ProductName)
		if err != nil {
			return nil, err
		}
		out = append(out, inventory.LineInput{ProductID: p.ID, Quantity: l.Quantity})
	}
	return out, nil
}

// View resuelve los nombres de una operación para mostrarla.
func (d *Dispatcher) View(ctx context.Context, m *entity.Move) OperationView {
	return newNamer(d).view(ctx, m)
}

func (d *Dispatcher) views(ctx context.Context, moves []*entity.Move) []OperationView {
	n := newNamer(d)
	out := make([]OperationView, 0, len(moves))
	for _, m := range moves {
		out = append(out, n.view(ctx, m))
	}
	return out
}

// namer cachea nombres de producto y ubicación durante una invocación.
type namer struct {
	d         *Dispatcher
	products  map[string]string
	locations map[string]string
}

func newNamer(d *Dispatcher) *namer {
	return &namer{d: d, products: map[string]string{}, locations: map[string]string{}}
}

func (n *namer) product(ctx context.Context, id string) string {
	if name, ok := n.products[id]; ok {
		return name
	}
	name := id
	if p, err := n.d.products.GetByID(ctx, id); err == nil {
		name = p.Name
	}
	n.products[id] = name
	return name
}

func (n *namer) location(ctx context.Context, id string) string {
	if id == "" {
		return ""
	}
	if name, ok := n.locations[id]; ok {
		return name
	}
	name := id
	if l, err := n.d.locations.GetByID(ctx, id); err == nil {
		name = l.Name
	}
	n.locations[id] = name
	return name
}

func (n *namer) view(ctx context.Context, m *entity.Move) OperationView {
	v := OperationView{
		ID:           m.ID,
		Reference:    m.Reference,
		Type:         m.Type,
		Status:       m.Status,
		Origin:       m.Origin,
		From:         n.location(ctx, m.FromLocationID),
		To:           n.location(ctx, m.ToLocationID),
		Counterparty: m.Counterparty,
		Reason:       m.Reason,
		CreatedAt:    m.CreatedAt,
		CompletedAt:  m.CompletedAt,
	}
	for _, l := range m.Lines {
		v.Lines = append(v.Lines, LineView{
			ProductID:   l.ProductID,
			ProductName: n.product(ctx, l.ProductID),
			Requested:   l.RequestedQuantity,
			Done:        l.DoneQuantity,
		})
	}
	for _, s := range m.Shortages {
		if s.ProductName == "" {
			s.ProductName = n.product(ctx, s.ProductID)
		}
		v.Shortages = append(v.Shortages, s)
	}
	return v
}
