package inventory

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-oracle-api/internal/domain"
	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
)

// ValidateLines verifica las cantidades: positivas para todos los tipos salvo ADJUSTMENT (no cero).
func ValidateLines(t entity.MoveType, lines []entity.MoveLine) error {
	if len(lines) == 0 {
		return domain.NewFailure(domain.ErrInvalidInput, "la operación debe tener al menos una línea")
	}
	for i, l := range lines {
		if l.ProductID == "" {
			return domain.NewFailure(domain.ErrInvalidInput, "línea %d sin producto", i+1)
		}
		if t == entity.MoveAdjustment {
			if l.RequestedQuantity.IsZero() {
				return domain.NewFailure(domain.ErrInvalidInput, "línea %d: el ajuste no puede ser cero", i+1)
			}
			continue
		}
		if !l.RequestedQuantity.IsPositive() {
			return domain.NewFailure(domain.ErrInvalidInput, "línea %d: la cantidad debe ser mayor que cero", i+1)
		}
	}
	return nil
}

// ComputeDeltas traduce una operación en deltas del ledger:
// RECEIPT +destino, DELIVERY -origen, TRANSFER -origen +destino, ADJUSTMENT delta firmado en la ubicación.
// Las líneas del mismo producto se agregan y el resultado sale ordenado por (producto, ubicación).
// Los descuentos en el origen de DELIVERY/TRANSFER no pueden consumir stock reservado.
func ComputeDeltas(m *entity.Move) ([]entity.LedgerDelta, error) {
	acc := map[entity.StockKey]decimal.Decimal{}
	outbound := map[entity.StockKey]bool{}
	add := func(productID, locationID string, d decimal.Decimal) {
		k := entity.StockKey{ProductID: productID, LocationID: locationID}
		acc[k] = acc[k].Add(d)
	}
	take := func(productID, locationID string, q decimal.Decimal) {
		add(productID, locationID, q.Neg())
		outbound[entity.StockKey{ProductID: productID, LocationID: locationID}] = true
	}
	for _, l := range m.Lines {
		switch m.Type {
		case entity.MoveReceipt:
			add(l.ProductID, m.ToLocationID, l.RequestedQuantity)
		case entity.MoveDelivery:
			take(l.ProductID, m.FromLocationID, l.RequestedQuantity)
		case entity.MoveTransfer:
			take(l.ProductID, m.FromLocationID, l.RequestedQuantity)
			add(l.ProductID, m.ToLocationID, l.RequestedQuantity)
		case entity.MoveAdjustment:
			add(l.ProductID, m.ToLocationID, l.RequestedQuantity)
		default:
			return nil, domain.NewFailure(domain.ErrInvalidInput, "tipo de operación desconocido: %q", m.Type)
		}
	}
	out := make([]entity.LedgerDelta, 0, len(acc))
	for k, d := range acc {
		if d.IsZero() {
			continue
		}
		out = append(out, entity.LedgerDelta{ProductID: k.ProductID, LocationID: k.LocationID, Delta: d, KeepReserved: outbound[k]})
	}
	SortDeltas(out)
	return out, nil
}

// SortDeltas ordena por (producto, ubicación) para adquirir bloqueos siempre en el mismo orden.
func SortDeltas(deltas []entity.LedgerDelta) {
	sort.Slice(deltas, func(i, j int) bool {
		if deltas[i].ProductID != deltas[j].ProductID {
			return deltas[i].ProductID < deltas[j].ProductID
		}
		return deltas[i].LocationID < deltas[j].LocationID
	})
}

// Demand cantidad requerida por producto en el origen (DELIVERY/TRANSFER), en orden de aparición.
func Demand(m *entity.Move) ([]string, map[string]decimal.Decimal) {
	order := []string{}
	need := map[string]decimal.Decimal{}
	for _, l := range m.Lines {
		if _, ok := need[l.ProductID]; !ok {
			order = append(order, l.ProductID)
		}
		need[l.ProductID] = need[l.ProductID].Add(l.RequestedQuantity)
	}
	return order, need
}

// Shortages compara la demanda con lo disponible. available recibe el id de producto.
func Shortages(m *entity.Move, available func(productID string) (decimal.Decimal, error)) ([]entity.Shortage, error) {
	order, need := Demand(m)
	var out []entity.Shortage
	for _, pid := range order {
		avail, err := available(pid)
		if err != nil {
			return nil, err
		}
		if avail.LessThan(need[pid]) {
			out = append(out, entity.Shortage{ProductID: pid, Needed: need[pid], Available: avail})
		}
	}
	return out, nil
}
