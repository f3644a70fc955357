// Package analytics contiene los casos de uso del dashboard de inventario.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-oracle-api/internal/application/dto"
	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
	"github.com/jhoicas/stock-oracle-api/internal/domain/repository"
)

const dashboardTopLowStock = 5 // entradas de stock bajo en el widget del dashboard

// DashboardUseCase genera los indicadores del inventario.
// Solo lectura: no abre transacciones ni toca el ledger.
type DashboardUseCase struct {
	stock repository.StockReader
	moves repository.MoveRepository
	now   func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(stock repository.StockReader, moves repository.MoveRepository) *DashboardUseCase {
	return &DashboardUseCase{stock: stock, moves: moves, now: time.Now}
}

// GetKPIs construye el DashboardKPIsDTO.
//
// Cuatro consultas en paralelo:
//  1. TotalValue          → valor del inventario
//  2. ListLowStock        → conteo + top 5 por déficit
//  3. CountOpen           → operaciones abiertas
//  4. List(DONE, ~2 meses) → completadas hoy y en el mes
func (uc *DashboardUseCase) GetKPIs(ctx context.Context) (*dto.DashboardKPIsDTO, error) {
	now := uc.now()

	// ── Rangos de fecha ────────────────────────────────────────────────────────
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	// Las operaciones se filtran por fecha de creación; un mes extra cubre las creadas antes y cerradas en el mes.
	createdSince := monthStart.AddDate(0, -1, 0)

	// ── Goroutines para paralelizar las consultas ─────────────────────────────
	type valueResult struct {
		total decimal.Decimal
		err   error
	}
	type lowResult struct {
		items []entity.LowStockItem
		err   error
	}
	type countResult struct {
		n   int
		err error
	}
	type doneResult struct {
		moves []*entity.Move
		err   error
	}

	valueCh := make(chan valueResult, 1)
	lowCh := make(chan lowResult, 1)
	openCh := make(chan countResult, 1)
	doneCh := make(chan doneResult, 1)

	go func() {
		total, err := uc.stock.TotalValue(ctx, "")
		valueCh <- valueResult{total, err}
	}()
	go func() {
		items, err := uc.stock.ListLowStock(ctx, "", 0)
		lowCh <- lowResult{items, err}
	}()
	go func() {
		n, err := uc.moves.CountOpen(ctx)
		openCh <- countResult{n, err}
	}()
	go func() {
		moves, err := uc.moves.List(ctx, entity.MoveFilter{
			Statuses: []entity.MoveStatus{entity.StatusDone},
			Since:    &createdSince,
		})
		doneCh <- doneResult{moves, err}
	}()

	value := <-valueCh
	low := <-lowCh
	open := <-openCh
	done := <-doneCh

	if value.err != nil {
		return nil, fmt.Errorf("dashboard: valor del inventario: %w", value.err)
	}
	if low.err != nil {
		return nil, fmt.Errorf("dashboard: stock bajo: %w", low.err)
	}
	if open.err != nil {
		return nil, fmt.Errorf("dashboard: operaciones abiertas: %w", open.err)
	}
	if done.err != nil {
		return nil, fmt.Errorf("dashboard: operaciones completadas: %w", done.err)
	}

	out := &dto.DashboardKPIsDTO{
		TotalValue:     value.total.Round(2),
		LowStockCount:  len(low.items),
		OpenOperations: open.n,
		TopLowStock:    []dto.LowStockDTO{},
		DateLabel:      monthLabel(now),
	}
	for _, m := range done.moves {
		if m.CompletedAt == nil {
			continue
		}
		if !m.CompletedAt.Before(monthStart) {
			out.CompletedInMonth++
		}
		if !m.CompletedAt.Before(todayStart) {
			out.CompletedToday++
		}
	}
	for i, it := range low.items {
		if i == dashboardTopLowStock {
			break
		}
		out.TopLowStock = append(out.TopLowStock, dto.LowStockDTO{
			ProductID:    it.ProductID,
			SKU:          it.SKU,
			ProductName:  it.ProductName,
			LocationName: it.LocationName,
			Quantity:     it.Quantity,
			ReorderLevel: it.ReorderLevel,
			Deficit:      it.Deficit,
		})
	}
	return out, nil
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
