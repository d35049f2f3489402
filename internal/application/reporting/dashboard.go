package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/clinica-api/internal/application/dto"
)

const dashboardTopItems = 5 // ítems en el ranking del tablero

// Dashboard resume las ventas del día y del mes en curso, la deuda total de pacientes y
// el ranking de ítems del mes. Las consultas corren en paralelo.
func (uc *UseCase) Dashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	now := uc.clock.Now().In(uc.loc)

	// ── Rangos de fecha (zona local) ──────────────────────────────────────────
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, uc.loc)
	todayEnd := todayStart.AddDate(0, 0, 1)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, uc.loc)
	monthEnd := monthStart.AddDate(0, 1, 0)

	type itemsResult struct {
		rows []dto.ItemSalesResponse
		err  error
	}
	type debtResult struct {
		total decimal.Decimal
		err   error
	}

	todayCh := make(chan itemsResult, 1)
	monthCh := make(chan itemsResult, 1)
	debtCh := make(chan debtResult, 1)

	go func() {
		rows, err := uc.salesByItem(ctx, todayStart.UTC(), todayEnd.UTC(), 0)
		todayCh <- itemsResult{rows, err}
	}()
	go func() {
		rows, err := uc.salesByItem(ctx, monthStart.UTC(), monthEnd.UTC(), 0)
		monthCh <- itemsResult{rows, err}
	}()
	go func() {
		rows, err := uc.repo.PatientBalances(ctx, true)
		total := decimal.Zero
		for _, r := range rows {
			total = total.Add(r.Balance)
		}
		debtCh <- debtResult{total, err}
	}()

	today := <-todayCh
	month := <-monthCh
	debt := <-debtCh

	if today.err != nil {
		return nil, fmt.Errorf("dashboard: ventas de hoy: %w", today.err)
	}
	if month.err != nil {
		return nil, fmt.Errorf("dashboard: ventas del mes: %w", month.err)
	}
	if debt.err != nil {
		return nil, fmt.Errorf("dashboard: deuda de pacientes: %w", debt.err)
	}

	top := month.rows
	if len(top) > dashboardTopItems {
		top = top[:dashboardTopItems]
	}
	return &dto.DashboardResponse{
		TodaySales: sumTotals(today.rows).Round(2),
		MonthSales: sumTotals(month.rows).Round(2),
		TotalDebt:  debt.total.Round(2),
		TopItems:   top,
		DateLabel:  monthLabel(now),
	}, nil
}

func sumTotals(rows []dto.ItemSalesResponse) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.Total)
	}
	return total
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
