// Package reporting expone las proyecciones de solo lectura: saldos por paciente, historial,
// producción por profesional, ventas por ítem y el resumen mensual de stock.
package reporting

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/clinica-api/internal/application/dto"
	"github.com/jhoicas/clinica-api/internal/application/inventory"
	"github.com/jhoicas/clinica-api/internal/application/receipts"
	"github.com/jhoicas/clinica-api/internal/domain"
	"github.com/jhoicas/clinica-api/internal/domain/entity"
	"github.com/jhoicas/clinica-api/internal/domain/repository"
	"github.com/jhoicas/clinica-api/pkg/clock"
)

// UseCase reportes. No muta estado; lee las vistas (o su equivalente en memoria).
type UseCase struct {
	repo     repository.ReportRepository
	receipts *receipts.UseCase
	ledger   *inventory.Ledger
	clock    clock.Clock
	loc      *time.Location
}

// NewUseCase construye el caso de uso. loc define los límites de día y mes.
func NewUseCase(repo repository.ReportRepository, rc *receipts.UseCase, ledger *inventory.Ledger, c clock.Clock, loc *time.Location) *UseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &UseCase{repo: repo, receipts: rc, ledger: ledger, clock: c, loc: loc}
}

// PatientBalances saldo agregado por paciente (vw_saldo_cliente_resumen).
func (uc *UseCase) PatientBalances(ctx context.Context, onlyWithDebt bool) ([]dto.PatientBalanceResponse, error) {
	rows, err := uc.repo.PatientBalances(ctx, onlyWithDebt)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PatientBalanceResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.PatientBalanceResponse{
			PatientID:   r.PatientID,
			PatientName: r.PatientName,
			SalesCount:  r.SalesCount,
			TotalSold:   r.TotalSold,
			TotalPaid:   r.TotalPaid,
			Balance:     r.Balance,
		})
	}
	return out, nil
}

// PatientBalanceDetail saldo por venta de un paciente (vw_saldo_cliente_detalle).
func (uc *UseCase) PatientBalanceDetail(ctx context.Context, patientID int64) ([]dto.PatientBalanceDetailResponse, error) {
	rows, err := uc.repo.PatientBalanceDetail(ctx, patientID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PatientBalanceDetailResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.PatientBalanceDetailResponse{
			SaleID:  r.SaleID,
			Date:    r.Date,
			Total:   r.Total,
			Paid:    r.Paid,
			Balance: r.Balance,
			State:   r.State,
		})
	}
	return out, nil
}

// PatientHistory ventas, cobros, turnos y sesiones del paciente en orden cronológico.
func (uc *UseCase) PatientHistory(ctx context.Context, patientID int64) ([]dto.PatientHistoryResponse, error) {
	rows, err := uc.repo.PatientHistory(ctx, patientID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PatientHistoryResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.PatientHistoryResponse{
			OccurredAt:  r.OccurredAt,
			Kind:        r.Kind,
			RefID:       r.RefID,
			Description: r.Description,
			Amount:      r.Amount,
			State:       r.State,
		})
	}
	return out, nil
}

// ProfessionalProduction producción por profesional y día en [from, to).
func (uc *UseCase) ProfessionalProduction(ctx context.Context, in dto.DateRangeRequest) ([]dto.ProfessionalProductionResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	rows, err := uc.repo.ProfessionalProduction(ctx, in.From.UTC(), in.To.UTC())
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProfessionalProductionResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ProfessionalProductionResponse{
			ProfessionalID:    r.ProfessionalID,
			ProfessionalName:  r.ProfessionalName,
			Day:               r.Day,
			SalesCount:        r.SalesCount,
			SalesTotal:        r.SalesTotal,
			CompletedSessions: r.CompletedSessions,
		})
	}
	return out, nil
}

// SalesByItem ventas no anuladas por ítem en [from, to), rankeadas por monto (desempate por id).
// top > 0 recorta el ranking a los primeros N.
func (uc *UseCase) SalesByItem(ctx context.Context, in dto.DateRangeRequest, top int) ([]dto.ItemSalesResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	if top < 0 {
		return nil, domain.ErrValidation.WithMessage("top must not be negative")
	}
	return uc.salesByItem(ctx, in.From.UTC(), in.To.UTC(), top)
}

func (uc *UseCase) salesByItem(ctx context.Context, from, to time.Time, top int) ([]dto.ItemSalesResponse, error) {
	rows, err := uc.repo.SalesByItem(ctx, from, to)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if c := rows[i].Total.Cmp(rows[j].Total); c != 0 {
			return c > 0
		}
		return rows[i].ItemID < rows[j].ItemID
	})
	if top > 0 && len(rows) > top {
		rows = rows[:top]
	}
	out := make([]dto.ItemSalesResponse, 0, len(rows))
	for i, r := range rows {
		out = append(out, dto.ItemSalesResponse{
			Rank:     i + 1,
			ItemID:   r.ItemID,
			ItemName: r.ItemName,
			Quantity: r.Quantity,
			Total:    r.Total,
		})
	}
	return out, nil
}

// PatientReceipts cobros del paciente y total cobrado (solo cobros activos suman).
func (uc *UseCase) PatientReceipts(ctx context.Context, patientID int64) (*dto.PatientReceiptsResponse, error) {
	list, err := uc.receipts.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	for _, r := range list {
		if r.State == entity.ReceiptStateActive {
			total = total.Add(r.Amount)
		}
	}
	return &dto.PatientReceiptsResponse{PatientID: patientID, Total: total, Receipts: list}, nil
}

// MonthlyStock resumen mensual de stock por ítem.
func (uc *UseCase) MonthlyStock(ctx context.Context, year, month int) ([]dto.MonthlySummaryRowResponse, error) {
	return uc.ledger.MonthlySummary(ctx, year, month)
}
