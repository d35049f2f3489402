package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/clinica-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo proyecciones de solo lectura sobre las vistas vw_* (ver migrations/0002_views.sql).
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

// PatientBalances resumen de saldo por paciente.
func (r *ReportRepo) PatientBalances(ctx context.Context, onlyWithDebt bool) ([]repository.PatientBalance, error) {
	rows, err := r.q.Query(ctx, `
		SELECT patient_id, patient_name, sales_count, total_sold, total_paid, balance
		FROM vw_saldo_cliente_resumen
		WHERE (NOT $1 OR balance > 0)
		ORDER BY patient_name, patient_id`, onlyWithDebt)
	if err != nil {
		return nil, mapError("patient balances", err)
	}
	defer rows.Close()
	var out []repository.PatientBalance
	for rows.Next() {
		var b repository.PatientBalance
		if err := rows.Scan(&b.PatientID, &b.PatientName, &b.SalesCount, &b.TotalSold, &b.TotalPaid, &b.Balance); err != nil {
			return nil, fmt.Errorf("scan patient balance: %w", err)
		}
		out = append(out, b)
	}
	return out, mapError("patient balances", rows.Err())
}

// PatientBalanceDetail saldo venta por venta del paciente.
func (r *ReportRepo) PatientBalanceDetail(ctx context.Context, patientID int64) ([]repository.PatientBalanceDetail, error) {
	rows, err := r.q.Query(ctx, `
		SELECT patient_id, sale_id, date, total, paid, balance, state
		FROM vw_saldo_cliente_detalle
		WHERE patient_id = $1
		ORDER BY date, sale_id`, patientID)
	if err != nil {
		return nil, mapError("patient balance detail", err)
	}
	defer rows.Close()
	var out []repository.PatientBalanceDetail
	for rows.Next() {
		var d repository.PatientBalanceDetail
		if err := rows.Scan(&d.PatientID, &d.SaleID, &d.Date, &d.Total, &d.Paid, &d.Balance, &d.State); err != nil {
			return nil, fmt.Errorf("scan balance detail: %w", err)
		}
		out = append(out, d)
	}
	return out, mapError("patient balance detail", rows.Err())
}

// PatientHistory línea de tiempo del paciente.
func (r *ReportRepo) PatientHistory(ctx context.Context, patientID int64) ([]repository.PatientHistoryEntry, error) {
	rows, err := r.q.Query(ctx, `
		SELECT patient_id, occurred_at, kind, ref_id, description, amount, state
		FROM vw_historial_paciente
		WHERE patient_id = $1
		ORDER BY occurred_at, kind_order, ref_id`, patientID)
	if err != nil {
		return nil, mapError("patient history", err)
	}
	defer rows.Close()
	var out []repository.PatientHistoryEntry
	for rows.Next() {
		var h repository.PatientHistoryEntry
		if err := rows.Scan(&h.PatientID, &h.OccurredAt, &h.Kind, &h.RefID, &h.Description, &h.Amount, &h.State); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		out = append(out, h)
	}
	return out, mapError("patient history", rows.Err())
}

// ProfessionalProduction producción diaria (día UTC) por profesional; un día entra si su medianoche
// cae en [from, to) redondeando from al inicio de su día.
func (r *ReportRepo) ProfessionalProduction(ctx context.Context, from, to time.Time) ([]repository.ProfessionalProduction, error) {
	rows, err := r.q.Query(ctx, `
		SELECT professional_id, professional_name, day::timestamp AT TIME ZONE 'UTC',
		       sales_count, sales_total, completed_sessions
		FROM vw_produccion_prof_dia
		WHERE day >= ($1::timestamptz AT TIME ZONE 'UTC')::date
		  AND day::timestamp < ($2::timestamptz AT TIME ZONE 'UTC')
		ORDER BY day, professional_id`, from, to)
	if err != nil {
		return nil, mapError("professional production", err)
	}
	defer rows.Close()
	var out []repository.ProfessionalProduction
	for rows.Next() {
		var p repository.ProfessionalProduction
		if err := rows.Scan(&p.ProfessionalID, &p.ProfessionalName, &p.Day, &p.SalesCount, &p.SalesTotal, &p.CompletedSessions); err != nil {
			return nil, fmt.Errorf("scan production: %w", err)
		}
		p.Day = p.Day.UTC()
		out = append(out, p)
	}
	return out, mapError("professional production", rows.Err())
}

// SalesByItem cantidades y montos vendidos por ítem en [from, to), ventas no anuladas.
func (r *ReportRepo) SalesByItem(ctx context.Context, from, to time.Time) ([]repository.ItemSales, error) {
	rows, err := r.q.Query(ctx, `
		SELECT l.item_id, i.name, SUM(l.quantity), SUM(l.subtotal)
		FROM sale_lines l
		JOIN sales s ON s.id = l.sale_id
		JOIN items i ON i.id = l.item_id
		WHERE s.state <> 'Voided' AND s.date >= $1 AND s.date < $2
		GROUP BY l.item_id, i.name
		ORDER BY l.item_id`, from, to)
	if err != nil {
		return nil, mapError("sales by item", err)
	}
	defer rows.Close()
	var out []repository.ItemSales
	for rows.Next() {
		var s repository.ItemSales
		if err := rows.Scan(&s.ItemID, &s.ItemName, &s.Quantity, &s.Total); err != nil {
			return nil, fmt.Errorf("scan item sales: %w", err)
		}
		out = append(out, s)
	}
	return out, mapError("sales by item", rows.Err())
}
