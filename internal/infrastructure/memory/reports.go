package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/clinica-api/internal/domain/entity"
	"github.com/jhoicas/clinica-api/internal/domain/repository"
)

// reportRepo calcula en memoria lo mismo que las vistas vw_* del esquema PostgreSQL.
type reportRepo struct{ *base }

func (r *reportRepo) PatientBalances(_ context.Context, onlyWithDebt bool) ([]repository.PatientBalance, error) {
	var out []repository.PatientBalance
	err := r.read(func(st *state) error {
		agg := make(map[int64]*repository.PatientBalance)
		for _, s := range st.sales.all() {
			if s.State == entity.SaleStateVoided {
				continue
			}
			b, ok := agg[s.PatientID]
			if !ok {
				name := ""
				if p := st.patients.get(s.PatientID); p != nil {
					name = p.FullName()
				}
				b = &repository.PatientBalance{PatientID: s.PatientID, PatientName: name}
				agg[s.PatientID] = b
			}
			b.SalesCount++
			b.TotalSold = b.TotalSold.Add(s.Total)
			b.Balance = b.Balance.Add(s.Balance)
		}
		for _, b := range agg {
			b.TotalPaid = b.TotalSold.Sub(b.Balance)
			if onlyWithDebt && !b.Balance.IsPositive() {
				continue
			}
			out = append(out, *b)
		}
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].PatientName != out[j].PatientName {
				return out[i].PatientName < out[j].PatientName
			}
			return out[i].PatientID < out[j].PatientID
		})
		return nil
	})
	return out, err
}

func (r *reportRepo) PatientBalanceDetail(_ context.Context, patientID int64) ([]repository.PatientBalanceDetail, error) {
	var out []repository.PatientBalanceDetail
	err := r.read(func(st *state) error {
		for _, s := range st.sales.all() {
			if s.PatientID != patientID || s.State == entity.SaleStateVoided {
				continue
			}
			out = append(out, repository.PatientBalanceDetail{
				PatientID: s.PatientID,
				SaleID:    s.ID,
				Date:      s.Date,
				Total:     s.Total,
				Paid:      s.Total.Sub(s.Balance),
				Balance:   s.Balance,
				State:     s.State,
			})
		}
		sort.SliceStable(out, func(i, j int) bool {
			if !out[i].Date.Equal(out[j].Date) {
				return out[i].Date.Before(out[j].Date)
			}
			return out[i].SaleID < out[j].SaleID
		})
		return nil
	})
	return out, err
}

var historyOrder = map[string]int{
	repository.HistorySale:        0,
	repository.HistoryReceipt:     1,
	repository.HistoryAppointment: 2,
	repository.HistorySession:     3,
}

func (r *reportRepo) PatientHistory(_ context.Context, patientID int64) ([]repository.PatientHistoryEntry, error) {
	var out []repository.PatientHistoryEntry
	err := r.read(func(st *state) error {
		for _, s := range st.sales.all() {
			if s.PatientID != patientID {
				continue
			}
			total := s.Total
			out = append(out, repository.PatientHistoryEntry{
				PatientID: patientID, OccurredAt: s.Date, Kind: repository.HistorySale, RefID: s.ID,
				Description: fmt.Sprintf("Venta #%d", s.ID), Amount: &total, State: s.State,
			})
		}
		for _, rc := range st.receipts.all() {
			if rc.PatientID != patientID {
				continue
			}
			amount := rc.Amount
			out = append(out, repository.PatientHistoryEntry{
				PatientID: patientID, OccurredAt: rc.Date, Kind: repository.HistoryReceipt, RefID: rc.ID,
				Description: fmt.Sprintf("Cobro #%d (%s)", rc.ID, rc.Method), Amount: &amount, State: rc.State,
			})
		}
		for _, a := range st.appointments.all() {
			if a.PatientID != patientID {
				continue
			}
			out = append(out, repository.PatientHistoryEntry{
				PatientID: patientID, OccurredAt: a.Start, Kind: repository.HistoryAppointment, RefID: a.ID,
				Description: fmt.Sprintf("Turno #%d", a.ID), State: a.State,
			})
		}
		for _, s := range st.sessions.all() {
			p := st.plans.get(s.PlanID)
			if p == nil || p.PatientID != patientID || s.State != entity.SessionStateCompleted || s.ActualAt == nil {
				continue
			}
			out = append(out, repository.PatientHistoryEntry{
				PatientID: patientID, OccurredAt: *s.ActualAt, Kind: repository.HistorySession, RefID: s.ID,
				Description: fmt.Sprintf("Sesión %d/%d del plan #%d", s.Number, p.TotalSessions, p.ID), State: s.State,
			})
		}
		sort.SliceStable(out, func(i, j int) bool {
			if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
				return out[i].OccurredAt.Before(out[j].OccurredAt)
			}
			if out[i].Kind != out[j].Kind {
				return historyOrder[out[i].Kind] < historyOrder[out[j].Kind]
			}
			return out[i].RefID < out[j].RefID
		})
		return nil
	})
	return out, err
}

func day(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

func (r *reportRepo) ProfessionalProduction(_ context.Context, from, to time.Time) ([]repository.ProfessionalProduction, error) {
	var out []repository.ProfessionalProduction
	err := r.read(func(st *state) error {
		type key struct {
			prof int64
			day  time.Time
		}
		agg := make(map[key]*repository.ProfessionalProduction)
		row := func(prof int64, d time.Time) *repository.ProfessionalProduction {
			k := key{prof, d}
			if p, ok := agg[k]; ok {
				return p
			}
			name := ""
			if p := st.professionals.get(prof); p != nil {
				name = p.Name
			}
			p := &repository.ProfessionalProduction{ProfessionalID: prof, ProfessionalName: name, Day: d}
			agg[k] = p
			return p
		}
		for _, s := range st.sales.all() {
			if s.ProfessionalID == nil || s.State == entity.SaleStateVoided || !inRange(s.Date, from, to) {
				continue
			}
			p := row(*s.ProfessionalID, day(s.Date))
			p.SalesCount++
			p.SalesTotal = p.SalesTotal.Add(s.Total)
		}
		for _, s := range st.sessions.all() {
			if s.State != entity.SessionStateCompleted || s.ProfessionalID == nil || s.ActualAt == nil || !inRange(*s.ActualAt, from, to) {
				continue
			}
			row(*s.ProfessionalID, day(*s.ActualAt)).CompletedSessions++
		}
		for _, p := range agg {
			out = append(out, *p)
		}
		sort.SliceStable(out, func(i, j int) bool {
			if !out[i].Day.Equal(out[j].Day) {
				return out[i].Day.Before(out[j].Day)
			}
			return out[i].ProfessionalID < out[j].ProfessionalID
		})
		return nil
	})
	return out, err
}

func (r *reportRepo) SalesByItem(_ context.Context, from, to time.Time) ([]repository.ItemSales, error) {
	var out []repository.ItemSales
	err := r.read(func(st *state) error {
		agg := make(map[int64]*repository.ItemSales)
		for _, l := range st.saleLines.all() {
			s := st.sales.get(l.SaleID)
			if s == nil || s.State == entity.SaleStateVoided || !inRange(s.Date, from, to) {
				continue
			}
			row, ok := agg[l.ItemID]
			if !ok {
				name := ""
				if it := st.items.get(l.ItemID); it != nil {
					name = it.Name
				}
				row = &repository.ItemSales{ItemID: l.ItemID, ItemName: name, Quantity: decimal.Zero, Total: decimal.Zero}
				agg[l.ItemID] = row
			}
			row.Quantity = row.Quantity.Add(l.Quantity)
			row.Total = row.Total.Add(l.Subtotal)
		}
		for _, row := range agg {
			out = append(out, *row)
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
		return nil
	})
	return out, err
}
