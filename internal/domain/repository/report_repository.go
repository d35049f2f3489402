package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PatientBalance fila de vw_saldo_cliente_resumen.
type PatientBalance struct {
	PatientID   int64
	PatientName string
	SalesCount  int
	TotalSold   decimal.Decimal
	TotalPaid   decimal.Decimal
	Balance     decimal.Decimal
}

// PatientBalanceDetail fila de vw_saldo_cliente_detalle (una por venta no anulada).
type PatientBalanceDetail struct {
	PatientID int64
	SaleID    int64
	Date      time.Time
	Total     decimal.Decimal
	Paid      decimal.Decimal
	Balance   decimal.Decimal
	State     string
}

// Tipos de evento del historial de paciente.
const (
	HistorySale        = "sale"
	HistoryReceipt     = "receipt"
	HistoryAppointment = "appointment"
	HistorySession     = "session"
)

// PatientHistoryEntry fila de vw_historial_paciente.
type PatientHistoryEntry struct {
	PatientID   int64
	OccurredAt  time.Time
	Kind        string
	RefID       int64
	Description string
	Amount      *decimal.Decimal
	State       string
}

// ProfessionalProduction fila de vw_produccion_prof_dia.
type ProfessionalProduction struct {
	ProfessionalID    int64
	ProfessionalName  string
	Day               time.Time
	SalesCount        int
	SalesTotal        decimal.Decimal
	CompletedSessions int
}

// ItemSales ventas agregadas por ítem (ventas no anuladas).
type ItemSales struct {
	ItemID   int64
	ItemName string
	Quantity decimal.Decimal
	Total    decimal.Decimal
}

// ReportRepository proyecciones de solo lectura sobre el resto del motor.
type ReportRepository interface {
	PatientBalances(ctx context.Context, onlyWithDebt bool) ([]PatientBalance, error)
	PatientBalanceDetail(ctx context.Context, patientID int64) ([]PatientBalanceDetail, error)
	PatientHistory(ctx context.Context, patientID int64) ([]PatientHistoryEntry, error)
	ProfessionalProduction(ctx context.Context, from, to time.Time) ([]ProfessionalProduction, error)
	SalesByItem(ctx context.Context, from, to time.Time) ([]ItemSales, error)
}
