package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PatientBalanceResponse saldo agregado por paciente.
type PatientBalanceResponse struct {
	PatientID   int64           `json:"patient_id"`
	PatientName string          `json:"patient_name"`
	SalesCount  int             `json:"sales_count"`
	TotalSold   decimal.Decimal `json:"total_sold"`
	TotalPaid   decimal.Decimal `json:"total_paid"`
	Balance     decimal.Decimal `json:"balance"`
}

// PatientBalanceDetailResponse saldo de una venta del paciente.
type PatientBalanceDetailResponse struct {
	SaleID  int64           `json:"sale_id"`
	Date    time.Time       `json:"date"`
	Total   decimal.Decimal `json:"total"`
	Paid    decimal.Decimal `json:"paid"`
	Balance decimal.Decimal `json:"balance"`
	State   string          `json:"state"`
}

// PatientHistoryResponse evento del historial de un paciente.
type PatientHistoryResponse struct {
	OccurredAt  time.Time        `json:"occurred_at"`
	Kind        string           `json:"kind"`
	RefID       int64            `json:"ref_id"`
	Description string           `json:"description"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	State       string           `json:"state"`
}

// ProfessionalProductionResponse producción diaria de un profesional.
type ProfessionalProductionResponse struct {
	ProfessionalID    int64           `json:"professional_id"`
	ProfessionalName  string          `json:"professional_name"`
	Day               time.Time       `json:"day"`
	SalesCount        int             `json:"sales_count"`
	SalesTotal        decimal.Decimal `json:"sales_total"`
	CompletedSessions int             `json:"completed_sessions"`
}

// ItemSalesResponse ventas por ítem; Rank ordena por monto.
type ItemSalesResponse struct {
	Rank     int             `json:"rank"`
	ItemID   int64           `json:"item_id"`
	ItemName string          `json:"item_name"`
	Quantity decimal.Decimal `json:"quantity"`
	Total    decimal.Decimal `json:"total"`
}

// PatientReceiptsResponse cobros de un paciente (cobros por cliente).
type PatientReceiptsResponse struct {
	PatientID int64             `json:"patient_id"`
	Total     decimal.Decimal   `json:"total"`
	Receipts  []ReceiptResponse `json:"receipts"`
}

// DashboardResponse resumen del día y del mes en curso.
type DashboardResponse struct {
	TodaySales decimal.Decimal     `json:"today_sales"`
	MonthSales decimal.Decimal     `json:"month_sales"`
	TotalDebt  decimal.Decimal     `json:"total_debt"`
	TopItems   []ItemSalesResponse `json:"top_items"`
	DateLabel  string              `json:"date_label"`
}
