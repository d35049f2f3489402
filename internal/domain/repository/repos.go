package repository

// Repos agrupa los puertos atados a una misma conexión o transacción.
type Repos struct {
	Items        ItemRepository
	Stock        StockMovementRepository
	Purchases    PurchaseRepository
	Sales        SaleRepository
	Plans        SessionPlanRepository
	Appointments AppointmentRepository
	Receipts     ReceiptRepository
	Cash         CashRepository
	Audit        AuditRepository
	Accounts     AccountRepository
	Users        UserRepository
	Reports      ReportRepository
}
