package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/clinica-api/internal/domain/entity"
	"github.com/jhoicas/clinica-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo ventas y sus líneas sobre PostgreSQL.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

const saleSelect = `
	SELECT id, date, patient_id, professional_id, clinic_id, total, balance, state, invoice_number,
	       observations, void_reason, voided_at, created_by, created_at, updated_at
	FROM sales`

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	err := row.Scan(
		&s.ID, &s.Date, &s.PatientID, &s.ProfessionalID, &s.ClinicID, &s.Total, &s.Balance, &s.State,
		&s.InvoiceNumber, &s.Observations, &s.VoidReason, &s.VoidedAt, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SaleRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.Sale, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()
	var list []*entity.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, s)
	}
	return list, mapError(op, rows.Err())
}

// Create persiste la cabecera de la venta.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	query := `
		INSERT INTO sales (date, patient_id, professional_id, clinic_id, total, balance, state, invoice_number,
		                   observations, void_reason, voided_at, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		s.Date, s.PatientID, s.ProfessionalID, s.ClinicID, s.Total, s.Balance, s.State, s.InvoiceNumber,
		s.Observations, s.VoidReason, s.VoidedAt, s.CreatedBy, s.CreatedAt, s.UpdatedAt,
	).Scan(&s.ID)
	return mapError("insert sale", err)
}

// CreateLine persiste una línea de venta.
func (r *SaleRepo) CreateLine(ctx context.Context, l *entity.SaleLine) error {
	query := `
		INSERT INTO sale_lines (sale_id, item_id, quantity, unit_price, discount, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		l.SaleID, l.ItemID, l.Quantity, l.UnitPrice, l.Discount, l.Subtotal,
	).Scan(&l.ID)
	return mapError("insert sale line", err)
}

// GetByID obtiene una venta por ID.
func (r *SaleRepo) GetByID(ctx context.Context, id int64) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRow(ctx, saleSelect+` WHERE id = $1`, id))
	return noRows(s, "get sale", err)
}

// GetForUpdate obtiene la venta bloqueando su fila.
func (r *SaleRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRow(ctx, saleSelect+` WHERE id = $1 FOR UPDATE`, id))
	return noRows(s, "get sale for update", err)
}

// Update actualiza saldo, estado y datos de anulación. El CHECK sales_balance_range
// rechaza saldos fuera de [0, total].
func (r *SaleRepo) Update(ctx context.Context, s *entity.Sale) error {
	query := `
		UPDATE sales SET total = $2, balance = $3, state = $4, invoice_number = $5, observations = $6,
		       void_reason = $7, voided_at = $8, updated_at = $9
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		s.ID, s.Total, s.Balance, s.State, s.InvoiceNumber, s.Observations, s.VoidReason, s.VoidedAt, s.UpdatedAt,
	)
	if err != nil {
		return mapError("update sale", err)
	}
	return affected(tag, "sale", s.ID)
}

// GetLines líneas de la venta en orden de id.
func (r *SaleRepo) GetLines(ctx context.Context, saleID int64) ([]*entity.SaleLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, sale_id, item_id, quantity, unit_price, discount, subtotal
		FROM sale_lines WHERE sale_id = $1 ORDER BY id`, saleID)
	if err != nil {
		return nil, mapError("get sale lines", err)
	}
	defer rows.Close()
	var lines []*entity.SaleLine
	for rows.Next() {
		var l entity.SaleLine
		if err := rows.Scan(&l.ID, &l.SaleID, &l.ItemID, &l.Quantity, &l.UnitPrice, &l.Discount, &l.Subtotal); err != nil {
			return nil, fmt.Errorf("scan sale line: %w", err)
		}
		lines = append(lines, &l)
	}
	return lines, mapError("get sale lines", rows.Err())
}

// ListOutstandingForUpdate ventas con deuda del paciente bloqueadas en orden de id, el mismo
// orden que usan la imputación explícita y la anulación de cobros.
func (r *SaleRepo) ListOutstandingForUpdate(ctx context.Context, patientID int64) ([]*entity.Sale, error) {
	return r.list(ctx, "list outstanding sales", saleSelect+`
		WHERE patient_id = $1 AND state = 'Confirmed' AND balance > 0
		ORDER BY id
		FOR UPDATE`, patientID)
}

// List ventas más recientes primero.
func (r *SaleRepo) List(ctx context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	return r.list(ctx, "list sales", saleSelect+`
		WHERE ($1::bigint IS NULL OR patient_id = $1)
		  AND ($2 = '' OR state = $2)
		  AND ($3::timestamptz IS NULL OR date >= $3)
		  AND ($4::timestamptz IS NULL OR date < $4)
		ORDER BY date DESC, id DESC
		LIMIT $5 OFFSET $6`, f.PatientID, f.State, f.From, f.To, limitArg(f.Limit), f.Offset)
}
