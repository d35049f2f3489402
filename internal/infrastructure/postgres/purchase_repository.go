package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/clinica-api/internal/domain/entity"
	"github.com/jhoicas/clinica-api/internal/domain/repository"
)

var _ repository.PurchaseRepository = (*PurchaseRepo)(nil)

// PurchaseRepo compras y sus líneas sobre PostgreSQL.
type PurchaseRepo struct {
	q Querier
}

// NewPurchaseRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseRepository(q Querier) *PurchaseRepo {
	return &PurchaseRepo{q: q}
}

const purchaseSelect = `
	SELECT id, supplier_id, date, voucher_type, voucher_number, condition, total, voided, void_reason,
	       voided_at, observations, created_by, created_at
	FROM purchases`

func scanPurchase(row pgx.Row) (*entity.Purchase, error) {
	var p entity.Purchase
	err := row.Scan(
		&p.ID, &p.SupplierID, &p.Date, &p.VoucherType, &p.VoucherNumber, &p.Condition, &p.Total, &p.Voided,
		&p.VoidReason, &p.VoidedAt, &p.Observations, &p.CreatedBy, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste la cabecera de la compra.
func (r *PurchaseRepo) Create(ctx context.Context, p *entity.Purchase) error {
	query := `
		INSERT INTO purchases (supplier_id, date, voucher_type, voucher_number, condition, total, voided,
		                       void_reason, voided_at, observations, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		p.SupplierID, p.Date, p.VoucherType, p.VoucherNumber, p.Condition, p.Total, p.Voided,
		p.VoidReason, p.VoidedAt, p.Observations, p.CreatedBy, p.CreatedAt,
	).Scan(&p.ID)
	return mapError("insert purchase", err)
}

// CreateLine persiste una línea de compra.
func (r *PurchaseRepo) CreateLine(ctx context.Context, l *entity.PurchaseLine) error {
	query := `
		INSERT INTO purchase_lines (purchase_id, item_id, quantity, unit_price, iva, lot, expiry)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		l.PurchaseID, l.ItemID, l.Quantity, l.UnitPrice, l.IVA, l.Lot, l.Expiry,
	).Scan(&l.ID)
	return mapError("insert purchase line", err)
}

// GetByID obtiene una compra por ID.
func (r *PurchaseRepo) GetByID(ctx context.Context, id int64) (*entity.Purchase, error) {
	p, err := scanPurchase(r.q.QueryRow(ctx, purchaseSelect+` WHERE id = $1`, id))
	return noRows(p, "get purchase", err)
}

// GetForUpdate obtiene la compra bloqueando su fila.
func (r *PurchaseRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Purchase, error) {
	p, err := scanPurchase(r.q.QueryRow(ctx, purchaseSelect+` WHERE id = $1 FOR UPDATE`, id))
	return noRows(p, "get purchase for update", err)
}

// Update actualiza total y datos de anulación.
func (r *PurchaseRepo) Update(ctx context.Context, p *entity.Purchase) error {
	query := `
		UPDATE purchases SET total = $2, voided = $3, void_reason = $4, voided_at = $5, observations = $6
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, p.ID, p.Total, p.Voided, p.VoidReason, p.VoidedAt, p.Observations)
	if err != nil {
		return mapError("update purchase", err)
	}
	return affected(tag, "purchase", p.ID)
}

// GetLines líneas de la compra en orden de id.
func (r *PurchaseRepo) GetLines(ctx context.Context, purchaseID int64) ([]*entity.PurchaseLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, purchase_id, item_id, quantity, unit_price, iva, lot, expiry
		FROM purchase_lines WHERE purchase_id = $1 ORDER BY id`, purchaseID)
	if err != nil {
		return nil, mapError("get purchase lines", err)
	}
	defer rows.Close()
	var lines []*entity.PurchaseLine
	for rows.Next() {
		var l entity.PurchaseLine
		if err := rows.Scan(&l.ID, &l.PurchaseID, &l.ItemID, &l.Quantity, &l.UnitPrice, &l.IVA, &l.Lot, &l.Expiry); err != nil {
			return nil, fmt.Errorf("scan purchase line: %w", err)
		}
		lines = append(lines, &l)
	}
	return lines, mapError("get purchase lines", rows.Err())
}

// List compras más recientes primero.
func (r *PurchaseRepo) List(ctx context.Context, f repository.PurchaseFilter) ([]*entity.Purchase, error) {
	query := purchaseSelect + `
		WHERE ($1::bigint IS NULL OR supplier_id = $1)
		  AND ($2::timestamptz IS NULL OR date >= $2)
		  AND ($3::timestamptz IS NULL OR date < $3)
		ORDER BY date DESC, id DESC
		LIMIT $4 OFFSET $5`
	rows, err := r.q.Query(ctx, query, f.SupplierID, f.From, f.To, limitArg(f.Limit), f.Offset)
	if err != nil {
		return nil, mapError("list purchases", err)
	}
	defer rows.Close()
	var list []*entity.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		list = append(list, p)
	}
	return list, mapError("list purchases", rows.Err())
}
