package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/clinica-api/internal/domain/entity"
	"github.com/jhoicas/clinica-api/internal/domain/repository"
)

var _ repository.ReceiptRepository = (*ReceiptRepo)(nil)

// ReceiptRepo cobros e imputaciones (cobro_venta) sobre PostgreSQL.
type ReceiptRepo struct {
	q Querier
}

// NewReceiptRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReceiptRepository(q Querier) *ReceiptRepo {
	return &ReceiptRepo{q: q}
}

const receiptSelect = `
	SELECT id, date, patient_id, amount, method, state, observations, recorded_by, void_reason, voided_at, created_at
	FROM receipts`

func scanReceipt(row pgx.Row) (*entity.Receipt, error) {
	var rc entity.Receipt
	err := row.Scan(
		&rc.ID, &rc.Date, &rc.PatientID, &rc.Amount, &rc.Method, &rc.State, &rc.Observations,
		&rc.RecordedBy, &rc.VoidReason, &rc.VoidedAt, &rc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rc, nil
}

// Create persiste el cobro.
func (r *ReceiptRepo) Create(ctx context.Context, rc *entity.Receipt) error {
	query := `
		INSERT INTO receipts (date, patient_id, amount, method, state, observations, recorded_by,
		                      void_reason, voided_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		rc.Date, rc.PatientID, rc.Amount, rc.Method, rc.State, rc.Observations, rc.RecordedBy,
		rc.VoidReason, rc.VoidedAt, rc.CreatedAt,
	).Scan(&rc.ID)
	return mapError("insert receipt", err)
}

// GetByID obtiene un cobro por ID.
func (r *ReceiptRepo) GetByID(ctx context.Context, id int64) (*entity.Receipt, error) {
	rc, err := scanReceipt(r.q.QueryRow(ctx, receiptSelect+` WHERE id = $1`, id))
	return noRows(rc, "get receipt", err)
}

// GetForUpdate obtiene el cobro bloqueando su fila.
func (r *ReceiptRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Receipt, error) {
	rc, err := scanReceipt(r.q.QueryRow(ctx, receiptSelect+` WHERE id = $1 FOR UPDATE`, id))
	return noRows(rc, "get receipt for update", err)
}

// Update actualiza estado y datos de anulación.
func (r *ReceiptRepo) Update(ctx context.Context, rc *entity.Receipt) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE receipts SET state = $2, observations = $3, void_reason = $4, voided_at = $5
		WHERE id = $1`, rc.ID, rc.State, rc.Observations, rc.VoidReason, rc.VoidedAt)
	if err != nil {
		return mapError("update receipt", err)
	}
	return affected(tag, "receipt", rc.ID)
}

// ListByPatient cobros del paciente, más recientes primero.
func (r *ReceiptRepo) ListByPatient(ctx context.Context, patientID int64) ([]*entity.Receipt, error) {
	rows, err := r.q.Query(ctx, receiptSelect+` WHERE patient_id = $1 ORDER BY date DESC, id DESC`, patientID)
	if err != nil {
		return nil, mapError("list receipts", err)
	}
	defer rows.Close()
	var list []*entity.Receipt
	for rows.Next() {
		rc, err := scanReceipt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan receipt: %w", err)
		}
		list = append(list, rc)
	}
	return list, mapError("list receipts", rows.Err())
}

// CreateImputation persiste una imputación cobro → venta.
func (r *ReceiptRepo) CreateImputation(ctx context.Context, imp *entity.ReceiptImputation) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO receipt_imputations (receipt_id, sale_id, amount, active) VALUES ($1, $2, $3, $4)`,
		imp.ReceiptID, imp.SaleID, imp.Amount, imp.Active)
	return mapError("insert receipt imputation", err)
}

func (r *ReceiptRepo) imputations(ctx context.Context, op, where string, arg int64) ([]*entity.ReceiptImputation, error) {
	rows, err := r.q.Query(ctx, `
		SELECT receipt_id, sale_id, amount, active FROM receipt_imputations
		WHERE `+where+` ORDER BY receipt_id, sale_id`, arg)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()
	var list []*entity.ReceiptImputation
	for rows.Next() {
		var imp entity.ReceiptImputation
		if err := rows.Scan(&imp.ReceiptID, &imp.SaleID, &imp.Amount, &imp.Active); err != nil {
			return nil, fmt.Errorf("scan imputation: %w", err)
		}
		list = append(list, &imp)
	}
	return list, mapError(op, rows.Err())
}

// ListImputations imputaciones del cobro (activas o no).
func (r *ReceiptRepo) ListImputations(ctx context.Context, receiptID int64) ([]*entity.ReceiptImputation, error) {
	return r.imputations(ctx, "list imputations", "receipt_id = $1", receiptID)
}

// ListActiveImputationsBySale imputaciones activas que pesan sobre la venta.
func (r *ReceiptRepo) ListActiveImputationsBySale(ctx context.Context, saleID int64) ([]*entity.ReceiptImputation, error) {
	return r.imputations(ctx, "list sale imputations", "sale_id = $1 AND active", saleID)
}

// DeactivateImputations marca inactivas las imputaciones del cobro.
func (r *ReceiptRepo) DeactivateImputations(ctx context.Context, receiptID int64) error {
	_, err := r.q.Exec(ctx, `UPDATE receipt_imputations SET active = FALSE WHERE receipt_id = $1`, receiptID)
	return mapError("deactivate imputations", err)
}
