package repository

import (
	"context"

	"github.com/jhoicas/clinica-api/internal/domain/entity"
)

// ReceiptRepository puerto de persistencia de cobros e imputaciones.
type ReceiptRepository interface {
	Create(ctx context.Context, r *entity.Receipt) error
	GetByID(ctx context.Context, id int64) (*entity.Receipt, error)
	GetForUpdate(ctx context.Context, id int64) (*entity.Receipt, error)
	Update(ctx context.Context, r *entity.Receipt) error
	ListByPatient(ctx context.Context, patientID int64) ([]*entity.Receipt, error)

	CreateImputation(ctx context.Context, imp *entity.ReceiptImputation) error
	ListImputations(ctx context.Context, receiptID int64) ([]*entity.ReceiptImputation, error)
	ListActiveImputationsBySale(ctx context.Context, saleID int64) ([]*entity.ReceiptImputation, error)
	// DeactivateImputations marca inactivas las imputaciones del cobro (se conservan para auditoría).
	DeactivateImputations(ctx context.Context, receiptID int64) error
}
