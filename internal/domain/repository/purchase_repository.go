package repository

import (
	"context"
	"time"

	"github.com/jhoicas/clinica-api/internal/domain/entity"
)

// PurchaseFilter filtros de listado de compras.
type PurchaseFilter struct {
	SupplierID *int64
	From, To   *time.Time
	Limit      int
	Offset     int
}

// PurchaseRepository puerto de persistencia de compras y sus líneas.
type PurchaseRepository interface {
	Create(ctx context.Context, p *entity.Purchase) error
	CreateLine(ctx context.Context, l *entity.PurchaseLine) error
	GetByID(ctx context.Context, id int64) (*entity.Purchase, error)
	GetForUpdate(ctx context.Context, id int64) (*entity.Purchase, error)
	Update(ctx context.Context, p *entity.Purchase) error
	GetLines(ctx context.Context, purchaseID int64) ([]*entity.PurchaseLine, error)
	List(ctx context.Context, f PurchaseFilter) ([]*entity.Purchase, error)
}
