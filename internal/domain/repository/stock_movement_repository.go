package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/clinica-api/internal/domain/entity"
)

// StockMovementRepository puerto del ledger de stock (solo inserción).
type StockMovementRepository interface {
	Create(ctx context.Context, m *entity.StockMovement) error
	GetByID(ctx context.Context, id int64) (*entity.StockMovement, error)
	// ListByOrigin movimientos originados por un documento, en orden de id.
	ListByOrigin(ctx context.Context, module string, originID int64) ([]*entity.StockMovement, error)
	// ReversedIDs ids de movimientos que ya tienen compensación (reversal_of) entre los dados.
	ReversedIDs(ctx context.Context, ids []int64) (map[int64]bool, error)
	// OnHand Σ cantidades con signo de un ítem con occurred_at <= asOf.
	OnHand(ctx context.Context, itemID int64, asOf time.Time) (decimal.Decimal, error)
	// OnHandBefore saldo de todos los ítems con occurred_at < before.
	OnHandBefore(ctx context.Context, before time.Time) (map[int64]decimal.Decimal, error)
	// ListBetween movimientos con from <= occurred_at < to, en orden (occurred_at, id).
	ListBetween(ctx context.Context, from, to time.Time) ([]*entity.StockMovement, error)
	// ListByItem kardex de un ítem, más recientes primero.
	ListByItem(ctx context.Context, itemID int64, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
}
