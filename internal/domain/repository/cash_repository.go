package repository

import (
	"context"

	"github.com/jhoicas/clinica-api/internal/domain/entity"
)

// CashRepository puerto de persistencia de caja chica.
type CashRepository interface {
	CreateSession(ctx context.Context, s *entity.CashSession) error
	GetSession(ctx context.Context, id int64) (*entity.CashSession, error)
	GetSessionForUpdate(ctx context.Context, id int64) (*entity.CashSession, error)
	// GetOpenSession sesión abierta (a lo sumo una), sin bloqueo; nil si no hay.
	GetOpenSession(ctx context.Context) (*entity.CashSession, error)
	// GetOpenSessionForUpdate sesión abierta (a lo sumo una), bloqueada; nil si no hay.
	GetOpenSessionForUpdate(ctx context.Context) (*entity.CashSession, error)
	UpdateSession(ctx context.Context, s *entity.CashSession) error

	CreateMovement(ctx context.Context, m *entity.CashMovement) error
	ListMovements(ctx context.Context, sessionID int64) ([]*entity.CashMovement, error)
	// PurchasePaid indica si ya existe un PurchasePayment para la compra.
	PurchasePaid(ctx context.Context, purchaseID int64) (bool, error)
}
