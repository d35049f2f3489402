package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/clinica-api/internal/application/ports"
	"github.com/jhoicas/clinica-api/internal/domain/repository"
)

var _ ports.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(repos repository.Repos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return mapError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	if err := fn(NewRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return mapError("commit transaction", err)
	}
	return nil
}

// NewRepos construye el juego completo de repositorios sobre un pool o una tx.
func NewRepos(q Querier) repository.Repos {
	return repository.Repos{
		Items:        NewItemRepository(q),
		Stock:        NewStockMovementRepository(q),
		Purchases:    NewPurchaseRepository(q),
		Sales:        NewSaleRepository(q),
		Plans:        NewSessionPlanRepository(q),
		Appointments: NewAppointmentRepository(q),
		Receipts:     NewReceiptRepository(q),
		Cash:         NewCashRepository(q),
		Audit:        NewAuditRepository(q),
		Accounts:     NewAccountRepository(q),
		Users:        NewUserRepository(q),
		Reports:      NewReportRepository(q),
	}
}
