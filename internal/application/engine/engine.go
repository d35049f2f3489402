// Package engine arma el motor de la clínica: todos los casos de uso sobre un mismo
// TxRunner y un mismo conjunto de repositorios (PostgreSQL o memoria).
package engine

import (
	"time"

	"github.com/jhoicas/clinica-api/internal/application/accounts"
	"github.com/jhoicas/clinica-api/internal/application/agenda"
	"github.com/jhoicas/clinica-api/internal/application/audit"
	"github.com/jhoicas/clinica-api/internal/application/auth"
	"github.com/jhoicas/clinica-api/internal/application/catalog"
	"github.com/jhoicas/clinica-api/internal/application/inventory"
	"github.com/jhoicas/clinica-api/internal/application/pettycash"
	"github.com/jhoicas/clinica-api/internal/application/plans"
	"github.com/jhoicas/clinica-api/internal/application/ports"
	"github.com/jhoicas/clinica-api/internal/application/purchasing"
	"github.com/jhoicas/clinica-api/internal/application/receipts"
	"github.com/jhoicas/clinica-api/internal/application/reporting"
	"github.com/jhoicas/clinica-api/internal/application/sales"
	"github.com/jhoicas/clinica-api/internal/domain/repository"
	"github.com/jhoicas/clinica-api/pkg/clock"
)

// Options parámetros del motor que vienen de la configuración.
type Options struct {
	Clock       clock.Clock
	Location    *time.Location
	StrictStock bool
	BcryptCost  int
	JWT         auth.JWTConfig
}

// Engine agrupa los casos de uso. Los repos no transaccionales se usan solo para lecturas.
type Engine struct {
	Catalog   *catalog.UseCase
	Stock     *inventory.Ledger
	Purchases *purchasing.UseCase
	Sales     *sales.UseCase
	Plans     *plans.UseCase
	Agenda    *agenda.UseCase
	Receipts  *receipts.UseCase
	PettyCash *pettycash.UseCase
	Accounts  *accounts.UseCase
	Auth      *auth.UseCase
	Audit     *audit.UseCase
	Reports   *reporting.UseCase
	Linker    *plans.Linker
	Recorder  *audit.Recorder
}

// New construye el motor.
func New(tx ports.TxRunner, r repository.Repos, opt Options) *Engine {
	c := opt.Clock
	if c == nil {
		c = clock.System{}
	}
	loc := opt.Location
	if loc == nil {
		loc = time.UTC
	}
	rec := audit.NewRecorder(c)
	linker := plans.NewLinker(rec, c)
	ledger := inventory.NewLedger(tx, r.Stock, r.Items, rec, c, opt.StrictStock, loc)
	rc := receipts.NewUseCase(tx, r.Receipts, rec, c)

	return &Engine{
		Catalog:   catalog.NewUseCase(tx, r.Items, rec, c),
		Stock:     ledger,
		Purchases: purchasing.NewUseCase(tx, r.Purchases, ledger, rec, c),
		Sales:     sales.NewUseCase(tx, r.Sales, r.Plans, ledger, linker, rec, c),
		Plans:     plans.NewUseCase(tx, r.Plans, linker, c),
		Agenda:    agenda.NewUseCase(tx, r.Appointments, linker, rec, c),
		Receipts:  rc,
		PettyCash: pettycash.NewUseCase(tx, r.Cash, rec, c),
		Accounts:  accounts.NewUseCase(tx, r.Accounts, rec, c),
		Auth:      auth.NewUseCase(tx, r.Users, rec, c, opt.JWT, opt.BcryptCost),
		Audit:     audit.NewUseCase(r.Audit),
		Reports:   reporting.NewUseCase(r.Reports, rc, ledger, c, loc),
		Linker:    linker,
		Recorder:  rec,
	}
}
