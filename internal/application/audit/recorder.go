// Package audit registra las mutaciones del motor y permite consultarlas.
package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/clinica-api/internal/domain/entity"
	"github.com/jhoicas/clinica-api/internal/domain/repository"
	"github.com/jhoicas/clinica-api/pkg/clock"
)

// Módulos que emiten auditoría.
const (
	ModuleCatalog   = "catalog"
	ModuleInventory = "inventory"
	ModulePurchases = "purchases"
	ModuleSales     = "sales"
	ModulePlans     = "plans"
	ModuleAgenda    = "agenda"
	ModuleReceipts  = "receipts"
	ModuleCash      = "pettycash"
	ModuleAccounts  = "accounts"
	ModuleUsers     = "users"
)

type ctxKey int

const (
	actorKey ctxKey = iota
	commandKey
)

// WithActor asocia al contexto el usuario que ejecuta el comando.
func WithActor(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, actorKey, userID)
}

// ActorFrom devuelve el usuario del contexto, nil si el comando es anónimo (seed, tests).
func ActorFrom(ctx context.Context) *int64 {
	if id, ok := ctx.Value(actorKey).(int64); ok {
		return &id
	}
	return nil
}

// BeginCommand marca el contexto con un id de comando si aún no lo tiene.
// Todas las entradas que registra un comando comparten ese id.
func BeginCommand(ctx context.Context) context.Context {
	if _, ok := ctx.Value(commandKey).(string); ok {
		return ctx
	}
	return context.WithValue(ctx, commandKey, uuid.NewString())
}

// CommandID id de comando del contexto ("" si no hay).
func CommandID(ctx context.Context) string {
	s, _ := ctx.Value(commandKey).(string)
	return s
}

// Recorder escribe entradas de auditoría en la misma transacción que la mutación.
type Recorder struct {
	clock clock.Clock
}

// NewRecorder construye el recorder.
func NewRecorder(c clock.Clock) *Recorder {
	return &Recorder{clock: c}
}

// Record persiste una entrada con snapshots antes/después serializados a JSON.
// before o after pueden ser nil (Create no tiene antes, Delete no tiene después).
func (r *Recorder) Record(ctx context.Context, repo repository.AuditRepository, module, action, entityName string, entityID int64, before, after interface{}) error {
	b, err := snapshot(before)
	if err != nil {
		return fmt.Errorf("audit before %s/%d: %w", entityName, entityID, err)
	}
	a, err := snapshot(after)
	if err != nil {
		return fmt.Errorf("audit after %s/%d: %w", entityName, entityID, err)
	}
	cmd := CommandID(ctx)
	if cmd == "" {
		cmd = uuid.NewString()
	}
	return repo.Create(ctx, &entity.AuditEntry{
		CommandID:  cmd,
		OccurredAt: r.clock.Now(),
		UserID:     ActorFrom(ctx),
		Module:     module,
		Action:     action,
		Entity:     entityName,
		EntityID:   entityID,
		Before:     b,
		After:      a,
	})
}

// Created atajo para Record(..., AuditCreate, nil, after).
func (r *Recorder) Created(ctx context.Context, repo repository.AuditRepository, module, entityName string, id int64, after interface{}) error {
	return r.Record(ctx, repo, module, entity.AuditCreate, entityName, id, nil, after)
}

// Updated atajo para Record(..., AuditUpdate, before, after).
func (r *Recorder) Updated(ctx context.Context, repo repository.AuditRepository, module, entityName string, id int64, before, after interface{}) error {
	return r.Record(ctx, repo, module, entity.AuditUpdate, entityName, id, before, after)
}

// Deleted atajo para Record(..., AuditDelete, before, nil).
func (r *Recorder) Deleted(ctx context.Context, repo repository.AuditRepository, module, entityName string, id int64, before interface{}) error {
	return r.Record(ctx, repo, module, entity.AuditDelete, entityName, id, before, nil)
}

// snapshot serializa v; decimal.Decimal sale como string y time.Time como RFC 3339.
func snapshot(v interface{}) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(b) == "null" {
		return nil, nil
	}
	return b, nil
}
