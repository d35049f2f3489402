package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/clinica-api/internal/application/audit"
	"github.com/jhoicas/clinica-api/internal/application/dto"
	"github.com/jhoicas/clinica-api/internal/application/ports"
	"github.com/jhoicas/clinica-api/internal/domain"
	"github.com/jhoicas/clinica-api/internal/domain/entity"
	"github.com/jhoicas/clinica-api/internal/domain/repository"
	"github.com/jhoicas/clinica-api/pkg/clock"
)

// Errores de validación propios del ledger.
var (
	ErrInvalidQuantity = domain.Validation("INVALID_QUANTITY", "quantity must be greater than zero")
	ErrInvalidKind     = domain.Validation("INVALID_MOVEMENT_KIND", "kind must be INGRESO or EGRESO")
	ErrInvalidMotive   = domain.Validation("INVALID_MOTIVE", "unknown movement motive")
	ErrMotiveKind      = domain.Validation("MOTIVE_KIND_MISMATCH", "motive is not compatible with movement kind")
	ErrReservedOrigin  = domain.Validation("RESERVED_ORIGIN", "purchase and sale movements are posted by their documents")
)

// farFuture cota superior para saldos "a hoy" que incluyen movimientos con fecha futura.
var farFuture = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

// PostInput movimiento a registrar. Quantity siempre positiva; Kind define el signo.
type PostInput struct {
	ItemID     int64
	Quantity   decimal.Decimal
	Kind       string
	Motive     string
	Origin     entity.OriginRef
	ReversalOf *int64
	Note       string
	OccurredAt time.Time
	// SkipUntracked convierte en no-op el post sobre un ítem que no controla stock.
	SkipUntracked bool
	// Strict rechaza el egreso que deje saldo negativo (además del modo global del ledger).
	Strict bool
}

// Ledger registra movimientos solo-inserción y deriva el stock de ellos.
type Ledger struct {
	tx     ports.TxRunner
	repo   repository.StockMovementRepository
	items  repository.ItemRepository
	audit  *audit.Recorder
	clock  clock.Clock
	strict bool
	loc    *time.Location
}

// NewLedger construye el ledger. strict rechaza egresos que dejen saldo negativo;
// loc define los límites de mes del resumen mensual.
func NewLedger(tx ports.TxRunner, repo repository.StockMovementRepository, items repository.ItemRepository, rec *audit.Recorder, c clock.Clock, strict bool, loc *time.Location) *Ledger {
	if loc == nil {
		loc = time.UTC
	}
	return &Ledger{tx: tx, repo: repo, items: items, audit: rec, clock: c, strict: strict, loc: loc}
}

// PostMovement registra un movimiento manual (ajustes) en su propia transacción.
// Devuelve nil sin error cuando SkipUntracked convierte el post en no-op.
func (l *Ledger) PostMovement(ctx context.Context, in dto.PostMovementRequest) (*dto.MovementResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	module := in.OriginModule
	if module == "" {
		module = entity.OriginManual
	}
	if module == entity.OriginPurchase || module == entity.OriginSale {
		return nil, ErrReservedOrigin
	}
	occurred := l.clock.Now()
	if in.OccurredAt != nil {
		occurred = in.OccurredAt.UTC()
	}
	ctx = audit.BeginCommand(ctx)
	var out *dto.MovementResponse
	err := l.tx.Run(ctx, func(r repository.Repos) error {
		m, err := l.PostInTx(ctx, r, PostInput{
			ItemID:        in.ItemID,
			Quantity:      in.Quantity,
			Kind:          in.Kind,
			Motive:        in.Motive,
			Origin:        entity.OriginRef{Module: module, ID: in.OriginID},
			Note:          in.Note,
			OccurredAt:    occurred,
			SkipUntracked: in.SkipUntracked,
		})
		if err != nil || m == nil {
			return err
		}
		resp := ToMovementResponse(m)
		out = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PostInTx registra un movimiento usando los repos de la transacción del llamador
// (compras y ventas postean sus movimientos dentro de su propio comando).
func (l *Ledger) PostInTx(ctx context.Context, r repository.Repos, in PostInput) (*entity.StockMovement, error) {
	if !in.Quantity.IsPositive() {
		return nil, ErrInvalidQuantity
	}
	if !entity.ValidMovementKind(in.Kind) {
		return nil, ErrInvalidKind
	}
	if !entity.ValidMotive(in.Motive) {
		return nil, ErrInvalidMotive.WithMessage("unknown movement motive %q", in.Motive)
	}
	if (in.Motive == entity.MotiveAdjustmentPlus && in.Kind != entity.MovementKindIngreso) ||
		(in.Motive == entity.MotiveAdjustmentMinus && in.Kind != entity.MovementKindEgreso) {
		return nil, ErrMotiveKind
	}

	strict := (l.strict || in.Strict) && in.Kind == entity.MovementKindEgreso
	var (
		item *entity.Item
		err  error
	)
	if strict {
		// Serializa los egresos concurrentes del mismo ítem.
		item, err = r.Items.GetForUpdate(ctx, in.ItemID)
	} else {
		item, err = r.Items.GetByID(ctx, in.ItemID)
	}
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound.WithMessage("item %d not found", in.ItemID)
	}
	if !item.GeneratesStock && in.ReversalOf == nil {
		if in.SkipUntracked {
			return nil, nil
		}
		return nil, domain.ErrItemNotStockTracked.WithMessage("item %d does not track stock", item.ID)
	}

	occurred := in.OccurredAt
	if occurred.IsZero() {
		occurred = l.clock.Now()
	}
	if strict {
		onHand, err := r.Stock.OnHand(ctx, item.ID, farFuture)
		if err != nil {
			return nil, err
		}
		if onHand.Sub(in.Quantity).IsNegative() {
			return nil, domain.ErrInsufficientStock.WithMessage("item %d: on hand %s, requested %s", item.ID, onHand, in.Quantity)
		}
	}

	m := &entity.StockMovement{
		ItemID:     item.ID,
		Quantity:   in.Quantity,
		Kind:       in.Kind,
		Motive:     in.Motive,
		Origin:     in.Origin,
		ReversalOf: in.ReversalOf,
		OccurredAt: occurred.UTC(),
		Note:       in.Note,
		CreatedBy:  audit.ActorFrom(ctx),
	}
	if err := r.Stock.Create(ctx, m); err != nil {
		return nil, err
	}
	if err := l.audit.Created(ctx, r.Audit, audit.ModuleInventory, "stock_movement", m.ID, ToMovementResponse(m)); err != nil {
		return nil, err
	}
	return m, nil
}

// ReverseOriginInTx postea un movimiento opuesto por cada movimiento original del documento
// que todavía no fue compensado. Las compensaciones conservan el origen y apuntan al original.
func (l *Ledger) ReverseOriginInTx(ctx context.Context, r repository.Repos, module string, originID int64, motive, note string) ([]*entity.StockMovement, error) {
	movs, err := r.Stock.ListByOrigin(ctx, module, originID)
	if err != nil {
		return nil, err
	}
	var originals []*entity.StockMovement
	ids := make([]int64, 0, len(movs))
	for _, m := range movs {
		if m.ReversalOf == nil {
			originals = append(originals, m)
			ids = append(ids, m.ID)
		}
	}
	if len(originals) == 0 {
		return nil, nil
	}
	reversed, err := r.Stock.ReversedIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	now := l.clock.Now()
	var out []*entity.StockMovement
	for _, m := range originals {
		if reversed[m.ID] {
			continue
		}
		kind := entity.MovementKindIngreso
		if m.Kind == entity.MovementKindIngreso {
			kind = entity.MovementKindEgreso
		}
		origID := m.ID
		origin := entity.OriginRef{Module: module, ID: &originID}
		rev, err := l.PostInTx(ctx, r, PostInput{
			ItemID:     m.ItemID,
			Quantity:   m.Quantity,
			Kind:       kind,
			Motive:     motive,
			Origin:     origin,
			ReversalOf: &origID,
			Note:       note,
			OccurredAt: now,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, rev)
	}
	return out, nil
}

// OnHand stock derivado del ítem: Σ cantidades con signo con occurred_at <= asOf (nil = ahora).
func (l *Ledger) OnHand(ctx context.Context, itemID int64, asOf *time.Time) (*dto.OnHandResponse, error) {
	item, err := l.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound.WithMessage("item %d not found", itemID)
	}
	at := l.clock.Now()
	if asOf != nil {
		at = asOf.UTC()
	}
	qty, err := l.repo.OnHand(ctx, itemID, at)
	if err != nil {
		return nil, err
	}
	return &dto.OnHandResponse{ItemID: itemID, AsOf: at, Quantity: qty}, nil
}

// ListMovements kardex del ítem, más recientes primero.
func (l *Ledger) ListMovements(ctx context.Context, itemID int64, in dto.KardexRequest) ([]dto.MovementResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	in.DefaultPage()
	item, err := l.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound.WithMessage("item %d not found", itemID)
	}
	list, err := l.repo.ListByItem(ctx, itemID, in.From, in.To, in.Limit, in.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, ToMovementResponse(m))
	}
	return out, nil
}

// ToMovementResponse mapea un movimiento a su salida.
func ToMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:           m.ID,
		ItemID:       m.ItemID,
		Quantity:     m.Quantity,
		Signed:       m.Signed(),
		Kind:         m.Kind,
		Motive:       m.Motive,
		OriginModule: m.Origin.Module,
		OriginID:     m.Origin.ID,
		ReversalOf:   m.ReversalOf,
		OccurredAt:   m.OccurredAt,
		Note:         m.Note,
	}
}
