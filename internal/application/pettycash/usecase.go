package pettycash

import (
	"context"

	"github.com/jhoicas/clinica-api/internal/application/audit"
	"github.com/jhoicas/clinica-api/internal/application/dto"
	"github.com/jhoicas/clinica-api/internal/application/ports"
	"github.com/jhoicas/clinica-api/internal/domain"
	"github.com/jhoicas/clinica-api/internal/domain/cash"
	"github.com/jhoicas/clinica-api/internal/domain/entity"
	"github.com/jhoicas/clinica-api/internal/domain/repository"
	"github.com/jhoicas/clinica-api/pkg/clock"
)

var (
	ErrPurchaseRequired   = domain.Validation("PURCHASE_REQUIRED", "purchase_id is required for a purchase payment")
	ErrPurchaseNotAllowed = domain.Validation("PURCHASE_NOT_ALLOWED", "purchase_id is only allowed for a purchase payment")
	ErrPurchaseNotCash    = domain.Validation("PURCHASE_NOT_CASH", "only cash-condition purchases are paid from petty cash")
)

// UseCase caja chica: una sesión abierta a la vez, movimientos y cierre con arqueo.
type UseCase struct {
	tx    ports.TxRunner
	repo  repository.CashRepository
	audit *audit.Recorder
	clock clock.Clock
}

// NewUseCase construye el caso de uso de caja chica.
func NewUseCase(tx ports.TxRunner, repo repository.CashRepository, rec *audit.Recorder, c clock.Clock) *UseCase {
	return &UseCase{tx: tx, repo: repo, audit: rec, clock: c}
}

// Open abre una sesión. Rechaza si ya hay una abierta.
func (uc *UseCase) Open(ctx context.Context, in dto.OpenCashSessionRequest) (*dto.CashSessionResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	ctx = audit.BeginCommand(ctx)
	var out *dto.CashSessionResponse
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		open, err := r.Cash.GetOpenSessionForUpdate(ctx)
		if err != nil {
			return err
		}
		if open != nil {
			return domain.ErrCashSessionAlreadyOpen.WithMessage("cash session %d is open", open.ID)
		}
		s := &entity.CashSession{
			OpenedAt:      uc.clock.Now(),
			OpenedBy:      audit.ActorFrom(ctx),
			InitialAmount: in.InitialAmount,
			State:         entity.CashSessionOpen,
			Observations:  in.Observations,
		}
		if err := r.Cash.CreateSession(ctx, s); err != nil {
			return err
		}
		resp := toSessionResponse(s, nil)
		if err := uc.audit.Created(ctx, r.Audit, audit.ModuleCash, "cash_session", s.ID, resp); err != nil {
			return err
		}
		out = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RecordMovement registra un gasto, ingreso o pago a proveedor en una sesión abierta.
// Un pago a proveedor exige una compra de contado, no anulada y no pagada antes.
func (uc *UseCase) RecordMovement(ctx context.Context, in dto.RecordCashMovementRequest) (*dto.CashMovementResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	isPayment := in.Kind == entity.CashMovementPurchasePayment
	switch {
	case isPayment && in.PurchaseID == nil:
		return nil, ErrPurchaseRequired
	case !isPayment && in.PurchaseID != nil:
		return nil, ErrPurchaseNotAllowed
	}
	ctx = audit.BeginCommand(ctx)

	var out *dto.CashMovementResponse
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		s, err := r.Cash.GetSessionForUpdate(ctx, in.SessionID)
		if err != nil {
			return err
		}
		if s == nil {
			return domain.ErrNotFound.WithMessage("cash session %d not found", in.SessionID)
		}
		if s.State != entity.CashSessionOpen {
			return domain.ErrCashSessionClosed.WithMessage("cash session %d is closed", s.ID)
		}
		if isPayment {
			if err := uc.checkPurchase(ctx, r, *in.PurchaseID); err != nil {
				return err
			}
		}
		m := &entity.CashMovement{
			SessionID:   s.ID,
			OccurredAt:  uc.clock.Now(),
			Kind:        in.Kind,
			Description: in.Description,
			Amount:      in.Amount,
			PurchaseID:  in.PurchaseID,
			RecordedBy:  audit.ActorFrom(ctx),
		}
		if err := r.Cash.CreateMovement(ctx, m); err != nil {
			return err
		}
		resp := toMovementResponse(m)
		if err := uc.audit.Created(ctx, r.Audit, audit.ModuleCash, "cash_movement", m.ID, resp); err != nil {
			return err
		}
		out = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// checkPurchase bloquea la compra para serializar contra su anulación.
func (uc *UseCase) checkPurchase(ctx context.Context, r repository.Repos, purchaseID int64) error {
	p, err := r.Purchases.GetForUpdate(ctx, purchaseID)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.ErrNotFound.WithMessage("purchase %d not found", purchaseID)
	}
	if p.Voided {
		return domain.ErrPurchaseVoided.WithMessage("purchase %d is voided", p.ID)
	}
	if p.Condition != entity.PurchaseConditionCash {
		return ErrPurchaseNotCash.WithMessage("purchase %d has condition %s", p.ID, p.Condition)
	}
	paid, err := r.Cash.PurchasePaid(ctx, p.ID)
	if err != nil {
		return err
	}
	if paid {
		return domain.ErrPurchaseAlreadyPaid.WithMessage("purchase %d was already paid from petty cash", p.ID)
	}
	return nil
}

// Close cierra la sesión abierta: computed = inicial − egresos + ingresos; guarda declarado y diferencia.
func (uc *UseCase) Close(ctx context.Context, in dto.CloseCashSessionRequest) (*dto.CashSessionResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	ctx = audit.BeginCommand(ctx)
	var out *dto.CashSessionResponse
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		s, err := r.Cash.GetOpenSessionForUpdate(ctx)
		if err != nil {
			return err
		}
		if s == nil {
			return domain.ErrNoOpenCashSession
		}
		movements, err := r.Cash.ListMovements(ctx, s.ID)
		if err != nil {
			return err
		}
		before := toSessionResponse(s, movements)

		arq := cash.Reconcile(s.InitialAmount, in.DeclaredFinal, movements)
		now := uc.clock.Now()
		s.State = entity.CashSessionClosed
		s.ClosedAt = &now
		s.ClosedBy = audit.ActorFrom(ctx)
		s.ComputedFinal = &arq.Computed
		s.DeclaredFinal = &arq.Declared
		s.Difference = &arq.Difference
		if in.Observations != "" {
			s.Observations = in.Observations
		}
		if err := r.Cash.UpdateSession(ctx, s); err != nil {
			return err
		}
		after := toSessionResponse(s, movements)
		if err := uc.audit.Updated(ctx, r.Audit, audit.ModuleCash, "cash_session", s.ID, before, after); err != nil {
			return err
		}
		out = &after
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get devuelve la sesión con sus movimientos y saldo corriente.
func (uc *UseCase) Get(ctx context.Context, id int64) (*dto.CashSessionResponse, error) {
	s, err := uc.repo.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound.WithMessage("cash session %d not found", id)
	}
	movements, err := uc.repo.ListMovements(ctx, id)
	if err != nil {
		return nil, err
	}
	out := toSessionResponse(s, movements)
	return &out, nil
}

// Current devuelve la sesión abierta; ErrNoOpenCashSession si no hay. Lectura sin bloqueo.
func (uc *UseCase) Current(ctx context.Context) (*dto.CashSessionResponse, error) {
	s, err := uc.repo.GetOpenSession(ctx)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNoOpenCashSession
	}
	movements, err := uc.repo.ListMovements(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	out := toSessionResponse(s, movements)
	return &out, nil
}

func toSessionResponse(s *entity.CashSession, movements []*entity.CashMovement) dto.CashSessionResponse {
	out := dto.CashSessionResponse{
		ID:             s.ID,
		State:          s.State,
		OpenedAt:       s.OpenedAt,
		ClosedAt:       s.ClosedAt,
		OpenedBy:       s.OpenedBy,
		ClosedBy:       s.ClosedBy,
		InitialAmount:  s.InitialAmount,
		RunningBalance: cash.ComputeFinal(s.InitialAmount, movements),
		ComputedFinal:  s.ComputedFinal,
		DeclaredFinal:  s.DeclaredFinal,
		Difference:     s.Difference,
		Observations:   s.Observations,
		Movements:      make([]dto.CashMovementResponse, 0, len(movements)),
	}
	for _, m := range movements {
		out.Movements = append(out.Movements, toMovementResponse(m))
	}
	return out
}

func toMovementResponse(m *entity.CashMovement) dto.CashMovementResponse {
	return dto.CashMovementResponse{
		ID:          m.ID,
		OccurredAt:  m.OccurredAt,
		Kind:        m.Kind,
		Description: m.Description,
		Amount:      m.Amount,
		PurchaseID:  m.PurchaseID,
		RecordedBy:  m.RecordedBy,
	}
}
