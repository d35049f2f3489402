package purchasing

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/clinica-api/internal/application/audit"
	"github.com/jhoicas/clinica-api/internal/application/dto"
	"github.com/jhoicas/clinica-api/internal/application/inventory"
	"github.com/jhoicas/clinica-api/internal/application/ports"
	"github.com/jhoicas/clinica-api/internal/domain"
	"github.com/jhoicas/clinica-api/internal/domain/entity"
	domaininv "github.com/jhoicas/clinica-api/internal/domain/inventory"
	"github.com/jhoicas/clinica-api/internal/domain/repository"
	"github.com/jhoicas/clinica-api/pkg/clock"
)

// ErrSupplierInactive el proveedor existe pero está dado de baja.
var ErrSupplierInactive = domain.Validation("SUPPLIER_INACTIVE", "supplier is inactive")

// UseCase compras a proveedores: alta con ingreso de stock y anulación compensatoria.
type UseCase struct {
	tx     ports.TxRunner
	repo   repository.PurchaseRepository
	ledger *inventory.Ledger
	audit  *audit.Recorder
	clock  clock.Clock
}

// NewUseCase construye el caso de uso de compras.
func NewUseCase(tx ports.TxRunner, repo repository.PurchaseRepository, ledger *inventory.Ledger, rec *audit.Recorder, c clock.Clock) *UseCase {
	return &UseCase{tx: tx, repo: repo, ledger: ledger, audit: rec, clock: c}
}

// Create registra la compra, calcula el total desde las líneas y emite un INGRESO por cada
// línea cuyo ítem controla stock, actualizando el costo promedio ponderado del ítem.
func (uc *UseCase) Create(ctx context.Context, in dto.CreatePurchaseRequest) (*dto.PurchaseResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	ctx = audit.BeginCommand(ctx)
	now := uc.clock.Now()
	date := now
	if in.Date != nil {
		date = in.Date.UTC()
	}

	var out *dto.PurchaseResponse
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		supplier, err := r.Accounts.GetSupplier(ctx, in.SupplierID)
		if err != nil {
			return err
		}
		if supplier == nil {
			return domain.ErrNotFound.WithMessage("supplier %d not found", in.SupplierID)
		}
		if !supplier.Active {
			return ErrSupplierInactive.WithMessage("supplier %d is inactive", supplier.ID)
		}

		items := make([]*entity.Item, len(in.Lines))
		total := decimal.Zero
		for i, l := range in.Lines {
			item, err := r.Items.GetByID(ctx, l.ItemID)
			if err != nil {
				return err
			}
			if item == nil {
				return domain.ErrNotFound.WithMessage("line %d: item %d not found", i+1, l.ItemID)
			}
			items[i] = item
			total = total.Add(entity.Gross(l.Quantity, l.UnitPrice).Add(entity.RoundMoney(l.IVA)))
		}

		p := &entity.Purchase{
			SupplierID:    supplier.ID,
			Date:          date,
			VoucherType:   in.VoucherType,
			VoucherNumber: in.VoucherNumber,
			Condition:     in.Condition,
			Total:         total,
			Observations:  in.Observations,
			CreatedBy:     audit.ActorFrom(ctx),
			CreatedAt:     now,
		}
		if err := r.Purchases.Create(ctx, p); err != nil {
			return err
		}

		lines := make([]*entity.PurchaseLine, 0, len(in.Lines))
		for i, l := range in.Lines {
			line := &entity.PurchaseLine{
				PurchaseID: p.ID,
				ItemID:     l.ItemID,
				Quantity:   l.Quantity,
				UnitPrice:  l.UnitPrice,
				IVA:        l.IVA,
				Lot:        l.Lot,
				Expiry:     l.Expiry,
			}
			if err := r.Purchases.CreateLine(ctx, line); err != nil {
				return err
			}
			lines = append(lines, line)
			if !items[i].GeneratesStock {
				continue
			}
			if err := uc.receive(ctx, r, p, line); err != nil {
				return err
			}
		}

		resp := toPurchaseResponse(p, lines)
		if err := uc.audit.Created(ctx, r.Audit, audit.ModulePurchases, "purchase", p.ID, resp); err != nil {
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

// receive bloquea el ítem, recalcula su costo promedio y postea el INGRESO de la línea.
func (uc *UseCase) receive(ctx context.Context, r repository.Repos, p *entity.Purchase, line *entity.PurchaseLine) error {
	item, err := r.Items.GetForUpdate(ctx, line.ItemID)
	if err != nil {
		return err
	}
	onHand, err := r.Stock.OnHand(ctx, item.ID, p.Date)
	if err != nil {
		return err
	}
	newCost := domaininv.WeightedAverageCost(onHand, item.Cost, line.Quantity, line.UnitPrice)
	if err := r.Items.UpdateCost(ctx, item.ID, newCost); err != nil {
		return err
	}
	id := p.ID
	_, err = uc.ledger.PostInTx(ctx, r, inventory.PostInput{
		ItemID:     item.ID,
		Quantity:   line.Quantity,
		Kind:       entity.MovementKindIngreso,
		Motive:     entity.MotivePurchase,
		Origin:     entity.OriginRef{Module: entity.OriginPurchase, ID: &id},
		Note:       voucherNote(p),
		OccurredAt: p.Date,
	})
	return err
}

// Void anula la compra: un EGRESO compensatorio por cada INGRESO previo. No borra movimientos.
// Rechaza compras ya anuladas y compras pagadas desde caja chica.
func (uc *UseCase) Void(ctx context.Context, id int64, in dto.VoidRequest) (*dto.PurchaseResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	ctx = audit.BeginCommand(ctx)
	var out *dto.PurchaseResponse
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		p, err := r.Purchases.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound.WithMessage("purchase %d not found", id)
		}
		if p.Voided {
			return domain.ErrPurchaseAlreadyVoided
		}
		paid, err := r.Cash.PurchasePaid(ctx, id)
		if err != nil {
			return err
		}
		if paid {
			return domain.ErrPurchasePaidFromCash
		}
		lines, err := r.Purchases.GetLines(ctx, id)
		if err != nil {
			return err
		}
		before := toPurchaseResponse(p, lines)

		if _, err := uc.ledger.ReverseOriginInTx(ctx, r, entity.OriginPurchase, id, entity.MotivePurchaseVoid, "void: "+in.Reason); err != nil {
			return err
		}
		now := uc.clock.Now()
		p.Voided = true
		p.VoidReason = in.Reason
		p.VoidedAt = &now
		if err := r.Purchases.Update(ctx, p); err != nil {
			return err
		}
		after := toPurchaseResponse(p, lines)
		if err := uc.audit.Updated(ctx, r.Audit, audit.ModulePurchases, "purchase", id, before, after); err != nil {
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

// GetByID devuelve la compra con sus líneas.
func (uc *UseCase) GetByID(ctx context.Context, id int64) (*dto.PurchaseResponse, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound.WithMessage("purchase %d not found", id)
	}
	lines, err := uc.repo.GetLines(ctx, id)
	if err != nil {
		return nil, err
	}
	out := toPurchaseResponse(p, lines)
	return &out, nil
}

// List lista compras (sin líneas), más recientes primero.
func (uc *UseCase) List(ctx context.Context, in dto.PurchaseFilterRequest) ([]dto.PurchaseResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	in.DefaultPage()
	list, err := uc.repo.List(ctx, repository.PurchaseFilter{
		SupplierID: in.SupplierID,
		From:       in.From,
		To:         in.To,
		Limit:      in.Limit,
		Offset:     in.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.PurchaseResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toPurchaseResponse(p, nil))
	}
	return out, nil
}

func voucherNote(p *entity.Purchase) string {
	if p.VoucherNumber == "" {
		return ""
	}
	if p.VoucherType == "" {
		return p.VoucherNumber
	}
	return p.VoucherType + " " + p.VoucherNumber
}

func toPurchaseResponse(p *entity.Purchase, lines []*entity.PurchaseLine) dto.PurchaseResponse {
	out := dto.PurchaseResponse{
		ID:            p.ID,
		SupplierID:    p.SupplierID,
		Date:          p.Date,
		VoucherType:   p.VoucherType,
		VoucherNumber: p.VoucherNumber,
		Condition:     p.Condition,
		Total:         p.Total,
		Voided:        p.Voided,
		VoidReason:    p.VoidReason,
		VoidedAt:      p.VoidedAt,
		Observations:  p.Observations,
		CreatedAt:     p.CreatedAt,
	}
	for _, l := range lines {
		out.Lines = append(out.Lines, dto.PurchaseLineResponse{
			ID:        l.ID,
			ItemID:    l.ItemID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			IVA:       l.IVA,
			Amount:    l.Amount(),
			Lot:       l.Lot,
			Expiry:    l.Expiry,
		})
	}
	return out
}
