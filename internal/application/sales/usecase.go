package sales

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/clinica-api/internal/application/audit"
	"github.com/jhoicas/clinica-api/internal/application/dto"
	"github.com/jhoicas/clinica-api/internal/application/inventory"
	"github.com/jhoicas/clinica-api/internal/application/plans"
	"github.com/jhoicas/clinica-api/internal/application/ports"
	"github.com/jhoicas/clinica-api/internal/domain"
	"github.com/jhoicas/clinica-api/internal/domain/entity"
	domaininv "github.com/jhoicas/clinica-api/internal/domain/inventory"
	"github.com/jhoicas/clinica-api/internal/domain/repository"
	"github.com/jhoicas/clinica-api/pkg/clock"
)

// Errores de validación propios de ventas.
var (
	ErrPatientInactive = domain.Validation("PATIENT_INACTIVE", "patient is inactive")
	ErrItemInactive    = domain.Validation("ITEM_INACTIVE", "item is inactive")
	ErrDiscountTooHigh = domain.Validation("DISCOUNT_EXCEEDS_SUBTOTAL", "discount exceeds quantity × unit price")
)

// UseCase ventas: alta confirmada con egresos de stock y generación de planes; anulación compensatoria.
type UseCase struct {
	tx     ports.TxRunner
	repo   repository.SaleRepository
	plans  repository.SessionPlanRepository
	ledger *inventory.Ledger
	linker *plans.Linker
	audit  *audit.Recorder
	clock  clock.Clock
}

// NewUseCase construye el caso de uso de ventas.
func NewUseCase(
	tx ports.TxRunner,
	repo repository.SaleRepository,
	planRepo repository.SessionPlanRepository,
	ledger *inventory.Ledger,
	linker *plans.Linker,
	rec *audit.Recorder,
	c clock.Clock,
) *UseCase {
	return &UseCase{tx: tx, repo: repo, plans: planRepo, ledger: ledger, linker: linker, audit: rec, clock: c}
}

type pricedLine struct {
	item     *entity.Item
	planType *entity.PlanType
	line     *entity.SaleLine
}

// Create registra una venta confirmada. monto_total = Σ subtotales y saldo = monto_total;
// una venta de monto cero nace cobrada.
// Por línea: egresos de stock según receta y, para ítems con tipo de plan, un plan de N sesiones.
func (uc *UseCase) Create(ctx context.Context, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	ctx = audit.BeginCommand(ctx)
	now := uc.clock.Now()
	date := now
	if in.Date != nil {
		date = in.Date.UTC()
	}

	var out *dto.SaleResponse
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		if err := uc.checkParties(ctx, r, in); err != nil {
			return err
		}
		priced, total, err := uc.priceLines(ctx, r, in.Lines)
		if err != nil {
			return err
		}

		state := entity.SaleStateConfirmed
		if total.IsZero() {
			state = entity.SaleStateCharged
		}
		sale := &entity.Sale{
			Date:           date,
			PatientID:      in.PatientID,
			ProfessionalID: in.ProfessionalID,
			ClinicID:       in.ClinicID,
			Total:          total,
			Balance:        total,
			State:          state,
			InvoiceNumber:  in.InvoiceNumber,
			Observations:   in.Observations,
			CreatedBy:      audit.ActorFrom(ctx),
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := r.Sales.Create(ctx, sale); err != nil {
			return err
		}

		lines := make([]*entity.SaleLine, 0, len(priced))
		var planOut []dto.PlanResponse
		for _, pl := range priced {
			pl.line.SaleID = sale.ID
			if err := r.Sales.CreateLine(ctx, pl.line); err != nil {
				return err
			}
			lines = append(lines, pl.line)
			if err := uc.consume(ctx, r, sale, pl); err != nil {
				return err
			}
			if pl.planType != nil {
				plan, sessions, err := uc.linker.GenerateInTx(ctx, r, sale, pl.line, pl.item, pl.planType)
				if err != nil {
					return err
				}
				planOut = append(planOut, plans.ToPlanResponse(plan, sessions))
			}
		}

		resp := toSaleResponse(sale, lines)
		if err := uc.audit.Created(ctx, r.Audit, audit.ModuleSales, "sale", sale.ID, resp); err != nil {
			return err
		}
		resp.Plans = planOut
		out = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (uc *UseCase) checkParties(ctx context.Context, r repository.Repos, in dto.CreateSaleRequest) error {
	patient, err := r.Accounts.GetPatient(ctx, in.PatientID)
	if err != nil {
		return err
	}
	if patient == nil {
		return domain.ErrNotFound.WithMessage("patient %d not found", in.PatientID)
	}
	if !patient.Active {
		return ErrPatientInactive.WithMessage("patient %d is inactive", patient.ID)
	}
	if in.ProfessionalID != nil {
		prof, err := r.Accounts.GetProfessional(ctx, *in.ProfessionalID)
		if err != nil {
			return err
		}
		if prof == nil {
			return domain.ErrNotFound.WithMessage("professional %d not found", *in.ProfessionalID)
		}
	}
	if in.ClinicID != nil {
		clinic, err := r.Accounts.GetClinic(ctx, *in.ClinicID)
		if err != nil {
			return err
		}
		if clinic == nil {
			return domain.ErrNotFound.WithMessage("clinic %d not found", *in.ClinicID)
		}
	}
	return nil
}

// priceLines valida cada línea, resuelve precio y tipo de plan y calcula el total.
func (uc *UseCase) priceLines(ctx context.Context, r repository.Repos, in []dto.SaleLineRequest) ([]pricedLine, decimal.Decimal, error) {
	total := decimal.Zero
	out := make([]pricedLine, 0, len(in))
	for i, l := range in {
		item, err := r.Items.GetByID(ctx, l.ItemID)
		if err != nil {
			return nil, total, err
		}
		if item == nil {
			return nil, total, domain.ErrNotFound.WithMessage("line %d: item %d not found", i+1, l.ItemID)
		}
		if !item.Active {
			return nil, total, ErrItemInactive.WithMessage("line %d: item %d is inactive", i+1, item.ID)
		}
		price := item.UnitPrice
		if l.UnitPrice != nil {
			price = *l.UnitPrice
		}
		line := &entity.SaleLine{ItemID: item.ID, Quantity: l.Quantity, UnitPrice: price, Discount: l.Discount}
		if gross := entity.Gross(l.Quantity, price); l.Discount.GreaterThan(gross) {
			return nil, total, ErrDiscountTooHigh.WithMessage("line %d: discount %s exceeds %s", i+1, l.Discount, gross)
		}
		line.Subtotal = line.ComputeSubtotal()

		pl := pricedLine{item: item, line: line}
		if item.IsPlanBearing() {
			pt, err := r.Items.GetPlanType(ctx, *item.PlanTypeID)
			if err != nil {
				return nil, total, err
			}
			if pt == nil {
				return nil, total, domain.ErrIntegrity.WithMessage("item %d references missing plan type %d", item.ID, *item.PlanTypeID)
			}
			if _, err := plans.SessionsFor(item, pt, l.Quantity); err != nil {
				return nil, total, err
			}
			pl.planType = pt
		}
		total = total.Add(line.Subtotal)
		out = append(out, pl)
	}
	return out, total, nil
}

// consume postea los egresos de la línea (explosión de receta de un nivel).
func (uc *UseCase) consume(ctx context.Context, r repository.Repos, sale *entity.Sale, pl pricedLine) error {
	comp, err := r.Items.GetComposition(ctx, pl.item.ID)
	if err != nil {
		return err
	}
	saleID := sale.ID
	for _, c := range domaininv.Explode(pl.item, pl.line.Quantity, comp) {
		_, err := uc.ledger.PostInTx(ctx, r, inventory.PostInput{
			ItemID:        c.ItemID,
			Quantity:      c.Quantity,
			Kind:          entity.MovementKindEgreso,
			Motive:        c.Motive,
			Origin:        entity.OriginRef{Module: entity.OriginSale, ID: &saleID},
			OccurredAt:    sale.Date,
			SkipUntracked: true,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Void anula la venta: rechaza si tiene imputaciones activas; compensa cada movimiento de
// stock con un INGRESO y cancela las sesiones no realizadas de los planes generados.
func (uc *UseCase) Void(ctx context.Context, id int64, in dto.VoidRequest) (*dto.SaleResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	ctx = audit.BeginCommand(ctx)
	var out *dto.SaleResponse
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		sale, err := r.Sales.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrNotFound.WithMessage("sale %d not found", id)
		}
		switch sale.State {
		case entity.SaleStateVoided:
			return domain.ErrSaleAlreadyVoided
		case entity.SaleStateOpen, entity.SaleStateConfirmed, entity.SaleStateCharged:
		default:
			return domain.ErrSaleNotVoidable.WithMessage("sale %d is %s", id, sale.State)
		}
		imps, err := r.Receipts.ListActiveImputationsBySale(ctx, id)
		if err != nil {
			return err
		}
		if len(imps) > 0 {
			return domain.ErrHasActiveReceipts.WithMessage("sale %d has %d active receipt imputations", id, len(imps))
		}
		lines, err := r.Sales.GetLines(ctx, id)
		if err != nil {
			return err
		}
		before := toSaleResponse(sale, lines)

		if _, err := uc.ledger.ReverseOriginInTx(ctx, r, entity.OriginSale, id, entity.MotiveSaleVoid, "void: "+in.Reason); err != nil {
			return err
		}
		planList, err := uc.linker.CancelForSaleInTx(ctx, r, id)
		if err != nil {
			return err
		}

		now := uc.clock.Now()
		sale.State = entity.SaleStateVoided
		sale.VoidReason = in.Reason
		sale.VoidedAt = &now
		sale.UpdatedAt = now
		if err := r.Sales.Update(ctx, sale); err != nil {
			return err
		}
		after := toSaleResponse(sale, lines)
		if err := uc.audit.Updated(ctx, r.Audit, audit.ModuleSales, "sale", id, before, after); err != nil {
			return err
		}
		for _, p := range planList {
			after.Plans = append(after.Plans, plans.ToPlanResponse(p, nil))
		}
		out = &after
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID devuelve la venta con sus líneas y planes generados.
func (uc *UseCase) GetByID(ctx context.Context, id int64) (*dto.SaleResponse, error) {
	sale, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound.WithMessage("sale %d not found", id)
	}
	lines, err := uc.repo.GetLines(ctx, id)
	if err != nil {
		return nil, err
	}
	out := toSaleResponse(sale, lines)
	planList, err := uc.plans.ListPlansBySale(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, p := range planList {
		out.Plans = append(out.Plans, plans.ToPlanResponse(p, nil))
	}
	return &out, nil
}

// List lista ventas (sin líneas), más recientes primero.
func (uc *UseCase) List(ctx context.Context, in dto.SaleFilterRequest) ([]dto.SaleResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	in.DefaultPage()
	list, err := uc.repo.List(ctx, repository.SaleFilter{
		PatientID: in.PatientID,
		State:     in.State,
		From:      in.From,
		To:        in.To,
		Limit:     in.Limit,
		Offset:    in.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.SaleResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toSaleResponse(s, nil))
	}
	return out, nil
}

// ToSaleResponse mapea una venta (y opcionalmente sus líneas) a su salida.
func ToSaleResponse(s *entity.Sale, lines []*entity.SaleLine) dto.SaleResponse {
	return toSaleResponse(s, lines)
}

func toSaleResponse(s *entity.Sale, lines []*entity.SaleLine) dto.SaleResponse {
	out := dto.SaleResponse{
		ID:             s.ID,
		Date:           s.Date,
		PatientID:      s.PatientID,
		ProfessionalID: s.ProfessionalID,
		ClinicID:       s.ClinicID,
		Total:          s.Total,
		Balance:        s.Balance,
		State:          s.State,
		InvoiceNumber:  s.InvoiceNumber,
		Observations:   s.Observations,
		VoidReason:     s.VoidReason,
		VoidedAt:       s.VoidedAt,
		CreatedAt:      s.CreatedAt,
	}
	for _, l := range lines {
		out.Lines = append(out.Lines, dto.SaleLineResponse{
			ID:        l.ID,
			ItemID:    l.ItemID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Discount:  l.Discount,
			Subtotal:  l.Subtotal,
		})
	}
	return out
}
