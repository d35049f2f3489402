package receipts

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/clinica-api/internal/application/audit"
	"github.com/jhoicas/clinica-api/internal/application/dto"
	"github.com/jhoicas/clinica-api/internal/application/ports"
	"github.com/jhoicas/clinica-api/internal/application/sales"
	"github.com/jhoicas/clinica-api/internal/domain"
	"github.com/jhoicas/clinica-api/internal/domain/collections"
	"github.com/jhoicas/clinica-api/internal/domain/entity"
	"github.com/jhoicas/clinica-api/internal/domain/repository"
	"github.com/jhoicas/clinica-api/pkg/clock"
)

var (
	ErrDuplicateImputation = domain.Validation("DUPLICATE_IMPUTATION", "a sale appears twice in the imputations")
	ErrImputationsExceed   = domain.Validation("IMPUTATIONS_EXCEED_AMOUNT", "sum of imputations exceeds receipt amount")
	ErrForeignSale         = domain.Validation("SALE_OF_ANOTHER_PATIENT", "sale belongs to another patient")
)

// UseCase cobros: imputación FIFO o explícita sobre saldos de ventas y anulación restauradora.
type UseCase struct {
	tx    ports.TxRunner
	repo  repository.ReceiptRepository
	audit *audit.Recorder
	clock clock.Clock
}

// NewUseCase construye el caso de uso de cobros.
func NewUseCase(tx ports.TxRunner, repo repository.ReceiptRepository, rec *audit.Recorder, c clock.Clock) *UseCase {
	return &UseCase{tx: tx, repo: repo, audit: rec, clock: c}
}

type imputation struct {
	sale   *entity.Sale
	amount decimal.Decimal
}

// Register registra un cobro. Con AutoFIFO reparte el monto sobre las ventas Confirmed del
// paciente más antiguas primero; el remanente queda sin imputar en el cobro.
// Las ventas se bloquean antes de crear el cobro (orden Patient → Sale → Receipt).
func (uc *UseCase) Register(ctx context.Context, in dto.RegisterReceiptRequest) (*dto.ReceiptResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	ctx = audit.BeginCommand(ctx)
	now := uc.clock.Now()
	date := now
	if in.Date != nil {
		date = in.Date.UTC()
	}

	var out *dto.ReceiptResponse
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		patient, err := r.Accounts.GetPatient(ctx, in.PatientID)
		if err != nil {
			return err
		}
		if patient == nil {
			return domain.ErrNotFound.WithMessage("patient %d not found", in.PatientID)
		}

		var imps []imputation
		if in.AutoFIFO {
			imps, err = uc.allocateFIFO(ctx, r, in)
		} else {
			imps, err = uc.explicit(ctx, r, in)
		}
		if err != nil {
			return err
		}

		rc := &entity.Receipt{
			Date:         date,
			PatientID:    in.PatientID,
			Amount:       in.Amount,
			Method:       in.Method,
			State:        entity.ReceiptStateActive,
			Observations: in.Observations,
			RecordedBy:   audit.ActorFrom(ctx),
			CreatedAt:    now,
		}
		if err := r.Receipts.Create(ctx, rc); err != nil {
			return err
		}

		stored := make([]*entity.ReceiptImputation, 0, len(imps))
		for _, imp := range imps {
			if err := uc.applyToSale(ctx, r, imp.sale, imp.amount.Neg()); err != nil {
				return err
			}
			ri := &entity.ReceiptImputation{ReceiptID: rc.ID, SaleID: imp.sale.ID, Amount: imp.amount, Active: true}
			if err := r.Receipts.CreateImputation(ctx, ri); err != nil {
				return err
			}
			stored = append(stored, ri)
		}

		resp := toResponse(rc, stored)
		if err := uc.audit.Created(ctx, r.Audit, audit.ModuleReceipts, "receipt", rc.ID, resp); err != nil {
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

// allocateFIFO bloquea las ventas con deuda en orden de id y reparte por (date, id).
func (uc *UseCase) allocateFIFO(ctx context.Context, r repository.Repos, in dto.RegisterReceiptRequest) ([]imputation, error) {
	outstanding, err := r.Sales.ListOutstandingForUpdate(ctx, in.PatientID)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*entity.Sale, len(outstanding))
	candidates := make([]collections.Outstanding, 0, len(outstanding))
	for _, s := range outstanding {
		byID[s.ID] = s
		candidates = append(candidates, collections.Outstanding{SaleID: s.ID, Date: s.Date, Balance: s.Balance})
	}
	allocs, _ := collections.AllocateFIFO(in.Amount, candidates)
	out := make([]imputation, 0, len(allocs))
	for _, a := range allocs {
		out = append(out, imputation{sale: byID[a.SaleID], amount: a.Amount})
	}
	return out, nil
}

// explicit valida imputaciones explícitas; bloquea las ventas en orden de id.
func (uc *UseCase) explicit(ctx context.Context, r repository.Repos, in dto.RegisterReceiptRequest) ([]imputation, error) {
	reqs := make([]dto.ImputationRequest, len(in.Imputations))
	copy(reqs, in.Imputations)
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].SaleID < reqs[j].SaleID })

	sum := decimal.Zero
	for i, q := range reqs {
		if i > 0 && reqs[i-1].SaleID == q.SaleID {
			return nil, ErrDuplicateImputation.WithMessage("sale %d is imputed twice", q.SaleID)
		}
		sum = sum.Add(q.Amount)
	}
	if sum.GreaterThan(in.Amount) {
		return nil, ErrImputationsExceed.WithMessage("imputations %s exceed receipt amount %s", sum, in.Amount)
	}

	out := make([]imputation, 0, len(reqs))
	for _, q := range reqs {
		sale, err := r.Sales.GetForUpdate(ctx, q.SaleID)
		if err != nil {
			return nil, err
		}
		if sale == nil {
			return nil, domain.ErrNotFound.WithMessage("sale %d not found", q.SaleID)
		}
		if sale.PatientID != in.PatientID {
			return nil, ErrForeignSale.WithMessage("sale %d belongs to patient %d", sale.ID, sale.PatientID)
		}
		if !sale.AcceptsPayments() {
			return nil, domain.ErrSaleNotPayable.WithMessage("sale %d is %s with balance %s", sale.ID, sale.State, sale.Balance)
		}
		if q.Amount.GreaterThan(sale.Balance) {
			return nil, domain.ErrAmountExceedsBalance.WithMessage("sale %d: %s > %s", sale.ID, q.Amount, sale.Balance)
		}
		out = append(out, imputation{sale: sale, amount: q.Amount})
	}
	return out, nil
}

// applyToSale suma delta al saldo de la venta: Confirmed → Charged al llegar a cero y
// Charged → Confirmed si vuelve a quedar saldo.
func (uc *UseCase) applyToSale(ctx context.Context, r repository.Repos, sale *entity.Sale, delta decimal.Decimal) error {
	before := sales.ToSaleResponse(sale, nil)
	sale.Balance = sale.Balance.Add(delta)
	switch {
	case sale.State == entity.SaleStateConfirmed && sale.Balance.IsZero():
		sale.State = entity.SaleStateCharged
	case sale.State == entity.SaleStateCharged && sale.Balance.IsPositive():
		sale.State = entity.SaleStateConfirmed
	}
	sale.UpdatedAt = uc.clock.Now()
	if err := r.Sales.Update(ctx, sale); err != nil {
		return err
	}
	return uc.audit.Updated(ctx, r.Audit, audit.ModuleSales, "sale", sale.ID, before, sales.ToSaleResponse(sale, nil))
}

// Void anula el cobro: restaura en cada venta el monto almacenado de su imputación y deja las
// imputaciones inactivas. Bloquea primero las ventas (orden de id) y luego el cobro.
func (uc *UseCase) Void(ctx context.Context, id int64, in dto.VoidRequest) (*dto.ReceiptResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	ctx = audit.BeginCommand(ctx)
	var out *dto.ReceiptResponse
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		peek, err := r.Receipts.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if peek == nil {
			return domain.ErrNotFound.WithMessage("receipt %d not found", id)
		}
		imps, err := r.Receipts.ListImputations(ctx, id)
		if err != nil {
			return err
		}
		ordered := make([]*entity.ReceiptImputation, len(imps))
		copy(ordered, imps)
		sort.Slice(ordered, func(i, j int) bool { return ordered[i].SaleID < ordered[j].SaleID })
		locked := make(map[int64]*entity.Sale, len(ordered))
		for _, imp := range ordered {
			if !imp.Active {
				continue
			}
			sale, err := r.Sales.GetForUpdate(ctx, imp.SaleID)
			if err != nil {
				return err
			}
			if sale == nil {
				return domain.ErrIntegrity.WithMessage("receipt %d imputes missing sale %d", id, imp.SaleID)
			}
			locked[sale.ID] = sale
		}

		rc, err := r.Receipts.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if rc.State == entity.ReceiptStateVoided {
			return domain.ErrReceiptAlreadyVoided
		}
		before := toResponse(rc, imps)

		for _, imp := range ordered {
			if !imp.Active {
				continue
			}
			if err := uc.applyToSale(ctx, r, locked[imp.SaleID], imp.Amount); err != nil {
				return err
			}
		}
		if err := r.Receipts.DeactivateImputations(ctx, id); err != nil {
			return err
		}

		now := uc.clock.Now()
		rc.State = entity.ReceiptStateVoided
		rc.VoidReason = in.Reason
		rc.VoidedAt = &now
		if err := r.Receipts.Update(ctx, rc); err != nil {
			return err
		}
		stored, err := r.Receipts.ListImputations(ctx, id)
		if err != nil {
			return err
		}
		after := toResponse(rc, stored)
		if err := uc.audit.Updated(ctx, r.Audit, audit.ModuleReceipts, "receipt", id, before, after); err != nil {
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

// GetByID devuelve el cobro con sus imputaciones (activas e inactivas).
func (uc *UseCase) GetByID(ctx context.Context, id int64) (*dto.ReceiptResponse, error) {
	rc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rc == nil {
		return nil, domain.ErrNotFound.WithMessage("receipt %d not found", id)
	}
	imps, err := uc.repo.ListImputations(ctx, id)
	if err != nil {
		return nil, err
	}
	out := toResponse(rc, imps)
	return &out, nil
}

// ListByPatient cobros del paciente, más recientes primero.
func (uc *UseCase) ListByPatient(ctx context.Context, patientID int64) ([]dto.ReceiptResponse, error) {
	list, err := uc.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ReceiptResponse, 0, len(list))
	for _, rc := range list {
		imps, err := uc.repo.ListImputations(ctx, rc.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, toResponse(rc, imps))
	}
	return out, nil
}

func toResponse(rc *entity.Receipt, imps []*entity.ReceiptImputation) dto.ReceiptResponse {
	out := dto.ReceiptResponse{
		ID:           rc.ID,
		Date:         rc.Date,
		PatientID:    rc.PatientID,
		Amount:       rc.Amount,
		Method:       rc.Method,
		State:        rc.State,
		Observations: rc.Observations,
		VoidReason:   rc.VoidReason,
		VoidedAt:     rc.VoidedAt,
		Imputations:  make([]dto.ImputationResponse, 0, len(imps)),
	}
	imputed := decimal.Zero
	for _, imp := range imps {
		imputed = imputed.Add(imp.Amount)
		out.Imputations = append(out.Imputations, dto.ImputationResponse{SaleID: imp.SaleID, Amount: imp.Amount, Active: imp.Active})
	}
	out.Unallocated = rc.Amount.Sub(imputed)
	return out
}
