package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/clinica-api/internal/domain/entity"
	"github.com/jhoicas/clinica-api/internal/domain/repository"
)

type purchaseRepo struct{ *base }

func (r *purchaseRepo) Create(_ context.Context, p *entity.Purchase) error {
	return r.write(func(st *state) error {
		if !st.suppliers.has(p.SupplierID) {
			return fk("supplier", p.SupplierID)
		}
		p.ID = st.purchases.next()
		st.purchases.put(p.ID, p)
		return nil
	})
}

func (r *purchaseRepo) CreateLine(_ context.Context, l *entity.PurchaseLine) error {
	return r.write(func(st *state) error {
		if !st.purchases.has(l.PurchaseID) {
			return fk("purchase", l.PurchaseID)
		}
		if !st.items.has(l.ItemID) {
			return fk("item", l.ItemID)
		}
		l.ID = st.purchaseLines.next()
		st.purchaseLines.put(l.ID, l)
		return nil
	})
}

func (r *purchaseRepo) GetByID(_ context.Context, id int64) (*entity.Purchase, error) {
	var out *entity.Purchase
	err := r.read(func(st *state) error {
		out = st.purchases.get(id)
		return nil
	})
	return out, err
}

func (r *purchaseRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Purchase, error) {
	return r.GetByID(ctx, id)
}

func (r *purchaseRepo) Update(_ context.Context, p *entity.Purchase) error {
	return r.write(func(st *state) error {
		if !st.purchases.has(p.ID) {
			return missing("purchase", p.ID)
		}
		st.purchases.put(p.ID, p)
		return nil
	})
}

func (r *purchaseRepo) GetLines(_ context.Context, purchaseID int64) ([]*entity.PurchaseLine, error) {
	var out []*entity.PurchaseLine
	err := r.read(func(st *state) error {
		out = st.purchaseLines.filter(func(l *entity.PurchaseLine) bool { return l.PurchaseID == purchaseID })
		return nil
	})
	return out, err
}

func (r *purchaseRepo) List(_ context.Context, f repository.PurchaseFilter) ([]*entity.Purchase, error) {
	var out []*entity.Purchase
	err := r.read(func(st *state) error {
		out = st.purchases.filter(func(p *entity.Purchase) bool {
			if f.SupplierID != nil && p.SupplierID != *f.SupplierID {
				return false
			}
			if f.From != nil && p.Date.Before(*f.From) {
				return false
			}
			return f.To == nil || p.Date.Before(*f.To)
		})
		sort.SliceStable(out, func(i, j int) bool {
			if !out[i].Date.Equal(out[j].Date) {
				return out[i].Date.After(out[j].Date)
			}
			return out[i].ID > out[j].ID
		})
		out = page(out, f.Limit, f.Offset)
		return nil
	})
	return out, err
}

type saleRepo struct{ *base }

func (r *saleRepo) Create(_ context.Context, s *entity.Sale) error {
	return r.write(func(st *state) error {
		if !st.patients.has(s.PatientID) {
			return fk("patient", s.PatientID)
		}
		if s.ProfessionalID != nil && !st.professionals.has(*s.ProfessionalID) {
			return fk("professional", *s.ProfessionalID)
		}
		if s.ClinicID != nil && !st.clinics.has(*s.ClinicID) {
			return fk("clinic", *s.ClinicID)
		}
		if s.Balance.IsNegative() {
			return integrity("check violation: sale balance must not be negative")
		}
		s.ID = st.sales.next()
		st.sales.put(s.ID, s)
		return nil
	})
}

func (r *saleRepo) CreateLine(_ context.Context, l *entity.SaleLine) error {
	return r.write(func(st *state) error {
		if !st.sales.has(l.SaleID) {
			return fk("sale", l.SaleID)
		}
		if !st.items.has(l.ItemID) {
			return fk("item", l.ItemID)
		}
		l.ID = st.saleLines.next()
		st.saleLines.put(l.ID, l)
		return nil
	})
}

func (r *saleRepo) GetByID(_ context.Context, id int64) (*entity.Sale, error) {
	var out *entity.Sale
	err := r.read(func(st *state) error {
		out = st.sales.get(id)
		return nil
	})
	return out, err
}

func (r *saleRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Sale, error) {
	return r.GetByID(ctx, id)
}

func (r *saleRepo) Update(_ context.Context, s *entity.Sale) error {
	return r.write(func(st *state) error {
		if !st.sales.has(s.ID) {
			return missing("sale", s.ID)
		}
		if s.Balance.IsNegative() || s.Balance.GreaterThan(s.Total) {
			return integrity("check violation: sale %d balance %s out of [0, %s]", s.ID, s.Balance, s.Total)
		}
		st.sales.put(s.ID, s)
		return nil
	})
}

func (r *saleRepo) GetLines(_ context.Context, saleID int64) ([]*entity.SaleLine, error) {
	var out []*entity.SaleLine
	err := r.read(func(st *state) error {
		out = st.saleLines.filter(func(l *entity.SaleLine) bool { return l.SaleID == saleID })
		return nil
	})
	return out, err
}

func (r *saleRepo) ListOutstandingForUpdate(_ context.Context, patientID int64) ([]*entity.Sale, error) {
	var out []*entity.Sale
	err := r.read(func(st *state) error {
		out = st.sales.filter(func(s *entity.Sale) bool {
			return s.PatientID == patientID && s.State == entity.SaleStateConfirmed && s.Balance.IsPositive()
		})
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return nil
	})
	return out, err
}

func (r *saleRepo) List(_ context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	var out []*entity.Sale
	err := r.read(func(st *state) error {
		out = st.sales.filter(func(s *entity.Sale) bool {
			if f.PatientID != nil && s.PatientID != *f.PatientID {
				return false
			}
			if f.State != "" && s.State != f.State {
				return false
			}
			if f.From != nil && s.Date.Before(*f.From) {
				return false
			}
			return f.To == nil || s.Date.Before(*f.To)
		})
		sort.SliceStable(out, func(i, j int) bool {
			if !out[i].Date.Equal(out[j].Date) {
				return out[i].Date.After(out[j].Date)
			}
			return out[i].ID > out[j].ID
		})
		out = page(out, f.Limit, f.Offset)
		return nil
	})
	return out, err
}

type receiptRepo struct{ *base }

func (r *receiptRepo) Create(_ context.Context, rc *entity.Receipt) error {
	return r.write(func(st *state) error {
		if !st.patients.has(rc.PatientID) {
			return fk("patient", rc.PatientID)
		}
		if !rc.Amount.IsPositive() {
			return integrity("check violation: receipt amount must be positive")
		}
		rc.ID = st.receipts.next()
		st.receipts.put(rc.ID, rc)
		return nil
	})
}

func (r *receiptRepo) GetByID(_ context.Context, id int64) (*entity.Receipt, error) {
	var out *entity.Receipt
	err := r.read(func(st *state) error {
		out = st.receipts.get(id)
		return nil
	})
	return out, err
}

func (r *receiptRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Receipt, error) {
	return r.GetByID(ctx, id)
}

func (r *receiptRepo) Update(_ context.Context, rc *entity.Receipt) error {
	return r.write(func(st *state) error {
		if !st.receipts.has(rc.ID) {
			return missing("receipt", rc.ID)
		}
		st.receipts.put(rc.ID, rc)
		return nil
	})
}

func (r *receiptRepo) ListByPatient(_ context.Context, patientID int64) ([]*entity.Receipt, error) {
	var out []*entity.Receipt
	err := r.read(func(st *state) error {
		out = st.receipts.filter(func(rc *entity.Receipt) bool { return rc.PatientID == patientID })
		sort.SliceStable(out, func(i, j int) bool {
			if !out[i].Date.Equal(out[j].Date) {
				return out[i].Date.After(out[j].Date)
			}
			return out[i].ID > out[j].ID
		})
		return nil
	})
	return out, err
}

func (r *receiptRepo) CreateImputation(_ context.Context, imp *entity.ReceiptImputation) error {
	return r.write(func(st *state) error {
		if !st.receipts.has(imp.ReceiptID) {
			return fk("receipt", imp.ReceiptID)
		}
		if !st.sales.has(imp.SaleID) {
			return fk("sale", imp.SaleID)
		}
		for _, other := range st.imputations {
			if other.ReceiptID == imp.ReceiptID && other.SaleID == imp.SaleID {
				return integrity("unique violation: imputation (%d, %d)", imp.ReceiptID, imp.SaleID)
			}
		}
		st.imputations = append(st.imputations, *imp)
		return nil
	})
}

func (r *receiptRepo) imputations(keep func(*entity.ReceiptImputation) bool) ([]*entity.ReceiptImputation, error) {
	var out []*entity.ReceiptImputation
	err := r.read(func(st *state) error {
		for i := range st.imputations {
			imp := st.imputations[i]
			if keep(&imp) {
				out = append(out, &imp)
			}
		}
		return nil
	})
	return out, err
}

func (r *receiptRepo) ListImputations(_ context.Context, receiptID int64) ([]*entity.ReceiptImputation, error) {
	return r.imputations(func(imp *entity.ReceiptImputation) bool { return imp.ReceiptID == receiptID })
}

func (r *receiptRepo) ListActiveImputationsBySale(_ context.Context, saleID int64) ([]*entity.ReceiptImputation, error) {
	return r.imputations(func(imp *entity.ReceiptImputation) bool { return imp.SaleID == saleID && imp.Active })
}

func (r *receiptRepo) DeactivateImputations(_ context.Context, receiptID int64) error {
	return r.write(func(st *state) error {
		for i := range st.imputations {
			if st.imputations[i].ReceiptID == receiptID {
				st.imputations[i].Active = false
			}
		}
		return nil
	})
}
