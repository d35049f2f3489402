package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/clinica-api/internal/application/dto"
	"github.com/jhoicas/clinica-api/internal/domain"
	"github.com/jhoicas/clinica-api/internal/domain/inventory"
)

// MonthlySummary resumen de stock del mes (inicial, ingreso, ventas, otros, final) por ítem.
// Los límites del mes se toman en la zona horaria configurada.
func (l *Ledger) MonthlySummary(ctx context.Context, year, month int) ([]dto.MonthlySummaryRowResponse, error) {
	if month < 1 || month > 12 || year < 1900 || year > 9999 {
		return nil, domain.ErrValidation.WithMessage("invalid period %04d-%02d", year, month)
	}
	start, end := inventory.MonthBounds(year, time.Month(month), l.loc)
	initial, err := l.repo.OnHandBefore(ctx, start)
	if err != nil {
		return nil, err
	}
	movs, err := l.repo.ListBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	rows := inventory.BuildMonthlySummary(initial, movs)
	out := make([]dto.MonthlySummaryRowResponse, 0, len(rows))
	for _, r := range rows {
		name := ""
		item, err := l.items.GetByID(ctx, r.ItemID)
		if err != nil {
			return nil, err
		}
		if item != nil {
			name = item.Name
		}
		out = append(out, dto.MonthlySummaryRowResponse{
			ItemID:   r.ItemID,
			ItemName: name,
			Initial:  r.Initial,
			Ingreso:  r.Ingreso,
			Ventas:   r.Ventas,
			Otros:    r.Otros,
			Final:    r.Final,
			Negative: r.Final.IsNegative(),
		})
	}
	return out, nil
}
