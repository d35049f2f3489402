package engine_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/clinica-api/internal/application/dto"
	"github.com/jhoicas/clinica-api/internal/application/receipts"
	"github.com/jhoicas/clinica-api/internal/domain"
	"github.com/jhoicas/clinica-api/internal/domain/entity"
)

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func moneyPtr(s string) *decimal.Decimal {
	v := money(s)
	return &v
}

func validationFields(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *dto.ValidationError
	require.True(t, errors.As(err, &verr), "se esperaba *dto.ValidationError, obtenido %v", err)
	return verr.Fields
}

// ── Escala de importes y cantidades ──────────────────────────────────────────

func TestCobro_ImporteConMasDeDosDecimalesSeRechaza(t *testing.T) {
	f := newFixture(t, false)
	p, s1, _ := fifoSetup(f)

	_, err := f.eng.Receipts.Register(f.ctx, dto.RegisterReceiptRequest{
		PatientID:   p,
		Amount:      money("0.001"),
		Method:      entity.PaymentCash,
		Imputations: []dto.ImputationRequest{{SaleID: s1, Amount: money("0.001")}},
	})
	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	fields := validationFields(t, err)
	assert.Equal(t, "scale", fields["amount"])
	assert.Equal(t, "scale", fields["imputations[0].amount"])

	assert.True(t, f.getSale(s1).Balance.Equal(dec(100)), "el saldo no cambia")
}

func TestVenta_SubtotalesYTotalEnCentavos(t *testing.T) {
	f := newFixture(t, false)
	service := f.itemType("Servicios", entity.ItemKindService)
	a := f.item(dto.UpsertItemRequest{Name: "Masaje", TypeID: service, UnitPrice: money("10.05")})
	b := f.item(dto.UpsertItemRequest{Name: "Drenaje", TypeID: service, UnitPrice: money("10.05")})
	p := f.patient("Julia")

	sale := f.sale(p, nil,
		dto.SaleLineRequest{ItemID: a, Quantity: money("0.125")},
		dto.SaleLineRequest{ItemID: b, Quantity: money("0.125"), UnitPrice: moneyPtr("10.05")},
	)

	require.Len(t, sale.Lines, 2)
	sum := decimal.Zero
	for _, l := range sale.Lines {
		assert.True(t, l.Subtotal.Equal(money("1.26")), "0.125 × 10.05 = 1.25625 → 1.26, obtenido %s", l.Subtotal)
		sum = sum.Add(l.Subtotal)
	}
	assert.True(t, sale.Total.Equal(sum), "monto_total = Σ subtotales")
	assert.True(t, sale.Total.Equal(money("2.52")))
	assert.True(t, sale.Balance.Equal(sale.Total))
}

func TestVenta_CantidadConMasDeTresDecimalesSeRechaza(t *testing.T) {
	f := newFixture(t, false)
	service := f.itemType("Servicios", entity.ItemKindService)
	a := f.item(dto.UpsertItemRequest{Name: "Masaje", TypeID: service, UnitPrice: dec(100)})
	p := f.patient("Karen")

	_, err := f.eng.Sales.Create(f.ctx, dto.CreateSaleRequest{
		PatientID: p,
		Lines: []dto.SaleLineRequest{
			{ItemID: a, Quantity: money("0.1255")},
			{ItemID: a, Quantity: dec(1), Discount: money("0.001")},
		},
	})
	require.Error(t, err)
	fields := validationFields(t, err)
	assert.Equal(t, "scale", fields["lines[0].quantity"])
	assert.Equal(t, "scale", fields["lines[1].discount"])
}

func TestVenta_MontoCeroNaceCobradaYSePuedeAnular(t *testing.T) {
	f := newFixture(t, false)
	s := f.compositionSetup()
	p := f.patient("Lucía")

	sale := f.sale(p, nil, dto.SaleLineRequest{ItemID: s.x, Quantity: dec(1), Discount: s.price})
	assert.True(t, sale.Balance.IsZero())
	assert.Equal(t, entity.SaleStateCharged, sale.State, "saldo cero => Charged")

	voided, err := f.eng.Sales.Void(f.ctx, sale.ID, dto.VoidRequest{Reason: "cortesía mal cargada"})
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStateVoided, voided.State)
	assert.True(t, f.onHand(s.a).Equal(dec(10)), "la anulación devuelve los insumos")
}

// ── Imputaciones explícitas ──────────────────────────────────────────────────

func TestCobro_ImputacionMayorAlSaldoSeRechaza(t *testing.T) {
	f := newFixture(t, false)
	p, s1, _ := fifoSetup(f)

	_, err := f.eng.Receipts.Register(f.ctx, dto.RegisterReceiptRequest{
		PatientID:   p,
		Amount:      dec(150),
		Method:      entity.PaymentCash,
		Imputations: []dto.ImputationRequest{{SaleID: s1, Amount: dec(150)}},
	})
	assert.ErrorIs(t, err, domain.ErrAmountExceedsBalance)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
	assert.True(t, f.getSale(s1).Balance.Equal(dec(100)))

	list, err := f.eng.Receipts.ListByPatient(f.ctx, p)
	require.NoError(t, err)
	assert.Empty(t, list, "el cobro rechazado no se persiste")
}

func TestCobro_ImputacionesMayoresAlMontoSeRechazan(t *testing.T) {
	f := newFixture(t, false)
	p, s1, s2 := fifoSetup(f)

	_, err := f.eng.Receipts.Register(f.ctx, dto.RegisterReceiptRequest{
		PatientID: p,
		Amount:    dec(50),
		Method:    entity.PaymentTransfer,
		Imputations: []dto.ImputationRequest{
			{SaleID: s1, Amount: dec(40)},
			{SaleID: s2, Amount: dec(30)},
		},
	})
	assert.ErrorIs(t, err, receipts.ErrImputationsExceed)
	assert.True(t, f.getSale(s1).Balance.Equal(dec(100)))
	assert.True(t, f.getSale(s2).Balance.Equal(dec(50)))
}

func TestCobro_FIFOConVentaRetroactivaImputaPorFecha(t *testing.T) {
	f := newFixture(t, false)
	service := f.itemType("Consultas", entity.ItemKindService)
	item := f.item(dto.UpsertItemRequest{Name: "Consulta", TypeID: service, UnitPrice: dec(100)})
	p := f.patient("Marta")
	later := f.sale(p, date(2024, 1, 10), dto.SaleLineRequest{ItemID: item, Quantity: dec(1)}).ID
	earlier := f.sale(p, date(2024, 1, 2), dto.SaleLineRequest{ItemID: item, Quantity: dec(1)}).ID
	require.Greater(t, earlier, later, "la venta retroactiva tiene id mayor")

	rc, err := f.eng.Receipts.Register(f.ctx, dto.RegisterReceiptRequest{
		PatientID: p, Amount: dec(130), Method: entity.PaymentCash, AutoFIFO: true,
	})
	require.NoError(t, err)
	require.Len(t, rc.Imputations, 2)
	assert.Equal(t, earlier, rc.Imputations[0].SaleID, "primero la de fecha más antigua")
	assert.True(t, rc.Imputations[0].Amount.Equal(dec(100)))
	assert.Equal(t, later, rc.Imputations[1].SaleID)
	assert.True(t, rc.Imputations[1].Amount.Equal(dec(30)))
}

// ── Agenda y sesiones ────────────────────────────────────────────────────────

type linkedSetup struct {
	patient, prof, planID int64
	planType              int64
	app                   *dto.AppointmentResponse
}

func (f *fixture) linkedAppointment() linkedSetup {
	f.t.Helper()
	y, planType := f.planSetup()
	p := f.patient("Nora")
	prof := f.professional("Dra. Ríos")
	sale := f.sale(p, nil, dto.SaleLineRequest{ItemID: y, Quantity: dec(1)})
	app, err := f.eng.Agenda.Create(f.ctx, dto.CreateAppointmentRequest{
		PatientID: p, ProfessionalID: prof, Start: f.clock.Now().Add(24 * time.Hour), PlanTypeID: &planType,
	})
	require.NoError(f.t, err)
	require.NotNil(f.t, app.SessionID)
	return linkedSetup{patient: p, prof: prof, planID: sale.Plans[0].ID, planType: planType, app: app}
}

func (f *fixture) plan(id int64) *dto.PlanResponse {
	f.t.Helper()
	out, err := f.eng.Plans.GetByID(f.ctx, id)
	require.NoError(f.t, err)
	return out
}

func TestTurno_ReprogramarReplicaEnLaSesion(t *testing.T) {
	f := newFixture(t, false)
	ls := f.linkedAppointment()
	prof2 := f.professional("Dr. Vera")
	newStart := f.clock.Now().Add(72 * time.Hour)

	updated, err := f.eng.Agenda.Update(f.ctx, ls.app.ID, dto.UpdateAppointmentRequest{ProfessionalID: &prof2, Start: &newStart})
	require.NoError(t, err)
	assert.Equal(t, prof2, updated.ProfessionalID)

	s := f.plan(ls.planID).Sessions[0]
	require.NotNil(t, s.ScheduledAt)
	assert.True(t, s.ScheduledAt.Equal(newStart), "la sesión toma la nueva fecha")
	require.NotNil(t, s.ProfessionalID)
	assert.Equal(t, prof2, *s.ProfessionalID, "la sesión toma el nuevo profesional")
	require.NotNil(t, s.AppointmentID)
	assert.Equal(t, ls.app.ID, *s.AppointmentID)
}

func TestTurno_BorrarLiberaLaSesion(t *testing.T) {
	f := newFixture(t, false)
	ls := f.linkedAppointment()

	require.NoError(t, f.eng.Agenda.Delete(f.ctx, ls.app.ID))

	_, err := f.eng.Agenda.GetByID(f.ctx, ls.app.ID)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	s := f.plan(ls.planID).Sessions[0]
	assert.Nil(t, s.AppointmentID)
	assert.Nil(t, s.ScheduledAt)
	assert.Equal(t, entity.SessionStateScheduled, s.State)
}

func TestTurno_CompletarTurnoCompletaLaSesion(t *testing.T) {
	f := newFixture(t, false)
	ls := f.linkedAppointment()

	done, err := f.eng.Agenda.Complete(f.ctx, ls.app.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AppointmentStateCompleted, done.State)

	plan := f.plan(ls.planID)
	assert.Equal(t, 1, plan.CompletedSessions)
	assert.Equal(t, entity.SessionStateCompleted, plan.Sessions[0].State)
	assert.NotNil(t, plan.Sessions[0].ActualAt)
}

func TestTurno_VincularSesionOcupadaSeRechaza(t *testing.T) {
	f := newFixture(t, false)
	ls := f.linkedAppointment()

	other, err := f.eng.Agenda.Create(f.ctx, dto.CreateAppointmentRequest{
		PatientID: ls.patient, ProfessionalID: ls.prof, Start: f.clock.Now().Add(48 * time.Hour),
	})
	require.NoError(t, err)
	require.Nil(t, other.SessionID, "sin tipo de plan no hay vínculo automático")

	_, err = f.eng.Agenda.LinkSession(f.ctx, other.ID, *ls.app.SessionID)
	assert.ErrorIs(t, err, domain.ErrSessionAlreadyLinked)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))

	free := f.plan(ls.planID).Sessions[1]
	linked, err := f.eng.Agenda.LinkSession(f.ctx, other.ID, free.ID)
	require.NoError(t, err)
	require.NotNil(t, linked.SessionID)
	assert.Equal(t, free.ID, *linked.SessionID)
}

func TestPlan_UltimaSesionCompletaElPlan(t *testing.T) {
	f := newFixture(t, false)
	y, _ := f.planSetup()
	p := f.patient("Olga")
	sale := f.sale(p, nil, dto.SaleLineRequest{ItemID: y, Quantity: dec(1)})
	planID := sale.Plans[0].ID

	sessions := f.plan(planID).Sessions
	require.Len(t, sessions, 10)
	for i, s := range sessions {
		_, err := f.eng.Plans.CompleteSession(f.ctx, s.ID, dto.CompleteSessionRequest{})
		require.NoError(t, err)
		if i < len(sessions)-1 {
			assert.Equal(t, entity.PlanStateActive, f.plan(planID).State, "sigue activo en la sesión %d", s.Number)
		}
	}

	plan := f.plan(planID)
	assert.Equal(t, entity.PlanStateCompleted, plan.State)
	assert.Equal(t, 10, plan.CompletedSessions)
}

// ── Validaciones de texto ────────────────────────────────────────────────────

func TestCatalogo_NombreEnBlancoSeRechaza(t *testing.T) {
	f := newFixture(t, false)
	service := f.itemType("Servicios", entity.ItemKindService)

	_, err := f.eng.Catalog.UpsertItem(f.ctx, dto.UpsertItemRequest{Name: "   ", TypeID: service})
	require.Error(t, err)
	assert.Equal(t, "notblank", validationFields(t, err)["name"])

	_, err = f.eng.Catalog.CreateItemType(f.ctx, dto.CreateItemTypeRequest{Name: "\t ", Kind: entity.ItemKindProduct})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	out, err := f.eng.Catalog.UpsertItem(f.ctx, dto.UpsertItemRequest{Name: "  Masaje  ", TypeID: service})
	require.NoError(t, err)
	assert.Equal(t, "Masaje", out.Name, "el nombre se guarda sin espacios al borde")
}

// ── Caja chica ───────────────────────────────────────────────────────────────

func TestCaja_SesionActual(t *testing.T) {
	f := newFixture(t, false)

	_, err := f.eng.PettyCash.Current(f.ctx)
	assert.ErrorIs(t, err, domain.ErrNoOpenCashSession)

	session, err := f.eng.PettyCash.Open(f.ctx, dto.OpenCashSessionRequest{InitialAmount: dec(1000)})
	require.NoError(t, err)
	_, err = f.eng.PettyCash.RecordMovement(f.ctx, dto.RecordCashMovementRequest{
		SessionID: session.ID, Kind: entity.CashMovementIncome, Description: "Reposición", Amount: dec(500),
	})
	require.NoError(t, err)

	current, err := f.eng.PettyCash.Current(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, session.ID, current.ID)
	assert.Len(t, current.Movements, 1)
	assert.True(t, current.RunningBalance.Equal(dec(1500)))

	_, err = f.eng.PettyCash.Close(f.ctx, dto.CloseCashSessionRequest{DeclaredFinal: dec(1500)})
	require.NoError(t, err, "la lectura previa no deja la sesión bloqueada")
}
