package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/clinica-api/internal/application/auth"
	"github.com/jhoicas/clinica-api/internal/application/dto"
	"github.com/jhoicas/clinica-api/internal/application/engine"
	"github.com/jhoicas/clinica-api/internal/domain"
	"github.com/jhoicas/clinica-api/internal/domain/entity"
	"github.com/jhoicas/clinica-api/internal/infrastructure/memory"
	"github.com/jhoicas/clinica-api/pkg/clock"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture: motor completo sobre el store en memoria con reloj fijo
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	t     *testing.T
	ctx   context.Context
	clock *clock.Fixed
	store *memory.Store
	eng   *engine.Engine
}

func newFixture(t *testing.T, strict bool) *fixture {
	t.Helper()
	c := clock.NewFixed(time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC))
	store := memory.New()
	eng := engine.New(store, store.Repos(), engine.Options{
		Clock:       c,
		StrictStock: strict,
		BcryptCost:  4,
		JWT:         auth.JWTConfig{Secret: "test-secret", ExpMinutes: 60, Issuer: "clinica-test"},
	})
	return &fixture{t: t, ctx: context.Background(), clock: c, store: store, eng: eng}
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
	return &t
}

func (f *fixture) itemType(name, kind string) int64 {
	f.t.Helper()
	out, err := f.eng.Catalog.CreateItemType(f.ctx, dto.CreateItemTypeRequest{Name: name, Kind: kind})
	require.NoError(f.t, err)
	return out.ID
}

func (f *fixture) planType(name string, sessions int) int64 {
	f.t.Helper()
	out, err := f.eng.Catalog.CreatePlanType(f.ctx, dto.CreatePlanTypeRequest{Name: name, DefaultSessions: sessions})
	require.NoError(f.t, err)
	return out.ID
}

func (f *fixture) item(in dto.UpsertItemRequest) int64 {
	f.t.Helper()
	out, err := f.eng.Catalog.UpsertItem(f.ctx, in)
	require.NoError(f.t, err)
	return out.ID
}

func (f *fixture) patient(first string) int64 {
	f.t.Helper()
	out, err := f.eng.Accounts.CreatePatient(f.ctx, dto.PatientRequest{FirstName: first, LastName: "Benítez"})
	require.NoError(f.t, err)
	return out.ID
}

func (f *fixture) professional(name string) int64 {
	f.t.Helper()
	out, err := f.eng.Accounts.SaveProfessional(f.ctx, 0, dto.ProfessionalRequest{Name: name, Specialty: "Cosmiatría"})
	require.NoError(f.t, err)
	return out.ID
}

func (f *fixture) supplier(name string) int64 {
	f.t.Helper()
	out, err := f.eng.Accounts.SaveSupplier(f.ctx, 0, dto.SupplierRequest{Name: name})
	require.NoError(f.t, err)
	return out.ID
}

func (f *fixture) stockIn(itemID int64, qty int64) {
	f.t.Helper()
	_, err := f.eng.Stock.PostMovement(f.ctx, dto.PostMovementRequest{
		ItemID:   itemID,
		Quantity: dec(qty),
		Kind:     entity.MovementKindIngreso,
		Motive:   entity.MotiveAdjustmentPlus,
		Note:     "stock inicial",
	})
	require.NoError(f.t, err)
}

func (f *fixture) onHand(itemID int64) decimal.Decimal {
	f.t.Helper()
	out, err := f.eng.Stock.OnHand(f.ctx, itemID, nil)
	require.NoError(f.t, err)
	return out.Quantity
}

func (f *fixture) sale(patientID int64, when *time.Time, lines ...dto.SaleLineRequest) *dto.SaleResponse {
	f.t.Helper()
	out, err := f.eng.Sales.Create(f.ctx, dto.CreateSaleRequest{PatientID: patientID, Date: when, Lines: lines})
	require.NoError(f.t, err)
	return out
}

func (f *fixture) getSale(id int64) *dto.SaleResponse {
	f.t.Helper()
	out, err := f.eng.Sales.GetByID(f.ctx, id)
	require.NoError(f.t, err)
	return out
}

// compositionSetup ítem X (servicio) con receta [(A, 2), (B, 1)]; A=10 y B=5 en stock.
type compositionSetup struct {
	a, b, x int64
	price   decimal.Decimal
}

func (f *fixture) compositionSetup() compositionSetup {
	consumable := f.itemType("Insumos", entity.ItemKindConsumable)
	service := f.itemType("Servicios", entity.ItemKindService)
	a := f.item(dto.UpsertItemRequest{Name: "Gel conductor", TypeID: consumable, UnitPrice: dec(5000), GeneratesStock: true})
	b := f.item(dto.UpsertItemRequest{Name: "Guantes de látex", TypeID: consumable, UnitPrice: dec(1000), GeneratesStock: true})
	price := dec(150000)
	x := f.item(dto.UpsertItemRequest{
		Name:      "Limpieza facial",
		TypeID:    service,
		UnitPrice: price,
		Composition: []dto.CompositionLineRequest{
			{ComponentID: a, Quantity: dec(2)},
			{ComponentID: b, Quantity: dec(1)},
		},
	})
	f.stockIn(a, 10)
	f.stockIn(b, 5)
	return compositionSetup{a: a, b: b, x: x, price: price}
}

// planSetup ítem Y que genera un plan de 10 sesiones.
func (f *fixture) planSetup() (itemID, planTypeID int64) {
	kind := f.itemType("Planes", entity.ItemKindPlan)
	planTypeID = f.planType("Depilación láser", 10)
	itemID = f.item(dto.UpsertItemRequest{Name: "Paquete depilación", TypeID: kind, UnitPrice: dec(900000), PlanTypeID: &planTypeID})
	return itemID, planTypeID
}

// ── Venta con receta ──────────────────────────────────────────────────────────

func TestVenta_ConRecetaDescuentaComponentes(t *testing.T) {
	f := newFixture(t, false)
	s := f.compositionSetup()
	p := f.patient("Ana")

	sale := f.sale(p, nil, dto.SaleLineRequest{ItemID: s.x, Quantity: dec(1)})

	assert.True(t, f.onHand(s.a).Equal(dec(8)), "A debe quedar en 8")
	assert.True(t, f.onHand(s.b).Equal(dec(4)), "B debe quedar en 4")
	assert.True(t, sale.Total.Equal(s.price), "monto_total = precio de X")
	assert.True(t, sale.Balance.Equal(s.price), "saldo = monto_total")
	assert.Equal(t, entity.SaleStateConfirmed, sale.State)
}

func TestVenta_DescuentoIgualAlSubtotalGeneraLineaEnCero(t *testing.T) {
	f := newFixture(t, false)
	s := f.compositionSetup()
	p := f.patient("Ana")

	sale := f.sale(p, nil, dto.SaleLineRequest{ItemID: s.x, Quantity: dec(1), Discount: s.price})

	require.Len(t, sale.Lines, 1)
	assert.True(t, sale.Lines[0].Subtotal.IsZero())
	assert.True(t, sale.Total.IsZero())
}

// ── Generación de planes ─────────────────────────────────────────────────────

func TestVenta_GeneraPlanDeSesiones(t *testing.T) {
	f := newFixture(t, false)
	y, _ := f.planSetup()
	p := f.patient("Belén")

	sale := f.sale(p, nil, dto.SaleLineRequest{ItemID: y, Quantity: dec(1)})
	require.Len(t, sale.Plans, 1)

	plan, err := f.eng.Plans.GetByID(f.ctx, sale.Plans[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 10, plan.TotalSessions)
	assert.Equal(t, 0, plan.CompletedSessions)
	assert.Equal(t, entity.PlanStateActive, plan.State)
	require.Len(t, plan.Sessions, 10)
	for i, s := range plan.Sessions {
		assert.Equal(t, i+1, s.Number, "numeración densa 1..N")
		assert.Equal(t, entity.SessionStateScheduled, s.State)
		assert.Nil(t, s.AppointmentID)
	}
}

// ── Cobros FIFO ──────────────────────────────────────────────────────────────

func fifoSetup(f *fixture) (patient, s1, s2 int64) {
	service := f.itemType("Consultas", entity.ItemKindService)
	item := f.item(dto.UpsertItemRequest{Name: "Consulta", TypeID: service, UnitPrice: dec(100)})
	patient = f.patient("Carla")
	s1 = f.sale(patient, date(2024, 1, 1), dto.SaleLineRequest{ItemID: item, Quantity: dec(1), UnitPrice: decPtr(100)}).ID
	s2 = f.sale(patient, date(2024, 1, 5), dto.SaleLineRequest{ItemID: item, Quantity: dec(1), UnitPrice: decPtr(50)}).ID
	return patient, s1, s2
}

func TestCobro_FIFOImputaMasAntiguaPrimero(t *testing.T) {
	f := newFixture(t, false)
	p, s1, s2 := fifoSetup(f)

	rc, err := f.eng.Receipts.Register(f.ctx, dto.RegisterReceiptRequest{
		PatientID: p, Amount: dec(120), Method: entity.PaymentCash, AutoFIFO: true,
	})
	require.NoError(t, err)

	sale1, sale2 := f.getSale(s1), f.getSale(s2)
	assert.True(t, sale1.Balance.IsZero())
	assert.Equal(t, entity.SaleStateCharged, sale1.State)
	assert.True(t, sale2.Balance.Equal(dec(30)))
	assert.Equal(t, entity.SaleStateConfirmed, sale2.State)

	assert.True(t, rc.Amount.Equal(dec(120)))
	require.Len(t, rc.Imputations, 2)
	assert.Equal(t, s1, rc.Imputations[0].SaleID)
	assert.True(t, rc.Imputations[0].Amount.Equal(dec(100)))
	assert.Equal(t, s2, rc.Imputations[1].SaleID)
	assert.True(t, rc.Imputations[1].Amount.Equal(dec(20)))
	assert.True(t, rc.Unallocated.IsZero())

	balances, err := f.eng.Reports.PatientBalances(f.ctx, true)
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.True(t, balances[0].Balance.Equal(dec(30)), "Σ saldo se reduce exactamente en el monto")
}

func TestCobro_AnulacionRestauraSaldos(t *testing.T) {
	f := newFixture(t, false)
	p, s1, s2 := fifoSetup(f)
	rc, err := f.eng.Receipts.Register(f.ctx, dto.RegisterReceiptRequest{
		PatientID: p, Amount: dec(120), Method: entity.PaymentTransfer, AutoFIFO: true,
	})
	require.NoError(t, err)

	voided, err := f.eng.Receipts.Void(f.ctx, rc.ID, dto.VoidRequest{Reason: "cobro duplicado"})
	require.NoError(t, err)

	sale1, sale2 := f.getSale(s1), f.getSale(s2)
	assert.True(t, sale1.Balance.Equal(dec(100)))
	assert.Equal(t, entity.SaleStateConfirmed, sale1.State, "vuelve de Charged a Confirmed")
	assert.True(t, sale2.Balance.Equal(dec(50)))
	assert.Equal(t, entity.ReceiptStateVoided, voided.State)
	require.Len(t, voided.Imputations, 2, "las imputaciones se conservan")
	for _, imp := range voided.Imputations {
		assert.False(t, imp.Active)
	}

	_, err = f.eng.Receipts.Void(f.ctx, rc.ID, dto.VoidRequest{Reason: "otra vez"})
	assert.ErrorIs(t, err, domain.ErrReceiptAlreadyVoided)
}

func TestCobro_MontoMayorAlSaldoQuedaSinImputar(t *testing.T) {
	f := newFixture(t, false)
	p, _, _ := fifoSetup(f)

	rc, err := f.eng.Receipts.Register(f.ctx, dto.RegisterReceiptRequest{
		PatientID: p, Amount: dec(200), Method: entity.PaymentCash, AutoFIFO: true,
	})
	require.NoError(t, err)
	assert.True(t, rc.Unallocated.Equal(dec(50)))
}

// ── Vínculo turno ↔ plan ─────────────────────────────────────────────────────

func TestTurno_SeVinculaALaPrimeraSesionLibre(t *testing.T) {
	f := newFixture(t, false)
	y, planType := f.planSetup()
	p := f.patient("Daniela")
	prof := f.professional("Dra. Ríos")
	sale := f.sale(p, nil, dto.SaleLineRequest{ItemID: y, Quantity: dec(1)})
	planID := sale.Plans[0].ID

	start := time.Date(2024, 3, 12, 15, 0, 0, 0, time.UTC)
	app, err := f.eng.Agenda.Create(f.ctx, dto.CreateAppointmentRequest{
		PatientID: p, ProfessionalID: prof, Start: start, PlanTypeID: &planType,
	})
	require.NoError(t, err)

	plan, err := f.eng.Plans.GetByID(f.ctx, planID)
	require.NoError(t, err)
	first := plan.Sessions[0]
	require.NotNil(t, first.AppointmentID)
	assert.Equal(t, app.ID, *first.AppointmentID)
	require.NotNil(t, app.SessionID)
	assert.Equal(t, first.ID, *app.SessionID)
	require.NotNil(t, first.ScheduledAt)
	assert.True(t, first.ScheduledAt.Equal(start))

	_, err = f.eng.Plans.CompleteSession(f.ctx, first.ID, dto.CompleteSessionRequest{})
	require.NoError(t, err)

	plan, err = f.eng.Plans.GetByID(f.ctx, planID)
	require.NoError(t, err)
	assert.Equal(t, 1, plan.CompletedSessions)
	assert.Equal(t, entity.SessionStateCompleted, plan.Sessions[0].State)

	got, err := f.eng.Agenda.GetByID(f.ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AppointmentStateCompleted, got.State)
}

func TestTurno_CancelarLiberaLaSesion(t *testing.T) {
	f := newFixture(t, false)
	y, planType := f.planSetup()
	p := f.patient("Elena")
	prof := f.professional("Dr. Vera")
	sale := f.sale(p, nil, dto.SaleLineRequest{ItemID: y, Quantity: dec(1)})

	app, err := f.eng.Agenda.Create(f.ctx, dto.CreateAppointmentRequest{
		PatientID: p, ProfessionalID: prof, Start: f.clock.Now().Add(24 * time.Hour), PlanTypeID: &planType,
	})
	require.NoError(t, err)
	require.NotNil(t, app.SessionID)

	cancelled, err := f.eng.Agenda.Cancel(f.ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AppointmentStateCancelled, cancelled.State)
	assert.Nil(t, cancelled.SessionID)

	plan, err := f.eng.Plans.GetByID(f.ctx, sale.Plans[0].ID)
	require.NoError(t, err)
	assert.Nil(t, plan.Sessions[0].AppointmentID)
	assert.Nil(t, plan.Sessions[0].ScheduledAt)

	// El siguiente turno vuelve a tomar la sesión 1.
	next, err := f.eng.Agenda.Create(f.ctx, dto.CreateAppointmentRequest{
		PatientID: p, ProfessionalID: prof, Start: f.clock.Now().Add(48 * time.Hour), PlanTypeID: &planType,
	})
	require.NoError(t, err)
	require.NotNil(t, next.SessionID)
	assert.Equal(t, plan.Sessions[0].ID, *next.SessionID)
}

func TestTurno_SinPlanActivoQuedaSinVinculo(t *testing.T) {
	f := newFixture(t, false)
	_, planType := f.planSetup()
	p := f.patient("Fabiana")
	prof := f.professional("Dr. Vera")

	app, err := f.eng.Agenda.Create(f.ctx, dto.CreateAppointmentRequest{
		PatientID: p, ProfessionalID: prof, Start: f.clock.Now(), PlanTypeID: &planType,
	})
	require.NoError(t, err)
	assert.Nil(t, app.SessionID)
	assert.Equal(t, 30, app.DurationMinutes)
}

// ── Caja chica ───────────────────────────────────────────────────────────────

func TestCaja_CierreConArqueo(t *testing.T) {
	f := newFixture(t, false)
	supplier := f.supplier("Droguería Central")
	consumable := f.itemType("Insumos", entity.ItemKindConsumable)
	gel := f.item(dto.UpsertItemRequest{Name: "Gel", TypeID: consumable, UnitPrice: dec(5000), GeneratesStock: true})
	purchase, err := f.eng.Purchases.Create(f.ctx, dto.CreatePurchaseRequest{
		SupplierID: supplier,
		Condition:  entity.PurchaseConditionCash,
		Lines:      []dto.PurchaseLineRequest{{ItemID: gel, Quantity: dec(100), UnitPrice: dec(3000)}},
	})
	require.NoError(t, err)

	session, err := f.eng.PettyCash.Open(f.ctx, dto.OpenCashSessionRequest{InitialAmount: dec(1000000)})
	require.NoError(t, err)
	_, err = f.eng.PettyCash.RecordMovement(f.ctx, dto.RecordCashMovementRequest{
		SessionID: session.ID, Kind: entity.CashMovementExpense, Description: "Artículos de limpieza", Amount: dec(200000),
	})
	require.NoError(t, err)
	_, err = f.eng.PettyCash.RecordMovement(f.ctx, dto.RecordCashMovementRequest{
		SessionID: session.ID, Kind: entity.CashMovementPurchasePayment, Description: "Pago gel", Amount: dec(300000), PurchaseID: &purchase.ID,
	})
	require.NoError(t, err)

	closed, err := f.eng.PettyCash.Close(f.ctx, dto.CloseCashSessionRequest{DeclaredFinal: dec(490000)})
	require.NoError(t, err)
	assert.Equal(t, entity.CashSessionClosed, closed.State)
	require.NotNil(t, closed.ComputedFinal)
	require.NotNil(t, closed.Difference)
	assert.True(t, closed.ComputedFinal.Equal(dec(500000)))
	assert.True(t, closed.Difference.Equal(dec(-10000)))
}
