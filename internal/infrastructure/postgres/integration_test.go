//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/jhoicas/clinica-api/internal/application/auth"
	"github.com/jhoicas/clinica-api/internal/application/dto"
	"github.com/jhoicas/clinica-api/internal/application/engine"
	"github.com/jhoicas/clinica-api/internal/domain"
	"github.com/jhoicas/clinica-api/internal/domain/entity"
	"github.com/jhoicas/clinica-api/internal/infrastructure/postgres"
	"github.com/jhoicas/clinica-api/pkg/clock"
	"github.com/jhoicas/clinica-api/pkg/config"
	"github.com/jhoicas/clinica-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Contenedor PostgreSQL compartido por los tests del paquete
// ──────────────────────────────────────────────────────────────────────────────

func startEngine(t *testing.T) (*engine.Engine, context.Context) {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("clinica_test"),
		tcPostgres.WithUsername("clinica"),
		tcPostgres.WithPassword("clinica"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err, "no se pudo iniciar el contenedor de PostgreSQL")
	t.Cleanup(func() { _ = pgC.Terminate(context.Background()) })

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := postgres.NewPool(ctx, config.DBConfig{
		DatabaseURL:      dsn,
		MaxConns:         5,
		StatementTimeout: 10 * time.Second,
		LockTimeout:      5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	applied, err := postgres.Migrate(ctx, pool, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, 2, applied)

	again, err := postgres.Migrate(ctx, pool, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, 0, again, "las migraciones ya aplicadas no se repiten")

	eng := engine.New(postgres.NewTxRunner(pool), postgres.NewRepos(pool), engine.Options{
		Clock:      clock.NewFixed(time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC)),
		BcryptCost: 4,
		JWT:        auth.JWTConfig{Secret: "integration", ExpMinutes: 5, Issuer: "clinica-test"},
	})
	return eng, ctx
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestPostgres_FlujoCompleto(t *testing.T) {
	if testing.Short() {
		t.Skip("requiere Docker")
	}
	eng, ctx := startEngine(t)

	// ── Catálogo ────────────────────────────────────────────────────────────
	consumable, err := eng.Catalog.CreateItemType(ctx, dto.CreateItemTypeRequest{Name: "Insumos", Kind: entity.ItemKindConsumable})
	require.NoError(t, err)
	service, err := eng.Catalog.CreateItemType(ctx, dto.CreateItemTypeRequest{Name: "Servicios", Kind: entity.ItemKindService})
	require.NoError(t, err)
	planKind, err := eng.Catalog.CreateItemType(ctx, dto.CreateItemTypeRequest{Name: "Planes", Kind: entity.ItemKindPlan})
	require.NoError(t, err)
	_, err = eng.Catalog.CreateItemType(ctx, dto.CreateItemTypeRequest{Name: "INSUMOS", Kind: entity.ItemKindProduct})
	assert.Equal(t, domain.KindIntegrity, domain.KindOf(err), "nombre de tipo único sin distinguir mayúsculas")

	planType, err := eng.Catalog.CreatePlanType(ctx, dto.CreatePlanTypeRequest{Name: "Depilación láser", DefaultSessions: 10})
	require.NoError(t, err)

	gel, err := eng.Catalog.UpsertItem(ctx, dto.UpsertItemRequest{Name: "Gel conductor", TypeID: consumable.ID, UnitPrice: dec(5000), GeneratesStock: true})
	require.NoError(t, err)
	facial, err := eng.Catalog.UpsertItem(ctx, dto.UpsertItemRequest{
		Name: "Limpieza facial", TypeID: service.ID, UnitPrice: dec(100),
		Composition: []dto.CompositionLineRequest{{ComponentID: gel.ID, Quantity: dec(2)}},
	})
	require.NoError(t, err)
	plan, err := eng.Catalog.UpsertItem(ctx, dto.UpsertItemRequest{Name: "Paquete depilación", TypeID: planKind.ID, UnitPrice: dec(50), PlanTypeID: &planType.ID})
	require.NoError(t, err)

	found, err := eng.Catalog.List(ctx, dto.ItemFilterRequest{Search: "LIMPIEZA facial"})
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, facial.ID, found.Items[0].ID)

	// ── Compras y stock ─────────────────────────────────────────────────────
	supplier, err := eng.Accounts.SaveSupplier(ctx, 0, dto.SupplierRequest{Name: "Droguería Central"})
	require.NoError(t, err)
	purchase, err := eng.Purchases.Create(ctx, dto.CreatePurchaseRequest{
		SupplierID: supplier.ID,
		Condition:  entity.PurchaseConditionCash,
		Lines:      []dto.PurchaseLineRequest{{ItemID: gel.ID, Quantity: dec(10), UnitPrice: dec(3000)}},
	})
	require.NoError(t, err)
	onHand, err := eng.Stock.OnHand(ctx, gel.ID, nil)
	require.NoError(t, err)
	assert.True(t, onHand.Quantity.Equal(dec(10)))

	// ── Ventas, planes y cobros ─────────────────────────────────────────────
	patient, err := eng.Accounts.CreatePatient(ctx, dto.PatientRequest{FirstName: "Ana", LastName: "Benítez"})
	require.NoError(t, err)
	prof, err := eng.Accounts.SaveProfessional(ctx, 0, dto.ProfessionalRequest{Name: "Dra. Ríos"})
	require.NoError(t, err)

	d1 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	s1, err := eng.Sales.Create(ctx, dto.CreateSaleRequest{PatientID: patient.ID, ProfessionalID: &prof.ID, Date: &d1,
		Lines: []dto.SaleLineRequest{{ItemID: facial.ID, Quantity: dec(1)}}})
	require.NoError(t, err)
	s2, err := eng.Sales.Create(ctx, dto.CreateSaleRequest{PatientID: patient.ID, Date: &d2,
		Lines: []dto.SaleLineRequest{{ItemID: plan.ID, Quantity: dec(1)}}})
	require.NoError(t, err)
	require.Len(t, s2.Plans, 1)

	onHand, err = eng.Stock.OnHand(ctx, gel.ID, nil)
	require.NoError(t, err)
	assert.True(t, onHand.Quantity.Equal(dec(8)))

	rc, err := eng.Receipts.Register(ctx, dto.RegisterReceiptRequest{PatientID: patient.ID, Amount: dec(120), Method: entity.PaymentCash, AutoFIFO: true})
	require.NoError(t, err)
	require.Len(t, rc.Imputations, 2)
	assert.Equal(t, s1.ID, rc.Imputations[0].SaleID)
	assert.True(t, rc.Imputations[0].Amount.Equal(dec(100)))
	assert.True(t, rc.Imputations[1].Amount.Equal(dec(20)))

	got, err := eng.Sales.GetByID(ctx, s1.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStateCharged, got.State)

	balances, err := eng.Reports.PatientBalances(ctx, true)
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.True(t, balances[0].Balance.Equal(dec(30)))
	assert.Equal(t, "Ana Benítez", balances[0].PatientName)

	_, err = eng.Receipts.Void(ctx, rc.ID, dto.VoidRequest{Reason: "duplicado"})
	require.NoError(t, err)
	got, err = eng.Sales.GetByID(ctx, s1.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(dec(100)))
	assert.Equal(t, entity.SaleStateConfirmed, got.State)

	// ── Agenda ──────────────────────────────────────────────────────────────
	start := time.Date(2024, 3, 12, 15, 0, 0, 0, time.UTC)
	app, err := eng.Agenda.Create(ctx, dto.CreateAppointmentRequest{PatientID: patient.ID, ProfessionalID: prof.ID, Start: start, PlanTypeID: &planType.ID})
	require.NoError(t, err)
	require.NotNil(t, app.SessionID)

	done, err := eng.Agenda.Complete(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AppointmentStateCompleted, done.State)
	detail, err := eng.Plans.GetByID(ctx, s2.Plans[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, detail.CompletedSessions)

	history, err := eng.Reports.PatientHistory(ctx, patient.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, history)

	// ── Caja chica ──────────────────────────────────────────────────────────
	session, err := eng.PettyCash.Open(ctx, dto.OpenCashSessionRequest{InitialAmount: dec(1000000)})
	require.NoError(t, err)
	_, err = eng.PettyCash.Open(ctx, dto.OpenCashSessionRequest{InitialAmount: dec(1)})
	assert.ErrorIs(t, err, domain.ErrCashSessionAlreadyOpen)
	_, err = eng.PettyCash.RecordMovement(ctx, dto.RecordCashMovementRequest{
		SessionID: session.ID, Kind: entity.CashMovementPurchasePayment, Description: "Pago gel", Amount: dec(30000), PurchaseID: &purchase.ID,
	})
	require.NoError(t, err)
	_, err = eng.Purchases.Void(ctx, purchase.ID, dto.VoidRequest{Reason: "devolución"})
	assert.ErrorIs(t, err, domain.ErrPurchasePaidFromCash)

	closed, err := eng.PettyCash.Close(ctx, dto.CloseCashSessionRequest{DeclaredFinal: dec(970000)})
	require.NoError(t, err)
	assert.True(t, closed.Difference.IsZero())

	entries, err := eng.Audit.List(ctx, dto.AuditFilterRequest{Entity: "sale", EntityID: &s1.ID})
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}
