package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/clinica-api/internal/application/audit"
	"github.com/jhoicas/clinica-api/internal/application/dto"
	"github.com/jhoicas/clinica-api/internal/domain"
	"github.com/jhoicas/clinica-api/internal/domain/entity"
)

// ── Anulaciones ──────────────────────────────────────────────────────────────

func TestCompra_AnulacionRevierteElStock(t *testing.T) {
	f := newFixture(t, false)
	s := f.compositionSetup()
	supplier := f.supplier("Droguería Central")

	purchase, err := f.eng.Purchases.Create(f.ctx, dto.CreatePurchaseRequest{
		SupplierID: supplier,
		Condition:  entity.PurchaseConditionCredit,
		Lines: []dto.PurchaseLineRequest{
			{ItemID: s.a, Quantity: dec(5), UnitPrice: dec(4000), IVA: dec(2000)},
		},
	})
	require.NoError(t, err)
	assert.True(t, purchase.Total.Equal(dec(22000)), "total = qty·precio + IVA")
	assert.True(t, f.onHand(s.a).Equal(dec(15)))

	voided, err := f.eng.Purchases.Void(f.ctx, purchase.ID, dto.VoidRequest{Reason: "factura errónea"})
	require.NoError(t, err)
	assert.True(t, voided.Voided)
	assert.True(t, f.onHand(s.a).Equal(dec(10)), "on_hand vuelve al valor previo a la compra")

	_, err = f.eng.Purchases.Void(f.ctx, purchase.ID, dto.VoidRequest{Reason: "de nuevo"})
	assert.ErrorIs(t, err, domain.ErrPurchaseAlreadyVoided)

	kardex, err := f.eng.Stock.ListMovements(f.ctx, s.a, dto.KardexRequest{})
	require.NoError(t, err)
	var reversals int
	for _, m := range kardex {
		if m.ReversalOf != nil {
			reversals++
			assert.Equal(t, entity.MotivePurchaseVoid, m.Motive)
		}
	}
	assert.Equal(t, 1, reversals, "un EGRESO compensatorio por cada INGRESO")
}

func TestCompra_PagadaDesdeCajaNoSeAnula(t *testing.T) {
	f := newFixture(t, false)
	s := f.compositionSetup()
	supplier := f.supplier("Droguería Central")
	purchase, err := f.eng.Purchases.Create(f.ctx, dto.CreatePurchaseRequest{
		SupplierID: supplier,
		Condition:  entity.PurchaseConditionCash,
		Lines:      []dto.PurchaseLineRequest{{ItemID: s.b, Quantity: dec(10), UnitPrice: dec(800)}},
	})
	require.NoError(t, err)
	session, err := f.eng.PettyCash.Open(f.ctx, dto.OpenCashSessionRequest{InitialAmount: dec(50000)})
	require.NoError(t, err)
	_, err = f.eng.PettyCash.RecordMovement(f.ctx, dto.RecordCashMovementRequest{
		SessionID: session.ID, Kind: entity.CashMovementPurchasePayment, Description: "Pago guantes", Amount: dec(8000), PurchaseID: &purchase.ID,
	})
	require.NoError(t, err)

	_, err = f.eng.Purchases.Void(f.ctx, purchase.ID, dto.VoidRequest{Reason: "devolución"})
	assert.ErrorIs(t, err, domain.ErrPurchasePaidFromCash)

	_, err = f.eng.PettyCash.RecordMovement(f.ctx, dto.RecordCashMovementRequest{
		SessionID: session.ID, Kind: entity.CashMovementPurchasePayment, Description: "Pago repetido", Amount: dec(8000), PurchaseID: &purchase.ID,
	})
	assert.ErrorIs(t, err, domain.ErrPurchaseAlreadyPaid)
}

func TestVenta_AnulacionRestauraStockYCancelaSesiones(t *testing.T) {
	f := newFixture(t, false)
	s := f.compositionSetup()
	y, _ := f.planSetup()
	p := f.patient("Gabriela")

	sale := f.sale(p, nil,
		dto.SaleLineRequest{ItemID: s.x, Quantity: dec(2)},
		dto.SaleLineRequest{ItemID: y, Quantity: dec(1)},
	)
	assert.True(t, f.onHand(s.a).Equal(dec(6)))
	planID := sale.Plans[0].ID
	plan, err := f.eng.Plans.GetByID(f.ctx, planID)
	require.NoError(t, err)
	_, err = f.eng.Plans.CompleteSession(f.ctx, plan.Sessions[0].ID, dto.CompleteSessionRequest{Notes: "sin novedades"})
	require.NoError(t, err)

	voided, err := f.eng.Sales.Void(f.ctx, sale.ID, dto.VoidRequest{Reason: "error de carga"})
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStateVoided, voided.State)
	assert.True(t, f.onHand(s.a).Equal(dec(10)))
	assert.True(t, f.onHand(s.b).Equal(dec(5)))

	plan, err = f.eng.Plans.GetByID(f.ctx, planID)
	require.NoError(t, err)
	assert.Equal(t, entity.PlanStateCompleted, plan.State, "con sesiones realizadas el plan queda Completed")
	assert.Equal(t, 10, plan.TotalSessions)
	assert.Equal(t, 1, plan.CompletedSessions)
	assert.Equal(t, entity.SessionStateCompleted, plan.Sessions[0].State, "la sesión realizada se conserva")
	for _, ses := range plan.Sessions[1:] {
		assert.Equal(t, entity.SessionStateCancelled, ses.State)
	}

	_, err = f.eng.Sales.Void(f.ctx, sale.ID, dto.VoidRequest{Reason: "otra vez"})
	assert.ErrorIs(t, err, domain.ErrSaleAlreadyVoided)
}

func TestVenta_ConCobroActivoNoSeAnula(t *testing.T) {
	f := newFixture(t, false)
	p, s1, _ := fifoSetup(f)
	_, err := f.eng.Receipts.Register(f.ctx, dto.RegisterReceiptRequest{
		PatientID:   p,
		Amount:      dec(40),
		Method:      entity.PaymentCash,
		Imputations: []dto.ImputationRequest{{SaleID: s1, Amount: dec(40)}},
	})
	require.NoError(t, err)

	_, err = f.eng.Sales.Void(f.ctx, s1, dto.VoidRequest{Reason: "cliente desiste"})
	assert.ErrorIs(t, err, domain.ErrHasActiveReceipts)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}

// ── Validaciones y modo estricto ─────────────────────────────────────────────

func TestCatalogo_ComponenteConCantidadCeroSeRechaza(t *testing.T) {
	f := newFixture(t, false)
	s := f.compositionSetup()

	_, err := f.eng.Catalog.SetComposition(f.ctx, s.x, dto.SetCompositionRequest{
		Components: []dto.CompositionLineRequest{{ComponentID: s.a, Quantity: dec(0)}},
	})
	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	item, err := f.eng.Catalog.GetByID(f.ctx, s.x)
	require.NoError(t, err)
	assert.Len(t, item.Composition, 2, "la receta anterior no cambia")
}

func TestCatalogo_ItemReferenciadoNoSeBorra(t *testing.T) {
	f := newFixture(t, false)
	s := f.compositionSetup()

	err := f.eng.Catalog.Delete(f.ctx, s.a)
	assert.ErrorIs(t, err, domain.ErrItemReferenced)

	require.NoError(t, f.eng.Catalog.Deactivate(f.ctx, s.x))
	p := f.patient("Hilda")
	_, err = f.eng.Sales.Create(f.ctx, dto.CreateSaleRequest{PatientID: p, Lines: []dto.SaleLineRequest{{ItemID: s.x, Quantity: dec(1)}}})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestVenta_DescuentoMayorAlSubtotalSeRechaza(t *testing.T) {
	f := newFixture(t, false)
	s := f.compositionSetup()
	p := f.patient("Irene")

	_, err := f.eng.Sales.Create(f.ctx, dto.CreateSaleRequest{
		PatientID: p,
		Lines:     []dto.SaleLineRequest{{ItemID: s.x, Quantity: dec(1), Discount: s.price.Add(dec(1))}},
	})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	assert.True(t, f.onHand(s.a).Equal(dec(10)), "la venta rechazada no deja movimientos")
}

func TestStockEstricto_RechazaSaldoNegativoSinEfectosParciales(t *testing.T) {
	f := newFixture(t, true)
	s := f.compositionSetup()
	p := f.patient("Julia")

	_, err := f.eng.Sales.Create(f.ctx, dto.CreateSaleRequest{
		PatientID: p,
		Lines:     []dto.SaleLineRequest{{ItemID: s.x, Quantity: dec(6)}},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.True(t, f.onHand(s.a).Equal(dec(10)))
	assert.True(t, f.onHand(s.b).Equal(dec(5)))
	list, err := f.eng.Sales.List(f.ctx, dto.SaleFilterRequest{PatientID: &p})
	require.NoError(t, err)
	assert.Empty(t, list, "la venta no debe quedar registrada")
}

func TestStockPermisivo_AdmiteSaldoNegativo(t *testing.T) {
	f := newFixture(t, false)
	s := f.compositionSetup()
	p := f.patient("Julia")

	f.sale(p, nil, dto.SaleLineRequest{ItemID: s.x, Quantity: dec(6)})
	assert.True(t, f.onHand(s.a).Equal(dec(-2)))

	rows, err := f.eng.Reports.MonthlyStock(f.ctx, 2024, 3)
	require.NoError(t, err)
	var negative bool
	for _, r := range rows {
		if r.ItemID == s.a {
			negative = r.Negative
		}
	}
	assert.True(t, negative, "el resumen mensual marca el saldo negativo")
}

func TestCaja_SoloUnaSesionAbierta(t *testing.T) {
	f := newFixture(t, false)
	_, err := f.eng.PettyCash.Open(f.ctx, dto.OpenCashSessionRequest{InitialAmount: dec(1000)})
	require.NoError(t, err)

	_, err = f.eng.PettyCash.Open(f.ctx, dto.OpenCashSessionRequest{InitialAmount: dec(1000)})
	assert.ErrorIs(t, err, domain.ErrCashSessionAlreadyOpen)

	_, err = f.eng.PettyCash.Close(f.ctx, dto.CloseCashSessionRequest{DeclaredFinal: dec(1000)})
	require.NoError(t, err)
	_, err = f.eng.PettyCash.Close(f.ctx, dto.CloseCashSessionRequest{DeclaredFinal: dec(1000)})
	assert.ErrorIs(t, err, domain.ErrNoOpenCashSession)
}

// ── Usuarios y auditoría ─────────────────────────────────────────────────────

func TestLogin_MigraPasswordHeredado(t *testing.T) {
	f := newFixture(t, false)
	legacy := &entity.User{Username: "recepcion1", PasswordHash: "clave-vieja", Name: "Recepción", Role: entity.RoleRecepcion, Active: true}
	require.NoError(t, f.store.Repos().Users.Create(f.ctx, legacy))

	resp, err := f.eng.Auth.Login(f.ctx, dto.LoginRequest{Username: "recepcion1", Password: "clave-vieja"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, entity.RoleRecepcion, resp.User.Role)

	stored, err := f.store.Repos().Users.GetByID(f.ctx, legacy.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("clave-vieja")), "el texto plano se reemplaza por bcrypt")

	_, err = f.eng.Auth.Login(f.ctx, dto.LoginRequest{Username: "recepcion1", Password: "otra"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestUsuarios_NombreDuplicado(t *testing.T) {
	f := newFixture(t, false)
	in := dto.CreateUserRequest{Username: "Admin", Password: "supersecreta", Name: "Administrador", Role: entity.RoleAdmin}
	created, err := f.eng.Auth.CreateUser(f.ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "admin", created.Username)

	_, err = f.eng.Auth.CreateUser(f.ctx, in)
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
}

func TestAuditoria_UnComandoCompartePayloadYActor(t *testing.T) {
	f := newFixture(t, false)
	s := f.compositionSetup()
	p := f.patient("Karina")
	ctx := audit.WithActor(f.ctx, 7)

	sale, err := f.eng.Sales.Create(ctx, dto.CreateSaleRequest{PatientID: p, Lines: []dto.SaleLineRequest{{ItemID: s.x, Quantity: dec(1)}}})
	require.NoError(t, err)

	entries, err := f.eng.Audit.List(f.ctx, dto.AuditFilterRequest{Module: audit.ModuleSales, Entity: "sale", EntityID: &sale.ID})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	saleEntry := entries[0]
	assert.Equal(t, entity.AuditCreate, saleEntry.Action)
	require.NotNil(t, saleEntry.UserID)
	assert.Equal(t, int64(7), *saleEntry.UserID)
	assert.Nil(t, saleEntry.Before)
	assert.Contains(t, string(saleEntry.After), `"state":"Confirmed"`)

	movements, err := f.eng.Audit.List(f.ctx, dto.AuditFilterRequest{Module: audit.ModuleInventory, Entity: "stock_movement"})
	require.NoError(t, err)
	var sameCommand int
	for _, e := range movements {
		if e.CommandID == saleEntry.CommandID {
			sameCommand++
		}
	}
	assert.Equal(t, 2, sameCommand, "los egresos de la venta comparten el id de comando")
}
