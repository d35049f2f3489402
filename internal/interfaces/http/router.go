package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/clinica-api/internal/application/engine"
	"github.com/jhoicas/clinica-api/internal/domain/entity"
	"github.com/jhoicas/clinica-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Engine    *engine.Engine
	JWTSecret string
	Log       *logger.Logger
}

const (
	admin    = entity.RoleAdmin
	recep    = entity.RoleRecepcion
	prof     = entity.RoleProfesional
	administ = entity.RoleAdministracion
)

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	e := deps.Engine
	if deps.Log != nil {
		app.Use(RequestLogger(deps.Log))
	}
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(e.Auth)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	anyRole := RequireRole(admin, recep, prof, administ)
	front := RequireRole(admin, recep, administ)
	back := RequireRole(admin, administ)
	clinical := RequireRole(admin, recep, prof)
	onlyAdmin := RequireRole(admin)

	protected.Get("/auth/me", anyRole, authHandler.Me)
	users := protected.Group("/users", onlyAdmin)
	users.Post("/", authHandler.CreateUser)
	users.Get("/", authHandler.ListUsers)

	// Catálogo
	catalogHandler := NewCatalogHandler(e.Catalog)
	items := protected.Group("/items")
	items.Get("/", anyRole, catalogHandler.List)
	items.Get("/:id", anyRole, catalogHandler.GetByID)
	items.Post("/", back, catalogHandler.Upsert)
	items.Put("/:id", back, catalogHandler.Upsert)
	items.Put("/:id/composition", back, catalogHandler.SetComposition)
	items.Post("/:id/deactivate", back, catalogHandler.Deactivate)
	items.Delete("/:id", onlyAdmin, catalogHandler.Delete)
	protected.Get("/item-types", anyRole, catalogHandler.ListItemTypes)
	protected.Post("/item-types", onlyAdmin, catalogHandler.CreateItemType)
	protected.Get("/plan-types", anyRole, catalogHandler.ListPlanTypes)
	protected.Post("/plan-types", onlyAdmin, catalogHandler.CreatePlanType)

	// Stock
	inventoryHandler := NewInventoryHandler(e.Stock)
	inv := protected.Group("/inventory", back)
	inv.Post("/movements", inventoryHandler.PostMovement)
	inv.Get("/items/:id/on-hand", inventoryHandler.OnHand)
	inv.Get("/items/:id/movements", inventoryHandler.Kardex)
	inv.Get("/monthly-summary", inventoryHandler.MonthlySummary)

	// Compras
	purchaseHandler := NewPurchaseHandler(e.Purchases)
	purchases := protected.Group("/purchases", back)
	purchases.Post("/", purchaseHandler.Create)
	purchases.Get("/", purchaseHandler.List)
	purchases.Get("/:id", purchaseHandler.GetByID)
	purchases.Post("/:id/void", purchaseHandler.Void)

	// Ventas
	saleHandler := NewSaleHandler(e.Sales)
	sales := protected.Group("/sales", front)
	sales.Post("/", saleHandler.Create)
	sales.Get("/", saleHandler.List)
	sales.Get("/:id", saleHandler.GetByID)
	sales.Post("/:id/void", saleHandler.Void)

	// Planes de sesiones
	planHandler := NewPlanHandler(e.Plans)
	protected.Get("/plans/:id", clinical, planHandler.GetByID)
	protected.Post("/plan-sessions/:id/complete", clinical, planHandler.CompleteSession)

	// Agenda
	agendaHandler := NewAgendaHandler(e.Agenda)
	appts := protected.Group("/appointments", clinical)
	appts.Post("/", agendaHandler.Create)
	appts.Get("/", agendaHandler.List)
	appts.Get("/:id", agendaHandler.GetByID)
	appts.Put("/:id", agendaHandler.Update)
	appts.Delete("/:id", agendaHandler.Delete)
	appts.Post("/:id/confirm", agendaHandler.Confirm())
	appts.Post("/:id/cancel", agendaHandler.Cancel())
	appts.Post("/:id/no-show", agendaHandler.NoShow())
	appts.Post("/:id/complete", agendaHandler.Complete())
	appts.Post("/:id/sessions/:sessionID", agendaHandler.LinkSession)

	// Cobros
	receiptHandler := NewReceiptHandler(e.Receipts)
	receipts := protected.Group("/receipts", front)
	receipts.Post("/", receiptHandler.Register)
	receipts.Get("/:id", receiptHandler.GetByID)
	receipts.Post("/:id/void", receiptHandler.Void)

	// Caja chica
	cashHandler := NewCashHandler(e.PettyCash)
	cash := protected.Group("/cash", back)
	cash.Post("/sessions", cashHandler.Open)
	cash.Get("/sessions/current", cashHandler.Current)
	cash.Get("/sessions/:id", cashHandler.Get)
	cash.Post("/sessions/close", cashHandler.Close)
	cash.Post("/movements", cashHandler.RecordMovement)

	// Cuentas
	accountHandler := NewAccountHandler(e.Accounts)
	dashboardHandler := NewDashboardHandler(e.Reports)
	patients := protected.Group("/patients")
	patients.Post("/", front, accountHandler.CreatePatient)
	patients.Get("/", anyRole, accountHandler.ListPatients)
	patients.Get("/:id", anyRole, accountHandler.GetPatient)
	patients.Put("/:id", front, accountHandler.UpdatePatient)
	patients.Post("/:id/deactivate", front, accountHandler.DeactivatePatient)
	patients.Get("/:id/plans", clinical, planHandler.ListByPatient)
	patients.Get("/:id/receipts", front, receiptHandler.ListByPatient)
	patients.Get("/:id/history", anyRole, dashboardHandler.PatientHistory)
	patients.Get("/:id/balance", front, dashboardHandler.PatientBalanceDetail)
	patients.Get("/:id/receipts-report", front, dashboardHandler.PatientReceipts)

	professionals := protected.Group("/professionals")
	professionals.Get("/", anyRole, accountHandler.ListProfessionals)
	professionals.Get("/:id", anyRole, accountHandler.GetProfessional)
	professionals.Post("/", onlyAdmin, accountHandler.SaveProfessional)
	professionals.Put("/:id", onlyAdmin, accountHandler.SaveProfessional)

	suppliers := protected.Group("/suppliers", back)
	suppliers.Get("/", accountHandler.ListSuppliers)
	suppliers.Get("/:id", accountHandler.GetSupplier)
	suppliers.Post("/", accountHandler.SaveSupplier)
	suppliers.Put("/:id", accountHandler.SaveSupplier)

	protected.Get("/clinics", anyRole, accountHandler.ListClinics)
	protected.Post("/clinics", onlyAdmin, accountHandler.SaveClinic)
	protected.Put("/clinics/:id", onlyAdmin, accountHandler.SaveClinic)
	protected.Post("/departments", onlyAdmin, accountHandler.CreateDepartment)
	protected.Post("/cities", onlyAdmin, accountHandler.CreateCity)
	protected.Get("/cities", anyRole, accountHandler.ListCities)

	// Reportes
	protected.Get("/dashboard/summary", back, dashboardHandler.GetSummary)
	reports := protected.Group("/reports", back)
	reports.Get("/patient-balances", dashboardHandler.PatientBalances)
	reports.Get("/professional-production", dashboardHandler.ProfessionalProduction)
	reports.Get("/sales-by-item", dashboardHandler.SalesByItem)
	reports.Get("/monthly-stock", dashboardHandler.MonthlyStock)

	// Auditoría
	auditHandler := NewAuditHandler(e.Audit)
	protected.Get("/audit", onlyAdmin, auditHandler.List)
}
