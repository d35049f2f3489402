package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/clinica-api/internal/application/reporting"
)

// DashboardHandler maneja el tablero y los reportes de la clínica.
type DashboardHandler struct {
	uc *reporting.UseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *reporting.UseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary devuelve el resumen del día y del mes en curso.
// GET /api/dashboard/summary
//
// No requiere parámetros; las fechas se calculan en el servidor con la zona horaria de la clínica.
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.uc.Dashboard(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(summary)
}

// PatientBalances saldos por paciente. ?with_debt=true deja solo los deudores.
func (h *DashboardHandler) PatientBalances(c *fiber.Ctx) error {
	out, err := h.uc.PatientBalances(c.UserContext(), c.QueryBool("with_debt"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// PatientBalanceDetail ventas con saldo del paciente.
func (h *DashboardHandler) PatientBalanceDetail(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	out, err := h.uc.PatientBalanceDetail(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// PatientHistory historia clínico-comercial: ventas, sesiones y turnos.
func (h *DashboardHandler) PatientHistory(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	out, err := h.uc.PatientHistory(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *DashboardHandler) PatientReceipts(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	out, err := h.uc.PatientReceipts(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ProfessionalProduction producción por profesional en [from, to).
func (h *DashboardHandler) ProfessionalProduction(c *fiber.Ctx) error {
	rng, name, ok := queryRange(c)
	if !ok {
		return badParam(c, name)
	}
	out, err := h.uc.ProfessionalProduction(c.UserContext(), rng)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SalesByItem ranking de ítems vendidos en [from, to). ?top=N limita el resultado.
func (h *DashboardHandler) SalesByItem(c *fiber.Ctx) error {
	rng, name, ok := queryRange(c)
	if !ok {
		return badParam(c, name)
	}
	top := c.QueryInt("top")
	if top < 0 {
		return badParam(c, "top")
	}
	out, err := h.uc.SalesByItem(c.UserContext(), rng, top)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *DashboardHandler) MonthlyStock(c *fiber.Ctx) error {
	year, month := c.QueryInt("year"), c.QueryInt("month")
	if year <= 0 {
		return badParam(c, "year")
	}
	if month < 1 || month > 12 {
		return badParam(c, "month")
	}
	out, err := h.uc.MonthlyStock(c.UserContext(), year, month)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
