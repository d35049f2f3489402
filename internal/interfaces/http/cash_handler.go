package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/clinica-api/internal/application/dto"
	"github.com/jhoicas/clinica-api/internal/application/pettycash"
)

// CashHandler caja chica: apertura, movimientos y cierre con arqueo.
type CashHandler struct {
	uc *pettycash.UseCase
}

// NewCashHandler construye el handler.
func NewCashHandler(uc *pettycash.UseCase) *CashHandler {
	return &CashHandler{uc: uc}
}

func (h *CashHandler) Open(c *fiber.Ctx) error {
	var in dto.OpenCashSessionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Open(userContext(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// RecordMovement godoc
// @Summary      Registrar movimiento de caja
// @Tags         pettycash
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordCashMovementRequest  true  "Expense | PurchasePayment | Income"
// @Success      201   {object}  dto.CashMovementResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/cash/movements [post]
func (h *CashHandler) RecordMovement(c *fiber.Ctx) error {
	var in dto.RecordCashMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.RecordMovement(userContext(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Close cierra la sesión abierta con el monto contado.
func (h *CashHandler) Close(c *fiber.Ctx) error {
	var in dto.CloseCashSessionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Close(userContext(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *CashHandler) Current(c *fiber.Ctx) error {
	out, err := h.uc.Current(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *CashHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	out, err := h.uc.Get(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
