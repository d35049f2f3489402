package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/clinica-api/internal/application/dto"
	"github.com/jhoicas/clinica-api/internal/application/inventory"
)

// InventoryHandler maneja las peticiones HTTP del ledger de stock (protegido).
type InventoryHandler struct {
	ledger *inventory.Ledger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.Ledger) *InventoryHandler {
	return &InventoryHandler{ledger: ledger}
}

// PostMovement godoc
// @Summary      Registrar ajuste de stock
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PostMovementRequest  true  "item_id, quantity, kind (INGRESO|EGRESO), motive"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) PostMovement(c *fiber.Ctx) error {
	var in dto.PostMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.ledger.PostMovement(userContext(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// OnHand godoc
// @Summary      Existencia de un ítem
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id     path   int     true   "item id"
// @Param        as_of  query  string  false  "fecha de corte (RFC3339 o YYYY-MM-DD)"
// @Success      200  {object}  dto.OnHandResponse
// @Router       /api/inventory/items/{id}/on-hand [get]
func (h *InventoryHandler) OnHand(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	asOf, ok := queryTime(c, "as_of")
	if !ok {
		return badParam(c, "as_of")
	}
	out, err := h.ledger.OnHand(c.UserContext(), id, asOf)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Kardex movimientos de un ítem en orden cronológico.
func (h *InventoryHandler) Kardex(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	from, ok := queryTime(c, "from")
	if !ok {
		return badParam(c, "from")
	}
	to, ok := queryTime(c, "to")
	if !ok {
		return badParam(c, "to")
	}
	out, err := h.ledger.ListMovements(c.UserContext(), id, dto.KardexRequest{PageRequest: queryPage(c), From: from, To: to})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":     len(out),
		"movements": out,
	})
}

// MonthlySummary resumen mensual por ítem: inicial, ingresos, egresos, final.
func (h *InventoryHandler) MonthlySummary(c *fiber.Ctx) error {
	year, month := c.QueryInt("year"), c.QueryInt("month")
	if year <= 0 {
		return badParam(c, "year")
	}
	if month < 1 || month > 12 {
		return badParam(c, "month")
	}
	out, err := h.ledger.MonthlySummary(c.UserContext(), year, month)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
