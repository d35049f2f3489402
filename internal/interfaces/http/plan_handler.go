package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/clinica-api/internal/application/dto"
	"github.com/jhoicas/clinica-api/internal/application/plans"
)

// PlanHandler planes de sesiones y su ejecución.
type PlanHandler struct {
	uc *plans.UseCase
}

// NewPlanHandler construye el handler.
func NewPlanHandler(uc *plans.UseCase) *PlanHandler {
	return &PlanHandler{uc: uc}
}

func (h *PlanHandler) GetByID(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	out, err := h.uc.GetByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListByPatient planes del paciente, con sesiones.
func (h *PlanHandler) ListByPatient(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	out, err := h.uc.ListByPatient(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// CompleteSession godoc
// @Summary      Marcar sesión realizada
// @Description  Al completar la última sesión pendiente el plan pasa a Completed.
// @Tags         plans
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                         true  "session id"
// @Param        body  body  dto.CompleteSessionRequest  false "fecha real, profesional, aparato, notas"
// @Success      200   {object}  dto.PlanSessionResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/plan-sessions/{id}/complete [post]
func (h *PlanHandler) CompleteSession(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	var in dto.CompleteSessionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	out, err := h.uc.CompleteSession(userContext(c), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
