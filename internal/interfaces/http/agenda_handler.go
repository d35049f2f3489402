package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/clinica-api/internal/application/agenda"
	"github.com/jhoicas/clinica-api/internal/application/dto"
)

// AgendaHandler turnos y su vínculo con las sesiones de los planes.
type AgendaHandler struct {
	uc *agenda.UseCase
}

// NewAgendaHandler construye el handler.
func NewAgendaHandler(uc *agenda.UseCase) *AgendaHandler {
	return &AgendaHandler{uc: uc}
}

// Create godoc
// @Summary      Agendar turno
// @Description  Si el paciente tiene un plan activo del tipo indicado, el turno se vincula a la primera sesión libre.
// @Tags         agenda
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateAppointmentRequest  true  "paciente, profesional, inicio"
// @Success      201   {object}  dto.AppointmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/appointments [post]
func (h *AgendaHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateAppointmentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(userContext(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *AgendaHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	var in dto.UpdateAppointmentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(userContext(c), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

type appointmentAction func(ctx context.Context, id int64) (*dto.AppointmentResponse, error)

// transition aplica un cambio de estado sin cuerpo (confirmar, cancelar, ausente, completar).
func (h *AgendaHandler) transition(fn appointmentAction) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return badParam(c, "id")
		}
		out, err := fn(userContext(c), id)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(out)
	}
}

func (h *AgendaHandler) Confirm() fiber.Handler { return h.transition(h.uc.Confirm) }

func (h *AgendaHandler) Cancel() fiber.Handler { return h.transition(h.uc.Cancel) }

func (h *AgendaHandler) NoShow() fiber.Handler { return h.transition(h.uc.MarkNoShow) }

// Complete marca el turno realizado; la sesión vinculada pasa a Completed.
func (h *AgendaHandler) Complete() fiber.Handler { return h.transition(h.uc.Complete) }

// LinkSession vincula el turno a una sesión elegida por el operador.
func (h *AgendaHandler) LinkSession(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	sessionID, ok := paramID(c, "sessionID")
	if !ok {
		return badParam(c, "sessionID")
	}
	out, err := h.uc.LinkSession(userContext(c), id, sessionID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *AgendaHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	if err := h.uc.Delete(userContext(c), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AgendaHandler) GetByID(c *fiber.Ctx) error {
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

func (h *AgendaHandler) List(c *fiber.Ctx) error {
	in := dto.AppointmentFilterRequest{PageRequest: queryPage(c)}
	var ok bool
	if in.PatientID, ok = queryInt64(c, "patient_id"); !ok {
		return badParam(c, "patient_id")
	}
	if in.ProfessionalID, ok = queryInt64(c, "professional_id"); !ok {
		return badParam(c, "professional_id")
	}
	if in.From, ok = queryTime(c, "from"); !ok {
		return badParam(c, "from")
	}
	if in.To, ok = queryTime(c, "to"); !ok {
		return badParam(c, "to")
	}
	out, err := h.uc.List(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
