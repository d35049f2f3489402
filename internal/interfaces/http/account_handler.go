package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/clinica-api/internal/application/accounts"
	"github.com/jhoicas/clinica-api/internal/application/dto"
)

// AccountHandler pacientes, profesionales, proveedores, clínicas y geografía.
type AccountHandler struct {
	uc *accounts.UseCase
}

// NewAccountHandler construye el handler.
func NewAccountHandler(uc *accounts.UseCase) *AccountHandler {
	return &AccountHandler{uc: uc}
}

func accountFilter(c *fiber.Ctx) dto.AccountFilterRequest {
	return dto.AccountFilterRequest{
		PageRequest: queryPage(c),
		Search:      c.Query("search"),
		OnlyActive:  c.QueryBool("only_active"),
	}
}

// ── Pacientes ────────────────────────────────────────────────────────────────

// CreatePatient godoc
// @Summary      Alta de paciente
// @Tags         patients
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PatientRequest  true  "datos del paciente"
// @Success      201   {object}  dto.PatientResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/patients [post]
func (h *AccountHandler) CreatePatient(c *fiber.Ctx) error {
	var in dto.PatientRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CreatePatient(userContext(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *AccountHandler) UpdatePatient(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	var in dto.PatientRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.UpdatePatient(userContext(c), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *AccountHandler) DeactivatePatient(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	out, err := h.uc.DeactivatePatient(userContext(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *AccountHandler) GetPatient(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	out, err := h.uc.GetPatient(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *AccountHandler) ListPatients(c *fiber.Ctx) error {
	out, err := h.uc.ListPatients(c.UserContext(), accountFilter(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ── Profesionales ────────────────────────────────────────────────────────────

// SaveProfessional alta (POST) o modificación (PUT /:id).
func (h *AccountHandler) SaveProfessional(c *fiber.Ctx) error {
	id, ok := optionalID(c)
	if !ok {
		return badParam(c, "id")
	}
	var in dto.ProfessionalRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.SaveProfessional(userContext(c), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(savedStatus(id)).JSON(out)
}

func (h *AccountHandler) GetProfessional(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	out, err := h.uc.GetProfessional(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *AccountHandler) ListProfessionals(c *fiber.Ctx) error {
	out, err := h.uc.ListProfessionals(c.UserContext(), accountFilter(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ── Proveedores ──────────────────────────────────────────────────────────────

// SaveSupplier alta (POST) o modificación (PUT /:id).
func (h *AccountHandler) SaveSupplier(c *fiber.Ctx) error {
	id, ok := optionalID(c)
	if !ok {
		return badParam(c, "id")
	}
	var in dto.SupplierRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.SaveSupplier(userContext(c), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(savedStatus(id)).JSON(out)
}

func (h *AccountHandler) GetSupplier(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	out, err := h.uc.GetSupplier(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *AccountHandler) ListSuppliers(c *fiber.Ctx) error {
	out, err := h.uc.ListSuppliers(c.UserContext(), accountFilter(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ── Clínicas y geografía ─────────────────────────────────────────────────────

func (h *AccountHandler) SaveClinic(c *fiber.Ctx) error {
	id, ok := optionalID(c)
	if !ok {
		return badParam(c, "id")
	}
	var in dto.ClinicRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.SaveClinic(userContext(c), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(savedStatus(id)).JSON(out)
}

func (h *AccountHandler) ListClinics(c *fiber.Ctx) error {
	out, err := h.uc.ListClinics(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *AccountHandler) CreateDepartment(c *fiber.Ctx) error {
	var in dto.DepartmentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CreateDepartment(userContext(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *AccountHandler) CreateCity(c *fiber.Ctx) error {
	var in dto.CityRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CreateCity(userContext(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *AccountHandler) ListCities(c *fiber.Ctx) error {
	dep, ok := queryInt64(c, "department_id")
	if !ok {
		return badParam(c, "department_id")
	}
	out, err := h.uc.ListCities(c.UserContext(), dep)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// optionalID lee :id si la ruta lo trae; 0 indica alta.
func optionalID(c *fiber.Ctx) (int64, bool) {
	if c.Params("id") == "" {
		return 0, true
	}
	return paramID(c, "id")
}

func savedStatus(id int64) int {
	if id == 0 {
		return fiber.StatusCreated
	}
	return fiber.StatusOK
}
