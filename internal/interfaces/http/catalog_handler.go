package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/clinica-api/internal/application/catalog"
	"github.com/jhoicas/clinica-api/internal/application/dto"
)

// CatalogHandler ítems, recetas, tipos de ítem y tipos de plan.
type CatalogHandler struct {
	uc *catalog.UseCase
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(uc *catalog.UseCase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

// Upsert godoc
// @Summary      Crear o actualizar ítem
// @Description  Sin id crea el ítem; con id lo actualiza. La receta, si viene, reemplaza la existente.
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpsertItemRequest  true  "ítem"
// @Success      200   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/items [post]
func (h *CatalogHandler) Upsert(c *fiber.Ctx) error {
	var in dto.UpsertItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if c.Params("id") != "" {
		id, ok := paramID(c, "id")
		if !ok {
			return badParam(c, "id")
		}
		in.ID = &id
	}
	out, err := h.uc.UpsertItem(userContext(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SetComposition reemplaza la receta del ítem.
func (h *CatalogHandler) SetComposition(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	var in dto.SetCompositionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.SetComposition(userContext(c), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Deactivate baja lógica del ítem.
func (h *CatalogHandler) Deactivate(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	if err := h.uc.Deactivate(userContext(c), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Delete borra el ítem si nada lo referencia.
func (h *CatalogHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	if err := h.uc.Delete(userContext(c), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CatalogHandler) GetByID(c *fiber.Ctx) error {
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

// List godoc
// @Summary      Listar ítems
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        search       query  string  false  "texto (sin distinguir mayúsculas ni acentos)"
// @Param        kind         query  string  false  "product | service | consumable | package | plan"
// @Param        only_active  query  bool    false  "solo activos"
// @Success      200  {object}  dto.ItemListResponse
// @Router       /api/items [get]
func (h *CatalogHandler) List(c *fiber.Ctx) error {
	in := dto.ItemFilterRequest{
		PageRequest: queryPage(c),
		Search:      c.Query("search"),
		Kind:        c.Query("kind"),
		OnlyActive:  c.QueryBool("only_active"),
	}
	out, err := h.uc.List(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *CatalogHandler) CreateItemType(c *fiber.Ctx) error {
	var in dto.CreateItemTypeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CreateItemType(userContext(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *CatalogHandler) ListItemTypes(c *fiber.Ctx) error {
	out, err := h.uc.ListItemTypes(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *CatalogHandler) CreatePlanType(c *fiber.Ctx) error {
	var in dto.CreatePlanTypeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CreatePlanType(userContext(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *CatalogHandler) ListPlanTypes(c *fiber.Ctx) error {
	out, err := h.uc.ListPlanTypes(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
