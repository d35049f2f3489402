package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/clinica-api/internal/application/audit"
	"github.com/jhoicas/clinica-api/internal/application/dto"
)

// AuditHandler consulta del registro de auditoría (solo lectura).
type AuditHandler struct {
	uc *audit.UseCase
}

// NewAuditHandler construye el handler.
func NewAuditHandler(uc *audit.UseCase) *AuditHandler {
	return &AuditHandler{uc: uc}
}

// List godoc
// @Summary      Consultar auditoría
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        module     query  string  false  "módulo de origen"
// @Param        entity     query  string  false  "entidad (sale, receipt, stock_movement...)"
// @Param        entity_id  query  int     false  "id de la entidad"
// @Param        from       query  string  false  "desde"
// @Param        to         query  string  false  "hasta"
// @Success      200  {array}   dto.AuditEntryResponse
// @Router       /api/audit [get]
func (h *AuditHandler) List(c *fiber.Ctx) error {
	in := dto.AuditFilterRequest{
		PageRequest: queryPage(c),
		Module:      c.Query("module"),
		Entity:      c.Query("entity"),
	}
	var ok bool
	if in.EntityID, ok = queryInt64(c, "entity_id"); !ok {
		return badParam(c, "entity_id")
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
