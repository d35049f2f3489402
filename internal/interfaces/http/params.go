package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/clinica-api/internal/application/dto"
)

const dateLayout = "2006-01-02"

// paramID lee un id entero positivo de la ruta.
func paramID(c *fiber.Ctx, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// queryInt64 lee un id opcional del query string. ok=false si viene mal formado.
func queryInt64(c *fiber.Ctx, name string) (*int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, false
	}
	return &v, true
}

// queryTime acepta RFC3339 o fecha simple (YYYY-MM-DD, medianoche UTC).
func queryTime(c *fiber.Ctx, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, true
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, false
	}
	return &t, true
}

func queryPage(c *fiber.Ctx) dto.PageRequest {
	return dto.PageRequest{Limit: c.QueryInt("limit"), Offset: c.QueryInt("offset")}
}

// queryRange lee from/to obligatorios para reportes.
func queryRange(c *fiber.Ctx) (dto.DateRangeRequest, string, bool) {
	from, ok := queryTime(c, "from")
	if !ok || from == nil {
		return dto.DateRangeRequest{}, "from", false
	}
	to, ok := queryTime(c, "to")
	if !ok || to == nil {
		return dto.DateRangeRequest{}, "to", false
	}
	return dto.DateRangeRequest{From: *from, To: *to}, "", true
}
