package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/clinica-api/internal/application/dto"
	"github.com/jhoicas/clinica-api/internal/domain"
)

// statusFor traduce la clase de error del motor a un código HTTP.
func statusFor(e *domain.Error) int {
	switch e.Kind {
	case domain.KindValidation:
		return fiber.StatusBadRequest
	case domain.KindNotFound:
		return fiber.StatusNotFound
	case domain.KindConflict, domain.KindIntegrity:
		return fiber.StatusConflict
	case domain.KindTimeout:
		return fiber.StatusGatewayTimeout
	case domain.KindAuthorization:
		if e.Code == domain.ErrUnauthorized.Code || e.Code == domain.ErrInactiveUser.Code {
			return fiber.StatusUnauthorized
		}
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

// writeError responde con dto.ErrorResponse según el error del caso de uso.
// Los errores que no son del dominio se ocultan tras un 500 genérico.
func writeError(c *fiber.Ctx, err error) error {
	var verr *dto.ValidationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code:    verr.Err.Code,
			Message: verr.Err.Message,
			Fields:  verr.Fields,
		})
	}
	var derr *domain.Error
	if errors.As(err, &derr) {
		return c.Status(statusFor(derr)).JSON(dto.ErrorResponse{Code: derr.Code, Message: derr.Message})
	}
	requestLogger(c).Error().Err(err).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func badParam(c *fiber.Ctx, name string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_PARAM", Message: "parámetro inválido: " + name})
}
