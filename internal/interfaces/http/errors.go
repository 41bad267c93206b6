package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-pos/internal/application/dto"
	"github.com/jhoicas/erp-pos/internal/domain"
)

// errorStatus traduce un error de dominio a código HTTP y código de error.
// El orden importa: un duplicado llega envuelto en SubstrateError.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrUnknownOperation):
		return fiber.StatusBadRequest, "UNKNOWN_OPERATION"
	case errors.Is(err, domain.ErrUnknownStore):
		return fiber.StatusNotFound, "UNKNOWN_STORE"
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, "DUPLICATE"
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrSubstrate):
		return fiber.StatusBadGateway, "SUBSTRATE"
	default:
		return fiber.StatusInternalServerError, "INTERNAL"
	}
}

func toErrorResponse(err error) (int, dto.ErrorResponse) {
	status, code := errorStatus(err)
	return status, dto.ErrorResponse{Code: code, Message: err.Error()}
}

func writeError(c *fiber.Ctx, err error) error {
	status, body := toErrorResponse(err)
	return c.Status(status).JSON(body)
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
