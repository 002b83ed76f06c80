package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Facturador-api/internal/application/dto"
	"github.com/jhoicas/Facturador-api/internal/domain"
)

// errorResponse mapea los errores de dominio a códigos HTTP. El core nunca
// expone detalle de transporte: aquí solo viaja el kind y un mensaje.
//
//	NotFound      -> 404 (no se reintenta)
//	InvalidState  -> 409 (operación ilegal para el estado; no se reintenta)
//	Conflict      -> 409 con código propio (carrera de numeración; reintentable)
//	Cancelled     -> 409 (el operador abortó; no se reintenta automático)
//	Render/Sign   -> 502 (falla de colaborador externo)
func errorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrInvalidState):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_STATE", Message: "operación inválida para el estado de la factura"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "conflicto de numeración, reintente la operación"})
	case errors.Is(err, domain.ErrCancelled):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CANCELLED", Message: "firma cancelada: no hay llave seleccionada"})
	case errors.Is(err, domain.ErrRenderFailed):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "RENDER_ERROR", Message: "no se pudo generar el documento"})
	case errors.Is(err, domain.ErrSigningFailed):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "SIGNING_ERROR", Message: "no se pudo firmar el documento"})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "credenciales inválidas"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado"})
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "EMAIL_EXISTS", Message: "el email ya está registrado"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
