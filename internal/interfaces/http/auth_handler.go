package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Facturador-api/internal/application/auth"
	"github.com/jhoicas/Facturador-api/internal/application/dto"
)

// AuthHandler expone registro y login.
type AuthHandler struct {
	useCase *auth.AuthUseCase
}

// NewAuthHandler construye el handler.
func NewAuthHandler(useCase *auth.AuthUseCase) *AuthHandler {
	return &AuthHandler{useCase: useCase}
}

// Register crea la empresa y su primer usuario admin.
// POST /api/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "body inválido"})
	}
	resp, err := h.useCase.Register(c.Context(), req)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Login valida credenciales y devuelve el token de sesión.
// POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "body inválido"})
	}
	resp, err := h.useCase.Login(c.Context(), req)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(resp)
}
