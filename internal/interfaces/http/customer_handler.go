package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Facturador-api/internal/application/billing"
	"github.com/jhoicas/Facturador-api/internal/application/dto"
)

// CustomerHandler CRUD de clientes del tenant.
type CustomerHandler struct {
	useCase *billing.CustomerUseCase
}

// NewCustomerHandler construye el handler.
func NewCustomerHandler(useCase *billing.CustomerUseCase) *CustomerHandler {
	return &CustomerHandler{useCase: useCase}
}

// Create registra un cliente.
// POST /api/customers
func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateCustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "body inválido"})
	}
	resp, err := h.useCase.Create(c.Context(), GetCompanyID(c), req)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Get obtiene un cliente por ID.
// GET /api/customers/:id
func (h *CustomerHandler) Get(c *fiber.Ctx) error {
	resp, err := h.useCase.Get(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(resp)
}

// List lista los clientes del tenant con paginación.
// GET /api/customers?limit=&offset=
func (h *CustomerHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	resp, err := h.useCase.List(c.Context(), GetCompanyID(c), limit, offset)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(resp)
}

// Update edita un cliente. Las facturas ya emitidas conservan su snapshot.
// PUT /api/customers/:id
func (h *CustomerHandler) Update(c *fiber.Ctx) error {
	var req dto.CreateCustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "body inválido"})
	}
	resp, err := h.useCase.Update(c.Context(), GetCompanyID(c), c.Params("id"), req)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(resp)
}

// Delete elimina un cliente.
// DELETE /api/customers/:id
func (h *CustomerHandler) Delete(c *fiber.Ctx) error {
	if err := h.useCase.Delete(c.Context(), GetCompanyID(c), c.Params("id")); err != nil {
		return errorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
