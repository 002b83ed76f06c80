package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Facturador-api/internal/application/billing"
	"github.com/jhoicas/Facturador-api/internal/application/dto"
	"github.com/jhoicas/Facturador-api/internal/domain/entity"
)

// InvoiceHandler expone el ciclo de vida completo de la factura: borradores,
// emisión, documento sin firmar y firma.
type InvoiceHandler struct {
	drafts    *billing.DraftUseCase
	issuer    *billing.IssueInvoiceUseCase
	documents *billing.DocumentUseCase
	signer    *billing.SignUseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(
	drafts *billing.DraftUseCase,
	issuer *billing.IssueInvoiceUseCase,
	documents *billing.DocumentUseCase,
	signer *billing.SignUseCase,
) *InvoiceHandler {
	return &InvoiceHandler{drafts: drafts, issuer: issuer, documents: documents, signer: signer}
}

// Create crea un borrador de factura.
// POST /api/invoices
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateInvoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "body inválido"})
	}
	resp, err := h.drafts.CreateDraft(c.Context(), GetCompanyID(c), req)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Get obtiene una factura con sus líneas.
// GET /api/invoices/:id
func (h *InvoiceHandler) Get(c *fiber.Ctx) error {
	resp, err := h.drafts.GetInvoice(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(resp)
}

// List lista las facturas del tenant con paginación.
// GET /api/invoices?limit=&offset=
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	resp, err := h.drafts.ListInvoices(c.Context(), GetCompanyID(c), limit, offset)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(resp)
}

// Update reemplaza líneas (y opcionalmente el cliente) de un borrador.
// PUT /api/invoices/:id
func (h *InvoiceHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateInvoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "body inválido"})
	}
	resp, err := h.drafts.UpdateDraft(c.Context(), GetCompanyID(c), c.Params("id"), req)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(resp)
}

// Delete elimina un borrador. Las facturas emitidas no se eliminan.
// DELETE /api/invoices/:id
func (h *InvoiceHandler) Delete(c *fiber.Ctx) error {
	if err := h.drafts.DeleteDraft(c.Context(), GetCompanyID(c), c.Params("id")); err != nil {
		return errorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Issue emite el borrador: asigna consecutivo, congela totales y snapshot.
// POST /api/invoices/:id/issue
func (h *InvoiceHandler) Issue(c *fiber.Ctx) error {
	resp, err := h.issuer.Issue(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(resp)
}

// Document descarga el PDF sin firmar, generándolo si no existe. Con
// ?force=true se regenera aunque esté cacheado.
// GET /api/invoices/:id/document
func (h *InvoiceHandler) Document(c *fiber.Ctx) error {
	force := c.QueryBool("force", false)
	artifact, err := h.documents.GetOrRenderUnsigned(c.Context(), GetCompanyID(c), c.Params("id"), force)
	if err != nil {
		return errorResponse(c, err)
	}
	return sendArtifact(c, artifact, "application/pdf")
}

// Sign firma digitalmente el documento de la factura y descarga el sobre XML.
// POST /api/invoices/:id/sign
func (h *InvoiceHandler) Sign(c *fiber.Ctx) error {
	artifact, err := h.signer.Sign(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return sendArtifact(c, artifact, "application/xml")
}

// SignedDocument descarga el sobre firmado ya persistido, sin firmar de nuevo.
// GET /api/invoices/:id/document/signed
func (h *InvoiceHandler) SignedDocument(c *fiber.Ctx) error {
	artifact, err := h.signer.GetSigned(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return sendArtifact(c, artifact, "application/xml")
}

// sendArtifact responde los bytes del artefacto como descarga, con su hash
// de integridad en un header para que el cliente pueda verificar copias.
func sendArtifact(c *fiber.Ctx, artifact *entity.DocumentArtifact, contentType string) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, artifact.Filename))
	c.Set("X-Content-SHA256", artifact.SHA256)
	return c.Send(artifact.Content)
}
