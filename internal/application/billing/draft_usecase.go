package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Facturador-api/internal/application/dto"
	"github.com/jhoicas/Facturador-api/internal/domain"
	"github.com/jhoicas/Facturador-api/internal/domain/entity"
	"github.com/jhoicas/Facturador-api/internal/domain/repository"
)

// DraftUseCase maneja el ciclo de vida de los borradores: creación, edición y
// borrado. Un borrador es editable y no tiene número; los campos financieros
// se recalculan en cada edición pero solo se congelan en la emisión.
type DraftUseCase struct {
	invoiceRepo  repository.InvoiceRepository
	customerRepo repository.CustomerRepository
}

// NewDraftUseCase construye el caso de uso.
func NewDraftUseCase(invoiceRepo repository.InvoiceRepository, customerRepo repository.CustomerRepository) *DraftUseCase {
	return &DraftUseCase{invoiceRepo: invoiceRepo, customerRepo: customerRepo}
}

// CreateDraft valida el cliente (debe pertenecer al tenant), calcula totales
// preliminares y persiste el borrador con sus líneas.
func (uc *DraftUseCase) CreateDraft(ctx context.Context, companyID string, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if in.CustomerID == "" || len(in.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	customer, err := uc.customerRepo.GetByID(ctx, in.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("validar cliente: %w", err)
	}
	// Fuera del alcance del tenant se reporta igual que inexistente.
	if customer == nil || customer.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}

	now := time.Now().UTC()
	currency := in.Currency
	if currency == "" {
		currency = "COP"
	}
	inv := &entity.Invoice{
		ID:         uuid.New().String(),
		CompanyID:  companyID,
		CustomerID: in.CustomerID,
		Status:     entity.StatusDraft,
		Currency:   currency,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	lines, err := buildLines(inv.ID, in.Lines)
	if err != nil {
		return nil, err
	}
	inv.NetTotal, inv.TaxTotal, inv.GrandTotal = ComputeLineTotals(lines)

	if err := uc.invoiceRepo.Create(ctx, inv, lines); err != nil {
		return nil, fmt.Errorf("guardar borrador: %w", err)
	}
	return toInvoiceResponse(inv, lines), nil
}

// UpdateDraft reemplaza las líneas (y opcionalmente el cliente) de un
// borrador. Falla con ErrInvalidState si la factura ya fue emitida.
func (uc *DraftUseCase) UpdateDraft(ctx context.Context, companyID, invoiceID string, in dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if len(in.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	inv, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("obtener factura: %w", err)
	}
	if inv == nil || inv.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	if inv.IsIssued() {
		return nil, fmt.Errorf("%w: la factura %s ya fue emitida", domain.ErrInvalidState, inv.Number)
	}
	if in.CustomerID != "" && in.CustomerID != inv.CustomerID {
		customer, err := uc.customerRepo.GetByID(ctx, in.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("validar cliente: %w", err)
		}
		if customer == nil || customer.CompanyID != companyID {
			return nil, domain.ErrNotFound
		}
		inv.CustomerID = in.CustomerID
	}

	lines, err := buildLines(inv.ID, in.Lines)
	if err != nil {
		return nil, err
	}
	inv.NetTotal, inv.TaxTotal, inv.GrandTotal = ComputeLineTotals(lines)
	inv.UpdatedAt = time.Now().UTC()

	if err := uc.invoiceRepo.ReplaceLines(ctx, inv.ID, lines); err != nil {
		return nil, fmt.Errorf("reemplazar líneas: %w", err)
	}
	return toInvoiceResponse(inv, lines), nil
}

// DeleteDraft elimina un borrador. Las facturas emitidas no se pueden borrar.
func (uc *DraftUseCase) DeleteDraft(ctx context.Context, companyID, invoiceID string) error {
	inv, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return fmt.Errorf("obtener factura: %w", err)
	}
	if inv == nil || inv.CompanyID != companyID {
		return domain.ErrNotFound
	}
	if inv.IsIssued() {
		return fmt.Errorf("%w: las facturas emitidas no se eliminan", domain.ErrInvalidState)
	}
	return uc.invoiceRepo.DeleteDraft(ctx, invoiceID)
}

// GetInvoice obtiene una factura con sus líneas, dentro del tenant.
func (uc *DraftUseCase) GetInvoice(ctx context.Context, companyID, invoiceID string) (*dto.InvoiceResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("obtener factura: %w", err)
	}
	if inv == nil || inv.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	lines, err := uc.invoiceRepo.GetLinesByInvoiceID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("obtener líneas: %w", err)
	}
	return toInvoiceResponse(inv, lines), nil
}

// ListInvoices lista las facturas del tenant (sin líneas).
func (uc *DraftUseCase) ListInvoices(ctx context.Context, companyID string, limit, offset int) ([]*dto.InvoiceResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	invs, err := uc.invoiceRepo.ListByCompany(ctx, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listar facturas: %w", err)
	}
	out := make([]*dto.InvoiceResponse, 0, len(invs))
	for _, inv := range invs {
		out = append(out, toInvoiceResponse(inv, nil))
	}
	return out, nil
}

// buildLines valida y materializa las líneas de la petición.
func buildLines(invoiceID string, in []dto.InvoiceLineRequest) ([]*entity.InvoiceLine, error) {
	lines := make([]*entity.InvoiceLine, 0, len(in))
	for _, item := range in {
		if item.Description == "" || !item.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		if item.UnitPrice.LessThan(decimal.Zero) || item.TaxRate.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		lines = append(lines, &entity.InvoiceLine{
			ID:          uuid.New().String(),
			InvoiceID:   invoiceID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TaxRate:     item.TaxRate,
		})
	}
	return lines, nil
}

func toInvoiceResponse(inv *entity.Invoice, lines []*entity.InvoiceLine) *dto.InvoiceResponse {
	resp := &dto.InvoiceResponse{
		ID:              inv.ID,
		CompanyID:       inv.CompanyID,
		CustomerID:      inv.CustomerID,
		Status:          inv.Status,
		Number:          inv.Number,
		Currency:        inv.Currency,
		NetTotal:        inv.NetTotal,
		TaxTotal:        inv.TaxTotal,
		GrandTotal:      inv.GrandTotal,
		CustomerName:    inv.CustomerName,
		CustomerTaxID:   inv.CustomerTaxID,
		CustomerAddress: inv.CustomerAddress,
		Lines:           make([]dto.InvoiceLineResponse, 0, len(lines)),
	}
	if !inv.IssueDate.IsZero() {
		resp.IssueDate = inv.IssueDate.Format("2006-01-02")
	}
	if inv.IssuedAt != nil {
		resp.IssuedAt = inv.IssuedAt.Format(time.RFC3339)
	}
	if inv.Unsigned != nil {
		resp.UnsignedSHA256 = inv.Unsigned.SHA256
	}
	if inv.Signed != nil {
		resp.SignedSHA256 = inv.Signed.SHA256
	}
	for _, l := range lines {
		resp.Lines = append(resp.Lines, dto.InvoiceLineResponse{
			ID:          l.ID,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			TaxRate:     l.TaxRate,
			LineTotal:   l.LineTotal,
			TaxAmount:   l.TaxAmount,
		})
	}
	return resp
}
