package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/Facturador-api/internal/application/dto"
	"github.com/jhoicas/Facturador-api/internal/domain"
	"github.com/jhoicas/Facturador-api/internal/domain/entity"
	"github.com/jhoicas/Facturador-api/internal/domain/repository"
)

// maxIssueAttempts reintentos completos de la transacción de emisión cuando
// el consecutivo pierde la carrera (ErrConflict). Cada reintento relee el
// contador, así el segundo emisor obtiene N+1.
const maxIssueAttempts = 3

// IssueInvoiceUseCase ejecuta la transición Draft→Issued: snapshot del
// cliente, totales congelados, número consecutivo y timestamp de emisión,
// todo en una sola transacción. O la factura queda completamente emitida o
// el intento falla y el borrador queda intacto — nunca un estado intermedio.
type IssueInvoiceUseCase struct {
	txRunner BillingTxRunner
}

// NewIssueInvoiceUseCase construye el caso de uso.
func NewIssueInvoiceUseCase(txRunner BillingTxRunner) *IssueInvoiceUseCase {
	return &IssueInvoiceUseCase{txRunner: txRunner}
}

// Issue emite la factura. Errores:
//   - domain.ErrNotFound      factura inexistente o de otra empresa
//   - domain.ErrInvalidState  ya emitida
//   - domain.ErrConflict      carrera de numeración tras agotar reintentos
func (uc *IssueInvoiceUseCase) Issue(ctx context.Context, companyID, invoiceID string) (*dto.InvoiceResponse, error) {
	var lastErr error
	for attempt := 0; attempt < maxIssueAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		resp, err := uc.issueOnce(ctx, companyID, invoiceID)
		if err == nil {
			return resp, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// issueOnce ejecuta un intento de emisión dentro de una transacción.
func (uc *IssueInvoiceUseCase) issueOnce(ctx context.Context, companyID, invoiceID string) (*dto.InvoiceResponse, error) {
	var issued *entity.Invoice
	var issuedLines []*entity.InvoiceLine

	err := uc.txRunner.RunBilling(ctx, func(
		companyRepo repository.CompanyRepository,
		customerRepo repository.CustomerRepository,
		invoiceRepo repository.InvoiceRepository,
	) error {
		inv, err := invoiceRepo.GetByID(ctx, invoiceID)
		if err != nil {
			return fmt.Errorf("obtener factura: %w", err)
		}
		if inv == nil || inv.CompanyID != companyID {
			return domain.ErrNotFound
		}
		if inv.IsIssued() {
			return fmt.Errorf("%w: la factura ya tiene número %s", domain.ErrInvalidState, inv.Number)
		}

		lines, err := invoiceRepo.GetLinesByInvoiceID(ctx, invoiceID)
		if err != nil {
			return fmt.Errorf("obtener líneas: %w", err)
		}
		if len(lines) == 0 {
			return fmt.Errorf("%w: la factura no tiene líneas", domain.ErrInvalidInput)
		}

		customer, err := customerRepo.GetByID(ctx, inv.CustomerID)
		if err != nil {
			return fmt.Errorf("obtener cliente: %w", err)
		}
		if customer == nil || customer.CompanyID != companyID {
			return domain.ErrNotFound
		}

		company, err := companyRepo.GetByID(ctx, companyID)
		if err != nil || company == nil {
			return fmt.Errorf("obtener empresa: %w", domain.ErrNotFound)
		}

		// Totales congelados: recalculados desde las líneas actuales,
		// redondeo por línea antes de sumar.
		inv.NetTotal, inv.TaxTotal, inv.GrandTotal = ComputeLineTotals(lines)

		// Consecutivo: leer contador, formatear y avanzar con CAS. Si otro
		// emisor avanzó el contador primero, AdvanceInvoiceNumber retorna
		// ErrConflict y toda la tx se revierte (el número nunca se reusa;
		// un intento fallido puede dejar hueco, eso es aceptable).
		inv.Number = FormatInvoiceNumber(company.InvoicePrefix, company.NextInvoiceNumber)
		if err := companyRepo.AdvanceInvoiceNumber(ctx, companyID, company.NextInvoiceNumber); err != nil {
			return err
		}

		// Snapshot del cliente: las facturas emitidas no cambian aunque el
		// cliente se edite después.
		inv.CustomerName = customer.Name
		inv.CustomerTaxID = customer.TaxID
		inv.CustomerAddress = customer.Address

		now := time.Now().UTC()
		inv.Status = entity.StatusIssued
		inv.IssueDate = now.Truncate(24 * time.Hour)
		inv.IssuedAt = &now
		inv.UpdatedAt = now

		if err := invoiceRepo.MarkIssued(ctx, inv, lines); err != nil {
			return err
		}
		issued = inv
		issuedLines = lines
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(issued, issuedLines), nil
}
