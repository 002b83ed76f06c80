package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Facturador-api/internal/domain"
	"github.com/jhoicas/Facturador-api/internal/domain/entity"
	"github.com/jhoicas/Facturador-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
//
// Los artefactos (sin firmar / firmado) viven como bytea junto a la fila,
// cada uno con su filename, digest SHA-256 y fecha de creación en columnas
// propias. La restricción única (company_id, number) respalda la numeración.
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// Create persiste un borrador con sus líneas.
func (r *InvoiceRepo) Create(ctx context.Context, invoice *entity.Invoice, lines []*entity.InvoiceLine) error {
	if invoice.ID == "" {
		invoice.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoices (id, company_id, customer_id, status, currency, net_total, tax_total, grand_total, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		invoice.ID, invoice.CompanyID, invoice.CustomerID, invoice.Status, invoice.Currency,
		invoice.NetTotal, invoice.TaxTotal, invoice.GrandTotal,
		invoice.CreatedAt, invoice.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	for _, line := range lines {
		if err := r.insertLine(ctx, line); err != nil {
			return err
		}
	}
	return nil
}

func (r *InvoiceRepo) insertLine(ctx context.Context, line *entity.InvoiceLine) error {
	if line.ID == "" {
		line.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoice_lines (id, invoice_id, description, quantity, unit_price, tax_rate, line_total, tax_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		line.ID, line.InvoiceID, line.Description, line.Quantity, line.UnitPrice,
		line.TaxRate, line.LineTotal, line.TaxAmount,
	)
	if err != nil {
		return fmt.Errorf("insert invoice line: %w", err)
	}
	return nil
}

const invoiceColumns = `
	id, company_id, customer_id, status, number, currency, issue_date, issued_at,
	net_total, tax_total, grand_total,
	customer_name, customer_tax_id, customer_address,
	unsigned_content, unsigned_filename, unsigned_sha256, unsigned_created_at,
	signed_content, signed_filename, signed_sha256, signed_created_at,
	created_at, updated_at`

// GetByID obtiene una factura completa por ID (con artefactos).
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	inv, err := scanInvoice(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// scanInvoice arma la entidad desde una fila con invoiceColumns.
func scanInvoice(row interface{ Scan(dest ...any) error }) (*entity.Invoice, error) {
	var inv entity.Invoice
	var number, customerName, customerTaxID, customerAddress *string
	var issueDate, issuedAt *time.Time
	var unsignedContent, signedContent []byte
	var unsignedFilename, unsignedSHA, signedFilename, signedSHA *string
	var unsignedCreatedAt, signedCreatedAt *time.Time

	err := row.Scan(
		&inv.ID, &inv.CompanyID, &inv.CustomerID, &inv.Status, &number, &inv.Currency,
		&issueDate, &issuedAt,
		&inv.NetTotal, &inv.TaxTotal, &inv.GrandTotal,
		&customerName, &customerTaxID, &customerAddress,
		&unsignedContent, &unsignedFilename, &unsignedSHA, &unsignedCreatedAt,
		&signedContent, &signedFilename, &signedSHA, &signedCreatedAt,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.Number = derefStr(number)
	inv.CustomerName = derefStr(customerName)
	inv.CustomerTaxID = derefStr(customerTaxID)
	inv.CustomerAddress = derefStr(customerAddress)
	if issueDate != nil {
		inv.IssueDate = *issueDate
	}
	inv.IssuedAt = issuedAt
	if len(unsignedContent) > 0 && unsignedCreatedAt != nil {
		inv.Unsigned = &entity.DocumentArtifact{
			Content:   unsignedContent,
			Filename:  derefStr(unsignedFilename),
			SHA256:    derefStr(unsignedSHA),
			CreatedAt: *unsignedCreatedAt,
		}
	}
	if len(signedContent) > 0 && signedCreatedAt != nil {
		inv.Signed = &entity.DocumentArtifact{
			Content:   signedContent,
			Filename:  derefStr(signedFilename),
			SHA256:    derefStr(signedSHA),
			CreatedAt: *signedCreatedAt,
		}
	}
	return &inv, nil
}

// GetLinesByInvoiceID obtiene todas las líneas de una factura.
func (r *InvoiceRepo) GetLinesByInvoiceID(ctx context.Context, invoiceID string) ([]*entity.InvoiceLine, error) {
	query := `
		SELECT id, invoice_id, description, quantity, unit_price, tax_rate, line_total, tax_amount
		FROM invoice_lines WHERE invoice_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice lines: %w", err)
	}
	defer rows.Close()
	var list []*entity.InvoiceLine
	for rows.Next() {
		var l entity.InvoiceLine
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.Description, &l.Quantity, &l.UnitPrice, &l.TaxRate, &l.LineTotal, &l.TaxAmount); err != nil {
			return nil, fmt.Errorf("scan line: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// ListByCompany lista facturas de una empresa (sin blobs, consulta ligera).
func (r *InvoiceRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Invoice, error) {
	query := `
		SELECT id, company_id, customer_id, status, COALESCE(number, ''), currency,
		       net_total, tax_total, grand_total,
		       COALESCE(customer_name, ''), created_at, updated_at
		FROM invoices WHERE company_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		var inv entity.Invoice
		if err := rows.Scan(
			&inv.ID, &inv.CompanyID, &inv.CustomerID, &inv.Status, &inv.Number, &inv.Currency,
			&inv.NetTotal, &inv.TaxTotal, &inv.GrandTotal,
			&inv.CustomerName, &inv.CreatedAt, &inv.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, &inv)
	}
	return list, rows.Err()
}

// ReplaceLines reemplaza las líneas y los totales preliminares de un borrador.
func (r *InvoiceRepo) ReplaceLines(ctx context.Context, invoiceID string, lines []*entity.InvoiceLine) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM invoice_lines WHERE invoice_id = $1`, invoiceID); err != nil {
		return fmt.Errorf("delete invoice lines: %w", err)
	}
	for _, line := range lines {
		line.InvoiceID = invoiceID
		if err := r.insertLine(ctx, line); err != nil {
			return err
		}
	}
	return nil
}

// DeleteDraft elimina la factura solo si sigue en DRAFT.
func (r *InvoiceRepo) DeleteDraft(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM invoice_lines WHERE invoice_id = $1`, id); err != nil {
		return fmt.Errorf("delete invoice lines: %w", err)
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM invoices WHERE id = $1 AND status = $2`, id, entity.StatusDraft)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: la factura no está en borrador", domain.ErrInvalidState)
	}
	return nil
}

// MarkIssued congela la factura: número, snapshot, totales, fecha y estado,
// condicionado a que siga en DRAFT. Cero filas afectadas significa que otro
// proceso la emitió primero (ErrInvalidState); una violación de la
// restricción única (company_id, number) es una carrera de numeración
// (ErrConflict, reintentable).
func (r *InvoiceRepo) MarkIssued(ctx context.Context, invoice *entity.Invoice, lines []*entity.InvoiceLine) error {
	query := `
		UPDATE invoices
		SET status = $2, number = $3, issue_date = $4, issued_at = $5,
		    net_total = $6, tax_total = $7, grand_total = $8,
		    customer_name = $9, customer_tax_id = $10, customer_address = $11,
		    updated_at = $12
		WHERE id = $1 AND status = $13`
	tag, err := r.q.Exec(ctx, query,
		invoice.ID, invoice.Status, invoice.Number, invoice.IssueDate, invoice.IssuedAt,
		invoice.NetTotal, invoice.TaxTotal, invoice.GrandTotal,
		invoice.CustomerName, invoice.CustomerTaxID, invoice.CustomerAddress,
		invoice.UpdatedAt, entity.StatusDraft,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: número %s ya asignado", domain.ErrConflict, invoice.Number)
		}
		return fmt.Errorf("mark issued: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: la factura ya no está en borrador", domain.ErrInvalidState)
	}
	// Congelar los derivados de las líneas con los valores recalculados.
	for _, line := range lines {
		lineQuery := `
			UPDATE invoice_lines
			SET tax_rate = $2, line_total = $3, tax_amount = $4
			WHERE id = $1`
		if _, err := r.q.Exec(ctx, lineQuery, line.ID, line.TaxRate, line.LineTotal, line.TaxAmount); err != nil {
			return fmt.Errorf("freeze line: %w", err)
		}
	}
	return nil
}

// UpdateUnsignedDocument reemplaza el artefacto sin firmar completo.
func (r *InvoiceRepo) UpdateUnsignedDocument(ctx context.Context, invoice *entity.Invoice) error {
	if invoice.Unsigned == nil {
		return fmt.Errorf("%w: artefacto sin firmar vacío", domain.ErrInvalidInput)
	}
	query := `
		UPDATE invoices
		SET unsigned_content = $2, unsigned_filename = $3, unsigned_sha256 = $4, unsigned_created_at = $5, updated_at = $6
		WHERE id = $1 AND status = $7`
	tag, err := r.q.Exec(ctx, query,
		invoice.ID, invoice.Unsigned.Content, invoice.Unsigned.Filename,
		invoice.Unsigned.SHA256, invoice.Unsigned.CreatedAt, invoice.UpdatedAt,
		entity.StatusIssued,
	)
	if err != nil {
		return fmt.Errorf("update unsigned document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: la factura no está emitida", domain.ErrInvalidState)
	}
	return nil
}

// UpdateSignedDocument persiste el artefacto firmado sin tocar el sin firmar.
// Exige que el sin firmar exista (la firma sella su contenido).
func (r *InvoiceRepo) UpdateSignedDocument(ctx context.Context, invoice *entity.Invoice) error {
	if invoice.Signed == nil {
		return fmt.Errorf("%w: artefacto firmado vacío", domain.ErrInvalidInput)
	}
	query := `
		UPDATE invoices
		SET signed_content = $2, signed_filename = $3, signed_sha256 = $4, signed_created_at = $5, updated_at = $6
		WHERE id = $1 AND status = $7 AND unsigned_content IS NOT NULL`
	tag, err := r.q.Exec(ctx, query,
		invoice.ID, invoice.Signed.Content, invoice.Signed.Filename,
		invoice.Signed.SHA256, invoice.Signed.CreatedAt, invoice.UpdatedAt,
		entity.StatusIssued,
	)
	if err != nil {
		return fmt.Errorf("update signed document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: la factura no está emitida o no tiene documento sin firmar", domain.ErrInvalidState)
	}
	return nil
}
