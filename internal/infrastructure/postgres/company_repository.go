package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Facturador-api/internal/domain"
	"github.com/jhoicas/Facturador-api/internal/domain/entity"
	"github.com/jhoicas/Facturador-api/internal/domain/repository"
)

// Asegura que CompanyRepo implementa repository.CompanyRepository.
var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo implementación del puerto CompanyRepository sobre PostgreSQL
// (usable con pool o tx).
type CompanyRepo struct {
	q Querier
}

// NewCompanyRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCompanyRepository(q Querier) *CompanyRepo {
	return &CompanyRepo{q: q}
}

// Create persiste una nueva empresa con su consecutivo inicial.
func (r *CompanyRepo) Create(ctx context.Context, company *entity.Company) error {
	query := `
		INSERT INTO companies (id, name, tax_id, address, phone, email, invoice_prefix, next_invoice_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		company.ID, company.Name, company.TaxID, company.Address,
		company.Phone, company.Email, company.InvoicePrefix, company.NextInvoiceNumber,
		company.CreatedAt, company.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

// GetByID obtiene una empresa por ID.
func (r *CompanyRepo) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	query := `
		SELECT id, name, tax_id, address, phone, email, invoice_prefix, next_invoice_number, created_at, updated_at
		FROM companies WHERE id = $1`
	var c entity.Company
	err := r.q.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.TaxID, &c.Address, &c.Phone, &c.Email,
		&c.InvoicePrefix, &c.NextInvoiceNumber, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return &c, nil
}

// GetByTaxID obtiene una empresa por NIT.
func (r *CompanyRepo) GetByTaxID(ctx context.Context, taxID string) (*entity.Company, error) {
	query := `
		SELECT id, name, tax_id, address, phone, email, invoice_prefix, next_invoice_number, created_at, updated_at
		FROM companies WHERE tax_id = $1`
	var c entity.Company
	err := r.q.QueryRow(ctx, query, taxID).Scan(
		&c.ID, &c.Name, &c.TaxID, &c.Address, &c.Phone, &c.Email,
		&c.InvoicePrefix, &c.NextInvoiceNumber, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company by tax_id: %w", err)
	}
	return &c, nil
}

// Update actualiza los datos generales de la empresa. El consecutivo NO se
// toca por aquí: solo avanza vía AdvanceInvoiceNumber.
func (r *CompanyRepo) Update(ctx context.Context, company *entity.Company) error {
	query := `
		UPDATE companies
		SET name = $2, tax_id = $3, address = $4, phone = $5, email = $6, invoice_prefix = $7, updated_at = $8
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		company.ID, company.Name, company.TaxID, company.Address,
		company.Phone, company.Email, company.InvoicePrefix, company.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update company: %w", err)
	}
	return nil
}

// AdvanceInvoiceNumber avanza el consecutivo con compare-and-swap: solo
// escribe si el contador todavía vale current. Cero filas afectadas significa
// que otro emisor ganó la carrera → domain.ErrConflict (reintentable).
func (r *CompanyRepo) AdvanceInvoiceNumber(ctx context.Context, companyID string, current int64) error {
	query := `
		UPDATE companies
		SET next_invoice_number = next_invoice_number + 1, updated_at = NOW()
		WHERE id = $1 AND next_invoice_number = $2`
	tag, err := r.q.Exec(ctx, query, companyID, current)
	if err != nil {
		return fmt.Errorf("advance invoice number: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: el consecutivo avanzó en otra emisión", domain.ErrConflict)
	}
	return nil
}
