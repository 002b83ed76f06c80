package billing_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/Facturador-api/internal/domain"
	"github.com/jhoicas/Facturador-api/internal/domain/entity"
	"github.com/jhoicas/Facturador-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria de los puertos de persistencia. Reproducen los contratos
// que importan para los casos de uso: CAS del consecutivo, unicidad de
// (company_id, number) y emisión condicionada a DRAFT.
// ──────────────────────────────────────────────────────────────────────────────

type memCompanyRepo struct {
	mu        sync.Mutex
	companies map[string]*entity.Company
}

func newMemCompanyRepo() *memCompanyRepo {
	return &memCompanyRepo{companies: make(map[string]*entity.Company)}
}

func (r *memCompanyRepo) Create(_ context.Context, c *entity.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.companies[c.ID] = c
	return nil
}

func (r *memCompanyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.companies[id]
	if !ok {
		return nil, nil
	}
	copia := *c
	return &copia, nil
}

func (r *memCompanyRepo) GetByTaxID(_ context.Context, taxID string) (*entity.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.companies {
		if c.TaxID == taxID {
			copia := *c
			return &copia, nil
		}
	}
	return nil, nil
}

func (r *memCompanyRepo) Update(_ context.Context, c *entity.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.companies[c.ID] = c
	return nil
}

// AdvanceInvoiceNumber reproduce el compare-and-set del adaptador real: solo
// avanza si el contador todavía vale current.
func (r *memCompanyRepo) AdvanceInvoiceNumber(_ context.Context, companyID string, current int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.companies[companyID]
	if !ok {
		return domain.ErrNotFound
	}
	if c.NextInvoiceNumber != current {
		return fmt.Errorf("%w: el consecutivo avanzó", domain.ErrConflict)
	}
	c.NextInvoiceNumber++
	return nil
}

type memCustomerRepo struct {
	mu        sync.Mutex
	customers map[string]*entity.Customer
}

func newMemCustomerRepo() *memCustomerRepo {
	return &memCustomerRepo{customers: make(map[string]*entity.Customer)}
}

func (r *memCustomerRepo) Create(_ context.Context, c *entity.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.customers[c.ID] = c
	return nil
}

func (r *memCustomerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[id]
	if !ok {
		return nil, nil
	}
	copia := *c
	return &copia, nil
}

func (r *memCustomerRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Customer
	for _, c := range r.customers {
		if c.CompanyID == companyID {
			copia := *c
			out = append(out, &copia)
		}
	}
	return out, nil
}

func (r *memCustomerRepo) Update(_ context.Context, c *entity.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.customers[c.ID] = c
	return nil
}

func (r *memCustomerRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.customers, id)
	return nil
}

type memInvoiceRepo struct {
	mu       sync.Mutex
	invoices map[string]*entity.Invoice
	lines    map[string][]*entity.InvoiceLine
}

func newMemInvoiceRepo() *memInvoiceRepo {
	return &memInvoiceRepo{
		invoices: make(map[string]*entity.Invoice),
		lines:    make(map[string][]*entity.InvoiceLine),
	}
}

func (r *memInvoiceRepo) Create(_ context.Context, inv *entity.Invoice, lines []*entity.InvoiceLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copia := *inv
	r.invoices[inv.ID] = &copia
	r.lines[inv.ID] = append([]*entity.InvoiceLine(nil), lines...)
	return nil
}

func (r *memInvoiceRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return nil, nil
	}
	copia := *inv
	return &copia, nil
}

func (r *memInvoiceRepo) GetLinesByInvoiceID(_ context.Context, invoiceID string) ([]*entity.InvoiceLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	src := r.lines[invoiceID]
	out := make([]*entity.InvoiceLine, 0, len(src))
	for _, l := range src {
		copia := *l
		out = append(out, &copia)
	}
	return out, nil
}

func (r *memInvoiceRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Invoice
	for _, inv := range r.invoices {
		if inv.CompanyID == companyID {
			copia := *inv
			out = append(out, &copia)
		}
	}
	return out, nil
}

func (r *memInvoiceRepo) ReplaceLines(_ context.Context, invoiceID string, lines []*entity.InvoiceLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines[invoiceID] = append([]*entity.InvoiceLine(nil), lines...)
	return nil
}

func (r *memInvoiceRepo) DeleteDraft(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok || inv.IsIssued() {
		return fmt.Errorf("%w: la factura no está en borrador", domain.ErrInvalidState)
	}
	delete(r.invoices, id)
	delete(r.lines, id)
	return nil
}

// MarkIssued reproduce la semántica del adaptador real: condicionado a DRAFT
// y con unicidad de (company_id, number) como respaldo.
func (r *memInvoiceRepo) MarkIssued(_ context.Context, inv *entity.Invoice, lines []*entity.InvoiceLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.invoices[inv.ID]
	if !ok || stored.IsIssued() {
		return fmt.Errorf("%w: la factura ya no está en borrador", domain.ErrInvalidState)
	}
	for id, other := range r.invoices {
		if id != inv.ID && other.CompanyID == inv.CompanyID && other.Number != "" && other.Number == inv.Number {
			return fmt.Errorf("%w: número %s ya asignado", domain.ErrConflict, inv.Number)
		}
	}
	copia := *inv
	r.invoices[inv.ID] = &copia
	r.lines[inv.ID] = append([]*entity.InvoiceLine(nil), lines...)
	return nil
}

func (r *memInvoiceRepo) UpdateUnsignedDocument(_ context.Context, inv *entity.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.invoices[inv.ID]
	if !ok || !stored.IsIssued() {
		return fmt.Errorf("%w: la factura no está emitida", domain.ErrInvalidState)
	}
	stored.Unsigned = inv.Unsigned
	stored.UpdatedAt = inv.UpdatedAt
	return nil
}

func (r *memInvoiceRepo) UpdateSignedDocument(_ context.Context, inv *entity.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.invoices[inv.ID]
	if !ok || !stored.IsIssued() || stored.Unsigned == nil {
		return fmt.Errorf("%w: la factura no está emitida o no tiene documento sin firmar", domain.ErrInvalidState)
	}
	stored.Signed = inv.Signed
	stored.UpdatedAt = inv.UpdatedAt
	return nil
}

// memTxRunner ejecuta el callback directamente sobre los fakes (sin tx real;
// la atomicidad no se simula, los contratos de CAS y unicidad sí).
type memTxRunner struct {
	companyRepo  *memCompanyRepo
	customerRepo *memCustomerRepo
	invoiceRepo  *memInvoiceRepo
}

func (r *memTxRunner) RunBilling(_ context.Context, fn func(
	companyRepo repository.CompanyRepository,
	customerRepo repository.CustomerRepository,
	invoiceRepo repository.InvoiceRepository,
) error) error {
	return fn(r.companyRepo, r.customerRepo, r.invoiceRepo)
}
