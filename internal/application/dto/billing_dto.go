package dto

import (
	"github.com/shopspring/decimal"
)

// CreateCustomerRequest body para POST /api/customers.
type CreateCustomerRequest struct {
	Name    string `json:"name"`
	TaxID   string `json:"tax_id"`
	Address string `json:"address,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// CustomerResponse cliente en respuestas.
type CustomerResponse struct {
	ID        string `json:"id"`
	CompanyID string `json:"company_id"`
	Name      string `json:"name"`
	TaxID     string `json:"tax_id"`
	Address   string `json:"address,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// InvoiceLineRequest línea de factura (descripción, cantidad, precio, tasa IVA).
type InvoiceLineRequest struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"` // 0.19 o 19 (se normaliza)
}

// CreateInvoiceRequest body para POST /api/invoices (crea un borrador).
type CreateInvoiceRequest struct {
	CustomerID string               `json:"customer_id"`
	Currency   string               `json:"currency,omitempty"` // por defecto COP
	Lines      []InvoiceLineRequest `json:"lines"`
}

// UpdateInvoiceRequest body para PUT /api/invoices/:id (solo borradores).
type UpdateInvoiceRequest struct {
	CustomerID string               `json:"customer_id,omitempty"`
	Lines      []InvoiceLineRequest `json:"lines"`
}

// InvoiceLineResponse línea en la respuesta.
type InvoiceLineResponse struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	LineTotal   decimal.Decimal `json:"line_total"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
}

// InvoiceResponse factura con detalle.
type InvoiceResponse struct {
	ID              string                `json:"id"`
	CompanyID       string                `json:"company_id"`
	CustomerID      string                `json:"customer_id"`
	Status          string                `json:"status"` // DRAFT | ISSUED
	Number          string                `json:"number,omitempty"`
	Currency        string                `json:"currency"`
	IssueDate       string                `json:"issue_date,omitempty"`
	IssuedAt        string                `json:"issued_at,omitempty"`
	NetTotal        decimal.Decimal       `json:"net_total"`
	TaxTotal        decimal.Decimal       `json:"tax_total"`
	GrandTotal      decimal.Decimal       `json:"grand_total"`
	CustomerName    string                `json:"customer_name,omitempty"`
	CustomerTaxID   string                `json:"customer_tax_id,omitempty"`
	CustomerAddress string                `json:"customer_address,omitempty"`
	UnsignedSHA256  string                `json:"unsigned_sha256,omitempty"`
	SignedSHA256    string                `json:"signed_sha256,omitempty"`
	Lines           []InvoiceLineResponse `json:"lines"`
}
