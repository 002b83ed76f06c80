package billing

import (
	"context"
	"crypto/tls"

	"github.com/jhoicas/Facturador-api/internal/domain/entity"
	"github.com/jhoicas/Facturador-api/internal/domain/repository"
)

// BillingTxRunner ejecuta una función dentro de una transacción con los repos
// de facturación atados a la tx. La emisión depende de esto: contador,
// snapshot y cambio de estado se confirman como una sola unidad atómica.
type BillingTxRunner interface {
	RunBilling(ctx context.Context, fn func(
		companyRepo repository.CompanyRepository,
		customerRepo repository.CustomerRepository,
		invoiceRepo repository.InvoiceRepository,
	) error) error
}

// InvoicePDFGenerator genera la representación gráfica (PDF) de una factura
// emitida. Es una función pura de los datos congelados: mismo snapshot,
// mismos bytes de entrada al hash.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(
		ctx context.Context,
		invoice *entity.Invoice,
		company *entity.Company,
		lines []*entity.InvoiceLine,
	) ([]byte, error)
}

// KeySelector obtiene la capacidad de firma (certificado + llave privada).
// Puede ser interactivo (token criptográfico, smartcard): la implementación
// decide de dónde sale la llave. Si el operador cancela la selección retorna
// domain.ErrCancelled; eso no se reintenta automáticamente.
type KeySelector interface {
	SelectSigningKey(ctx context.Context) (tls.Certificate, error)
}

// DocumentSigner produce el sobre firmado a partir del documento sin firmar.
// La firma es detached: se calcula sobre el digest SHA-256 del documento, de
// modo que el resultado es reproducible dada la misma llave y el mismo
// documento. El sobre certifica que cualquier modificación posterior
// invalida la firma.
type DocumentSigner interface {
	Sign(docBytes []byte, filename string, cert tls.Certificate) ([]byte, error)
}
