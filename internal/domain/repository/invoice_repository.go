package repository

import (
	"context"

	"github.com/jhoicas/Facturador-api/internal/domain/entity"
)

// InvoiceRepository define el puerto de persistencia para Invoice y sus líneas.
type InvoiceRepository interface {
	// Create persiste un borrador con sus líneas.
	Create(ctx context.Context, invoice *entity.Invoice, lines []*entity.InvoiceLine) error

	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	GetLinesByInvoiceID(ctx context.Context, invoiceID string) ([]*entity.InvoiceLine, error)
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Invoice, error)

	// ReplaceLines reemplaza todas las líneas de un borrador.
	ReplaceLines(ctx context.Context, invoiceID string, lines []*entity.InvoiceLine) error

	// DeleteDraft elimina la factura solo si sigue en DRAFT; si ya fue
	// emitida retorna domain.ErrInvalidState (las emitidas no se borran).
	DeleteDraft(ctx context.Context, id string) error

	// MarkIssued escribe número, snapshot del cliente, totales congelados,
	// fecha de emisión y el cambio de estado, condicionado a status = DRAFT.
	// La restricción única (company_id, number) es el respaldo contra
	// carreras de numeración: una violación se reporta como domain.ErrConflict.
	MarkIssued(ctx context.Context, invoice *entity.Invoice, lines []*entity.InvoiceLine) error

	// UpdateUnsignedDocument reemplaza por completo el artefacto sin firmar
	// (bytes, filename, hash, fecha). No versiona: el anterior se pierde.
	UpdateUnsignedDocument(ctx context.Context, invoice *entity.Invoice) error

	// UpdateSignedDocument persiste el artefacto firmado sin tocar el sin
	// firmar. Re-firmar sobrescribe la firma anterior (no se retiene).
	UpdateSignedDocument(ctx context.Context, invoice *entity.Invoice) error
}
