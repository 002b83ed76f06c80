package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del ciclo de vida de una factura.
const (
	StatusDraft  = "DRAFT"  // Borrador: editable, sin número asignado
	StatusIssued = "ISSUED" // Emitida: inmutable, numerada; solo admite artefactos
)

// Invoice representa la cabecera de una factura.
//
// Invariantes:
//   - Number, IssuedAt, los totales, el snapshot del cliente y las líneas se
//     congelan al pasar a ISSUED; después solo se agregan artefactos.
//   - El artefacto sin firmar solo puede existir con estado ISSUED.
//   - El artefacto firmado solo puede existir si ya existe el sin firmar.
//   - GrandTotal = NetTotal + TaxTotal, con redondeo por línea (2 decimales,
//     mitad lejos de cero).
type Invoice struct {
	ID         string
	CompanyID  string
	CustomerID string
	Status     string // DRAFT | ISSUED
	Number     string // {prefijo}{consecutivo}; único por empresa, asignado al emitir
	Currency   string
	IssueDate  time.Time  // Fecha de factura (día)
	IssuedAt   *time.Time // Instante de la emisión (nil en borrador)

	NetTotal   decimal.Decimal
	TaxTotal   decimal.Decimal
	GrandTotal decimal.Decimal

	// Snapshot del cliente tomado al emitir (inmune a ediciones posteriores).
	CustomerName    string
	CustomerTaxID   string
	CustomerAddress string

	Unsigned *DocumentArtifact // Representación gráfica sin firmar (PDF)
	Signed   *DocumentArtifact // Sobre firmado (XML con firma detached)

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DocumentArtifact es un blob persistido junto a la factura: bytes del
// documento, nombre de archivo, digest SHA-256 en hex y fecha de creación UTC.
// El sin firmar y el firmado usan juegos de columnas independientes y nunca
// comparten hash.
type DocumentArtifact struct {
	Content   []byte
	Filename  string
	SHA256    string // Digest hex del contenido
	CreatedAt time.Time
}

// IsIssued indica si la factura ya fue emitida (campos financieros congelados).
func (i *Invoice) IsIssued() bool { return i.Status == StatusIssued }
