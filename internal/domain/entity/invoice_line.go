package entity

import "github.com/shopspring/decimal"

// InvoiceLine representa una línea de una factura. Las líneas son editables
// mientras la factura está en borrador y se congelan al emitirla.
//
// LineTotal y TaxAmount son derivados (cantidad × precio, redondeados a 2
// decimales mitad lejos de cero) y se persisten congelados en la emisión.
type InvoiceLine struct {
	ID          string
	InvoiceID   string
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	TaxRate     decimal.Decimal // Tasa como fracción (0.19) o porcentaje (19); se normaliza
	LineTotal   decimal.Decimal
	TaxAmount   decimal.Decimal
}
