package entity

import "time"

// Customer representa un cliente de la empresa (facturación).
// Es editable en cualquier momento; las facturas emitidas guardan un snapshot
// de sus datos al momento de la emisión, así que editarlo nunca altera
// facturas ya emitidas.
type Customer struct {
	ID        string
	CompanyID string
	Name      string
	TaxID     string // NIT o Cédula
	Address   string
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
