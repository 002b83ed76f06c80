package entity

import "time"

// Company representa una organización/tenant del sistema. Cada empresa lleva
// su propio consecutivo de facturación: NextInvoiceNumber solo lo muta la
// asignación de numeración, exactamente una vez por emisión exitosa.
type Company struct {
	ID                string
	Name              string
	TaxID             string // NIT con o sin dígito de verificación
	Address           string
	Phone             string
	Email             string
	InvoicePrefix     string // Prefijo del consecutivo (ej: "FE"); puede ir vacío
	NextInvoiceNumber int64  // Próximo número a asignar (contador monotónico, arranca en 1)
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
