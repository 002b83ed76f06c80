package billing

import "strconv"

// FormatInvoiceNumber arma el número de factura: {prefijo}{consecutivo}.
// El prefijo puede ser vacío; el consecutivo va sin ceros a la izquierda.
func FormatInvoiceNumber(prefix string, counter int64) string {
	return prefix + strconv.FormatInt(counter, 10)
}
