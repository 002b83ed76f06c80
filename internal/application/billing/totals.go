package billing

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Facturador-api/internal/domain/entity"
)

// Política de redondeo legal: 2 decimales, mitad lejos de cero
// (decimal.Round implementa exactamente esa regla). El redondeo se aplica
// por línea ANTES de sumar, no sobre el agregado: así 3 × 10.005 da una
// línea de 30.02 y los totales cuadran con lo impreso.
const moneyPlaces = 2

// normalizeTaxRate acepta la tasa como fracción (0.19) o porcentaje (19)
// y la normaliza a fracción.
func normalizeTaxRate(rate decimal.Decimal) decimal.Decimal {
	if rate.GreaterThan(decimal.NewFromInt(1)) {
		return rate.Div(decimal.NewFromInt(100))
	}
	return rate
}

// ComputeLineTotals congela LineTotal y TaxAmount de cada línea (redondeados)
// y devuelve los agregados: netTotal, taxTotal y grandTotal.
// Invariante: grandTotal = netTotal + taxTotal = Σ LineTotal + Σ TaxAmount.
func ComputeLineTotals(lines []*entity.InvoiceLine) (netTotal, taxTotal, grandTotal decimal.Decimal) {
	for _, line := range lines {
		rate := normalizeTaxRate(line.TaxRate)
		line.TaxRate = rate
		line.LineTotal = line.Quantity.Mul(line.UnitPrice).Round(moneyPlaces)
		line.TaxAmount = line.Quantity.Mul(line.UnitPrice).Mul(rate).Round(moneyPlaces)
		netTotal = netTotal.Add(line.LineTotal)
		taxTotal = taxTotal.Add(line.TaxAmount)
	}
	grandTotal = netTotal.Add(taxTotal)
	return netTotal, taxTotal, grandTotal
}
