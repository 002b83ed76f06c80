package billing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Facturador-api/internal/application/billing"
	"github.com/jhoicas/Facturador-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// ComputeLineTotals — redondeo por línea (2 decimales, mitad lejos de cero)
// y agregados congelados.
// ──────────────────────────────────────────────────────────────────────────────

func linea(qty, price, rate string) *entity.InvoiceLine {
	return &entity.InvoiceLine{
		Quantity:  decimal.RequireFromString(qty),
		UnitPrice: decimal.RequireFromString(price),
		TaxRate:   decimal.RequireFromString(rate),
	}
}

// Escenario de referencia: (2 × 50.00 al 20%) + (1 × 100.00 exento)
// → neto 200.00, impuestos 20.00, total 220.00.
func TestComputeLineTotals_EscenarioReferencia(t *testing.T) {
	lines := []*entity.InvoiceLine{
		linea("2", "50.00", "0.20"),
		linea("1", "100.00", "0"),
	}

	net, tax, grand := billing.ComputeLineTotals(lines)

	assert.True(t, net.Equal(decimal.RequireFromString("200.00")), "neto: %s", net)
	assert.True(t, tax.Equal(decimal.RequireFromString("20.00")), "impuestos: %s", tax)
	assert.True(t, grand.Equal(decimal.RequireFromString("220.00")), "total: %s", grand)
}

// El redondeo es por línea ANTES de sumar: 3 × 10.005 = 30.015 → 30.02 en la
// línea; el neto debe ser 30.02, no 30.01 (que saldría de redondear el
// agregado de valores sin redondear).
func TestComputeLineTotals_RedondeoPorLinea(t *testing.T) {
	lines := []*entity.InvoiceLine{
		linea("3", "10.005", "0.20"),
	}

	net, tax, grand := billing.ComputeLineTotals(lines)

	assert.True(t, lines[0].LineTotal.Equal(decimal.RequireFromString("30.02")),
		"la línea se redondea mitad lejos de cero: %s", lines[0].LineTotal)
	assert.True(t, net.Equal(decimal.RequireFromString("30.02")), "neto: %s", net)
	// 30.015 × 0.20 = 6.003 → 6.00
	assert.True(t, tax.Equal(decimal.RequireFromString("6.00")), "impuestos: %s", tax)
	assert.True(t, grand.Equal(net.Add(tax)), "total = neto + impuestos")
}

// La tasa puede venir como porcentaje (19) o fracción (0.19): mismo resultado.
func TestComputeLineTotals_TasaPorcentajeOFraccion(t *testing.T) {
	comoPorcentaje := []*entity.InvoiceLine{linea("1", "100.00", "19")}
	comoFraccion := []*entity.InvoiceLine{linea("1", "100.00", "0.19")}

	_, taxPct, _ := billing.ComputeLineTotals(comoPorcentaje)
	_, taxFrac, _ := billing.ComputeLineTotals(comoFraccion)

	assert.True(t, taxPct.Equal(taxFrac), "19 y 0.19 deben producir el mismo impuesto")
	assert.True(t, taxPct.Equal(decimal.RequireFromString("19.00")), "impuesto: %s", taxPct)
}

func TestComputeLineTotals_SinLineas(t *testing.T) {
	net, tax, grand := billing.ComputeLineTotals(nil)
	assert.True(t, net.IsZero())
	assert.True(t, tax.IsZero())
	assert.True(t, grand.IsZero())
}

// ──────────────────────────────────────────────────────────────────────────────
// FormatInvoiceNumber
// ──────────────────────────────────────────────────────────────────────────────

// El consecutivo va sin ceros a la izquierda: el número es prefijo + contador
// tal cual.
func TestFormatInvoiceNumber(t *testing.T) {
	assert.Equal(t, "FD-1", billing.FormatInvoiceNumber("FD-", 1))
	assert.Equal(t, "42", billing.FormatInvoiceNumber("", 42))
	assert.Equal(t, "SETP9901234", billing.FormatInvoiceNumber("SETP990", 1234))
}
