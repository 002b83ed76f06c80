package billing_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Facturador-api/internal/application/billing"
	"github.com/jhoicas/Facturador-api/internal/application/dto"
	"github.com/jhoicas/Facturador-api/internal/domain"
	"github.com/jhoicas/Facturador-api/internal/domain/entity"
)

func newDraftFixture(t *testing.T) (*billing.DraftUseCase, *issueFixture) {
	t.Helper()
	f := newIssueFixture(t)
	return billing.NewDraftUseCase(f.invoiceRepo, f.customerRepo), f
}

func lineaReq(desc, qty, price, rate string) dto.InvoiceLineRequest {
	return dto.InvoiceLineRequest{
		Description: desc,
		Quantity:    decimal.RequireFromString(qty),
		UnitPrice:   decimal.RequireFromString(price),
		TaxRate:     decimal.RequireFromString(rate),
	}
}

// Crear un borrador calcula totales preliminares pero no asigna número.
func TestCreateDraft_TotalesPreliminaresSinNumero(t *testing.T) {
	uc, f := newDraftFixture(t)

	resp, err := uc.CreateDraft(context.Background(), f.companyID, dto.CreateInvoiceRequest{
		CustomerID: f.customerID,
		Lines: []dto.InvoiceLineRequest{
			lineaReq("Servicio", "2", "50.00", "0.20"),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, entity.StatusDraft, resp.Status)
	assert.Empty(t, resp.Number, "los borradores no tienen número")
	assert.Empty(t, resp.IssuedAt)
	assert.True(t, resp.GrandTotal.Equal(decimal.RequireFromString("120.00")), "total: %s", resp.GrandTotal)
	assert.Equal(t, "COP", resp.Currency, "moneda por defecto")
}

func TestCreateDraft_SinLineasEsInvalido(t *testing.T) {
	uc, f := newDraftFixture(t)
	_, err := uc.CreateDraft(context.Background(), f.companyID, dto.CreateInvoiceRequest{
		CustomerID: f.customerID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateDraft_ClienteDeOtraEmpresaEsNotFound(t *testing.T) {
	uc, f := newDraftFixture(t)
	require.NoError(t, f.customerRepo.Create(context.Background(), &entity.Customer{
		ID: "cu-ajeno", CompanyID: "co-ajena", Name: "Otro", TaxID: "1",
	}))
	_, err := uc.CreateDraft(context.Background(), f.companyID, dto.CreateInvoiceRequest{
		CustomerID: "cu-ajeno",
		Lines:      []dto.InvoiceLineRequest{lineaReq("x", "1", "1.00", "0")},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound,
		"un cliente de otro tenant se reporta como inexistente")
}

func TestCreateDraft_CantidadNoPositivaEsInvalida(t *testing.T) {
	uc, f := newDraftFixture(t)
	_, err := uc.CreateDraft(context.Background(), f.companyID, dto.CreateInvoiceRequest{
		CustomerID: f.customerID,
		Lines:      []dto.InvoiceLineRequest{lineaReq("x", "0", "1.00", "0")},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Editar un borrador recalcula los totales preliminares.
func TestUpdateDraft_RecalculaTotales(t *testing.T) {
	uc, f := newDraftFixture(t)
	f.addDraft(t, "inv-1")

	resp, err := uc.UpdateDraft(context.Background(), f.companyID, "inv-1", dto.UpdateInvoiceRequest{
		Lines: []dto.InvoiceLineRequest{lineaReq("Solo una", "1", "10.00", "0")},
	})
	require.NoError(t, err)
	assert.True(t, resp.GrandTotal.Equal(decimal.RequireFromString("10.00")), "total: %s", resp.GrandTotal)
	assert.Len(t, resp.Lines, 1)
}

// Una factura emitida no se edita ni se borra.
func TestUpdateDraft_EmitidaEsInvalidState(t *testing.T) {
	uc, f := newDraftFixture(t)
	f.addDraft(t, "inv-1")
	_, err := f.useCase.Issue(context.Background(), f.companyID, "inv-1")
	require.NoError(t, err)

	_, err = uc.UpdateDraft(context.Background(), f.companyID, "inv-1", dto.UpdateInvoiceRequest{
		Lines: []dto.InvoiceLineRequest{lineaReq("x", "1", "1.00", "0")},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	err = uc.DeleteDraft(context.Background(), f.companyID, "inv-1")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestDeleteDraft_EliminaBorrador(t *testing.T) {
	uc, f := newDraftFixture(t)
	f.addDraft(t, "inv-1")

	require.NoError(t, uc.DeleteDraft(context.Background(), f.companyID, "inv-1"))

	_, err := uc.GetInvoice(context.Background(), f.companyID, "inv-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetInvoice_OtraEmpresaEsNotFound(t *testing.T) {
	uc, f := newDraftFixture(t)
	f.addDraft(t, "inv-1")

	_, err := uc.GetInvoice(context.Background(), "co-ajena", "inv-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
