package billing_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Facturador-api/internal/application/billing"
	"github.com/jhoicas/Facturador-api/internal/domain"
)

// fakeSelector entrega un certificado fijo o simula la cancelación del
// operador.
type fakeSelector struct {
	cert      tls.Certificate
	cancelled bool
	calls     int
}

func (s *fakeSelector) SelectSigningKey(_ context.Context) (tls.Certificate, error) {
	s.calls++
	if s.cancelled {
		return tls.Certificate{}, domain.ErrCancelled
	}
	return s.cert, nil
}

// fakeSigner envuelve los bytes de entrada; suficiente para verificar que el
// artefacto firmado deriva del sin firmar y tiene hash propio.
type fakeSigner struct {
	fail  bool
	calls int
}

func (s *fakeSigner) Sign(docBytes []byte, filename string, _ tls.Certificate) ([]byte, error) {
	s.calls++
	if s.fail {
		return nil, fmt.Errorf("token desconectado")
	}
	return []byte("FIRMADO[" + filename + "]:" + string(docBytes)), nil
}

func testCertificate(t *testing.T) tls.Certificate {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "Firma Pruebas"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key}
}

type signFixture struct {
	*issueFixture
	documents *billing.DocumentUseCase
	generator *fakeGenerator
	selector  *fakeSelector
	signer    *fakeSigner
	useCase   *billing.SignUseCase
}

func newSignFixture(t *testing.T) *signFixture {
	t.Helper()
	f := newIssueFixture(t)
	gen := &fakeGenerator{}
	docs := billing.NewDocumentUseCase(f.invoiceRepo, f.companyRepo, gen)
	sel := &fakeSelector{cert: testCertificate(t)}
	sig := &fakeSigner{}
	return &signFixture{
		issueFixture: f,
		documents:    docs,
		generator:    gen,
		selector:     sel,
		signer:       sig,
		useCase:      billing.NewSignUseCase(f.invoiceRepo, docs, sel, sig),
	}
}

// Firmar con documento cacheado: no se regenera, el firmado tiene su propio
// hash y el sin firmar queda intacto.
func TestSign_FirmaSobreCache(t *testing.T) {
	f := newSignFixture(t)
	issueInvoice(t, f.issueFixture, "inv-1")

	unsigned, err := f.documents.GetOrRenderUnsigned(context.Background(), f.companyID, "inv-1", false)
	require.NoError(t, err)
	require.Equal(t, 1, f.generator.calls)

	signed, err := f.useCase.Sign(context.Background(), f.companyID, "inv-1")
	require.NoError(t, err)

	assert.Equal(t, 1, f.generator.calls, "la firma reusa el documento cacheado")
	assert.Equal(t, "factura_FD-1_firmada.xml", signed.Filename)
	assert.NotEqual(t, unsigned.SHA256, signed.SHA256,
		"el artefacto firmado tiene hash propio")

	inv, _ := f.invoiceRepo.GetByID(context.Background(), "inv-1")
	require.NotNil(t, inv.Unsigned)
	require.NotNil(t, inv.Signed)
	assert.Equal(t, unsigned.SHA256, inv.Unsigned.SHA256, "el sin firmar no se toca")
}

// Firmar sin documento previo lo genera automáticamente primero.
func TestSign_GeneraDocumentoSiFalta(t *testing.T) {
	f := newSignFixture(t)
	issueInvoice(t, f.issueFixture, "inv-1")

	signed, err := f.useCase.Sign(context.Background(), f.companyID, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, 1, f.generator.calls, "la firma disparó el render")
	assert.NotEmpty(t, signed.Content)

	inv, _ := f.invoiceRepo.GetByID(context.Background(), "inv-1")
	assert.NotNil(t, inv.Unsigned, "el sin firmar también quedó persistido")
}

// Firmar un borrador es ilegal: primero se emite.
func TestSign_BorradorEsInvalidState(t *testing.T) {
	f := newSignFixture(t)
	f.addDraft(t, "inv-1")

	_, err := f.useCase.Sign(context.Background(), f.companyID, "inv-1")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Zero(t, f.selector.calls, "sin documento no se llega al selector de llaves")
}

// El operador cancela la selección de llave: ErrCancelled y sin artefacto.
func TestSign_CancelacionDelOperador(t *testing.T) {
	f := newSignFixture(t)
	issueInvoice(t, f.issueFixture, "inv-1")
	f.selector.cancelled = true

	_, err := f.useCase.Sign(context.Background(), f.companyID, "inv-1")
	assert.ErrorIs(t, err, domain.ErrCancelled)
	assert.Zero(t, f.signer.calls, "cancelar no llega al firmador")

	inv, _ := f.invoiceRepo.GetByID(context.Background(), "inv-1")
	assert.Nil(t, inv.Signed)
}

// Falla del firmador (llave no soportada, token desconectado): ErrSigningFailed.
func TestSign_FallaDelFirmador(t *testing.T) {
	f := newSignFixture(t)
	issueInvoice(t, f.issueFixture, "inv-1")
	f.signer.fail = true

	_, err := f.useCase.Sign(context.Background(), f.companyID, "inv-1")
	assert.ErrorIs(t, err, domain.ErrSigningFailed)

	inv, _ := f.invoiceRepo.GetByID(context.Background(), "inv-1")
	assert.Nil(t, inv.Signed, "una firma fallida no persiste nada")
}

// Re-firmar sobrescribe el artefacto firmado anterior.
func TestSign_RefirmarSobrescribe(t *testing.T) {
	f := newSignFixture(t)
	issueInvoice(t, f.issueFixture, "inv-1")

	_, err := f.useCase.Sign(context.Background(), f.companyID, "inv-1")
	require.NoError(t, err)

	segundo, err := f.useCase.Sign(context.Background(), f.companyID, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, 2, f.signer.calls)

	inv, _ := f.invoiceRepo.GetByID(context.Background(), "inv-1")
	require.NotNil(t, inv.Signed)
	assert.Equal(t, segundo.SHA256, inv.Signed.SHA256, "queda la última firma")
}

func TestGetSigned_SinFirmaEsNotFound(t *testing.T) {
	f := newSignFixture(t)
	issueInvoice(t, f.issueFixture, "inv-1")

	_, err := f.useCase.GetSigned(context.Background(), f.companyID, "inv-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetSigned_DevuelveArtefactoPersistido(t *testing.T) {
	f := newSignFixture(t)
	issueInvoice(t, f.issueFixture, "inv-1")

	signed, err := f.useCase.Sign(context.Background(), f.companyID, "inv-1")
	require.NoError(t, err)

	got, err := f.useCase.GetSigned(context.Background(), f.companyID, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, signed.SHA256, got.SHA256)
	assert.Equal(t, 1, f.signer.calls, "GetSigned no firma de nuevo")
}
