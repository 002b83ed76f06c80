package firma

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Facturador-api/internal/domain"
	"github.com/jhoicas/Facturador-api/pkg/config"
)

// Sin certificado configurado no hay llave que seleccionar: equivale a que
// el operador cancele.
func TestSelectSigningKey_SinRutaEsCancelled(t *testing.T) {
	sel := NewConfigKeySelector(config.FirmaConfig{})
	_, err := sel.SelectSigningKey(context.Background())
	assert.ErrorIs(t, err, domain.ErrCancelled)
}

// Una ruta configurada que no existe es material de llave faltante, no una
// cancelación.
func TestSelectSigningKey_RutaInexistenteEsSigningFailed(t *testing.T) {
	sel := NewConfigKeySelector(config.FirmaConfig{CertPath: "/no/existe/cert.pem"})
	_, err := sel.SelectSigningKey(context.Background())
	assert.ErrorIs(t, err, domain.ErrSigningFailed)
	assert.NotErrorIs(t, err, domain.ErrCancelled)
}

func TestSelectSigningKey_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sel := NewConfigKeySelector(config.FirmaConfig{CertPath: "cert.pem"})
	_, err := sel.SelectSigningKey(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

// Carga de un par PEM (cert + llave en archivos separados) generado al vuelo.
func TestSelectSigningKey_CargaPEM(t *testing.T) {
	dir := t.TempDir()
	certPath := filepath.Join(dir, "cert.pem")
	keyPath := filepath.Join(dir, "key.pem")

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.CreateCertificate(rand.Reader, selfSignedTemplate(), selfSignedTemplate(), &key.PublicKey, key)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(certPath, pem.EncodeToMemory(
		&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600))
	require.NoError(t, os.WriteFile(keyPath, pem.EncodeToMemory(
		&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}), 0o600))

	sel := NewConfigKeySelector(config.FirmaConfig{CertPath: certPath, CertKeyPath: keyPath})
	cert, err := sel.SelectSigningKey(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, cert.Certificate)
	assert.NotNil(t, cert.PrivateKey)
}
