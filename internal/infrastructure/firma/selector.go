package firma

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/jhoicas/Facturador-api/internal/application/billing"
	"github.com/jhoicas/Facturador-api/internal/domain"
	"github.com/jhoicas/Facturador-api/pkg/config"
)

// ConfigKeySelector implementa billing.KeySelector cargando el certificado
// desde las rutas configuradas. Es el reemplazo no interactivo del selector
// de llaves: en un despliegue con token físico la implementación sería otra,
// el protocolo de firma no cambia.
type ConfigKeySelector struct {
	cfg config.FirmaConfig
}

// NewConfigKeySelector construye el selector con la configuración de firma.
func NewConfigKeySelector(cfg config.FirmaConfig) *ConfigKeySelector {
	return &ConfigKeySelector{cfg: cfg}
}

var _ billing.KeySelector = (*ConfigKeySelector)(nil)

// SelectSigningKey carga el certificado (.p12/.pfx o PEM). Sin ruta
// configurada no hay llave que seleccionar: domain.ErrCancelled, igual que
// una cancelación del operador. Una ruta configurada que no carga es
// material de llave faltante: domain.ErrSigningFailed.
func (s *ConfigKeySelector) SelectSigningKey(ctx context.Context) (tls.Certificate, error) {
	if err := ctx.Err(); err != nil {
		return tls.Certificate{}, err
	}
	if s.cfg.CertPath == "" {
		return tls.Certificate{}, domain.ErrCancelled
	}

	var cert tls.Certificate
	var err error
	lower := strings.ToLower(s.cfg.CertPath)
	if strings.HasSuffix(lower, ".p12") || strings.HasSuffix(lower, ".pfx") {
		cert, err = LoadFromP12(s.cfg.CertPath, s.cfg.CertPassword)
	} else {
		cert, err = LoadFromPEM(s.cfg.CertPath, s.cfg.CertKeyPath)
	}
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("%w: %v", domain.ErrSigningFailed, err)
	}
	if len(cert.Certificate) == 0 || cert.PrivateKey == nil {
		return tls.Certificate{}, fmt.Errorf("%w: certificado sin llave privada", domain.ErrSigningFailed)
	}
	return cert, nil
}
