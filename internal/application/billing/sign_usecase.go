package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Facturador-api/internal/domain"
	"github.com/jhoicas/Facturador-api/internal/domain/entity"
	"github.com/jhoicas/Facturador-api/internal/domain/repository"
)

// SignUseCase ejecuta el protocolo de firma sobre el documento cacheado:
//
//  1. Garantiza que exista el artefacto sin firmar (lo genera solo si falta).
//  2. Obtiene la capacidad de firma del selector de llaves (interactivo:
//     puede ser cancelado por el operador → ErrCancelled, sin reintento).
//  3. Construye la firma detached sobre el digest SHA-256 del documento y la
//     embebe en el sobre certificante (cualquier modificación posterior la
//     invalida).
//  4. Persiste el artefacto firmado con su propio hash, sin tocar jamás el
//     sin firmar. Re-firmar sobrescribe la firma anterior.
type SignUseCase struct {
	invoiceRepo repository.InvoiceRepository
	documents   *DocumentUseCase
	selector    KeySelector
	signer      DocumentSigner
}

// NewSignUseCase construye el caso de uso.
func NewSignUseCase(
	invoiceRepo repository.InvoiceRepository,
	documents *DocumentUseCase,
	selector KeySelector,
	signer DocumentSigner,
) *SignUseCase {
	return &SignUseCase{invoiceRepo: invoiceRepo, documents: documents, selector: selector, signer: signer}
}

// Sign firma la factura y devuelve el artefacto firmado. Errores:
//   - domain.ErrNotFound      factura inexistente o de otra empresa
//   - domain.ErrInvalidState  la factura sigue en borrador
//   - domain.ErrCancelled     el operador canceló la selección de llave
//   - domain.ErrSigningFailed llave no soportada o falla del firmador
func (uc *SignUseCase) Sign(ctx context.Context, companyID, invoiceID string) (*entity.DocumentArtifact, error) {
	// Reusa el documento cacheado; regenera solo si está ausente (force=false).
	// De paso valida tenant y estado.
	unsigned, err := uc.documents.GetOrRenderUnsigned(ctx, companyID, invoiceID, false)
	if err != nil {
		return nil, err
	}

	// Selección de llave: interactiva y potencialmente lenta (token físico).
	// Corre fuera de cualquier hilo de UI; aquí solo respetamos el ctx.
	cert, err := uc.selector.SelectSigningKey(ctx)
	if err != nil {
		return nil, err
	}
	if len(cert.Certificate) == 0 || cert.PrivateKey == nil {
		return nil, domain.ErrCancelled
	}

	signedBytes, err := uc.signer.Sign(unsigned.Content, unsigned.Filename, cert)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSigningFailed, err)
	}
	// Cancelación a mitad de firma: abortar antes de persistir.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	inv, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("obtener factura: %w", err)
	}
	if inv == nil || inv.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}

	artifact := &entity.DocumentArtifact{
		Content:   signedBytes,
		Filename:  fmt.Sprintf("factura_%s_firmada.xml", inv.Number),
		SHA256:    ContentHash(signedBytes),
		CreatedAt: time.Now().UTC(),
	}
	inv.Signed = artifact
	inv.UpdatedAt = artifact.CreatedAt
	if err := uc.invoiceRepo.UpdateSignedDocument(ctx, inv); err != nil {
		return nil, fmt.Errorf("guardar documento firmado: %w", err)
	}
	return artifact, nil
}

// GetSigned devuelve el artefacto firmado ya persistido, sin firmar de nuevo.
func (uc *SignUseCase) GetSigned(ctx context.Context, companyID, invoiceID string) (*entity.DocumentArtifact, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("obtener factura: %w", err)
	}
	if inv == nil || inv.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	if inv.Signed == nil {
		return nil, fmt.Errorf("%w: la factura no tiene documento firmado", domain.ErrNotFound)
	}
	return inv.Signed, nil
}
