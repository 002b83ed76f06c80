package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/jhoicas/Facturador-api/internal/domain"
	"github.com/jhoicas/Facturador-api/internal/domain/entity"
	"github.com/jhoicas/Facturador-api/internal/domain/repository"
)

// DocumentUseCase produce y cachea la representación gráfica sin firmar de
// una factura emitida. El render es caro (y el resultado es función pura del
// snapshot congelado), así que se genera a lo sumo una vez por estado: si el
// artefacto ya existe se devuelven los bytes cacheados sin invocar el
// generador, salvo que el caller fuerce la regeneración.
type DocumentUseCase struct {
	invoiceRepo repository.InvoiceRepository
	companyRepo repository.CompanyRepository
	generator   InvoicePDFGenerator
}

// NewDocumentUseCase construye el caso de uso.
func NewDocumentUseCase(
	invoiceRepo repository.InvoiceRepository,
	companyRepo repository.CompanyRepository,
	generator InvoicePDFGenerator,
) *DocumentUseCase {
	return &DocumentUseCase{invoiceRepo: invoiceRepo, companyRepo: companyRepo, generator: generator}
}

// GetOrRenderUnsigned devuelve el artefacto sin firmar de la factura,
// generándolo si no existe (o si force es true). Errores:
//   - domain.ErrNotFound      factura inexistente o de otra empresa
//   - domain.ErrInvalidState  la factura sigue en borrador (sin snapshot no hay documento)
//   - domain.ErrRenderFailed  el generador falló
func (uc *DocumentUseCase) GetOrRenderUnsigned(ctx context.Context, companyID, invoiceID string, force bool) (*entity.DocumentArtifact, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("obtener factura: %w", err)
	}
	if inv == nil || inv.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	if !inv.IsIssued() {
		return nil, fmt.Errorf("%w: la factura está en %s, emítala antes de generar el documento", domain.ErrInvalidState, inv.Status)
	}
	if inv.Unsigned != nil && !force {
		return inv.Unsigned, nil
	}

	lines, err := uc.invoiceRepo.GetLinesByInvoiceID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("obtener líneas: %w", err)
	}
	company, err := uc.companyRepo.GetByID(ctx, companyID)
	if err != nil || company == nil {
		return nil, fmt.Errorf("obtener empresa: %w", domain.ErrNotFound)
	}

	pdfBytes, err := uc.generator.GenerateInvoicePDF(ctx, inv, company, lines)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRenderFailed, err)
	}
	// Cancelación a mitad de render: abortar antes de persistir, nunca se
	// escribe un artefacto parcial.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	artifact := &entity.DocumentArtifact{
		Content:   pdfBytes,
		Filename:  fmt.Sprintf("factura_%s.pdf", inv.Number),
		SHA256:    ContentHash(pdfBytes),
		CreatedAt: time.Now().UTC(),
	}
	inv.Unsigned = artifact
	inv.UpdatedAt = artifact.CreatedAt
	if err := uc.invoiceRepo.UpdateUnsignedDocument(ctx, inv); err != nil {
		return nil, fmt.Errorf("guardar documento: %w", err)
	}
	return artifact, nil
}

// ContentHash calcula el digest SHA-256 en hex de un artefacto. Es el ancla
// de integridad: permite detectar copias desactualizadas y es lo que sella
// la firma.
func ContentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
