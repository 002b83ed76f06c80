package repository

import (
	"context"

	"github.com/jhoicas/Facturador-api/internal/domain/entity"
)

// CompanyRepository define el puerto de persistencia para Company (DIP).
// La implementación vive en infrastructure.
type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	GetByID(ctx context.Context, id string) (*entity.Company, error)
	GetByTaxID(ctx context.Context, taxID string) (*entity.Company, error)
	Update(ctx context.Context, company *entity.Company) error

	// AdvanceInvoiceNumber incrementa el consecutivo con compare-and-swap a
	// nivel de almacenamiento: solo avanza si el contador todavía vale
	// current. Si otro emisor ganó la carrera retorna domain.ErrConflict y el
	// caller debe reintentar releyendo el contador. Nunca se usa un mutex en
	// proceso: varias instancias pueden compartir la misma base.
	AdvanceInvoiceNumber(ctx context.Context, companyID string, current int64) error
}
