package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Facturador-api/internal/application/auth"
	"github.com/jhoicas/Facturador-api/internal/application/billing"
	"github.com/jhoicas/Facturador-api/internal/domain"
	"github.com/jhoicas/Facturador-api/internal/domain/repository"
)

// Ensure TxRunner implements the use-case ports.
var (
	_ billing.BillingTxRunner = (*TxRunner)(nil)
	_ auth.TxRunner           = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL. La emisión
// de facturas depende de esto: contador, snapshot y cambio de estado se
// confirman juntos o no se confirma nada.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunBilling inicia una transacción, ejecuta fn con repos atados a la tx y
// hace Commit o Rollback. Una violación de constraint único detectada en el
// commit (carrera de numeración resuelta por la base) se reporta como
// domain.ErrConflict para que el caso de uso reintente desde cero.
func (r *TxRunner) RunBilling(ctx context.Context, fn func(
	companyRepo repository.CompanyRepository,
	customerRepo repository.CustomerRepository,
	invoiceRepo repository.InvoiceRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	companyRepo := NewCompanyRepository(tx)
	customerRepo := NewCustomerRepository(tx)
	invoiceRepo := NewInvoiceRepository(tx)

	if err := fn(companyRepo, customerRepo, invoiceRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: número de factura duplicado", domain.ErrConflict)
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunAuth ejecuta fn con los repos de registro atados a una transacción.
// Empresa y primer usuario se insertan juntos: si el usuario falla, el
// Rollback se lleva la empresa. El único constraint único en juego es el
// email del usuario, así que una violación en el commit se reporta como
// domain.ErrEmailAlreadyExists.
func (r *TxRunner) RunAuth(ctx context.Context, fn func(
	userRepo repository.UserRepository,
	companyRepo repository.CompanyRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	userRepo := NewUserRepository(tx)
	companyRepo := NewCompanyRepository(tx)

	if err := fn(userRepo, companyRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: email ya registrado", domain.ErrEmailAlreadyExists)
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
