package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Facturador-api/internal/application/dto"
	"github.com/jhoicas/Facturador-api/internal/domain"
	"github.com/jhoicas/Facturador-api/internal/domain/entity"
	"github.com/jhoicas/Facturador-api/internal/domain/repository"
)

// CustomerUseCase mantiene los clientes de la empresa. Los clientes son
// editables en cualquier momento: las facturas emitidas guardan snapshot.
type CustomerUseCase struct {
	repo repository.CustomerRepository
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(repo repository.CustomerRepository) *CustomerUseCase {
	return &CustomerUseCase{repo: repo}
}

// Create registra un cliente del tenant.
func (uc *CustomerUseCase) Create(ctx context.Context, companyID string, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	if in.Name == "" || in.TaxID == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now().UTC()
	customer := &entity.Customer{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Name:      in.Name,
		TaxID:     in.TaxID,
		Address:   in.Address,
		Email:     in.Email,
		Phone:     in.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("crear cliente: %w", err)
	}
	return toCustomerResponse(customer), nil
}

// Get obtiene un cliente del tenant.
func (uc *CustomerUseCase) Get(ctx context.Context, companyID, id string) (*dto.CustomerResponse, error) {
	customer, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener cliente: %w", err)
	}
	if customer == nil || customer.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return toCustomerResponse(customer), nil
}

// List lista los clientes del tenant.
func (uc *CustomerUseCase) List(ctx context.Context, companyID string, limit, offset int) ([]*dto.CustomerResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	customers, err := uc.repo.ListByCompany(ctx, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listar clientes: %w", err)
	}
	out := make([]*dto.CustomerResponse, 0, len(customers))
	for _, c := range customers {
		out = append(out, toCustomerResponse(c))
	}
	return out, nil
}

// Update edita un cliente. No afecta facturas ya emitidas (snapshot).
func (uc *CustomerUseCase) Update(ctx context.Context, companyID, id string, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	customer, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener cliente: %w", err)
	}
	if customer == nil || customer.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	if in.Name != "" {
		customer.Name = in.Name
	}
	if in.TaxID != "" {
		customer.TaxID = in.TaxID
	}
	customer.Address = in.Address
	customer.Email = in.Email
	customer.Phone = in.Phone
	customer.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, customer); err != nil {
		return nil, fmt.Errorf("actualizar cliente: %w", err)
	}
	return toCustomerResponse(customer), nil
}

// Delete elimina un cliente del tenant.
func (uc *CustomerUseCase) Delete(ctx context.Context, companyID, id string) error {
	customer, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("obtener cliente: %w", err)
	}
	if customer == nil || customer.CompanyID != companyID {
		return domain.ErrNotFound
	}
	return uc.repo.Delete(ctx, id)
}

func toCustomerResponse(c *entity.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		ID:        c.ID,
		CompanyID: c.CompanyID,
		Name:      c.Name,
		TaxID:     c.TaxID,
		Address:   c.Address,
		Email:     c.Email,
		Phone:     c.Phone,
	}
}
