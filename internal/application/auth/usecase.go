package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Facturador-api/internal/application/dto"
	"github.com/jhoicas/Facturador-api/internal/domain"
	"github.com/jhoicas/Facturador-api/internal/domain/entity"
	"github.com/jhoicas/Facturador-api/internal/domain/repository"
	pkgjwt "github.com/jhoicas/Facturador-api/pkg/jwt"
)

// JWTConfig parámetros para emitir tokens de sesión.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// TxRunner ejecuta una función dentro de una transacción con los repos de
// registro atados a la tx. Empresa y primer usuario se confirman como una
// sola unidad: nunca queda un tenant huérfano sin admin.
type TxRunner interface {
	RunAuth(ctx context.Context, fn func(
		userRepo repository.UserRepository,
		companyRepo repository.CompanyRepository,
	) error) error
}

// AuthUseCase registro y login. El registro crea la empresa (tenant) con su
// consecutivo en 1 y el primer usuario admin.
type AuthUseCase struct {
	userRepo repository.UserRepository
	txRunner TxRunner
	jwtCfg   JWTConfig
}

// NewAuthUseCase construye el caso de uso.
func NewAuthUseCase(userRepo repository.UserRepository, txRunner TxRunner, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, txRunner: txRunner, jwtCfg: jwtCfg}
}

// Register crea empresa + usuario admin y devuelve un token de sesión.
func (uc *AuthUseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.TokenResponse, error) {
	if in.CompanyName == "" || in.CompanyTaxID == "" || in.Email == "" || len(in.Password) < 8 {
		return nil, domain.ErrInvalidInput
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if existing, err := uc.userRepo.GetByEmail(ctx, email); err != nil {
		return nil, fmt.Errorf("verificar email: %w", err)
	} else if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashear contraseña: %w", err)
	}

	now := time.Now().UTC()
	company := &entity.Company{
		ID:                uuid.New().String(),
		Name:              in.CompanyName,
		TaxID:             in.CompanyTaxID,
		InvoicePrefix:     in.InvoicePrefix,
		NextInvoiceNumber: 1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		CompanyID:    company.ID,
		Email:        email,
		PasswordHash: string(hash),
		Name:         in.Name,
		Role:         "admin",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// Empresa y admin en una sola transacción: si el usuario no se puede
	// crear, la empresa tampoco queda.
	err = uc.txRunner.RunAuth(ctx, func(
		userRepo repository.UserRepository,
		companyRepo repository.CompanyRepository,
	) error {
		if err := companyRepo.Create(ctx, company); err != nil {
			return fmt.Errorf("crear empresa: %w", err)
		}
		if err := userRepo.Create(ctx, user); err != nil {
			return fmt.Errorf("crear usuario: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.tokenFor(user)
}

// Login valida credenciales y devuelve un token de sesión.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("obtener usuario: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		return nil, domain.ErrUnauthorized
	}
	return uc.tokenFor(user)
}

func (uc *AuthUseCase) tokenFor(user *entity.User) (*dto.TokenResponse, error) {
	token, err := pkgjwt.Generate(uc.jwtCfg.Secret, user.ID, user.CompanyID, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, fmt.Errorf("generar token: %w", err)
	}
	return &dto.TokenResponse{
		Token:     token,
		UserID:    user.ID,
		CompanyID: user.CompanyID,
		Role:      user.Role,
	}, nil
}
