package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Facturador-api/internal/application/auth"
	"github.com/jhoicas/Facturador-api/internal/application/dto"
	"github.com/jhoicas/Facturador-api/internal/domain"
	"github.com/jhoicas/Facturador-api/internal/domain/entity"
	"github.com/jhoicas/Facturador-api/internal/domain/repository"
	pkgjwt "github.com/jhoicas/Facturador-api/pkg/jwt"
)

// ── Fakes ─────────────────────────────────────────────────────────────────────

type memUserRepo struct {
	users map[string]*entity.User // por ID
}

func newMemUserRepo() *memUserRepo { return &memUserRepo{users: make(map[string]*entity.User)} }

func (r *memUserRepo) Create(_ context.Context, u *entity.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	return r.users[id], nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

type memCompanyRepo struct {
	companies map[string]*entity.Company
}

func newMemCompanyRepo() *memCompanyRepo {
	return &memCompanyRepo{companies: make(map[string]*entity.Company)}
}

func (r *memCompanyRepo) Create(_ context.Context, c *entity.Company) error {
	r.companies[c.ID] = c
	return nil
}

func (r *memCompanyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	return r.companies[id], nil
}

func (r *memCompanyRepo) GetByTaxID(_ context.Context, taxID string) (*entity.Company, error) {
	for _, c := range r.companies {
		if c.TaxID == taxID {
			return c, nil
		}
	}
	return nil, nil
}

func (r *memCompanyRepo) Update(_ context.Context, c *entity.Company) error {
	r.companies[c.ID] = c
	return nil
}

func (r *memCompanyRepo) AdvanceInvoiceNumber(_ context.Context, companyID string, current int64) error {
	c := r.companies[companyID]
	if c == nil || c.NextInvoiceNumber != current {
		return domain.ErrConflict
	}
	c.NextInvoiceNumber++
	return nil
}

// memTxRunner imita la semántica transaccional del runner real: toma una foto
// de ambos mapas antes de ejecutar fn y la restaura si fn falla, como haría
// el Rollback. Con falloCrearUsuario fijado, el insert del usuario falla
// dentro de la "transacción".
type memTxRunner struct {
	users             *memUserRepo
	companies         *memCompanyRepo
	falloCrearUsuario error
}

func (r *memTxRunner) RunAuth(_ context.Context, fn func(
	userRepo repository.UserRepository,
	companyRepo repository.CompanyRepository,
) error) error {
	usersAntes := make(map[string]*entity.User, len(r.users.users))
	for id, u := range r.users.users {
		usersAntes[id] = u
	}
	companiesAntes := make(map[string]*entity.Company, len(r.companies.companies))
	for id, c := range r.companies.companies {
		companiesAntes[id] = c
	}

	var userRepo repository.UserRepository = r.users
	if r.falloCrearUsuario != nil {
		userRepo = &usuarioQueFalla{memUserRepo: r.users, err: r.falloCrearUsuario}
	}
	if err := fn(userRepo, r.companies); err != nil {
		r.users.users = usersAntes
		r.companies.companies = companiesAntes
		return err
	}
	return nil
}

type usuarioQueFalla struct {
	*memUserRepo
	err error
}

func (r *usuarioQueFalla) Create(context.Context, *entity.User) error { return r.err }

// ── Fixture ───────────────────────────────────────────────────────────────────

const testSecret = "secret-de-pruebas-auth"

func newFixture() (*auth.AuthUseCase, *memUserRepo, *memCompanyRepo) {
	uc, users, companies, _ := newFixtureConRunner()
	return uc, users, companies
}

func newFixtureConRunner() (*auth.AuthUseCase, *memUserRepo, *memCompanyRepo, *memTxRunner) {
	users := newMemUserRepo()
	companies := newMemCompanyRepo()
	runner := &memTxRunner{users: users, companies: companies}
	uc := auth.NewAuthUseCase(users, runner, auth.JWTConfig{
		Secret:     testSecret,
		ExpMinutes: 60,
		Issuer:     "facturador-test",
	})
	return uc, users, companies, runner
}

func registroValido() dto.RegisterRequest {
	return dto.RegisterRequest{
		CompanyName:   "Empresa Demo SAS",
		CompanyTaxID:  "900123456-7",
		InvoicePrefix: "FD-",
		Name:          "Admin Demo",
		Email:         "Admin@Demo.co",
		Password:      "contraseña-segura",
	}
}

// ── Register ──────────────────────────────────────────────────────────────────

// El registro crea la empresa con su consecutivo en 1 y el primer usuario
// admin, y devuelve un token con el tenant embebido.
func TestRegister_CreaEmpresaYAdmin(t *testing.T) {
	uc, users, companies := newFixture()

	resp, err := uc.Register(context.Background(), registroValido())
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, "admin", resp.Role)

	company, err := companies.GetByID(context.Background(), resp.CompanyID)
	require.NoError(t, err)
	require.NotNil(t, company)
	assert.Equal(t, int64(1), company.NextInvoiceNumber, "el consecutivo arranca en 1")
	assert.Equal(t, "FD-", company.InvoicePrefix)

	// El email se normaliza a minúsculas
	user, err := users.GetByEmail(context.Background(), "admin@demo.co")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.NotEqual(t, "contraseña-segura", user.PasswordHash, "la contraseña jamás se guarda en claro")

	// El token lleva el tenant
	userID, companyID, role, err := pkgjwt.Parse(testSecret, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
	assert.Equal(t, company.ID, companyID)
	assert.Equal(t, "admin", role)
}

func TestRegister_EmailDuplicado(t *testing.T) {
	uc, _, _ := newFixture()
	_, err := uc.Register(context.Background(), registroValido())
	require.NoError(t, err)

	_, err = uc.Register(context.Background(), registroValido())
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

// Empresa y usuario se crean en la misma transacción: si el insert del
// usuario falla, la empresa recién creada se revierte y no queda un tenant
// huérfano sin admin.
func TestRegister_FallaUsuarioNoDejaEmpresaHuerfana(t *testing.T) {
	uc, users, companies, runner := newFixtureConRunner()
	runner.falloCrearUsuario = errors.New("insert de usuario falló")

	_, err := uc.Register(context.Background(), registroValido())
	require.Error(t, err)

	assert.Empty(t, companies.companies, "la empresa no debe sobrevivir al rollback")
	assert.Empty(t, users.users)
}

func TestRegister_PasswordCorta(t *testing.T) {
	uc, _, _ := newFixture()
	req := registroValido()
	req.Password = "corta"
	_, err := uc.Register(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ── Login ─────────────────────────────────────────────────────────────────────

func TestLogin_CredencialesValidas(t *testing.T) {
	uc, _, _ := newFixture()
	reg, err := uc.Register(context.Background(), registroValido())
	require.NoError(t, err)

	resp, err := uc.Login(context.Background(), dto.LoginRequest{
		Email:    "admin@demo.co",
		Password: "contraseña-segura",
	})
	require.NoError(t, err)
	assert.Equal(t, reg.CompanyID, resp.CompanyID)
	assert.NotEmpty(t, resp.Token)
}

func TestLogin_PasswordIncorrecta(t *testing.T) {
	uc, _, _ := newFixture()
	_, err := uc.Register(context.Background(), registroValido())
	require.NoError(t, err)

	_, err = uc.Login(context.Background(), dto.LoginRequest{
		Email:    "admin@demo.co",
		Password: "otra-contraseña",
	})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_UsuarioInexistente(t *testing.T) {
	uc, _, _ := newFixture()
	_, err := uc.Login(context.Background(), dto.LoginRequest{
		Email:    "nadie@demo.co",
		Password: "lo-que-sea",
	})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
