package dto

// RegisterRequest body para POST /api/auth/register.
// Crea la empresa (tenant) y su primer usuario admin en un solo paso.
type RegisterRequest struct {
	CompanyName   string `json:"company_name"`
	CompanyTaxID  string `json:"company_tax_id"`
	InvoicePrefix string `json:"invoice_prefix,omitempty"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Name          string `json:"name"`
}

// LoginRequest body para POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse respuesta de login/registro con el JWT de sesión.
type TokenResponse struct {
	Token     string `json:"token"`
	UserID    string `json:"user_id"`
	CompanyID string `json:"company_id"`
	Role      string `json:"role"`
}
