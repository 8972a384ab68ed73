package auth

import (
	"context"
	"strings"

	"github.com/dukerupert/ferrovelho/internal/domain"
	"github.com/dukerupert/ferrovelho/internal/validation"
)

// Role names.
const (
	RoleAdmin = "admin"
)

// MsgInvalidCredentials is shown when the email or password is wrong.
const MsgInvalidCredentials = "Email ou senha inválidos"

// Login form fields.
const (
	FieldEmail    = "email"
	FieldPassword = "senha"
)

// LoginSchema validates the login form.
var LoginSchema = validation.Schema{
	Name: "login",
	Fields: []validation.Field{
		{Name: FieldEmail, Rules: []validation.Rule{
			validation.Required("Email é obrigatório"),
			validation.Email("Email inválido"),
		}},
		{Name: FieldPassword, Rules: []validation.Rule{
			validation.Required("Senha é obrigatória"),
		}},
	},
}

// Identity is the result of a successful login.
type Identity struct {
	Email string
	Role  string
}

// Authenticator checks login credentials against the configured
// administrator account.
type Authenticator struct {
	email string
	hash  string
}

// NewAuthenticator hashes the administrator password once at start-up.
// With an empty email or password every login is rejected.
func NewAuthenticator(email, password string) (*Authenticator, error) {
	a := &Authenticator{email: strings.TrimSpace(email)}
	if a.email == "" || password == "" {
		return a, nil
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	a.hash = hash
	return a, nil
}

// Enabled reports whether an administrator account is configured.
func (a *Authenticator) Enabled() bool {
	return a.hash != ""
}

// Authenticate validates the form values and checks the credentials.
// Malformed input yields a *domain.ValidationError, wrong credentials an
// EUNAUTHORIZED error.
func (a *Authenticator) Authenticate(ctx context.Context, values map[string]string) (*Identity, error) {
	const op = "auth.Authenticate"

	if err := validation.Validate(values, LoginSchema).Err(op); err != nil {
		return nil, err
	}
	if !a.Enabled() {
		return nil, domain.Unauthorized(op, MsgInvalidCredentials)
	}

	email := strings.TrimSpace(values[FieldEmail])
	// Always compare the hash, even for an unknown email.
	passErr := VerifyPassword(values[FieldPassword], a.hash)
	if !strings.EqualFold(email, a.email) || passErr != nil {
		return nil, domain.Unauthorized(op, MsgInvalidCredentials)
	}

	return &Identity{Email: a.email, Role: RoleAdmin}, nil
}
