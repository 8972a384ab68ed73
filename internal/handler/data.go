package handler

import (
	"net/http"
	"time"

	"github.com/dukerupert/ferrovelho/internal/auth"
	"github.com/dukerupert/ferrovelho/internal/guard"
	"github.com/dukerupert/ferrovelho/internal/middleware"
)

// BaseTemplateData returns the data every page needs: the year for the
// footer, the request's role and the CSRF token for forms.
func BaseTemplateData(r *http.Request) map[string]any {
	role := middleware.GetRole(r.Context())
	return map[string]any{
		"Year":      time.Now().Year(),
		"Role":      role,
		"IsGuest":   role == guard.RoleGuest,
		"IsAdmin":   role == auth.RoleAdmin,
		"CSRFToken": middleware.GetCSRFToken(r.Context()),
	}
}

// Field is the view of one form input.
type Field struct {
	Name  string
	Label string
	Type  string
	Value string
	Error string
}

// NewField builds the view of input name from a step's values and errors.
// The optional kind sets the input type; it defaults to "text".
func NewField(name, label string, values, errs map[string]string, kind ...string) Field {
	f := Field{
		Name:  name,
		Label: label,
		Type:  "text",
		Value: values[name],
		Error: errs[name],
	}
	if len(kind) > 0 && kind[0] != "" {
		f.Type = kind[0]
	}
	switch name {
	case "cnpj":
		f.Value = MaskCNPJ(f.Value)
	case "cpf":
		f.Value = MaskCPF(f.Value)
	case "cep":
		f.Value = MaskCEP(f.Value)
	case "telefone":
		f.Value = MaskPhone(f.Value)
	}
	if f.Type == "password" {
		f.Value = ""
	}
	return f
}
