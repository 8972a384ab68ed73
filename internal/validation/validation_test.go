package validation_test

import (
	"regexp"
	"testing"

	"github.com/dukerupert/ferrovelho/internal/domain"
	"github.com/dukerupert/ferrovelho/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSchema = validation.Schema{
	Name: "test",
	Fields: []validation.Field{
		{Name: "nome", Rules: []validation.Rule{
			validation.Required("nome obrigatório"),
			validation.MinLen(3, "nome curto"),
		}},
		{Name: "uf", Rules: []validation.Rule{
			validation.Len(2, "uf tamanho"),
			validation.Pattern(regexp.MustCompile(`^[A-Z]{2}$`), "uf inválida"),
			validation.OneOf([]string{"SP", "RJ"}, "uf desconhecida"),
		}},
		{Name: "telefone", Rules: []validation.Rule{
			validation.Digits(10, 11, "telefone inválido"),
		}},
		{Name: "email", Rules: []validation.Rule{
			validation.Email("email inválido"),
		}},
		{Name: "senha", Rules: []validation.Rule{
			validation.MinLen(6, "senha curta"),
		}},
		{Name: "confirmacao", Rules: []validation.Rule{
			validation.EqualsField("senha", "senhas diferentes"),
		}},
	},
}

func validValues() map[string]string {
	return map[string]string{
		"nome":        "Ferro Velho Central",
		"uf":          "SP",
		"telefone":    "11987654321",
		"email":       "contato@ferrovelho.com.br",
		"senha":       "segredo",
		"confirmacao": "segredo",
	}
}

func TestValidate_AllValid(t *testing.T) {
	errs := validation.Validate(validValues(), testSchema)

	require.NotNil(t, errs)
	assert.True(t, errs.OK())
	assert.Empty(t, errs)
	assert.NoError(t, errs.Err("op"))
}

func TestValidate_RuleKinds(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value string
		want  string
	}{
		{"required blank", "nome", "   ", "nome obrigatório"},
		{"min length", "nome", "ab", "nome curto"},
		{"min length counts runes", "nome", "São", ""},
		{"exact length", "uf", "SPX", "uf tamanho"},
		{"pattern", "uf", "sp", "uf inválida"},
		{"one of", "uf", "XX", "uf desconhecida"},
		{"one of listed", "uf", "RJ", ""},
		{"digits too short", "telefone", "119876543", "telefone inválido"},
		{"digits too long", "telefone", "119876543210", "telefone inválido"},
		{"digits with mask", "telefone", "(11)98765-4321", "telefone inválido"},
		{"digits ten", "telefone", "1133334444", ""},
		{"email", "email", "not-an-email", "email inválido"},
		{"email empty", "email", "", "email inválido"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := validValues()
			values[tt.field] = tt.value

			errs := validation.Validate(values, testSchema)

			if tt.want == "" {
				assert.NotContains(t, errs, tt.field)
				return
			}
			assert.Equal(t, tt.want, errs[tt.field])
			assert.Len(t, errs, 1, "only the edited field should fail")
		})
	}
}

func TestValidate_FirstFailingRuleWins(t *testing.T) {
	values := validValues()
	values["nome"] = ""

	errs := validation.Validate(values, testSchema)

	assert.Equal(t, "nome obrigatório", errs["nome"])
}

func TestValidate_NoShortCircuitAcrossFields(t *testing.T) {
	errs := validation.Validate(map[string]string{}, testSchema)

	assert.Equal(t, validation.FieldErrors{
		"nome":     "nome obrigatório",
		"uf":       "uf tamanho",
		"telefone": "telefone inválido",
		"email":    "email inválido",
		"senha":    "senha curta",
	}, errs, "every field is evaluated; empty confirmacao equals empty senha")
}

func TestValidate_CrossFieldEquality(t *testing.T) {
	values := validValues()
	values["confirmacao"] = "segredo1"

	errs := validation.Validate(values, testSchema)

	assert.Equal(t, validation.FieldErrors{"confirmacao": "senhas diferentes"}, errs)
}

func TestValidate_IsPure(t *testing.T) {
	values := validValues()
	values["email"] = "x"
	values["uf"] = ""

	first := validation.Validate(values, testSchema)
	second := validation.Validate(values, testSchema)

	assert.Equal(t, first, second)
	assert.Equal(t, "x", values["email"], "input map must not be modified")
}

func TestValidate_UndeclaredFieldsIgnored(t *testing.T) {
	values := validValues()
	values["extra"] = ""

	assert.True(t, validation.Validate(values, testSchema).OK())
}

func TestFieldErrors_Err(t *testing.T) {
	errs := validation.FieldErrors{"cep": "CEP deve ter 8 dígitos"}

	err := errs.Err("registration.submit")

	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	assert.Equal(t, map[string]string{"cep": "CEP deve ter 8 dígitos"}, domain.GetValidationFields(err))

	errs["cep"] = "changed"
	assert.Equal(t, "CEP deve ter 8 dígitos", domain.GetValidationFields(err)["cep"], "error must own a copy")
}

func TestSchema_Helpers(t *testing.T) {
	assert.Equal(t, []string{"nome", "uf", "telefone", "email", "senha", "confirmacao"}, testSchema.FieldNames())
	assert.True(t, testSchema.Has("uf"))
	assert.False(t, testSchema.Has("cep"))
}
