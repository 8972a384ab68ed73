package registration

import (
	"github.com/dukerupert/ferrovelho/internal/options"
	"github.com/dukerupert/ferrovelho/internal/validation"
)

// SellerSchema validates the seller step.
var SellerSchema = validation.Schema{
	Name: "vendedor",
	Fields: []validation.Field{
		{Name: FieldCompanyName, Rules: []validation.Rule{
			validation.Required("Nome da Empresa é obrigatório"),
			validation.MinLen(3, "Nome da Empresa deve ter pelo menos 3 caracteres"),
		}},
		{Name: FieldTradeName, Rules: []validation.Rule{
			validation.Required("Nome Fantasia é obrigatório"),
		}},
		{Name: FieldTaxID, Rules: []validation.Rule{
			validation.Required("CNPJ é obrigatório"),
			validation.Digits(14, 14, "CNPJ deve ter 14 dígitos"),
		}},
		{Name: FieldEmail, Rules: []validation.Rule{
			validation.Required("Email é obrigatório"),
			validation.Email("Email inválido"),
		}},
		{Name: FieldPhone, Rules: []validation.Rule{
			validation.Required("Telefone é obrigatório"),
			validation.Digits(10, 11, "Telefone inválido"),
		}},
		{Name: FieldReferenceCode, Rules: []validation.Rule{
			validation.Required("CDV é obrigatório"),
		}},
		{Name: FieldPostalCode, Rules: []validation.Rule{
			validation.Required("CEP é obrigatório"),
			validation.Digits(8, 8, "CEP deve ter 8 dígitos"),
		}},
		{Name: FieldStreet, Rules: []validation.Rule{
			validation.Required("Endereço é obrigatório"),
		}},
		{Name: FieldNumber, Rules: []validation.Rule{
			validation.Required("Número é obrigatório"),
		}},
		{Name: FieldComplement},
		{Name: FieldState, Rules: []validation.Rule{
			validation.Required("Estado é obrigatório"),
			validation.Len(2, "Estado inválido"),
			validation.OneOf(options.StateCodes(), "Estado inválido"),
		}},
	},
}

// RepresentativeSchema validates the representative step.
var RepresentativeSchema = validation.Schema{
	Name: "representante",
	Fields: []validation.Field{
		{Name: FieldFullName, Rules: []validation.Rule{
			validation.MinLen(3, "Nome do Representante deve ter pelo menos 3 caracteres"),
		}},
		{Name: FieldNationalID, Rules: []validation.Rule{
			validation.Digits(11, 11, "CPF deve ter 11 dígitos"),
		}},
		{Name: FieldEmail, Rules: []validation.Rule{
			validation.Email("Email inválido"),
		}},
		{Name: FieldPhone, Rules: []validation.Rule{
			validation.Digits(10, 11, "Telefone inválido"),
		}},
		{Name: FieldPassword, Rules: []validation.Rule{
			validation.MinLen(6, "Senha deve ter pelo menos 6 caracteres"),
		}},
		{Name: FieldPasswordConfirmation, Rules: []validation.Rule{
			validation.MinLen(6, "Confirme a senha"),
			validation.EqualsField(FieldPassword, "As senhas não coincidem"),
		}},
	},
}

// digitFields are stored without mask characters.
var digitFields = map[string]bool{
	FieldTaxID:      true,
	FieldPhone:      true,
	FieldPostalCode: true,
	FieldNationalID: true,
}

// secretFields are never rendered back into forms, so an empty posted value
// means the field was left untouched.
var secretFields = map[string]bool{
	FieldPassword:             true,
	FieldPasswordConfirmation: true,
}
