package registration

// Form field names. They match the form keys rendered by the templates.
const (
	FieldCompanyName   = "nomeEmpresa"
	FieldTradeName     = "nomeFantasia"
	FieldTaxID         = "cnpj"
	FieldEmail         = "email"
	FieldPhone         = "telefone"
	FieldReferenceCode = "cdv"
	FieldPostalCode    = "cep"
	FieldStreet        = "endereco"
	FieldNumber        = "numero"
	FieldComplement    = "complemento"
	FieldState         = "estado"

	FieldFullName             = "nomeRepresentante"
	FieldNationalID           = "cpf"
	FieldPassword             = "senha"
	FieldPasswordConfirmation = "confirmarSenha"
)

// SellerRecord is the validated data collected by the seller step.
type SellerRecord struct {
	CompanyName   string `json:"nomeEmpresa"`
	TradeName     string `json:"nomeFantasia"`
	TaxID         string `json:"cnpj"`
	Email         string `json:"email"`
	Phone         string `json:"telefone"`
	ReferenceCode string `json:"cdv"`
	PostalCode    string `json:"cep"`
	Street        string `json:"endereco"`
	Number        string `json:"numero"`
	Complement    string `json:"complemento,omitempty"`
	State         string `json:"estado"`
}

func sellerFromValues(v map[string]string) SellerRecord {
	return SellerRecord{
		CompanyName:   v[FieldCompanyName],
		TradeName:     v[FieldTradeName],
		TaxID:         v[FieldTaxID],
		Email:         v[FieldEmail],
		Phone:         v[FieldPhone],
		ReferenceCode: v[FieldReferenceCode],
		PostalCode:    v[FieldPostalCode],
		Street:        v[FieldStreet],
		Number:        v[FieldNumber],
		Complement:    v[FieldComplement],
		State:         v[FieldState],
	}
}

// Values returns the record as form values.
func (r SellerRecord) Values() map[string]string {
	return map[string]string{
		FieldCompanyName:   r.CompanyName,
		FieldTradeName:     r.TradeName,
		FieldTaxID:         r.TaxID,
		FieldEmail:         r.Email,
		FieldPhone:         r.Phone,
		FieldReferenceCode: r.ReferenceCode,
		FieldPostalCode:    r.PostalCode,
		FieldStreet:        r.Street,
		FieldNumber:        r.Number,
		FieldComplement:    r.Complement,
		FieldState:         r.State,
	}
}

// RepresentativeRecord is the validated data collected by the representative step.
// Password and PasswordConfirmation are equal once the record is committed.
type RepresentativeRecord struct {
	FullName             string `json:"nomeRepresentante"`
	NationalID           string `json:"cpf"`
	Email                string `json:"email"`
	Phone                string `json:"telefone"`
	Password             string `json:"-"`
	PasswordConfirmation string `json:"-"`
}

func representativeFromValues(v map[string]string) RepresentativeRecord {
	return RepresentativeRecord{
		FullName:             v[FieldFullName],
		NationalID:           v[FieldNationalID],
		Email:                v[FieldEmail],
		Phone:                v[FieldPhone],
		Password:             v[FieldPassword],
		PasswordConfirmation: v[FieldPasswordConfirmation],
	}
}

// Values returns the record as form values.
func (r RepresentativeRecord) Values() map[string]string {
	return map[string]string{
		FieldFullName:             r.FullName,
		FieldNationalID:           r.NationalID,
		FieldEmail:                r.Email,
		FieldPhone:                r.Phone,
		FieldPassword:             r.Password,
		FieldPasswordConfirmation: r.PasswordConfirmation,
	}
}
