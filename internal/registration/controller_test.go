package registration

import (
	"maps"
	"testing"

	"github.com/dukerupert/ferrovelho/internal/address"
	"github.com/dukerupert/ferrovelho/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var se = &address.Address{
	PostalCode: "01001000",
	Street:     "Praça da Sé",
	Complement: "lado ímpar",
	State:      "SP",
}

func TestStepController_SetField(t *testing.T) {
	c := newStepController(StepSeller, SellerSchema, nil)

	require.NoError(t, c.SetField(FieldTaxID, "12.345.678/0001-95"))
	require.NoError(t, c.SetField(FieldPostalCode, "01001-000"))

	values := c.Values()
	assert.Equal(t, "12345678000195", values[FieldTaxID])
	assert.Equal(t, "01001000", values[FieldPostalCode])
	assert.True(t, c.Dirty())

	err := c.SetField("senha", "x")
	assert.True(t, domain.IsCode(err, domain.EINVALID))
}

func TestStepController_SetFieldClearsFieldError(t *testing.T) {
	c := newStepController(StepSeller, SellerSchema, nil)

	_, errs, err := c.Submit(func(map[string]string) error { return nil })
	require.NoError(t, err)
	require.Contains(t, errs, FieldCompanyName)
	require.Contains(t, errs, FieldTradeName)

	require.NoError(t, c.SetField(FieldCompanyName, "Ferro Velho Central"))

	current := c.Errors()
	assert.NotContains(t, current, FieldCompanyName)
	assert.Contains(t, current, FieldTradeName, "other errors stay until the next pass")
}

func TestStepController_LookupTicket(t *testing.T) {
	c := newStepController(StepSeller, SellerSchema, nil)

	_, ok := c.LookupTicket(true)
	assert.False(t, ok, "no ticket for an empty cep")

	require.NoError(t, c.SetField(FieldPostalCode, "0100100"))
	_, ok = c.LookupTicket(true)
	assert.False(t, ok, "no ticket below eight digits")

	require.NoError(t, c.SetField(FieldPostalCode, "01001000"))
	first, ok := c.LookupTicket(true)
	require.True(t, ok)
	assert.Equal(t, "01001000", first.PostalCode)
	assert.True(t, c.Busy())

	_, ok = c.LookupTicket(true)
	assert.False(t, ok, "same value already in flight")

	rep := newStepController(StepRepresentative, RepresentativeSchema, nil)
	_, ok = rep.LookupTicket(true)
	assert.False(t, ok, "representative step has no cep")
}

func TestStepController_CompleteLookupDiscardsStale(t *testing.T) {
	c := newStepController(StepSeller, SellerSchema, nil)

	require.NoError(t, c.SetField(FieldPostalCode, "01001000"))
	stale, ok := c.LookupTicket(true)
	require.True(t, ok)

	require.NoError(t, c.SetField(FieldPostalCode, "20040020"))
	assert.False(t, c.Busy(), "editing the cep supersedes the pending lookup")

	current, ok := c.LookupTicket(true)
	require.True(t, ok)
	assert.Greater(t, current.Token, stale.Token)

	assert.False(t, c.CompleteLookup(stale, se, nil))
	assert.Empty(t, c.Values()[FieldStreet])

	rio := &address.Address{Street: "Rua da Assembleia", State: "RJ"}
	assert.True(t, c.CompleteLookup(current, rio, nil))
	assert.Equal(t, "Rua da Assembleia", c.Values()[FieldStreet])
	assert.False(t, c.Busy())
}

func TestStepController_CompleteLookupChecksFieldValue(t *testing.T) {
	c := newStepController(StepSeller, SellerSchema, nil)

	require.NoError(t, c.SetField(FieldPostalCode, "01001000"))
	ticket, ok := c.LookupTicket(true)
	require.True(t, ok)

	ticket.PostalCode = "99999999"
	assert.False(t, c.CompleteLookup(ticket, se, nil))
}

func TestStepController_AutofillKeepsHandEditedFields(t *testing.T) {
	tests := []struct {
		name       string
		street     string
		wantStreet string
	}{
		{"empty street is filled", "", "Praça da Sé"},
		{"typed street is kept", "Rua Direita", "Rua Direita"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newStepController(StepSeller, SellerSchema, nil)
			require.NoError(t, c.SetField(FieldStreet, tt.street))
			require.NoError(t, c.SetField(FieldPostalCode, "01001000"))

			ticket, ok := c.LookupTicket(true)
			require.True(t, ok)
			require.True(t, c.CompleteLookup(ticket, se, nil))

			values := c.Values()
			assert.Equal(t, tt.wantStreet, values[FieldStreet])
			assert.Equal(t, "SP", values[FieldState])
			assert.Equal(t, "lado ímpar", values[FieldComplement])
		})
	}
}

func TestStepController_AutofillReplacesEarlierAutofill(t *testing.T) {
	c := newStepController(StepSeller, SellerSchema, nil)

	require.NoError(t, c.SetField(FieldPostalCode, "01001000"))
	ticket, _ := c.LookupTicket(true)
	c.CompleteLookup(ticket, se, nil)

	require.NoError(t, c.SetField(FieldPostalCode, "20040020"))
	ticket, _ = c.LookupTicket(true)
	c.CompleteLookup(ticket, &address.Address{Street: "Rua da Assembleia", State: "RJ"}, nil)

	values := c.Values()
	assert.Equal(t, "Rua da Assembleia", values[FieldStreet])
	assert.Equal(t, "RJ", values[FieldState])
	assert.Empty(t, values[FieldComplement])
}

func TestStepController_LookupFailures(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantMsg   string
		wantRetry bool
	}{
		{"not found", address.ErrNotFound, MsgPostalCodeNotFound, false},
		{"transport", &address.LookupError{PostalCode: "01001000", Status: 502}, MsgPostalCodeFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newStepController(StepSeller, SellerSchema, nil)
			require.NoError(t, c.SetField(FieldStreet, "Rua A"))
			require.NoError(t, c.SetField(FieldPostalCode, "01001000"))
			before := c.Values()

			ticket, _ := c.LookupTicket(true)
			require.True(t, c.CompleteLookup(ticket, nil, tt.err))

			assert.Equal(t, map[string]string{FieldPostalCode: tt.wantMsg}, c.Errors())
			assert.Equal(t, before, c.Values())

			_, ok := c.LookupTicket(false)
			assert.Equal(t, tt.wantRetry, ok)
		})
	}
}

func TestStepController_SubmitKeepsLookupError(t *testing.T) {
	c := newStepController(StepSeller, SellerSchema, nil)
	require.NoError(t, c.SetFields(map[string]string{
		FieldCompanyName:   "Ferro Velho Central Ltda",
		FieldTradeName:     "Central Autopeças",
		FieldTaxID:         "12345678000195",
		FieldEmail:         "contato@central.com.br",
		FieldPhone:         "11987654321",
		FieldReferenceCode: "CDV-001",
		FieldPostalCode:    "00000000",
		FieldStreet:        "Rua A",
		FieldNumber:        "1",
		FieldState:         "SP",
	}))
	ticket, _ := c.LookupTicket(true)
	require.True(t, c.CompleteLookup(ticket, nil, address.ErrNotFound))

	calls := 0
	commit := func(map[string]string) error {
		calls++
		return nil
	}

	_, errs, err := c.Submit(commit)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{FieldPostalCode: MsgPostalCodeNotFound}, map[string]string(errs))
	assert.Equal(t, Editing, c.Status())
	assert.Zero(t, calls)

	require.NoError(t, c.SetField(FieldPostalCode, "0100"))
	_, errs, err = c.Submit(commit)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{FieldPostalCode: "CEP deve ter 8 dígitos"}, map[string]string(errs),
		"a new cep drops the lookup error")

	require.NoError(t, c.SetField(FieldPostalCode, "01001000"))
	_, errs, err = c.Submit(commit)
	require.NoError(t, err)
	assert.True(t, errs.OK())
	assert.Equal(t, 1, calls)
}

func TestStepController_ResolvedValueNotLookedUpAgain(t *testing.T) {
	c := newStepController(StepSeller, SellerSchema, nil)
	require.NoError(t, c.SetField(FieldPostalCode, "01001000"))

	ticket, _ := c.LookupTicket(false)
	c.CompleteLookup(ticket, se, nil)

	_, ok := c.LookupTicket(false)
	assert.False(t, ok)

	_, ok = c.LookupTicket(true)
	assert.True(t, ok, "an explicit retry looks up again")
}

func TestStepController_SubmitReplacesErrors(t *testing.T) {
	c := newStepController(StepRepresentative, RepresentativeSchema, nil)
	calls := 0
	commit := func(map[string]string) error {
		calls++
		return nil
	}

	_, errs, err := c.Submit(commit)
	require.NoError(t, err)
	assert.Len(t, errs, 6)
	assert.Equal(t, Editing, c.Status())

	require.NoError(t, c.SetFields(map[string]string{
		FieldFullName:             "Maria Souza",
		FieldNationalID:           "123.456.789-09",
		FieldEmail:                "maria@central.com.br",
		FieldPhone:                "(11) 98765-4321",
		FieldPassword:             "abcdef",
		FieldPasswordConfirmation: "abcdef1",
	}))

	_, errs, err = c.Submit(commit)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{FieldPasswordConfirmation: "As senhas não coincidem"}, map[string]string(errs))
	assert.Equal(t, map[string]string(errs), c.Errors())
	assert.Zero(t, calls)

	require.NoError(t, c.SetField(FieldPasswordConfirmation, "abcdef"))
	out, errs, err := c.Submit(commit)
	require.NoError(t, err)
	assert.True(t, errs.OK())
	assert.Equal(t, Outcome{Next: RouteCompleted, Completed: true}, out)
	assert.Equal(t, Committed, c.Status())
	assert.Empty(t, c.Errors())
	assert.False(t, c.Dirty())
	assert.Equal(t, 1, calls)
}

func TestStepController_Back(t *testing.T) {
	c := newStepController(StepRepresentative, RepresentativeSchema, nil)

	out := c.Back(false)
	assert.Equal(t, BackOutcome{Previous: RouteSeller}, out, "clean step leaves without asking")

	require.NoError(t, c.SetField(FieldFullName, "Maria"))

	out = c.Back(false)
	assert.True(t, out.NeedsConfirmation)
	assert.Equal(t, DiscardPrompt, out.Prompt)
	assert.Equal(t, "Maria", c.Values()[FieldFullName], "declining keeps the edits")

	out = c.Back(true)
	assert.False(t, out.NeedsConfirmation)
	assert.Equal(t, RouteSeller, out.Previous)
}

func TestStepController_BlankPasswordsAreNotEdits(t *testing.T) {
	committed := RepresentativeRecord{
		FullName:             "Maria Souza",
		NationalID:           "12345678909",
		Email:                "maria@central.com.br",
		Phone:                "11987654321",
		Password:             "abcdef",
		PasswordConfirmation: "abcdef",
	}.Values()
	c := newStepController(StepRepresentative, RepresentativeSchema, committed)

	posted := maps.Clone(committed)
	posted[FieldPassword] = ""
	posted[FieldPasswordConfirmation] = ""
	require.NoError(t, c.SetFields(posted))

	assert.False(t, c.Dirty())
	out := c.Back(false)
	assert.False(t, out.NeedsConfirmation)
	assert.Equal(t, RouteSeller, out.Previous)

	require.NoError(t, c.SetField(FieldPassword, "outra-senha"))
	assert.True(t, c.Dirty(), "a new password is an edit")
}

func TestStepController_LoadsInitialValues(t *testing.T) {
	initial := SellerRecord{CompanyName: "Ferro Velho Central", PostalCode: "01001000"}.Values()

	c := newStepController(StepSeller, SellerSchema, initial)

	assert.Equal(t, "Ferro Velho Central", c.Values()[FieldCompanyName])
	assert.False(t, c.Dirty())

	_, ok := c.LookupTicket(false)
	assert.False(t, ok, "a committed cep was already resolved")
}
