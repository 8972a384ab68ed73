package registration

import (
	"errors"
	"maps"
	"strings"
	"sync"

	"github.com/dukerupert/ferrovelho/internal/address"
	"github.com/dukerupert/ferrovelho/internal/domain"
	"github.com/dukerupert/ferrovelho/internal/validation"
)

// Step identifies one screen of the registration flow.
type Step string

const (
	StepSeller         Step = "vendedor"
	StepRepresentative Step = "representante"
)

// Route paths used for navigation between steps.
const (
	RouteHome           = "/"
	RouteSeller         = "/cadastro/vendedor"
	RouteRepresentative = "/cadastro/representante"
	RouteCompleted      = "/cadastro/concluido"
)

// Postal code messages shown on the cep field.
const (
	MsgPostalCodeNotFound = "CEP não encontrado"
	MsgPostalCodeFailed   = "Não foi possível consultar o CEP. Tente novamente."
)

// Status is the controller's state machine position.
type Status int

const (
	Editing Status = iota
	Validating
	Committed
)

func (s Status) String() string {
	switch s {
	case Editing:
		return "editing"
	case Validating:
		return "validating"
	case Committed:
		return "committed"
	default:
		return "unknown"
	}
}

// Outcome is the result of a successful Submit.
type Outcome struct {
	// Next is the route to navigate to.
	Next string
	// Completed is set when the final step was committed.
	Completed bool
}

// Prompt is the confirmation shown before discarding unsaved edits.
type Prompt struct {
	Title   string
	Content string
}

// DiscardPrompt asks the user to confirm leaving a step with unsaved edits.
var DiscardPrompt = Prompt{
	Title:   "Descartar alterações?",
	Content: "Os dados não salvos serão perdidos. Deseja continuar?",
}

// BackOutcome is the result of Back.
type BackOutcome struct {
	NeedsConfirmation bool
	Prompt            Prompt
	// Previous is the route to navigate to when no confirmation is needed.
	Previous string
}

// LookupTicket identifies one postal code lookup. A ticket is current until
// the cep field changes or a newer ticket is issued.
type LookupTicket struct {
	Token      uint64
	PostalCode string
}

// View is a read-only copy of a controller for rendering.
type View struct {
	Step   Step
	Status Status
	Values map[string]string
	Errors map[string]string
	Busy   bool
	Dirty  bool
}

// StepController owns the local field values of one step. All methods are
// safe for concurrent use; lookups run outside the lock.
type StepController struct {
	mu sync.Mutex

	step   Step
	schema validation.Schema
	next   string
	prev   string

	values   map[string]string
	snapshot map[string]string
	edited   map[string]bool
	errors   validation.FieldErrors
	status   Status

	lookupSeq uint64
	pending   *LookupTicket
	resolved  string
	// lookupErr is the last lookup failure for the current cep. It stays on
	// the cep field across validation passes and blocks Submit.
	lookupErr string
}

func newStepController(step Step, schema validation.Schema, initial map[string]string) *StepController {
	c := &StepController{
		step:   step,
		schema: schema,
		values: make(map[string]string, len(schema.Fields)),
		edited: make(map[string]bool),
		errors: make(validation.FieldErrors),
		status: Editing,
	}

	switch step {
	case StepSeller:
		c.prev, c.next = RouteHome, RouteRepresentative
	case StepRepresentative:
		c.prev, c.next = RouteSeller, RouteCompleted
	}

	for _, name := range schema.FieldNames() {
		c.values[name] = initial[name]
	}
	c.snapshot = maps.Clone(c.values)
	if c.values[FieldPostalCode] != "" {
		c.resolved = c.values[FieldPostalCode]
	}
	return c
}

// Step returns the step this controller drives.
func (c *StepController) Step() Step {
	return c.step
}

// SetField records a user edit. Digit fields are stored without their mask.
// The field is marked hand-edited only when its value actually changes, and
// its error is cleared.
func (c *StepController) SetField(name, value string) error {
	const op = "registration.SetField"

	if !c.schema.Has(name) {
		return domain.Errorf(domain.EINVALID, op, "unknown field %q", name)
	}
	if digitFields[name] {
		value = stripMask(value)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.values[name] == value {
		return nil
	}
	c.values[name] = value
	c.edited[name] = true
	delete(c.errors, name)
	if c.status == Committed {
		c.status = Editing
	}

	if name == FieldPostalCode {
		// Any pending lookup is now stale.
		c.pending = nil
		c.lookupErr = ""
	}
	return nil
}

// SetFields applies SetField to every declared field present in values.
func (c *StepController) SetFields(values map[string]string) error {
	for _, name := range c.schema.FieldNames() {
		v, ok := values[name]
		if !ok {
			continue
		}
		if err := c.SetField(name, v); err != nil {
			return err
		}
	}
	return nil
}

// LookupTicket issues a ticket when the cep field holds eight digits and no
// lookup for the same value is already in flight. With force false, a value
// whose lookup already completed is not looked up again.
func (c *StepController) LookupTicket(force bool) (LookupTicket, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.schema.Has(FieldPostalCode) {
		return LookupTicket{}, false
	}
	cep := c.values[FieldPostalCode]
	if !address.IsPostalCode(cep) {
		return LookupTicket{}, false
	}
	if c.pending != nil && c.pending.PostalCode == cep {
		return LookupTicket{}, false
	}
	if !force && c.resolved == cep {
		return LookupTicket{}, false
	}

	c.lookupSeq++
	t := LookupTicket{Token: c.lookupSeq, PostalCode: cep}
	c.pending = &t
	return t, true
}

// CompleteLookup applies a lookup result. It reports false and changes
// nothing when the ticket is stale or the cep field no longer holds the
// value that triggered the lookup.
func (c *StepController) CompleteLookup(t LookupTicket, addr *address.Address, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == nil || c.pending.Token != t.Token || c.values[FieldPostalCode] != t.PostalCode {
		return false
	}
	c.pending = nil

	switch {
	case err == nil && addr != nil:
		c.resolved = t.PostalCode
		c.lookupErr = ""
		delete(c.errors, FieldPostalCode)
		c.autofill(FieldStreet, addr.Street)
		c.autofill(FieldState, addr.State)
		c.autofill(FieldComplement, addr.Complement)
	case errors.Is(err, address.ErrNotFound):
		c.resolved = t.PostalCode
		c.lookupErr = MsgPostalCodeNotFound
		c.errors[FieldPostalCode] = c.lookupErr
	default:
		// Not resolved, so the next submit looks the cep up again.
		c.lookupErr = MsgPostalCodeFailed
		c.errors[FieldPostalCode] = c.lookupErr
	}
	return true
}

// autofill sets a field from a lookup unless the user typed a non-empty
// value into it. Callers hold c.mu.
func (c *StepController) autofill(name, value string) {
	if !c.schema.Has(name) {
		return
	}
	if c.edited[name] && c.values[name] != "" {
		return
	}
	c.values[name] = value
	c.edited[name] = false
	delete(c.errors, name)
}

// Busy reports whether a lookup is in flight.
func (c *StepController) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending != nil
}

// Errors returns a copy of the current field errors.
func (c *StepController) Errors() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return maps.Clone(map[string]string(c.errors))
}

// Values returns a copy of the current field values.
func (c *StepController) Values() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return maps.Clone(c.values)
}

// Status returns the controller's state.
func (c *StepController) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Dirty reports whether local values differ from those loaded at start or
// last committed. Blank secret fields do not count as edits.
func (c *StepController) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty()
}

func (c *StepController) dirty() bool {
	for name, v := range c.values {
		if secretFields[name] && v == "" {
			continue
		}
		if v != c.snapshot[name] {
			return true
		}
	}
	return false
}

// View returns a copy of the controller for rendering.
func (c *StepController) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	return View{
		Step:   c.step,
		Status: c.status,
		Values: maps.Clone(c.values),
		Errors: maps.Clone(map[string]string(c.errors)),
		Busy:   c.pending != nil,
		Dirty:  c.dirty(),
	}
}

// Submit validates the local values against the step schema. A failed
// postal code lookup is reported on the cep field unless the schema already
// rejected it. When nothing fails, commit is called with the values and the
// controller moves to Committed. Otherwise the controller returns to Editing
// with the new errors, replacing the old ones, and commit is not called. The
// returned FieldErrors is empty on success.
func (c *StepController) Submit(commit func(values map[string]string) error) (Outcome, validation.FieldErrors, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.status = Validating
	errs := validation.Validate(c.values, c.schema)
	if _, ok := errs[FieldPostalCode]; !ok && c.lookupErr != "" {
		errs[FieldPostalCode] = c.lookupErr
	}
	if !errs.OK() {
		c.errors = errs
		c.status = Editing
		return Outcome{}, errs, nil
	}

	if err := commit(maps.Clone(c.values)); err != nil {
		c.status = Editing
		return Outcome{}, errs, err
	}

	c.errors = errs
	c.status = Committed
	c.snapshot = maps.Clone(c.values)
	c.edited = make(map[string]bool)
	return Outcome{Next: c.next, Completed: c.step == StepRepresentative}, errs, nil
}

// Back reports whether leaving the step needs confirmation. When it does not,
// the caller discards the controller.
func (c *StepController) Back(confirmed bool) BackOutcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dirty() && !confirmed {
		return BackOutcome{NeedsConfirmation: true, Prompt: DiscardPrompt}
	}
	c.pending = nil
	return BackOutcome{Previous: c.prev}
}

func stripMask(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '-', '/', '(', ')', ' ':
			return -1
		}
		return r
	}, s)
}
