package registration

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/ferrovelho/internal/address"
	"github.com/dukerupert/ferrovelho/internal/domain"
	"github.com/dukerupert/ferrovelho/internal/validation"
)

// ErrSellerRequired is returned when the representative step is used before
// a seller record was committed.
var ErrSellerRequired = errors.New("registration: seller step not completed")

// Completion is handed to the Publisher once both records are committed.
type Completion struct {
	SessionID      string
	Seller         SellerRecord
	Representative RepresentativeRecord
	CompletedAt    time.Time
}

// Publisher delivers completed registrations.
type Publisher interface {
	Publish(ctx context.Context, c Completion) error
}

// Lookup outcomes reported to Metrics.
const (
	LookupFound    = "found"
	LookupNotFound = "not_found"
	LookupFailed   = "error"
	LookupStale    = "stale"
)

// Metrics receives funnel events. telemetry.RegistrationMetrics implements it.
type Metrics interface {
	StepCommitted(step string)
	ValidationFailed(step string, fields int)
	LookupFinished(outcome string)
	RegistrationCompleted()
}

type noopMetrics struct{}

func (noopMetrics) StepCommitted(string)         {}
func (noopMetrics) ValidationFailed(string, int) {}
func (noopMetrics) LookupFinished(string)        {}
func (noopMetrics) RegistrationCompleted()       {}

// FlowConfig holds the collaborators shared by every flow.
type FlowConfig struct {
	Lookuper  address.Lookuper
	Publisher Publisher
	Metrics   Metrics
	Logger    *slog.Logger
}

// Flow is one registration session: the committed State and a controller per
// step. Flow is the only writer of its State.
type Flow struct {
	id     string
	state  *State
	cfg    FlowConfig
	logger *slog.Logger
	now    func() time.Time

	mu          sync.Mutex
	controllers map[Step]*StepController
}

// NewFlow creates a flow over state.
func NewFlow(id string, state *State, cfg FlowConfig) *Flow {
	if cfg.Metrics == nil {
		cfg.Metrics = noopMetrics{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Flow{
		id:          id,
		state:       state,
		cfg:         cfg,
		logger:      cfg.Logger.With("registration_id", id),
		now:         time.Now,
		controllers: make(map[Step]*StepController),
	}
}

// ID returns the session id.
func (f *Flow) ID() string {
	return f.id
}

// Seller returns the committed seller record.
func (f *Flow) Seller() (SellerRecord, bool) {
	return f.state.Seller()
}

// Representative returns the committed representative record.
func (f *Flow) Representative() (RepresentativeRecord, bool) {
	return f.state.Representative()
}

// CanEnter reports whether step may be shown. The representative step needs
// a committed seller record.
func (f *Flow) CanEnter(step Step) bool {
	if step == StepRepresentative {
		_, ok := f.state.Seller()
		return ok
	}
	return step == StepSeller
}

// Controller returns the controller for step, creating it from the
// committed record when needed.
func (f *Flow) Controller(step Step) (*StepController, error) {
	const op = "registration.Controller"

	if !f.CanEnter(step) {
		if step == StepRepresentative {
			return nil, ErrSellerRequired
		}
		return nil, domain.Errorf(domain.ENOTFOUND, op, "unknown step %q", step)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if c, ok := f.controllers[step]; ok {
		return c, nil
	}

	var c *StepController
	switch step {
	case StepSeller:
		var initial map[string]string
		if r, ok := f.state.Seller(); ok {
			initial = r.Values()
		}
		c = newStepController(step, SellerSchema, initial)
	case StepRepresentative:
		var initial map[string]string
		if r, ok := f.state.Representative(); ok {
			initial = r.Values()
		}
		c = newStepController(step, RepresentativeSchema, initial)
	}
	f.controllers[step] = c
	return c, nil
}

// EditField records a single field edit. Editing the seller's cep to a full
// postal code looks it up and applies the result, unless a lookup for the
// same value is already in flight.
func (f *Flow) EditField(ctx context.Context, step Step, name, value string) error {
	c, err := f.Controller(step)
	if err != nil {
		return err
	}
	if err := c.SetField(name, value); err != nil {
		return err
	}
	if name == FieldPostalCode {
		f.lookup(ctx, c, true)
	}
	return nil
}

// Submit applies values to the step and validates it. A valid step is
// committed and Outcome names the next route; completing the representative
// step publishes the registration and clears the session state.
//
// A seller submission with a cep that was not resolved yet triggers the
// lookup first. Its failure is reported on the cep field next to the
// validation errors and keeps the step from committing until the cep is
// changed or a retried lookup succeeds.
func (f *Flow) Submit(ctx context.Context, step Step, values map[string]string) (Outcome, validation.FieldErrors, error) {
	c, err := f.Controller(step)
	if err != nil {
		return Outcome{}, nil, err
	}
	if err := c.SetFields(values); err != nil {
		return Outcome{}, nil, err
	}

	if step == StepSeller {
		f.lookup(ctx, c, false)
	}

	commit := func(v map[string]string) error {
		switch step {
		case StepSeller:
			return f.state.CommitSeller(sellerFromValues(v))
		default:
			return f.state.CommitRepresentative(representativeFromValues(v))
		}
	}

	out, errs, err := c.Submit(commit)
	if err != nil {
		f.logger.Error("failed to commit registration step", "step", step, "error", err)
		return Outcome{}, nil, err
	}
	if !errs.OK() {
		f.cfg.Metrics.ValidationFailed(string(step), len(errs))
		f.logger.Debug("registration step invalid", "step", step, "fields", len(errs))
		return Outcome{}, errs, nil
	}

	f.cfg.Metrics.StepCommitted(string(step))
	f.logger.Info("registration step committed", "step", step)

	if out.Completed {
		if err := f.complete(ctx); err != nil {
			return Outcome{}, nil, err
		}
	}
	return out, errs, nil
}

func (f *Flow) complete(ctx context.Context) error {
	const op = "registration.complete"

	seller, ok := f.state.Seller()
	if !ok {
		return ErrSellerRequired
	}
	rep, ok := f.state.Representative()
	if !ok {
		return domain.Errorf(domain.EINTERNAL, op, "representative record missing after commit")
	}

	if f.cfg.Publisher != nil {
		err := f.cfg.Publisher.Publish(ctx, Completion{
			SessionID:      f.id,
			Seller:         seller,
			Representative: rep,
			CompletedAt:    f.now().UTC(),
		})
		if err != nil {
			f.logger.Error("failed to publish registration", "error", err)
			return domain.Internal(err, op, "Não foi possível concluir o cadastro. Tente novamente.")
		}
	}

	if err := f.reset(); err != nil {
		return err
	}
	f.cfg.Metrics.RegistrationCompleted()
	f.logger.Info("registration completed", "cnpj", seller.TaxID)
	return nil
}

// Back leaves step. With unsaved edits and confirmed false the outcome asks
// for confirmation and nothing changes. Otherwise the step's local edits are
// discarded; committed records are untouched.
func (f *Flow) Back(step Step, confirmed bool) (BackOutcome, error) {
	c, err := f.Controller(step)
	if err != nil {
		return BackOutcome{}, err
	}

	out := c.Back(confirmed)
	if out.NeedsConfirmation {
		return out, nil
	}

	f.mu.Lock()
	if f.controllers[step] == c {
		delete(f.controllers, step)
	}
	f.mu.Unlock()

	f.logger.Debug("left registration step", "step", step, "confirmed", confirmed)
	return out, nil
}

// Cancel clears both records and every step's local state.
func (f *Flow) Cancel() error {
	if err := f.reset(); err != nil {
		return err
	}
	f.logger.Info("registration cancelled")
	return nil
}

func (f *Flow) reset() error {
	if err := f.state.Clear(); err != nil {
		return err
	}
	f.mu.Lock()
	f.controllers = make(map[Step]*StepController)
	f.mu.Unlock()
	return nil
}

// lookup runs a postal code lookup for c when a ticket is issued and applies
// the result unless it went stale meanwhile.
func (f *Flow) lookup(ctx context.Context, c *StepController, force bool) {
	ticket, ok := c.LookupTicket(force)
	if !ok {
		return
	}

	var (
		addr *address.Address
		err  error
	)
	if f.cfg.Lookuper != nil {
		addr, err = f.cfg.Lookuper.Lookup(ctx, ticket.PostalCode)
	} else {
		err = &address.LookupError{PostalCode: ticket.PostalCode, Err: errors.New("no lookup service configured")}
	}

	if !c.CompleteLookup(ticket, addr, err) {
		f.cfg.Metrics.LookupFinished(LookupStale)
		f.logger.Debug("discarded stale postal code lookup", "cep", ticket.PostalCode)
		return
	}

	switch {
	case err == nil && addr != nil:
		f.cfg.Metrics.LookupFinished(LookupFound)
	case errors.Is(err, address.ErrNotFound):
		f.cfg.Metrics.LookupFinished(LookupNotFound)
	default:
		f.cfg.Metrics.LookupFinished(LookupFailed)
		f.logger.Warn("postal code lookup failed", "cep", ticket.PostalCode, "error", err)
	}
}
