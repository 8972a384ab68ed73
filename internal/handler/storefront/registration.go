package storefront

import (
	"errors"
	"net/http"

	"github.com/dukerupert/ferrovelho/internal/cookie"
	"github.com/dukerupert/ferrovelho/internal/domain"
	"github.com/dukerupert/ferrovelho/internal/handler"
	"github.com/dukerupert/ferrovelho/internal/middleware"
	"github.com/dukerupert/ferrovelho/internal/registration"
	"github.com/dukerupert/ferrovelho/internal/validation"
)

// Sessions is the registration session store used by the handlers.
type Sessions interface {
	Start() (*registration.Flow, error)
	Get(id string) (*registration.Flow, bool)
	End(id string) error
}

type stepPage struct {
	template string
	path     string
	backPath string
	schema   validation.Schema
}

var stepPages = map[registration.Step]stepPage{
	registration.StepSeller: {
		template: "storefront/seller",
		path:     registration.RouteSeller,
		backPath: registration.RouteSeller + "/voltar",
		schema:   registration.SellerSchema,
	},
	registration.StepRepresentative: {
		template: "storefront/representative",
		path:     registration.RouteRepresentative,
		backPath: registration.RouteRepresentative + "/voltar",
		schema:   registration.RepresentativeSchema,
	},
}

// RegistrationHandler serves the seller and representative steps.
type RegistrationHandler struct {
	sessions Sessions
	renderer *handler.Renderer
	cookies  *cookie.Config
}

// NewRegistrationHandler creates the registration step handler
func NewRegistrationHandler(sessions Sessions, renderer *handler.Renderer, cookies *cookie.Config) *RegistrationHandler {
	return &RegistrationHandler{
		sessions: sessions,
		renderer: renderer,
		cookies:  cookies,
	}
}

// ShowSeller handles GET /cadastro/vendedor
func (h *RegistrationHandler) ShowSeller(w http.ResponseWriter, r *http.Request) {
	h.show(w, r, registration.StepSeller)
}

// SubmitSeller handles POST /cadastro/vendedor
func (h *RegistrationHandler) SubmitSeller(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, registration.StepSeller)
}

// BackSeller handles POST /cadastro/vendedor/voltar
func (h *RegistrationHandler) BackSeller(w http.ResponseWriter, r *http.Request) {
	h.back(w, r, registration.StepSeller)
}

// ShowRepresentative handles GET /cadastro/representante
func (h *RegistrationHandler) ShowRepresentative(w http.ResponseWriter, r *http.Request) {
	h.show(w, r, registration.StepRepresentative)
}

// SubmitRepresentative handles POST /cadastro/representante
func (h *RegistrationHandler) SubmitRepresentative(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, registration.StepRepresentative)
}

// BackRepresentative handles POST /cadastro/representante/voltar
func (h *RegistrationHandler) BackRepresentative(w http.ResponseWriter, r *http.Request) {
	h.back(w, r, registration.StepRepresentative)
}

// postalCodeResponse is the JSON answer of the postal code endpoint.
type postalCodeResponse struct {
	Values map[string]string `json:"values"`
	Errors map[string]string `json:"errors"`
	Busy   bool              `json:"busy"`
}

// LookupPostalCode handles POST /cadastro/vendedor/cep. The posted seller
// fields are applied first, then the cep edit, which triggers the lookup.
// The answer is the address block, or JSON for fetch clients.
func (h *RegistrationHandler) LookupPostalCode(w http.ResponseWriter, r *http.Request) {
	const op = "storefront.LookupPostalCode"
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		handler.ErrorResponse(w, r, domain.Invalid(op, "Formulário inválido"))
		return
	}
	values := formValues(r, registration.SellerSchema)
	cep, ok := values[registration.FieldPostalCode]
	if !ok {
		handler.ErrorResponse(w, r, domain.NewValidationError(op, registration.FieldPostalCode, "Informe o CEP"))
		return
	}
	delete(values, registration.FieldPostalCode)

	flow, err := h.flow(w, r, true)
	if err != nil {
		handler.InternalErrorResponse(w, r, err)
		return
	}
	c, err := flow.Controller(registration.StepSeller)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	if err := c.SetFields(values); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	if err := flow.EditField(ctx, registration.StepSeller, registration.FieldPostalCode, cep); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	view := c.View()
	if handler.AcceptsJSON(r) {
		handler.WriteJSON(w, http.StatusOK, postalCodeResponse{
			Values: view.Values,
			Errors: view.Errors,
			Busy:   view.Busy,
		})
		return
	}
	h.renderer.RenderPartial(w, stepPages[registration.StepSeller].template, "address", h.stepData(r, flow, view))
}

// Cancel handles POST /cadastro/cancelar. It drops both records and the
// session.
func (h *RegistrationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	if flow, err := h.flow(w, r, false); err == nil && flow != nil {
		if err := flow.Cancel(); err != nil {
			handler.ErrorResponse(w, r, err)
			return
		}
		if err := h.sessions.End(flow.ID()); err != nil {
			logger.Warn("failed to end registration session", "error", err)
		}
	}
	ClearRegistrationCookie(w, h.cookies)
	http.Redirect(w, r, registration.RouteHome, http.StatusSeeOther)
}

// Done handles GET /cadastro/concluido
func (h *RegistrationHandler) Done(w http.ResponseWriter, r *http.Request) {
	h.renderer.RenderHTTP(w, "storefront/done", handler.BaseTemplateData(r))
}

func (h *RegistrationHandler) show(w http.ResponseWriter, r *http.Request, step registration.Step) {
	flow, err := h.flow(w, r, step == registration.StepSeller)
	if err != nil {
		handler.InternalErrorResponse(w, r, err)
		return
	}
	if flow == nil || !flow.CanEnter(step) {
		http.Redirect(w, r, registration.RouteSeller, http.StatusSeeOther)
		return
	}

	c, err := flow.Controller(step)
	if err != nil {
		h.stepError(w, r, step, err)
		return
	}
	h.renderer.RenderHTTP(w, stepPages[step].template, h.stepData(r, flow, c.View()))
}

func (h *RegistrationHandler) submit(w http.ResponseWriter, r *http.Request, step registration.Step) {
	op := "storefront.Submit." + string(step)
	ctx := r.Context()
	logger := middleware.GetLogger(ctx)
	page := stepPages[step]

	if err := r.ParseForm(); err != nil {
		handler.ErrorResponse(w, r, domain.Invalid(op, "Formulário inválido"))
		return
	}

	flow, err := h.flow(w, r, step == registration.StepSeller)
	if err != nil {
		handler.InternalErrorResponse(w, r, err)
		return
	}
	if flow == nil {
		http.Redirect(w, r, registration.RouteSeller, http.StatusSeeOther)
		return
	}

	out, errs, err := flow.Submit(ctx, step, formValues(r, page.schema))
	if err != nil {
		h.stepError(w, r, step, err)
		return
	}

	if !errs.OK() {
		if handler.AcceptsJSON(r) {
			handler.ValidationErrorResponse(w, r, errs.Err(op))
			return
		}
		c, err := flow.Controller(step)
		if err != nil {
			h.stepError(w, r, step, err)
			return
		}
		h.renderer.RenderStatus(w, http.StatusUnprocessableEntity, page.template, h.stepData(r, flow, c.View()))
		return
	}

	if out.Completed {
		if err := h.sessions.End(flow.ID()); err != nil {
			logger.Warn("failed to end registration session", "error", err)
		}
		ClearRegistrationCookie(w, h.cookies)
	}
	http.Redirect(w, r, out.Next, http.StatusSeeOther)
}

func (h *RegistrationHandler) back(w http.ResponseWriter, r *http.Request, step registration.Step) {
	const op = "storefront.Back"
	page := stepPages[step]

	if err := r.ParseForm(); err != nil {
		handler.ErrorResponse(w, r, domain.Invalid(op, "Formulário inválido"))
		return
	}
	confirmed := r.PostFormValue("confirmar") == "1"

	flow, err := h.flow(w, r, false)
	if err != nil || flow == nil {
		http.Redirect(w, r, registration.RouteHome, http.StatusSeeOther)
		return
	}
	c, err := flow.Controller(step)
	if err != nil {
		h.stepError(w, r, step, err)
		return
	}
	if !confirmed {
		// Unsaved edits travel with the back button.
		if err := c.SetFields(formValues(r, page.schema)); err != nil {
			handler.ErrorResponse(w, r, err)
			return
		}
	}

	out, err := flow.Back(step, confirmed)
	if err != nil {
		h.stepError(w, r, step, err)
		return
	}
	if out.NeedsConfirmation {
		data := h.stepData(r, flow, c.View())
		data["Prompt"] = &out.Prompt
		h.renderer.RenderHTTP(w, page.template, data)
		return
	}
	http.Redirect(w, r, out.Previous, http.StatusSeeOther)
}

// stepError answers a flow error: a missing seller sends the user back to
// the first step, an internal failure re-renders the step with an alert.
func (h *RegistrationHandler) stepError(w http.ResponseWriter, r *http.Request, step registration.Step, err error) {
	if errors.Is(err, registration.ErrSellerRequired) {
		http.Redirect(w, r, registration.RouteSeller, http.StatusSeeOther)
		return
	}
	if domain.ErrorCode(err) != domain.EINTERNAL || handler.AcceptsJSON(r) {
		handler.ErrorResponse(w, r, err)
		return
	}

	middleware.GetLogger(r.Context()).Error("registration step failed", "error", err)
	flow, ferr := h.flow(w, r, false)
	if ferr != nil || flow == nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	c, cerr := flow.Controller(step)
	if cerr != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	data := h.stepData(r, flow, c.View())
	data["Error"] = domain.ErrorMessage(err)
	h.renderer.RenderStatus(w, http.StatusInternalServerError, stepPages[step].template, data)
}

// flow returns the request's registration flow. With create set, a missing
// or expired session is replaced by a new one; otherwise it returns nil.
func (h *RegistrationHandler) flow(w http.ResponseWriter, r *http.Request, create bool) (*registration.Flow, error) {
	if flow, ok := h.sessions.Get(GetRegistrationID(r)); ok {
		return flow, nil
	}
	if !create {
		return nil, nil
	}

	flow, err := h.sessions.Start()
	if err != nil {
		return nil, err
	}
	SetRegistrationCookie(w, flow.ID(), h.cookies)
	middleware.GetLogger(r.Context()).Info("registration started", "registration_id", flow.ID())
	return flow, nil
}

func (h *RegistrationHandler) stepData(r *http.Request, flow *registration.Flow, view registration.View) map[string]any {
	page := stepPages[view.Step]

	data := handler.BaseTemplateData(r)
	data["Values"] = view.Values
	data["Errors"] = view.Errors
	data["Busy"] = view.Busy
	data["StepPath"] = page.path
	data["BackPath"] = page.backPath
	if seller, ok := flow.Seller(); ok && view.Step == registration.StepRepresentative {
		data["Seller"] = &seller
	}
	return data
}

// formValues collects the posted values of the schema's fields. Fields
// missing from the form are left out so they keep their current value.
func formValues(r *http.Request, schema validation.Schema) map[string]string {
	values := make(map[string]string)
	for _, name := range schema.FieldNames() {
		if v, ok := r.PostForm[name]; ok && len(v) > 0 {
			values[name] = v[0]
		}
	}
	return values
}
