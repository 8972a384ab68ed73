package storefront

import (
	"context"
	"net/http"
	"time"

	"github.com/dukerupert/ferrovelho/internal/auth"
	"github.com/dukerupert/ferrovelho/internal/cookie"
	"github.com/dukerupert/ferrovelho/internal/domain"
	"github.com/dukerupert/ferrovelho/internal/handler"
	"github.com/dukerupert/ferrovelho/internal/middleware"
	"github.com/dukerupert/ferrovelho/internal/registration"
)

// Login results reported to LoginRecorder.
const (
	LoginSuccess  = "success"
	LoginInvalid  = "invalid"
	LoginRejected = "rejected"
)

// Authenticator checks login form values.
type Authenticator interface {
	Authenticate(ctx context.Context, values map[string]string) (*auth.Identity, error)
}

// TokenIssuer signs role claims.
type TokenIssuer interface {
	Issue(subject, role string) (string, error)
	TTL() time.Duration
}

// LoginRecorder counts login attempts by result.
type LoginRecorder interface {
	Login(result string)
}

// LoginHandler handles the login page and form submission
type LoginHandler struct {
	authenticator Authenticator
	tokens        TokenIssuer
	cookies       *cookie.Config
	renderer      *handler.Renderer
	metrics       LoginRecorder
}

// NewLoginHandler creates a new login handler. metrics may be nil.
func NewLoginHandler(
	authenticator Authenticator,
	tokens TokenIssuer,
	cookies *cookie.Config,
	renderer *handler.Renderer,
	metrics LoginRecorder,
) *LoginHandler {
	return &LoginHandler{
		authenticator: authenticator,
		tokens:        tokens,
		cookies:       cookies,
		renderer:      renderer,
		metrics:       metrics,
	}
}

// ShowForm handles GET /login - displays the login form
func (h *LoginHandler) ShowForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, map[string]string{}, map[string]string{}, "")
}

func (h *LoginHandler) render(w http.ResponseWriter, r *http.Request, status int, values, errs map[string]string, formError string) {
	data := handler.BaseTemplateData(r)
	data["Values"] = values
	data["Errors"] = errs
	if formError != "" {
		data["Error"] = formError
	}
	h.renderer.RenderStatus(w, status, "login", data)
}

// HandleSubmit handles POST /login - checks the credentials and sets the
// role claim cookie
func (h *LoginHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := middleware.GetLogger(ctx)

	if err := r.ParseForm(); err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("storefront.Login", "Formulário inválido"))
		return
	}

	values := map[string]string{
		auth.FieldEmail:    r.PostFormValue(auth.FieldEmail),
		auth.FieldPassword: r.PostFormValue(auth.FieldPassword),
	}
	// Only the email is echoed back into the form.
	shown := map[string]string{auth.FieldEmail: values[auth.FieldEmail]}

	identity, err := h.authenticator.Authenticate(ctx, values)
	switch {
	case err == nil:
	case domain.IsValidationError(err):
		h.record(LoginInvalid)
		h.render(w, r, http.StatusUnprocessableEntity, shown, domain.GetValidationFields(err), "")
		return
	case domain.IsCode(err, domain.EUNAUTHORIZED):
		h.record(LoginRejected)
		logger.Info("login rejected")
		h.render(w, r, http.StatusUnauthorized, shown, map[string]string{}, auth.MsgInvalidCredentials)
		return
	default:
		handler.InternalErrorResponse(w, r, err)
		return
	}

	token, err := h.tokens.Issue(identity.Email, identity.Role)
	if err != nil {
		handler.InternalErrorResponse(w, r, err)
		return
	}
	h.cookies.Set(w, cookie.RoleCookieName, token, h.tokens.TTL())
	h.record(LoginSuccess)

	logger.Info("login succeeded", "role", identity.Role)
	http.Redirect(w, r, registration.RouteSeller, http.StatusSeeOther)
}

func (h *LoginHandler) record(result string) {
	if h.metrics != nil {
		h.metrics.Login(result)
	}
}

// LogoutHandler clears the role claim
type LogoutHandler struct {
	cookies *cookie.Config
}

// NewLogoutHandler creates a new logout handler
func NewLogoutHandler(cookies *cookie.Config) *LogoutHandler {
	return &LogoutHandler{cookies: cookies}
}

// HandleSubmit handles POST /logout
func (h *LogoutHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	h.cookies.Clear(w, cookie.RoleCookieName)
	http.Redirect(w, r, registration.RouteHome, http.StatusSeeOther)
}
