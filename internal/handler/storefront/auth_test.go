package storefront

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dukerupert/ferrovelho/internal/auth"
	"github.com/dukerupert/ferrovelho/internal/cookie"
	"github.com/dukerupert/ferrovelho/internal/handler"
	"github.com/dukerupert/ferrovelho/internal/registration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginCounter map[string]int

func (c loginCounter) Login(result string) { c[result]++ }

func newLoginHandler(t *testing.T) (*LoginHandler, *auth.Tokens, loginCounter) {
	t.Helper()

	renderer, err := handler.NewRenderer(handler.Templates(), quietLogger())
	require.NoError(t, err)
	authenticator, err := auth.NewAuthenticator("admin@ferrovelho.com.br", "segredo123")
	require.NoError(t, err)
	tokens, err := auth.NewTokens("test-secret", time.Hour)
	require.NoError(t, err)

	counter := loginCounter{}
	return NewLoginHandler(authenticator, tokens, cookie.NewConfig("", false), renderer, counter), tokens, counter
}

func postLogin(h *LoginHandler, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.HandleSubmit(rec, req)
	return rec
}

func TestLoginHandler_ShowForm(t *testing.T) {
	h, _, _ := newLoginHandler(t)

	rec := httptest.NewRecorder()
	h.ShowForm(rec, httptest.NewRequest(http.MethodGet, "/login", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="senha"`)
}

func TestLoginHandler_HandleSubmit(t *testing.T) {
	tests := []struct {
		name       string
		form       url.Values
		wantStatus int
		wantBody   string
		wantResult string
	}{
		{
			name:       "malformed email",
			form:       url.Values{"email": {"admin"}, "senha": {"segredo123"}},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   "Email inválido",
			wantResult: LoginInvalid,
		},
		{
			name:       "wrong password",
			form:       url.Values{"email": {"admin@ferrovelho.com.br"}, "senha": {"errada123"}},
			wantStatus: http.StatusUnauthorized,
			wantBody:   auth.MsgInvalidCredentials,
			wantResult: LoginRejected,
		},
		{
			name:       "unknown email",
			form:       url.Values{"email": {"outro@ferrovelho.com.br"}, "senha": {"segredo123"}},
			wantStatus: http.StatusUnauthorized,
			wantBody:   auth.MsgInvalidCredentials,
			wantResult: LoginRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, counter := newLoginHandler(t)

			rec := postLogin(h, tt.form)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			assert.Empty(t, rec.Result().Cookies(), "no role cookie on failure")
			assert.Equal(t, 1, counter[tt.wantResult])
		})
	}
}

func TestLoginHandler_SetsRoleCookie(t *testing.T) {
	h, tokens, counter := newLoginHandler(t)

	rec := postLogin(h, url.Values{"email": {"Admin@Ferrovelho.com.br"}, "senha": {"segredo123"}})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, registration.RouteSeller, rec.Header().Get("Location"))
	assert.Equal(t, 1, counter[LoginSuccess])

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, cookie.RoleCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/cadastro/vendedor", nil)
	req.AddCookie(cookies[0])
	assert.Equal(t, auth.RoleAdmin, tokens.Role(req))
}

func TestLogoutHandler_ClearsRoleCookie(t *testing.T) {
	h := NewLogoutHandler(cookie.NewConfig("", false))

	rec := httptest.NewRecorder()
	h.HandleSubmit(rec, httptest.NewRequest(http.MethodPost, "/logout", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, cookie.RoleCookieName, cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
}
