package server

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func formRequest(method string, target string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestSessionGate_RedirectsWithoutSession(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/admin/", "/admin/new"} {
		rec := env.do(httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusSeeOther, rec.Code, path)
		assert.Equal(t, loginPath, rec.Header().Get("Location"), path)
	}
}

func TestSessionGate_RejectsInvalidToken(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/admin/", nil)
	req.AddCookie(&http.Cookie{Name: idTokenCookieKey, Value: "forged"})

	rec := env.do(req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, loginPath, rec.Header().Get("Location"))
}

func TestSessionGate_JSONClientsGetUnauthorized(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/admin/upload", nil)
	req.Header.Set("Accept", "application/json")

	rec := env.do(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"not signed in"}`, rec.Body.String())
}

func TestSessionGate_AllowsSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(signedIn(httptest.NewRequest(http.MethodGet, "/admin/", nil)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Applications")
	assert.Contains(t, rec.Body.String(), "Sign out")
}

func TestSessionGate_RefreshesExpiredToken(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/admin/", nil)
	req.AddCookie(&http.Cookie{Name: idTokenCookieKey, Value: "expired"})
	req.AddCookie(&http.Cookie{Name: refreshTokenCookieKey, Value: "refresh"})

	rec := env.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	idToken := responseCookie(rec, idTokenCookieKey)
	require.NotNil(t, idToken)
	assert.Equal(t, "good", idToken.Value)
	assert.True(t, idToken.HttpOnly)
	assert.Equal(t, "refresh-2", responseCookie(rec, refreshTokenCookieKey).Value)
}

func TestSessionGate_ExpiredTokenWithBadRefreshToken(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/admin/", nil)
	req.AddCookie(&http.Cookie{Name: idTokenCookieKey, Value: "expired"})
	req.AddCookie(&http.Cookie{Name: refreshTokenCookieKey, Value: "stale"})

	rec := env.do(req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, loginPath, rec.Header().Get("Location"))
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(formRequest(http.MethodPost, "/admin/login", url.Values{"email": {"admin@example.com"}, "password": {"hunter22"}}))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/", rec.Header().Get("Location"))
	require.NotNil(t, responseCookie(rec, idTokenCookieKey))
	assert.Equal(t, "good", responseCookie(rec, idTokenCookieKey).Value)
	assert.Equal(t, "refresh", responseCookie(rec, refreshTokenCookieKey).Value)
}

func TestLogin_Rejected(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(formRequest(http.MethodPost, "/admin/login", url.Values{"email": {"admin@example.com"}, "password": {"wrong"}}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password")
	assert.NotContains(t, rec.Body.String(), "INVALID_LOGIN_CREDENTIALS")
	assert.Contains(t, rec.Body.String(), `value="admin@example.com"`)
	assert.Nil(t, responseCookie(rec, idTokenCookieKey))
}

func TestLogin_MissingFields(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(formRequest(http.MethodPost, "/admin/login", url.Values{"email": {"admin@example.com"}}))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "email and password are required")
}

func TestLogin_ProviderUnavailable(t *testing.T) {
	env := newTestEnv(t)
	env.passwords.err = assert.AnError

	rec := env.do(formRequest(http.MethodPost, "/admin/login", url.Values{"email": {"admin@example.com"}, "password": {"hunter22"}}))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal error")
}

func TestGetLogin_RedirectsWhenSignedIn(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(signedIn(httptest.NewRequest(http.MethodGet, "/admin/login", nil)))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/", rec.Header().Get("Location"))

	rec = env.do(httptest.NewRequest(http.MethodGet, "/admin/login", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Admin sign in")
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(formRequest(http.MethodPost, "/admin/register", url.Values{"email": {"new@example.com"}, "password": {"secret123"}}))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/", rec.Header().Get("Location"))
	assert.Equal(t, "secret123", env.passwords.users["new@example.com"])

	rec = env.do(formRequest(http.MethodPost, "/admin/register", url.Values{"email": {"new@example.com"}, "password": {"secret123"}}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "An account with this email already exists")
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(signedIn(httptest.NewRequest(http.MethodPost, "/admin/logout", nil)))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, loginPath, rec.Header().Get("Location"))
	assert.Equal(t, []string{"user-1"}, env.verifier.revoked)

	cleared := responseCookie(rec, idTokenCookieKey)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Equal(t, -1, cleared.MaxAge)
}

func TestAuthMessage(t *testing.T) {
	assert.Equal(t, "Invalid email or password", authMessage("INVALID_PASSWORD"))
	assert.Equal(t, "Password must be at least 6 characters", authMessage("WEAK_PASSWORD : Password should be at least 6 characters"))
	assert.Equal(t, "Authentication failed", authMessage("SOMETHING_NEW"))
}

func TestGetLogin_IgnoresUnknownErrorText(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/admin/login?error=Account+locked,+email+support@evil.example", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "evil.example")
}
