package server

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/bjarke-xyz/portfolio/internal/domain"
	"github.com/bjarke-xyz/portfolio/internal/server/html"
	"github.com/bjarke-xyz/portfolio/internal/service"
	"github.com/samber/lo"
)

var idTokenCookieKey = "ID_TOKEN"
var refreshTokenCookieKey = "REFRESH_TOKEN"

const loginPath = "/admin/login"

var (
	SessionCtxKey = &contextKey{"Session"}
)

// TokenVerifier is the part of the Firebase Admin auth client the gate uses.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// PasswordAuth is the Firebase Auth REST API.
type PasswordAuth interface {
	SignInWithEmailAndPassword(ctx context.Context, email string, password string) (service.IdTokenResponse, error)
	SignUpWithEmailAndPassword(ctx context.Context, email string, password string) (service.IdTokenResponse, error)
	RefreshIdToken(ctx context.Context, refreshToken string) (service.RefreshTokenResponse, error)
}

func (s *server) handleGetLogin(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.currentSession(w, r); ok {
		http.Redirect(w, r, "/admin/", http.StatusSeeOther)
		return
	}
	s.render(w, http.StatusOK, func(wr io.Writer) error {
		return html.LoginPage(wr, html.LoginParams{Base: html.Base{Title: "Login", Errors: queryErrors(r)}})
	})
}

func (s *server) handleGetRegister(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, func(wr io.Writer) error {
		return html.RegisterPage(wr, html.LoginParams{Base: html.Base{Title: "Register"}})
	})
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.passwordFlow(w, r, "sign_in", s.authClient.SignInWithEmailAndPassword, html.LoginPage, "Login")
}

func (s *server) handleRegister(w http.ResponseWriter, r *http.Request) {
	s.passwordFlow(w, r, "sign_up", s.authClient.SignUpWithEmailAndPassword, html.RegisterPage, "Register")
}

type passwordFunc func(ctx context.Context, email string, password string) (service.IdTokenResponse, error)

// passwordFlow signs in or up, sets the session cookies and continues to
// the admin list. Rejections are shown on the same form.
func (s *server) passwordFlow(w http.ResponseWriter, r *http.Request, flow string, call passwordFunc, page func(io.Writer, html.LoginParams) error, title string) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	fail := func(status int, err error) {
		authAttempts.WithLabelValues(flow, resultLabel(err)).Inc()
		s.render(w, status, func(wr io.Writer) error {
			return page(wr, html.LoginParams{
				Base:  html.Base{Title: title, Errors: []string{domain.Message(err)}},
				Email: email,
			})
		})
	}
	if email == "" || password == "" {
		fail(http.StatusUnprocessableEntity, domain.NewValidationError("email and password are required"))
		return
	}

	resp, err := call(r.Context(), email, password)
	if err != nil {
		s.logger.Error("failed to call auth provider", "error", err, "flow", flow)
		fail(http.StatusBadGateway, domain.NewBackendError("internal error", err))
		return
	}
	if resp.Error != nil {
		fail(http.StatusUnauthorized, domain.NewAuthError(authMessage(resp.Error.Message), resp.Error))
		return
	}

	authAttempts.WithLabelValues(flow, resultLabel(nil)).Inc()
	s.setSessionCookies(w, resp.IdToken, resp.RefreshToken)
	http.Redirect(w, r, "/admin/", http.StatusSeeOther)
}

var authMessages = map[string]string{
	"INVALID_LOGIN_CREDENTIALS":   "Invalid email or password",
	"INVALID_PASSWORD":            "Invalid email or password",
	"EMAIL_NOT_FOUND":             "Invalid email or password",
	"INVALID_EMAIL":               "Enter a valid email address",
	"EMAIL_EXISTS":                "An account with this email already exists",
	"WEAK_PASSWORD":               "Password must be at least 6 characters",
	"USER_DISABLED":               "This account has been disabled",
	"TOO_MANY_ATTEMPTS_TRY_LATER": "Too many attempts, try again later",
	"OPERATION_NOT_ALLOWED":       "Sign up is disabled",
}

// authMessage turns an Identity Toolkit error code, optionally followed by
// " : details", into text for the form.
func authMessage(code string) string {
	code, _, _ = strings.Cut(code, " ")
	if msg, ok := authMessages[code]; ok {
		return msg
	}
	return "Authentication failed"
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if session, ok := s.currentSession(w, r); ok {
		err := s.verifier.RevokeRefreshTokens(r.Context(), session.UserID)
		if err != nil {
			s.logger.Error("failed to revoke refresh tokens", "error", err, "userId", session.UserID)
		}
	}
	s.clearSessionCookies(w)
	http.Redirect(w, r, loginPath, http.StatusSeeOther)
}

func (s *server) setSessionCookies(w http.ResponseWriter, idToken string, refreshToken string) {
	// 5 days
	cookieExpires := time.Now().Add(5 * 24 * time.Hour)

	for name, value := range map[string]string{idTokenCookieKey: idToken, refreshTokenCookieKey: refreshToken} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     "/",
			Expires:  cookieExpires,
			HttpOnly: true,
			Secure:   s.secureCookies,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func (s *server) clearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{idTokenCookieKey, refreshTokenCookieKey} {
		http.SetCookie(w, &http.Cookie{
			Name:   name,
			Value:  "",
			Path:   "/",
			MaxAge: -1,
		})
	}
}

// currentSession verifies the id token cookie. An expired token is
// exchanged once using the refresh token cookie; any other failure means
// there is no session.
func (s *server) currentSession(w http.ResponseWriter, r *http.Request) (domain.Session, bool) {
	idTokenCookie, ok := lo.Find(r.Cookies(), func(c *http.Cookie) bool { return c.Name == idTokenCookieKey })
	if !ok || len(idTokenCookie.Value) == 0 {
		return domain.Session{}, false
	}

	ctx := r.Context()
	token, err := s.verifier.VerifyIDToken(ctx, idTokenCookie.Value)
	if err != nil {
		if !s.isTokenExpired(err) {
			s.logger.Info("rejected id token", "error", err)
			return domain.Session{}, false
		}
		token, err = s.refreshSession(w, r)
		if err != nil {
			s.logger.Info("failed to refresh session", "error", err)
			return domain.Session{}, false
		}
	}
	session := sessionFromToken(token)
	if !session.Valid(time.Now()) {
		return domain.Session{}, false
	}
	return session, true
}

func (s *server) refreshSession(w http.ResponseWriter, r *http.Request) (*auth.Token, error) {
	refreshTokenCookie, ok := lo.Find(r.Cookies(), func(c *http.Cookie) bool { return c.Name == refreshTokenCookieKey })
	if !ok || len(refreshTokenCookie.Value) == 0 {
		return nil, domain.NewAuthError("no refresh token", nil)
	}
	resp, err := s.authClient.RefreshIdToken(r.Context(), refreshTokenCookie.Value)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	token, err := s.verifier.VerifyIDToken(r.Context(), resp.IdToken)
	if err != nil {
		return nil, err
	}
	s.setSessionCookies(w, resp.IdToken, resp.RefreshToken)
	return token, nil
}

func sessionFromToken(token *auth.Token) domain.Session {
	email, _ := token.Claims["email"].(string)
	return domain.Session{
		UserID:    token.UID,
		Email:     email,
		ExpiresAt: time.Unix(token.Expires, 0),
	}
}

// sessionGate lets requests with a session through and sends everyone else
// to the login page. JSON clients get a 401 instead of a redirect.
func (s *server) sessionGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := s.currentSession(w, r)
		if !ok {
			if strings.Contains(r.Header.Get("Accept"), "application/json") {
				jsonResponse(w, http.StatusUnauthorized, errorBody{Error: "not signed in"})
				return
			}
			http.Redirect(w, r, loginPath, http.StatusSeeOther)
			return
		}
		ctx := NewSessionContext(r.Context(), session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type contextKey struct {
	name string
}

func NewSessionContext(ctx context.Context, session domain.Session) context.Context {
	return context.WithValue(ctx, SessionCtxKey, session)
}

func SessionFromContext(ctx context.Context) (domain.Session, bool) {
	session, ok := ctx.Value(SessionCtxKey).(domain.Session)
	return session, ok
}
