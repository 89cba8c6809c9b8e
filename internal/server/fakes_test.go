package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/bjarke-xyz/portfolio/internal/repository"
	"github.com/bjarke-xyz/portfolio/internal/service"
	"github.com/stretchr/testify/require"
)

var errTokenExpired = errors.New("ID token has expired")

type fakeVerifier struct {
	mu      sync.Mutex
	tokens  map[string]*auth.Token
	revoked []string
}

func newFakeVerifier() *fakeVerifier {
	return &fakeVerifier{tokens: map[string]*auth.Token{
		"good": {
			UID:     "user-1",
			Expires: time.Now().Add(time.Hour).Unix(),
			Claims:  map[string]interface{}{"email": "admin@example.com"},
		},
	}}
}

func (f *fakeVerifier) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	if idToken == "expired" {
		return nil, errTokenExpired
	}
	tok, ok := f.tokens[idToken]
	if !ok {
		return nil, errors.New("invalid id token")
	}
	return tok, nil
}

func (f *fakeVerifier) RevokeRefreshTokens(ctx context.Context, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked = append(f.revoked, uid)
	return nil
}

type fakePasswordAuth struct {
	mu    sync.Mutex
	users map[string]string
	err   error
}

func (f *fakePasswordAuth) SignInWithEmailAndPassword(ctx context.Context, email string, password string) (service.IdTokenResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return service.IdTokenResponse{}, f.err
	}
	if pw, ok := f.users[email]; !ok || pw != password {
		return service.IdTokenResponse{Error: &service.ErrorResponse{Code: 400, Message: "INVALID_LOGIN_CREDENTIALS"}}, nil
	}
	return service.IdTokenResponse{IdToken: "good", RefreshToken: "refresh", LocalId: "user-1", Email: email}, nil
}

func (f *fakePasswordAuth) SignUpWithEmailAndPassword(ctx context.Context, email string, password string) (service.IdTokenResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return service.IdTokenResponse{}, f.err
	}
	if _, ok := f.users[email]; ok {
		return service.IdTokenResponse{Error: &service.ErrorResponse{Code: 400, Message: "EMAIL_EXISTS"}}, nil
	}
	f.users[email] = password
	return service.IdTokenResponse{IdToken: "good", RefreshToken: "refresh", LocalId: "user-1", Email: email}, nil
}

func (f *fakePasswordAuth) RefreshIdToken(ctx context.Context, refreshToken string) (service.RefreshTokenResponse, error) {
	if refreshToken != "refresh" {
		return service.RefreshTokenResponse{Error: &service.ErrorResponse{Code: 400, Message: "INVALID_REFRESH_TOKEN"}}, nil
	}
	return service.RefreshTokenResponse{IdToken: "good", RefreshToken: "refresh-2", UserId: "user-1"}, nil
}

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func (f *fakeStore) EnsureBucket(ctx context.Context) error { return nil }

func (f *fakeStore) Upload(ctx context.Context, key string, contentType string, r io.Reader) error {
	if f.err != nil {
		return f.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = b
	return nil
}

func (f *fakeStore) PublicURL(key string) string {
	return service.PublicObjectURL("test-bucket", key)
}

type testEnv struct {
	srv       *server
	handler   http.Handler
	repo      *repository.MemoryAppRepository
	store     *fakeStore
	verifier  *fakeVerifier
	passwords *fakePasswordAuth
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	env := &testEnv{
		repo:      repository.NewMemoryApp(),
		store:     &fakeStore{objects: map[string][]byte{}},
		verifier:  newFakeVerifier(),
		passwords: &fakePasswordAuth{users: map[string]string{"admin@example.com": "hunter22"}},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv, err := NewServer(ctx, logger, Options{
		Verifier:      env.verifier,
		AuthClient:    env.passwords,
		Apps:          env.repo,
		Images:        env.store,
		ImageMaxBytes: 1 << 20,
	})
	require.NoError(t, err)
	srv.isTokenExpired = func(err error) bool { return errors.Is(err, errTokenExpired) }
	env.srv = srv
	env.handler = srv.routes()
	return env
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func signedIn(req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{Name: idTokenCookieKey, Value: "good"})
	return req
}

func multipartBody(t *testing.T, fields map[string]string, fileField string, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")
