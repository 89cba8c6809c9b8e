package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	identityToolkitURL = "https://identitytoolkit.googleapis.com/v1"
	secureTokenURL     = "https://securetoken.googleapis.com/v1"
)

// FirebaseAuthRestClient talks to the Firebase Auth REST API with the web
// API key, for the flows the Admin SDK does not cover (password sign in,
// sign up and refresh token exchange).
type FirebaseAuthRestClient struct {
	apiKey          string
	projectId       string
	identityBaseURL string
	tokenBaseURL    string
	httpClient      *http.Client
}

func NewFirebaseAuthRestClient(apiKey string, projectId string) *FirebaseAuthRestClient {
	return &FirebaseAuthRestClient{
		apiKey:          apiKey,
		projectId:       projectId,
		identityBaseURL: identityToolkitURL,
		tokenBaseURL:    secureTokenURL,
		httpClient: &http.Client{
			Timeout: time.Second * 100,
		},
	}
}

// WithBaseURL points both endpoints at baseURL, for emulators and tests.
func (f *FirebaseAuthRestClient) WithBaseURL(baseURL string) *FirebaseAuthRestClient {
	f.identityBaseURL = baseURL
	f.tokenBaseURL = baseURL
	return f
}

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *ErrorResponse) Error() string {
	return fmt.Sprintf("Google Identity Toolkit returned error: %v %v", e.Message, e.Code)
}

type IdTokenResponse struct {
	IdToken      string         `json:"idToken"`
	Email        string         `json:"email"`
	RefreshToken string         `json:"refreshToken"`
	ExpiresIn    string         `json:"expiresIn"`
	LocalId      string         `json:"localId"`
	Registered   bool           `json:"registered"`
	Error        *ErrorResponse `json:"error"`
}

func (f *FirebaseAuthRestClient) SignInWithEmailAndPassword(ctx context.Context, email string, password string) (IdTokenResponse, error) {
	body := map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}
	response := IdTokenResponse{}
	err := f.postJSON(ctx, f.identityBaseURL+"/accounts:signInWithPassword?key="+f.apiKey, body, &response)
	return response, err
}

func (f *FirebaseAuthRestClient) SignUpWithEmailAndPassword(ctx context.Context, email string, password string) (IdTokenResponse, error) {
	body := map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}
	response := IdTokenResponse{}
	err := f.postJSON(ctx, f.identityBaseURL+"/accounts:signUp?key="+f.apiKey, body, &response)
	return response, err
}

type RefreshTokenResponse struct {
	IdToken      string         `json:"id_token"`
	RefreshToken string         `json:"refresh_token"`
	ExpiresIn    string         `json:"expires_in"`
	UserId       string         `json:"user_id"`
	Error        *ErrorResponse `json:"error"`
}

// RefreshIdToken exchanges a refresh token for a new id token.
func (f *FirebaseAuthRestClient) RefreshIdToken(ctx context.Context, refreshToken string) (RefreshTokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	req, err := http.NewRequestWithContext(ctx, "POST", f.tokenBaseURL+"/token?key="+f.apiKey, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return RefreshTokenResponse{}, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	response := RefreshTokenResponse{}
	err = f.do(req, &response)
	return response, err
}

func (f *FirebaseAuthRestClient) postJSON(ctx context.Context, url string, body any, out any) error {
	bodyJson, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(bodyJson))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return f.do(req, out)
}

// do decodes the body regardless of status; provider errors arrive in the
// "error" field of the response.
func (f *FirebaseAuthRestClient) do(req *http.Request, out any) error {
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()
	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response: %w", err)
	}
	err = json.Unmarshal(respBytes, out)
	if err != nil {
		return fmt.Errorf("error decoding response (status %d): %w", resp.StatusCode, err)
	}
	return nil
}
