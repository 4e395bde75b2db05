package kite

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	loginURL   = "https://kite.zerodha.com/connect/login"
	kiteAPIURL = "https://api.kite.trade"

	// Every request carries the API version header.
	apiVersion = "3"
)

// Session is the payload returned by a successful token exchange.
type Session struct {
	UserID      string `json:"user_id"`
	UserName    string `json:"user_name"`
	AccessToken string `json:"access_token"`
	PublicToken string `json:"public_token"`
	LoginTime   string `json:"login_time"`
}

// Auth manages the Kite Connect session: the request-token exchange, the
// auth headers every API call carries, and session validation. Access
// tokens expire daily, so a fresh login is needed each trading day.
type Auth struct {
	apiKey    string
	apiSecret string
	baseURL   string
	client    *http.Client

	mu          sync.RWMutex
	accessToken string
	publicToken string
}

func NewAuth(apiKey, apiSecret, accessToken string) *Auth {
	return &Auth{
		apiKey:      apiKey,
		apiSecret:   apiSecret,
		accessToken: accessToken,
		baseURL:     kiteAPIURL,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

// Checksum returns the SHA-256 digest the session endpoint expects:
// sha256(api_key + request_token + api_secret).
func Checksum(apiKey, requestToken, apiSecret string) string {
	sum := sha256.Sum256([]byte(apiKey + requestToken + apiSecret))
	return hex.EncodeToString(sum[:])
}

// LoginURL returns the browser URL where the operator completes the daily
// login and obtains a request token.
func (a *Auth) LoginURL() string {
	return fmt.Sprintf("%s?api_key=%s&v=%s", loginURL, a.apiKey, apiVersion)
}

// GenerateSession exchanges a request token for an access token.
func (a *Auth) GenerateSession(ctx context.Context, requestToken string) (*Session, error) {
	form := url.Values{}
	form.Set("api_key", a.apiKey)
	form.Set("request_token", requestToken)
	form.Set("checksum", Checksum(a.apiKey, requestToken, a.apiSecret))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.baseURL+"/session/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Kite-Version", apiVersion)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("session request failed: %w", err)
	}
	defer resp.Body.Close()

	var envelope struct {
		Status    string  `json:"status"`
		Message   string  `json:"message"`
		ErrorType string  `json:"error_type"`
		Data      Session `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode session response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || envelope.Status != "success" {
		return nil, &APIError{Status: resp.StatusCode, ErrorType: envelope.ErrorType, Message: envelope.Message}
	}

	a.mu.Lock()
	a.accessToken = envelope.Data.AccessToken
	a.publicToken = envelope.Data.PublicToken
	a.mu.Unlock()

	return &envelope.Data, nil
}

// ValidateSession checks the access token against the profile endpoint.
func (a *Auth) ValidateSession(ctx context.Context) error {
	if !a.HasToken() {
		return ErrNotAuthenticated
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/user/profile", nil)
	if err != nil {
		return err
	}
	a.setHeaders(req)

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("profile request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var envelope struct {
			Message   string `json:"message"`
			ErrorType string `json:"error_type"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		return &APIError{Status: resp.StatusCode, ErrorType: envelope.ErrorType, Message: envelope.Message}
	}
	return nil
}

// Logout invalidates the session token.
func (a *Auth) Logout(ctx context.Context) error {
	if !a.HasToken() {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, a.baseURL+"/session/token", nil)
	if err != nil {
		return err
	}
	a.setHeaders(req)

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &APIError{Status: resp.StatusCode, Message: "logout failed"}
	}

	a.mu.Lock()
	a.accessToken = ""
	a.publicToken = ""
	a.mu.Unlock()
	return nil
}

// HasToken reports whether an access token is present (not necessarily
// still valid; ValidateSession decides that).
func (a *Auth) HasToken() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.accessToken != ""
}

// AccessToken returns the current access token.
func (a *Auth) AccessToken() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.accessToken
}

// APIKey returns the configured API key.
func (a *Auth) APIKey() string {
	return a.apiKey
}

func (a *Auth) setHeaders(req *http.Request) {
	a.mu.RLock()
	token := a.accessToken
	a.mu.RUnlock()

	req.Header.Set("Authorization", fmt.Sprintf("token %s:%s", a.apiKey, token))
	req.Header.Set("X-Kite-Version", apiVersion)
}
