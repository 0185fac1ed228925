package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

const (
	passwordLoginPath         = "auth/login"
	otpLoginPath              = "auth/login/otp"
	registerPath              = "auth/register"
	responseBodyReadLimit     = 64 * 1024
	alreadyRegisteredPhrase   = "already registered"
	defaultTimeout            = 10 * time.Second
	invalidCredentialsMessage = "Invalid credentials"
)

var errBaseURLRequired = errors.New("auth service base url is required")

// Client calls the external credential and OTP service.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// NewClient builds the auth service client for baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}

	client := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return client, nil
}

// PasswordLogin is the credential payload.
type PasswordLogin struct {
	AuthenticationID string `json:"authenticationId"`
	Password         string `json:"password"`
}

// OTPLogin is the one-time-password payload.
type OTPLogin struct {
	AuthenticationID string `json:"authenticationId"`
	OTP              string `json:"otp"`
}

// Registration is the sign-up payload.
type Registration struct {
	AuthenticationID string `json:"authenticationId"`
	Password         string `json:"password"`
	Name             string `json:"name,omitempty"`
}

// TokenResponse is the auth service reply.
type TokenResponse struct {
	Token      string `json:"token"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message,omitempty"`
}

// LoginPassword exchanges credentials for an access token.
func (c *Client) LoginPassword(ctx context.Context, req PasswordLogin) (*TokenResponse, error) {
	if strings.TrimSpace(req.AuthenticationID) == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "authentication id and password are required")
	}
	return c.post(ctx, passwordLoginPath, req)
}

// LoginOTP exchanges a one-time password for an access token.
func (c *Client) LoginOTP(ctx context.Context, req OTPLogin) (*TokenResponse, error) {
	if strings.TrimSpace(req.AuthenticationID) == "" || strings.TrimSpace(req.OTP) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "authentication id and otp are required")
	}
	return c.post(ctx, otpLoginPath, req)
}

// Register creates an account. The returned token may be empty when the service requires a
// separate login.
func (c *Client) Register(ctx context.Context, req Registration) (*TokenResponse, error) {
	if strings.TrimSpace(req.AuthenticationID) == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "authentication id and password are required")
	}
	return c.post(ctx, registerPath, req)
}

func (c *Client) post(ctx context.Context, path string, body any) (*TokenResponse, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "auth client not configured")
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal auth request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+path, bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build auth request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute auth request")
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read auth response")
	}

	var out TokenResponse
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil && resp.StatusCode < 300 {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode auth response")
		}
	}
	if out.StatusCode == 0 {
		out.StatusCode = resp.StatusCode
	}
	if resp.StatusCode >= 300 && out.StatusCode < 300 {
		out.StatusCode = resp.StatusCode
	}
	if out.Message == "" && resp.StatusCode >= 300 {
		out.Message = strings.TrimSpace(string(raw))
	}

	if err := classify(out); err != nil {
		return nil, err
	}
	return &out, nil
}

// classify maps a non-2xx auth reply to an error code. The status code decides first; the
// "already registered" phrase is only consulted when the status is not conclusive.
func classify(resp TokenResponse) error {
	status := resp.StatusCode
	if status >= 200 && status < 300 {
		return nil
	}
	switch status {
	case http.StatusUnauthorized:
		return pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	case http.StatusConflict:
		return pkgerrors.New(pkgerrors.CodeConflict, conflictMessage(resp.Message))
	case http.StatusTooManyRequests:
		return pkgerrors.New(pkgerrors.CodeRateLimit, "too many login attempts")
	}
	if strings.Contains(strings.ToLower(resp.Message), alreadyRegisteredPhrase) {
		return pkgerrors.New(pkgerrors.CodeConflict, conflictMessage(resp.Message))
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", status, resp.Message), "auth service request failed")
}

func conflictMessage(msg string) string {
	if strings.TrimSpace(msg) == "" {
		return "account already registered"
	}
	return msg
}
