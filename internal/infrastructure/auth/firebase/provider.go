// Package firebase delegates sign-in and sign-up to the Firebase Identity
// Toolkit REST API
package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pantrysense/v2/internal/domain/user"
	"github.com/pantrysense/v2/internal/ports/outbound"
	"github.com/pantrysense/v2/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// DefaultBaseURL is the public Identity Toolkit endpoint
const DefaultBaseURL = "https://identitytoolkit.googleapis.com/v1"

// Config holds the project API key
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Provider implements outbound.AuthProvider
type Provider struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewProvider creates a Firebase auth provider
func NewProvider(cfg Config, logger *zap.Logger) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Provider{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger.Named("firebase-auth"),
	}
}

type passwordRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type accountResponse struct {
	LocalID        string `json:"localId"`
	Email          string `json:"email"`
	DisplayName    string `json:"displayName"`
	ProfilePicture string `json:"profilePicture"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SignIn implements outbound.AuthProvider
func (p *Provider) SignIn(ctx context.Context, creds user.Credentials) (*user.Identity, error) {
	return p.call(ctx, "accounts:signInWithPassword", creds)
}

// SignUp implements outbound.AuthProvider
func (p *Provider) SignUp(ctx context.Context, creds user.Credentials) (*user.Identity, error) {
	return p.call(ctx, "accounts:signUp", creds)
}

// SignOut has nothing to call: Identity Toolkit sessions live on the client,
// and the session token is revoked by the caller.
func (p *Provider) SignOut(ctx context.Context, uid string) error {
	p.logger.Debug("Sign-out acknowledged", zap.String("uid", uid))
	return nil
}

func (p *Provider) call(ctx context.Context, method string, creds user.Credentials) (*user.Identity, error) {
	body, err := json.Marshal(passwordRequest{
		Email:             creds.Email,
		Password:          creds.Password,
		ReturnSecureToken: true,
	})
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/%s?key=%s", p.baseURL, method, url.QueryEscape(p.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errors.NewExternalServiceError("firebase-auth", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, errors.NewExternalServiceError("firebase-auth", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if err := json.Unmarshal(data, &apiErr); err != nil || apiErr.Error.Message == "" {
			return nil, fmt.Errorf("identity toolkit returned status %d", resp.StatusCode)
		}
		return nil, reason(apiErr.Error.Message)
	}

	var account accountResponse
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, fmt.Errorf("decode account: %w", err)
	}
	if account.LocalID == "" {
		return nil, fmt.Errorf("identity toolkit returned no user id")
	}

	return &user.Identity{
		UID:         account.LocalID,
		Email:       account.Email,
		DisplayName: account.DisplayName,
		PhotoURL:    account.ProfilePicture,
	}, nil
}

// reason maps Identity Toolkit error codes onto domain errors. Codes may carry
// a detail suffix such as "WEAK_PASSWORD : Password should be at least 6 characters".
func reason(message string) error {
	code, detail, _ := strings.Cut(message, ":")
	code = strings.TrimSpace(code)

	switch code {
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "INVALID_EMAIL":
		return user.ErrInvalidCredentials
	case "EMAIL_EXISTS":
		return user.ErrEmailExists
	}

	text := strings.TrimSpace(detail)
	if text == "" {
		text = strings.ToLower(strings.ReplaceAll(code, "_", " "))
		text = strings.ToUpper(text[:1]) + text[1:]
	}
	return errors.NewAuthError(text, nil)
}

var _ outbound.AuthProvider = (*Provider)(nil)
