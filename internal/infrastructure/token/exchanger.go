// Package token owns the OAuth credential lifecycle for delivery platforms:
// acquiring the broad-scope app token, refreshing it before expiry, and the
// one-time provisioning flow that spends the narrow-scope user token.
package token

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/RabbirReaper/online-order-system-sub004/internal/domain/platform"
)

// maxTokenResponseSize limits the token endpoint response body size
const maxTokenResponseSize = 1 * 1024 * 1024 // 1MB max response

// ExchangerConfig holds the OAuth client settings for one platform.
type ExchangerConfig struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
	Timeout      time.Duration
}

// Validate checks that the configuration is usable.
func (c *ExchangerConfig) Validate() error {
	if c.TokenURL == "" {
		return errors.New("token: token URL is required")
	}
	if c.ClientID == "" || c.ClientSecret == "" {
		return errors.New("token: client credentials are required")
	}
	return nil
}

// HTTPExchanger implements TokenExchanger against a standard OAuth2 token
// endpoint with form-encoded grants. Both supported platforms speak this
// dialect; per-platform deviations live in configuration, not code.
type HTTPExchanger struct {
	config     ExchangerConfig
	httpClient *http.Client
}

// NewHTTPExchanger creates an exchanger for one platform's token endpoint.
func NewHTTPExchanger(config ExchangerConfig) (*HTTPExchanger, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPExchanger{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// ClientCredentials performs the client-credentials grant for the app token.
func (e *HTTPExchanger) ClientCredentials(ctx context.Context) (*platform.TokenGrant, error) {
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {e.config.ClientID},
		"client_secret": {e.config.ClientSecret},
	}
	if len(e.config.Scopes) > 0 {
		form.Set("scope", strings.Join(e.config.Scopes, " "))
	}
	return e.exchange(ctx, form)
}

// Refresh exchanges a refresh token for a fresh app token.
func (e *HTTPExchanger) Refresh(ctx context.Context, refreshToken string) (*platform.TokenGrant, error) {
	if refreshToken == "" {
		return nil, platform.ErrReauthorizationRequired
	}
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
		"client_id":     {e.config.ClientID},
		"client_secret": {e.config.ClientSecret},
	}
	return e.exchange(ctx, form)
}

// tokenResponse is the wire shape of a token endpoint success.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	Scope        string `json:"scope"`
	TokenType    string `json:"token_type"`
}

// tokenError is the wire shape of an RFC 6749 error response.
type tokenError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e *HTTPExchanger) exchange(ctx context.Context, form url.Values) (*platform.TokenGrant, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.config.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("token: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", platform.ErrPlatformUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTokenResponseSize))
	if err != nil {
		return nil, fmt.Errorf("token: failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: token endpoint", platform.ErrPlatformRateLimited)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: token endpoint HTTP %d", platform.ErrPlatformUnavailable, resp.StatusCode)
	default:
		var oauthErr tokenError
		if jsonErr := json.Unmarshal(body, &oauthErr); jsonErr == nil && oauthErr.Error == "invalid_grant" {
			// Refresh token rejected outright. No amount of retrying fixes
			// this; the tenant must re-authorize from scratch.
			return nil, fmt.Errorf("%w: %s", platform.ErrReauthorizationRequired, oauthErr.ErrorDescription)
		}
		return nil, fmt.Errorf("%w: token endpoint HTTP %d", platform.ErrPlatformAuthFailed, resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("%w: malformed token response", platform.ErrInvalidResponse)
	}
	if tr.AccessToken == "" || tr.ExpiresIn <= 0 {
		return nil, fmt.Errorf("%w: incomplete token response", platform.ErrInvalidResponse)
	}

	grant := &platform.TokenGrant{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second),
	}
	if tr.Scope != "" {
		grant.Scopes = strings.Fields(tr.Scope)
	}
	return grant, nil
}

// Ensure HTTPExchanger implements TokenExchanger.
var _ platform.TokenExchanger = (*HTTPExchanger)(nil)
