// Package auth resolves connection credentials to player identities.
// The server trusts whatever id the configured validator hands back;
// seats and balances key off that id.
package auth

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

	"github.com/google/uuid"
)

var (
	// ErrInvalidToken indicates the credentials are definitively invalid.
	ErrInvalidToken = errors.New("auth: invalid token")

	// ErrUnavailable indicates the auth service is unreachable or unavailable.
	// Callers may choose to fail open (allow) or fail closed (reject).
	ErrUnavailable = errors.New("auth: unavailable")
)

// Identity represents an authenticated player.
type Identity struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
}

// Validator validates connection credentials.
type Validator interface {
	// Validate checks credentials and returns the player identity.
	// Returns:
	//   - (*Identity, nil) if the credentials are valid
	//   - (nil, ErrInvalidToken) if they are definitively invalid
	//   - (nil, ErrUnavailable) if the auth service is unavailable
	Validate(ctx context.Context, name, token string) (*Identity, error)
}

// GuestID mints a fresh anonymous player id.
func GuestID() string {
	return "guest-" + uuid.NewString()
}

// HTTPValidator validates tokens via HTTP callback to an external service.
type HTTPValidator struct {
	url     string
	client  *http.Client
	secret  string
	timeout time.Duration
}

// NewHTTPValidator creates a validator that calls an external HTTP endpoint.
// The secret, when set, is sent as X-Auth-Secret so the endpoint can reject
// callers other than this server.
func NewHTTPValidator(url, secret string, timeout time.Duration) *HTTPValidator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPValidator{
		url:     url,
		secret:  secret,
		timeout: timeout,
		client: &http.Client{
			Timeout: timeout, // Align with context timeout
		},
	}
}

type validateRequest struct {
	Name  string `json:"name"`
	Token string `json:"token"`
}

type validateResponse struct {
	Valid    bool   `json:"valid"`
	PlayerID string `json:"player_id,omitempty"`
	Name     string `json:"name,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (v *HTTPValidator) Validate(ctx context.Context, name, token string) (*Identity, error) {
	// Empty token is invalid when auth is enabled
	if token == "" {
		return nil, ErrInvalidToken
	}

	// Apply timeout via context
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	reqBody, err := json.Marshal(validateRequest{Name: name, Token: token})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if v.secret != "" {
		req.Header.Set("X-Auth-Secret", v.secret)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		// Network errors, timeouts, etc. = unavailable
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	// Handle HTTP status codes
	switch resp.StatusCode {
	case http.StatusOK:
		// Success - decode response
	case http.StatusUnauthorized, http.StatusForbidden:
		// Definitive rejection
		return nil, ErrInvalidToken
	case http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusServiceUnavailable:
		// Service issues
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	default:
		// Treat unexpected status as unavailable
		return nil, fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}

	// Limit response body to 1MB to avoid pathological responses
	limitedReader := io.LimitReader(resp.Body, 1<<20)

	var authResp validateResponse
	if err := json.NewDecoder(limitedReader).Decode(&authResp); err != nil {
		return nil, fmt.Errorf("%w: decode error: %v", ErrUnavailable, err)
	}

	if !authResp.Valid || authResp.PlayerID == "" {
		return nil, ErrInvalidToken
	}

	display := authResp.Name
	if display == "" {
		display = authResp.PlayerID
	}

	return &Identity{
		PlayerID: authResp.PlayerID,
		Name:     display,
	}, nil
}

// NoopValidator accepts any name without checking tokens (dev mode).
// Blank names become anonymous guests with a fresh id each time.
type NoopValidator struct{}

// NewNoopValidator creates a validator that allows all connections.
func NewNoopValidator() *NoopValidator {
	return &NoopValidator{}
}

func (v *NoopValidator) Validate(ctx context.Context, name, token string) (*Identity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		id := GuestID()
		return &Identity{PlayerID: id, Name: id}, nil
	}
	return &Identity{PlayerID: name, Name: name}, nil
}
