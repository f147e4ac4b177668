// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/jeranaias/heartmind/internal/model"
)

const (
	// DefaultBaseURL is the hosted HeartMind backend.
	DefaultBaseURL = "https://heartmind-vghw.onrender.com"

	// DefaultTimeout bounds each attempt.
	DefaultTimeout = 30 * time.Second

	// DefaultRetryDelay is the pause before the single retry.
	DefaultRetryDelay = 500 * time.Millisecond

	// MaxResponseSize caps how much of a response body is read.
	MaxResponseSize = 1 << 20

	// RequestIDHeader correlates client and server logs.
	RequestIDHeader = "X-Request-ID"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// TokenSource supplies the bearer token for each request.
// *session.Session satisfies it.
type TokenSource interface {
	Token() string
}

// ClientConfig holds configuration options for the client.
type ClientConfig struct {
	// BaseURL is the backend root, without a trailing slash.
	BaseURL string

	// Timeout bounds each attempt (default: 30s).
	Timeout time.Duration

	// Retries is the number of extra attempts after a transient failure.
	// Values above 1 are clamped to 1.
	Retries int

	// RetryDelay is the pause before retrying (default: 500ms).
	RetryDelay time.Duration

	// RateLimit is requests per second; 0 disables pacing.
	RateLimit float64
	RateBurst int
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:    DefaultBaseURL,
		Timeout:    DefaultTimeout,
		Retries:    1,
		RetryDelay: DefaultRetryDelay,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the HeartMind backend. It is safe for concurrent use.
//
// Example:
//
//	client := api.NewClient(api.DefaultConfig(), sess, logger)
//	user, err := client.Me(ctx)
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	tokens     TokenSource
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

// NewClient creates a client. tokens may be nil for unauthenticated use.
func NewClient(config *ClientConfig, tokens TokenSource, logger zerolog.Logger) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	cfg := *config

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.Retries > 1 {
		cfg.Retries = 1
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		tokens:  tokens,
		limiter: limiter,
		logger:  logger.With().Str("component", "api").Logger(),
	}
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// =============================================================================
// AUTH
// =============================================================================

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp TokenResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", LoginRequest{Email: email, Password: password}, &resp, true); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// Signup creates an account and returns its token.
func (c *Client) Signup(ctx context.Context, name, email, password string) (string, error) {
	var resp TokenResponse
	req := SignupRequest{Name: name, Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", req, &resp, false); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// Me fetches the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &user, true); err != nil {
		return nil, err
	}
	return &user, nil
}

// DecrementFree records that one free message was used. It is never retried:
// a repeated POST could consume two units.
func (c *Client) DecrementFree(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/decrement-free", struct{}{}, nil, false)
}

// =============================================================================
// CHAT
// =============================================================================

// Chat sends the full ordered history and returns the assistant's reply.
func (c *Client) Chat(ctx context.Context, messages []model.Message) (string, error) {
	var resp ChatResponse
	if err := c.do(ctx, http.MethodPost, "/api/ai-chat", ChatRequest{Messages: messages}, &resp, true); err != nil {
		return "", err
	}
	return resp.Reply, nil
}

// =============================================================================
// JOURNAL
// =============================================================================

// ListJournal returns the user's entries in server order.
func (c *Client) ListJournal(ctx context.Context) ([]model.JournalEntry, error) {
	var entries []model.JournalEntry
	if err := c.do(ctx, http.MethodGet, "/api/data/journal", nil, &entries, true); err != nil {
		return nil, err
	}
	return entries, nil
}

// CreateJournal stores a new entry and returns it as created by the server.
func (c *Client) CreateJournal(ctx context.Context, draft model.JournalDraft) (*model.JournalEntry, error) {
	var entry model.JournalEntry
	if err := c.do(ctx, http.MethodPost, "/api/data/journal", draft, &entry, false); err != nil {
		return nil, err
	}
	return &entry, nil
}

// DeleteJournal removes an entry by id.
func (c *Client) DeleteJournal(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/data/journal/"+url.PathEscape(id), nil, nil, true)
}

// =============================================================================
// PAYMENT
// =============================================================================

// CreatePaymentSession starts a checkout and returns the URL to open.
func (c *Client) CreatePaymentSession(ctx context.Context, userID, callbackURL string) (string, error) {
	var resp CreateSessionResponse
	req := CreateSessionRequest{UserID: userID, CallbackURL: callbackURL}
	if err := c.do(ctx, http.MethodPost, "/api/payment/create-session", req, &resp, false); err != nil {
		return "", err
	}
	if resp.URL == "" {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Op: opName(http.MethodPost, "/api/payment/create-session"), Message: "no checkout URL in response"}
	}
	return resp.URL, nil
}

// VerifyPayment confirms a checkout by reference.
func (c *Client) VerifyPayment(ctx context.Context, reference, userID string) (*VerifyResponse, error) {
	var resp VerifyResponse
	req := VerifyRequest{Reference: reference, UserID: userID}
	if err := c.do(ctx, http.MethodPost, "/api/payment/verify-payment", req, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

// =============================================================================
// TRANSPORT
// =============================================================================

// do performs one logical call with at most one retry. out may be nil.
func (c *Client) do(ctx context.Context, method, path string, in, out any, retry bool) error {
	op := opName(method, path)

	var body []byte
	if in != nil {
		var err error
		body, err = json.Marshal(in)
		if err != nil {
			return &ClientError{Type: ErrTypeBadRequest, Op: op, Message: "failed to encode request", Cause: err}
		}
	}

	requestID := uuid.NewString()
	attempts := 1
	if retry {
		attempts += c.config.Retries
	}

	var lastErr *ClientError
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return lastErr
			case <-time.After(c.config.RetryDelay):
			}
			c.logger.Debug().Str("op", op).Str("request_id", requestID).Msg("retrying request")
		}

		lastErr = c.attempt(ctx, op, method, path, body, out, requestID)
		if lastErr == nil {
			return nil
		}
		if !lastErr.retryable() || ctx.Err() != nil {
			break
		}
	}
	return lastErr
}

func (c *Client) attempt(ctx context.Context, op, method, path string, body []byte, out any, requestID string) *ClientError {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return transportError(op, err)
		}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reader)
	if err != nil {
		return &ClientError{Type: ErrTypeBadRequest, Op: op, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(RequestIDHeader, requestID)
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Str("method", method).Str("path", path).Str("request_id", requestID).
			Dur("duration", time.Since(start)).Err(err).Msg("request failed")
		return transportError(op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	c.logger.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).
		Str("request_id", requestID).Dur("duration", time.Since(start)).Msg("request")
	if err != nil {
		return transportError(op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ClientError{
			Type:    typeForStatus(resp.StatusCode),
			Op:      op,
			Status:  resp.StatusCode,
			Message: decodeErrorMessage(data),
		}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Op: op, Status: resp.StatusCode, Cause: err}
	}
	return nil
}

// transportError classifies an error that produced no HTTP response.
func transportError(op string, err error) *ClientError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &ClientError{Type: ErrTypeTimeout, Op: op, Cause: err}
	}
	return &ClientError{Type: ErrTypeNetwork, Op: op, Cause: err}
}

func decodeErrorMessage(data []byte) string {
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}
