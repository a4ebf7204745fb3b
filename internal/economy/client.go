// Package economy is the HTTP client for the external currency grant endpoint.
package economy

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

	"github.com/sethvargo/go-retry"

	"github.com/osse101/liveops/internal/domain"
	"github.com/osse101/liveops/internal/logger"
)

// Client grants rewards through the economy HTTP API.
//
// Every request carries the grant reference as an Idempotency-Key so that
// retried grants can be deduplicated by the economy service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxRetries uint64
	retryBase  time.Duration
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetry sets the retry budget and the first backoff delay
func WithRetry(maxRetries uint64, base time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.retryBase = base
	}
}

// NewClient creates an economy client for baseURL
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		maxRetries: DefaultMaxRetries,
		retryBase:  DefaultRetryBase,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ domain.EconomyPort = (*Client)(nil)

type grantBody struct {
	PlayerID  string `json:"player_id"`
	RewardKey string `json:"reward_key"`
	Amount    int64  `json:"amount"`
	Reference string `json:"reference"`
}

// Grant applies one reward. 5xx, 429 and transport failures are retried
// with exponential backoff; other 4xx responses fail immediately.
func (c *Client) Grant(ctx context.Context, req domain.GrantRequest) error {
	if c.baseURL == "" {
		return errors.New(ErrMsgNotConfigured)
	}
	if req.Amount < 0 {
		return fmt.Errorf(ErrMsgInvalidGrantFmt+": %w", req.Amount, req.RewardKey, domain.ErrInvalidInput)
	}

	body, err := json.Marshal(grantBody{
		PlayerID:  req.PlayerID,
		RewardKey: req.RewardKey,
		Amount:    req.Amount,
		Reference: req.Reference,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgMarshalFailed, err)
	}

	log := logger.FromContext(ctx)
	attempt := 0
	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(c.retryBase))

	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := c.post(ctx, body, req.Reference)
		var re *retryableStatus
		if err != nil && (errors.As(err, &re) || isTransport(err)) {
			log.Warn(LogMsgGrantRetry, "attempt", attempt, "reward_key", req.RewardKey, "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return err
	}

	log.Debug(LogMsgGrantApplied, "player_id", req.PlayerID, "reward_key", req.RewardKey, "amount", req.Amount)
	return nil
}

func (c *Client) post(ctx context.Context, body []byte, reference string) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+GrantPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgRequestFailed, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set(HeaderAPIKey, c.apiKey)
	}
	if reference != "" {
		httpReq.Header.Set(HeaderIdempotencyKey, reference)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &transportError{err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return &retryableStatus{code: resp.StatusCode}
	default:
		return fmt.Errorf(ErrMsgUnexpectedFmt, resp.StatusCode)
	}
}

type retryableStatus struct {
	code int
}

func (e *retryableStatus) Error() string {
	return fmt.Sprintf(ErrMsgUnexpectedFmt, e.code)
}

type transportError struct {
	err error
}

func (e *transportError) Error() string { return e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

func isTransport(err error) bool {
	var te *transportError
	return errors.As(err, &te)
}
