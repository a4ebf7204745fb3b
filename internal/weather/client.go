// Package weather reads current conditions for the weather-triggered event class.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/osse101/liveops/internal/domain"
	"github.com/osse101/liveops/internal/logger"
)

// Client queries an OpenWeather-compatible current-weather endpoint
type Client struct {
	endpoint   string
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

// NewClient creates a weather client. endpoint is the full current-weather URL.
func NewClient(endpoint, apiKey string, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
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

var _ domain.WeatherProvider = (*Client)(nil)

type currentResponse struct {
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
}

// CurrentConditionAt returns the current condition at lat/lon
func (c *Client) CurrentConditionAt(ctx context.Context, lat, lon float64) (domain.WeatherCondition, error) {
	log := logger.FromContext(ctx)

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return domain.WeatherCondition{}, fmt.Errorf("%s: %w", ErrMsgRequestFailed, err)
	}
	q := u.Query()
	q.Set("lat", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', 4, 64))
	q.Set("units", DefaultUnits)
	q.Set("appid", c.apiKey)
	u.RawQuery = q.Encode()

	var body currentResponse
	attempt := 0
	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(c.retryBase))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := c.fetch(ctx, u.String(), &body)
		var re *retryableStatus
		if err != nil && errors.As(err, &re) {
			log.Warn(LogMsgFetchRetry, "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return domain.WeatherCondition{}, err
	}
	if len(body.Weather) == 0 {
		return domain.WeatherCondition{}, errors.New(ErrMsgNoConditions)
	}

	cond := Normalize(body.Weather[0].Main)
	log.Debug(LogMsgCondition, "condition", cond, "temperature_c", body.Main.Temp)
	return domain.WeatherCondition{
		Type:              cond,
		Description:       body.Weather[0].Description,
		TemperatureC:      body.Main.Temp,
		GameplayModifiers: Modifiers(cond),
	}, nil
}

func (c *Client) fetch(ctx context.Context, target string, out *currentResponse) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgRequestFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &retryableStatus{err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return &retryableStatus{code: resp.StatusCode}
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf(ErrMsgStatusFmt, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgDecodeFailed, err)
	}
	return nil
}

// retryableStatus is a 5xx/429 response or a transport failure
type retryableStatus struct {
	code int
	err  error
}

func (e *retryableStatus) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf(ErrMsgStatusFmt, e.code)
}

func (e *retryableStatus) Unwrap() error { return e.err }
