// Package bungie is a small client for the Bungie.net platform API.
package bungie

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/destiny-clan-bot-go/internal/constants"
	"github.com/kapu/destiny-clan-bot-go/internal/util"
	"github.com/kapu/destiny-clan-bot-go/pkg/errors"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	breaker    *util.CircuitBreaker
	logger     *zap.Logger

	maxAttempts int
	backoff     func(attempt int) time.Duration

	// activity definition names never change between game patches that
	// matter to the bot, so they are kept for the life of the process.
	definitions sync.Map
}

func NewClient(httpClient *http.Client, baseURL, apiKey string, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: constants.APIConfig.BungieTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if baseURL == "" {
		baseURL = constants.APIConfig.BungieBaseURL
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		breaker: util.NewCircuitBreaker("bungie",
			constants.CircuitBreakerConfig.FailureThreshold,
			constants.CircuitBreakerConfig.ResetTimeout,
			logger,
		),
		logger:      logger,
		maxAttempts: constants.APIConfig.MaxRetryAttempts,
		backoff:     computeDelay,
	}
}

func (c *Client) IsCircuitOpen() bool {
	return !c.breaker.CanExecute()
}

// doRequest performs one API call and decodes the envelope's Response into
// out. Transient failures are retried with exponential backoff.
func (c *Client) doRequest(ctx context.Context, method, path string, params url.Values, body any, out any) error {
	if !c.breaker.CanExecute() {
		retryAfter := c.breaker.RetryAfter()
		c.logger.Warn("Circuit breaker is open", zap.Duration("retry_after", retryAfter))
		upstream := errors.NewUpstreamError(errors.UpstreamTransient, "Bungie API circuit open", http.StatusServiceUnavailable, map[string]any{
			"path": path,
		})
		upstream.RetryAfter = retryAfter
		return upstream
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		payload = encoded
	}

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := c.backoff(attempt - 1)
			c.logger.Warn("Bungie request failed, retrying",
				zap.String("path", path),
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay),
				zap.Error(lastErr),
			)
			if err := sleepContext(ctx, delay); err != nil {
				return errors.NewUpstreamError(errors.UpstreamTransient, "Bungie request cancelled", 0, map[string]any{
					"path": path,
				}).WithCause(err)
			}
		}

		err := c.attempt(ctx, method, reqURL, path, payload, out)
		if err == nil {
			c.breaker.RecordSuccess()
			return nil
		}
		lastErr = err

		var upstream *errors.UpstreamError
		isUpstream := stderrors.As(err, &upstream)

		switch {
		case errors.IsTransient(err):
			if isUpstream && upstream.StatusCode >= 400 && upstream.StatusCode < 500 {
				return err
			}
			// The caller's own deadline says nothing about Bungie's health.
			if ctx.Err() != nil {
				return err
			}
			c.breaker.RecordFailure(0)
			if !c.breaker.CanExecute() || ctx.Err() != nil {
				return err
			}
			continue
		case errors.IsRateLimited(err):
			retryAfter := constants.CircuitBreakerConfig.RateLimitTimeout
			if isUpstream && upstream.RetryAfter > 0 {
				retryAfter = upstream.RetryAfter
			}
			c.breaker.RecordFailure(retryAfter)
			return err
		case errors.IsAuth(err):
			c.logger.Error("Bungie API rejected credentials", zap.String("path", path), zap.Error(err))
			return err
		default:
			return err
		}
	}
	return lastErr
}

func (c *Client) attempt(ctx context.Context, method, reqURL, path string, payload []byte, out any) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewUpstreamError(errors.UpstreamTransient, "Bungie request failed", 0, map[string]any{
			"path": path,
		}).WithCause(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewUpstreamError(errors.UpstreamTransient, "Bungie response read failed", resp.StatusCode, map[string]any{
			"path": path,
		}).WithCause(err)
	}

	var env envelope
	decodeErr := json.Unmarshal(data, &env)

	if upstream := classify(resp.StatusCode, env, decodeErr == nil, path); upstream != nil {
		return upstream
	}
	if decodeErr != nil {
		return errors.NewUpstreamError(errors.UpstreamTransient, "Bungie response is not valid JSON", resp.StatusCode, map[string]any{
			"path": path,
		}).WithCause(decodeErr)
	}

	if out == nil || len(env.Response) == 0 || string(env.Response) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Response, out); err != nil {
		return errors.NewAPIError("Bungie response has unexpected shape", resp.StatusCode, map[string]any{
			"path": path,
		}).WithCause(err)
	}
	return nil
}

// classify maps an HTTP status and platform error code to an UpstreamError.
// It returns nil for a successful response.
func classify(status int, env envelope, decoded bool, path string) *errors.UpstreamError {
	fields := map[string]any{
		"path":         path,
		"error_code":   env.ErrorCode,
		"error_status": env.ErrorStatus,
	}

	newErr := func(kind errors.UpstreamKind, msg string) *errors.UpstreamError {
		if env.Message != "" {
			msg = msg + ": " + env.Message
		}
		return errors.NewUpstreamError(kind, msg, status, fields)
	}

	if decoded {
		switch env.ErrorCode {
		case codeAPIKeyInvalid, codeAPIKeyMissing, codeWebAuthRequired:
			return newErr(errors.UpstreamAuth, "Bungie API key rejected")
		case codeThrottleLimitExceeded, codeThrottleMinutes, codeThrottleMomentarily, codeThrottleSeconds, codePerAppThrottleExceeded:
			e := newErr(errors.UpstreamRateLimited, "Bungie API throttled")
			e.RetryAfter = time.Duration(env.ThrottleSeconds) * time.Second
			return e
		case codeDestinyAccountNotFound, codeUserCannotResolve, codeGroupNotFound, codePrivacyRestriction:
			return newErr(errors.UpstreamNotFound, "Bungie resource not found")
		case codeSystemDisabled:
			return newErr(errors.UpstreamTransient, "Bungie API is under maintenance")
		}
		if env.ThrottleSeconds > 0 && env.ErrorCode != codeSuccess {
			e := newErr(errors.UpstreamRateLimited, "Bungie API throttled")
			e.RetryAfter = time.Duration(env.ThrottleSeconds) * time.Second
			return e
		}
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return newErr(errors.UpstreamAuth, "Bungie API denied the request")
	case status == http.StatusTooManyRequests:
		e := newErr(errors.UpstreamRateLimited, "Bungie API rate limited")
		if decoded {
			e.RetryAfter = time.Duration(env.ThrottleSeconds) * time.Second
		}
		return e
	case status == http.StatusNotFound:
		return newErr(errors.UpstreamNotFound, "Bungie resource not found")
	case status >= 500:
		return newErr(errors.UpstreamTransient, fmt.Sprintf("Bungie server error: %d", status))
	case status >= 400:
		return newErr(errors.UpstreamTransient, fmt.Sprintf("Bungie client error: %d", status))
	}

	if decoded && env.ErrorCode != 0 && env.ErrorCode != codeSuccess {
		return newErr(errors.UpstreamTransient, "Bungie API error "+env.ErrorStatus)
	}
	return nil
}

func computeDelay(attempt int) time.Duration {
	base := constants.RetryConfig.BaseDelay * time.Duration(math.Pow(2, float64(attempt)))
	jitter := time.Duration(rand.Float64() * float64(constants.RetryConfig.Jitter))
	return base + jitter
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
