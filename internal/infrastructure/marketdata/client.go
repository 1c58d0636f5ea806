package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sony/gobreaker"

	"github.com/wealth-one/wealth_service/pkg/retry"
)

// ErrNoQuote reports that the provider answered but carries no quote for the
// requested symbol. Absence of a key in a provider response means "no quote
// available", not a transport failure.
var ErrNoQuote = errors.New("no quote available")

// statusError is a non-2xx provider response.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.status, e.body)
}

// isRetryable treats transport errors and throttling/server statuses as
// transient; anything else (bad request, auth) will not improve on retry.
func isRetryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.status == http.StatusTooManyRequests || se.status >= http.StatusInternalServerError
	}
	if errors.Is(err, ErrNoQuote) || errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	return true
}

// doJSON executes req through the breaker with retries and decodes the JSON
// response body into out.
func doJSON(ctx context.Context, client *http.Client, breaker *gobreaker.CircuitBreaker, retryCfg retry.Config, req *http.Request, out interface{}) error {
	return retry.WithExponentialBackoff(ctx, retryCfg, func() error {
		_, err := breaker.Execute(func() (interface{}, error) {
			resp, err := client.Do(req.Clone(ctx))
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
			if err != nil {
				return nil, fmt.Errorf("failed to read response: %w", err)
			}

			if resp.StatusCode != http.StatusOK {
				return nil, &statusError{status: resp.StatusCode, body: truncate(string(body), 256)}
			}

			if err := json.Unmarshal(body, out); err != nil {
				return nil, fmt.Errorf("malformed provider response: %w", err)
			}
			return nil, nil
		})
		return err
	}, isRetryable)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
