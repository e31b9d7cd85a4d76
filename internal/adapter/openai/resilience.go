package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/sony/gobreaker"
)

// backoff controls retry spacing for transient API failures.
type backoff struct {
	maxRetries int
	initial    time.Duration
	max        time.Duration
}

var (
	errRateLimited = errors.New("rate limited")
	errServerError = errors.New("server error")
	errUnexpected  = errors.New("unexpected status code")
	errCircuitOpen = errors.New("circuit breaker open")
)

// statusError carries the response status for non-2xx replies.
type statusError struct {
	kind   error
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%v: status %d: %s", e.kind, e.status, e.body)
}

func (e *statusError) Unwrap() error { return e.kind }

func newCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// Rejected requests (4xx other than 429) do not count against the breaker.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errUnexpected)
		},
	})
}

// do sends the request built by build, retrying rate limits, server errors and
// transport failures with exponential backoff. Other non-2xx replies fail at once.
func do(
	ctx context.Context,
	client *http.Client,
	cb *gobreaker.CircuitBreaker,
	policy backoff,
	build func(ctx context.Context) (*http.Request, error),
) (*http.Response, error) {
	delay := policy.initial
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := build(ctx)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}

		result, err := cb.Execute(func() (interface{}, error) {
			resp, doErr := client.Do(req)
			if doErr != nil {
				return nil, doErr
			}
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return resp, nil
			}
			return nil, drainStatus(resp)
		})
		if err == nil {
			resp, ok := result.(*http.Response)
			if !ok {
				return nil, errors.New("unexpected result type from circuit breaker")
			}
			return resp, nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		if errors.Is(err, errUnexpected) || attempt >= policy.maxRetries {
			return nil, err
		}

		if !retry.SleepWithContext(ctx, delay) {
			return nil, ctx.Err()
		}
		delay = retry.NextBackoff(delay, policy.max)
	}
}

func drainStatus(resp *http.Response) error {
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	kind := errUnexpected
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		kind = errRateLimited
	case resp.StatusCode >= 500:
		kind = errServerError
	}
	return &statusError{kind: kind, status: resp.StatusCode, body: string(body)}
}
