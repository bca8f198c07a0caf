package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/iss-flyover/internal/iss"
	"github.com/i474232898/iss-flyover/internal/logging"
	"github.com/i474232898/iss-flyover/internal/metrics"
)

var lg = logging.GetLogger("providers")

var errNoHTTPClient = errors.New("http client not configured")

// maxBodyBytes caps how much of an upstream body is read.
const maxBodyBytes = 1 << 20

// newBreaker builds the circuit breaker guarding one upstream. It opens after
// five consecutive transport failures and half-opens again after a minute.
// A reply of any status counts as a success: the upstream was reached.
func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    1 * time.Minute,
		Timeout:     1 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			lg.Warnf("circuit %s: %s -> %s", name, from, to)
		},
	})
}

// reply is what one round trip produced, whatever its status.
type reply struct {
	status int
	body   []byte
}

// getBody issues one GET through the circuit breaker and returns the body of
// a 200 response. There is no retry: the first failure is returned.
func getBody(
	ctx context.Context,
	client *http.Client,
	cb *gobreaker.CircuitBreaker,
	stage iss.Stage,
	rawURL string,
) ([]byte, error) {
	if client == nil {
		return nil, &iss.NetworkError{Stage: stage, URL: rawURL, Err: errNoHTTPClient}
	}

	start := time.Now()
	defer func() {
		metrics.UpstreamDuration.WithLabelValues(string(stage)).Observe(time.Since(start).Seconds())
	}()

	result, err := cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return nil, &iss.NetworkError{Stage: stage, URL: rawURL, Err: err}
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return nil, &iss.NetworkError{Stage: stage, URL: rawURL, Err: err}
		}
		return &reply{status: resp.StatusCode, body: body}, nil
	})
	if err != nil {
		// If circuit is open, report it as the upstream being unreachable.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = &iss.NetworkError{Stage: stage, URL: rawURL, Err: err}
		}
		return nil, upstreamFailed(stage, rawURL, err)
	}

	r, ok := result.(*reply)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	// Decided outside the breaker: a non-200 reply never trips it.
	if r.status != http.StatusOK {
		return nil, upstreamFailed(stage, rawURL, &iss.HTTPStatusError{
			Stage:      stage,
			URL:        rawURL,
			StatusCode: r.status,
			Body:       string(r.body),
		})
	}

	metrics.UpstreamRequests.WithLabelValues(string(stage), "ok").Inc()
	return r.body, nil
}

func upstreamFailed(stage iss.Stage, rawURL string, err error) error {
	metrics.UpstreamRequests.WithLabelValues(string(stage), "error").Inc()
	lg.WithField("stage", stage).Debugf("GET %s: %v", rawURL, err)
	return err
}

func decodeError(stage iss.Stage, err error) error {
	return fmt.Errorf("%s: %w: %v", stage, iss.ErrDecode, err)
}
