package iss

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode marks an upstream body that could not be parsed.
	ErrDecode = errors.New("invalid response body")

	// ErrInvalidCoordinates is returned when a coordinate pair is missing a field.
	ErrInvalidCoordinates = errors.New("latitude and longitude are required")
)

// NetworkError is a transport-level failure reaching an upstream service.
type NetworkError struct {
	Stage Stage
	URL   string
	Err   error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: request to %s failed: %v", e.Stage, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPStatusError is returned when an upstream answers with a non-200 status.
type HTTPStatusError struct {
	Stage      Stage
	URL        string
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%s: status code %d from %s. Response: %s", e.Stage, e.StatusCode, e.URL, e.Body)
}

// UpstreamFailureError is returned when an upstream answers 200 but reports
// a logical failure through its own success or message field.
type UpstreamFailureError struct {
	Stage   Stage
	Message string
	IP      IPAddress // echoed by the geolocation service, empty otherwise
}

func (e *UpstreamFailureError) Error() string {
	if e.IP != "" {
		return fmt.Sprintf("%s: upstream reported failure for IP %s: %s", e.Stage, e.IP, e.Message)
	}
	return fmt.Sprintf("%s: upstream reported failure: %s", e.Stage, e.Message)
}

// StageOf returns the pipeline stage an error originated from, or StageFailed
// when the error carries no stage.
func StageOf(err error) Stage {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr.Stage
	}
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.Stage
	}
	var upErr *UpstreamFailureError
	if errors.As(err, &upErr) {
		return upErr.Stage
	}
	return StageFailed
}
