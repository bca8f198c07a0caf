package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"syscall"
	"testing"
	"time"

	"github.com/i474232898/iss-flyover/internal/iss"
	"github.com/i474232898/iss-flyover/internal/store"
)

type stubResolver struct{ err error }

func (s stubResolver) ResolveIP(ctx context.Context) (iss.IPAddress, error) {
	return "162.245.144.188", s.err
}

type stubLocator struct{ err error }

func (s stubLocator) Geolocate(ctx context.Context, ip iss.IPAddress) (iss.Coordinates, error) {
	if s.err != nil {
		return iss.Coordinates{}, s.err
	}
	return iss.Coordinates{Latitude: "49.2767", Longitude: "-123.13"}, nil
}

type stubPredictor struct{}

func (stubPredictor) FlyoverTimes(ctx context.Context, coords iss.Coordinates) ([]iss.FlyOverWindow, error) {
	return []iss.FlyOverWindow{
		{Risetime: 100, Duration: 600},
		{Risetime: 200, Duration: 500},
		{Risetime: 300, Duration: 400},
	}, nil
}

func newTestService(resolverErr, locatorErr error) (*iss.Service, *store.MemoryStore) {
	st := store.NewMemoryStore(10, time.Hour)
	return iss.NewService(st, stubResolver{err: resolverErr}, stubLocator{err: locatorErr}, stubPredictor{}), st
}

func TestHealth(t *testing.T) {
	svc, _ := newTestService(nil, nil)
	app := NewApp(svc, 0)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
}

func TestPasses(t *testing.T) {
	svc, _ := newTestService(nil, nil)
	app := NewApp(svc, 2)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/passes", nil), -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var report iss.Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.IP != "162.245.144.188" {
		t.Fatalf("unexpected IP %q", report.IP)
	}
	// Default limit applies.
	if len(report.Passes) != 2 || report.Passes[0].Risetime != 100 {
		t.Fatalf("unexpected passes %+v", report.Passes)
	}

	// Explicit n=0 returns everything.
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/passes?n=0", nil), -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	report = iss.Report{}
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(report.Passes) != 3 {
		t.Fatalf("expected 3 passes, got %d", len(report.Passes))
	}
}

func TestPassesLimitMatchesService(t *testing.T) {
	svc, _ := newTestService(nil, nil)
	app := NewApp(svc, 0)

	for _, n := range []int{1, 3, 5} {
		want, err := svc.NextPasses(context.Background(), n)
		if err != nil {
			t.Fatalf("n=%d: unexpected error: %v", n, err)
		}

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/passes?n=%d", n), nil), -1)
		if err != nil {
			t.Fatalf("n=%d: unexpected error: %v", n, err)
		}
		var report iss.Report
		if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
			t.Fatalf("n=%d: decode: %v", n, err)
		}
		if !reflect.DeepEqual(report.Passes, want) {
			t.Fatalf("n=%d: expected %v, got %v", n, want, report.Passes)
		}
	}
}

func TestPassesUpstreamErrors(t *testing.T) {
	for _, test := range []struct {
		name        string
		resolverErr error
		locatorErr  error
		want        int
	}{
		{
			name:        "network",
			resolverErr: &iss.NetworkError{Stage: iss.StageResolveIP, Err: syscall.ECONNREFUSED},
			want:        http.StatusServiceUnavailable,
		},
		{
			name:       "geolocation failure",
			locatorErr: &iss.UpstreamFailureError{Stage: iss.StageGeolocate, Message: "Invalid IP address"},
			want:       http.StatusBadGateway,
		},
		{
			name:       "status",
			locatorErr: &iss.HTTPStatusError{Stage: iss.StageGeolocate, StatusCode: 500},
			want:       http.StatusBadGateway,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			svc, _ := newTestService(test.resolverErr, test.locatorErr)
			app := NewApp(svc, 0)

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/passes", nil), -1)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.StatusCode != test.want {
				t.Fatalf("expected status %d, got %d", test.want, resp.StatusCode)
			}
			var body struct {
				Error   bool   `json:"error"`
				Message string `json:"message"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !body.Error || body.Message == "" {
				t.Fatalf("expected error body, got %+v", body)
			}
		})
	}
}

// TestPassesAtValidation verifies that lat/lon are required and range checked.
func TestPassesAtValidation(t *testing.T) {
	svc, _ := newTestService(nil, nil)
	app := NewApp(svc, 0)

	for _, target := range []string{
		"/api/v1/passes/at?lon=-123.13",
		"/api/v1/passes/at?lat=91&lon=0",
		"/api/v1/passes/at?lat=abc&lon=0",
		"/api/v1/passes/at?lat=49.2&lon=-181",
		"/api/v1/passes/at?lat=49.2&lon=-123&n=-1",
	} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected status %d, got %d", target, http.StatusBadRequest, resp.StatusCode)
		}
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/passes/at?lat=49.2767&lon=-123.13&n=1", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	var body struct {
		Passes []iss.FlyOverWindow `json:"passes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Passes) != 1 {
		t.Fatalf("expected 1 pass, got %d", len(body.Passes))
	}
}

func TestLatestAndHistory(t *testing.T) {
	svc, st := newTestService(nil, nil)
	app := NewApp(svc, 0)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/passes/latest", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}

	if err := svc.RefreshAndStore(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if st.Len() != 1 {
		t.Fatalf("expected 1 stored report, got %d", st.Len())
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/passes/latest", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	// Missing range should return 400.
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/passes/history", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	// Reversed range should also return 400.
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/passes/history?from=2000&to=1000", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/passes/history?from=0&to=4102444800", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
}
