package providers

import (
	"context"
	"errors"
	"testing"

	"github.com/i474232898/iss-flyover/internal/iss"
)

// testdata/GeoIP2-City-Test.mmdb is an IPv4 City database with two networks:
// 81.2.69.160/27 (London, with a location) and 1.1.1.0/24 (country only).
const cityTestDB = "testdata/GeoIP2-City-Test.mmdb"

func openTestDB(t *testing.T) *MaxMindGeolocator {
	t.Helper()
	g, err := OpenMaxMindGeolocator(cityTestDB)
	if err != nil {
		t.Fatalf("open %s: %v", cityTestDB, err)
	}
	t.Cleanup(func() { g.Close() })
	return g
}

func TestMaxMindGeolocator(t *testing.T) {
	g := openTestDB(t)

	for _, ip := range []iss.IPAddress{"81.2.69.160", "81.2.69.191"} {
		coords, err := g.Geolocate(context.Background(), ip)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", ip, err)
		}
		want := iss.Coordinates{Latitude: "51.5142", Longitude: "-0.0931"}
		if coords != want {
			t.Fatalf("%s: expected %+v, got %+v", ip, want, coords)
		}
	}
}

func TestMaxMindGeolocator_Failures(t *testing.T) {
	g := openTestDB(t)

	for _, test := range []struct {
		name string
		ip   iss.IPAddress
		want string
	}{
		{name: "no location", ip: "1.1.1.1", want: "no location record in " + cityTestDB},
		{name: "not in database", ip: "8.8.8.8", want: "no location record in " + cityTestDB},
		{name: "unparsable", ip: "not-an-ip", want: "invalid IP address"},
		{name: "empty", ip: "", want: "invalid IP address"},
	} {
		t.Run(test.name, func(t *testing.T) {
			coords, err := g.Geolocate(context.Background(), test.ip)
			var upErr *iss.UpstreamFailureError
			if !errors.As(err, &upErr) {
				t.Fatalf("expected UpstreamFailureError, got %v", err)
			}
			if upErr.Stage != iss.StageGeolocate || upErr.Message != test.want || upErr.IP != test.ip {
				t.Fatalf("unexpected error %+v", upErr)
			}
			if coords != (iss.Coordinates{}) {
				t.Fatalf("expected no coordinates, got %+v", coords)
			}
		})
	}
}

func TestMaxMindGeolocator_Cancelled(t *testing.T) {
	g := openTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := g.Geolocate(ctx, "81.2.69.160"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestOpenMaxMindGeolocator_MissingFile(t *testing.T) {
	_, err := OpenMaxMindGeolocator(t.TempDir() + "/missing.mmdb")
	if err == nil {
		t.Fatal("expected error opening missing database")
	}
}
