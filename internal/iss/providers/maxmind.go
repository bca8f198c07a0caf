package providers

import (
	"context"
	"fmt"
	"net"

	"github.com/oschwald/maxminddb-golang"

	"github.com/i474232898/iss-flyover/internal/common"
	"github.com/i474232898/iss-flyover/internal/iss"
)

// MaxMindGeolocator implements iss.Geolocator over a local GeoLite2/GeoIP2
// City database, for hosts that should not call out to a geolocation API.
type MaxMindGeolocator struct {
	path string
	db   *maxminddb.Reader
}

// OpenMaxMindGeolocator opens the database at path.
func OpenMaxMindGeolocator(path string) (*MaxMindGeolocator, error) {
	db, err := maxminddb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geoip database %s: %w", path, err)
	}
	return &MaxMindGeolocator{path: path, db: db}, nil
}

func (g *MaxMindGeolocator) Geolocate(ctx context.Context, ip iss.IPAddress) (iss.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return iss.Coordinates{}, err
	}

	parsed := net.ParseIP(string(ip))
	if parsed == nil {
		return iss.Coordinates{}, &iss.UpstreamFailureError{
			Stage:   iss.StageGeolocate,
			Message: "invalid IP address",
			IP:      ip,
		}
	}

	var record struct {
		Location struct {
			Latitude  *float64 `maxminddb:"latitude"`
			Longitude *float64 `maxminddb:"longitude"`
		} `maxminddb:"location"`
	}
	if err := g.db.Lookup(parsed, &record); err != nil {
		return iss.Coordinates{}, decodeError(iss.StageGeolocate, err)
	}

	if record.Location.Latitude == nil || record.Location.Longitude == nil {
		return iss.Coordinates{}, &iss.UpstreamFailureError{
			Stage:   iss.StageGeolocate,
			Message: "no location record in " + g.path,
			IP:      ip,
		}
	}

	return iss.Coordinates{
		Latitude:  common.FormatDecimal(*record.Location.Latitude),
		Longitude: common.FormatDecimal(*record.Location.Longitude),
	}, nil
}

// Close releases the database.
func (g *MaxMindGeolocator) Close() error {
	return g.db.Close()
}
