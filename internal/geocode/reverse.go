// Package geocode labels coordinates with a street address through the
// Google reverse geocoding API.
package geocode

import (
	"context"
	"errors"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/iss-flyover/internal/common"
	"github.com/i474232898/iss-flyover/internal/iss"
)

var (
	errNoAddress = errors.New("no address found")
	errBusy      = errors.New("reverse geocoding lookup already in flight")
)

// maxInFlight bounds lookups still running, including ones whose caller
// has given up.
const maxInFlight = 1

// GoogleNamer implements iss.PlaceNamer.
type GoogleNamer struct {
	inflight chan struct{}
}

// NewGoogleNamer configures the geocoder with apiKey. The geocoder library
// keeps its key in package state, so one key per process.
func NewGoogleNamer(apiKey string) *GoogleNamer {
	geocoder.ApiKey = apiKey
	return &GoogleNamer{inflight: make(chan struct{}, maxInFlight)}
}

func (n *GoogleNamer) PlaceName(ctx context.Context, coords iss.Coordinates) (string, error) {
	lat, lon, err := common.ParseLatLon(coords.Latitude, coords.Longitude)
	if err != nil {
		return "", err
	}

	select {
	case n.inflight <- struct{}{}:
	default:
		return "", errBusy
	}

	type result struct {
		name string
		err  error
	}
	done := make(chan result, 1)

	// The library has no context support or client timeout; the lookup is
	// abandoned, not cancelled, when ctx ends first, and keeps its slot
	// until it returns.
	go func() {
		defer func() { <-n.inflight }()
		addresses, err := geocoder.GeocodingReverse(geocoder.Location{Latitude: lat, Longitude: lon})
		if err != nil {
			done <- result{err: err}
			return
		}
		if len(addresses) == 0 {
			done <- result{err: errNoAddress}
			return
		}
		name := addresses[0].FormattedAddress
		if name == "" {
			name = addresses[0].FormatAddress()
		}
		done <- result{name: name}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.name, r.err
	}
}
