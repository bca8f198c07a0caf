package providers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sony/gobreaker"
	"github.com/tidwall/gjson"

	"github.com/i474232898/iss-flyover/internal/common"
	"github.com/i474232898/iss-flyover/internal/iss"
)

// DefaultIPWhoisURL is the geolocation service base URL. The IP is appended
// as the last path segment.
const DefaultIPWhoisURL = "http://ipwho.is"

// IPWhoisGeolocator implements iss.Geolocator using ipwho.is.
type IPWhoisGeolocator struct {
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewIPWhoisGeolocator(client *http.Client, baseURL string) *IPWhoisGeolocator {
	if baseURL == "" {
		baseURL = DefaultIPWhoisURL
	}
	return &IPWhoisGeolocator{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		circuit: newBreaker("ipwhois"),
	}
}

func (g *IPWhoisGeolocator) Geolocate(ctx context.Context, ip iss.IPAddress) (iss.Coordinates, error) {
	u := g.baseURL + "/" + string(ip)

	body, err := getBody(ctx, g.client, g.circuit, iss.StageGeolocate, u)
	if err != nil {
		return iss.Coordinates{}, err
	}

	// Only a handful of fields matter; gjson keeps us from modelling the
	// whole ipwho.is document.
	js := string(body)
	if !gjson.Valid(js) {
		return iss.Coordinates{}, decodeError(iss.StageGeolocate, errors.New("invalid JSON"))
	}

	res := gjson.GetMany(js, "success", "latitude", "longitude", "message", "ip")
	if !res[0].Bool() {
		return iss.Coordinates{}, &iss.UpstreamFailureError{
			Stage:   iss.StageGeolocate,
			Message: res[3].String(),
			IP:      iss.IPAddress(res[4].String()),
		}
	}

	return iss.Coordinates{
		Latitude:  decimalString(res[1]),
		Longitude: decimalString(res[2]),
	}, nil
}

// decimalString turns a JSON number into its shortest decimal form. Missing
// values become "" and are rejected by coordinate validation.
func decimalString(r gjson.Result) string {
	switch r.Type {
	case gjson.Number:
		return common.FormatDecimal(r.Num)
	case gjson.String:
		return strings.TrimSpace(r.Str)
	default:
		return ""
	}
}
