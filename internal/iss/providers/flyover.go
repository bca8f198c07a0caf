package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"

	"github.com/i474232898/iss-flyover/internal/iss"
)

// DefaultFlyoverURL is the ISS pass prediction endpoint.
const DefaultFlyoverURL = "https://iss-flyover.herokuapp.com/json/"

const flyoverSuccess = "success"

// FlyoverPredictor implements iss.Predictor using the iss-flyover service.
type FlyoverPredictor struct {
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewFlyoverPredictor(client *http.Client, baseURL string) *FlyoverPredictor {
	if baseURL == "" {
		baseURL = DefaultFlyoverURL
	}
	return &FlyoverPredictor{
		baseURL: baseURL,
		client:  client,
		circuit: newBreaker("flyover"),
	}
}

func (p *FlyoverPredictor) FlyoverTimes(ctx context.Context, coords iss.Coordinates) ([]iss.FlyOverWindow, error) {
	values := url.Values{}
	values.Set("lat", coords.Latitude)
	values.Set("lon", coords.Longitude)
	u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())

	body, err := getBody(ctx, p.client, p.circuit, iss.StagePredict, u)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Message  string              `json:"message"`
		Response []iss.FlyOverWindow `json:"response"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, decodeError(iss.StagePredict, err)
	}

	if payload.Message != flyoverSuccess {
		return nil, &iss.UpstreamFailureError{
			Stage:   iss.StagePredict,
			Message: payload.Message,
		}
	}

	return payload.Response, nil
}
