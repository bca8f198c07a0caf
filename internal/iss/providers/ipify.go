package providers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sony/gobreaker"

	"github.com/i474232898/iss-flyover/internal/iss"
)

// DefaultIpifyURL is the public IP echo endpoint.
const DefaultIpifyURL = "https://api.ipify.org?format=json"

// IpifyResolver implements iss.IPResolver using ipify.
type IpifyResolver struct {
	url     string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewIpifyResolver(client *http.Client, url string) *IpifyResolver {
	if url == "" {
		url = DefaultIpifyURL
	}
	return &IpifyResolver{
		url:     url,
		client:  client,
		circuit: newBreaker("ipify"),
	}
}

func (r *IpifyResolver) ResolveIP(ctx context.Context) (iss.IPAddress, error) {
	body, err := getBody(ctx, r.client, r.circuit, iss.StageResolveIP, r.url)
	if err != nil {
		return "", err
	}

	var payload struct {
		IP string `json:"ip"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", decodeError(iss.StageResolveIP, err)
	}
	if payload.IP == "" {
		return "", &iss.UpstreamFailureError{
			Stage:   iss.StageResolveIP,
			Message: "no ip in response",
		}
	}

	return iss.IPAddress(payload.IP), nil
}
