package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/miekg/dns"
	"github.com/sony/gobreaker"

	"github.com/i474232898/iss-flyover/internal/iss"
	"github.com/i474232898/iss-flyover/internal/metrics"
)

const (
	// DefaultOpenDNSServer answers myip.opendns.com with the querying address.
	DefaultOpenDNSServer = "resolver1.opendns.com:53"

	myIPName = "myip.opendns.com"
)

// OpenDNSResolver implements iss.IPResolver with a DNS query instead of HTTP.
type OpenDNSResolver struct {
	server  string
	client  *dns.Client
	circuit *gobreaker.CircuitBreaker
}

func NewOpenDNSResolver(server string, timeout time.Duration) *OpenDNSResolver {
	if server == "" {
		server = DefaultOpenDNSServer
	}
	return &OpenDNSResolver{
		server: server,
		client: &dns.Client{
			Net:     "udp",
			Timeout: timeout,
		},
		circuit: newBreaker("opendns"),
	}
}

func (r *OpenDNSResolver) ResolveIP(ctx context.Context) (iss.IPAddress, error) {
	target := "dns://" + r.server

	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(myIPName), dns.TypeA)

	start := time.Now()
	defer func() {
		metrics.UpstreamDuration.WithLabelValues(string(iss.StageResolveIP)).Observe(time.Since(start).Seconds())
	}()

	result, err := r.circuit.Execute(func() (interface{}, error) {
		in, _, err := r.client.ExchangeContext(ctx, m, r.server)
		if err != nil {
			return nil, &iss.NetworkError{Stage: iss.StageResolveIP, URL: target, Err: err}
		}
		return in, nil
	})
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(string(iss.StageResolveIP), "error").Inc()
		var netErr *iss.NetworkError
		if !errors.As(err, &netErr) {
			err = &iss.NetworkError{Stage: iss.StageResolveIP, URL: target, Err: err}
		}
		return "", err
	}
	metrics.UpstreamRequests.WithLabelValues(string(iss.StageResolveIP), "ok").Inc()

	in := result.(*dns.Msg)
	if in.Rcode != dns.RcodeSuccess {
		return "", &iss.UpstreamFailureError{
			Stage:   iss.StageResolveIP,
			Message: fmt.Sprintf("%s answered %s", r.server, dns.RcodeToString[in.Rcode]),
		}
	}
	for _, rr := range in.Answer {
		if a, ok := rr.(*dns.A); ok {
			return iss.IPAddress(a.A.String()), nil
		}
	}
	return "", &iss.UpstreamFailureError{
		Stage:   iss.StageResolveIP,
		Message: "no A record for " + myIPName,
	}
}
