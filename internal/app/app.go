// Package app assembles the lookup service from configuration.
package app

import (
	"net/http"

	"github.com/i474232898/iss-flyover/internal/config"
	"github.com/i474232898/iss-flyover/internal/geocode"
	"github.com/i474232898/iss-flyover/internal/iss"
	"github.com/i474232898/iss-flyover/internal/iss/providers"
	"github.com/i474232898/iss-flyover/internal/logging"
	"github.com/i474232898/iss-flyover/internal/store"
)

// Build wires resolver, geolocator and predictor according to cfg. The
// returned cleanup closes any resources opened along the way.
func Build(cfg *config.AppConfig, st iss.Store) (*iss.Service, func(), error) {
	lg := logging.GetLogger("app")
	cleanup := func() {}

	// Shared HTTP client for outbound upstream calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	var resolver iss.IPResolver
	switch cfg.IPResolver {
	case config.ResolverDNS:
		resolver = providers.NewOpenDNSResolver(cfg.OpenDNSServer, cfg.HTTPTimeout)
		lg.Infof("resolving public IP via DNS (%s)", cfg.OpenDNSServer)
	default:
		resolver = providers.NewIpifyResolver(httpClient, cfg.IpifyURL)
	}

	var locator iss.Geolocator
	if cfg.GeoIPDBPath != "" {
		mm, err := providers.OpenMaxMindGeolocator(cfg.GeoIPDBPath)
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = func() {
			if err := mm.Close(); err != nil {
				lg.Warnf("closing geoip database: %v", err)
			}
		}
		locator = mm
		lg.Infof("geolocating from %s", cfg.GeoIPDBPath)
	} else {
		locator = providers.NewIPWhoisGeolocator(httpClient, cfg.IPWhoisURL)
	}

	predictor := providers.NewFlyoverPredictor(httpClient, cfg.FlyoverURL)

	var opts []iss.Option
	if cfg.GeocoderAPIKey != "" {
		opts = append(opts, iss.WithPlaceNamer(geocode.NewGoogleNamer(cfg.GeocoderAPIKey)))
	}

	if st == nil {
		st = store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)
	}

	return iss.NewService(st, resolver, locator, predictor, opts...), cleanup, nil
}
