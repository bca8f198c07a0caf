package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/iss-flyover/internal/iss/providers"
	"github.com/i474232898/iss-flyover/internal/logging"
)

const (
	ResolverHTTP = "http"
	ResolverDNS  = "dns"
)

type AppConfig struct {
	// Upstream endpoints.
	IpifyURL   string
	IPWhoisURL string
	FlyoverURL string

	// IPResolver selects how the public IP is found: "http" (ipify) or "dns" (OpenDNS).
	IPResolver    string
	OpenDNSServer string

	// GeoIPDBPath, when set, geolocates from a local MaxMind database instead of ipwho.is.
	GeoIPDBPath string

	// GeocoderAPIKey enables place labels on reports.
	GeocoderAPIKey string

	HTTPTimeout time.Duration

	// FetchInterval controls how often the report is refreshed in the background (0 = never).
	FetchInterval time.Duration

	// In-memory store retention.
	StoreMaxHistory int           // max number of reports (0 = unlimited)
	StoreMaxAge     time.Duration // max age of reports (0 = unlimited)

	// PassLimit is the default number of passes returned (0 = all).
	PassLimit int

	Port     string
	LogLevel string
}

// Load reads configuration from environment with sensible defaults.
// A .env file in the working directory is loaded first if present.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		logging.GetLogger("config").Debugf("no .env file loaded: %v", err)
	}
	cfg := &AppConfig{}

	cfg.IpifyURL = getenvDefault("IPIFY_URL", providers.DefaultIpifyURL)
	cfg.IPWhoisURL = getenvDefault("IPWHOIS_URL", providers.DefaultIPWhoisURL)
	cfg.FlyoverURL = getenvDefault("FLYOVER_URL", providers.DefaultFlyoverURL)

	cfg.IPResolver = strings.ToLower(getenvDefault("IP_RESOLVER", ResolverHTTP))
	if cfg.IPResolver != ResolverHTTP && cfg.IPResolver != ResolverDNS {
		return nil, fmt.Errorf("invalid IP_RESOLVER %q: want %q or %q", cfg.IPResolver, ResolverHTTP, ResolverDNS)
	}
	cfg.OpenDNSServer = getenvDefault("OPENDNS_SERVER", providers.DefaultOpenDNSServer)

	cfg.GeoIPDBPath = os.Getenv("GEOIP_DB_PATH")
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}

	// Background refresh: default 15 minutes.
	if cfg.FetchInterval, err = getenvDuration("FETCH_INTERVAL", "15m"); err != nil {
		return nil, err
	}

	// Store retention.
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 96) // roughly 24h at 15-minute intervals
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", "24h"); err != nil {
		return nil, err
	}

	cfg.PassLimit = getenvInt("PASS_LIMIT", 5)
	cfg.Port = getenvDefault("PORT", "8080")
	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
