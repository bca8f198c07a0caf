package iss

import (
	"context"
	"time"
)

// IPResolver looks up the caller's public IPv4 address.
type IPResolver interface {
	ResolveIP(ctx context.Context) (IPAddress, error)
}

// Geolocator maps an IP address to coordinates.
type Geolocator interface {
	Geolocate(ctx context.Context, ip IPAddress) (Coordinates, error)
}

// Predictor returns upcoming ISS passes over the given coordinates.
type Predictor interface {
	FlyoverTimes(ctx context.Context, coords Coordinates) ([]FlyOverWindow, error)
}

// PlaceNamer produces a human readable label for a coordinate pair.
type PlaceNamer interface {
	PlaceName(ctx context.Context, coords Coordinates) (string, error)
}

// Store keeps the history of completed reports.
type Store interface {
	SaveReport(report Report)
	GetLatest() (Report, error)
	GetRange(from, to time.Time) ([]Report, error)
}
