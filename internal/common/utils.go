package common

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatDecimal renders f with the fewest digits that round-trip,
// e.g. 49.2767 -> "49.2767", -123 -> "-123".
func FormatDecimal(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ParseLatLon parses a latitude/longitude pair given as decimal strings.
func ParseLatLon(lat, lon string) (float64, float64, error) {
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude %q: %w", lat, err)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude %q: %w", lon, err)
	}
	return la, lo, nil
}
