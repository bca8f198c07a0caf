package iss

import (
	"fmt"
	"time"
)

const passTimeLayout = "Mon Jan 02 2006 15:04:05 MST"

// FormatPass renders a window for display in loc.
func FormatPass(w FlyOverWindow, loc *time.Location) string {
	return fmt.Sprintf("Next pass at %s for %d seconds!", w.RiseTime().In(loc).Format(passTimeLayout), w.Duration)
}
