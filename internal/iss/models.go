package iss

import (
	"time"
)

// Stage identifies a step of the lookup pipeline.
type Stage string

const (
	StageIdle       Stage = "idle"
	StageResolveIP  Stage = "resolve-ip"
	StageGeolocate  Stage = "geolocate"
	StagePredict    Stage = "predict"
	StageDone       Stage = "done"
	StageFailed     Stage = "failed"
	StageReverseGeo Stage = "reverse-geocode"
)

// IPAddress is an IPv4 address in dotted-quad form, as reported by the resolver.
type IPAddress string

// Coordinates is a latitude/longitude pair kept as decimal strings.
// Both fields must be non-empty.
type Coordinates struct {
	Latitude  string `json:"latitude" validate:"required"`
	Longitude string `json:"longitude" validate:"required"`
}

// FlyOverWindow is a predicted ISS pass.
type FlyOverWindow struct {
	Risetime int64 `json:"risetime"` // unix seconds
	Duration int64 `json:"duration"` // seconds
}

// RiseTime returns the start of the pass as a time.Time.
func (w FlyOverWindow) RiseTime() time.Time {
	return time.Unix(w.Risetime, 0)
}

// Report is the result of one successful pipeline run.
type Report struct {
	ID          string          `json:"id"`
	IP          IPAddress       `json:"ip"`
	Coordinates Coordinates     `json:"coordinates"`
	Place       string          `json:"place,omitempty"`
	Passes      []FlyOverWindow `json:"passes"`
	FetchedAt   time.Time       `json:"fetchedAt"` // always UTC
}
