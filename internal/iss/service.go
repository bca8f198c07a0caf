package iss

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/i474232898/iss-flyover/internal/logging"
	"github.com/i474232898/iss-flyover/internal/metrics"
)

var validate = validator.New()

// Service runs the IP -> coordinates -> fly-over pipeline and keeps the
// history of successful runs.
type Service struct {
	store     Store
	resolver  IPResolver
	locator   Geolocator
	predictor Predictor
	namer     PlaceNamer
	lg        *logrus.Entry
}

// Option customizes a Service.
type Option func(*Service)

// WithPlaceNamer attaches a reverse geocoder used to label reports.
func WithPlaceNamer(n PlaceNamer) Option {
	return func(s *Service) {
		s.namer = n
	}
}

// NewService creates a new Service.
func NewService(store Store, resolver IPResolver, locator Geolocator, predictor Predictor, opts ...Option) *Service {
	s := &Service{
		store:     store,
		resolver:  resolver,
		locator:   locator,
		predictor: predictor,
		lg:        logging.GetLogger("iss"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Locate runs the three lookups in order. The first failing stage ends the
// run and its error is returned as is; no report is produced.
func (s *Service) Locate(ctx context.Context) (Report, error) {
	start := time.Now()
	stage := StageIdle

	fail := func(err error) (Report, error) {
		s.lg.WithField("stage", stage).Warnf("lookup failed: %v", err)
		metrics.PipelineRuns.WithLabelValues(string(stage), "error").Inc()
		return Report{}, err
	}

	stage = s.advance(stage, StageResolveIP)
	ip, err := s.resolver.ResolveIP(ctx)
	if err != nil {
		return fail(err)
	}

	stage = s.advance(stage, StageGeolocate)
	coords, err := s.locator.Geolocate(ctx, ip)
	if err != nil {
		return fail(err)
	}
	if err := validate.Struct(coords); err != nil {
		return fail(&UpstreamFailureError{Stage: StageGeolocate, Message: ErrInvalidCoordinates.Error(), IP: ip})
	}

	stage = s.advance(stage, StagePredict)
	passes, err := s.predictor.FlyoverTimes(ctx, coords)
	if err != nil {
		return fail(err)
	}

	stage = s.advance(stage, StageDone)
	metrics.PipelineRuns.WithLabelValues(string(stage), "ok").Inc()
	metrics.PipelineDuration.Observe(time.Since(start).Seconds())

	report := Report{
		ID:          uuid.NewString(),
		IP:          ip,
		Coordinates: coords,
		Passes:      passes,
		FetchedAt:   time.Now().UTC(),
	}
	report.Place = s.placeName(ctx, coords)
	return report, nil
}

// NextPasses returns the next n passes over the caller's location.
// n <= 0 returns every pass the predictor reported.
func (s *Service) NextPasses(ctx context.Context, n int) ([]FlyOverWindow, error) {
	report, err := s.Locate(ctx)
	if err != nil {
		return nil, err
	}
	return LimitPasses(report.Passes, n), nil
}

// PassesAt skips the IP and geolocation stages and predicts passes for
// explicit coordinates.
func (s *Service) PassesAt(ctx context.Context, coords Coordinates, n int) ([]FlyOverWindow, error) {
	if err := validate.Struct(coords); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCoordinates, err)
	}
	passes, err := s.predictor.FlyoverTimes(ctx, coords)
	if err != nil {
		return nil, err
	}
	return LimitPasses(passes, n), nil
}

// RefreshAndStore runs the pipeline and records the resulting report.
// A failed run leaves the stored history untouched.
func (s *Service) RefreshAndStore(ctx context.Context) error {
	report, err := s.Locate(ctx)
	if err != nil {
		return err
	}
	s.store.SaveReport(report)
	s.lg.Debugf("stored report %s with %d passes", report.ID, len(report.Passes))
	return nil
}

// GetLatest delegates to the underlying store.
func (s *Service) GetLatest() (Report, error) {
	return s.store.GetLatest()
}

// GetRange delegates to the underlying store.
func (s *Service) GetRange(from, to time.Time) ([]Report, error) {
	return s.store.GetRange(from, to)
}

func (s *Service) advance(from, to Stage) Stage {
	s.lg.WithField("stage", to).Debugf("%s -> %s", from, to)
	return to
}

func (s *Service) placeName(ctx context.Context, coords Coordinates) string {
	if s.namer == nil {
		return ""
	}
	name, err := s.namer.PlaceName(ctx, coords)
	if err != nil {
		s.lg.WithField("stage", StageReverseGeo).Infof("no place name for %s,%s: %v", coords.Latitude, coords.Longitude, err)
		return ""
	}
	return name
}

// LimitPasses returns the first n passes. n <= 0 returns all of them.
func LimitPasses(passes []FlyOverWindow, n int) []FlyOverWindow {
	if n <= 0 || n >= len(passes) {
		return passes
	}
	return passes[:n]
}
