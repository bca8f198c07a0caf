package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/iss-flyover/internal/iss"
	"github.com/i474232898/iss-flyover/internal/store"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app. defaultLimit is
// the number of passes returned when the request does not say (0 = all).
func RegisterRoutes(app *fiber.App, service *iss.Service, defaultLimit int) {
	v1 := app.Group("/api/v1")

	v1.Get("/passes", func(c *fiber.Ctx) error {
		n, err := parseLimit(c, defaultLimit)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		report, err := service.Locate(c.UserContext())
		if err != nil {
			return upstreamError(err)
		}
		report.Passes = iss.LimitPasses(report.Passes, n)

		return c.JSON(report)
	})

	v1.Get("/passes/at", func(c *fiber.Ctx) error {
		var q coordinatesQuery
		q.Lat = c.Query("lat")
		q.Lon = c.Query("lon")
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		n, err := parseLimit(c, defaultLimit)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		coords := iss.Coordinates{Latitude: q.Lat, Longitude: q.Lon}
		passes, err := service.PassesAt(c.UserContext(), coords, n)
		if err != nil {
			return upstreamError(err)
		}

		return c.JSON(fiber.Map{
			"coordinates": coords,
			"passes":      passes,
		})
	})

	v1.Get("/passes/latest", func(c *fiber.Ctx) error {
		report, err := service.GetLatest()
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no fly-over report stored yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read fly-over report")
		}

		return c.JSON(report)
	})

	v1.Get("/passes/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		reports, err := service.GetRange(req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no fly-over reports for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read fly-over history")
		}

		return c.JSON(fiber.Map{
			"from":    req.From,
			"to":      req.To,
			"reports": reports,
		})
	})
}

// upstreamError maps pipeline failures onto HTTP statuses, keeping the
// failing stage and cause in the message.
func upstreamError(err error) error {
	var (
		netErr    *iss.NetworkError
		statusErr *iss.HTTPStatusError
		upErr     *iss.UpstreamFailureError
	)
	switch {
	case errors.Is(err, iss.ErrInvalidCoordinates):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.As(err, &netErr):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	case errors.As(err, &statusErr), errors.As(err, &upErr), errors.Is(err, iss.ErrDecode):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}

// coordinatesQuery holds query parameters for an explicit location.
type coordinatesQuery struct {
	Lat string `validate:"required,latitude"`
	Lon string `validate:"required,longitude"`
}

// parseLimit reads the optional n parameter.
func parseLimit(c *fiber.Ctx, def int) (int, error) {
	s := c.Query("n")
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.New("n must be a non-negative integer")
	}
	return n, nil
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
