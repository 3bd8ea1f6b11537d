package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/samirrijal/sightseer/internal/core/domain"
)

// uuidParam reads a path parameter and checks that it is a UUID.
func uuidParam(c *fiber.Ctx, name string) (string, bool) {
	id := c.Params(name)
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return strings.ToLower(id), true
}

func validUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// --- Stations ---

// ListStationsHandler returns all stations, paginated.
func ListStationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stations, err := deps.Stations.List(c.UserContext())
		if err != nil {
			return errFromService(c, err, "stations")
		}
		return paginate(c, stations, 100, 500)
	}
}

// NearbyStationsHandler returns stations within a radius of a point.
func NearbyStationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Query("lat") == "" || c.Query("lon") == "" {
			return errBadRequest(c, "lat and lon are required")
		}
		lat := c.QueryFloat("lat", 0)
		lon := c.QueryFloat("lon", 0)
		radius := c.QueryFloat("radius", 500)
		limit := c.QueryInt("limit", 20)

		if radius <= 0 || radius > 5000 {
			return errBadRequest(c, "radius must be between 1 and 5000 meters")
		}

		stations, err := deps.Stations.Nearby(c.UserContext(), lat, lon, radius, limit)
		if err != nil {
			return errFromService(c, err, "stations")
		}
		return c.JSON(stations)
	}
}

// GetStationHandler returns a single station by ID.
func GetStationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return errBadRequest(c, "station id must be a UUID")
		}
		st, err := deps.Stations.GetByID(c.UserContext(), id)
		if err != nil {
			return errFromService(c, err, "station")
		}
		return c.JSON(st)
	}
}

type stationInput struct {
	Code     string          `json:"code"`
	Name     string          `json:"name"`
	Location domain.GeoPoint `json:"location"`
	Address  string          `json:"address"`
	Active   *bool           `json:"active"`
}

// CreateStationHandler stores a new station.
func CreateStationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in stationInput
		if err := c.BodyParser(&in); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		st := &domain.Station{
			Code:     in.Code,
			Name:     in.Name,
			Location: in.Location,
			Address:  in.Address,
			Active:   in.Active == nil || *in.Active,
		}
		if err := deps.Stations.Create(c.UserContext(), st); err != nil {
			return errFromService(c, err, "station")
		}
		return c.Status(fiber.StatusCreated).JSON(st)
	}
}

// StationPOIsHandler returns the sights reachable from a station.
func StationPOIsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return errBadRequest(c, "station id must be a UUID")
		}
		pois, err := deps.Stations.PointsOfInterest(c.UserContext(), id)
		if err != nil {
			return errFromService(c, err, "station")
		}
		if pois == nil {
			pois = []domain.PointOfInterest{}
		}
		return c.JSON(pois)
	}
}

// --- Tours ---

// ListToursHandler returns all tours, paginated.
func ListToursHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tours, err := deps.Tours.List(c.UserContext())
		if err != nil {
			return errFromService(c, err, "tours")
		}
		return paginate(c, tours, 50, 200)
	}
}

// GetTourHandler returns a tour by slug.
func GetTourHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tour, err := deps.Tours.GetBySlug(c.UserContext(), c.Params("slug"))
		if err != nil {
			return errFromService(c, err, "tour")
		}
		return c.JSON(tour)
	}
}

type tourInput struct {
	Slug            string          `json:"slug"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	Currency        string          `json:"currency"`
	DurationMinutes int             `json:"duration_minutes"`
	Active          *bool           `json:"active"`
}

// CreateTourHandler stores a new tour.
func CreateTourHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in tourInput
		if err := c.BodyParser(&in); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		tour := &domain.Tour{
			Slug:            in.Slug,
			Name:            in.Name,
			Description:     in.Description,
			Price:           in.Price,
			Currency:        in.Currency,
			DurationMinutes: in.DurationMinutes,
			Active:          in.Active == nil || *in.Active,
		}
		if err := deps.Tours.Create(c.UserContext(), tour); err != nil {
			return errFromService(c, err, "tour")
		}
		return c.Status(fiber.StatusCreated).JSON(tour)
	}
}

// TourRoutesHandler lists the routes a tour drives.
func TourRoutesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tour, err := deps.Tours.GetBySlug(c.UserContext(), c.Params("slug"))
		if err != nil {
			return errFromService(c, err, "tour")
		}
		routes, err := deps.Routes.ListByTour(c.UserContext(), tour.ID)
		if err != nil {
			return errFromService(c, err, "routes")
		}
		if routes == nil {
			routes = []domain.Route{}
		}
		return c.JSON(routes)
	}
}

// TourSchedulesHandler lists upcoming departures of a tour.
func TourSchedulesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		schedules, err := deps.Tours.Schedules(c.UserContext(), c.Params("slug"), c.QueryInt("limit", 10))
		if err != nil {
			return errFromService(c, err, "tour")
		}
		if schedules == nil {
			schedules = []domain.Schedule{}
		}
		return c.JSON(schedules)
	}
}

// --- Buses ---

// ListBusesHandler returns the fleet, paginated.
func ListBusesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		buses, err := deps.Buses.List(c.UserContext())
		if err != nil {
			return errFromService(c, err, "buses")
		}
		return paginate(c, buses, 100, 500)
	}
}

// GetBusHandler returns a bus by ID.
func GetBusHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return errBadRequest(c, "bus id must be a UUID")
		}
		bus, err := deps.Buses.GetByID(c.UserContext(), id)
		if err != nil {
			return errFromService(c, err, "bus")
		}
		return c.JSON(bus)
	}
}
