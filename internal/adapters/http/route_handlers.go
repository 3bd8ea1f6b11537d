package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/sightseer/internal/core/domain"
)

// GetRouteHandler returns a route by ID.
func GetRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return errBadRequest(c, "route id must be a UUID")
		}
		route, err := deps.Routes.GetByID(c.UserContext(), id)
		if err != nil {
			return errFromService(c, err, "route")
		}
		return c.JSON(route)
	}
}

type routeInput struct {
	TourID         string `json:"tour_id"`
	Name           string `json:"name"`
	StartStationID string `json:"start_station_id"`
	Color          string `json:"color"`
	Active         *bool  `json:"active"`
}

// CreateRouteHandler stores a new route without segments.
func CreateRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in routeInput
		if err := c.BodyParser(&in); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if !validUUID(in.TourID) || !validUUID(in.StartStationID) {
			return errBadRequest(c, "tour_id and start_station_id must be UUIDs")
		}
		route := &domain.Route{
			TourID:         in.TourID,
			Name:           in.Name,
			StartStationID: in.StartStationID,
			Color:          in.Color,
			Active:         in.Active == nil || *in.Active,
		}
		if err := deps.Routes.Create(c.UserContext(), route); err != nil {
			return errFromService(c, err, "route")
		}
		return c.Status(fiber.StatusCreated).JSON(route)
	}
}

// RouteSegmentsHandler returns a route's segments as stored.
func RouteSegmentsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return errBadRequest(c, "route id must be a UUID")
		}
		segs, err := deps.Segments.ListByRoute(c.UserContext(), id)
		if err != nil {
			return errFromService(c, err, "route")
		}
		if segs == nil {
			segs = []domain.Segment{}
		}
		return c.JSON(segs)
	}
}

type segmentInput struct {
	ID                 string                `json:"id"`
	DepartureStationID string                `json:"departure_station_id"`
	EndStationID       string                `json:"end_station_id"`
	Geometry           *domain.GeoLineString `json:"geometry"`
	Status             domain.SegmentStatus  `json:"status"`
}

type replaceSegmentsRequest struct {
	Segments []segmentInput `json:"segments"`
}

func (in segmentInput) validate(i int) error {
	if in.ID != "" && !validUUID(in.ID) {
		return fmt.Errorf("segments[%d].id must be a UUID", i)
	}
	if !validUUID(in.DepartureStationID) || !validUUID(in.EndStationID) {
		return fmt.Errorf("segments[%d] station ids must be UUIDs", i)
	}
	switch in.Status {
	case "", domain.SegmentActive, domain.SegmentDetour, domain.SegmentInactive:
	default:
		return fmt.Errorf("segments[%d].status %q is not one of active, detour, inactive", i, in.Status)
	}
	if in.Geometry != nil {
		for _, p := range in.Geometry.Coordinates {
			if !p.Valid() {
				return fmt.Errorf("segments[%d].geometry has coordinates out of range", i)
			}
		}
	}
	return nil
}

// ReplaceRouteSegmentsHandler replaces the full segment set of a route and
// returns it in driving order.
func ReplaceRouteSegmentsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return errBadRequest(c, "route id must be a UUID")
		}

		var req replaceSegmentsRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if len(req.Segments) == 0 {
			return errBadRequest(c, "segments must not be empty")
		}

		segs := make([]domain.Segment, 0, len(req.Segments))
		for i, in := range req.Segments {
			if err := in.validate(i); err != nil {
				return errBadRequest(c, err.Error())
			}
			segs = append(segs, domain.Segment{
				ID:                 in.ID,
				DepartureStationID: in.DepartureStationID,
				EndStationID:       in.EndStationID,
				Geometry:           in.Geometry,
				Status:             in.Status,
			})
		}

		ordered, err := deps.Segments.ReplaceRouteSegments(c.UserContext(), id, segs)
		if err != nil {
			return errFromService(c, err, "route")
		}
		return c.JSON(ordered)
	}
}

// DeleteSegmentHandler removes a single segment.
func DeleteSegmentHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return errBadRequest(c, "segment id must be a UUID")
		}
		if err := deps.Segments.Delete(c.UserContext(), id); err != nil {
			return errFromService(c, err, "segment")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// RouteChainHandler returns the route's segments in driving order together
// with the chain outcome. An incomplete chain is still a 200: the outcome and
// unreached count tell the client what is missing.
func RouteChainHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return errBadRequest(c, "route id must be a UUID")
		}
		chain, err := deps.Routes.Chain(c.UserContext(), id)
		if err != nil {
			return errFromService(c, err, "route")
		}
		return c.JSON(chain)
	}
}

// RouteStopsHandler returns the stations of a route in visiting order.
func RouteStopsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return errBadRequest(c, "route id must be a UUID")
		}
		stops, err := deps.Routes.Stops(c.UserContext(), id)
		if err != nil {
			return errFromService(c, err, "route")
		}
		return c.JSON(stops)
	}
}
