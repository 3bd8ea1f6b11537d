package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Station is a place where tour buses stop.
type Station struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Location  GeoPoint  `json:"location"`
	Address   string    `json:"address,omitempty"`
	Active    bool      `json:"active"`
	Distance  *float64  `json:"distance,omitempty"` // computed field
	CreatedAt time.Time `json:"created_at"`
}

// PointOfInterest is a sight reachable from a station.
type PointOfInterest struct {
	ID          string   `json:"id"`
	StationID   string   `json:"station_id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description,omitempty"`
	Location    GeoPoint `json:"location"`
}

// Tour is a sightseeing product sold to customers.
type Tour struct {
	ID              string          `json:"id"`
	Slug            string          `json:"slug"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Price           decimal.Decimal `json:"price"`
	Currency        string          `json:"currency"`
	DurationMinutes int             `json:"duration_minutes"`
	Active          bool            `json:"active"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Route is the path a tour drives, stored as a set of segments.
type Route struct {
	ID             string    `json:"id"`
	TourID         string    `json:"tour_id"`
	Name           string    `json:"name"`
	StartStationID string    `json:"start_station_id"`
	Color          string    `json:"color,omitempty"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
}

// SegmentStatus marks whether a segment is currently driven.
type SegmentStatus string

const (
	SegmentActive   SegmentStatus = "active"
	SegmentDetour   SegmentStatus = "detour"
	SegmentInactive SegmentStatus = "inactive"
)

// Segment is a directed leg of a route between two stations.
type Segment struct {
	ID                 string         `json:"id"`
	RouteID            string         `json:"route_id"`
	DepartureStationID string         `json:"departure_station_id"`
	EndStationID       string         `json:"end_station_id"`
	Sequence           int            `json:"sequence"`
	Geometry           *GeoLineString `json:"geometry,omitempty"`
	Status             SegmentStatus  `json:"status"`
	CreatedAt          time.Time      `json:"created_at"`
}

// LinkID, From and To let segments be ordered by routechain.
func (s Segment) LinkID() string { return s.ID }
func (s Segment) From() string   { return s.DepartureStationID }
func (s Segment) To() string     { return s.EndStationID }

// Bus is a vehicle in the fleet.
type Bus struct {
	ID        string    `json:"id"`
	Plate     string    `json:"plate"`
	Model     string    `json:"model,omitempty"`
	Capacity  int       `json:"capacity"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Schedule is a departure of a tour with an assigned bus.
type Schedule struct {
	ID             string          `json:"id"`
	TourID         string          `json:"tour_id"`
	BusID          string          `json:"bus_id"`
	DepartsAt      time.Time       `json:"departs_at"`
	Fare           decimal.Decimal `json:"fare"`
	SeatsAvailable int             `json:"seats_available"`
}

// RouteChain is a route with its segments in driving order.
type RouteChain struct {
	Route        *Route         `json:"route"`
	Segments     []Segment      `json:"segments"`
	Stations     []string       `json:"stations"`
	Outcome      string         `json:"outcome"`
	Complete     bool           `json:"complete"`
	Unreached    int            `json:"unreached"`
	LengthMeters float64        `json:"length_meters"`
	Path         *GeoLineString `json:"path,omitempty"`
}
