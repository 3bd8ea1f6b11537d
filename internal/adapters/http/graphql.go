package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/sightseer/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	lineType := graphql.NewObject(graphql.ObjectConfig{
		Name: "LineString",
		Fields: graphql.Fields{
			"coordinates": &graphql.Field{Type: graphql.NewList(geoPointType)},
		},
	})

	stationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Station",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.String},
			"code":     &graphql.Field{Type: graphql.String},
			"name":     &graphql.Field{Type: graphql.String},
			"location": &graphql.Field{Type: geoPointType},
			"address":  &graphql.Field{Type: graphql.String},
			"active":   &graphql.Field{Type: graphql.Boolean},
			"distance": &graphql.Field{Type: graphql.Float},
		},
	})

	routeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Route",
		Fields: graphql.Fields{
			"id":               &graphql.Field{Type: graphql.String},
			"tour_id":          &graphql.Field{Type: graphql.String},
			"name":             &graphql.Field{Type: graphql.String},
			"start_station_id": &graphql.Field{Type: graphql.String},
			"color":            &graphql.Field{Type: graphql.String},
			"active":           &graphql.Field{Type: graphql.Boolean},
		},
	})

	segmentType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Segment",
		Fields: graphql.Fields{
			"id":                   &graphql.Field{Type: graphql.String},
			"route_id":             &graphql.Field{Type: graphql.String},
			"departure_station_id": &graphql.Field{Type: graphql.String},
			"end_station_id":       &graphql.Field{Type: graphql.String},
			"sequence":             &graphql.Field{Type: graphql.Int},
			"status":               &graphql.Field{Type: graphql.String},
			"geometry":             &graphql.Field{Type: lineType},
		},
	})

	chainType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RouteChain",
		Fields: graphql.Fields{
			"route":         &graphql.Field{Type: routeType},
			"segments":      &graphql.Field{Type: graphql.NewList(segmentType)},
			"stations":      &graphql.Field{Type: graphql.NewList(graphql.String)},
			"outcome":       &graphql.Field{Type: graphql.String},
			"complete":      &graphql.Field{Type: graphql.Boolean},
			"unreached":     &graphql.Field{Type: graphql.Int},
			"length_meters": &graphql.Field{Type: graphql.Float},
			"path":          &graphql.Field{Type: lineType},
		},
	})

	tourType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Tour",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"slug":        &graphql.Field{Type: graphql.String},
			"name":        &graphql.Field{Type: graphql.String},
			"description": &graphql.Field{Type: graphql.String},
			"price": &graphql.Field{
				Type:        graphql.String,
				Description: "Decimal price as a string",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if t := tourSource(p.Source); t != nil {
						return t.Price.StringFixed(2), nil
					}
					return nil, nil
				},
			},
			"currency":         &graphql.Field{Type: graphql.String},
			"duration_minutes": &graphql.Field{Type: graphql.Int},
			"routes": &graphql.Field{
				Type: graphql.NewList(routeType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					t := tourSource(p.Source)
					if t == nil {
						return nil, nil
					}
					return deps.Routes.ListByTour(p.Context, t.ID)
				},
			},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"stations": &graphql.Field{
				Type:        graphql.NewList(stationType),
				Description: "List all stations",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Stations.List(p.Context)
				},
			},
			"station": &graphql.Field{
				Type:        stationType,
				Description: "Get a station by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Stations.GetByID(p.Context, p.Args["id"].(string))
				},
			},
			"stationsNearby": &graphql.Field{
				Type:        graphql.NewList(stationType),
				Description: "Find stations near a location",
				Args: graphql.FieldConfigArgument{
					"lat":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 500.0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["lat"].(float64)
					lon := p.Args["lon"].(float64)
					radius := p.Args["radius"].(float64)
					limit := p.Args["limit"].(int)
					return deps.Stations.Nearby(p.Context, lat, lon, radius, limit)
				},
			},
			"tours": &graphql.Field{
				Type:        graphql.NewList(tourType),
				Description: "List all tours",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Tours.List(p.Context)
				},
			},
			"tour": &graphql.Field{
				Type:        tourType,
				Description: "Get a tour by slug",
				Args: graphql.FieldConfigArgument{
					"slug": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Tours.GetBySlug(p.Context, p.Args["slug"].(string))
				},
			},
			"route": &graphql.Field{
				Type:        routeType,
				Description: "Get a route by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Routes.GetByID(p.Context, p.Args["id"].(string))
				},
			},
			"routeChain": &graphql.Field{
				Type:        chainType,
				Description: "Segments of a route in driving order",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Routes.Chain(p.Context, p.Args["id"].(string))
				},
			},
			"routeStops": &graphql.Field{
				Type:        graphql.NewList(stationType),
				Description: "Stations of a route in visiting order",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Routes.Stops(p.Context, p.Args["id"].(string))
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

func tourSource(src interface{}) *domain.Tour {
	switch t := src.(type) {
	case *domain.Tour:
		return t
	case domain.Tour:
		return &t
	}
	return nil
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Query == "" {
			return errBadRequest(c, "query is required")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
