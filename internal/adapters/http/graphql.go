package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/KRVIMAL/routeye-sub001/internal/core/domain"
)

// fields declares scalar and object fields by name. Values resolve through
// the json tags of the domain types.
func fields(types map[string]graphql.Output) graphql.Fields {
	out := make(graphql.Fields, len(types))
	for name, t := range types {
		out[name] = &graphql.Field{Type: t}
	}
	return out
}

func object(name string, types map[string]graphql.Output) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{Name: name, Fields: fields(types)})
}

// buildSchema creates the read-only GraphQL schema.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	coordinate := object("Coordinate", map[string]graphql.Output{
		"lat": graphql.Float,
		"lng": graphql.Float,
	})
	metric := object("Metric", map[string]graphql.Output{
		"value": graphql.Float,
		"text":  graphql.String,
	})
	location := object("Location", map[string]graphql.Output{
		"name":                graphql.String,
		"coordinate":          coordinate,
		"is_geofence_enabled": graphql.Boolean,
		"geofence_ref":        graphql.String,
	})
	route := object("Route", map[string]graphql.Output{
		"id":          graphql.String,
		"name":        graphql.String,
		"travel_mode": graphql.String,
		"origin":      location,
		"destination": location,
		"waypoints":   graphql.NewList(location),
		"path":        graphql.NewList(coordinate),
		"distance":    metric,
		"duration":    metric,
		"created_at":  graphql.DateTime,
		"updated_at":  graphql.DateTime,
	})
	geometry := object("Geometry", map[string]graphql.Output{
		"type":       graphql.String,
		"center":     coordinate,
		"radius":     graphql.Float,
		"vertices":   graphql.NewList(coordinate),
		"north_east": coordinate,
		"south_west": coordinate,
	})
	geozone := object("Geozone", map[string]graphql.Output{
		"id":             graphql.String,
		"name":           graphql.String,
		"final_address":  graphql.String,
		"geometry":       geometry,
		"contact_number": graphql.String,
		"is_public":      graphql.Boolean,
		"is_private":     graphql.Boolean,
		"created_by":     graphql.String,
		"created_at":     graphql.DateTime,
	})

	idArg := graphql.FieldConfigArgument{
		"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
	}

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"routes": &graphql.Field{
				Type:        graphql.NewList(route),
				Description: "Saved routes, newest first",
				Args: graphql.FieldConfigArgument{
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: defaultPageLimit},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					routes, _, err := deps.Routes.List(p.Context, p.Args["offset"].(int), p.Args["limit"].(int))
					return routes, err
				},
			},
			"route": &graphql.Field{
				Type: route,
				Args: idArg,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return deps.Routes.GetByID(p.Context, p.Args["id"].(string))
				},
			},
			"searchRoutes": &graphql.Field{
				Type:        graphql.NewList(route),
				Description: "Routes whose name or stop names match query",
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: defaultPageLimit},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return deps.Routes.Search(p.Context, p.Args["query"].(string), p.Args["limit"].(int))
				},
			},
			"geozones": &graphql.Field{
				Type: graphql.NewList(geozone),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return deps.Geozones.List(p.Context)
				},
			},
			"geozone": &graphql.Field{
				Type: geozone,
				Args: idArg,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return deps.Geozones.GetByID(p.Context, p.Args["id"].(string))
				},
			},
			"geozonesAt": &graphql.Field{
				Type:        graphql.NewList(geozone),
				Description: "Cached geozones whose area covers the coordinate",
				Args: graphql.FieldConfigArgument{
					"lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lng": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					at := domain.Coordinate{Lat: p.Args["lat"].(float64), Lng: p.Args["lng"].(float64)}
					if !at.Valid() {
						return nil, fmt.Errorf("%w: coordinate %s out of range", domain.ErrValidation, at)
					}
					if deps.Catalog == nil {
						return []domain.Geozone{}, nil
					}
					return deps.Catalog.Containing(at), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: query})
}

type graphQLRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
}

// GraphQLHandler serves POST /graphql.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		panic("graphql schema: " + err.Error())
	}

	return func(c *fiber.Ctx) error {
		var req graphQLRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Query == "" {
			return errBadRequest(c, "query is required")
		}

		return c.JSON(graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		}))
	}
}
