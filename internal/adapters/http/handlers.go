package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/KRVIMAL/routeye-sub001/internal/core/domain"
)

const maxQueryLength = 200

func ok(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Envelope{Success: true, Message: message, Data: data})
}

// ---- Routes ----

// ListRoutesHandler returns a page of saved routes, newest first.
func ListRoutesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset, limit := pageParams(c)
		routes, total, err := deps.Routes.List(c.UserContext(), offset, limit)
		if err != nil {
			return errFromDomain(c, err, "routes")
		}
		if routes == nil {
			routes = []domain.Route{}
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Success: true, Data: routes, Pagination: pg})
	}
}

// SearchRoutesHandler matches routes by name and stop names.
func SearchRoutesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := strings.TrimSpace(c.Query("q"))
		if query == "" {
			return errBadRequest(c, "q query parameter is required")
		}
		if len(query) > maxQueryLength {
			return errBadRequest(c, "query too long (max 200 characters)")
		}
		routes, err := deps.Routes.Search(c.UserContext(), query, c.QueryInt("limit", defaultPageLimit))
		if err != nil {
			return errFromDomain(c, err, "routes")
		}
		if routes == nil {
			routes = []domain.Route{}
		}
		return ok(c, fiber.StatusOK, "", routes)
	}
}

// GetRouteHandler returns a single route by ID.
func GetRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		route, err := deps.Routes.GetByID(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err, "route")
		}
		return ok(c, fiber.StatusOK, "", route)
	}
}

// CreateRouteHandler stores a route composed outside an editing session.
func CreateRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var route domain.Route
		if err := c.BodyParser(&route); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		route.ID = ""
		saved, err := deps.Routes.Save(c.UserContext(), &route)
		if err != nil {
			return errFromDomain(c, err, "route")
		}
		c.Location("/v1/routes/" + saved.ID)
		return ok(c, fiber.StatusCreated, "Route created", saved)
	}
}

// UpdateRouteHandler replaces a stored route.
func UpdateRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var route domain.Route
		if err := c.BodyParser(&route); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		route.ID = c.Params("id")
		saved, err := deps.Routes.Save(c.UserContext(), &route)
		if err != nil {
			return errFromDomain(c, err, "route")
		}
		return ok(c, fiber.StatusOK, "Route updated", saved)
	}
}

// DeleteRouteHandler removes a route.
func DeleteRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if err := deps.Routes.Delete(c.UserContext(), id); err != nil {
			return errFromDomain(c, err, "route")
		}
		return ok(c, fiber.StatusOK, "Route deleted", fiber.Map{"id": id})
	}
}

// RouteKMLHandler exports a route as KML.
func RouteKMLHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		route, err := deps.Routes.GetByID(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err, "route")
		}
		data, err := routeKML(route)
		if err != nil {
			return errInternal(c, err)
		}
		c.Set(fiber.HeaderContentType, kmlContentType)
		c.Attachment("route-" + route.ID + ".kml")
		return c.Send(data)
	}
}

// ---- Geozones ----

// ListGeozonesHandler returns every geozone, optionally filtered by name.
func ListGeozonesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := deps.Geozones.List(c.UserContext())
		if err != nil {
			return errFromDomain(c, err, "geozones")
		}
		if q := strings.ToLower(strings.TrimSpace(c.Query("q"))); q != "" {
			filtered := list[:0:0]
			for _, gz := range list {
				if strings.Contains(strings.ToLower(gz.Name), q) {
					filtered = append(filtered, gz)
				}
			}
			list = filtered
		}
		if list == nil {
			list = []domain.Geozone{}
		}
		return ok(c, fiber.StatusOK, "", list)
	}
}

// GetGeozoneHandler returns a single geozone by ID.
func GetGeozoneHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		gz, err := deps.Geozones.GetByID(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err, "geozone")
		}
		return ok(c, fiber.StatusOK, "", gz)
	}
}

// CreateGeozoneHandler provisions a geozone and refreshes the local catalog.
func CreateGeozoneHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in domain.GeozoneInput
		if err := c.BodyParser(&in); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		gz, err := deps.Provisioner.Provision(c.UserContext(), in)
		if err != nil {
			return errFromDomain(c, err, "geozone")
		}
		refreshCatalog(c, deps)
		c.Location("/v1/geozones/" + gz.ID)
		return ok(c, fiber.StatusCreated, "Geozone created", gz)
	}
}

// DeleteGeozoneHandler removes a geozone and refreshes the local catalog.
func DeleteGeozoneHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if err := deps.Geozones.Delete(c.UserContext(), id); err != nil {
			return errFromDomain(c, err, "geozone")
		}
		refreshCatalog(c, deps)
		return ok(c, fiber.StatusOK, "Geozone deleted", fiber.Map{"id": id})
	}
}

// GeozonesKMLHandler exports every geozone as KML.
func GeozonesKMLHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := deps.Geozones.List(c.UserContext())
		if err != nil {
			return errFromDomain(c, err, "geozones")
		}
		data, err := geozonesKML(list)
		if err != nil {
			return errInternal(c, err)
		}
		c.Set(fiber.HeaderContentType, kmlContentType)
		c.Attachment("geozones.kml")
		return c.Send(data)
	}
}

// CatalogStatusHandler reports the state of the in-memory geozone catalog.
func CatalogStatusHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := fiber.Map{"loaded": deps.Catalog.Loaded(), "size": deps.Catalog.Size()}
		if at := deps.Catalog.RefreshedAt(); !at.IsZero() {
			status["refreshed_at"] = at
		}
		return ok(c, fiber.StatusOK, "", status)
	}
}

// refreshCatalog reloads the catalog after a local geozone change. Failure
// keeps the previous snapshot and is only logged.
func refreshCatalog(c *fiber.Ctx, deps *Dependencies) {
	if deps.Catalog == nil {
		return
	}
	if err := deps.Catalog.Initialize(c.UserContext(), true); err != nil {
		LoggerFromCtx(c.UserContext()).Warn("geozone catalog refresh failed", "error", err)
	}
}
