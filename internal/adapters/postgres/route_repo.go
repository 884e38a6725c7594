package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/KRVIMAL/routeye-sub001/internal/core/domain"
)

// RouteRepo implements ports.RouteRepository. Stops are stored as JSONB and
// the path as an encoded polyline.
type RouteRepo struct {
	db *DB
}

func NewRouteRepo(db *DB) *RouteRepo { return &RouteRepo{db: db} }

const routeColumns = `id, name, travel_mode, origin, destination, waypoints, path_polyline,
	distance_meters, distance_text, duration_seconds, duration_text, created_at, updated_at`

type routeRow struct {
	origin, destination, waypoints []byte
	path                           string
}

func encodeStops(r *domain.Route) (origin, destination, waypoints []byte, err error) {
	if origin, err = json.Marshal(r.Origin); err != nil {
		return nil, nil, nil, fmt.Errorf("encode origin: %w", err)
	}
	if destination, err = json.Marshal(r.Destination); err != nil {
		return nil, nil, nil, fmt.Errorf("encode destination: %w", err)
	}
	wps := r.Waypoints
	if wps == nil {
		wps = []domain.Location{}
	}
	if waypoints, err = json.Marshal(wps); err != nil {
		return nil, nil, nil, fmt.Errorf("encode waypoints: %w", err)
	}
	return origin, destination, waypoints, nil
}

func (r *RouteRepo) Create(ctx context.Context, route *domain.Route) error {
	origin, destination, waypoints, err := encodeStops(route)
	if err != nil {
		return err
	}
	err = r.db.Pool.QueryRow(ctx, `
		INSERT INTO routes (name, travel_mode, origin, destination, waypoints, path_polyline,
		                    distance_meters, distance_text, duration_seconds, duration_text)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`, route.Name, string(route.TravelMode), origin, destination, waypoints, EncodePath(route.Path),
		route.Distance.Value, route.Distance.Text, route.Duration.Value, route.Duration.Text,
	).Scan(&route.ID, &route.CreatedAt, &route.UpdatedAt)
	return mapErr(err)
}

func (r *RouteRepo) Update(ctx context.Context, route *domain.Route) error {
	origin, destination, waypoints, err := encodeStops(route)
	if err != nil {
		return err
	}
	err = r.db.Pool.QueryRow(ctx, `
		UPDATE routes
		SET name = $2, travel_mode = $3, origin = $4, destination = $5, waypoints = $6,
		    path_polyline = $7, distance_meters = $8, distance_text = $9,
		    duration_seconds = $10, duration_text = $11, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at
	`, route.ID, route.Name, string(route.TravelMode), origin, destination, waypoints, EncodePath(route.Path),
		route.Distance.Value, route.Distance.Text, route.Duration.Value, route.Duration.Text,
	).Scan(&route.CreatedAt, &route.UpdatedAt)
	return mapErr(err)
}

func (r *RouteRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM routes WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *RouteRepo) GetByID(ctx context.Context, id string) (*domain.Route, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT `+routeColumns+` FROM routes WHERE id = $1`, id)
	rt, err := scanRoute(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return rt, nil
}

// ListPage returns routes newest first along with the total count.
func (r *RouteRepo) ListPage(ctx context.Context, offset, limit int) ([]domain.Route, int, error) {
	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM routes`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+routeColumns+` FROM routes
		ORDER BY updated_at DESC, id
		OFFSET $1 LIMIT $2
	`, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	routes, err := collectRoutes(rows)
	if err != nil {
		return nil, 0, err
	}
	return routes, total, nil
}

// Search matches the route name and its origin and destination names.
// Wildcards in q match literally.
func (r *RouteRepo) Search(ctx context.Context, q string, limit int) ([]domain.Route, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+routeColumns+` FROM routes
		WHERE name ILIKE $1
		   OR origin->>'name' ILIKE $1
		   OR destination->>'name' ILIKE $1
		ORDER BY similarity(name, $2) DESC, updated_at DESC
		LIMIT $3
	`, containsPattern(q), q, limit)
	if err != nil {
		return nil, mapErr(err)
	}
	return collectRoutes(rows)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching q anywhere, using the
// default backslash escape.
func containsPattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}

func collectRoutes(rows pgx.Rows) ([]domain.Route, error) {
	defer rows.Close()
	var routes []domain.Route
	for rows.Next() {
		rt, err := scanRoute(rows)
		if err != nil {
			return nil, err
		}
		routes = append(routes, *rt)
	}
	return routes, rows.Err()
}

func scanRoute(row pgx.Row) (*domain.Route, error) {
	var (
		rt   domain.Route
		raw  routeRow
		mode string
	)
	if err := row.Scan(&rt.ID, &rt.Name, &mode, &raw.origin, &raw.destination, &raw.waypoints, &raw.path,
		&rt.Distance.Value, &rt.Distance.Text, &rt.Duration.Value, &rt.Duration.Text,
		&rt.CreatedAt, &rt.UpdatedAt); err != nil {
		return nil, err
	}
	rt.TravelMode = domain.TravelMode(mode)
	if err := json.Unmarshal(raw.origin, &rt.Origin); err != nil {
		return nil, fmt.Errorf("route %s origin: %w", rt.ID, err)
	}
	if err := json.Unmarshal(raw.destination, &rt.Destination); err != nil {
		return nil, fmt.Errorf("route %s destination: %w", rt.ID, err)
	}
	if err := json.Unmarshal(raw.waypoints, &rt.Waypoints); err != nil {
		return nil, fmt.Errorf("route %s waypoints: %w", rt.ID, err)
	}
	path, err := DecodePath(raw.path)
	if err != nil {
		return nil, fmt.Errorf("route %s: %w", rt.ID, err)
	}
	rt.Path = path
	return &rt, nil
}
