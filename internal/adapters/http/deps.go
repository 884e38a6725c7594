package http

import (
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/KRVIMAL/routeye-sub001/internal/adapters/postgres"
	"github.com/KRVIMAL/routeye-sub001/internal/adapters/valkey"
	"github.com/KRVIMAL/routeye-sub001/internal/core/ports"
	"github.com/KRVIMAL/routeye-sub001/internal/core/usecases"
)

// EditorOptions configures the editing sessions served over /ws/editor.
type EditorOptions struct {
	Router         ports.Router
	Geocoder       ports.Geocoder
	ComputeTimeout time.Duration
	MaxWaypoints   int
	InboxSize      int
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Routes      *usecases.RouteService
	Geozones    *usecases.GeozoneService
	Catalog     *usecases.GeozoneCatalog
	Provisioner ports.GeozoneProvisioner
	Editor      EditorOptions
	NATS        *nats.Conn
	DB          *postgres.DB
	Cache       *valkey.Cache
	Logger      *slog.Logger
}

func (d *Dependencies) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}
