package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/KRVIMAL/routeye-sub001/internal/core/domain"
	"github.com/KRVIMAL/routeye-sub001/internal/core/ports"
	"github.com/KRVIMAL/routeye-sub001/internal/pkg/logging"
	"github.com/KRVIMAL/routeye-sub001/internal/pkg/metrics"
	"github.com/KRVIMAL/routeye-sub001/internal/pkg/telemetry"
)

// ErrSessionClosed is returned by Submit once the loop has stopped.
var ErrSessionClosed = errors.New("editing session closed")

// RouteSaver persists a route and returns the stored version.
type RouteSaver interface {
	Save(ctx context.Context, route *domain.Route) (*domain.Route, error)
}

// CatalogRefresher reloads the geozone catalog.
type CatalogRefresher interface {
	Initialize(ctx context.Context, forceRefresh bool) error
}

// EditorLoopDeps wires an EditorLoop.
type EditorLoopDeps struct {
	Composer       *Composer
	Router         ports.Router
	Geocoder       ports.Geocoder
	Routes         RouteSaver
	Provisioner    ports.GeozoneProvisioner
	Catalog        CatalogRefresher
	Sink           ports.SessionSink
	Logger         *slog.Logger
	ComputeTimeout time.Duration
	InboxSize      int
}

type inboxItem struct {
	cmd    Command
	result Result
}

// EditorLoop runs one editing session. The composer is only touched from
// the goroutine executing Run; jobs run concurrently and post their
// results back into the inbox.
type EditorLoop struct {
	composer       *Composer
	router         ports.Router
	geocoder       ports.Geocoder
	routes         RouteSaver
	provisioner    ports.GeozoneProvisioner
	catalog        CatalogRefresher
	sink           ports.SessionSink
	logger         *slog.Logger
	computeTimeout time.Duration

	inbox chan inboxItem
	done  chan struct{}
	wg    sync.WaitGroup
}

// NewEditorLoop creates a loop for deps.Composer.
func NewEditorLoop(deps EditorLoopDeps) *EditorLoop {
	if deps.ComputeTimeout <= 0 {
		deps.ComputeTimeout = 15 * time.Second
	}
	if deps.InboxSize <= 0 {
		deps.InboxSize = 64
	}
	return &EditorLoop{
		composer:       deps.Composer,
		router:         deps.Router,
		geocoder:       deps.Geocoder,
		routes:         deps.Routes,
		provisioner:    deps.Provisioner,
		catalog:        deps.Catalog,
		sink:           deps.Sink,
		logger:         logging.Component(deps.Logger, "editor_loop"),
		computeTimeout: deps.ComputeTimeout,
		inbox:          make(chan inboxItem, deps.InboxSize),
		done:           make(chan struct{}),
	}
}

// Submit queues an operator command. It blocks while the inbox is full.
func (l *EditorLoop) Submit(ctx context.Context, cmd Command) error {
	select {
	case <-l.done:
		return ErrSessionClosed
	default:
	}
	select {
	case l.inbox <- inboxItem{cmd: cmd}:
		return nil
	case <-l.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when Run returns.
func (l *EditorLoop) Done() <-chan struct{} { return l.done }

// Run opens route and processes commands and job results until the
// session is saved or cancelled, or ctx is done. In-flight jobs are
// cancelled and awaited before it returns.
func (l *EditorLoop) Run(ctx context.Context, route *domain.Route) error {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		l.wg.Wait()
		close(l.done)
	}()

	metrics.ActiveSessions.Inc()
	defer metrics.ActiveSessions.Dec()

	l.composer.Open(route)
	l.dispatch(ctx, l.composer.DrainJobs())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case it := <-l.inbox:
			l.step(it)
			l.dispatch(ctx, l.composer.DrainJobs())
			if l.composer.State().Terminal() {
				l.logger.Info("editing session finished", "state", l.composer.State())
				return nil
			}
		}
	}
}

func (l *EditorLoop) step(it inboxItem) {
	if it.cmd != nil {
		if err := it.cmd.Execute(l.composer); err != nil {
			l.logger.Debug("command rejected", "command", fmt.Sprintf("%T", it.cmd), "error", err)
			l.sink.Notify(domain.SessionUpdate{Kind: domain.UpdateError, State: l.composer.State(), Message: err.Error()})
		}
		return
	}
	if err := l.composer.Apply(it.result); err != nil {
		if errors.Is(err, domain.ErrStaleResponse) {
			l.logger.Debug("dropped stale result", "result", fmt.Sprintf("%T", it.result))
			return
		}
		l.logger.Warn("result rejected", "result", fmt.Sprintf("%T", it.result), "error", err)
	}
}

func (l *EditorLoop) dispatch(ctx context.Context, jobs []Job) {
	for _, job := range jobs {
		l.wg.Add(1)
		go func(job Job) {
			defer l.wg.Done()
			res := l.run(ctx, job)
			if res == nil {
				return
			}
			select {
			case l.inbox <- inboxItem{result: res}:
			case <-ctx.Done():
			}
		}(job)
	}
}

func (l *EditorLoop) run(ctx context.Context, job Job) Result {
	switch j := job.(type) {
	case ComputeRouteJob:
		return l.computeRoute(ctx, j)
	case GeocodeJob:
		cand, err := l.geocoder.Geocode(ctx, j.Query)
		if err == nil && cand == nil {
			err = domain.ErrNotFound
		}
		return AddressResolved{Slot: j.Slot, Query: j.Query, Candidate: cand, Err: err}
	case ReverseGeocodeJob:
		name, err := l.geocoder.ReverseGeocode(ctx, j.Coordinate)
		return LocationNamed{Slot: j.Slot, Coordinate: j.Coordinate, Name: name, Err: err}
	case CreateGeozoneJob:
		gz, err := l.provisioner.Provision(ctx, j.Input)
		if err != nil {
			return GeozoneCreateFailed{Slot: j.Slot, Err: err}
		}
		if l.catalog != nil {
			if err := l.catalog.Initialize(ctx, true); err != nil {
				l.logger.Warn("catalog refresh after geozone creation failed", "geozone_id", gz.ID, "error", err)
			}
		}
		return GeozoneCreated{Slot: j.Slot, Geozone: *gz}
	case SaveRouteJob:
		saved, err := l.routes.Save(ctx, j.Route)
		if err != nil {
			metrics.RoutesSaved.WithLabelValues("error").Inc()
			return RouteSaveFailed{Err: err}
		}
		metrics.RoutesSaved.WithLabelValues("ok").Inc()
		return RouteSaved{Route: saved}
	}
	l.logger.Error("unknown job", "job", job.JobName())
	return nil
}

func (l *EditorLoop) computeRoute(ctx context.Context, j ComputeRouteJob) Result {
	ctx, cancel := context.WithTimeout(ctx, l.computeTimeout)
	defer cancel()

	ctx, span := otel.Tracer(telemetry.TracerUsecases).Start(ctx, telemetry.SpanComputeRoute)
	defer span.End()
	span.SetAttributes(
		attribute.Int64(telemetry.AttrEditorSeq, int64(j.Seq)),
		attribute.Int(telemetry.AttrEditorWaypoints, len(j.Request.Waypoints)),
		attribute.String(telemetry.AttrEditorTravelMode, string(j.Request.TravelMode)),
	)

	start := time.Now()
	res, err := l.router.Directions(ctx, j.Request)
	metrics.RouteComputeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return RouteComputed{Seq: j.Seq, Result: res, Err: err}
}
