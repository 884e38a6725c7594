package usecases

import (
	"log/slog"

	"github.com/KRVIMAL/routeye-sub001/internal/core/domain"
	"github.com/KRVIMAL/routeye-sub001/internal/core/ports"
	"github.com/KRVIMAL/routeye-sub001/internal/pkg/logging"
	"github.com/KRVIMAL/routeye-sub001/internal/pkg/metrics"
)

// ArtifactKind is what the surface currently shows for a slot.
type ArtifactKind string

const (
	ArtifactMarker ArtifactKind = "marker"
	ArtifactShape  ArtifactKind = "shape"
)

type artifact struct {
	kind      ArtifactKind
	ref       domain.GeozoneRef
	draggable bool
}

// MarkerSynchronizer keeps the map surface in step with route stops. It
// owns the slot registry and never mutates the route.
type MarkerSynchronizer struct {
	resolver *ShapeResolver
	surface  ports.MapSurface
	logger   *slog.Logger
	slots    map[domain.Slot]artifact
}

// NewMarkerSynchronizer creates a synchronizer drawing onto surface.
func NewMarkerSynchronizer(resolver *ShapeResolver, surface ports.MapSurface, logger *slog.Logger) *MarkerSynchronizer {
	return &MarkerSynchronizer{
		resolver: resolver,
		surface:  surface,
		logger:   logging.Component(logger, "marker_sync"),
		slots:    make(map[domain.Slot]artifact),
	}
}

// Place draws the artifact for loc at slot, replacing whatever was there.
func (m *MarkerSynchronizer) Place(slot domain.Slot, loc domain.Location) {
	if loc.IsEmpty() {
		m.Remove(slot)
		return
	}
	prev, had := m.slots[slot]
	var cmds []domain.MapCommand

	if loc.IsGeofenceEnabled {
		loc = m.resolver.EnsureGeometryPayload(loc)
		if loc.Geometry != nil {
			if had && prev.kind == ArtifactMarker {
				cmds = append(cmds, domain.RemoveMarker{Slot: slot})
			}
			if had && prev.kind == ArtifactShape && prev.ref != loc.GeofenceRef {
				cmds = append(cmds, domain.RemoveShape{Slot: slot, GeozoneRef: prev.ref})
			}
			cmds = append(cmds, domain.DrawShape{Slot: slot, GeozoneRef: loc.GeofenceRef, Geometry: loc.Geometry.Clone()})
			m.slots[slot] = artifact{kind: ArtifactShape, ref: loc.GeofenceRef}
			m.surface.Apply(cmds...)
			return
		}
		metrics.UnresolvedGeofences.Inc()
		m.logger.Warn("geofence unresolved, drawing plain marker", "slot", slot, "ref", loc.GeofenceRef, "name", loc.Name)
	}

	if had && prev.kind == ArtifactShape {
		cmds = append(cmds, domain.RemoveShape{Slot: slot, GeozoneRef: prev.ref})
	}
	draggable := !loc.IsGeofenceEnabled
	cmds = append(cmds, domain.PlaceMarker{Slot: slot, Coordinate: loc.Coordinate, Label: loc.Name, Draggable: draggable})
	m.slots[slot] = artifact{kind: ArtifactMarker, ref: loc.GeofenceRef, draggable: draggable}
	m.surface.Apply(cmds...)
}

// Remove clears the artifact at slot, if any.
func (m *MarkerSynchronizer) Remove(slot domain.Slot) {
	if cmd, ok := m.removeCommand(slot); ok {
		m.surface.Apply(cmd)
	}
}

func (m *MarkerSynchronizer) removeCommand(slot domain.Slot) (domain.MapCommand, bool) {
	a, ok := m.slots[slot]
	if !ok {
		return nil, false
	}
	delete(m.slots, slot)
	if a.kind == ArtifactShape {
		return domain.RemoveShape{Slot: slot, GeozoneRef: a.ref}, true
	}
	return domain.RemoveMarker{Slot: slot}, true
}

// Clear removes every artifact and the path.
func (m *MarkerSynchronizer) Clear() {
	cmds := make([]domain.MapCommand, 0, len(m.slots)+1)
	for slot := range m.slots {
		if cmd, ok := m.removeCommand(slot); ok {
			cmds = append(cmds, cmd)
		}
	}
	cmds = append(cmds, domain.DrawPath{})
	m.surface.Apply(cmds...)
}

// PlaceRoute draws every stop of route.
func (m *MarkerSynchronizer) PlaceRoute(route *domain.Route) {
	for _, slot := range route.Slots() {
		loc, _ := route.Location(slot)
		m.Place(slot, loc)
	}
}

// Reindex redraws waypoints after an insertion, removal or reorder. Every
// waypoint slot in [min(from, to), max(from, to, previousCount-1)] is
// cleared and the current waypoints in that range are placed again under
// their new indices. Indices past the new end stay removed.
func (m *MarkerSynchronizer) Reindex(from, to int, waypoints []domain.Location, previousCount int) {
	lo := min(from, to)
	hi := max(from, to, previousCount-1)
	if lo < 0 {
		lo = 0
	}
	for i := lo; i <= hi; i++ {
		m.Remove(domain.WaypointSlot(i))
	}
	for i := lo; i <= hi && i < len(waypoints); i++ {
		m.Place(domain.WaypointSlot(i), waypoints[i])
	}
}

// DrawPath renders path, or clears it when empty.
func (m *MarkerSynchronizer) DrawPath(path []domain.Coordinate) {
	m.surface.Apply(domain.DrawPath{Path: append([]domain.Coordinate(nil), path...)})
}

// EnterDrawingMode activates the surface drawing tool.
func (m *MarkerSynchronizer) EnterDrawingMode(kind domain.GeometryKind) {
	m.surface.Apply(domain.EnterDrawingMode{Kind: kind})
}

// ExitDrawingMode releases the surface drawing tool.
func (m *MarkerSynchronizer) ExitDrawingMode() {
	m.surface.Apply(domain.ExitDrawingMode{})
}

// Artifact reports what is drawn at slot.
func (m *MarkerSynchronizer) Artifact(slot domain.Slot) (ArtifactKind, bool) {
	a, ok := m.slots[slot]
	return a.kind, ok
}

// Translate turns a marker event into a notification for the composer.
// Events for unknown slots, shape slots and non-draggable drags are dropped.
func (m *MarkerSynchronizer) Translate(ev domain.SurfaceEvent) (domain.Notification, bool) {
	switch e := ev.(type) {
	case domain.MarkerDragEnd:
		a, ok := m.slots[e.Slot]
		if !ok || a.kind != ArtifactMarker || !a.draggable {
			m.logger.Debug("drag ignored", "slot", e.Slot)
			return nil, false
		}
		return domain.LocationMoved{Slot: e.Slot, Coordinate: e.Coordinate, Name: e.Coordinate.String()}, true
	case domain.MarkerClicked:
		a, ok := m.slots[e.Slot]
		if !ok || a.kind != ArtifactMarker {
			return nil, false
		}
		return domain.LocationClicked{Slot: e.Slot}, true
	}
	return nil, false
}
