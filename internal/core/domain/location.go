package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// GeozoneRef identifies a catalog geozone. On the wire it may arrive as a
// bare id or as an embedded summary object; decoding normalizes both to the
// id and encoding always writes the bare id.
type GeozoneRef string

// UnmarshalJSON accepts "id", {"_id": "id", ...}, {"id": "id", ...} or null.
func (r *GeozoneRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = GeozoneRef(s)
		return nil
	case '{':
		var obj struct {
			MongoID string `json:"_id"`
			ID      string `json:"id"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		if obj.MongoID != "" {
			*r = GeozoneRef(obj.MongoID)
		} else {
			*r = GeozoneRef(obj.ID)
		}
		return nil
	}
	return fmt.Errorf("geozone reference: unsupported JSON %s", string(data))
}

// Location is a named route stop: origin, destination or waypoint.
type Location struct {
	Name              string     `json:"name"`
	Coordinate        Coordinate `json:"coordinate"`
	IsGeofenceEnabled bool       `json:"is_geofence_enabled"`
	GeofenceRef       GeozoneRef `json:"geofence_ref,omitempty"`
	// Geometry is the resolved shape of the referenced geozone. It only
	// lives for an editing session and is stripped before persistence.
	Geometry *Geometry `json:"geometry,omitempty"`
}

// IsEmpty reports whether the location has been filled in at all.
func (l Location) IsEmpty() bool {
	return l.Name == "" && l.Coordinate.IsZero() && l.GeofenceRef == ""
}

// Clone returns a deep copy.
func (l Location) Clone() Location {
	out := l
	if l.Geometry != nil {
		g := l.Geometry.Clone()
		out.Geometry = &g
	}
	return out
}

// PlainLocation returns a free-form location at c.
func PlainLocation(name string, c Coordinate) Location {
	return Location{Name: name, Coordinate: c}
}
