package domain

// EditorState is the lifecycle state of an editing session.
type EditorState string

const (
	StateIdle           EditorState = "idle"
	StateComputingRoute EditorState = "computing_route"
	StateRouteReady     EditorState = "route_ready"
	StateSaving         EditorState = "saving"
	StateSaved          EditorState = "saved"
	StateCancelled      EditorState = "cancelled"
)

// Terminal reports whether the session accepts no further edits.
func (s EditorState) Terminal() bool {
	return s == StateSaved || s == StateCancelled
}

// UpdateKind classifies a SessionUpdate.
type UpdateKind string

const (
	UpdateState    UpdateKind = "state"
	UpdateOptions  UpdateKind = "options"
	UpdateRoute    UpdateKind = "route"
	UpdateError    UpdateKind = "error"
	UpdatePrompt   UpdateKind = "prompt"
	UpdateDrawing  UpdateKind = "drawing"
	UpdateSaved    UpdateKind = "saved"
	UpdateGeozones UpdateKind = "geozones"
)

// SessionUpdate is a UI notification from an editing session.
type SessionUpdate struct {
	Kind     UpdateKind    `json:"kind"`
	State    EditorState   `json:"state,omitempty"`
	Drawing  bool          `json:"drawing,omitempty"`
	Slot     Slot          `json:"slot,omitempty"`
	Message  string        `json:"message,omitempty"`
	Options  []RouteOption `json:"options,omitempty"`
	Selected int           `json:"selected,omitempty"`
	Route    *Route        `json:"route,omitempty"`
	Geozones []Geozone     `json:"geozones,omitempty"`
}

// GeofenceDraftForm is the operator-supplied metadata for a geozone drawn
// during an editing session.
type GeofenceDraftForm struct {
	Name          string  `json:"name"`
	Address       Address `json:"address"`
	ContactNumber string  `json:"contact_number,omitempty"`
	IsPublic      bool    `json:"is_public"`
	IsPrivate     bool    `json:"is_private"`
	CreatedBy     string  `json:"created_by"`
}
