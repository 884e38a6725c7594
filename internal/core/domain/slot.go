package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Slot is the logical position of a stop within a route. It is the only
// link between model state and visual state on the map.
type Slot string

const (
	SlotOrigin      Slot = "origin"
	SlotDestination Slot = "destination"

	waypointPrefix = "waypoint-"
)

// WaypointSlot returns the slot for the waypoint at index i.
func WaypointSlot(i int) Slot {
	return Slot(waypointPrefix + strconv.Itoa(i))
}

// WaypointIndex returns the waypoint index for waypoint slots. Only the
// form produced by WaypointSlot is accepted, so "waypoint-01" is not a slot.
func (s Slot) WaypointIndex() (int, bool) {
	rest, ok := strings.CutPrefix(string(s), waypointPrefix)
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(rest)
	if err != nil || i < 0 || WaypointSlot(i) != s {
		return 0, false
	}
	return i, true
}

// ParseSlot validates slot text coming from a client.
func ParseSlot(s string) (Slot, error) {
	slot := Slot(s)
	if slot == SlotOrigin || slot == SlotDestination {
		return slot, nil
	}
	if i, ok := slot.WaypointIndex(); ok {
		return WaypointSlot(i), nil
	}
	return "", fmt.Errorf("%w: unknown slot %q", ErrValidation, s)
}
