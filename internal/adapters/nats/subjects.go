package natsadapter

import "strings"

const (
	subjectRoutePrefix   = "routeye.route."
	subjectGeozonePrefix = "routeye.geozone."

	// SubjectBroadcast carries fire-and-forget notices relayed to WebSocket clients.
	SubjectBroadcast = "routeye.updates.broadcast"
	// SubjectRouteEvents matches every route lifecycle event.
	SubjectRouteEvents = subjectRoutePrefix + ">"
	// SubjectGeozoneCreatedAll matches every geozone creation.
	SubjectGeozoneCreatedAll = subjectGeozonePrefix + "created.>"
)

// SubjectRouteSaved is the subject for a saved route.
func SubjectRouteSaved(id string) string { return subjectRoutePrefix + "saved." + token(id) }

// SubjectRouteDeleted is the subject for a deleted route.
func SubjectRouteDeleted(id string) string { return subjectRoutePrefix + "deleted." + token(id) }

// SubjectGeozoneCreated is the subject for a newly provisioned geozone.
func SubjectGeozoneCreated(id string) string {
	return subjectGeozonePrefix + "created." + token(id)
}

// token makes id safe to use as a single subject token.
func token(id string) string {
	if id == "" {
		return "_"
	}
	return strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_").Replace(id)
}

// SubjectRouteEventsFor matches every lifecycle event of one route.
func SubjectRouteEventsFor(id string) string { return subjectRoutePrefix + "*." + token(id) }
