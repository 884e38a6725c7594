package http

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// DeprecatedRoute is a legacy endpoint kept until Sunset.
type DeprecatedRoute struct {
	Path      string // ":name" segments match any value
	Sunset    time.Time
	Successor string // optional replacement, advertised in Link
}

// httpDate is the IMF-fixdate layout required for Sunset.
const httpDate = "Mon, 02 Jan 2006 15:04:05 GMT"

var geofenceSunset = time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC)

var deprecatedRoutes = []DeprecatedRoute{
	{Path: "/v1/geofences", Sunset: geofenceSunset, Successor: "/v1/geozones"},
	{Path: "/v1/geofences/:id", Sunset: geofenceSunset, Successor: "/v1/geozones/{id}"},
}

// headers returns the RFC 8594 response headers for d.
func (d DeprecatedRoute) headers(now time.Time) map[string]string {
	h := map[string]string{
		"Deprecation": "true",
		"Sunset":      d.Sunset.UTC().Format(httpDate),
	}
	if d.Successor != "" {
		h["Link"] = fmt.Sprintf(`<%s>; rel="successor-version"`, d.Successor)
	}
	days := int(d.Sunset.Sub(now).Hours() / 24)
	if days < 0 {
		days = 0
	}
	h["Warning"] = fmt.Sprintf(`299 - "Deprecated API, removed in %d days"`, days)
	return h
}

// DeprecationMiddleware marks responses of deprecated routes.
func DeprecationMiddleware(deprecated []DeprecatedRoute) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		for _, d := range deprecated {
			if matchPattern(path, d.Path) {
				for k, v := range d.headers(time.Now()) {
					c.Set(k, v)
				}
				break
			}
		}
		return c.Next()
	}
}

// matchPattern compares path and pattern segment by segment; a ":name"
// segment matches any non-empty segment.
func matchPattern(path, pattern string) bool {
	ps := strings.Split(strings.Trim(path, "/"), "/")
	qs := strings.Split(strings.Trim(pattern, "/"), "/")
	if len(ps) != len(qs) {
		return false
	}
	for i, q := range qs {
		switch {
		case strings.HasPrefix(q, ":"):
			if ps[i] == "" {
				return false
			}
		case ps[i] != q:
			return false
		}
	}
	return true
}
