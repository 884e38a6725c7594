package http

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// Envelope is the response body of every successful REST call.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data"`
}

// PaginatedResponse wraps list results with pagination metadata.
type PaginatedResponse struct {
	Success    bool       `json:"success"`
	Message    string     `json:"message,omitempty"`
	Data       any        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Pagination contains offset-based pagination info.
type Pagination struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
	Total  int `json:"total"`
}

// pageParams reads offset and limit, clamping them to sane values.
func pageParams(c *fiber.Ctx) (offset, limit int) {
	offset = max(c.QueryInt("offset", 0), 0)
	limit = c.QueryInt("limit", defaultPageLimit)
	if limit <= 0 || limit > maxPageLimit {
		limit = defaultPageLimit
	}
	return offset, limit
}

// SetLinkHeaders adds RFC 8288 Link headers for paginated responses.
// It uses the current request path.
func SetLinkHeaders(c *fiber.Ctx, p Pagination) {
	base := c.Path()
	link := func(offset int, rel string) string {
		return fmt.Sprintf(`<%s?offset=%d&limit=%d>; rel="%s"`, base, offset, p.Limit, rel)
	}

	links := []string{link(0, "first")}
	if p.Offset > 0 {
		links = append(links, link(max(p.Offset-p.Limit, 0), "prev"))
	}
	if p.Offset+p.Limit < p.Total {
		links = append(links, link(p.Offset+p.Limit, "next"))
	}
	links = append(links, link(max(p.Total-p.Limit, 0), "last"))

	c.Set("Link", strings.Join(links, ", "))
}
