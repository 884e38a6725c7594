package http

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ETagMiddleware computes a weak ETag from the response body
// and returns 304 Not Modified if the client already has it.
func ETagMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			return err
		}

		// Only successful GET responses with a body
		if c.Method() != fiber.MethodGet || c.Response().StatusCode() != fiber.StatusOK {
			return nil
		}
		body := c.Response().Body()
		if len(body) == 0 {
			return nil
		}

		h := sha256.Sum256(body)
		etag := `W/"` + hex.EncodeToString(h[:8]) + `"`
		c.Set(fiber.HeaderETag, etag)

		if etagMatches(c.Get(fiber.HeaderIfNoneMatch), etag) {
			c.Status(fiber.StatusNotModified)
			c.Response().ResetBody()
		}
		return nil
	}
}

// etagMatches implements the weak comparison of If-None-Match, which may
// list several tags or be "*".
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	want := strings.TrimPrefix(etag, "W/")
	for _, tag := range strings.Split(header, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "*" || strings.TrimPrefix(tag, "W/") == want {
			return true
		}
	}
	return false
}
