package http

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gofiber/fiber/v2"
)

// openAPIPath is relative to the working directory of the api binary.
const openAPIPath = "api/openapi.yaml"

const docsPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Routeye API</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
</head>
<body style="margin:0">
  <div id="docs"></div>
  <script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({url: '/docs/openapi.json', dom_id: '#docs', deepLinking: true});
  </script>
</body>
</html>`

// apiDocument is the OpenAPI document loaded once per process.
type apiDocument struct {
	once sync.Once
	path string
	raw  []byte
	json []byte
	err  error
}

func (d *apiDocument) load() error {
	d.once.Do(func() {
		raw, err := os.ReadFile(d.path)
		if err != nil {
			d.err = err
			return
		}
		doc, err := openapi3.NewLoader().LoadFromData(raw)
		if err != nil {
			d.err = fmt.Errorf("parse %s: %w", d.path, err)
			return
		}
		if err := doc.Validate(context.Background()); err != nil {
			d.err = fmt.Errorf("validate %s: %w", d.path, err)
			return
		}
		d.raw = raw
		d.json, d.err = doc.MarshalJSON()
	})
	return d.err
}

// SetupDocs serves Swagger UI at /docs and the OpenAPI document as YAML and JSON.
// A missing or invalid document only disables the document routes.
func SetupDocs(app *fiber.App, logger *slog.Logger) {
	doc := &apiDocument{path: openAPIPath}

	app.Get("/docs", func(c *fiber.Ctx) error {
		c.Type("html", "utf-8")
		return c.SendString(docsPage)
	})

	app.Get("/docs/openapi.yaml", func(c *fiber.Ctx) error {
		if err := doc.load(); err != nil {
			logger.Warn("openapi document unavailable", "error", err)
			return errNotFound(c, "openapi document")
		}
		c.Set(fiber.HeaderContentType, "application/yaml")
		return c.Send(doc.raw)
	})

	app.Get("/docs/openapi.json", func(c *fiber.Ctx) error {
		if err := doc.load(); err != nil {
			logger.Warn("openapi document unavailable", "error", err)
			return errNotFound(c, "openapi document")
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(doc.json)
	})
}
