package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/KRVIMAL/routeye-sub001/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Success   bool     `json:"success"`
	Status    int      `json:"status"`
	Code      string   `json:"code"`    // Error code: bad_request, not_found, internal_error, etc.
	Message   string   `json:"message"` // Human-readable message
	Details   []string `json:"details,omitempty"`
	RequestID string   `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string, details ...string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		Details:   details,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string, details ...string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg, details...)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusNotFound, "not_found", msg)
}

// errConflict returns a 409 error.
func errConflict(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusConflict, "conflict", msg)
}

// errInternal returns a 500 error. The cause is logged, not returned.
func errInternal(c *fiber.Ctx, err error) error {
	LoggerFromCtx(c.UserContext()).Error("request failed", "path", c.Path(), "error", err)
	return newError(c, fiber.StatusInternalServerError, "internal_error", "internal error")
}

// errFromDomain maps domain sentinel errors onto HTTP errors. what names the
// resource for not-found messages.
func errFromDomain(c *fiber.Ctx, err error, what string) error {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return errBadRequest(c, "validation failed", verr.Problems...)
	case errors.Is(err, domain.ErrValidation):
		return errBadRequest(c, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return errNotFound(c, what+" not found")
	case errors.Is(err, domain.ErrInvalidState):
		return errConflict(c, err.Error())
	}
	return errInternal(c, err)
}
