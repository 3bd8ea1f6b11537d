package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/sightseer/internal/core/ports"
	"github.com/samirrijal/sightseer/internal/core/usecases"
	"github.com/samirrijal/sightseer/internal/pkg/logging"
	"github.com/samirrijal/sightseer/internal/pkg/routechain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, not_found, internal_error, etc.
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusNotFound, "not_found", msg)
}

// errConflict returns a 409 error.
func errConflict(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusConflict, "conflict", msg)
}

// errUnprocessable returns a 422 error for segment sets that do not form a route.
func errUnprocessable(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusUnprocessableEntity, "invalid_route_topology", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg)
}

// errFromService maps service errors onto the API error envelope. what names
// the resource for 404 messages.
func errFromService(c *fiber.Ctx, err error, what string) error {
	switch {
	case errors.Is(err, ports.ErrNotFound):
		return errNotFound(c, what+" not found")
	case errors.Is(err, usecases.ErrIncompleteChain),
		errors.Is(err, routechain.ErrBranchingTopology),
		errors.Is(err, routechain.ErrSelfLoop),
		errors.Is(err, routechain.ErrDuplicateSegment),
		errors.Is(err, routechain.ErrMissingStation):
		return errUnprocessable(c, err.Error())
	case errors.Is(err, ports.ErrInvalidInput):
		return errBadRequest(c, err.Error())
	case errors.Is(err, ports.ErrConflict):
		return errConflict(c, what+" already exists")
	case errors.Is(err, context.DeadlineExceeded):
		return newError(c, fiber.StatusGatewayTimeout, "timeout", "request timed out")
	}

	logging.FromContext(c.UserContext()).Error("request failed", "path", c.Path(), "error", err)
	return errInternal(c, "internal server error")
}
