package http

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/mathieuadams/ukcrimerepository/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"` // Human-readable message
	Code      string `json:"code"`  // bad_request, not_found, bad_gateway, ...
	RequestID string `json:"request_id,omitempty"`
	Details   string `json:"details,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code, message, details string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Error:     message,
		Code:      code,
		RequestID: reqID,
		Details:   details,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, domain.KindBadRequest.String(), msg, "")
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, domain.KindInternal.String(), msg, "")
}

// statusFor maps an error kind to its HTTP status.
func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindBadRequest:
		return fiber.StatusBadRequest
	case domain.KindNotFound:
		return fiber.StatusNotFound
	case domain.KindBadGateway:
		return fiber.StatusBadGateway
	case domain.KindGatewayTimeout:
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}

// writeQueryError renders a use case failure. Underlying error text is only
// exposed outside production.
func writeQueryError(c *fiber.Ctx, deps *Dependencies, err error) error {
	var qe *domain.QueryError
	if !errors.As(err, &qe) {
		slog.ErrorContext(c.UserContext(), "unclassified handler error", "path", c.Path(), "error", err)
		qe = &domain.QueryError{Kind: domain.KindInternal, Message: "internal server error", Err: err}
	}

	details := ""
	if !deps.Production && qe.Kind != domain.KindBadRequest {
		details = qe.Detail()
	}
	return newError(c, statusFor(qe.Kind), qe.Kind.String(), qe.Message, details)
}

// ErrorHandler is the fiber.Config ErrorHandler. It keeps errors raised by
// middleware (timeouts, body limits, recovered panics) in the APIError shape.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	} else {
		LoggerFromCtx(c.UserContext()).Error("unhandled error", "path", c.Path(), "error", err)
	}
	return newError(c, code, codeForStatus(code), msg, "")
}

func codeForStatus(status int) string {
	switch {
	case status == fiber.StatusBadRequest:
		return domain.KindBadRequest.String()
	case status == fiber.StatusNotFound:
		return domain.KindNotFound.String()
	case status == fiber.StatusRequestTimeout:
		return "request_timeout"
	case status == fiber.StatusRequestEntityTooLarge:
		return "payload_too_large"
	case status < 500:
		return "client_error"
	default:
		return domain.KindInternal.String()
	}
}
