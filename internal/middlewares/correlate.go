package middlewares

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/ptavares/socialspaces/internal/audit"
)

// statusFromError resolves the terminal status of a request. When a handler
// returns an error the response status is not set yet, so the error itself
// is authoritative.
func statusFromError(c *fiber.Ctx, err error) int {
	if err != nil {
		if e, ok := err.(*fiber.Error); ok {
			return e.Code
		}
		return fiber.StatusInternalServerError
	}
	return c.Response().StatusCode()
}

// Correlate is the outermost audit middleware. It allocates the correlation
// id, writes the REQUEST_START event before anything else runs, and acts as
// the narrow auth-boundary hook: a 401/403 produced by the authentication or
// authorization stage is recorded here rather than by the response
// interceptor, so a denial is never double-accounted as a normal completion.
func Correlate(allocator *audit.Allocator, recorder *audit.Recorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		correlationID, err := allocator.Allocate(c.Context())
		if err != nil {
			// Without an id the request would leave an orphaned audit gap
			// with no failure record; abort loudly instead.
			slog.Error("Failed to allocate correlation id", "error", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Audit correlation unavailable")
		}
		setCorrelationID(c, correlationID)
		recorder.RecordStart(c.Context(), correlationID, c.Method(), c.Path(), "")

		err = c.Next()

		status := statusFromError(c, err)
		isDenialStatus := status == fiber.StatusUnauthorized || status == fiber.StatusForbidden
		if !endRecorded(c) && isDenialStatus && authDenied(c) {
			recorder.RecordEnd(c.Context(), correlationID, c.Method(), c.Path(), status, "")
		}
		return err
	}
}
