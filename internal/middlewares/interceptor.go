package middlewares

import (
	"github.com/gofiber/fiber/v2"
	"github.com/ptavares/socialspaces/internal/audit"
)

// AuditInterceptor records the AUTH_INFO and REQUEST_END events. It runs
// for every routed request, inside the correlation middleware; since the
// authentication middlewares are attached per route group, identity is read
// after the inner chain returns, and AUTH_INFO is written before END so the
// per-request event order stays START → AUTH_INFO → END.
//
// A 401/403 carrying the auth-stage denial mark is not recorded here; the
// correlation middleware's boundary hook owns those. A 401/403 coming out
// of business logic (no mark) is recorded like any other completion.
func AuditInterceptor(recorder *audit.Recorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		correlationID := CorrelationID(c)
		user := AuthenticatedUser(c)
		if user != "" {
			recorder.RecordAuthenticated(c.Context(), correlationID, user)
		}

		status := statusFromError(c, err)
		isDenialStatus := status == fiber.StatusUnauthorized || status == fiber.StatusForbidden
		if isDenialStatus && authDenied(c) {
			return err
		}
		recorder.RecordEnd(c.Context(), correlationID, c.Method(), c.Path(), status, user)
		markEndRecorded(c)
		return err
	}
}
