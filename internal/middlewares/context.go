package middlewares

import "github.com/gofiber/fiber/v2"

// Locals keys shared across the request pipeline. The correlation id is set
// by the correlation middleware before anything else runs; the user is set
// by the authentication middleware; the denial mark distinguishes auth-stage
// rejections from 401/403 responses produced by business logic.
const (
	localCorrelationID = "audit_correlation_id"
	localAuthUser      = "authenticated_user"
	localAuthDenied    = "auth_stage_denied"
	localEndRecorded   = "audit_end_recorded"
)

// CorrelationID returns the correlation id of the current request, or 0 if
// the correlation middleware has not run.
func CorrelationID(c *fiber.Ctx) uint64 {
	if id, ok := c.Locals(localCorrelationID).(uint64); ok {
		return id
	}
	return 0
}

func setCorrelationID(c *fiber.Ctx, id uint64) {
	c.Locals(localCorrelationID, id)
}

// AuthenticatedUser returns the identity established for this request, or
// "" when the request never authenticated.
func AuthenticatedUser(c *fiber.Ctx) string {
	if user, ok := c.Locals(localAuthUser).(string); ok {
		return user
	}
	return ""
}

func SetAuthenticatedUser(c *fiber.Ctx, userID string) {
	c.Locals(localAuthUser, userID)
}

// MarkAuthDenied records that the authentication/authorization stage itself
// rejected this request. The audit interceptor uses the mark to decide
// whether a 401/403 is an auth denial or a business outcome.
func MarkAuthDenied(c *fiber.Ctx) {
	c.Locals(localAuthDenied, true)
}

func authDenied(c *fiber.Ctx) bool {
	denied, ok := c.Locals(localAuthDenied).(bool)
	return ok && denied
}

func markEndRecorded(c *fiber.Ctx) {
	c.Locals(localEndRecorded, true)
}

func endRecorded(c *fiber.Ctx) bool {
	recorded, ok := c.Locals(localEndRecorded).(bool)
	return ok && recorded
}
