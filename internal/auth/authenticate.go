package auth

import (
	"context"
	"encoding/base64"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/ptavares/socialspaces/internal/middlewares"
)

// CredentialVerifier checks a username/password pair against stored hashes.
type CredentialVerifier interface {
	VerifyPassword(ctx context.Context, username, password string) error
}

// TokenVerifier validates a bearer token and resolves its subject.
type TokenVerifier interface {
	Verify(ctx context.Context, tokenString string) (string, error)
}

var basicUsernameRegexp = regexp.MustCompile(`^[a-zA-Z0-9\s]*$`)

func unauthorized(c *fiber.Ctx, message string) error {
	middlewares.MarkAuthDenied(c)
	return fiber.NewError(fiber.StatusUnauthorized, message)
}

// Authenticate resolves the request identity from the Authorization header,
// accepting Basic credentials or a first-party bearer token. On success the
// identity lands in the request locals; on failure the request is rejected
// with 401 and marked as an auth-stage denial.
func Authenticate(credentials CredentialVerifier, tokens TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return unauthorized(c, "Unauthorized. Missing authorization header.")
		}

		authType, payload, found := strings.Cut(header, " ")
		if !found || payload == "" {
			return unauthorized(c, "Unauthorized. Missing credentials.")
		}

		switch strings.ToLower(authType) {
		case "basic":
			decoded, err := base64.StdEncoding.DecodeString(payload)
			if err != nil {
				return unauthorized(c, "Unauthorized. Invalid credentials format.")
			}
			username, password, found := strings.Cut(string(decoded), ":")
			if !found || username == "" || password == "" {
				return unauthorized(c, "Unauthorized. Invalid credentials format.")
			}
			if !basicUsernameRegexp.MatchString(username) {
				middlewares.MarkAuthDenied(c)
				return fiber.NewError(fiber.StatusBadRequest, "The supplied value contains disallowed special characters.")
			}
			if err := credentials.VerifyPassword(c.Context(), username, password); err != nil {
				return unauthorized(c, "Unauthorized. Invalid credentials.")
			}
			middlewares.SetAuthenticatedUser(c, username)
		case "bearer":
			subject, err := tokens.Verify(c.Context(), payload)
			if err != nil {
				return unauthorized(c, "Unauthorized. Invalid or expired token.")
			}
			middlewares.SetAuthenticatedUser(c, subject)
		default:
			return unauthorized(c, "Unauthorized. Unsupported authorization scheme.")
		}

		return c.Next()
	}
}
