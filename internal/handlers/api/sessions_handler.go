package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/ptavares/socialspaces/internal/middlewares"
	"github.com/ptavares/socialspaces/internal/token"
)

const sessionCookieName = "session_token"

type SessionsHandler struct {
	tokenService *token.Service
}

func NewSessionsHandler(tokenService *token.Service) *SessionsHandler {
	return &SessionsHandler{tokenService: tokenService}
}

type sessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// PostSession issues a session token for the already-authenticated caller.
// The token is returned in the body and mirrored into a cookie for browser
// clients.
func (h *SessionsHandler) PostSession(ctx *fiber.Ctx) error {
	username := middlewares.AuthenticatedUser(ctx)
	if username == "" {
		middlewares.MarkAuthDenied(ctx)
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}

	signed, expiresAt, err := h.tokenService.Issue(username)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to create session")
	}

	ctx.Cookie(&fiber.Cookie{
		Name:     sessionCookieName,
		Value:    signed,
		Expires:  expiresAt,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
	return ctx.Status(fiber.StatusCreated).JSON(sessionResponse{
		Token:     signed,
		ExpiresAt: expiresAt,
	})
}

// DeleteSession revokes the presented token for the rest of its lifetime.
func (h *SessionsHandler) DeleteSession(ctx *fiber.Ctx) error {
	tokenString := ""
	if header := ctx.Get(fiber.HeaderAuthorization); strings.HasPrefix(strings.ToLower(header), "bearer ") {
		tokenString = header[len("bearer "):]
	}
	if tokenString == "" {
		tokenString = ctx.Cookies(sessionCookieName)
	}
	if tokenString == "" {
		return fiber.NewError(fiber.StatusBadRequest, "No session token provided")
	}

	if err := h.tokenService.Revoke(ctx.Context(), tokenString); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid session token")
	}
	ctx.Cookie(&fiber.Cookie{
		Name:    sessionCookieName,
		Value:   "",
		Expires: time.Now().Add(-time.Hour),
	})
	return ctx.SendStatus(fiber.StatusNoContent)
}
