package middlewares

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// ErrorHandler turns handler errors into stable JSON envelopes. Messages of
// fiber errors are treated as client-safe; anything else is reported as an
// internal error and logged with the request path.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}
	if code == fiber.StatusInternalServerError {
		slog.Error("Unhandled error", "path", ctx.Path(), "code", code, "error", err)
	}
	return ctx.Status(code).JSON(errorResponse{
		Error: errorBody{Code: code, Message: message},
	})
}
