package auth

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/ptavares/socialspaces/internal/middlewares"
	"gorm.io/gorm"
)

func forbidden(c *fiber.Ctx, message string) error {
	middlewares.MarkAuthDenied(c)
	return fiber.NewError(fiber.StatusForbidden, message)
}

// RequirePermission guards an operation with a required HTTP method and a
// required permission flag. The stored permission string is checked by
// case-insensitive substring containment: "rwd" satisfies "r", "w" or "d"
// individually, while "r" does not satisfy "w".
func RequirePermission(permissions PermissionRepository, method string, permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() != method {
			return forbidden(c, ErrMethodNotAllowed.Error())
		}

		userID := middlewares.AuthenticatedUser(c)
		if userID == "" {
			middlewares.MarkAuthDenied(c)
			return fiber.NewError(fiber.StatusUnauthorized, ErrNotAuthenticated.Error())
		}

		spaceID, err := strconv.ParseUint(c.Params("spaceId"), 10, 64)
		if err != nil || spaceID == 0 {
			return forbidden(c, ErrScopeMissing.Error())
		}

		row, err := permissions.Find(c.Context(), spaceID, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return forbidden(c, ErrNoPermission.Error())
		} else if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to check permissions")
		}

		userPerms := strings.ToLower(row.Perms)
		required := strings.ToLower(permission)
		if !strings.Contains(userPerms, required) {
			return forbidden(c, ErrNoPermission.Error())
		}
		return c.Next()
	}
}
