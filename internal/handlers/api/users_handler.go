package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/ptavares/socialspaces/internal/common"
	"github.com/ptavares/socialspaces/internal/users"
)

type UsersHandler struct {
	userService *users.UserService
}

func NewUsersHandler(userService *users.UserService) *UsersHandler {
	return &UsersHandler{userService: userService}
}

type createUserRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Permissions string `json:"permissions"`
}

type createUserResponse struct {
	Username string `json:"username"`
	Created  bool   `json:"created"`
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, common.ErrUsernameEmpty),
		errors.Is(err, common.ErrUsernameInvalid),
		errors.Is(err, common.ErrPasswordTooShort),
		errors.Is(err, common.ErrPasswordWeak),
		errors.Is(err, common.ErrPermissionsInvalid):
		return true
	}
	return false
}

func (h *UsersHandler) PostUser(ctx *fiber.Ctx) error {
	var req createUserRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	user, err := h.userService.CreateUser(ctx.Context(), req.Username, req.Password, req.Permissions)
	if errors.Is(err, users.ErrUserExists) {
		return fiber.NewError(fiber.StatusBadRequest, "User with this username already exists")
	} else if isValidationError(err) {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	} else if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to create user")
	}

	return ctx.Status(fiber.StatusCreated).JSON(createUserResponse{
		Username: user.UserID,
		Created:  true,
	})
}

func (h *UsersHandler) GetUsers(ctx *fiber.Ctx) error {
	listing, err := h.userService.ListUsers(ctx.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to list users")
	}
	return ctx.JSON(listing)
}
