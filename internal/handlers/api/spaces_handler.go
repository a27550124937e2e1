package api

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/ptavares/socialspaces/internal/common"
	"github.com/ptavares/socialspaces/internal/messages"
	"github.com/ptavares/socialspaces/internal/middlewares"
	"github.com/ptavares/socialspaces/internal/spaces"
)

type SpacesHandler struct {
	spaceService   *spaces.SpaceService
	messageService *messages.MessageService
}

func NewSpacesHandler(spaceService *spaces.SpaceService, messageService *messages.MessageService) *SpacesHandler {
	return &SpacesHandler{
		spaceService:   spaceService,
		messageService: messageService,
	}
}

type createSpaceRequest struct {
	Name  string `json:"name"`
	Owner string `json:"owner"`
}

type updateSpaceRequest struct {
	Name string `json:"name"`
}

func spaceIDParam(ctx *fiber.Ctx) (uint64, error) {
	spaceID, err := strconv.ParseUint(ctx.Params("spaceId"), 10, 64)
	if err != nil || spaceID == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, `The "spaceId" field is invalid.`)
	}
	return spaceID, nil
}

func isSpaceValidationError(err error) bool {
	switch {
	case errors.Is(err, common.ErrNameTooLong),
		errors.Is(err, common.ErrOwnerTooLong),
		errors.Is(err, common.ErrNameInvalid),
		errors.Is(err, common.ErrOwnerInvalid):
		return true
	}
	return false
}

func (h *SpacesHandler) PostSpace(ctx *fiber.Ctx) error {
	creator := middlewares.AuthenticatedUser(ctx)
	if creator == "" {
		middlewares.MarkAuthDenied(ctx)
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}

	var req createSpaceRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	info, err := h.spaceService.CreateSpace(ctx.Context(), req.Name, req.Owner, creator)
	if isSpaceValidationError(err) {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	} else if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to create space")
	}

	ctx.Set(fiber.HeaderLocation, info.URI)
	return ctx.Status(fiber.StatusCreated).JSON(info)
}

func (h *SpacesHandler) GetSpaces(ctx *fiber.Ctx) error {
	listing, err := h.spaceService.ListSpaces(ctx.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to list spaces")
	}
	return ctx.JSON(listing)
}

func (h *SpacesHandler) PutSpace(ctx *fiber.Ctx) error {
	spaceID, err := spaceIDParam(ctx)
	if err != nil {
		return err
	}

	var req updateSpaceRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	space, err := h.spaceService.UpdateSpace(ctx.Context(), spaceID, req.Name)
	if errors.Is(err, spaces.ErrSpaceNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Space not found")
	} else if isSpaceValidationError(err) {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	} else if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to update space")
	}
	return ctx.JSON(space)
}

func (h *SpacesHandler) DeleteSpace(ctx *fiber.Ctx) error {
	spaceID, err := spaceIDParam(ctx)
	if err != nil {
		return err
	}

	if err := h.messageService.DeleteSpaceMessages(ctx.Context(), spaceID); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to delete space")
	}
	if err := h.spaceService.DeleteSpace(ctx.Context(), spaceID); errors.Is(err, spaces.ErrSpaceNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Space not found")
	} else if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to delete space")
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}
