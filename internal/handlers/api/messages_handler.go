package api

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/ptavares/socialspaces/internal/common"
	"github.com/ptavares/socialspaces/internal/messages"
	"github.com/ptavares/socialspaces/internal/middlewares"
)

type MessagesHandler struct {
	messageService *messages.MessageService
}

func NewMessagesHandler(messageService *messages.MessageService) *MessagesHandler {
	return &MessagesHandler{messageService: messageService}
}

type createMessageRequest struct {
	Message string `json:"message"`
}

func (h *MessagesHandler) PostMessage(ctx *fiber.Ctx) error {
	spaceID, err := spaceIDParam(ctx)
	if err != nil {
		return err
	}
	author := middlewares.AuthenticatedUser(ctx)

	var req createMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	message, err := h.messageService.CreateMessage(ctx.Context(), spaceID, author, req.Message)
	if errors.Is(err, common.ErrMessageTooLong) || errors.Is(err, common.ErrMessageInvalid) {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	} else if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to create message")
	}
	return ctx.Status(fiber.StatusCreated).JSON(message)
}

func (h *MessagesHandler) GetMessages(ctx *fiber.Ctx) error {
	spaceID, err := spaceIDParam(ctx)
	if err != nil {
		return err
	}

	var since *time.Time
	if value := ctx.Query("since"); value != "" {
		parsed, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, `The "since" field is invalid.`)
		}
		since = &parsed
	}

	listing, err := h.messageService.ListMessages(ctx.Context(), spaceID, since)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to list messages")
	}
	return ctx.JSON(listing)
}

func (h *MessagesHandler) GetMessage(ctx *fiber.Ctx) error {
	spaceID, err := spaceIDParam(ctx)
	if err != nil {
		return err
	}
	messageID, err := strconv.ParseUint(ctx.Params("messageId"), 10, 64)
	if err != nil || messageID == 0 {
		return fiber.NewError(fiber.StatusBadRequest, `The "messageId" field is invalid.`)
	}

	message, err := h.messageService.GetMessage(ctx.Context(), spaceID, messageID)
	if errors.Is(err, messages.ErrMessageNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Message not found")
	} else if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch message")
	}
	return ctx.JSON(message)
}

func (h *MessagesHandler) DeleteMessage(ctx *fiber.Ctx) error {
	spaceID, err := spaceIDParam(ctx)
	if err != nil {
		return err
	}
	messageID, err := strconv.ParseUint(ctx.Params("messageId"), 10, 64)
	if err != nil || messageID == 0 {
		return fiber.NewError(fiber.StatusBadRequest, `The "messageId" field is invalid.`)
	}

	if err := h.messageService.DeleteMessage(ctx.Context(), spaceID, messageID); errors.Is(err, messages.ErrMessageNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Message not found")
	} else if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to delete message")
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}
