package handlers

import (
	"Tukarin-Backend/domain"
	"Tukarin-Backend/internal/api/presenters"
	"Tukarin-Backend/pkg/chat"
	"errors"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	ChatHandler interface {
		SendMessage(c *fiber.Ctx) error
		GetChatList(c *fiber.Ctx) error
		GetChatHistory(c *fiber.Ctx) error
		UpdateMessageStatus(c *fiber.Ctx) error
		UpdateClientStatus(c *fiber.Ctx) error
	}

	chatHandler struct {
		chatService chat.ChatService
		validator   *validator.Validate
	}
)

func NewChatHandler(chatService chat.ChatService, validator *validator.Validate) ChatHandler {
	return &chatHandler{
		chatService: chatService,
		validator:   validator,
	}
}

func chatErrorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrExchangeNotFound),
		errors.Is(err, domain.ErrMessageNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorizedExchangeAccess),
		errors.Is(err, domain.ErrUserNotAllowed),
		errors.Is(err, domain.ErrChatNotAllowed):
		return fiber.StatusForbidden
	default:
		return fiber.StatusBadRequest
	}
}

func (h *chatHandler) SendMessage(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.SendMessageRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedSendMessage, err)
	}

	res, err := h.chatService.SendMessage(c.Context(), *req, userID)
	if err != nil {
		return presenters.ErrorResponse(c, chatErrorStatus(err), domain.MessageFailedSendMessage, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessSendMessage)
}

func (h *chatHandler) GetChatList(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.chatService.GetChatList(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetChatList, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetChatList)
}

func (h *chatHandler) GetChatHistory(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := domain.ChatHistoryRequest{
		UserID:     c.Query("user_id"),
		ExchangeID: c.Query("exchange_id"),
	}

	if err := h.validator.Struct(&req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetChatHistory, err)
	}

	res, err := h.chatService.GetChatHistory(c.Context(), req, userID)
	if err != nil {
		return presenters.ErrorResponse(c, chatErrorStatus(err), domain.MessageFailedGetChatHistory, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetChatHistory)
}

func (h *chatHandler) UpdateMessageStatus(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.UpdateMessageStatusRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateStatus, err)
	}

	res, err := h.chatService.UpdateMessageStatus(c.Context(), *req, userID)
	if err != nil {
		return presenters.ErrorResponse(c, chatErrorStatus(err), domain.MessageFailedUpdateStatus, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpdateStatus)
}

func (h *chatHandler) UpdateClientStatus(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.UpdateClientStatusRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateClientStatus, err)
	}

	if err := h.chatService.UpdateClientStatus(c.Context(), *req, userID); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateClientStatus, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessUpdateClientStatus)
}
