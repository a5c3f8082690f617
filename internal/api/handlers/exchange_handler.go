package handlers

import (
	"Tukarin-Backend/domain"
	"Tukarin-Backend/internal/api/presenters"
	"Tukarin-Backend/pkg/exchange"
	"errors"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	ExchangeHandler interface {
		RequestExchange(c *fiber.Ctx) error
		ApproveExchange(c *fiber.Ctx) error
		DeclineExchange(c *fiber.Ctx) error
		ConfirmCompletion(c *fiber.Ctx) error
		CancelExchange(c *fiber.Ctx) error
		GetExchangeDetails(c *fiber.Ctx) error
		GetUserExchanges(c *fiber.Ctx) error
		GetIncomingExchanges(c *fiber.Ctx) error
		GetOutgoingExchanges(c *fiber.Ctx) error
		GetProductExchanges(c *fiber.Ctx) error
	}

	exchangeHandler struct {
		exchangeService exchange.ExchangeService
		validator       *validator.Validate
	}
)

func NewExchangeHandler(exchangeService exchange.ExchangeService, validator *validator.Validate) ExchangeHandler {
	return &exchangeHandler{
		exchangeService: exchangeService,
		validator:       validator,
	}
}

func exchangeErrorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrExchangeNotFound),
		errors.Is(err, domain.ErrProductNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorizedExchangeAccess):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrExchangePending),
		errors.Is(err, domain.ErrAlreadyConfirmed),
		errors.Is(err, domain.ErrProductAlreadyExchanged):
		return fiber.StatusConflict
	default:
		return fiber.StatusBadRequest
	}
}

func (h *exchangeHandler) RequestExchange(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.ExchangeRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedRequestExchange, err)
	}

	res, err := h.exchangeService.RequestExchange(c.Context(), *req, userID)
	if err != nil {
		return presenters.ErrorResponse(c, exchangeErrorStatus(err), domain.MessageFailedRequestExchange, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessRequestExchange)
}

func (h *exchangeHandler) ApproveExchange(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	exchangeID := c.Params("id")

	res, err := h.exchangeService.ApproveExchange(c.Context(), exchangeID, userID)
	if err != nil {
		return presenters.ErrorResponse(c, exchangeErrorStatus(err), domain.MessageFailedApproveExchange, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessApproveExchange)
}

func (h *exchangeHandler) DeclineExchange(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	exchangeID := c.Params("id")

	res, err := h.exchangeService.DeclineExchange(c.Context(), exchangeID, userID)
	if err != nil {
		return presenters.ErrorResponse(c, exchangeErrorStatus(err), domain.MessageFailedDeclineExchange, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessDeclineExchange)
}

func (h *exchangeHandler) ConfirmCompletion(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	exchangeID := c.Params("id")

	res, err := h.exchangeService.ConfirmCompletion(c.Context(), exchangeID, userID)
	if err != nil {
		return presenters.ErrorResponse(c, exchangeErrorStatus(err), domain.MessageFailedConfirmExchange, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessConfirmExchange)
}

func (h *exchangeHandler) CancelExchange(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	exchangeID := c.Params("id")

	res, err := h.exchangeService.CancelExchange(c.Context(), exchangeID, userID)
	if err != nil {
		return presenters.ErrorResponse(c, exchangeErrorStatus(err), domain.MessageFailedCancelExchange, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessCancelExchange)
}

func (h *exchangeHandler) GetExchangeDetails(c *fiber.Ctx) error {
	exchangeID := c.Params("id")

	res, err := h.exchangeService.GetExchangeByID(c.Context(), exchangeID)
	if err != nil {
		return presenters.ErrorResponse(c, exchangeErrorStatus(err), domain.MessageFailedGetExchanges, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetExchanges)
}

func (h *exchangeHandler) GetUserExchanges(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.exchangeService.GetUserExchanges(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetExchanges, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetExchanges)
}

// GetIncomingExchanges also resets the viewer's new-request counter, the list
// has been seen once this returns.
func (h *exchangeHandler) GetIncomingExchanges(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.exchangeService.GetIncomingExchanges(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetExchanges, err)
	}

	if err := h.exchangeService.AcknowledgeIncoming(c.Context(), userID); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedAcknowledgeIncoming, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetExchanges)
}

func (h *exchangeHandler) GetOutgoingExchanges(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.exchangeService.GetOutgoingExchanges(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetExchanges, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetExchanges)
}

func (h *exchangeHandler) GetProductExchanges(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	productID := c.Params("productId")

	res, err := h.exchangeService.GetProductExchanges(c.Context(), userID, productID)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetExchanges, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetExchanges)
}
