package handlers

import (
	"Tukarin-Backend/domain"
	"Tukarin-Backend/internal/api/presenters"
	"Tukarin-Backend/pkg/rating"
	"errors"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	RatingHandler interface {
		RateUser(c *fiber.Ctx) error
		RateProduct(c *fiber.Ctx) error
		GetUserRatings(c *fiber.Ctx) error
		GetProductRatings(c *fiber.Ctx) error
	}

	ratingHandler struct {
		ratingService rating.RatingService
		validator     *validator.Validate
	}
)

func NewRatingHandler(ratingService rating.RatingService, validator *validator.Validate) RatingHandler {
	return &ratingHandler{
		ratingService: ratingService,
		validator:     validator,
	}
}

func ratingErrorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrExchangeNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorizedExchangeAccess):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrAlreadyRated):
		return fiber.StatusConflict
	default:
		return fiber.StatusBadRequest
	}
}

func (h *ratingHandler) RateUser(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.RateUserRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedRateUser, err)
	}

	res, err := h.ratingService.RateUser(c.Context(), *req, userID)
	if err != nil {
		return presenters.ErrorResponse(c, ratingErrorStatus(err), domain.MessageFailedRateUser, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessRateUser)
}

func (h *ratingHandler) RateProduct(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.RateProductRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedRateProduct, err)
	}

	res, err := h.ratingService.RateProduct(c.Context(), *req, userID)
	if err != nil {
		return presenters.ErrorResponse(c, ratingErrorStatus(err), domain.MessageFailedRateProduct, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessRateProduct)
}

func (h *ratingHandler) GetUserRatings(c *fiber.Ctx) error {
	userID := c.Params("id")

	res, err := h.ratingService.GetUserRatings(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetRatings, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetRatings)
}

func (h *ratingHandler) GetProductRatings(c *fiber.Ctx) error {
	productID := c.Params("id")

	res, err := h.ratingService.GetProductRatings(c.Context(), productID)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetRatings, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetRatings)
}
