package domain

import (
	"errors"
	"time"
)

var (
	MessageSuccessRequestExchange     = "exchange requested successfully"
	MessageSuccessApproveExchange     = "exchange approved successfully"
	MessageSuccessDeclineExchange     = "exchange declined successfully"
	MessageSuccessConfirmExchange     = "exchange completion confirmed successfully"
	MessageSuccessCancelExchange      = "exchange cancelled successfully"
	MessageSuccessGetExchanges        = "exchanges retrieved successfully"
	MessageSuccessAcknowledgeIncoming = "incoming exchange requests acknowledged"

	MessageFailedRequestExchange     = "failed to request exchange"
	MessageFailedApproveExchange     = "failed to approve exchange"
	MessageFailedDeclineExchange     = "failed to decline exchange"
	MessageFailedConfirmExchange     = "failed to confirm exchange completion"
	MessageFailedCancelExchange      = "failed to cancel exchange"
	MessageFailedGetExchanges        = "failed to retrieve exchanges"
	MessageFailedAcknowledgeIncoming = "failed to acknowledge incoming exchange requests"

	ErrExchangeNotFound           = errors.New("exchange not found")
	ErrProductNotFound            = errors.New("product not found")
	ErrUnauthorizedExchangeAccess = errors.New("unauthorized access to exchange")
	ErrInvalidExchangeStatus      = errors.New("exchange is not in a state that permits this action")
	ErrExchangeNotSubmission      = errors.New("exchange must still be in submission")
	ErrExchangeNotApproved        = errors.New("exchange must be approved first")
	ErrAlreadyConfirmed           = errors.New("you have already confirmed, waiting for the other party")
	ErrExchangePending            = errors.New("a pending exchange request already exists for these products, wait for it to be processed")
	ErrPriceMismatch              = errors.New("products must have the same price to be exchanged")
	ErrProductAlreadyExchanged    = errors.New("product has already been exchanged")
	ErrSelfExchange               = errors.New("cannot exchange with yourself")
	ErrProductNotOwned            = errors.New("product does not belong to you")
	ErrTargetProductOwned         = errors.New("target product must not belong to you")
)

type (
	ExchangeRequest struct {
		ProductID   string `json:"product_id" validate:"required,uuid"`
		ToProductID string `json:"to_product_id" validate:"required,uuid"`
		ToUserID    string `json:"to_user_id" validate:"required,uuid"`
	}

	ExchangeUser struct {
		ID       string `json:"id"`
		Fullname string `json:"fullname"`
		Avatar   string `json:"avatar,omitempty"`
	}

	ExchangeProduct struct {
		ID       string  `json:"id"`
		UserID   string  `json:"user_id"`
		Name     string  `json:"name"`
		Price    float64 `json:"price"`
		ImageURL string  `json:"image_url,omitempty"`
	}

	ExchangeResponse struct {
		ID                 string           `json:"id"`
		UserID             string           `json:"user_id"`
		ToUserID           string           `json:"to_user_id"`
		ProductID          string           `json:"product_id"`
		ToProductID        string           `json:"to_product_id"`
		Status             string           `json:"status"`
		RequesterConfirmed bool             `json:"requester_confirmed"`
		ReceiverConfirmed  bool             `json:"receiver_confirmed"`
		CreatedAt          time.Time        `json:"created_at"`
		CompletedAt        *time.Time       `json:"completed_at,omitempty"`
		Requester          *ExchangeUser    `json:"requester,omitempty"`
		Receiver           *ExchangeUser    `json:"receiver,omitempty"`
		RequesterProduct   *ExchangeProduct `json:"requester_product,omitempty"`
		ReceiverProduct    *ExchangeProduct `json:"receiver_product,omitempty"`
	}

	// ConfirmExchangeResponse reports the state after one party confirmed,
	// including exchanges that were auto-cancelled by the completion cascade.
	ConfirmExchangeResponse struct {
		Exchange           *ExchangeResponse   `json:"exchange"`
		Completed          bool                `json:"completed"`
		CancelledExchanges []*ExchangeResponse `json:"cancelled_exchanges,omitempty"`
	}
)
