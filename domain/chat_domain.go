package domain

import (
	"errors"
	"time"
)

var (
	MessageSuccessSendMessage        = "message sent successfully"
	MessageSuccessGetChatList        = "chat list retrieved successfully"
	MessageSuccessGetChatHistory     = "chat history retrieved successfully"
	MessageSuccessUpdateStatus       = "message status updated successfully"
	MessageSuccessUpdateClientStatus = "client status updated successfully"

	MessageFailedSendMessage        = "failed to send message"
	MessageFailedGetChatList        = "failed to retrieve chat list"
	MessageFailedGetChatHistory     = "failed to retrieve chat history"
	MessageFailedUpdateStatus       = "failed to update message status"
	MessageFailedUpdateClientStatus = "failed to update client status"

	ErrMessageNotFound         = errors.New("message not found")
	ErrChatNotAllowed          = errors.New("chat not allowed until exchange is accepted")
	ErrInvalidStatusTransition = errors.New("invalid message status transition")
)

type (
	SendMessageRequest struct {
		ExchangeID string `json:"exchange_id" validate:"required,uuid"`
		ReceiverID string `json:"receiver_id" validate:"required,uuid"`
		Message    string `json:"message" validate:"required"`
	}

	MessageResponse struct {
		ID         string    `json:"id"`
		ExchangeID string    `json:"exchange_id"`
		SenderID   string    `json:"sender_id"`
		ReceiverID string    `json:"receiver_id"`
		Message    string    `json:"message"`
		Status     string    `json:"status"`
		CreatedAt  time.Time `json:"created_at"`
	}

	UpdateMessageStatusRequest struct {
		MessageID string `json:"message_id" validate:"required,uuid"`
		Status    string `json:"status" validate:"required,oneof=delivered read"`
	}

	ChatListEntry struct {
		ExchangeID       string           `json:"exchange_id"`
		User             *ExchangeUser    `json:"user"`
		LastMessage      string           `json:"last_message,omitempty"`
		Timestamp        *time.Time       `json:"timestamp,omitempty"`
		RequesterProduct *ExchangeProduct `json:"requester_product,omitempty"`
		ReceiverProduct  *ExchangeProduct `json:"receiver_product,omitempty"`
	}

	ChatHistoryRequest struct {
		UserID     string `json:"user_id" validate:"required,uuid"`
		ExchangeID string `json:"exchange_id" validate:"required,uuid"`
	}

	// ActiveChat mirrors the client heartbeat: which counterpart and exchange
	// the user currently has open on screen.
	ActiveChat struct {
		UserID     string `json:"user_id" validate:"required,uuid"`
		ExchangeID string `json:"exchange_id" validate:"omitempty,uuid"`
	}

	UpdateClientStatusRequest struct {
		Status     string      `json:"status" validate:"required,oneof=app_open background read delivered"`
		ActiveChat *ActiveChat `json:"active_chat,omitempty"`
	}
)
