package entities

import (
	"github.com/google/uuid"
)

const (
	MessageStatusSent      = "sent"
	MessageStatusDelivered = "delivered"
	MessageStatusRead      = "read"
)

type Message struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	ExchangeID uuid.UUID `json:"exchange_id"`
	SenderID   uuid.UUID `json:"sender_id"`
	ReceiverID uuid.UUID `json:"receiver_id"`
	Message    string    `json:"message"`
	Status     string    `json:"status"` // sent, delivered, read

	Exchange *Exchange `gorm:"foreignKey:ExchangeID"`
	Sender   *User     `gorm:"foreignKey:SenderID"`
	Receiver *User     `gorm:"foreignKey:ReceiverID"`
	Timestamp
}
