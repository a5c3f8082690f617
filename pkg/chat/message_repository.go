package chat

import (
	"Tukarin-Backend/entities"
	"context"
	"errors"

	"gorm.io/gorm"
)

type (
	MessageRepository interface {
		CreateMessage(ctx context.Context, message *entities.Message) error
		GetMessageByID(ctx context.Context, id string) (*entities.Message, error)
		UpdateMessageStatus(ctx context.Context, id, status string) error

		// GetConversation returns the messages between two users scoped to one
		// exchange, oldest first.
		GetConversation(ctx context.Context, userID, otherUserID, exchangeID string) ([]*entities.Message, error)

		// GetLastMessage returns the newest message of an exchange, nil when
		// the conversation is still empty.
		GetLastMessage(ctx context.Context, exchangeID string) (*entities.Message, error)

		// MarkConversationRead flips every unread message the reader received
		// in the conversation to read.
		MarkConversationRead(ctx context.Context, readerID, senderID, exchangeID string) error
		CountUnread(ctx context.Context, receiverID, senderID, exchangeID string) (int64, error)
	}

	messageRepository struct {
		db *gorm.DB
	}
)

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) CreateMessage(ctx context.Context, message *entities.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *messageRepository) GetMessageByID(ctx context.Context, id string) (*entities.Message, error) {
	var message entities.Message
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&message).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *messageRepository) UpdateMessageStatus(ctx context.Context, id, status string) error {
	return r.db.WithContext(ctx).
		Model(&entities.Message{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *messageRepository) GetConversation(ctx context.Context, userID, otherUserID, exchangeID string) ([]*entities.Message, error) {
	var messages []*entities.Message
	if err := r.db.WithContext(ctx).
		Where("exchange_id = ?", exchangeID).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, otherUserID, otherUserID, userID).
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepository) GetLastMessage(ctx context.Context, exchangeID string) (*entities.Message, error) {
	var message entities.Message
	err := r.db.WithContext(ctx).
		Where("exchange_id = ?", exchangeID).
		Order("created_at DESC").
		First(&message).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &message, nil
}

func (r *messageRepository) MarkConversationRead(ctx context.Context, readerID, senderID, exchangeID string) error {
	return r.db.WithContext(ctx).
		Model(&entities.Message{}).
		Where("exchange_id = ? AND receiver_id = ? AND sender_id = ? AND status <> ?",
			exchangeID, readerID, senderID, entities.MessageStatusRead).
		Update("status", entities.MessageStatusRead).Error
}

func (r *messageRepository) CountUnread(ctx context.Context, receiverID, senderID, exchangeID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.Message{}).
		Where("exchange_id = ? AND receiver_id = ? AND sender_id = ? AND status <> ?",
			exchangeID, receiverID, senderID, entities.MessageStatusRead).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
