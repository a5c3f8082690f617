package chat

import (
	"Tukarin-Backend/domain"
	"Tukarin-Backend/entities"
	"Tukarin-Backend/pkg/exchange"
	"Tukarin-Backend/pkg/notification"
	"Tukarin-Backend/pkg/realtime"
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	ChatService interface {
		SendMessage(ctx context.Context, req domain.SendMessageRequest, senderID string) (*domain.MessageResponse, error)
		GetChatList(ctx context.Context, userID string) ([]*domain.ChatListEntry, error)
		GetChatHistory(ctx context.Context, req domain.ChatHistoryRequest, userID string) ([]*domain.MessageResponse, error)
		UpdateMessageStatus(ctx context.Context, req domain.UpdateMessageStatusRequest, userID string) (*domain.MessageResponse, error)
		UpdateClientStatus(ctx context.Context, req domain.UpdateClientStatusRequest, userID string) error
	}

	chatService struct {
		messageRepository   MessageRepository
		exchangeRepository  exchange.ExchangeRepository
		realtimeService     realtime.RealtimeService
		notificationService notification.NotificationService
	}
)

func NewChatService(
	messageRepository MessageRepository,
	exchangeRepository exchange.ExchangeRepository,
	realtimeService realtime.RealtimeService,
	notificationService notification.NotificationService,
) ChatService {
	return &chatService{
		messageRepository:   messageRepository,
		exchangeRepository:  exchangeRepository,
		realtimeService:     realtimeService,
		notificationService: notificationService,
	}
}

// SendMessage persists a chat message for an approved exchange and mirrors
// it to the realtime chat rooms. The push notification is suppressed when the
// receiver currently has this conversation open.
func (s *chatService) SendMessage(ctx context.Context, req domain.SendMessageRequest, senderID string) (*domain.MessageResponse, error) {
	senderUUID, err := uuid.Parse(senderID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}

	ex, err := s.exchangeRepository.GetExchangeByID(ctx, req.ExchangeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrExchangeNotFound
		}
		return nil, err
	}
	if !ex.IsParticipant(senderUUID) {
		return nil, domain.ErrUnauthorizedExchangeAccess
	}
	if ex.Status != entities.ExchangeStatusApprove {
		return nil, domain.ErrChatNotAllowed
	}

	receiverUUID := ex.OtherParty(senderUUID)
	if req.ReceiverID != receiverUUID.String() {
		return nil, domain.ErrUnauthorizedExchangeAccess
	}

	message := &entities.Message{
		ID:         uuid.New(),
		ExchangeID: ex.ID,
		SenderID:   senderUUID,
		ReceiverID: receiverUUID,
		Message:    req.Message,
		Status:     entities.MessageStatusSent,
	}
	if err := s.messageRepository.CreateMessage(ctx, message); err != nil {
		return nil, err
	}

	sender, receiver := ex.Requester, ex.Receiver
	if ex.ToUserID == senderUUID {
		sender, receiver = ex.Receiver, ex.Requester
	}
	s.realtimeService.UpdateChatMetadata(ctx, sender, receiver, ex.ID.String(), req.Message)

	title := "New Message"
	if sender != nil {
		title = sender.Fullname
	}
	data := map[string]string{"exchange_id": ex.ID.String(), "type": "chat_message"}
	if s.realtimeService.IsUserActiveInChat(ctx, receiverUUID.String(), senderID, ex.ID.String()) {
		s.notificationService.SaveOnly(ctx, receiverUUID.String(), title, req.Message, data)
	} else {
		s.notificationService.SaveAndPush(ctx, receiverUUID.String(), title, req.Message, data)
	}

	return toMessageResponse(message), nil
}

// GetChatList projects the user's approved exchanges into chat entries with
// the counterpart and the latest message of each conversation.
func (s *chatService) GetChatList(ctx context.Context, userID string) ([]*domain.ChatListEntry, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}

	exchanges, err := s.exchangeRepository.GetApprovedExchangesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.ChatListEntry, 0, len(exchanges))
	for _, ex := range exchanges {
		counterpart := ex.Receiver
		if ex.ToUserID == userUUID {
			counterpart = ex.Requester
		}

		entry := &domain.ChatListEntry{
			ExchangeID:       ex.ID.String(),
			User:             toChatUser(counterpart),
			RequesterProduct: toChatProduct(ex.RequesterProduct),
			ReceiverProduct:  toChatProduct(ex.ReceiverProduct),
		}

		last, err := s.messageRepository.GetLastMessage(ctx, ex.ID.String())
		if err != nil {
			log.Printf("chat: failed to load last message for exchange %s: %v", ex.ID, err)
		} else if last != nil {
			entry.LastMessage = last.Message
			ts := last.CreatedAt
			entry.Timestamp = &ts
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// GetChatHistory returns the conversation with another user for an exchange
// and marks everything the caller received in it as read.
func (s *chatService) GetChatHistory(ctx context.Context, req domain.ChatHistoryRequest, userID string) ([]*domain.MessageResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}

	ex, err := s.exchangeRepository.GetExchangeByID(ctx, req.ExchangeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrExchangeNotFound
		}
		return nil, err
	}
	if !ex.IsParticipant(userUUID) {
		return nil, domain.ErrUnauthorizedExchangeAccess
	}

	messages, err := s.messageRepository.GetConversation(ctx, userID, req.UserID, req.ExchangeID)
	if err != nil {
		return nil, err
	}

	if err := s.messageRepository.MarkConversationRead(ctx, userID, req.UserID, req.ExchangeID); err != nil {
		log.Printf("chat: failed to mark conversation read for user %s: %v", userID, err)
	}

	responses := make([]*domain.MessageResponse, 0, len(messages))
	for _, m := range messages {
		responses = append(responses, toMessageResponse(m))
	}
	return responses, nil
}

// UpdateMessageStatus advances a single message through sent -> delivered ->
// read. Only the receiver of the message may advance it and it never moves
// backwards.
func (s *chatService) UpdateMessageStatus(ctx context.Context, req domain.UpdateMessageStatusRequest, userID string) (*domain.MessageResponse, error) {
	message, err := s.messageRepository.GetMessageByID(ctx, req.MessageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, err
	}
	if message.ReceiverID.String() != userID {
		return nil, domain.ErrUserNotAllowed
	}

	if !validStatusTransition(message.Status, req.Status) {
		return nil, domain.ErrInvalidStatusTransition
	}

	if err := s.messageRepository.UpdateMessageStatus(ctx, req.MessageID, req.Status); err != nil {
		return nil, err
	}
	message.Status = req.Status
	return toMessageResponse(message), nil
}

func validStatusTransition(from, to string) bool {
	switch to {
	case entities.MessageStatusDelivered:
		return from == entities.MessageStatusSent
	case entities.MessageStatusRead:
		return from == entities.MessageStatusSent || from == entities.MessageStatusDelivered
	default:
		return false
	}
}

// UpdateClientStatus relays the client heartbeat to the realtime store. A
// read heartbeat with an active chat also settles the conversation's unread
// messages relationally.
func (s *chatService) UpdateClientStatus(ctx context.Context, req domain.UpdateClientStatusRequest, userID string) error {
	if req.Status == entities.MessageStatusRead && req.ActiveChat != nil {
		if err := s.messageRepository.MarkConversationRead(ctx, userID, req.ActiveChat.UserID, req.ActiveChat.ExchangeID); err != nil {
			log.Printf("chat: failed to settle read receipts for user %s: %v", userID, err)
		}
	}
	return s.realtimeService.UpdateClientStatus(ctx, userID, req)
}

func toMessageResponse(m *entities.Message) *domain.MessageResponse {
	return &domain.MessageResponse{
		ID:         m.ID.String(),
		ExchangeID: m.ExchangeID.String(),
		SenderID:   m.SenderID.String(),
		ReceiverID: m.ReceiverID.String(),
		Message:    m.Message,
		Status:     m.Status,
		CreatedAt:  m.CreatedAt,
	}
}

func toChatUser(u *entities.User) *domain.ExchangeUser {
	if u == nil {
		return nil
	}
	return &domain.ExchangeUser{ID: u.ID.String(), Fullname: u.Fullname, Avatar: u.Avatar}
}

func toChatProduct(p *entities.Product) *domain.ExchangeProduct {
	if p == nil {
		return nil
	}
	return &domain.ExchangeProduct{
		ID:       p.ID.String(),
		UserID:   p.UserID.String(),
		Name:     p.Name,
		Price:    p.Price,
		ImageURL: p.ImageURL,
	}
}
