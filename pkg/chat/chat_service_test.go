package chat

import (
	"Tukarin-Backend/domain"
	"Tukarin-Backend/entities"
	"Tukarin-Backend/pkg/exchange"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) CreateMessage(ctx context.Context, message *entities.Message) error {
	return m.Called(ctx, message).Error(0)
}

func (m *MockMessageRepository) GetMessageByID(ctx context.Context, id string) (*entities.Message, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Message), args.Error(1)
}

func (m *MockMessageRepository) UpdateMessageStatus(ctx context.Context, id, status string) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockMessageRepository) GetConversation(ctx context.Context, userID, otherUserID, exchangeID string) ([]*entities.Message, error) {
	args := m.Called(ctx, userID, otherUserID, exchangeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Message), args.Error(1)
}

func (m *MockMessageRepository) GetLastMessage(ctx context.Context, exchangeID string) (*entities.Message, error) {
	args := m.Called(ctx, exchangeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Message), args.Error(1)
}

func (m *MockMessageRepository) MarkConversationRead(ctx context.Context, readerID, senderID, exchangeID string) error {
	return m.Called(ctx, readerID, senderID, exchangeID).Error(0)
}

func (m *MockMessageRepository) CountUnread(ctx context.Context, receiverID, senderID, exchangeID string) (int64, error) {
	args := m.Called(ctx, receiverID, senderID, exchangeID)
	return args.Get(0).(int64), args.Error(1)
}

type MockExchangeRepository struct {
	mock.Mock
}

func (m *MockExchangeRepository) Transaction(ctx context.Context, fn func(txRepo exchange.ExchangeRepository) error) error {
	return fn(m)
}

func (m *MockExchangeRepository) CreateExchange(ctx context.Context, e *entities.Exchange) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockExchangeRepository) SaveExchange(ctx context.Context, e *entities.Exchange) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockExchangeRepository) GetExchangeByID(ctx context.Context, id string) (*entities.Exchange, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Exchange), args.Error(1)
}

func (m *MockExchangeRepository) GetExchangeForUpdate(ctx context.Context, id string) (*entities.Exchange, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Exchange), args.Error(1)
}

func (m *MockExchangeRepository) FindApprovedPair(ctx context.Context, userID, toUserID, productID, toProductID string) (*entities.Exchange, error) {
	return nil, nil
}

func (m *MockExchangeRepository) FindPendingPair(ctx context.Context, userID, toUserID, productID, toProductID string) (*entities.Exchange, error) {
	return nil, nil
}

func (m *MockExchangeRepository) FindConflictingForUpdate(ctx context.Context, excludeID string, productIDs []string) ([]*entities.Exchange, error) {
	return nil, nil
}

func (m *MockExchangeRepository) CountCompletedForProduct(ctx context.Context, productID string) (int64, error) {
	return 0, nil
}

func (m *MockExchangeRepository) GetUserExchanges(ctx context.Context, userID string) ([]*entities.Exchange, error) {
	return nil, nil
}

func (m *MockExchangeRepository) GetIncomingExchanges(ctx context.Context, userID string) ([]*entities.Exchange, error) {
	return nil, nil
}

func (m *MockExchangeRepository) GetOutgoingExchanges(ctx context.Context, userID string) ([]*entities.Exchange, error) {
	return nil, nil
}

func (m *MockExchangeRepository) GetProductExchanges(ctx context.Context, userID, productID string) ([]*entities.Exchange, error) {
	return nil, nil
}

func (m *MockExchangeRepository) GetApprovedExchangesForUser(ctx context.Context, userID string) ([]*entities.Exchange, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Exchange), args.Error(1)
}

type MockRealtimeService struct {
	mock.Mock
}

func (m *MockRealtimeService) CreateChatRoom(ctx context.Context, e *entities.Exchange) {
	m.Called(ctx, e)
}

func (m *MockRealtimeService) UpdateChatMetadata(ctx context.Context, sender, receiver *entities.User, exchangeID, message string) {
	m.Called(ctx, sender, receiver, exchangeID, message)
}

func (m *MockRealtimeService) UpdateConfirmationStatus(ctx context.Context, e *entities.Exchange) {
	m.Called(ctx, e)
}

func (m *MockRealtimeService) UpdateRatingStatus(ctx context.Context, raterID, ratedID, exchangeID string) {
	m.Called(ctx, raterID, ratedID, exchangeID)
}

func (m *MockRealtimeService) RemoveChatRoom(ctx context.Context, userID1, userID2, exchangeID string) {
	m.Called(ctx, userID1, userID2, exchangeID)
}

func (m *MockRealtimeService) IncrementNewExchangeCount(ctx context.Context, userID string) {
	m.Called(ctx, userID)
}

func (m *MockRealtimeService) ResetNewExchangeCount(ctx context.Context, userID string) {
	m.Called(ctx, userID)
}

func (m *MockRealtimeService) SyncUnreadNotificationCount(ctx context.Context, userID string, count int64) {
	m.Called(ctx, userID, count)
}

func (m *MockRealtimeService) IsUserActiveInChat(ctx context.Context, userID, otherUserID, exchangeID string) bool {
	return m.Called(ctx, userID, otherUserID, exchangeID).Bool(0)
}

func (m *MockRealtimeService) UpdateClientStatus(ctx context.Context, userID string, req domain.UpdateClientStatusRequest) error {
	return m.Called(ctx, userID, req).Error(0)
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) SaveAndPush(ctx context.Context, userID, title, body string, data map[string]string) {
	m.Called(ctx, userID, title, body, data)
}

func (m *MockNotificationService) SaveOnly(ctx context.Context, userID, title, body string, data map[string]string) {
	m.Called(ctx, userID, title, body, data)
}

func (m *MockNotificationService) GetUserNotifications(ctx context.Context, userID string, page, limit int) ([]*domain.NotificationResponse, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*domain.NotificationResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockNotificationService) MarkAsRead(ctx context.Context, notificationID, userID string) (*domain.NotificationResponse, error) {
	args := m.Called(ctx, notificationID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.NotificationResponse), args.Error(1)
}

type chatFixture struct {
	messages  *MockMessageRepository
	exchanges *MockExchangeRepository
	realtime  *MockRealtimeService
	notifier  *MockNotificationService
	service   ChatService

	requesterID uuid.UUID
	receiverID  uuid.UUID
	exchange    *entities.Exchange
}

func newChatFixture(status string) *chatFixture {
	f := &chatFixture{
		messages:    new(MockMessageRepository),
		exchanges:   new(MockExchangeRepository),
		realtime:    new(MockRealtimeService),
		notifier:    new(MockNotificationService),
		requesterID: uuid.New(),
		receiverID:  uuid.New(),
	}
	f.exchange = &entities.Exchange{
		ID:          uuid.New(),
		UserID:      f.requesterID,
		ToUserID:    f.receiverID,
		ProductID:   uuid.New(),
		ToProductID: uuid.New(),
		Status:      status,
		Requester:   &entities.User{ID: f.requesterID, Fullname: "Andi"},
		Receiver:    &entities.User{ID: f.receiverID, Fullname: "Budi"},
	}
	f.service = NewChatService(f.messages, f.exchanges, f.realtime, f.notifier)
	return f
}

func TestSendMessage_PushesWhenReceiverAway(t *testing.T) {
	f := newChatFixture(entities.ExchangeStatusApprove)
	ctx := context.Background()
	req := domain.SendMessageRequest{
		ExchangeID: f.exchange.ID.String(),
		ReceiverID: f.receiverID.String(),
		Message:    "is it still available?",
	}

	f.exchanges.On("GetExchangeByID", ctx, req.ExchangeID).Return(f.exchange, nil)
	f.messages.On("CreateMessage", ctx, mock.AnythingOfType("*entities.Message")).Return(nil)
	f.realtime.On("UpdateChatMetadata", ctx, f.exchange.Requester, f.exchange.Receiver, req.ExchangeID, req.Message).Return()
	f.realtime.On("IsUserActiveInChat", ctx, f.receiverID.String(), f.requesterID.String(), req.ExchangeID).Return(false)
	f.notifier.On("SaveAndPush", ctx, f.receiverID.String(), "Andi", req.Message, mock.Anything).Return()

	resp, err := f.service.SendMessage(ctx, req, f.requesterID.String())

	assert.NoError(t, err)
	assert.Equal(t, entities.MessageStatusSent, resp.Status)
	f.notifier.AssertExpectations(t)
	f.notifier.AssertNotCalled(t, "SaveOnly", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSendMessage_SuppressesPushWhenReceiverInChat(t *testing.T) {
	f := newChatFixture(entities.ExchangeStatusApprove)
	ctx := context.Background()
	req := domain.SendMessageRequest{
		ExchangeID: f.exchange.ID.String(),
		ReceiverID: f.receiverID.String(),
		Message:    "hello",
	}

	f.exchanges.On("GetExchangeByID", ctx, req.ExchangeID).Return(f.exchange, nil)
	f.messages.On("CreateMessage", ctx, mock.AnythingOfType("*entities.Message")).Return(nil)
	f.realtime.On("UpdateChatMetadata", ctx, f.exchange.Requester, f.exchange.Receiver, req.ExchangeID, req.Message).Return()
	f.realtime.On("IsUserActiveInChat", ctx, f.receiverID.String(), f.requesterID.String(), req.ExchangeID).Return(true)
	f.notifier.On("SaveOnly", ctx, f.receiverID.String(), "Andi", req.Message, mock.Anything).Return()

	_, err := f.service.SendMessage(ctx, req, f.requesterID.String())

	assert.NoError(t, err)
	f.notifier.AssertNotCalled(t, "SaveAndPush", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSendMessage_BlockedUntilApproved(t *testing.T) {
	f := newChatFixture(entities.ExchangeStatusSubmission)
	ctx := context.Background()
	req := domain.SendMessageRequest{
		ExchangeID: f.exchange.ID.String(),
		ReceiverID: f.receiverID.String(),
		Message:    "hello",
	}

	f.exchanges.On("GetExchangeByID", ctx, req.ExchangeID).Return(f.exchange, nil)

	_, err := f.service.SendMessage(ctx, req, f.requesterID.String())

	assert.ErrorIs(t, err, domain.ErrChatNotAllowed)
	f.messages.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything)
}

func TestSendMessage_RejectsOutsider(t *testing.T) {
	f := newChatFixture(entities.ExchangeStatusApprove)
	ctx := context.Background()
	req := domain.SendMessageRequest{
		ExchangeID: f.exchange.ID.String(),
		ReceiverID: f.receiverID.String(),
		Message:    "hello",
	}

	f.exchanges.On("GetExchangeByID", ctx, req.ExchangeID).Return(f.exchange, nil)

	_, err := f.service.SendMessage(ctx, req, uuid.New().String())

	assert.ErrorIs(t, err, domain.ErrUnauthorizedExchangeAccess)
}

func TestSendMessage_ReceiverMustBeCounterpart(t *testing.T) {
	f := newChatFixture(entities.ExchangeStatusApprove)
	ctx := context.Background()
	req := domain.SendMessageRequest{
		ExchangeID: f.exchange.ID.String(),
		ReceiverID: uuid.New().String(),
		Message:    "hello",
	}

	f.exchanges.On("GetExchangeByID", ctx, req.ExchangeID).Return(f.exchange, nil)

	_, err := f.service.SendMessage(ctx, req, f.requesterID.String())

	assert.ErrorIs(t, err, domain.ErrUnauthorizedExchangeAccess)
}

func TestGetChatList_ProjectsCounterpartAndLastMessage(t *testing.T) {
	f := newChatFixture(entities.ExchangeStatusApprove)
	ctx := context.Background()
	last := &entities.Message{
		ID:         uuid.New(),
		ExchangeID: f.exchange.ID,
		SenderID:   f.receiverID,
		ReceiverID: f.requesterID,
		Message:    "see you tomorrow",
		Status:     entities.MessageStatusSent,
	}

	f.exchanges.On("GetApprovedExchangesForUser", ctx, f.requesterID.String()).Return([]*entities.Exchange{f.exchange}, nil)
	f.messages.On("GetLastMessage", ctx, f.exchange.ID.String()).Return(last, nil)

	entries, err := f.service.GetChatList(ctx, f.requesterID.String())

	assert.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, "Budi", entries[0].User.Fullname)
	assert.Equal(t, "see you tomorrow", entries[0].LastMessage)
}

func TestGetChatHistory_MarksConversationRead(t *testing.T) {
	f := newChatFixture(entities.ExchangeStatusApprove)
	ctx := context.Background()
	req := domain.ChatHistoryRequest{
		UserID:     f.receiverID.String(),
		ExchangeID: f.exchange.ID.String(),
	}

	f.exchanges.On("GetExchangeByID", ctx, req.ExchangeID).Return(f.exchange, nil)
	f.messages.On("GetConversation", ctx, f.requesterID.String(), req.UserID, req.ExchangeID).Return([]*entities.Message{
		{ID: uuid.New(), ExchangeID: f.exchange.ID, SenderID: f.receiverID, ReceiverID: f.requesterID, Message: "hi", Status: entities.MessageStatusSent},
	}, nil)
	f.messages.On("MarkConversationRead", ctx, f.requesterID.String(), req.UserID, req.ExchangeID).Return(nil)

	history, err := f.service.GetChatHistory(ctx, req, f.requesterID.String())

	assert.NoError(t, err)
	assert.Len(t, history, 1)
	f.messages.AssertCalled(t, "MarkConversationRead", ctx, f.requesterID.String(), req.UserID, req.ExchangeID)
}

func TestUpdateMessageStatus_AllowsForwardTransitions(t *testing.T) {
	f := newChatFixture(entities.ExchangeStatusApprove)
	ctx := context.Background()
	message := &entities.Message{
		ID:         uuid.New(),
		ReceiverID: f.receiverID,
		Status:     entities.MessageStatusSent,
	}
	req := domain.UpdateMessageStatusRequest{MessageID: message.ID.String(), Status: entities.MessageStatusDelivered}

	f.messages.On("GetMessageByID", ctx, req.MessageID).Return(message, nil)
	f.messages.On("UpdateMessageStatus", ctx, req.MessageID, entities.MessageStatusDelivered).Return(nil)

	resp, err := f.service.UpdateMessageStatus(ctx, req, f.receiverID.String())

	assert.NoError(t, err)
	assert.Equal(t, entities.MessageStatusDelivered, resp.Status)
}

func TestUpdateMessageStatus_RejectsBackwardTransition(t *testing.T) {
	f := newChatFixture(entities.ExchangeStatusApprove)
	ctx := context.Background()
	message := &entities.Message{
		ID:         uuid.New(),
		ReceiverID: f.receiverID,
		Status:     entities.MessageStatusRead,
	}
	req := domain.UpdateMessageStatusRequest{MessageID: message.ID.String(), Status: entities.MessageStatusDelivered}

	f.messages.On("GetMessageByID", ctx, req.MessageID).Return(message, nil)

	_, err := f.service.UpdateMessageStatus(ctx, req, f.receiverID.String())

	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
}

func TestUpdateMessageStatus_OnlyReceiverMayAdvance(t *testing.T) {
	f := newChatFixture(entities.ExchangeStatusApprove)
	ctx := context.Background()
	message := &entities.Message{
		ID:         uuid.New(),
		ReceiverID: f.receiverID,
		Status:     entities.MessageStatusSent,
	}
	req := domain.UpdateMessageStatusRequest{MessageID: message.ID.String(), Status: entities.MessageStatusRead}

	f.messages.On("GetMessageByID", ctx, req.MessageID).Return(message, nil)

	_, err := f.service.UpdateMessageStatus(ctx, req, f.requesterID.String())

	assert.ErrorIs(t, err, domain.ErrUserNotAllowed)
}

func TestUpdateMessageStatus_NotFound(t *testing.T) {
	f := newChatFixture(entities.ExchangeStatusApprove)
	ctx := context.Background()
	req := domain.UpdateMessageStatusRequest{MessageID: uuid.New().String(), Status: entities.MessageStatusRead}

	f.messages.On("GetMessageByID", ctx, req.MessageID).Return(nil, gorm.ErrRecordNotFound)

	_, err := f.service.UpdateMessageStatus(ctx, req, f.receiverID.String())

	assert.ErrorIs(t, err, domain.ErrMessageNotFound)
}

func TestUpdateClientStatus_ReadHeartbeatSettlesConversation(t *testing.T) {
	f := newChatFixture(entities.ExchangeStatusApprove)
	ctx := context.Background()
	req := domain.UpdateClientStatusRequest{
		Status: entities.MessageStatusRead,
		ActiveChat: &domain.ActiveChat{
			UserID:     f.receiverID.String(),
			ExchangeID: f.exchange.ID.String(),
		},
	}

	f.messages.On("MarkConversationRead", ctx, f.requesterID.String(), f.receiverID.String(), f.exchange.ID.String()).Return(nil)
	f.realtime.On("UpdateClientStatus", ctx, f.requesterID.String(), req).Return(nil)

	err := f.service.UpdateClientStatus(ctx, req, f.requesterID.String())

	assert.NoError(t, err)
	f.messages.AssertExpectations(t)
	f.realtime.AssertExpectations(t)
}
