package realtime

import (
	"Tukarin-Backend/domain"
	"Tukarin-Backend/entities"
	"context"
	"log"
	"time"
)

type (
	// RealtimeService mirrors exchange, chat room and counter state into the
	// keyed realtime store so both chat participants see a consistent view.
	// Writes are best-effort: failures are logged and swallowed, the caller's
	// relational transaction has already committed.
	RealtimeService interface {
		CreateChatRoom(ctx context.Context, exchange *entities.Exchange)
		UpdateChatMetadata(ctx context.Context, sender, receiver *entities.User, exchangeID, message string)
		UpdateConfirmationStatus(ctx context.Context, exchange *entities.Exchange)
		UpdateRatingStatus(ctx context.Context, raterID, ratedID, exchangeID string)
		RemoveChatRoom(ctx context.Context, userID1, userID2, exchangeID string)

		IncrementNewExchangeCount(ctx context.Context, userID string)
		ResetNewExchangeCount(ctx context.Context, userID string)
		SyncUnreadNotificationCount(ctx context.Context, userID string, count int64)

		IsUserActiveInChat(ctx context.Context, userID, otherUserID, exchangeID string) bool
		UpdateClientStatus(ctx context.Context, userID string, req domain.UpdateClientStatusRequest) error
	}

	realtimeService struct {
		store Store
	}

	roomUser struct {
		ID       string `bson:"id" json:"id"`
		Fullname string `bson:"fullname" json:"fullname"`
		Avatar   string `bson:"avatar,omitempty" json:"avatar,omitempty"`
	}

	roomProduct struct {
		ID       string  `bson:"id" json:"id"`
		UserID   string  `bson:"user_id" json:"user_id"`
		Name     string  `bson:"name" json:"name"`
		Price    float64 `bson:"price" json:"price"`
		ImageURL string  `bson:"image_url,omitempty" json:"image_url,omitempty"`
	}

	roomData struct {
		ExchangeID         string       `bson:"exchange_id" json:"exchange_id"`
		Status             string       `bson:"status" json:"status"`
		RequesterConfirmed bool         `bson:"requester_confirmed" json:"requester_confirmed"`
		ReceiverConfirmed  bool         `bson:"receiver_confirmed" json:"receiver_confirmed"`
		User               roomUser     `bson:"user" json:"user"`
		LastMessage        string       `bson:"last_message" json:"last_message"`
		Timestamp          int64        `bson:"timestamp" json:"timestamp"`
		UnreadCount        int64        `bson:"unread_count" json:"unread_count"`
		HasRated           *bool        `bson:"has_rated" json:"has_rated"`
		RequesterProduct   *roomProduct `bson:"requester_product,omitempty" json:"requester_product,omitempty"`
		ReceiverProduct    *roomProduct `bson:"receiver_product,omitempty" json:"receiver_product,omitempty"`
	}

	userStatus struct {
		Status     string `bson:"status"`
		Timestamp  int64  `bson:"timestamp"`
		ActiveChat *struct {
			UserID     string `bson:"user_id"`
			ExchangeID string `bson:"exchange_id"`
		} `bson:"active_chat"`
	}
)

func NewRealtimeService(store Store) RealtimeService {
	return &realtimeService{store: store}
}

func roomUserOf(u *entities.User) roomUser {
	if u == nil {
		return roomUser{}
	}
	return roomUser{ID: u.ID.String(), Fullname: u.Fullname, Avatar: u.Avatar}
}

func roomProductOf(p *entities.Product) *roomProduct {
	if p == nil {
		return nil
	}
	return &roomProduct{
		ID:       p.ID.String(),
		UserID:   p.UserID.String(),
		Name:     p.Name,
		Price:    p.Price,
		ImageURL: p.ImageURL,
	}
}

// CreateChatRoom writes one room projection per participant, each seeded with
// the counterpart's profile, both product snapshots, zero unread count and an
// unset has_rated flag.
func (s *realtimeService) CreateChatRoom(ctx context.Context, exchange *entities.Exchange) {
	requesterID := exchange.UserID.String()
	receiverID := exchange.ToUserID.String()
	chatKey := ChatKey(requesterID, receiverID, exchange.ID.String())
	now := time.Now().UnixMilli()

	base := roomData{
		ExchangeID:         exchange.ID.String(),
		Status:             exchange.Status,
		RequesterConfirmed: exchange.RequesterConfirmed,
		ReceiverConfirmed:  exchange.ReceiverConfirmed,
		LastMessage:        "",
		Timestamp:          now,
		UnreadCount:        0,
		HasRated:           nil,
		RequesterProduct:   roomProductOf(exchange.RequesterProduct),
		ReceiverProduct:    roomProductOf(exchange.ReceiverProduct),
	}

	forRequester := base
	forRequester.User = roomUserOf(exchange.Receiver)
	forReceiver := base
	forReceiver.User = roomUserOf(exchange.Requester)

	updates := map[string]any{
		"chat_rooms/" + requesterID + "/" + chatKey: forRequester,
		"chat_rooms/" + receiverID + "/" + chatKey:  forReceiver,
	}
	if err := s.store.Update(ctx, updates); err != nil {
		log.Printf("realtime: failed to create chat room for exchange %s: %v", exchange.ID, err)
		return
	}
	log.Printf("realtime: chat room created for exchange %s", exchange.ID)
}

// UpdateChatMetadata mirrors a sent message into both room projections,
// bumping the receiver's unread counter and zeroing the sender's.
func (s *realtimeService) UpdateChatMetadata(ctx context.Context, sender, receiver *entities.User, exchangeID, message string) {
	senderID := sender.ID.String()
	receiverID := receiver.ID.String()
	chatKey := ChatKey(senderID, receiverID, exchangeID)
	now := time.Now().UnixMilli()

	updates := map[string]any{
		"chat_rooms/" + senderID + "/" + chatKey + "/last_message": message,
		"chat_rooms/" + senderID + "/" + chatKey + "/timestamp":    now,
		"chat_rooms/" + senderID + "/" + chatKey + "/unread_count": int64(0),

		"chat_rooms/" + receiverID + "/" + chatKey + "/last_message": message,
		"chat_rooms/" + receiverID + "/" + chatKey + "/timestamp":    now,
	}
	if err := s.store.Update(ctx, updates); err != nil {
		log.Printf("realtime: failed to update chat metadata for %s: %v", chatKey, err)
		return
	}
	if err := s.store.Increment(ctx, "chat_rooms/"+receiverID+"/"+chatKey+"/unread_count", 1); err != nil {
		log.Printf("realtime: failed to increment unread count for %s: %v", chatKey, err)
	}
}

// UpdateConfirmationStatus mirrors both confirmation flags and the current
// status string into both participants' room projections.
func (s *realtimeService) UpdateConfirmationStatus(ctx context.Context, exchange *entities.Exchange) {
	requesterID := exchange.UserID.String()
	receiverID := exchange.ToUserID.String()
	chatKey := ChatKey(requesterID, receiverID, exchange.ID.String())

	updates := map[string]any{
		"chat_rooms/" + requesterID + "/" + chatKey + "/requester_confirmed": exchange.RequesterConfirmed,
		"chat_rooms/" + requesterID + "/" + chatKey + "/receiver_confirmed":  exchange.ReceiverConfirmed,
		"chat_rooms/" + requesterID + "/" + chatKey + "/status":              exchange.Status,
		"chat_rooms/" + receiverID + "/" + chatKey + "/requester_confirmed":  exchange.RequesterConfirmed,
		"chat_rooms/" + receiverID + "/" + chatKey + "/receiver_confirmed":   exchange.ReceiverConfirmed,
		"chat_rooms/" + receiverID + "/" + chatKey + "/status":               exchange.Status,
	}
	if err := s.store.Update(ctx, updates); err != nil {
		log.Printf("realtime: failed to update confirmation status for exchange %s: %v", exchange.ID, err)
	}
}

// UpdateRatingStatus marks the rater's room as rated and flips the rated
// party's flag to false, signalling their turn.
func (s *realtimeService) UpdateRatingStatus(ctx context.Context, raterID, ratedID, exchangeID string) {
	chatKey := ChatKey(raterID, ratedID, exchangeID)
	updates := map[string]any{
		"chat_rooms/" + raterID + "/" + chatKey + "/has_rated": true,
		"chat_rooms/" + ratedID + "/" + chatKey + "/has_rated": false,
	}
	if err := s.store.Update(ctx, updates); err != nil {
		log.Printf("realtime: failed to update rating status for %s: %v", chatKey, err)
	}
}

func (s *realtimeService) RemoveChatRoom(ctx context.Context, userID1, userID2, exchangeID string) {
	chatKey := ChatKey(userID1, userID2, exchangeID)
	updates := map[string]any{
		"chat_rooms/" + userID1 + "/" + chatKey: nil,
		"chat_rooms/" + userID2 + "/" + chatKey: nil,
	}
	if err := s.store.Update(ctx, updates); err != nil {
		log.Printf("realtime: failed to remove chat room %s: %v", chatKey, err)
		return
	}
	log.Printf("realtime: removed chat room %s", chatKey)
}

func (s *realtimeService) IncrementNewExchangeCount(ctx context.Context, userID string) {
	if err := s.store.Increment(ctx, "user_notifications/"+userID+"/new_exchange_requests", 1); err != nil {
		log.Printf("realtime: failed to increment exchange count for user %s: %v", userID, err)
	}
}

func (s *realtimeService) ResetNewExchangeCount(ctx context.Context, userID string) {
	if err := s.store.Set(ctx, "user_notifications/"+userID+"/new_exchange_requests", int64(0)); err != nil {
		log.Printf("realtime: failed to reset exchange count for user %s: %v", userID, err)
	}
}

func (s *realtimeService) SyncUnreadNotificationCount(ctx context.Context, userID string, count int64) {
	if err := s.store.Set(ctx, "user_notifications/"+userID+"/unread_notifications_count", count); err != nil {
		log.Printf("realtime: failed to sync unread notification count for user %s: %v", userID, err)
	}
}

// IsUserActiveInChat reads the per-user presence record written by the client
// heartbeat. It only decides push suppression, never persistence.
func (s *realtimeService) IsUserActiveInChat(ctx context.Context, userID, otherUserID, exchangeID string) bool {
	var status userStatus
	if err := s.store.Get(ctx, "user_status/"+userID, &status); err != nil {
		if err != ErrKeyNotFound {
			log.Printf("realtime: failed to read user status for %s: %v", userID, err)
		}
		return false
	}
	if status.ActiveChat == nil {
		return false
	}
	if exchangeID != "" {
		return status.ActiveChat.UserID == otherUserID && status.ActiveChat.ExchangeID == exchangeID
	}
	return status.ActiveChat.UserID == otherUserID
}

func (s *realtimeService) UpdateClientStatus(ctx context.Context, userID string, req domain.UpdateClientStatusRequest) error {
	updates := map[string]any{
		"user_status/" + userID + "/status":    req.Status,
		"user_status/" + userID + "/timestamp": time.Now().UnixMilli(),
	}
	if req.ActiveChat != nil {
		updates["user_status/"+userID+"/active_chat"] = map[string]any{
			"user_id":     req.ActiveChat.UserID,
			"exchange_id": req.ActiveChat.ExchangeID,
		}
	} else {
		// a heartbeat without an active chat clears stale presence, otherwise
		// push suppression would keep keying off an old conversation
		updates["user_status/"+userID+"/active_chat"] = nil
	}
	return s.store.Update(ctx, updates)
}
