package notification

import (
	"Tukarin-Backend/domain"
	"Tukarin-Backend/entities"
	"Tukarin-Backend/pkg/push"
	"Tukarin-Backend/pkg/realtime"
	"Tukarin-Backend/pkg/user"
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	NotificationService interface {
		// SaveAndPush persists the notification, refreshes the unread mirror
		// and attempts push delivery. Best-effort: never fails the caller.
		SaveAndPush(ctx context.Context, userID, title, body string, data map[string]string)
		// SaveOnly persists and mirrors without pushing, used when the
		// receiver is already looking at the relevant screen.
		SaveOnly(ctx context.Context, userID, title, body string, data map[string]string)

		GetUserNotifications(ctx context.Context, userID string, page, limit int) ([]*domain.NotificationResponse, int64, error)
		MarkAsRead(ctx context.Context, notificationID, userID string) (*domain.NotificationResponse, error)
	}

	notificationService struct {
		notificationRepository NotificationRepository
		userRepository         user.UserRepository
		realtimeService        realtime.RealtimeService
		notifier               push.Notifier
	}
)

func NewNotificationService(
	notificationRepository NotificationRepository,
	userRepository user.UserRepository,
	realtimeService realtime.RealtimeService,
	notifier push.Notifier,
) NotificationService {
	return &notificationService{
		notificationRepository: notificationRepository,
		userRepository:         userRepository,
		realtimeService:        realtimeService,
		notifier:               notifier,
	}
}

func (s *notificationService) save(ctx context.Context, userID, title, body string, data map[string]string) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		log.Printf("notification: invalid user id %q: %v", userID, err)
		return
	}

	payload, err := json.Marshal(data)
	if err != nil {
		log.Printf("notification: failed to marshal data for user %s: %v", userID, err)
		payload = []byte("{}")
	}

	notification := &entities.Notification{
		ID:     uuid.New(),
		UserID: userUUID,
		Title:  title,
		Body:   body,
		Data:   payload,
	}
	if err := s.notificationRepository.SaveNotification(ctx, notification); err != nil {
		log.Printf("notification: failed to save notification for user %s: %v", userID, err)
		return
	}

	s.syncUnreadCount(ctx, userID)
}

func (s *notificationService) syncUnreadCount(ctx context.Context, userID string) {
	count, err := s.notificationRepository.CountUnread(ctx, userID)
	if err != nil {
		log.Printf("notification: failed to count unread for user %s: %v", userID, err)
		return
	}
	s.realtimeService.SyncUnreadNotificationCount(ctx, userID, count)
}

func (s *notificationService) SaveOnly(ctx context.Context, userID, title, body string, data map[string]string) {
	s.save(ctx, userID, title, body, data)
}

func (s *notificationService) SaveAndPush(ctx context.Context, userID, title, body string, data map[string]string) {
	s.save(ctx, userID, title, body, data)

	target, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		log.Printf("notification: failed to load push target %s: %v", userID, err)
		return
	}
	if target.FcmToken == nil || *target.FcmToken == "" {
		return
	}

	if err := s.notifier.Notify(ctx, *target.FcmToken, title, body, data); err != nil {
		if errors.Is(err, push.ErrTokenNotRegistered) {
			log.Printf("notification: token for user %s no longer registered, clearing", userID)
			if err := s.userRepository.ClearFcmToken(ctx, userID); err != nil {
				log.Printf("notification: failed to clear token for user %s: %v", userID, err)
			}
			return
		}
		log.Printf("notification: push delivery failed for user %s: %v", userID, err)
	}
}

func (s *notificationService) GetUserNotifications(ctx context.Context, userID string, page, limit int) ([]*domain.NotificationResponse, int64, error) {
	notifications, count, err := s.notificationRepository.GetUserNotifications(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	result := make([]*domain.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		result = append(result, toNotificationResponse(n))
	}
	return result, count, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, notificationID, userID string) (*domain.NotificationResponse, error) {
	notification, err := s.notificationRepository.GetNotificationByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotificationNotFound
		}
		return nil, err
	}

	if notification.UserID.String() != userID {
		return nil, domain.ErrUserNotAllowed
	}

	if notification.ReadAt == nil {
		now := time.Now()
		if err := s.notificationRepository.MarkAsRead(ctx, notificationID, now); err != nil {
			return nil, err
		}
		notification.ReadAt = &now
		s.syncUnreadCount(ctx, userID)
	}

	return toNotificationResponse(notification), nil
}

func toNotificationResponse(n *entities.Notification) *domain.NotificationResponse {
	data := map[string]string{}
	if len(n.Data) > 0 {
		if err := json.Unmarshal(n.Data, &data); err != nil {
			data = nil
		}
	}
	return &domain.NotificationResponse{
		ID:        n.ID.String(),
		UserID:    n.UserID.String(),
		Title:     n.Title,
		Body:      n.Body,
		Data:      data,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}
