package exchange

import (
	"Tukarin-Backend/domain"
	"Tukarin-Backend/entities"
	"Tukarin-Backend/pkg/notification"
	"Tukarin-Backend/pkg/realtime"
	"Tukarin-Backend/pkg/user"
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	ExchangeService interface {
		RequestExchange(ctx context.Context, req domain.ExchangeRequest, userID string) (*domain.ExchangeResponse, error)
		ApproveExchange(ctx context.Context, exchangeID, userID string) (*domain.ExchangeResponse, error)
		DeclineExchange(ctx context.Context, exchangeID, userID string) (*domain.ExchangeResponse, error)
		ConfirmCompletion(ctx context.Context, exchangeID, userID string) (*domain.ConfirmExchangeResponse, error)
		CancelExchange(ctx context.Context, exchangeID, userID string) (*domain.ExchangeResponse, error)

		GetExchangeByID(ctx context.Context, exchangeID string) (*domain.ExchangeResponse, error)
		GetUserExchanges(ctx context.Context, userID string) ([]*domain.ExchangeResponse, error)
		GetIncomingExchanges(ctx context.Context, userID string) ([]*domain.ExchangeResponse, error)
		GetOutgoingExchanges(ctx context.Context, userID string) ([]*domain.ExchangeResponse, error)
		GetProductExchanges(ctx context.Context, userID, productID string) ([]*domain.ExchangeResponse, error)
		AcknowledgeIncoming(ctx context.Context, userID string) error
	}

	exchangeService struct {
		exchangeRepository  ExchangeRepository
		userRepository      user.UserRepository
		availability        AvailabilityChecker
		realtimeService     realtime.RealtimeService
		notificationService notification.NotificationService
	}
)

func NewExchangeService(
	exchangeRepository ExchangeRepository,
	userRepository user.UserRepository,
	availability AvailabilityChecker,
	realtimeService realtime.RealtimeService,
	notificationService notification.NotificationService,
) ExchangeService {
	return &exchangeService{
		exchangeRepository:  exchangeRepository,
		userRepository:      userRepository,
		availability:        availability,
		realtimeService:     realtimeService,
		notificationService: notificationService,
	}
}

// RequestExchange runs the conflict resolver: reuse an already-approved
// exchange for the same unordered product pair, reject when a submission for
// the pair is still pending, otherwise check availability and create.
func (s *exchangeService) RequestExchange(ctx context.Context, req domain.ExchangeRequest, userID string) (*domain.ExchangeResponse, error) {
	requesterUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}

	if req.ToUserID == userID {
		return nil, domain.ErrSelfExchange
	}

	existing, err := s.exchangeRepository.FindApprovedPair(ctx, userID, req.ToUserID, req.ProductID, req.ToProductID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		log.Printf("exchange: reusing existing approved exchange %s", existing.ID)
		return s.GetExchangeByID(ctx, existing.ID.String())
	}

	pending, err := s.exchangeRepository.FindPendingPair(ctx, userID, req.ToUserID, req.ProductID, req.ToProductID)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		return nil, domain.ErrExchangePending
	}

	// Availability and ownership only gate the create path; a live approved
	// pair is returned as-is above.
	requesterProduct, receiverProduct, err := s.availability.CheckPair(ctx, req.ProductID, req.ToProductID)
	if err != nil {
		return nil, err
	}

	if requesterProduct.UserID != requesterUUID {
		return nil, domain.ErrProductNotOwned
	}
	if receiverProduct.UserID == requesterUUID {
		return nil, domain.ErrTargetProductOwned
	}

	toUserUUID, err := uuid.Parse(req.ToUserID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}

	exchange := &entities.Exchange{
		ID:          uuid.New(),
		UserID:      requesterUUID,
		ToUserID:    toUserUUID,
		ProductID:   requesterProduct.ID,
		ToProductID: receiverProduct.ID,
		Status:      entities.ExchangeStatusSubmission,
		PairKey:     entities.PairKeyFor(requesterProduct.ID, receiverProduct.ID),
	}

	if err := s.exchangeRepository.CreateExchange(ctx, exchange); err != nil {
		// The partial unique index on the pair key catches the concurrent
		// identical proposal that slipped past the search above.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrExchangePending
		}
		return nil, err
	}
	log.Printf("exchange: created exchange request %s", exchange.ID)

	s.realtimeService.IncrementNewExchangeCount(ctx, req.ToUserID)
	s.notificationService.SaveAndPush(ctx, req.ToUserID,
		"New Exchange Request",
		"You received a new exchange request from "+s.displayName(ctx, userID),
		map[string]string{"exchange_id": exchange.ID.String(), "type": "exchange_request"},
	)

	return s.GetExchangeByID(ctx, exchange.ID.String())
}

// ApproveExchange moves a submission to Approve. Only the stored receiver may
// approve; the chat room projection is created for both participants.
func (s *exchangeService) ApproveExchange(ctx context.Context, exchangeID, userID string) (*domain.ExchangeResponse, error) {
	err := s.exchangeRepository.Transaction(ctx, func(txRepo ExchangeRepository) error {
		exchange, err := txRepo.GetExchangeForUpdate(ctx, exchangeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrExchangeNotFound
			}
			return err
		}
		if exchange.ToUserID.String() != userID {
			return domain.ErrUnauthorizedExchangeAccess
		}
		if exchange.Status != entities.ExchangeStatusSubmission {
			return domain.ErrExchangeNotSubmission
		}
		exchange.Status = entities.ExchangeStatusApprove
		return txRepo.SaveExchange(ctx, exchange)
	})
	if err != nil {
		return nil, err
	}

	loaded, err := s.exchangeRepository.GetExchangeByID(ctx, exchangeID)
	if err != nil {
		return nil, err
	}

	s.realtimeService.CreateChatRoom(ctx, loaded)
	s.notificationService.SaveAndPush(ctx, loaded.UserID.String(),
		"Exchange Approved",
		"Your exchange request was approved by "+s.displayName(ctx, userID),
		map[string]string{"exchange_id": loaded.ID.String(), "type": "exchange_request"},
	)

	return toExchangeResponse(loaded), nil
}

// DeclineExchange moves a submission to Not Approve. No chat room existed yet,
// so there is no realtime room side effect.
func (s *exchangeService) DeclineExchange(ctx context.Context, exchangeID, userID string) (*domain.ExchangeResponse, error) {
	err := s.exchangeRepository.Transaction(ctx, func(txRepo ExchangeRepository) error {
		exchange, err := txRepo.GetExchangeForUpdate(ctx, exchangeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrExchangeNotFound
			}
			return err
		}
		if exchange.ToUserID.String() != userID {
			return domain.ErrUnauthorizedExchangeAccess
		}
		if exchange.Status != entities.ExchangeStatusSubmission {
			return domain.ErrExchangeNotSubmission
		}
		exchange.Status = entities.ExchangeStatusNotApprove
		return txRepo.SaveExchange(ctx, exchange)
	})
	if err != nil {
		return nil, err
	}

	loaded, err := s.exchangeRepository.GetExchangeByID(ctx, exchangeID)
	if err != nil {
		return nil, err
	}

	s.notificationService.SaveAndPush(ctx, loaded.UserID.String(),
		"Exchange Declined",
		"Your exchange request was declined by "+s.displayName(ctx, userID),
		map[string]string{"exchange_id": loaded.ID.String(), "type": "exchange_request"},
	)

	return toExchangeResponse(loaded), nil
}

// ConfirmCompletion records one party's completion confirmation. When both
// flags are set the exchange completes and the completion cascade cancels
// every other live exchange touching either product, all inside the same
// transaction as the status change.
func (s *exchangeService) ConfirmCompletion(ctx context.Context, exchangeID, userID string) (*domain.ConfirmExchangeResponse, error) {
	var completed bool
	var cancelled []*entities.Exchange

	err := s.exchangeRepository.Transaction(ctx, func(txRepo ExchangeRepository) error {
		exchange, err := txRepo.GetExchangeForUpdate(ctx, exchangeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrExchangeNotFound
			}
			return err
		}

		userUUID, err := uuid.Parse(userID)
		if err != nil {
			return domain.ErrParseUUID
		}
		if !exchange.IsParticipant(userUUID) {
			return domain.ErrUnauthorizedExchangeAccess
		}
		if exchange.Status != entities.ExchangeStatusApprove {
			return domain.ErrExchangeNotApproved
		}

		isRequester := exchange.UserID == userUUID
		if (isRequester && exchange.RequesterConfirmed) || (!isRequester && exchange.ReceiverConfirmed) {
			return domain.ErrAlreadyConfirmed
		}
		if isRequester {
			exchange.RequesterConfirmed = true
		} else {
			exchange.ReceiverConfirmed = true
		}

		if exchange.RequesterConfirmed && exchange.ReceiverConfirmed {
			now := time.Now()
			exchange.Status = entities.ExchangeStatusCompleted
			exchange.CompletedAt = &now
			completed = true

			siblings, err := txRepo.FindConflictingForUpdate(ctx, exchangeID,
				[]string{exchange.ProductID.String(), exchange.ToProductID.String()})
			if err != nil {
				return err
			}
			for _, sibling := range siblings {
				sibling.Status = entities.ExchangeStatusCancelled
				sibling.CompletedAt = &now
				if err := txRepo.SaveExchange(ctx, sibling); err != nil {
					return err
				}
				cancelled = append(cancelled, sibling)
			}
		}

		return txRepo.SaveExchange(ctx, exchange)
	})
	if err != nil {
		return nil, err
	}

	loaded, err := s.exchangeRepository.GetExchangeByID(ctx, exchangeID)
	if err != nil {
		return nil, err
	}

	s.realtimeService.UpdateConfirmationStatus(ctx, loaded)

	otherID := loaded.OtherParty(uuid.MustParse(userID)).String()
	if completed {
		for _, sibling := range cancelled {
			s.realtimeService.RemoveChatRoom(ctx,
				sibling.UserID.String(), sibling.ToUserID.String(), sibling.ID.String())
			for _, participant := range []string{sibling.UserID.String(), sibling.ToUserID.String()} {
				s.notificationService.SaveAndPush(ctx, participant,
					"Exchange Cancelled",
					"Your exchange was cancelled because one of its products was exchanged elsewhere",
					map[string]string{"exchange_id": sibling.ID.String(), "type": "exchange_cancelled"},
				)
			}
		}
		s.notificationService.SaveAndPush(ctx, otherID,
			"Exchange Completed",
			"Both parties confirmed, the exchange is complete",
			map[string]string{"exchange_id": loaded.ID.String(), "type": "exchange_completed"},
		)
	} else {
		s.notificationService.SaveAndPush(ctx, otherID,
			"Exchange Confirmation",
			s.displayName(ctx, userID)+" confirmed the exchange, please confirm on your side",
			map[string]string{"exchange_id": loaded.ID.String(), "type": "exchange_confirmation"},
		)
	}

	return &domain.ConfirmExchangeResponse{
		Exchange:           toExchangeResponse(loaded),
		Completed:          completed,
		CancelledExchanges: toExchangeResponses(cancelled),
	}, nil
}

// CancelExchange is the post-approval analog of decline: either participant
// may cancel an approved exchange, closing its chat room.
func (s *exchangeService) CancelExchange(ctx context.Context, exchangeID, userID string) (*domain.ExchangeResponse, error) {
	err := s.exchangeRepository.Transaction(ctx, func(txRepo ExchangeRepository) error {
		exchange, err := txRepo.GetExchangeForUpdate(ctx, exchangeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrExchangeNotFound
			}
			return err
		}

		userUUID, err := uuid.Parse(userID)
		if err != nil {
			return domain.ErrParseUUID
		}
		if !exchange.IsParticipant(userUUID) {
			return domain.ErrUnauthorizedExchangeAccess
		}
		if exchange.Status != entities.ExchangeStatusApprove {
			return domain.ErrExchangeNotApproved
		}

		now := time.Now()
		exchange.Status = entities.ExchangeStatusCancelled
		exchange.CompletedAt = &now
		return txRepo.SaveExchange(ctx, exchange)
	})
	if err != nil {
		return nil, err
	}

	loaded, err := s.exchangeRepository.GetExchangeByID(ctx, exchangeID)
	if err != nil {
		return nil, err
	}

	s.realtimeService.RemoveChatRoom(ctx,
		loaded.UserID.String(), loaded.ToUserID.String(), loaded.ID.String())

	otherID := loaded.OtherParty(uuid.MustParse(userID)).String()
	s.notificationService.SaveAndPush(ctx, otherID,
		"Exchange Cancelled",
		"The exchange was cancelled by "+s.displayName(ctx, userID),
		map[string]string{"exchange_id": loaded.ID.String(), "type": "exchange_cancelled"},
	)

	return toExchangeResponse(loaded), nil
}

func (s *exchangeService) GetExchangeByID(ctx context.Context, exchangeID string) (*domain.ExchangeResponse, error) {
	exchange, err := s.exchangeRepository.GetExchangeByID(ctx, exchangeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrExchangeNotFound
		}
		return nil, err
	}
	return toExchangeResponse(exchange), nil
}

func (s *exchangeService) GetUserExchanges(ctx context.Context, userID string) ([]*domain.ExchangeResponse, error) {
	exchanges, err := s.exchangeRepository.GetUserExchanges(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toExchangeResponses(exchanges), nil
}

func (s *exchangeService) GetIncomingExchanges(ctx context.Context, userID string) ([]*domain.ExchangeResponse, error) {
	exchanges, err := s.exchangeRepository.GetIncomingExchanges(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toExchangeResponses(exchanges), nil
}

func (s *exchangeService) GetOutgoingExchanges(ctx context.Context, userID string) ([]*domain.ExchangeResponse, error) {
	exchanges, err := s.exchangeRepository.GetOutgoingExchanges(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toExchangeResponses(exchanges), nil
}

func (s *exchangeService) GetProductExchanges(ctx context.Context, userID, productID string) ([]*domain.ExchangeResponse, error) {
	exchanges, err := s.exchangeRepository.GetProductExchanges(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	return toExchangeResponses(exchanges), nil
}

// AcknowledgeIncoming resets the viewer's new-exchange-request counter after
// they opened their incoming list.
func (s *exchangeService) AcknowledgeIncoming(ctx context.Context, userID string) error {
	s.realtimeService.ResetNewExchangeCount(ctx, userID)
	return nil
}

func (s *exchangeService) displayName(ctx context.Context, userID string) string {
	u, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		return "another user"
	}
	return u.Fullname
}

func toExchangeUser(u *entities.User) *domain.ExchangeUser {
	if u == nil {
		return nil
	}
	return &domain.ExchangeUser{ID: u.ID.String(), Fullname: u.Fullname, Avatar: u.Avatar}
}

func toExchangeProduct(p *entities.Product) *domain.ExchangeProduct {
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

func toExchangeResponse(e *entities.Exchange) *domain.ExchangeResponse {
	return &domain.ExchangeResponse{
		ID:                 e.ID.String(),
		UserID:             e.UserID.String(),
		ToUserID:           e.ToUserID.String(),
		ProductID:          e.ProductID.String(),
		ToProductID:        e.ToProductID.String(),
		Status:             e.Status,
		RequesterConfirmed: e.RequesterConfirmed,
		ReceiverConfirmed:  e.ReceiverConfirmed,
		CreatedAt:          e.CreatedAt,
		CompletedAt:        e.CompletedAt,
		Requester:          toExchangeUser(e.Requester),
		Receiver:           toExchangeUser(e.Receiver),
		RequesterProduct:   toExchangeProduct(e.RequesterProduct),
		ReceiverProduct:    toExchangeProduct(e.ReceiverProduct),
	}
}

func toExchangeResponses(exchanges []*entities.Exchange) []*domain.ExchangeResponse {
	result := make([]*domain.ExchangeResponse, 0, len(exchanges))
	for _, e := range exchanges {
		result = append(result, toExchangeResponse(e))
	}
	return result
}
