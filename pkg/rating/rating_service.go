package rating

import (
	"Tukarin-Backend/domain"
	"Tukarin-Backend/entities"
	"Tukarin-Backend/pkg/exchange"
	"Tukarin-Backend/pkg/realtime"
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	RatingService interface {
		RateUser(ctx context.Context, req domain.RateUserRequest, raterID string) (*domain.RatingResponse, error)
		RateProduct(ctx context.Context, req domain.RateProductRequest, raterID string) (*domain.RatingResponse, error)
		GetUserRatings(ctx context.Context, userID string) (*domain.ProductRatingsResponse, error)
		GetProductRatings(ctx context.Context, productID string) (*domain.ProductRatingsResponse, error)
	}

	ratingService struct {
		ratingRepository   RatingRepository
		exchangeRepository exchange.ExchangeRepository
		realtimeService    realtime.RealtimeService
	}
)

func NewRatingService(
	ratingRepository RatingRepository,
	exchangeRepository exchange.ExchangeRepository,
	realtimeService realtime.RealtimeService,
) RatingService {
	return &ratingService{
		ratingRepository:   ratingRepository,
		exchangeRepository: exchangeRepository,
		realtimeService:    realtimeService,
	}
}

// gateCompletedExchange loads the exchange and enforces the rating gate:
// only participants of a Completed exchange may rate through it.
func (s *ratingService) gateCompletedExchange(ctx context.Context, exchangeID, raterID string) (*entities.Exchange, uuid.UUID, error) {
	raterUUID, err := uuid.Parse(raterID)
	if err != nil {
		return nil, uuid.Nil, domain.ErrParseUUID
	}

	ex, err := s.exchangeRepository.GetExchangeByID(ctx, exchangeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, uuid.Nil, domain.ErrExchangeNotFound
		}
		return nil, uuid.Nil, err
	}
	if ex.Status != entities.ExchangeStatusCompleted {
		return nil, uuid.Nil, domain.ErrInvalidExchangeStatus
	}
	if !ex.IsParticipant(raterUUID) {
		return nil, uuid.Nil, domain.ErrUnauthorizedExchangeAccess
	}
	return ex, raterUUID, nil
}

// RateUser records the rater's review of the counterpart. Once both sides
// rated, the shared chat room retires from the realtime store.
func (s *ratingService) RateUser(ctx context.Context, req domain.RateUserRequest, raterID string) (*domain.RatingResponse, error) {
	ex, raterUUID, err := s.gateCompletedExchange(ctx, req.ExchangeID, raterID)
	if err != nil {
		return nil, err
	}

	otherID := ex.OtherParty(raterUUID)
	if req.RatedUserID != otherID.String() {
		return nil, domain.ErrInvalidRatingTarget
	}

	rated, err := s.ratingRepository.HasUserRating(ctx, req.ExchangeID, raterID)
	if err != nil {
		return nil, err
	}
	if rated {
		return nil, domain.ErrAlreadyRated
	}

	rating := &entities.UserRating{
		ID:          uuid.New(),
		ExchangeID:  ex.ID,
		RaterID:     raterUUID,
		RatedUserID: otherID,
		Rating:      req.Rating,
		Comment:     req.Comment,
	}
	if err := s.ratingRepository.CreateUserRating(ctx, rating); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrAlreadyRated
		}
		return nil, err
	}

	s.realtimeService.UpdateRatingStatus(ctx, raterID, otherID.String(), ex.ID.String())

	mutual, err := s.ratingRepository.HasUserRating(ctx, req.ExchangeID, otherID.String())
	if err == nil && mutual {
		s.realtimeService.RemoveChatRoom(ctx, ex.UserID.String(), ex.ToUserID.String(), ex.ID.String())
	}

	return toUserRatingResponse(rating), nil
}

// RateProduct records the rater's review of the counterpart's product in the
// exchange. The target product is inferred from the rater's side.
func (s *ratingService) RateProduct(ctx context.Context, req domain.RateProductRequest, raterID string) (*domain.RatingResponse, error) {
	ex, raterUUID, err := s.gateCompletedExchange(ctx, req.ExchangeID, raterID)
	if err != nil {
		return nil, err
	}

	productID := ex.ToProductID
	if ex.ToUserID == raterUUID {
		productID = ex.ProductID
	}

	rated, err := s.ratingRepository.HasProductRating(ctx, req.ExchangeID, raterID)
	if err != nil {
		return nil, err
	}
	if rated {
		return nil, domain.ErrAlreadyRated
	}

	rating := &entities.ProductRating{
		ID:         uuid.New(),
		ExchangeID: ex.ID,
		ProductID:  productID,
		UserID:     raterUUID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}
	if err := s.ratingRepository.CreateProductRating(ctx, rating); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrAlreadyRated
		}
		return nil, err
	}

	return toProductRatingResponse(rating), nil
}

func (s *ratingService) GetUserRatings(ctx context.Context, userID string) (*domain.ProductRatingsResponse, error) {
	ratings, err := s.ratingRepository.GetUserRatings(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]*domain.RatingResponse, 0, len(ratings))
	total := 0
	for _, r := range ratings {
		responses = append(responses, toUserRatingResponse(r))
		total += r.Rating
	}
	return summarize(responses, total), nil
}

func (s *ratingService) GetProductRatings(ctx context.Context, productID string) (*domain.ProductRatingsResponse, error) {
	ratings, err := s.ratingRepository.GetProductRatings(ctx, productID)
	if err != nil {
		return nil, err
	}

	responses := make([]*domain.RatingResponse, 0, len(ratings))
	total := 0
	for _, r := range ratings {
		responses = append(responses, toProductRatingResponse(r))
		total += r.Rating
	}
	return summarize(responses, total), nil
}

func summarize(responses []*domain.RatingResponse, total int) *domain.ProductRatingsResponse {
	average := 0.0
	if len(responses) > 0 {
		average = float64(total) / float64(len(responses))
	}
	return &domain.ProductRatingsResponse{
		Ratings:       responses,
		AverageRating: average,
		TotalRatings:  len(responses),
	}
}

func toUserRatingResponse(r *entities.UserRating) *domain.RatingResponse {
	return &domain.RatingResponse{
		ID:          r.ID.String(),
		ExchangeID:  r.ExchangeID.String(),
		RaterID:     r.RaterID.String(),
		RatedUserID: r.RatedUserID.String(),
		Rating:      r.Rating,
		Comment:     r.Comment,
		CreatedAt:   r.CreatedAt,
	}
}

func toProductRatingResponse(r *entities.ProductRating) *domain.RatingResponse {
	return &domain.RatingResponse{
		ID:         r.ID.String(),
		ExchangeID: r.ExchangeID.String(),
		RaterID:    r.UserID.String(),
		ProductID:  r.ProductID.String(),
		Rating:     r.Rating,
		Comment:    r.Comment,
		CreatedAt:  r.CreatedAt,
	}
}
