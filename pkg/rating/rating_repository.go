package rating

import (
	"Tukarin-Backend/entities"
	"context"

	"gorm.io/gorm"
)

type (
	RatingRepository interface {
		CreateUserRating(ctx context.Context, rating *entities.UserRating) error
		CreateProductRating(ctx context.Context, rating *entities.ProductRating) error

		// HasUserRating reports whether raterID already rated within the
		// exchange, regardless of target.
		HasUserRating(ctx context.Context, exchangeID, raterID string) (bool, error)
		HasProductRating(ctx context.Context, exchangeID, raterID string) (bool, error)

		GetUserRatings(ctx context.Context, ratedUserID string) ([]*entities.UserRating, error)
		GetProductRatings(ctx context.Context, productID string) ([]*entities.ProductRating, error)
	}

	ratingRepository struct {
		db *gorm.DB
	}
)

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) CreateUserRating(ctx context.Context, rating *entities.UserRating) error {
	return r.db.WithContext(ctx).Create(rating).Error
}

func (r *ratingRepository) CreateProductRating(ctx context.Context, rating *entities.ProductRating) error {
	return r.db.WithContext(ctx).Create(rating).Error
}

func (r *ratingRepository) HasUserRating(ctx context.Context, exchangeID, raterID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.UserRating{}).
		Where("exchange_id = ? AND rater_id = ?", exchangeID, raterID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ratingRepository) HasProductRating(ctx context.Context, exchangeID, raterID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.ProductRating{}).
		Where("exchange_id = ? AND user_id = ?", exchangeID, raterID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ratingRepository) GetUserRatings(ctx context.Context, ratedUserID string) ([]*entities.UserRating, error) {
	var ratings []*entities.UserRating
	if err := r.db.WithContext(ctx).
		Preload("Rater").
		Where("rated_user_id = ?", ratedUserID).
		Order("created_at DESC").
		Find(&ratings).Error; err != nil {
		return nil, err
	}
	return ratings, nil
}

func (r *ratingRepository) GetProductRatings(ctx context.Context, productID string) ([]*entities.ProductRating, error) {
	var ratings []*entities.ProductRating
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&ratings).Error; err != nil {
		return nil, err
	}
	return ratings, nil
}
