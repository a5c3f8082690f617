package domain

import (
	"errors"
	"time"
)

var (
	MessageSuccessRateUser    = "user rated successfully"
	MessageSuccessRateProduct = "product rated successfully"
	MessageSuccessGetRatings  = "ratings retrieved successfully"

	MessageFailedRateUser    = "failed to rate user"
	MessageFailedRateProduct = "failed to rate product"
	MessageFailedGetRatings  = "failed to retrieve ratings"

	ErrAlreadyRated        = errors.New("you have already rated for this exchange")
	ErrInvalidRatingTarget = errors.New("rating target must be the other exchange participant")
)

type (
	RateUserRequest struct {
		ExchangeID  string `json:"exchange_id" validate:"required,uuid"`
		RatedUserID string `json:"rated_user_id" validate:"required,uuid"`
		Rating      int    `json:"rating" validate:"required,min=1,max=5"`
		Comment     string `json:"comment,omitempty"`
	}

	RateProductRequest struct {
		ExchangeID string `json:"exchange_id" validate:"required,uuid"`
		Rating     int    `json:"rating" validate:"required,min=1,max=5"`
		Comment    string `json:"comment,omitempty"`
	}

	RatingResponse struct {
		ID          string    `json:"id"`
		ExchangeID  string    `json:"exchange_id"`
		RaterID     string    `json:"rater_id"`
		RatedUserID string    `json:"rated_user_id,omitempty"`
		ProductID   string    `json:"product_id,omitempty"`
		Rating      int       `json:"rating"`
		Comment     string    `json:"comment,omitempty"`
		CreatedAt   time.Time `json:"created_at"`
	}

	ProductRatingsResponse struct {
		Ratings       []*RatingResponse `json:"ratings"`
		AverageRating float64           `json:"average_rating"`
		TotalRatings  int               `json:"total_ratings"`
	}
)
