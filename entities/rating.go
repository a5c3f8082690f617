package entities

import (
	"github.com/google/uuid"
)

type ProductRating struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	ExchangeID uuid.UUID `gorm:"index:idx_product_rating_once,unique" json:"exchange_id"`
	ProductID  uuid.UUID `json:"product_id"`
	UserID     uuid.UUID `gorm:"index:idx_product_rating_once,unique" json:"user_id"` // rater
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`

	Exchange *Exchange `gorm:"foreignKey:ExchangeID"`
	Product  *Product  `gorm:"foreignKey:ProductID"`
	User     *User     `gorm:"foreignKey:UserID"`
	Timestamp
}

type UserRating struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	ExchangeID  uuid.UUID `gorm:"index:idx_user_rating_once,unique" json:"exchange_id"`
	RaterID     uuid.UUID `gorm:"index:idx_user_rating_once,unique" json:"rater_id"`
	RatedUserID uuid.UUID `json:"rated_user_id"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment,omitempty"`

	Exchange  *Exchange `gorm:"foreignKey:ExchangeID"`
	Rater     *User     `gorm:"foreignKey:RaterID"`
	RatedUser *User     `gorm:"foreignKey:RatedUserID"`
	Timestamp
}
