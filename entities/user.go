package entities

import (
	"github.com/google/uuid"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Fullname string    `json:"fullname"`
	Email    string    `gorm:"uniqueIndex" json:"email"`
	Avatar   string    `json:"avatar,omitempty"`
	FcmToken *string   `json:"-"`

	Products []*Product `gorm:"foreignKey:UserID"`
	Timestamp
}
