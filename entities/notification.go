package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Notification struct {
	ID     uuid.UUID      `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	UserID uuid.UUID      `gorm:"index" json:"user_id"`
	Title  string         `json:"title"`
	Body   string         `json:"body"`
	Data   datatypes.JSON `json:"data,omitempty"`
	ReadAt *time.Time     `json:"read_at,omitempty"`

	User *User `gorm:"foreignKey:UserID"`
	Timestamp
}
