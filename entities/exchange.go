package entities

import (
	"time"

	"github.com/google/uuid"
)

const (
	ExchangeStatusSubmission = "Submission"
	ExchangeStatusApprove    = "Approve"
	ExchangeStatusNotApprove = "Not Approve"
	ExchangeStatusCompleted  = "Completed"
	ExchangeStatusCancelled  = "Cancelled"
)

// ActiveExchangeStatuses is the status set that locks a product: a product
// referenced by an exchange in one of these states may not enter another
// exchange and may not be edited or deleted.
var ActiveExchangeStatuses = []string{ExchangeStatusSubmission, ExchangeStatusApprove}

type Exchange struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	ToUserID    uuid.UUID `json:"to_user_id"`
	ProductID   uuid.UUID `json:"product_id"`
	ToProductID uuid.UUID `json:"to_product_id"`
	Status      string    `json:"status"` // Submission, Approve, Not Approve, Completed, Cancelled

	// PairKey is the normalized unordered product pair. The partial unique
	// index guarantees at most one Submission exchange per pair even under
	// concurrent identical proposals.
	PairKey string `gorm:"index:idx_exchange_pending_pair,unique,where:status = 'Submission'" json:"-"`

	RequesterConfirmed bool       `json:"requester_confirmed"`
	ReceiverConfirmed  bool       `json:"receiver_confirmed"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`

	Requester        *User    `gorm:"foreignKey:UserID"`
	Receiver         *User    `gorm:"foreignKey:ToUserID"`
	RequesterProduct *Product `gorm:"foreignKey:ProductID"`
	ReceiverProduct  *Product `gorm:"foreignKey:ToProductID"`
	Timestamp
}

// PairKeyFor returns the normalized key for an unordered product pair, the
// smaller uuid string first so both directions map to the same key.
func PairKeyFor(productID, toProductID uuid.UUID) string {
	a, b := productID.String(), toProductID.String()
	if b < a {
		a, b = b, a
	}
	return a + "_" + b
}

// IsParticipant reports whether userID is the requester or the receiver.
func (e *Exchange) IsParticipant(userID uuid.UUID) bool {
	return e.UserID == userID || e.ToUserID == userID
}

// OtherParty returns the counterpart of userID in the exchange.
func (e *Exchange) OtherParty(userID uuid.UUID) uuid.UUID {
	if e.UserID == userID {
		return e.ToUserID
	}
	return e.UserID
}
