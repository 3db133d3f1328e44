package purchase

import (
	"time"

	contactModel "event-ticketing/models/contact"
)

// Purchase groups the tickets bought in one checkout under a buyer contact.
// TotalAmount is nullable; when unset, callers compute the total from the
// ticket type prices of the attached tickets.
type Purchase struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID string `gorm:"type:varchar(36);not null;uniqueIndex" json:"uuid"`

	BuyerContactID uint `gorm:"not null;index" json:"buyer_contact_id"`

	ExternalPaymentRef *string `gorm:"type:varchar(100)" json:"external_payment_ref,omitempty"`
	TotalAmount        *int    `json:"total_amount,omitempty"`
	Currency           string  `gorm:"type:varchar(10);not null;default:THB" json:"currency"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	BuyerContact contactModel.Contact `gorm:"foreignKey:BuyerContactID;constraint:OnDelete:CASCADE" json:"-"`
}
