package event

import (
	"time"
)

// TicketType is a priced category of tickets within an event. A nil
// MaxQuantity means unlimited.
type TicketType struct {
	ID      uint `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID uint `gorm:"not null;index" json:"event_id"`

	Name        string `gorm:"type:varchar(100);not null" json:"name"`
	Price       int    `gorm:"not null;default:0" json:"price"`
	MaxQuantity *int   `json:"max_quantity,omitempty"`
	Active      bool   `gorm:"not null;default:true" json:"active"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Event Event `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"-"`
}
