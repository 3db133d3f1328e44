package event

import (
	"time"
)

// Event represents a single ticketed event. Capacity is an informational
// cap used when pre-seeding ticket slots; per-type MaxQuantity is what the
// lifecycle engine actually enforces.
type Event struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	PublicID string `gorm:"type:varchar(36);not null;uniqueIndex" json:"public_id"`
	Title    string `gorm:"type:varchar(255);not null" json:"title"`

	StartsAt time.Time  `gorm:"not null" json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at,omitempty"`

	LocationName      *string `gorm:"type:varchar(255)" json:"location_name,omitempty"`
	AddressMapsLink   *string `gorm:"type:varchar(1024)" json:"address_maps_link,omitempty"`
	LocationDirection *string `gorm:"type:text" json:"location_getting_there,omitempty"`

	ContactPhone *string `gorm:"type:varchar(64)" json:"contact_phone,omitempty"`
	ContactEmail *string `gorm:"type:varchar(255)" json:"contact_email,omitempty"`
	ContactURL   *string `gorm:"type:varchar(1024)" json:"contact_url,omitempty"`

	Capacity int `gorm:"not null" json:"capacity"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
