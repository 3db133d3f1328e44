package customer

import (
	"time"
)

// Customer is the legacy person record kept for backward compatibility.
// New flows resolve identity through models/contact and mirror writes here
// so that old reports keyed on customers keep working.
type Customer struct {
	ID        uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName *string `gorm:"type:varchar(100)" json:"first_name,omitempty"`
	LastName  *string `gorm:"type:varchar(100)" json:"last_name,omitempty"`
	Email     *string `gorm:"type:varchar(255);index" json:"email,omitempty"`
	Phone     *string `gorm:"type:varchar(50)" json:"phone,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
