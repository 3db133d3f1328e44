package contact

import (
	"strings"
	"time"
)

// Contact is the consolidated person record. Email is the identity key and
// is stored normalized (trimmed, lower-cased). A contact may act as buyer
// and/or holder across many tickets and purchases.
type Contact struct {
	ID        uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName *string `gorm:"type:varchar(100)" json:"first_name,omitempty"`
	LastName  *string `gorm:"type:varchar(100)" json:"last_name,omitempty"`
	Email     string  `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	Phone     *string `gorm:"type:varchar(50)" json:"phone,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// FullName joins the name parts, falling back to the email address.
func (c *Contact) FullName() string {
	parts := make([]string, 0, 2)
	if c.FirstName != nil && *c.FirstName != "" {
		parts = append(parts, *c.FirstName)
	}
	if c.LastName != nil && *c.LastName != "" {
		parts = append(parts, *c.LastName)
	}
	if len(parts) == 0 {
		return c.Email
	}
	return strings.Join(parts, " ")
}

// NormalizeEmail is the canonical form used for identity merging.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
