package emaillog

import (
	"time"
)

// Delivery outcome recorded per attempted email.
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// EmailLog is the audit record of every notification the dispatcher tried
// to send, successful or not. Related entity ids are kept denormalized so
// admins can trace a message back to its event/ticket/purchase.
type EmailLog struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	ToEmail      string  `gorm:"type:varchar(255);not null" json:"to_email"`
	Subject      string  `gorm:"type:text;not null" json:"subject"`
	TextBody     string  `gorm:"type:text;not null" json:"text_body"`
	HTMLBody     *string `gorm:"type:text" json:"html_body,omitempty"`
	TemplateName string  `gorm:"type:varchar(64);not null" json:"template_name"`
	Context      *string `gorm:"type:text" json:"context,omitempty"`

	Status       string  `gorm:"type:varchar(16);not null;default:sent" json:"status"`
	ErrorMessage *string `gorm:"type:text" json:"error_message,omitempty"`

	EventID    *uint `gorm:"index" json:"event_id,omitempty"`
	TicketID   *uint `gorm:"index" json:"ticket_id,omitempty"`
	PurchaseID *uint `gorm:"index" json:"purchase_id,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
