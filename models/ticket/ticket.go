package ticket

import (
	"time"

	eventModel "event-ticketing/models/event"
)

// TicketStatus is the seat lifecycle state of a ticket.
type TicketStatus string

// PaymentStatus tracks money owed on a ticket, independent of seat state.
type PaymentStatus string

// DeliveryStatus tracks whether the ticket email reached the holder.
type DeliveryStatus string

const (
	StatusAvailable TicketStatus = "available"
	StatusHeld      TicketStatus = "held"
	StatusAssigned  TicketStatus = "assigned"
	StatusCheckedIn TicketStatus = "checked_in"
	StatusVoid      TicketStatus = "void"
)

const (
	PaymentUnpaid    PaymentStatus = "unpaid"
	PaymentPaid      PaymentStatus = "paid"
	PaymentWaived    PaymentStatus = "waived"
	PaymentRefunding PaymentStatus = "refunding"
	PaymentRefunded  PaymentStatus = "refunded"
	PaymentVoiding   PaymentStatus = "voiding"
	PaymentVoided    PaymentStatus = "voided"
)

const (
	DeliveryNotSent DeliveryStatus = "not_sent"
	DeliverySent    DeliveryStatus = "sent"
	DeliveryBounced DeliveryStatus = "bounced"
)

// Ticket is one admission slot for an event. ShortCode and TicketNumber are
// unique per event when set; UUID is the unguessable token used for links.
type Ticket struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID string `gorm:"type:varchar(36);not null;uniqueIndex" json:"uuid"`

	EventID      uint  `gorm:"not null;index;uniqueIndex:uq_ticket_event_code,priority:1;uniqueIndex:uq_ticket_event_number,priority:1" json:"event_id"`
	TicketTypeID *uint `gorm:"index" json:"ticket_type_id,omitempty"`

	// CustomerID is the legacy owner/buyer record; HolderContactID points at
	// the person expected to attend. They may resolve to the same email.
	CustomerID      *uint `gorm:"index" json:"customer_id,omitempty"`
	HolderContactID *uint `gorm:"index" json:"holder_contact_id,omitempty"`
	PurchaseID      *uint `gorm:"index" json:"purchase_id,omitempty"`

	ShortCode    *string `gorm:"type:varchar(3);uniqueIndex:uq_ticket_event_code,priority:2" json:"short_code,omitempty"`
	TicketNumber *string `gorm:"type:varchar(16);uniqueIndex:uq_ticket_event_number,priority:2" json:"ticket_number,omitempty"`

	Status         TicketStatus   `gorm:"type:varchar(20);not null;default:available" json:"status"`
	PaymentStatus  PaymentStatus  `gorm:"type:varchar(20);not null;default:unpaid" json:"payment_status"`
	DeliveryStatus DeliveryStatus `gorm:"type:varchar(20);not null;default:not_sent" json:"delivery_status"`

	AssignedAt  *time.Time `json:"assigned_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	CheckedInAt *time.Time `json:"checked_in_at,omitempty"`

	AttendanceRefunded bool `gorm:"not null;default:false" json:"attendance_refunded"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Event eventModel.Event `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"-"`
}

func (s TicketStatus) String() string { return string(s) }

// IsValid reports whether s is one of the known seat states.
func (s TicketStatus) IsValid() bool {
	switch s {
	case StatusAvailable, StatusHeld, StatusAssigned, StatusCheckedIn, StatusVoid:
		return true
	default:
		return false
	}
}

// Active reports whether the ticket occupies capacity of its type.
func (s TicketStatus) Active() bool {
	return s == StatusHeld || s == StatusAssigned || s == StatusCheckedIn
}

func (p PaymentStatus) String() string { return string(p) }

// Settled reports whether no further money is expected on the ticket.
func (p PaymentStatus) Settled() bool {
	return p == PaymentPaid || p == PaymentWaived
}

// CanUnassign reports whether releasing the ticket is allowed. Paid tickets
// must go through the refund flow instead.
func (t *Ticket) CanUnassign() bool {
	return t.PaymentStatus == PaymentUnpaid || t.PaymentStatus == PaymentWaived
}

// CanRefund reports whether a refund may be initiated.
func (t *Ticket) CanRefund() bool {
	return t.PaymentStatus == PaymentPaid
}
