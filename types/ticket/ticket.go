package ticket

import "time"

// HolderInput identifies the person a ticket is assigned or reassigned to.
// Email is the identity key; the other fields are optional enrichment.
type HolderInput struct {
	Email     string  `json:"email"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

// AssignRequest creates or claims a ticket for an event and binds a holder.
type AssignRequest struct {
	EventID          uint        `json:"event_id"`
	Customer         HolderInput `json:"customer"`
	TicketTypeID     *uint       `json:"ticket_type_id,omitempty"`
	PaymentStatus    *string     `json:"payment_status,omitempty"`
	DesiredShortCode *string     `json:"desired_short_code,omitempty"`
}

type AssignResponse struct {
	TicketID      uint   `json:"ticket_id"`
	EventID       uint   `json:"event_id"`
	CustomerEmail string `json:"customer_email"`
	ShortCode     string `json:"short_code"`
	TicketNumber  string `json:"ticket_number,omitempty"`
	Status        string `json:"status"`
}

// AssignPreviewRequest asks for a would-be short code without persisting.
type AssignPreviewRequest struct {
	EventID uint `json:"event_id"`
}

type AssignPreviewResponse struct {
	EventID    uint      `json:"event_id"`
	ShortCode  string    `json:"short_code"`
	EventTitle string    `json:"event_title"`
	StartsAt   time.Time `json:"starts_at"`
}

// LookupResponse is returned for code/token lookups. ShortCode is blanked
// on token lookups until the ticket is paid, so payment links cannot leak
// the check-in code.
type LookupResponse struct {
	TicketID      uint   `json:"ticket_id"`
	EventID       uint   `json:"event_id"`
	ShortCode     string `json:"short_code"`
	PaymentStatus string `json:"payment_status"`
	Status        string `json:"status"`
	EventTitle    string `json:"event_title,omitempty"`
}

// PayRequest settles a single ticket either by its opaque token or by
// event id + short code.
type PayRequest struct {
	Token   *string `json:"token,omitempty"`
	EventID *uint   `json:"event_id,omitempty"`
	Code    *string `json:"code,omitempty"`
}

type PayResponse struct {
	TicketID      uint   `json:"ticket_id"`
	EventID       uint   `json:"event_id"`
	ShortCode     string `json:"short_code"`
	PaymentStatus string `json:"payment_status"`
	Status        string `json:"status"`
}

type ResendRequest struct {
	TicketID uint `json:"ticket_id"`
}

type ResendResponse struct {
	TicketID uint `json:"ticket_id"`
	Resent   bool `json:"resent"`
}

// ActionRequest covers unassign/refund/void, which act on one ticket with
// an optional operator-supplied reason.
type ActionRequest struct {
	TicketID uint    `json:"ticket_id"`
	Reason   *string `json:"reason,omitempty"`
}

// ReassignRequest rebinds a ticket to a new holder.
type ReassignRequest struct {
	TicketID uint        `json:"ticket_id"`
	Holder   HolderInput `json:"holder"`
}
