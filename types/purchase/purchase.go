package purchase

import "time"

type Buyer struct {
	ID        uint    `json:"id"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone,omitempty"`
}

type Ticket struct {
	ID              uint       `json:"id"`
	EventID         uint       `json:"event_id"`
	EventTitle      string     `json:"event_title"`
	EventStartsAt   time.Time  `json:"event_starts_at"`
	EventEndsAt     *time.Time `json:"event_ends_at,omitempty"`
	TicketNumber    *string    `json:"ticket_number,omitempty"`
	ShortCode       *string    `json:"short_code,omitempty"`
	Status          string     `json:"status"`
	PaymentStatus   string     `json:"payment_status"`
	HolderContactID *uint      `json:"holder_contact_id,omitempty"`
	TypeID          *uint      `json:"type_id,omitempty"`
	TypeName        *string    `json:"type_name,omitempty"`
	TypePrice       int        `json:"type_price"`
}

// Read is the purchase detail view: buyer, tickets, and a total that falls
// back to the sum of type prices when the stored amount is null.
type Read struct {
	ID                 uint      `json:"id"`
	GUID               string    `json:"guid"`
	Buyer              Buyer     `json:"buyer"`
	ExternalPaymentRef *string   `json:"external_payment_ref,omitempty"`
	TotalAmount        int       `json:"total_amount"`
	Currency           string    `json:"currency"`
	CreatedAt          time.Time `json:"created_at"`
	Tickets            []Ticket  `json:"tickets"`
}

type PayResponse struct {
	Paid    bool `json:"paid"`
	Tickets int  `json:"tickets"`
}
