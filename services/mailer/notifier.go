package mailer

// Kind names a notification template. The values double as the
// template_name column in email logs.
type Kind string

const (
	KindReservationBuyer  Kind = "reservation_confirmation_buyer"
	KindReservedHolder    Kind = "reserved_assignment_holder"
	KindTicket            Kind = "ticket_email"
	KindPayment           Kind = "payment_email"
	KindUnassign          Kind = "unassign_email"
	KindRefundInitiated   Kind = "refund_initiated_email"
)

// Line is one aggregated row in a payment request email.
type Line struct {
	TypeName  string `json:"type_name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int    `json:"unit_price"`
	Subtotal  int    `json:"subtotal"`
}

// Related carries the record ids a notification concerns, used to link the
// email log row and to mark ticket delivery after a successful send.
type Related struct {
	EventID    *uint `json:"event_id,omitempty"`
	TicketID   *uint `json:"ticket_id,omitempty"`
	PurchaseID *uint `json:"purchase_id,omitempty"`
}

// Context is the data a template renders from. Fields not used by a given
// kind stay zero.
type Context struct {
	EventTitle         string  `json:"event_title,omitempty"`
	EventDateTime      string  `json:"event_date_time,omitempty"`
	EventLocation      string  `json:"event_location,omitempty"`
	ReservationExpires string  `json:"reservation_expires,omitempty"`
	HolderName         string  `json:"holder_name,omitempty"`
	BuyerName          string  `json:"buyer_name,omitempty"`
	ShortCode          string  `json:"short_code,omitempty"`
	TicketNumber       string  `json:"ticket_number,omitempty"`
	TicketTypeName     string  `json:"ticket_type_name,omitempty"`
	ViewLink           string  `json:"view_link,omitempty"`
	PayLink            string  `json:"pay_link,omitempty"`
	Reason             string  `json:"reason,omitempty"`
	Lines              []Line  `json:"lines,omitempty"`
	TotalAmount        int     `json:"total_amount,omitempty"`
	Currency           string  `json:"currency,omitempty"`
	IsComp             bool    `json:"is_comp,omitempty"`
	Related            Related `json:"related,omitempty"`
}

// Notifier is what the lifecycle operations depend on. Implementations must
// never fail a business transaction: the return value reports whether the
// notification was accepted for delivery and is informational only.
type Notifier interface {
	Notify(kind Kind, to string, ctx Context) bool
}
