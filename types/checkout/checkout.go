package checkout

import ticketTypes "event-ticketing/types/ticket"

// LineItem is one ticket-type line of a checkout. Either Assignees carries
// one holder per ticket, or Quantity alone creates buyer-owned held tickets
// with no holder bound yet.
type LineItem struct {
	TicketTypeID uint                      `json:"ticket_type_id"`
	Assignees    []ticketTypes.HolderInput `json:"assignees,omitempty"`
	Quantity     int                       `json:"quantity,omitempty"`
}

// Request creates one purchase with all its tickets in one transaction.
// PayNow settles every ticket immediately; otherwise the reservation is
// held for 24 hours and the buyer gets a payment link.
type Request struct {
	EventID uint                    `json:"event_id"`
	Buyer   ticketTypes.HolderInput `json:"buyer"`
	Items   []LineItem              `json:"items"`
	PayNow  bool                    `json:"pay_now"`
}

type TicketResult struct {
	TicketID     uint   `json:"ticket_id"`
	TicketTypeID uint   `json:"ticket_type_id"`
	HolderEmail  string `json:"holder_email,omitempty"`
	ShortCode    string `json:"short_code,omitempty"`
	TicketNumber string `json:"ticket_number,omitempty"`
	Status       string `json:"status"`
}

type Response struct {
	PurchaseID   uint           `json:"purchase_id"`
	PurchaseGUID string         `json:"purchase_guid"`
	TotalAmount  int            `json:"total_amount"`
	Currency     string         `json:"currency"`
	Tickets      []TicketResult `json:"tickets"`
}
