package checkin

import "time"

type Request struct {
	EventID uint   `json:"event_id"`
	Code    string `json:"code"`
}

// Response reports both the previous and new status so gate staff can tell
// a fresh check-in from a repeated scan.
type Response struct {
	TicketID       uint       `json:"ticket_id"`
	EventID        uint       `json:"event_id"`
	ShortCode      string     `json:"short_code"`
	PreviousStatus string     `json:"previous_status"`
	NewStatus      string     `json:"new_status"`
	CheckedInAt    *time.Time `json:"checked_in_at,omitempty"`
}
