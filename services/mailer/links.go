package mailer

import (
	"fmt"
	"os"
	"time"

	eventModel "event-ticketing/models/event"
)

// ReservationWindow is how long an unpaid reservation is held before staff
// may release it.
const ReservationWindow = 24 * time.Hour

// AppOrigin is the public frontend origin used in email deep links.
func AppOrigin() string {
	if v := os.Getenv("PUBLIC_APP_ORIGIN"); v != "" {
		return v
	}
	return "http://localhost:5173"
}

// ViewLink opens a ticket page by its opaque token.
func ViewLink(token string) string {
	return fmt.Sprintf("%s/ticket?token=%s", AppOrigin(), token)
}

// PayLink opens the single-ticket payment page by token.
func PayLink(token string) string {
	return fmt.Sprintf("%s/pay?token=%s", AppOrigin(), token)
}

// PurchasePayLink opens the purchase payment page by purchase guid.
func PurchasePayLink(guid string) string {
	return fmt.Sprintf("%s/pay?purchase=%s", AppOrigin(), guid)
}

// EventWhen renders the event window as "dd/mm/yyyy h:mmpm", appending the
// end time when the event has one.
func EventWhen(ev *eventModel.Event) string {
	const layout = "02/01/2006 3:04pm"
	s := ev.StartsAt.UTC().Format(layout)
	if ev.EndsAt != nil {
		return s + " - " + ev.EndsAt.UTC().Format(layout)
	}
	return s
}

// ReservationExpires formats the payment deadline for reservation emails.
func ReservationExpires() string {
	return time.Now().UTC().Add(ReservationWindow).Format("02/01/2006 03:04PM UTC")
}
