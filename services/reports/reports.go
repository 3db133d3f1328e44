package reports

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	"event-ticketing/errs"
	eventModel "event-ticketing/models/event"
	ticketModel "event-ticketing/models/ticket"

	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

// Summary is the per-event reconciliation view: who holds what, who has
// paid, and what the paid tickets are worth.
type Summary struct {
	EventID    uint   `json:"event_id"`
	EventTitle string `json:"event_title"`

	ByStatus  map[string]int64 `json:"by_status"`
	ByPayment map[string]int64 `json:"by_payment"`

	Delivered       int64 `json:"delivered"`
	CheckedInToday  int64 `json:"checked_in_today"`
	PaidRevenue     int   `json:"paid_revenue"`
	RefundedTickets int64 `json:"refunded_tickets"`
}

type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

type statusCount struct {
	Key   string
	Count int64
}

// EventSummary reconciles one event's tickets.
func (s *Service) EventSummary(eventID uint) (*Summary, error) {
	var ev eventModel.Event
	if err := s.DB.First(&ev, eventID).Error; err != nil {
		return nil, errs.NotFoundf("event %d not found", eventID)
	}

	out := &Summary{
		EventID:    ev.ID,
		EventTitle: ev.Title,
		ByStatus:   map[string]int64{},
		ByPayment:  map[string]int64{},
	}

	var rows []statusCount
	err := s.DB.Model(&ticketModel.Ticket{}).
		Select("status as key, count(*) as count").
		Where("event_id = ?", eventID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out.ByStatus[r.Key] = r.Count
	}

	rows = rows[:0]
	err = s.DB.Model(&ticketModel.Ticket{}).
		Select("payment_status as key, count(*) as count").
		Where("event_id = ?", eventID).
		Group("payment_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out.ByPayment[r.Key] = r.Count
	}

	s.DB.Model(&ticketModel.Ticket{}).
		Where("event_id = ? AND delivery_status = ?", eventID, ticketModel.DeliverySent).
		Count(&out.Delivered)

	day := now.New(time.Now().UTC())
	s.DB.Model(&ticketModel.Ticket{}).
		Where("event_id = ? AND checked_in_at BETWEEN ? AND ?", eventID, day.BeginningOfDay(), day.EndOfDay()).
		Count(&out.CheckedInToday)

	s.DB.Model(&ticketModel.Ticket{}).
		Where("event_id = ? AND payment_status IN ?", eventID,
			[]ticketModel.PaymentStatus{ticketModel.PaymentRefunding, ticketModel.PaymentRefunded}).
		Count(&out.RefundedTickets)

	var revenue *int
	err = s.DB.Model(&ticketModel.Ticket{}).
		Select("sum(ticket_types.price)").
		Joins("JOIN ticket_types ON ticket_types.id = tickets.ticket_type_id").
		Where("tickets.event_id = ? AND tickets.payment_status = ?", eventID, ticketModel.PaymentPaid).
		Scan(&revenue).Error
	if err != nil {
		return nil, err
	}
	if revenue != nil {
		out.PaidRevenue = *revenue
	}

	return out, nil
}

// attendeeRow is one line of the CSV export.
type attendeeRow struct {
	TicketNumber  *string
	ShortCode     *string
	Status        string
	PaymentStatus string
	Email         *string
	FirstName     *string
	LastName      *string
	TypeName      *string
}

// AttendeesCSV exports the event's non-available tickets with holder and
// type details, one row per ticket.
func (s *Service) AttendeesCSV(eventID uint) ([]byte, error) {
	if err := s.DB.First(&eventModel.Event{}, eventID).Error; err != nil {
		return nil, errs.NotFoundf("event %d not found", eventID)
	}

	var rows []attendeeRow
	err := s.DB.Model(&ticketModel.Ticket{}).
		Select(`tickets.ticket_number, tickets.short_code, tickets.status, tickets.payment_status,
			contacts.email, contacts.first_name, contacts.last_name, ticket_types.name as type_name`).
		Joins("LEFT JOIN contacts ON contacts.id = tickets.holder_contact_id").
		Joins("LEFT JOIN ticket_types ON ticket_types.id = tickets.ticket_type_id").
		Where("tickets.event_id = ? AND tickets.status <> ?", eventID, ticketModel.StatusAvailable).
		Order("tickets.id asc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"ticket_number", "short_code", "status", "payment_status", "email", "first_name", "last_name", "type"})
	for _, r := range rows {
		_ = w.Write([]string{
			sv(r.TicketNumber), sv(r.ShortCode), r.Status, r.PaymentStatus,
			sv(r.Email), sv(r.FirstName), sv(r.LastName), sv(r.TypeName),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SummaryCSV renders the reconciliation summary as key/value rows for
// spreadsheet import.
func (s *Service) SummaryCSV(eventID uint) ([]byte, error) {
	sum, err := s.EventSummary(eventID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"metric", "value"})
	_ = w.Write([]string{"event", sum.EventTitle})
	for _, st := range []ticketModel.TicketStatus{
		ticketModel.StatusAvailable, ticketModel.StatusHeld, ticketModel.StatusAssigned,
		ticketModel.StatusCheckedIn, ticketModel.StatusVoid,
	} {
		_ = w.Write([]string{"status_" + st.String(), strconv.FormatInt(sum.ByStatus[st.String()], 10)})
	}
	for _, ps := range []ticketModel.PaymentStatus{
		ticketModel.PaymentUnpaid, ticketModel.PaymentPaid, ticketModel.PaymentWaived,
		ticketModel.PaymentRefunding, ticketModel.PaymentRefunded,
		ticketModel.PaymentVoiding, ticketModel.PaymentVoided,
	} {
		_ = w.Write([]string{"payment_" + ps.String(), strconv.FormatInt(sum.ByPayment[ps.String()], 10)})
	}
	_ = w.Write([]string{"delivered", strconv.FormatInt(sum.Delivered, 10)})
	_ = w.Write([]string{"checked_in_today", strconv.FormatInt(sum.CheckedInToday, 10)})
	_ = w.Write([]string{"paid_revenue", strconv.Itoa(sum.PaidRevenue)})
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func sv(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
