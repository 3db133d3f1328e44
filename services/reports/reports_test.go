package reports

import (
	"strings"
	"testing"

	contactModel "event-ticketing/models/contact"
	customerModel "event-ticketing/models/customer"
	eventModel "event-ticketing/models/event"
	purchaseModel "event-ticketing/models/purchase"
	ticketModel "event-ticketing/models/ticket"
	"event-ticketing/services/lifecycle"
	"event-ticketing/services/mailer"
	checkinTypes "event-ticketing/types/checkin"
	ticketTypes "event-ticketing/types/ticket"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type silentNotifier struct{}

func (silentNotifier) Notify(mailer.Kind, string, mailer.Context) bool { return true }

func newTestService(t *testing.T) (*Service, *lifecycle.Engine) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&eventModel.Event{},
		&eventModel.TicketType{},
		&contactModel.Contact{},
		&customerModel.Customer{},
		&purchaseModel.Purchase{},
		&ticketModel.Ticket{},
	))
	return NewService(db), lifecycle.NewEngine(db, silentNotifier{})
}

func TestEventSummary(t *testing.T) {
	s, e := newTestService(t)

	ev := &eventModel.Event{PublicID: uuid.NewString(), Title: "Expo", Capacity: 10}
	require.NoError(t, s.DB.Create(ev).Error)
	tt := &eventModel.TicketType{EventID: ev.ID, Name: "GA", Price: 800, Active: true}
	require.NoError(t, s.DB.Create(tt).Error)

	paid := "paid"
	a1, err := e.Assign(ticketTypes.AssignRequest{
		EventID: ev.ID, Customer: ticketTypes.HolderInput{Email: "a@example.com"},
		TicketTypeID: &tt.ID, PaymentStatus: &paid,
	})
	require.NoError(t, err)
	_, err = e.Assign(ticketTypes.AssignRequest{
		EventID: ev.ID, Customer: ticketTypes.HolderInput{Email: "b@example.com"},
		TicketTypeID: &tt.ID,
	})
	require.NoError(t, err)

	_, err = e.CheckIn(checkinTypes.Request{EventID: ev.ID, Code: a1.ShortCode})
	require.NoError(t, err)

	sum, err := s.EventSummary(ev.ID)
	require.NoError(t, err)
	assert.Equal(t, "Expo", sum.EventTitle)
	assert.EqualValues(t, 1, sum.ByStatus["assigned"])
	assert.EqualValues(t, 1, sum.ByStatus["checked_in"])
	assert.EqualValues(t, 1, sum.ByPayment["paid"])
	assert.EqualValues(t, 1, sum.ByPayment["unpaid"])
	assert.EqualValues(t, 1, sum.CheckedInToday)
	assert.Equal(t, 800, sum.PaidRevenue)
}

func TestAttendeesCSV(t *testing.T) {
	s, e := newTestService(t)

	ev := &eventModel.Event{PublicID: uuid.NewString(), Title: "Expo", Capacity: 10}
	require.NoError(t, s.DB.Create(ev).Error)

	first := "Grace"
	_, err := e.Assign(ticketTypes.AssignRequest{
		EventID:  ev.ID,
		Customer: ticketTypes.HolderInput{Email: "grace@example.com", FirstName: &first},
	})
	require.NoError(t, err)

	csvBytes, err := s.AttendeesCSV(ev.ID)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(csvBytes)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "ticket_number")
	assert.Contains(t, lines[1], "grace@example.com")
	assert.Contains(t, lines[1], "Grace")
}

func TestSummaryUnknownEvent(t *testing.T) {
	s, _ := newTestService(t)
	_, err := s.EventSummary(42)
	require.Error(t, err)
}
