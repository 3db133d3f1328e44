package allocator

import (
	"fmt"
	"testing"

	"event-ticketing/errs"
	contactModel "event-ticketing/models/contact"
	customerModel "event-ticketing/models/customer"
	eventModel "event-ticketing/models/event"
	ticketModel "event-ticketing/models/ticket"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
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
		&ticketModel.Ticket{},
	))
	return db
}

func newTestEvent(t *testing.T, db *gorm.DB) *eventModel.Event {
	t.Helper()
	ev := &eventModel.Event{PublicID: uuid.NewString(), Title: "Test Event", Capacity: 100}
	require.NoError(t, db.Create(ev).Error)
	return ev
}

func seedTicket(t *testing.T, db *gorm.DB, eventID uint, code, number *string) *ticketModel.Ticket {
	t.Helper()
	tk := &ticketModel.Ticket{
		UUID:         uuid.NewString(),
		EventID:      eventID,
		ShortCode:    code,
		TicketNumber: number,
		Status:       ticketModel.StatusAssigned,
	}
	require.NoError(t, db.Create(tk).Error)
	return tk
}

func strptr(s string) *string { return &s }

func TestNextTicketNumberSmallestMissing(t *testing.T) {
	db := newTestDB(t)
	ev := newTestEvent(t, db)

	for _, n := range []string{"1", "2", "4"} {
		seedTicket(t, db, ev.ID, nil, strptr(n))
	}

	got, err := NextTicketNumber(db, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, "3", got)
}

func TestNextTicketNumberReusesFreedNumber(t *testing.T) {
	db := newTestDB(t)
	ev := newTestEvent(t, db)

	seedTicket(t, db, ev.ID, nil, strptr("1"))
	two := seedTicket(t, db, ev.ID, nil, strptr("2"))
	seedTicket(t, db, ev.ID, nil, strptr("3"))

	// Unassign releases "2"; the next allocation must hand it back out
	// because "3" is still occupied.
	require.NoError(t, db.Model(two).Update("ticket_number", nil).Error)

	got, err := NextTicketNumber(db, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, "2", got)
}

func TestNextTicketNumberIgnoresNonNumeric(t *testing.T) {
	db := newTestDB(t)
	ev := newTestEvent(t, db)

	seedTicket(t, db, ev.ID, nil, strptr("1"))
	seedTicket(t, db, ev.ID, nil, strptr("legacy-A"))
	seedTicket(t, db, ev.ID, nil, strptr(" 2 "))

	got, err := NextTicketNumber(db, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, "3", got)
}

func TestNextTicketNumberStartsAtOne(t *testing.T) {
	db := newTestDB(t)
	ev := newTestEvent(t, db)

	got, err := NextTicketNumber(db, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, "1", got)
}

func TestShortCodeUniquePerEvent(t *testing.T) {
	db := newTestDB(t)
	ev := newTestEvent(t, db)

	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		code, err := ShortCode(db, ev.ID)
		require.NoError(t, err)
		require.Len(t, code, 3)

		_, dup := seen[code]
		assert.False(t, dup, "code %s issued twice", code)
		seen[code] = struct{}{}

		seedTicket(t, db, ev.ID, strptr(code), nil)
	}
}

func TestShortCodeIndependentAcrossEvents(t *testing.T) {
	db := newTestDB(t)
	ev1 := newTestEvent(t, db)
	ev2 := newTestEvent(t, db)

	seedTicket(t, db, ev1.ID, strptr("042"), nil)

	free, err := CodeFree(db, ev2.ID, "042")
	require.NoError(t, err)
	assert.True(t, free, "codes are scoped per event")
}

func TestShortCodeExhausted(t *testing.T) {
	db := newTestDB(t)
	ev := newTestEvent(t, db)

	tickets := make([]ticketModel.Ticket, 0, 1000)
	for i := 0; i < 1000; i++ {
		tickets = append(tickets, ticketModel.Ticket{
			UUID:      uuid.NewString(),
			EventID:   ev.ID,
			ShortCode: strptr(fmt.Sprintf("%03d", i)),
			Status:    ticketModel.StatusAssigned,
		})
	}
	require.NoError(t, db.CreateInBatches(tickets, 200).Error)

	_, err := ShortCode(db, ev.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrExhausted)
}
