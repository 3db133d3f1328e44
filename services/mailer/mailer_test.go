package mailer

import (
	"errors"
	"testing"

	emaillogModel "event-ticketing/models/emaillog"
	ticketModel "event-ticketing/models/ticket"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type recordingTransport struct {
	sent []Message
	err  error
}

func (rt *recordingTransport) Send(m Message) error {
	rt.sent = append(rt.sent, m)
	return rt.err
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&emaillogModel.EmailLog{}, &ticketModel.Ticket{}))
	return db
}

func drain(d *Dispatcher) {
	d.Close()
	d.Process()
}

func TestRenderTicketEmail(t *testing.T) {
	out, err := render(KindTicket, Context{
		EventTitle:    "Launch Party",
		EventDateTime: "01/10/2026 7:00pm",
		HolderName:    "Ada",
		ShortCode:     "042",
		TicketNumber:  "7",
	})
	require.NoError(t, err)

	assert.Equal(t, "Your ticket for Launch Party", out.Subject)
	assert.Contains(t, out.Text, "Entry code: 042")
	assert.Contains(t, out.Text, "Ticket number: 7")
}

func TestRenderUnknownKind(t *testing.T) {
	_, err := render(Kind("nonsense"), Context{})
	assert.Error(t, err)
}

func TestDispatcherDeliversAndMarksTicket(t *testing.T) {
	db := newTestDB(t)
	ticket := ticketModel.Ticket{
		UUID:    uuid.NewString(),
		EventID: 1,
		Status:  ticketModel.StatusAssigned,
	}
	require.NoError(t, db.Create(&ticket).Error)

	transport := &recordingTransport{}
	d := NewDispatcher(db, transport)

	ok := d.Notify(KindTicket, "ada@example.com", Context{
		EventTitle: "Launch Party",
		HolderName: "Ada",
		ShortCode:  "042",
		Related:    Related{TicketID: &ticket.ID},
	})
	assert.True(t, ok)
	drain(d)

	require.Len(t, transport.sent, 1)
	assert.Equal(t, "ada@example.com", transport.sent[0].To)

	var row emaillogModel.EmailLog
	require.NoError(t, db.First(&row).Error)
	assert.Equal(t, string(KindTicket), row.TemplateName)
	assert.Equal(t, emaillogModel.StatusSent, row.Status)
	require.NotNil(t, row.TicketID)
	assert.Equal(t, ticket.ID, *row.TicketID)

	var reloaded ticketModel.Ticket
	require.NoError(t, db.First(&reloaded, ticket.ID).Error)
	assert.Equal(t, ticketModel.DeliverySent, reloaded.DeliveryStatus)
	assert.NotNil(t, reloaded.DeliveredAt)
}

func TestDispatcherRecordsFailure(t *testing.T) {
	db := newTestDB(t)
	ticket := ticketModel.Ticket{
		UUID:    uuid.NewString(),
		EventID: 1,
		Status:  ticketModel.StatusAssigned,
	}
	require.NoError(t, db.Create(&ticket).Error)

	transport := &recordingTransport{err: errors.New("connection refused")}
	d := NewDispatcher(db, transport)

	d.Notify(KindTicket, "ada@example.com", Context{
		EventTitle: "Launch Party",
		HolderName: "Ada",
		Related:    Related{TicketID: &ticket.ID},
	})
	drain(d)

	var row emaillogModel.EmailLog
	require.NoError(t, db.First(&row).Error)
	assert.Equal(t, emaillogModel.StatusFailed, row.Status)
	require.NotNil(t, row.ErrorMessage)
	assert.Contains(t, *row.ErrorMessage, "connection refused")

	// Failed sends must not mark the ticket delivered.
	var reloaded ticketModel.Ticket
	require.NoError(t, db.First(&reloaded, ticket.ID).Error)
	assert.Equal(t, ticketModel.DeliveryNotSent, reloaded.DeliveryStatus)
}
