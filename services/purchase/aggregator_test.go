package purchase

import (
	"testing"

	"event-ticketing/errs"
	contactModel "event-ticketing/models/contact"
	customerModel "event-ticketing/models/customer"
	emaillogModel "event-ticketing/models/emaillog"
	eventModel "event-ticketing/models/event"
	purchaseModel "event-ticketing/models/purchase"
	ticketModel "event-ticketing/models/ticket"
	"event-ticketing/services/lifecycle"
	"event-ticketing/services/mailer"
	checkoutTypes "event-ticketing/types/checkout"
	ticketTypes "event-ticketing/types/ticket"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type notifyCall struct {
	Kind mailer.Kind
	To   string
	Ctx  mailer.Context
}

type stubNotifier struct {
	calls []notifyCall
}

func (s *stubNotifier) Notify(kind mailer.Kind, to string, ctx mailer.Context) bool {
	s.calls = append(s.calls, notifyCall{Kind: kind, To: to, Ctx: ctx})
	return true
}

func newTestAggregator(t *testing.T) (*Aggregator, *lifecycle.Engine, *stubNotifier) {
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
		&emaillogModel.EmailLog{},
		&ticketModel.Ticket{},
	))
	stub := &stubNotifier{}
	return NewAggregator(db, stub), lifecycle.NewEngine(db, stub), stub
}

func seedCheckout(t *testing.T, e *lifecycle.Engine, db *gorm.DB) (*eventModel.Event, *checkoutTypes.Response) {
	t.Helper()
	ev := &eventModel.Event{PublicID: uuid.NewString(), Title: "Gala Night", Capacity: 20}
	require.NoError(t, db.Create(ev).Error)
	vip := &eventModel.TicketType{EventID: ev.ID, Name: "VIP", Price: 1500, Active: true}
	require.NoError(t, db.Create(vip).Error)
	ga := &eventModel.TicketType{EventID: ev.ID, Name: "GA", Price: 600, Active: true}
	require.NoError(t, db.Create(ga).Error)

	resp, err := e.Checkout(checkoutTypes.Request{
		EventID: ev.ID,
		Buyer:   ticketTypes.HolderInput{Email: "buyer@example.com"},
		Items: []checkoutTypes.LineItem{
			{TicketTypeID: vip.ID, Assignees: []ticketTypes.HolderInput{{Email: "vip@example.com"}}},
			{TicketTypeID: ga.ID, Quantity: 2},
		},
	})
	require.NoError(t, err)
	return ev, resp
}

func TestGetComputesTotalAndJoins(t *testing.T) {
	a, e, _ := newTestAggregator(t)
	_, co := seedCheckout(t, e, a.DB)

	read, err := a.Get(co.PurchaseID)
	require.NoError(t, err)

	assert.Equal(t, co.PurchaseGUID, read.GUID)
	assert.Equal(t, "buyer@example.com", read.Buyer.Email)
	assert.Equal(t, 2700, read.TotalAmount)
	assert.Equal(t, "THB", read.Currency)
	require.Len(t, read.Tickets, 3)
	assert.Equal(t, "Gala Night", read.Tickets[0].EventTitle)

	byGUID, err := a.GetByGUID(co.PurchaseGUID)
	require.NoError(t, err)
	assert.Equal(t, read.ID, byGUID.ID)

	_, err = a.Get(9999)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestGetFallsBackToComputedTotal(t *testing.T) {
	a, e, _ := newTestAggregator(t)
	_, co := seedCheckout(t, e, a.DB)

	// Simulate a legacy purchase with no stored amount.
	require.NoError(t, a.DB.Model(&purchaseModel.Purchase{}).
		Where("id = ?", co.PurchaseID).
		Update("total_amount", nil).Error)

	read, err := a.Get(co.PurchaseID)
	require.NoError(t, err)
	assert.Equal(t, 2700, read.TotalAmount)
}

func TestResendPaymentGroupsLines(t *testing.T) {
	a, e, stub := newTestAggregator(t)
	_, co := seedCheckout(t, e, a.DB)
	stub.calls = nil

	require.NoError(t, a.ResendPayment(co.PurchaseID))

	require.Len(t, stub.calls, 1)
	call := stub.calls[0]
	assert.Equal(t, mailer.KindReservationBuyer, call.Kind)
	assert.Equal(t, "buyer@example.com", call.To)
	assert.Equal(t, 2700, call.Ctx.TotalAmount)
	require.Len(t, call.Ctx.Lines, 2)
	assert.Contains(t, call.Ctx.PayLink, co.PurchaseGUID)
}

func TestPayPurchasePaysAllAndMailsHolders(t *testing.T) {
	a, e, stub := newTestAggregator(t)
	_, co := seedCheckout(t, e, a.DB)
	stub.calls = nil

	resp, err := a.Pay(co.PurchaseID)
	require.NoError(t, err)
	assert.True(t, resp.Paid)
	assert.Equal(t, 3, resp.Tickets)

	var unpaid int64
	a.DB.Model(&ticketModel.Ticket{}).
		Where("purchase_id = ? AND payment_status <> ?", co.PurchaseID, ticketModel.PaymentPaid).
		Count(&unpaid)
	assert.EqualValues(t, 0, unpaid)

	// Only the assigned VIP ticket has a holder and code; held GA tickets
	// get their email at reassign time.
	require.Len(t, stub.calls, 1)
	assert.Equal(t, mailer.KindTicket, stub.calls[0].Kind)
	assert.Equal(t, "vip@example.com", stub.calls[0].To)
}
