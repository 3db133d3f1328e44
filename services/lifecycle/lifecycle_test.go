package lifecycle

import (
	"testing"

	"event-ticketing/errs"
	contactModel "event-ticketing/models/contact"
	customerModel "event-ticketing/models/customer"
	emaillogModel "event-ticketing/models/emaillog"
	eventModel "event-ticketing/models/event"
	purchaseModel "event-ticketing/models/purchase"
	ticketModel "event-ticketing/models/ticket"
	"event-ticketing/services/mailer"
	checkinTypes "event-ticketing/types/checkin"
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

func (s *stubNotifier) kinds() []mailer.Kind {
	out := make([]mailer.Kind, 0, len(s.calls))
	for _, c := range s.calls {
		out = append(out, c.Kind)
	}
	return out
}

func newTestEngine(t *testing.T) (*Engine, *stubNotifier) {
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
	return NewEngine(db, stub), stub
}

func makeEvent(t *testing.T, db *gorm.DB) *eventModel.Event {
	t.Helper()
	ev := &eventModel.Event{PublicID: uuid.NewString(), Title: "Launch Party", Capacity: 50}
	require.NoError(t, db.Create(ev).Error)
	return ev
}

func makeType(t *testing.T, db *gorm.DB, eventID uint, name string, price int, max *int) *eventModel.TicketType {
	t.Helper()
	tt := &eventModel.TicketType{EventID: eventID, Name: name, Price: price, MaxQuantity: max, Active: true}
	require.NoError(t, db.Create(tt).Error)
	return tt
}

func holder(email string) ticketTypes.HolderInput {
	first := "Ada"
	return ticketTypes.HolderInput{Email: email, FirstName: &first}
}

func intPtr(v int) *int       { return &v }
func strPtr(s string) *string { return &s }

func reload(t *testing.T, db *gorm.DB, id uint) *ticketModel.Ticket {
	t.Helper()
	var tk ticketModel.Ticket
	require.NoError(t, db.First(&tk, id).Error)
	return &tk
}

func TestAssignCreatesTicketAndNotifiesHolder(t *testing.T) {
	e, stub := newTestEngine(t)
	ev := makeEvent(t, e.DB)

	resp, err := e.Assign(ticketTypes.AssignRequest{
		EventID:  ev.ID,
		Customer: holder("Ada@Example.com "),
	})
	require.NoError(t, err)

	assert.Equal(t, "ada@example.com", resp.CustomerEmail)
	assert.Len(t, resp.ShortCode, 3)
	assert.Equal(t, "1", resp.TicketNumber)
	assert.Equal(t, "assigned", resp.Status)

	tk := reload(t, e.DB, resp.TicketID)
	assert.Equal(t, ticketModel.StatusAssigned, tk.Status)
	assert.Equal(t, ticketModel.PaymentUnpaid, tk.PaymentStatus)
	assert.NotNil(t, tk.AssignedAt)
	assert.NotNil(t, tk.HolderContactID)

	var ct contactModel.Contact
	require.NoError(t, e.DB.Where("email = ?", "ada@example.com").First(&ct).Error)

	require.Len(t, stub.calls, 1)
	assert.Equal(t, mailer.KindReservedHolder, stub.calls[0].Kind)
	assert.Equal(t, "ada@example.com", stub.calls[0].To)
}

func TestAssignPaidOpensPurchaseAndSendsTicket(t *testing.T) {
	e, stub := newTestEngine(t)
	ev := makeEvent(t, e.DB)

	resp, err := e.Assign(ticketTypes.AssignRequest{
		EventID:       ev.ID,
		Customer:      holder("buyer@example.com"),
		PaymentStatus: strPtr("paid"),
	})
	require.NoError(t, err)

	tk := reload(t, e.DB, resp.TicketID)
	assert.Equal(t, ticketModel.PaymentPaid, tk.PaymentStatus)
	require.NotNil(t, tk.PurchaseID)

	var p purchaseModel.Purchase
	require.NoError(t, e.DB.First(&p, *tk.PurchaseID).Error)
	assert.NotEmpty(t, p.UUID)

	require.Len(t, stub.calls, 1)
	assert.Equal(t, mailer.KindTicket, stub.calls[0].Kind)
	assert.Equal(t, resp.ShortCode, stub.calls[0].Ctx.ShortCode)
}

func TestAssignDesiredCodeConflict(t *testing.T) {
	e, _ := newTestEngine(t)
	ev := makeEvent(t, e.DB)

	_, err := e.Assign(ticketTypes.AssignRequest{
		EventID:          ev.ID,
		Customer:         holder("first@example.com"),
		DesiredShortCode: strPtr("042"),
	})
	require.NoError(t, err)

	_, err = e.Assign(ticketTypes.AssignRequest{
		EventID:          ev.ID,
		Customer:         holder("second@example.com"),
		DesiredShortCode: strPtr("042"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrCodeConflict)
}

func TestAssignTypeCapacity(t *testing.T) {
	e, _ := newTestEngine(t)
	ev := makeEvent(t, e.DB)
	tt := makeType(t, e.DB, ev.ID, "VIP", 1500, intPtr(1))

	_, err := e.Assign(ticketTypes.AssignRequest{
		EventID:      ev.ID,
		Customer:     holder("one@example.com"),
		TicketTypeID: &tt.ID,
	})
	require.NoError(t, err)

	_, err = e.Assign(ticketTypes.AssignRequest{
		EventID:      ev.ID,
		Customer:     holder("two@example.com"),
		TicketTypeID: &tt.ID,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrCapacityExceeded)
}

func TestAssignRejectsForeignTicketType(t *testing.T) {
	e, _ := newTestEngine(t)
	ev := makeEvent(t, e.DB)
	other := makeEvent(t, e.DB)
	tt := makeType(t, e.DB, other.ID, "GA", 500, nil)

	_, err := e.Assign(ticketTypes.AssignRequest{
		EventID:      ev.ID,
		Customer:     holder("x@example.com"),
		TicketTypeID: &tt.ID,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestAssignReusesLowestAvailableSlot(t *testing.T) {
	e, _ := newTestEngine(t)
	ev := makeEvent(t, e.DB)

	first, err := e.Assign(ticketTypes.AssignRequest{EventID: ev.ID, Customer: holder("a@example.com")})
	require.NoError(t, err)
	_, err = e.Assign(ticketTypes.AssignRequest{EventID: ev.ID, Customer: holder("b@example.com")})
	require.NoError(t, err)

	_, err = e.Unassign(ticketTypes.ActionRequest{TicketID: first.TicketID})
	require.NoError(t, err)

	third, err := e.Assign(ticketTypes.AssignRequest{EventID: ev.ID, Customer: holder("c@example.com")})
	require.NoError(t, err)
	assert.Equal(t, first.TicketID, third.TicketID)
	// The freed number comes back; the old code does not.
	assert.Equal(t, "1", third.TicketNumber)
	assert.NotEqual(t, first.ShortCode, third.ShortCode)
}

func TestDoubleCheckInConflicts(t *testing.T) {
	e, _ := newTestEngine(t)
	ev := makeEvent(t, e.DB)

	a, err := e.Assign(ticketTypes.AssignRequest{EventID: ev.ID, Customer: holder("gate@example.com")})
	require.NoError(t, err)

	resp, err := e.CheckIn(checkinTypes.Request{EventID: ev.ID, Code: a.ShortCode})
	require.NoError(t, err)
	assert.Equal(t, "assigned", resp.PreviousStatus)
	assert.Equal(t, "checked_in", resp.NewStatus)
	assert.NotNil(t, resp.CheckedInAt)

	_, err = e.CheckIn(checkinTypes.Request{EventID: ev.ID, Code: a.ShortCode})
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrConflict)

	tk := reload(t, e.DB, a.TicketID)
	assert.Equal(t, ticketModel.StatusCheckedIn, tk.Status)
}

func TestCheckInUnknownCode(t *testing.T) {
	e, _ := newTestEngine(t)
	ev := makeEvent(t, e.DB)

	_, err := e.CheckIn(checkinTypes.Request{EventID: ev.ID, Code: "999"})
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUnassignReleasesNumberKeepsNothingElse(t *testing.T) {
	e, stub := newTestEngine(t)
	ev := makeEvent(t, e.DB)

	a, err := e.Assign(ticketTypes.AssignRequest{EventID: ev.ID, Customer: holder("gone@example.com")})
	require.NoError(t, err)
	stub.calls = nil

	_, err = e.Unassign(ticketTypes.ActionRequest{TicketID: a.TicketID, Reason: strPtr("duplicate booking")})
	require.NoError(t, err)

	tk := reload(t, e.DB, a.TicketID)
	assert.Equal(t, ticketModel.StatusAvailable, tk.Status)
	assert.Nil(t, tk.TicketNumber)
	assert.Nil(t, tk.CustomerID)
	assert.Nil(t, tk.HolderContactID)
	assert.Nil(t, tk.AssignedAt)
	assert.Equal(t, ticketModel.DeliveryNotSent, tk.DeliveryStatus)
	// Code is retained as audit trail.
	require.NotNil(t, tk.ShortCode)
	assert.Equal(t, a.ShortCode, *tk.ShortCode)

	require.Len(t, stub.calls, 1)
	assert.Equal(t, mailer.KindUnassign, stub.calls[0].Kind)
	assert.Equal(t, "gone@example.com", stub.calls[0].To)
	assert.Equal(t, "duplicate booking", stub.calls[0].Ctx.Reason)
}

func TestUnassignPaidConflictsWithoutMutation(t *testing.T) {
	e, _ := newTestEngine(t)
	ev := makeEvent(t, e.DB)

	a, err := e.Assign(ticketTypes.AssignRequest{
		EventID:       ev.ID,
		Customer:      holder("paid@example.com"),
		PaymentStatus: strPtr("paid"),
	})
	require.NoError(t, err)
	before := reload(t, e.DB, a.TicketID)

	_, err = e.Unassign(ticketTypes.ActionRequest{TicketID: a.TicketID})
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrConflict)

	after := reload(t, e.DB, a.TicketID)
	assert.Equal(t, before.Status, after.Status)
	assert.Equal(t, before.TicketNumber, after.TicketNumber)
	assert.Equal(t, before.CustomerID, after.CustomerID)
}

func TestRefundCheckedInKeepsAttendance(t *testing.T) {
	e, stub := newTestEngine(t)
	ev := makeEvent(t, e.DB)

	a, err := e.Assign(ticketTypes.AssignRequest{
		EventID:       ev.ID,
		Customer:      holder("refund@example.com"),
		PaymentStatus: strPtr("paid"),
	})
	require.NoError(t, err)
	_, err = e.CheckIn(checkinTypes.Request{EventID: ev.ID, Code: a.ShortCode})
	require.NoError(t, err)
	stub.calls = nil

	_, err = e.Refund(ticketTypes.ActionRequest{TicketID: a.TicketID, Reason: strPtr("event moved")})
	require.NoError(t, err)

	tk := reload(t, e.DB, a.TicketID)
	assert.Equal(t, ticketModel.PaymentRefunding, tk.PaymentStatus)
	assert.Equal(t, ticketModel.StatusCheckedIn, tk.Status)
	assert.True(t, tk.AttendanceRefunded)
	assert.Nil(t, tk.TicketNumber)

	require.Len(t, stub.calls, 1)
	assert.Equal(t, mailer.KindRefundInitiated, stub.calls[0].Kind)
}

func TestRefundUnpaidConflicts(t *testing.T) {
	e, _ := newTestEngine(t)
	ev := makeEvent(t, e.DB)

	a, err := e.Assign(ticketTypes.AssignRequest{EventID: ev.ID, Customer: holder("np@example.com")})
	require.NoError(t, err)

	_, err = e.Refund(ticketTypes.ActionRequest{TicketID: a.TicketID})
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrConflict)
}

func TestFinalizeRefund(t *testing.T) {
	e, _ := newTestEngine(t)
	ev := makeEvent(t, e.DB)

	a, err := e.Assign(ticketTypes.AssignRequest{
		EventID:       ev.ID,
		Customer:      holder("fin@example.com"),
		PaymentStatus: strPtr("paid"),
	})
	require.NoError(t, err)

	_, err = e.FinalizeRefund(a.TicketID)
	require.Error(t, err, "cannot finalize before refund starts")

	_, err = e.Refund(ticketTypes.ActionRequest{TicketID: a.TicketID})
	require.NoError(t, err)
	tk, err := e.FinalizeRefund(a.TicketID)
	require.NoError(t, err)
	assert.Equal(t, ticketModel.PaymentRefunded, reload(t, e.DB, tk.ID).PaymentStatus)
}

func TestVoidSettledTicket(t *testing.T) {
	e, _ := newTestEngine(t)
	ev := makeEvent(t, e.DB)

	a, err := e.Assign(ticketTypes.AssignRequest{
		EventID:       ev.ID,
		Customer:      holder("void@example.com"),
		PaymentStatus: strPtr("waived"),
	})
	require.NoError(t, err)

	_, err = e.Void(ticketTypes.ActionRequest{TicketID: a.TicketID})
	require.NoError(t, err)

	tk := reload(t, e.DB, a.TicketID)
	assert.Equal(t, ticketModel.StatusVoid, tk.Status)
	assert.Equal(t, ticketModel.PaymentVoiding, tk.PaymentStatus)

	_, err = e.FinalizeVoid(a.TicketID)
	require.NoError(t, err)
	assert.Equal(t, ticketModel.PaymentVoided, reload(t, e.DB, a.TicketID).PaymentStatus)
}

func TestCheckoutQuantityOnlyCreatesHeldTickets(t *testing.T) {
	e, stub := newTestEngine(t)
	ev := makeEvent(t, e.DB)
	tt := makeType(t, e.DB, ev.ID, "GA", 900, nil)

	resp, err := e.Checkout(checkoutTypes.Request{
		EventID: ev.ID,
		Buyer:   holder("buyer@example.com"),
		Items:   []checkoutTypes.LineItem{{TicketTypeID: tt.ID, Quantity: 3}},
	})
	require.NoError(t, err)

	assert.Equal(t, 2700, resp.TotalAmount)
	assert.Equal(t, "THB", resp.Currency)
	require.Len(t, resp.Tickets, 3)

	var count int64
	e.DB.Model(&ticketModel.Ticket{}).
		Where("purchase_id = ? AND status = ?", resp.PurchaseID, ticketModel.StatusHeld).
		Count(&count)
	assert.EqualValues(t, 3, count)

	for _, tr := range resp.Tickets {
		tk := reload(t, e.DB, tr.TicketID)
		assert.Nil(t, tk.HolderContactID)
		assert.Nil(t, tk.ShortCode)
		assert.Equal(t, ticketModel.PaymentUnpaid, tk.PaymentStatus)
	}

	require.Len(t, stub.calls, 1)
	assert.Equal(t, mailer.KindReservationBuyer, stub.calls[0].Kind)
	assert.Equal(t, 2700, stub.calls[0].Ctx.TotalAmount)
	require.Len(t, stub.calls[0].Ctx.Lines, 1)
	assert.Equal(t, 3, stub.calls[0].Ctx.Lines[0].Quantity)
}

func TestCheckoutWithAssigneesBindsHolders(t *testing.T) {
	e, stub := newTestEngine(t)
	ev := makeEvent(t, e.DB)
	tt := makeType(t, e.DB, ev.ID, "GA", 500, nil)

	resp, err := e.Checkout(checkoutTypes.Request{
		EventID: ev.ID,
		Buyer:   holder("buyer@example.com"),
		Items: []checkoutTypes.LineItem{{
			TicketTypeID: tt.ID,
			Assignees:    []ticketTypes.HolderInput{holder("h1@example.com"), holder("h2@example.com")},
		}},
		PayNow: true,
	})
	require.NoError(t, err)
	require.Len(t, resp.Tickets, 2)

	for _, tr := range resp.Tickets {
		tk := reload(t, e.DB, tr.TicketID)
		assert.Equal(t, ticketModel.StatusAssigned, tk.Status)
		assert.Equal(t, ticketModel.PaymentPaid, tk.PaymentStatus)
		assert.NotNil(t, tk.ShortCode)
		assert.NotNil(t, tk.HolderContactID)
		require.NotNil(t, tk.PurchaseID)
		assert.EqualValues(t, resp.PurchaseID, *tk.PurchaseID)
	}

	// Paid checkout mails each holder a ticket, not a reservation.
	assert.ElementsMatch(t, []mailer.Kind{mailer.KindTicket, mailer.KindTicket}, stub.kinds())
}

func TestCheckoutLineOverCapacity(t *testing.T) {
	e, _ := newTestEngine(t)
	ev := makeEvent(t, e.DB)
	tt := makeType(t, e.DB, ev.ID, "VIP", 1500, intPtr(2))

	_, err := e.Checkout(checkoutTypes.Request{
		EventID: ev.ID,
		Buyer:   holder("buyer@example.com"),
		Items:   []checkoutTypes.LineItem{{TicketTypeID: tt.ID, Quantity: 3}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrCapacityExceeded)

	// The failed checkout rolls back entirely.
	var count int64
	e.DB.Model(&ticketModel.Ticket{}).Where("event_id = ?", ev.ID).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestPayByTokenAndLookupHidesCode(t *testing.T) {
	e, stub := newTestEngine(t)
	ev := makeEvent(t, e.DB)

	a, err := e.Assign(ticketTypes.AssignRequest{EventID: ev.ID, Customer: holder("pay@example.com")})
	require.NoError(t, err)
	tk := reload(t, e.DB, a.TicketID)
	stub.calls = nil

	look, err := e.Lookup(&tk.UUID, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, look.ShortCode, "token lookup must hide the code while unpaid")
	assert.Equal(t, "Launch Party", look.EventTitle)

	payResp, err := e.Pay(ticketTypes.PayRequest{Token: &tk.UUID})
	require.NoError(t, err)
	assert.Equal(t, "paid", payResp.PaymentStatus)

	paid := reload(t, e.DB, a.TicketID)
	require.NotNil(t, paid.PurchaseID, "paying outside a checkout opens a purchase")

	look, err = e.Lookup(&tk.UUID, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, a.ShortCode, look.ShortCode)

	require.Len(t, stub.calls, 1)
	assert.Equal(t, mailer.KindTicket, stub.calls[0].Kind)
}

func TestLookupByCode(t *testing.T) {
	e, _ := newTestEngine(t)
	ev := makeEvent(t, e.DB)

	a, err := e.Assign(ticketTypes.AssignRequest{EventID: ev.ID, Customer: holder("look@example.com")})
	require.NoError(t, err)

	look, err := e.Lookup(nil, &a.ShortCode, &ev.ID)
	require.NoError(t, err)
	assert.Equal(t, a.TicketID, look.TicketID)
	assert.Equal(t, a.ShortCode, look.ShortCode, "code lookups never hide the code")

	_, err = e.Lookup(nil, strPtr("999"), &ev.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestReassignHeldTicket(t *testing.T) {
	e, stub := newTestEngine(t)
	ev := makeEvent(t, e.DB)
	tt := makeType(t, e.DB, ev.ID, "GA", 700, nil)

	resp, err := e.Checkout(checkoutTypes.Request{
		EventID: ev.ID,
		Buyer:   holder("buyer@example.com"),
		Items:   []checkoutTypes.LineItem{{TicketTypeID: tt.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	stub.calls = nil

	tk, err := e.Reassign(ticketTypes.ReassignRequest{
		TicketID: resp.Tickets[0].TicketID,
		Holder:   holder("friend@example.com"),
	})
	require.NoError(t, err)

	assert.Equal(t, ticketModel.StatusAssigned, tk.Status)
	assert.NotNil(t, tk.ShortCode)
	assert.NotNil(t, tk.TicketNumber)
	assert.NotNil(t, tk.HolderContactID)

	require.Len(t, stub.calls, 1)
	assert.Equal(t, mailer.KindReservedHolder, stub.calls[0].Kind)
	assert.Equal(t, "friend@example.com", stub.calls[0].To)
}

func TestResendTicketRequiresPayment(t *testing.T) {
	e, stub := newTestEngine(t)
	ev := makeEvent(t, e.DB)

	a, err := e.Assign(ticketTypes.AssignRequest{EventID: ev.ID, Customer: holder("rs@example.com")})
	require.NoError(t, err)
	stub.calls = nil

	_, err = e.ResendTicket(ticketTypes.ResendRequest{TicketID: a.TicketID})
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrConflict)
	assert.Empty(t, stub.calls)

	_, err = e.Pay(ticketTypes.PayRequest{EventID: &ev.ID, Code: &a.ShortCode})
	require.NoError(t, err)
	stub.calls = nil

	resent, err := e.ResendTicket(ticketTypes.ResendRequest{TicketID: a.TicketID})
	require.NoError(t, err)
	assert.True(t, resent.Resent)
	require.Len(t, stub.calls, 1)
	assert.Equal(t, mailer.KindTicket, stub.calls[0].Kind)
}

func TestResendPayment(t *testing.T) {
	e, stub := newTestEngine(t)
	ev := makeEvent(t, e.DB)
	tt := makeType(t, e.DB, ev.ID, "GA", 650, nil)

	a, err := e.Assign(ticketTypes.AssignRequest{
		EventID:      ev.ID,
		Customer:     holder("due@example.com"),
		TicketTypeID: &tt.ID,
	})
	require.NoError(t, err)
	stub.calls = nil

	_, err = e.ResendPayment(ticketTypes.ResendRequest{TicketID: a.TicketID})
	require.NoError(t, err)

	require.Len(t, stub.calls, 1)
	call := stub.calls[0]
	assert.Equal(t, mailer.KindPayment, call.Kind)
	assert.Equal(t, 650, call.Ctx.TotalAmount)
	assert.Contains(t, call.Ctx.PayLink, "/pay?token=")
}
