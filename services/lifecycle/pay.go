package lifecycle

import (
	"errors"

	"event-ticketing/errs"
	contactModel "event-ticketing/models/contact"
	eventModel "event-ticketing/models/event"
	purchaseModel "event-ticketing/models/purchase"
	ticketModel "event-ticketing/models/ticket"
	"event-ticketing/services/mailer"
	ticketTypes "event-ticketing/types/ticket"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Pay settles a single ticket, located either by its opaque token or by
// event id plus short code. A ticket paid outside a checkout gets a
// purchase created lazily so every settled ticket traces to one. The full
// ticket email goes out once the payment is recorded.
func (e *Engine) Pay(req ticketTypes.PayRequest) (*ticketTypes.PayResponse, error) {
	var (
		ticket *ticketModel.Ticket
		mails  []pendingMail
	)

	err := e.DB.Transaction(func(tx *gorm.DB) error {
		t, err := findForPay(tx, req)
		if err != nil {
			return err
		}

		t.PaymentStatus = ticketModel.PaymentPaid
		if t.PurchaseID == nil && t.HolderContactID != nil {
			p := purchaseModel.Purchase{UUID: uuid.NewString(), BuyerContactID: *t.HolderContactID, Currency: "THB"}
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
			t.PurchaseID = &p.ID
		}
		if err := tx.Save(t).Error; err != nil {
			return err
		}

		if holder := holderOf(tx, t); holder != nil && t.ShortCode != nil {
			ev, err := loadEvent(tx, t.EventID)
			if err != nil {
				return err
			}
			mails = append(mails, assignmentMail(ev, t, holder, ""))
		}

		ticket = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.send(mails)

	return &ticketTypes.PayResponse{
		TicketID:      ticket.ID,
		EventID:       ticket.EventID,
		ShortCode:     deref(ticket.ShortCode),
		PaymentStatus: ticket.PaymentStatus.String(),
		Status:        ticket.Status.String(),
	}, nil
}

func findForPay(tx *gorm.DB, req ticketTypes.PayRequest) (*ticketModel.Ticket, error) {
	var t ticketModel.Ticket
	switch {
	case req.Token != nil:
		err := tx.Where("uuid = ?", *req.Token).First(&t).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFoundf("no ticket for token")
		}
		if err != nil {
			return nil, err
		}
	case req.EventID != nil && req.Code != nil:
		err := tx.Where("event_id = ? AND short_code = ?", *req.EventID, *req.Code).First(&t).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFoundf("no ticket with code %s for event %d", *req.Code, *req.EventID)
		}
		if err != nil {
			return nil, err
		}
	default:
		return nil, errs.Validationf("either token or event_id+code is required")
	}
	return &t, nil
}

// Lookup resolves a ticket for the public ticket and payment pages. A
// token lookup blanks the short code until the ticket is paid, so a
// forwarded payment link cannot be used at the gate.
func (e *Engine) Lookup(token, code *string, eventID *uint) (*ticketTypes.LookupResponse, error) {
	var t ticketModel.Ticket

	switch {
	case token != nil:
		err := e.DB.Where("uuid = ?", *token).First(&t).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFoundf("no ticket for token")
		}
		if err != nil {
			return nil, err
		}
	case code != nil:
		q := e.DB.Where("short_code = ?", *code)
		if eventID != nil {
			q = q.Where("event_id = ?", *eventID)
		}
		var tickets []ticketModel.Ticket
		if err := q.Order("id asc").Find(&tickets).Error; err != nil {
			return nil, err
		}
		if len(tickets) == 0 {
			return nil, errs.NotFoundf("no ticket with code %s", *code)
		}
		if eventID == nil && len(tickets) > 1 {
			return nil, errs.Conflictf("multiple tickets share code %s, supply event_id", *code)
		}
		t = tickets[0]
	default:
		return nil, errs.Validationf("code or token required")
	}

	ev, err := loadEvent(e.DB, t.EventID)
	if err != nil {
		return nil, err
	}

	shortCode := deref(t.ShortCode)
	if token != nil && t.PaymentStatus != ticketModel.PaymentPaid {
		shortCode = ""
	}
	return &ticketTypes.LookupResponse{
		TicketID:      t.ID,
		EventID:       t.EventID,
		ShortCode:     shortCode,
		PaymentStatus: t.PaymentStatus.String(),
		Status:        t.Status.String(),
		EventTitle:    ev.Title,
	}, nil
}

// ResendCode re-sends whichever email matches the ticket's payment state:
// the reservation with a pay link while unpaid, the ticket itself
// otherwise.
func (e *Engine) ResendCode(req ticketTypes.ResendRequest) (*ticketTypes.ResendResponse, error) {
	t, err := loadTicket(e.DB, req.TicketID)
	if err != nil {
		return nil, err
	}
	if t.ShortCode == nil {
		return nil, errs.Validationf("ticket %d has no code to resend", t.ID)
	}
	holder := holderOf(e.DB, t)
	if holder == nil {
		return nil, errs.Validationf("ticket %d has no holder email", t.ID)
	}
	ev, err := loadEvent(e.DB, t.EventID)
	if err != nil {
		return nil, err
	}

	if t.PaymentStatus == ticketModel.PaymentUnpaid {
		e.Notifier.Notify(mailer.KindPayment, holder.Email, e.paymentContext(ev, t, holder))
	} else {
		e.send([]pendingMail{assignmentMail(ev, t, holder, "")})
	}
	return &ticketTypes.ResendResponse{TicketID: t.ID, Resent: true}, nil
}

// ResendPayment re-sends the payment request for one unpaid ticket.
func (e *Engine) ResendPayment(req ticketTypes.ResendRequest) (*ticketTypes.ResendResponse, error) {
	t, err := loadTicket(e.DB, req.TicketID)
	if err != nil {
		return nil, err
	}
	holder := holderOf(e.DB, t)
	if holder == nil {
		return nil, errs.Validationf("ticket %d has no holder email", t.ID)
	}
	ev, err := loadEvent(e.DB, t.EventID)
	if err != nil {
		return nil, err
	}

	e.Notifier.Notify(mailer.KindPayment, holder.Email, e.paymentContext(ev, t, holder))
	return &ticketTypes.ResendResponse{TicketID: t.ID, Resent: true}, nil
}

// ResendTicket re-sends the ticket email. Refused until payment is
// complete so the entry code never ships for an unsettled ticket.
func (e *Engine) ResendTicket(req ticketTypes.ResendRequest) (*ticketTypes.ResendResponse, error) {
	t, err := loadTicket(e.DB, req.TicketID)
	if err != nil {
		return nil, err
	}
	if t.PaymentStatus != ticketModel.PaymentPaid {
		return nil, errs.Conflictf("ticket %d is %s, cannot resend until paid", t.ID, t.PaymentStatus)
	}
	if t.ShortCode == nil {
		return nil, errs.Validationf("ticket %d has no code", t.ID)
	}
	holder := holderOf(e.DB, t)
	if holder == nil {
		return nil, errs.Validationf("ticket %d has no holder email", t.ID)
	}
	ev, err := loadEvent(e.DB, t.EventID)
	if err != nil {
		return nil, err
	}

	e.send([]pendingMail{assignmentMail(ev, t, holder, "")})
	return &ticketTypes.ResendResponse{TicketID: t.ID, Resent: true}, nil
}

// paymentContext builds the single-ticket payment email: one line for the
// ticket's type, the token pay link and the standard 24 hour window.
func (e *Engine) paymentContext(ev *eventModel.Event, t *ticketModel.Ticket, holder *contactModel.Contact) mailer.Context {
	typeName := "Ticket"
	price := 0
	if t.TicketTypeID != nil {
		if tt, err := loadTicketType(e.DB, *t.TicketTypeID); err == nil {
			typeName = tt.Name
			price = tt.Price
		}
	}
	return mailer.Context{
		EventTitle:         ev.Title,
		EventDateTime:      mailer.EventWhen(ev),
		BuyerName:          holder.FullName(),
		Lines:              []mailer.Line{{TypeName: typeName, Quantity: 1, UnitPrice: price, Subtotal: price}},
		TotalAmount:        price,
		Currency:           "THB",
		ReservationExpires: mailer.ReservationExpires(),
		PayLink:            mailer.PayLink(t.UUID),
		Related:            mailer.Related{EventID: uintPtr(ev.ID), TicketID: uintPtr(t.ID)},
	}
}
