package lifecycle

import (
	"time"

	"event-ticketing/errs"
	contactModel "event-ticketing/models/contact"
	customerModel "event-ticketing/models/customer"
	eventModel "event-ticketing/models/event"
	purchaseModel "event-ticketing/models/purchase"
	ticketModel "event-ticketing/models/ticket"
	"event-ticketing/services/allocator"
	"event-ticketing/services/identity"
	"event-ticketing/services/mailer"
	checkoutTypes "event-ticketing/types/checkout"
	ticketTypes "event-ticketing/types/ticket"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Checkout creates one purchase with every ticket of the request in a
// single transaction. Line items with explicit assignees behave like
// per-holder assignments; quantity-only lines create buyer-owned held
// tickets with no code allocated yet. PayNow settles everything
// immediately and mails each holder their ticket; otherwise the buyer gets
// one aggregated reservation email with a 24 hour payment window.
func (e *Engine) Checkout(req checkoutTypes.Request) (*checkoutTypes.Response, error) {
	if len(req.Items) == 0 {
		return nil, errs.Validationf("checkout needs at least one line item")
	}
	for _, item := range req.Items {
		if len(item.Assignees) == 0 && item.Quantity <= 0 {
			return nil, errs.Validationf("line item for type %d has neither assignees nor a quantity", item.TicketTypeID)
		}
	}

	var (
		resp  checkoutTypes.Response
		mails []pendingMail
	)

	err := e.DB.Transaction(func(tx *gorm.DB) error {
		ev, err := loadEvent(tx, req.EventID)
		if err != nil {
			return err
		}

		buyer, buyerCustomer, err := identity.ResolveOrCreate(tx, req.Buyer)
		if err != nil {
			return err
		}

		p := purchaseModel.Purchase{UUID: uuid.NewString(), BuyerContactID: buyer.ID, Currency: "THB"}
		if err := tx.Create(&p).Error; err != nil {
			return err
		}

		var lines []mailer.Line
		total := 0

		for _, item := range req.Items {
			qty := lineQuantity(item)
			tt, err := checkTypeCapacityN(tx, req.EventID, item.TicketTypeID, qty)
			if err != nil {
				return err
			}

			total += qty * tt.Price
			lines = append(lines, mailer.Line{
				TypeName:  tt.Name,
				Quantity:  qty,
				UnitPrice: tt.Price,
				Subtotal:  qty * tt.Price,
			})

			if len(item.Assignees) > 0 {
				for _, holder := range item.Assignees {
					t, contact, err := checkoutAssign(tx, ev, &p, tt, holder, req.PayNow)
					if err != nil {
						return err
					}
					resp.Tickets = append(resp.Tickets, ticketResult(t, contact.Email))
					mails = append(mails, assignmentMail(ev, t, contact, tt.Name))
				}
				continue
			}

			for i := 0; i < item.Quantity; i++ {
				t, err := checkoutHold(tx, &p, tt, buyerCustomer, req.EventID, req.PayNow)
				if err != nil {
					return err
				}
				resp.Tickets = append(resp.Tickets, ticketResult(t, ""))
			}
		}

		p.TotalAmount = &total
		if err := tx.Save(&p).Error; err != nil {
			return err
		}

		resp.PurchaseID = p.ID
		resp.PurchaseGUID = p.UUID
		resp.TotalAmount = total
		resp.Currency = p.Currency

		if !req.PayNow {
			mails = append(mails, pendingMail{
				Kind: mailer.KindReservationBuyer,
				To:   buyer.Email,
				Ctx: mailer.Context{
					EventTitle:         ev.Title,
					EventDateTime:      mailer.EventWhen(ev),
					BuyerName:          buyer.FullName(),
					Lines:              lines,
					TotalAmount:        total,
					Currency:           p.Currency,
					ReservationExpires: mailer.ReservationExpires(),
					PayLink:            mailer.PurchasePayLink(p.UUID),
					Related:            mailer.Related{EventID: uintPtr(ev.ID), PurchaseID: uintPtr(p.ID)},
				},
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.send(mails)
	return &resp, nil
}

// checkoutAssign claims a slot for one named holder within a checkout.
func checkoutAssign(
	tx *gorm.DB,
	ev *eventModel.Event,
	p *purchaseModel.Purchase,
	tt *eventModel.TicketType,
	holder ticketTypes.HolderInput,
	payNow bool,
) (*ticketModel.Ticket, *contactModel.Contact, error) {
	t, err := claimOrCreate(tx, ev.ID)
	if err != nil {
		return nil, nil, err
	}

	contact, customer, err := identity.ResolveOrCreate(tx, holder)
	if err != nil {
		return nil, nil, err
	}

	code, err := allocator.ShortCode(tx, ev.ID)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	t.CustomerID = &customer.ID
	t.HolderContactID = &contact.ID
	t.PurchaseID = &p.ID
	t.TicketTypeID = &tt.ID
	t.ShortCode = &code
	t.Status = ticketModel.StatusAssigned
	t.AssignedAt = &now
	t.PaymentStatus = ticketModel.PaymentUnpaid
	if payNow {
		t.PaymentStatus = ticketModel.PaymentPaid
	}
	if t.TicketNumber == nil {
		if number, err := allocator.NextTicketNumber(tx, ev.ID); err == nil {
			t.TicketNumber = &number
		}
	}

	if err := tx.Save(t).Error; err != nil {
		return nil, nil, err
	}
	return t, contact, nil
}

// checkoutHold creates a buyer-owned held ticket. No holder is bound and
// no code is allocated; both happen later at reassign time.
func checkoutHold(
	tx *gorm.DB,
	p *purchaseModel.Purchase,
	tt *eventModel.TicketType,
	buyerCustomer *customerModel.Customer,
	eventID uint,
	payNow bool,
) (*ticketModel.Ticket, error) {
	t, err := claimOrCreate(tx, eventID)
	if err != nil {
		return nil, err
	}

	t.CustomerID = &buyerCustomer.ID
	t.HolderContactID = nil
	t.PurchaseID = &p.ID
	t.TicketTypeID = &tt.ID
	t.Status = ticketModel.StatusHeld
	t.PaymentStatus = ticketModel.PaymentUnpaid
	if payNow {
		t.PaymentStatus = ticketModel.PaymentPaid
	}

	if err := tx.Save(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

func lineQuantity(item checkoutTypes.LineItem) int {
	if len(item.Assignees) > 0 {
		return len(item.Assignees)
	}
	return item.Quantity
}

func ticketResult(t *ticketModel.Ticket, holderEmail string) checkoutTypes.TicketResult {
	r := checkoutTypes.TicketResult{
		TicketID:     t.ID,
		HolderEmail:  holderEmail,
		ShortCode:    deref(t.ShortCode),
		TicketNumber: deref(t.TicketNumber),
		Status:       t.Status.String(),
	}
	if t.TicketTypeID != nil {
		r.TicketTypeID = *t.TicketTypeID
	}
	return r
}

// checkTypeCapacityN is the multi-ticket variant of the capacity check: the
// whole line must fit under MaxQuantity, not just the first ticket.
func checkTypeCapacityN(tx *gorm.DB, eventID, ticketTypeID uint, qty int) (*eventModel.TicketType, error) {
	tt, err := checkTypeCapacity(tx, eventID, ticketTypeID)
	if err != nil {
		return nil, err
	}
	if tt.MaxQuantity == nil || qty <= 1 {
		return tt, nil
	}

	var used int64
	err = tx.Model(&ticketModel.Ticket{}).
		Where("event_id = ? AND ticket_type_id = ? AND status IN ?",
			eventID, ticketTypeID,
			[]ticketModel.TicketStatus{ticketModel.StatusHeld, ticketModel.StatusAssigned, ticketModel.StatusCheckedIn}).
		Count(&used).Error
	if err != nil {
		return nil, err
	}
	if used+int64(qty) > int64(*tt.MaxQuantity) {
		return nil, errs.CapacityExceededf("ticket type %q cannot fit %d more tickets", tt.Name, qty)
	}
	return tt, nil
}
