package lifecycle

import (
	"errors"
	"time"

	"event-ticketing/errs"
	contactModel "event-ticketing/models/contact"
	eventModel "event-ticketing/models/event"
	purchaseModel "event-ticketing/models/purchase"
	ticketModel "event-ticketing/models/ticket"
	"event-ticketing/services/allocator"
	"event-ticketing/services/identity"
	"event-ticketing/services/mailer"
	ticketTypes "event-ticketing/types/ticket"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Assign claims the lowest-id available ticket for the event (creating one
// when none exists), binds the holder, allocates code and number, and moves
// the ticket to assigned. A paid or waived assignment also opens a purchase
// for the holder.
func (e *Engine) Assign(req ticketTypes.AssignRequest) (*ticketTypes.AssignResponse, error) {
	var (
		ticket *ticketModel.Ticket
		mails  []pendingMail
	)

	err := e.DB.Transaction(func(tx *gorm.DB) error {
		ev, err := loadEvent(tx, req.EventID)
		if err != nil {
			return err
		}

		ticket, err = claimOrCreate(tx, req.EventID)
		if err != nil {
			return err
		}

		var typeName string
		if req.TicketTypeID != nil {
			tt, err := checkTypeCapacity(tx, req.EventID, *req.TicketTypeID)
			if err != nil {
				return err
			}
			typeName = tt.Name
		}

		contact, customer, err := identity.ResolveOrCreate(tx, req.Customer)
		if err != nil {
			return err
		}

		code, err := resolveCode(tx, req.EventID, req.DesiredShortCode)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		ticket.CustomerID = &customer.ID
		ticket.HolderContactID = &contact.ID
		ticket.ShortCode = &code
		ticket.TicketTypeID = req.TicketTypeID
		ticket.Status = ticketModel.StatusAssigned
		ticket.AssignedAt = &now
		ticket.PaymentStatus = ticketModel.PaymentUnpaid
		if req.PaymentStatus != nil {
			ps := ticketModel.PaymentStatus(*req.PaymentStatus)
			if ps != ticketModel.PaymentUnpaid && !ps.Settled() {
				return errs.Validationf("payment_status %q not allowed at assignment", *req.PaymentStatus)
			}
			ticket.PaymentStatus = ps
		}

		// Number allocation is best effort; a missing number never blocks
		// the assignment.
		if ticket.TicketNumber == nil {
			if number, err := allocator.NextTicketNumber(tx, req.EventID); err == nil {
				ticket.TicketNumber = &number
			}
		}

		if ticket.PaymentStatus.Settled() {
			p := purchaseModel.Purchase{UUID: uuid.NewString(), BuyerContactID: contact.ID}
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
			ticket.PurchaseID = &p.ID
		}

		if err := tx.Save(ticket).Error; err != nil {
			return err
		}

		mails = append(mails, assignmentMail(ev, ticket, contact, typeName))
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.send(mails)

	return &ticketTypes.AssignResponse{
		TicketID:      ticket.ID,
		EventID:       ticket.EventID,
		CustomerEmail: contactModel.NormalizeEmail(req.Customer.Email),
		ShortCode:     deref(ticket.ShortCode),
		TicketNumber:  deref(ticket.TicketNumber),
		Status:        ticket.Status.String(),
	}, nil
}

// Preview reserves nothing: it reports the code the allocator would hand
// out right now so staff can read it to a caller before committing.
func (e *Engine) Preview(req ticketTypes.AssignPreviewRequest) (*ticketTypes.AssignPreviewResponse, error) {
	ev, err := loadEvent(e.DB, req.EventID)
	if err != nil {
		return nil, err
	}
	code, err := allocator.ShortCode(e.DB, req.EventID)
	if err != nil {
		return nil, err
	}
	return &ticketTypes.AssignPreviewResponse{
		EventID:    req.EventID,
		ShortCode:  code,
		EventTitle: ev.Title,
		StartsAt:   ev.StartsAt,
	}, nil
}

func loadEvent(tx *gorm.DB, eventID uint) (*eventModel.Event, error) {
	var ev eventModel.Event
	if err := tx.First(&ev, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFoundf("event %d not found", eventID)
		}
		return nil, err
	}
	return &ev, nil
}

// claimOrCreate picks the lowest-id available ticket for FIFO slot reuse,
// creating a fresh slot when none is free.
func claimOrCreate(tx *gorm.DB, eventID uint) (*ticketModel.Ticket, error) {
	var t ticketModel.Ticket
	err := tx.Where("event_id = ? AND status = ?", eventID, ticketModel.StatusAvailable).
		Order("id asc").
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		t = ticketModel.Ticket{UUID: uuid.NewString(), EventID: eventID}
		if err := tx.Create(&t).Error; err != nil {
			return nil, err
		}
		return &t, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// checkTypeCapacity validates the type belongs to the event and that its
// MaxQuantity, when set, is not yet consumed by held, assigned or
// checked-in tickets.
func checkTypeCapacity(tx *gorm.DB, eventID, ticketTypeID uint) (*eventModel.TicketType, error) {
	var tt eventModel.TicketType
	if err := tx.First(&tt, ticketTypeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Validationf("ticket type %d not found", ticketTypeID)
		}
		return nil, err
	}
	if tt.EventID != eventID {
		return nil, errs.Validationf("ticket type %d does not belong to event %d", ticketTypeID, eventID)
	}
	if tt.MaxQuantity == nil {
		return &tt, nil
	}

	var used int64
	err := tx.Model(&ticketModel.Ticket{}).
		Where("event_id = ? AND ticket_type_id = ? AND status IN ?",
			eventID, ticketTypeID,
			[]ticketModel.TicketStatus{ticketModel.StatusHeld, ticketModel.StatusAssigned, ticketModel.StatusCheckedIn}).
		Count(&used).Error
	if err != nil {
		return nil, err
	}
	if used >= int64(*tt.MaxQuantity) {
		return nil, errs.CapacityExceededf("ticket type %q is at its limit of %d", tt.Name, *tt.MaxQuantity)
	}
	return &tt, nil
}

func resolveCode(tx *gorm.DB, eventID uint, desired *string) (string, error) {
	if desired != nil {
		free, err := allocator.CodeFree(tx, eventID, *desired)
		if err != nil {
			return "", err
		}
		if !free {
			return "", errs.CodeConflictf("code %s already used for event %d", *desired, eventID)
		}
		return *desired, nil
	}
	return allocator.ShortCode(tx, eventID)
}

// assignmentMail picks the notification matching the ticket's payment
// state: a reservation notice while unpaid, the full ticket otherwise.
func assignmentMail(ev *eventModel.Event, t *ticketModel.Ticket, contact *contactModel.Contact, typeName string) pendingMail {
	related := mailer.Related{EventID: uintPtr(ev.ID), TicketID: uintPtr(t.ID)}
	if t.PaymentStatus == ticketModel.PaymentUnpaid {
		return pendingMail{
			Kind: mailer.KindReservedHolder,
			To:   contact.Email,
			Ctx: mailer.Context{
				EventTitle:         ev.Title,
				EventDateTime:      mailer.EventWhen(ev),
				HolderName:         contact.FullName(),
				TicketTypeName:     typeName,
				ReservationExpires: mailer.ReservationExpires(),
				ViewLink:           mailer.ViewLink(t.UUID),
				Related:            related,
			},
		}
	}
	return pendingMail{
		Kind: mailer.KindTicket,
		To:   contact.Email,
		Ctx: mailer.Context{
			EventTitle:    ev.Title,
			EventDateTime: mailer.EventWhen(ev),
			EventLocation: eventLocation(ev),
			HolderName:    contact.FullName(),
			ShortCode:     deref(t.ShortCode),
			TicketNumber:  deref(t.TicketNumber),
			ViewLink:      mailer.ViewLink(t.UUID),
			Related:       related,
		},
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
