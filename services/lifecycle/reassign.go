package lifecycle

import (
	"time"

	ticketModel "event-ticketing/models/ticket"
	"event-ticketing/services/allocator"
	"event-ticketing/services/identity"
	ticketTypes "event-ticketing/types/ticket"

	"gorm.io/gorm"
)

// Reassign rebinds a ticket to a new holder. A held ticket becomes
// assigned on its first holder, picking up a code and number if it has
// none yet. The new holder is mailed a reservation or the full ticket
// depending on the current payment state.
func (e *Engine) Reassign(req ticketTypes.ReassignRequest) (*ticketModel.Ticket, error) {
	var (
		ticket *ticketModel.Ticket
		mails  []pendingMail
	)

	err := e.DB.Transaction(func(tx *gorm.DB) error {
		t, err := loadTicket(tx, req.TicketID)
		if err != nil {
			return err
		}
		ev, err := loadEvent(tx, t.EventID)
		if err != nil {
			return err
		}

		contact, customer, err := identity.ResolveOrCreate(tx, req.Holder)
		if err != nil {
			return err
		}

		t.CustomerID = &customer.ID
		t.HolderContactID = &contact.ID
		if t.Status == ticketModel.StatusHeld {
			now := time.Now().UTC()
			t.Status = ticketModel.StatusAssigned
			t.AssignedAt = &now
		}
		if t.ShortCode == nil {
			code, err := allocator.ShortCode(tx, t.EventID)
			if err != nil {
				return err
			}
			t.ShortCode = &code
		}
		if t.TicketNumber == nil {
			if number, err := allocator.NextTicketNumber(tx, t.EventID); err == nil {
				t.TicketNumber = &number
			}
		}
		if err := tx.Save(t).Error; err != nil {
			return err
		}

		typeName := ""
		if t.TicketTypeID != nil {
			if tt, err := loadTicketType(tx, *t.TicketTypeID); err == nil {
				typeName = tt.Name
			}
		}
		mails = append(mails, assignmentMail(ev, t, contact, typeName))

		ticket = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.send(mails)
	return ticket, nil
}
