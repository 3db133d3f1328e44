package lifecycle

import (
	"errors"

	"event-ticketing/errs"
	contactModel "event-ticketing/models/contact"
	ticketModel "event-ticketing/models/ticket"
	"event-ticketing/services/mailer"
	ticketTypes "event-ticketing/types/ticket"

	"gorm.io/gorm"
)

// Unassign releases an unpaid or waived ticket back to the pool. The
// printed number is freed for reuse; the short code stays on the row as an
// audit trail so the allocator never re-issues it while the row lives.
func (e *Engine) Unassign(req ticketTypes.ActionRequest) (*ticketModel.Ticket, error) {
	var (
		ticket *ticketModel.Ticket
		mails  []pendingMail
	)

	err := e.DB.Transaction(func(tx *gorm.DB) error {
		t, err := loadTicket(tx, req.TicketID)
		if err != nil {
			return err
		}
		if !t.CanUnassign() {
			return errs.Conflictf("unassign allowed only for unpaid or waived tickets, ticket %d is %s",
				t.ID, t.PaymentStatus)
		}

		holderEmail := holderEmailOf(tx, t)

		updates := map[string]interface{}{
			"ticket_number":     nil,
			"status":            ticketModel.StatusAvailable,
			"customer_id":       nil,
			"holder_contact_id": nil,
			"assigned_at":       nil,
			"delivered_at":      nil,
			"delivery_status":   ticketModel.DeliveryNotSent,
		}
		if err := tx.Model(t).Updates(updates).Error; err != nil {
			return err
		}

		if holderEmail != "" {
			ev, err := loadEvent(tx, t.EventID)
			if err != nil {
				return err
			}
			mails = append(mails, pendingMail{
				Kind: mailer.KindUnassign,
				To:   holderEmail,
				Ctx: mailer.Context{
					EventTitle:    ev.Title,
					EventDateTime: mailer.EventWhen(ev),
					Reason:        deref(req.Reason),
					Related:       mailer.Related{EventID: uintPtr(ev.ID), TicketID: uintPtr(t.ID)},
				},
			})
		}

		ticket = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.send(mails)
	return ticket, nil
}

func loadTicket(tx *gorm.DB, ticketID uint) (*ticketModel.Ticket, error) {
	var t ticketModel.Ticket
	if err := tx.First(&t, ticketID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFoundf("ticket %d not found", ticketID)
		}
		return nil, err
	}
	return &t, nil
}

// holderEmailOf resolves the best known email for a ticket's person,
// preferring the contact over the legacy customer row. Empty when the
// ticket has no holder.
func holderEmailOf(tx *gorm.DB, t *ticketModel.Ticket) string {
	if t.HolderContactID != nil {
		var ct contactModel.Contact
		if err := tx.First(&ct, *t.HolderContactID).Error; err == nil {
			return ct.Email
		}
	}
	if t.CustomerID != nil {
		var email *string
		tx.Table("customers").Select("email").Where("id = ?", *t.CustomerID).Scan(&email)
		if email != nil {
			return *email
		}
	}
	return ""
}

// holderOf is like holderEmailOf but returns the full contact when one is
// linked, synthesizing a bare contact from the legacy customer email
// otherwise.
func holderOf(tx *gorm.DB, t *ticketModel.Ticket) *contactModel.Contact {
	if t.HolderContactID != nil {
		var ct contactModel.Contact
		if err := tx.First(&ct, *t.HolderContactID).Error; err == nil {
			return &ct
		}
	}
	if email := holderEmailOf(tx, t); email != "" {
		return &contactModel.Contact{Email: email}
	}
	return nil
}
