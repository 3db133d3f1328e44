package lifecycle

import (
	"event-ticketing/errs"
	ticketModel "event-ticketing/models/ticket"
	"event-ticketing/services/mailer"
	ticketTypes "event-ticketing/types/ticket"

	"gorm.io/gorm"
)

// Refund starts the refund of a paid ticket: the printed number is
// released and payment_status moves to refunding. A checked-in ticket
// keeps its status and is flagged attendance_refunded instead, so the
// attendance record survives the refund.
func (e *Engine) Refund(req ticketTypes.ActionRequest) (*ticketModel.Ticket, error) {
	var (
		ticket *ticketModel.Ticket
		mails  []pendingMail
	)

	err := e.DB.Transaction(func(tx *gorm.DB) error {
		t, err := loadTicket(tx, req.TicketID)
		if err != nil {
			return err
		}
		if !t.CanRefund() {
			return errs.Conflictf("refund allowed only for paid tickets, ticket %d is %s", t.ID, t.PaymentStatus)
		}

		updates := map[string]interface{}{
			"ticket_number":  nil,
			"payment_status": ticketModel.PaymentRefunding,
		}
		if t.Status == ticketModel.StatusCheckedIn {
			updates["attendance_refunded"] = true
		}
		if err := tx.Model(t).Updates(updates).Error; err != nil {
			return err
		}

		if email := holderEmailOf(tx, t); email != "" {
			ev, err := loadEvent(tx, t.EventID)
			if err != nil {
				return err
			}
			mails = append(mails, pendingMail{
				Kind: mailer.KindRefundInitiated,
				To:   email,
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

// FinalizeRefund settles a refunding ticket to refunded once the money has
// actually moved.
func (e *Engine) FinalizeRefund(ticketID uint) (*ticketModel.Ticket, error) {
	var ticket *ticketModel.Ticket

	err := e.DB.Transaction(func(tx *gorm.DB) error {
		t, err := loadTicket(tx, ticketID)
		if err != nil {
			return err
		}
		if t.PaymentStatus != ticketModel.PaymentRefunding {
			return errs.Conflictf("ticket %d is %s, not refunding", t.ID, t.PaymentStatus)
		}
		if err := tx.Model(t).Update("payment_status", ticketModel.PaymentRefunded).Error; err != nil {
			return err
		}
		ticket = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// Void cancels a settled ticket entirely: payment_status moves to voiding
// and the seat state goes terminal.
func (e *Engine) Void(req ticketTypes.ActionRequest) (*ticketModel.Ticket, error) {
	var ticket *ticketModel.Ticket

	err := e.DB.Transaction(func(tx *gorm.DB) error {
		t, err := loadTicket(tx, req.TicketID)
		if err != nil {
			return err
		}
		if !t.PaymentStatus.Settled() {
			return errs.Conflictf("void allowed only for paid or waived tickets, ticket %d is %s",
				t.ID, t.PaymentStatus)
		}

		updates := map[string]interface{}{
			"ticket_number":  nil,
			"payment_status": ticketModel.PaymentVoiding,
			"status":         ticketModel.StatusVoid,
		}
		if err := tx.Model(t).Updates(updates).Error; err != nil {
			return err
		}
		ticket = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// FinalizeVoid settles a voiding ticket to voided.
func (e *Engine) FinalizeVoid(ticketID uint) (*ticketModel.Ticket, error) {
	var ticket *ticketModel.Ticket

	err := e.DB.Transaction(func(tx *gorm.DB) error {
		t, err := loadTicket(tx, ticketID)
		if err != nil {
			return err
		}
		if t.PaymentStatus != ticketModel.PaymentVoiding {
			return errs.Conflictf("ticket %d is %s, not voiding", t.ID, t.PaymentStatus)
		}
		if err := tx.Model(t).Update("payment_status", ticketModel.PaymentVoided).Error; err != nil {
			return err
		}
		ticket = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}
