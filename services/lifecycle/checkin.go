package lifecycle

import (
	"errors"
	"time"

	"event-ticketing/errs"
	ticketModel "event-ticketing/models/ticket"
	checkinTypes "event-ticketing/types/checkin"

	"gorm.io/gorm"
)

// CheckIn marks the ticket for (event, code) as checked in. A repeated
// scan is a conflict; the ticket stays checked in either way.
func (e *Engine) CheckIn(req checkinTypes.Request) (*checkinTypes.Response, error) {
	var resp checkinTypes.Response

	err := e.DB.Transaction(func(tx *gorm.DB) error {
		var t ticketModel.Ticket
		err := tx.Where("event_id = ? AND short_code = ?", req.EventID, req.Code).First(&t).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NotFoundf("no ticket with code %s for event %d", req.Code, req.EventID)
		}
		if err != nil {
			return err
		}
		if t.Status == ticketModel.StatusCheckedIn {
			return errs.Conflictf("ticket %d already checked in", t.ID)
		}

		previous := t.Status
		now := time.Now().UTC()
		t.Status = ticketModel.StatusCheckedIn
		t.CheckedInAt = &now
		if err := tx.Save(&t).Error; err != nil {
			return err
		}

		resp = checkinTypes.Response{
			TicketID:       t.ID,
			EventID:        t.EventID,
			ShortCode:      deref(t.ShortCode),
			PreviousStatus: previous.String(),
			NewStatus:      t.Status.String(),
			CheckedInAt:    t.CheckedInAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
