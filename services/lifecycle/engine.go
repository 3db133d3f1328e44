package lifecycle

import (
	eventModel "event-ticketing/models/event"
	"event-ticketing/services/mailer"

	"gorm.io/gorm"
)

// Engine runs every ticket state transition. Each operation is a single
// database transaction; notifications collected during the transaction are
// handed to the notifier only after the commit, and a notifier refusal is
// never surfaced to the caller.
type Engine struct {
	DB       *gorm.DB
	Notifier mailer.Notifier
}

func NewEngine(db *gorm.DB, notifier mailer.Notifier) *Engine {
	return &Engine{DB: db, Notifier: notifier}
}

type pendingMail struct {
	Kind mailer.Kind
	To   string
	Ctx  mailer.Context
}

func (e *Engine) send(mails []pendingMail) {
	for _, m := range mails {
		e.Notifier.Notify(m.Kind, m.To, m.Ctx)
	}
}

func eventLocation(ev *eventModel.Event) string {
	if ev.LocationName != nil {
		return *ev.LocationName
	}
	return ""
}

func uintPtr(v uint) *uint { return &v }

func loadTicketType(tx *gorm.DB, id uint) (*eventModel.TicketType, error) {
	var tt eventModel.TicketType
	if err := tx.First(&tt, id).Error; err != nil {
		return nil, err
	}
	return &tt, nil
}
