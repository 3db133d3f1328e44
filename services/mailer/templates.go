package mailer

import (
	"bytes"
	"fmt"
	"text/template"
)

type rendered struct {
	Subject string
	Text    string
}

var bodyTemplates = template.Must(template.New("mail").Parse(`
{{define "reservation_confirmation_buyer"}}Hi {{.BuyerName}},

Your reservation for {{.EventTitle}} is confirmed.
{{range .Lines}}  {{.Quantity}} x {{.TypeName}} @ {{.UnitPrice}} = {{.Subtotal}}
{{end}}Total: {{.TotalAmount}} {{.Currency}}

{{if .PayLink}}Complete your payment here: {{.PayLink}}
The reservation is held until {{.ReservationExpires}}.{{else}}No payment is due.{{end}}
{{end}}

{{define "reserved_assignment_holder"}}Hi {{.HolderName}},

A ticket for {{.EventTitle}} ({{.EventDateTime}}) has been reserved in your
name{{if .TicketTypeName}} ({{.TicketTypeName}}){{end}}. You will receive your
entry code once the reservation is settled.
{{end}}

{{define "ticket_email"}}Hi {{.HolderName}},

Here is your ticket for {{.EventTitle}}.

  Entry code: {{.ShortCode}}
  Ticket number: {{.TicketNumber}}
  When: {{.EventDateTime}}
{{if .EventLocation}}  Where: {{.EventLocation}}
{{end}}
Show the entry code at the gate.{{if .ViewLink}} You can also open your ticket
online: {{.ViewLink}}{{end}}
{{end}}

{{define "payment_email"}}Hi {{.BuyerName}},

Payment is pending for your reservation at {{.EventTitle}}.
{{range .Lines}}  {{.Quantity}} x {{.TypeName}} @ {{.UnitPrice}} = {{.Subtotal}}
{{end}}Total due: {{.TotalAmount}} {{.Currency}}

Pay here: {{.PayLink}}
The reservation is held until {{.ReservationExpires}}.
{{end}}

{{define "unassign_email"}}Hi {{.HolderName}},

Your reservation for {{.EventTitle}} has been released{{if .Reason}} ({{.Reason}}){{end}}.
If this was unexpected, please contact the organizer.
{{end}}

{{define "refund_initiated_email"}}Hi {{.HolderName}},

A refund has been initiated for your ticket to {{.EventTitle}}. Your entry
code is no longer valid. The refund will be confirmed separately.
{{end}}
`))

var subjects = map[Kind]string{
	KindReservationBuyer: "Reservation confirmed: %s",
	KindReservedHolder:   "Your spot at %s is reserved",
	KindTicket:           "Your ticket for %s",
	KindPayment:          "Payment pending: %s",
	KindUnassign:         "Reservation released: %s",
	KindRefundInitiated:  "Refund initiated: %s",
}

// render produces the subject and text body for a kind, or an error when the
// kind has no registered template.
func render(kind Kind, ctx Context) (rendered, error) {
	subject, ok := subjects[kind]
	if !ok {
		return rendered{}, fmt.Errorf("unknown mail template %q", kind)
	}

	var buf bytes.Buffer
	if err := bodyTemplates.ExecuteTemplate(&buf, string(kind), ctx); err != nil {
		return rendered{}, err
	}
	return rendered{
		Subject: fmt.Sprintf(subject, ctx.EventTitle),
		Text:    buf.String(),
	}, nil
}
