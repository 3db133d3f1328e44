package mailer

import (
	"fmt"
	"net/smtp"
	"os"

	"event-ticketing/httpServices/sendgrid"
	"event-ticketing/logger"
)

// Message is a fully rendered email handed to a transport.
type Message struct {
	To      string
	From    string
	Subject string
	Text    string
}

// Transport delivers a rendered message. Implementations are selected by
// the MAIL_TRANSPORT environment variable: console, smtp or sendgrid.
type Transport interface {
	Send(msg Message) error
}

// TransportFromEnv builds the configured transport. The console transport
// is the default so local development never needs mail credentials.
func TransportFromEnv() Transport {
	switch os.Getenv("MAIL_TRANSPORT") {
	case "smtp":
		return &SMTPTransport{
			Addr:     os.Getenv("SMTP_ADDR"),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			Host:     os.Getenv("SMTP_HOST"),
		}
	case "sendgrid":
		return &SendGridTransport{
			Client: sendgrid.NewClient(os.Getenv("SENDGRID_BASE_URL"), os.Getenv("SENDGRID_API_KEY")),
		}
	default:
		return &ConsoleTransport{}
	}
}

// ConsoleTransport prints the message instead of sending it.
type ConsoleTransport struct{}

func (t *ConsoleTransport) Send(msg Message) error {
	logger.Info(fmt.Sprintf("mail to=%s subject=%q\n%s", msg.To, msg.Subject, msg.Text))
	return nil
}

// SMTPTransport sends through a plain SMTP relay.
type SMTPTransport struct {
	Addr     string
	Username string
	Password string
	Host     string
}

func (t *SMTPTransport) Send(msg Message) error {
	var auth smtp.Auth
	if t.Username != "" {
		auth = smtp.PlainAuth("", t.Username, t.Password, t.Host)
	}
	body := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		msg.From, msg.To, msg.Subject, msg.Text)
	return smtp.SendMail(t.Addr, auth, msg.From, []string{msg.To}, []byte(body))
}

// SendGridTransport sends through the SendGrid HTTP API.
type SendGridTransport struct {
	Client *sendgrid.Client
}

func (t *SendGridTransport) Send(msg Message) error {
	return t.Client.SendMail(sendgrid.MailRequest{
		FromEmail: msg.From,
		ToEmail:   msg.To,
		Subject:   msg.Subject,
		TextBody:  msg.Text,
	})
}
