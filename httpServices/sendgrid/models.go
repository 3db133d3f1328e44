package sendgrid

// MailRequest is the transport-agnostic input to SendMail.
type MailRequest struct {
	FromEmail string
	ToEmail   string
	Subject   string
	TextBody  string
}

type sendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             address           `json:"from"`
	Subject          string            `json:"subject"`
	Content          []content         `json:"content"`
}

type personalization struct {
	To []address `json:"to"`
}

type address struct {
	Email string `json:"email"`
}

type content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}
