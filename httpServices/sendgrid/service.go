package sendgrid

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.sendgrid.com"

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// SendMail posts a single-recipient plain text message to the v3 mail send
// endpoint.
func (c *Client) SendMail(req MailRequest) error {
	payload := sendRequest{
		Personalizations: []personalization{
			{To: []address{{Email: req.ToEmail}}},
		},
		From:    address{Email: req.FromEmail},
		Subject: req.Subject,
		Content: []content{
			{Type: "text/plain", Value: req.TextBody},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequest("POST", c.baseURL+"/v3/mail/send", bytes.NewBuffer(body))
	if err != nil {
		return err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return errors.New("SendGrid API returned non-OK status: " + resp.Status)
	}

	return nil
}
