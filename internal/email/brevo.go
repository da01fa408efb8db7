// Package email submits transactional email through the Brevo API and
// renders the lead and recap HTML bodies.
package email

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
)

const (
	brevoURL     = "https://api.brevo.com/v3/smtp/email"
	brevoTimeout = 10 * time.Second
)

// Contact is a Brevo sender, recipient or reply-to address.
type Contact struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Message is one transactional email.
type Message struct {
	Sender      Contact   `json:"sender"`
	To          []Contact `json:"to"`
	ReplyTo     *Contact  `json:"replyTo,omitempty"`
	Subject     string    `json:"subject"`
	HTMLContent string    `json:"htmlContent"`
}

// Client submits email through Brevo. A zero API key is a
// configuration error surfaced by the handlers, not here.
type Client struct {
	apiKey string
	http   *fasthttp.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey: apiKey,
		http:   &fasthttp.Client{},
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Send submits one message. Exactly one attempt is made; failures are
// reported once and never retried.
func (c *Client) Send(msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode email: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(brevoURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("api-key", c.apiKey)
	req.SetBody(body)

	if err := c.http.DoTimeout(req, resp, brevoTimeout); err != nil {
		return fmt.Errorf("brevo request: %w", err)
	}
	if resp.StatusCode() >= 300 {
		return fmt.Errorf("brevo status %d: %s", resp.StatusCode(), resp.Body())
	}
	return nil
}
