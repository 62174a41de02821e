// Package email sends notification mail over SMTP.
package email

import (
	"fmt"

	"gopkg.in/mail.v2"
)

// Client sends plain-text messages with an optional HTML alternative.
type Client struct {
	dialer *mail.Dialer
	from   string
}

func NewClient(smtpHost string, smtpPort int, username, password, from string) *Client {
	return &Client{
		dialer: mail.NewDialer(smtpHost, smtpPort, username, password),
		from:   from,
	}
}

// Message is a single outgoing mail.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string // optional alternative part
}

// Build assembles the MIME message of m.
func (c *Client) Build(m Message) *mail.Message {
	message := mail.NewMessage()

	message.SetHeader("From", c.from)
	message.SetHeader("To", m.To)
	message.SetHeader("Subject", m.Subject)

	message.SetBody("text/plain", m.Text)
	if m.HTML != "" {
		message.AddAlternative("text/html", m.HTML)
	}

	return message
}

// Send delivers m through the configured SMTP server.
func (c *Client) Send(m Message) error {
	if err := c.dialer.DialAndSend(c.Build(m)); err != nil {
		return fmt.Errorf("send mail to %s: %w", m.To, err)
	}

	return nil
}
