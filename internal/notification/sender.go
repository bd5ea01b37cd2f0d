package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/smtp"
	"time"
)

// EmailSender and SMSSender are the opaque delivery collaborators; the
// dispatcher never looks past these interfaces.
type EmailSender interface {
	Send(to, subject, htmlBody string) error
}

type SMSSender interface {
	Send(to, body string) error
}

// SMTPEmailSender delivers over a plain SMTP relay.
type SMTPEmailSender struct {
	Addr     string
	From     string
	Username string
	Password string
	Host     string
}

func (s *SMTPEmailSender) Send(to, subject, htmlBody string) error {
	msg := bytes.Buffer{}
	fmt.Fprintf(&msg, "From: %s\r\n", s.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	var auth smtp.Auth
	if s.Username != "" {
		auth = smtp.PlainAuth("", s.Username, s.Password, s.Host)
	}

	if err := smtp.SendMail(s.Addr, auth, s.From, []string{to}, msg.Bytes()); err != nil {
		return fmt.Errorf("email send: %w", err)
	}
	return nil
}

// HTTPSMSSender posts messages to an SMS gateway endpoint.
type HTTPSMSSender struct {
	APIURL   string
	APIKey   string
	SenderID string
	Client   *http.Client
}

type smsPayload struct {
	To      string `json:"to"`
	From    string `json:"from"`
	SMS     string `json:"sms"`
	Type    string `json:"type"`
	Channel string `json:"channel"`
	APIKey  string `json:"api_key"`
}

func (s *HTTPSMSSender) Send(to, body string) error {
	payload, err := json.Marshal(smsPayload{
		To:      to,
		From:    s.SenderID,
		SMS:     "TrashBeta Notification: " + body,
		Type:    "plain",
		Channel: "generic",
		APIKey:  s.APIKey,
	})
	if err != nil {
		return err
	}

	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	resp, err := client.Post(s.APIURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("sms send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("sms send: gateway returned %s", resp.Status)
	}
	return nil
}
