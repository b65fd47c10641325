// internal/notification/sender.go

package notification

import (
	"context"
	"fmt"
	"sync"
)

// Email is one outgoing message. HTML is optional.
type Email struct {
	To      string
	Subject string
	Body    string
	HTML    string
}

type SMS struct {
	To   string
	Body string
}

// EmailSender delivers email through one provider
type EmailSender interface {
	SendEmail(ctx context.Context, email *Email) error
}

// SMSSender delivers text messages through one provider
type SMSSender interface {
	SendSMS(ctx context.Context, sms *SMS) error
}

// ProviderConfig selects and configures the outbound providers
type ProviderConfig struct {
	EmailProvider  string // "smtp", "sendgrid", or "mock"
	EmailFrom      string
	EmailFromName  string
	SendGridAPIKey string
	SMTPHost       string
	SMTPPort       int
	SMTPUser       string
	SMTPPassword   string

	SMSProvider      string // "twilio" or "mock"
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
}

// NewEmailSender builds the configured email provider
func NewEmailSender(cfg ProviderConfig) (EmailSender, error) {
	switch cfg.EmailProvider {
	case "smtp":
		return NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.EmailFrom, cfg.EmailFromName), nil
	case "sendgrid":
		return NewSendGridSender(cfg.SendGridAPIKey, cfg.EmailFrom, cfg.EmailFromName), nil
	case "mock", "":
		return NewMockEmailSender(), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.EmailProvider)
	}
}

// NewSMSSender builds the configured SMS provider
func NewSMSSender(cfg ProviderConfig) (SMSSender, error) {
	switch cfg.SMSProvider {
	case "twilio":
		return NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber), nil
	case "mock", "":
		return NewMockSMSSender(), nil
	default:
		return nil, fmt.Errorf("unknown SMS provider %q", cfg.SMSProvider)
	}
}

// MockEmailSender records emails instead of sending them
type MockEmailSender struct {
	mu   sync.Mutex
	sent []Email
	Err  error
}

func NewMockEmailSender() *MockEmailSender {
	return &MockEmailSender{}
}

func (m *MockEmailSender) SendEmail(ctx context.Context, email *Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.sent = append(m.sent, *email)
	return nil
}

// Sent returns a copy of the recorded emails
func (m *MockEmailSender) Sent() []Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Email(nil), m.sent...)
}

// MockSMSSender records text messages instead of sending them
type MockSMSSender struct {
	mu   sync.Mutex
	sent []SMS
	Err  error
}

func NewMockSMSSender() *MockSMSSender {
	return &MockSMSSender{}
}

func (m *MockSMSSender) SendSMS(ctx context.Context, sms *SMS) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.sent = append(m.sent, *sms)
	return nil
}

func (m *MockSMSSender) Sent() []SMS {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SMS(nil), m.sent...)
}
