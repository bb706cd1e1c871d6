package app

import (
	"nutriplan_backend/internal/email"
	"nutriplan_backend/internal/logger"
)

// MockEmailProvider logs instead of sending. Used when SMTP is not
// configured so local runs do not need a mail server.
type MockEmailProvider struct{}

func (m *MockEmailProvider) Send(msg *email.Email) error {
	logger.Info("[MOCK EMAIL] message suppressed",
		"to", msg.To,
		"subject", msg.Subject,
	)
	return nil
}

func (m *MockEmailProvider) SendPasswordReset(to, resetURL string) error {
	logger.Info("[MOCK EMAIL] password reset suppressed",
		"to", to,
		"resetURL", resetURL,
	)
	return nil
}
