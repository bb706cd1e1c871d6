package email

import (
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPConfig holds the SMTP server settings.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

// SMTPProvider implements Provider over net/smtp.
type SMTPProvider struct {
	config *SMTPConfig
	auth   smtp.Auth
}

func NewSMTPProvider(config *SMTPConfig) *SMTPProvider {
	var auth smtp.Auth
	if config.Username != "" && config.Password != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}

	return &SMTPProvider{
		config: config,
		auth:   auth,
	}
}

func (p *SMTPProvider) Send(email *Email) error {
	if p.config.Host == "" {
		return fmt.Errorf("SMTP host is required")
	}
	if p.config.Port <= 0 || p.config.Port > 65535 {
		return fmt.Errorf("invalid SMTP port: %d", p.config.Port)
	}

	from := email.From
	if from == "" {
		from = p.config.FromEmail
	}

	builder := &strings.Builder{}
	builder.WriteString(fmt.Sprintf("From: %s\r\n", from))
	builder.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(email.To, ",")))
	builder.WriteString(fmt.Sprintf("Subject: %s\r\n", email.Subject))
	builder.WriteString("MIME-Version: 1.0\r\n")
	builder.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	builder.WriteString("\r\n")
	builder.WriteString(email.Body)

	addr := fmt.Sprintf("%s:%d", p.config.Host, p.config.Port)
	return smtp.SendMail(addr, p.auth, from, email.To, []byte(builder.String()))
}

func (p *SMTPProvider) SendPasswordReset(to, resetURL string) error {
	body := fmt.Sprintf(
		"We received a request to reset your password.\r\n\r\n"+
			"Follow this link to choose a new one:\r\n%s\r\n\r\n"+
			"The link expires in one hour. If you did not request this, ignore this message.\r\n",
		resetURL,
	)

	return p.Send(&Email{
		To:      []string{to},
		Subject: "Reset your password",
		Body:    body,
	})
}
