package email

// Provider sends transactional mail.
type Provider interface {
	Send(email *Email) error
	SendPasswordReset(to, resetURL string) error
}

// Email is one outgoing message.
type Email struct {
	From    string
	To      []string
	Subject string
	Body    string
}
