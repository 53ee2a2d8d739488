package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"portfolio/config"
	"portfolio/models"
)

// sendFunc matches smtp.SendMail.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type EmailService struct {
	host     string
	port     string
	user     string
	password string
	from     string
	to       string
	domain   string
	send     sendFunc
}

func NewEmailService(cfg config.Config) *EmailService {
	return &EmailService{
		host:     cfg.SMTP.Host,
		port:     cfg.SMTP.Port,
		user:     cfg.SMTP.User,
		password: cfg.SMTP.Password,
		from:     cfg.SMTP.From,
		to:       cfg.SMTP.To,
		domain:   cfg.App.Domain,
		send:     smtp.SendMail,
	}
}

// Enabled reports whether enough SMTP settings are present to send mail.
func (e *EmailService) Enabled() bool {
	return e != nil && e.host != "" && e.from != "" && e.to != ""
}

// SendContactNotification tells the site owner about a new contact message.
func (e *EmailService) SendContactNotification(msg *models.ContactMessage) error {
	if !e.Enabled() {
		return nil
	}

	subject := fmt.Sprintf("New contact message: %s", oneLine(msg.Subject))
	body := fmt.Sprintf(`You received a new message through the portfolio contact form.

From:    %s <%s>
Subject: %s

%s

---
Manage messages at %s/admin/contactmessage/
`, msg.Name, msg.Email, msg.Subject, msg.Message, strings.TrimRight(e.domain, "/"))

	message := fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Reply-To: %s\r\n"+
		"Subject: %s\r\n"+
		"\r\n"+
		"%s\r\n", e.from, e.to, oneLine(msg.Email), subject, body)

	var auth smtp.Auth
	if e.user != "" {
		auth = smtp.PlainAuth("", e.user, e.password, e.host)
	}
	port := e.port
	if port == "" {
		port = "587"
	}
	addr := fmt.Sprintf("%s:%s", e.host, port)

	if err := e.send(addr, auth, e.from, []string{e.to}, []byte(message)); err != nil {
		return fmt.Errorf("send contact notification: %w", err)
	}
	return nil
}

// oneLine strips line breaks so user input cannot inject headers.
func oneLine(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
