package mailer

import (
	"fmt"
	"time"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendRebuildFailed(component, reason string) error
	SendOpsAlert(subject, message string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
	alertEmail  string
}

// disabledEmailService is returned when SMTP is not configured; alerting
// is optional and every send becomes a no-op.
type disabledEmailService struct{}

func (disabledEmailService) SendRebuildFailed(string, string) error { return nil }
func (disabledEmailService) SendOpsAlert(string, string) error      { return nil }

func NewEmailService(host string, port int, username, password, senderName, alertEmail string) IEmailService {
	if host == "" || alertEmail == "" {
		return disabledEmailService{}
	}

	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: username,
		senderName:  senderName,
		alertEmail:  alertEmail,
	}
}

func (s *emailService) SendRebuildFailed(component, reason string) error {
	subject := fmt.Sprintf("[docs-assistant] %s rebuild failed", component)

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Rebuild failure</h2>
			<p>The %s rebuild failed at %s:</p>
			<pre style="background: #f5f5f5; padding: 10px;">%s</pre>
			<p>The engine keeps answering from the previous index until a rebuild succeeds.</p>
		</div>
	`, component, time.Now().Format(time.RFC3339), reason)

	return s.send(subject, body)
}

func (s *emailService) SendOpsAlert(subject, message string) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>%s</h2>
			<p>%s</p>
			<p>Sent at %s.</p>
		</div>
	`, subject, message, time.Now().Format(time.RFC3339))

	return s.send("[docs-assistant] "+subject, body)
}

func (s *emailService) send(subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", s.alertEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send %q to %s: %v\n", subject, s.alertEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Sent %q to %s\n", subject, s.alertEmail)
	return nil
}
