package notify

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// EmailNotifier — письмо на список адресов (обычно руководство).
type EmailNotifier struct {
	dialer *gomail.Dialer
	from   string
	to     []string
}

func NewEmailNotifier(smtpHost string, smtpPort int, smtpUser, smtpPassword, from string, to []string) *EmailNotifier {
	return &EmailNotifier{
		dialer: gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword),
		from:   from,
		to:     to,
	}
}

func (n *EmailNotifier) Notify(e Event) error {
	if len(n.to) == 0 {
		return nil
	}
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", n.to...)
	m.SetHeader("Subject", subjectFor(e))

	body := fmt.Sprintf(`
		<p>Deal #%d</p>
		<p>%s</p>
	`, e.DealID, e.Message)
	m.SetBody("text/html", body)

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send notification email: %w", err)
	}
	return nil
}

func subjectFor(e Event) string {
	switch e.Kind {
	case KindDiscountRequested:
		return "Discount approval requested"
	case KindDiscountDecided:
		return "Discount request decided"
	case KindDealWon:
		return "Deal won"
	}
	return "Deal update"
}
