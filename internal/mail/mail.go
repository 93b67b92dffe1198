package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// DeliverySubject is the subject line of passage emails.
const DeliverySubject = "Your verses for today"

// Dialer sends composed messages. *gomail.Dialer satisfies it.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type Mailer struct {
	FromName string
	From     string
	dialer   Dialer
}

func NewMail(from, fromName, password, host string, port int) *Mailer {
	return &Mailer{
		FromName: fromName,
		From:     from,
		dialer:   gomail.NewDialer(host, port, from, password),
	}
}

// NewMailWithDialer is NewMail with an explicit transport.
func NewMailWithDialer(from, fromName string, d Dialer) *Mailer {
	return &Mailer{FromName: fromName, From: from, dialer: d}
}

// SendHTML renders an embedded template and sends it.
func (m *Mailer) SendHTML(to, subject, templateName string, data any) error {
	body, err := render(templateName, data)
	if err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.From, m.FromName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}

func render(templateName string, data any) (string, error) {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, templateName, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return body.String(), nil
}

type deliveryData struct {
	Passages [][]string
}

// SendDelivery emails formatted passages. Blank lines separate passages.
func (m *Mailer) SendDelivery(to, text string) error {
	return m.SendHTML(to, DeliverySubject, "passages.html", deliveryDataFor(text))
}

func deliveryDataFor(text string) deliveryData {
	var data deliveryData
	for _, block := range strings.Split(text, "\n\n") {
		if block = strings.TrimSpace(block); block != "" {
			data.Passages = append(data.Passages, strings.Split(block, "\n"))
		}
	}
	return data
}
