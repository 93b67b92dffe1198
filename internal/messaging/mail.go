package messaging

import (
	"context"
	"fmt"

	"github.com/taiwoajasa245/verse-courier/internal/subscriber"
)

// ContactLookup resolves a subscriber's address.
type ContactLookup interface {
	Get(ctx context.Context, id string) (*subscriber.Subscriber, error)
}

// Mailer sends a delivery email.
type Mailer interface {
	SendDelivery(to, text string) error
}

// MailSender emails deliveries to the subscriber's contact address.
type MailSender struct {
	mailer   Mailer
	contacts ContactLookup
}

func NewMailSender(mailer Mailer, contacts ContactLookup) *MailSender {
	return &MailSender{mailer: mailer, contacts: contacts}
}

func (s *MailSender) Send(ctx context.Context, subscriberID, text string) error {
	sub, err := s.contacts.Get(ctx, subscriberID)
	if err != nil {
		return fmt.Errorf("looking up contact: %w", err)
	}
	if sub.Contact == "" {
		return ErrNoContact
	}

	// gomail dials without a context.
	done := make(chan error, 1)
	go func() { done <- s.mailer.SendDelivery(sub.Contact, text) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
