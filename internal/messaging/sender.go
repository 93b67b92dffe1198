package messaging

import (
	"context"
	"errors"
	"time"
)

var ErrNoContact = errors.New("subscriber has no contact address")

// Sender delivers formatted text to a subscriber.
type Sender interface {
	Send(ctx context.Context, subscriberID, text string) error
}

// Delivery is the payload published for a send.
type Delivery struct {
	SubscriberID string    `json:"subscriber_id"`
	Text         string    `json:"text"`
	SentAt       time.Time `json:"sent_at"`
}
