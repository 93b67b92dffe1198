package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// DefaultStream holds published deliveries until a gateway consumes them.
const DefaultStream = "VERSE_DELIVERIES"

// StreamPublisher is the part of jetstream.JetStream the sender needs.
type StreamPublisher interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// NATSSender publishes deliveries for the chat gateway to pick up.
type NATSSender struct {
	js      StreamPublisher
	subject string
	now     func() time.Time
}

func NewNATSSender(js StreamPublisher, subject string) *NATSSender {
	return &NATSSender{js: js, subject: subject, now: time.Now}
}

func (s *NATSSender) Send(ctx context.Context, subscriberID, text string) error {
	data, err := json.Marshal(Delivery{SubscriberID: subscriberID, Text: text, SentAt: s.now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal delivery: %w", err)
	}
	if _, err := s.js.Publish(ctx, s.subject, data); err != nil {
		return fmt.Errorf("failed to publish delivery to subject %s: %w", s.subject, err)
	}
	return nil
}

// ConnectNATS dials url and makes sure a stream captures subject.
func ConnectNATS(ctx context.Context, url, subject string) (*nats.Conn, jetstream.JetStream, error) {
	nc, err := nats.Connect(url,
		nats.Name("verse-courier"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      DefaultStream,
		Subjects:  []string{subject},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.WorkQueuePolicy,
	})
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("failed to ensure stream %s: %w", DefaultStream, err)
	}
	return nc, js, nil
}
