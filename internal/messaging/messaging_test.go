package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/taiwoajasa245/verse-courier/internal/subscriber"
)

type published struct {
	subject string
	data    []byte
}

type fakeStream struct {
	msgs []published
	err  error
}

func (f *fakeStream) Publish(_ context.Context, subject string, payload []byte, _ ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.msgs = append(f.msgs, published{subject: subject, data: payload})
	return &jetstream.PubAck{Stream: DefaultStream, Sequence: uint64(len(f.msgs))}, nil
}

func TestNATSSender(t *testing.T) {
	js := &fakeStream{}
	s := NewNATSSender(js, "verses.deliver")
	s.now = func() time.Time { return time.Date(2024, 1, 1, 7, 30, 0, 0, time.UTC) }

	require.NoError(t, s.Send(context.Background(), "U1", "Jesus wept.\n(John 11:35)"))
	require.Len(t, js.msgs, 1)
	assert.Equal(t, "verses.deliver", js.msgs[0].subject)

	var got Delivery
	require.NoError(t, json.Unmarshal(js.msgs[0].data, &got))
	assert.Equal(t, Delivery{
		SubscriberID: "U1",
		Text:         "Jesus wept.\n(John 11:35)",
		SentAt:       time.Date(2024, 1, 1, 7, 30, 0, 0, time.UTC),
	}, got)
}

func TestNATSSender_PublishError(t *testing.T) {
	s := NewNATSSender(&fakeStream{err: errors.New("no responders")}, "verses.deliver")
	err := s.Send(context.Background(), "U1", "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "verses.deliver")
}

type fakeMailer struct {
	to, text string
	block    chan struct{}
}

func (f *fakeMailer) SendDelivery(to, text string) error {
	if f.block != nil {
		<-f.block
	}
	f.to, f.text = to, text
	return nil
}

func newContacts(t *testing.T) subscriber.Directory {
	t.Helper()
	dir := subscriber.NewMemoryDirectory(subscriber.Defaults{Topic: "encouragement"})
	ctx := context.Background()
	for _, id := range []string{"U1", "U2"} {
		_, _, err := dir.Ensure(ctx, id)
		require.NoError(t, err)
	}
	contact := "u1@example.com"
	_, err := dir.Update(ctx, "U1", subscriber.Update{Contact: &contact})
	require.NoError(t, err)
	return dir
}

func TestMailSender(t *testing.T) {
	m := &fakeMailer{}
	s := NewMailSender(m, newContacts(t))
	ctx := context.Background()

	require.NoError(t, s.Send(ctx, "U1", "Jesus wept."))
	assert.Equal(t, "u1@example.com", m.to)
	assert.Equal(t, "Jesus wept.", m.text)

	assert.ErrorIs(t, s.Send(ctx, "U2", "Jesus wept."), ErrNoContact)
	assert.ErrorIs(t, s.Send(ctx, "U9", "Jesus wept."), subscriber.ErrNotFound)
}

func TestMailSender_Timeout(t *testing.T) {
	m := &fakeMailer{block: make(chan struct{})}
	defer close(m.block)
	s := NewMailSender(m, newContacts(t))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Send(ctx, "U1", "Jesus wept."), context.DeadlineExceeded)
}

func TestLogSender(t *testing.T) {
	s := NewLogSender(zaptest.NewLogger(t))
	assert.NoError(t, s.Send(context.Background(), "U1", "Jesus wept."))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Send(ctx, "U1", "Jesus wept."), context.Canceled)
}
