package mail

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	f.sent = append(f.sent, m...)
	return f.err
}

const delivery = "Now faith is the substance of things hoped for.\n(Hebrews 11:1)\n\nPeace I leave with you.\n(John 14:27)"

func TestDeliveryDataFor(t *testing.T) {
	data := deliveryDataFor(delivery + "\n\n\n")
	assert.Equal(t, [][]string{
		{"Now faith is the substance of things hoped for.", "(Hebrews 11:1)"},
		{"Peace I leave with you.", "(John 14:27)"},
	}, data.Passages)
}

func TestRenderPassages(t *testing.T) {
	body, err := render("passages.html", deliveryDataFor(delivery))
	require.NoError(t, err)
	assert.Contains(t, body, "<p style=\"margin: 4px 0;\">(Hebrews 11:1)</p>")
	assert.Contains(t, body, "Peace I leave with you.")

	body, err = render("passages.html", deliveryDataFor("<script>x</script>"))
	require.NoError(t, err)
	assert.NotContains(t, body, "<script>")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, err := render("missing.html", nil)
	assert.Error(t, err)
}

func TestSendDelivery(t *testing.T) {
	d := &fakeDialer{}
	m := NewMailWithDialer("courier@example.com", "Verse Courier", d)

	require.NoError(t, m.SendDelivery("u1@example.com", delivery))
	require.Len(t, d.sent, 1)
	assert.Equal(t, []string{"u1@example.com"}, d.sent[0].GetHeader("To"))
	assert.Equal(t, []string{DeliverySubject}, d.sent[0].GetHeader("Subject"))
	assert.Equal(t, []string{`"Verse Courier" <courier@example.com>`}, d.sent[0].GetHeader("From"))
}

func TestSendDeliveryDialError(t *testing.T) {
	d := &fakeDialer{err: errors.New("connection refused")}
	m := NewMailWithDialer("courier@example.com", "Verse Courier", d)

	err := m.SendDelivery("u1@example.com", delivery)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
