package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp091.Publishing
	err      error
	closed   bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	f.exchange = exchange
	f.key = key
	f.msg = msg
	return f.err
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func testMessage() PasswordResetMessage {
	return PasswordResetMessage{
		UserID:   "u-1",
		Email:    "ana@example.com",
		Username: "ana",
		Code:     "012345",
		IssuedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestAMQPPublisher_PasswordResetIssued(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisherWithChannel(ch, "gastos.notifications")

	require.NoError(t, p.PasswordResetIssued(context.Background(), testMessage()))

	assert.Equal(t, "gastos.notifications", ch.exchange)
	assert.Equal(t, PasswordResetRoutingKey, ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, amqp091.Persistent, ch.msg.DeliveryMode)

	var decoded PasswordResetMessage
	require.NoError(t, json.Unmarshal(ch.msg.Body, &decoded))
	assert.Equal(t, "012345", decoded.Code)
	assert.Equal(t, "ana@example.com", decoded.Email)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestAMQPPublisher_PublishError(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	p := newPublisherWithChannel(ch, "x")

	err := p.PasswordResetIssued(context.Background(), testMessage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish message")
}

func TestLogNotifier(t *testing.T) {
	var n Notifier = NewLogNotifier()
	assert.NoError(t, n.PasswordResetIssued(context.Background(), testMessage()))
}
