package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"application-builder/internal/common/logger"
	"application-builder/internal/models"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	declared   []string
	published  []amqp.Publishing
	keys       []string
	publishErr error
	closed     bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, _, _, _ bool, _ amqp.Table) error {
	f.declared = append(f.declared, name+":"+kind)
	return nil
}

func (f *fakeChannel) Publish(_, key string, _, _ bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestAMQPPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	pub, err := NewAMQPPublisher(ch, "application_events", "application.submitted", logger.NewTestLogger(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"application_events:topic"}, ch.declared)

	event := models.ApplicationSubmittedEvent{ApplicationID: "app-1", JobID: "job-1", SubmittedAt: "2026-01-01T00:00:00Z"}
	require.NoError(t, pub.Publish(context.Background(), event))

	require.Len(t, ch.published, 1)
	msg := ch.published[0]
	assert.Equal(t, "application.submitted", ch.keys[0])
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, uint8(amqp.Persistent), msg.DeliveryMode)
	assert.Equal(t, "app-1", msg.MessageId)

	var decoded models.ApplicationSubmittedEvent
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, event, decoded)

	require.NoError(t, pub.Close())
	assert.True(t, ch.closed)
}

func TestAMQPPublisher_PublishError(t *testing.T) {
	ch := &fakeChannel{publishErr: errors.New("channel closed")}
	pub, err := NewAMQPPublisher(ch, "application_events", "application.submitted", logger.NewNoOpLogger())
	require.NoError(t, err)

	err = pub.Publish(context.Background(), models.ApplicationSubmittedEvent{ApplicationID: "app-1"})
	assert.ErrorContains(t, err, "channel closed")
}

func TestAMQPPublisher_CancelledContext(t *testing.T) {
	ch := &fakeChannel{}
	pub, err := NewAMQPPublisher(ch, "application_events", "application.submitted", logger.NewNoOpLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, pub.Publish(ctx, models.ApplicationSubmittedEvent{}), context.Canceled)
	assert.Empty(t, ch.published)
}
