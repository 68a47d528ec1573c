package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	declared   []string
	declareErr error
	publishErr error
	published  []published
	closed     bool
}

func (c *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	c.declared = append(c.declared, name+":"+kind)
	return c.declareErr
}

func (c *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if c.publishErr != nil {
		return c.publishErr
	}
	c.published = append(c.published, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

func TestPublisher_PublishJSON(t *testing.T) {
	ch := &fakeChannel{}
	p, err := newPublisher(ch, "inventory.events")
	require.NoError(t, err)
	stamp := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return stamp }

	err = p.Publish(context.Background(), "order.created", map[string]string{"orderId": "o1"})
	require.NoError(t, err)

	assert.Equal(t, []string{"inventory.events:topic"}, ch.declared)
	require.Len(t, ch.published, 1)
	got := ch.published[0]
	assert.Equal(t, "inventory.events", got.exchange)
	assert.Equal(t, "order.created", got.key)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)
	assert.Equal(t, stamp, got.msg.Timestamp)

	var body map[string]string
	require.NoError(t, json.Unmarshal(got.msg.Body, &body))
	assert.Equal(t, "o1", body["orderId"])
}

func TestPublisher_Errors(t *testing.T) {
	ch := &fakeChannel{declareErr: errors.New("access refused")}
	_, err := newPublisher(ch, "inventory.events")
	require.Error(t, err)
	assert.True(t, ch.closed)

	ch = &fakeChannel{publishErr: errors.New("channel closed")}
	p, err := newPublisher(ch, "inventory.events")
	require.NoError(t, err)
	err = p.Publish(context.Background(), "order.updated", struct{}{})
	assert.ErrorContains(t, err, "publish order.updated")

	err = p.Publish(context.Background(), "order.updated", func() {})
	assert.ErrorContains(t, err, "encode order.updated event")
}
