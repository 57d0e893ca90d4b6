package rabbit

import (
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
)

func TestExchangeArgs(t *testing.T) {
	assert.Nil(t, exchangeArgs(KindDirect))
	assert.Equal(t, amqp.Table{"x-delayed-type": KindDirect}, exchangeArgs(KindDelayed))
}

func TestPublishing(t *testing.T) {
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	msg := publishing([]byte(`{}`), KindDirect, 30, now)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, MessageType, msg.Type)
	assert.Equal(t, now, msg.Timestamp)
	assert.NotEmpty(t, msg.MessageId)
	assert.Nil(t, msg.Headers, "direct exchanges ignore delays")

	delayed := publishing([]byte(`{}`), KindDelayed, 30, now)
	assert.Equal(t, int32(30000), delayed.Headers["x-delay"])
	assert.NotEqual(t, msg.MessageId, delayed.MessageId)
}
