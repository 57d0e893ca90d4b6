package consumerWorker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elysion/internal/dto"
	"elysion/internal/mailer"
)

type fakeSender struct {
	sent []mailer.PassMail
	err  error
}

func (f *fakeSender) SendPass(p mailer.PassMail) error {
	f.sent = append(f.sent, p)
	return f.err
}

type fakeConsumer struct {
	mu      sync.Mutex
	handler func([]byte) error
	err     error
}

func (f *fakeConsumer) Consume(h func([]byte) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = h
	return f.err
}

func (f *fakeConsumer) registered() func([]byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.handler
}

func message(t *testing.T) []byte {
	t.Helper()
	raw, err := json.Marshal(dto.PassIssuedMessage{
		PassID:     "ELYSION26-X",
		Name:       "Asha",
		Recipients: []string{"a@b.com"},
		Payload:    `{"id":"ELYSION26-X"}`,
		Total:      600,
		IssuedAt:   time.Now(),
	})
	require.NoError(t, err)
	return raw
}

func TestHandleMailsPass(t *testing.T) {
	log := zerolog.Nop()
	sender := &fakeSender{}
	r := NewReader(&fakeConsumer{}, sender, "Elysion 2026", 128, &log)

	require.NoError(t, r.Handle(message(t)))
	require.Len(t, sender.sent, 1)
	got := sender.sent[0]
	assert.Equal(t, "ELYSION26-X", got.PassID)
	assert.Equal(t, "Elysion 2026", got.EventName)
	assert.Equal(t, 600, got.Total)
	assert.NotEmpty(t, got.QR)
}

func TestHandleDropsBadMessages(t *testing.T) {
	log := zerolog.Nop()
	sender := &fakeSender{err: errors.New("smtp down")}
	r := NewReader(&fakeConsumer{}, sender, "Elysion 2026", 128, &log)

	assert.NoError(t, r.Handle([]byte("{not json")))
	assert.Empty(t, sender.sent)

	assert.NoError(t, r.Handle(message(t)))
	assert.Len(t, sender.sent, 1)
}

func TestStartStop(t *testing.T) {
	log := zerolog.Nop()
	consumer := &fakeConsumer{}
	sender := &fakeSender{}
	r := NewReader(consumer, sender, "Elysion 2026", 128, &log)

	r.Start(context.Background())
	require.Eventually(t, func() bool { return consumer.registered() != nil }, time.Second, 10*time.Millisecond)
	require.NoError(t, consumer.registered()(message(t)))
	r.Stop()

	assert.Len(t, sender.sent, 1)
}
