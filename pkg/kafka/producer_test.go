package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestProducer_PublishWritesHeaders(t *testing.T) {
	w := &recordingWriter{}
	p := newProducer(w, "booking-events")

	msg, err := NewMessage().
		WithKey("booking-1").
		WithValue(map[string]string{"status": "pending"}).
		WithEventType("booking.created").
		WithTenantID("tenant-1").
		WithSource("scheduler").
		Build()
	require.NoError(t, err)

	require.NoError(t, p.Publish(context.Background(), msg))
	require.Len(t, w.messages, 1)

	written := w.messages[0]
	assert.Equal(t, "booking-1", string(written.Key))
	assert.JSONEq(t, `{"status":"pending"}`, string(written.Value))
	assert.Equal(t, "booking.created", header(written, HeaderEventType))
	assert.Equal(t, "tenant-1", header(written, HeaderTenantID))
	assert.Equal(t, "scheduler", header(written, HeaderSource))
	assert.NotEmpty(t, header(written, HeaderEventID))
}

func TestProducer_RejectsInvalidMessages(t *testing.T) {
	p := newProducer(&recordingWriter{}, "booking-events")

	err := p.Publish(context.Background(), Message{Value: []byte("{}")})
	assert.ErrorIs(t, err, ErrEmptyKey)

	err = p.Publish(context.Background(), Message{Key: "k"})
	assert.ErrorIs(t, err, ErrEmptyValue)
}

func TestProducer_ClosedProducer(t *testing.T) {
	w := &recordingWriter{}
	p := newProducer(w, "booking-events")

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "k", Value: []byte("{}")}), ErrProducerClosed)
	assert.NoError(t, p.Close())
}

func TestProducer_MiddlewareOrder(t *testing.T) {
	p := newProducer(&recordingWriter{}, "booking-events")

	var calls []string
	p.Use(func(ctx context.Context, msg Message, next func(context.Context, Message) error) error {
		calls = append(calls, "outer")
		return next(ctx, msg)
	})
	p.Use(func(ctx context.Context, msg Message, next func(context.Context, Message) error) error {
		calls = append(calls, "inner")
		assert.Equal(t, "booking-events", msg.Topic)
		return next(ctx, msg)
	})

	require.NoError(t, p.Publish(context.Background(), Message{Key: "k", Value: []byte("{}"), Headers: map[string]string{}}))
	assert.Equal(t, []string{"outer", "inner"}, calls)
}

func TestProducer_PermanentFailureGoesToDLQ(t *testing.T) {
	dlq := &recordingWriter{}
	p := newProducer(&recordingWriter{err: errors.New("message too large")}, "booking-events")
	p.dlqWriter = dlq
	p.dlqTopic = "booking-events-dlq"

	msg := Message{Key: "k", Value: []byte("{}"), Headers: map[string]string{HeaderEventType: "booking.created"}}
	err := p.Publish(context.Background(), msg)
	require.Error(t, err)

	require.Len(t, dlq.messages, 1)
	assert.Equal(t, "booking-events", header(dlq.messages[0], HeaderOriginalTopic))
	assert.Equal(t, "message too large", header(dlq.messages[0], "dlq-error"))
	assert.NotContains(t, msg.Headers, HeaderOriginalTopic)
}

func TestProducer_TransientFailureSkipsDLQ(t *testing.T) {
	dlq := &recordingWriter{}
	p := newProducer(&recordingWriter{err: errors.New("dial tcp: connection refused")}, "booking-events")
	p.dlqWriter = dlq

	err := p.Publish(context.Background(), Message{Key: "k", Value: []byte("{}"), Headers: map[string]string{}})
	require.Error(t, err)
	assert.Empty(t, dlq.messages)
}

func TestMessageBuilder_InvalidValue(t *testing.T) {
	_, err := NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestClassifyError(t *testing.T) {
	assert.Equal(t, ErrorTypeUnknown, ClassifyError(nil))
	assert.Equal(t, ErrorTypeTransient, ClassifyError(errors.New("i/o Timeout")))
	assert.Equal(t, ErrorTypePermanent, ClassifyError(ErrEmptyKey))
	assert.Equal(t, ErrorTypePermanent, ClassifyError(errors.New("unknown topic or partition")))
}
