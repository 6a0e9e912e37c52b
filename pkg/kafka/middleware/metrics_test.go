package kafka_middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"visitly/pkg/kafka"
	"visitly/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func TestProducerMetrics_CountsOutcomes(t *testing.T) {
	m := NewProducerMetrics()
	mw := m.Middleware()

	ok := func(context.Context, kafka.Message) error {
		time.Sleep(time.Millisecond)
		return nil
	}
	fail := func(context.Context, kafka.Message) error { return errors.New("broker down") }

	assert.NoError(t, mw(context.Background(), kafka.Message{Key: "b1"}, ok))
	assert.NoError(t, mw(context.Background(), kafka.Message{Key: "b2"}, ok))
	assert.Error(t, mw(context.Background(), kafka.Message{Key: "b3"}, fail))

	s := m.Snapshot()
	assert.Equal(t, int64(2), s.Published)
	assert.Equal(t, int64(1), s.Failed)
	assert.Positive(t, s.AvgDuration)

	m.Report(logger.Discard(), "booking-events")

	m.Reset()
	assert.Equal(t, MetricsSnapshot{}, m.Snapshot())
}
