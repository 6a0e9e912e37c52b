package kafka_middleware

import (
	"context"
	"sync/atomic"
	"time"

	"visitly/pkg/kafka"
	"visitly/pkg/logger"
)

// ProducerMetrics counts publishes through one producer. The zero value is
// ready to use.
type ProducerMetrics struct {
	published     atomic.Int64
	failed        atomic.Int64
	durationTotal atomic.Int64 // nanoseconds, successful and failed publishes
}

type MetricsSnapshot struct {
	Published   int64
	Failed      int64
	AvgDuration time.Duration
}

func NewProducerMetrics() *ProducerMetrics {
	return &ProducerMetrics{}
}

// Middleware records the outcome and duration of every publish.
func (m *ProducerMetrics) Middleware() kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()

		err := next(ctx, msg)

		m.durationTotal.Add(int64(time.Since(start)))
		if err != nil {
			m.failed.Add(1)
		} else {
			m.published.Add(1)
		}
		return err
	}
}

func (m *ProducerMetrics) Snapshot() MetricsSnapshot {
	published := m.published.Load()
	failed := m.failed.Load()

	snapshot := MetricsSnapshot{Published: published, Failed: failed}
	if total := published + failed; total > 0 {
		snapshot.AvgDuration = time.Duration(m.durationTotal.Load() / total)
	}
	return snapshot
}

// Report logs the current counters, typically once at shutdown.
func (m *ProducerMetrics) Report(log *logger.Logger, topic string) {
	s := m.Snapshot()
	log.Info("Kafka producer metrics",
		"topic", topic,
		"published", s.Published,
		"failed", s.Failed,
		"avg_duration_ms", s.AvgDuration.Milliseconds(),
	)
}

func (m *ProducerMetrics) Reset() {
	m.published.Store(0)
	m.failed.Store(0)
	m.durationTotal.Store(0)
}
