// Package kafka streams finished assessments to downstream consumers
// such as reputation aggregators and analyst tooling.
package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/scamshield/riskengine/internal/application/assessment"
	"github.com/scamshield/riskengine/internal/config"
	"github.com/scamshield/riskengine/internal/infrastructure/monitoring/logging"
	apperrors "github.com/scamshield/riskengine/pkg/errors"
)

var ErrPublisherClosed = apperrors.New(apperrors.ErrCodeInternal, "publisher closed")

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes assessment events to a kafka topic. Events are
// keyed by fingerprint so all decisions about one artifact land in the
// same partition, in order.
type Publisher struct {
	writer WriterInterface
	logger logging.Logger
	closed atomic.Bool

	published atomic.Int64
	failed    atomic.Int64
}

// NewPublisher builds a publisher over a real kafka writer.
func NewPublisher(cfg config.EventsConfig, log logging.Logger) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
		Async:        false,
	}
	return NewPublisherWithWriter(writer, log)
}

// NewPublisherWithWriter wires an explicit writer, used by tests.
func NewPublisherWithWriter(writer WriterInterface, log logging.Logger) *Publisher {
	return &Publisher{
		writer: writer,
		logger: log.Named("kafka"),
	}
}

// Publish implements assessment.Publisher.
func (p *Publisher) Publish(ctx context.Context, event assessment.AssessmentEvent) error {
	if p.closed.Load() {
		return ErrPublisherClosed
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "failed to encode assessment event")
	}

	msg := kafka.Message{
		Key:   []byte(event.Fingerprint),
		Value: payload,
		Time:  event.ComputedAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.failed.Add(1)
		return apperrors.Wrap(err, apperrors.ErrCodePublishFailed, "failed to publish assessment event")
	}
	p.published.Add(1)
	return nil
}

// Close flushes and shuts the writer down. Safe to call more than
// once.
func (p *Publisher) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	p.logger.Info("kafka publisher closing",
		logging.Int64("published", p.published.Load()),
		logging.Int64("failed", p.failed.Load()))
	return p.writer.Close()
}
