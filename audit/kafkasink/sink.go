package kafkasink

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync/atomic"

	dashAuth "github.com/MrEthical07/dashAuth"
	"github.com/twmb/franz-go/pkg/kgo"
)

const headerEventType = "event_type"

var (
	ErrNoBrokers = errors.New("kafkasink: no seed brokers")
	ErrNoTopic   = errors.New("kafkasink: empty topic")
)

// Producer is the subset of *kgo.Client the sink needs.
type Producer interface {
	Produce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error))
	Flush(ctx context.Context) error
	Close()
}

// Config configures Dial.
type Config struct {
	Brokers  []string
	Topic    string
	ClientID string
}

// Sink implements dashAuth.AuditSink.
type Sink struct {
	producer Producer
	topic    string
	logger   *slog.Logger

	produced atomic.Uint64
	failed   atomic.Uint64
}

var _ dashAuth.AuditSink = (*Sink)(nil)

// Dial creates a franz-go client for cfg and wraps it in a Sink.
func Dial(cfg Config, logger *slog.Logger) (*Sink, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrNoBrokers
	}
	if cfg.Topic == "" {
		return nil, ErrNoTopic
	}
	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
	}
	if cfg.ClientID != "" {
		opts = append(opts, kgo.ClientID(cfg.ClientID))
	}
	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, err
	}
	return New(client, cfg.Topic, logger)
}

// New wraps an existing producer.
func New(producer Producer, topic string, logger *slog.Logger) (*Sink, error) {
	if producer == nil {
		return nil, errors.New("kafkasink: nil producer")
	}
	if topic == "" {
		return nil, ErrNoTopic
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{producer: producer, topic: topic, logger: logger}, nil
}

// Emit enqueues event. The promise runs on a franz-go goroutine.
func (s *Sink) Emit(ctx context.Context, event dashAuth.AuditEvent) {
	if s == nil {
		return
	}
	value, err := json.Marshal(event)
	if err != nil {
		s.failed.Add(1)
		s.logger.Warn("audit event encode failed", "event", event.EventType, "error", err)
		return
	}

	record := &kgo.Record{
		Topic:     s.topic,
		Key:       recordKey(event),
		Value:     value,
		Timestamp: event.Timestamp,
		Headers: []kgo.RecordHeader{
			{Key: headerEventType, Value: []byte(event.EventType)},
		},
	}
	s.producer.Produce(ctx, record, func(r *kgo.Record, err error) {
		if err != nil {
			s.failed.Add(1)
			s.logger.Warn("audit event publish failed", "event", event.EventType, "topic", r.Topic, "error", err)
			return
		}
		s.produced.Add(1)
	})
}

func recordKey(event dashAuth.AuditEvent) []byte {
	switch {
	case event.UserID != "":
		return []byte(event.UserID)
	case event.Email != "":
		return []byte(event.Email)
	default:
		return nil
	}
}

// Produced is the number of acknowledged records.
func (s *Sink) Produced() uint64 { return s.produced.Load() }

// Failed is the number of events that could not be encoded or delivered.
func (s *Sink) Failed() uint64 { return s.failed.Load() }

// Close flushes buffered records, bounded by ctx, and closes the producer.
func (s *Sink) Close(ctx context.Context) error {
	if s == nil {
		return nil
	}
	err := s.producer.Flush(ctx)
	s.producer.Close()
	return err
}
