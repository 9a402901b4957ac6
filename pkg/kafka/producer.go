package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"

	"EdgeFinder/pkg/logger"
)

// messageWriter is the subset of *kafka.Writer the producer needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer wraps Kafka writer.
type Producer struct {
	writer messageWriter
	comp   string
}

// NewProducer creates a new Kafka producer.
func NewProducer(opts ...ProducerOption) (*Producer, error) {
	cfg := &ProducerConfig{
		RequiredAcks: 1,
		Compression:  "snappy",
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
		BatchSize:    100,
		BatchBytes:   1048576,
		BatchTimeout: 1 * time.Second,
		Async:        false,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}

	bal := kafka.Balancer(&kafka.LeastBytes{})
	if cfg.HashByKey {
		bal = &kafka.Hash{}
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               bal,
		RequiredAcks:           kafka.RequiredAcks(cfg.RequiredAcks),
		Compression:            parseCompression(cfg.Compression),
		MaxAttempts:            cfg.MaxAttempts,
		WriteTimeout:           cfg.WriteTimeout,
		ReadTimeout:            cfg.ReadTimeout,
		BatchSize:              cfg.BatchSize,
		BatchBytes:             int64(cfg.BatchBytes),
		BatchTimeout:           cfg.BatchTimeout,
		Async:                  cfg.Async,
		AllowAutoTopicCreation: true,
	}

	return newProducer(writer, cfg.Compression), nil
}

func newProducer(w messageWriter, compression string) *Producer {
	initProducerMetricsOnce()
	return &Producer{writer: w, comp: compression}
}

// Publish sends a message to the specified topic.
func (p *Producer) Publish(ctx context.Context, topic string, key []byte, value interface{}) error {
	return p.PublishBatch(ctx, topic, []Message{{Key: key, Value: value}})
}

// PublishBatch sends multiple messages to the specified topic.
func (p *Producer) PublishBatch(ctx context.Context, topic string, messages []Message) error {
	if len(messages) == 0 {
		return nil
	}

	start := time.Now()
	msgs, totalBytes, err := encodeMessages(topic, messages, start)
	if err != nil {
		return err
	}

	err = p.writer.WriteMessages(ctx, msgs...)
	prodMetrics.observe(topic, p.comp, totalBytes, len(messages), time.Since(start), err)
	return err
}

// PublishMessage lets the producer serve as the log collector publisher.
// An aggregated batch is split into one message per entry keyed by level.
func (p *Producer) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	entries, ok := payload.([]logger.AggregatedLogEntry)
	if !ok {
		return p.Publish(ctx, topic, nil, payload)
	}
	messages := make([]Message, 0, len(entries))
	for _, e := range entries {
		messages = append(messages, Message{Key: []byte(e.Level), Value: e})
	}
	return p.PublishBatch(ctx, topic, messages)
}

// Close closes the producer.
func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// Message represents a Kafka message.
type Message struct {
	Key   []byte
	Value interface{}
}

func encodeMessages(topic string, messages []Message, at time.Time) ([]kafka.Message, int64, error) {
	out := make([]kafka.Message, 0, len(messages))
	var total int64
	for i, m := range messages {
		v, err := marshalValue(m.Value)
		if err != nil {
			return nil, 0, fmt.Errorf("message %d: %w", i, err)
		}
		out = append(out, kafka.Message{Topic: topic, Key: m.Key, Value: v, Time: at})
		total += int64(len(v))
	}
	return out, total, nil
}

func marshalValue(value interface{}) ([]byte, error) {
	switch val := value.(type) {
	case []byte:
		return val, nil
	case string:
		return []byte(val), nil
	default:
		v, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("marshal value: %w", err)
		}
		return v, nil
	}
}

func parseCompression(s string) kafka.Compression {
	switch s {
	case "gzip":
		return kafka.Gzip
	case "snappy":
		return kafka.Snappy
	case "lz4":
		return kafka.Lz4
	case "zstd":
		return kafka.Zstd
	default:
		return kafka.Snappy
	}
}

// producerMetrics is shared by every Producer in the process.
type producerMetrics struct {
	messages *prometheus.CounterVec
	bytes    *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

var (
	prodMetrics     *producerMetrics
	prodMetricsOnce sync.Once
)

func initProducerMetricsOnce() {
	prodMetricsOnce.Do(func() {
		prodMetrics = &producerMetrics{
			messages: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: "edgefinder",
				Subsystem: "kafka_producer",
				Name:      "messages_total",
				Help:      "Messages handed to Kafka by result",
			}, []string{"topic", "compression", "result"}),
			bytes: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: "edgefinder",
				Subsystem: "kafka_producer",
				Name:      "bytes_total",
				Help:      "Payload bytes handed to Kafka",
			}, []string{"topic", "compression"}),
			latency: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "edgefinder",
				Subsystem: "kafka_producer",
				Name:      "publish_seconds",
				Help:      "WriteMessages latency per batch",
				Buckets:   prometheus.DefBuckets,
			}, []string{"topic"}),
		}
	})
}

func (m *producerMetrics) observe(topic, comp string, bytes int64, count int, dur time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.messages.WithLabelValues(topic, comp, result).Add(float64(count))
	if err == nil {
		m.bytes.WithLabelValues(topic, comp).Add(float64(bytes))
	}
	m.latency.WithLabelValues(topic).Observe(dur.Seconds())
}
