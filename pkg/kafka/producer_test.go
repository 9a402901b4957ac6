package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EdgeFinder/pkg/logger"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	_, err := NewProducer()
	assert.Error(t, err)
}

func TestPublishEncodesValue(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "snappy")

	require.NoError(t, p.Publish(context.Background(), "topic", []byte("k"), map[string]int{"rows": 20}))
	require.NoError(t, p.Publish(context.Background(), "topic", nil, "raw"))

	require.Len(t, w.msgs, 2)
	assert.Equal(t, "topic", w.msgs[0].Topic)
	assert.JSONEq(t, `{"rows":20}`, string(w.msgs[0].Value))
	assert.Equal(t, "raw", string(w.msgs[1].Value))
}

func TestPublishMessageSplitsAggregatedLogs(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "snappy")
	now := time.Now()

	entries := []logger.AggregatedLogEntry{
		{Level: "error", Message: "redis down", Count: 3, FirstSeen: now, LastSeen: now},
		{Level: "error", Message: "render failed", Count: 1, FirstSeen: now, LastSeen: now},
	}
	require.NoError(t, p.PublishMessage(context.Background(), "edgefinder.logs", entries))

	require.Len(t, w.msgs, 2)
	assert.Equal(t, []byte("error"), w.msgs[0].Key)
	var got logger.AggregatedLogEntry
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, "redis down", got.Message)
	assert.Equal(t, 3, got.Count)
}

func TestPublishPropagatesWriterError(t *testing.T) {
	p := newProducer(&fakeWriter{err: errors.New("broker unavailable")}, "snappy")
	err := p.Publish(context.Background(), "t", nil, "x")
	assert.EqualError(t, err, "broker unavailable")
}

func TestCloseClosesWriter(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, newProducer(w, "gzip").Close())
	assert.True(t, w.closed)
}

func TestProducerOptionsIgnoreZero(t *testing.T) {
	cfg := &ProducerConfig{BatchBytes: 1024, BatchSize: 10, MaxAttempts: 3, BatchTimeout: time.Second}
	for _, opt := range []ProducerOption{
		WithBatchBytes(0),
		WithBatchSize(0),
		WithMaxAttempts(0),
		WithBatchTimeout(0),
		WithCompression(""),
	} {
		opt(cfg)
	}
	assert.Equal(t, 1024, cfg.BatchBytes)
	assert.Equal(t, 10, cfg.BatchSize)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, time.Second, cfg.BatchTimeout)
	assert.Empty(t, cfg.Compression)

	WithBatchBytes(4096)(cfg)
	WithCompression("zstd")(cfg)
	assert.Equal(t, 4096, cfg.BatchBytes)
	assert.Equal(t, "zstd", cfg.Compression)
}
