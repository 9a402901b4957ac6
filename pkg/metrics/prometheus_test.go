package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWithRegisterer(reg)

	r.RecordSentiment("Daily", "Bullish")
	r.RecordSentiment("Daily", "Bullish")
	r.RecordSentiment("M1", "Bearish")
	r.RecordCacheResult("hit")
	r.RecordError("cache_get")
	r.RecordEvaluation("Daily", 0.0002)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.sentiments.WithLabelValues("Daily", "Bullish")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.sentiments.WithLabelValues("M1", "Bearish")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("cache_get")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "edgefinder_evaluation_duration_seconds")
}
