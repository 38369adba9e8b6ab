package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/recipebox/recipebox/internal/domain/ai"
	"github.com/recipebox/recipebox/internal/infrastructure/monitoring"
)

func TestRedisSink_AppendsToStream(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	sink := NewRedisSink(client, "recipebox:model_attempts", 100)
	a := ai.NewModelAttempt(ai.ProviderTypeGemini, "gemini-flash-latest", 1, time.Now()).
		Failed(1500*time.Millisecond, assert.AnError)

	require.NoError(t, sink.Write(context.Background(), a))

	entries, err := client.XRange(context.Background(), "recipebox:model_attempts", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	values := entries[0].Values
	assert.Equal(t, a.ID.String(), values["id"])
	assert.Equal(t, "gemini-flash-latest", values["model"])
	assert.Equal(t, "1", values["candidate_index"])
	assert.Equal(t, "true", values["fallback"])
	assert.Equal(t, "failure", values["outcome"])
	assert.Equal(t, "1500", values["latency_ms"])
	assert.Equal(t, assert.AnError.Error(), values["error"])
}

func TestRedisSink_ServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	sink := NewRedisSink(client, "attempts", 0)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.Error(t, sink.Write(ctx, attempt(0)))
}

func TestLogSink(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sink := NewLogSink(zap.New(core))

	require.NoError(t, sink.Write(context.Background(), attempt(1)))

	entries := logs.FilterMessage("Model attempt").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "gemini-2.0-flash", fields["model"])
	assert.Equal(t, true, fields["fallback"])
	assert.Equal(t, "success", fields["outcome"])
}

func TestMetricsSink(t *testing.T) {
	metrics := monitoring.NewMetricsCollector(zaptest.NewLogger(t))
	sink := NewMetricsSink(metrics)

	require.NoError(t, sink.Write(context.Background(), attempt(0)))

	count, err := testutil.GatherAndCount(metrics.Registry(), "recipebox_model_attempts_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
