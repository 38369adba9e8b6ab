package telemetry

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/recipebox/recipebox/internal/domain/ai"
	"github.com/recipebox/recipebox/internal/infrastructure/config"
	"github.com/recipebox/recipebox/internal/infrastructure/monitoring"
)

// LogSink writes attempts to the structured log
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a log sink
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger.Named("model-attempts")}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Write(_ context.Context, a ai.ModelAttempt) error {
	s.logger.Info("Model attempt",
		zap.String("attempt_id", a.ID.String()),
		zap.String("provider", string(a.Provider)),
		zap.String("model", a.Model),
		zap.Int("candidate_index", a.CandidateIndex),
		zap.Bool("fallback", a.Fallback),
		zap.String("outcome", string(a.Outcome)),
		zap.Duration("latency", a.Latency),
		zap.String("error", a.Error),
	)
	return nil
}

// MetricsSink feeds attempts into the Prometheus collector
type MetricsSink struct {
	metrics *monitoring.MetricsCollector
}

// NewMetricsSink creates a metrics sink
func NewMetricsSink(metrics *monitoring.MetricsCollector) *MetricsSink {
	return &MetricsSink{metrics: metrics}
}

func (s *MetricsSink) Name() string { return "metrics" }

func (s *MetricsSink) Write(_ context.Context, a ai.ModelAttempt) error {
	s.metrics.ModelAttempt(a)
	return nil
}

// RedisSink appends attempts to a capped Redis stream
type RedisSink struct {
	client redis.UniversalClient
	stream string
	maxLen int64
}

// NewRedisClient creates the client used by the stream sink
func NewRedisClient(cfg config.RedisConfig) redis.UniversalClient {
	return redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        []string{cfg.Addr()},
		Password:     cfg.Password,
		DB:           cfg.Database,
		DialTimeout:  cfg.DialTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
}

// NewRedisSink creates a stream sink. maxLen <= 0 leaves the stream uncapped.
func NewRedisSink(client redis.UniversalClient, stream string, maxLen int64) *RedisSink {
	return &RedisSink{client: client, stream: stream, maxLen: maxLen}
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Write(ctx context.Context, a ai.ModelAttempt) error {
	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]interface{}{
			"id":              a.ID.String(),
			"provider":        string(a.Provider),
			"model":           a.Model,
			"candidate_index": strconv.Itoa(a.CandidateIndex),
			"fallback":        strconv.FormatBool(a.Fallback),
			"outcome":         string(a.Outcome),
			"latency_ms":      strconv.FormatInt(a.Latency.Milliseconds(), 10),
			"error":           a.Error,
			"started_at":      a.StartedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}

	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", s.stream, err)
	}
	return nil
}
