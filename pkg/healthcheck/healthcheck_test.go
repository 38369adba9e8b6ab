package healthcheck

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

func static(status Status, message string) *CustomChecker {
	return NewCustomChecker("static", func(context.Context) (Status, string, interface{}) {
		return status, message, nil
	})
}

func TestHealthCheck_Check_NoCheckers(t *testing.T) {
	hc := New("1.0.0", zap.NewNop())

	response := hc.Check(context.Background())

	assert.Equal(t, StatusHealthy, response.Status)
	assert.Equal(t, "1.0.0", response.Version)
	assert.Empty(t, response.Checks)
}

func TestHealthCheck_Check_WorstStatusWins(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		expected Status
	}{
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"one degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unhealthy beats degraded", []Status{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := New("1.0.0", zap.NewNop())
			for i, s := range tt.statuses {
				hc.Register(string(rune('a'+i)), static(s, ""))
			}

			response := hc.Check(context.Background())

			assert.Equal(t, tt.expected, response.Status)
			require.Len(t, response.Checks, len(tt.statuses))
			assert.Equal(t, "a", response.Checks[0].Name)
		})
	}
}

func TestHealthCheck_Check_Cached(t *testing.T) {
	hc := New("1.0.0", zap.NewNop())
	var calls int32
	hc.Register("counting", NewCustomChecker("counting", func(context.Context) (Status, string, interface{}) {
		atomic.AddInt32(&calls, 1)
		return StatusHealthy, "", nil
	}))

	hc.Check(context.Background())
	hc.Check(context.Background())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	hc.SetCacheTTL(0)
	hc.Check(context.Background())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestHealthCheck_Handler(t *testing.T) {
	hc := New("1.0.0", zap.NewNop())
	hc.Register("database", NewDatabaseChecker(fakePinger{err: stderrors.New("connection refused")}))

	rec := httptest.NewRecorder()
	hc.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Status string `json:"status"`
		Checks []struct {
			Name    string `json:"name"`
			Message string `json:"message"`
		} `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unhealthy", body.Status)
	require.Len(t, body.Checks, 1)
	assert.Equal(t, "database", body.Checks[0].Name)
	assert.Contains(t, body.Checks[0].Message, "connection refused")
}

func TestDatabaseChecker(t *testing.T) {
	check := NewDatabaseChecker(fakePinger{}).Check(context.Background())
	assert.Equal(t, StatusHealthy, check.Status)
}

func TestRedisChecker(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	check := NewRedisChecker(client).Check(context.Background())
	assert.Equal(t, StatusHealthy, check.Status)

	mr.Close()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	check = NewRedisChecker(client).Check(ctx)
	assert.Equal(t, StatusDegraded, check.Status)
}
