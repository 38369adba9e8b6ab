// Package telemetry delivers model attempts to their sinks off the request path
package telemetry

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/recipebox/recipebox/internal/domain/ai"
	"github.com/recipebox/recipebox/internal/ports/outbound"
)

const defaultWriteTimeout = 5 * time.Second

// FailureHook is told about every failed sink write
type FailureHook func(sink string)

// Dispatcher implements outbound.AttemptRecorder. Record never blocks and
// never fails; each sink write runs in its own goroutine under its own
// deadline, detached from the caller's context.
type Dispatcher struct {
	sinks     []outbound.AttemptSink
	timeout   time.Duration
	onFailure FailureHook
	logger    *zap.Logger

	mu      sync.RWMutex
	closed  bool
	wg      sync.WaitGroup
	pending atomic.Int64
}

// NewDispatcher creates a dispatcher over sinks. onFailure may be nil.
func NewDispatcher(sinks []outbound.AttemptSink, timeout time.Duration, onFailure FailureHook, logger *zap.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultWriteTimeout
	}
	if onFailure == nil {
		onFailure = func(string) {}
	}

	d := &Dispatcher{
		sinks:     sinks,
		timeout:   timeout,
		onFailure: onFailure,
		logger:    logger.Named("telemetry"),
	}

	names := make([]string, 0, len(sinks))
	for _, s := range sinks {
		names = append(names, s.Name())
	}
	d.logger.Info("Telemetry dispatcher initialized", zap.Strings("sinks", names), zap.Duration("write_timeout", timeout))

	return d
}

// Record hands attempt to every sink and returns immediately
func (d *Dispatcher) Record(attempt ai.ModelAttempt) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.Debug("Dropping model attempt after shutdown", zap.String("attempt_id", attempt.ID.String()))
		return
	}

	for _, sink := range d.sinks {
		d.wg.Add(1)
		d.pending.Add(1)
		go d.write(sink, attempt)
	}
}

func (d *Dispatcher) write(sink outbound.AttemptSink, attempt ai.ModelAttempt) {
	defer d.wg.Done()
	defer d.pending.Add(-1)
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Telemetry sink panicked", zap.String("sink", sink.Name()), zap.Any("panic", r))
			d.onFailure(sink.Name())
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := sink.Write(ctx, attempt); err != nil {
		d.logger.Warn("Telemetry write failed",
			zap.String("sink", sink.Name()),
			zap.String("attempt_id", attempt.ID.String()),
			zap.String("model", attempt.Model),
			zap.Error(err),
		)
		d.onFailure(sink.Name())
	}
}

// Pending returns the number of sink writes still in flight
func (d *Dispatcher) Pending() int64 {
	return d.pending.Load()
}

// Close stops accepting attempts and waits for in-flight writes or ctx
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("Telemetry dispatcher drained")
		return nil
	case <-ctx.Done():
		d.logger.Warn("Telemetry dispatcher closed with writes in flight")
		return ctx.Err()
	}
}
