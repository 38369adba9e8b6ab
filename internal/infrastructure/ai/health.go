package ai

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/recipebox/recipebox/internal/infrastructure/config"
	"github.com/recipebox/recipebox/internal/ports/outbound"
	"github.com/recipebox/recipebox/pkg/errors"
	"github.com/recipebox/recipebox/pkg/healthcheck"
)

// pinger is implemented by backends that expose a cheap liveness probe
type pinger interface {
	HealthCheck(ctx context.Context) error
}

// HealthStatus represents the state of the model backend
type HealthStatus struct {
	Provider   string    `json:"provider"`
	Configured bool      `json:"configured"`
	Reachable  *bool     `json:"reachable,omitempty"`
	Details    string    `json:"details,omitempty"`
	LastCheck  time.Time `json:"last_check"`
}

// Healthy reports whether parse requests can reach a model
func (s *HealthStatus) Healthy() bool {
	return s.Configured && (s.Reachable == nil || *s.Reachable)
}

// HealthChecker reports model backend readiness
type HealthChecker struct {
	cfg       config.AIConfig
	generator outbound.TextGenerator
	logger    *zap.Logger
}

// NewHealthChecker creates a new model backend health checker
func NewHealthChecker(cfg config.AIConfig, generator outbound.TextGenerator, logger *zap.Logger) *HealthChecker {
	return &HealthChecker{
		cfg:       cfg,
		generator: generator,
		logger:    logger.Named("ai-health"),
	}
}

// Ready fails with a configuration error when the backend needs a credential
// and none is configured. It is checked before any extraction work starts.
func (h *HealthChecker) Ready() error {
	if h.cfg.RequiresAPIKey() && h.cfg.APIKey == "" {
		return errors.NewConfigurationError(fmt.Sprintf("no API key configured for the %s provider", h.cfg.Provider))
	}
	return nil
}

// CheckHealth reports configuration and, for backends with a liveness probe,
// reachability. Hosted APIs are never called here since every call is billed.
func (h *HealthChecker) CheckHealth(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Provider:   h.cfg.Provider,
		Configured: h.Ready() == nil,
		LastCheck:  time.Now(),
	}
	if !status.Configured {
		status.Details = "credential missing"
	}

	if p, ok := h.generator.(pinger); ok {
		healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		reachable := true
		if err := p.HealthCheck(healthCtx); err != nil {
			reachable = false
			status.Details = err.Error()
			h.logger.Warn("Model backend health check failed", zap.String("provider", h.cfg.Provider), zap.Error(err))
		}
		status.Reachable = &reachable
	}

	return status
}

// Check adapts CheckHealth to the health endpoint. A missing credential or
// unreachable backend degrades the service; stored recipes stay readable.
func (h *HealthChecker) Check(ctx context.Context) healthcheck.Check {
	start := time.Now()
	status := h.CheckHealth(ctx)

	check := healthcheck.Check{
		Name:        "ai",
		Status:      healthcheck.StatusHealthy,
		Message:     status.Details,
		LastChecked: start,
		Metadata:    status,
	}
	if !status.Healthy() {
		check.Status = healthcheck.StatusDegraded
	}
	check.Duration = time.Since(start)
	return check
}
