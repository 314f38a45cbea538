// Package health polls the backend readiness endpoint on a fixed period
// and derives a single indicator from the readiness flags.
package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/conorls/dublinrent/internal/models"
)

// DefaultInterval is the period between health checks.
const DefaultInterval = 60 * time.Second

// Indicator is the derived health reading shown to the user.
type Indicator string

const (
	// IndicatorChecking means the first check has not completed yet.
	IndicatorChecking Indicator = "checking"
	// IndicatorHealthy means the latest check reported "healthy".
	IndicatorHealthy Indicator = "healthy"
	// IndicatorError means the latest check reported anything else, or
	// failed outright.
	IndicatorError Indicator = "error"
)

// Checker is the slice of the backend API the poller needs.
type Checker interface {
	Healthcheck(ctx context.Context) (models.HealthStatus, error)
}

// Poller runs a fixed-period health check. Each check fully replaces the
// previous reading; a failed check never leaves a stale healthy reading
// visible. There is no backoff and no retry between ticks.
type Poller struct {
	client   Checker
	log      *zap.Logger
	interval time.Duration
	cron     *cron.Cron

	mu      sync.Mutex
	checked bool
	status  models.HealthStatus
}

// NewPoller creates a poller that checks every interval. A zero interval
// uses DefaultInterval.
func NewPoller(client Checker, interval time.Duration, log *zap.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Poller{
		client:   client,
		log:      log,
		interval: interval,
		cron:     cron.New(),
	}
}

// Start registers the periodic check and runs one immediately so the
// reading is populated without waiting for the first tick.
func (p *Poller) Start(ctx context.Context) error {
	_, err := p.cron.AddFunc(fmt.Sprintf("@every %s", p.interval), func() {
		p.check(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	p.cron.Start()
	p.log.Info("health poller started", zap.Duration("interval", p.interval))

	go p.check(ctx)
	return nil
}

// Stop cancels the schedule. A check already running is allowed to
// finish; its result is simply recorded and never read again.
func (p *Poller) Stop() {
	p.cron.Stop()
	p.log.Info("health poller stopped")
}

// check fetches the current readiness report. Any transport or server
// failure is mapped to a synthetic error status with all readiness flags
// down, so the previous reading is always replaced.
func (p *Poller) check(ctx context.Context) {
	status, err := p.client.Healthcheck(ctx)
	if err != nil {
		p.log.Warn("health check failed", zap.Error(err))
		status = models.HealthStatus{Status: "error"}
	}

	p.mu.Lock()
	p.checked = true
	p.status = status
	p.mu.Unlock()
}

// Status returns the latest reading and the derived indicator. Until the
// first check completes the indicator is IndicatorChecking.
func (p *Poller) Status() (models.HealthStatus, Indicator) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.checked {
		return models.HealthStatus{}, IndicatorChecking
	}
	if p.status.Healthy() {
		return p.status, IndicatorHealthy
	}
	return p.status, IndicatorError
}
