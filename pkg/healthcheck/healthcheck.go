// Package healthcheck rolls dependency checks up into the /health and /ready
// answers of the ops server.
package healthcheck

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Status is the rolled-up state of the service or of one dependency
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// CheckFunc reports a dependency failure as an error
type CheckFunc func(ctx context.Context) error

// Result is the outcome of one check
type Result struct {
	Name       string `json:"name"`
	Status     Status `json:"status"`
	Required   bool   `json:"required"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// Report is the outcome of every check. A failing required dependency makes
// the service unhealthy; a failing optional one only degrades it.
type Report struct {
	Status    Status    `json:"status"`
	Version   string    `json:"version"`
	CheckedAt time.Time `json:"checked_at"`
	Checks    []Result  `json:"checks"`
}

// Ready reports whether every required dependency answered
func (r Report) Ready() bool {
	return r.Status != StatusUnhealthy
}

type dependency struct {
	name     string
	required bool
	check    CheckFunc
}

// Checker runs the registered checks concurrently and keeps the last report
// for ttl
type Checker struct {
	version string
	timeout time.Duration
	ttl     time.Duration
	now     func() time.Time
	logger  *zap.Logger

	mu     sync.Mutex
	deps   []dependency
	last   *Report
	status Status
}

// New creates a checker. Each check gets timeout; reports are reused for ttl.
func New(version string, timeout, ttl time.Duration, logger *zap.Logger) *Checker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Checker{
		version: version,
		timeout: timeout,
		ttl:     ttl,
		now:     time.Now,
		logger:  logger,
		status:  StatusHealthy,
	}
}

// Require registers a dependency the service cannot serve without
func (c *Checker) Require(name string, check CheckFunc) {
	c.register(dependency{name: name, required: true, check: check})
}

// Optional registers a dependency the service degrades without
func (c *Checker) Optional(name string, check CheckFunc) {
	c.register(dependency{name: name, check: check})
}

func (c *Checker) register(d dependency) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deps = append(c.deps, d)
	c.last = nil
}

// Check returns the cached report or checks every dependency. Results keep
// registration order.
func (c *Checker) Check(ctx context.Context) Report {
	c.mu.Lock()
	if c.last != nil && c.now().Sub(c.last.CheckedAt) < c.ttl {
		report := *c.last
		c.mu.Unlock()
		return report
	}
	deps := append([]dependency(nil), c.deps...)
	c.mu.Unlock()

	report := Report{
		Status:    StatusHealthy,
		Version:   c.version,
		CheckedAt: c.now(),
		Checks:    make([]Result, len(deps)),
	}

	var wg sync.WaitGroup
	for i, d := range deps {
		wg.Add(1)
		go func(i int, d dependency) {
			defer wg.Done()
			report.Checks[i] = c.run(ctx, d)
		}(i, d)
	}
	wg.Wait()

	for _, r := range report.Checks {
		switch {
		case r.Status == StatusUnhealthy:
			report.Status = StatusUnhealthy
		case r.Status == StatusDegraded && report.Status == StatusHealthy:
			report.Status = StatusDegraded
		}
	}

	c.mu.Lock()
	c.last = &report
	if report.Status != c.status {
		c.logger.Warn("Health status changed",
			zap.String("from", string(c.status)),
			zap.String("to", string(report.Status)),
		)
		c.status = report.Status
	}
	c.mu.Unlock()

	return report
}

func (c *Checker) run(ctx context.Context, d dependency) Result {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	err := d.check(ctx)
	result := Result{
		Name:       d.name,
		Status:     StatusHealthy,
		Required:   d.required,
		DurationMS: time.Since(start).Milliseconds(),
	}
	if err != nil {
		result.Error = err.Error()
		result.Status = StatusDegraded
		if d.required {
			result.Status = StatusUnhealthy
		}
	}
	return result
}

// Health serves the full report, 503 when a required dependency failed
func (c *Checker) Health() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		report := c.Check(ctx.Request.Context())
		code := http.StatusOK
		if !report.Ready() {
			code = http.StatusServiceUnavailable
		}
		ctx.JSON(code, report)
	}
}

// Ready answers the readiness endpoint, listing only the failed checks
func (c *Checker) Ready() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		report := c.Check(ctx.Request.Context())
		if report.Ready() {
			ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
			return
		}

		failed := make([]Result, 0, len(report.Checks))
		for _, r := range report.Checks {
			if r.Status == StatusUnhealthy {
				failed = append(failed, r)
			}
		}
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "checks": failed})
	}
}
