package monitoring

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pantrysense/v2/pkg/healthcheck"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// OpsConfig configures the operations listener
type OpsConfig struct {
	Enabled bool
	Host    string
	Port    int
}

// OpsServer serves health, readiness and metrics on a port separate from the API
type OpsServer struct {
	engine *gin.Engine
	server *http.Server
	logger *zap.Logger
}

// NewOpsServer builds the ops router
func NewOpsServer(cfg OpsConfig, health *healthcheck.Checker, gatherer prometheus.Gatherer, logger *zap.Logger) *OpsServer {
	gin.SetMode(gin.ReleaseMode)
	logger = logger.Named("ops-server")

	engine := gin.New()
	engine.Use(gin.Recovery(), accessLog(logger))

	engine.GET("/health", health.Health())
	engine.GET("/ready", health.Ready())
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})))

	return &OpsServer{
		engine: engine,
		server: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:           engine,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Handler exposes the router for tests
func (s *OpsServer) Handler() http.Handler {
	return s.engine
}

// Start binds the listener and serves in the background
func (s *OpsServer) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("ops server listen: %w", err)
	}

	s.logger.Info("Ops server listening", zap.String("addr", ln.Addr().String()))
	go func() {
		if err := s.server.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Ops server stopped", zap.Error(err))
		}
	}()
	return nil
}

// Shutdown stops the listener
func (s *OpsServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// accessLog logs health requests at debug level
func accessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Debug("Ops request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
