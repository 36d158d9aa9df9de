// Package main publishes simulated kitchen sensor readings onto the Redis feed
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pantrysense/v2/internal/domain/inventory"
	"github.com/pantrysense/v2/internal/infrastructure/config"
	redisfeed "github.com/pantrysense/v2/internal/infrastructure/feed/redis"
	rediscache "github.com/pantrysense/v2/internal/infrastructure/persistence/redis"
	"github.com/pantrysense/v2/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", os.Getenv("PANTRYSENSE_CONFIG"), "path to the config file")
	start := flag.Float64("start", 1000, "initial weight in grams")
	step := flag.Float64("step", 25, "grams consumed per reading")
	floor := flag.Float64("floor", 50, "weight at which the container is refilled")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	l, err := logger.New(logger.Config{Level: cfg.App.LogLevel, Format: cfg.App.LogFormat, Development: cfg.IsDevelopment()})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	lg := l.Named("sensorsim")
	defer func() { _ = lg.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client, err := rediscache.NewClient(ctx, rediscache.Config{
		Addr:         cfg.RedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.Database,
		PoolSize:     2,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		lg.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer client.Close()

	interval := cfg.Feed.PublishInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}

	publisher := redisfeed.NewPublisher(client, cfg.Feed.KeyPrefix)
	sim := newSimulator(*start, *step, *floor, interval)

	lg.Info("Publishing simulated readings",
		zap.String("channel", cfg.Feed.Channel),
		zap.Duration("interval", interval),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		reading := sim.next(time.Now())
		if err := publisher.Publish(ctx, cfg.Feed.Channel, &reading); err != nil {
			lg.Warn("Failed to publish reading", zap.Error(err))
		} else {
			lg.Debug("Published reading", zap.Float64("weight", reading.Weight))
		}

		select {
		case <-ctx.Done():
			lg.Info("Simulator stopped")
			return
		case <-ticker.C:
		}
	}
}

// simulator drains a container at a fixed rate and refills it at the floor
type simulator struct {
	start    float64
	step     float64
	floor    float64
	interval time.Duration
	weight   float64
}

func newSimulator(start, step, floor float64, interval time.Duration) *simulator {
	return &simulator{start: start, step: step, floor: floor, interval: interval, weight: start}
}

func (s *simulator) next(now time.Time) inventory.SensorReading {
	reading := inventory.SensorReading{
		Distance:  s.distance(),
		Weight:    s.weight,
		FoodLevel: s.level(),
		Timestamp: now.UnixMilli(),
		Interval:  s.interval.Milliseconds(),
	}

	s.weight -= s.step
	if s.weight < s.floor {
		s.weight = s.start
	}
	return reading
}

// level is the fill percentage relative to a full container
func (s *simulator) level() float64 {
	if s.start <= 0 {
		return 0
	}
	return s.weight / s.start * 100
}

// distance mimics an ultrasonic sensor over a 30 cm container
func (s *simulator) distance() float64 {
	return 30 * (1 - s.level()/100)
}
