package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/ParishReservationService/internal/config"
	"github.com/m04kA/ParishReservationService/pkg/dbmetrics"
	"github.com/m04kA/ParishReservationService/pkg/logger"
	"github.com/m04kA/ParishReservationService/pkg/metrics"
)

// app общие зависимости команд
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	db      *sql.DB
	exec    *dbmetrics.DB
	metrics *metrics.Metrics // nil, если метрики выключены
	redis   *redis.Client    // nil, если кэш выключен

	stopMetricsCh chan struct{}
}

// newApp загружает конфигурацию, поднимает логгер и подключение к базе
// withMetrics включает сбор метрик, если они разрешены в конфиге
func newApp(withMetrics bool) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	a := &app{cfg: cfg, log: log, stopMetricsCh: make(chan struct{})}

	if withMetrics && cfg.Metrics.Enabled {
		a.metrics = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	a.db, err = sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	a.db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	a.db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	a.db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := a.db.Ping(); err != nil {
		a.close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	if a.metrics != nil {
		a.exec = dbmetrics.WrapWithDefault(a.db, a.metrics, a.stopMetricsCh)
		log.Info("Database metrics collection started")
	} else {
		a.exec = dbmetrics.Wrap(a.db, nil)
	}

	return a, nil
}

// connectRedis подключает кэш слотов. Недоступный Redis не мешает старту:
// кэш просто не будет находить записи
func (a *app) connectRedis(ctx context.Context) {
	if !a.cfg.Redis.Enabled() {
		a.log.Info("Slot cache disabled (redis.addr is empty)")
		return
	}

	a.redis = redis.NewClient(&redis.Options{
		Addr:        a.cfg.Redis.Addr,
		Password:    a.cfg.Redis.Password,
		DB:          a.cfg.Redis.DB,
		DialTimeout: a.cfg.Redis.Dial(),
	})

	if err := a.redis.Ping(ctx).Err(); err != nil {
		a.log.Warn("Redis is not reachable at %s, slot cache will miss until it recovers: %v", a.cfg.Redis.Addr, err)
		return
	}
	a.log.Info("Slot cache connected to redis at %s (ttl=%s)", a.cfg.Redis.Addr, a.cfg.Redis.TTL())
}

func (a *app) close() {
	close(a.stopMetricsCh)

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("Failed to close redis client: %v", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn("Failed to close database: %v", err)
		}
	}
	_ = a.log.Close()
}
