package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config конфигурация сервиса
type Config struct {
	Server   ServerConfig   `toml:"server" validate:"required"`
	Database DatabaseConfig `toml:"database" validate:"required"`
	Logs     LogsConfig     `toml:"logs"`
	Metrics  MetricsConfig  `toml:"metrics"`
	Auth     AuthConfig     `toml:"auth" validate:"required"`
	Booking  BookingConfig  `toml:"booking"`
	Redis    RedisConfig    `toml:"redis"`
	RabbitMQ RabbitMQConfig `toml:"rabbitmq"`
}

// ServerConfig HTTP сервер, таймауты в секундах
type ServerConfig struct {
	HTTPPort        int `toml:"http_port" validate:"required,min=1,max=65535"`
	ReadTimeout     int `toml:"read_timeout" validate:"gte=0"`
	WriteTimeout    int `toml:"write_timeout" validate:"gte=0"`
	IdleTimeout     int `toml:"idle_timeout" validate:"gte=0"`
	ShutdownTimeout int `toml:"shutdown_timeout" validate:"gte=0"`
}

type DatabaseConfig struct {
	Host            string `toml:"host" validate:"required"`
	Port            int    `toml:"port" validate:"required,min=1,max=65535"`
	User            string `toml:"user" validate:"required"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname" validate:"required"`
	SSLMode         string `toml:"sslmode" validate:"omitempty,oneof=disable require verify-ca verify-full"`
	MaxOpenConns    int    `toml:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int    `toml:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime" validate:"gte=0"` // секунды
}

// DSN строка подключения lib/pq
func (d DatabaseConfig) DSN() string {
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.DBName,
		RawQuery: "sslmode=" + sslMode,
	}
	return u.String()
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level" validate:"omitempty,oneof=debug info warn error"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path" validate:"omitempty,startswith=/"`
	ServiceName string `toml:"service_name" validate:"required_if=Enabled true"`
}

// AuthConfig проверка JWT токенов, выданных сервисом аутентификации
type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret" validate:"required,min=16"`
	Issuer    string `toml:"issuer"`
	Leeway    int    `toml:"leeway" validate:"gte=0"` // секунды
}

type BookingConfig struct {
	MaxTxAttempts int `toml:"max_tx_attempts" validate:"gte=0,lte=10"`
}

// RedisConfig кэш слотов; пустой Addr выключает кэш
type RedisConfig struct {
	Addr        string `toml:"addr"`
	Password    string `toml:"password"`
	DB          int    `toml:"db" validate:"gte=0"`
	SlotsTTL    int    `toml:"slots_ttl" validate:"gte=0"` // секунды
	DialTimeout int    `toml:"dial_timeout" validate:"gte=0"`
}

// RabbitMQConfig события бронирований; пустой URL выключает отправку
// DialTimeout ограничивает подключение на пути запроса, RetryDelay пауза между попытками после неудачи
type RabbitMQConfig struct {
	URL         string `toml:"url" validate:"omitempty,url"`
	Queue       string `toml:"queue"`
	DialTimeout int    `toml:"dial_timeout" validate:"gte=0"`
	RetryDelay  int    `toml:"retry_delay" validate:"gte=0"`
}

// Load читает config.toml, накладывает переменные окружения (и .env, если он есть)
// и проверяет результат
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default значения, которые файл может переопределить
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 10,
		},
		Database: DatabaseConfig{
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs:     LogsConfig{Level: "info"},
		Metrics:  MetricsConfig{Path: "/metrics", ServiceName: "parish_reservation_service"},
		Booking:  BookingConfig{MaxTxAttempts: 3},
		Redis:    RedisConfig{SlotsTTL: 300, DialTimeout: 2},
		RabbitMQ: RabbitMQConfig{DialTimeout: 2, RetryDelay: 15},
	}
}

type lookupFunc func(key string) (string, bool)

// applyEnv переопределяет секреты и адреса из окружения
func (c *Config) applyEnv(lookup lookupFunc) error {
	texts := map[string]*string{
		"DB_HOST":        &c.Database.Host,
		"DB_USER":        &c.Database.User,
		"DB_PASSWORD":    &c.Database.Password,
		"DB_NAME":        &c.Database.DBName,
		"JWT_SECRET":     &c.Auth.JWTSecret,
		"JWT_ISSUER":     &c.Auth.Issuer,
		"REDIS_ADDR":     &c.Redis.Addr,
		"REDIS_PASSWORD": &c.Redis.Password,
		"RABBITMQ_URL":   &c.RabbitMQ.URL,
		"LOG_LEVEL":      &c.Logs.Level,
	}
	for key, target := range texts {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*target = strings.TrimSpace(v)
		}
	}

	ints := map[string]*int{
		"HTTP_PORT": &c.Server.HTTPPort,
		"DB_PORT":   &c.Database.Port,
	}
	for key, target := range ints {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid integer in %s: %q", key, v)
		}
		*target = n
	}

	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate проверяет конфигурацию по тегам validate
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("invalid config: %s failed %q", fe.Namespace(), fe.ActualTag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Durations

func (s ServerConfig) Read() time.Duration     { return seconds(s.ReadTimeout) }
func (s ServerConfig) Write() time.Duration    { return seconds(s.WriteTimeout) }
func (s ServerConfig) Idle() time.Duration     { return seconds(s.IdleTimeout) }
func (s ServerConfig) Shutdown() time.Duration { return seconds(s.ShutdownTimeout) }

func (a AuthConfig) LeewayDuration() time.Duration { return seconds(a.Leeway) }

func (r RedisConfig) TTL() time.Duration { return seconds(r.SlotsTTL) }

func (r RedisConfig) Dial() time.Duration { return seconds(r.DialTimeout) }

func (r RedisConfig) Enabled() bool { return r.Addr != "" }

func (r RabbitMQConfig) Dial() time.Duration { return seconds(r.DialTimeout) }

func (r RabbitMQConfig) Retry() time.Duration { return seconds(r.RetryDelay) }

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
