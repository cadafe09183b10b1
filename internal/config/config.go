// Package config собирает конфигурацию сервиса из переменных окружения,
// чтобы main оставался коротким.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config — конфигурация всего процесса.
type Config struct {
	Addr     string `validate:"required"`
	LogLevel string `validate:"oneof=debug info warn error"`
	LogFile  string

	Redis Redis

	RequestTimeout time.Duration `validate:"gt=0"`
	MaxBodyBytes   int64         `validate:"gt=0"`

	// InterestAttempts — сколько раз запрашивать интересы одного клиента,
	// прежде чем признать запрос неуспешным.
	InterestAttempts int           `validate:"min=1,max=20"`
	ScoreCacheTTL    time.Duration `validate:"gt=0"`

	// /metrics закрывается Basic Auth, только если заданы оба значения.
	MetricsUser     string
	MetricsPassword string `validate:"required_with=MetricsUser"`
}

// Redis — настройки клиента хранилища. Пустой URL означает работу
// с хранилищем в памяти.
type Redis struct {
	URL          string        `validate:"omitempty,url"`
	PoolSize     int           `validate:"min=1"`
	DialTimeout  time.Duration `validate:"gt=0"`
	ReadTimeout  time.Duration `validate:"gt=0"`
	WriteTimeout time.Duration `validate:"gt=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// FromEnv читает конфигурацию из окружения и проверяет её.
func FromEnv() (Config, error) {
	var errs []error

	cfg := Config{
		Addr:     getEnv("SCORING_ADDR", ":8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  os.Getenv("LOG_FILE"),
		Redis: Redis{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10, &errs),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 2*time.Second, &errs),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", time.Second, &errs),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", time.Second, &errs),
		},
		RequestTimeout:   getDuration("REQUEST_TIMEOUT", 5*time.Second, &errs),
		MaxBodyBytes:     int64(getInt("MAX_BODY_BYTES", 1<<20, &errs)),
		InterestAttempts: getInt("INTEREST_ATTEMPTS", 5, &errs),
		ScoreCacheTTL:    getDuration("SCORE_CACHE_TTL", time.Hour, &errs),
		MetricsUser:      os.Getenv("METRICS_USER"),
		MetricsPassword:  os.Getenv("METRICS_PASSWORD"),
	}

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int, errs *[]error) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", k, err))
		return def
	}
	return n
}

func getDuration(k string, def time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", k, err))
		return def
	}
	return d
}
