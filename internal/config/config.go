package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/hanok-stay/service-booking/pkg/config"
)

// Lock backends selectable with LOCK_BACKEND.
const (
	LockBackendMemory = "memory"
	LockBackendRedis  = "redis"
)

const (
	defaultTimezone    = "Asia/Seoul"
	defaultLockTimeout = 3 * time.Second
)

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port          string
	AppEnv        string
	Location      *time.Location
	LockBackend   string
	LockTimeout   time.Duration
	MaxStayNights int
	MaxLeadDays   int
	OTLPEndpoint  string
	DBConfig      config.DatabaseConfig
	JWTConfig     config.JWTConfig
	KafkaConfig   config.KafkaConfig
	RedisConfig   config.RedisConfig
}

// Load reads configuration from environment variables.
func Load() (*ServiceConfig, error) {
	v, err := config.Load("BOOKING")
	if err != nil {
		return nil, err
	}

	tz := v.GetString("TIMEZONE")
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
	}

	backend := strings.ToLower(v.GetString("LOCK_BACKEND"))
	switch backend {
	case "":
		backend = LockBackendMemory
	case LockBackendMemory, LockBackendRedis:
	default:
		return nil, fmt.Errorf("invalid LOCK_BACKEND %q: expected memory or redis", backend)
	}

	return &ServiceConfig{
		Port:          config.GetServicePort(v, "SERVICE_PORT"),
		AppEnv:        config.GetAppEnv(v),
		Location:      loc,
		LockBackend:   backend,
		LockTimeout:   config.GetDuration(v, "LOCK_TIMEOUT", defaultLockTimeout),
		MaxStayNights: config.GetInt(v, "MAX_STAY_NIGHTS", 30),
		MaxLeadDays:   config.GetInt(v, "MAX_LEAD_DAYS", 365),
		OTLPEndpoint:  v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		DBConfig:      config.LoadDatabaseConfig(v, "DB_NAME"),
		JWTConfig:     config.LoadJWTConfig(v),
		KafkaConfig:   config.LoadKafkaConfig(v),
		RedisConfig:   config.LoadRedisConfig(v),
	}, nil
}
