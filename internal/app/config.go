package app

import (
	"time"

	"github.com/yungbote/mindcheck-backend/internal/clients/redis"
	"github.com/yungbote/mindcheck-backend/internal/data/db"
	"github.com/yungbote/mindcheck-backend/internal/engine"
	"github.com/yungbote/mindcheck-backend/internal/observability"
	"github.com/yungbote/mindcheck-backend/internal/platform/envutil"
	"github.com/yungbote/mindcheck-backend/internal/platform/logger"
)

type Config struct {
	Port string

	DB    db.Config
	Redis redis.Config
	OTel  observability.OtelConfig

	JWTSecretKey   string
	AccessTokenTTL time.Duration

	Policy         engine.Policy
	KBCacheTTL     time.Duration
	SessionLockTTL time.Duration
	KBSeedOnStart  bool

	CORSAllowedOrigins []string
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port: envutil.String("PORT", "8080"),
		DB: db.Config{
			Driver:     envutil.String("DB_DRIVER", db.DriverPostgres),
			Host:       envutil.String("POSTGRES_HOST", "localhost"),
			Port:       envutil.String("POSTGRES_PORT", "5432"),
			User:       envutil.String("POSTGRES_USER", "postgres"),
			Password:   envutil.String("POSTGRES_PASSWORD", ""),
			Name:       envutil.String("POSTGRES_NAME", "mindcheck"),
			SSLMode:    envutil.String("POSTGRES_SSLMODE", "disable"),
			SQLitePath: envutil.String("SQLITE_PATH", "mindcheck.db"),
		},
		Redis: redis.Config{
			Addr:     envutil.String("REDIS_ADDR", ""),
			Password: envutil.String("REDIS_PASSWORD", ""),
			DB:       envutil.Int("REDIS_DB", 0),
		},
		OTel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "mindcheck-backend"),
			Environment: envutil.String("OTEL_ENVIRONMENT", "development"),
			Version:     envutil.String("OTEL_SERVICE_VERSION", "dev"),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:     observability.ParseHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "")),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: envutil.Float("OTEL_SAMPLE_RATIO", 1),
		},
		JWTSecretKey:   envutil.String("JWT_SECRET_KEY", "defaultsecret"),
		AccessTokenTTL: envutil.Duration("ACCESS_TOKEN_TTL", time.Hour),
		Policy: engine.Policy{
			FiringThreshold:      envutil.Int("RULE_FIRING_THRESHOLD", engine.DefaultFiringThreshold),
			FinalizeThreshold:    envutil.Int("FINALIZE_THRESHOLD", 80),
			MinQuestions:         envutil.Int("MIN_QUESTIONS", 5),
			DiscriminationMargin: envutil.Int("DISCRIMINATION_MARGIN", engine.DefaultDiscriminationMargin),
		},
		KBCacheTTL:         envutil.Duration("KB_CACHE_TTL", 5*time.Minute),
		SessionLockTTL:     envutil.Duration("SESSION_LOCK_TTL", 10*time.Second),
		KBSeedOnStart:      envutil.Bool("KB_SEED_ON_START", false),
		CORSAllowedOrigins: envutil.List("CORS_ALLOWED_ORIGINS", nil),
	}
	if cfg.JWTSecretKey == "defaultsecret" {
		log.Warn("JWT_SECRET_KEY not set, using the development default")
	}
	log.Debug("config loaded",
		"port", cfg.Port,
		"db_driver", cfg.DB.Driver,
		"redis", cfg.Redis.Enabled(),
		"otel", cfg.OTel.Enabled,
		"firing_threshold", cfg.Policy.FiringThreshold,
		"finalize_threshold", cfg.Policy.FinalizeThreshold,
		"min_questions", cfg.Policy.MinQuestions,
		"kb_cache_ttl", cfg.KBCacheTTL.String(),
	)
	return cfg
}
