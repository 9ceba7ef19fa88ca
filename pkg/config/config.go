package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	Eventing      EventingConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Sourcing      SourcingConfig
	Cron          CronConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TALENTSYNC_APP_ENV" required:"true"`
	Port         string `envconfig:"TALENTSYNC_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TALENTSYNC_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TALENTSYNC_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"TALENTSYNC_SERVICE_KIND" default:"api"`
	Name string `envconfig:"TALENTSYNC_SERVICE_NAME" default:"talentsync"`
}

type DBConfig struct {
	DSN    string `envconfig:"TALENTSYNC_DB_DSN"`
	Driver string `envconfig:"TALENTSYNC_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TALENTSYNC_DB_HOST"`
	LegacyPort     int    `envconfig:"TALENTSYNC_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TALENTSYNC_DB_USER"`
	LegacyPassword string `envconfig:"TALENTSYNC_DB_PASSWORD"`
	LegacyName     string `envconfig:"TALENTSYNC_DB_NAME"`
	LegacySSLMode  string `envconfig:"TALENTSYNC_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TALENTSYNC_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TALENTSYNC_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TALENTSYNC_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TALENTSYNC_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TALENTSYNC_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TALENTSYNC_REDIS_ADDR"`
	Password     string        `envconfig:"TALENTSYNC_REDIS_PASSWORD"`
	DB           int           `envconfig:"TALENTSYNC_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TALENTSYNC_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TALENTSYNC_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TALENTSYNC_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TALENTSYNC_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TALENTSYNC_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"TALENTSYNC_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"TALENTSYNC_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"TALENTSYNC_JWT_EXPIRATION_MINUTES" required:"true"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"TALENTSYNC_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"TALENTSYNC_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"TALENTSYNC_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"TALENTSYNC_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"TALENTSYNC_ARGON_KEY_LEN" default:"32"`
}

type EventingConfig struct {
	IdempotencyTTL time.Duration `envconfig:"TALENTSYNC_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
	SourceService  string        `envconfig:"TALENTSYNC_EVENTING_SOURCE_SERVICE" default:"talentsync"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"TALENTSYNC_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"TALENTSYNC_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"TALENTSYNC_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"TALENTSYNC_PUBSUB_DOMAIN_TOPIC" required:"true"`
	DomainSubscription string `envconfig:"TALENTSYNC_PUBSUB_DOMAIN_SUBSCRIPTION" required:"true"`
	OwnershipTopic     string `envconfig:"TALENTSYNC_PUBSUB_OWNERSHIP_TOPIC" required:"true"`
	NotificationTopic  string `envconfig:"TALENTSYNC_PUBSUB_NOTIFICATION_TOPIC" default:"ts-notification-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"TALENTSYNC_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"TALENTSYNC_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"TALENTSYNC_OUTBOX_MAX_ATTEMPTS" default:"10"`
	RetentionDays  int `envconfig:"TALENTSYNC_OUTBOX_RETENTION_DAYS" default:"30"`
}

type SourcingConfig struct {
	DefaultProtectionDays int    `envconfig:"TALENTSYNC_SOURCING_PROTECTION_DAYS" default:"365"`
	DefaultFeeRate        string `envconfig:"TALENTSYNC_SOURCING_DEFAULT_FEE_RATE" default:"0.20"`
}

type CronConfig struct {
	Interval    time.Duration `envconfig:"TALENTSYNC_CRON_INTERVAL" default:"24h"`
	MetricsAddr string        `envconfig:"TALENTSYNC_CRON_METRICS_ADDR" default:":9100"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"TALENTSYNC_AUTH_RL_LOGIN_WINDOW" default:"5m"`
	LoginIPLimit    int           `envconfig:"TALENTSYNC_AUTH_RL_LOGIN_IP_LIMIT" default:"20"`
	LoginEmailLimit int           `envconfig:"TALENTSYNC_AUTH_RL_LOGIN_EMAIL_LIMIT" default:"5"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"TALENTSYNC_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
