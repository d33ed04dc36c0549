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
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	GCS           GCSConfig
	Documents     DocumentsConfig
	PubSub        PubSubConfig
	BigQuery      BigQueryConfig
	Outbox        OutboxConfig
	Notifications NotificationsConfig
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
	Env          string `envconfig:"B4_APP_ENV" required:"true"`
	Port         string `envconfig:"B4_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"B4_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"B4_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"B4_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"B4_DB_DSN"`
	Driver string `envconfig:"B4_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"B4_DB_HOST"`
	LegacyPort     int    `envconfig:"B4_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"B4_DB_USER"`
	LegacyPassword string `envconfig:"B4_DB_PASSWORD"`
	LegacyName     string `envconfig:"B4_DB_NAME"`
	LegacySSLMode  string `envconfig:"B4_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"B4_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"B4_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"B4_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"B4_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"B4_REDIS_URL" required:"true"`
	Address      string        `envconfig:"B4_REDIS_ADDR"`
	Password     string        `envconfig:"B4_REDIS_PASSWORD"`
	DB           int           `envconfig:"B4_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"B4_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"B4_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"B4_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"B4_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"B4_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"B4_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"B4_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"B4_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"B4_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"B4_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"B4_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"B4_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"B4_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"B4_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"B4_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"B4_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"B4_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"B4_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"B4_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"B4_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"B4_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"B4_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"B4_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"B4_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"B4_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName        string        `envconfig:"B4_GCS_BUCKET_NAME" default:"journey-documents"`
	UploadURLExpiry   time.Duration `envconfig:"B4_GCS_UPLOAD_URL_EXPIRY" default:"15m"`
	DownloadURLExpiry time.Duration `envconfig:"B4_GCS_DOWNLOAD_URL_EXPIRY" default:"24h"`
}

type DocumentsConfig struct {
	MaxUploadMB int `envconfig:"B4_DOCUMENTS_MAX_UPLOAD_MB" default:"25"`
}

type PubSubConfig struct {
	PlatformTopic         string `envconfig:"B4_PUBSUB_PLATFORM_TOPIC" default:"b4-platform-events"`
	PlatformSubscription  string `envconfig:"B4_PUBSUB_PLATFORM_SUBSCRIPTION"`
	AnalyticsSubscription string `envconfig:"B4_PUBSUB_ANALYTICS_SUBSCRIPTION"`
}

type BigQueryConfig struct {
	Dataset             string `envconfig:"B4_BIGQUERY_DATASET" default:"b4_platform"`
	PlatformEventsTable string `envconfig:"B4_BIGQUERY_PLATFORM_TABLE" default:"platform_events"`
}

type OutboxConfig struct {
	BatchSize      int           `envconfig:"B4_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int           `envconfig:"B4_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int           `envconfig:"B4_OUTBOX_MAX_ATTEMPTS" default:"10"`
	IdempotencyTTL time.Duration `envconfig:"B4_OUTBOX_IDEMPOTENCY_TTL" default:"24h"`
}

type NotificationsConfig struct {
	ReadRetention   time.Duration `envconfig:"B4_NOTIFICATIONS_READ_RETENTION" default:"720h"`
	UnreadRetention time.Duration `envconfig:"B4_NOTIFICATIONS_UNREAD_RETENTION" default:"2160h"`
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
