package config

// EnvPrefix is passed to envconfig; individual fields carry explicit names so
// the prefix only matters for fields without a tag.
const EnvPrefix = "B4"

// App environment names.
const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags (tests, error
// messages).
const (
	EnvAppEnv                 = "B4_APP_ENV"
	EnvPort                   = "B4_APP_PORT"
	EnvDBDSN                  = "B4_DB_DSN"
	EnvDBHost                 = "B4_DB_HOST"
	EnvDBUser                 = "B4_DB_USER"
	EnvDBName                 = "B4_DB_NAME"
	EnvRedisURL               = "B4_REDIS_URL"
	EnvJWTSecret              = "B4_JWT_SECRET"
	EnvJWTIssuer              = "B4_JWT_ISSUER"
	EnvJWTExpMins             = "B4_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "B4_REFRESH_TOKEN_TTL_MINUTES"
	EnvGCPProjectID           = "B4_GCP_PROJECT_ID"
	EnvGCSBucket              = "B4_GCS_BUCKET_NAME"
	EnvGCSUploadExpiry        = "B4_GCS_UPLOAD_URL_EXPIRY"
	EnvGCSDownloadExpiry      = "B4_GCS_DOWNLOAD_URL_EXPIRY"
	EnvPubSubPlatformTopic    = "B4_PUBSUB_PLATFORM_TOPIC"
	EnvPubSubPlatformSub      = "B4_PUBSUB_PLATFORM_SUBSCRIPTION"
	EnvPubSubAnalyticsSub     = "B4_PUBSUB_ANALYTICS_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
