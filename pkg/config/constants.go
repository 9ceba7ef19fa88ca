package config

// EnvPrefix is passed to envconfig; individual fields carry explicit names.
const EnvPrefix = "TALENTSYNC"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv           = "TALENTSYNC_APP_ENV"
	EnvPort             = "TALENTSYNC_APP_PORT"
	EnvDBDSN            = "TALENTSYNC_DB_DSN"
	EnvDBHost           = "TALENTSYNC_DB_HOST"
	EnvDBUser           = "TALENTSYNC_DB_USER"
	EnvDBName           = "TALENTSYNC_DB_NAME"
	EnvRedisURL         = "TALENTSYNC_REDIS_URL"
	EnvJWTSecret        = "TALENTSYNC_JWT_SECRET"
	EnvJWTIssuer        = "TALENTSYNC_JWT_ISSUER"
	EnvJWTExpMins       = "TALENTSYNC_JWT_EXPIRATION_MINUTES"
	EnvGCPProjectID     = "TALENTSYNC_GCP_PROJECT_ID"
	EnvPubSubDomainTop  = "TALENTSYNC_PUBSUB_DOMAIN_TOPIC"
	EnvPubSubDomainSub  = "TALENTSYNC_PUBSUB_DOMAIN_SUBSCRIPTION"
	EnvPubSubOwnership  = "TALENTSYNC_PUBSUB_OWNERSHIP_TOPIC"
	EnvOutboxBatchSize  = "TALENTSYNC_OUTBOX_PUBLISH_BATCH_SIZE"
	EnvOutboxMaxRetries = "TALENTSYNC_OUTBOX_MAX_ATTEMPTS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
