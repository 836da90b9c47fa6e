package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string

	DynamoTables DynamoTables
	S3BucketName string

	JWTPrivateKeyPath  string
	JWTPublicKeyPath   string
	JWTExpiry          time.Duration
	RefreshTokenExpiry time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	SNSRegion string

	GoogleClientID string

	// DefaultOwnerPassword seeds accounts the admin creates on behalf of a
	// shop owner; the owner is expected to reset it through the normal flow.
	DefaultOwnerPassword string

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users    string
	Shops    string
	Products string
	Carts    string
	Sessions string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),

		DynamoTables: DynamoTables{
			Users:    getEnv("DYNAMO_TABLE_USERS", "users"),
			Shops:    getEnv("DYNAMO_TABLE_SHOPS", "shops"),
			Products: getEnv("DYNAMO_TABLE_PRODUCTS", "products"),
			Carts:    getEnv("DYNAMO_TABLE_CARTS", "carts"),
			Sessions: getEnv("DYNAMO_TABLE_SESSIONS", "sessions"),
		},
		S3BucketName: getEnv("S3_BUCKET_NAME", "bazaar-product-images"),

		JWTPrivateKeyPath:  getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:   getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:          time.Duration(getEnvInt("JWT_EXPIRY_DAYS", 7)) * 24 * time.Hour,
		RefreshTokenExpiry: time.Duration(getEnvInt("REFRESH_TOKEN_EXPIRY_DAYS", 30)) * 24 * time.Hour,

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		SNSRegion: getEnv("SNS_REGION", "us-east-1"),

		GoogleClientID: getEnv("GOOGLE_CLIENT_ID", ""),

		DefaultOwnerPassword: getEnv("DEFAULT_OWNER_PASSWORD", "admin@123"),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
