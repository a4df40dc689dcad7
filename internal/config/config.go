package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// MinSecretLength is the shortest session signing secret accepted at startup.
const MinSecretLength = 32

// Storage drivers supported for submission images.
const (
	StorageDriverNone       = "none"
	StorageDriverCloudinary = "cloudinary"
	StorageDriverMinio      = "minio"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	LogLevel               string
	DatabaseURL            string
	RedisURL               string
	NATSURL                string
	NATSSubjectPrefix      string
	JWTSecret              string
	SessionTTL             time.Duration
	CookieSecure           bool
	StorageDriver          string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	MinioEndpoint          string
	MinioAccessKey         string
	MinioSecretKey         string
	MinioBucket            string
	MinioUseSSL            bool
	MinioPublicURL         string
	UploadMaxSizeMB        int
	GradingDelay           time.Duration
	DashboardCacheTTL      time.Duration
	AuthRateLimit          int
	BcryptCost             int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// IsProduction reports whether the service runs in the production environment.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GRADER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	v.SetDefault("app.name", "MathGrader API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("nats.subject_prefix", "mathgrader")
	v.SetDefault("session.ttl", "168h")
	v.SetDefault("storage.driver", StorageDriverNone)
	v.SetDefault("cloudinary.folder", "mathgrader/submissions")
	v.SetDefault("minio.bucket", "submissions")
	v.SetDefault("upload.max_size_mb", 10)
	v.SetDefault("grading.delay", "2s")
	v.SetDefault("dashboard.cache_ttl", "1m")
	v.SetDefault("auth.rate_limit", 10)
	v.SetDefault("bcrypt.cost", 10)

	sessionTTL, err := parseDuration(v, "session.ttl")
	if err != nil {
		return Config{}, err
	}
	gradingDelay, err := parseDuration(v, "grading.delay")
	if err != nil {
		return Config{}, err
	}
	cacheTTL, err := parseDuration(v, "dashboard.cache_ttl")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		LogLevel:               strings.ToLower(v.GetString("log.level")),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		NATSSubjectPrefix:      v.GetString("nats.subject_prefix"),
		JWTSecret:              v.GetString("jwt.secret"),
		SessionTTL:             sessionTTL,
		StorageDriver:          strings.ToLower(strings.TrimSpace(v.GetString("storage.driver"))),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		MinioEndpoint:          v.GetString("minio.endpoint"),
		MinioAccessKey:         v.GetString("minio.access_key"),
		MinioSecretKey:         v.GetString("minio.secret_key"),
		MinioBucket:            v.GetString("minio.bucket"),
		MinioUseSSL:            v.GetBool("minio.use_ssl"),
		MinioPublicURL:         v.GetString("minio.public_url"),
		UploadMaxSizeMB:        v.GetInt("upload.max_size_mb"),
		GradingDelay:           gradingDelay,
		DashboardCacheTTL:      cacheTTL,
		AuthRateLimit:          v.GetInt("auth.rate_limit"),
		BcryptCost:             v.GetInt("bcrypt.cost"),
	}

	cfg.CookieSecure = cfg.IsProduction()
	if v.IsSet("cookie.secure") {
		cfg.CookieSecure = v.GetBool("cookie.secure")
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("jwt secret must be provided")
	}
	if len(c.JWTSecret) < MinSecretLength {
		return fmt.Errorf("jwt secret must be at least %d bytes", MinSecretLength)
	}

	switch c.StorageDriver {
	case "", StorageDriverNone:
		c.StorageDriver = StorageDriverNone
	case StorageDriverCloudinary:
		if c.CloudinaryCloudName == "" || c.CloudinaryAPIKey == "" || c.CloudinaryAPISecret == "" {
			return fmt.Errorf("cloudinary storage requires cloud name, api key and api secret")
		}
	case StorageDriverMinio:
		if c.MinioEndpoint == "" || c.MinioAccessKey == "" || c.MinioSecretKey == "" {
			return fmt.Errorf("minio storage requires endpoint, access key and secret key")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}

	if c.SessionTTL <= 0 {
		c.SessionTTL = 7 * 24 * time.Hour
	}
	if c.UploadMaxSizeMB <= 0 {
		c.UploadMaxSizeMB = 10
	}
	if c.GradingDelay < 0 {
		c.GradingDelay = 0
	}
	if c.AuthRateLimit <= 0 {
		c.AuthRateLimit = 10
	}
	if c.BcryptCost <= 0 {
		c.BcryptCost = 10
	}

	return nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return 0, nil
	}

	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return value, nil
}
