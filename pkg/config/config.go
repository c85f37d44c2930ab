package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Mailjet  MailjetConfig
	Redis    RedisConfig
	Admin    AdminConfig
	Model    ModelConfig
}

type MailjetConfig struct {
	MailjetBaseUrl           string
	MailjetBasicAuthUsername string
	MailjetBasicAuthPassword string
	MailjetSenderEmail       string
	MailjetSenderName        string
}

type AppConfig struct {
	Name                     string
	Version                  string
	Environment              string
	AppDeploymentUrl         string
	AppEmailVerificationKey  string
	RequireEmailVerification bool
	AllowOrigins             []string
	AuthRateLimitPerMinute   int
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	// Path is the database file for the sqlite driver.
	Path string
}

type JWTConfig struct {
	SecretKey   string
	ExpiryHours int
}

type RedisConfig struct {
	Enabled       bool
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

type AdminConfig struct {
	Email    string
	Password string
	Username string
}

type ModelConfig struct {
	DatasetPath      string
	ArtifactPath     string
	IdentifierColumn string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, errors.New("invalid redis database")
	}

	expiryHours, err := strconv.Atoi(getEnv("JWT_EXPIRY_HOURS", "24"))
	if err != nil || expiryHours <= 0 {
		return nil, errors.New("invalid jwt expiry hours")
	}

	authRateLimit, err := strconv.Atoi(getEnv("AUTH_RATE_LIMIT_PER_MINUTE", "20"))
	if err != nil || authRateLimit < 0 {
		return nil, errors.New("invalid auth rate limit")
	}

	cfg := &Config{
		App: AppConfig{
			Name:                     getEnv("APP_NAME", "AgriPricePredict"),
			Version:                  getEnv("APP_VERSION", "1.0.0"),
			Environment:              getEnv("APP_ENV", "development"),
			AppDeploymentUrl:         getEnv("APP_DEPLOYMENT_URL", ""),
			AppEmailVerificationKey:  getEnv("APP_EMAIL_VERIFICATION_KEY", ""),
			RequireEmailVerification: getEnvBool("APP_REQUIRE_EMAIL_VERIFICATION", true),
			AllowOrigins:             splitList(getEnv("APP_ALLOW_ORIGINS", "http://localhost:3000,http://localhost:8080")),
			AuthRateLimitPerMinute:   authRateLimit,
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "price_prediction"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
			Path:     getEnv("DB_PATH", "price_prediction.db"),
		},
		JWT: JWTConfig{
			SecretKey:   getEnv("JWT_SECRET", ""),
			ExpiryHours: expiryHours,
		},
		Mailjet: MailjetConfig{
			MailjetBaseUrl:           getEnv("MAILJET_BASE_URL", ""),
			MailjetBasicAuthUsername: getEnv("MAILJET_BASIC_AUTH_USERNAME", ""),
			MailjetBasicAuthPassword: getEnv("MAILJET_BASIC_AUTH_PASSWORD", ""),
			MailjetSenderEmail:       getEnv("MAILJET_SENDER_EMAIL", ""),
			MailjetSenderName:        getEnv("MAILJET_SENDER_NAME", ""),
		},
		Redis: RedisConfig{
			Enabled:       getEnvBool("REDIS_ENABLED", true),
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
		},
		Admin: AdminConfig{
			Email:    getEnv("ADMIN_EMAIL", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
			Username: getEnv("ADMIN_USERNAME", "admin"),
		},
		Model: loadModelConfig(),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadModel reads only the dataset and artifact settings. The offline
// trainer uses it so it does not need server secrets.
func LoadModel() ModelConfig {
	_ = godotenv.Load()
	return loadModelConfig()
}

func loadModelConfig() ModelConfig {
	return ModelConfig{
		DatasetPath:      getEnv("DATASET_PATH", "commodity_price.csv"),
		ArtifactPath:     getEnv("MODEL_ARTIFACT_PATH", "models.json"),
		IdentifierColumn: getEnv("DATASET_IDENTIFIER_COLUMN", "Commodities"),
	}
}

func (cfg *Config) validate() error {
	if cfg.JWT.SecretKey == "" {
		return errors.New("missing jwt secret")
	}

	switch cfg.Database.Driver {
	case "postgres", "mysql":
		if cfg.Database.Password == "" {
			return errors.New("missing database password")
		}
	case "sqlite":
	default:
		return errors.New("unsupported database driver: " + cfg.Database.Driver)
	}

	if cfg.App.RequireEmailVerification {
		if cfg.App.AppDeploymentUrl == "" {
			return errors.New("missing app deployment url")
		}

		// AES-CBC needs a 16, 24 or 32 byte key
		switch len(cfg.App.AppEmailVerificationKey) {
		case 16, 24, 32:
		case 0:
			return errors.New("missing app email verification key")
		default:
			return errors.New("app email verification key must be 16, 24 or 32 bytes")
		}
	}

	if (cfg.Admin.Email == "") != (cfg.Admin.Password == "") {
		return errors.New("admin email and password must be set together")
	}

	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}

	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}

	return b
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
