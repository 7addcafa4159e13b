package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Pipeline  PipelineConfig
	Auth      AuthConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// MethodLimit is a request quota for one operation: Limit requests per
// Period. Limit 0 disables the quota.
type MethodLimit struct {
	Limit  int64
	Period time.Duration
}

// RateLimitConfig carries per-operation quotas, enforced only when a Redis
// store is configured.
type RateLimitConfig struct {
	Insert  MethodLimit
	Replace MethodLimit
}

type PipelineConfig struct {
	// SingularInserts forces single-document insert semantics regardless of
	// payload shape.
	SingularInserts bool
	// DomainFile is the YAML file holding the resource definitions.
	DomainFile string
}

type AuthConfig struct {
	// JWTSecret verifies HS256 bearer tokens when set; requests stay
	// anonymous otherwise.
	JWTSecret string
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "5000")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_ENVIRONMENT", "development")
	viper.SetDefault("MONGODB_DATABASE", "strata")
	viper.SetDefault("MONGODB_TIMEOUT", 10)
	viper.SetDefault("DOMAIN_FILE", "domain.yaml")
	viper.SetDefault("RATE_LIMIT_POST_PERIOD", 60)
	viper.SetDefault("RATE_LIMIT_PUT_PERIOD", 60)

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetString("SERVER_PORT"),
			Host:         viper.GetString("SERVER_HOST"),
			Environment:  viper.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		MongoDB: MongoDBConfig{
			URI:      viper.GetString("MONGODB_URI"),
			Database: viper.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       0,
		},
		RateLimit: RateLimitConfig{
			Insert: MethodLimit{
				Limit:  viper.GetInt64("RATE_LIMIT_POST"),
				Period: time.Duration(viper.GetInt("RATE_LIMIT_POST_PERIOD")) * time.Second,
			},
			Replace: MethodLimit{
				Limit:  viper.GetInt64("RATE_LIMIT_PUT"),
				Period: time.Duration(viper.GetInt("RATE_LIMIT_PUT_PERIOD")) * time.Second,
			},
		},
		Pipeline: PipelineConfig{
			SingularInserts: viper.GetBool("SINGULAR_INSERTS"),
			DomainFile:      viper.GetString("DOMAIN_FILE"),
		},
		Auth: AuthConfig{
			JWTSecret: viper.GetString("JWT_SECRET"),
		},
	}
	return cfg, nil
}
