package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port               string   `mapstructure:"PORT"`
	Env                string   `mapstructure:"ENV"`
	DatabaseURL        string   `mapstructure:"DATABASE_URL"`
	DBMaxConns         int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns         int32    `mapstructure:"DB_MIN_CONNS"`
	JWTSecret          string   `mapstructure:"JWT_SECRET"`
	AuthIssuer         string   `mapstructure:"AUTH_ISSUER"`
	AuthAudience       string   `mapstructure:"AUTH_AUDIENCE"`
	AuthJWKSURL        string   `mapstructure:"AUTH_JWKS_URL"`
	AIServiceURL       string   `mapstructure:"AI_SERVICE_URL"`
	AIRecommendTimeout int      `mapstructure:"AI_RECOMMEND_TIMEOUT"`
	AIMappingTimeout   int      `mapstructure:"AI_MAPPING_TIMEOUT"`
	AISearchTimeout    int      `mapstructure:"AI_SEARCH_TIMEOUT"`
	AIBreakerEnabled   bool     `mapstructure:"AI_BREAKER_ENABLED"`
	CORSOrigins        []string `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS       float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst     int      `mapstructure:"RATE_LIMIT_BURST"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("AI_RECOMMEND_TIMEOUT", 10)
	v.SetDefault("AI_MAPPING_TIMEOUT", 10)
	v.SetDefault("AI_SEARCH_TIMEOUT", 5)
	v.SetDefault("AI_BREAKER_ENABLED", true)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("AUTH_ISSUER")
	v.BindEnv("AUTH_AUDIENCE")
	v.BindEnv("AUTH_JWKS_URL")
	v.BindEnv("AI_SERVICE_URL")
	v.BindEnv("AI_RECOMMEND_TIMEOUT")
	v.BindEnv("AI_MAPPING_TIMEOUT")
	v.BindEnv("AI_SEARCH_TIMEOUT")
	v.BindEnv("AI_BREAKER_ENABLED")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// RecommendTimeout returns the outbound timeout for AI recommendation calls.
func (c *Config) RecommendTimeout() time.Duration {
	return time.Duration(c.AIRecommendTimeout) * time.Second
}

// MappingTimeout returns the outbound timeout for AI semantic-mapping calls.
func (c *Config) MappingTimeout() time.Duration {
	return time.Duration(c.AIMappingTimeout) * time.Second
}

// SearchTimeout returns the outbound timeout for AI code-search calls.
func (c *Config) SearchTimeout() time.Duration {
	return time.Duration(c.AISearchTimeout) * time.Second
}

// Validate checks that the configuration is safe to run. Outside development
// mode a JWT verification source must be configured so that real
// authentication is enforced. AI_SERVICE_URL is optional everywhere: when it
// is empty the server runs with the offline provider and code suggestions
// degrade to empty results.
func (c *Config) Validate() error {
	if !c.IsDev() && c.JWTSecret == "" && c.AuthJWKSURL == "" && c.AuthIssuer == "" {
		return fmt.Errorf(
			"one of JWT_SECRET, AUTH_JWKS_URL or AUTH_ISSUER must be set when ENV=%q. "+
				"Refusing to start without authentication configuration", c.Env)
	}
	if c.AIRecommendTimeout <= 0 || c.AIMappingTimeout <= 0 || c.AISearchTimeout <= 0 {
		return fmt.Errorf("AI timeouts must be positive (seconds)")
	}
	return nil
}
