package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Server   ServerConfig   `env:",prefix=SERVER_"`
	Postgres PostgresConfig `env:",prefix=POSTGRES_"`
	Redis    RedisConfig    `env:",prefix=REDIS_"`
	AMQP     AMQPConfig     `env:",prefix=AMQP_"`
	JWT      JWTConfig      `env:",prefix=JWT_"`
	Security SecurityConfig `env:",prefix="`
	Password PasswordConfig `env:",prefix=PASSWORD_"`
	CORS     CORSConfig     `env:",prefix=CORS_"`
	Env      string         `env:"ENV,default=development"`
}

type ServerConfig struct {
	Port         string   `env:"PORT,default=8080"`
	Host         string   `env:"HOST,default=0.0.0.0"`
	ReadTimeout  Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout Duration `env:"WRITE_TIMEOUT,default=15s"`
}

type PostgresConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=5432"`
	User     string `env:"USER,default=nano_market"`
	Password string `env:"PASSWORD,default=nano_market_password"`
	DBName   string `env:"DB,default=nano_market_db"`
	SSLMode  string `env:"SSLMODE,default=disable"`
}

type RedisConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=6379"`
	Password string `env:"PASSWORD,default="`
	DB       int    `env:"DB,default=0"`
}

// AMQPConfig configures the optional verification-event publisher.
// An empty URL disables publishing.
type AMQPConfig struct {
	URL   string `env:"URL,default="`
	Queue string `env:"QUEUE,default=auth.verification_requested"`
}

type JWTConfig struct {
	Secret                  string   `env:"SECRET,required"`
	Algorithm               string   `env:"ALGORITHM,default=HS256"`
	AccessTokenExpiry       Duration `env:"ACCESS_TOKEN_EXPIRY,default=15m"`
	RefreshTokenExpiry      Duration `env:"REFRESH_TOKEN_EXPIRY,default=7d"`
	VerificationTokenExpiry Duration `env:"VERIFICATION_TOKEN_EXPIRY,default=24h"`
}

type SecurityConfig struct {
	BCryptCost        int      `env:"BCRYPT_COST,default=12"`
	MaxLoginAttempts  int      `env:"MAX_LOGIN_ATTEMPTS,default=3"`
	LockoutDuration   Duration `env:"ACCOUNT_LOCKOUT_DURATION,default=60m"`
	RateLimitRequests int      `env:"RATE_LIMIT_REQUESTS,default=10"`
	RateLimitWindow   Duration `env:"RATE_LIMIT_WINDOW,default=1m"`
}

type PasswordConfig struct {
	MinLength        int  `env:"MIN_LENGTH,default=8"`
	RequireUppercase bool `env:"REQUIRE_UPPERCASE,default=true"`
	RequireDigit     bool `env:"REQUIRE_DIGIT,default=true"`
	RequireSpecial   bool `env:"REQUIRE_SPECIAL,default=true"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS,default=http://localhost:3000"`
	AllowedMethods []string `env:"ALLOWED_METHODS,default=GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders []string `env:"ALLOWED_HEADERS,default=Content-Type,Authorization"`
}

// DSN returns PostgreSQL connection string
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

// Address returns Redis connection address
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var config Config

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Validate JWT secret length
	if len(config.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}

	if config.JWT.Algorithm != "HS256" {
		return nil, fmt.Errorf("unsupported JWT_ALGORITHM %q", config.JWT.Algorithm)
	}

	return &config, nil
}
