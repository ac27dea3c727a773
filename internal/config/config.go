package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"jwtauth"`
	HTTPAddr    string `env:"HTTP_ADDR"    envDefault:":8080"`
	LogLevel    string `env:"LOG_LEVEL"    envDefault:"info"`

	Database Database `envPrefix:"DB_"`
	JWT      JWT      `envPrefix:"JWT_"`
	Cookie   Cookie   `envPrefix:"COOKIE_"`
	Kafka    Kafka    `envPrefix:"KAFKA_"`
	CSRF     CSRF     `envPrefix:"CSRF_"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`
}

type Database struct {
	Driver string `env:"DRIVER" envDefault:"sqlite"`
	URL    string `env:"URL"`
	Seed   bool   `env:"SEED"   envDefault:"true"`
}

type JWT struct {
	Secret           string        `env:"SECRET"`
	Issuer           string        `env:"ISSUER"             envDefault:"cagmc.jwtauth"`
	Audience         string        `env:"AUDIENCE"           envDefault:"cagmc.jwtauth.clients"`
	RefreshTokenSize int           `env:"REFRESH_TOKEN_SIZE" envDefault:"32"`
	AccessTTL        time.Duration `env:"ACCESS_TTL"         envDefault:"30m"`
	RefreshTTL       time.Duration `env:"REFRESH_TTL"        envDefault:"168h"`
}

type Cookie struct {
	Name   string        `env:"NAME"   envDefault:"jwtauth.session"`
	TTL    time.Duration `env:"TTL"    envDefault:"168h"`
	Secure bool          `env:"SECURE" envDefault:"true"`
	Domain string        `env:"DOMAIN"`
}

type CSRF struct {
	Enabled    bool   `env:"ENABLED"     envDefault:"false"`
	CookieName string `env:"COOKIE_NAME" envDefault:"XSRF-TOKEN"`
	Header     string `env:"HEADER"      envDefault:"X-CSRF-Token"`
}

type Kafka struct {
	Brokers []string `env:"BROKERS" envSeparator:","`
	Topic   string   `env:"TOPIC"   envDefault:"account_events"`
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env file not found: %v. Using system environment variables", err)
	}
	return Parse()
}

func Parse() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.JWT.Issuer == "" {
		errs = append(errs, errors.New("JWT_ISSUER is required"))
	}
	if c.JWT.Audience == "" {
		errs = append(errs, errors.New("JWT_AUDIENCE is required"))
	}
	if c.JWT.RefreshTokenSize <= 0 {
		errs = append(errs, errors.New("JWT_REFRESH_TOKEN_SIZE must be positive"))
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		errs = append(errs, errors.New("JWT_ACCESS_TTL and JWT_REFRESH_TTL must be positive"))
	}
	if c.Cookie.TTL <= 0 {
		errs = append(errs, errors.New("COOKIE_TTL must be positive"))
	}
	if c.Cookie.Name == "" {
		errs = append(errs, errors.New("COOKIE_NAME is required"))
	}
	return errors.Join(errs...)
}
