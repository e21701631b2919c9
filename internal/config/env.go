package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config contains all configuration parameters for the application.
// Passwords are never configured here; they are prompted at runtime (see ReadPassword).
type Config struct {
	Server Server
	Client Client
}

// Server configures the auth server
type Server struct {
	Port               string        `envconfig:"PORT" default:"3003"`
	NonceTTL           time.Duration `envconfig:"NONCE_TTL" default:"5m"`
	JWTSecret          string        `envconfig:"JWT_SECRET"`
	JWTIssuer          string        `envconfig:"JWT_ISSUER" default:"wallet-auth"`
	SessionTTL         time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	RedisURL           string        `envconfig:"REDIS_URL"`
	NonceRatePerSec    float64       `envconfig:"NONCE_RATE_PER_SEC" default:"1"`
	NonceRateBurst     int           `envconfig:"NONCE_RATE_BURST" default:"5"`
	AcceptAnySignature bool          `envconfig:"AUTH_ACCEPT_ANY_SIGNATURE" default:"false"`
	LogLevel           string        `envconfig:"LOG_LEVEL" default:"info"`
}

// Client configures walletctl
type Client struct {
	AuthServerURL string        `envconfig:"AUTH_SERVER_URL" default:"http://localhost:3003"`
	StorePath     string        `envconfig:"WALLET_STORE_PATH"`
	KDF           string        `envconfig:"WALLET_KDF" default:"scrypt"`
	HTTPTimeout   time.Duration `envconfig:"HTTP_TIMEOUT" default:"15s"`
	LogLevel      string        `envconfig:"LOG_LEVEL" default:"warn"`
}

// cfg is the global configuration instance
var cfg *Config

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	c := &Config{}
	if err := envconfig.Process("", &c.Server); err != nil {
		return nil, fmt.Errorf("failed to process server config: %w", err)
	}
	if err := envconfig.Process("", &c.Client); err != nil {
		return nil, fmt.Errorf("failed to process client config: %w", err)
	}
	if c.Client.StorePath == "" {
		c.Client.StorePath = defaultStorePath()
	}
	return c, nil
}

// Init loads configuration into the global instance.
func Init() error {
	c, err := Load()
	if err != nil {
		return err
	}
	cfg = c
	return nil
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

// Validate checks settings the server cannot run without.
func (s *Server) Validate() error {
	if s.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	if len(s.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters")
	}
	if s.NonceTTL <= 0 {
		return errors.New("NONCE_TTL must be positive")
	}
	if s.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	return nil
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "wallet.json"
	}
	return filepath.Join(dir, "wallet-auth", "wallet.json")
}
