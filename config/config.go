package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cast"
)

// Config is read from an optional TOML file (CONFIG_FILE) and then from the
// environment, which wins. Unset fields are filled from Defaults.
type Config struct {
	Port           string
	Env            string
	LogLevel       string
	Store          string
	RequestTimeout time.Duration

	MongoURI      string
	MongoDatabase string
	// MongoStandalone disables multi-document transactions, which standalone
	// servers do not support.
	MongoStandalone bool

	RedisURL    string
	NatsURL     string
	EventPrefix string

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	UploadDir   string
	CORSOrigins []string

	PlaidClientID string
	PlaidSecret   string
	PlaidEnv      string

	// File is the TOML file the config was read from, if any.
	File string
}

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

var ErrInvalidConfig = errors.New("invalid configuration")

func Defaults() Config {
	return Config{
		Port:            "5001",
		Env:             "development",
		LogLevel:        "info",
		Store:           StoreMongo,
		RequestTimeout:  15 * time.Second,
		MongoDatabase:   "fintrack",
		EventPrefix:     "fintrack",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		UploadDir:       "uploads",
		CORSOrigins:     []string{"http://localhost:3000"},
		PlaidEnv:        "sandbox",
	}
}

// LookupFunc resolves a configuration key such as "MONGO_URI".
type LookupFunc func(key string) (string, bool)

// Load reads .env, then the optional config file and the process environment.
func Load() (Config, error) {
	// Load Env file
	_ = godotenv.Load(".env")

	return LoadFrom(os.LookupEnv)
}

// LoadFrom builds a Config from env, reading CONFIG_FILE if env names one.
func LoadFrom(env LookupFunc) (Config, error) {
	var (
		cfg     Config
		sources []LookupFunc
	)

	if path, ok := env("CONFIG_FILE"); ok && path != "" {
		file, err := ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg.File = path
		sources = append(sources, file)
	}
	sources = append(sources, env)

	for _, lookup := range sources {
		if err := apply(&cfg, lookup); err != nil {
			return Config{}, err
		}
	}

	if err := mergo.Merge(&cfg, Defaults()); err != nil {
		return Config{}, fmt.Errorf("merge defaults: %w", err)
	}

	return cfg, cfg.Validate()
}

// ReadFile parses a TOML file whose keys are the lower-case config keys
// (log_level, mongo_uri, ...). Arrays are joined with commas.
func ReadFile(path string) (LookupFunc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	return func(key string) (string, bool) {
		v, ok := raw[strings.ToLower(key)]
		if !ok {
			return "", false
		}
		if list, isList := v.([]any); isList {
			return strings.Join(cast.ToStringSlice(list), ","), true
		}
		s, err := cast.ToStringE(v)
		if err != nil {
			return "", false
		}
		return s, true
	}, nil
}

func apply(cfg *Config, lookup LookupFunc) error {
	str := map[string]*string{
		"PORT":            &cfg.Port,
		"ENV":             &cfg.Env,
		"LOG_LEVEL":       &cfg.LogLevel,
		"STORE":           &cfg.Store,
		"MONGO_URI":       &cfg.MongoURI,
		"MONGO_DATABASE":  &cfg.MongoDatabase,
		"REDIS_URL":       &cfg.RedisURL,
		"NATS_URL":        &cfg.NatsURL,
		"EVENT_PREFIX":    &cfg.EventPrefix,
		"JWT_SECRET":      &cfg.JWTSecret,
		"UPLOAD_DIR":      &cfg.UploadDir,
		"PLAID_CLIENT_ID": &cfg.PlaidClientID,
		"PLAID_SECRET":    &cfg.PlaidSecret,
		"PLAID_ENV":       &cfg.PlaidEnv,
	}
	for key, dst := range str {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"REQUEST_TIMEOUT":   &cfg.RequestTimeout,
		"ACCESS_TOKEN_TTL":  &cfg.AccessTokenTTL,
		"REFRESH_TOKEN_TTL": &cfg.RefreshTokenTTL,
	}
	for key, dst := range durations {
		v, ok := lookup(key)
		if !ok || v == "" {
			continue
		}
		d, err := cast.ToDurationE(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
		}
		*dst = d
	}

	if v, ok := lookup("MONGO_STANDALONE"); ok && v != "" {
		b, err := cast.ToBoolE(v)
		if err != nil {
			return fmt.Errorf("%w: MONGO_STANDALONE: %v", ErrInvalidConfig, err)
		}
		cfg.MongoStandalone = b
	}

	if v, ok := lookup("CORS_ORIGINS"); ok && v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.CORSOrigins = origins
	}

	return nil
}

func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("%w: JWT_SECRET not set", ErrInvalidConfig)
	}

	switch c.Store {
	case StoreMemory:
	case StoreMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("%w: MONGO_URI not set", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store %q", ErrInvalidConfig, c.Store)
	}

	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("%w: token lifetimes must be positive", ErrInvalidConfig)
	}

	return nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) PlaidEnabled() bool {
	return c.PlaidClientID != "" && c.PlaidSecret != ""
}
