package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"

	ConfigPathEnvVar  = "CONFIG_PATH"
	DefaultConfigPath = "config.yaml"
)

type Config struct {
	StorageType string          `koanf:"storage_type" validate:"oneof=memory postgres sqlite"`
	HTTP        HTTPConfig      `koanf:"http"`
	Postgres    PostgresConfig  `koanf:"postgres"`
	SQLite      SQLiteConfig    `koanf:"sqlite"`
	Static      StaticConfig    `koanf:"static"`
	Log         LogConfig       `koanf:"log"`
	RateLimit   RateLimitConfig `koanf:"rate_limit"`
	CORS        CORSConfig      `koanf:"cors"`
}

type PostgresConfig struct {
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	DB       string `koanf:"db"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port" validate:"min=1,max=65535"`
	SSLMode  string `koanf:"sslmode"`
	MaxConns int32  `koanf:"max_conns" validate:"min=1"`
}

func (pc PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		pc.User,
		pc.Password,
		pc.Host,
		pc.Port,
		pc.DB,
		pc.SSLMode,
	)
}

type HTTPConfig struct {
	Port string `koanf:"port" validate:"required,numeric"`
}

type SQLiteConfig struct {
	Path string `koanf:"path"`
}

type StaticConfig struct {
	Dir string `koanf:"dir"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json text"`
}

type RateLimitConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Requests int           `koanf:"requests" validate:"min=1"`
	Window   time.Duration `koanf:"window" validate:"min=1ms"`
}

type CORSConfig struct {
	Origins []string `koanf:"origins"`
}

func defaultConfig() Config {
	return Config{
		StorageType: StorageMemory,
		HTTP:        HTTPConfig{Port: "8080"},
		Postgres: PostgresConfig{
			User:     "flutter",
			DB:       "flutter",
			Host:     "localhost",
			Port:     5432,
			SSLMode:  "disable",
			MaxConns: 10,
		},
		SQLite: SQLiteConfig{Path: "flutter.db"},
		Static: StaticConfig{Dir: "public"},
		Log:    LogConfig{Level: "info", Format: "json"},
		RateLimit: RateLimitConfig{
			Enabled:  true,
			Requests: 100,
			Window:   time.Minute,
		},
		CORS: CORSConfig{Origins: []string{"*"}},
	}
}

var envMappings = map[string]string{
	"storage_type":        "storage_type",
	"port":                "http.port",
	"http_port":           "http.port",
	"postgres_user":       "postgres.user",
	"postgres_password":   "postgres.password",
	"postgres_db":         "postgres.db",
	"postgres_host":       "postgres.host",
	"postgres_port":       "postgres.port",
	"postgres_sslmode":    "postgres.sslmode",
	"postgres_max_conns":  "postgres.max_conns",
	"sqlite_path":         "sqlite.path",
	"static_dir":          "static.dir",
	"log_level":           "log.level",
	"log_format":          "log.format",
	"rate_limit_enabled":  "rate_limit.enabled",
	"rate_limit_requests": "rate_limit.requests",
	"rate_limit_window":   "rate_limit.window",
	"cors_origins":        "cors.origins",
}

// envValue maps an environment variable to its config path. Unknown and empty
// variables are skipped, and HTTP_PORT wins over PORT when both are set.
func envValue(key, value string) (string, any) {
	if value == "" {
		return "", nil
	}
	if strings.EqualFold(key, "PORT") && os.Getenv("HTTP_PORT") != "" {
		return "", nil
	}
	return envMappings[strings.ToLower(key)], value
}

var sliceConfigPaths = []string{
	"cors.origins",
}

// Load reads the configuration in three layers: defaults, an optional YAML file
// (CONFIG_PATH or ./config.yaml) and the environment.
func Load() (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	path, err := findConfigFile()
	if err != nil {
		return Config{}, err
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue("", ".", envValue), nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	if err := splitSlices(k); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var ErrInvalidConfig = errors.New("invalid config")

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.StorageType == StorageSQLite && c.SQLite.Path == "" {
		return fmt.Errorf("%w: sqlite.path is required for sqlite storage", ErrInvalidConfig)
	}
	if c.StorageType == StoragePostgres && (c.Postgres.Host == "" || c.Postgres.DB == "") {
		return fmt.Errorf("%w: postgres.host and postgres.db are required for postgres storage", ErrInvalidConfig)
	}
	return nil
}

// findConfigFile returns the YAML file to load, or "" when there is none. An
// explicit CONFIG_PATH must exist, while ./config.yaml is optional.
func findConfigFile() (string, error) {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config file %s: %w", path, err)
		}
		return path, nil
	}
	if _, err := os.Stat(DefaultConfigPath); err == nil {
		return DefaultConfigPath, nil
	}
	return "", nil
}

// splitSlices turns comma separated env values into string slices.
func splitSlices(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		raw, ok := k.Get(path).(string)
		if !ok {
			continue
		}

		parts := make([]string, 0)
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("set %s: %w", path, err)
		}
	}
	return nil
}
