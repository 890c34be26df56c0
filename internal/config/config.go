// Package config resolves application settings from defaults, an optional
// application.yaml, an optional .env file and the process environment, in that
// order of precedence (lowest first).
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	DefaultEnvironment   = "desenvolvimento_default"
	DefaultCustomMessage = "Esta é uma mensagem padrão do Spring Boot."
	DefaultDBHost        = "localhost_db_default"
	DefaultDBPort        = "5432_db_default"
)

type Config struct {
	App           App           `koanf:"app"`
	DB            DBInfo        `koanf:"db"`
	Server        Server        `koanf:"server"`
	Shutdown      Shutdown      `koanf:"shutdown"`
	Database      Database      `koanf:"database"`
	Log           Log           `koanf:"log"`
	Console       Console       `koanf:"console"`
	Security      Security      `koanf:"security"`
	Kafka         Kafka         `koanf:"kafka"`
	Elasticsearch Elasticsearch `koanf:"elasticsearch"`
}

// App and DBInfo are informational only; they are echoed by GET /info.
type App struct {
	Environment   string `koanf:"environment"`
	CustomMessage string `koanf:"custommessage"`
}

type DBInfo struct {
	Host string `koanf:"host"`
	Port string `koanf:"port"`
}

type Server struct {
	Port    int `koanf:"port" validate:"min=1,max=65535"`
	Timeout struct {
		Read       time.Duration `koanf:"read"       validate:"gt=0"`
		Write      time.Duration `koanf:"write"      validate:"gt=0"`
		Idle       time.Duration `koanf:"idle"       validate:"gt=0"`
		ReadHeader time.Duration `koanf:"readheader" validate:"gt=0"`
	} `koanf:"timeout"`
}

type Shutdown struct {
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
}

type Database struct {
	Driver string `koanf:"driver" validate:"oneof=sqlite postgres"`
	URL    string `koanf:"url"    validate:"required"`
}

type Log struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
}

type Console struct {
	Enabled bool `koanf:"enabled"`
}

type Security struct {
	Session struct {
		Secret string        `koanf:"secret"`
		TTL    time.Duration `koanf:"ttl" validate:"gt=0"`
	} `koanf:"session"`
	Cookie struct {
		Secure bool `koanf:"secure"`
	} `koanf:"cookie"`
}

type Kafka struct {
	Brokers string `koanf:"brokers"`
	Topic   string `koanf:"topic" validate:"required"`
}

// BrokerList splits the comma separated broker setting.
func (k Kafka) BrokerList() []string {
	return CSV(k.Brokers)
}

type Elasticsearch struct {
	URL      string `koanf:"url"      validate:"omitempty,url"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	Index    string `koanf:"index"    validate:"required"`
}

// Options controls where Load looks for files. Empty paths are skipped.
type Options struct {
	YAMLFile string
	EnvFile  string
}

func DefaultOptions() Options {
	return Options{
		YAMLFile: EnvDefault("APP_CONFIG_FILE", "application.yaml"),
		EnvFile:  ".env",
	}
}

var knownSections = map[string]struct{}{
	"app": {}, "db": {}, "server": {}, "shutdown": {}, "database": {}, "log": {},
	"console": {}, "security": {}, "kafka": {}, "elasticsearch": {},
}

func defaults() map[string]any {
	return map[string]any{
		"app.environment":           DefaultEnvironment,
		"app.custommessage":         DefaultCustomMessage,
		"db.host":                   DefaultDBHost,
		"db.port":                   DefaultDBPort,
		"server.port":               8080,
		"server.timeout.read":       "10s",
		"server.timeout.write":      "15s",
		"server.timeout.idle":       "60s",
		"server.timeout.readheader": "3s",
		"shutdown.timeout":          "10s",
		"database.driver":           "sqlite",
		"database.url":              ":memory:",
		"log.level":                 "info",
		"console.enabled":           true,
		"security.session.secret":   "",
		"security.session.ttl":      "30m",
		"security.cookie.secure":    false,
		"kafka.brokers":             "",
		"kafka.topic":               "product_events",
		"elasticsearch.url":         "",
		"elasticsearch.username":    "",
		"elasticsearch.password":    "",
		"elasticsearch.index":       "products",
	}
}

func Load() (*Config, error) {
	return LoadWith(DefaultOptions())
}

func LoadWith(opts Options) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if opts.YAMLFile != "" {
		fk := koanf.New(".")
		if err := fk.Load(file.Provider(opts.YAMLFile), yaml.Parser()); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("load %s: %w", opts.YAMLFile, err)
			}
		} else if err := k.Load(confmap.Provider(lowerKeys(fk.All()), "."), nil); err != nil {
			return nil, fmt.Errorf("merge %s: %w", opts.YAMLFile, err)
		}
	}

	if opts.EnvFile != "" {
		if envFileMap, err := godotenv.Read(opts.EnvFile); err == nil {
			envMap := make(map[string]any, len(envFileMap))
			for key, value := range envFileMap {
				if path := envKey(key); path != "" {
					envMap[path] = value
				}
			}
			if err := k.Load(confmap.Provider(envMap, "."), nil); err != nil {
				return nil, fmt.Errorf("merge %s: %w", opts.EnvFile, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			log.Printf("Notice: cannot read %s: %v", opts.EnvFile, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

var validate = validator.New()

func (c *Config) Validate() error {
	return validate.Struct(c)
}

// envKey maps APP_CUSTOMMESSAGE to app.custommessage. Variables outside the
// known sections are dropped.
func envKey(key string) string {
	key = strings.ToLower(key)
	section, _, found := strings.Cut(key, "_")
	if !found {
		return ""
	}
	if _, ok := knownSections[section]; !ok {
		return ""
	}
	return strings.ReplaceAll(key, "_", ".")
}

func lowerKeys(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[strings.ToLower(k)] = v
	}
	return out
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// MaskURL hides credentials in a connection string before it is logged.
func MaskURL(url string) string {
	if url == "" {
		return "<not configured>"
	}
	parts := strings.Split(url, "@")
	if len(parts) == 2 {
		return "****@" + parts[1]
	}
	return url
}
