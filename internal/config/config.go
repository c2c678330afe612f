package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	API struct {
		URL     string `yaml:"url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"api"`
	Socket struct {
		URL         string `yaml:"url"`
		Path        string `yaml:"path"`
		Reconnect   *bool  `yaml:"reconnect"`
		MaxAttempts int    `yaml:"maxAttempts"`
		BackoffMin  string `yaml:"backoffMin"`
		BackoffMax  string `yaml:"backoffMax"`
	} `yaml:"socket"`
	Join struct {
		BattleTimeout    string `yaml:"battleTimeout"`
		AllForAllTimeout string `yaml:"allForAllTimeout"`
	} `yaml:"join"`
	Game struct {
		Feedback        string `yaml:"feedback"`
		Podium          string `yaml:"podium"`
		QuestionSeconds int    `yaml:"questionSeconds"`
	} `yaml:"game"`
	Storage struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"storage"`
	Cache struct {
		TTL string `yaml:"ttl"`
	} `yaml:"cache"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Status struct {
		Addr string `yaml:"addr"`
	} `yaml:"status"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Load reads YAML config from path and applies environment overrides.
// A missing file is not an error: the client runs on defaults plus env.
func Load(path string) (Config, error) {
	cfg := Config{}
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	case os.IsNotExist(err):
	default:
		return cfg, err
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	override(&cfg.API.URL, "CLASSBATTLE_API_URL")
	override(&cfg.Socket.URL, "CLASSBATTLE_SOCKET_URL")
	override(&cfg.Storage.Addr, "REDIS_ADDR")
	override(&cfg.Postgres.URL, "POSTGRES_URL")
	override(&cfg.Log.Level, "LOG_LEVEL")
	override(&cfg.Status.Addr, "STATUS_ADDR")
}

func override(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.API.URL == "" {
		cfg.API.URL = "http://localhost:3000"
	}
	if cfg.Socket.URL == "" {
		cfg.Socket.URL = cfg.API.URL
	}
	if cfg.Socket.Path == "" {
		cfg.Socket.Path = "/socket.io/"
	}
	if cfg.Socket.Reconnect == nil {
		on := true
		cfg.Socket.Reconnect = &on
	}
	if cfg.Game.QuestionSeconds == 0 {
		cfg.Game.QuestionSeconds = 20
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// ReconnectEnabled reports the effective reconnect setting.
func (c Config) ReconnectEnabled() bool {
	return c.Socket.Reconnect == nil || *c.Socket.Reconnect
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
