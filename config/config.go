package config

import (
	"errors"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type HTTP struct {
	Addr string `yaml:"addr"`
}

type Logging struct {
	Env       string `yaml:"env"`       // dev|stage|prod
	Service   string `yaml:"service"`   // party-service
	Version   string `yaml:"version"`   // v0.1.0
	Backend   string `yaml:"backend"`   // std|zap
	AddSource bool   `yaml:"addSource"` // false|true
	Debug     bool   `yaml:"debug"`     // false|true
}

type Postgres struct {
	DSN string `yaml:"dsn"` // empty disables chat/session persistence
}

type Auth struct {
	Secret string `yaml:"secret"`
	Issuer string `yaml:"issuer"`
}

type Lobby struct {
	RoomCap          int    `yaml:"room_cap"`
	CountdownSeconds int    `yaml:"countdown_seconds"`
	TickInterval     string `yaml:"tick_interval"`
	GracePeriod      string `yaml:"grace_period"`
}

func (l Lobby) TickIntervalDuration() time.Duration {
	return parseDurationOr(time.Second, l.TickInterval)
}

func (l Lobby) GracePeriodDuration() time.Duration {
	return parseDurationOr(10*time.Second, l.GracePeriod)
}

type GameEntry struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	MinPlayers int    `yaml:"min_players"`
	MaxPlayers int    `yaml:"max_players"`
}

type Config struct {
	HTTP     HTTP        `yaml:"http"`
	Logging  Logging     `yaml:"logging"`
	Postgres Postgres    `yaml:"postgres"`
	Auth     Auth        `yaml:"auth"`
	Lobby    Lobby       `yaml:"lobby"`
	Games    []GameEntry `yaml:"games"` // empty falls back to the built-in catalog
}

func LoadConfig() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./config/config.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr is required")
	}
	if c.Auth.Secret == "" {
		return errors.New("auth.secret is required")
	}
	if c.Logging.Service == "" {
		c.Logging.Service = "party-service"
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "dev"
	}
	if c.Logging.Version == "" {
		c.Logging.Version = "v0.1.0"
	}
	if c.Logging.Backend == "" {
		c.Logging.Backend = "std"
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = "flirting-singles"
	}
	return nil
}

func parseDurationOr(def time.Duration, s string) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return def
}
