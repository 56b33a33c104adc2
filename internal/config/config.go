package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env       string    `yaml:"env" env:"ENV" env-default:"local"`
	Postgres  Postgres  `yaml:"postgres"`
	Server    Server    `yaml:"server"`
	Storage   Storage   `yaml:"storage"`
	Matching  Matching  `yaml:"matching"`
	Notifier  Notifier  `yaml:"notifier"`
	Predictor Predictor `yaml:"predictor"`
}

type Postgres struct {
	Username        string        `env:"POSTGRES_USER" env-required:"true"`
	Password        string        `env:"POSTGRES_PASSWORD" env-required:"true"`
	Host            string        `yaml:"host" env:"POSTGRES_HOST" env-default:"localhost"`
	Port            string        `env:"POSTGRES_PORT" env-required:"true"`
	Database        string        `env:"POSTGRES_DB" env-required:"true"`
	MaxOpenConns    int           `yaml:"max_open_conns" env-default:"50"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env-default:"10"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env-default:"5m"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" env-default:"1m"`
}

type Server struct {
	Host    string        `yaml:"host" env-default:"localhost"`
	Port    string        `yaml:"port" env-default:"8080"`
	Timeout time.Duration `yaml:"timeout" env-default:"5s"`
}

// Storage bounds every persistence call. A call that outlives Timeout fails
// with apperrors.ErrStorageTimeout.
type Storage struct {
	Timeout time.Duration `yaml:"timeout" env-default:"3s"`
}

type Weights struct {
	Distance float64 `yaml:"distance"`
	Recency  float64 `yaml:"recency"`
	Response float64 `yaml:"response"`
}

type UrgencyWeights struct {
	Emergency Weights `yaml:"emergency"`
	Urgent    Weights `yaml:"urgent"`
	Normal    Weights `yaml:"normal"`
}

type Matching struct {
	RadiusKm       float64        `yaml:"radius_km" env-default:"100"`
	NearbyRadiusKm float64        `yaml:"nearby_radius_km" env-default:"50"`
	TopN           int            `yaml:"top_n" env-default:"20"`
	Cooldown       time.Duration  `yaml:"cooldown" env-default:"2160h"`
	Weights        UrgencyWeights `yaml:"weights"`
}

// WeightsFor returns the weights configured for urgency. Unknown urgencies and
// all-zero weight sets fall back to the defaults.
func (m Matching) WeightsFor(urgency string) Weights {
	var w Weights

	switch urgency {
	case "emergency":
		w = m.Weights.Emergency
	case "urgent":
		w = m.Weights.Urgent
	default:
		w = m.Weights.Normal
	}

	if w == (Weights{}) {
		return DefaultWeights(urgency)
	}

	return w
}

// DefaultWeights weights distance more heavily the more urgent a request is.
func DefaultWeights(urgency string) Weights {
	switch urgency {
	case "emergency":
		return Weights{Distance: 1.5, Recency: 0.5, Response: 1.0}
	case "urgent":
		return Weights{Distance: 1.2, Recency: 0.8, Response: 1.0}
	default:
		return Weights{Distance: 1.0, Recency: 1.0, Response: 1.0}
	}
}

type Notifier struct {
	Backend string `yaml:"backend" env:"NOTIFIER_BACKEND" env-default:"log"`
	Redis   Redis  `yaml:"redis"`
	MQTT    MQTT   `yaml:"mqtt"`
}

type Redis struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env-default:"0"`
	Stream   string `yaml:"stream" env-default:"blood-request-events"`
	MaxLen   int64  `yaml:"max_len" env-default:"100000"`
}

type MQTT struct {
	Broker         string        `yaml:"broker" env:"MQTT_BROKER" env-default:"tcp://localhost:1883"`
	ClientID       string        `yaml:"client_id" env:"MQTT_CLIENT_ID" env-default:"donor-match-service"`
	Username       string        `env:"MQTT_USERNAME"`
	Password       string        `env:"MQTT_PASSWORD"`
	Topic          string        `yaml:"topic" env-default:"blood-requests"`
	QoS            byte          `yaml:"qos" env-default:"1"`
	PublishTimeout time.Duration `yaml:"publish_timeout" env-default:"2s"`
}

// Predictor points at the external response-probability and recommendation
// service. An empty URL disables both collaborators.
type Predictor struct {
	URL     string        `yaml:"url" env:"PREDICTOR_URL"`
	Timeout time.Duration `yaml:"timeout" env-default:"2s"`
	Retries int           `yaml:"retries" env-default:"2"`
}

func Load() (*Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		return nil, errors.New("CONFIG_PATH is not set")
	}

	return LoadFile(configPath)
}

func LoadFile(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("config file does not exist: %w", err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}

	return cfg
}
