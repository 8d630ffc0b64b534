package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const ConfigPathEnv = "AGGREGATOR_CONFIG_PATH"

type AggregatorConfig struct {
	Env        string `yaml:"env" env:"ENV" env-default:"local"`
	HTTPServer `yaml:"http_server"`
	GRPCServer `yaml:"grpc_server"`
	DB         `yaml:"db"`
	LogConfig  `yaml:"log_config"`
	Kafka      `yaml:"kafka"`
	Callback   `yaml:"callback"`
	Schedule   `yaml:"schedule"`
	Upstream   `yaml:"upstream"`
	Networks   `yaml:"networks"`
	APIAuth    `yaml:"api_auth"`
}

type HTTPServer struct {
	Host            string        `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port            string        `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env-default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env-default:"10m"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"15s"`
}

type GRPCServer struct {
	Host string `yaml:"host" env:"GRPC_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"GRPC_PORT" env-default:"9090"`
}

type DB struct {
	Dsn            string `yaml:"dsn" env:"DATABASE_DSN"`
	MigrationsPath string `yaml:"migrations_path" env:"DB_MIGRATIONS_PATH"`
	MaxOpenConns   int    `yaml:"max_open_conns" env-default:"10"`
	MaxIdleConns   int    `yaml:"max_idle_conns" env-default:"5"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT" env-default:"json"`
	LogOutput string `yaml:"log_output" env:"LOG_OUTPUT" env-default:"stdout"`
}

type Kafka struct {
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:","`
	Topic   string   `yaml:"topic" env:"KAFKA_TOPIC" env-default:"ingestion-events"`
}

// Enabled reports whether ingestion events should be published.
func (k Kafka) Enabled() bool {
	return len(k.Brokers) > 0
}

type Callback struct {
	URL     string        `yaml:"url" env:"INGESTION_CALLBACK_URL"`
	Timeout time.Duration `yaml:"timeout" env-default:"5s"`
}

// Enabled reports whether finished runs should be posted to a webhook.
func (c Callback) Enabled() bool {
	return c.URL != ""
}

type Schedule struct {
	// Interval between scheduled runs of every network. Zero disables the scheduler.
	Interval time.Duration `yaml:"interval" env:"SCHEDULE_INTERVAL" env-default:"0s"`
}

type Upstream struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" env-default:"2"`
	Burst             int     `yaml:"burst" env-default:"1"`
	UserAgent         string  `yaml:"user_agent" env-default:"Affiliate-Aggregator/1.0"`
}

type Networks struct {
	Adtraction    AdtractionConfig    `yaml:"adtraction"`
	PartnerAds    PartnerAdsConfig    `yaml:"partner_ads"`
	SmartResponse SmartResponseConfig `yaml:"smartresponse"`
}

type AdtractionConfig struct {
	BaseURL string        `yaml:"base_url" env-default:"https://api.adtraction.com/v2"`
	APIKey  string        `yaml:"api_key" env:"ADTRACTION_API_KEY"`
	Timeout time.Duration `yaml:"timeout" env-default:"30s"`
}

type PartnerAdsConfig struct {
	XMLURL     string        `yaml:"xml_url" env:"PARTNER_ADS_XML_URL"`
	Timeout    time.Duration `yaml:"timeout" env-default:"60s"`
	RetryDelay time.Duration `yaml:"retry_delay" env:"PARTNER_ADS_RETRY_DELAY" env-default:"60s"`
	MaxRetries int           `yaml:"max_retries" env-default:"3"`
}

type SmartResponseConfig struct {
	BaseURL     string        `yaml:"base_url" env-default:"https://login.smartresponse-media.com"`
	APIKey      string        `yaml:"api_key" env:"SMARTRESPONSE_API_KEY"`
	AffiliateID string        `yaml:"affiliate_id" env:"SMARTRESPONSE_AFFILIATE_ID"`
	Timeout     time.Duration `yaml:"timeout" env-default:"30s"`
}

type APIAuth struct {
	Username string `yaml:"username" env:"API_ROUTE_USERNAME"`
	Password string `yaml:"password" env:"API_ROUTE_PASSWORD"`
}

// Load reads the YAML file at path and applies environment overrides.
func Load(path string) (*AggregatorConfig, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	var cfg AggregatorConfig
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return &cfg, nil
}

// LoadEnv builds the configuration from environment variables and defaults only.
func LoadEnv() (*AggregatorConfig, error) {
	var cfg AggregatorConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return &cfg, nil
}

func MustLoad() *AggregatorConfig {
	configPath := os.Getenv(ConfigPathEnv)

	var (
		cfg *AggregatorConfig
		err error
	)
	if configPath == "" {
		log.Printf("%s was not set, reading configuration from environment\n", ConfigPathEnv)
		cfg, err = LoadEnv()
	} else {
		cfg, err = Load(configPath)
	}
	if err != nil {
		log.Fatalf("%v\n", err)
	}

	return cfg
}
