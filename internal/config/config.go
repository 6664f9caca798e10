package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type HTTPServer struct {
	Addr            string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type RedisConnect struct {
	Host     string `yaml:"REDIS_HOST" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"REDIS_PORT" env:"REDIS_PORT" env-default:"6379"`
	Username string `yaml:"REDIS_USER" env:"REDIS_USER"`
	Password string `yaml:"REDIS_PASSWORD" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"REDIS_DB" env:"REDIS_DB" env-default:"0"`
}

// Backend is the remote REST service holding auth and orders.
type Backend struct {
	BaseURL            string        `yaml:"BASE_URL" env:"BACKEND_BASE_URL" env-required:"true"`
	Timeout            time.Duration `yaml:"TIMEOUT" env:"BACKEND_TIMEOUT" env-default:"10s"`
	HealthPath         string        `yaml:"HEALTH_PATH" env:"BACKEND_HEALTH_PATH" env-default:"/health"`
	BreakerMaxFailures uint32        `yaml:"BREAKER_MAX_FAILURES" env:"BACKEND_BREAKER_MAX_FAILURES" env-default:"5"`
	BreakerOpenTimeout time.Duration `yaml:"BREAKER_OPEN_TIMEOUT" env:"BACKEND_BREAKER_OPEN_TIMEOUT" env-default:"30s"`
}

type CartConfig struct {
	TTL             time.Duration `yaml:"ttl" env:"CART_TTL" env-default:"720h"`
	MaxLineQuantity int           `yaml:"max_line_quantity" env:"CART_MAX_LINE_QUANTITY" env-default:"99"`
}

type SessionConfig struct {
	TTL          time.Duration `yaml:"ttl" env:"SESSION_TTL" env-default:"24h"`
	CookieName   string        `yaml:"cookie_name" env:"SESSION_COOKIE_NAME" env-default:"sf_session"`
	CookieSecure bool          `yaml:"cookie_secure" env:"SESSION_COOKIE_SECURE" env-default:"false"`
	LoginPath    string        `yaml:"login_path" env:"SESSION_LOGIN_PATH" env-default:"/login"`
	RegistrySize int           `yaml:"registry_size" env:"SESSION_REGISTRY_SIZE" env-default:"10000"`
}

type CheckoutConfig struct {
	CardPaymentDelay time.Duration `yaml:"card_payment_delay" env:"CHECKOUT_CARD_PAYMENT_DELAY" env-default:"2s"`
}

type RateConfig struct {
	MaxAttempts int64         `yaml:"MAX_ATTEMPTS" env:"MAX_ATTEMPTS" env-default:"5"`
	WindowSize  time.Duration `yaml:"WINDOW_SIZE" env:"WINDOW_SIZE" env-default:"15s"`
}

type CacheConfig struct {
	DefaultTTL time.Duration `yaml:"default_ttl" env:"CACHE_DEFAULT_TTL" env-default:"5m"`
}

type TelemetryConfig struct {
	Enabled      bool    `yaml:"ENABLED" env:"OTEL_ENABLED" env-default:"false"`
	ServiceName  string  `yaml:"SERVICE_NAME" env:"OTEL_SERVICE_NAME" env-default:"storefront"`
	Endpoint     string  `yaml:"EXPORTER_ENDPOINT" env:"OTEL_EXPORTER_ENDPOINT" env-default:"localhost:4318"`
	SamplerRatio float64 `yaml:"SAMPLER_RATIO" env:"OTEL_SAMPLER_RATIO" env-default:"1.0"`
}

type Config struct {
	Env          string          `yaml:"env" env:"ENV" env-required:"true"`
	HTTPServer   HTTPServer      `yaml:"http_server"`
	RedisConnect RedisConnect    `yaml:"redis"`
	Backend      Backend         `yaml:"backend"`
	Cart         CartConfig      `yaml:"cart"`
	Session      SessionConfig   `yaml:"session"`
	Checkout     CheckoutConfig  `yaml:"checkout"`
	RateConfig   RateConfig      `yaml:"rateConfig"`
	Cache        CacheConfig     `yaml:"cache"`
	Telemetry    TelemetryConfig `yaml:"otel"`
}

func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {
		flags := flag.String("config", "", "path to the config file")

		flag.Parse()

		configPath = *flags

		if configPath == "" {
			log.Fatal("Config path is not set")
		}
	}

	cfg, err := LoadConfigFromPath(configPath)
	if err != nil {
		log.Fatal(err.Error())
	}

	return cfg
}

// LoadConfigFromPath reads the YAML file and then applies env overrides.
func LoadConfigFromPath(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("can not read config file: %w", err)
	}

	return &cfg, nil
}

func (r *RedisConnect) GetDSN() string {
	return fmt.Sprintf("redis://%s:%s@%s:%s/%d", r.Username, r.Password, r.Host, r.Port, r.DB)
}
