package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"orders/internal/pkg/logger"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// ConfigPathEnv names the optional YAML file read before the environment.
const ConfigPathEnv = "ORDERS_CONFIG_PATH"

type Config struct {
	HTTP         HTTPConfig        `yaml:"http"`
	Postgres     PostgresConfig    `yaml:"postgres"`
	Redis        RedisConfig       `yaml:"redis"`
	Kafka        KafkaConfig       `yaml:"kafka"`
	Alipay       AlipayConfig      `yaml:"alipay"`
	Wechat       WechatConfig      `yaml:"wechat"`
	Gateway      GatewayConfig     `yaml:"gateway"`
	Foundations  FoundationsConfig `yaml:"foundations"`
	Jobs         JobsConfig        `yaml:"jobs"`
	RefundPool   RefundPoolConfig  `yaml:"refund_pool"`
	Log          logger.Config     `yaml:"log"`
	ProductAppID string            `yaml:"product_app_id" env:"PRODUCT_APP_ID" env-default:"jzo2o.orders"`
	TimeZone     string            `yaml:"time_zone" env:"TIME_ZONE" env-default:"Asia/Shanghai"`
}

type HTTPConfig struct {
	Port            string        `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type PostgresConfig struct {
	Host     string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"DB_USER" env-required:"true"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	Name     string `yaml:"name" env:"DB_NAME" env-default:"orders"`
	SslMode  string `yaml:"ssl_mode" env:"DB_SSLMODE" env-default:"disable"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SslMode)
}

type RedisConfig struct {
	Addr        string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password    string `yaml:"password" env:"REDIS_PASSWORD"`
	DB          int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
	SequenceKey string `yaml:"sequence_key" env:"REDIS_SEQUENCE_KEY" env-default:"orders:id:sequence"`
}

type KafkaConfig struct {
	Brokers       []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:"," env-default:"localhost:9092"`
	ConsumerGroup string   `yaml:"consumer_group" env:"KAFKA_CONSUMER_GROUP" env-default:"orders"`
	TradeTopic    string   `yaml:"trade_topic" env:"KAFKA_TRADE_STATUS_TOPIC" env-default:"trade.status"`
}

// AlipayConfig enables the Alipay channel when AppID is set.
type AlipayConfig struct {
	AppID        string `yaml:"app_id" env:"ALIPAY_APP_ID"`
	PrivateKey   string `yaml:"private_key" env:"ALIPAY_PRIVATE_KEY"`
	PublicKey    string `yaml:"public_key" env:"ALIPAY_PUBLIC_KEY"`
	NotifyURL    string `yaml:"notify_url" env:"ALIPAY_NOTIFY_URL"`
	IsProduction bool   `yaml:"is_production" env:"ALIPAY_IS_PRODUCTION" env-default:"false"`
	Gateway      string `yaml:"gateway" env:"ALIPAY_GATEWAY"`
}

// WechatConfig enables the WeChat Pay channel when MchID is set.
type WechatConfig struct {
	AppID                string `yaml:"app_id" env:"WECHAT_APP_ID"`
	MchID                string `yaml:"mch_id" env:"WECHAT_MCH_ID"`
	MchCertificateSerial string `yaml:"mch_certificate_serial" env:"WECHAT_MCH_CERTIFICATE_SERIAL"`
	MchPrivateKey        string `yaml:"mch_private_key" env:"WECHAT_MCH_PRIVATE_KEY"`
	APIv3Key             string `yaml:"api_v3_key" env:"WECHAT_API_V3_KEY"`
	NotifyURL            string `yaml:"notify_url" env:"WECHAT_NOTIFY_URL"`
}

// GatewayConfig bounds calls to each payment channel.
type GatewayConfig struct {
	RatePerSecond float64 `yaml:"rate_per_second" env:"GATEWAY_RATE_PER_SECOND" env-default:"20"`
	Burst         int     `yaml:"burst" env:"GATEWAY_BURST" env-default:"5"`
	// Timeout bounds one HTTP exchange with a provider.
	Timeout time.Duration `yaml:"timeout" env:"GATEWAY_TIMEOUT" env-default:"10s"`
}

type FoundationsConfig struct {
	CatalogURL  string        `yaml:"catalog_url" env:"FOUNDATIONS_CATALOG_URL" env-default:"http://localhost:11500"`
	CustomerURL string        `yaml:"customer_url" env:"FOUNDATIONS_CUSTOMER_URL" env-default:"http://localhost:11600"`
	MarketURL   string        `yaml:"market_url" env:"FOUNDATIONS_MARKET_URL" env-default:"http://localhost:11700"`
	Timeout     time.Duration `yaml:"timeout" env:"FOUNDATIONS_TIMEOUT" env-default:"3s"`
}

type JobsConfig struct {
	TimeoutSweepSpec  string `yaml:"timeout_sweep_spec" env:"JOBS_TIMEOUT_SWEEP_SPEC" env-default:"0 * * * * *"`
	TimeoutSweepBatch int    `yaml:"timeout_sweep_batch" env:"JOBS_TIMEOUT_SWEEP_BATCH" env-default:"100"`
	// UnpaidGrace is how old an unpaid order must be to be swept; zero uses the payment deadline.
	UnpaidGrace           time.Duration `yaml:"unpaid_grace" env:"JOBS_UNPAID_GRACE" env-default:"0s"`
	RefundSettlementSpec  string        `yaml:"refund_settlement_spec" env:"JOBS_REFUND_SETTLEMENT_SPEC" env-default:"*/30 * * * * *"`
	RefundSettlementBatch int           `yaml:"refund_settlement_batch" env:"JOBS_REFUND_SETTLEMENT_BATCH" env-default:"100"`
	RunTimeout            time.Duration `yaml:"run_timeout" env:"JOBS_RUN_TIMEOUT" env-default:"5m"`
}

type RefundPoolConfig struct {
	Workers        int           `yaml:"workers" env:"REFUND_POOL_WORKERS" env-default:"4"`
	QueueSize      int           `yaml:"queue_size" env:"REFUND_POOL_QUEUE_SIZE" env-default:"256"`
	AttemptTimeout time.Duration `yaml:"attempt_timeout" env:"REFUND_POOL_ATTEMPT_TIMEOUT" env-default:"10s"`
}

// LoadConfig reads .env if present, then the YAML file named by
// ORDERS_CONFIG_PATH if set, then the environment. Later sources win.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if path := os.Getenv(ConfigPathEnv); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		return cfg, nil
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	return cfg, nil
}

// Location resolves TimeZone, the zone order ids take their day prefix in.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.TimeZone)
}
