package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverMongo = "mongo"
	DriverMySQL = "mysql"
)

type Config struct {
	Port         string         `mapstructure:"port"`
	StoreDriver  string         `mapstructure:"store_driver"`
	StoreTimeout time.Duration  `mapstructure:"store_timeout"`
	Mongo        MongoConfig    `mapstructure:"mongo"`
	MySQL        MySQLConfig    `mapstructure:"mysql"`
	Redis        RedisConfig    `mapstructure:"redis"`
	RabbitMQ     RabbitMQConfig `mapstructure:"rabbitmq"`
	Pricing      PricingConfig  `mapstructure:"pricing"`
	Admin        AdminConfig    `mapstructure:"admin"`
	Stream       StreamConfig   `mapstructure:"stream"`
	Login        LoginConfig    `mapstructure:"login"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type MySQLConfig struct {
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Database string `mapstructure:"database"`
}

// RedisConfig configures the settings cache. An empty Addr disables it.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// RabbitMQConfig configures order event publishing. An empty URL disables it.
type RabbitMQConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

type PricingConfig struct {
	Tier string `mapstructure:"tier"`
}

type AdminConfig struct {
	Username   string        `mapstructure:"username"`
	Password   string        `mapstructure:"password"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

type StreamConfig struct {
	Heartbeat time.Duration `mapstructure:"heartbeat"`
	Buffer    int           `mapstructure:"buffer"`
}

type LoginConfig struct {
	Rate  float64 `mapstructure:"rate"`
	Burst int     `mapstructure:"burst"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("store_driver", DriverMongo)
	v.SetDefault("store_timeout", 5*time.Second)

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "bookdb")

	v.SetDefault("mysql.user", "root")
	v.SetDefault("mysql.password", "")
	v.SetDefault("mysql.host", "localhost")
	v.SetDefault("mysql.port", "3306")
	v.SetDefault("mysql.database", "bookdb")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 10*time.Minute)

	v.SetDefault("rabbitmq.url", "")
	v.SetDefault("rabbitmq.exchange", "order.exchange")

	v.SetDefault("pricing.tier", "introductory")

	v.SetDefault("admin.username", "admin")
	v.SetDefault("admin.password", "")
	v.SetDefault("admin.session_ttl", 24*time.Hour)

	v.SetDefault("stream.heartbeat", 30*time.Second)
	v.SetDefault("stream.buffer", 16)

	v.SetDefault("login.rate", 0.2)
	v.SetDefault("login.burst", 5)
}

// Load reads defaults, then the optional YAML file at path, then environment
// variables. Nested keys map to env names with "_", so mongo.uri is MONGO_URI.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverMongo, DriverMySQL:
	default:
		return fmt.Errorf("config: unsupported store_driver %q", c.StoreDriver)
	}

	switch c.Pricing.Tier {
	case "introductory", "normal":
	default:
		return fmt.Errorf("config: unsupported pricing tier %q", c.Pricing.Tier)
	}

	if c.StoreTimeout <= 0 {
		return fmt.Errorf("config: store_timeout must be positive")
	}
	if c.Stream.Heartbeat <= 0 {
		return fmt.Errorf("config: stream.heartbeat must be positive")
	}
	if c.Stream.Buffer < 1 {
		return fmt.Errorf("config: stream.buffer must be at least 1")
	}
	if c.Admin.SessionTTL <= 0 {
		return fmt.Errorf("config: admin.session_ttl must be positive")
	}
	return nil
}
