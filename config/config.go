// config/config.go
package config

import (
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Configuration stores all the configurations
type Configuration struct {
	Server        ServerConfiguration
	Database      DatabaseConfiguration
	Redis         RedisConfiguration
	Cache         CacheConfiguration
	RateLimit     RateLimitConfiguration `mapstructure:"rateLimit"`
	Workers       WorkerConfiguration
	Elasticsearch ElasticsearchConfiguration
	Log           LogConfiguration
}

// ServerConfiguration stores the port and other web server settings
type ServerConfiguration struct {
	Port string `validate:"required,numeric"`
}

// DatabaseConfiguration stores data for the relational entity store
type DatabaseConfiguration struct {
	DSN             string        `validate:"required"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns" validate:"gte=1"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"`
}

// RedisConfiguration stores data for Redis connection
type RedisConfiguration struct {
	Addr         string `validate:"required,hostname_port"`
	Password     string
	DB           int           `validate:"gte=0"`
	DialTimeout  time.Duration `mapstructure:"dialTimeout"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	PoolSize     int           `mapstructure:"poolSize" validate:"gte=1"`
	PoolTimeout  time.Duration `mapstructure:"poolTimeout"`
}

// CacheConfiguration controls key layout, TTLs and backend protection
type CacheConfiguration struct {
	Namespace     string           `validate:"required"`
	OpTimeout     time.Duration    `mapstructure:"opTimeout" validate:"gt=0"`
	EncryptionKey string           `mapstructure:"encryptionKey" validate:"omitempty,len=32"`
	TTL           TTLConfiguration `mapstructure:"ttl"`
	Breaker       BreakerConfiguration
}

// TTLConfiguration holds one TTL per cache kind
type TTLConfiguration struct {
	Get   time.Duration `validate:"gt=0"`
	FF    time.Duration `mapstructure:"ff" validate:"gt=0"`
	FC    time.Duration `mapstructure:"fc" validate:"gt=0"`
	Count time.Duration `validate:"gt=0"`
}

// BreakerConfiguration tunes the circuit breaker guarding the cache backend
type BreakerConfiguration struct {
	MaxRequests      uint32        `mapstructure:"maxRequests" validate:"gte=1"`
	Interval         time.Duration `validate:"gte=0"`
	Timeout          time.Duration `validate:"gt=0"`
	FailureThreshold float64       `mapstructure:"failureThreshold" validate:"gt=0,lte=1"`
	MinRequests      uint32        `mapstructure:"minRequests" validate:"gte=1"`
}

// RateLimitConfiguration is the default HTTP rate limit
type RateLimitConfiguration struct {
	Requests int           `validate:"gte=1"`
	Window   time.Duration `validate:"gte=1s"`
}

// WorkerConfiguration sizes the background side-effect pool
type WorkerConfiguration struct {
	Count     int `validate:"gte=1"`
	QueueSize int `mapstructure:"queueSize" validate:"gte=1"`
}

// ElasticsearchConfiguration stores data for Elasticsearch connection
type ElasticsearchConfiguration struct {
	URL   string `validate:"required,url"`
	Index string `validate:"required"`
}

// LogConfiguration stores where log files are written and the level
type LogConfiguration struct {
	Dir     string
	Level   string `validate:"omitempty,oneof=debug info warn error"`
	Console bool
}

var config *Configuration

func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("database.dsn", "host=localhost user=postgres dbname=echo sslmode=disable")
	viper.SetDefault("database.maxOpenConns", 25)
	viper.SetDefault("database.maxIdleConns", 5)
	viper.SetDefault("database.connMaxLifetime", "30m")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.dialTimeout", "2s")
	viper.SetDefault("redis.readTimeout", "500ms")
	viper.SetDefault("redis.writeTimeout", "500ms")
	viper.SetDefault("redis.poolSize", 20)
	viper.SetDefault("redis.poolTimeout", "1s")
	viper.SetDefault("cache.namespace", "db")
	viper.SetDefault("cache.opTimeout", "200ms")
	viper.SetDefault("cache.ttl.get", "24h")
	viper.SetDefault("cache.ttl.count", "24h")
	viper.SetDefault("cache.ttl.ff", "5m")
	viper.SetDefault("cache.ttl.fc", "5m")
	viper.SetDefault("cache.breaker.maxRequests", 5)
	viper.SetDefault("cache.breaker.interval", "30s")
	viper.SetDefault("cache.breaker.timeout", "10s")
	viper.SetDefault("cache.breaker.failureThreshold", 0.5)
	viper.SetDefault("cache.breaker.minRequests", 10)
	viper.SetDefault("rateLimit.requests", 600)
	viper.SetDefault("rateLimit.window", "5m")
	viper.SetDefault("workers.count", 4)
	viper.SetDefault("workers.queueSize", 256)
	viper.SetDefault("elasticsearch.url", "http://localhost:9200")
	viper.SetDefault("elasticsearch.index", "entity-audit")
	viper.SetDefault("log.dir", "logging")
	viper.SetDefault("log.level", "info")
}

func InitConfig() error {
	viper.AddConfigPath("config")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found. Using default settings and environment variables.")
		} else {
			return err
		}
	}

	var loaded Configuration
	if err := viper.Unmarshal(&loaded); err != nil {
		return err
	}

	if err := Validate(&loaded); err != nil {
		return err
	}

	config = &loaded
	return nil
}

// Validate checks a configuration against its struct tags
func Validate(cfg *Configuration) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// GetConfig returns the loaded configuration
func GetConfig() *Configuration {
	return config
}

// GetString retrieves a string value from the configuration
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt retrieves an integer value from the configuration
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetDuration retrieves a duration value from the configuration
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}
