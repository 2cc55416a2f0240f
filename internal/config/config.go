package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cristianxmm/tv-signage-system/internal/log"
)

type Config struct {
	Server    ServerConfig
	WebSocket WebSocketConfig
	Auth      AuthConfig
	Storage   StorageConfig
	State     StateConfig
	Events    EventsConfig
	CORS      CORSConfig
	Log       log.Config
}

type ServerConfig struct {
	Host string
	Port int
}

type WebSocketConfig struct {
	PingInterval   time.Duration `mapstructure:"ping_interval"`
	PongWait       time.Duration `mapstructure:"pong_wait"`
	WriteWait      time.Duration `mapstructure:"write_wait"`
	MaxMessageSize int64         `mapstructure:"max_message_size"`
}

type AuthConfig struct {
	Username  string
	Password  string
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type StorageConfig struct {
	Type           string // "local" or "s3"
	Local          LocalStorageConfig
	S3             S3StorageConfig
	RetentionDays  int           `mapstructure:"retention_days"`
	SweepInterval  time.Duration `mapstructure:"sweep_interval"`
	MaxUploadFiles int           `mapstructure:"max_upload_files"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes"`
}

type LocalStorageConfig struct {
	BasePath string `mapstructure:"base_path"`
}

type S3StorageConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UsePathStyle    bool   `mapstructure:"use_path_style"`
	PublicURL       string `mapstructure:"public_url"`
}

type StateConfig struct {
	Type  string // "memory" or "redis"
	Redis RedisConfig
}

type RedisConfig struct {
	Address   string
	Password  string
	DB        int
	KeyPrefix string `mapstructure:"key_prefix"`
}

type EventsConfig struct {
	Enabled bool
	Kafka   KafkaConfig
}

type KafkaConfig struct {
	Brokers    string
	Topic      string
	Partitions int
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func Load() (*Config, error) {
	v, err := loadViper("./config", "config")
	if err != nil {
		return nil, err
	}

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("websocket.ping_interval", "30s")
	v.SetDefault("websocket.pong_wait", "60s")
	v.SetDefault("websocket.write_wait", "10s")
	v.SetDefault("websocket.max_message_size", 4096)
	v.SetDefault("auth.username", "admin")
	v.SetDefault("auth.password", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", "12h")
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local.base_path", "./uploads")
	v.SetDefault("storage.retention_days", 30)
	v.SetDefault("storage.sweep_interval", "1h")
	v.SetDefault("storage.max_upload_files", 10)
	v.SetDefault("storage.max_upload_bytes", 104857600)
	v.SetDefault("state.type", "memory")
	v.SetDefault("state.redis.address", "localhost:6379")
	v.SetDefault("state.redis.password", "")
	v.SetDefault("state.redis.db", 0)
	v.SetDefault("state.redis.key_prefix", "signage:state:")
	v.SetDefault("events.enabled", false)
	v.SetDefault("events.kafka.brokers", "localhost:9092")
	v.SetDefault("events.kafka.topic", "signage-published")
	v.SetDefault("events.kafka.partitions", 1)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.service_name", "signage")

	// Override from environment
	v.BindEnv("server.port", "PORT")
	v.BindEnv("auth.username", "SIGNAGE_USERNAME")
	v.BindEnv("auth.password", "SIGNAGE_PASSWORD")
	v.BindEnv("auth.jwt_secret", "SIGNAGE_JWT_SECRET")
	v.BindEnv("storage.local.base_path", "UPLOADS_DIR")
	v.BindEnv("state.redis.address", "REDIS_ADDRESS")
	v.BindEnv("state.redis.password", "REDIS_PASSWORD")
	v.BindEnv("events.kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("events.kafka.topic", "KAFKA_TOPIC")
	v.BindEnv("log.level", "LOG_LEVEL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Parse durations
	cfg.WebSocket.PingInterval = parseDuration(v, "websocket.ping_interval", 30*time.Second)
	cfg.WebSocket.PongWait = parseDuration(v, "websocket.pong_wait", 60*time.Second)
	cfg.WebSocket.WriteWait = parseDuration(v, "websocket.write_wait", 10*time.Second)
	cfg.Auth.TokenTTL = parseDuration(v, "auth.token_ttl", 12*time.Hour)
	cfg.Storage.SweepInterval = parseDuration(v, "storage.sweep_interval", time.Hour)

	return &cfg, nil
}

// loadViper reads configuration from file and environment variables.
func loadViper(configPath, configName string) (*viper.Viper, error) {
	v := viper.New()

	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")

	// Environment variable support
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil // Config file not found, rely on env vars
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return v, nil
}

func parseDuration(v *viper.Viper, key string, defaultVal time.Duration) time.Duration {
	str := v.GetString(key)
	d, err := time.ParseDuration(str)
	if err != nil {
		return defaultVal
	}
	return d
}
