package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   Server
	Database Database
	Redis    Redis
	Delivery Delivery
	S3       S3
	NATS     NATS
	JWT      JWT
	Log      Log
}

type Server struct {
	Port           string
	AllowedOrigins string
	PublicBaseURL  string
}

type Database struct {
	Driver   string // postgres | sqlite
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	Path     string // sqlite file
}

func (d Database) DSN() string {
	if d.Driver == "sqlite" {
		return d.Path
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode,
	)
}

type Redis struct {
	Addr     string
	Password string
	DB       int
}

type Delivery struct {
	PresenceTTL      time.Duration
	TypingTTL        time.Duration
	OutboxBackend    string // redis | postgres
	OutboxMaxLen     int
	StoreTimeout     time.Duration
	StoreMaxRetries  int
	MaxMessageLength int
	MediaMaxBytes    int64
}

type S3 struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// Enabled reports whether enough S3 settings are present to build a client.
func (s S3) Enabled() bool {
	return s.Endpoint != "" && s.Bucket != "" && s.AccessKey != "" && s.SecretKey != ""
}

type NATS struct {
	URL string
}

type JWT struct {
	Secret string
}

type Log struct {
	Level  string
	Format string // console | json
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ALLOWED_ORIGINS", "*")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080/api")

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "relay")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "relay")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_PATH", "relay.db")

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("PRESENCE_TTL", "300s")
	v.SetDefault("TYPING_TTL", "10s")
	v.SetDefault("OUTBOX_BACKEND", "redis")
	v.SetDefault("OUTBOX_MAX_LEN", 1000)
	v.SetDefault("STORE_TIMEOUT", "3s")
	v.SetDefault("STORE_MAX_RETRIES", 3)
	v.SetDefault("MAX_MESSAGE_LENGTH", 4000)
	v.SetDefault("MEDIA_MAX_BYTES", 25*1024*1024)

	v.SetDefault("S3_USE_SSL", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	return Parse(v)
}

func Parse(v *viper.Viper) (*Config, error) {
	c := &Config{
		Server: Server{
			Port:           v.GetString("PORT"),
			AllowedOrigins: v.GetString("ALLOWED_ORIGINS"),
			PublicBaseURL:  v.GetString("PUBLIC_BASE_URL"),
		},
		Database: Database{
			Driver:   strings.ToLower(v.GetString("DB_DRIVER")),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			Path:     v.GetString("DB_PATH"),
		},
		Redis: Redis{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Delivery: Delivery{
			PresenceTTL:      v.GetDuration("PRESENCE_TTL"),
			TypingTTL:        v.GetDuration("TYPING_TTL"),
			OutboxBackend:    strings.ToLower(v.GetString("OUTBOX_BACKEND")),
			OutboxMaxLen:     v.GetInt("OUTBOX_MAX_LEN"),
			StoreTimeout:     v.GetDuration("STORE_TIMEOUT"),
			StoreMaxRetries:  v.GetInt("STORE_MAX_RETRIES"),
			MaxMessageLength: v.GetInt("MAX_MESSAGE_LENGTH"),
			MediaMaxBytes:    v.GetInt64("MEDIA_MAX_BYTES"),
		},
		S3: S3{
			Endpoint:  strings.TrimSpace(v.GetString("S3_ENDPOINT")),
			Region:    strings.TrimSpace(v.GetString("S3_REGION")),
			Bucket:    strings.TrimSpace(v.GetString("S3_BUCKET")),
			AccessKey: strings.TrimSpace(v.GetString("S3_ACCESS_KEY")),
			SecretKey: strings.TrimSpace(v.GetString("S3_SECRET_KEY")),
			UseSSL:    v.GetBool("S3_USE_SSL"),
		},
		NATS: NATS{URL: v.GetString("NATS_URL")},
		JWT:  JWT{Secret: v.GetString("JWT_SECRET")},
		Log: Log{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	switch c.Delivery.OutboxBackend {
	case "redis", "postgres":
	default:
		return fmt.Errorf("unsupported OUTBOX_BACKEND %q", c.Delivery.OutboxBackend)
	}
	if c.Delivery.PresenceTTL <= 0 || c.Delivery.TypingTTL <= 0 {
		return fmt.Errorf("PRESENCE_TTL and TYPING_TTL must be positive")
	}
	if c.Delivery.StoreTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive")
	}
	if c.Delivery.OutboxMaxLen < 1 {
		return fmt.Errorf("OUTBOX_MAX_LEN must be at least 1")
	}
	return nil
}
