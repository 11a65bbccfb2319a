package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the portal.
// Values come from config.yaml, a .env file or the environment (JWT_SECRET -> jwt.secret).
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	S3        S3Config        `mapstructure:"s3"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Google    GoogleConfig    `mapstructure:"google"`
	Cafeteria CafeteriaConfig `mapstructure:"cafeteria"`
	MenuFeed  MenuFeedConfig  `mapstructure:"menu_feed"`
	Points    PointsConfig    `mapstructure:"points"`
	Chatbot   ChatbotConfig   `mapstructure:"chatbot"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Address        string        `mapstructure:"address"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	CookieSecure   bool          `mapstructure:"cookie_secure"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// JWTConfig defines token signing settings. Expiration is a duration string ("8h").
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
	CookieName string        `mapstructure:"cookie_name"`
}

// AuthConfig lists accounts promoted to admin when they first sign in.
type AuthConfig struct {
	AdminEmails []string `mapstructure:"admin_emails"`
}

// GoogleConfig enables Google sign-in when ClientID is set.
type GoogleConfig struct {
	ClientID      string `mapstructure:"client_id"`
	AllowedDomain string `mapstructure:"allowed_domain"`
}

type CafeteriaConfig struct {
	Timezone string `mapstructure:"timezone"`
}

// Location resolves the cafeteria timezone; the cutoff is evaluated in it.
func (c CafeteriaConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

type MenuFeedConfig struct {
	Source      string `mapstructure:"source"` // file path or http(s) URL; empty disables the feed
	RefreshCron string `mapstructure:"refresh_cron"`
}

// PointsConfig sets how many points each action is worth.
type PointsConfig struct {
	Post     int `mapstructure:"post"`
	Comment  int `mapstructure:"comment"`
	Like     int `mapstructure:"like"`
	Exchange int `mapstructure:"exchange"`
}

type ChatbotConfig struct {
	DatasetsDir string `mapstructure:"datasets_dir"`
	Fallback    string `mapstructure:"fallback"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// LoadConfig reads configuration from path/config.yaml, an optional .env file and the environment.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.request_timeout", "15s")
	v.SetDefault("server.cookie_secure", true)
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "intranet")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration", "8h")
	v.SetDefault("jwt.cookie_name", "portal_token")
	v.SetDefault("auth.admin_emails", []string{})
	v.SetDefault("google.client_id", "")
	v.SetDefault("google.allowed_domain", "")
	v.SetDefault("cafeteria.timezone", "America/Sao_Paulo")
	v.SetDefault("menu_feed.source", "")
	v.SetDefault("menu_feed.refresh_cron", "0 5 * * *")
	v.SetDefault("points.post", 10)
	v.SetDefault("points.comment", 2)
	v.SetDefault("points.like", 1)
	v.SetDefault("points.exchange", 5)
	v.SetDefault("chatbot.datasets_dir", "data/chatbot")
	v.SetDefault("chatbot.fallback", "Desculpe, não encontrei uma resposta. Procure o RH ou abra um chamado.")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// Validate ensures required values are present and usable.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret must be provided (JWT_SECRET)")
	}
	if c.JWT.Expiration <= 0 {
		return errors.New("jwt.expiration must be positive")
	}
	if c.Database.URI == "" || c.Database.Name == "" {
		return errors.New("database.uri and database.name must be provided")
	}
	if _, err := c.Cafeteria.Location(); err != nil {
		return fmt.Errorf("cafeteria.timezone: %w", err)
	}
	return nil
}
