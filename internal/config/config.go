package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort       = 2350
	defaultEnv        = "development"
	defaultDBHost     = "127.0.0.1"
	defaultDBPort     = 3306
	defaultDBUser     = "root"
	defaultDBName     = "inkpress"
	defaultRedisURL   = "redis://localhost:6379/0"
	defaultSiteURL    = "http://localhost:3000"
)

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int            `yaml:"port"`
	Env            string         `yaml:"env"` // "development" | "production"
	SiteURL        string         `yaml:"site_url"`
	AllowedOrigins []string       `yaml:"allowed_origins"`
	JWTSecret      string         `yaml:"jwt_secret"`
	RedisURL       string         `yaml:"redis_url"`
	Database       DatabaseConfig `yaml:"database"`
	S3             S3Options      `yaml:"s3"`
}

// DatabaseConfig configures the MySQL connection. DSN wins when set;
// otherwise one is assembled from the individual fields.
type DatabaseConfig struct {
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// S3Options configures the media blob store. Endpoint is optional for
// AWS proper; set it for any S3-compatible vendor.
type S3Options struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Endpoint        string `yaml:"endpoint"`
	CustomDomain    string `yaml:"custom_domain"`
}

// Load reads and normalizes the YAML config at path. A missing file falls
// back to defaults plus environment overrides so a dev setup needs no
// config at all.
func Load(path string) (*AppConfig, error) {
	cfg := &AppConfig{}

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// fine, run on defaults
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool { return c.Env != "production" }

// DSN returns the MySQL DSN, assembling one from parts when not given
// verbatim.
func (c *AppConfig) DSN() string {
	if v := strings.TrimSpace(c.Database.DSN); v != "" {
		return v
	}

	mc := mysql.NewConfig()
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port)
	mc.User = c.Database.User
	mc.Passwd = c.Database.Password
	mc.DBName = c.Database.Name
	mc.ParseTime = true
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

func (c *AppConfig) applyEnv() {
	if v := os.Getenv("INKPRESS_PORT"); v != "" {
		fmt.Sscanf(v, "%d", &c.Port)
	}
	if v := os.Getenv("INKPRESS_ENV"); v != "" {
		c.Env = v
	}
	if v := os.Getenv("INKPRESS_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("INKPRESS_REDIS_URL"); v != "" {
		c.RedisURL = v
	}
	if v := os.Getenv("INKPRESS_JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}
	if v := os.Getenv("INKPRESS_SITE_URL"); v != "" {
		c.SiteURL = v
	}
}

func (c *AppConfig) applyDefaults() {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.Env == "" {
		c.Env = defaultEnv
	}
	if c.SiteURL == "" {
		c.SiteURL = defaultSiteURL
	}
	if c.RedisURL == "" {
		c.RedisURL = defaultRedisURL
	}
	if c.Database.Host == "" {
		c.Database.Host = defaultDBHost
	}
	if c.Database.Port == 0 {
		c.Database.Port = defaultDBPort
	}
	if c.Database.User == "" {
		c.Database.User = defaultDBUser
	}
	if c.Database.Name == "" {
		c.Database.Name = defaultDBName
	}
}
