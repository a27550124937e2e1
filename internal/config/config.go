package config

import (
	"strings"
	"time"

	"github.com/ptavares/socialspaces/params"
	"github.com/spf13/viper"
)

const (
	DefaultListenAddr   = ":3000"
	AuditBackendMySQL   = "mysql"
	AuditBackendMemory  = "memory"
	RateLimitBackendMem = "memory"
)

type MySQLConfig struct {
	Dsn             string `mapstructure:"dsn"`
	ReplicaDsn      string `mapstructure:"replicaDsn"`
	TablePrefix     string `mapstructure:"tablePrefix"`
	MaxIdleConns    int    `mapstructure:"maxIdleConns"`
	MaxOpenConns    int    `mapstructure:"maxOpenConns"`
	ConnMaxIdleTime int    `mapstructure:"connMaxIdleTime"`
	ConnMaxLifetime int    `mapstructure:"connMaxLifetime"`
}

type RedisConfig struct {
	URL         string `mapstructure:"url"`
	PoolSize    int    `mapstructure:"poolSize"`
	ClusterMode bool   `mapstructure:"clusterMode"`
}

type AuditConfig struct {
	Backend string `mapstructure:"backend"` // mysql (default) or memory
}

type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwtSecret"`
	BcryptCost int           `mapstructure:"bcryptCost"`
	TokenTTL   time.Duration `mapstructure:"tokenTTL"`
}

type RateLimitConfig struct {
	Backend string        `mapstructure:"backend"` // redis (default) or memory
	Max     int           `mapstructure:"max"`
	Window  time.Duration `mapstructure:"window"`
}

type Config struct {
	Debug        bool            `mapstructure:"debug"`
	SiteName     string          `mapstructure:"siteName"`
	BaseURL      string          `mapstructure:"baseURL"`
	ListenAddr   string          `mapstructure:"listenAddr"`
	TemplateDir  string          `mapstructure:"templateDir"`
	AllowOrigins []string        `mapstructure:"allowOrigins"`
	MySQL        MySQLConfig     `mapstructure:"mysql"`
	Redis        RedisConfig     `mapstructure:"redis"`
	Audit        AuditConfig     `mapstructure:"audit"`
	Auth         AuthConfig      `mapstructure:"auth"`
	RateLimit    RateLimitConfig `mapstructure:"rateLimit"`
}

func (c *Config) Sanitize() error {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:3000"
	}
	if c.SiteName == "" {
		c.SiteName = "Social Spaces"
	}
	if c.Audit.Backend == "" {
		c.Audit.Backend = AuditBackendMySQL
	}
	if c.Auth.BcryptCost == 0 {
		c.Auth.BcryptCost = params.DefaultBcryptCost
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = params.SessionTokenMaxAge
	}
	if c.RateLimit.Max == 0 {
		c.RateLimit.Max = params.DefaultRateLimitMax
	}
	if c.RateLimit.Window == 0 {
		c.RateLimit.Window = params.DefaultRateLimitWindow
	}
	return nil
}

func LoadConfig(filename string) (*Config, error) {
	viper.SetConfigFile(filename)
	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Sanitize(); err != nil {
		return nil, err
	}
	return &config, nil
}
