package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "gamelink-suite-configs.yaml"
	ConfigPathEnv     = "GAMELINK_CONFIG"
)

type PostgreSQLConfig struct {
	URL          string `yaml:"url"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type MongoDBConfig struct {
	URL         string `yaml:"url"`
	DB          string `yaml:"db"`
	GrantEvents string `yaml:"grant_events"`
}

type BackendConfig struct {
	Host          string   `yaml:"host"`
	Port          int      `yaml:"port"`
	LogLevel      string   `yaml:"log_level"`
	MainLogFile   string   `yaml:"main_log_file"`
	AccessLog     string   `yaml:"access_log"`
	AccessLogPath string   `yaml:"access_log_path"`
	AllowCORS     []string `yaml:"allow_cors"`
	SSL           bool     `yaml:"ssl"`
	SSLCert       string   `yaml:"ssl_cert"`
	SSLKey        string   `yaml:"ssl_key"`
	EnableDebug   bool     `yaml:"enable_debug"`
	PprofAddr     string   `yaml:"pprof_addr"`
}

type UserSystemConfig struct {
	SessionSignToken  string `yaml:"session_sign_token"`
	SessionCheckRedis bool   `yaml:"session_check_redis"`
}

type OAuthConfig struct {
	TokenStore      string `yaml:"token_store"`
	RequestTokenTTL int    `yaml:"request_token_ttl"`
	AccessTokenTTL  *int   `yaml:"access_token_ttl"`
	SweepInterval   int    `yaml:"sweep_interval"`
}

type Config struct {
	Backend    BackendConfig    `yaml:"backend"`
	PostgreSQL PostgreSQLConfig `yaml:"postgresql"`
	Redis      RedisConfig      `yaml:"redis"`
	MongoDB    MongoDBConfig    `yaml:"mongodb"`
	UserSystem UserSystemConfig `yaml:"user_system"`
	OAuth      OAuthConfig      `yaml:"oauth"`
}

var Cfg Config

// Load reads the YAML file at path into Cfg and fills in defaults.
func Load(path string) error {
	cfg, err := Parse(path)
	if err != nil {
		return err
	}
	Cfg = cfg
	return nil
}

// Path returns the config file location, honouring GAMELINK_CONFIG.
func Path() string {
	if p := os.Getenv(ConfigPathEnv); p != "" {
		return p
	}
	return DefaultConfigPath
}

func Parse(path string) (Config, error) {
	var cfg Config
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Backend.Host == "" {
		c.Backend.Host = "0.0.0.0"
	}
	if c.Backend.Port == 0 {
		c.Backend.Port = 5000
	}
	if c.Backend.LogLevel == "" {
		c.Backend.LogLevel = "info"
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}
	if c.MongoDB.GrantEvents == "" {
		c.MongoDB.GrantEvents = "oauth_grant_events"
	}
	if c.OAuth.TokenStore == "" {
		c.OAuth.TokenStore = "memory"
	}
	if c.OAuth.RequestTokenTTL <= 0 {
		c.OAuth.RequestTokenTTL = 300
	}
	if c.OAuth.AccessTokenTTL == nil {
		week := 7 * 24 * 3600
		c.OAuth.AccessTokenTTL = &week
	}
	if c.OAuth.SweepInterval <= 0 {
		c.OAuth.SweepInterval = 60
	}
}

func (o OAuthConfig) RequestTTL() time.Duration {
	return time.Duration(o.RequestTokenTTL) * time.Second
}

// AccessTTL is zero when access tokens never expire.
func (o OAuthConfig) AccessTTL() time.Duration {
	if o.AccessTokenTTL == nil || *o.AccessTokenTTL <= 0 {
		return 0
	}
	return time.Duration(*o.AccessTokenTTL) * time.Second
}

func (o OAuthConfig) Sweep() time.Duration {
	return time.Duration(o.SweepInterval) * time.Second
}
