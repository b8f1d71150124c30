package config

import (
	"bytes"
	_ "embed"
	"time"

	"github.com/spf13/viper"
)

//go:embed defaults.yaml
var defaults []byte

// ---- Root ----

type Config struct {
	HTTP       HTTPConfig      `mapstructure:"http"`
	Log        LogConfig       `mapstructure:"log"`
	WhatsApp   WhatsAppConfig  `mapstructure:"whatsapp"`
	Store      StoreConfig     `mapstructure:"store"`
	MySQL      DatabaseConfig  `mapstructure:"mysql"`
	Redis      RedisConfig     `mapstructure:"redis"`
	ClickHouse DatabaseConfig  `mapstructure:"clickhouse"`
	Broadcast  BroadcastConfig `mapstructure:"broadcast"`
}

// ---- Leaf structs ----

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// WhatsAppConfig carries the Cloud API surface: webhook verification,
// send credentials and the per-call behavior knobs.
type WhatsAppConfig struct {
	VerifyToken   string        `mapstructure:"verify_token"`
	WebhookSecret string        `mapstructure:"webhook_secret"`
	AccessToken   string        `mapstructure:"access_token"`
	PhoneNumberID string        `mapstructure:"phone_number_id"`
	APIBaseURL    string        `mapstructure:"api_base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxRetries    int           `mapstructure:"max_retries"`
}

// StoreConfig selects the user registry backend: memory | redis | mysql.
type StoreConfig struct {
	Backend string `mapstructure:"backend"`
}

type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idletime"`
	PingTimeout     time.Duration `mapstructure:"ping_timeout"`
}

type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

type BroadcastConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	MaxRetries  int `mapstructure:"max_retries"`
}

// SignatureCheckEnabled reports whether inbound webhook signatures will
// actually be verified. An empty secret disables verification entirely,
// an insecure fallback that callers must log loudly.
func (w WhatsAppConfig) SignatureCheckEnabled() bool {
	return w.WebhookSecret != ""
}

// SendConfigured reports whether outbound sends have credentials.
func (w WhatsAppConfig) SendConfigured() bool {
	return w.AccessToken != "" && w.PhoneNumberID != ""
}

// Load reads embedded defaults, merges user YAML (if provided), and applies env overrides (WAGW_*).
func Load(path string) (Config, error) {
	v := viper.New()

	// embedded defaults
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
		_ = v.MergeInConfig()
	}

	// env override (WAGW_*)
	v.SetEnvPrefix("WAGW")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
