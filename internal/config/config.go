// Package config loads the immutable service configuration. Components
// receive their slice of this struct at construction and never read the
// environment at call time.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds the application's configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Upstream  UpstreamConfig  `mapstructure:"upstream"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Monitor   MonitorConfig   `mapstructure:"monitor"`
	Alerting  AlertingConfig  `mapstructure:"alerting"`
	Log       LogConfig       `mapstructure:"log"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
}

type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port" validate:"gt=0,lte=65535"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	PprofEnabled bool   `mapstructure:"pprof_enabled"`
}

func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type RedisConfig struct {
	Addresses    []string `mapstructure:"addresses" validate:"min=1"`
	Password     string   `mapstructure:"password"`
	DB           int      `mapstructure:"db"`
	PoolSize     int      `mapstructure:"pool_size"`
	MinIdleConns int      `mapstructure:"min_idle_conns"`
}

// UpstreamConfig describes the language-model backend. Any
// OpenAI-compatible chat-completions endpoint works.
type UpstreamConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model" validate:"required"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"gt=0"`
}

func (c *UpstreamConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type RateLimitConfig struct {
	PromptLimit     int64 `mapstructure:"prompt_limit" validate:"gt=0"`
	GenerateLimit   int64 `mapstructure:"generate_limit" validate:"gt=0"`
	WindowSeconds   int64 `mapstructure:"window_seconds" validate:"gt=0"`
}

func (c *RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

type CacheConfig struct {
	TTLSeconds      int64 `mapstructure:"ttl_seconds" validate:"gt=0"`
	HotTierSeconds  int64 `mapstructure:"hot_tier_seconds"`
	HotTierDisabled bool  `mapstructure:"hot_tier_disabled"`
}

func (c *CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

func (c *CacheConfig) HotTierTTL() time.Duration {
	return time.Duration(c.HotTierSeconds) * time.Second
}

type MonitorConfig struct {
	TrafficWindowSeconds  int64 `mapstructure:"traffic_window_seconds" validate:"gt=0"`
	ErrorWindowSeconds    int64 `mapstructure:"error_window_seconds" validate:"gt=0"`
	TrafficSpikeThreshold int64 `mapstructure:"traffic_spike_threshold" validate:"gt=0"`
	ErrorBurstThreshold   int64 `mapstructure:"error_burst_threshold" validate:"gt=0"`
}

func (c *MonitorConfig) TrafficWindow() time.Duration {
	return time.Duration(c.TrafficWindowSeconds) * time.Second
}

func (c *MonitorConfig) ErrorWindow() time.Duration {
	return time.Duration(c.ErrorWindowSeconds) * time.Second
}

type AlertingConfig struct {
	CooldownSeconds int64  `mapstructure:"cooldown_seconds" validate:"gt=0"`
	WebhookURL      string `mapstructure:"webhook_url"`
	TestToken       string `mapstructure:"test_token"`

	SMTP  SMTPConfig  `mapstructure:"smtp"`
	Email EmailConfig `mapstructure:"email"`
	Kafka KafkaConfig `mapstructure:"kafka"`
}

func (c *AlertingConfig) Cooldown() time.Duration {
	return time.Duration(c.CooldownSeconds) * time.Second
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	// ImplicitTLS selects SMTPS (port 465 style) over STARTTLS.
	ImplicitTLS bool `mapstructure:"implicit_tls"`
}

// Configured reports whether the SMTP sink has everything it needs.
func (c *SMTPConfig) Configured() bool {
	return c.Host != "" && c.Username != "" && c.Password != ""
}

type EmailConfig struct {
	To            string `mapstructure:"to"`
	From          string `mapstructure:"from"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// Configured reports whether the Kafka sink should be wired at all.
func (c *KafkaConfig) Configured() bool {
	return len(c.Brokers) > 0 && c.Topic != ""
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TracingConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
	ServiceName    string `mapstructure:"service_name"`
}

// Validate checks essential configuration values via struct tags.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}
