package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/printstarter/printstarter/pkg/constants"
)

// LoadConfig loads configuration from defaults, an optional config file and
// environment variables, in increasing precedence.
func LoadConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/printstarter/")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix("PRINTSTARTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 60)

	v.SetDefault("redis.addresses", []string{"127.0.0.1:6379"})
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("upstream.model", "gpt-4.1-mini")
	v.SetDefault("upstream.timeout_seconds", int(constants.DefaultUpstreamTimeout.Seconds()))

	v.SetDefault("rate_limit.prompt_limit", constants.DefaultPromptRateLimit)
	v.SetDefault("rate_limit.generate_limit", constants.DefaultGenerateRateLimit)
	v.SetDefault("rate_limit.window_seconds", int64(constants.DefaultRateLimitWindow.Seconds()))

	v.SetDefault("cache.ttl_seconds", int64(constants.DefaultCacheTTL.Seconds()))
	v.SetDefault("cache.hot_tier_seconds", 60)

	v.SetDefault("monitor.traffic_window_seconds", int64(constants.DefaultTrafficWindow.Seconds()))
	v.SetDefault("monitor.error_window_seconds", int64(constants.DefaultErrorWindow.Seconds()))
	v.SetDefault("monitor.traffic_spike_threshold", constants.DefaultTrafficSpikeThreshold)
	v.SetDefault("monitor.error_burst_threshold", constants.DefaultErrorBurstThreshold)

	v.SetDefault("alerting.cooldown_seconds", int64(constants.DefaultAlertCooldown.Seconds()))
	v.SetDefault("alerting.smtp.port", 465)
	v.SetDefault("alerting.smtp.implicit_tls", true)
	v.SetDefault("alerting.email.subject_prefix", "[PrintStarter Alert]")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "printstarter-api")
}
