package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/de-tools/social-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const envPrefix = "SOCIAL_ATLAS"

type Config struct {
	API    APIConfig    `mapstructure:"api"`
	Report ReportConfig `mapstructure:"report"`
	Export ExportConfig `mapstructure:"export"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
}

type APIConfig struct {
	BaseURL         string `mapstructure:"base_url"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds"`
	RateLimitPerSec int    `mapstructure:"rate_limit_per_sec"`
	RateLimitBurst  int    `mapstructure:"rate_limit_burst"`
	UserAgent       string `mapstructure:"user_agent"`
}

func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type ReportConfig struct {
	Period  string              `mapstructure:"period"`
	Metrics map[string][]string `mapstructure:"metrics"`
}

type ExportConfig struct {
	OutputDir string   `mapstructure:"output_dir"`
	S3        S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Bucket     string `mapstructure:"bucket"`
	Prefix     string `mapstructure:"prefix"`
	Region     string `mapstructure:"region"`
	AWSProfile string `mapstructure:"aws_profile"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// ZerologLevel falls back to info for empty or unknown levels.
func (c LogConfig) ZerologLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(c.Level))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// DefaultMetrics converts report.metrics into per-network selections.
func (c ReportConfig) DefaultMetrics() (map[domain.Network][]string, error) {
	out := make(map[domain.Network][]string, len(c.Metrics))
	for name, ids := range c.Metrics {
		network, err := domain.ParseNetwork(name)
		if err != nil {
			return nil, fmt.Errorf("report.metrics: %w", err)
		}
		out[network] = ids
	}
	return out, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "")
	v.SetDefault("api.timeout_seconds", 60)
	v.SetDefault("api.rate_limit_per_sec", 2)
	v.SetDefault("api.rate_limit_burst", 2)
	v.SetDefault("api.user_agent", "social-atlas/1.0")
	v.SetDefault("report.period", string(domain.PeriodDaily))
	v.SetDefault("export.output_dir", ".")
	v.SetDefault("export.s3.bucket", "")
	v.SetDefault("export.s3.prefix", "reports")
	v.SetDefault("export.s3.region", "")
	v.SetDefault("export.s3.aws_profile", "")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
}

// Load reads the YAML config at path. An empty path yields the defaults.
// SOCIAL_ATLAS_* environment variables override file values, e.g.
// SOCIAL_ATLAS_API_BASE_URL for api.base_url.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Report.Period != "" && !domain.Period(cfg.Report.Period).Valid() {
		return nil, fmt.Errorf("report.period: unknown period %q", cfg.Report.Period)
	}
	return &cfg, nil
}
