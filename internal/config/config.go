// Package config loads timebot settings from flags and the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. TIMEBOT_APP_TOKEN.
const EnvPrefix = "TIMEBOT"

// Keys, which double as flag names.
const (
	KeyToken         = "token"
	KeyAppToken      = "app-token"
	KeyUsername      = "username"
	KeyChannels      = "channels"
	KeyJobs          = "jobs"
	KeyHandleTimeout = "handle-timeout"
	KeyPostRate      = "post-rate"
	KeyPostBurst     = "post-burst"
	KeyMetricsAddr   = "metrics-addr"
	KeyDebug         = "debug"
)

// Config holds the bot settings. It is read once at startup.
type Config struct {
	BotToken      string
	AppToken      string
	Username      string
	Channels      []string
	Jobs          int
	HandleTimeout time.Duration
	PostRate      float64
	PostBurst     int
	MetricsAddr   string
	Debug         bool
}

// New returns a viper instance with timebot's defaults and environment
// bindings. The bot token is also read from the bare TOKEN variable.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// Explicit names bypass the prefix, so list both.
	_ = v.BindEnv(KeyToken, EnvPrefix+"_TOKEN", "TOKEN")

	v.SetDefault(KeyUsername, "Your time")
	v.SetDefault(KeyJobs, 10)
	v.SetDefault(KeyHandleTimeout, 10*time.Second)
	v.SetDefault(KeyPostRate, 1.0)
	v.SetDefault(KeyPostBurst, 5)

	return v
}

// Load reads a Config from v and validates it.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		BotToken:      strings.TrimSpace(v.GetString(KeyToken)),
		AppToken:      strings.TrimSpace(v.GetString(KeyAppToken)),
		Username:      v.GetString(KeyUsername),
		Channels:      stringSlice(v, KeyChannels),
		Jobs:          v.GetInt(KeyJobs),
		HandleTimeout: v.GetDuration(KeyHandleTimeout),
		PostRate:      v.GetFloat64(KeyPostRate),
		PostBurst:     v.GetInt(KeyPostBurst),
		MetricsAddr:   v.GetString(KeyMetricsAddr),
		Debug:         v.GetBool(KeyDebug),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("bot token is required: set TOKEN, %s_TOKEN or --%s", EnvPrefix, KeyToken)
	}
	if c.AppToken != "" && !strings.HasPrefix(c.AppToken, "xapp-") {
		return fmt.Errorf("invalid app token format, expected xapp-*")
	}
	if c.Jobs < 1 || c.Jobs > 100 {
		return fmt.Errorf("--%s must be between 1 and 100, got %d", KeyJobs, c.Jobs)
	}
	if c.HandleTimeout < 0 {
		return fmt.Errorf("--%s cannot be negative", KeyHandleTimeout)
	}
	if c.PostRate < 0 {
		return fmt.Errorf("--%s cannot be negative", KeyPostRate)
	}
	if c.PostBurst < 1 {
		return fmt.Errorf("--%s must be at least 1, got %d", KeyPostBurst, c.PostBurst)
	}
	return nil
}

// stringSlice reads a list that may come from a slice flag or a
// comma-separated environment variable.
func stringSlice(v *viper.Viper, key string) []string {
	var raw []string
	switch val := v.Get(key).(type) {
	case nil:
		return nil
	case string:
		raw = strings.Split(val, ",")
	case []string:
		raw = val
	default:
		raw = v.GetStringSlice(key)
	}

	var out []string
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
