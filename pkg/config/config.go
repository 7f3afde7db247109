package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// ErrNoChannelCredential is returned when no enabled channel has a token.
var ErrNoChannelCredential = errors.New("no enabled channel has a credential configured")

// FlexibleStringSlice is a []string that also accepts JSON numbers,
// so allow_from can contain both "123456" and 123456.
type FlexibleStringSlice []string

func (f *FlexibleStringSlice) UnmarshalJSON(data []byte) error {
	// Try []string first
	var ss []string
	if err := json.Unmarshal(data, &ss); err == nil {
		*f = ss
		return nil
	}

	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	result := make([]string, 0, len(raw))
	for _, v := range raw {
		switch val := v.(type) {
		case string:
			result = append(result, val)
		case float64:
			result = append(result, fmt.Sprintf("%.0f", val))
		default:
			result = append(result, fmt.Sprintf("%v", val))
		}
	}
	*f = result
	return nil
}

type Config struct {
	Channels   ChannelsConfig   `json:"channels"`
	AliExpress AliExpressConfig `json:"aliexpress"`
	Resolver   ResolverConfig   `json:"resolver"`
	Gateway    GatewayConfig    `json:"gateway"`
}

type ChannelsConfig struct {
	Telegram TelegramConfig `json:"telegram"`
	Discord  DiscordConfig  `json:"discord"`
}

type TelegramConfig struct {
	Enabled    bool                `env:"DEALCLAW_CHANNELS_TELEGRAM_ENABLED"     json:"enabled"`
	Token      string              `env:"DEALCLAW_CHANNELS_TELEGRAM_TOKEN"       json:"token"`
	WebhookURL string              `env:"DEALCLAW_CHANNELS_TELEGRAM_WEBHOOK_URL" json:"webhook_url"`
	AllowFrom  FlexibleStringSlice `env:"DEALCLAW_CHANNELS_TELEGRAM_ALLOW_FROM"  json:"allow_from"`
}

type DiscordConfig struct {
	Enabled   bool                `env:"DEALCLAW_CHANNELS_DISCORD_ENABLED"    json:"enabled"`
	Token     string              `env:"DEALCLAW_CHANNELS_DISCORD_TOKEN"      json:"token"`
	AllowFrom FlexibleStringSlice `env:"DEALCLAW_CHANNELS_DISCORD_ALLOW_FROM" json:"allow_from"`
}

// AliExpressConfig holds the affiliate API credentials and lookup defaults.
type AliExpressConfig struct {
	AppKey         string `env:"DEALCLAW_ALIEXPRESS_APP_KEY"         json:"app_key"`
	AppSecret      string `env:"DEALCLAW_ALIEXPRESS_APP_SECRET"      json:"app_secret"`
	TrackingID     string `env:"DEALCLAW_ALIEXPRESS_TRACKING_ID"     json:"tracking_id"`
	APIBase        string `env:"DEALCLAW_ALIEXPRESS_API_BASE"        json:"api_base"`
	TargetLanguage string `env:"DEALCLAW_ALIEXPRESS_TARGET_LANGUAGE" json:"target_language"`
	TargetCurrency string `env:"DEALCLAW_ALIEXPRESS_TARGET_CURRENCY" json:"target_currency"`
	TimeoutSeconds int    `env:"DEALCLAW_ALIEXPRESS_TIMEOUT_SECONDS" json:"timeout_seconds"`
}

// ResolverConfig bounds redirect resolution for shortened links.
type ResolverConfig struct {
	TimeoutSeconds int `env:"DEALCLAW_RESOLVER_TIMEOUT_SECONDS" json:"timeout_seconds"`
}

type GatewayConfig struct {
	Host string `env:"DEALCLAW_GATEWAY_HOST" json:"host"`
	Port int    `env:"DEALCLAW_GATEWAY_PORT" json:"port"`
}

func DefaultConfig() *Config {
	return &Config{
		Channels: ChannelsConfig{
			Telegram: TelegramConfig{Enabled: true},
		},
		AliExpress: AliExpressConfig{
			TrackingID:     "BOT_TELEGRAM",
			APIBase:        "https://api-sg.aliexpress.com/sync",
			TargetLanguage: "pt_BR",
			TargetCurrency: "BRL",
			TimeoutSeconds: 20,
		},
		Resolver: ResolverConfig{TimeoutSeconds: 12},
		Gateway: GatewayConfig{
			Host: "0.0.0.0",
			Port: 10000,
		},
	}
}

// LoadConfig reads the JSON config file (missing file yields defaults) and
// overlays DEALCLAW_* environment variables on top.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// Validate checks that at least one enabled channel carries a credential.
// Affiliate credentials are not required to boot; lookups fail per-message.
func (c *Config) Validate() error {
	if c.Channels.Telegram.Enabled && c.Channels.Telegram.Token != "" {
		return nil
	}
	if c.Channels.Discord.Enabled && c.Channels.Discord.Token != "" {
		return nil
	}
	return ErrNoChannelCredential
}
