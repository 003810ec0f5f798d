package config

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// Config contains runtime configuration required by the relay.
type Config struct {
	Port          int
	WebhookSecret string

	// Meta Conversions API.
	MetaGraphURL      string
	MetaPixelID       string
	MetaAccessToken   string
	MetaTestEventCode string

	// GTMServerEndpoint, when set, receives a copy of every conversion.
	GTMServerEndpoint string

	LogLevel slog.Level
}

const defaultWebhookSecret = "replace_with_strong_secret"

// Load reads configuration from environment variables.
//
//	PORT                  listen port (default 8080)
//	WEBHOOK_SECRET        shared secret expected in the webhook token header
//	META_PIXEL_ID         pixel the events are reported against
//	META_ACCESS_TOKEN     Conversions API access token
//	META_TEST_EVENT_CODE  optional test_event_code
//	META_GRAPH_URL        Graph API base URL (default https://graph.facebook.com)
//	GTM_SERVER_ENDPOINT   optional secondary forwarding URL
//	LOG_LEVEL             debug, info, warn or error (default info)
func Load() (Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (Config, error) {
	v.AutomaticEnv()

	v.SetDefault("PORT", 8080)
	v.SetDefault("WEBHOOK_SECRET", defaultWebhookSecret)
	v.SetDefault("META_GRAPH_URL", "https://graph.facebook.com")
	v.SetDefault("LOG_LEVEL", "info")

	port := v.GetInt("PORT")
	if port <= 0 || port > 65535 {
		return Config{}, errors.New("PORT must be between 1 and 65535")
	}

	secret := strings.TrimSpace(v.GetString("WEBHOOK_SECRET"))
	if secret == "" {
		// An empty secret would be a substring of every token.
		return Config{}, errors.New("WEBHOOK_SECRET must not be empty")
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(v.GetString("LOG_LEVEL"))); err != nil {
		return Config{}, errors.New("LOG_LEVEL must be one of debug, info, warn, error")
	}

	return Config{
		Port:              port,
		WebhookSecret:     secret,
		MetaGraphURL:      strings.TrimRight(strings.TrimSpace(v.GetString("META_GRAPH_URL")), "/"),
		MetaPixelID:       strings.TrimSpace(v.GetString("META_PIXEL_ID")),
		MetaAccessToken:   strings.TrimSpace(v.GetString("META_ACCESS_TOKEN")),
		MetaTestEventCode: strings.TrimSpace(v.GetString("META_TEST_EVENT_CODE")),
		GTMServerEndpoint: strings.TrimSpace(v.GetString("GTM_SERVER_ENDPOINT")),
		LogLevel:          level,
	}, nil
}

// UsesDefaultSecret reports whether the placeholder webhook secret is in use.
func (c Config) UsesDefaultSecret() bool {
	return c.WebhookSecret == defaultWebhookSecret
}
