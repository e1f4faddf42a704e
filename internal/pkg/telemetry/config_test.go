package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"disabled ignores channels", func(c *Config) {
			c.Enabled = false
			c.Webhook.Enabled = true
		}, nil},
		{"no channels", func(*Config) {}, nil},
		{"fluent without host", func(c *Config) { c.Fluent.Enabled = true }, ErrFluentHostRequired},
		{"fluent bad port", func(c *Config) {
			c.Fluent.Enabled = true
			c.Fluent.Host = "localhost"
			c.Fluent.Port = 70000
		}, ErrFluentPortInvalid},
		{"webhook without url", func(c *Config) { c.Webhook.Enabled = true }, ErrWebhookURLRequired},
		{"webhook file scheme", func(c *Config) {
			c.Webhook.Enabled = true
			c.Webhook.URLs = []string{"file:///etc/passwd"}
		}, ErrWebhookURLInvalid},
		{"webhook header injection", func(c *Config) {
			c.Webhook.Enabled = true
			c.Webhook.URLs = []string{"https://example.com/hook"}
			c.Webhook.Headers = map[string]string{"X-A": "v\r\nX-B: evil"}
		}, ErrWebhookHeaderInvalid},
		{"telegram without token", func(c *Config) { c.Telegram.Enabled = true }, ErrTelegramBotTokenRequired},
		{"telegram without chats", func(c *Config) {
			c.Telegram.Enabled = true
			c.Telegram.BotToken = "t"
		}, ErrTelegramChatIDRequired},
		{"telegram bad chat", func(c *Config) {
			c.Telegram.Enabled = true
			c.Telegram.BotToken = "t"
			c.Telegram.ChatIDs = []string{"general"}
		}, ErrTelegramChatIDInvalid},
		{"telegram username chat", func(c *Config) {
			c.Telegram.Enabled = true
			c.Telegram.BotToken = "t"
			c.Telegram.ChatIDs = []string{"@alerts", "-100123"}
		}, nil},
		{"unknown level", func(c *Config) { c.Webhook.MinLevel = "loud" }, ErrLevelInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Enabled = true
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, DefaultDedupeWindow, cfg.DedupeWindow)
	assert.Equal(t, DefaultFluentPort, cfg.Fluent.Port)
	assert.Equal(t, "error", cfg.Telegram.MinLevel)
	assert.Equal(t, DefaultOTelTracerName, cfg.OTel.TracerName)
}
