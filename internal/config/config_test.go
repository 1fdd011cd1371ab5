package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.NotEmpty(t, cfg.DBPath)
	assert.Equal(t, "none", cfg.VisionBackend)
	assert.Equal(t, 6, cfg.SuggestRatePerMinute)
	assert.Equal(t, Insights{RecentDays: 30, StaleDays: 90, TopOutfits: 5, ClothesPerList: 8}, cfg.Insights)
}

func TestLoadCustomValues(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9000")
	t.Setenv("DB_PATH", "/custom/db.sqlite")
	t.Setenv("VISION_BACKEND", "claude")
	t.Setenv("CLAUDE_API_KEY", "sk-test123")
	t.Setenv("SUGGEST_RATE_PER_MINUTE", "2")
	t.Setenv("INSIGHTS_STALE_DAYS", "60")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173,https://closet.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "/custom/db.sqlite", cfg.DBPath)
	assert.Equal(t, "claude", cfg.VisionBackend)
	assert.Equal(t, "sk-test123", cfg.ClaudeAPIKey)
	assert.Equal(t, 2, cfg.SuggestRatePerMinute)
	assert.Equal(t, 60, cfg.Insights.StaleDays)
	assert.Equal(t, 30, cfg.Insights.RecentDays)
	assert.Equal(t, []string{"http://localhost:5173", "https://closet.example"}, cfg.CORSOrigins)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"claude without key", map[string]string{"VISION_BACKEND": "claude"}},
		{"unknown backend", map[string]string{"VISION_BACKEND": "gpt"}},
		{"zero rate", map[string]string{"SUGGEST_RATE_PER_MINUTE": "0"}},
		{"malformed int", map[string]string{"INSIGHTS_TOP_OUTFITS": "five"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
