package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`
	DBPath     string `env:"DB_PATH" envDefault:"/data/wardrobe.db"`
	PhotoPath  string `env:"PHOTO_LOCAL_PATH" envDefault:"/data/photos"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile    string `env:"LOG_FILE"`

	CORSOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	// VisionBackend is "ollama", "claude" or "none".
	VisionBackend string `env:"VISION_BACKEND" envDefault:"none"`
	OllamaHost    string `env:"OLLAMA_HOST" envDefault:"http://localhost:11434"`
	OllamaModel   string `env:"OLLAMA_MODEL" envDefault:"llava"`
	ClaudeAPIKey  string `env:"CLAUDE_API_KEY"`
	ClaudeModel   string `env:"CLAUDE_MODEL" envDefault:"claude-sonnet-4-5"`
	ClaudeBaseURL string `env:"CLAUDE_BASE_URL"`

	SuggestRatePerMinute int `env:"SUGGEST_RATE_PER_MINUTE" envDefault:"6"`

	Insights Insights `envPrefix:"INSIGHTS_"`
}

// Insights sizes the windows and lists on the insights screen.
type Insights struct {
	RecentDays     int `env:"RECENT_DAYS" envDefault:"30"`
	StaleDays      int `env:"STALE_DAYS" envDefault:"90"`
	TopOutfits     int `env:"TOP_OUTFITS" envDefault:"5"`
	ClothesPerList int `env:"CLOTHES_PER_LIST" envDefault:"8"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	switch cfg.VisionBackend {
	case "none", "ollama":
	case "claude":
		if cfg.ClaudeAPIKey == "" {
			return nil, fmt.Errorf("CLAUDE_API_KEY is required when VISION_BACKEND=claude")
		}
	default:
		return nil, fmt.Errorf("unknown VISION_BACKEND %q", cfg.VisionBackend)
	}
	if cfg.SuggestRatePerMinute <= 0 {
		return nil, fmt.Errorf("SUGGEST_RATE_PER_MINUTE must be positive, got %d", cfg.SuggestRatePerMinute)
	}
	return cfg, nil
}
