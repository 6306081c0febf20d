package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName    string
	AppVersion string
	LogLevel   string
	HTTPAddr   string

	TelegramToken string

	GroqAPIKey   string
	GroqModel    string
	GeminiAPIKey string
	GeminiModel  string
	USDAAPIKey   string

	LedgerPath      string
	ProviderTimeout time.Duration
	SessionIdleTTL  time.Duration

	Target Target
}

// Target is the fixed daily nutrition budget replies are measured against.
type Target struct {
	Calories float64
	Protein  float64
	Fat      float64
	Carbs    float64
}

// Load loads configuration from environment variables and .env file.
// It fails when a required credential is absent so the process can exit
// with a diagnostic at startup instead of failing mid-conversation.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AppName:    getenv("APP_SERVICE", "nutrilog"),
		AppVersion: getenv("APP_VERSION", "0.1.0"),
		LogLevel:   strings.ToLower(strings.TrimSpace(getenv("LOG_LEVEL", "info"))),
		HTTPAddr:   getenv("HTTP_ADDR", ":8080"),

		TelegramToken: strings.TrimSpace(getenv("TELEGRAM_BOT_TOKEN", "")),

		GroqAPIKey:   strings.TrimSpace(getenv("GROQ_API_KEY", "")),
		GroqModel:    getenv("GROQ_MODEL", "llama-3.3-70b-versatile"),
		GeminiAPIKey: strings.TrimSpace(getenv("GEMINI_API_KEY", "")),
		GeminiModel:  getenv("GEMINI_MODEL", "gemini-1.5-flash"),
		USDAAPIKey:   strings.TrimSpace(getenv("USDA_API_KEY", "")),

		LedgerPath:      getenv("LEDGER_PATH", "data.json"),
		ProviderTimeout: getenvDuration("PROVIDER_TIMEOUT", 30*time.Second),
		SessionIdleTTL:  getenvDuration("SESSION_IDLE_TTL", 30*time.Minute),

		Target: Target{
			Calories: getenvFloat("TARGET_CALORIES", 3300),
			Protein:  getenvFloat("TARGET_PROTEIN", 175),
			Fat:      getenvFloat("TARGET_FAT", 95),
			Carbs:    getenvFloat("TARGET_CARBS", 435),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	missing := make([]string, 0, 4)
	if c.TelegramToken == "" {
		missing = append(missing, "TELEGRAM_BOT_TOKEN")
	}
	if c.GroqAPIKey == "" {
		missing = append(missing, "GROQ_API_KEY")
	}
	if c.GeminiAPIKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}
	if c.USDAAPIKey == "" {
		missing = append(missing, "USDA_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	if c.ProviderTimeout <= 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT must be positive, got %s", c.ProviderTimeout)
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}
