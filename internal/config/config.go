package config

import (
	"os"
	"path/filepath"
	"strconv"
)

// Config holds the core runtime configuration for the service.
// Values are primarily sourced from environment variables, with
// sensible defaults where appropriate. See .env.example.
type Config struct {
	ListenAddr string

	// DefaultStore is the storefront identifier stamped on analytics
	// events and chat context when the caller does not supply one.
	DefaultStore string

	// EventsFile is the path of the flat-file analytics fallback.
	EventsFile string

	// Cache-service tier (Redis). Leave RedisAddress empty to skip
	// the startup connection attempt entirely.
	RedisAddress  string
	RedisPassword string
	RedisDB       int

	// REST key-value tier. Both values must be present for the tier
	// to be considered configured.
	KVRestURL   string
	KVRestToken string

	// Upstream provider credentials.
	AnthropicAPIKey  string
	BrevoAPIKey      string
	OpenAIAPIKey     string
	GoogleTTSAPIKey  string
	ElevenLabsAPIKey string

	// Lead/recap email routing.
	SenderName     string
	SenderEmail    string
	LeadRecipients string // comma-separated
}

// Load reads configuration from environment variables and applies defaults.
func Load() *Config {
	cfg := &Config{
		ListenAddr:   getenv("APP_LISTEN_ADDR", ":8080"),
		DefaultStore: getenv("APP_DEFAULT_STORE", "leroy-merlin"),
		EventsFile:   getenv("APP_EVENTS_FILE", filepath.Join(os.TempDir(), "analytics_events.json")),

		RedisAddress:  os.Getenv("REDIS_ADDRESS"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		KVRestURL:   os.Getenv("KV_REST_API_URL"),
		KVRestToken: os.Getenv("KV_REST_API_TOKEN"),

		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		BrevoAPIKey:      os.Getenv("BREVO_API_KEY"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		GoogleTTSAPIKey:  os.Getenv("GOOGLE_TTS_API_KEY"),
		ElevenLabsAPIKey: os.Getenv("ELEVENLABS_API_KEY"),

		SenderName:     getenv("APP_SENDER_NAME", "Granny B's QR Advisor"),
		SenderEmail:    getenv("APP_SENDER_EMAIL", "hello@grannyb.co.za"),
		LeadRecipients: getenv("APP_LEAD_RECIPIENTS", "hello@grannyb.co.za"),
	}

	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil && db >= 0 {
			cfg.RedisDB = db
		}
	}

	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
