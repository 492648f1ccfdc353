package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Remote inference. An empty key is legal: the pipeline then runs in
	// degraded mode on the local classifier.
	GeminiAPIKey string
	GeminiModel  string

	// Local zero-shot classifier sidecar. Empty disables the fallback.
	ClipServerURL string

	TelegramBotToken string
	WebhookURL       string

	DatabaseURL string

	GBIFUsername string
	GBIFPassword string
	GBIFEmail    string

	IUCNToken   string
	IUCNBaseURL string

	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3UseSSL    bool
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port: getEnv("PORT", "8000"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-pro"),

		ClipServerURL: getEnv("CLIP_SERVER_URL", "http://127.0.0.1:8008"),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		WebhookURL:       os.Getenv("WEBHOOK_URL"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		GBIFUsername: os.Getenv("GBIF_USERNAME"),
		GBIFPassword: os.Getenv("GBIF_PASSWORD"),
		GBIFEmail:    os.Getenv("GBIF_EMAIL"),

		IUCNToken:   os.Getenv("IUCN_API_TOKEN"),
		IUCNBaseURL: getEnv("IUCN_BASE_URL", "https://apiv3.iucnredlist.org"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    getEnv("S3_BUCKET", "gaia-net-raw-biodiversity-data-v1"),
		S3UseSSL:    getEnv("S3_USE_SSL", "true") == "true",
	}
}
