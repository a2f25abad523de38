package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	Port        string
	Env         string

	// External auth provider secret (we only verify tokens, never issue them)
	JWTSecret string

	// WhatsApp gateway
	GatewayProvider  string // "aisensy" or "cloudapi"
	AiSensyAPIKey    string
	AiSensyAPIURL    string
	CloudAPIPhoneID  string
	CloudAPIToken    string
	CloudAPIVersion  string
	GatewayTimeoutMs int

	// Default region for phone normalization when the payload has no country code
	DefaultPhoneRegion string

	// Cron spec for the task reminder sweep and the campaign it sends
	ReminderSchedule string
	ReminderCampaign string
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env file not found, using system environment variables")
	}

	cfg := &Config{
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		Port:               os.Getenv("PORT"),
		Env:                os.Getenv("ENV"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		GatewayProvider:    os.Getenv("WHATSAPP_GATEWAY"),
		AiSensyAPIKey:      os.Getenv("AISENSY_API_KEY"),
		AiSensyAPIURL:      os.Getenv("AISENSY_API_URL"),
		CloudAPIPhoneID:    os.Getenv("CLOUD_API_PHONE_ID"),
		CloudAPIToken:      os.Getenv("CLOUD_API_ACCESS_TOKEN"),
		CloudAPIVersion:    os.Getenv("CLOUD_API_VERSION"),
		DefaultPhoneRegion: os.Getenv("DEFAULT_PHONE_REGION"),
		ReminderSchedule:   os.Getenv("REMINDER_SCHEDULE"),
		ReminderCampaign:   os.Getenv("REMINDER_CAMPAIGN"),
	}

	if v := os.Getenv("GATEWAY_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.GatewayTimeoutMs = ms
		}
	}

	// Default values
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.GatewayProvider == "" {
		cfg.GatewayProvider = "aisensy"
	}
	if cfg.AiSensyAPIURL == "" {
		cfg.AiSensyAPIURL = "https://backend.aisensy.com/campaign/t1/api/v2"
	}
	if cfg.CloudAPIVersion == "" {
		cfg.CloudAPIVersion = "v18.0"
	}
	if cfg.GatewayTimeoutMs == 0 {
		cfg.GatewayTimeoutMs = 15000
	}
	if cfg.DefaultPhoneRegion == "" {
		cfg.DefaultPhoneRegion = "IN"
	}
	if cfg.ReminderSchedule == "" {
		cfg.ReminderSchedule = "*/5 * * * *"
	}
	if cfg.ReminderCampaign == "" {
		cfg.ReminderCampaign = "task_reminder"
	}

	return cfg
}
