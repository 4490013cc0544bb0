package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EmailConsentPolicy controls when the email_consent checkbox is required.
// The product history flip-flopped on this, so it is an explicit setting
// instead of a hardcoded rule.
type EmailConsentPolicy string

const (
	// EmailConsentLinked requires email_consent only when an email address
	// was provided. Default.
	EmailConsentLinked EmailConsentPolicy = "linked"
	// EmailConsentAlways requires email_consent on every submission.
	EmailConsentAlways EmailConsentPolicy = "always"
	// EmailConsentNever skips the email_consent check entirely.
	EmailConsentNever EmailConsentPolicy = "never"
)

// DefaultWebhookURL is the fallback lead-forwarding endpoint used when
// LEAD_WEBHOOK_URL is not set. Set LEAD_WEBHOOK_URL=off to disable.
const DefaultWebhookURL = "https://webhook.vbn.digital/webhook/culturapi_leads"

// DefaultWhatsAppNumber is the school's WhatsApp line used for the
// post-submit deep link when WHATSAPP_NUMBER is not set.
const DefaultWhatsAppNumber = "5586999998888"

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	DatabaseURL        string
	LeadWebhookURL     string
	WhatsAppNumber     string
	WebhookTimeout     time.Duration
	StoreTimeout       time.Duration
	AdminJWTSecret     string
	CORSAllowedOrigins []string
	EmailConsentPolicy EmailConsentPolicy
	RateLimitRPS       float64
	RateLimitBurst     int
	SessionCookieName  string
	SessionTTL         time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	webhookURL := getEnv("LEAD_WEBHOOK_URL", DefaultWebhookURL)
	if strings.EqualFold(webhookURL, "off") {
		webhookURL = ""
	}

	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		LeadWebhookURL:     webhookURL,
		WhatsAppNumber:     getEnv("WHATSAPP_NUMBER", DefaultWhatsAppNumber),
		WebhookTimeout:     getEnvAsDuration("WEBHOOK_TIMEOUT", 10*time.Second),
		StoreTimeout:       getEnvAsDuration("STORE_TIMEOUT", 10*time.Second),
		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", nil),
		EmailConsentPolicy: parseConsentPolicy(getEnv("EMAIL_CONSENT_POLICY", string(EmailConsentLinked))),
		RateLimitRPS:       getEnvAsFloat("RATE_LIMIT_RPS", 2),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 10),
		SessionCookieName:  getEnv("SESSION_COOKIE_NAME", "culturapi_session"),
		SessionTTL:         getEnvAsDuration("SESSION_TTL", 30*time.Minute),
	}
}

func parseConsentPolicy(raw string) EmailConsentPolicy {
	switch EmailConsentPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case EmailConsentAlways:
		return EmailConsentAlways
	case EmailConsentNever:
		return EmailConsentNever
	default:
		return EmailConsentLinked
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
