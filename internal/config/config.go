package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string

	// HTTP surface
	CORSAllowedOrigins []string
	RateLimitPerSec    float64
	RateLimitBurst     int

	// Clinic identity used in prompts and receipt emails.
	ClinicName     string
	ClinicTimezone string

	// Persistence
	DatabaseURL    string
	UseMemoryStore bool
	SeedDemoData   bool

	// Conversation context cache
	RedisAddr       string
	RedisPassword   string
	RedisTLS        bool
	ConversationTTL time.Duration

	// Dialogue policy
	FieldMaxAttempts  int
	NameMaxAttempts   int
	AfternoonBias     bool
	SearchWindowDays  int
	TranscriptEnabled bool

	// AWS / Bedrock
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
	BedrockModelID      string

	// Gemini fallback
	GeminiAPIKey  string
	GeminiModelID string

	// Email receipts
	EmailProvider     string // "sendgrid", "ses", or "stub"
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SESFromEmail      string
	SESFromName       string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),
		RateLimitPerSec:    getEnvAsFloat("RATE_LIMIT_PER_SEC", 5),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 10),

		ClinicName:     getEnv("CLINIC_NAME", "Medical Office"),
		ClinicTimezone: getEnv("CLINIC_TZ", "UTC"),

		DatabaseURL:    getEnv("DATABASE_URL", ""),
		UseMemoryStore: getEnvAsBool("USE_MEMORY_STORE", false),
		SeedDemoData:   getEnvAsBool("SEED_DEMO_DATA", false),

		RedisAddr:       getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisTLS:        getEnvAsBool("REDIS_TLS", false),
		ConversationTTL: getEnvAsDuration("CONVERSATION_TTL", 24*time.Hour),

		FieldMaxAttempts:  getEnvAsInt("FIELD_MAX_ATTEMPTS", 3),
		NameMaxAttempts:   getEnvAsInt("NAME_MAX_ATTEMPTS", 2),
		AfternoonBias:     getEnvAsBool("AFTERNOON_BIAS", true),
		SearchWindowDays:  getEnvAsInt("SEARCH_WINDOW_DAYS", 7),
		TranscriptEnabled: getEnvAsBool("TRANSCRIPT_ENABLED", true),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		BedrockModelID:      getEnv("BEDROCK_MODEL_ID", ""),

		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModelID: getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),

		EmailProvider:     strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "stub"))),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Medical Office"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),
		SESFromName:       getEnv("SES_FROM_NAME", "Medical Office"),
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

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
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

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
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
