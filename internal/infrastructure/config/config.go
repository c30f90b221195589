// internal/infrastructure/config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"skypulse-engine/internal/domain/entity"
	"skypulse-engine/pkg/pricing"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// MongoDB
	MongoURI string
	MongoDB  string

	// PostgreSQL (subscription store, read-only)
	PostgresDSN string

	// Gmail deal feed
	GmailClientID     string
	GmailClientSecret string
	GmailRefreshToken string
	GmailPollInterval time.Duration
	FeedSenders       []string

	// Deal processing
	ProcessInterval time.Duration
	MatchThreshold  int
	WeightDest      float64
	WeightPrice     float64
	WeightDate      float64
	WeightOrigin    float64

	// Price intelligence
	RetentionDays    int
	TrendWindowDays  int
	TrendShortWindow int
	TrendDeltaBand   float64
	HolidayRanges    []pricing.HolidayRange
	PruneSchedule    string

	// Claude summaries
	AnthropicAPIKey  string
	ClaudeModel      string
	SummaryTimeout   time.Duration
	SummaryAttempts  int
	SummaryBaseDelay time.Duration
	SummaryQueueSize int

	// Alert notifications
	AlertWebhookURL   string
	AlertWebhookToken string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		AppVersion:   getEnv("APP_VERSION", "2.0.0"),
		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,

		MongoURI: getEnv("MONGODB_DSN", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "skypulse"),

		PostgresDSN: getEnv("POSTGRES_DSN", "host=localhost user=skypulse dbname=skypulse port=5432"),

		GmailClientID:     getEnv("GMAIL_CLIENT_ID", ""),
		GmailClientSecret: getEnv("GMAIL_CLIENT_SECRET", ""),
		GmailRefreshToken: getEnv("GMAIL_REFRESH_TOKEN", ""),
		GmailPollInterval: time.Duration(getEnvAsInt("GMAIL_POLL_INTERVAL", 60)) * time.Second,
		FeedSenders:       splitList(getEnv("DEAL_FEED_SENDERS", "")),

		ProcessInterval: time.Duration(getEnvAsInt("PROCESS_INTERVAL", 30)) * time.Second,
		MatchThreshold:  getEnvAsInt("MATCH_THRESHOLD", 50),
		WeightDest:      getEnvAsFloat("WEIGHT_DESTINATION", 40),
		WeightPrice:     getEnvAsFloat("WEIGHT_PRICE", 30),
		WeightDate:      getEnvAsFloat("WEIGHT_DATE", 20),
		WeightOrigin:    getEnvAsFloat("WEIGHT_ORIGIN", 10),

		RetentionDays:    getEnvAsInt("PRICE_RETENTION_DAYS", 365),
		TrendWindowDays:  getEnvAsInt("TREND_WINDOW_DAYS", 90),
		TrendShortWindow: getEnvAsInt("TREND_SHORT_WINDOW", 7),
		TrendDeltaBand:   getEnvAsFloat("TREND_DELTA_BAND", 0.05),
		PruneSchedule:    getEnv("PRUNE_SCHEDULE", "0 3 * * *"),

		AnthropicAPIKey:  getEnv("ANTHROPIC_API_KEY", ""),
		ClaudeModel:      getEnv("CLAUDE_MODEL", "claude-sonnet-4-20250514"),
		SummaryTimeout:   time.Duration(getEnvAsInt("SUMMARY_TIMEOUT", 30)) * time.Second,
		SummaryAttempts:  getEnvAsInt("SUMMARY_ATTEMPTS", 3),
		SummaryBaseDelay: time.Duration(getEnvAsInt("SUMMARY_BACKOFF_BASE_MS", 1000)) * time.Millisecond,
		SummaryQueueSize: getEnvAsInt("SUMMARY_QUEUE_SIZE", 256),

		AlertWebhookURL:   getEnv("ALERT_WEBHOOK_URL", ""),
		AlertWebhookToken: getEnv("ALERT_WEBHOOK_TOKEN", ""),
	}

	holidays, err := parseHolidayRanges(getEnv("HOLIDAY_RANGES", ""))
	if err != nil {
		return nil, err
	}
	config.HolidayRanges = holidays

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate fails fast on configuration the engine cannot run with.
func (c *Config) Validate() error {
	if c.WeightDest+c.WeightPrice+c.WeightDate+c.WeightOrigin != 100 {
		return &entity.ConfigError{Field: "weights", Reason: "scoring weights must sum to 100"}
	}
	if c.MatchThreshold <= 0 || c.MatchThreshold > 100 {
		return &entity.ConfigError{Field: "MATCH_THRESHOLD", Reason: "must be in (0, 100]"}
	}
	if c.RetentionDays <= 0 {
		return &entity.ConfigError{Field: "PRICE_RETENTION_DAYS", Reason: "must be positive"}
	}
	if c.TrendShortWindow < 2 {
		return &entity.ConfigError{Field: "TREND_SHORT_WINDOW", Reason: "must be at least 2"}
	}
	if c.TrendDeltaBand <= 0 || c.TrendDeltaBand >= 1 {
		return &entity.ConfigError{Field: "TREND_DELTA_BAND", Reason: "must be in (0, 1)"}
	}
	if c.SummaryAttempts < 1 {
		return &entity.ConfigError{Field: "SUMMARY_ATTEMPTS", Reason: "must be at least 1"}
	}
	return nil
}

// parseHolidayRanges reads "MM-DD:MM-DD" pairs separated by commas, e.g.
// "12-20:01-05,07-15:08-15". Empty input selects the built-in defaults.
func parseHolidayRanges(raw string) ([]pricing.HolidayRange, error) {
	if raw == "" {
		return nil, nil
	}
	var out []pricing.HolidayRange
	for _, part := range strings.Split(raw, ",") {
		bounds := strings.Split(strings.TrimSpace(part), ":")
		if len(bounds) != 2 {
			return nil, &entity.ConfigError{Field: "HOLIDAY_RANGES", Reason: "expected MM-DD:MM-DD entries"}
		}
		startMonth, startDay, err := parseMonthDay(bounds[0])
		if err != nil {
			return nil, err
		}
		endMonth, endDay, err := parseMonthDay(bounds[1])
		if err != nil {
			return nil, err
		}
		out = append(out, pricing.HolidayRange{
			StartMonth: startMonth, StartDay: startDay,
			EndMonth: endMonth, EndDay: endDay,
		})
	}
	return out, nil
}

func parseMonthDay(raw string) (time.Month, int, error) {
	fields := strings.Split(raw, "-")
	if len(fields) != 2 {
		return 0, 0, &entity.ConfigError{Field: "HOLIDAY_RANGES", Reason: "expected MM-DD"}
	}
	month, err1 := strconv.Atoi(fields[0])
	day, err2 := strconv.Atoi(fields[1])
	if err1 != nil || err2 != nil || month < 1 || month > 12 || day < 1 || day > 31 {
		return 0, 0, &entity.ConfigError{Field: "HOLIDAY_RANGES", Reason: "invalid month or day"}
	}
	return time.Month(month), day, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

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
