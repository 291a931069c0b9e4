package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Marker storage backends
const (
	BackendFile   = "file"
	BackendBlob   = "blob"
	BackendSQLite = "sqlite"
)

// Feed sources
const (
	SourceReddit     = "reddit"
	SourceRSS        = "rss"
	SourceHackerNews = "hackernews"
)

// DefaultSearchTerms are the terms watched when SEARCH_TERMS is not set
var DefaultSearchTerms = []string{
	"assembly square",
	"treehouse",
	"modular",
}

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port         string
	Debug        bool
	StrictConfig bool

	// Feed configuration
	FeedSource         string // "reddit", "rss" or "hackernews"
	Subreddit          string
	FeedPollInterval   time.Duration
	RedditClientID     string
	RedditClientSecret string
	RedditUserAgent    string
	RedditBaseURL      string
	HackerNewsBaseURL  string

	// Search terms, lowercased
	SearchTerms []string

	// Progress marker configuration
	MarkerBackend    string
	MarkerPath       string
	MarkerName       string
	ResetMarker      bool
	StorageAccount   string
	StorageContainer string

	// Long-form (email) channel
	EmailAddress      string
	EmailPassword     string
	NotificationEmail string
	SMTPHost          string
	SMTPPort          int

	// Short-form (SMS) channel
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
	SMSToNumber      string
	TwilioAPIURL     string

	// Watchdog configuration
	WatchdogProcessName string
	WatchdogInterpreter string
	WatchdogTarget      string
	WatchdogLogFile     string
	WatchdogSchedule    string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:         getEnv("PORT", ""),
		Debug:        getBoolEnv("DEBUG", false),
		StrictConfig: getBoolEnv("STRICT_CONFIG", false),

		FeedSource:         strings.ToLower(getEnv("FEED_SOURCE", SourceReddit)),
		Subreddit:          getEnv("SUBREDDIT", "legodeal"),
		FeedPollInterval:   getDurationEnv("FEED_POLL_INTERVAL", 30*time.Second),
		RedditClientID:     getEnv("REDDIT_CLIENT_ID", ""),
		RedditClientSecret: getEnv("REDDIT_CLIENT_SECRET", ""),
		RedditUserAgent:    getEnv("REDDIT_USER_AGENT", "legodealbot/1.0"),
		RedditBaseURL:      getEnv("REDDIT_BASE_URL", ""),
		HackerNewsBaseURL:  getEnv("HACKERNEWS_BASE_URL", ""),

		SearchTerms: normalizeTerms(getSliceEnv("SEARCH_TERMS", DefaultSearchTerms)),

		MarkerBackend:    strings.ToLower(getEnv("MARKER_BACKEND", BackendFile)),
		MarkerPath:       getEnv("MARKER_PATH", ""),
		MarkerName:       getEnv("MARKER_NAME", "last_seen"),
		ResetMarker:      getBoolEnv("RESET_MARKER", false),
		StorageAccount:   getEnv("AZURE_STORAGE_ACCOUNT", ""),
		StorageContainer: getEnv("AZURE_STORAGE_CONTAINER", "legodealbot"),

		EmailAddress:      getEnv("EMAIL_ADDRESS", ""),
		EmailPassword:     getEnv("EMAIL_PASSWORD", ""),
		NotificationEmail: getEnv("NOTIFICATION_EMAIL", ""),
		SMTPHost:          getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:          getIntEnv("SMTP_PORT", 587),

		TwilioAccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber: getEnv("TWILIO_FROM_NUMBER", ""),
		SMSToNumber:      getEnv("SMS_TO_NUMBER", ""),
		TwilioAPIURL:     getEnv("TWILIO_API_URL", "https://api.twilio.com"),

		WatchdogProcessName: getEnv("WATCHDOG_PROCESS_NAME", ""),
		WatchdogInterpreter: getEnv("WATCHDOG_INTERPRETER", ""),
		WatchdogTarget:      getEnv("WATCHDOG_TARGET", ""),
		WatchdogLogFile:     getEnv("WATCHDOG_LOG_FILE", "nohup.out"),
		WatchdogSchedule:    getEnv("WATCHDOG_SCHEDULE", ""),
	}

	if cfg.NotificationEmail == "" {
		cfg.NotificationEmail = cfg.EmailAddress
	}

	if cfg.MarkerPath == "" {
		cfg.MarkerPath = defaultMarkerPath(cfg.MarkerBackend)
	}

	// Validate required configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.SearchTerms) == 0 {
		return fmt.Errorf("SEARCH_TERMS must contain at least one term")
	}

	switch c.FeedSource {
	case SourceReddit, SourceRSS, SourceHackerNews:
	default:
		return fmt.Errorf("FEED_SOURCE must be 'reddit', 'rss' or 'hackernews'")
	}

	if c.FeedPollInterval <= 0 {
		return fmt.Errorf("FEED_POLL_INTERVAL must be positive")
	}

	switch c.MarkerBackend {
	case BackendFile, BackendSQLite:
		if c.MarkerPath == "" {
			return fmt.Errorf("MARKER_PATH is required for the %s marker backend", c.MarkerBackend)
		}
	case BackendBlob:
		if c.StorageAccount == "" {
			return fmt.Errorf("AZURE_STORAGE_ACCOUNT is required for the blob marker backend")
		}
	default:
		return fmt.Errorf("MARKER_BACKEND must be 'file', 'blob' or 'sqlite'")
	}

	return nil
}

// MissingKeysError lists every required environment variable that was not set
type MissingKeysError struct {
	Scope string
	Keys  []string
}

func (e *MissingKeysError) Error() string {
	return fmt.Sprintf("%s configuration is missing: %s", e.Scope, strings.Join(e.Keys, ", "))
}

// EmailSettings are the values the long-form channel needs
type EmailSettings struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

// EmailSettings returns the long-form channel settings or a *MissingKeysError
func (c *Config) EmailSettings() (EmailSettings, error) {
	missing := missingKeys(map[string]string{
		"EMAIL_ADDRESS":  c.EmailAddress,
		"EMAIL_PASSWORD": c.EmailPassword,
	})
	if len(missing) > 0 {
		return EmailSettings{}, &MissingKeysError{Scope: "email", Keys: missing}
	}

	return EmailSettings{
		Host:     c.SMTPHost,
		Port:     c.SMTPPort,
		Username: c.EmailAddress,
		Password: c.EmailPassword,
		From:     c.EmailAddress,
		To:       c.NotificationEmail,
	}, nil
}

// SMSSettings are the values the short-form channel needs
type SMSSettings struct {
	APIURL     string
	AccountSID string
	AuthToken  string
	From       string
	To         string
}

// SMSSettings returns the short-form channel settings or a *MissingKeysError
func (c *Config) SMSSettings() (SMSSettings, error) {
	missing := missingKeys(map[string]string{
		"TWILIO_ACCOUNT_SID": c.TwilioAccountSID,
		"TWILIO_AUTH_TOKEN":  c.TwilioAuthToken,
		"TWILIO_FROM_NUMBER": c.TwilioFromNumber,
		"SMS_TO_NUMBER":      c.SMSToNumber,
	})
	if len(missing) > 0 {
		return SMSSettings{}, &MissingKeysError{Scope: "sms", Keys: missing}
	}

	return SMSSettings{
		APIURL:     c.TwilioAPIURL,
		AccountSID: c.TwilioAccountSID,
		AuthToken:  c.TwilioAuthToken,
		From:       c.TwilioFromNumber,
		To:         c.SMSToNumber,
	}, nil
}

// CheckChannels reports every missing channel key in one error
func (c *Config) CheckChannels() error {
	var keys []string
	if _, err := c.EmailSettings(); err != nil {
		keys = append(keys, err.(*MissingKeysError).Keys...)
	}
	if _, err := c.SMSSettings(); err != nil {
		keys = append(keys, err.(*MissingKeysError).Keys...)
	}
	if len(keys) > 0 {
		return &MissingKeysError{Scope: "notification", Keys: keys}
	}
	return nil
}

// WatchdogCommand returns the launch command for the stream loop
func (c *Config) WatchdogCommand() ([]string, error) {
	if c.WatchdogTarget == "" {
		return nil, &MissingKeysError{Scope: "watchdog", Keys: []string{"WATCHDOG_TARGET"}}
	}
	if c.WatchdogInterpreter == "" {
		return []string{c.WatchdogTarget}, nil
	}
	return []string{c.WatchdogInterpreter, c.WatchdogTarget}, nil
}

// WatchdogProcessIdentifier returns the string looked for in process command
// lines. It defaults to the file name of WATCHDOG_TARGET.
func (c *Config) WatchdogProcessIdentifier() (string, error) {
	if c.WatchdogProcessName != "" {
		return c.WatchdogProcessName, nil
	}
	if c.WatchdogTarget != "" {
		return filepath.Base(c.WatchdogTarget), nil
	}
	return "", &MissingKeysError{Scope: "watchdog", Keys: []string{"WATCHDOG_PROCESS_NAME", "WATCHDOG_TARGET"}}
}

func defaultMarkerPath(backend string) string {
	if backend == BackendSQLite {
		return "last_seen.db"
	}
	return "last_seen.txt"
}

func missingKeys(values map[string]string) []string {
	var missing []string
	for key, value := range values {
		if value == "" {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing
}

func normalizeTerms(terms []string) []string {
	var normalized []string
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" {
			normalized = append(normalized, term)
		}
	}
	return normalized
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
