// Package config provides connector configuration with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (FRESHDESK_DOMAIN, FRESHDESK_API_KEY, ...)
//  2. Optional .env file in the working directory
//  3. Config file (freshdesk.yaml in the working directory)
//  4. Default values
//
// Two settings are required and fatal at startup when absent: the
// Freshdesk domain and the API key. Everything else has a default.
//
// Security: the API key is never logged; MarshalJSON and String mask it.
//
// Error Handling:
//   - Uses sentinel errors for Go-idiomatic error checking with errors.Is()
//   - Wrap with context using fmt.Errorf("%w: details", ErrXxx)
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	// ErrMissingDomain indicates FRESHDESK_DOMAIN is not set.
	ErrMissingDomain = errors.New("missing Freshdesk domain")

	// ErrMissingAPIKey indicates FRESHDESK_API_KEY is not set.
	ErrMissingAPIKey = errors.New("missing Freshdesk API key")

	// ErrInvalidTimeout indicates the request timeout is out of range.
	ErrInvalidTimeout = errors.New("invalid request timeout")

	// ErrInvalidMaxAttempts indicates the retry attempt count is out of range.
	ErrInvalidMaxAttempts = errors.New("invalid max attempts")

	// ErrInvalidPageSize indicates the search page size is out of range.
	ErrInvalidPageSize = errors.New("invalid search page size")

	// ErrInvalidMaxPages indicates the search page ceiling is out of range.
	ErrInvalidMaxPages = errors.New("invalid search page ceiling")
)

// Defaults for the HTTP adapter and search pagination.
const (
	// DefaultTimeout bounds a single round trip to the Freshdesk API.
	DefaultTimeout = 20 * time.Second

	// DefaultMaxAttempts is the total attempt count for a rate-limited
	// request (initial try included).
	DefaultMaxAttempts = 3

	// DefaultRetryBackoff is the fixed sleep between rate-limited attempts.
	DefaultRetryBackoff = 2 * time.Second

	// DefaultPageSize is the per_page value sent to search/tickets.
	DefaultPageSize = 50

	// DefaultMaxPages caps how many search pages are aggregated.
	DefaultMaxPages = 5

	// DefaultLogFile is the append-only log file written next to the binary.
	DefaultLogFile = "freshdesk-mcp.log"
)

// Config stores connector configuration.
// SECURITY: APIKey is explicitly masked in MarshalJSON().
type Config struct {
	// Domain is the Freshdesk account domain, e.g. "acme.freshdesk.com".
	// Normalized: scheme and trailing slashes are stripped.
	Domain string `mapstructure:"domain" json:"domain"`

	// APIKey authenticates against the Freshdesk API. SENSITIVE: masked
	// in MarshalJSON.
	APIKey string `mapstructure:"api_key" json:"api_key"`

	// Timeout bounds a single HTTP round trip.
	Timeout time.Duration `mapstructure:"timeout" json:"timeout"`

	// MaxAttempts is the total attempt count on rate limiting.
	MaxAttempts int `mapstructure:"max_attempts" json:"max_attempts"`

	// RetryBackoff is the fixed wait between rate-limited attempts.
	RetryBackoff time.Duration `mapstructure:"retry_backoff" json:"retry_backoff"`

	// PageSize is the search page size (per_page).
	PageSize int `mapstructure:"page_size" json:"page_size"`

	// MaxPages is the search page ceiling.
	MaxPages int `mapstructure:"max_pages" json:"max_pages"`

	// LogFile is the append-only log file path; empty disables the file sink.
	LogFile string `mapstructure:"log_file" json:"log_file"`

	// Debug enables debug-level logging.
	Debug bool `mapstructure:"debug" json:"debug"`
}

// Load loads configuration.
// Priority: Environment variables > .env file > config file > defaults.
func Load() (*Config, error) {
	// The original deployment ships credentials in a .env file next to
	// the binary. Missing .env is not an error.
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	v := viper.New()
	v.SetConfigName("freshdesk")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// Missing config file is fine, defaults plus env cover everything.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	cfg.Domain = NormalizeDomain(cfg.Domain)

	// Fail-fast: a connector without credentials is useless.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("max_attempts", DefaultMaxAttempts)
	v.SetDefault("retry_backoff", DefaultRetryBackoff)
	v.SetDefault("page_size", DefaultPageSize)
	v.SetDefault("max_pages", DefaultMaxPages)
	v.SetDefault("log_file", DefaultLogFile)
	v.SetDefault("debug", false)
}

// bindEnvVariables binds environment variables explicitly.
func bindEnvVariables(v *viper.Viper) {
	// Hardcoded keys cannot fail to bind; a panic here is a bug.
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("domain", "FRESHDESK_DOMAIN")
	mustBind("api_key", "FRESHDESK_API_KEY")
	mustBind("log_file", "FRESHDESK_LOG_FILE")
	mustBind("debug", "DEBUG")
}

// Validate checks that the configuration is complete and in range.
func (c *Config) Validate() error {
	if c.Domain == "" {
		return fmt.Errorf("%w: set FRESHDESK_DOMAIN (e.g. yourcompany.freshdesk.com)", ErrMissingDomain)
	}
	if c.APIKey == "" {
		return fmt.Errorf("%w: set FRESHDESK_API_KEY", ErrMissingAPIKey)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidTimeout, c.Timeout)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidMaxAttempts, c.MaxAttempts)
	}
	if c.PageSize < 1 || c.PageSize > 100 {
		return fmt.Errorf("%w: %d (must be 1-100)", ErrInvalidPageSize, c.PageSize)
	}
	if c.MaxPages < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidMaxPages, c.MaxPages)
	}
	return nil
}

// NormalizeDomain strips the URL scheme and any trailing slashes from a
// configured domain, so both "acme.freshdesk.com" and
// "https://acme.freshdesk.com/" are accepted.
func NormalizeDomain(domain string) string {
	d := strings.TrimSpace(domain)
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	return strings.TrimRight(d, "/")
}

// maskedValue is the placeholder for masked sensitive data.
const maskedValue = "████████"

// maskSecret masks a secret string for safe logging. Short secrets are
// fully masked; longer ones keep the first and last two characters for
// debug utility.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return maskedValue
	}
	return s[:2] + "<" + maskedValue + ">" + s[len(s)-2:]
}

// MarshalJSON implements json.Marshaler with explicit API key masking.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	a := alias(c)
	a.APIKey = maskSecret(a.APIKey)
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// String implements Stringer to prevent accidental printing of secrets.
func (c Config) String() string {
	data, err := c.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}
