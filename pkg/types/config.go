package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "optoscholar/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// GatewayConfig holds settings for the citation index gateway.
type GatewayConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the E-utilities root (default https://eutils.ncbi.nlm.nih.gov/entrez/eutils).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// APIKey raises the index's rate limit from 3 to 10 requests per second.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Tool and Email identify the client to NCBI as their usage policy asks.
	Tool  string `json:"tool" yaml:"tool" mapstructure:"tool"`
	Email string `json:"email,omitempty" yaml:"email,omitempty" mapstructure:"email"`

	// Journals restricts searches to these journal titles. Empty means no
	// journal restriction.
	Journals []string `json:"journals,omitempty" yaml:"journals,omitempty" mapstructure:"journals"`

	// PageSize is the number of results per page (default 10).
	PageSize int `json:"page_size" yaml:"page_size" mapstructure:"page_size"`

	// RateLimit is the sustained request rate per second (default 3, or 10
	// with an API key).
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit" mapstructure:"rate_limit"`

	// MaxRetries bounds retries on HTTP 429 (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// SlotBackend identifies where the library is persisted.
type SlotBackend string

const (
	SlotFile   SlotBackend = "file"
	SlotSQLite SlotBackend = "sqlite"
	SlotS3     SlotBackend = "s3"
)

// LibraryConfig holds settings for the persisted library.
type LibraryConfig struct {
	// Backend selects the slot implementation: file, sqlite, or s3.
	Backend SlotBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Path is the JSON file (file backend) or database file (sqlite backend).
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// Key names the slot (sqlite row key or S3 object key).
	Key string `json:"key" yaml:"key" mapstructure:"key"`

	// S3 settings, used by the s3 backend only.
	S3Bucket    string `json:"s3_bucket,omitempty" yaml:"s3_bucket,omitempty" mapstructure:"s3_bucket"`
	S3Endpoint  string `json:"s3_endpoint,omitempty" yaml:"s3_endpoint,omitempty" mapstructure:"s3_endpoint"`
	S3Region    string `json:"s3_region,omitempty" yaml:"s3_region,omitempty" mapstructure:"s3_region"`
	S3AccessKey string `json:"s3_access_key,omitempty" yaml:"s3_access_key,omitempty" mapstructure:"s3_access_key"`
	S3SecretKey string `json:"s3_secret_key,omitempty" yaml:"s3_secret_key,omitempty" mapstructure:"s3_secret_key"`
}

// AgentConfig holds settings for the asynchronous research agent.
type AgentConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the agent webhook root; jobs start at BaseURL/async and are
	// polled at BaseURL/status/{run_id}.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// PollInterval is the delay before each status poll (default 1s).
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval" mapstructure:"poll_interval"`

	// MaxAttempts bounds the number of status polls (default 60).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts" mapstructure:"max_attempts"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error (default warn).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is json or console (default console).
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups all component configurations.
type Config struct {
	Gateway GatewayConfig `json:"gateway" yaml:"gateway" mapstructure:"gateway"`
	Library LibraryConfig `json:"library" yaml:"library" mapstructure:"library"`
	Agent   AgentConfig   `json:"agent" yaml:"agent" mapstructure:"agent"`
	Logging LoggingConfig `json:"logging" yaml:"logging" mapstructure:"logging"`
}
