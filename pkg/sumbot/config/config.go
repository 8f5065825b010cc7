// Package config defines all configuration structures for sumbot.
package config

import "time"

// Config holds the complete daemon configuration. It is constructed once at
// startup and passed into each component; nothing reads it from globals.
type Config struct {
	// Relay configures the signal-cli-rest-api endpoints.
	Relay RelayConfig `yaml:"relay"`

	// Group is the single chat group the bot operates in.
	Group GroupConfig `yaml:"group"`

	// LLM configures the summarization model endpoint.
	LLM LLMConfig `yaml:"llm"`

	// Database configures the SQLite message store.
	Database DatabaseConfig `yaml:"database"`

	// Poll configures the relay polling loop.
	Poll PollConfig `yaml:"poll"`

	// Summary configures the summary range query.
	Summary SummaryConfig `yaml:"summary"`

	// Digest configures the optional scheduled group digest.
	Digest DigestConfig `yaml:"digest"`

	// Gateway configures the liveness HTTP server.
	Gateway GatewayConfig `yaml:"gateway"`

	// Logging configures log output.
	Logging LoggingConfig `yaml:"logging"`
}

// RelayConfig holds the signal-cli-rest-api connection settings.
type RelayConfig struct {
	// ReceiveURL is the endpoint polled for new envelopes.
	ReceiveURL string `yaml:"receive_url"`

	// SendURL is the endpoint used to send messages.
	SendURL string `yaml:"send_url"`

	// Username and Password are the relay's basic-auth credentials.
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// Number is the bot's own phone number, used as the sender on outgoing
	// messages.
	Number string `yaml:"number"`
}

// GroupConfig identifies the target group.
type GroupConfig struct {
	// ID is the Signal group identifier. Messages from any other group are
	// ignored entirely.
	ID string `yaml:"id"`
}

// LLMConfig configures the OpenAI-compatible chat completions endpoint.
type LLMConfig struct {
	// BaseURL is the API base URL (default https://api.openai.com/v1).
	BaseURL string `yaml:"base_url"`

	// APIKey is the bearer token. Resolved from OPENAI_API_KEY when unset.
	APIKey string `yaml:"api_key"`

	// Model is the chat model used for summaries.
	Model string `yaml:"model"`

	// MaxTokens caps the summary length.
	MaxTokens int `yaml:"max_tokens"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	JournalMode string `yaml:"journal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// PollConfig configures the relay polling loop.
type PollConfig struct {
	// Interval is the fixed time between relay fetches. There is no backoff;
	// a failed fetch simply waits for the next tick.
	Interval time.Duration `yaml:"interval"`
}

// SummaryConfig configures the summary range query.
type SummaryConfig struct {
	// Limit caps how many messages a single summary covers.
	Limit int `yaml:"limit"`
}

// DigestConfig configures the scheduled digest of recent group activity.
type DigestConfig struct {
	// Enabled activates the digest scheduler.
	Enabled bool `yaml:"enabled"`

	// Schedule is a cron expression (e.g. "0 21 * * *").
	Schedule string `yaml:"schedule"`

	// Limit caps how many recent messages the digest covers.
	Limit int `yaml:"limit"`
}

// GatewayConfig configures the liveness HTTP server.
type GatewayConfig struct {
	Address string `yaml:"address"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	// Level is "debug" or "info".
	Level string `yaml:"level"`

	// Format is "text" or "json".
	Format string `yaml:"format"`
}

// Default returns a Config with sensible defaults. Required relay, group and
// LLM credentials have no defaults and must come from the config file or
// environment.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			BaseURL:   "https://api.openai.com/v1",
			Model:     "gpt-4-1106-preview",
			MaxTokens: 1535,
		},
		Database: DatabaseConfig{
			Path:        "./data/sumbot.db",
			JournalMode: "WAL",
			BusyTimeout: 5000,
		},
		Poll: PollConfig{
			Interval: 10 * time.Second,
		},
		Summary: SummaryConfig{
			Limit: 400,
		},
		Digest: DigestConfig{
			Schedule: "0 21 * * *",
			Limit:    400,
		},
		Gateway: GatewayConfig{
			Address: ":4999",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
