// Package config – loader.go handles loading configuration from YAML files
// with credential resolution via environment variables and .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// envVarPattern matches environment variable references in config values:
//   - ${VAR_NAME}          - simple variable
//   - ${VAR_NAME:-default} - default value if not set
//   - ${VAR_NAME:?error}   - error if not set
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::(-|\?)([^}]*))?\}`)

// Load builds the configuration. When path is empty the standard locations
// are searched; running without any config file is supported as long as the
// required values are present in the environment.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	cfg := Default()

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		expanded, err := expandEnvVars(string(data))
		if err != nil {
			return nil, fmt.Errorf("expanding environment variables: %w", err)
		}
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config YAML: %w", err)
		}
	}

	resolveSecrets(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every required setting is present. The process must
// not start with a partial configuration.
func (c *Config) Validate() error {
	var missing []string
	required := []struct {
		value string
		name  string
	}{
		{c.LLM.APIKey, "llm.api_key (OPENAI_API_KEY)"},
		{c.Relay.ReceiveURL, "relay.receive_url (SERVER_URL_RECEIVE)"},
		{c.Relay.SendURL, "relay.send_url (SERVER_URL_SEND)"},
		{c.Relay.Username, "relay.username (SERVER_USERNAME)"},
		{c.Relay.Password, "relay.password (SERVER_PASSWORD)"},
		{c.Relay.Number, "relay.number (USER_NUMBER)"},
		{c.Group.ID, "group.id (GROUP_ID)"},
	}
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	if c.Poll.Interval <= 0 {
		return errors.New("poll.interval must be positive")
	}
	if c.Summary.Limit <= 0 {
		return errors.New("summary.limit must be positive")
	}
	return nil
}

// findConfigFile searches for config files in standard locations.
func findConfigFile() string {
	candidates := []string{
		"config.yaml",
		"config.yml",
		"sumbot.yaml",
		"sumbot.yml",
		"configs/sumbot.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// loadEnvFiles loads .env files from standard locations.
// godotenv.Load does NOT overwrite existing env vars.
func loadEnvFiles() {
	for _, f := range []string{".env", ".env.local"} {
		_ = godotenv.Load(f)
	}
}

// expandEnvVars replaces ${VAR}, ${VAR:-default} and ${VAR:?error} references
// with their environment values. A ${VAR:?error} reference whose variable is
// unset fails the load.
func expandEnvVars(input string) (string, error) {
	var expandErr error
	out := envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		sub := envVarPattern.FindStringSubmatch(match)
		name, modifier, value := sub[1], sub[2], sub[3]

		if v, ok := os.LookupEnv(name); ok {
			return v
		}
		switch modifier {
		case "-":
			return value
		case "?":
			msg := value
			if msg == "" {
				msg = "required environment variable not set"
			}
			if expandErr == nil {
				expandErr = fmt.Errorf("%s: %s", name, msg)
			}
			return match
		default:
			return match // keep placeholder if unset
		}
	})
	if expandErr != nil {
		return "", expandErr
	}
	return out, nil
}

// resolveSecrets fills in credentials from the environment when the config
// value is empty. The variable names match the original deployment's .env
// layout so existing installs carry over unchanged.
func resolveSecrets(cfg *Config) {
	fromEnv := func(dst *string, key string) {
		if *dst == "" {
			*dst = os.Getenv(key)
		}
	}
	fromEnv(&cfg.LLM.APIKey, "OPENAI_API_KEY")
	fromEnv(&cfg.Relay.ReceiveURL, "SERVER_URL_RECEIVE")
	fromEnv(&cfg.Relay.SendURL, "SERVER_URL_SEND")
	fromEnv(&cfg.Relay.Username, "SERVER_USERNAME")
	fromEnv(&cfg.Relay.Password, "SERVER_PASSWORD")
	fromEnv(&cfg.Relay.Number, "USER_NUMBER")
	fromEnv(&cfg.Group.ID, "GROUP_ID")
}
