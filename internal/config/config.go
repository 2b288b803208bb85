// Package config loads daemon configuration from flags, environment variables and a .env file.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Settings SettingsConfig
	Journal  JournalConfig
	Server   ServerConfig
	Tools    ToolsConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// SettingsConfig locates the settings document.
type SettingsConfig struct {
	Path  string // default: <user config dir>/QualCode/settings.json
	Watch bool   // reload on external rewrites (default: true)
}

// JournalConfig controls the change history database.
type JournalConfig struct {
	Enabled bool   // default: true
	Path    string // default: <settings dir>/journal
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr            string        // default: 127.0.0.1:8765
	AllowedOrigins  []string      // CORS origins; empty allows none
	ReadTimeout     time.Duration // default: 15s
	WriteTimeout    time.Duration // 0 keeps SSE streams open
	ShutdownTimeout time.Duration // default: 10s
}

// ToolsConfig controls the agent tool surface.
type ToolsConfig struct {
	RatePerMinute int // per client; 0 disables limiting (default: 120)
}

// LoadConfig loads configuration from the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load builds a Config with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("prefsd", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	settingsPath := fs.String("settings-path", "", "Path to settings.json")
	watch := fs.String("watch-settings", "", "Reload when settings.json changes on disk (default: true)")
	journalEnabled := fs.String("journal-enabled", "", "Record settings history (default: true)")
	journalPath := fs.String("journal-path", "", "Directory for the settings history database")
	addr := fs.String("addr", "", "HTTP listen address (default: 127.0.0.1:8765)")
	origins := fs.String("allowed-origins", "", "Comma separated CORS origins")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	shutdownTimeout := fs.String("shutdown-timeout", "", "Graceful shutdown timeout (default: 10s)")
	toolRate := fs.String("tool-rate", "", "Tool calls per minute per client (default: 120)")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Missing .env is fine.
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Settings: SettingsConfig{
			Path:  getConfigValue(*settingsPath, "SETTINGS_PATH", ""),
			Watch: getBoolConfigValue(*watch, "WATCH_SETTINGS", true),
		},
		Journal: JournalConfig{
			Enabled: getBoolConfigValue(*journalEnabled, "JOURNAL_ENABLED", true),
			Path:    getConfigValue(*journalPath, "JOURNAL_PATH", ""),
		},
		Server: ServerConfig{
			Addr:           getConfigValue(*addr, "SERVER_ADDR", "127.0.0.1:8765"),
			AllowedOrigins: splitList(getConfigValue(*origins, "ALLOWED_ORIGINS", "")),
		},
		Tools: ToolsConfig{
			RatePerMinute: getIntConfigValue(*toolRate, "TOOL_RATE_PER_MINUTE", 120),
		},
	}

	var err error
	if cfg.Server.ReadTimeout, err = parseDuration(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.ShutdownTimeout, err = parseDuration(*shutdownTimeout, "SHUTDOWN_TIMEOUT", "10s"); err != nil {
		return nil, err
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Settings.Path == "" {
		return errors.New("settings path cannot be empty after expansion")
	}
	if filepath.Ext(c.Settings.Path) != ".json" {
		return fmt.Errorf("settings path must be a .json file: %s", c.Settings.Path)
	}

	if c.Journal.Enabled && c.Journal.Path == "" {
		return errors.New("journal path cannot be empty when the journal is enabled")
	}

	if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
		return fmt.Errorf("invalid server address %q: %w", c.Server.Addr, err)
	}

	if c.Tools.RatePerMinute < 0 {
		return fmt.Errorf("tool rate must not be negative, got %d", c.Tools.RatePerMinute)
	}

	return nil
}

// expandPaths resolves ~ and relative paths and fills path defaults.
func (c *Config) expandPaths() error {
	defaultSettings, err := DefaultSettingsPath()
	if err != nil {
		return err
	}

	c.Settings.Path, err = expandPath(c.Settings.Path, defaultSettings)
	if err != nil {
		return fmt.Errorf("invalid settings path: %w", err)
	}

	c.Journal.Path, err = expandPath(c.Journal.Path, filepath.Join(filepath.Dir(c.Settings.Path), "journal"))
	if err != nil {
		return fmt.Errorf("invalid journal path: %w", err)
	}
	return nil
}

// DefaultSettingsPath returns <user config dir>/QualCode/settings.json.
func DefaultSettingsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(dir, "QualCode", "settings.json"), nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, defaultPath is returned unchanged.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue accepts "true", "1", "yes" (case-insensitive) as true.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(strValue))
	if err != nil {
		return defaultValue
	}
	return n
}

func parseDuration(flagValue, envKey, defaultValue string) (time.Duration, error) {
	s := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToLower(envKey), s, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads KEY=value lines from a .env file. Variables already set
// in the environment win.
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- path comes from the operator
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
