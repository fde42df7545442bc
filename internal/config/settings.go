package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"log/slog"
)

// Settings holds all engine configuration for one CLI invocation. Field
// names match QueryOptions for reflection-based merging in query_config.go.
type Settings struct {
	// Query behavior
	MachineReadableOutput string // "", "shell", or "json"
	Interactive           bool
	Offline               bool
	Verbose               bool
	Debug                 bool

	// Logging
	LogLevel  slog.Level
	LogFormat string // "text" or "json"
	LogFile   string // optional: write logs to file instead of stderr
}

// DefaultSettings returns default configuration.
func DefaultSettings() *Settings {
	return &Settings{
		MachineReadableOutput: "",
		Interactive:           false,
		Offline:               false,
		Verbose:               false,
		Debug:                 false,
		LogLevel:              slog.LevelError,
		LogFormat:             "text",
		LogFile:               "",
	}
}

// LoadSettingsFromEnvironment loads settings from WEMI_* environment
// variables, overriding the defaults. CLI flags take precedence over
// whatever this returns.
func LoadSettingsFromEnvironment() *Settings {
	settings := DefaultSettings()

	if format := os.Getenv("WEMI_MACHINE_READABLE_OUTPUT"); format != "" {
		settings.MachineReadableOutput = strings.ToLower(format)
	}

	if interactive := os.Getenv("WEMI_INTERACTIVE"); interactive != "" {
		settings.Interactive = strings.ToLower(interactive) == "true"
	}

	if offline := os.Getenv("WEMI_OFFLINE"); offline != "" {
		settings.Offline = strings.ToLower(offline) == "true"
	}

	if verbose := os.Getenv("WEMI_VERBOSE"); verbose != "" {
		settings.Verbose = strings.ToLower(verbose) == "true"
	}

	if debug := os.Getenv("WEMI_DEBUG"); debug != "" {
		settings.Debug = strings.ToLower(debug) == "true"
	}

	if logLevel := os.Getenv("WEMI_LOG_LEVEL"); logLevel != "" {
		if level, err := parseLogLevel(logLevel); err == nil {
			settings.LogLevel = level
		}
	}

	if logFormat := os.Getenv("WEMI_LOG_FORMAT"); logFormat != "" {
		settings.LogFormat = logFormat
	}

	if logFile := os.Getenv("WEMI_LOG_FILE"); logFile != "" {
		settings.LogFile = logFile
	}

	return settings
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToUpper(level) {
	case "TRACE":
		return slog.LevelDebug - 4, nil
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	case "FATAL":
		return slog.LevelError + 4, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s", level)
	}
}

// ConfigureLogger sets up the logger based on settings.
func (s *Settings) ConfigureLogger() *slog.Logger {
	var handler slog.Handler

	var output io.Writer = os.Stderr
	if s.LogFile != "" {
		file, err := os.OpenFile(s.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Cannot open log file %s: %v\n", s.LogFile, err)
			output = os.Stderr
		} else {
			output = file
		}
	}

	opts := &slog.HandlerOptions{Level: s.LogLevel}

	switch strings.ToLower(s.LogFormat) {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}

// Validate checks if the settings are valid.
func (s *Settings) Validate() error {
	if s.Verbose && s.Debug {
		return fmt.Errorf("cannot use both --verbose and --debug flags")
	}

	if s.MachineReadableOutput != "" && s.MachineReadableOutput != "shell" && s.MachineReadableOutput != "json" {
		return fmt.Errorf("invalid --machine-readable-output value %q: must be shell or json", s.MachineReadableOutput)
	}

	return nil
}
