package config

import (
	"os"
	"testing"

	"log/slog"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSettings(t *testing.T) {
	settings := DefaultSettings()

	assert.Equal(t, "", settings.MachineReadableOutput)
	assert.False(t, settings.Interactive)
	assert.False(t, settings.Offline)
	assert.Equal(t, slog.LevelError, settings.LogLevel, "LogLevel should be Error by default")
	assert.Equal(t, "text", settings.LogFormat, "LogFormat should be text by default")
}

func TestLoadSettingsFromEnvironment_WithDefaults(t *testing.T) {
	clearEnvVars()

	settings := LoadSettingsFromEnvironment()

	defaultSettings := DefaultSettings()
	assert.Equal(t, defaultSettings.MachineReadableOutput, settings.MachineReadableOutput)
	assert.Equal(t, defaultSettings.Offline, settings.Offline)
	assert.Equal(t, defaultSettings.LogLevel, settings.LogLevel)
	assert.Equal(t, defaultSettings.LogFormat, settings.LogFormat)
}

func TestLoadSettingsFromEnvironment_WithEnvironmentVariables(t *testing.T) {
	clearEnvVars()

	os.Setenv("WEMI_MACHINE_READABLE_OUTPUT", "JSON")
	os.Setenv("WEMI_OFFLINE", "true")
	os.Setenv("WEMI_LOG_LEVEL", "debug")
	os.Setenv("WEMI_LOG_FORMAT", "json")
	defer clearEnvVars()

	settings := LoadSettingsFromEnvironment()

	assert.Equal(t, "json", settings.MachineReadableOutput)
	assert.True(t, settings.Offline)
	assert.Equal(t, slog.LevelDebug, settings.LogLevel)
	assert.Equal(t, "json", settings.LogFormat)
}

func TestLoadSettingsFromEnvironment_InvalidLogLevel(t *testing.T) {
	clearEnvVars()
	os.Setenv("WEMI_LOG_LEVEL", "invalid")
	defer clearEnvVars()

	settings := LoadSettingsFromEnvironment()
	assert.Equal(t, slog.LevelError, settings.LogLevel, "should fall back to default log level")
}

func TestLoadSettingsFromEnvironment_BooleanParsing(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		expected bool
	}{
		{"true lowercase", "true", true},
		{"true uppercase", "TRUE", true},
		{"false lowercase", "false", false},
		{"invalid value", "maybe", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvVars()
			os.Setenv("WEMI_OFFLINE", tt.envValue)
			defer clearEnvVars()

			settings := LoadSettingsFromEnvironment()
			assert.Equal(t, tt.expected, settings.Offline)
		})
	}
}

func TestConfigureLogger_TextFormat(t *testing.T) {
	settings := &Settings{LogLevel: slog.LevelDebug, LogFormat: "text"}
	logger := settings.ConfigureLogger()
	assert.NotNil(t, logger)
}

func TestConfigureLogger_JSONFormat(t *testing.T) {
	settings := &Settings{LogLevel: slog.LevelWarn, LogFormat: "json"}
	logger := settings.ConfigureLogger()
	assert.NotNil(t, logger)
}

func TestValidate_RejectsVerboseAndDebugTogether(t *testing.T) {
	settings := DefaultSettings()
	settings.Verbose = true
	settings.Debug = true
	assert.Error(t, settings.Validate())
}

func TestValidate_RejectsUnknownMachineReadableFormat(t *testing.T) {
	settings := DefaultSettings()
	settings.MachineReadableOutput = "xml"
	assert.Error(t, settings.Validate())
}

func TestValidate_AcceptsShellAndJSON(t *testing.T) {
	settings := DefaultSettings()
	settings.MachineReadableOutput = "shell"
	assert.NoError(t, settings.Validate())
	settings.MachineReadableOutput = "json"
	assert.NoError(t, settings.Validate())
}

func clearEnvVars() {
	envVars := []string{
		"WEMI_MACHINE_READABLE_OUTPUT",
		"WEMI_INTERACTIVE",
		"WEMI_OFFLINE",
		"WEMI_VERBOSE",
		"WEMI_DEBUG",
		"WEMI_LOG_LEVEL",
		"WEMI_LOG_FORMAT",
		"WEMI_LOG_FILE",
	}
	for _, envVar := range envVars {
		os.Unsetenv(envVar)
	}
}
