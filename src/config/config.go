package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultHotkey       = "Shift+Alt+X"
	SettingsFileName    = "ScreenHighlighter.ini"
	SettingsPathEnvVar  = "SETTINGS_FILE"
	ScreenshotDirEnvVar = "SCREENSHOT_DIR"
)

type LoadOptions struct {
	SettingsPathOverride string
}

// Config is the resident's startup configuration: ambient switches from
// .env and the environment plus the persisted overlay Settings.
type Config struct {
	EnableFileLogging bool
	Hotkey            string
	OutputDir         string
	SettingsPath      string
	Settings          Settings
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Load configuration from sources in priority order:
	// 1) .env in the application (executable) directory
	// 2) If not found, use SCREEN_HIGHLIGHTER env var as a path to a config file
	envPath := resolveEnvPath()
	dotenvValues := readDotenvValues(envPath)
	if envPath != "" {
		_ = godotenv.Load(envPath)
	}

	settingsPath := resolveSettingsPath(opts, dotenvValues)

	cfg := &Config{
		EnableFileLogging: strings.ToLower(os.Getenv("ENABLE_FILE_LOGGING")) == "true",
		Hotkey:            getEnvWithDefault("HOTKEY", DefaultHotkey),
		OutputDir:         getEnvWithDefault(ScreenshotDirEnvVar, execDir()),
		SettingsPath:      settingsPath,
		Settings:          LoadSettings(settingsPath),
	}

	return cfg, nil
}

// ReloadSettings re-reads the settings file into cfg.
func (c *Config) ReloadSettings() {
	c.Settings = LoadSettings(c.SettingsPath)
}

func execDir() string {
	execPath, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(execPath)
}

func resolveEnvPath() string {
	exeEnv := filepath.Join(execDir(), ".env")
	if _, err := os.Stat(exeEnv); err == nil {
		return exeEnv
	}

	if alt := os.Getenv("SCREEN_HIGHLIGHTER"); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func readDotenvValues(envPath string) map[string]string {
	if envPath == "" {
		return map[string]string{}
	}

	values, err := godotenv.Read(envPath)
	if err != nil {
		return map[string]string{}
	}

	return values
}

func resolveSettingsPath(opts LoadOptions, dotenvValues map[string]string) string {
	path := filepath.Join(execDir(), SettingsFileName)

	if envPath := strings.TrimSpace(os.Getenv(SettingsPathEnvVar)); envPath != "" {
		path = envPath
	}

	if dotenvPath := strings.TrimSpace(dotenvValues[SettingsPathEnvVar]); dotenvPath != "" {
		path = dotenvPath
	}

	if overridePath := strings.TrimSpace(opts.SettingsPathOverride); overridePath != "" {
		path = overridePath
	}

	return path
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
