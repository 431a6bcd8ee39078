// Package config loads application configuration from command-line flags,
// environment variables, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Data    DataConfig
	Library LibraryConfig
	Scanner ScannerConfig
	Catalog CatalogConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds server-side state storage configuration.
// SQLite database, job log, covers and the search index all live under
// BasePath.
type DataConfig struct {
	BasePath string
}

// LibraryConfig holds the initial music library configuration.
type LibraryConfig struct {
	MusicPath string
	Name      string
}

// ScannerConfig holds scan behavior configuration.
type ScannerConfig struct {
	// ScanOnStart triggers a scan of the configured library at startup.
	ScanOnStart bool
}

// CatalogConfig holds external metadata catalog configuration.
type CatalogConfig struct {
	// BaseURL of the MusicBrainz web service.
	BaseURL string
	// CoverBaseURL of the Cover Art Archive.
	CoverBaseURL string
	// RequestInterval between catalog calls (MusicBrainz asks for 1/s).
	RequestInterval time.Duration
	// AutoLinkThreshold is the minimum confidence (0-100) at which a
	// catalog match is applied without confirmation. Distinct from any
	// manual-match threshold a client may use.
	AutoLinkThreshold int
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := flag.String("data-path", "", "Base path for server data")
	musicPath := flag.String("music-path", "", "Path to music library")
	libraryName := flag.String("library-name", "", "Name for the initial library")
	scanOnStart := flag.String("scan-on-start", "", "Scan the configured library at startup (default: true)")
	catalogURL := flag.String("catalog-url", "", "MusicBrainz web service base URL")
	coverURL := flag.String("cover-url", "", "Cover Art Archive base URL")
	catalogInterval := flag.String("catalog-interval", "", "Minimum interval between catalog requests (default: 1s)")
	autoLinkThreshold := flag.String("auto-link-threshold", "", "Minimum confidence for automatic album linking (default: 85)")
	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			BasePath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Library: LibraryConfig{
			MusicPath: getConfigValue(*musicPath, "MUSIC_PATH", ""),
			Name:      getConfigValue(*libraryName, "LIBRARY_NAME", "Music"),
		},
		Scanner: ScannerConfig{
			ScanOnStart: getBoolConfigValue(*scanOnStart, "SCAN_ON_START", true),
		},
		Catalog: CatalogConfig{
			BaseURL:           getConfigValue(*catalogURL, "CATALOG_URL", "https://musicbrainz.org/ws/2"),
			CoverBaseURL:      getConfigValue(*coverURL, "COVER_URL", "https://coverartarchive.org"),
			AutoLinkThreshold: getIntConfigValue(*autoLinkThreshold, "AUTO_LINK_THRESHOLD", 85),
		},
	}

	intervalStr := getConfigValue(*catalogInterval, "CATALOG_INTERVAL", "1s")
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog interval %q: %w", intervalStr, err)
	}
	cfg.Catalog.RequestInterval = interval

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}
	if err := cfg.expandMusicPath(); err != nil {
		return nil, fmt.Errorf("invalid music path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
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

	if c.Data.BasePath == "" {
		return errors.New("data base path cannot be empty after expansion")
	}

	if c.Catalog.AutoLinkThreshold < 0 || c.Catalog.AutoLinkThreshold > 100 {
		return fmt.Errorf("auto-link threshold must be 0-100, got %d", c.Catalog.AutoLinkThreshold)
	}

	// MusicPath can be empty - libraries can be created later.

	return nil
}

// CoversPath is the directory album covers are stored in.
func (c *Config) CoversPath() string {
	return filepath.Join(c.Data.BasePath, "covers")
}

// DatabasePath is the SQLite database file.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Data.BasePath, "spherix.db")
}

// JobsPath is the directory the job log lives in.
func (c *Config) JobsPath() string {
	return filepath.Join(c.Data.BasePath, "jobs")
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
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

// expandDataPath expands ~ and makes the path absolute, defaulting to
// ~/Spherix/data.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "Spherix", "data")

	expanded, err := expandPath(c.Data.BasePath, defaultPath)
	if err != nil {
		return err
	}
	c.Data.BasePath = expanded
	return nil
}

// expandMusicPath expands ~ and makes the path absolute.
// If empty, leaves it empty so a library can be created later.
func (c *Config) expandMusicPath() error {
	if c.Library.MusicPath == "" {
		return nil
	}

	expanded, err := expandPath(c.Library.MusicPath, "")
	if err != nil {
		return err
	}
	c.Library.MusicPath = expanded
	return nil
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

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
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
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
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

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)

		// Env vars take precedence over the .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
