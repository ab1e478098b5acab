package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// BuildMode is the default environment, overridden at link time for release
// builds: -ldflags "-X github.com/lehmann314159/vocabcards/internal/config.BuildMode=production"
var BuildMode = ModeDevelopment

const (
	ModeDevelopment = "development"
	ModeProduction  = "production"
)

type (
	Config struct {
		Mode string
		Database
		Log
		HTTP
		Dictionary
	}

	Database struct {
		Path string
	}
	Log struct {
		Level      string
		Dir        string // Empty disables the file sink
		MaxAgeDays int
	}
	HTTP struct {
		Host     string
		Port     int
		APIToken string

		// Empty means the loopback origins of the listen address
		AllowedOrigins []string
	}
	Dictionary struct {
		BaseURL string
	}
)

// NewConfig resolves configuration once from the environment and, when
// given, command-line flags. Flags win over environment variables.
func NewConfig(flags *pflag.FlagSet) *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("VOCAB_ENV", BuildMode)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_MAX_AGE_DAYS", DefaultLogMaxAgeDays)
	v.SetDefault("HOST", DefaultHost)
	v.SetDefault("PORT", DefaultPort)
	v.SetDefault("DICTIONARY_URL", DefaultDictionaryURL)

	if flags != nil {
		bindFlag(v, flags, "DATABASE_URL", "db")
		bindFlag(v, flags, "LOG_LEVEL", "log-level")
		bindFlag(v, flags, "HOST", "host")
		bindFlag(v, flags, "PORT", "port")
	}

	mode := v.GetString("VOCAB_ENV")
	if mode != ModeProduction {
		mode = ModeDevelopment
	}

	dataDir := appDataDir(runtime.GOOS, os.Getenv)

	return &Config{
		Mode: mode,
		Database: Database{
			Path: resolveDatabasePath(v.GetString("DATABASE_URL"), mode, dataDir),
		},
		Log: Log{
			Level:      v.GetString("LOG_LEVEL"),
			Dir:        resolveLogDir(v, mode, dataDir),
			MaxAgeDays: v.GetInt("LOG_MAX_AGE_DAYS"),
		},
		HTTP: HTTP{
			Host:     v.GetString("HOST"),
			Port:     v.GetInt("PORT"),
			APIToken: v.GetString("API_TOKEN"),

			AllowedOrigins: splitList(v.GetString("CORS_ORIGINS")),
		},
		Dictionary: Dictionary{
			BaseURL: v.GetString("DICTIONARY_URL"),
		},
	}
}

// LoadDotEnv copies KEY=value lines from the file at path into the
// environment. Variables that are already set keep their value. A missing
// file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// splitList parses a comma-separated list, dropping empty entries
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func bindFlag(v *viper.Viper, flags *pflag.FlagSet, key, name string) {
	if f := flags.Lookup(name); f != nil {
		_ = v.BindPFlag(key, f)
	}
}

// resolveDatabasePath applies: explicit override, then the mode default,
// then the working-directory fallback when no data directory is known.
func resolveDatabasePath(override, mode, dataDir string) string {
	if override != "" {
		return override
	}
	if mode == ModeDevelopment {
		return filepath.Join(DevelopmentDataDir, DatabaseFileName)
	}
	if dataDir == "" {
		return filepath.Join(".", DatabaseFileName)
	}
	return filepath.Join(dataDir, DatabaseFileName)
}

func resolveLogDir(v *viper.Viper, mode, dataDir string) string {
	if v.IsSet("LOG_DIR") {
		return v.GetString("LOG_DIR")
	}
	// Development logs go to the console only
	if mode == ModeDevelopment || dataDir == "" {
		return ""
	}
	return filepath.Join(dataDir, "logs")
}

// appDataDir returns the per-user application data directory for goos,
// or "" when it cannot be determined.
func appDataDir(goos string, getenv func(string) string) string {
	switch goos {
	case "darwin":
		if home := getenv("HOME"); home != "" {
			return filepath.Join(home, "Library", "Application Support", AppName)
		}
	case "windows":
		if appData := getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, AppName)
		}
	case "linux":
		if home := getenv("HOME"); home != "" {
			return filepath.Join(home, ".local", "share", AppName)
		}
	}
	return ""
}
